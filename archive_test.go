package nufx

import (
	"bytes"
	"encoding/binary"
	"testing"
)

// buildArchive assembles a minimal single-record NuFX byte stream: a master
// header declaring one record, a record header with no option list, a
// fixed filename field, and the given threads with their payloads appended
// back to back, each thread's payload offset implied by the running sum of
// the preceding threads' compressed sizes.
func buildArchive(t *testing.T, filename string, threads []ThreadEntry, payloads [][]byte) []byte {
	t.Helper()
	if len(threads) != len(payloads) {
		t.Fatalf("threads/payloads length mismatch")
	}

	attrCount := uint16(recordHeaderSize + 2) // no option list
	recHdr := buildRecordHeader(t, attrCount, 0, uint32(len(threads)))

	var buf bytes.Buffer
	buf.Write(buildMasterHeader(t, 1, 0))
	buf.Write(recHdr)
	binary.Write(&buf, binary.LittleEndian, uint16(len(filename)))
	buf.WriteString(filename)
	for _, th := range threads {
		buf.Write(buildThreadEntry(th.Classification, th.Format, th.Kind, th.UncompressedSize, th.CompressedSize))
	}
	for _, p := range payloads {
		buf.Write(p)
	}
	return buf.Bytes()
}

func TestOpenSingleRecordRoundTrip(t *testing.T) {
	dataFork := []byte("HI")
	raw := buildArchive(t, "HELLO.TXT",
		[]ThreadEntry{{Classification: ClassData, Format: FormatUncompressed, Kind: KindDataFork, UncompressedSize: 2, CompressedSize: 2}},
		[][]byte{dataFork},
	)

	a, err := Open(OpenBytes(raw))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if len(a.Entries) != 1 {
		t.Fatalf("len(Entries) = %d, want 1", len(a.Entries))
	}

	entry := a.Entries[0]
	if entry.Filename() != "HELLO.TXT" {
		t.Fatalf("Filename() = %q, want %q", entry.Filename(), "HELLO.TXT")
	}

	got, err := a.GetDataFork(entry)
	if err != nil {
		t.Fatalf("GetDataFork: %v", err)
	}
	if !bytes.Equal(got, dataFork) {
		t.Fatalf("GetDataFork = %q, want %q", got, dataFork)
	}

	if got, err := a.GetResourceFork(entry); err != nil || got != nil {
		t.Fatalf("GetResourceFork = (%v, %v), want (nil, nil)", got, err)
	}
}

func TestOpenNoThreads(t *testing.T) {
	raw := buildArchive(t, "EMPTY", nil, nil)
	a, err := Open(OpenBytes(raw))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	entry := a.Entries[0]
	if got, err := a.GetDataFork(entry); err != nil || got != nil {
		t.Fatalf("GetDataFork = (%v, %v), want (nil, nil)", got, err)
	}
}

func TestOpenCachesDecodedThread(t *testing.T) {
	raw := buildArchive(t, "A",
		[]ThreadEntry{{Classification: ClassData, Format: FormatUncompressed, Kind: KindDataFork, UncompressedSize: 3, CompressedSize: 3}},
		[][]byte{[]byte("abc")},
	)
	a, err := Open(OpenBytes(raw), WithCache(8))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	entry := a.Entries[0]
	first, err := a.GetDataFork(entry)
	if err != nil {
		t.Fatalf("GetDataFork: %v", err)
	}
	second, err := a.GetDataFork(entry)
	if err != nil {
		t.Fatalf("GetDataFork (cached): %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Fatalf("cached read %q != first read %q", second, first)
	}
}

func TestOpenBadMasterSignature(t *testing.T) {
	raw := buildArchive(t, "A", nil, nil)
	raw[0] ^= 0xFF
	if _, err := Open(OpenBytes(raw)); err == nil {
		t.Fatal("expected error for corrupted master signature")
	}
}

func TestOpenWithoutCache(t *testing.T) {
	raw := buildArchive(t, "A",
		[]ThreadEntry{{Classification: ClassData, Format: FormatUncompressed, Kind: KindDataFork, UncompressedSize: 1, CompressedSize: 1}},
		[][]byte{[]byte("x")},
	)
	a, err := Open(OpenBytes(raw), WithoutCache())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if a.cache != nil {
		t.Fatal("expected cache to be nil with WithoutCache")
	}
}
