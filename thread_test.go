package nufx

import (
	"bytes"
	"encoding/binary"
	"testing"
)

func TestDecompressUncompressedExact(t *testing.T) {
	th := ThreadEntry{Format: FormatUncompressed, UncompressedSize: 4, CompressedSize: 4}
	var out bytes.Buffer
	if err := decompressThread(th, []byte{1, 2, 3, 4}, &out, nil); err != nil {
		t.Fatalf("decompressThread: %v", err)
	}
	if !bytes.Equal(out.Bytes(), []byte{1, 2, 3, 4}) {
		t.Fatalf("got %v", out.Bytes())
	}
}

func TestDecompressUncompressedZeroPad(t *testing.T) {
	th := ThreadEntry{Format: FormatUncompressed, UncompressedSize: 6, CompressedSize: 2}
	var out bytes.Buffer
	if err := decompressThread(th, []byte{9, 9}, &out, nil); err != nil {
		t.Fatalf("decompressThread: %v", err)
	}
	want := []byte{9, 9, 0, 0, 0, 0}
	if !bytes.Equal(out.Bytes(), want) {
		t.Fatalf("got %v, want %v", out.Bytes(), want)
	}
}

func TestDecompressUnsupportedFormat(t *testing.T) {
	th := ThreadEntry{Format: FormatHuffmanSqueeze, UncompressedSize: 1, CompressedSize: 1}
	var out bytes.Buffer
	err := decompressThread(th, []byte{0}, &out, nil)
	if err == nil {
		t.Fatal("expected ErrUnsupportedFormat")
	}
}

// TestDecompressLZW1RawBlock builds a single-block LZW/1 thread with
// lzw_used=0 and rle_len=4096 (so the block is copied verbatim), exercising
// the block-header parsing and end-to-end CRC verification without needing
// hand-packed LZW codes.
func TestDecompressLZW1RawBlock(t *testing.T) {
	block := make([]byte, 4096)
	for i := range block {
		block[i] = byte(i)
	}
	crc := crc16XModem(0, block)

	var payload bytes.Buffer
	binary.Write(&payload, binary.LittleEndian, crc)
	payload.WriteByte(0)    // volume
	payload.WriteByte(0x90) // escape
	binary.Write(&payload, binary.LittleEndian, uint16(4096))
	payload.WriteByte(0) // lzw-used flag
	payload.Write(block)

	th := ThreadEntry{
		Format:           FormatDynamicLZW1,
		UncompressedSize: 10,
		CompressedSize:   uint32(payload.Len()),
	}

	var out bytes.Buffer
	if err := decompressThread(th, payload.Bytes(), &out, nil); err != nil {
		t.Fatalf("decompressThread: %v", err)
	}
	if !bytes.Equal(out.Bytes(), block[:10]) {
		t.Fatalf("got %v, want %v", out.Bytes(), block[:10])
	}
}

func TestDecompressLZW1CRCMismatch(t *testing.T) {
	block := make([]byte, 4096)

	var payload bytes.Buffer
	binary.Write(&payload, binary.LittleEndian, uint16(0xBEEF)) // wrong CRC
	payload.WriteByte(0)
	payload.WriteByte(0x90)
	binary.Write(&payload, binary.LittleEndian, uint16(4096))
	payload.WriteByte(0)
	payload.Write(block)

	th := ThreadEntry{
		Format:           FormatDynamicLZW1,
		UncompressedSize: 10,
		CompressedSize:   uint32(payload.Len()),
	}

	var out bytes.Buffer
	err := decompressThread(th, payload.Bytes(), &out, nil)
	if err == nil {
		t.Fatal("expected CRC mismatch error")
	}
}
