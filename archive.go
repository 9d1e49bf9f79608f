// Package nufx reads NuFX archives (the ShrinkIt container format used on
// the Apple II and Apple IIGS), including the optional Binary II envelope
// some transport paths wrap around them, and decompresses the Dynamic LZW
// thread formats ShrinkIt itself uses (LZW/1 and LZW/2).
package nufx

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"log/slog"

	"github.com/cespare/xxhash/v2"
	"github.com/dgryski/go-tinylfu"
)

// Entry is one parsed record (roughly: one archived file or directory)
// together with its thread table. Payload bytes are not read until a caller
// asks for a specific thread via Archive.GetDataFork, GetResourceFork,
// GetDiskImage or their Extract*To streaming counterparts (an uncompressed
// filename thread is the exception: Open reads it to resolve Filename).
type Entry struct {
	Header  RecordHeader
	Threads []ThreadEntry

	index          int // position within Archive.Entries, used as a cache key
	threadOffs     []int64
	filename       string
	headerFilename string
	optionList     []byte
}

// Filename is the record's name, taken from its Filename-classification
// thread when present, or from the record header's fixed filename field
// (pre-GS/OS archives) otherwise.
func (r Entry) Filename() string { return r.filename }

// OptionList returns the raw GS/OS option list bytes carried in the
// record's attribute section, or nil when absent. Interpretable as a
// GS/OS option list when its own declared buffer_size is >= 0x2E; this
// package does not decode its contents further.
func (r Entry) OptionList() []byte { return r.optionList }

type cacheKey struct {
	record int
	kind   ThreadKind
	class  Classification
}

// hashCacheKey folds cacheKey's fixed-width fields into a single hash via
// the xxhash.Digest accumulation pattern: write each field through
// binary.Write, then take Sum64 once everything's been written.
func hashCacheKey(k cacheKey) uint64 {
	var h xxhash.Digest
	binary.Write(&h, binary.BigEndian, int64(k.record))
	binary.Write(&h, binary.BigEndian, uint16(k.kind))
	binary.Write(&h, binary.BigEndian, uint16(k.class))
	return h.Sum64()
}

// Archive is a parsed, read-only view onto a NuFX byte stream. The zero
// value is not usable; construct one with Open.
type Archive struct {
	src    *source
	logger *slog.Logger
	cache  *tinylfu.T[cacheKey, []byte]

	BinaryII *BinaryIIHeader // nil when no Binary II envelope was present
	Master   MasterHeader
	Entries  []Entry

	base int64 // offset of the NuFX master header within src
}

// Option configures Open.
type Option func(*archiveOptions)

type archiveOptions struct {
	cacheSize int
	logger    *slog.Logger
}

const defaultCacheSize = 64

// WithCache sets the capacity, in decoded threads, of the archive's decoded
// payload cache. The cache is purely an accelerator for repeat reads of the
// same thread: a miss always falls through to decompression, so it never
// affects correctness or CRC verification.
func WithCache(n int) Option {
	return func(o *archiveOptions) { o.cacheSize = n }
}

// WithoutCache disables the decoded payload cache entirely.
func WithoutCache() Option {
	return func(o *archiveOptions) { o.cacheSize = 0 }
}

// WithLogger sets the structured logger used for non-fatal diagnostics
// (Binary II envelope detected, an unreadable or compressed filename thread,
// a thread finished decompressing). The default is slog.Default(). Logging
// never drives control flow.
func WithLogger(l *slog.Logger) Option {
	return func(o *archiveOptions) { o.logger = l }
}

// Open parses src's master header, its record and thread tables, and (if
// present) a leading Binary II envelope. It does not decompress any thread
// payloads; call GetDataFork, GetResourceFork, GetDiskImage or an
// Extract*To method for that.
func Open(src *source, opts ...Option) (*Archive, error) {
	options := archiveOptions{cacheSize: defaultCacheSize, logger: slog.Default()}
	for _, opt := range opts {
		opt(&options)
	}

	a := &Archive{src: src, logger: options.logger}

	head, err := src.slice(0, binary2BlockSize)
	if err != nil && err != io.ErrUnexpectedEOF {
		return nil, fmt.Errorf("nufx: reading header block: %w", err)
	}
	if len(head) == binary2BlockSize && detectBinaryII(head) {
		b2, err := parseBinaryII(head)
		if err != nil {
			return nil, err
		}
		a.BinaryII = &b2
		a.base = binary2BlockSize
		a.logger.Debug("nufx: Binary II envelope detected", "filename", b2.Filename)
	}

	masterBuf, err := src.slice(a.base, masterHeaderSize)
	if err != nil {
		return nil, fmt.Errorf("nufx: reading master header: %w", err)
	}
	master, err := parseMasterHeader(masterBuf)
	if err != nil {
		return nil, err
	}
	a.Master = master

	if options.cacheSize > 0 {
		a.cache = tinylfu.New[cacheKey, []byte](options.cacheSize, options.cacheSize*10, hashCacheKey)
	}

	off := a.base + masterHeaderSize
	a.Entries = make([]Entry, 0, master.TotalRecords)
	for i := uint32(0); i < master.TotalRecords; i++ {
		rec, consumed, err := a.parseRecordAt(off, int(i))
		if err != nil {
			return nil, fmt.Errorf("nufx: record %d: %w", i, err)
		}
		a.Entries = append(a.Entries, rec)
		off += consumed
	}

	return a, nil
}

// minOptionListSize is the GS/OS option list's own declared buffer_size
// floor; a non-zero option list shorter than this cannot be a real one.
const minOptionListSize = 0x2E

func (a *Archive) parseRecordAt(off int64, index int) (Entry, int64, error) {
	hdrBuf, err := a.src.slice(off, recordHeaderSize)
	if err != nil {
		return Entry{}, 0, fmt.Errorf("reading record header: %w", err)
	}
	hdr, err := parseRecordHeader(hdrBuf)
	if err != nil {
		return Entry{}, 0, err
	}

	attrEnd := off + int64(hdr.AttributesCount) // just past the filename-length word
	cur := off + recordHeaderSize

	var optionList []byte
	if hdr.Version >= 1 {
		if cur+2 > attrEnd {
			return Entry{}, 0, fmt.Errorf("%w: option-list length falls outside attribute section", ErrOutOfRange)
		}
		lenBuf, err := a.src.slice(cur, 2)
		if err != nil {
			return Entry{}, 0, err
		}
		optLen := int(lenBuf[0]) | int(lenBuf[1])<<8
		if optLen != 0 && optLen < minOptionListSize {
			return Entry{}, 0, fmt.Errorf("%w: option-list buffer_size %#x < %#x", ErrOutOfRange, optLen, minOptionListSize)
		}
		if int64(optLen) > attrEnd-(cur+2) {
			return Entry{}, 0, fmt.Errorf("%w: option-list buffer_size %#x exceeds attribute section", ErrOutOfRange, optLen)
		}
		if optLen > 0 {
			optionList, err = a.src.slice(cur+2, optLen)
			if err != nil {
				return Entry{}, 0, err
			}
		}
	}

	// The remaining slack before the filename-length word (padding this
	// reader has no structure to interpret) is skipped without validation.
	cur = attrEnd - 2
	if cur < off+recordHeaderSize {
		return Entry{}, 0, fmt.Errorf("%w: attributes_count %d too small for filename-length word", ErrInvalidInput, hdr.AttributesCount)
	}

	nameLenBuf, err := a.src.slice(cur, 2)
	if err != nil {
		return Entry{}, 0, err
	}
	nameLen := int(nameLenBuf[0]) | int(nameLenBuf[1])<<8
	cur = attrEnd

	var headerFilename string
	if nameLen > 0 {
		nameBuf, err := a.src.slice(cur, nameLen)
		if err != nil {
			return Entry{}, 0, err
		}
		headerFilename = string(nameBuf)
		cur += int64(nameLen)
	}

	rec := Entry{Header: hdr, index: index, optionList: optionList, headerFilename: headerFilename}
	rec.Threads = make([]ThreadEntry, 0, hdr.TotalThreads)

	threadTableBuf, err := a.src.slice(cur, int(hdr.TotalThreads)*threadEntrySize)
	if err != nil {
		return Entry{}, 0, fmt.Errorf("reading thread table: %w", err)
	}
	cur += int64(len(threadTableBuf))

	payloadOffs := make([]int64, hdr.TotalThreads)
	payloadOff := cur
	for i := uint32(0); i < hdr.TotalThreads; i++ {
		t, err := parseThreadEntry(threadTableBuf[i*threadEntrySize : (i+1)*threadEntrySize])
		if err != nil {
			return Entry{}, 0, err
		}
		rec.Threads = append(rec.Threads, t)
		payloadOffs[i] = payloadOff
		payloadOff += int64(t.CompressedSize)
	}
	rec.threadOffs = payloadOffs

	rec.filename = a.recordFilename(rec)

	return rec, payloadOff - off, nil
}

// recordFilename resolves a record's name from its Filename-classification
// thread, falling back to the record header's fixed filename field (the
// scheme older, pre-GS/OS archives use).
func (a *Archive) recordFilename(rec Entry) string {
	for i, t := range rec.Threads {
		if t.Classification != ClassFileName {
			continue
		}
		buf, err := a.src.slice(rec.threadOffs[i], int(t.CompressedSize))
		if err != nil {
			a.logger.Warn("nufx: short filename thread", "error", err)
			break
		}
		if t.Format != FormatUncompressed {
			a.logger.Warn("nufx: compressed filename thread unsupported", "format", t.Format)
			break
		}
		n := int(t.UncompressedSize)
		if n > len(buf) {
			n = len(buf)
		}
		return string(buf[:n])
	}
	return rec.headerFilename
}

// findThread returns the first thread in rec matching class and kind.
func findThread(rec Entry, class Classification, kind ThreadKind) (ThreadEntry, int64, bool) {
	for i, t := range rec.Threads {
		if t.Classification == class && t.Kind == kind {
			return t, rec.threadOffs[i], true
		}
	}
	return ThreadEntry{}, 0, false
}

// GetFileName returns rec's name: its Filename-classification thread when
// present, otherwise the record header's fixed filename field.
func (a *Archive) GetFileName(rec Entry) string { return rec.filename }

// GetDataFork decompresses rec's data-fork thread and returns it in full.
// A record with no data fork returns (nil, nil): absence is not an error.
func (a *Archive) GetDataFork(rec Entry) ([]byte, error) {
	return a.getThread(rec, ClassData, KindDataFork)
}

// GetResourceFork decompresses rec's resource-fork thread and returns it
// in full. A record with no resource fork returns (nil, nil).
func (a *Archive) GetResourceFork(rec Entry) ([]byte, error) {
	return a.getThread(rec, ClassData, KindRsrcFork)
}

// GetDiskImage decompresses rec's disk-image thread and returns it in
// full. A record with no disk-image thread returns (nil, nil).
func (a *Archive) GetDiskImage(rec Entry) ([]byte, error) {
	return a.getThread(rec, ClassData, KindDiskImage)
}

func (a *Archive) getThread(rec Entry, class Classification, kind ThreadKind) ([]byte, error) {
	t, off, ok := findThread(rec, class, kind)
	if !ok {
		return nil, nil
	}

	key := cacheKey{record: rec.index, kind: kind, class: class}
	if a.cache != nil {
		if v, ok := a.cache.Get(key); ok {
			return v, nil
		}
	}

	var buf bytes.Buffer
	buf.Grow(int(t.UncompressedSize))
	if err := a.extractThreadTo(t, off, &buf); err != nil {
		return nil, err
	}
	out := buf.Bytes()

	if a.cache != nil {
		a.cache.Add(key, out)
	}
	return out, nil
}

// ExtractDataForkTo streams rec's data-fork thread to w without buffering
// the whole payload in memory, bypassing the decoded-payload cache. It
// reports false when rec has no data fork.
func (a *Archive) ExtractDataForkTo(rec Entry, w io.Writer) (bool, error) {
	return a.extractKindTo(rec, ClassData, KindDataFork, w)
}

// ExtractResourceForkTo is the streaming counterpart to GetResourceFork.
func (a *Archive) ExtractResourceForkTo(rec Entry, w io.Writer) (bool, error) {
	return a.extractKindTo(rec, ClassData, KindRsrcFork, w)
}

// ExtractDiskImageTo is the streaming counterpart to GetDiskImage.
func (a *Archive) ExtractDiskImageTo(rec Entry, w io.Writer) (bool, error) {
	return a.extractKindTo(rec, ClassData, KindDiskImage, w)
}

func (a *Archive) extractKindTo(rec Entry, class Classification, kind ThreadKind, w io.Writer) (bool, error) {
	t, off, ok := findThread(rec, class, kind)
	if !ok {
		return false, nil
	}
	return true, a.extractThreadTo(t, off, w)
}

// Close releases the underlying io.ReaderAt if it also implements
// io.Closer (the os.File case from OpenReaderAt). A no-op for archives
// opened with OpenBytes.
func (a *Archive) Close() error {
	return a.src.close()
}

func (a *Archive) extractThreadTo(t ThreadEntry, off int64, w io.Writer) error {
	if !t.Format.supported() {
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, t.Format)
	}
	payload, err := a.src.slice(off, int(t.CompressedSize))
	if err != nil {
		return fmt.Errorf("reading thread payload: %w", err)
	}
	return decompressThread(t, payload, w, a.logger)
}
