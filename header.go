package nufx

import (
	"encoding/binary"
	"fmt"
)

var masterSignature = [6]byte{0x4E, 0xF5, 0x46, 0xE9, 0x6C, 0xE5} // "NuFile"
var recordSignature = [4]byte{0x4E, 0xF5, 0x46, 0xD8}             // "NuFX"

const (
	masterHeaderSize = 48
	recordHeaderSize = 56
	threadEntrySize  = 16
)

// MasterHeader is the 48-byte header preceding every NuFX archive's record
// stream. Every on-disk field is little-endian except TotalSize, which
// ShrinkIt itself writes big-endian.
type MasterHeader struct {
	CRC16        uint16
	TotalRecords uint32
	Created      DateTime
	Modified     DateTime
	Version      uint16
	TotalSize    uint32
}

func parseMasterHeader(buf []byte) (MasterHeader, error) {
	if len(buf) < masterHeaderSize {
		return MasterHeader{}, fmt.Errorf("%w: short master header (%d bytes)", ErrInvalidInput, len(buf))
	}
	if [6]byte(buf[0:6]) != masterSignature {
		return MasterHeader{}, fmt.Errorf("%w: bad master header signature", ErrInvalidInput)
	}

	var h MasterHeader
	h.CRC16 = binary.LittleEndian.Uint16(buf[6:8])
	h.TotalRecords = binary.LittleEndian.Uint32(buf[8:12])
	h.Created = parseDateTime(buf[12:20])
	h.Modified = parseDateTime(buf[20:28])
	h.Version = binary.LittleEndian.Uint16(buf[28:30])
	// buf[30:38] reserved
	h.TotalSize = binary.BigEndian.Uint32(buf[38:42]) // the documented endianness quirk
	// buf[42:48] reserved

	if h.Version > 2 {
		return MasterHeader{}, fmt.Errorf("%w: master version %d > 2", ErrInvalidInput, h.Version)
	}
	return h, nil
}

func parseDateTime(buf []byte) DateTime {
	return DateTime{
		Second:  buf[0],
		Minute:  buf[1],
		Hour:    buf[2],
		Year:    buf[3],
		Day:     buf[4],
		Month:   buf[5],
		Filler:  buf[6],
		Weekday: buf[7],
	}
}

// RecordHeader is the fixed 56-byte header block that begins each record,
// followed by an optional option list, extra attributes, and the
// filename-length word (all accounted for in AttributesCount, see
// Archive.parseRecordAt), then the filename bytes themselves.
type RecordHeader struct {
	CRC16            uint16
	AttributesCount  uint16
	Version          uint16
	TotalThreads     uint32
	FilesystemID     FilesystemID
	FilesystemInfo   uint16
	Access           AccessFlags
	FileType         uint32
	AuxType          uint32
	StorageType      StorageType
	Created          DateTime
	Modified         DateTime
	Archived         DateTime

	// HeaderCRCValid reports whether CRC16 matches the computed CRC over
	// the rest of the header block. Exposed as metadata, not enforced:
	// archives with a stale or zeroed header CRC still parse.
	HeaderCRCValid bool
}

// Separator returns the filesystem separator character carried in the low
// byte of FilesystemInfo. It is informational only; no path normalization
// is performed on filenames.
func (h RecordHeader) Separator() byte {
	return byte(h.FilesystemInfo)
}

func parseRecordHeader(buf []byte) (RecordHeader, error) {
	if len(buf) < recordHeaderSize {
		return RecordHeader{}, fmt.Errorf("%w: short record header (%d bytes)", ErrInvalidInput, len(buf))
	}
	if [4]byte(buf[0:4]) != recordSignature {
		return RecordHeader{}, fmt.Errorf("%w: bad record header signature", ErrInvalidInput)
	}

	var h RecordHeader
	h.CRC16 = binary.LittleEndian.Uint16(buf[4:6])
	h.AttributesCount = binary.LittleEndian.Uint16(buf[6:8])
	h.Version = binary.LittleEndian.Uint16(buf[8:10])
	h.TotalThreads = binary.LittleEndian.Uint32(buf[10:14])
	h.FilesystemID = FilesystemID(binary.LittleEndian.Uint16(buf[14:16]))
	h.FilesystemInfo = binary.LittleEndian.Uint16(buf[16:18])
	h.Access = AccessFlags(binary.LittleEndian.Uint32(buf[18:22]))
	h.FileType = binary.LittleEndian.Uint32(buf[22:26])
	h.AuxType = binary.LittleEndian.Uint32(buf[26:30])
	h.StorageType = StorageType(binary.LittleEndian.Uint16(buf[30:32]))
	h.Created = parseDateTime(buf[32:40])
	h.Modified = parseDateTime(buf[40:48])
	h.Archived = parseDateTime(buf[48:56])

	if h.AttributesCount < recordHeaderSize {
		return RecordHeader{}, fmt.Errorf("%w: attributes_count %d < %d", ErrInvalidInput, h.AttributesCount, recordHeaderSize)
	}

	crc := crc16XModem(0, buf[6:recordHeaderSize]) // excludes the CRC field itself
	h.HeaderCRCValid = crc == h.CRC16

	return h, nil
}

// ThreadEntry describes one thread inside a record's thread table.
type ThreadEntry struct {
	Classification   Classification
	Format           Format
	Kind             ThreadKind
	CRC16            uint16
	UncompressedSize uint32
	CompressedSize   uint32

	// CRCValid is not computed by this package and is always false:
	// thread CRC coverage spans the payload bytes, not the 16-byte thread
	// entry itself, and CRC16 is exposed as metadata without validation.
	CRCValid bool
}

func parseThreadEntry(buf []byte) (ThreadEntry, error) {
	if len(buf) < threadEntrySize {
		return ThreadEntry{}, fmt.Errorf("%w: short thread entry (%d bytes)", ErrInvalidInput, len(buf))
	}
	var t ThreadEntry
	t.Classification = Classification(binary.LittleEndian.Uint16(buf[0:2]))
	t.Format = Format(binary.LittleEndian.Uint16(buf[2:4]))
	t.Kind = ThreadKind(binary.LittleEndian.Uint16(buf[4:6]))
	t.CRC16 = binary.LittleEndian.Uint16(buf[6:8])
	t.UncompressedSize = binary.LittleEndian.Uint32(buf[8:12])
	t.CompressedSize = binary.LittleEndian.Uint32(buf[12:16])
	return t, nil
}
