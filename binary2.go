package nufx

import "fmt"

const binary2BlockSize = 128

// BinaryIIHeader is the optional 128-byte envelope some transport paths
// (bulletin-board downloads, tape images) wrap around a NuFX archive. When
// present, the NuFX master header starts immediately after this block.
// Every field here is exposed read-only: the reader never uses them to
// locate the archive body, only detectBinaryII's signature check does that.
type BinaryIIHeader struct {
	AccessFlags   AccessFlags
	FileType      uint8
	AuxType       uint16
	StorageType   uint16
	FileSize      uint32 // in 512-byte ProDOS blocks
	EOF           uint32
	Created       DateTime
	Modified      DateTime
	FilesToFollow uint8
	OSType        uint8
	NativeFileType uint16
	Filename      string
}

var binary2Signature = [3]byte{0x0A, 0x47, 0x4C}

// detectBinaryII reports whether buf (the first 128+ bytes of the source)
// carries a Binary II envelope, per the fixed signature byte at offset 0
// and id byte 0x02 at offset 0x12.
func detectBinaryII(buf []byte) bool {
	if len(buf) < binary2BlockSize {
		return false
	}
	return [3]byte(buf[0:3]) == binary2Signature && buf[0x12] == 0x02
}

func parseBinaryII(buf []byte) (BinaryIIHeader, error) {
	if len(buf) < binary2BlockSize {
		return BinaryIIHeader{}, fmt.Errorf("%w: short Binary II header (%d bytes)", ErrInvalidInput, len(buf))
	}
	if !detectBinaryII(buf) {
		return BinaryIIHeader{}, fmt.Errorf("%w: bad Binary II signature", ErrInvalidInput)
	}

	nameLen := int(buf[0x17])
	if nameLen > 64 {
		nameLen = 64
	}

	var h BinaryIIHeader
	h.AccessFlags = AccessFlags(buf[0x02])
	h.FileType = buf[0x03]
	h.AuxType = uint16(buf[0x04]) | uint16(buf[0x05])<<8
	h.StorageType = uint16(buf[0x06]) | uint16(buf[0x07])<<8
	h.FileSize = uint32(buf[0x08]) | uint32(buf[0x09])<<8
	h.Filename = string(buf[0x18 : 0x18+nameLen])
	h.EOF = uint32(buf[0x21]) | uint32(buf[0x22])<<8 | uint32(buf[0x23])<<16
	h.Created = parseDateTime(buf[0x24:0x2C])
	h.Modified = parseDateTime(buf[0x2C:0x34])
	h.FilesToFollow = buf[0x79]
	h.OSType = buf[0x62]
	h.NativeFileType = uint16(buf[0x65]) | uint16(buf[0x66])<<8

	return h, nil
}
