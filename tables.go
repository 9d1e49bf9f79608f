package nufx

// Classification identifies the broad category of a thread within a record.
type Classification uint16

const (
	ClassMessage  Classification = 0x0000
	ClassControl  Classification = 0x0001
	ClassData     Classification = 0x0002
	ClassFileName Classification = 0x0003
)

func (c Classification) String() string {
	switch c {
	case ClassMessage:
		return "message"
	case ClassControl:
		return "control"
	case ClassData:
		return "data"
	case ClassFileName:
		return "filename"
	default:
		return "unknown-classification"
	}
}

// Format identifies the compression scheme used to pack a thread's payload.
type Format uint16

const (
	FormatUncompressed   Format = 0x0000
	FormatHuffmanSqueeze Format = 0x0001
	FormatDynamicLZW1    Format = 0x0002
	FormatDynamicLZW2    Format = 0x0003
	FormatUnix12Bit      Format = 0x0004
	FormatUnix16Bit      Format = 0x0005
)

func (f Format) String() string {
	switch f {
	case FormatUncompressed:
		return "uncompressed"
	case FormatHuffmanSqueeze:
		return "huffman-squeeze"
	case FormatDynamicLZW1:
		return "dynamic-lzw/1"
	case FormatDynamicLZW2:
		return "dynamic-lzw/2"
	case FormatUnix12Bit:
		return "unix-12bit-compress"
	case FormatUnix16Bit:
		return "unix-16bit-compress"
	default:
		return "unknown-format"
	}
}

// supported reports whether this package can decompress the format.
func (f Format) supported() bool {
	switch f {
	case FormatUncompressed, FormatDynamicLZW1, FormatDynamicLZW2:
		return true
	default:
		return false
	}
}

// ThreadKind is the classification-specific subtype of a thread. Only the
// Data classification's kinds are acted on by this reader; the others are
// carried for completeness.
type ThreadKind uint16

const (
	KindDataFork  ThreadKind = 0 // classification Data
	KindDiskImage ThreadKind = 1 // classification Data
	KindRsrcFork  ThreadKind = 2 // classification Data
	KindFilename  ThreadKind = 0 // classification FileName
)

func (k ThreadKind) String() string {
	switch k {
	case KindDataFork:
		return "data-fork" // also filename, depending on classification
	case KindDiskImage:
		return "disk-image"
	case KindRsrcFork:
		return "rsrc-fork"
	default:
		return "unknown-kind"
	}
}

// FilesystemID identifies the originating filesystem of a record, per the
// NuFX specification's filesystem_id field.
type FilesystemID uint16

const (
	FSUnknown      FilesystemID = 0
	FSProDOS       FilesystemID = 1
	FSDOS33        FilesystemID = 2
	FSDOS32        FilesystemID = 3
	FSPascal       FilesystemID = 4
	FSMacHFS       FilesystemID = 5
	FSMacMFS       FilesystemID = 6
	FSLisa         FilesystemID = 7
	FSCPM          FilesystemID = 8
	FSMSDOS        FilesystemID = 10
	FSHighSierra   FilesystemID = 11
	FSISO9660      FilesystemID = 12
	FSAppleShare   FilesystemID = 13
)

// StorageType is the GS/OS storage-type-or-block-size word of a record
// header. This reader does not branch on it, but exposes the constants so
// callers can make their own decisions about directory-type records.
type StorageType uint16

const (
	StorageSeedling        StorageType = 0x0001
	StorageSapling         StorageType = 0x0002
	StorageTree            StorageType = 0x0003
	StoragePascalVolume    StorageType = 0x0004
	StorageExtended        StorageType = 0x0005
	StorageDirectory       StorageType = 0x000D
	StorageSubdirectory    StorageType = 0x000E
	StorageVolumeDirectory StorageType = 0x000F
)

// AccessFlags is the 32-bit ProDOS/GS-OS access word.
type AccessFlags uint32

const (
	AccessReadEnable    AccessFlags = 0x01
	AccessWriteEnable   AccessFlags = 0x02
	AccessInvisible     AccessFlags = 0x04
	AccessBackupNeeded  AccessFlags = 0x20
	AccessRenameEnable  AccessFlags = 0x40
	AccessDestroyEnable AccessFlags = 0x80
)
