package nufx

import "errors"

// Error taxonomy. Callers should match with errors.Is; failures in these
// categories wrap one of these with fmt.Errorf("...: %w", ...) for context.
// A read that runs past the end of the source, or past the end of a thread's
// payload outside an LZW block, reports io.ErrUnexpectedEOF (wrapped with
// context) rather than one of these.
var (
	// ErrInvalidInput covers a bad signature, bad Binary II id byte, short
	// buffer, attributes-count below the header-block minimum, or a
	// master version greater than 2.
	ErrInvalidInput = errors.New("nufx: invalid input")

	// ErrOutOfRange covers an out-of-range date field, a malformed
	// option-list buffer size, or a missing weekday.
	ErrOutOfRange = errors.New("nufx: value out of range")

	// ErrCorruptedStream covers an LZW/1 CRC mismatch, an LZW/2 length
	// mismatch, an invalid initial LZW symbol, or an LZW code above the
	// current table entry.
	ErrCorruptedStream = errors.New("nufx: corrupted stream")

	// ErrUnsupportedFormat covers Huffman Squeeze, Unix 12-bit compress,
	// Unix 16-bit compress, and any unrecognized format word.
	ErrUnsupportedFormat = errors.New("nufx: unsupported thread format")
)
