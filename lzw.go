package nufx

import "fmt"

const (
	lzwClearCode  = 0x0100 // LZW/2 only
	lzwFirstEntry = 0x0101
	lzwMaxEntry   = 4096
	lzwTrieCap    = lzwMaxEntry - 256
)

// lzwEngine decodes one 4 KiB logical block of dynamic LZW at a time. It
// owns the trie (prefix/suffix tables) and output stack pooled in scratch.go.
//
// The string-reconstruction shape is the classic Welch LZW decompressor:
// a trie walk with a stack drained in reverse to undo the prefix chain,
// including the KwKwK special case (code == entry, the string about to be
// learned is the one needed right now), generalized here to a variable
// code width and the LZW/1-vs-LZW/2 table-lifetime split this format
// requires.
type lzwEngine struct {
	trieCh     [lzwTrieCap]byte
	triePrefix [lzwTrieCap]uint16
	stack      []byte

	entry    int
	old      int
	final    byte
	resetFix bool
}

func newLZWEngine() *lzwEngine {
	e := &lzwEngine{stack: make([]byte, 0, lzwTrieCap)}
	e.reset()
	return e
}

func (e *lzwEngine) reset() {
	e.entry = lzwFirstEntry
}

// decodeBlock decodes codes from cr into out[:expectedLen] and returns the
// number of bytes written. variant selects LZW/1 (table reset every block,
// no clear code) or LZW/2 (persistent table, explicit clear code, reset-fix
// carry between blocks).
func (e *lzwEngine) decodeBlock(variant Format, cr *codeReader, expectedLen int, out []byte) (int, error) {
	if variant == FormatDynamicLZW2 {
		if e.entry == lzwFirstEntry && !e.resetFix {
			e.reset()
		}
		e.resetFix = false
	} else {
		e.reset()
	}

	if expectedLen == 0 {
		return 0, nil
	}

	width, mask := widthForEntry(e.entry)
	code, err := cr.readCode(width, mask)
	if err != nil {
		return 0, err
	}
	if code > 255 {
		return 0, fmt.Errorf("%w: initial LZW symbol %d is not a literal", ErrCorruptedStream, code)
	}
	out[0] = byte(code)
	emitted := 1
	e.old, e.final = int(code), byte(code)

	needLiteral := false
	for emitted < expectedLen {
		width, mask = widthForEntry(e.entry)
		code, err = cr.readCode(width, mask)
		if err != nil {
			return emitted, err
		}

		if variant == FormatDynamicLZW2 && code == lzwClearCode {
			e.reset()
			needLiteral = true
			continue
		}

		if needLiteral {
			if code > 255 {
				return emitted, fmt.Errorf("%w: post-clear symbol %d is not a literal", ErrCorruptedStream, code)
			}
			out[emitted] = byte(code)
			emitted++
			e.old, e.final = int(code), byte(code)
			needLiteral = false
			if emitted == expectedLen {
				e.resetFix = true
				return emitted, nil
			}
			continue
		}

		incode := int(code)
		var ptr int
		switch {
		case incode == e.entry:
			e.stack = append(e.stack, e.final)
			ptr = e.old
		case incode > e.entry:
			return emitted, fmt.Errorf("%w: LZW code %d exceeds table entry %d", ErrCorruptedStream, incode, e.entry)
		default:
			ptr = incode
		}

		for ptr > 255 {
			e.stack = append(e.stack, e.trieCh[ptr-256])
			ptr = int(e.triePrefix[ptr-256])
		}
		e.final = byte(ptr)

		out[emitted] = e.final
		emitted++
		for i := len(e.stack) - 1; i >= 0 && emitted < expectedLen; i-- {
			out[emitted] = e.stack[i]
			emitted++
		}
		e.stack = e.stack[:0]

		if e.entry < lzwMaxEntry {
			e.trieCh[e.entry-256] = e.final
			e.triePrefix[e.entry-256] = uint16(e.old)
			e.entry++
		}
		e.old = incode
	}

	return emitted, nil
}
