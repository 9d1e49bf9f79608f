package nufx

import (
	"encoding/binary"
	"fmt"
	"io"
	"log/slog"
)

// decompressThread is the per-thread driver: it parses the per-block
// headers, orchestrates the RLE expander and LZW engine, and verifies the
// LZW/1 block CRC. Decompressed bytes are written to sink in stream order.
// The Dynamic LZW formats write one 4 KiB block at a time, except possibly
// the final write; an uncompressed thread is written as its stored bytes in
// a single write, followed by any zero padding in writes of up to 4 KiB.
func decompressThread(t ThreadEntry, payload []byte, sink io.Writer, logger *slog.Logger) error {
	switch t.Format {
	case FormatUncompressed:
		return decompressUncompressed(t, payload, sink)
	case FormatDynamicLZW1, FormatDynamicLZW2:
		return decompressDynamicLZW(t, payload, sink, logger)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, t.Format)
	}
}

func decompressUncompressed(t ThreadEntry, payload []byte, sink io.Writer) error {
	n := int(t.UncompressedSize)
	have := int(t.CompressedSize)
	if have > n {
		have = n
	}
	if have > len(payload) {
		have = len(payload)
	}
	if _, err := sink.Write(payload[:have]); err != nil {
		return err
	}
	if pad := n - have; pad > 0 {
		var zeros [4096]byte
		for pad > 0 {
			chunk := pad
			if chunk > len(zeros) {
				chunk = len(zeros)
			}
			if _, err := sink.Write(zeros[:chunk]); err != nil {
				return err
			}
			pad -= chunk
		}
	}
	return nil
}

func decompressDynamicLZW(t ThreadEntry, payload []byte, sink io.Writer, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	s := acquireScratch()
	defer releaseScratch(s)

	cur := 0
	readByte := func() (byte, error) {
		if cur >= len(payload) {
			return 0, io.ErrUnexpectedEOF
		}
		b := payload[cur]
		cur++
		return b, nil
	}
	readUint16LE := func() (uint16, error) {
		if cur+2 > len(payload) {
			return 0, io.ErrUnexpectedEOF
		}
		v := binary.LittleEndian.Uint16(payload[cur:])
		cur += 2
		return v, nil
	}

	var headerCRC uint16
	var crcAcc uint16
	verifyCRC := t.Format == FormatDynamicLZW1
	if verifyCRC {
		v, err := readUint16LE()
		if err != nil {
			return fmt.Errorf("reading LZW/1 thread CRC: %w", err)
		}
		headerCRC = v
	}
	if _, err := readByte(); err != nil { // volume number, unused
		return fmt.Errorf("reading LZW volume byte: %w", err)
	}
	escape, err := readByte()
	if err != nil {
		return fmt.Errorf("reading RLE escape byte: %w", err)
	}

	uncompRemaining := int(t.UncompressedSize)
	for uncompRemaining > 0 {
		var rleLen int
		var lzwUsed bool
		var lzwLength int
		hasLZWLength := false

		if t.Format == FormatDynamicLZW1 {
			rl, err := readUint16LE()
			if err != nil {
				return fmt.Errorf("reading LZW/1 block rle-len: %w", err)
			}
			rleLen = int(rl)
			flag, err := readByte()
			if err != nil {
				return fmt.Errorf("reading LZW/1 block lzw-used flag: %w", err)
			}
			if flag > 1 {
				return fmt.Errorf("%w: LZW/1 lzw-used flag %d", ErrCorruptedStream, flag)
			}
			lzwUsed = flag == 1
		} else {
			word, err := readUint16LE()
			if err != nil {
				return fmt.Errorf("reading LZW/2 block header: %w", err)
			}
			lzwUsed = word&0x8000 != 0
			rleLen = int(word & 0x1FFF)
			if lzwUsed {
				ll, err := readUint16LE()
				if err != nil {
					return fmt.Errorf("reading LZW/2 block lzw-length: %w", err)
				}
				lzwLength = int(ll)
				hasLZWLength = true
			}
		}

		rleUsed := rleLen != 4096
		writeLen := min(4096, uncompRemaining)

		switch {
		case lzwUsed:
			cr := newCodeReader(payload[cur:])
			n, err := s.lzw.decodeBlock(t.Format, cr, rleLen, s.lzwOut[:])
			if err != nil {
				return fmt.Errorf("%w: LZW block decode: %w", ErrCorruptedStream, err)
			}
			if n != rleLen {
				return fmt.Errorf("%w: LZW block produced %d bytes, wanted %d", ErrCorruptedStream, n, rleLen)
			}
			consumed := cr.pos
			cur += consumed
			if hasLZWLength && consumed != lzwLength-4 {
				return fmt.Errorf("%w: LZW/2 length mismatch: consumed %d, declared %d", ErrCorruptedStream, consumed, lzwLength-4)
			}
			if rleUsed {
				s.blockBuf = expandRLE(s.lzwOut[:rleLen], escape)
			} else {
				s.blockBuf = [4096]byte{}
				copy(s.blockBuf[:], s.lzwOut[:rleLen])
			}
		case rleUsed:
			if cur+rleLen > len(payload) {
				return fmt.Errorf("reading RLE block input: %w", io.ErrUnexpectedEOF)
			}
			s.blockBuf = expandRLE(payload[cur:cur+rleLen], escape)
			cur += rleLen
		default:
			if cur+4096 > len(payload) {
				return fmt.Errorf("reading raw block: %w", io.ErrUnexpectedEOF)
			}
			copy(s.blockBuf[:], payload[cur:cur+4096])
			cur += 4096
			if t.Format == FormatDynamicLZW2 {
				s.lzw.reset()
				s.lzw.resetFix = false
			}
		}

		if verifyCRC {
			crcAcc = crc16XModem(crcAcc, s.blockBuf[:])
		}

		if _, err := sink.Write(s.blockBuf[:writeLen]); err != nil {
			return err
		}
		uncompRemaining -= writeLen
	}

	if verifyCRC && crcAcc != headerCRC {
		return fmt.Errorf("%w: LZW/1 CRC mismatch: got %#04x want %#04x", ErrCorruptedStream, crcAcc, headerCRC)
	}
	logger.Debug("nufx: thread decompressed", "format", t.Format, "uncompressedSize", t.UncompressedSize)
	return nil
}
