package nufx

// CRC-16/XMODEM: polynomial 0x1021, initial value 0, no final XOR, MSB-first.
// This is the integrity check ShrinkIt uses for LZW/1 block streams. The
// table below is the unreflected, MSB-first variant: the polynomial is
// applied to the top bit of the running value rather than the bottom one,
// unlike the more common reflected CRC-16/ARC construction.

var crc16XModemTable [256]uint16

func init() {
	const poly = 0x1021
	for i := range uint16(256) {
		c := i << 8
		for range 8 {
			if c&0x8000 != 0 {
				c = (c << 1) ^ poly
			} else {
				c <<= 1
			}
		}
		crc16XModemTable[i] = c
	}
}

// crc16XModem accumulates the XMODEM CRC-16 over buf starting from acc,
// returning the updated accumulator. Threading acc across calls lets the
// LZW/1 driver fold the CRC across every padded 4 KiB block of a thread.
func crc16XModem(acc uint16, buf []byte) uint16 {
	for _, b := range buf {
		acc = (acc << 8) ^ crc16XModemTable[byte(acc>>8)^b]
	}
	return acc
}
