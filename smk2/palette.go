package smk2

import (
	"bufio"
	"fmt"
	"io"
)

// Color is one RGB palette entry.
type Color struct {
	R, G, B byte
}

// Palette is the ordered 256-entry color table used to resolve a frame's
// paletted pixel indices. The zero value is the initial state before any
// frame has carried a palette block.
type Palette [256]Color

// palmap is the fixed 64-entry 6-bit-to-8-bit channel expansion table:
// 16 entries per quarter of the 0..255 range, each quarter incrementing
// by 4 except for a one-count discontinuity at the quarter boundary.
var palmap = [64]byte{
	0x00, 0x04, 0x08, 0x0C, 0x10, 0x14, 0x18, 0x1C,
	0x20, 0x24, 0x28, 0x2C, 0x30, 0x34, 0x38, 0x3C,
	0x41, 0x45, 0x49, 0x4D, 0x51, 0x55, 0x59, 0x5D,
	0x61, 0x65, 0x69, 0x6D, 0x71, 0x75, 0x79, 0x7D,
	0x82, 0x86, 0x8A, 0x8E, 0x92, 0x96, 0x9A, 0x9E,
	0xA2, 0xA6, 0xAA, 0xAE, 0xB2, 0xB6, 0xBA, 0xBE,
	0xC3, 0xC7, 0xCB, 0xCF, 0xD3, 0xD7, 0xDB, 0xDF,
	0xE3, 0xE7, 0xEB, 0xEF, 0xF3, 0xF7, 0xFB, 0xFF,
}

// palmapIndex returns the smallest palmap index whose value is >= val,
// the ceiling quantization the encoder uses for every channel.
func palmapIndex(val byte) (byte, error) {
	for n, v := range palmap {
		if v >= val {
			return byte(n), nil
		}
	}
	return 0, fmt.Errorf("%w: channel value %d exceeds palmap", ErrPaletteOverflow, val)
}

// readPalette decodes a palette block in place: decode mutates dst (the
// frame's live palette) while reading entries relative to prev, the
// palette as it stood before this frame (the copy opcode's source).
// The whole block, length byte included, is L*4 bytes, where L is the
// leading length byte; the reader trusts it and never recomputes it.
func readPalette(r *bufio.Reader, prev *Palette, dst *Palette) error {
	lengthByte, err := r.ReadByte()
	if err != nil {
		return fmt.Errorf("smk2: read palette length: %w", err)
	}
	remaining := int(lengthByte)*4 - 1

	readByte := func() (byte, error) {
		b, err := r.ReadByte()
		if err != nil {
			return 0, fmt.Errorf("smk2: read palette opcode: %w", err)
		}
		remaining--
		return b, nil
	}

	n := 0
	for remaining > 0 {
		block, err := readByte()
		if err != nil {
			return err
		}

		switch {
		case block&0x80 != 0:
			n += int(block&0x7F) + 1
		case block&0x40 != 0:
			count := int(block&0x3F) + 1
			s, err := readByte()
			if err != nil {
				return err
			}
			for i := 0; i < count; i++ {
				if n+i < 256 && int(s)+i < 256 {
					dst[n+i] = prev[int(s)+i]
				}
			}
			n += count
		default:
			g, err := readByte()
			if err != nil {
				return err
			}
			b, err := readByte()
			if err != nil {
				return err
			}
			if n < 256 {
				dst[n] = Color{
					R: palmap[block&0x3F],
					G: palmap[g&0x3F],
					B: palmap[b&0x3F],
				}
			}
			n++
		}
	}
	return nil
}

// writeFramePalette emits p as the canonical full-explicit form the reference
// encoder always produces: a length byte of 193 (= ceil((1+3*256)/4)),
// 256 explicit RGB triples each channel ceiling-quantized to palmap, and
// 3 zero pad bytes, for a total of 772 = 193*4 bytes.
func writeFramePalette(w io.Writer, p *Palette) error {
	buf := make([]byte, 0, 772)
	buf = append(buf, 193)
	for _, c := range p {
		r, err := palmapIndex(c.R)
		if err != nil {
			return err
		}
		g, err := palmapIndex(c.G)
		if err != nil {
			return err
		}
		b, err := palmapIndex(c.B)
		if err != nil {
			return err
		}
		buf = append(buf, r, g, b)
	}
	buf = append(buf, 0, 0, 0)
	_, err := w.Write(buf)
	return err
}

// QuantizedPalette returns p with every channel replaced by its
// ceiling-quantized palmap value, the lossy transform
// writeFramePalette applies; callers composing a palette from raw frame colors can use
// this to predict exactly what a decode-after-encode round trip yields.
func QuantizedPalette(p Palette) (Palette, error) {
	var out Palette
	for i, c := range p {
		r, err := palmapIndex(c.R)
		if err != nil {
			return out, err
		}
		g, err := palmapIndex(c.G)
		if err != nil {
			return out, err
		}
		b, err := palmapIndex(c.B)
		if err != nil {
			return out, err
		}
		out[i] = Color{R: palmap[r], G: palmap[g], B: palmap[b]}
	}
	return out, nil
}
