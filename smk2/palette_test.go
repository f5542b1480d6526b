package smk2

import (
	"bufio"
	"bytes"
	"testing"
)

func TestPalmapIndexCeiling(t *testing.T) {
	t.Parallel()

	cases := []struct {
		val  byte
		want byte
	}{
		{0x00, 0},
		{0x01, 1},
		{0x04, 1},
		{0x05, 2},
		{0xFF, 63},
	}
	for _, c := range cases {
		got, err := palmapIndex(c.val)
		if err != nil {
			t.Fatalf("palmapIndex(%d): %v", c.val, err)
		}
		if got != c.want {
			t.Errorf("palmapIndex(%d) = %d, want %d", c.val, got, c.want)
		}
		if palmap[got] < c.val {
			t.Errorf("palmap[%d] = %d is below %d", got, palmap[got], c.val)
		}
	}
}

func TestWriteReadPaletteRoundTrip(t *testing.T) {
	t.Parallel()

	var want Palette
	for i := range want {
		want[i] = Color{R: byte(i), G: byte(255 - i), B: byte(i / 2)}
	}
	quantized, err := QuantizedPalette(want)
	if err != nil {
		t.Fatalf("QuantizedPalette: %v", err)
	}

	var buf bytes.Buffer
	if err := writeFramePalette(&buf, &want); err != nil {
		t.Fatalf("writeFramePalette: %v", err)
	}
	if buf.Len() != 772 {
		t.Fatalf("palette block length = %d, want 772", buf.Len())
	}

	var prev, got Palette
	if err := readPalette(bufio.NewReader(&buf), &prev, &got); err != nil {
		t.Fatalf("readPalette: %v", err)
	}
	if got != quantized {
		t.Fatalf("round-tripped palette does not match quantized source")
	}
}

func TestReadPaletteCopyOpcode(t *testing.T) {
	t.Parallel()

	var prev Palette
	prev[10] = Color{R: 1, G: 2, B: 3}
	prev[11] = Color{R: 4, G: 5, B: 6}

	// length byte = 1 (4 bytes in all), copy opcode (0x40 | count-1=1) then
	// source index 10: copies prev[10..11] into dst[0..1]; a one-entry skip
	// opcode fills the last byte.
	buf := bytes.NewBuffer([]byte{1, 0x41, 10, 0x80})
	var dst Palette
	if err := readPalette(bufio.NewReader(buf), &prev, &dst); err != nil {
		t.Fatalf("readPalette: %v", err)
	}
	if dst[0] != prev[10] || dst[1] != prev[11] {
		t.Fatalf("copy opcode did not copy prev[10:12] into dst[0:2]: got %v", dst[:2])
	}
}

func TestReadPaletteSkipOpcode(t *testing.T) {
	t.Parallel()

	var prev Palette
	// length byte = 1 (4 bytes), skip opcode (0x80 | count-1=4) skips 5
	// entries, then a terminal explicit-color opcode for entry 5.
	buf := bytes.NewBuffer([]byte{1, 0x84, 0x3F, 0x00, 0x00})
	var dst Palette
	if err := readPalette(bufio.NewReader(buf), &prev, &dst); err != nil {
		t.Fatalf("readPalette: %v", err)
	}
	if dst[5].R != palmap[0x3F] {
		t.Fatalf("entry 5 R = %d, want %d", dst[5].R, palmap[0x3F])
	}
}
