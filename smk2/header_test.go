package smk2

import (
	"bufio"
	"bytes"
	"testing"
)

func TestResolveFrameRateBranches(t *testing.T) {
	t.Parallel()

	cases := []struct {
		raw  int32
		want float64
	}{
		{100, 10},    // 1000/100 = 10 fps
		{0, 10},      // default 10 fps
		{-1000, 100}, // 100000/1000 = 100 fps
	}
	for _, c := range cases {
		got := resolveFrameRate(c.raw)
		if got != c.want {
			t.Errorf("resolveFrameRate(%d) = %v, want %v", c.raw, got, c.want)
		}
	}
}

func TestHeaderRoundTrip(t *testing.T) {
	t.Parallel()

	h := &Header{
		Width: 8, Height: 4,
		NumFrames:  2,
		FrameRate:  25,
		TreesSize:  12,
		FrameSizes: []uint32{100, 50},
		FrameFlags: []byte{1, 0},
	}
	mapSizes := [smkMapSizeCount]uint32{16, 20, 24, 28}

	var buf bytes.Buffer
	if err := writeHeader(&buf, h, mapSizes); err != nil {
		t.Fatalf("writeHeader: %v", err)
	}
	buf.Write([]byte{0xAA, 0xBB, 0xCC, 0xDD, 0xEE, 0xFF, 0x11, 0x22, 0x33, 0x44, 0x55, 0x66}) // tree payload stand-in

	got, err := parseHeader(bufio.NewReader(&buf))
	if err != nil {
		t.Fatalf("parseHeader: %v", err)
	}
	if got.Width != h.Width || got.Height != h.Height || got.NumFrames != h.NumFrames {
		t.Fatalf("dimensions/frame count mismatch: got %+v", got)
	}
	if got.FrameRate != h.FrameRate {
		t.Fatalf("FrameRate = %v, want %v", got.FrameRate, h.FrameRate)
	}
	if got.TreesSize != h.TreesSize {
		t.Fatalf("TreesSize = %d, want %d", got.TreesSize, h.TreesSize)
	}
	if len(got.FrameSizes) != len(h.FrameSizes) || got.FrameSizes[0] != h.FrameSizes[0] || got.FrameSizes[1] != h.FrameSizes[1] {
		t.Fatalf("FrameSizes = %v, want %v", got.FrameSizes, h.FrameSizes)
	}
	if len(got.FrameFlags) != len(h.FrameFlags) || got.FrameFlags[0] != h.FrameFlags[0] {
		t.Fatalf("FrameFlags = %v, want %v", got.FrameFlags, h.FrameFlags)
	}
}

func TestParseHeaderBadSignature(t *testing.T) {
	t.Parallel()

	buf := bytes.NewBufferString("NOPE")
	if _, err := parseHeader(bufio.NewReader(buf)); err == nil {
		t.Fatal("parseHeader with bad signature should fail")
	}
}

func TestParseHeaderBadDimension(t *testing.T) {
	t.Parallel()

	h := &Header{Width: 5, Height: 4, NumFrames: 0, FrameRate: 10, FrameSizes: nil, FrameFlags: nil}
	var buf bytes.Buffer
	if err := writeHeader(&buf, h, [smkMapSizeCount]uint32{}); err != nil {
		t.Fatalf("writeHeader: %v", err)
	}
	if _, err := parseHeader(bufio.NewReader(&buf)); err == nil {
		t.Fatal("parseHeader with width not divisible by 4 should fail")
	}
}
