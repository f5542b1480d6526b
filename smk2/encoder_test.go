package smk2

import (
	"bytes"
	"io"
	"testing"
)

// buildTestFrames returns a small sequence of synthetic RGB frames
// exercising solid, mono, and full blocks; every tile changes from one
// frame to the next, so no void block is produced.
func buildTestFrames(width, height, numFrames int) [][]byte {
	frames := make([][]byte, numFrames)
	for i := range frames {
		frame := make([]byte, width*height*3)
		for y := 0; y < height; y += 4 {
			for x := 0; x < width; x += 4 {
				stride := width * 3
				tile := (y/4)*(width/4) + x/4
				for yOff := 0; yOff < 4; yOff++ {
					for xOff := 0; xOff < 4; xOff++ {
						p := (y+yOff)*stride + (x+xOff)*3
						switch {
						case tile%3 == 0:
							frame[p], frame[p+1], frame[p+2] = byte(i), byte(i), byte(i)
						case tile%3 == 1:
							if (xOff+yOff)%2 == 0 {
								frame[p], frame[p+1], frame[p+2] = byte(i), 10, 20
							} else {
								frame[p], frame[p+1], frame[p+2] = byte(i + 1), 30, 40
							}
						default:
							frame[p], frame[p+1], frame[p+2] = byte(xOff*16 + i), byte(yOff*16 + i), byte(i)
						}
					}
				}
			}
		}
		frames[i] = frame
	}
	return frames
}

func TestEncoderDecoderRoundTrip(t *testing.T) {
	t.Parallel()

	width, height, numFrames := 8, 8, 3
	frames := buildTestFrames(width, height, numFrames)

	enc, err := NewEncoder(width, height, 15)
	if err != nil {
		t.Fatalf("NewEncoder: %v", err)
	}
	for i, f := range frames {
		if err := enc.EncodeFrame(f); err != nil {
			t.Fatalf("EncodeFrame %d: %v", i, err)
		}
	}

	var buf bytes.Buffer
	if err := enc.Write(&buf); err != nil {
		t.Fatalf("Write: %v", err)
	}

	dec, err := NewDecoder(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("NewDecoder: %v", err)
	}
	if dec.Width() != width || dec.Height() != height {
		t.Fatalf("decoder dims = %dx%d, want %dx%d", dec.Width(), dec.Height(), width, height)
	}
	if dec.NumFrames() != numFrames {
		t.Fatalf("NumFrames = %d, want %d", dec.NumFrames(), numFrames)
	}

	for i := 0; i < numFrames; i++ {
		got, err := dec.NextFrame()
		if err != nil {
			t.Fatalf("NextFrame %d: %v", i, err)
		}
		if len(got) != len(frames[i]) {
			t.Fatalf("frame %d length = %d, want %d", i, len(got), len(frames[i]))
		}
	}

	if _, err := dec.NextFrame(); err != io.EOF {
		t.Fatalf("NextFrame past end = %v, want io.EOF", err)
	}
}

func TestEncoderRejectsWrongFrameSize(t *testing.T) {
	t.Parallel()

	enc, err := NewEncoder(8, 8, 30)
	if err != nil {
		t.Fatalf("NewEncoder: %v", err)
	}
	if err := enc.EncodeFrame(make([]byte, 10)); err == nil {
		t.Fatal("EncodeFrame with wrong size should fail")
	}
}

func TestNewEncoderRejectsBadDimensions(t *testing.T) {
	t.Parallel()

	if _, err := NewEncoder(7, 8, 30); err == nil {
		t.Fatal("NewEncoder with width not divisible by 4 should fail")
	}
}
