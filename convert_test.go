package avi2smk

import (
	"bytes"
	"io"
	"testing"

	"github.com/floriandotorg/avi2smk/avi"
)

// memWriteSeeker is a minimal in-memory io.WriteSeeker for exercising
// ConvertSMK2ToAVI without touching disk.
type memWriteSeeker struct {
	buf []byte
	pos int
}

func (m *memWriteSeeker) Write(p []byte) (int, error) {
	end := m.pos + len(p)
	if end > len(m.buf) {
		grown := make([]byte, end)
		copy(grown, m.buf)
		m.buf = grown
	}
	copy(m.buf[m.pos:end], p)
	m.pos = end
	return len(p), nil
}

func (m *memWriteSeeker) Seek(offset int64, whence int) (int64, error) {
	var base int
	switch whence {
	case io.SeekStart:
		base = 0
	case io.SeekCurrent:
		base = m.pos
	case io.SeekEnd:
		base = len(m.buf)
	}
	m.pos = base + int(offset)
	return int64(m.pos), nil
}

func buildSourceAVI(t *testing.T, width, height, numFrames int) []byte {
	t.Helper()
	mw := &memWriteSeeker{}
	w, err := avi.NewWriter(mw, width, height, 24, numFrames)
	if err != nil {
		t.Fatalf("avi.NewWriter: %v", err)
	}
	for i := 0; i < numFrames; i++ {
		frame := make([]byte, width*height*3)
		for n := range frame {
			frame[n] = byte(i*3 + n%7)
		}
		if err := w.EncodeFrame(frame); err != nil {
			t.Fatalf("EncodeFrame %d: %v", i, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	return mw.buf
}

func TestConvertAVIToSMK2ToAVIRoundTrip(t *testing.T) {
	t.Parallel()

	width, height, numFrames := 8, 8, 4
	aviBytes := buildSourceAVI(t, width, height, numFrames)

	var smkBuf bytes.Buffer
	var progressed []int
	if err := ConvertAVIToSMK2(bytes.NewReader(aviBytes), &smkBuf, func(n int) { progressed = append(progressed, n) }); err != nil {
		t.Fatalf("ConvertAVIToSMK2: %v", err)
	}
	if len(progressed) != numFrames {
		t.Fatalf("progress called %d times, want %d", len(progressed), numFrames)
	}

	mw := &memWriteSeeker{}
	if err := ConvertSMK2ToAVI(bytes.NewReader(smkBuf.Bytes()), mw, nil); err != nil {
		t.Fatalf("ConvertSMK2ToAVI: %v", err)
	}

	r, err := avi.NewReader(bytes.NewReader(mw.buf))
	if err != nil {
		t.Fatalf("avi.NewReader on round-tripped file: %v", err)
	}
	if r.Width() != width || r.Height() != height {
		t.Fatalf("dims = %dx%d, want %dx%d", r.Width(), r.Height(), width, height)
	}
	if r.NumFrames() != numFrames {
		t.Fatalf("NumFrames = %d, want %d", r.NumFrames(), numFrames)
	}
	for i := 0; i < numFrames; i++ {
		if _, err := r.NextFrame(); err != nil {
			t.Fatalf("NextFrame %d: %v", i, err)
		}
	}
}
