package smk2

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
)

// Header holds the fixed-layout fields of an SMK2 file, read and written
// entirely sequentially (the reference seeks backward only to skip
// padding this port instead consumes and discards inline).
type Header struct {
	Width, Height uint32
	NumFrames     uint32
	FrameRate     float64 // frames per second, resolved from the raw signed field
	TreesSize     uint32
	FrameSizes    []uint32 // padded per-frame payload byte counts
	FrameFlags    []byte   // low bit: frame carries a palette block
}

const (
	smkMagic        = "SMK2"
	smkAudioSlots   = 7
	smkMapSizeCount = 4
)

// resolveFrameRate converts the header's raw signed rate field into a
// frames-per-second value, per decoder.cpp: positive is milliseconds per
// frame (fps = 1000/raw), negative is hundred-microseconds per frame
// (fps = 100000/-raw), and zero is a literal 10 fps default.
func resolveFrameRate(raw int32) float64 {
	switch {
	case raw > 0:
		return 1000.0 / float64(raw)
	case raw < 0:
		return 100000.0 / float64(-raw)
	default:
		return 10
	}
}

// rawFrameRate is the inverse of resolveFrameRate's positive branch, per
// encoder.cpp's `1000 / _fps`.
func rawFrameRate(fps float64) int32 {
	return int32(1000.0 / fps)
}

func readU32(r io.Reader) (uint32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(buf[:]), nil
}

func writeU32(w io.Writer, v uint32) error {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	_, err := w.Write(buf[:])
	return err
}

func discard(r io.Reader, n int) error {
	_, err := io.CopyN(io.Discard, r, int64(n))
	return err
}

// parseHeader reads the fixed-layout SMK2 header: magic, dimensions,
// frame count/rate, flags (must be zero), 28 reserved bytes, trees_size,
// 48 more reserved bytes (the four map-size fields plus 7 audio rates
// plus one dummy word — bytes this decoder re-derives from the packed
// trees themselves and so only discards), the frame-size table, and the
// frame-flags table.
func parseHeader(r *bufio.Reader) (*Header, error) {
	magic := make([]byte, 4)
	if _, err := io.ReadFull(r, magic); err != nil {
		return nil, fmt.Errorf("smk2: read signature: %w", err)
	}
	if string(magic) != smkMagic {
		return nil, fmt.Errorf("%w: got %q", ErrBadSignature, magic)
	}

	h := &Header{}
	var err error
	if h.Width, err = readU32(r); err != nil {
		return nil, fmt.Errorf("smk2: read width: %w", err)
	}
	if h.Height, err = readU32(r); err != nil {
		return nil, fmt.Errorf("smk2: read height: %w", err)
	}
	if h.NumFrames, err = readU32(r); err != nil {
		return nil, fmt.Errorf("smk2: read frame count: %w", err)
	}

	rawRate, err := readU32(r)
	if err != nil {
		return nil, fmt.Errorf("smk2: read framerate: %w", err)
	}
	h.FrameRate = resolveFrameRate(int32(rawRate))

	flags, err := readU32(r)
	if err != nil {
		return nil, fmt.Errorf("smk2: read flags: %w", err)
	}
	if flags != 0 {
		return nil, fmt.Errorf("%w: header flags %#x", ErrUnsupportedFlag, flags)
	}

	if err := discard(r, 28); err != nil {
		return nil, fmt.Errorf("smk2: skip reserved header region: %w", err)
	}

	if h.TreesSize, err = readU32(r); err != nil {
		return nil, fmt.Errorf("smk2: read trees size: %w", err)
	}

	if err := discard(r, 48); err != nil {
		return nil, fmt.Errorf("smk2: skip map-size/audio-rate region: %w", err)
	}

	h.FrameSizes = make([]uint32, h.NumFrames)
	for i := range h.FrameSizes {
		if h.FrameSizes[i], err = readU32(r); err != nil {
			return nil, fmt.Errorf("smk2: read frame size %d: %w", i, err)
		}
	}

	h.FrameFlags = make([]byte, h.NumFrames)
	if _, err := io.ReadFull(r, h.FrameFlags); err != nil {
		return nil, fmt.Errorf("smk2: read frame flags: %w", err)
	}
	for i, flag := range h.FrameFlags {
		if flag&^0x01 != 0 {
			return nil, fmt.Errorf("%w: frame %d flag %#x (audio track)", ErrUnsupportedFlag, i, flag)
		}
	}

	if h.Width%4 != 0 || h.Height%4 != 0 {
		return nil, ErrBadDimension
	}

	return h, nil
}

// writeHeader emits the full 104-byte fixed header plus the per-frame
// size and flag tables, in the layout parseHeader reads. mapSizes holds
// (treeNodeCount*4)+12 for mmap, mclr, full, type in that order — kept
// for compatibility with canonical SMK2 readers even though this port's
// own decoder never consults them.
func writeHeader(w io.Writer, h *Header, mapSizes [smkMapSizeCount]uint32) error {
	if _, err := w.Write([]byte(smkMagic)); err != nil {
		return err
	}
	if err := writeU32(w, h.Width); err != nil {
		return err
	}
	if err := writeU32(w, h.Height); err != nil {
		return err
	}
	if err := writeU32(w, h.NumFrames); err != nil {
		return err
	}
	if err := writeU32(w, uint32(rawFrameRate(h.FrameRate))); err != nil {
		return err
	}
	if err := writeU32(w, 0); err != nil { // flags
		return err
	}
	for i := 0; i < smkAudioSlots; i++ {
		if err := writeU32(w, 0); err != nil {
			return err
		}
	}
	if err := writeU32(w, h.TreesSize); err != nil {
		return err
	}
	for _, size := range mapSizes {
		if err := writeU32(w, size); err != nil {
			return err
		}
	}
	for i := 0; i < smkAudioSlots; i++ {
		if err := writeU32(w, 0); err != nil {
			return err
		}
	}
	if err := writeU32(w, 0); err != nil { // dummy
		return err
	}
	for _, size := range h.FrameSizes {
		if err := writeU32(w, size); err != nil {
			return err
		}
	}
	if _, err := w.Write(h.FrameFlags); err != nil {
		return err
	}
	return nil
}
