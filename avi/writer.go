package avi

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// Writer emits a RIFF-AVI container holding a single uncompressed 24-bit
// BGR video stream. The constructor writes the whole header chain up
// front, matching the reference's write-as-you-go approach; Close patches
// the final RIFF chunk size, so w must support seeking back to the start.
type Writer struct {
	w                        io.WriteSeeker
	width, height            uint32
	rowPad                   int
	totalFrameSize           uint32
	framesWritten, numFrames int
}

// NewWriter writes the RIFF/hdrl/strl/movi header chain for a width x
// height, fps frames-per-second, numFrames-frame video and returns a
// Writer ready to accept that many EncodeFrame calls. Width must be
// divisible by 4.
func NewWriter(w io.WriteSeeker, width, height int, fps float64, numFrames int) (*Writer, error) {
	if width <= 0 || height <= 0 || numFrames <= 0 || fps <= 0 {
		return nil, ErrInvalidArgument
	}
	if width%4 != 0 {
		return nil, ErrBadDimension
	}

	rowPad := (4 - (width*3)%4) % 4
	totalFrameSize := uint32((width*3 + rowPad) * height)

	// fps is carried as a scale/rate pair rather than the reference's
	// bare integer rate, so non-integral frame rates (NTSC's 29.97, for
	// instance) still round-trip to within 1ms/frame.
	const scale = 1000
	rate := uint32(math.Round(fps * scale))
	microSecPerFrame := uint32(math.Round(1_000_000 * scale / float64(rate)))

	bw := &riffCounter{w: w}

	writeTag(bw, "RIFF")
	writeU32(bw, 0) // patched by Close
	writeTag(bw, "AVI ")
	writeTag(bw, "LIST")
	writeU32(bw, 4+64+124) // hdrl LIST size
	writeTag(bw, "hdrl")
	writeTag(bw, "avih")
	writeU32(bw, 56) // avih chunk size
	writeU32(bw, microSecPerFrame)
	writeU32(bw, totalFrameSize) // max bytes/sec
	writeU32(bw, 1)              // padding granule
	writeU32(bw, 0)               // flags
	writeU32(bw, uint32(numFrames))
	writeU32(bw, 0) // initial frames
	writeU32(bw, 1) // number of streams
	writeU32(bw, totalFrameSize)
	writeU32(bw, uint32(width))
	writeU32(bw, uint32(height))
	writeZeros(bw, 16) // reserved
	writeTag(bw, "LIST")
	writeU32(bw, 116) // strl LIST size
	writeTag(bw, "strl")
	writeTag(bw, "strh")
	writeU32(bw, 56)
	writeTag(bw, "vids")
	writeU32(bw, dibHandler)
	writeU32(bw, 0)   // flags
	writeU16(bw, 0)   // priority
	writeU16(bw, 0)   // language
	writeU32(bw, 0)   // initial frames
	writeU32(bw, scale)
	writeU32(bw, rate)
	writeU32(bw, 0) // start
	writeU32(bw, uint32(numFrames))
	writeU32(bw, totalFrameSize) // suggested buffer size
	writeU32(bw, 0)              // quality
	writeU32(bw, totalFrameSize) // sample size
	writeU32(bw, 0)              // rcFrame left, top
	writeU32(bw, 0)              // rcFrame right, bottom
	writeTag(bw, "strf")
	writeU32(bw, 40) // strf chunk size
	writeU32(bw, 40) // biSize
	writeU32(bw, uint32(width))
	writeI32(bw, -int32(height)) // top-down row order
	writeU16(bw, 1)              // planes
	writeU16(bw, 24)             // bit count
	writeU32(bw, 0)              // no compression
	writeU32(bw, totalFrameSize) // size image
	writeU32(bw, 0)              // x pels
	writeU32(bw, 0)              // y pels
	writeU32(bw, 0)              // colors used
	writeU32(bw, 0)              // important colors
	writeTag(bw, "LIST")
	writeU32(bw, uint32(numFrames)*(totalFrameSize+8)+4) // movi LIST size
	writeTag(bw, "movi")

	if bw.err != nil {
		return nil, fmt.Errorf("avi: write header: %w", bw.err)
	}

	return &Writer{
		w: w, width: uint32(width), height: uint32(height),
		rowPad: rowPad, totalFrameSize: totalFrameSize, numFrames: numFrames,
	}, nil
}

// EncodeFrame appends one width*height*3-byte BGR frame as a "00dc" chunk.
func (wr *Writer) EncodeFrame(frame []byte) error {
	want := int(wr.width) * int(wr.height) * 3
	if len(frame) != want {
		return fmt.Errorf("%w: frame is %d bytes, want %d", ErrInvalidArgument, len(frame), want)
	}
	if wr.framesWritten >= wr.numFrames {
		return fmt.Errorf("%w: encoder declared %d frames, got one more", ErrInvalidArgument, wr.numFrames)
	}

	bw := &riffCounter{w: wr.w}
	writeTag(bw, "00dc")
	writeU32(bw, wr.totalFrameSize)

	rowBytes := int(wr.width) * 3
	pad := make([]byte, wr.rowPad)
	for row := 0; row < int(wr.height); row++ {
		start := row * rowBytes
		if bw.err == nil {
			_, bw.err = wr.w.Write(frame[start : start+rowBytes])
		}
		if wr.rowPad > 0 && bw.err == nil {
			_, bw.err = wr.w.Write(pad)
		}
	}
	if bw.err != nil {
		return fmt.Errorf("avi: write frame %d: %w", wr.framesWritten, bw.err)
	}

	wr.framesWritten++
	return nil
}

// Close patches the RIFF chunk's size field with the file's final length.
// It does not close the underlying writer.
func (wr *Writer) Close() error {
	if wr.framesWritten != wr.numFrames {
		return fmt.Errorf("%w: wrote %d of %d declared frames", ErrInvalidArgument, wr.framesWritten, wr.numFrames)
	}

	size, err := wr.w.Seek(0, io.SeekCurrent)
	if err != nil {
		return fmt.Errorf("avi: seek to end: %w", err)
	}
	if _, err := wr.w.Seek(4, io.SeekStart); err != nil {
		return fmt.Errorf("avi: seek to RIFF size field: %w", err)
	}
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], uint32(size)-8)
	if _, err := wr.w.Write(buf[:]); err != nil {
		return fmt.Errorf("avi: patch RIFF size: %w", err)
	}
	if _, err := wr.w.Seek(size, io.SeekStart); err != nil {
		return fmt.Errorf("avi: seek back to end: %w", err)
	}
	return nil
}

// riffCounter collects the first error from a run of unconditional writes
// so NewWriter's long, fixed header sequence can read as a flat list of
// field writes instead of an error check after every one.
type riffCounter struct {
	w   io.Writer
	err error
}

func writeTag(bw *riffCounter, tag string) {
	if bw.err != nil {
		return
	}
	_, bw.err = bw.w.Write([]byte(tag))
}

func writeZeros(bw *riffCounter, n int) {
	if bw.err != nil {
		return
	}
	_, bw.err = bw.w.Write(make([]byte, n))
}

func writeU32(bw *riffCounter, v uint32) {
	if bw.err != nil {
		return
	}
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	_, bw.err = bw.w.Write(buf[:])
}

func writeI32(bw *riffCounter, v int32) {
	writeU32(bw, uint32(v))
}

func writeU16(bw *riffCounter, v uint16) {
	if bw.err != nil {
		return
	}
	var buf [2]byte
	binary.LittleEndian.PutUint16(buf[:], v)
	_, bw.err = bw.w.Write(buf[:])
}
