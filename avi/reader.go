package avi

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
)

// Reader walks a RIFF-AVI container holding a single uncompressed 24-bit
// BGR video stream and yields raw BGR frame buffers in the row order the
// container stores them, without any row reordering — callers get the
// same byte layout the container carries, matching what Writer consumes.
type Reader struct {
	r             *bufio.Reader
	width, height uint32
	numFrames     uint32
	fps           float64
	frame         []byte
	current       int
}

// NewReader parses the RIFF/hdrl/strl chain up to the movi list and
// validates the video stream is a single, uncompressed, 24-bit-per-pixel
// DIB track whose width is divisible by 4.
func NewReader(r io.Reader) (*Reader, error) {
	br := bufio.NewReader(r)

	if err := checkSignature(br, "RIFF"); err != nil {
		return nil, err
	}
	if err := discard(br, 4); err != nil { // overall RIFF size, recomputed by Writer on its own output
		return nil, err
	}
	if err := checkSignature(br, "AVI "); err != nil {
		return nil, err
	}
	if err := checkSignature(br, "LIST"); err != nil {
		return nil, err
	}
	if err := discard(br, 4); err != nil { // hdrl LIST size
		return nil, err
	}
	if err := checkSignature(br, "hdrl"); err != nil {
		return nil, err
	}
	if err := checkSignature(br, "avih"); err != nil {
		return nil, err
	}
	if err := discard(br, 4); err != nil { // avih chunk size
		return nil, err
	}

	microSecPerFrame, err := readU32(br)
	if err != nil {
		return nil, fmt.Errorf("avi: read microseconds per frame: %w", err)
	}
	if err := discard(br, 12); err != nil { // max bytes/sec, padding granule, flags
		return nil, err
	}
	numFrames, err := readU32(br)
	if err != nil {
		return nil, fmt.Errorf("avi: read frame count: %w", err)
	}
	if err := discard(br, 4); err != nil { // initial frames
		return nil, err
	}
	streams, err := readU32(br)
	if err != nil {
		return nil, fmt.Errorf("avi: read stream count: %w", err)
	}
	if streams != 1 {
		return nil, fmt.Errorf("%w: %d streams", ErrUnsupportedFormat, streams)
	}
	if err := discard(br, 4); err != nil { // suggested buffer size
		return nil, err
	}
	width, err := readU32(br)
	if err != nil {
		return nil, fmt.Errorf("avi: read width: %w", err)
	}
	height, err := readU32(br)
	if err != nil {
		return nil, fmt.Errorf("avi: read height: %w", err)
	}
	if err := discard(br, 16); err != nil { // reserved
		return nil, err
	}

	if err := checkSignature(br, "LIST"); err != nil {
		return nil, err
	}
	if err := discard(br, 4); err != nil { // strl LIST size
		return nil, err
	}
	if err := checkSignature(br, "strl"); err != nil {
		return nil, err
	}
	if err := checkSignature(br, "strh"); err != nil {
		return nil, err
	}
	if err := discard(br, 4); err != nil { // strh chunk size
		return nil, err
	}
	if err := checkSignature(br, "vids"); err != nil {
		return nil, err
	}
	handler, err := readU32(br)
	if err != nil {
		return nil, fmt.Errorf("avi: read stream handler: %w", err)
	}
	if handler != 0 && handler != dibHandler {
		return nil, fmt.Errorf("%w: stream handler %#x", ErrUnsupportedFormat, handler)
	}
	if err := discard(br, 48); err != nil { // strh tail: flags through rcFrame
		return nil, err
	}

	if err := checkSignature(br, "strf"); err != nil {
		return nil, err
	}
	if err := discard(br, 18); err != nil { // strf size, biSize, biWidth, biHeight, planes
		return nil, err
	}
	bitsPerPixel, err := readU16(br)
	if err != nil {
		return nil, fmt.Errorf("avi: read bit depth: %w", err)
	}
	if bitsPerPixel != 24 {
		return nil, fmt.Errorf("%w: %d bits per pixel", ErrUnsupportedFormat, bitsPerPixel)
	}
	compression, err := readU32(br)
	if err != nil {
		return nil, fmt.Errorf("avi: read compression type: %w", err)
	}
	if compression != 0 {
		return nil, fmt.Errorf("%w: compression type %#x", ErrUnsupportedFormat, compression)
	}
	if err := discard(br, 20); err != nil { // sizeImage, xPels, yPels, colorsUsed, importantColors
		return nil, err
	}

	if err := skipToMovi(br); err != nil {
		return nil, err
	}

	if width%4 != 0 {
		return nil, ErrBadDimension
	}

	return &Reader{
		r: br, width: width, height: height, numFrames: numFrames,
		fps:   1_000_000 / float64(microSecPerFrame),
		frame: make([]byte, width*height*3),
	}, nil
}

// dibHandler is the "DIB " FOURCC a stream header's handler field may
// carry to explicitly name the uncompressed-DIB codec; some writers
// instead leave it zero, meaning "no specific codec", so both are
// accepted.
var dibHandler = binary.LittleEndian.Uint32([]byte("DIB "))

// skipToMovi consumes zero or more JUNK chunks and LIST chunks (typically
// an INFO list) until it finds the "movi" LIST, leaving the reader
// positioned right after the "movi" tag, ready for the first frame chunk.
// Real-world AVI files commonly interleave JUNK padding and metadata LIST
// chunks here; this walk tolerates any of them rather than expecting one
// fixed arrangement.
func skipToMovi(r *bufio.Reader) error {
	for {
		tag := make([]byte, 4)
		if _, err := io.ReadFull(r, tag); err != nil {
			return fmt.Errorf("avi: read chunk tag before movi list: %w", err)
		}
		switch string(tag) {
		case "JUNK":
			size, err := readU32(r)
			if err != nil {
				return fmt.Errorf("avi: read JUNK chunk size: %w", err)
			}
			if err := discard(r, int(size)); err != nil {
				return fmt.Errorf("avi: skip JUNK chunk: %w", err)
			}
		case "LIST":
			size, err := readU32(r)
			if err != nil {
				return fmt.Errorf("avi: read LIST chunk size: %w", err)
			}
			listType := make([]byte, 4)
			if _, err := io.ReadFull(r, listType); err != nil {
				return fmt.Errorf("avi: read LIST type: %w", err)
			}
			if string(listType) == "movi" {
				return nil
			}
			if err := discard(r, int(size)-4); err != nil {
				return fmt.Errorf("avi: skip %q list: %w", listType, err)
			}
		default:
			return fmt.Errorf("%w: %q before movi list", ErrBadSignature, tag)
		}
	}
}

// Width, Height, FPS, and NumFrames satisfy the FrameSource accessors.
func (r *Reader) Width() int     { return int(r.width) }
func (r *Reader) Height() int    { return int(r.height) }
func (r *Reader) FPS() float64   { return r.fps }
func (r *Reader) NumFrames() int { return int(r.numFrames) }

// NextFrame reads the next "00dc" chunk and returns its BGR pixel data.
// It returns io.EOF once every frame declared in the header has been
// read. The returned slice is a fresh copy, safe to retain across calls.
func (r *Reader) NextFrame() ([]byte, error) {
	if r.current >= int(r.numFrames) {
		return nil, io.EOF
	}

	if err := checkSignature(r.r, "00dc"); err != nil {
		return nil, err
	}
	size, err := readU32(r.r)
	if err != nil {
		return nil, fmt.Errorf("avi: read frame %d size: %w", r.current, err)
	}
	if int(size) != len(r.frame) {
		return nil, fmt.Errorf("%w: frame %d is %d bytes, want %d", ErrFrameSize, r.current, size, len(r.frame))
	}
	if _, err := io.ReadFull(r.r, r.frame); err != nil {
		return nil, fmt.Errorf("avi: read frame %d: %w", r.current, err)
	}

	r.current++
	out := make([]byte, len(r.frame))
	copy(out, r.frame)
	return out, nil
}

func checkSignature(r io.Reader, want string) error {
	got := make([]byte, 4)
	if _, err := io.ReadFull(r, got); err != nil {
		return fmt.Errorf("avi: read %q signature: %w", want, err)
	}
	if string(got) != want {
		return fmt.Errorf("%w: got %q, want %q", ErrBadSignature, got, want)
	}
	return nil
}

func readU32(r io.Reader) (uint32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(buf[:]), nil
}

func readU16(r io.Reader) (uint16, error) {
	var buf [2]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(buf[:]), nil
}

func discard(r io.Reader, n int) error {
	_, err := io.CopyN(io.Discard, r, int64(n))
	return err
}
