// Package avi implements a reader and writer for the RIFF-AVI container as
// used to carry uncompressed 24-bit BGR video: a single video stream, no
// audio, no compression. Frame bytes pass through unchanged in both
// directions: rows keep the order the container stores them in and pixels
// stay BGR.
package avi

import "errors"

// Sentinel errors returned by the AVI reader and writer. Callers should
// compare with errors.Is; call sites wrap these with additional context via
// fmt.Errorf("%w: ...", ...).
var (
	// ErrBadSignature indicates a RIFF chunk FOURCC did not match what
	// was expected at that position in the container.
	ErrBadSignature = errors.New("avi: bad signature")

	// ErrUnsupportedFormat indicates the stream is structurally a RIFF
	// AVI file but uses a feature this package does not support: a
	// codec other than uncompressed DIB, a bit depth other than 24, or
	// more than one stream.
	ErrUnsupportedFormat = errors.New("avi: unsupported format")

	// ErrBadDimension indicates width is not divisible by 4.
	ErrBadDimension = errors.New("avi: width must be divisible by 4")

	// ErrInvalidArgument indicates a caller supplied a frame buffer of
	// the wrong size, or a frame count/dimension writer argument of
	// zero.
	ErrInvalidArgument = errors.New("avi: invalid argument")

	// ErrFrameSize indicates a "00dc" chunk's declared size did not
	// match the expected width*height*3 frame payload.
	ErrFrameSize = errors.New("avi: unexpected frame chunk size")
)
