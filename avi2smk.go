// Package avi2smk is a bidirectional transcoder between RIFF-AVI
// (uncompressed 24-bit BGR) and Smacker v2 (paletted, Huffman-coded)
// video. The hard work lives in the smk2 and avi sub-packages; this
// package re-exports their frame-source/frame-sink shapes and the Convert
// functions that wire one to the other.
package avi2smk

import (
	"github.com/floriandotorg/avi2smk/avi"
	"github.com/floriandotorg/avi2smk/smk2"
)

// FrameSource yields consecutive raw video frames, one width*height*3-byte
// buffer at a time, until it returns io.EOF. avi.Reader and smk2.Decoder
// (and smk2.CachingDecoder) all implement it.
type FrameSource interface {
	Width() int
	Height() int
	FPS() float64
	NumFrames() int
	NextFrame() ([]byte, error)
}

// FrameSink accepts consecutive raw video frames. avi.Writer and
// smk2.Encoder both implement it.
type FrameSink interface {
	EncodeFrame(frame []byte) error
}

// Re-exported constructors, so callers depend only on this package for the
// common case of "open one format, convert to the other".
var (
	// NewAVIReader opens a RIFF-AVI container as a FrameSource.
	NewAVIReader = avi.NewReader

	// NewAVIWriter opens a RIFF-AVI container as a FrameSink. Call
	// Close once every frame has been written to patch the final RIFF
	// size.
	NewAVIWriter = avi.NewWriter

	// NewSMK2Decoder opens an SMK2 stream as a FrameSource.
	NewSMK2Decoder = smk2.NewDecoder

	// NewSMK2Encoder creates an SMK2 FrameSink. Call Write once every
	// frame has been passed to EncodeFrame to emit the stream.
	NewSMK2Encoder = smk2.NewEncoder

	// NewCachingSMK2Decoder wraps an SMK2 decoder with an LRU frame
	// cache for non-linear playback.
	NewCachingSMK2Decoder = smk2.NewCachingDecoder
)
