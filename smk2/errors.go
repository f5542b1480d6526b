// Package smk2 implements the Smacker v2 (SMK2) paletted, Huffman-coded
// video codec: bitstream framing, the four coupled Huffman trees with their
// symbol recency cache, the palette delta scheme, and the block-based,
// run-length-chained frame layout.
package smk2

import "errors"

// Sentinel errors returned by the SMK2 codec. Callers should compare with
// errors.Is, since call sites wrap these with additional context via
// fmt.Errorf("%w: ...", ...).
var (
	// ErrBadSignature indicates the file magic did not match "SMK2".
	ErrBadSignature = errors.New("smk2: bad signature")

	// ErrUnsupportedFlag indicates non-zero header flags or an audio
	// track bit set on a frame; audio substreams are not supported.
	ErrUnsupportedFlag = errors.New("smk2: unsupported flag")

	// ErrBadDimension indicates width or height is not divisible by 4.
	ErrBadDimension = errors.New("smk2: width/height must be divisible by 4")

	// ErrMissingTree indicates a Huffman tree's presence bit was zero.
	ErrMissingTree = errors.New("smk2: missing huffman tree")

	// ErrCorruptTree indicates a malformed leaf sequence or a bad
	// framing bit while unpacking a Huffman tree.
	ErrCorruptTree = errors.New("smk2: corrupt huffman tree")

	// ErrTreeOverflow indicates fewer than three 16-bit escape values
	// were available to seed an H16 tree's MRU cache slots.
	ErrTreeOverflow = errors.New("smk2: huffman16 escape value overflow")

	// ErrInvalidChainLength indicates a block-run length could not be
	// decomposed into sizetable tokens.
	ErrInvalidChainLength = errors.New("smk2: invalid chain length")

	// ErrPaletteOverflow indicates the encoder's frames together contain
	// more than 256 distinct colors (one palette serves the whole video).
	ErrPaletteOverflow = errors.New("smk2: palette overflow, more than 256 colors")

	// ErrInvalidArgument indicates a caller supplied an out-of-range
	// value, e.g. a bitstream write whose length exceeds the
	// accumulator's width, or a frame buffer of the wrong size.
	ErrInvalidArgument = errors.New("smk2: invalid argument")
)
