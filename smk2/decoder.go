package smk2

import (
	"bufio"
	"fmt"
	"io"
)

// Decoder reads SMK2 frames sequentially from an underlying stream. Every
// instance owns its own trees, palette, and frame buffer; there is no
// package-level state.
type Decoder struct {
	header *Header
	r      *bufio.Reader

	typeTree, mmapTree, mclrTree, fullTree *huff16Tree
	typeSeed, mmapSeed, mclrSeed, fullSeed huff16Cache

	palette Palette
	frame   []byte
	current int
}

// NewDecoder parses the header and the four packed Huffman trees from r.
func NewDecoder(r io.Reader) (*Decoder, error) {
	br := bufio.NewReader(r)

	header, err := parseHeader(br)
	if err != nil {
		return nil, err
	}

	treeBytes := io.LimitReader(br, int64(header.TreesSize))
	treeReader := bufio.NewReader(treeBytes)
	bitR, err := newBitReader(treeReader)
	if err != nil {
		return nil, fmt.Errorf("smk2: init tree bitstream: %w", err)
	}

	mmapTree, err := buildHuff16(bitR)
	if err != nil {
		return nil, fmt.Errorf("smk2: build mmap tree: %w", err)
	}
	mclrTree, err := buildHuff16(bitR)
	if err != nil {
		return nil, fmt.Errorf("smk2: build mclr tree: %w", err)
	}
	fullTree, err := buildHuff16(bitR)
	if err != nil {
		return nil, fmt.Errorf("smk2: build full tree: %w", err)
	}
	typeTree, err := buildHuff16(bitR)
	if err != nil {
		return nil, fmt.Errorf("smk2: build type tree: %w", err)
	}

	if lr, ok := treeBytes.(*io.LimitedReader); ok && lr.N > 0 {
		if err := discard(br, int(lr.N)); err != nil {
			return nil, fmt.Errorf("smk2: skip tree padding: %w", err)
		}
	}

	d := &Decoder{
		header:   header,
		r:        br,
		typeTree: typeTree, mmapTree: mmapTree, mclrTree: mclrTree, fullTree: fullTree,
		typeSeed: typeTree.cache, mmapSeed: mmapTree.cache, mclrSeed: mclrTree.cache, fullSeed: fullTree.cache,
		frame: make([]byte, int(header.Width)*int(header.Height)*3),
	}
	return d, nil
}

// Width, Height, FPS, and NumFrames satisfy the FrameSource accessors.
func (d *Decoder) Width() int       { return int(d.header.Width) }
func (d *Decoder) Height() int      { return int(d.header.Height) }
func (d *Decoder) FPS() float64     { return d.header.FrameRate }
func (d *Decoder) NumFrames() int   { return int(d.header.NumFrames) }

// NextFrame decodes and returns the next frame's pixel buffer (width *
// height * 3 bytes, RGB). It returns io.EOF once every frame has been
// decoded. The returned slice is a fresh copy, safe to retain across
// calls.
func (d *Decoder) NextFrame() ([]byte, error) {
	if d.current >= int(d.header.NumFrames) {
		return nil, io.EOF
	}

	frameSize := d.header.FrameSizes[d.current]
	limited := &io.LimitedReader{R: d.r, N: int64(frameSize)}
	fr := bufio.NewReader(limited)

	if d.header.FrameFlags[d.current]&0x01 != 0 {
		prev := d.palette
		if err := readPalette(fr, &prev, &d.palette); err != nil {
			return nil, fmt.Errorf("smk2: decode frame %d palette: %w", d.current, err)
		}
	}

	d.typeTree.cache = d.typeSeed
	d.mmapTree.cache = d.mmapSeed
	d.mclrTree.cache = d.mclrSeed
	d.fullTree.cache = d.fullSeed

	bitR, err := newBitReader(fr)
	if err != nil {
		return nil, fmt.Errorf("smk2: decode frame %d: init bitstream: %w", d.current, err)
	}

	if err := readFrameBlocks(bitR, d.typeTree, d.mmapTree, d.mclrTree, d.fullTree, d.frame, &d.palette, int(d.header.Width), int(d.header.Height)); err != nil {
		return nil, fmt.Errorf("smk2: decode frame %d: %w", d.current, err)
	}

	if limited.N > 0 {
		if err := discard(d.r, int(limited.N)); err != nil {
			return nil, fmt.Errorf("smk2: skip frame %d padding: %w", d.current, err)
		}
	}

	d.current++

	out := make([]byte, len(d.frame))
	copy(out, d.frame)
	return out, nil
}
