package smk2

import (
	"bytes"
	"fmt"
	"io"
)

// Encoder accumulates raw RGB frames and, on Write, emits a complete
// SMK2 stream: a combined palette and chain classification pass over
// every frame, one shared set of four Huffman trees sized to the whole
// video, and the resulting per-frame payloads.
type Encoder struct {
	width, height uint32
	fps           float64
	frames        [][]byte
}

// NewEncoder creates an encoder for width x height video at fps frames
// per second. Width and height must be divisible by 4.
func NewEncoder(width, height int, fps float64) (*Encoder, error) {
	if width%4 != 0 || height%4 != 0 {
		return nil, ErrBadDimension
	}
	return &Encoder{width: uint32(width), height: uint32(height), fps: fps}, nil
}

// EncodeFrame appends one width*height*3-byte RGB frame to the pending
// video. Frames are not processed until Write is called.
func (e *Encoder) EncodeFrame(frame []byte) error {
	want := int(e.width) * int(e.height) * 3
	if len(frame) != want {
		return fmt.Errorf("%w: frame is %d bytes, want %d", ErrInvalidArgument, len(frame), want)
	}
	cp := make([]byte, want)
	copy(cp, frame)
	e.frames = append(e.frames, cp)
	return nil
}

// Write classifies every pending frame into chains, builds one shared
// set of four Huffman trees sized across the whole video, and emits the
// header, packed trees, and per-frame payloads to w.
func (e *Encoder) Write(w io.Writer) error {
	width, height := int(e.width), int(e.height)

	palette, colorIndex, err := buildPalette(e.frames)
	if err != nil {
		return err
	}

	frameChains := make([][]chainEntry, len(e.frames))
	var lastFrame []byte
	for i, frame := range e.frames {
		blocks, err := classifyFrame(frame, lastFrame, width, height, i, colorIndex)
		if err != nil {
			return err
		}
		chains, err := buildChains(blocks)
		if err != nil {
			return err
		}
		frameChains[i] = chains
		lastFrame = frame
	}

	typeFreq := make(map[uint16]int)
	mmapFreq := make(map[uint16]int)
	mclrFreq := make(map[uint16]int)
	fullFreq := make(map[uint16]int)
	for _, chains := range frameChains {
		tallyChains(chains, typeFreq, mmapFreq, mclrFreq, fullFreq)
	}

	var treeBuf bytes.Buffer
	treeWriter := newBitWriter(&treeBuf)

	mmapTree, err := packHuff16(treeWriter, mmapFreq)
	if err != nil {
		return fmt.Errorf("smk2: pack mmap tree: %w", err)
	}
	mclrTree, err := packHuff16(treeWriter, mclrFreq)
	if err != nil {
		return fmt.Errorf("smk2: pack mclr tree: %w", err)
	}
	fullTree, err := packHuff16(treeWriter, fullFreq)
	if err != nil {
		return fmt.Errorf("smk2: pack full tree: %w", err)
	}
	typeTree, err := packHuff16(treeWriter, typeFreq)
	if err != nil {
		return fmt.Errorf("smk2: pack type tree: %w", err)
	}
	if err := treeWriter.flush(); err != nil {
		return err
	}

	frameData := make([][]byte, len(e.frames))
	frameSizes := make([]uint32, len(e.frames))
	frameFlags := make([]byte, len(e.frames))

	for i, chains := range frameChains {
		var buf bytes.Buffer
		bw := newBitWriter(&buf)

		if err := writeChains(bw, chains, typeTree, mmapTree, mclrTree, fullTree); err != nil {
			return fmt.Errorf("smk2: encode frame %d: %w", i, err)
		}
		if err := bw.flush(); err != nil {
			return err
		}

		data := buf.Bytes()
		extra := 0
		if i == 0 {
			extra = 256*3 + 4
		}
		size := len(data) + extra
		padding := (4 - size%4) % 4

		payload := make([]byte, 0, len(data)+padding)
		payload = append(payload, data...)
		payload = append(payload, make([]byte, padding)...)

		frameData[i] = payload
		frameSizes[i] = uint32(size + padding)
		if i == 0 {
			frameFlags[i] = 1
		}
	}

	header := &Header{
		Width: e.width, Height: e.height,
		NumFrames:  uint32(len(e.frames)),
		FrameRate:  e.fps,
		TreesSize:  uint32(treeBuf.Len()),
		FrameSizes: frameSizes,
		FrameFlags: frameFlags,
	}
	mapSizes := [smkMapSizeCount]uint32{
		uint32(len(mmapTree.nodes)*4 + 12),
		uint32(len(mclrTree.nodes)*4 + 12),
		uint32(len(fullTree.nodes)*4 + 12),
		uint32(len(typeTree.nodes)*4 + 12),
	}

	if err := writeHeader(w, header, mapSizes); err != nil {
		return fmt.Errorf("smk2: write header: %w", err)
	}
	if _, err := w.Write(treeBuf.Bytes()); err != nil {
		return fmt.Errorf("smk2: write trees: %w", err)
	}

	for i, payload := range frameData {
		if i == 0 {
			if err := writeFramePalette(w, &palette); err != nil {
				return fmt.Errorf("smk2: write palette: %w", err)
			}
		}
		if _, err := w.Write(payload); err != nil {
			return fmt.Errorf("smk2: write frame %d: %w", i, err)
		}
	}

	return nil
}

// buildPalette scans every frame for distinct colors in first-seen
// order, matching the reference's linear palette-build scan exactly
// (including its ErrPaletteOverflow past 256 distinct colors).
func buildPalette(frames [][]byte) (Palette, func(r, g, b byte) (byte, error), error) {
	var palette Palette
	index := make(map[[3]byte]byte)
	count := 0

	for _, frame := range frames {
		for n := 0; n < len(frame); n += 3 {
			c := [3]byte{frame[n], frame[n+1], frame[n+2]}
			if _, ok := index[c]; ok {
				continue
			}
			if count >= 256 {
				return palette, nil, ErrPaletteOverflow
			}
			palette[count] = Color{R: c[0], G: c[1], B: c[2]}
			index[c] = byte(count)
			count++
		}
	}

	colorIndex := func(r, g, b byte) (byte, error) {
		idx, ok := index[[3]byte{r, g, b}]
		if !ok {
			return 0, fmt.Errorf("%w: color (%d,%d,%d) not found in palette", ErrInvalidArgument, r, g, b)
		}
		return idx, nil
	}
	return palette, colorIndex, nil
}

// classifyFrame tiles frame into 4x4 blocks in row-major order and
// classifies each one; lastFrame is nil for frame 0 (void is never
// produced there).
func classifyFrame(frame, lastFrame []byte, width, height, frameIndex int, colorIndex func(r, g, b byte) (byte, error)) ([]classifiedBlock, error) {
	blocks := make([]classifiedBlock, 0, (width/4)*(height/4))
	for y := 0; y < height; y += 4 {
		for x := 0; x < width; x += 4 {
			kind, data, err := classifyBlock(frame, lastFrame, width, x, y, frameIndex, colorIndex)
			if err != nil {
				return nil, err
			}
			blocks = append(blocks, classifiedBlock{kind: kind, data: data})
		}
	}
	return blocks, nil
}
