package smk2

// classifiedBlock pairs a block's type with its payload, produced by one
// classifyBlock call per 4x4 tile in row-major tile order.
type classifiedBlock struct {
	kind blockType
	data block
}

// chainEntry is one run-length-coded token: kind repeated sizetable[length]
// times. data carries the shared solid color (solid chains only); blocks
// carries the per-tile payload for full/mono chains, where each repetition
// differs (only their common classification is shared).
type chainEntry struct {
	kind   blockType
	length int
	data   byte
	blocks []block
}

// buildChains groups classified blocks into runs of identical
// classification (same type, and for solid additionally the same color),
// then decomposes each run's length into the minimal sizetable tokens via
// the chain-length DP, mirroring encoder.cpp's RLE-then-get_sizes pipeline.
func buildChains(blocks []classifiedBlock) ([]chainEntry, error) {
	var chains []chainEntry

	for i := 0; i < len(blocks); {
		j := i + 1
		for j < len(blocks) && blocks[j].kind == blocks[i].kind &&
			(blocks[i].kind != blockSolid || blocks[j].data.solidColor == blocks[i].data.solidColor) {
			j++
		}

		run := blocks[i:j]
		tokens, err := decomposeChainLength(len(run))
		if err != nil {
			return nil, err
		}

		skip := 0
		for _, token := range tokens {
			count := sizetable[token]
			entry := chainEntry{kind: run[0].kind, length: token}
			if run[0].kind == blockSolid {
				entry.data = run[0].data.solidColor
			}
			if run[0].kind == blockFull || run[0].kind == blockMono {
				entry.blocks = make([]block, count)
				for n := 0; n < count; n++ {
					entry.blocks[n] = run[skip+n].data
				}
				skip += count
			}
			chains = append(chains, entry)
		}

		i = j
	}

	return chains, nil
}

// writeChains emits chains through the four coupled H16 trees: the type
// word (kind | length<<2 | data<<8) through typeTree for every chain, then
// for full/mono chains the per-block payload through fullTree or
// mclrTree+mmapTree.
func writeChains(bw *bitWriter, chains []chainEntry, typeTree, mmapTree, mclrTree, fullTree *huff16Tree) error {
	for _, c := range chains {
		typeWord := uint16(c.kind) | uint16(c.length)<<2 | uint16(c.data)<<8
		if err := typeTree.emit(bw, typeWord); err != nil {
			return err
		}

		switch c.kind {
		case blockSolid, blockVoid:
		case blockFull:
			for _, b := range c.blocks {
				for row := 0; row < 4; row++ {
					if err := fullTree.emit(bw, b.fullColors[row][0]); err != nil {
						return err
					}
					if err := fullTree.emit(bw, b.fullColors[row][1]); err != nil {
						return err
					}
				}
			}
		case blockMono:
			for _, b := range c.blocks {
				if err := mclrTree.emit(bw, b.monoColors); err != nil {
					return err
				}
				if err := mmapTree.emit(bw, b.monoMap); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// tallyChains feeds the four frequency tables the same symbols
// writeChains would emit, used for the encoder's first tally pass before
// any tree is packed.
func tallyChains(chains []chainEntry, typeFreq, mmapFreq, mclrFreq, fullFreq map[uint16]int) {
	for _, c := range chains {
		typeWord := uint16(c.kind) | uint16(c.length)<<2 | uint16(c.data)<<8
		typeFreq[typeWord]++

		switch c.kind {
		case blockSolid, blockVoid:
		case blockFull:
			for _, b := range c.blocks {
				for row := 0; row < 4; row++ {
					fullFreq[b.fullColors[row][0]]++
					fullFreq[b.fullColors[row][1]]++
				}
			}
		case blockMono:
			for _, b := range c.blocks {
				mclrFreq[b.monoColors]++
				mmapFreq[b.monoMap]++
			}
		}
	}
}

// readFrameBlocks decodes one frame's chain bitstream into dst, a
// persistent width*height*3 RGB buffer shared across frames: void blocks
// intentionally leave dst untouched, reusing whatever the previous frame
// reconstructed there, exactly as the reference reuses _frame_data in
// place without clearing it between frames.
func readFrameBlocks(br *bitReader, typeTree, mmapTree, mclrTree, fullTree *huff16Tree, dst []byte, palette *Palette, width, height int) error {
	stride := width * 3
	row, col := 0, 0

	for row < height {
		typeWord, err := typeTree.lookup(br)
		if err != nil {
			return err
		}

		kind := blockType(typeWord & 0x0003)
		blocklen := (typeWord & 0x00FC) >> 2
		typedata := byte((typeWord & 0xFF00) >> 8)

		count := sizetable[blocklen]
		for n := 0; n < count && row < height; n++ {
			switch kind {
			case blockMono:
				colors, err := mclrTree.lookup(br)
				if err != nil {
					return err
				}
				pixmap, err := mmapTree.lookup(br)
				if err != nil {
					return err
				}
				reconstructMono(dst, stride, col, row, colors, pixmap, palette)

			case blockFull:
				var colors [4][2]uint16
				for r := 0; r < 4; r++ {
					w0, err := fullTree.lookup(br)
					if err != nil {
						return err
					}
					w1, err := fullTree.lookup(br)
					if err != nil {
						return err
					}
					colors[r][0] = w0
					colors[r][1] = w1
				}
				reconstructFull(dst, stride, col, row, colors, palette)

			case blockVoid:
				// leave dst as-is

			case blockSolid:
				reconstructSolid(dst, stride, col, row, palette[typedata])

			default:
				return ErrCorruptTree
			}

			col += 4
			if col >= width {
				col = 0
				row += 4
			}
		}
	}

	return nil
}
