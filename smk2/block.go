package smk2

// blockType is the 4×4 block classification, packed into the low 2 bits
// of a type-tree symbol. The discriminant values match the reference's
// block_type enum exactly since they are part of the wire format.
type blockType uint8

const (
	blockMono blockType = 0
	blockFull blockType = 1
	blockVoid blockType = 2
	blockSolid blockType = 3
)

// block holds the per-block payload for the types that carry one: solid
// carries a single palette index, mono a packed color pair plus a 16-bit
// pixel map, full four rows of two packed u16 color-pair words. Void
// blocks carry nothing (the previous frame's pixels are reused).
type block struct {
	solidColor byte
	monoColors uint16
	monoMap    uint16
	fullColors [4][2]uint16
}

// classifyBlock inspects the 4x4 pixel block at (x,y) in frame (a flat
// width*height*3 BGR-less RGB-index-ready byte buffer is not used here;
// classification works directly on the 3-byte-per-pixel frame data before
// palette indices are resolved) against the previous reconstructed frame,
// returning its type and raw payload. frameIndex 0 never produces void
// since there is no previous frame to compare against.
//
// The scan collects up to 3 distinct colors in first-seen order and falls
// through to full the moment a 3rd distinct color is observed, without
// exhaustively counting beyond that — semantically identical to counting
// all 16 pixels' distinctness since "3 or more distinct" only ever needs
// the full path regardless of the true total.
func classifyBlock(frame, prevFrame []byte, width, x, y, frameIndex int, colorIndex func(r, g, b byte) (byte, error)) (blockType, block, error) {
	stride := width * 3

	sameAsLast := frameIndex > 0
	var colors [3][3]byte
	numColors := 0

	for yOff := 0; yOff < 4; yOff++ {
		for xOff := 0; xOff < 4; xOff++ {
			p := (y+yOff)*stride + (x+xOff)*3
			if sameAsLast && (frame[p] != prevFrame[p] || frame[p+1] != prevFrame[p+1] || frame[p+2] != prevFrame[p+2]) {
				sameAsLast = false
			}

			c := [3]byte{frame[p], frame[p+1], frame[p+2]}
			if numColors < 3 {
				seen := false
				for i := 0; i < numColors; i++ {
					if colors[i] == c {
						seen = true
						break
					}
				}
				if !seen {
					colors[numColors] = c
					numColors++
				}
			}
		}
	}

	if sameAsLast {
		return blockVoid, block{}, nil
	}

	if numColors < 2 {
		idx, err := colorIndex(colors[0][0], colors[0][1], colors[0][2])
		if err != nil {
			return 0, block{}, err
		}
		return blockSolid, block{solidColor: idx}, nil
	}

	if numColors == 2 {
		idxColor1, err := colorIndex(colors[0][0], colors[0][1], colors[0][2])
		if err != nil {
			return 0, block{}, err
		}
		idxColor0, err := colorIndex(colors[1][0], colors[1][1], colors[1][2])
		if err != nil {
			return 0, block{}, err
		}

		var pixmap uint16
		for yOff := 0; yOff < 4; yOff++ {
			for xOff := 0; xOff < 4; xOff++ {
				p := (y+yOff)*stride + (x+xOff)*3
				if frame[p] == colors[0][0] && frame[p+1] == colors[0][1] && frame[p+2] == colors[0][2] {
					pixmap |= 1 << uint(yOff*4+xOff)
				}
			}
		}

		return blockMono, block{
			monoColors: uint16(idxColor1)<<8 | uint16(idxColor0),
			monoMap:    pixmap,
		}, nil
	}

	var b block
	for yOff := 0; yOff < 4; yOff++ {
		p := (y+yOff)*stride + x*3
		col1, err := colorIndex(frame[p], frame[p+1], frame[p+2])
		if err != nil {
			return 0, block{}, err
		}
		col2, err := colorIndex(frame[p+3], frame[p+4], frame[p+5])
		if err != nil {
			return 0, block{}, err
		}
		col3, err := colorIndex(frame[p+6], frame[p+7], frame[p+8])
		if err != nil {
			return 0, block{}, err
		}
		col4, err := colorIndex(frame[p+9], frame[p+10], frame[p+11])
		if err != nil {
			return 0, block{}, err
		}
		b.fullColors[yOff][0] = uint16(col4)<<8 | uint16(col3)
		b.fullColors[yOff][1] = uint16(col2)<<8 | uint16(col1)
	}
	return blockFull, b, nil
}

// reconstructSolid fills a 4x4 region with one palette color.
func reconstructSolid(dst []byte, stride, x, y int, color Color) {
	p := y*stride + x*3
	for row := 0; row < 4; row++ {
		q := p
		for col := 0; col < 4; col++ {
			dst[q], dst[q+1], dst[q+2] = color.R, color.G, color.B
			q += 3
		}
		p += stride
	}
}

// reconstructMono fills a 4x4 region from a packed color pair and pixel
// map. This port fixes the reference's operator-precedence bug (`colors &
// 0xFF00 >> 8` parses as `colors & 0xFF`, reading color1 from the wrong
// byte): color1 comes from the high byte, color2 from the low byte,
// matching how the encoder actually packs `(idx_color1<<8)|idx_color0`.
func reconstructMono(dst []byte, stride, x, y int, colors, pixmap uint16, palette *Palette) {
	color1 := palette[(colors>>8)&0xFF]
	color2 := palette[colors&0xFF]

	p := y*stride + x*3
	for row := 0; row < 4; row++ {
		q := p
		for col := 0; col < 4; col++ {
			if pixmap&(1<<uint(row*4+col)) != 0 {
				dst[q], dst[q+1], dst[q+2] = color1.R, color1.G, color1.B
			} else {
				dst[q], dst[q+1], dst[q+2] = color2.R, color2.G, color2.B
			}
			q += 3
		}
		p += stride
	}
}

// reconstructFull fills a 4x4 region from 4 rows of 2 packed-pair words.
// Word 0 packs the row's last two pixels (high byte = pixel 3, the
// rightmost), word 1 packs the first two (high byte = pixel 1). Like
// mono, this fixes the reference's high/low-byte precedence bug.
func reconstructFull(dst []byte, stride, x, y int, colors [4][2]uint16, palette *Palette) {
	p := y*stride + x*3
	for row := 0; row < 4; row++ {
		word0, word1 := colors[row][0], colors[row][1]

		color3 := palette[(word0>>8)&0xFF]
		color2 := palette[word0&0xFF]
		color1 := palette[(word1>>8)&0xFF]
		color0 := palette[word1&0xFF]

		q := p
		dst[q], dst[q+1], dst[q+2] = color0.R, color0.G, color0.B
		dst[q+3], dst[q+4], dst[q+5] = color1.R, color1.G, color1.B
		dst[q+6], dst[q+7], dst[q+8] = color2.R, color2.G, color2.B
		dst[q+9], dst[q+10], dst[q+11] = color3.R, color3.G, color3.B

		p += stride
	}
}
