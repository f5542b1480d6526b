package smk2

import (
	"container/heap"
	"math"
)

// huff16Cache holds the 3-slot MRU cache for a single H16 tree. It is reset
// to its seed values at the start of every frame, per the main decoder's
// per-frame cache reset.
type huff16Cache [3]uint16

// update applies the rotate-then-overwrite MRU rule: if v is already the
// most-recently-used slot, the cache is unchanged; otherwise slot 0 and 1
// shift down and v becomes the new slot 0.
func (c *huff16Cache) update(v uint16) {
	if v == c[0] {
		return
	}
	c[2] = c[1]
	c[1] = c[0]
	c[0] = v
}

// huff16 arena words are uint32, unlike huff8's uint16 arena: an H16 leaf
// can carry a full 16-bit literal value, so the branch/cache-sentinel
// flags need room above bit 15 that huff8's single high bit doesn't have.
const (
	huff16Branch    = 0x80000000
	huff16CacheFlag = 0x40000000
	huff16ValueMask = 0x0000FFFF
)

// huff16Tree is a 16-bit Huffman tree with literal values resolved once at
// build time (decode: while unpacking, encode: while constructing), so
// lookup never touches the underlying H8 trees again.
type huff16Tree struct {
	nodes     []uint32 // huff16Branch marks an interior node (child index in the low bits); otherwise a literal value or huff16CacheFlag|index
	cache     huff16Cache
	codeCache map[uint32]huff8Code
}

// buildHuff16 unpacks an H16 tree: marker bit, low-byte H8, high-byte H8,
// 3 little-endian u16 cache seeds read raw through the main bitstream, the
// recursive branch/leaf structure (leaves resolved via the two H8 trees
// and checked against the freshly seeded cache), trailing bit.
func buildHuff16(br *bitReader) (*huff16Tree, error) {
	present, err := br.readBit()
	if err != nil {
		return nil, err
	}
	if !present {
		return nil, ErrMissingTree
	}

	lowTree, err := buildHuff8(br)
	if err != nil {
		return nil, err
	}
	highTree, err := buildHuff8(br)
	if err != nil {
		return nil, err
	}

	var seeds huff16Cache
	for i := range seeds {
		lo, err := br.readByte()
		if err != nil {
			return nil, err
		}
		hi, err := br.readByte()
		if err != nil {
			return nil, err
		}
		seeds[i] = uint16(lo) | uint16(hi)<<8
	}

	t := &huff16Tree{nodes: make([]uint32, 0, 1023), cache: seeds}
	if err := t.buildRec(br, lowTree, highTree); err != nil {
		return nil, err
	}

	trailing, err := br.readBit()
	if err != nil {
		return nil, err
	}
	if trailing {
		return nil, ErrCorruptTree
	}
	return t, nil
}

func (t *huff16Tree) buildRec(br *bitReader, lowTree, highTree *huff8Tree) error {
	bit, err := br.readBit()
	if err != nil {
		return err
	}
	if bit {
		branch := len(t.nodes)
		t.nodes = append(t.nodes, 0)
		if err := t.buildRec(br, lowTree, highTree); err != nil {
			return err
		}
		t.nodes[branch] = huff16Branch | uint32(len(t.nodes))
		return t.buildRec(br, lowTree, highTree)
	}

	lo, err := lowTree.lookup(br)
	if err != nil {
		return err
	}
	hi, err := highTree.lookup(br)
	if err != nil {
		return err
	}
	value := uint16(lo) | uint16(hi)<<8

	node := uint32(value)
	for i, seed := range t.cache {
		if value == seed {
			node = huff16CacheFlag | uint32(i)
			break
		}
	}
	t.nodes = append(t.nodes, node)
	return nil
}

// lookup descends the tree, resolves the leaf value through the cache if
// it is a cache sentinel, applies the MRU update, and returns the value.
func (t *huff16Tree) lookup(br *bitReader) (uint16, error) {
	index := 0
	for t.nodes[index]&huff16Branch != 0 {
		bit, err := br.readBit()
		if err != nil {
			return 0, err
		}
		if bit {
			index = int(t.nodes[index] &^ huff16Branch)
		} else {
			index++
		}
	}

	node := t.nodes[index]
	var value uint16
	if node&huff16CacheFlag != 0 {
		value = t.cache[node&huff16ValueMask]
	} else {
		value = uint16(node & huff16ValueMask)
	}
	t.cache.update(value)
	return value, nil
}

// huff16Node is an arena entry for building an optimal H16 prefix tree
// from observed symbol frequencies, mirroring huff8Node.
type huff16Node struct {
	freq   int
	symbol uint16
	isLeaf bool
	left   int
	right  int
}

type huff16NodeHeap struct {
	pool    []huff16Node
	indices []int
	seq     []int
}

func (h *huff16NodeHeap) Len() int { return len(h.indices) }
func (h *huff16NodeHeap) Less(i, j int) bool {
	a, b := h.pool[h.indices[i]], h.pool[h.indices[j]]
	if a.freq != b.freq {
		return a.freq < b.freq
	}
	return h.seq[h.indices[i]] < h.seq[h.indices[j]]
}
func (h *huff16NodeHeap) Swap(i, j int) { h.indices[i], h.indices[j] = h.indices[j], h.indices[i] }
func (h *huff16NodeHeap) Push(x any)    { h.indices = append(h.indices, x.(int)) }
func (h *huff16NodeHeap) Pop() any {
	old := h.indices
	n := len(old)
	idx := old[n-1]
	h.indices = old[:n-1]
	return idx
}

// reserveEscapes scans candidate symbols 1..65535 in increasing order,
// skipping any symbol present in freq, until 3 are collected. Symbol 0 is
// never a candidate: the reference's counter starts at 1 and the scan
// stops at wraparound without re-testing 0.
func reserveEscapes(freq map[uint16]int) ([3]uint16, error) {
	var escapes [3]uint16
	found := 0
	for symbol := uint16(1); ; symbol++ {
		if _, ok := freq[symbol]; !ok {
			escapes[found] = symbol
			found++
			if found == 3 {
				return escapes, nil
			}
		}
		if symbol == 65535 {
			break
		}
	}
	return escapes, ErrTreeOverflow
}

// buildHuff16Tree builds an optimal prefix tree over freq plus three
// reserved escape symbols carrying virtual max frequency so they combine
// last and sit at minimum depth (the MRU cache slots).
func buildHuff16Tree(freq map[uint16]int, escapes [3]uint16) (pool []huff16Node, root int) {
	h := &huff16NodeHeap{}
	push := func(n huff16Node) int {
		idx := len(h.pool)
		h.pool = append(h.pool, n)
		h.seq = append(h.seq, idx)
		heap.Push(h, idx)
		return idx
	}

	for symbol := 0; symbol <= 65535; symbol++ {
		if f, ok := freq[uint16(symbol)]; ok && f > 0 {
			push(huff16Node{freq: f, symbol: uint16(symbol), isLeaf: true, left: -1, right: -1})
		}
	}
	for _, e := range escapes {
		push(huff16Node{freq: math.MaxInt32, symbol: e, isLeaf: true, left: -1, right: -1})
	}

	heap.Init(h)

	if len(h.indices) == 0 {
		return h.pool, -1
	}
	if len(h.indices) == 1 {
		return h.pool, h.indices[0]
	}

	for len(h.indices) > 1 {
		left := heap.Pop(h).(int)
		right := heap.Pop(h).(int)
		push(huff16Node{
			freq:  h.pool[left].freq + h.pool[right].freq,
			left:  left,
			right: right,
		})
	}

	return h.pool, h.indices[0]
}

// packHuff16 emits an H16 tree: marker bit, low/high H8 side-trees built
// from the literal values, 3 little-endian u16 escape seeds written raw
// through the main bitstream, the recursive branch/leaf structure, and a
// trailing bit. escapes become the tree's initial MRU cache on both sides.
func packHuff16(bw *bitWriter, freq map[uint16]int) (*huff16Tree, error) {
	escapes, err := reserveEscapes(freq)
	if err != nil {
		return nil, err
	}

	// The low/high side-trees are built from the SET of distinct H16
	// symbols (each counted once), not weighted by how often that symbol
	// occurs in the data: the reference iterates its built _huff_table
	// (one entry per distinct symbol) to feed the two byte sub-trees.
	lowFreq := make(map[byte]int)
	highFreq := make(map[byte]int)
	for symbol := range freq {
		lowFreq[byte(symbol)]++
		highFreq[byte(symbol>>8)]++
	}
	for _, e := range escapes {
		lowFreq[byte(e)]++
		highFreq[byte(e>>8)]++
	}

	if err := bw.write(1, 1); err != nil {
		return nil, err
	}
	lowCodes, err := packHuff8(bw, lowFreq)
	if err != nil {
		return nil, err
	}
	highCodes, err := packHuff8(bw, highFreq)
	if err != nil {
		return nil, err
	}
	for _, e := range escapes {
		if err := bw.write(uint32(e&0xFF), 8); err != nil {
			return nil, err
		}
		if err := bw.write(uint32(e>>8), 8); err != nil {
			return nil, err
		}
	}

	pool, root := buildHuff16Tree(freq, escapes)
	t := &huff16Tree{cache: escapes}
	if err := t.packRec(bw, pool, root, lowCodes, highCodes); err != nil {
		return nil, err
	}
	if err := bw.write(0, 1); err != nil {
		return nil, err
	}
	return t, nil
}

// packRec emits the H16 branch/leaf structure. A leaf's symbol is written
// as a low-byte code through lowCodes and a high-byte code through
// highCodes (the two now-packed H8 side-trees), mirroring the reference's
// pack_tree_structure feeding its already-packed low_byte_tree/high_byte_tree.
func (t *huff16Tree) packRec(bw *bitWriter, pool []huff16Node, index int, lowCodes, highCodes map[byte]huff8Code) error {
	node := pool[index]
	if node.isLeaf {
		if err := bw.write(0, 1); err != nil {
			return err
		}
		lowCode, ok := lowCodes[byte(node.symbol)]
		if !ok {
			return ErrCorruptTree
		}
		if err := bw.write(lowCode.word, lowCode.length); err != nil {
			return err
		}
		highCode, ok := highCodes[byte(node.symbol>>8)]
		if !ok {
			return ErrCorruptTree
		}
		if err := bw.write(highCode.word, highCode.length); err != nil {
			return err
		}

		leaf := uint32(node.symbol)
		for i, seed := range t.cache {
			if node.symbol == seed {
				leaf = huff16CacheFlag | uint32(i)
				break
			}
		}
		t.nodes = append(t.nodes, leaf)
		return nil
	}
	if err := bw.write(1, 1); err != nil {
		return err
	}
	branch := len(t.nodes)
	t.nodes = append(t.nodes, 0)
	if err := t.packRec(bw, pool, node.left, lowCodes, highCodes); err != nil {
		return err
	}
	t.nodes[branch] = huff16Branch | uint32(len(t.nodes))
	return t.packRec(bw, pool, node.right, lowCodes, highCodes)
}

// emit writes value through the tree's codes (rebuilt from the node
// arena), used by the frame encoder to emit a chain token value through
// one of the four coupled H16 trees. This is a plain lookup keyed by the
// literal value, with no cache involved: the cache-sentinel leaves
// packRec produced exist only for the 3 reserved escape symbols, which by
// construction of reserveEscapes never occur as real chain-token values,
// so the literal key always resolves to the real leaf's code.
func (t *huff16Tree) emit(bw *bitWriter, value uint16) error {
	code, ok := t.codes()[uint32(value)]
	if !ok {
		return ErrInvalidChainLength
	}
	return bw.write(code.word, code.length)
}

// codes walks the packed arena and returns a bit-pattern per leaf, keyed
// by the raw node word (either a literal value or a huff16CacheFlag|index
// sentinel), lazily memoized on first use.
func (t *huff16Tree) codes() map[uint32]huff8Code {
	if t.codeCache != nil {
		return t.codeCache
	}
	codes := make(map[uint32]huff8Code)
	if len(t.nodes) == 0 {
		t.codeCache = codes
		return codes
	}
	var walk func(index int, word uint32, length uint8)
	walk = func(index int, word uint32, length uint8) {
		n := t.nodes[index]
		if n&huff16Branch != 0 {
			next := int(n &^ huff16Branch)
			walk(index+1, word, length+1)
			walk(next, word|(1<<length), length+1)
			return
		}
		codes[n] = huff8Code{word: word, length: length}
	}
	walk(0, 0, 0)
	t.codeCache = codes
	return codes
}
