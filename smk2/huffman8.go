package smk2

import "container/heap"

// huff8Branch flags an interior node in the packed arena; the low bits of
// the same word hold the index of the node's right child (the left child
// always immediately follows its parent, depth-first). Leaf words hold the
// raw 8-bit symbol instead of a node index.
const huff8Branch = 0x8000

// huff8Tree is an 8-bit Huffman tree packed as a flat arena, following
// spec.md §9's recommendation (and deepteams-webp's encode_huffman.go
// arena-of-nodes technique) of index-linked nodes over owned pointers.
type huff8Tree struct {
	nodes []uint16
}

// buildHuff8 unpacks an H8 tree from the bitstream: a presence bit, the
// recursive branch/leaf structure, and a trailing framing bit.
func buildHuff8(br *bitReader) (*huff8Tree, error) {
	present, err := br.readBit()
	if err != nil {
		return nil, err
	}
	if !present {
		return nil, ErrMissingTree
	}

	t := &huff8Tree{nodes: make([]uint16, 0, 511)}
	if err := t.buildRec(br); err != nil {
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

func (t *huff8Tree) buildRec(br *bitReader) error {
	bit, err := br.readBit()
	if err != nil {
		return err
	}
	if bit {
		branch := len(t.nodes)
		t.nodes = append(t.nodes, 0)
		if err := t.buildRec(br); err != nil {
			return err
		}
		t.nodes[branch] = huff8Branch | uint16(len(t.nodes))
		return t.buildRec(br)
	}

	value, err := br.readByte()
	if err != nil {
		return err
	}
	t.nodes = append(t.nodes, uint16(value))
	return nil
}

// lookup descends the tree one bit at a time (0 -> left/next index, 1 ->
// right child index stored in the branch word) until it reaches a leaf.
func (t *huff8Tree) lookup(br *bitReader) (byte, error) {
	index := 0
	for t.nodes[index]&huff8Branch != 0 {
		bit, err := br.readBit()
		if err != nil {
			return 0, err
		}
		if bit {
			index = int(t.nodes[index] &^ huff8Branch)
		} else {
			index++
		}
	}
	return byte(t.nodes[index]), nil
}

// huff8Node is an arena entry used while building an optimal prefix tree
// from observed symbol frequencies (encode side only), grounded on
// deepteams-webp's huffmanTreeNode/nodeHeap pattern.
type huff8Node struct {
	freq   int
	symbol byte
	isLeaf bool
	left   int
	right  int
}

type huff8NodeHeap struct {
	pool    []huff8Node
	indices []int
	seq     []int // insertion order, for deterministic tie-breaking
}

func (h *huff8NodeHeap) Len() int { return len(h.indices) }
func (h *huff8NodeHeap) Less(i, j int) bool {
	a, b := h.pool[h.indices[i]], h.pool[h.indices[j]]
	if a.freq != b.freq {
		return a.freq < b.freq
	}
	return h.seq[h.indices[i]] < h.seq[h.indices[j]]
}
func (h *huff8NodeHeap) Swap(i, j int) { h.indices[i], h.indices[j] = h.indices[j], h.indices[i] }
func (h *huff8NodeHeap) Push(x any)    { h.indices = append(h.indices, x.(int)) }
func (h *huff8NodeHeap) Pop() any {
	old := h.indices
	n := len(old)
	idx := old[n-1]
	h.indices = old[:n-1]
	return idx
}

// buildHuff8Tree builds an optimal prefix tree from a symbol->frequency
// histogram (only symbols with freq > 0 participate) using a priority
// queue over an arena, then returns the arena's root index and pool.
func buildHuff8Tree(freq map[byte]int) (pool []huff8Node, root int) {
	h := &huff8NodeHeap{}
	push := func(n huff8Node) int {
		idx := len(h.pool)
		h.pool = append(h.pool, n)
		h.seq = append(h.seq, idx)
		heap.Push(h, idx)
		return idx
	}

	// Deterministic symbol order for tie-breaking: ascending symbol value.
	for symbol := 0; symbol < 256; symbol++ {
		if f, ok := freq[byte(symbol)]; ok && f > 0 {
			push(huff8Node{freq: f, symbol: byte(symbol), isLeaf: true, left: -1, right: -1})
		}
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
		push(huff8Node{
			freq:  h.pool[left].freq + h.pool[right].freq,
			left:  left,
			right: right,
		})
	}

	return h.pool, h.indices[0]
}

// packHuff8 emits an H8 tree built from freq: a leading presence bit, the
// recursive branch/leaf structure (1+recurse+recurse for branches, 0 plus
// 8 literal symbol bits for leaves), and a trailing framing bit. It
// returns the resulting symbol->code table so a caller building a coupled
// H16 tree can emit literal low/high bytes through this now-packed tree,
// the way the reference's huffman_tree<uint8_t>::pack feeds its own
// already-packed low/high byte sub-trees.
func packHuff8(bw *bitWriter, freq map[byte]int) (map[byte]huff8Code, error) {
	pool, root := buildHuff8Tree(freq)

	if err := bw.write(1, 1); err != nil {
		return nil, err
	}
	if root == -1 {
		// No symbols observed; emit a single placeholder leaf so the
		// tree still frames correctly (never exercised for H8 trees
		// that are always fed at least one real symbol per frame set).
		if err := bw.write(0, 1); err != nil {
			return nil, err
		}
		if err := bw.write(0, 8); err != nil {
			return nil, err
		}
		return map[byte]huff8Code{0: {word: 0, length: 0}}, nil
	}
	if err := packHuff8Node(bw, pool, root); err != nil {
		return nil, err
	}
	if err := bw.write(0, 1); err != nil {
		return nil, err
	}
	return huff8Codes(pool, root), nil
}

func packHuff8Node(bw *bitWriter, pool []huff8Node, index int) error {
	node := pool[index]
	if node.isLeaf {
		if err := bw.write(0, 1); err != nil {
			return err
		}
		return bw.write(uint32(node.symbol), 8)
	}
	if err := bw.write(1, 1); err != nil {
		return err
	}
	if err := packHuff8Node(bw, pool, node.left); err != nil {
		return err
	}
	return packHuff8Node(bw, pool, node.right)
}

// huff8Codes maps each symbol to its canonical bit-reversed-free code
// (word holds bits LSB-first at the depth they were assigned, matching
// the reference's left=0-append/right=1-at-depth convention) and length,
// for use by encode-side callers writing symbols through a packed tree
// (packHuff16's leaf emission).
type huff8Code struct {
	word   uint32
	length uint8
}

func huff8Codes(pool []huff8Node, root int) map[byte]huff8Code {
	codes := make(map[byte]huff8Code)
	if root == -1 {
		return codes
	}
	var walk func(index int, word uint32, length uint8)
	walk = func(index int, word uint32, length uint8) {
		node := pool[index]
		if node.isLeaf {
			codes[node.symbol] = huff8Code{word: word, length: length}
			return
		}
		walk(node.left, word, length+1)
		walk(node.right, word|(1<<length), length+1)
	}
	walk(root, 0, 0)
	return codes
}
