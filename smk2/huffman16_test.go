package smk2

import (
	"bytes"
	"testing"
)

// TestHuff16RoundTrip mirrors original_source/tests/test_huffman.cpp's
// test_decode16: big-endian byte pairs from a text sample, packed as
// uint16 symbols and round-tripped through pack/build.
func TestHuff16RoundTrip(t *testing.T) {
	t.Parallel()

	text := "Whereas recognition of the inherent dignity and of the equal " +
		"and inalienable rights of all members of the human family is " +
		"the foundation of freedom, justice and peace in the world."
	if len(text)%2 != 0 {
		text = text[:len(text)-1]
	}

	pairs := make([]uint16, 0, len(text)/2)
	for i := 0; i < len(text); i += 2 {
		pairs = append(pairs, uint16(text[i])<<8|uint16(text[i+1]))
	}

	freq := make(map[uint16]int)
	for _, p := range pairs {
		freq[p]++
	}

	var buf bytes.Buffer
	bw := newBitWriter(&buf)
	tree, err := packHuff16(bw, freq)
	if err != nil {
		t.Fatalf("packHuff16: %v", err)
	}
	for _, p := range pairs {
		if err := tree.emit(bw, p); err != nil {
			t.Fatalf("emit %d: %v", p, err)
		}
	}
	if err := bw.flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}

	br, err := newBitReader(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("newBitReader: %v", err)
	}
	got, err := buildHuff16(br)
	if err != nil {
		t.Fatalf("buildHuff16: %v", err)
	}
	for i, p := range pairs {
		v, err := got.lookup(br)
		if err != nil {
			t.Fatalf("lookup %d: %v", i, err)
		}
		if v != p {
			t.Fatalf("symbol %d = %#04x, want %#04x", i, v, p)
		}
	}
}

// TestHuff16EmitIgnoresLiveCache guards against emit() re-introducing a
// cache-substitution lookup: emit must leave the tree's cache at its
// post-pack seeds, and a sequence with repeated values (which the
// decoder's MRU cache holds as it goes) must decode as itself.
func TestHuff16EmitIgnoresLiveCache(t *testing.T) {
	t.Parallel()

	freq := map[uint16]int{10: 5, 20: 3, 30: 1}

	var buf bytes.Buffer
	bw := newBitWriter(&buf)
	tree, err := packHuff16(bw, freq)
	if err != nil {
		t.Fatalf("packHuff16: %v", err)
	}

	seed := tree.cache[0]
	values := []uint16{10, 20, 10, 30, 10, 20}
	for _, v := range values {
		if err := tree.emit(bw, v); err != nil {
			t.Fatalf("emit %d: %v", v, err)
		}
	}
	if err := bw.flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}
	if tree.cache[0] != seed {
		t.Fatalf("emit must not mutate the tree's cache; cache[0] changed from %#04x to %#04x", seed, tree.cache[0])
	}

	br, err := newBitReader(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("newBitReader: %v", err)
	}
	got, err := buildHuff16(br)
	if err != nil {
		t.Fatalf("buildHuff16: %v", err)
	}
	for i, want := range values {
		v, err := got.lookup(br)
		if err != nil {
			t.Fatalf("lookup %d: %v", i, err)
		}
		if v != want {
			t.Fatalf("symbol %d = %d, want %d", i, v, want)
		}
	}
}
