package smk2

import (
	"fmt"
	"io"

	lru "github.com/hashicorp/golang-lru/v2"
)

// CachingDecoder wraps a Decoder with an LRU cache of recently decoded
// frames, for callers doing non-linear playback (seeking, scrubbing)
// against a source that otherwise only supports forward sequential
// decode. SMK2 has no keyframe index beyond frame 0's palette, so
// reaching frame N still requires decoding every frame before it once;
// the cache only helps when the same frames are revisited.
type CachingDecoder struct {
	dec   *Decoder
	cache *lru.Cache[int, []byte]
	next  int
}

// NewCachingDecoder wraps dec with an LRU cache holding up to size
// decoded frames.
func NewCachingDecoder(dec *Decoder, size int) (*CachingDecoder, error) {
	cache, err := lru.New[int, []byte](size)
	if err != nil {
		return nil, fmt.Errorf("smk2: create frame cache: %w", err)
	}
	return &CachingDecoder{dec: dec, cache: cache}, nil
}

func (c *CachingDecoder) Width() int     { return c.dec.Width() }
func (c *CachingDecoder) Height() int    { return c.dec.Height() }
func (c *CachingDecoder) FPS() float64   { return c.dec.FPS() }
func (c *CachingDecoder) NumFrames() int { return c.dec.NumFrames() }

// Frame returns frame index n, decoding and caching every frame from the
// current decode position up to n if it hasn't been reached yet.
func (c *CachingDecoder) Frame(n int) ([]byte, error) {
	if n < 0 || n >= c.dec.NumFrames() {
		return nil, fmt.Errorf("%w: frame index %d out of range", ErrInvalidArgument, n)
	}
	if frame, ok := c.cache.Get(n); ok {
		return frame, nil
	}
	if n < c.next {
		return nil, fmt.Errorf("%w: frame %d already decoded past and evicted from cache", ErrInvalidArgument, n)
	}

	for c.next <= n {
		frame, err := c.dec.NextFrame()
		if err != nil {
			return nil, err
		}
		c.cache.Add(c.next, frame)
		c.next++
	}
	frame, _ := c.cache.Get(n)
	return frame, nil
}

// NextFrame advances sequentially, same contract as Decoder.NextFrame,
// reusing the cache so a caller mixing sequential and random access
// still benefits from it.
func (c *CachingDecoder) NextFrame() ([]byte, error) {
	if c.next >= c.dec.NumFrames() {
		return nil, io.EOF
	}
	return c.Frame(c.next)
}
