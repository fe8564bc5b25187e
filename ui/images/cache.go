package images

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

// ThumbnailCache memoises PNG thumbnails by content hash and size so that
// re-rendering the gallery does not decode every heatmap again.
type ThumbnailCache struct {
	cache *lru.Cache[string, []byte]
}

// NewThumbnailCache returns a cache holding at most n thumbnails.
func NewThumbnailCache(n int) (*ThumbnailCache, error) {
	if n < 1 {
		n = 1
	}
	c, err := lru.New[string, []byte](n)
	if err != nil {
		return nil, err
	}
	return &ThumbnailCache{cache: c}, nil
}

// Get returns PNG thumbnail bytes for img at size, rendering on a miss.
func (c *ThumbnailCache) Get(img []byte, size int) ([]byte, error) {
	key := cacheKey(img, size)
	if c != nil {
		if b, ok := c.cache.Get(key); ok {
			return b, nil
		}
	}
	src, err := Decode(img)
	if err != nil {
		return nil, err
	}
	out := EncodePNG(Thumbnail(src, size))
	if c != nil {
		c.cache.Add(key, out)
	}
	return out, nil
}

// Len returns the number of cached thumbnails.
func (c *ThumbnailCache) Len() int {
	if c == nil {
		return 0
	}
	return c.cache.Len()
}

// Purge drops every entry.
func (c *ThumbnailCache) Purge() {
	if c == nil {
		return
	}
	c.cache.Purge()
}

func cacheKey(img []byte, size int) string {
	sum := sha256.Sum256(img)
	return fmt.Sprintf("%s/%d", hex.EncodeToString(sum[:]), size)
}
