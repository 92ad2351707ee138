package render

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/dustin/go-humanize"
)

// ErrEmptyText is returned when asked to render an empty string.
var ErrEmptyText = errors.New("empty overlay text")

// Image is a fully opaque rendering of one overlay text.
// Images are immutable once stored in a Cache.
type Image struct {
	Text   string
	Width  int
	Height int
	Buffer *PixelBuffer
}

// Cache maps overlay text to its rendered image.
// Entries are rendered once, at alpha 1.0, and never evicted. Translucent
// frames are derived from the stored image without touching the rasterizer.
type Cache struct {
	mu         sync.RWMutex
	rasterizer Rasterizer
	style      Style
	width      int
	height     int
	entries    map[string]*Image
	logger     *slog.Logger
}

// NewCache creates an empty cache that renders width x height images.
func NewCache(rasterizer Rasterizer, width, height int, style Style, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{
		rasterizer: rasterizer,
		style:      style,
		width:      width,
		height:     height,
		entries:    make(map[string]*Image),
		logger:     logger,
	}
}

// Ensure returns the cached image for text, rendering it first if absent.
func (c *Cache) Ensure(text string) (*Image, error) {
	if text == "" {
		return nil, ErrEmptyText
	}

	c.mu.RLock()
	img, ok := c.entries[text]
	c.mu.RUnlock()
	if ok {
		return img, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if img, ok := c.entries[text]; ok {
		return img, nil
	}

	buf, err := c.rasterizer.Render(c.width, c.height, text, 1.0, c.style)
	if err != nil {
		return nil, fmt.Errorf("failed to render %q: %w", text, err)
	}
	if buf.Width != c.width || buf.Height != c.height {
		return nil, fmt.Errorf("rasterizer returned %dx%d, want %dx%d", buf.Width, buf.Height, c.width, c.height)
	}

	img = &Image{
		Text:   text,
		Width:  buf.Width,
		Height: buf.Height,
		Buffer: buf,
	}
	c.entries[text] = img

	c.logger.Debug("rendered overlay image",
		"text", text,
		"entries", len(c.entries),
		"footprint", humanize.IBytes(uint64(c.bytesLocked())))

	return img, nil
}

// Derive returns a fresh copy of the cached image for text at the given alpha.
// The second result is false if text was never rendered.
func (c *Cache) Derive(text string, alpha float64) (*PixelBuffer, bool) {
	c.mu.RLock()
	img, ok := c.entries[text]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	return ScaleAlpha(img.Buffer, alpha), true
}

// Has reports whether text has been rendered.
func (c *Cache) Has(text string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.entries[text]
	return ok
}

// Len returns the number of cached images.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Bytes returns the total pixel memory held by the cache.
func (c *Cache) Bytes() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.bytesLocked()
}

func (c *Cache) bytesLocked() int {
	total := 0
	for _, img := range c.entries {
		total += img.Buffer.Size()
	}
	return total
}
