package imaging

import (
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"os"
	"sync"

	_ "golang.org/x/image/bmp"  // Register BMP format decoder
	_ "golang.org/x/image/tiff" // Register TIFF format decoder

	"github.com/ironsheep/chart-digitizer-mcp/internal/chart"
)

// DefaultCacheSize is the capacity used when NewImageCache is given a
// non-positive size.
const DefaultCacheSize = 10

type cachedImage struct {
	img    image.Image
	format string
}

// ImageCache provides thread-safe caching of decoded chart images.
//
// Images are keyed by the exact path string. When the cache is full the
// least recently loaded entry is evicted, so a long MCP session stepping
// through many scans does not grow without bound.
type ImageCache struct {
	mu       sync.RWMutex
	capacity int
	images   map[string]cachedImage
	order    []string
}

// NewImageCache creates an empty cache holding at most capacity images.
func NewImageCache(capacity int) *ImageCache {
	if capacity <= 0 {
		capacity = DefaultCacheSize
	}
	return &ImageCache{
		capacity: capacity,
		images:   make(map[string]cachedImage),
	}
}

// Load retrieves an image from the cache or decodes it from disk.
//
// Supported formats are PNG, JPEG, GIF, TIFF and BMP.
func (c *ImageCache) Load(path string) (image.Image, error) {
	entry, err := c.load(path)
	if err != nil {
		return nil, err
	}
	return entry.img, nil
}

func (c *ImageCache) load(path string) (cachedImage, error) {
	c.mu.RLock()
	if entry, ok := c.images[path]; ok {
		c.mu.RUnlock()
		return entry, nil
	}
	c.mu.RUnlock()

	f, err := os.Open(path)
	if err != nil {
		return cachedImage{}, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		return cachedImage{}, fmt.Errorf("failed to decode image: %w", err)
	}
	entry := cachedImage{img: img, format: format}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.images[path]; !ok {
		c.order = append(c.order, path)
	}
	c.images[path] = entry
	for len(c.order) > c.capacity {
		delete(c.images, c.order[0])
		c.order = c.order[1:]
	}

	return entry, nil
}

// Len reports the number of cached images.
func (c *ImageCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.images)
}

// Clear removes all images from the cache.
func (c *ImageCache) Clear() {
	c.mu.Lock()
	c.images = make(map[string]cachedImage)
	c.order = nil
	c.mu.Unlock()
}

// Evict removes a specific image from the cache by its path.
func (c *ImageCache) Evict(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.images[path]; !ok {
		return
	}
	delete(c.images, path)
	for i, p := range c.order {
		if p == path {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}

// ImageInfo contains metadata about a loaded chart image.
type ImageInfo struct {
	Width  int `json:"width"`
	Height int `json:"height"`

	// Format is the name reported by the decoder: "png", "jpeg", "gif",
	// "tiff" or "bmp".
	Format string `json:"format"`

	// ColorDepth indicates the bit depth per channel: "8-bit" or "16-bit".
	ColorDepth string `json:"color_depth"`

	// Grayscale is true for single-channel images (typical of scans).
	Grayscale bool `json:"grayscale"`

	HasAlpha      bool  `json:"has_alpha"`
	FileSizeBytes int64 `json:"file_size_bytes"`
}

// LoadImageInfo loads an image through the cache and describes it.
func LoadImageInfo(cache *ImageCache, path string) (*ImageInfo, error) {
	entry, err := cache.load(path)
	if err != nil {
		return nil, err
	}

	stat, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	info := &ImageInfo{
		Width:         entry.img.Bounds().Dx(),
		Height:        entry.img.Bounds().Dy(),
		Format:        entry.format,
		ColorDepth:    "8-bit",
		FileSizeBytes: stat.Size(),
	}
	switch entry.img.(type) {
	case *image.RGBA, *image.NRGBA:
		info.HasAlpha = true
	case *image.RGBA64, *image.NRGBA64:
		info.HasAlpha = true
		info.ColorDepth = "16-bit"
	case *image.Gray:
		info.Grayscale = true
	case *image.Gray16:
		info.Grayscale = true
		info.ColorDepth = "16-bit"
	}
	return info, nil
}

// LoadGrid loads an image and converts it to a luminance grid.
func LoadGrid(cache *ImageCache, path string) (chart.Grid, error) {
	img, err := cache.Load(path)
	if err != nil {
		return chart.Grid{}, err
	}
	return chart.GridFromImage(img), nil
}
