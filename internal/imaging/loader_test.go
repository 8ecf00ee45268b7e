package imaging

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"reflect"
	"sync"
	"testing"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	"github.com/ironsheep/chart-digitizer-mcp/internal/chart"
)

// writeTestImage encodes img into dir/name using the encoder for the
// file extension and returns the path.
func writeTestImage(t *testing.T, dir, name string, img image.Image) string {
	t.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create %s: %v", name, err)
	}
	defer f.Close()

	switch filepath.Ext(name) {
	case ".png":
		err = png.Encode(f, img)
	case ".tif", ".tiff":
		err = tiff.Encode(f, img, nil)
	case ".bmp":
		err = bmp.Encode(f, img)
	default:
		t.Fatalf("no encoder for %s", name)
	}
	if err != nil {
		t.Fatalf("failed to encode %s: %v", name, err)
	}
	return path
}

// createTestImage writes a solid PNG and returns its path.
func createTestImage(t *testing.T, width, height int, c color.Color) string {
	t.Helper()
	return writeTestImage(t, t.TempDir(), "solid.png", createInMemoryImage(width, height, c))
}

func TestNewImageCache(t *testing.T) {
	cache := NewImageCache(0)
	if cache == nil {
		t.Fatal("NewImageCache returned nil")
	}
	if cache.capacity != DefaultCacheSize {
		t.Errorf("capacity: got %d, want %d", cache.capacity, DefaultCacheSize)
	}
	if cache.Len() != 0 {
		t.Errorf("new cache has %d entries", cache.Len())
	}
}

func TestImageCache_Load(t *testing.T) {
	cache := NewImageCache(4)
	imgPath := createTestImage(t, 100, 100, color.RGBA{255, 0, 0, 255})

	img1, err := cache.Load(imgPath)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	bounds := img1.Bounds()
	if bounds.Dx() != 100 || bounds.Dy() != 100 {
		t.Errorf("unexpected dimensions: got %dx%d, want 100x100", bounds.Dx(), bounds.Dy())
	}

	img2, err := cache.Load(imgPath)
	if err != nil {
		t.Fatalf("second Load failed: %v", err)
	}
	if img1 != img2 {
		t.Error("second Load did not return cached image")
	}
}

func TestImageCache_Load_Errors(t *testing.T) {
	cache := NewImageCache(4)

	if _, err := cache.Load("/nonexistent/path/to/chart.png"); err == nil {
		t.Error("Load should fail for non-existent file")
	}

	path := filepath.Join(t.TempDir(), "bogus.png")
	if err := os.WriteFile(path, []byte("not an image"), 0644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}
	if _, err := cache.Load(path); err == nil {
		t.Error("Load should fail for invalid image data")
	}
	if cache.Len() != 0 {
		t.Errorf("failed loads were cached: %d entries", cache.Len())
	}
}

func TestImageCache_Capacity(t *testing.T) {
	dir := t.TempDir()
	cache := NewImageCache(2)
	img := createInMemoryImage(4, 4, color.White)

	a := writeTestImage(t, dir, "a.png", img)
	b := writeTestImage(t, dir, "b.png", img)
	c := writeTestImage(t, dir, "c.png", img)

	for _, p := range []string{a, b, c} {
		if _, err := cache.Load(p); err != nil {
			t.Fatalf("Load %s failed: %v", p, err)
		}
	}

	if cache.Len() != 2 {
		t.Fatalf("Len: got %d, want 2", cache.Len())
	}
	if _, ok := cache.images[a]; ok {
		t.Error("oldest entry was not evicted")
	}
	if _, ok := cache.images[c]; !ok {
		t.Error("newest entry missing")
	}
}

func TestImageCache_EvictAndClear(t *testing.T) {
	dir := t.TempDir()
	cache := NewImageCache(4)
	img := createInMemoryImage(4, 4, color.Black)
	a := writeTestImage(t, dir, "a.png", img)
	b := writeTestImage(t, dir, "b.png", img)

	cache.Load(a)
	cache.Load(b)

	cache.Evict(a)
	cache.Evict("/never/loaded.png")
	if cache.Len() != 1 {
		t.Errorf("after Evict: got %d entries, want 1", cache.Len())
	}
	if len(cache.order) != 1 || cache.order[0] != b {
		t.Errorf("order after Evict: %v", cache.order)
	}

	cache.Clear()
	if cache.Len() != 0 || len(cache.order) != 0 {
		t.Errorf("after Clear: %d entries, order %v", cache.Len(), cache.order)
	}
}

func TestImageCache_ConcurrentAccess(t *testing.T) {
	cache := NewImageCache(1)
	dir := t.TempDir()
	paths := []string{
		writeTestImage(t, dir, "a.png", createInMemoryImage(8, 8, color.White)),
		writeTestImage(t, dir, "b.png", createInMemoryImage(8, 8, color.Black)),
	}

	var wg sync.WaitGroup
	errs := make(chan error, 100)
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(p string) {
			defer wg.Done()
			if _, err := cache.Load(p); err != nil {
				errs <- err
			}
		}(paths[i%2])
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("concurrent Load error: %v", err)
	}
	if cache.Len() > 1 {
		t.Errorf("cache exceeded capacity: %d", cache.Len())
	}
}

func TestLoadImageInfo_Formats(t *testing.T) {
	dir := t.TempDir()
	gray := image.NewGray(image.Rect(0, 0, 30, 20))

	tests := []struct {
		name      string
		file      string
		img       image.Image
		format    string
		grayscale bool
	}{
		{"png rgba", "chart.png", createInMemoryImage(30, 20, color.RGBA{255, 128, 64, 255}), "png", false},
		{"png gray", "gray.png", gray, "png", true},
		{"tiff gray", "scan.tiff", gray, "tiff", true},
		{"bmp", "chart.bmp", createInMemoryImage(30, 20, color.White), "bmp", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeTestImage(t, dir, tt.file, tt.img)
			info, err := LoadImageInfo(NewImageCache(4), path)
			if err != nil {
				t.Fatalf("LoadImageInfo failed: %v", err)
			}
			if info.Width != 30 || info.Height != 20 {
				t.Errorf("dimensions: got %dx%d, want 30x20", info.Width, info.Height)
			}
			if info.Format != tt.format {
				t.Errorf("Format: got %s, want %s", info.Format, tt.format)
			}
			if info.Grayscale != tt.grayscale {
				t.Errorf("Grayscale: got %v, want %v", info.Grayscale, tt.grayscale)
			}
			if info.FileSizeBytes <= 0 {
				t.Error("FileSizeBytes should be positive")
			}
		})
	}
}

func TestLoadGrid(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 10, 5))
	img.SetGray(3, 2, color.Gray{Y: 200})
	path := writeTestImage(t, t.TempDir(), "grid.png", img)

	g, err := LoadGrid(NewImageCache(1), path)
	if err != nil {
		t.Fatalf("LoadGrid failed: %v", err)
	}
	if g.Width != 10 || g.Height != 5 {
		t.Fatalf("grid size: got %dx%d, want 10x5", g.Width, g.Height)
	}
	if v := g.At(3, 2); v < 199 || v > 200 {
		t.Errorf("At(3,2): got %d, want 200", v)
	}
	if g.At(0, 0) != 0 {
		t.Errorf("At(0,0): got %d, want 0", g.At(0, 0))
	}

	if _, err := LoadGrid(NewImageCache(1), "/missing.png"); err == nil {
		t.Error("LoadGrid should fail for a missing file")
	}
}

func TestLoadGrid_DigitizesLikeDirectGrid(t *testing.T) {
	bars := [][3]int{{20, 40, 30}, {60, 80, 60}, {100, 120, 90}, {140, 160, 45}}

	img := image.NewRGBA(image.Rect(0, 0, 200, 120))
	direct := chart.NewGrid(200, 120)
	for y := 0; y < 120; y++ {
		for x := 0; x < 200; x++ {
			img.Set(x, y, color.Black)
		}
	}
	for _, b := range bars {
		for y := 110 - b[2]; y < 110; y++ {
			for x := b[0]; x < b[1]; x++ {
				img.Set(x, y, color.RGBA{230, 230, 230, 255})
				direct.Pix[y*200+x] = 230
			}
		}
	}
	path := writeTestImage(t, t.TempDir(), "bars.png", img)

	loaded, err := LoadGrid(NewImageCache(1), path)
	if err != nil {
		t.Fatalf("LoadGrid failed: %v", err)
	}
	if !bytes.Equal(loaded.Pix, direct.Pix) {
		t.Fatal("loaded grid differs from the directly built grid")
	}

	p, err := chart.New(chart.DefaultParams())
	if err != nil {
		t.Fatalf("chart.New failed: %v", err)
	}
	want, err := p.Digitize(context.Background(), chart.DigitizeRequest{Grid: direct, Baseline: 110})
	if err != nil {
		t.Fatalf("Digitize(direct) failed: %v", err)
	}
	got, err := p.Digitize(context.Background(), chart.DigitizeRequest{Grid: loaded, Baseline: 110})
	if err != nil {
		t.Fatalf("Digitize(loaded) failed: %v", err)
	}
	if !reflect.DeepEqual(got.Points, want.Points) {
		t.Errorf("points: got %+v, want %+v", got.Points, want.Points)
	}
	if len(got.Points) != 4 {
		t.Errorf("points: got %d, want 4", len(got.Points))
	}
}
