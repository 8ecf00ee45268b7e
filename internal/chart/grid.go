package chart

import (
	"fmt"
	"image"

	"github.com/anthonynsimon/bild/effect"
)

// Grid is a row-major grid of 8-bit intensities.
//
// A Grid produced by one of the constructors is never modified by the
// pipeline; stages that need a different grid allocate a new one.
type Grid struct {
	Width  int
	Height int
	Pix    []uint8
}

// NewGrid allocates a zeroed grid.
func NewGrid(width, height int) Grid {
	return Grid{Width: width, Height: height, Pix: make([]uint8, width*height)}
}

// GridFromImage converts an image to luminance.
func GridFromImage(img image.Image) Grid {
	gray := effect.Grayscale(img)
	b := gray.Bounds()
	g := NewGrid(b.Dx(), b.Dy())
	// effect.Grayscale returns RGBA with R=G=B; keep the R channel
	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			g.Pix[y*g.Width+x] = gray.Pix[gray.PixOffset(b.Min.X+x, b.Min.Y+y)]
		}
	}
	return g
}

// GridFromFloats converts a 0-1 float raster (as produced by most image
// readers) to 0-255 by scaling with 256 and saturating at 255.
// All rows must have the same length.
func GridFromFloats(rows [][]float64) (Grid, error) {
	if len(rows) == 0 {
		return Grid{}, nil
	}
	w := len(rows[0])
	g := NewGrid(w, len(rows))
	for y, row := range rows {
		if len(row) != w {
			return Grid{}, fmt.Errorf("%w: row %d has %d values, want %d", ErrInvalidInput, y, len(row), w)
		}
		for x, v := range row {
			s := 256 * v
			switch {
			case s < 0:
				s = 0
			case s > 255:
				s = 255
			}
			g.Pix[y*w+x] = uint8(s)
		}
	}
	return g, nil
}

// At returns the intensity at column x, row y.
func (g Grid) At(x, y int) uint8 {
	return g.Pix[y*g.Width+x]
}

// Bounds returns the grid rectangle anchored at the origin.
func (g Grid) Bounds() image.Rectangle {
	return image.Rect(0, 0, g.Width, g.Height)
}

// Sub copies the part of the grid inside r. r is clipped to the grid.
func (g Grid) Sub(r image.Rectangle) Grid {
	r = r.Intersect(g.Bounds())
	out := NewGrid(r.Dx(), r.Dy())
	for y := 0; y < out.Height; y++ {
		src := (r.Min.Y+y)*g.Width + r.Min.X
		copy(out.Pix[y*out.Width:(y+1)*out.Width], g.Pix[src:src+out.Width])
	}
	return out
}

// Image returns a grayscale copy suitable for encoding or resampling.
func (g Grid) Image() *image.Gray {
	img := image.NewGray(g.Bounds())
	copy(img.Pix, g.Pix)
	return img
}

// BoolGrid is a row-major grid of foreground flags.
type BoolGrid struct {
	Width  int
	Height int
	Pix    []bool
}

// NewBoolGrid allocates an all-false grid.
func NewBoolGrid(width, height int) BoolGrid {
	return BoolGrid{Width: width, Height: height, Pix: make([]bool, width*height)}
}

// At reports whether the pixel at column x, row y is foreground.
func (g BoolGrid) At(x, y int) bool {
	return g.Pix[y*g.Width+x]
}

// Set marks a pixel. Only constructors and tests should call it.
func (g BoolGrid) Set(x, y int, v bool) {
	g.Pix[y*g.Width+x] = v
}

// Bounds returns the grid rectangle anchored at the origin.
func (g BoolGrid) Bounds() image.Rectangle {
	return image.Rect(0, 0, g.Width, g.Height)
}

// Sub copies the part of the grid inside r. r is clipped to the grid.
func (g BoolGrid) Sub(r image.Rectangle) BoolGrid {
	r = r.Intersect(g.Bounds())
	out := NewBoolGrid(r.Dx(), r.Dy())
	for y := 0; y < out.Height; y++ {
		src := (r.Min.Y+y)*g.Width + r.Min.X
		copy(out.Pix[y*out.Width:(y+1)*out.Width], g.Pix[src:src+out.Width])
	}
	return out
}

// Count returns the number of foreground pixels.
func (g BoolGrid) Count() int {
	n := 0
	for _, v := range g.Pix {
		if v {
			n++
		}
	}
	return n
}

// Image renders foreground as white and background as black.
func (g BoolGrid) Image() *image.Gray {
	img := image.NewGray(g.Bounds())
	for i, v := range g.Pix {
		if v {
			img.Pix[i] = 255
		}
	}
	return img
}
