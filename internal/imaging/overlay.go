package imaging

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/disintegration/imaging"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Default overlay colors.
const (
	DefaultLineColor  = "#ff0000"
	DefaultPointColor = "#00a0ff"
)

// OverlayPoint is a marker drawn on the chart, usually a digitized bar top.
type OverlayPoint struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Label string  `json:"label,omitempty"`
}

// OverlayOptions selects what DrawOverlay draws. Empty colors fall back
// to the defaults.
type OverlayOptions struct {
	// Rows are y coordinates of horizontal lines (detected grid lines).
	Rows []float64
	// Columns are x coordinates of vertical lines (bar representatives).
	Columns []float64
	// Points are marked with a small cross and their label.
	Points []OverlayPoint

	LineColor  string
	PointColor string
}

// OverlayResult contains the annotated chart.
type OverlayResult struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
	Lines       int    `json:"lines"`
	Points      int    `json:"points"`
}

// DrawOverlay copies img and draws the requested lines and points on it.
// Coordinates are truncated to whole pixels; lines outside the image are
// skipped.
func DrawOverlay(img image.Image, opts OverlayOptions) (*image.RGBA, error) {
	lineColor, err := overlayColor(opts.LineColor, DefaultLineColor)
	if err != nil {
		return nil, err
	}
	pointColor, err := overlayColor(opts.PointColor, DefaultPointColor)
	if err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(dst, dst.Bounds(), img, bounds.Min, draw.Src)
	w, h := dst.Bounds().Dx(), dst.Bounds().Dy()

	for _, r := range opts.Rows {
		y := int(r)
		if y < 0 || y >= h {
			continue
		}
		for x := 0; x < w; x++ {
			dst.Set(x, y, lineColor)
		}
	}
	for _, c := range opts.Columns {
		x := int(c)
		if x < 0 || x >= w {
			continue
		}
		for y := 0; y < h; y++ {
			dst.Set(x, y, lineColor)
		}
	}

	face := basicfont.Face7x13
	for _, p := range opts.Points {
		if math.IsNaN(p.X) || math.IsNaN(p.Y) {
			continue
		}
		px, py := int(p.X), int(p.Y)
		for d := -3; d <= 3; d++ {
			dst.Set(px+d, py, pointColor)
			dst.Set(px, py+d, pointColor)
		}
		if p.Label == "" {
			continue
		}
		d := &font.Drawer{
			Dst:  dst,
			Src:  image.NewUniform(pointColor),
			Face: face,
			Dot:  fixed.P(px+5, py-4),
		}
		d.DrawString(p.Label)
	}

	return dst, nil
}

// Overlay draws the overlay and encodes it as PNG.
func Overlay(img image.Image, opts OverlayOptions) (*OverlayResult, error) {
	dst, err := DrawOverlay(img, opts)
	if err != nil {
		return nil, err
	}
	encoded, err := encodePNG(dst)
	if err != nil {
		return nil, err
	}
	return &OverlayResult{
		Width:       dst.Bounds().Dx(),
		Height:      dst.Bounds().Dy(),
		ImageBase64: encoded,
		MimeType:    "image/png",
		Lines:       len(opts.Rows) + len(opts.Columns),
		Points:      len(opts.Points),
	}, nil
}

func overlayColor(hex, fallback string) (color.RGBA, error) {
	if hex == "" {
		hex = fallback
	}
	c, err := ParseHexColor(hex)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("overlay color: %w", err)
	}
	r, g, b := c.Clamped().RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}, nil
}

// SaveOverlay draws the overlay and writes it to path. The format follows
// the file extension.
func SaveOverlay(img image.Image, opts OverlayOptions, path string) error {
	dst, err := DrawOverlay(img, opts)
	if err != nil {
		return err
	}
	if err := imaging.Save(dst, path); err != nil {
		return fmt.Errorf("failed to save overlay: %w", err)
	}
	return nil
}
