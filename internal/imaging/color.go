package imaging

import (
	"fmt"
	"image"
	"sort"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/ironsheep/chart-digitizer-mcp/internal/chart"
)

// RGBColor represents an RGB color with 8-bit components.
type RGBColor struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// HSLColor represents a color in HSL color space.
type HSLColor struct {
	H int `json:"h"` // Hue: 0-360 degrees (0=red, 120=green, 240=blue)
	S int `json:"s"` // Saturation: 0-100 percent (0=gray, 100=vivid)
	L int `json:"l"` // Lightness: 0-100 percent (0=black, 50=normal, 100=white)
}

// Region represents a rectangular region within an image.
// (X1, Y1) is inclusive, (X2, Y2) exclusive.
type Region struct {
	X1 int
	Y1 int
	X2 int
	Y2 int
}

// ColorFrequency represents a color and its occurrence frequency in an image.
type ColorFrequency struct {
	Hex        string   `json:"hex"`        // Hex color "#rrggbb" (quantized)
	Percentage float64  `json:"percentage"` // Percentage of pixels with this color (0-100)
	RGB        RGBColor `json:"rgb"`
	HSL        HSLColor `json:"hsl"`
}

// DominantColorsResult contains the most frequently occurring colors,
// most common first.
type DominantColorsResult struct {
	Colors []ColorFrequency `json:"colors"`
}

// DominantColors extracts the count most common colors from an image or
// region. On a chart the top entries are normally the background, the axis
// ink and then one entry per bar series, which makes this the quickest way
// to pick the bar color for ColorMask.
//
// RGB components are quantized to multiples of 16 so antialiased edges
// fold into their parent color. Equal frequencies are ordered by hex value.
func DominantColors(img image.Image, count int, region *Region) (*DominantColorsResult, error) {
	if count <= 0 {
		return nil, fmt.Errorf("count %d must be positive", count)
	}
	bounds := img.Bounds()
	if region != nil {
		r := image.Rect(region.X1, region.Y1, region.X2, region.Y2)
		if !r.In(bounds) || r.Empty() {
			return nil, fmt.Errorf("region (%d,%d)-(%d,%d) outside image bounds", region.X1, region.Y1, region.X2, region.Y2)
		}
		bounds = r
	}

	counts := make(map[RGBColor]int)
	total := 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			key := RGBColor{
				R: uint8((r >> 8) / 16 * 16),
				G: uint8((g >> 8) / 16 * 16),
				B: uint8((b >> 8) / 16 * 16),
			}
			counts[key]++
			total++
		}
	}

	colors := make([]ColorFrequency, 0, len(counts))
	for rgb, n := range counts {
		c := colorful.Color{R: float64(rgb.R) / 255, G: float64(rgb.G) / 255, B: float64(rgb.B) / 255}
		colors = append(colors, ColorFrequency{
			Hex:        c.Hex(),
			Percentage: float64(n) / float64(total) * 100,
			RGB:        rgb,
			HSL:        toHSL(c),
		})
	}

	sort.Slice(colors, func(i, j int) bool {
		if colors[i].Percentage != colors[j].Percentage {
			return colors[i].Percentage > colors[j].Percentage
		}
		return colors[i].Hex < colors[j].Hex
	})
	if len(colors) > count {
		colors = colors[:count]
	}

	return &DominantColorsResult{Colors: colors}, nil
}

// ParseHexColor parses "#rrggbb" or "#rgb", with or without the '#'.
func ParseHexColor(hex string) (colorful.Color, error) {
	hex = strings.TrimSpace(hex)
	if hex == "" {
		return colorful.Color{}, fmt.Errorf("empty color string")
	}
	if !strings.HasPrefix(hex, "#") {
		hex = "#" + hex
	}
	if len(hex) != 4 && len(hex) != 7 {
		return colorful.Color{}, fmt.Errorf("invalid hex color %q: want #rgb or #rrggbb", hex)
	}
	c, err := colorful.Hex(hex)
	if err != nil {
		return colorful.Color{}, fmt.Errorf("invalid hex color %q: %w", hex, err)
	}
	return c, nil
}

// ColorMask converts a colored chart into an intensity grid where pixels
// close to target are bright.
//
// Each pixel's value is 255*(1 - d/maxDistance), floored at 0, where d is
// the CIE L*a*b* distance to target. With the default binarization
// threshold of 100 a pixel becomes foreground when d is below roughly 0.6
// of maxDistance. This lets the column scan isolate one series in a
// multi-series chart, or bars drawn in a mid-tone that a plain luminance
// threshold cannot separate from the background.
func ColorMask(img image.Image, target colorful.Color, maxDistance float64) (chart.Grid, error) {
	if maxDistance <= 0 {
		return chart.Grid{}, fmt.Errorf("max distance %g must be positive", maxDistance)
	}
	bounds := img.Bounds()
	g := chart.NewGrid(bounds.Dx(), bounds.Dy())
	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			c, ok := colorful.MakeColor(img.At(bounds.Min.X+x, bounds.Min.Y+y))
			if !ok {
				// fully transparent
				continue
			}
			v := 1 - c.DistanceLab(target)/maxDistance
			if v <= 0 {
				continue
			}
			g.Pix[y*g.Width+x] = uint8(v * 255)
		}
	}
	return g, nil
}

func toHSL(c colorful.Color) HSLColor {
	h, s, l := c.Hsl()
	return HSLColor{H: int(h), S: int(s * 100), L: int(l * 100)}
}
