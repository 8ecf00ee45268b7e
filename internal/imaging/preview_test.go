package imaging

import (
	"math"
	"testing"

	"github.com/ironsheep/chart-digitizer-mcp/internal/chart"
)

func TestBinarizePreview(t *testing.T) {
	g := chart.NewGrid(10, 10)
	for x := 0; x < 10; x++ {
		g.Pix[x] = 180    // row 0 bar
		g.Pix[10+x] = 100 // row 1 at the threshold
		g.Pix[20+x] = 255 // row 2 saturated
	}

	tests := []struct {
		name      string
		threshold uint8
		invert    bool
		fraction  float64
		whiteRow  int
		blackRow  int
	}{
		{"default threshold", 100, false, 0.2, 0, 1},
		{"high threshold", 200, false, 0.1, 2, 0},
		{"inverted", 100, true, 0.8, 1, 0},
		{"threshold 255", 255, false, 0, -1, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := BinarizePreview(g, tt.threshold, tt.invert)
			if err != nil {
				t.Fatalf("BinarizePreview failed: %v", err)
			}
			if math.Abs(result.ForegroundFraction-tt.fraction) > 1e-9 {
				t.Errorf("ForegroundFraction: got %g, want %g", result.ForegroundFraction, tt.fraction)
			}
			if result.Width != 10 || result.Height != 10 {
				t.Errorf("size: got %dx%d", result.Width, result.Height)
			}

			out := decodeResultPNG(t, result.ImageBase64)
			if tt.whiteRow >= 0 {
				if r, _, _, _ := out.At(5, tt.whiteRow).RGBA(); r>>8 != 255 {
					t.Errorf("row %d should be white, got %d", tt.whiteRow, r>>8)
				}
			}
			if r, _, _, _ := out.At(5, tt.blackRow).RGBA(); r != 0 {
				t.Errorf("row %d should be black, got %d", tt.blackRow, r>>8)
			}
		})
	}
}

func TestBinarizePreview_MatchesMask(t *testing.T) {
	// every luminance level once
	g := chart.NewGrid(16, 16)
	for i := range g.Pix {
		g.Pix[i] = uint8(i)
	}

	for _, threshold := range []uint8{0, 1, 99, 100, 101, 254, 255} {
		for _, invert := range []bool{false, true} {
			result, err := BinarizePreview(g, threshold, invert)
			if err != nil {
				t.Fatalf("BinarizePreview(%d, %v) failed: %v", threshold, invert, err)
			}
			mask := chart.Binarize(g, threshold)
			if invert {
				mask = mask.Invert()
			}

			out := decodeResultPNG(t, result.ImageBase64)
			for y := 0; y < 16; y++ {
				for x := 0; x < 16; x++ {
					want := uint32(0)
					if mask.At(x, y) {
						want = 255
					}
					if r, _, _, _ := out.At(x, y).RGBA(); r>>8 != want {
						t.Fatalf("threshold %d invert %v: pixel (%d,%d) = %d, want %d",
							threshold, invert, x, y, r>>8, want)
					}
				}
			}
		}
	}
}
