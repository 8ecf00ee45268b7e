package chart

import "testing"

// bar is one synthetic bar: columns [x0, x1) rising height pixels above
// the baseline.
type bar struct {
	x0, x1, height int
}

// syntheticChart draws bright bars on a dark background, with short tick
// marks starting at column 0 on the given rows.
func syntheticChart(t *testing.T, width, height, baseline int, bars []bar, tickRows []int, tickLen int) Grid {
	t.Helper()

	g := NewGrid(width, height)
	for _, b := range bars {
		for y := baseline - b.height; y < baseline; y++ {
			for x := b.x0; x < b.x1; x++ {
				g.Pix[y*width+x] = 230
			}
		}
	}
	for _, row := range tickRows {
		for x := 0; x < tickLen; x++ {
			g.Pix[row*width+x] = 230
		}
	}
	return g
}

func defaultPipeline(t *testing.T) *Pipeline {
	t.Helper()

	p, err := New(DefaultParams())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return p
}
