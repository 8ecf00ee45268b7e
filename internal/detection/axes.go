package detection

import (
	"fmt"

	"github.com/ironsheep/chart-digitizer-mcp/internal/chart"
)

// DefaultMinFraction is the share of the image an axis line must span.
const DefaultMinFraction = 0.5

// AxisLine is a detected axis: a band of adjacent rows (x axis) or
// columns (y axis) that each hold a long foreground run.
type AxisLine struct {
	// Position is the top row or left column of the band.
	Position  int `json:"position"`
	Thickness int `json:"thickness"`

	// Start and End bound the longest run on the Position line.
	Start int `json:"start"`
	End   int `json:"end"`
}

// AxesResult holds the detected axes and the digitize bounds they imply.
type AxesResult struct {
	XAxis *AxisLine `json:"x_axis,omitempty"`
	YAxis *AxisLine `json:"y_axis,omitempty"`

	// Baseline is the top row of the x axis, or the grid height.
	Baseline int `json:"baseline"`
	// XMin is the first column right of the y axis, or 0.
	XMin int `json:"x_min"`
	// XMax is the end of the x axis run, or the grid width.
	XMax int `json:"x_max"`
}

// DetectAxes finds the x and y axes of g.
//
// A row qualifies when its longest foreground run is at least
// minFraction of the width; the x axis is the lowest qualifying row
// together with the qualifying rows directly above it. The y axis is the
// leftmost qualifying column (runs measured against the height) and its
// qualifying neighbours to the right. Missing axes leave the bounds at the
// full grid.
func DetectAxes(g chart.BoolGrid, minFraction float64) (*AxesResult, error) {
	if minFraction <= 0 || minFraction > 1 {
		return nil, fmt.Errorf("%w: min fraction %g must be in (0,1]", chart.ErrInvalidInput, minFraction)
	}

	res := &AxesResult{Baseline: g.Height, XMax: g.Width}

	rowRun := func(y int) (int, int) {
		return longestRun(g.Width, func(x int) bool { return g.At(x, y) })
	}
	colRun := func(x int) (int, int) {
		return longestRun(g.Height, func(y int) bool { return g.At(x, y) })
	}
	minRow := int(minFraction * float64(g.Width))
	minCol := int(minFraction * float64(g.Height))

	for y := g.Height - 1; y >= 0; y-- {
		if s, e := rowRun(y); e-s >= minRow && e > s {
			top := y
			for top > 0 {
				s, e := rowRun(top - 1)
				if e-s < minRow || e == s {
					break
				}
				top--
			}
			start, end := rowRun(top)
			res.XAxis = &AxisLine{Position: top, Thickness: y - top + 1, Start: start, End: end}
			res.Baseline = top
			res.XMax = end
			break
		}
	}

	for x := 0; x < g.Width; x++ {
		if s, e := colRun(x); e-s >= minCol && e > s {
			right := x
			for right < g.Width-1 {
				s, e := colRun(right + 1)
				if e-s < minCol || e == s {
					break
				}
				right++
			}
			start, end := colRun(x)
			res.YAxis = &AxisLine{Position: x, Thickness: right - x + 1, Start: start, End: end}
			res.XMin = right + 1
			break
		}
	}

	if res.XMin >= res.XMax {
		return nil, fmt.Errorf("%w: y axis at column %d is right of the x axis end %d", chart.ErrInvalidInput, res.XMin, res.XMax)
	}
	return res, nil
}

// ApplyTo copies the detected bounds into the fields of req that are
// still zero.
func (r *AxesResult) ApplyTo(req *chart.DigitizeRequest) {
	if req.XMin == 0 {
		req.XMin = r.XMin
	}
	if req.XMax == 0 {
		req.XMax = r.XMax
	}
	if req.Baseline == 0 {
		req.Baseline = r.Baseline
	}
}

// longestRun returns the [start, end) of the longest run of set positions
// in [0, n), the earliest on ties.
func longestRun(n int, set func(i int) bool) (int, int) {
	bestStart, bestEnd := 0, 0
	start := -1
	for i := 0; i <= n; i++ {
		if i < n && set(i) {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 && i-start > bestEnd-bestStart {
			bestStart, bestEnd = start, i
		}
		start = -1
	}
	return bestStart, bestEnd
}
