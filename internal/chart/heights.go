package chart

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// HeightCorrection is the result of CorrectHeights.
type HeightCorrection struct {
	// Values holds the corrected height at each representative coordinate:
	// the digitized series in pixel units.
	Values []int `json:"values"`

	// Heights is the corrected copy of the input series.
	Heights []int `json:"heights"`

	// Modes holds the modal height found in each window.
	Modes []int `json:"modes"`

	// Plateaus holds the confirmed [first, last] column range of each bar,
	// in the series' own coordinates (not offset by rangeMin).
	Plateaus []Span `json:"plateaus"`
}

// CorrectHeights snaps every bar plateau to its dominant height.
//
// heights[k] is the raw bar height of pixel column rangeMin+k. For each
// representative x0 the window [x0-h, x0+h), h = int(blockDelta *
// WindowRatio), is clipped to the series. Heights above NoiseFloor give
// the window's mode (smallest value on ties). Columns whose raw height is
// strictly within Tolerance of the mode are confirmed, and every column
// from the first to the last confirmed one is set to the rounded mean of
// the confirmed heights. Windows always read the raw series.
//
// The output series is sampled at int(x0)-rangeMin for each representative.
func (p *Pipeline) CorrectHeights(heights []int, blockDelta float64, reps []float64, rangeMin int) (*HeightCorrection, error) {
	if blockDelta <= 0 || math.IsNaN(blockDelta) {
		return nil, fmt.Errorf("%w: block delta %g must be positive", ErrInvalidInput, blockDelta)
	}
	half := int(blockDelta * p.Params.WindowRatio)
	if half < 1 {
		half = 1
	}

	out := &HeightCorrection{
		Heights:  make([]int, len(heights)),
		Values:   make([]int, 0, len(reps)),
		Modes:    make([]int, 0, len(reps)),
		Plateaus: make([]Span, 0, len(reps)),
	}
	copy(out.Heights, heights)

	for _, x0 := range reps {
		center := int(x0) - rangeMin
		if center < 0 || center >= len(heights) {
			return nil, fmt.Errorf("%w: representative %g outside series [%d,%d)",
				ErrInvalidInput, x0, rangeMin, rangeMin+len(heights))
		}
		lo := center - half
		if lo < 0 {
			lo = 0
		}
		hi := center + half
		if hi > len(heights) {
			hi = len(heights)
		}

		signal := make([]float64, 0, hi-lo)
		for k := lo; k < hi; k++ {
			if heights[k] > p.Params.NoiseFloor {
				signal = append(signal, float64(heights[k]))
			}
		}
		if len(signal) == 0 {
			return nil, fmt.Errorf("%w: window [%d,%d) around %g", ErrNoSignalInWindow, lo+rangeMin, hi+rangeMin, x0)
		}
		mode := smallestMode(signal)

		lower := (1 - p.Params.Tolerance) * mode
		upper := (1 + p.Params.Tolerance) * mode
		confirmed := make([]float64, 0, hi-lo)
		first, last := -1, -1
		for k := lo; k < hi; k++ {
			v := float64(heights[k])
			if v > lower && v < upper {
				confirmed = append(confirmed, v)
				if first < 0 {
					first = k
				}
				last = k
			}
		}

		// the mode itself always lies in the band
		level := int(math.Round(stat.Mean(confirmed, nil)))
		for k := first; k <= last; k++ {
			out.Heights[k] = level
		}
		out.Modes = append(out.Modes, int(mode))
		out.Plateaus = append(out.Plateaus, Span{Start: first, End: last + 1})
	}

	for _, x0 := range reps {
		out.Values = append(out.Values, out.Heights[int(x0)-rangeMin])
	}

	p.logf("heights: corrected %d bars, values %v", len(reps), out.Values)
	return out, nil
}

// smallestMode returns the most frequent value, breaking ties toward the
// smallest. stat.Mode alone picks an arbitrary value among equal counts.
func smallestMode(x []float64) float64 {
	_, count := stat.Mode(x, nil)
	sorted := append([]float64(nil), x...)
	sort.Float64s(sorted)
	run := 0
	for i, v := range sorted {
		if i > 0 && v == sorted[i-1] {
			run++
		} else {
			run = 1
		}
		if float64(run) == count {
			return v
		}
	}
	return sorted[0]
}
