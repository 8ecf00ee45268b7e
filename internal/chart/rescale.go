package chart

import (
	"fmt"

	"gonum.org/v1/gonum/stat"
)

// AnchorPair ties a pixel coordinate to a known data value.
type AnchorPair struct {
	Pixel float64 `json:"pixel"`
	Value float64 `json:"value"`
}

// LinearMap converts pixel coordinates to data values.
type LinearMap struct {
	Slope     float64 `json:"slope"`
	Intercept float64 `json:"intercept"`
}

// Apply maps one pixel coordinate.
func (m LinearMap) Apply(pixel float64) float64 {
	return m.Slope*pixel + m.Intercept
}

// ApplyAll maps every coordinate into a new slice.
func (m LinearMap) ApplyAll(pixels []float64) []float64 {
	out := make([]float64, len(pixels))
	for i, p := range pixels {
		out[i] = m.Apply(p)
	}
	return out
}

// FitLinearMap fits value = slope*pixel + intercept by least squares. At
// least two distinct pixel coordinates are required.
func FitLinearMap(anchors []AnchorPair) (LinearMap, error) {
	if len(anchors) < 2 {
		return LinearMap{}, fmt.Errorf("%w: got %d, need 2", ErrInsufficientAnchors, len(anchors))
	}
	xs := make([]float64, len(anchors))
	ys := make([]float64, len(anchors))
	distinct := false
	for i, a := range anchors {
		xs[i] = a.Pixel
		ys[i] = a.Value
		if a.Pixel != anchors[0].Pixel {
			distinct = true
		}
	}
	if !distinct {
		return LinearMap{}, fmt.Errorf("%w: all %d anchors share pixel %g", ErrInsufficientAnchors, len(anchors), anchors[0].Pixel)
	}
	intercept, slope := stat.LinearRegression(xs, ys, nil, false)
	return LinearMap{Slope: slope, Intercept: intercept}, nil
}

// FitAndApply fits a map from anchors and applies it to coords.
//
// When inverted is set, the axis runs opposite to pixel order (image rows
// grow downward while chart values grow upward): anchors and coordinates
// are reflected as extent-p before fitting and applying.
func FitAndApply(coords []float64, inverted bool, extent float64, anchors []AnchorPair) ([]float64, error) {
	if inverted {
		anchors = reflectAnchors(anchors, extent)
		coords = reflect(coords, extent)
	}
	m, err := FitLinearMap(anchors)
	if err != nil {
		return nil, err
	}
	return m.ApplyAll(coords), nil
}

// PairAnchors zips grid-line coordinates with the tick values printed next
// to them.
func PairAnchors(pixels, values []float64) ([]AnchorPair, error) {
	if len(pixels) != len(values) {
		return nil, fmt.Errorf("%w: %d grid lines but %d tick values", ErrInvalidInput, len(pixels), len(values))
	}
	out := make([]AnchorPair, len(pixels))
	for i := range pixels {
		out[i] = AnchorPair{Pixel: pixels[i], Value: values[i]}
	}
	return out, nil
}

func reflect(coords []float64, extent float64) []float64 {
	out := make([]float64, len(coords))
	for i, c := range coords {
		out[i] = extent - c
	}
	return out
}

func reflectAnchors(anchors []AnchorPair, extent float64) []AnchorPair {
	out := make([]AnchorPair, len(anchors))
	for i, a := range anchors {
		out[i] = AnchorPair{Pixel: extent - a.Pixel, Value: a.Value}
	}
	return out
}
