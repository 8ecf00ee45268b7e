package chart

import (
	"fmt"
	"log"
)

// Params holds the tuning constants of the pipeline. The defaults match
// the course charts the pipeline was calibrated on; other chart styles
// usually only need Threshold and the run-length thresholds adjusted.
type Params struct {
	// Threshold is the binarization cutoff on the 0-255 scale.
	Threshold uint8

	// RowRunThreshold is the minimum run of foreground pixels, counted from
	// column 0, for a row to be flagged as a horizontal grid line.
	RowRunThreshold int

	// ColumnRunThreshold is the default minimum bar height for a column to
	// be flagged. InferGridLines takes the column threshold as an argument;
	// this value is what Digitize passes.
	ColumnRunThreshold int

	// MergeDistance is the largest gap between consecutive candidates that
	// still belong to the same cluster.
	MergeDistance int

	// NoiseFloor is the height at or below which a column is ignored when
	// computing a window's modal height.
	NoiseFloor int

	// WindowRatio scales the block delta into the correction half-window.
	WindowRatio float64

	// Tolerance is the relative band around the mode inside which a column
	// counts as part of the bar plateau.
	Tolerance float64
}

// DefaultParams returns the calibrated defaults.
func DefaultParams() Params {
	return Params{
		Threshold:          100,
		RowRunThreshold:    10,
		ColumnRunThreshold: 10,
		MergeDistance:      5,
		NoiseFloor:         10,
		WindowRatio:        0.6,
		Tolerance:          0.05,
	}
}

// Validate checks that the parameters can drive a run.
func (p Params) Validate() error {
	if p.MergeDistance < 0 {
		return fmt.Errorf("%w: merge distance %d is negative", ErrInvalidInput, p.MergeDistance)
	}
	if p.NoiseFloor < 0 {
		return fmt.Errorf("%w: noise floor %d is negative", ErrInvalidInput, p.NoiseFloor)
	}
	if p.WindowRatio <= 0 {
		return fmt.Errorf("%w: window ratio %g must be positive", ErrInvalidInput, p.WindowRatio)
	}
	if p.Tolerance <= 0 || p.Tolerance >= 1 {
		return fmt.Errorf("%w: tolerance %g must be in (0,1)", ErrInvalidInput, p.Tolerance)
	}
	if p.RowRunThreshold < 0 || p.ColumnRunThreshold < 0 {
		return fmt.Errorf("%w: run thresholds must not be negative", ErrInvalidInput)
	}
	return nil
}

// Pipeline runs the digitization stages with a fixed set of parameters.
//
// A Pipeline holds no per-run state and is safe for concurrent use.
type Pipeline struct {
	Params Params

	// Logger receives one line per stage. Nil discards.
	Logger *log.Logger
}

// New creates a pipeline. Invalid parameters are reported immediately
// rather than at the first stage that trips over them.
func New(params Params) (*Pipeline, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return &Pipeline{Params: params}, nil
}

func (p *Pipeline) logf(format string, args ...interface{}) {
	if p.Logger == nil {
		return
	}
	p.Logger.Printf(format, args...)
}
