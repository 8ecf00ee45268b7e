package chart

import (
	"context"
	"fmt"
)

// DigitizeRequest describes one bar chart to digitize.
type DigitizeRequest struct {
	// Grid is the grayscale chart.
	Grid Grid

	// Invert treats dark pixels as foreground.
	Invert bool

	// XMin and XMax bound the column scan. XMax 0 means the grid width.
	XMin int
	XMax int

	// Baseline is the pixel row just below the bars (the column scan
	// extent). 0 means the grid height.
	Baseline int

	// YMin and YMax bound the row scan for horizontal grid lines. The scan
	// only runs when YTicks is set. YMax 0 means the grid height.
	YMin int
	YMax int

	// RowExtent caps the row run length. 0 means the grid width.
	RowExtent int

	// YTicks are the axis values of the horizontal grid lines, top to
	// bottom, one per detected line.
	YTicks []float64

	// YAnchors (pixel rows) override YTicks. Without either, Y is the bar
	// height in pixels.
	YAnchors []AnchorPair

	// XAnchors (pixel columns) calibrate X. Without them, X is the bar
	// center column.
	XAnchors []AnchorPair
}

// DataPoint is one digitized bar.
type DataPoint struct {
	PixelX float64 `json:"pixel_x"`
	Height int     `json:"height"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
}

// Series is the outcome of Digitize, with the intermediate stage results
// kept for visual QA.
type Series struct {
	Points     []DataPoint       `json:"points"`
	Columns    *GridLineScan     `json:"columns"`
	Bars       *Clustering       `json:"bars"`
	Correction *HeightCorrection `json:"correction"`
	Rows       *GridLineScan     `json:"rows,omitempty"`
	Lines      *Clustering       `json:"lines,omitempty"`

	// YMap maps bar heights (reflected pixel rows) to values.
	YMap *LinearMap `json:"y_map,omitempty"`
	// XMap maps pixel columns to values.
	XMap *LinearMap `json:"x_map,omitempty"`
}

// Digitize runs the full pipeline on req.
//
// Bars are found by a column scan above Baseline, clustered into one
// representative column per bar, and corrected to their plateau height.
// Heights become values through a y map fitted on the inverted axis, from
// YAnchors or from the horizontal grid lines paired with YTicks.
//
// The context is checked between stages.
func (p *Pipeline) Digitize(ctx context.Context, req DigitizeRequest) (*Series, error) {
	g := req.Grid
	xMax := req.XMax
	if xMax == 0 {
		xMax = g.Width
	}
	baseline := req.Baseline
	if baseline == 0 {
		baseline = g.Height
	}

	fg := Binarize(g, p.Params.Threshold)
	if req.Invert {
		fg = fg.Invert()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s := &Series{}
	var err error

	s.Columns, err = p.InferGridLines(AxisColumn, req.XMin, xMax, baseline, p.Params.ColumnRunThreshold, fg)
	if err != nil {
		return nil, fmt.Errorf("column scan: %w", err)
	}
	if len(s.Columns.Candidates) == 0 {
		return nil, fmt.Errorf("column scan: %w: no bars above %d px in columns [%d,%d)",
			ErrInvalidInput, p.Params.ColumnRunThreshold, req.XMin, xMax)
	}

	s.Bars, err = p.ClusterLines(s.Columns.Candidates)
	if err != nil {
		return nil, fmt.Errorf("bar clustering: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.Correction, err = p.CorrectHeights(s.Columns.Levels, s.Bars.BlockDelta, s.Bars.Representatives, req.XMin)
	if err != nil {
		return nil, fmt.Errorf("height correction: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	yAnchors := req.YAnchors
	if len(yAnchors) == 0 && len(req.YTicks) > 0 {
		s.Rows, s.Lines, yAnchors, err = p.gridLineAnchors(req, fg)
		if err != nil {
			return nil, err
		}
	}

	heights := make([]float64, len(s.Correction.Values))
	for i, v := range s.Correction.Values {
		heights[i] = float64(v)
	}
	ys := heights
	if len(yAnchors) > 0 {
		m, err := FitLinearMap(reflectAnchors(yAnchors, float64(baseline)))
		if err != nil {
			return nil, fmt.Errorf("y rescale: %w", err)
		}
		s.YMap = &m
		ys = m.ApplyAll(heights)
	}

	xs := s.Bars.Representatives
	if len(req.XAnchors) > 0 {
		m, err := FitLinearMap(req.XAnchors)
		if err != nil {
			return nil, fmt.Errorf("x rescale: %w", err)
		}
		s.XMap = &m
		xs = m.ApplyAll(xs)
	}

	s.Points = make([]DataPoint, len(heights))
	for i := range heights {
		s.Points[i] = DataPoint{
			PixelX: s.Bars.Representatives[i],
			Height: s.Correction.Values[i],
			X:      xs[i],
			Y:      ys[i],
		}
	}

	p.logf("digitize: %d points", len(s.Points))
	return s, nil
}

// gridLineAnchors finds the horizontal grid lines and pairs them with the
// tick values.
func (p *Pipeline) gridLineAnchors(req DigitizeRequest, fg BoolGrid) (*GridLineScan, *Clustering, []AnchorPair, error) {
	yMax := req.YMax
	if yMax == 0 {
		yMax = fg.Height
	}
	extent := req.RowExtent
	if extent == 0 {
		extent = fg.Width
	}

	rows, err := p.InferGridLines(AxisRow, req.YMin, yMax, extent, p.Params.RowRunThreshold, fg)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("row scan: %w", err)
	}
	lines, err := p.ClusterLines(rows.Candidates)
	if err != nil {
		return rows, lines, nil, fmt.Errorf("grid line clustering: %w", err)
	}
	anchors, err := PairAnchors(lines.Representatives, req.YTicks)
	if err != nil {
		return rows, lines, nil, fmt.Errorf("y ticks: %w", err)
	}
	return rows, lines, anchors, nil
}
