package chart

import (
	"fmt"
	"strings"
)

// Axis selects the scan direction of InferGridLines.
type Axis int

const (
	// AxisRow scans each row left to right, finding horizontal lines.
	AxisRow Axis = iota
	// AxisColumn scans each column bottom to top, measuring bar heights.
	AxisColumn
)

// String returns "row" or "column".
func (a Axis) String() string {
	switch a {
	case AxisRow:
		return "row"
	case AxisColumn:
		return "column"
	default:
		return fmt.Sprintf("Axis(%d)", int(a))
	}
}

// ParseAxis accepts "row"/"y" and "column"/"x".
func ParseAxis(s string) (Axis, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "row", "rows", "y":
		return AxisRow, nil
	case "column", "columns", "col", "x":
		return AxisColumn, nil
	default:
		return 0, fmt.Errorf("%w: unknown axis %q", ErrInvalidInput, s)
	}
}

// GridLineScan is the result of one run-length scan.
type GridLineScan struct {
	Axis Axis `json:"axis"`

	// Start is the coordinate of Levels[0].
	Start int `json:"start"`

	// Candidates are the flagged coordinates in ascending order.
	Candidates []int `json:"candidates"`

	// Levels holds the measured run length of every scanned coordinate.
	// For columns this is the bar height in pixels.
	Levels []int `json:"levels"`
}

// InferGridLines scans coordinates [start, end) along axis and flags
// those with a long run of foreground pixels.
//
// Rows are scanned from column 0 rightwards, stopping at the first
// background pixel or at extent; a row is flagged when its run exceeds
// Params.RowRunThreshold and runThreshold is not consulted. Columns are
// scanned upward from row extent-1; the level is extent minus the row
// where the run stopped, and a column is flagged when that exceeds
// runThreshold. The two thresholds are deliberately separate knobs.
//
// A grid with no foreground in range yields no candidates and zero levels.
func (p *Pipeline) InferGridLines(axis Axis, start, end, extent, runThreshold int, g BoolGrid) (*GridLineScan, error) {
	if start < 0 || start > end {
		return nil, fmt.Errorf("%w: scan range [%d,%d)", ErrInvalidInput, start, end)
	}

	scan := &GridLineScan{
		Axis:       axis,
		Start:      start,
		Candidates: []int{},
		Levels:     make([]int, 0, end-start),
	}

	switch axis {
	case AxisRow:
		if end > g.Height {
			return nil, fmt.Errorf("%w: row range [%d,%d) outside grid height %d", ErrInvalidInput, start, end, g.Height)
		}
		if extent < 0 || extent > g.Width {
			return nil, fmt.Errorf("%w: row extent %d outside grid width %d", ErrInvalidInput, extent, g.Width)
		}
		for i := start; i < end; i++ {
			j := 0
			for j < extent && g.At(j, i) {
				j++
			}
			if j > p.Params.RowRunThreshold {
				scan.Candidates = append(scan.Candidates, i)
			}
			scan.Levels = append(scan.Levels, j)
		}

	case AxisColumn:
		if end > g.Width {
			return nil, fmt.Errorf("%w: column range [%d,%d) outside grid width %d", ErrInvalidInput, start, end, g.Width)
		}
		if extent < 0 || extent > g.Height {
			return nil, fmt.Errorf("%w: column extent %d outside grid height %d", ErrInvalidInput, extent, g.Height)
		}
		for i := start; i < end; i++ {
			j := extent
			for j > 0 && g.At(i, j-1) {
				j--
			}
			level := extent - j
			if level > runThreshold {
				scan.Candidates = append(scan.Candidates, i)
			}
			scan.Levels = append(scan.Levels, level)
		}

	default:
		return nil, fmt.Errorf("%w: unknown axis %v", ErrInvalidInput, axis)
	}

	p.logf("grid lines: %s scan [%d,%d) flagged %d of %d", axis, start, end, len(scan.Candidates), len(scan.Levels))
	return scan, nil
}
