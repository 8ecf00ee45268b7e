package chart

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInferGridLines_RowAllFalse(t *testing.T) {
	p := defaultPipeline(t)
	g := NewBoolGrid(40, 30)

	scan, err := p.InferGridLines(AxisRow, 0, 30, 40, 10, g)
	require.NoError(t, err)

	assert.Empty(t, scan.Candidates)
	require.Len(t, scan.Levels, 30)
	for i, l := range scan.Levels {
		assert.Zero(t, l, "level %d", i)
	}
}

func TestInferGridLines_Rows(t *testing.T) {
	p := defaultPipeline(t)
	g := Binarize(syntheticChart(t, 60, 40, 40, nil, []int{5, 6, 20}, 15), 100)
	// a short run that stays under the fixed row threshold
	for x := 0; x < 8; x++ {
		g.Set(x, 30, true)
	}

	scan, err := p.InferGridLines(AxisRow, 0, 40, 60, 1000, g)
	require.NoError(t, err)

	// the caller threshold (1000) is not used for rows
	assert.Equal(t, []int{5, 6, 20}, scan.Candidates)
	assert.Equal(t, 15, scan.Levels[5])
	assert.Equal(t, 8, scan.Levels[30])
	assert.Equal(t, 0, scan.Start)
}

func TestInferGridLines_RowExtentCapsRun(t *testing.T) {
	p := defaultPipeline(t)
	g := NewBoolGrid(30, 3)
	for x := 0; x < 30; x++ {
		g.Set(x, 1, true)
	}

	scan, err := p.InferGridLines(AxisRow, 0, 3, 8, 0, g)
	require.NoError(t, err)

	assert.Equal(t, []int{0, 8, 0}, scan.Levels)
	assert.Empty(t, scan.Candidates, "run capped at 8 is not above 10")
}

func TestInferGridLines_Columns(t *testing.T) {
	p := defaultPipeline(t)
	bars := []bar{{10, 14, 25}, {20, 24, 8}}
	g := Binarize(syntheticChart(t, 30, 40, 35, bars, nil, 0), 100)

	scan, err := p.InferGridLines(AxisColumn, 5, 30, 35, 10, g)
	require.NoError(t, err)

	assert.Equal(t, []int{10, 11, 12, 13}, scan.Candidates)
	require.Len(t, scan.Levels, 25)
	assert.Equal(t, 25, scan.Levels[10-5])
	assert.Equal(t, 8, scan.Levels[20-5])
	assert.Equal(t, 0, scan.Levels[0])
}

func TestInferGridLines_ColumnFullHeight(t *testing.T) {
	p := defaultPipeline(t)
	g := NewBoolGrid(2, 12)
	for y := 0; y < 12; y++ {
		g.Set(0, y, true)
	}

	scan, err := p.InferGridLines(AxisColumn, 0, 2, 12, 10, g)
	require.NoError(t, err)

	assert.Equal(t, []int{12, 0}, scan.Levels)
	assert.Equal(t, []int{0}, scan.Candidates)
}

func TestInferGridLines_InvalidRange(t *testing.T) {
	p := defaultPipeline(t)
	g := NewBoolGrid(10, 10)

	tests := []struct {
		name               string
		axis               Axis
		start, end, extent int
	}{
		{"negative start", AxisRow, -1, 5, 10},
		{"start after end", AxisRow, 6, 5, 10},
		{"rows past height", AxisRow, 0, 11, 10},
		{"row extent past width", AxisRow, 0, 10, 11},
		{"columns past width", AxisColumn, 0, 11, 10},
		{"column extent past height", AxisColumn, 0, 10, 11},
		{"unknown axis", Axis(7), 0, 5, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := p.InferGridLines(tt.axis, tt.start, tt.end, tt.extent, 10, g)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestParseAxis(t *testing.T) {
	for _, s := range []string{"row", "Y", " rows "} {
		a, err := ParseAxis(s)
		require.NoError(t, err, s)
		assert.Equal(t, AxisRow, a, s)
	}
	for _, s := range []string{"column", "x", "COL"} {
		a, err := ParseAxis(s)
		require.NoError(t, err, s)
		assert.Equal(t, AxisColumn, a, s)
	}

	_, err := ParseAxis("diagonal")
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Equal(t, "row", AxisRow.String())
	assert.Equal(t, "column", AxisColumn.String())
}
