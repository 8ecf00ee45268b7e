package chart

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func axisTokens() []TextToken {
	return []TextToken{
		{Text: "Sales", Confidence: 0.95, Bounds: Bounds{X1: 5, Y1: 2, X2: 60, Y2: 14}},
		{Text: "100", Confidence: 0.91, Bounds: Bounds{X1: 2, Y1: 15, X2: 26, Y2: 26}},
		{Text: "50", Confidence: 0.88, Bounds: Bounds{X1: 8, Y1: 65, X2: 25, Y2: 76}},
		{Text: "0", Confidence: 0.40, Bounds: Bounds{X1: 15, Y1: 115, X2: 24, Y2: 126}},
		{Text: " 2019", Confidence: 0.9, Bounds: Bounds{X1: 40, Y1: 130, X2: 71, Y2: 141}},
		{Text: "2020", Confidence: 0.9, Bounds: Bounds{X1: 90, Y1: 130, X2: 121, Y2: 141}},
	}
}

func TestAnchorsFromTokens_YAxis(t *testing.T) {
	anchors, err := AnchorsFromTokens(axisTokens(), []string{"100", "50", "0"}, AxisRow, 0.5)
	require.NoError(t, err)

	// sorted by value; "0" is below the confidence floor
	assert.Equal(t, []AnchorPair{{Pixel: 70, Value: 50}, {Pixel: 20, Value: 100}}, anchors)
}

func TestAnchorsFromTokens_XAxis(t *testing.T) {
	anchors, err := AnchorsFromTokens(axisTokens(), []string{"2020", "2019"}, AxisColumn, 0)
	require.NoError(t, err)

	assert.Equal(t, []AnchorPair{{Pixel: 55, Value: 2019}, {Pixel: 105, Value: 2020}}, anchors)
}

func TestAnchorsFromTokens_Insufficient(t *testing.T) {
	anchors, err := AnchorsFromTokens(axisTokens(), []string{"100", "75"}, AxisRow, 0)

	assert.ErrorIs(t, err, ErrInsufficientAnchors)
	assert.Len(t, anchors, 1)
}

func TestAnchorsFromTokens_NonNumericLabel(t *testing.T) {
	_, err := AnchorsFromTokens(axisTokens(), []string{"Sales", "100"}, AxisRow, 0)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestAnchorsFromTokens_FeedsRescaler(t *testing.T) {
	anchors, err := AnchorsFromTokens(axisTokens(), []string{"0", "50", "100"}, AxisRow, 0)
	require.NoError(t, err)

	// label centers at rows 120, 70, 20 on an image 150 rows tall
	got, err := FitAndApply([]float64{45}, true, 150, anchors)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{75}, got, 1e-9)
}
