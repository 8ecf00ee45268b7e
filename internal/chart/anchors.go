package chart

import (
	"context"
	"fmt"
	"image"
	"sort"
	"strconv"
	"strings"
)

// Bounds is a text bounding box. (X1,Y1) is inclusive, (X2,Y2) exclusive.
type Bounds struct {
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
	X2 int `json:"x2"`
	Y2 int `json:"y2"`
}

// TextToken is one word reported by a text recognizer.
type TextToken struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"` // 0.0 to 1.0
	Bounds     Bounds  `json:"bounds"`
}

// Recognizer extracts word tokens from an image. The ocr package provides
// a Tesseract-backed implementation.
type Recognizer interface {
	Recognize(ctx context.Context, img image.Image) ([]TextToken, error)
}

// AnchorsFromTokens builds anchor pairs by locating axis labels among OCR
// tokens.
//
// labels are the tick texts expected on the axis ("0", "50", "100"). They
// are ordered numerically, and for each one the first token with the same
// trimmed text and at least minConfidence supplies the pixel coordinate:
// the truncated box center along x for AxisColumn (labels under the chart)
// or along y for AxisRow (labels beside it). Labels that are not found are
// skipped; fewer than two matches is ErrInsufficientAnchors.
func AnchorsFromTokens(tokens []TextToken, labels []string, axis Axis, minConfidence float64) ([]AnchorPair, error) {
	type label struct {
		text  string
		value float64
	}
	parsed := make([]label, 0, len(labels))
	for _, l := range labels {
		t := strings.TrimSpace(l)
		v, err := strconv.ParseFloat(t, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: tick label %q is not numeric", ErrInvalidInput, l)
		}
		parsed = append(parsed, label{text: t, value: v})
	}
	sort.SliceStable(parsed, func(i, j int) bool { return parsed[i].value < parsed[j].value })

	anchors := make([]AnchorPair, 0, len(parsed))
	for _, l := range parsed {
		for _, tok := range tokens {
			if tok.Confidence < minConfidence || strings.TrimSpace(tok.Text) != l.text {
				continue
			}
			var pixel int
			switch axis {
			case AxisColumn:
				pixel = tok.Bounds.X1 + (tok.Bounds.X2-tok.Bounds.X1)/2
			default:
				pixel = tok.Bounds.Y1 + (tok.Bounds.Y2-tok.Bounds.Y1)/2
			}
			anchors = append(anchors, AnchorPair{Pixel: float64(pixel), Value: l.value})
			break
		}
	}

	if len(anchors) < 2 {
		return anchors, fmt.Errorf("%w: matched %d of %d tick labels", ErrInsufficientAnchors, len(anchors), len(labels))
	}
	return anchors, nil
}
