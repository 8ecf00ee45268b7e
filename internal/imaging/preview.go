package imaging

import (
	"image"

	"github.com/anthonynsimon/bild/effect"

	"github.com/ironsheep/chart-digitizer-mcp/internal/chart"
)

// BinarizeResult describes the foreground mask a threshold produces.
type BinarizeResult struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	Threshold   uint8  `json:"threshold"`
	Inverted    bool   `json:"inverted"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`

	// ForegroundFraction is the share of pixels flagged as foreground.
	// Bar charts usually land well under 0.5; a value near 1 suggests the
	// chart needs inverting.
	ForegroundFraction float64 `json:"foreground_fraction"`
}

// BinarizePreview renders the mask chart.Binarize produces for threshold,
// with foreground in white.
func BinarizePreview(g chart.Grid, threshold uint8, invert bool) (*BinarizeResult, error) {
	mask := chart.Binarize(g, threshold)

	var preview image.Image = mask.Image()
	if invert {
		mask = mask.Invert()
		preview = effect.Invert(preview)
	}

	encoded, err := encodePNG(preview)
	if err != nil {
		return nil, err
	}

	fraction := 0.0
	if n := len(mask.Pix); n > 0 {
		fraction = float64(mask.Count()) / float64(n)
	}
	return &BinarizeResult{
		Width:              g.Width,
		Height:             g.Height,
		Threshold:          threshold,
		Inverted:           invert,
		ImageBase64:        encoded,
		MimeType:           "image/png",
		ForegroundFraction: fraction,
	}, nil
}
