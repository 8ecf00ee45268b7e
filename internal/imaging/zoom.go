package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"

	"github.com/disintegration/imaging"

	"github.com/ironsheep/chart-digitizer-mcp/internal/chart"
)

// ZoomResult contains a magnified view around a chart location.
type ZoomResult struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`

	// Window is the source region that was magnified, in image pixels.
	Window chart.Window `json:"window"`

	// OriginX and OriginY are the top-left source pixel of the view. Add
	// them to a view coordinate divided by Scale to get an image coordinate.
	OriginX int     `json:"origin_x"`
	OriginY int     `json:"origin_y"`
	Scale   float64 `json:"scale"`
}

// Zoom renders the square view centered on (x, y) at the given zoom factor,
// resized to outputSize pixels a side.
//
// The view is min(width, height)/zoom pixels a side and is shifted inward
// near the borders, so it always lies inside the image. Nearest neighbor
// resampling keeps pixel edges crisp for locating grid lines; smooth
// selects Lanczos.
func Zoom(img image.Image, x, y int, zoom float64, outputSize int, smooth bool) (*ZoomResult, error) {
	bounds := img.Bounds()
	if x < 0 || x >= bounds.Dx() || y < 0 || y >= bounds.Dy() {
		return nil, fmt.Errorf("zoom center (%d,%d) outside image %dx%d", x, y, bounds.Dx(), bounds.Dy())
	}
	if outputSize <= 0 {
		return nil, fmt.Errorf("output size %d must be positive", outputSize)
	}

	w := chart.ViewWindow(bounds.Dx(), bounds.Dy(), x, y, zoom)
	view := imaging.Crop(img, w.Rect().Add(bounds.Min))

	filter := imaging.NearestNeighbor
	if smooth {
		filter = imaging.Lanczos
	}
	view = imaging.Resize(view, outputSize, outputSize, filter)

	encoded, err := encodePNG(view)
	if err != nil {
		return nil, err
	}

	origin := w.Origin()
	return &ZoomResult{
		Width:       outputSize,
		Height:      outputSize,
		ImageBase64: encoded,
		MimeType:    "image/png",
		Window:      w,
		OriginX:     origin.X,
		OriginY:     origin.Y,
		Scale:       float64(outputSize) / float64(w.X.Len()),
	}, nil
}

func encodePNG(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("failed to encode image: %w", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
