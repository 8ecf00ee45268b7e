package imaging

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/ironsheep/chart-digitizer-mcp/internal/chart"
)

func decodeResultPNG(t *testing.T, encoded string) image.Image {
	t.Helper()
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		t.Fatalf("failed to decode base64: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("failed to decode png: %v", err)
	}
	return img
}

func TestZoom(t *testing.T) {
	img := createInMemoryImage(200, 100, color.White)

	tests := []struct {
		name   string
		x, y   int
		zoom   float64
		window chart.Window
	}{
		{"centered", 100, 50, 4, chart.Window{X: chart.Span{Start: 87, End: 112}, Y: chart.Span{Start: 37, End: 62}}},
		{"top-left corner", 5, 5, 4, chart.Window{X: chart.Span{Start: 0, End: 25}, Y: chart.Span{Start: 0, End: 25}}},
		{"bottom-right corner", 199, 99, 4, chart.Window{X: chart.Span{Start: 175, End: 200}, Y: chart.Span{Start: 75, End: 100}}},
		{"zoom below one", 100, 50, 0.5, chart.Window{X: chart.Span{Start: 50, End: 150}, Y: chart.Span{Start: 0, End: 100}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Zoom(img, tt.x, tt.y, tt.zoom, 64, false)
			if err != nil {
				t.Fatalf("Zoom failed: %v", err)
			}
			if result.Window != tt.window {
				t.Errorf("Window: got %+v, want %+v", result.Window, tt.window)
			}
			if result.OriginX != tt.window.X.Start || result.OriginY != tt.window.Y.Start {
				t.Errorf("origin: got (%d,%d)", result.OriginX, result.OriginY)
			}
			if result.MimeType != "image/png" {
				t.Errorf("MimeType: got %s, want image/png", result.MimeType)
			}
			out := decodeResultPNG(t, result.ImageBase64)
			if out.Bounds().Dx() != 64 || out.Bounds().Dy() != 64 {
				t.Errorf("output size: got %v", out.Bounds())
			}
		})
	}
}

func TestZoom_VerifyContent(t *testing.T) {
	// black left half, white right half; the view straddles the edge
	img := image.NewGray(image.Rect(0, 0, 100, 100))
	for y := 0; y < 100; y++ {
		for x := 50; x < 100; x++ {
			img.SetGray(x, y, color.Gray{Y: 255})
		}
	}

	result, err := Zoom(img, 50, 50, 10, 100, false)
	if err != nil {
		t.Fatalf("Zoom failed: %v", err)
	}
	// window [45,55): five black columns then five white ones
	if result.Scale != 10 {
		t.Fatalf("Scale: got %g, want 10", result.Scale)
	}
	out := decodeResultPNG(t, result.ImageBase64)
	if r, _, _, _ := out.At(20, 50).RGBA(); r != 0 {
		t.Errorf("left of the edge should be black, got %d", r>>8)
	}
	if r, _, _, _ := out.At(80, 50).RGBA(); r>>8 != 255 {
		t.Errorf("right of the edge should be white, got %d", r>>8)
	}
}

func TestZoom_Invalid(t *testing.T) {
	img := createInMemoryImage(50, 50, color.White)

	if _, err := Zoom(img, 50, 10, 2, 64, false); err == nil {
		t.Error("Zoom should fail for a center outside the image")
	}
	if _, err := Zoom(img, -1, 10, 2, 64, false); err == nil {
		t.Error("Zoom should fail for a negative center")
	}
	if _, err := Zoom(img, 10, 10, 2, 0, false); err == nil {
		t.Error("Zoom should fail for a zero output size")
	}
}

func TestZoom_OffsetBounds(t *testing.T) {
	// a sub-image keeps its parent's coordinates; zoom works in local ones
	parent := createInMemoryImage(100, 100, color.White).(*image.RGBA)
	sub := parent.SubImage(image.Rect(20, 20, 60, 60))

	result, err := Zoom(sub, 0, 0, 2, 40, true)
	if err != nil {
		t.Fatalf("Zoom failed: %v", err)
	}
	want := chart.Window{X: chart.Span{Start: 0, End: 20}, Y: chart.Span{Start: 0, End: 20}}
	if result.Window != want {
		t.Errorf("Window: got %+v, want %+v", result.Window, want)
	}
}
