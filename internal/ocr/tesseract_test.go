package ocr

import (
	"context"
	"image"
	"image/color"
	"image/draw"
	"strings"
	"testing"

	"github.com/otiai10/gosseract/v2"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/ironsheep/chart-digitizer-mcp/internal/chart"
)

// drawText draws text on an image using basicfont
func drawText(img *image.RGBA, x, y int, text string, col color.Color) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(col),
		Face: basicfont.Face7x13,
		Dot:  fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)},
	}
	d.DrawString(text)
}

// createAxisImage renders tick labels under an empty plot area, the way a
// bar chart's x axis looks.
func createAxisImage(labels []string, spacing int) *image.RGBA {
	width := 40 + len(labels)*spacing
	img := image.NewRGBA(image.Rect(0, 0, width, 60))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)
	for i, l := range labels {
		drawText(img, 20+i*spacing, 40, l, color.Black)
	}
	return img
}

// skipWithoutTesseract skips when the error comes from a missing Tesseract
// installation or language data.
func skipWithoutTesseract(t *testing.T, err error) {
	t.Helper()
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "tesseract") || strings.Contains(msg, "library") || strings.Contains(msg, "language") {
		t.Skip("Tesseract not available")
	}
}

func TestTokensFromBoxes(t *testing.T) {
	boxes := []gosseract.BoundingBox{
		{Box: image.Rect(40, 80, 75, 106), Word: "100", Confidence: 91},
		{Box: image.Rect(0, 0, 4, 4), Word: "  ", Confidence: 95},
		{Box: image.Rect(120, 81, 141, 105), Word: " 50", Confidence: 42.5},
	}

	tokens := tokensFromBoxes(boxes, 4)

	if len(tokens) != 2 {
		t.Fatalf("expected 2 tokens, got %d", len(tokens))
	}
	want := chart.TextToken{Text: "100", Confidence: 0.91, Bounds: chart.Bounds{X1: 10, Y1: 20, X2: 19, Y2: 27}}
	if tokens[0] != want {
		t.Errorf("token 0: got %+v, want %+v", tokens[0], want)
	}
	if tokens[1].Text != "50" || tokens[1].Confidence != 0.425 {
		t.Errorf("token 1: got %+v", tokens[1])
	}
	if tokens[1].Bounds != (chart.Bounds{X1: 30, Y1: 20, X2: 36, Y2: 27}) {
		t.Errorf("token 1 bounds: got %+v", tokens[1].Bounds)
	}
}

func TestTokensFromBoxes_NoScale(t *testing.T) {
	boxes := []gosseract.BoundingBox{{Box: image.Rect(3, 4, 9, 17), Word: "7", Confidence: 80}}

	tokens := tokensFromBoxes(boxes, 1)

	if len(tokens) != 1 || tokens[0].Bounds != (chart.Bounds{X1: 3, Y1: 4, X2: 9, Y2: 17}) {
		t.Errorf("got %+v", tokens)
	}
}

func TestOffsetTokens(t *testing.T) {
	tokens := []chart.TextToken{{Text: "5", Bounds: chart.Bounds{X1: 1, Y1: 2, X2: 3, Y2: 4}}}

	out := offsetTokens(tokens, 100, 50)

	if out[0].Bounds != (chart.Bounds{X1: 101, Y1: 52, X2: 103, Y2: 54}) {
		t.Errorf("got %+v", out[0].Bounds)
	}
}

func TestRecognize_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewEngine("eng", "").Recognize(ctx, createAxisImage([]string{"1"}, 40))
	if err != context.Canceled {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestRecognizeRegion_OutOfBounds(t *testing.T) {
	img := createAxisImage([]string{"1", "2"}, 40)

	_, err := NewEngine("eng", "").RecognizeRegion(context.Background(), img, image.Rect(0, 0, 500, 10))
	if err == nil {
		t.Error("RecognizeRegion should fail for a region outside the image")
	}
}

func TestRecognize_AxisLabels(t *testing.T) {
	labels := []string{"0", "50", "100"}
	img := createAxisImage(labels, 80)
	engine := &Engine{Language: "eng", Whitelist: NumericWhitelist, Scale: 4}

	tokens, err := engine.Recognize(context.Background(), img)
	if err != nil {
		skipWithoutTesseract(t, err)
		t.Fatalf("Recognize failed: %v", err)
	}
	t.Logf("tokens: %+v", tokens)

	for _, tok := range tokens {
		if tok.Bounds.X2 > img.Bounds().Dx() || tok.Bounds.Y2 > img.Bounds().Dy() {
			t.Errorf("token %q bounds %+v outside the source image", tok.Text, tok.Bounds)
		}
	}

	anchors, err := chart.AnchorsFromTokens(tokens, labels, chart.AxisColumn, 0)
	if err != nil {
		t.Skipf("labels not recognized reliably on this Tesseract build: %v", err)
	}
	for i := 1; i < len(anchors); i++ {
		if anchors[i].Pixel <= anchors[i-1].Pixel {
			t.Errorf("anchor pixels not increasing: %+v", anchors)
		}
	}
}

func TestRecognizeRegion_Offsets(t *testing.T) {
	img := createAxisImage([]string{"25", "75"}, 80)
	engine := &Engine{Language: "eng", Whitelist: NumericWhitelist, Scale: 4}

	// the right half only holds "75", drawn at x=100
	tokens, err := engine.RecognizeRegion(context.Background(), img, image.Rect(90, 0, 200, 60))
	if err != nil {
		skipWithoutTesseract(t, err)
		t.Fatalf("RecognizeRegion failed: %v", err)
	}
	for _, tok := range tokens {
		if tok.Bounds.X1 < 90 {
			t.Errorf("token %q not offset into image coordinates: %+v", tok.Text, tok.Bounds)
		}
	}
}

func TestExtractText_InvalidLanguage(t *testing.T) {
	engine := NewEngine("not-a-language", "")

	_, err := engine.ExtractText(context.Background(), createAxisImage([]string{"1"}, 40))
	if err == nil {
		t.Error("ExtractText should fail for an unknown language")
	}
}

func TestInfo(t *testing.T) {
	info := NewEngine("eng", "").Info()

	if info.Backend != "gosseract" {
		t.Errorf("Backend: got %s, want gosseract", info.Backend)
	}
	if !info.Available {
		t.Skipf("Tesseract not available: %s", info.Error)
	}
	if info.Version == "" {
		t.Error("available engine should report a version")
	}
}
