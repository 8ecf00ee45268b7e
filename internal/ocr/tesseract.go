package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/otiai10/gosseract/v2"

	"github.com/ironsheep/chart-digitizer-mcp/internal/chart"
)

// NumericWhitelist restricts recognition to characters found in numeric
// tick labels.
const NumericWhitelist = "0123456789.,-+%$eE"

// Engine recognizes words in chart images.
//
// Each call creates its own Tesseract client, so an Engine is safe for
// concurrent use.
type Engine struct {
	// Language is the Tesseract language code. Empty means "eng".
	Language string

	// TessdataPrefix overrides the language data directory.
	TessdataPrefix string

	// Whitelist limits the recognized characters. Empty allows all.
	Whitelist string

	// Scale upscales the image before recognition. Values below 2 disable
	// upscaling.
	Scale int
}

// NewEngine returns an engine for the given language and data directory.
func NewEngine(language, tessdataPrefix string) *Engine {
	return &Engine{Language: language, TessdataPrefix: tessdataPrefix}
}

// OCRResult contains the complete results of text extraction from an image.
type OCRResult struct {
	// FullText is all recognized text with the original line breaks.
	FullText string `json:"full_text"`

	// Tokens are the recognized words, empty ones dropped.
	Tokens []chart.TextToken `json:"tokens"`
}

// Recognize returns the words found in img. It implements chart.Recognizer.
func (e *Engine) Recognize(ctx context.Context, img image.Image) ([]chart.TextToken, error) {
	result, err := e.ExtractText(ctx, img)
	if err != nil {
		return nil, err
	}
	return result.Tokens, nil
}

// RecognizeRegion runs recognition on the part of img inside r, typically
// the strip holding one axis's labels. Token bounds are reported in the
// coordinates of the full image.
func (e *Engine) RecognizeRegion(ctx context.Context, img image.Image, r image.Rectangle) ([]chart.TextToken, error) {
	b := img.Bounds()
	r = r.Add(b.Min)
	if !r.In(b) || r.Empty() {
		return nil, fmt.Errorf("region %v outside image bounds %v", r.Sub(b.Min), image.Rect(0, 0, b.Dx(), b.Dy()))
	}

	tokens, err := e.Recognize(ctx, imaging.Crop(img, r))
	if err != nil {
		return nil, err
	}
	return offsetTokens(tokens, r.Min.X-b.Min.X, r.Min.Y-b.Min.Y), nil
}

// ExtractText performs OCR on img and returns the text and word tokens.
func (e *Engine) ExtractText(ctx context.Context, img image.Image) (*OCRResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	scale := e.Scale
	if scale < 2 {
		scale = 1
	} else {
		b := img.Bounds()
		img = imaging.Resize(img, b.Dx()*scale, b.Dy()*scale, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode image for OCR: %w", err)
	}

	client := gosseract.NewClient()
	defer client.Close()

	if e.TessdataPrefix != "" {
		if err := client.SetTessdataPrefix(e.TessdataPrefix); err != nil {
			return nil, fmt.Errorf("failed to set tessdata path: %w", err)
		}
	}
	language := e.Language
	if language == "" {
		language = "eng"
	}
	if err := client.SetLanguage(language); err != nil {
		return nil, fmt.Errorf("failed to set language: %w", err)
	}
	if e.Whitelist != "" {
		if err := client.SetWhitelist(e.Whitelist); err != nil {
			return nil, fmt.Errorf("failed to set whitelist: %w", err)
		}
	}
	// tick labels are scattered words, not paragraphs
	if err := client.SetPageSegMode(gosseract.PSM_SPARSE_TEXT); err != nil {
		return nil, fmt.Errorf("failed to set page segmentation: %w", err)
	}
	if err := client.SetImageFromBytes(buf.Bytes()); err != nil {
		return nil, fmt.Errorf("failed to set image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return nil, fmt.Errorf("tesseract OCR failed: %w", err)
	}
	boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return nil, fmt.Errorf("tesseract word boxes failed: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return &OCRResult{
		FullText: text,
		Tokens:   tokensFromBoxes(boxes, scale),
	}, nil
}

// tokensFromBoxes converts word boxes found on an image upscaled by scale
// back to source coordinates. Confidence is rescaled from 0-100 to 0-1.
func tokensFromBoxes(boxes []gosseract.BoundingBox, scale int) []chart.TextToken {
	tokens := make([]chart.TextToken, 0, len(boxes))
	for _, box := range boxes {
		word := strings.TrimSpace(box.Word)
		if word == "" {
			continue
		}
		tokens = append(tokens, chart.TextToken{
			Text:       word,
			Confidence: box.Confidence / 100.0,
			Bounds: chart.Bounds{
				X1: box.Box.Min.X / scale,
				Y1: box.Box.Min.Y / scale,
				X2: (box.Box.Max.X + scale - 1) / scale,
				Y2: (box.Box.Max.Y + scale - 1) / scale,
			},
		})
	}
	return tokens
}

func offsetTokens(tokens []chart.TextToken, dx, dy int) []chart.TextToken {
	for i := range tokens {
		tokens[i].Bounds.X1 += dx
		tokens[i].Bounds.Y1 += dy
		tokens[i].Bounds.X2 += dx
		tokens[i].Bounds.Y2 += dy
	}
	return tokens
}

// OCRInfo contains information about the OCR subsystem.
type OCRInfo struct {
	Available      bool     `json:"available"`
	Version        string   `json:"version,omitempty"`
	Error          string   `json:"error,omitempty"`
	Backend        string   `json:"backend"`
	TessdataPrefix string   `json:"tessdata_prefix,omitempty"`
	Languages      []string `json:"languages,omitempty"`
}

// Info reports whether Tesseract can be used with the engine's settings.
func (e *Engine) Info() OCRInfo {
	info := OCRInfo{Backend: "gosseract", TessdataPrefix: e.TessdataPrefix}

	client := gosseract.NewClient()
	defer client.Close()
	if e.TessdataPrefix != "" {
		if err := client.SetTessdataPrefix(e.TessdataPrefix); err != nil {
			info.Error = err.Error()
			return info
		}
	}

	info.Version = client.Version()
	languages, err := gosseract.GetAvailableLanguages()
	if err != nil {
		info.Error = fmt.Sprintf("failed to list languages: %v", err)
		return info
	}
	info.Languages = languages

	want := e.Language
	if want == "" {
		want = "eng"
	}
	for _, l := range languages {
		if l == want {
			info.Available = true
			return info
		}
	}
	info.Error = fmt.Sprintf("language %q not installed", want)
	return info
}
