package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/ironsheep/chart-digitizer-mcp/internal/chart"
	"github.com/ironsheep/chart-digitizer-mcp/internal/config"
	"github.com/ironsheep/chart-digitizer-mcp/internal/detection"
	"github.com/ironsheep/chart-digitizer-mcp/internal/imaging"
	"github.com/ironsheep/chart-digitizer-mcp/internal/ocr"
)

func main() {
	imagePath := flag.String("image", "", "Bar chart image (PNG, JPEG, GIF, TIFF or BMP)")
	configPath := flag.String("config", "", "YAML configuration file (default: built-in defaults)")
	xMin := flag.Int("xmin", 0, "First column of the plot area")
	xMax := flag.Int("xmax", 0, "One past the last column of the plot area (0: image width)")
	baseline := flag.Int("baseline", 0, "Row just below the bars (0: image height)")
	autoAxes := flag.Bool("auto-axes", false, "Take unset -xmin, -xmax and -baseline from the detected axes")
	yMin := flag.Int("ymin", 0, "First row scanned for horizontal grid lines")
	yMax := flag.Int("ymax", 0, "One past the last grid line row (0: image height)")
	yTicks := flag.String("yticks", "", "Comma-separated values of the horizontal grid lines, top to bottom")
	yLabels := flag.String("ylabels", "", "Comma-separated y tick labels to locate by OCR")
	xLabels := flag.String("xlabels", "", "Comma-separated x tick labels to locate by OCR")
	threshold := flag.Int("threshold", -1, "Binarization threshold 0-255 (default from configuration)")
	invert := flag.Bool("invert", false, "Dark bars on a light background")
	barColor := flag.String("bar-color", "", "Hex color of the bars; selects a color-distance mask")
	overlayPath := flag.String("overlay", "", "Write an overlay of the detected bars and points to this file")
	writeConfig := flag.String("write-config", "", "Write the effective configuration to this file and exit")
	flag.Parse()

	log.SetOutput(os.Stderr)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *threshold >= 0 {
		cfg.Pipeline.Threshold = *threshold
	}
	if *invert {
		cfg.Pipeline.Invert = true
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	if *writeConfig != "" {
		if err := config.SaveConfig(cfg, *writeConfig); err != nil {
			log.Fatalf("Failed to save configuration: %v", err)
		}
		fmt.Fprintf(os.Stderr, "Configuration written to %s\n", *writeConfig)
		return
	}

	if *imagePath == "" {
		flag.Usage()
		os.Exit(1)
	}

	ticks, err := parseFloats(*yTicks)
	if err != nil {
		log.Fatalf("Invalid -yticks: %v", err)
	}

	pipeline, err := chart.New(cfg.Params())
	if err != nil {
		log.Fatalf("Invalid pipeline parameters: %v", err)
	}
	if cfg.Debug() {
		pipeline.Logger = log.Default()
	}

	cache := imaging.NewImageCache(1)
	img, err := cache.Load(*imagePath)
	if err != nil {
		log.Fatalf("Failed to load image: %v", err)
	}

	grid := chart.GridFromImage(img)
	if *barColor != "" {
		target, err := imaging.ParseHexColor(*barColor)
		if err != nil {
			log.Fatalf("Invalid -bar-color: %v", err)
		}
		grid, err = imaging.ColorMask(img, target, cfg.Pipeline.ColorDistance)
		if err != nil {
			log.Fatalf("Color mask failed: %v", err)
		}
	}

	req := chart.DigitizeRequest{
		Grid:     grid,
		Invert:   cfg.Pipeline.Invert,
		XMin:     *xMin,
		XMax:     *xMax,
		Baseline: *baseline,
		YMin:     *yMin,
		YMax:     *yMax,
		YTicks:   ticks,
	}

	if *autoAxes {
		fg := chart.Binarize(grid, pipeline.Params.Threshold)
		if req.Invert {
			fg = fg.Invert()
		}
		axes, err := detection.DetectAxes(fg, detection.DefaultMinFraction)
		if err != nil {
			log.Fatalf("Axis detection failed: %v", err)
		}
		axes.ApplyTo(&req)
		log.Printf("Axes: baseline %d, columns [%d,%d)", req.Baseline, req.XMin, req.XMax)
	}

	ctx := context.Background()
	if *yLabels != "" || *xLabels != "" {
		engine := ocr.NewEngine(cfg.OCR.Language, cfg.OCR.TessdataPrefix)
		engine.Whitelist = ocr.NumericWhitelist
		engine.Scale = 4
		tokens, err := engine.Recognize(ctx, img)
		if err != nil {
			log.Fatalf("OCR failed: %v", err)
		}
		if *yLabels != "" {
			req.YAnchors, err = chart.AnchorsFromTokens(tokens, splitList(*yLabels), chart.AxisRow, cfg.OCR.MinConfidence)
			if err != nil {
				log.Fatalf("Y labels: %v", err)
			}
		}
		if *xLabels != "" {
			req.XAnchors, err = chart.AnchorsFromTokens(tokens, splitList(*xLabels), chart.AxisColumn, cfg.OCR.MinConfidence)
			if err != nil {
				log.Fatalf("X labels: %v", err)
			}
		}
	}

	series, err := pipeline.Digitize(ctx, req)
	if err != nil {
		log.Fatalf("Digitize failed: %v", err)
	}

	w := csv.NewWriter(os.Stdout)
	_ = w.Write([]string{"x", "y"})
	for _, p := range series.Points {
		_ = w.Write([]string{
			strconv.FormatFloat(p.X, 'g', -1, 64),
			strconv.FormatFloat(p.Y, 'g', -1, 64),
		})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		log.Fatalf("Failed to write CSV: %v", err)
	}

	if *overlayPath != "" {
		opts := imaging.OverlayOptions{
			Columns:    series.Bars.Representatives,
			LineColor:  cfg.Output.OverlayColor,
			PointColor: cfg.Output.PointColor,
		}
		if series.Lines != nil {
			opts.Rows = series.Lines.Representatives
		}
		base := req.Baseline
		if base == 0 {
			base = grid.Height
		}
		for _, p := range series.Points {
			opts.Points = append(opts.Points, imaging.OverlayPoint{
				X:     p.PixelX,
				Y:     float64(base - p.Height),
				Label: strconv.FormatFloat(p.Y, 'g', 4, 64),
			})
		}
		if err := imaging.SaveOverlay(img, opts, *overlayPath); err != nil {
			log.Fatalf("Overlay failed: %v", err)
		}
		log.Printf("Overlay written to %s", *overlayPath)
	}
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseFloats(s string) ([]float64, error) {
	var out []float64
	for _, p := range splitList(s) {
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
