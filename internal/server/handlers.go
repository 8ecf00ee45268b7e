package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"

	"github.com/ironsheep/chart-digitizer-mcp/internal/chart"
	"github.com/ironsheep/chart-digitizer-mcp/internal/detection"
	"github.com/ironsheep/chart-digitizer-mcp/internal/imaging"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "chart_load", "chart_digitize").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// errInvalidArgs marks argument decoding failures so they map to -32602.
var errInvalidArgs = errors.New("invalid arguments")

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000,
// argument errors -32602.
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	if errors.Is(err, errInvalidArgs) {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}
	if err != nil {
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Image inspection
	case "chart_load":
		return s.handleChartLoad(args)
	case "chart_zoom":
		return s.handleChartZoom(args)
	case "chart_dominant_colors":
		return s.handleChartDominantColors(args)

	// Pipeline stages
	case "chart_binarize":
		return s.handleChartBinarize(args)
	case "chart_detect_axes":
		return s.handleChartDetectAxes(args)
	case "chart_grid_lines":
		return s.handleChartGridLines(args)
	case "chart_cluster_lines":
		return s.handleChartClusterLines(args)
	case "chart_correct_heights":
		return s.handleChartCorrectHeights(args)
	case "chart_rescale":
		return s.handleChartRescale(args)
	case "chart_digitize":
		return s.handleChartDigitize(ctx, args)
	case "chart_overlay":
		return s.handleChartOverlay(args)

	// OCR
	case "chart_ocr_anchors":
		return s.handleChartOCRAnchors(ctx, args)
	case "chart_ocr_info":
		return s.recognizer.Info(), nil

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

func decodeArgs(args json.RawMessage, v interface{}) error {
	if len(args) == 0 {
		args = json.RawMessage(`{}`)
	}
	if err := json.Unmarshal(args, v); err != nil {
		return fmt.Errorf("%w: %v", errInvalidArgs, err)
	}
	return nil
}

// sourceArgs selects the image and how it becomes a foreground mask.
type sourceArgs struct {
	Path string `json:"path"`

	// Threshold overrides pipeline.threshold.
	Threshold *int `json:"threshold,omitempty"`
	// Invert overrides pipeline.invert.
	Invert *bool `json:"invert,omitempty"`

	// BarColor switches from luminance to a color-distance mask.
	BarColor      string  `json:"bar_color,omitempty"`
	ColorDistance float64 `json:"color_distance,omitempty"`
}

func (a sourceArgs) threshold(def uint8) (uint8, error) {
	if a.Threshold == nil {
		return def, nil
	}
	if *a.Threshold < 0 || *a.Threshold > 255 {
		return 0, fmt.Errorf("%w: threshold %d outside 0-255", errInvalidArgs, *a.Threshold)
	}
	return uint8(*a.Threshold), nil
}

func (a sourceArgs) invert(def bool) bool {
	if a.Invert == nil {
		return def
	}
	return *a.Invert
}

// grid loads the intensity grid for a: luminance, or closeness to
// BarColor when one is given.
func (s *Server) grid(a sourceArgs) (chart.Grid, error) {
	if a.BarColor == "" {
		return imaging.LoadGrid(s.cache, a.Path)
	}
	target, err := imaging.ParseHexColor(a.BarColor)
	if err != nil {
		return chart.Grid{}, fmt.Errorf("%w: %v", errInvalidArgs, err)
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return chart.Grid{}, err
	}
	dist := a.ColorDistance
	if dist == 0 {
		dist = s.cfg.Pipeline.ColorDistance
	}
	return imaging.ColorMask(img, target, dist)
}

// pipelineFor returns the server pipeline, or a copy with the requested
// threshold.
func (s *Server) pipelineFor(a sourceArgs) (*chart.Pipeline, error) {
	th, err := a.threshold(s.pipeline.Params.Threshold)
	if err != nil {
		return nil, err
	}
	if th == s.pipeline.Params.Threshold {
		return s.pipeline, nil
	}
	p := *s.pipeline
	p.Params.Threshold = th
	return &p, nil
}

// foreground loads a and binarizes it with the effective threshold.
func (s *Server) foreground(a sourceArgs) (chart.BoolGrid, error) {
	g, err := s.grid(a)
	if err != nil {
		return chart.BoolGrid{}, err
	}
	th, err := a.threshold(s.pipeline.Params.Threshold)
	if err != nil {
		return chart.BoolGrid{}, err
	}
	fg := chart.Binarize(g, th)
	if a.invert(s.cfg.Pipeline.Invert) {
		fg = fg.Invert()
	}
	return fg, nil
}

type regionArgs struct {
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
	X2 int `json:"x2"`
	Y2 int `json:"y2"`
}

// === Image inspection ===

type chartLoadArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleChartLoad(args json.RawMessage) (interface{}, error) {
	var a chartLoadArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	return imaging.LoadImageInfo(s.cache, a.Path)
}

type chartZoomArgs struct {
	Path       string  `json:"path"`
	X          int     `json:"x"`
	Y          int     `json:"y"`
	Zoom       float64 `json:"zoom"`
	OutputSize int     `json:"output_size"`
	Smooth     *bool   `json:"smooth,omitempty"`
}

func (s *Server) handleChartZoom(args json.RawMessage) (interface{}, error) {
	var a chartZoomArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Zoom == 0 {
		a.Zoom = s.cfg.View.Zoom
	}
	if a.OutputSize == 0 {
		a.OutputSize = s.cfg.View.OutputSize
	}
	smooth := s.cfg.View.Smooth
	if a.Smooth != nil {
		smooth = *a.Smooth
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	return imaging.Zoom(img, a.X, a.Y, a.Zoom, a.OutputSize, smooth)
}

type chartDominantColorsArgs struct {
	Path   string      `json:"path"`
	Count  int         `json:"count"`
	Region *regionArgs `json:"region,omitempty"`
}

func (s *Server) handleChartDominantColors(args json.RawMessage) (interface{}, error) {
	var a chartDominantColorsArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Count == 0 {
		a.Count = 5
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}

	var region *imaging.Region
	if a.Region != nil {
		region = &imaging.Region{X1: a.Region.X1, Y1: a.Region.Y1, X2: a.Region.X2, Y2: a.Region.Y2}
	}
	return imaging.DominantColors(img, a.Count, region)
}

// === Pipeline stages ===

func (s *Server) handleChartBinarize(args json.RawMessage) (interface{}, error) {
	var a sourceArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	g, err := s.grid(a)
	if err != nil {
		return nil, err
	}
	th, err := a.threshold(s.pipeline.Params.Threshold)
	if err != nil {
		return nil, err
	}
	return imaging.BinarizePreview(g, th, a.invert(s.cfg.Pipeline.Invert))
}

type chartDetectAxesArgs struct {
	sourceArgs
	MinFraction float64 `json:"min_fraction"`
}

func (s *Server) handleChartDetectAxes(args json.RawMessage) (interface{}, error) {
	var a chartDetectAxesArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.MinFraction == 0 {
		a.MinFraction = detection.DefaultMinFraction
	}
	fg, err := s.foreground(a.sourceArgs)
	if err != nil {
		return nil, err
	}
	return detection.DetectAxes(fg, a.MinFraction)
}

type chartGridLinesArgs struct {
	sourceArgs
	Axis         string `json:"axis"`
	Start        int    `json:"start"`
	End          int    `json:"end"`
	Extent       int    `json:"extent"`
	RunThreshold *int   `json:"run_threshold,omitempty"`
}

type gridLinesResult struct {
	*chart.GridLineScan
	Clustering *chart.Clustering `json:"clustering,omitempty"`
	Warning    string            `json:"warning,omitempty"`
}

func (s *Server) handleChartGridLines(args json.RawMessage) (interface{}, error) {
	var a chartGridLinesArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	axis, err := chart.ParseAxis(a.Axis)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errInvalidArgs, err)
	}
	fg, err := s.foreground(a.sourceArgs)
	if err != nil {
		return nil, err
	}

	// zero end and extent mean the full image
	scanLen, orthLen := fg.Height, fg.Width
	if axis == chart.AxisColumn {
		scanLen, orthLen = fg.Width, fg.Height
	}
	if a.End == 0 {
		a.End = scanLen
	}
	if a.Extent == 0 {
		a.Extent = orthLen
	}
	run := s.pipeline.Params.ColumnRunThreshold
	if a.RunThreshold != nil {
		run = *a.RunThreshold
	}

	scan, err := s.pipeline.InferGridLines(axis, a.Start, a.End, a.Extent, run, fg)
	if err != nil {
		return nil, err
	}
	res := gridLinesResult{GridLineScan: scan}
	if len(scan.Candidates) > 0 {
		res.Clustering, err = s.pipeline.ClusterLines(scan.Candidates)
		if err != nil {
			res.Warning = err.Error()
		}
	}
	return res, nil
}

type chartClusterLinesArgs struct {
	Candidates    []int `json:"candidates"`
	MergeDistance *int  `json:"merge_distance,omitempty"`
}

type clusterResult struct {
	*chart.Clustering
	Warning string `json:"warning,omitempty"`
}

func (s *Server) handleChartClusterLines(args json.RawMessage) (interface{}, error) {
	var a chartClusterLinesArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	merge := s.pipeline.Params.MergeDistance
	if a.MergeDistance != nil {
		merge = *a.MergeDistance
	}
	c, err := chart.ClusterLines(a.Candidates, merge)
	if errors.Is(err, chart.ErrDegenerateSpacing) {
		return clusterResult{Clustering: c, Warning: err.Error()}, nil
	}
	if err != nil {
		return nil, err
	}
	return clusterResult{Clustering: c}, nil
}

type chartCorrectHeightsArgs struct {
	Heights         []int     `json:"heights"`
	BlockDelta      float64   `json:"block_delta"`
	Representatives []float64 `json:"representatives"`
	RangeMin        int       `json:"range_min"`
}

func (s *Server) handleChartCorrectHeights(args json.RawMessage) (interface{}, error) {
	var a chartCorrectHeightsArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	return s.pipeline.CorrectHeights(a.Heights, a.BlockDelta, a.Representatives, a.RangeMin)
}

type chartRescaleArgs struct {
	Coords   []float64          `json:"coords"`
	Anchors  []chart.AnchorPair `json:"anchors"`
	Inverted bool               `json:"inverted"`
	Extent   float64            `json:"extent"`
}

type rescaleResult struct {
	Values []float64 `json:"values"`
}

func (s *Server) handleChartRescale(args json.RawMessage) (interface{}, error) {
	var a chartRescaleArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	values, err := chart.FitAndApply(a.Coords, a.Inverted, a.Extent, a.Anchors)
	if err != nil {
		return nil, err
	}
	return rescaleResult{Values: values}, nil
}

type chartDigitizeArgs struct {
	sourceArgs
	XMin      int                `json:"x_min"`
	XMax      int                `json:"x_max"`
	Baseline  int                `json:"baseline"`
	YMin      int                `json:"y_min"`
	YMax      int                `json:"y_max"`
	RowExtent int                `json:"row_extent"`
	YTicks    []float64          `json:"y_ticks,omitempty"`
	YAnchors  []chart.AnchorPair `json:"y_anchors,omitempty"`
	XAnchors  []chart.AnchorPair `json:"x_anchors,omitempty"`

	// AutoAxes fills unset x_min, x_max and baseline from the detected
	// axes.
	AutoAxes bool `json:"auto_axes"`

	// YLabels and XLabels locate anchors by OCR when explicit anchors
	// are not given.
	YLabels []string    `json:"y_labels,omitempty"`
	XLabels []string    `json:"x_labels,omitempty"`
	YRegion *regionArgs `json:"y_label_region,omitempty"`
	XRegion *regionArgs `json:"x_label_region,omitempty"`
}

func (s *Server) handleChartDigitize(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a chartDigitizeArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	g, err := s.grid(a.sourceArgs)
	if err != nil {
		return nil, err
	}
	p, err := s.pipelineFor(a.sourceArgs)
	if err != nil {
		return nil, err
	}

	req := chart.DigitizeRequest{
		Grid:      g,
		Invert:    a.invert(s.cfg.Pipeline.Invert),
		XMin:      a.XMin,
		XMax:      a.XMax,
		Baseline:  a.Baseline,
		YMin:      a.YMin,
		YMax:      a.YMax,
		RowExtent: a.RowExtent,
		YTicks:    a.YTicks,
		YAnchors:  a.YAnchors,
		XAnchors:  a.XAnchors,
	}
	if a.AutoAxes {
		if err := applyDetectedAxes(&req, p.Params.Threshold); err != nil {
			return nil, err
		}
	}
	if len(req.YAnchors) == 0 && len(a.YLabels) > 0 {
		req.YAnchors, err = s.ocrAnchors(ctx, a.Path, a.YLabels, chart.AxisRow, a.YRegion)
		if err != nil {
			return nil, fmt.Errorf("y labels: %w", err)
		}
	}
	if len(req.XAnchors) == 0 && len(a.XLabels) > 0 {
		req.XAnchors, err = s.ocrAnchors(ctx, a.Path, a.XLabels, chart.AxisColumn, a.XRegion)
		if err != nil {
			return nil, fmt.Errorf("x labels: %w", err)
		}
	}

	return p.Digitize(ctx, req)
}

// applyDetectedAxes sets the plot bounds the caller left at zero.
func applyDetectedAxes(req *chart.DigitizeRequest, threshold uint8) error {
	fg := chart.Binarize(req.Grid, threshold)
	if req.Invert {
		fg = fg.Invert()
	}
	axes, err := detection.DetectAxes(fg, detection.DefaultMinFraction)
	if err != nil {
		return fmt.Errorf("axis detection: %w", err)
	}
	axes.ApplyTo(req)
	return nil
}

type chartOverlayArgs struct {
	Path       string                 `json:"path"`
	Rows       []float64              `json:"rows"`
	Columns    []float64              `json:"columns"`
	Points     []imaging.OverlayPoint `json:"points"`
	LineColor  string                 `json:"line_color"`
	PointColor string                 `json:"point_color"`
}

func (s *Server) handleChartOverlay(args json.RawMessage) (interface{}, error) {
	var a chartOverlayArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.LineColor == "" {
		a.LineColor = s.cfg.Output.OverlayColor
	}
	if a.PointColor == "" {
		a.PointColor = s.cfg.Output.PointColor
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	return imaging.Overlay(img, imaging.OverlayOptions{
		Rows:       a.Rows,
		Columns:    a.Columns,
		Points:     a.Points,
		LineColor:  a.LineColor,
		PointColor: a.PointColor,
	})
}

// === OCR ===

type chartOCRAnchorsArgs struct {
	Path          string      `json:"path"`
	Labels        []string    `json:"labels"`
	Axis          string      `json:"axis"`
	Region        *regionArgs `json:"region,omitempty"`
	MinConfidence *float64    `json:"min_confidence,omitempty"`
}

type ocrAnchorsResult struct {
	Tokens  []chart.TextToken  `json:"tokens"`
	Anchors []chart.AnchorPair `json:"anchors"`
	Warning string             `json:"warning,omitempty"`
}

func (s *Server) handleChartOCRAnchors(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a chartOCRAnchorsArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	axis, err := chart.ParseAxis(a.Axis)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errInvalidArgs, err)
	}
	minConf := s.cfg.OCR.MinConfidence
	if a.MinConfidence != nil {
		minConf = *a.MinConfidence
	}

	tokens, err := s.recognize(ctx, a.Path, a.Region)
	if err != nil {
		return nil, err
	}
	res := ocrAnchorsResult{Tokens: tokens, Anchors: []chart.AnchorPair{}}
	anchors, err := chart.AnchorsFromTokens(tokens, a.Labels, axis, minConf)
	if errors.Is(err, chart.ErrInsufficientAnchors) {
		// the tokens still help the caller fix the labels
		res.Warning = err.Error()
	} else if err != nil {
		return nil, err
	}
	if anchors != nil {
		res.Anchors = anchors
	}
	return res, nil
}

func (s *Server) recognize(ctx context.Context, path string, region *regionArgs) ([]chart.TextToken, error) {
	img, err := s.cache.Load(path)
	if err != nil {
		return nil, err
	}
	if region == nil {
		return s.recognizer.Recognize(ctx, img)
	}
	r := image.Rect(region.X1, region.Y1, region.X2, region.Y2)
	return s.recognizer.RecognizeRegion(ctx, img, r)
}

func (s *Server) ocrAnchors(ctx context.Context, path string, labels []string, axis chart.Axis, region *regionArgs) ([]chart.AnchorPair, error) {
	tokens, err := s.recognize(ctx, path, region)
	if err != nil {
		return nil, err
	}
	return chart.AnchorsFromTokens(tokens, labels, axis, s.cfg.OCR.MinConfidence)
}
