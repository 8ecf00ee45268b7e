package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func pathProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Absolute path to the chart image (PNG, JPEG, GIF, TIFF or BMP)",
	}
}

// sourceProperties are shared by the tools that binarize the chart.
func sourceProperties() map[string]interface{} {
	return map[string]interface{}{
		"path": pathProperty(),
		"threshold": map[string]interface{}{
			"type":        "integer",
			"description": "Binarization cutoff 0-255; pixels strictly brighter are foreground. Default from configuration (100)",
			"minimum":     0,
			"maximum":     255,
		},
		"invert": map[string]interface{}{
			"type":        "boolean",
			"description": "Treat dark pixels as foreground (dark bars on a light background)",
		},
		"bar_color": map[string]interface{}{
			"type":        "string",
			"description": "Hex color of the bars (e.g. \"#4472c4\"). When set, pixels are scored by closeness to this color instead of brightness",
		},
		"color_distance": map[string]interface{}{
			"type":        "number",
			"description": "Lab distance at which a pixel stops matching bar_color. Defaults to pipeline.colorDistance in the config (0.25)",
		},
	}
}

func withProperties(base map[string]interface{}, extra map[string]interface{}) map[string]interface{} {
	for k, v := range extra {
		base[k] = v
	}
	return base
}

func anchorsProperty(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "array",
		"description": description,
		"items": map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"pixel": map[string]interface{}{"type": "number"},
				"value": map[string]interface{}{"type": "number"},
			},
			"required": []string{"pixel", "value"},
		},
	}
}

func regionProperty(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "object",
		"description": description,
		"properties": map[string]interface{}{
			"x1": map[string]interface{}{"type": "integer"},
			"y1": map[string]interface{}{"type": "integer"},
			"x2": map[string]interface{}{"type": "integer"},
			"y2": map[string]interface{}{"type": "integer"},
		},
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Image inspection
		{
			Name:        "chart_load",
			Description: "Load a chart image and return its dimensions, format and color depth.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "chart_zoom",
			Description: "Render a magnified square view centered on a pixel, clamped to stay inside the image. Returns the PNG and the origin of the view so zoomed coordinates can be mapped back.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"x": map[string]interface{}{
						"type":        "integer",
						"description": "Center column (0-based)",
					},
					"y": map[string]interface{}{
						"type":        "integer",
						"description": "Center row (0-based)",
					},
					"zoom": map[string]interface{}{
						"type":        "number",
						"description": "Zoom factor; the view side is min(width, height)/zoom. Default 4",
						"default":     4,
					},
					"output_size": map[string]interface{}{
						"type":        "integer",
						"description": "Side of the rendered PNG in pixels. Default 512",
						"default":     512,
					},
					"smooth": map[string]interface{}{
						"type":        "boolean",
						"description": "Use Lanczos resampling instead of nearest neighbor",
					},
				},
				"required": []string{"path", "x", "y"},
			},
		},
		{
			Name:        "chart_dominant_colors",
			Description: "List the most common colors of the chart, most frequent first. Use it to pick bar_color for colored or multi-series charts.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"count": map[string]interface{}{
						"type":        "integer",
						"description": "Number of colors to return. Default 5",
						"default":     5,
					},
					"region": regionProperty("Optional region to analyze"),
				},
				"required": []string{"path"},
			},
		},

		// Pipeline stages
		{
			Name:        "chart_binarize",
			Description: "Preview the foreground mask for a threshold (foreground white) and report the foreground fraction.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": sourceProperties(),
				"required":   []string{"path"},
			},
		},
		{
			Name:        "chart_detect_axes",
			Description: "Find the x axis (lowest long horizontal line) and y axis (leftmost long vertical line) and suggest baseline, x_min and x_max for chart_digitize.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": withProperties(sourceProperties(), map[string]interface{}{
					"min_fraction": map[string]interface{}{
						"type":        "number",
						"description": "Share of the image width (x axis) or height (y axis) a line must span. Default 0.5",
						"default":     0.5,
					},
				}),
				"required": []string{"path"},
			},
		},
		{
			Name:        "chart_grid_lines",
			Description: "Run-length scan of the binarized chart. axis=row finds horizontal grid lines (runs from the left edge); axis=column measures bar heights upward from the extent row. Flagged coordinates are also clustered.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": withProperties(sourceProperties(), map[string]interface{}{
					"axis": map[string]interface{}{
						"type":        "string",
						"description": "row or column",
						"enum":        []string{"row", "column"},
					},
					"start": map[string]interface{}{
						"type":        "integer",
						"description": "First coordinate to scan",
					},
					"end": map[string]interface{}{
						"type":        "integer",
						"description": "One past the last coordinate. Default: image height for rows, width for columns",
					},
					"extent": map[string]interface{}{
						"type":        "integer",
						"description": "Row scans: maximum run length. Column scans: the baseline row the scan starts above. Default: full image",
					},
					"run_threshold": map[string]interface{}{
						"type":        "integer",
						"description": "Minimum bar height for column scans. Rows always use the configured row threshold",
					},
				}),
				"required": []string{"path", "axis"},
			},
		},
		{
			Name:        "chart_cluster_lines",
			Description: "Merge ascending candidate coordinates into clusters and report their means, spacings and average spacing (block delta).",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"candidates": map[string]interface{}{
						"type":        "array",
						"description": "Ascending coordinates",
						"items":       map[string]interface{}{"type": "integer"},
					},
					"merge_distance": map[string]interface{}{
						"type":        "integer",
						"description": "Largest gap inside one cluster. Default 5",
					},
				},
				"required": []string{"candidates"},
			},
		},
		{
			Name:        "chart_correct_heights",
			Description: "Snap each bar to its plateau height: the modal height near each representative column, averaged over columns within 5% of it.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"heights": map[string]interface{}{
						"type":        "array",
						"description": "Raw height per column, starting at range_min",
						"items":       map[string]interface{}{"type": "integer"},
					},
					"block_delta": map[string]interface{}{
						"type":        "number",
						"description": "Average bar spacing from chart_cluster_lines",
					},
					"representatives": map[string]interface{}{
						"type":        "array",
						"description": "Bar center columns from chart_cluster_lines",
						"items":       map[string]interface{}{"type": "number"},
					},
					"range_min": map[string]interface{}{
						"type":        "integer",
						"description": "Column of heights[0]",
					},
				},
				"required": []string{"heights", "block_delta", "representatives"},
			},
		},
		{
			Name:        "chart_rescale",
			Description: "Fit a least-squares linear map from anchor pairs and apply it to pixel coordinates. Set inverted for y values measured as rows.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"coords": map[string]interface{}{
						"type":        "array",
						"description": "Pixel coordinates to convert",
						"items":       map[string]interface{}{"type": "number"},
					},
					"anchors":  anchorsProperty("At least two pixel/value pairs"),
					"inverted": map[string]interface{}{"type": "boolean", "description": "Reflect anchors and coords as extent - p first"},
					"extent":   map[string]interface{}{"type": "number", "description": "Reflection extent, usually the image height"},
				},
				"required": []string{"coords", "anchors"},
			},
		},
		{
			Name:        "chart_digitize",
			Description: "Run the full pipeline: binarize, scan bar columns above the baseline, cluster bars, correct heights, and rescale to data values using y ticks on detected grid lines, explicit anchors or OCR'd axis labels.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": withProperties(sourceProperties(), map[string]interface{}{
					"auto_axes":      map[string]interface{}{"type": "boolean", "description": "Fill unset x_min, x_max and baseline from the detected axes"},
					"x_min":          map[string]interface{}{"type": "integer", "description": "First column of the plot area"},
					"x_max":          map[string]interface{}{"type": "integer", "description": "One past the last column. Default: image width"},
					"baseline":       map[string]interface{}{"type": "integer", "description": "Row just below the bars. Default: image height"},
					"y_min":          map[string]interface{}{"type": "integer", "description": "First row scanned for grid lines"},
					"y_max":          map[string]interface{}{"type": "integer", "description": "One past the last grid line row. Default: image height"},
					"row_extent":     map[string]interface{}{"type": "integer", "description": "Maximum grid line run length. Default: image width"},
					"y_ticks":        map[string]interface{}{"type": "array", "items": map[string]interface{}{"type": "number"}, "description": "Values of the horizontal grid lines, top to bottom"},
					"y_anchors":      anchorsProperty("Row/value pairs; override y_ticks"),
					"x_anchors":      anchorsProperty("Column/value pairs for the x axis"),
					"y_labels":       map[string]interface{}{"type": "array", "items": map[string]interface{}{"type": "string"}, "description": "Y tick label texts to locate by OCR"},
					"x_labels":       map[string]interface{}{"type": "array", "items": map[string]interface{}{"type": "string"}, "description": "X tick label texts to locate by OCR"},
					"y_label_region": regionProperty("Region holding the y labels"),
					"x_label_region": regionProperty("Region holding the x labels"),
				}),
				"required": []string{"path"},
			},
		},
		{
			Name:        "chart_overlay",
			Description: "Draw detected grid lines, bar columns and digitized points on the chart for visual checking.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":    pathProperty(),
					"rows":    map[string]interface{}{"type": "array", "items": map[string]interface{}{"type": "number"}, "description": "Rows of horizontal lines"},
					"columns": map[string]interface{}{"type": "array", "items": map[string]interface{}{"type": "number"}, "description": "Columns of vertical lines"},
					"points": map[string]interface{}{
						"type":        "array",
						"description": "Points to mark, with optional labels",
						"items": map[string]interface{}{
							"type": "object",
							"properties": map[string]interface{}{
								"x":     map[string]interface{}{"type": "number"},
								"y":     map[string]interface{}{"type": "number"},
								"label": map[string]interface{}{"type": "string"},
							},
						},
					},
					"line_color":  map[string]interface{}{"type": "string", "description": "Hex line color"},
					"point_color": map[string]interface{}{"type": "string", "description": "Hex point color"},
				},
				"required": []string{"path"},
			},
		},

		// OCR
		{
			Name:        "chart_ocr_anchors",
			Description: "Recognize tick labels with Tesseract and pair each requested label with the center of the matching word box.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"labels": map[string]interface{}{
						"type":        "array",
						"description": "Numeric tick label texts, e.g. [\"0\", \"50\", \"100\"]",
						"items":       map[string]interface{}{"type": "string"},
					},
					"axis": map[string]interface{}{
						"type":        "string",
						"description": "row for y-axis labels (pixel is the box center row), column for x-axis labels",
						"enum":        []string{"row", "column"},
					},
					"region": regionProperty("Optional region holding the labels"),
					"min_confidence": map[string]interface{}{
						"type":        "number",
						"description": "Minimum word confidence 0-1. Default 0.5",
					},
				},
				"required": []string{"path", "labels", "axis"},
			},
		},
		{
			Name:        "chart_ocr_info",
			Description: "Report whether Tesseract and the configured language data are available.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
