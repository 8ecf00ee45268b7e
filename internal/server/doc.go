// Package server implements the MCP (Model Context Protocol) server for
// bar chart digitization.
//
// The server speaks JSON-RPC 2.0 over stdio, one request per line:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Image inspection:
//   - chart_load: Dimensions and format
//   - chart_zoom: Magnified view around a pixel
//   - chart_dominant_colors: Palette, to choose a bar color
//
// Pipeline stages, each usable on its own to inspect intermediate results:
//   - chart_binarize: Foreground mask preview
//   - chart_detect_axes: Axis lines and the plot bounds they imply
//   - chart_grid_lines: Row or column run-length scan, clustered
//   - chart_cluster_lines: Cluster candidate coordinates
//   - chart_correct_heights: Snap bar heights to their plateaus
//   - chart_rescale: Pixel to value conversion from anchors
//   - chart_digitize: The whole pipeline in one call
//   - chart_overlay: Draw lines and points for visual checking
//
// OCR:
//   - chart_ocr_anchors: Locate tick labels and build anchors
//   - chart_ocr_info: Tesseract availability
//
// # Error Handling
//
// Argument decoding failures return -32602. Pipeline failures return
// -32000 with the wrapped error in data, which names the failing stage.
// Some stages report a recoverable condition (a single cluster, too few
// OCR matches) as a warning field next to the partial result instead.
package server
