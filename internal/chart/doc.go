// Package chart turns a scanned bar chart into a numeric data series.
//
// The pipeline is a chain of small, pure transforms over in-memory grids:
//
//  1. Region selection: clamp a viewing window to the image for visual QA.
//  2. Binarization: intensity grid -> boolean foreground grid.
//  3. Grid-line inference: run-length scans along rows or columns.
//  4. Line clustering: merge adjacent candidates into representative lines
//     and measure their mean spacing (the block delta).
//  5. Bar-height correction: snap each bar plateau to its modal height.
//  6. Rescaling: fit a linear pixel -> value map from anchor pairs.
//
// Pipeline.Digitize wires the stages together. Each stage is also exported
// on its own so an analyst can inspect intermediate results and re-run a
// single stage with different parameters.
//
// # Coordinate System
//
// Grids are row-major with (0,0) at the top-left. X indexes columns and
// Y indexes rows. Data axes usually grow upward, so y rescaling runs on an
// inverted axis where pixel p is reflected to extent-p before fitting.
//
// # Errors
//
// Every failure wraps one of ErrInvalidInput, ErrNoSignalInWindow,
// ErrInsufficientAnchors or ErrDegenerateSpacing; use errors.Is to branch.
// None of them are transient. The caller adjusts the threshold, window or
// region and runs again.
package chart
