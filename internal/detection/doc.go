// Package detection locates chart furniture in a binarized chart.
//
// DetectAxes finds the x axis (the lowest long horizontal line) and the y
// axis (the leftmost long vertical line) and turns them into the plot
// bounds the digitizer needs: the baseline row, and the column range
// right of the y axis.
//
// # Coordinate System
//
// All coordinates use the standard image convention:
//   - Origin (0, 0) at top-left corner
//   - X increases rightward
//   - Y increases downward
//   - Ranges are [start, end)
//
// # Limitations
//
// Axes are found from foreground runs, so they must be drawn in the same
// polarity as the bars. A chart without an axis line falls back to the
// full image, and a bar taller than the length fraction can be mistaken
// for the y axis when no axis line is drawn.
package detection
