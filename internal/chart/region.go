package chart

import "image"

// Span is a half-open range [Start, End) along one axis.
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Len returns End-Start.
func (s Span) Len() int {
	return s.End - s.Start
}

// SelectRegion returns a window of the given size centered on center and
// clamped to [0, length).
//
// A window that would start before 0 becomes [0, window); one that would
// reach past length becomes [length-window, length). The start of a
// centered window is floor(center - window/2), so half-pixel cases round
// down. A window at least as long as the axis degenerates to [0, length).
func SelectRegion(center, window, length int) Span {
	if window >= length {
		return Span{Start: 0, End: length}
	}
	if window/2 > center {
		return Span{Start: 0, End: window}
	}
	if window/2+center >= length {
		return Span{Start: length - window, End: length}
	}
	start := center - (window+1)/2
	if start < 0 {
		// odd window exactly half a pixel past the left edge
		start = 0
	}
	return Span{Start: start, End: start + window}
}

// Window is a 2-D viewing window in pixel coordinates.
type Window struct {
	X Span `json:"x"`
	Y Span `json:"y"`
}

// Rect returns the window as an image rectangle.
func (w Window) Rect() image.Rectangle {
	return image.Rect(w.X.Start, w.Y.Start, w.X.End, w.Y.End)
}

// Origin returns the top-left corner, used to map zoomed coordinates back
// onto the full image.
func (w Window) Origin() image.Point {
	return image.Pt(w.X.Start, w.Y.Start)
}

// ViewWindow selects a square window around (x, y) whose side is the
// shorter image dimension divided by zoom. Magnifying the window by zoom
// therefore yields a view about as large as the shorter side.
func ViewWindow(width, height, x, y int, zoom float64) Window {
	if zoom < 1 {
		zoom = 1
	}
	side := width
	if height < side {
		side = height
	}
	side = int(float64(side) / zoom)
	if side < 1 {
		side = 1
	}
	return Window{
		X: SelectRegion(x, side, width),
		Y: SelectRegion(y, side, height),
	}
}
