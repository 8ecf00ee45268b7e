package chart

// Binarize flags every pixel strictly brighter than threshold.
//
// The input grid is not modified. Binarize is total: an empty grid yields an
// empty BoolGrid.
func Binarize(g Grid, threshold uint8) BoolGrid {
	out := NewBoolGrid(g.Width, g.Height)
	for i, v := range g.Pix {
		out.Pix[i] = v > threshold
	}
	return out
}

// Invert flips every flag. Charts drawn dark-on-light need their bars to
// be foreground before the run-length scans.
func (g BoolGrid) Invert() BoolGrid {
	out := NewBoolGrid(g.Width, g.Height)
	for i, v := range g.Pix {
		out.Pix[i] = !v
	}
	return out
}
