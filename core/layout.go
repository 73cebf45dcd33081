package core

import "math"

// Grid geometry used by the canvas UI. Positions and sizes passed to
// NextPosition are in grid units, not pixels.
const (
	GridColumns   = 12
	GridRowHeight = 50
	HeaderHeight  = 75
	HeaderMargin  = 5
)

// HeaderRows is the number of grid rows the header image occupies when shown.
func HeaderRows(showHeader bool) float64 {
	if !showHeader {
		return 0
	}
	return math.Ceil(float64(HeaderHeight+HeaderMargin) / GridRowHeight)
}

// NextPosition picks where a new width×height widget goes: to the right of the
// last widget on the bottom-most row if it fits, otherwise at the start of a new
// row below everything. The header rows are never used.
func NextPosition(widgets []Widget, showHeader bool, width, height float64) Position {
	headerRows := HeaderRows(showHeader)
	if len(widgets) == 0 {
		return Position{X: 0, Y: headerRows}
	}

	currentRowY := math.Inf(-1)
	for _, w := range widgets {
		currentRowY = math.Max(currentRowY, w.Position.Y)
	}

	var last *Widget
	for i := range widgets {
		if widgets[i].Position.Y == currentRowY {
			last = &widgets[i]
		}
	}
	if last != nil && last.Position.X+last.Size.Width+width <= GridColumns {
		return Position{X: last.Position.X + last.Size.Width, Y: currentRowY}
	}

	maxY := math.Inf(-1)
	for _, w := range widgets {
		maxY = math.Max(maxY, w.Position.Y+w.Size.Height)
	}
	return Position{X: 0, Y: math.Max(maxY, headerRows)}
}
