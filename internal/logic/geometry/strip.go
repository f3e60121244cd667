package geometry

import (
	"fmt"
	"image"
	"math"
)

// StripPlan lays session photos out on a printable strip: a grid of equal
// cells, filled row by row, with a uniform margin around and between cells.
type StripPlan struct {
	Columns    int // number of cells per row
	Rows       int // number of rows
	CellWidth  int // width of one photo cell (px)
	CellHeight int // height of one photo cell (px)
	Margin     int // gap around and between cells (px)

	Width  int // total strip width (px)
	Height int // total strip height (px)
}

// CalculateStripPlan computes the strip for count photos of cellW x cellH.
// columns is clamped to [1, count].
func CalculateStripPlan(count, columns, cellW, cellH, margin int) (*StripPlan, error) {
	if count < 1 {
		return nil, fmt.Errorf("strip needs at least one photo, got %d", count)
	}
	if cellW <= 0 || cellH <= 0 {
		return nil, fmt.Errorf("cell size must be positive, got %dx%d", cellW, cellH)
	}
	if margin < 0 {
		return nil, fmt.Errorf("margin must be >= 0, got %d", margin)
	}
	if columns < 1 {
		columns = 1
	}
	if columns > count {
		columns = count
	}

	// Round up so every photo gets a cell
	rows := int(math.Ceil(float64(count) / float64(columns)))

	return &StripPlan{
		Columns:    columns,
		Rows:       rows,
		CellWidth:  cellW,
		CellHeight: cellH,
		Margin:     margin,
		Width:      columns*cellW + (columns+1)*margin,
		Height:     rows*cellH + (rows+1)*margin,
	}, nil
}

// CellRect returns the rectangle of the i-th cell (0-based).
func (p *StripPlan) CellRect(i int) image.Rectangle {
	col := i % p.Columns
	row := i / p.Columns
	x := p.Margin + col*(p.CellWidth+p.Margin)
	y := p.Margin + row*(p.CellHeight+p.Margin)
	return image.Rect(x, y, x+p.CellWidth, y+p.CellHeight)
}

// FitCell returns the cell size that keeps the aspect ratio of a srcW x srcH
// photo within a maxW x maxH box.
func FitCell(srcW, srcH, maxW, maxH int) (int, int) {
	if srcW <= 0 || srcH <= 0 {
		return maxW, maxH
	}
	scale := math.Min(float64(maxW)/float64(srcW), float64(maxH)/float64(srcH))
	w := int(math.Round(float64(srcW) * scale))
	h := int(math.Round(float64(srcH) * scale))
	return max(w, 1), max(h, 1)
}
