package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"

	"golang.org/x/image/draw"

	"github.com/cjeanneret/BoothGo/internal/logic/geometry"
)

// StripOptions controls ComposeStrip output.
type StripOptions struct {
	Columns  int         // cells per row (default 1)
	MaxCell  int         // bounding box of one cell (px, default 480)
	Margin   int         // gap around and between cells (px, default 16, negative for none)
	Backdrop color.Color // strip background (default white)
}

func (o StripOptions) withDefaults() StripOptions {
	if o.Columns < 1 {
		o.Columns = 1
	}
	if o.MaxCell <= 0 {
		o.MaxCell = 480
	}
	if o.Margin < 0 {
		o.Margin = 0
	} else if o.Margin == 0 {
		o.Margin = 16
	}
	if o.Backdrop == nil {
		o.Backdrop = color.White
	}
	return o
}

// ComposeStrip decodes the session PNGs and tiles them into one printable
// PNG. Cells share the aspect ratio of the first photo.
func ComposeStrip(pngs [][]byte, opts StripOptions) ([]byte, error) {
	if len(pngs) == 0 {
		return nil, fmt.Errorf("compose strip: no photos")
	}
	opts = opts.withDefaults()

	imgs := make([]image.Image, len(pngs))
	for i, data := range pngs {
		img, err := png.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("decode photo %d: %w", i+1, err)
		}
		imgs[i] = img
	}

	first := imgs[0].Bounds()
	cellW, cellH := geometry.FitCell(first.Dx(), first.Dy(), opts.MaxCell, opts.MaxCell)
	plan, err := geometry.CalculateStripPlan(len(imgs), opts.Columns, cellW, cellH, opts.Margin)
	if err != nil {
		return nil, fmt.Errorf("compose strip: %w", err)
	}

	strip := image.NewRGBA(image.Rect(0, 0, plan.Width, plan.Height))
	draw.Draw(strip, strip.Bounds(), image.NewUniform(opts.Backdrop), image.Point{}, draw.Src)
	for i, img := range imgs {
		draw.CatmullRom.Scale(strip, plan.CellRect(i), img, img.Bounds(), draw.Over, nil)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, strip); err != nil {
		return nil, fmt.Errorf("encode strip: %w", err)
	}
	return buf.Bytes(), nil
}
