package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/png"

	"golang.org/x/image/draw"
)

// Surface is a 2D raster the capture is composed on. Like a canvas context,
// its Filter applies to every subsequent draw, not to what is already there.
type Surface struct {
	img    *image.RGBA
	Filter Filter
}

// NewSurface returns an empty 0x0 surface.
func NewSurface() *Surface {
	return &Surface{img: image.NewRGBA(image.Rectangle{}), Filter: FilterNone}
}

// Resize replaces the backing raster with a cleared w x h one.
func (s *Surface) Resize(w, h int) {
	s.img = image.NewRGBA(image.Rect(0, 0, w, h))
}

// Bounds returns the surface rectangle.
func (s *Surface) Bounds() image.Rectangle {
	return s.img.Bounds()
}

// Image exposes the backing raster.
func (s *Surface) Image() *image.RGBA {
	return s.img
}

// DrawImage draws src at the origin at its native size.
func (s *Surface) DrawImage(src image.Image) {
	sb := src.Bounds()
	layer := image.NewRGBA(image.Rect(0, 0, sb.Dx(), sb.Dy()))
	draw.Draw(layer, layer.Bounds(), src, sb.Min, draw.Src)
	s.composite(layer)
}

// DrawScaled stretches src over the whole surface.
func (s *Surface) DrawScaled(src image.Image) {
	layer := image.NewRGBA(s.img.Bounds())
	draw.CatmullRom.Scale(layer, layer.Bounds(), src, src.Bounds(), draw.Src, nil)
	s.composite(layer)
}

func (s *Surface) composite(layer *image.RGBA) {
	s.Filter.Apply(layer)
	draw.Draw(s.img, layer.Bounds(), layer, image.Point{}, draw.Over)
}

// EncodePNG exports the surface as a lossless PNG.
func (s *Surface) EncodePNG() ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, s.img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}
