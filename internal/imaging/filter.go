package imaging

import (
	"errors"
	"fmt"
	"image"
)

// ErrUnknownFilter is returned for filter names outside the supported set.
var ErrUnknownFilter = errors.New("unknown filter")

// Filter is a named colour effect applied to everything drawn on a Surface.
type Filter string

const (
	FilterNone      Filter = "none"
	FilterGrayscale Filter = "grayscale"
	FilterSepia     Filter = "sepia"
	FilterInvert    Filter = "invert"
)

// Filters lists every supported filter, in display order.
var Filters = []Filter{FilterNone, FilterGrayscale, FilterSepia, FilterInvert}

// ParseFilter maps a setup-screen value to a Filter. The empty string is "none".
func ParseFilter(s string) (Filter, error) {
	if s == "" {
		return FilterNone, nil
	}
	for _, f := range Filters {
		if string(f) == s {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFilter, s)
}

// Effect returns the CSS filter string used by the kiosk page to preview the
// filter on the live feed. "none" maps to no effect.
func (f Filter) Effect() string {
	if f == FilterNone || f == "" {
		return ""
	}
	return string(f) + "(100%)"
}

// Apply rewrites every pixel of img in place.
func (f Filter) Apply(img *image.RGBA) {
	var fn func(r, g, b, a float64) (float64, float64, float64)
	switch f {
	case FilterGrayscale:
		fn = grayscale
	case FilterSepia:
		fn = sepia
	case FilterInvert:
		fn = invert
	default:
		return
	}

	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := img.Pix[img.PixOffset(b.Min.X, y):img.PixOffset(b.Max.X, y)]
		for i := 0; i+3 < len(row); i += 4 {
			a := float64(row[i+3])
			r, g, bl := fn(float64(row[i]), float64(row[i+1]), float64(row[i+2]), a)
			// image.RGBA is alpha-premultiplied: channels never exceed alpha.
			row[i] = clamp(r, a)
			row[i+1] = clamp(g, a)
			row[i+2] = clamp(bl, a)
		}
	}
}

// Coefficients follow the CSS Filter Effects spec so stills match the
// live preview.
func grayscale(r, g, b, _ float64) (float64, float64, float64) {
	y := 0.2126*r + 0.7152*g + 0.0722*b
	return y, y, y
}

func sepia(r, g, b, _ float64) (float64, float64, float64) {
	return 0.393*r + 0.769*g + 0.189*b,
		0.349*r + 0.686*g + 0.168*b,
		0.272*r + 0.534*g + 0.131*b
}

func invert(r, g, b, a float64) (float64, float64, float64) {
	return a - r, a - g, a - b
}

func clamp(v, hi float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > hi {
		v = hi
	}
	return uint8(v + 0.5)
}
