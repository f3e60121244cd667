package imaging

import (
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"slices"
)

// ErrUnknownFrame is returned for overlay names outside the configured list.
var ErrUnknownFrame = errors.New("unknown frame")

// FrameSet loads decorative overlays from a directory. Only names from the
// configured list are served; the list is meant to grow with the assets.
type FrameSet struct {
	dir   string
	names []string
}

// NewFrameSet creates a frame set rooted at dir.
func NewFrameSet(dir string, names []string) *FrameSet {
	return &FrameSet{dir: dir, names: slices.Clone(names)}
}

// Names returns the available frames in display order.
func (f *FrameSet) Names() []string {
	return slices.Clone(f.names)
}

// Has reports whether name is an available frame.
func (f *FrameSet) Has(name string) bool {
	return slices.Contains(f.names, name)
}

// Path returns the asset path of a known frame.
func (f *FrameSet) Path(name string) (string, error) {
	if !f.Has(name) {
		return "", fmt.Errorf("%w: %q", ErrUnknownFrame, name)
	}
	return filepath.Join(f.dir, name), nil
}

// Load reads and decodes the overlay. It blocks on disk I/O, so the capture
// sequencer calls it off the event loop.
func (f *FrameSet) Load(name string) (image.Image, error) {
	path, err := f.Path(name)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open frame %s: %w", name, err)
	}
	defer file.Close()
	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("decode frame %s: %w", name, err)
	}
	return img, nil
}
