package camera

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	_ "image/png"
	"os"
	"sync"

	"github.com/cjeanneret/BoothGo/internal/debug"
)

// Mock is a synthetic camera for development on PC and for tests.
// It serves a fixed still (when Still is set) or a moving gradient.
type Mock struct {
	Width  int
	Height int
	Still  image.Image
	// OpenErr, when set, makes Open fail (e.g. to simulate a denied permission).
	OpenErr error

	mu   sync.Mutex
	open bool
	seq  uint64
}

// NewMock returns a mock camera producing width x height frames.
func NewMock(width, height int) *Mock {
	return &Mock{Width: width, Height: height}
}

// NewMockFromFile returns a mock camera serving the decoded image at path.
func NewMockFromFile(path string) (*Mock, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open mock image: %w", err)
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode mock image: %w", err)
	}
	b := img.Bounds()
	return &Mock{Width: b.Dx(), Height: b.Dy(), Still: img}, nil
}

func (m *Mock) Open(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if m.OpenErr != nil {
		return m.OpenErr
	}
	m.mu.Lock()
	m.open = true
	m.mu.Unlock()
	debug.Verbose("Camera (mock): opened %dx%d", m.Width, m.Height)
	return nil
}

func (m *Mock) Frame() (image.Image, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.open {
		return nil, ErrNotOpen
	}
	m.seq++
	if m.Still != nil {
		return m.Still, nil
	}
	return gradient(m.Width, m.Height, m.seq), nil
}

func (m *Mock) Latest() ([]byte, uint64, bool) {
	img, err := m.Frame()
	if err != nil {
		return nil, 0, false
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 70}); err != nil {
		return nil, 0, false
	}
	m.mu.Lock()
	seq := m.seq
	m.mu.Unlock()
	return buf.Bytes(), seq, true
}

func (m *Mock) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.open = false
	return nil
}

// IsOpen reports whether the feed is currently acquired.
func (m *Mock) IsOpen() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.open
}

// gradient draws a diagonal test pattern that shifts with seq.
func gradient(w, h int, seq uint64) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	shift := int(seq % 256)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, color.RGBA{
				R: uint8((x*255/max(w, 1) + shift) % 256),
				G: uint8(y * 255 / max(h, 1)),
				B: 160,
				A: 255,
			})
		}
	}
	return img
}
