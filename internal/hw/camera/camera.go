package camera

import (
	"context"
	"errors"
	"image"
)

// ErrNotOpen is returned when a frame is requested before Open succeeded.
var ErrNotOpen = errors.New("camera: feed not open")

// Camera is the live feed used by the booth, regardless of how it is
// acquired (Raspberry Pi camera module, synthetic test pattern, ...).
type Camera interface {
	// Open acquires the feed. It blocks until the first frame is available,
	// the acquisition fails, or ctx is cancelled.
	Open(ctx context.Context) error

	// Frame returns the current live frame at the feed's native resolution.
	Frame() (image.Image, error)

	// Latest returns the most recent JPEG-encoded preview frame and its
	// sequence number; ok is false while the feed is closed.
	Latest() (jpeg []byte, seq uint64, ok bool)

	// Close releases the feed. Closing a closed camera is a no-op.
	Close() error
}
