// Package session holds the state of one booth run, from setup to commit.
package session

import (
	"errors"
	"fmt"
	"slices"

	"github.com/cjeanneret/BoothGo/internal/imaging"
	"github.com/cjeanneret/BoothGo/internal/photo"
)

var (
	// ErrInvalidPhotoCount is returned by Configure for a count outside [1, max].
	ErrInvalidPhotoCount = errors.New("invalid photo count")
	// ErrCaptureStarted is returned by Configure once photos exist.
	ErrCaptureStarted = errors.New("capture already started")
)

// Config is what the setup screen chose.
type Config struct {
	TargetPhotoCount int
	Filter           imaging.Filter
	FrameID          string // "" means no overlay
	Mirror           bool   // live preview only
}

// State owns the session config and captured photos. It is only touched from
// the event loop and carries no lock.
type State struct {
	maxPhotos int
	cfg       Config
	photos    []photo.Photo
}

// New returns a reset session accepting up to maxPhotos per run.
func New(maxPhotos int) *State {
	s := &State{maxPhotos: maxPhotos}
	s.Reset()
	return s
}

// Configure sets the target count and filter before the first capture.
func (s *State) Configure(count int, filter imaging.Filter) error {
	if len(s.photos) > 0 {
		return ErrCaptureStarted
	}
	if count < 1 || count > s.maxPhotos {
		return fmt.Errorf("%w: %d (allowed 1-%d)", ErrInvalidPhotoCount, count, s.maxPhotos)
	}
	if _, err := imaging.ParseFilter(string(filter)); err != nil {
		return err
	}
	if filter == "" {
		filter = imaging.FilterNone
	}
	s.cfg.TargetPhotoCount = count
	s.cfg.Filter = filter
	return nil
}

// SelectFrame replaces the chosen overlay. Selections never combine.
func (s *State) SelectFrame(id string) {
	s.cfg.FrameID = id
}

// ToggleMirror flips the live preview mirror and returns the new value.
// Captured photos are never mirrored.
func (s *State) ToggleMirror() bool {
	s.cfg.Mirror = !s.cfg.Mirror
	return s.cfg.Mirror
}

// Reset drops photos, frame and filter and turns the mirror back on.
func (s *State) Reset() {
	s.photos = nil
	s.cfg = Config{Filter: imaging.FilterNone, Mirror: true}
}

// Append adds a finished photo. It refuses once the target is reached.
func (s *State) Append(p photo.Photo) bool {
	if s.Full() {
		return false
	}
	s.photos = append(s.photos, p)
	return true
}

// RemoveLast drops the most recent photo. It reports false when empty.
func (s *State) RemoveLast() bool {
	if len(s.photos) == 0 {
		return false
	}
	s.photos = s.photos[:len(s.photos)-1]
	return true
}

// Config returns a copy of the current settings.
func (s *State) Config() Config { return s.cfg }

// Photos returns a copy of the captured photos in capture order.
func (s *State) Photos() []photo.Photo { return slices.Clone(s.photos) }

// Count is the number of captured photos.
func (s *State) Count() int { return len(s.photos) }

// Target is the configured photo count (0 before Configure).
func (s *State) Target() int { return s.cfg.TargetPhotoCount }

// Full reports whether the target has been reached.
func (s *State) Full() bool { return len(s.photos) >= s.cfg.TargetPhotoCount }
