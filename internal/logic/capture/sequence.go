package capture

import (
	"fmt"
	"image"
	"time"

	"github.com/cjeanneret/BoothGo/internal/debug"
	"github.com/cjeanneret/BoothGo/internal/imaging"
	"github.com/cjeanneret/BoothGo/internal/logic/session"
	"github.com/cjeanneret/BoothGo/internal/photo"
	"github.com/cjeanneret/BoothGo/internal/sched"
)

// State is the sequencer position.
type State int

const (
	Ready          State = iota // no countdown, no photo yet
	Counting                    // countdown running
	Capturing                   // frame grabbed, waiting for the overlay
	AwaitingRetake              // photos < target, retake allowed
	Complete                    // photos == target
)

func (s State) String() string {
	switch s {
	case Ready:
		return "ready"
	case Counting:
		return "counting"
	case Capturing:
		return "capturing"
	case AwaitingRetake:
		return "awaiting_retake"
	case Complete:
		return "complete"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// FrameSource yields the current live frame.
type FrameSource interface {
	Frame() (image.Image, error)
}

// OverlayLoader decodes a decorative frame by name. It may block.
type OverlayLoader interface {
	Load(name string) (image.Image, error)
}

// Events receives everything the sequencer wants surfaced. All methods are
// called on the event loop.
type Events interface {
	Tick(remaining int)
	// Shutter and Flash are fire-and-forget: the photo may be finalized
	// before or after whatever they trigger has finished.
	Shutter()
	Flash()
	Captured(count, target int)
	Failed(err error)
	Completed()
}

// Params tunes the countdown.
type Params struct {
	Countdown int           // seconds shown before the shot (default 3)
	Tick      time.Duration // countdown step (default 1s)
}

// Sequence drives countdown, capture and finalization of session photos.
// Every method must be called on the scheduler's loop.
type Sequence struct {
	sched    sched.Scheduler
	session  *session.State
	source   FrameSource
	overlays OverlayLoader
	events   Events
	surface  *imaging.Surface
	params   Params

	// Now stamps finished photos.
	Now func() time.Time

	state     State
	remaining int
	tick      sched.Task
	gen       uint64 // bumped on cancel; stale overlay loads compare against it
}

// NewSequence wires a sequencer. overlays may be nil when no frames exist.
func NewSequence(s sched.Scheduler, st *session.State, src FrameSource, overlays OverlayLoader, ev Events, p Params) *Sequence {
	if p.Countdown <= 0 {
		p.Countdown = 3
	}
	if p.Tick <= 0 {
		p.Tick = time.Second
	}
	return &Sequence{
		sched:    s,
		session:  st,
		source:   src,
		overlays: overlays,
		events:   ev,
		surface:  imaging.NewSurface(),
		params:   p,
		Now:      time.Now,
		state:    Ready,
	}
}

// State returns the current state.
func (s *Sequence) State() State { return s.state }

// Remaining returns the countdown value while Counting, else 0.
func (s *Sequence) Remaining() int {
	if s.state != Counting {
		return 0
	}
	return s.remaining
}

// StartPhoto begins a countdown. It reports false, doing nothing, when the
// target is already reached or a countdown or capture is in progress.
func (s *Sequence) StartPhoto() bool {
	if s.state == Counting || s.state == Capturing {
		debug.Verbose("capture: start ignored, %s", s.state)
		return false
	}
	if s.session.Full() {
		debug.Verbose("capture: start ignored, %d/%d photos", s.session.Count(), s.session.Target())
		return false
	}

	s.state = Counting
	s.remaining = s.params.Countdown
	debug.Countdown(s.remaining)
	s.events.Tick(s.remaining)
	s.scheduleTick()
	return true
}

// Each tick schedules the next one; stopping the pending task ends the chain.
func (s *Sequence) scheduleTick() {
	s.tick = s.sched.AfterFunc(s.params.Tick, s.onTick)
}

func (s *Sequence) onTick() {
	s.tick = nil
	if s.state != Counting {
		return
	}
	s.remaining--
	if s.remaining > 0 {
		debug.Countdown(s.remaining)
		s.events.Tick(s.remaining)
		s.scheduleTick()
		return
	}
	s.capture()
}

func (s *Sequence) capture() {
	s.state = Capturing
	s.remaining = 0

	frame, err := s.source.Frame()
	if err != nil {
		debug.Error(fmt.Errorf("capture: grab frame: %w", err))
		s.state = s.restingState()
		s.events.Failed(fmt.Errorf("camera frame unavailable: %w", err))
		return
	}

	cfg := s.session.Config()
	b := frame.Bounds()
	s.surface.Resize(b.Dx(), b.Dy())
	s.surface.Filter = cfg.Filter
	s.surface.DrawImage(frame)
	debug.Trace("capture: frame %dx%d filter=%s", b.Dx(), b.Dy(), cfg.Filter)

	s.events.Shutter()
	s.events.Flash()

	if cfg.FrameID == "" || s.overlays == nil {
		s.finalize()
		return
	}

	// The overlay choice is fixed now; later SelectFrame calls affect the
	// next photo only.
	name := cfg.FrameID
	gen := s.gen
	var overlay image.Image
	var loadErr error
	s.sched.Go(func() {
		overlay, loadErr = s.overlays.Load(name)
	}, func() {
		if gen != s.gen || s.state != Capturing {
			debug.Trace("capture: dropping stale overlay %s", name)
			return
		}
		if loadErr != nil {
			debug.Error(fmt.Errorf("capture: overlay %s, finalizing without it: %w", name, loadErr))
		} else {
			s.surface.DrawScaled(overlay)
		}
		s.finalize()
	})
}

func (s *Sequence) finalize() {
	data, err := s.surface.EncodePNG()
	if err != nil {
		s.state = s.restingState()
		s.events.Failed(err)
		return
	}
	s.session.Append(photo.New(data, s.Now()))

	count, target := s.session.Count(), s.session.Target()
	debug.Shot(count, target)
	s.events.Captured(count, target)
	if s.session.Full() {
		s.state = Complete
		s.events.Completed()
		return
	}
	s.state = AwaitingRetake
}

// Retake drops the last photo. Allowed while awaiting a retake decision and
// after completion; repeated retakes are unbounded.
func (s *Sequence) Retake() bool {
	if s.state != AwaitingRetake && s.state != Complete {
		return false
	}
	if !s.session.RemoveLast() {
		return false
	}
	s.state = s.restingState()
	debug.Verbose("capture: retake, %d/%d photos", s.session.Count(), s.session.Target())
	return true
}

// Cancel stops a running countdown and discards an in-flight capture.
func (s *Sequence) Cancel() {
	if s.tick != nil {
		s.tick.Stop()
		s.tick = nil
	}
	s.gen++
	if s.state == Counting || s.state == Capturing {
		debug.Verbose("capture: cancelled while %s", s.state)
		s.state = s.restingState()
	}
	s.remaining = 0
}

// Reset cancels everything and returns to Ready. Used with session.Reset.
func (s *Sequence) Reset() {
	s.Cancel()
	s.state = Ready
}

func (s *Sequence) restingState() State {
	switch {
	case s.session.Count() == 0:
		return Ready
	case s.session.Full():
		return Complete
	default:
		return AwaitingRetake
	}
}
