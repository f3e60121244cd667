package booth

import (
	"context"
	"errors"
	"fmt"

	"github.com/cjeanneret/BoothGo/internal/debug"
	"github.com/cjeanneret/BoothGo/internal/imaging"
	"github.com/cjeanneret/BoothGo/internal/logic/capture"
	"github.com/cjeanneret/BoothGo/internal/logic/screen"
)

var (
	// ErrInvalidAction is returned for an action the current screen does not offer.
	ErrInvalidAction = errors.New("action not available on this screen")
	// ErrUnknownAction is returned for an unrecognized action kind.
	ErrUnknownAction = errors.New("unknown action")
)

// Kind identifies a user action.
type Kind string

const (
	ActTap          Kind = "tap"           // Idle -> Setup
	ActStartSession Kind = "start_session" // Setup -> Camera
	ActSelectFrame  Kind = "select_frame"
	ActToggleMirror Kind = "toggle_mirror"
	ActStartPhoto   Kind = "start_photo"
	ActRetake       Kind = "retake"
	ActDownload     Kind = "download" // commit the session to the gallery
	ActNewSession   Kind = "new_session"
	ActViewGallery  Kind = "view_gallery"
	ActBack         Kind = "back"
	ActKey          Kind = "key"    // global key press
	ActButton       Kind = "button" // physical push button
)

// Action is one user input. Only the fields relevant to Kind are read.
type Action struct {
	Kind       Kind
	PhotoCount int    // ActStartSession
	Filter     string // ActStartSession
	Frame      string // ActSelectFrame; "" clears the overlay
	Key        string // ActKey
}

// Handle applies a to the booth and publishes the resulting state.
func (b *Booth) Handle(ctx context.Context, a Action) error {
	debug.Trace("action: %s on %s", a.Kind, b.screens.Current())
	err := b.handle(ctx, a)
	if err != nil {
		debug.Verbose("action %s rejected: %v", a.Kind, err)
		return err
	}
	b.publishState()
	return nil
}

func (b *Booth) handle(ctx context.Context, a Action) error {
	cur := b.screens.Current()
	switch a.Kind {
	case ActTap:
		if cur != screen.Idle {
			return b.invalid(a)
		}
		b.show(screen.Setup)

	case ActStartSession:
		if cur != screen.Setup {
			return b.invalid(a)
		}
		filter, err := b.allowedFilter(a.Filter)
		if err != nil {
			return err
		}
		if err := b.session.Configure(a.PhotoCount, filter); err != nil {
			return err
		}
		debug.Info("Session: %d photos, filter %s", a.PhotoCount, filter)
		b.show(screen.Camera)

	case ActSelectFrame:
		if cur != screen.Setup && cur != screen.Camera {
			return b.invalid(a)
		}
		if a.Frame != "" && !b.frames.Has(a.Frame) {
			return fmt.Errorf("%w: %q", imaging.ErrUnknownFrame, a.Frame)
		}
		b.session.SelectFrame(a.Frame)

	case ActToggleMirror:
		b.session.ToggleMirror()

	case ActStartPhoto:
		if cur != screen.Camera || !b.seq.StartPhoto() {
			return b.invalid(a)
		}

	case ActRetake:
		if cur != screen.Camera && cur != screen.Preview {
			return b.invalid(a)
		}
		if cur == screen.Preview && b.committed {
			return b.invalid(a)
		}
		if !b.seq.Retake() {
			return b.invalid(a)
		}
		if cur == screen.Preview {
			b.show(screen.Camera)
		}

	case ActDownload:
		if cur != screen.Preview {
			return b.invalid(a)
		}
		if err := b.commit(ctx); err != nil {
			b.alert(fmt.Errorf("saving to gallery failed: %w", err))
			return err
		}

	case ActNewSession:
		// Idle's enter hook resets the session before Setup is shown.
		if cur != screen.Idle {
			b.show(screen.Idle)
		}
		b.show(screen.Setup)

	case ActViewGallery:
		b.show(screen.Gallery)

	case ActBack:
		b.show(screen.Idle)

	case ActKey:
		if a.Key == b.cfg.Kiosk.OperatorKey {
			b.show(screen.Operator)
		}

	case ActButton:
		switch cur {
		case screen.Idle:
			b.show(screen.Setup)
		case screen.Camera:
			b.seq.StartPhoto()
		}

	default:
		return fmt.Errorf("%w: %q", ErrUnknownAction, a.Kind)
	}
	return nil
}

func (b *Booth) invalid(a Action) error {
	state := b.screens.Current().String()
	if b.screens.Current() == screen.Camera || b.screens.Current() == screen.Preview {
		state += "/" + b.seq.State().String()
	}
	return fmt.Errorf("%w: %s on %s", ErrInvalidAction, a.Kind, state)
}

func (b *Booth) allowedFilter(name string) (imaging.Filter, error) {
	f, err := imaging.ParseFilter(name)
	if err != nil {
		return "", err
	}
	for _, allowed := range b.filters {
		if allowed == f {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q is disabled", imaging.ErrUnknownFilter, name)
}

// canRetake reports whether a retake affordance should be shown.
func (b *Booth) canRetake() bool {
	switch b.seq.State() {
	case capture.AwaitingRetake:
		return true
	case capture.Complete:
		return !b.committed
	}
	return false
}
