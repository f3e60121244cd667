package booth

import (
	"context"
	"fmt"

	"github.com/cjeanneret/BoothGo/internal/debug"
	"github.com/cjeanneret/BoothGo/internal/photo"
	"github.com/cjeanneret/BoothGo/internal/sched"
)

// Runner serializes access to a Booth through its event loop. Its methods
// are safe to call from any goroutine (HTTP handlers, the button watcher).
type Runner struct {
	loop  *sched.Loop
	booth *Booth
}

// NewRunner pairs a booth with the loop it was built on.
func NewRunner(loop *sched.Loop, b *Booth) *Runner {
	return &Runner{loop: loop, booth: b}
}

// Run drives the loop until ctx is cancelled, then releases the booth.
func (r *Runner) Run(ctx context.Context) {
	r.loop.Run(ctx)
	// The loop has stopped, so nothing else touches the booth now.
	if err := r.booth.Close(); err != nil {
		debug.Error(fmt.Errorf("booth: close: %w", err))
	}
}

// Dispatch applies a on the loop and returns the resulting state.
func (r *Runner) Dispatch(ctx context.Context, a Action) (Snapshot, error) {
	var snap Snapshot
	err := r.loop.Call(ctx, func() error {
		if err := r.booth.Handle(ctx, a); err != nil {
			return err
		}
		snap = r.booth.Snapshot()
		return nil
	})
	return snap, err
}

// State returns the current snapshot.
func (r *Runner) State(ctx context.Context) (Snapshot, error) {
	var snap Snapshot
	err := r.loop.Call(ctx, func() error {
		snap = r.booth.Snapshot()
		return nil
	})
	return snap, err
}

// SessionPhotos returns the photos of the running session.
func (r *Runner) SessionPhotos(ctx context.Context) ([]photo.Photo, error) {
	var photos []photo.Photo
	err := r.loop.Call(ctx, func() error {
		photos = r.booth.SessionPhotos()
		return nil
	})
	return photos, err
}
