// Package booth wires the screens, the session, the capture sequencer and the
// gallery into one application driven by user actions.
//
// A Booth is not safe for concurrent use: every method, hook and callback runs
// on the scheduler's loop. Runner is the goroutine-safe entry point.
package booth

import (
	"context"
	"errors"
	"fmt"

	"github.com/cjeanneret/BoothGo/internal/config"
	"github.com/cjeanneret/BoothGo/internal/debug"
	"github.com/cjeanneret/BoothGo/internal/gallery"
	"github.com/cjeanneret/BoothGo/internal/hw/camera"
	"github.com/cjeanneret/BoothGo/internal/hw/flash"
	"github.com/cjeanneret/BoothGo/internal/imaging"
	"github.com/cjeanneret/BoothGo/internal/logic/capture"
	"github.com/cjeanneret/BoothGo/internal/logic/screen"
	"github.com/cjeanneret/BoothGo/internal/logic/session"
	"github.com/cjeanneret/BoothGo/internal/photo"
	"github.com/cjeanneret/BoothGo/internal/sched"
)

// Publisher receives UI events (state snapshots, countdown ticks, cues).
type Publisher interface {
	Publish(kind string, data any)
}

// Event kinds sent to the Publisher.
const (
	EventState   = "state"
	EventTick    = "tick"
	EventShutter = "shutter"
	EventFlash   = "flash"
	EventAlert   = "alert"
)

type nopPublisher struct{}

func (nopPublisher) Publish(string, any) {}

// Deps are the collaborators of a Booth. Lamp and Publisher may be nil.
type Deps struct {
	Config    *config.Config
	Scheduler sched.Scheduler
	Camera    camera.Camera
	Frames    *imaging.FrameSet
	Gallery   *gallery.Store
	Lamp      flash.Lamp
	Publisher Publisher
}

// Booth is the application state: one visible screen, one session.
type Booth struct {
	cfg     *config.Config
	sched   sched.Scheduler
	cam     camera.Camera
	frames  *imaging.FrameSet
	gallery *gallery.Store
	lamp    flash.Lamp
	pub     Publisher
	filters []imaging.Filter

	screens *screen.Controller
	session *session.State
	seq     *capture.Sequence

	ctx    context.Context
	cancel context.CancelFunc

	live       bool
	acqGen     uint64
	cancelAcq  context.CancelFunc
	previewDue sched.Task
	flashOff   sched.Task
	flashing   bool
	notice     string
	committed  bool
}

// New builds a Booth on the Idle screen.
func New(d Deps) (*Booth, error) {
	if d.Config == nil || d.Scheduler == nil || d.Camera == nil || d.Gallery == nil {
		return nil, errors.New("booth: config, scheduler, camera and gallery are required")
	}
	if d.Frames == nil {
		d.Frames = imaging.NewFrameSet(d.Config.Frames.Dir, d.Config.Frames.Names)
	}
	if d.Lamp == nil {
		d.Lamp = flash.NoLamp{}
	}
	if d.Publisher == nil {
		d.Publisher = nopPublisher{}
	}

	filters := make([]imaging.Filter, 0, len(d.Config.Session.Filters))
	for _, name := range d.Config.Session.Filters {
		f, err := imaging.ParseFilter(name)
		if err != nil {
			return nil, fmt.Errorf("booth: session.filters: %w", err)
		}
		filters = append(filters, f)
	}

	ctx, cancel := context.WithCancel(context.Background())
	b := &Booth{
		cfg:     d.Config,
		sched:   d.Scheduler,
		cam:     d.Camera,
		frames:  d.Frames,
		gallery: d.Gallery,
		lamp:    d.Lamp,
		pub:     d.Publisher,
		filters: filters,
		screens: screen.NewController(),
		session: session.New(d.Config.Session.MaxPhotoCount),
		ctx:     ctx,
		cancel:  cancel,
	}
	b.seq = capture.NewSequence(d.Scheduler, b.session, d.Camera, d.Frames, b, capture.Params{
		Countdown: d.Config.Session.CountdownSeconds,
		Tick:      d.Config.Tick(),
	})

	b.screens.On(screen.Idle, screen.Hooks{Enter: b.enterIdle})
	b.screens.On(screen.Camera, screen.Hooks{Enter: b.enterCamera, Leave: b.leaveCamera})
	b.screens.On(screen.Preview, screen.Hooks{Enter: b.enterPreview, Leave: b.leavePreview})
	b.screens.On(screen.Gallery, screen.Hooks{Enter: b.enterGallery})
	b.screens.On(screen.Operator, screen.Hooks{Enter: b.enterOperator})
	return b, nil
}

// Close releases the camera and the lamp.
func (b *Booth) Close() error {
	b.cancel()
	b.seq.Cancel()
	b.stopTask(&b.previewDue)
	b.stopTask(&b.flashOff)
	_ = b.lamp.Off()
	return b.cam.Close()
}

// Screen returns the visible screen.
func (b *Booth) Screen() screen.ID { return b.screens.Current() }

// Session exposes the session state (read-only use).
func (b *Booth) Session() *session.State { return b.session }

// Sequence exposes the capture sequencer (read-only use).
func (b *Booth) Sequence() *capture.Sequence { return b.seq }

func (b *Booth) show(id screen.ID) {
	if err := b.screens.Show(id); err != nil {
		debug.Error(err)
		return
	}
	b.publishState()
}

func (b *Booth) stopTask(t *sched.Task) {
	if *t != nil {
		(*t).Stop()
		*t = nil
	}
}

func (b *Booth) publishState() {
	b.pub.Publish(EventState, b.Snapshot())
}

// ---------- Screen hooks ----------

func (b *Booth) enterIdle() {
	b.seq.Reset()
	b.session.Reset()
	b.committed = false
	b.notice = ""
	debug.Live("Idle: waiting for a guest")
}

// enterCamera acquires the feed off the loop. Only one acquisition is
// pending at a time; leaving the screen cancels it.
func (b *Booth) enterCamera() {
	if b.cancelAcq != nil {
		b.cancelAcq()
	}
	ctx, cancel := context.WithCancel(b.ctx)
	b.cancelAcq = cancel
	b.acqGen++
	gen := b.acqGen
	b.notice = ""

	var err error
	b.sched.Go(func() {
		err = b.cam.Open(ctx)
	}, func() {
		cancel()
		if gen != b.acqGen || b.screens.Current() != screen.Camera {
			if err == nil {
				_ = b.cam.Close()
			}
			debug.Trace("camera: stale acquisition dropped")
			return
		}
		b.cancelAcq = nil
		if err != nil {
			b.alert(fmt.Errorf("camera unavailable: %w", err))
			return
		}
		b.live = true
		debug.Live("Camera: live feed acquired")
		b.publishState()
	})
}

func (b *Booth) leaveCamera() {
	b.seq.Cancel()
	if b.cancelAcq != nil {
		b.cancelAcq()
		b.cancelAcq = nil
	}
	b.acqGen++
	if b.live {
		b.live = false
		if err := b.cam.Close(); err != nil {
			debug.Error(fmt.Errorf("camera: release: %w", err))
		}
	}
}

func (b *Booth) enterPreview() {
	debug.Summary("Session complete")
	debug.Value("photos", b.session.Count())
	b.stopTask(&b.previewDue)
	b.previewDue = b.sched.AfterFunc(b.cfg.PreviewTimeout(), func() {
		b.previewDue = nil
		if b.screens.Current() == screen.Preview {
			debug.Verbose("Preview: timeout, back to idle")
			b.show(screen.Idle)
		}
	})
}

func (b *Booth) leavePreview() {
	b.stopTask(&b.previewDue)
}

func (b *Booth) enterGallery() {
	debug.Verbose("Gallery: %d photos", b.gallery.Len())
}

func (b *Booth) enterOperator() {
	debug.Info("Operator mode entered")
}

func (b *Booth) alert(err error) {
	debug.Error(err)
	b.notice = err.Error()
	b.pub.Publish(EventAlert, b.notice)
	b.publishState()
}

// ---------- capture.Events ----------

func (b *Booth) Tick(remaining int) {
	b.pub.Publish(EventTick, remaining)
}

func (b *Booth) Shutter() {
	b.pub.Publish(EventShutter, nil)
}

// Flash lights the lamp and the on-screen flash; a scheduled task turns both
// off. Nothing waits for it.
func (b *Booth) Flash() {
	b.stopTask(&b.flashOff)
	b.flashing = true
	if err := b.lamp.On(); err != nil {
		debug.Error(fmt.Errorf("flash: %w", err))
	}
	b.pub.Publish(EventFlash, true)
	b.flashOff = b.sched.AfterFunc(b.cfg.FlashDuration(), func() {
		b.flashOff = nil
		b.flashing = false
		if err := b.lamp.Off(); err != nil {
			debug.Error(fmt.Errorf("flash: %w", err))
		}
		b.pub.Publish(EventFlash, false)
	})
}

func (b *Booth) Captured(count, target int) {
	b.publishState()
}

func (b *Booth) Failed(err error) {
	b.alert(err)
}

func (b *Booth) Completed() {
	b.show(screen.Preview)
}

// SessionPhotos returns the photos of the current session.
func (b *Booth) SessionPhotos() []photo.Photo {
	return b.session.Photos()
}

// commit stores the session in the gallery, at most once per session.
func (b *Booth) commit(ctx context.Context) error {
	if b.committed {
		return nil
	}
	if err := b.gallery.Commit(ctx, b.session.Photos()); err != nil {
		return err
	}
	b.committed = true
	return nil
}

var _ capture.Events = (*Booth)(nil)
