package button

import (
	"context"
	"fmt"
	"time"

	"github.com/cjeanneret/BoothGo/internal/debug"
	"github.com/cjeanneret/BoothGo/internal/hw/gpio"
)

// Watcher polls a push button wired between a GPIO pin and GND.
// The pin uses the internal pull-up, so a pressed button reads LOW.
type Watcher struct {
	gpio     gpio.Driver
	pin      int
	poll     time.Duration
	debounce int // consecutive LOW samples required to accept a press
}

// NewWatcher configures pin as a pulled-up input.
// poll: if 0, defaults to 20ms.
func NewWatcher(g gpio.Driver, pin int, poll time.Duration) (*Watcher, error) {
	if pin <= 0 {
		return nil, fmt.Errorf("button pin must be > 0, got %d", pin)
	}
	if err := g.SetupPin(pin, gpio.InputPullUp); err != nil {
		return nil, fmt.Errorf("setup button pin %d: %w", pin, err)
	}
	if poll <= 0 {
		poll = 20 * time.Millisecond
	}
	return &Watcher{
		gpio:     g,
		pin:      pin,
		poll:     poll,
		debounce: 2,
	}, nil
}

// Run blocks until ctx is cancelled, calling onPress once per debounced
// press. A held button fires only once; it must be released first.
func (w *Watcher) Run(ctx context.Context, onPress func()) error {
	ticker := time.NewTicker(w.poll)
	defer ticker.Stop()

	lowSamples := 0
	armed := true
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		level, err := w.gpio.ReadPin(w.pin)
		if err != nil {
			return fmt.Errorf("read button pin %d: %w", w.pin, err)
		}

		if level == gpio.High {
			lowSamples = 0
			armed = true
			continue
		}

		lowSamples++
		if armed && lowSamples >= w.debounce {
			armed = false
			debug.Live("Button pressed (pin %d)", w.pin)
			onPress()
		}
	}
}
