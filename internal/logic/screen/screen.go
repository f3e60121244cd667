// Package screen tracks which of the booth's full-view screens is shown.
package screen

import (
	"errors"
	"fmt"

	"github.com/cjeanneret/BoothGo/internal/debug"
)

// ErrUnknownScreen is returned by Show for ids outside the known set.
var ErrUnknownScreen = errors.New("unknown screen")

// ID names a screen.
type ID int

const (
	Idle ID = iota
	Setup
	Camera
	Preview
	Gallery
	Operator
	count
)

var names = [count]string{"idle", "setup", "camera", "preview", "gallery", "operator"}

func (id ID) String() string {
	if id < 0 || id >= count {
		return fmt.Sprintf("screen(%d)", int(id))
	}
	return names[id]
}

// Parse maps a screen name back to its ID.
func Parse(s string) (ID, error) {
	for i, n := range names {
		if n == s {
			return ID(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownScreen, s)
}

// Hooks run on transitions. Either may be nil.
type Hooks struct {
	Enter func()
	Leave func()
}

// Controller keeps exactly one screen visible. There is no history: callers
// decide the target of every transition.
type Controller struct {
	visible [count]bool
	current ID
	hooks   [count]Hooks
}

// NewController starts on Idle. Enter hooks are not run for the initial screen.
func NewController() *Controller {
	c := &Controller{current: Idle}
	c.visible[Idle] = true
	return c
}

// On registers the hooks of a screen, replacing earlier ones.
func (c *Controller) On(id ID, h Hooks) {
	if id >= 0 && id < count {
		c.hooks[id] = h
	}
}

// Show hides every screen and reveals id, then runs the leave hook of the
// previous screen and the enter hook of id. Showing the current screen again
// re-runs both hooks.
func (c *Controller) Show(id ID) error {
	if id < 0 || id >= count {
		return fmt.Errorf("%w: %d", ErrUnknownScreen, int(id))
	}
	prev := c.current
	for i := range c.visible {
		c.visible[i] = false
	}
	c.visible[id] = true
	c.current = id
	debug.Verbose("screen: %s -> %s", prev, id)

	if h := c.hooks[prev].Leave; h != nil {
		h()
	}
	if h := c.hooks[id].Enter; h != nil {
		h()
	}
	return nil
}

// Current returns the visible screen.
func (c *Controller) Current() ID { return c.current }

// IsVisible reports whether id is shown.
func (c *Controller) IsVisible(id ID) bool {
	return id >= 0 && id < count && c.visible[id]
}

// Visible lists the shown screens. It always has exactly one element.
func (c *Controller) Visible() []ID {
	var out []ID
	for i, v := range c.visible {
		if v {
			out = append(out, ID(i))
		}
	}
	return out
}
