// Package fullscreen keeps immersive display state in sync with the screen.
package fullscreen

import (
	"errors"

	"github.com/rs/zerolog"
)

// ErrUnsupported is returned by a Display that cannot go immersive.
var ErrUnsupported = errors.New("immersive mode not supported")

// Display is the platform side of immersive mode.
type Display interface {
	Supported() bool
	RequestEnter() error
	RequestExit() error
	// Subscribe registers fn for every mode change, including ones the
	// controller did not request. The returned func removes it.
	Subscribe(fn func(active bool)) (unsubscribe func())
}

// Controller tracks whether the display is immersive. Failures are soft.
type Controller struct {
	display     Display
	log         zerolog.Logger
	active      bool
	unsubscribe func()
}

// New wires a controller to display and starts listening for changes.
func New(display Display, log zerolog.Logger) *Controller {
	c := &Controller{
		display: display,
		log:     log.With().Str("component", "fullscreen").Logger(),
	}
	if display != nil {
		c.unsubscribe = display.Subscribe(c.handleChange)
	}
	return c
}

func (c *Controller) handleChange(active bool) {
	if c.active != active {
		c.log.Debug().Bool("active", active).Msg("display mode changed")
	}
	c.active = active
}

// Enter requests immersive mode.
func (c *Controller) Enter() {
	if c.active || c.display == nil {
		return
	}
	if !c.display.Supported() {
		c.log.Warn().Err(ErrUnsupported).Msg("cannot enter immersive mode")
		c.active = false
		return
	}
	if err := c.display.RequestEnter(); err != nil {
		c.log.Warn().Err(err).Msg("cannot enter immersive mode")
		c.active = false
		return
	}
	c.active = true
}

// Exit leaves immersive mode.
func (c *Controller) Exit() {
	if !c.active || c.display == nil {
		return
	}
	if err := c.display.RequestExit(); err != nil {
		// The change notification corrects state if the exit happened anyway.
		c.log.Warn().Err(err).Msg("cannot exit immersive mode")
		return
	}
	c.active = false
}

// Toggle flips immersive mode.
func (c *Controller) Toggle() {
	if c.active {
		c.Exit()
		return
	}
	c.Enter()
}

// Active reports the current mode.
func (c *Controller) Active() bool {
	return c.active
}

// Close releases the change listener.
func (c *Controller) Close() {
	if c.unsubscribe != nil {
		c.unsubscribe()
		c.unsubscribe = nil
	}
}
