package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/mockexam/internal/fullscreen"
)

// AltScreen is the terminal's immersive mode: the alternate screen buffer.
// Requests are queued as commands and flushed after each update.
type AltScreen struct {
	supported bool
	active    bool
	pending   []tea.Cmd
	listeners map[int]func(bool)
	nextID    int
}

// NewAltScreen returns a display. supported should reflect whether stdout
// is a terminal.
func NewAltScreen(supported bool) *AltScreen {
	return &AltScreen{
		supported: supported,
		listeners: map[int]func(bool){},
	}
}

// Supported implements fullscreen.Display.
func (a *AltScreen) Supported() bool {
	return a.supported
}

// RequestEnter implements fullscreen.Display.
func (a *AltScreen) RequestEnter() error {
	if !a.supported {
		return fullscreen.ErrUnsupported
	}
	a.pending = append(a.pending, tea.EnterAltScreen)
	a.set(true)
	return nil
}

// RequestExit implements fullscreen.Display.
func (a *AltScreen) RequestExit() error {
	if !a.supported {
		return fullscreen.ErrUnsupported
	}
	a.pending = append(a.pending, tea.ExitAltScreen)
	a.set(false)
	return nil
}

// Subscribe implements fullscreen.Display.
func (a *AltScreen) Subscribe(fn func(bool)) func() {
	id := a.nextID
	a.nextID++
	a.listeners[id] = fn
	return func() {
		delete(a.listeners, id)
	}
}

// Release leaves the alternate screen on the user's own gesture. Listeners
// learn about it like any other change.
func (a *AltScreen) Release() {
	if !a.active {
		return
	}
	a.pending = append(a.pending, tea.ExitAltScreen)
	a.set(false)
}

// Active reports whether the alternate screen is shown.
func (a *AltScreen) Active() bool {
	return a.active
}

// Listeners reports how many subscribers remain.
func (a *AltScreen) Listeners() int {
	return len(a.listeners)
}

// Flush returns the queued screen commands.
func (a *AltScreen) Flush() tea.Cmd {
	if len(a.pending) == 0 {
		return nil
	}
	cmds := a.pending
	a.pending = nil
	return tea.Sequence(cmds...)
}

func (a *AltScreen) set(active bool) {
	a.active = active
	for _, fn := range a.listeners {
		fn(active)
	}
}
