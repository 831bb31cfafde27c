package fullscreen

import (
	"errors"
	"testing"

	"github.com/rs/zerolog"
)

type fakeDisplay struct {
	supported bool
	enterErr  error
	exitErr   error
	enters    int
	exits     int
	listeners map[int]func(bool)
	nextID    int
}

func newFakeDisplay() *fakeDisplay {
	return &fakeDisplay{supported: true, listeners: map[int]func(bool){}}
}

func (d *fakeDisplay) Supported() bool { return d.supported }

func (d *fakeDisplay) RequestEnter() error {
	d.enters++
	return d.enterErr
}

func (d *fakeDisplay) RequestExit() error {
	d.exits++
	return d.exitErr
}

func (d *fakeDisplay) Subscribe(fn func(bool)) func() {
	id := d.nextID
	d.nextID++
	d.listeners[id] = fn
	return func() { delete(d.listeners, id) }
}

func (d *fakeDisplay) emit(active bool) {
	for _, fn := range d.listeners {
		fn(active)
	}
}

func TestEnterExit(t *testing.T) {
	d := newFakeDisplay()
	c := New(d, zerolog.Nop())
	c.Enter()
	c.Enter()
	if !c.Active() || d.enters != 1 {
		t.Fatalf("expected one enter request, got %d (active=%v)", d.enters, c.Active())
	}
	c.Exit()
	c.Exit()
	if c.Active() || d.exits != 1 {
		t.Fatalf("expected one exit request, got %d (active=%v)", d.exits, c.Active())
	}
}

func TestEnterSoftFailures(t *testing.T) {
	d := newFakeDisplay()
	d.supported = false
	c := New(d, zerolog.Nop())
	c.Enter()
	if c.Active() || d.enters != 0 {
		t.Fatalf("expected unsupported display to stay inactive")
	}

	d = newFakeDisplay()
	d.enterErr = errors.New("denied")
	c = New(d, zerolog.Nop())
	c.Enter()
	if c.Active() {
		t.Fatalf("expected denied request to stay inactive")
	}
}

func TestExternalExitIsObserved(t *testing.T) {
	d := newFakeDisplay()
	c := New(d, zerolog.Nop())
	c.Enter()
	d.emit(false)
	if c.Active() {
		t.Fatalf("expected external exit to be reflected")
	}
	c.Exit()
	if d.exits != 0 {
		t.Fatalf("expected no exit request once already inactive")
	}
}

func TestCloseReleasesListener(t *testing.T) {
	d := newFakeDisplay()
	c := New(d, zerolog.Nop())
	c.Close()
	c.Close()
	if len(d.listeners) != 0 {
		t.Fatalf("expected listener to be released")
	}
}

func TestNilDisplay(t *testing.T) {
	c := New(nil, zerolog.Nop())
	c.Toggle()
	c.Close()
	if c.Active() {
		t.Fatalf("expected nil display to stay inactive")
	}
}
