package tui

import (
	"errors"
	"testing"

	"github.com/verte-zerg/mockexam/internal/fullscreen"
)

func TestAltScreenQueuesCommands(t *testing.T) {
	a := NewAltScreen(true)
	var seen []bool
	unsubscribe := a.Subscribe(func(active bool) { seen = append(seen, active) })

	if err := a.RequestEnter(); err != nil {
		t.Fatalf("enter: %v", err)
	}
	if !a.Active() {
		t.Fatalf("expected active after enter")
	}
	if a.Flush() == nil {
		t.Fatalf("expected queued command")
	}
	if a.Flush() != nil {
		t.Fatalf("expected queue to be drained")
	}

	a.Release()
	if a.Active() || len(seen) != 2 || seen[1] {
		t.Fatalf("expected release to notify inactive, got %v", seen)
	}
	a.Release()
	if len(seen) != 2 {
		t.Fatalf("expected release to be a no-op when inactive")
	}

	unsubscribe()
	if a.Listeners() != 0 {
		t.Fatalf("expected listener removed")
	}
}

func TestAltScreenUnsupported(t *testing.T) {
	a := NewAltScreen(false)
	if a.Supported() {
		t.Fatalf("expected unsupported")
	}
	if err := a.RequestEnter(); !errors.Is(err, fullscreen.ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}
	if a.Flush() != nil {
		t.Fatalf("expected nothing queued")
	}
}
