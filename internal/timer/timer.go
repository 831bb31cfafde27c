// Package timer implements the exam countdown clocks.
package timer

import "fmt"

// Placeholder is shown for a clock with no configured limit.
const Placeholder = "--:--"

// Engine tracks the overall countdown and one countdown per timed section.
// A single Tick drives both clocks, so only the active section can decrement.
type Engine struct {
	overall  int
	sections map[string]int
	active   string
	running  bool
	fired    bool

	onTimeUp         func()
	onSectionExpired func(section string)
}

// New builds an engine. Sections without a positive duration get no countdown.
func New(durationMinutes int, sections []string, sectionMinutes map[string]int, onTimeUp func()) *Engine {
	e := &Engine{
		sections: map[string]int{},
		onTimeUp: onTimeUp,
	}
	if durationMinutes > 0 {
		e.overall = durationMinutes * 60
	}
	for _, name := range sections {
		if mins, ok := sectionMinutes[name]; ok && mins > 0 {
			e.sections[name] = mins * 60
		}
	}
	return e
}

// OnSectionExpired registers a callback fired once when a section clock hits zero.
func (e *Engine) OnSectionExpired(fn func(section string)) {
	e.onSectionExpired = fn
}

// SetSectionSeconds overrides a section countdown in seconds. Values <= 0 remove it.
func (e *Engine) SetSectionSeconds(section string, seconds int) {
	if seconds <= 0 {
		delete(e.sections, section)
		return
	}
	e.sections[section] = seconds
}

// Start begins counting down.
func (e *Engine) Start() {
	if e.fired {
		return
	}
	e.running = true
}

// Stop halts both clocks. Calling it more than once is harmless.
func (e *Engine) Stop() {
	e.running = false
}

// Running reports whether the engine is counting.
func (e *Engine) Running() bool {
	return e.running
}

// SetActiveSection switches which section clock ticks. Stored values are kept.
func (e *Engine) SetActiveSection(section string) {
	e.active = section
}

// ActiveSection returns the section whose clock ticks.
func (e *Engine) ActiveSection() string {
	return e.active
}

// Tick advances the clocks by one second.
func (e *Engine) Tick() {
	if !e.running {
		return
	}
	if left, ok := e.sections[e.active]; ok && left > 0 {
		left--
		e.sections[e.active] = left
		if left == 0 && e.onSectionExpired != nil {
			e.onSectionExpired(e.active)
		}
	}
	if e.overall <= 1 {
		e.overall = 0
		e.running = false
		if !e.fired {
			e.fired = true
			if e.onTimeUp != nil {
				e.onTimeUp()
			}
		}
		return
	}
	e.overall--
}

// Remaining returns the overall seconds left.
func (e *Engine) Remaining() int {
	return e.overall
}

// SectionRemaining returns the seconds left for a section; ok is false when
// the section has no countdown.
func (e *Engine) SectionRemaining(section string) (int, bool) {
	left, ok := e.sections[section]
	return left, ok
}

// ActiveRemaining returns the active section's seconds left.
func (e *Engine) ActiveRemaining() (int, bool) {
	return e.SectionRemaining(e.active)
}

// SectionSnapshot copies the per-section countdowns.
func (e *Engine) SectionSnapshot() map[string]int {
	out := make(map[string]int, len(e.sections))
	for k, v := range e.sections {
		out[k] = v
	}
	return out
}

// FormatClock renders seconds as MM:SS, or the placeholder when ok is false.
func FormatClock(seconds int, ok bool) string {
	if !ok {
		return Placeholder
	}
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}
