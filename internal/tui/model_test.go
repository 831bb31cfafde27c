package tui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/verte-zerg/mockexam/internal/model"
	"github.com/verte-zerg/mockexam/internal/session"
)

type stubSaver struct {
	errs  []error
	calls int
}

func (s *stubSaver) SaveAttempt(context.Context, model.AttemptResult) (string, error) {
	s.calls++
	if len(s.errs) > 0 {
		err := s.errs[0]
		s.errs = s.errs[1:]
		if err != nil {
			return "", err
		}
	}
	return "attempt-1", nil
}

func newTestModel(t *testing.T, minutes int, saver *stubSaver) (*Model, *AltScreen) {
	t.Helper()
	opts := []model.Option{{ID: "a", Text: "Alpha"}, {ID: "b", Text: "Beta", SecondaryText: "बीटा"}}
	questions := make([]model.Question, 0, 5)
	for _, id := range []string{"1", "2", "3", "4", "5"} {
		questions = append(questions, model.Question{ID: id, Section: "A", Prompt: "Question " + id, Options: opts, CorrectOption: "a"})
	}
	exam := model.ExamDefinition{
		ID:               "mock",
		Name:             "Mock Exam",
		DurationMinutes:  minutes,
		Sections:         []string{"A"},
		MarksPerQuestion: 1,
		TotalQuestions:   5,
	}
	display := NewAltScreen(true)
	sess, err := session.New(exam, questions, session.Options{
		Saver:   saver,
		Display: display,
		Logger:  zerolog.Nop(),
	})
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	return NewModel(context.Background(), sess, display, zerolog.Nop()), display
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestInitEntersAltScreenAndTicks(t *testing.T) {
	m, display := newTestModel(t, 60, &stubSaver{})
	if !display.Active() {
		t.Fatalf("expected alt screen requested at start")
	}
	if m.Init() == nil {
		t.Fatalf("expected init command")
	}
}

func TestSubmitFlowSavesAndQuits(t *testing.T) {
	saver := &stubSaver{}
	m, display := newTestModel(t, 60, saver)

	m.Update(runes("1"))
	m.Update(runes("s"))
	if !m.sess.ConfirmOpen() {
		t.Fatalf("expected confirmation dialog")
	}
	if display.Active() {
		t.Fatalf("expected alt screen left for confirmation")
	}
	if !strings.Contains(m.View(), "Submit test?") {
		t.Fatalf("expected confirmation in view")
	}

	cmd := m.handleKey(runes("y"))
	if cmd == nil {
		t.Fatalf("expected save command")
	}
	if !strings.Contains(m.View(), "Saving") {
		t.Fatalf("expected saving dialog")
	}
	msg := cmd()
	saved, ok := msg.(savedMsg)
	if !ok {
		t.Fatalf("expected savedMsg, got %T", msg)
	}
	_, quit := m.Update(saved)
	if quit == nil {
		t.Fatalf("expected quit command")
	}
	if m.AttemptID() != "attempt-1" || saver.calls != 1 {
		t.Fatalf("expected one save, got id %q calls %d", m.AttemptID(), saver.calls)
	}
	if display.Listeners() != 0 {
		t.Fatalf("expected display listener released")
	}
}

func TestSaveFailureRestartsClockWithNewGeneration(t *testing.T) {
	saver := &stubSaver{errs: []error{errors.New("disk full")}}
	m, _ := newTestModel(t, 60, saver)

	m.Update(runes("s"))
	cmd := m.handleKey(runes("y"))
	m.Update(cmd())
	if m.sess.Phase() != model.PhaseInProgress {
		t.Fatalf("expected in-progress after failure, got %s", m.sess.Phase())
	}
	if !strings.Contains(m.View(), "disk full") {
		t.Fatalf("expected error dialog")
	}

	before := m.sess.RemainingSeconds()
	m.Update(tickMsg{gen: 0})
	if m.sess.RemainingSeconds() != before {
		t.Fatalf("expected stale tick to be dropped")
	}
	m.Update(tickMsg{gen: 1})
	if m.sess.RemainingSeconds() != before-1 {
		t.Fatalf("expected current tick to count down")
	}

	cmd = m.handleKey(runes("r"))
	if cmd == nil {
		t.Fatalf("expected retry to save")
	}
	m.Update(cmd())
	if m.AttemptID() != "attempt-1" || saver.calls != 2 {
		t.Fatalf("expected retry to succeed, got %q after %d calls", m.AttemptID(), saver.calls)
	}
}

func TestTimeUpShowsNoticeAndSubmits(t *testing.T) {
	m, display := newTestModel(t, 1, &stubSaver{})
	for i := 0; i < 60; i++ {
		m.Update(tickMsg{gen: 0})
	}
	if m.sess.Phase() != model.PhaseTimeUp {
		t.Fatalf("expected time-up, got %s", m.sess.Phase())
	}
	if display.Active() {
		t.Fatalf("expected alt screen left on time-up")
	}
	if !strings.Contains(m.View(), "Time's up!") {
		t.Fatalf("expected time-up dialog")
	}
	m.Update(runes("1"))
	if _, ok := m.sess.Selected("1"); ok {
		t.Fatalf("expected answers frozen after time-up")
	}
	cmd := m.handleKey(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatalf("expected submit on enter")
	}
}

func TestJumpAndMarkOnLastQuestion(t *testing.T) {
	m, _ := newTestModel(t, 60, &stubSaver{})
	m.Update(runes("g"))
	m.Update(runes("5"))
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.sess.CurrentIndex() != 4 {
		t.Fatalf("expected jump to last question, got %d", m.sess.CurrentIndex())
	}
	m.Update(runes("M"))
	if m.sess.Status("5") != model.StatusMarked {
		t.Fatalf("expected last question marked")
	}
	if !strings.Contains(m.renderFooter(), lastQuestionNotice) {
		t.Fatalf("expected last question notice in footer")
	}
	m.Update(runes("p"))
	if strings.Contains(m.renderFooter(), lastQuestionNotice) {
		t.Fatalf("expected notice cleared on next action")
	}
}

func TestEscReleasesFullscreen(t *testing.T) {
	m, display := newTestModel(t, 60, &stubSaver{})
	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if display.Active() || m.sess.Fullscreen() {
		t.Fatalf("expected fullscreen released")
	}
	m.Update(runes("f"))
	if !m.sess.Fullscreen() {
		t.Fatalf("expected fullscreen re-entered")
	}
}

func TestLocaleToggleChangesOptionText(t *testing.T) {
	m, _ := newTestModel(t, 60, &stubSaver{})
	m.Update(runes("L"))
	if !strings.Contains(m.View(), "बीटा") {
		t.Fatalf("expected secondary option text")
	}
}

func TestCtrlCAbandons(t *testing.T) {
	saver := &stubSaver{}
	m, display := newTestModel(t, 60, saver)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if cmd == nil || !m.Abandoned() {
		t.Fatalf("expected abandon to quit")
	}
	if saver.calls != 0 || display.Listeners() != 0 {
		t.Fatalf("expected no save and released listener")
	}
}
