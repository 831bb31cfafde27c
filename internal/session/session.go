// Package session drives one exam attempt from start to submission.
package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/verte-zerg/mockexam/internal/answers"
	"github.com/verte-zerg/mockexam/internal/fullscreen"
	"github.com/verte-zerg/mockexam/internal/model"
	"github.com/verte-zerg/mockexam/internal/navigation"
	"github.com/verte-zerg/mockexam/internal/timer"
)

var (
	// ErrNoQuestions is returned when an exam has nothing to answer.
	ErrNoQuestions = errors.New("exam has no questions")
	// ErrNoSaver is returned when no attempt saver is configured.
	ErrNoSaver = errors.New("attempt saver is required")
	// ErrAlreadySubmitted is returned by a repeated submit.
	ErrAlreadySubmitted = errors.New("attempt already submitted")
	// ErrNotSubmitting is returned when completing a submit that was not begun.
	ErrNotSubmitting = errors.New("no submission in progress")
)

// Saver persists a finished attempt and returns its stored id.
type Saver interface {
	SaveAttempt(ctx context.Context, result model.AttemptResult) (string, error)
}

// Options configures a session.
type Options struct {
	Saver   Saver
	Display fullscreen.Display
	Locale  model.Locale
	Logger  zerolog.Logger
}

// TimeUpNotice is shown when the overall clock runs out.
type TimeUpNotice struct {
	Answered int
	Total    int
}

// Session is the orchestrator for a single attempt. It is not safe for
// concurrent use; all calls are expected from one event loop.
type Session struct {
	exam      model.ExamDefinition
	questions []model.Question
	sections  []string

	nav     *navigation.Navigator
	answers *answers.Store
	clock   *timer.Engine
	screen  *fullscreen.Controller
	saver   Saver
	log     zerolog.Logger

	locale      model.Locale
	phase       model.Phase
	prePhase    model.Phase
	confirmOpen bool
	notice      *TimeUpNotice
	lastErr     error
	attemptID   string
	pending     *model.AttemptResult
	closed      bool
}

// New starts a session: timers running, first question visited, every
// question unanswered, immersive mode requested.
func New(exam model.ExamDefinition, questions []model.Question, opts Options) (*Session, error) {
	if len(questions) == 0 {
		return nil, fmt.Errorf("start exam %q: %w", exam.ID, ErrNoQuestions)
	}
	if opts.Saver == nil {
		return nil, ErrNoSaver
	}
	locale := opts.Locale
	if locale == "" {
		locale = model.LocalePrimary
	}

	ids := make([]string, len(questions))
	for i, q := range questions {
		ids[i] = q.ID
	}

	s := &Session{
		exam:      exam,
		questions: questions,
		nav:       navigation.New(questions),
		answers:   answers.New(ids),
		saver:     opts.Saver,
		locale:    locale,
		phase:     model.PhaseInProgress,
		log: opts.Logger.With().
			Str("component", "session").
			Str("exam", exam.ID).
			Logger(),
	}
	s.sections = exam.Sections
	if len(s.sections) == 0 {
		s.sections = s.nav.Sections()
	}
	s.clock = timer.New(exam.DurationMinutes, s.sections, exam.SectionMinutes, s.handleTimeUp)
	s.clock.OnSectionExpired(func(section string) {
		s.log.Info().Str("section", section).Msg("section time expired")
	})
	s.clock.SetActiveSection(s.nav.Section())
	s.clock.Start()

	s.screen = fullscreen.New(opts.Display, s.log)
	s.screen.Enter()

	s.log.Info().
		Int("questions", len(questions)).
		Int("duration_min", exam.DurationMinutes).
		Msg("session started")
	return s, nil
}

// Exam returns the exam definition.
func (s *Session) Exam() model.ExamDefinition {
	return s.exam
}

// Phase returns the submission phase.
func (s *Session) Phase() model.Phase {
	return s.phase
}

// AttemptID returns the stored attempt id once submitted.
func (s *Session) AttemptID() string {
	return s.attemptID
}

// LastError returns the most recent submit failure.
func (s *Session) LastError() error {
	return s.lastErr
}

// DismissError clears the submit failure.
func (s *Session) DismissError() {
	s.lastErr = nil
}

// Notice returns the time-up notice, if any.
func (s *Session) Notice() *TimeUpNotice {
	return s.notice
}

// ConfirmOpen reports whether submit confirmation was requested.
func (s *Session) ConfirmOpen() bool {
	return s.confirmOpen
}

// Locale returns the display locale.
func (s *Session) Locale() model.Locale {
	return s.locale
}

// SetLocale changes which text variant is shown.
func (s *Session) SetLocale(l model.Locale) {
	s.locale = l
}

// ToggleLocale swaps between primary and secondary text.
func (s *Session) ToggleLocale() {
	s.locale = s.locale.Other()
}

// Fullscreen reports whether immersive mode is active.
func (s *Session) Fullscreen() bool {
	return s.screen.Active()
}

// ToggleFullscreen enters or leaves immersive mode while answering.
func (s *Session) ToggleFullscreen() {
	if !s.accepting() {
		return
	}
	s.screen.Toggle()
}

// Tick advances the clocks by one second.
func (s *Session) Tick() {
	if !s.accepting() {
		return
	}
	s.clock.Tick()
}

func (s *Session) accepting() bool {
	return !s.closed && s.phase == model.PhaseInProgress
}

// Next moves to the next question.
func (s *Session) Next() {
	if s.accepting() && s.nav.Next() {
		s.syncSection()
	}
}

// Previous moves to the previous question.
func (s *Session) Previous() {
	if s.accepting() && s.nav.Previous() {
		s.syncSection()
	}
}

// GoTo jumps to a question index.
func (s *Session) GoTo(index int) {
	if s.accepting() && s.nav.GoTo(index) {
		s.syncSection()
	}
}

// GoToSection jumps to the first question of a section.
func (s *Session) GoToSection(name string) {
	if s.accepting() && s.nav.GoToSection(name) {
		s.syncSection()
	}
}

func (s *Session) syncSection() {
	if s.clock.ActiveSection() != s.nav.Section() {
		s.log.Debug().Str("section", s.nav.Section()).Msg("section changed")
	}
	s.clock.SetActiveSection(s.nav.Section())
}

// SetAnswer records optionID for a question. Options that do not belong to
// the question are ignored; an empty optionID clears the answer.
func (s *Session) SetAnswer(questionID, optionID string) {
	if !s.accepting() {
		return
	}
	if optionID != "" && !s.hasOption(questionID, optionID) {
		return
	}
	s.answers.SetAnswer(questionID, optionID)
}

func (s *Session) hasOption(questionID, optionID string) bool {
	for _, q := range s.questions {
		if q.ID != questionID {
			continue
		}
		for _, o := range q.Options {
			if o.ID == optionID {
				return true
			}
		}
		return false
	}
	return false
}

// SelectOption answers the current question with its n-th option (0-based).
func (s *Session) SelectOption(n int) {
	q, ok := s.nav.Current()
	if !ok || n < 0 || n >= len(q.Options) {
		return
	}
	s.SetAnswer(q.ID, q.Options[n].ID)
}

// ClearCurrentAnswer removes the selection on the current question.
func (s *Session) ClearCurrentAnswer() {
	if q, ok := s.nav.Current(); ok {
		s.SetAnswer(q.ID, "")
	}
}

// ToggleMark flips the review mark on the current question.
func (s *Session) ToggleMark() bool {
	q, ok := s.nav.Current()
	if !ok || !s.accepting() {
		return false
	}
	return s.answers.ToggleMark(q.ID)
}

// ToggleMarkAndAdvance flips the mark then moves on. advanced is false on
// the last question.
func (s *Session) ToggleMarkAndAdvance() (marked, advanced bool) {
	if !s.accepting() {
		return false, false
	}
	marked = s.ToggleMark()
	if s.nav.AtLast() {
		return marked, false
	}
	s.Next()
	return marked, true
}

// RequestSubmit leaves immersive mode and opens the confirmation step.
func (s *Session) RequestSubmit() TimeUpNotice {
	if s.accepting() {
		s.screen.Exit()
		s.confirmOpen = true
	}
	return TimeUpNotice{Answered: s.answers.AnsweredCount(), Total: len(s.questions)}
}

// CancelSubmit closes the confirmation step.
func (s *Session) CancelSubmit() {
	if s.phase == model.PhaseInProgress {
		s.confirmOpen = false
	}
}

func (s *Session) handleTimeUp() {
	if s.phase != model.PhaseInProgress {
		return
	}
	s.clock.Stop()
	s.screen.Exit()
	s.confirmOpen = false
	s.notice = &TimeUpNotice{Answered: s.answers.AnsweredCount(), Total: len(s.questions)}
	s.phase = model.PhaseTimeUp
	s.log.Info().Int("answered", s.notice.Answered).Msg("time up")
}

// BeginSubmit freezes input and scores the attempt. ok is false when a
// submission is already underway or finished.
func (s *Session) BeginSubmit() (model.AttemptResult, bool) {
	if s.closed || (s.phase != model.PhaseInProgress && s.phase != model.PhaseTimeUp) {
		return model.AttemptResult{}, false
	}
	s.prePhase = s.phase
	s.phase = model.PhaseSubmitting
	s.lastErr = nil
	s.clock.Stop()
	s.screen.Exit()

	score, records := Score(s.exam, s.questions, s.answers.Selected)
	result := model.AttemptResult{
		ExamID:         s.exam.ID,
		Locale:         s.locale,
		Score:          score,
		TotalMarks:     totalMarks(s.exam, len(s.questions)),
		ElapsedMinutes: ElapsedMinutes(s.exam.DurationMinutes, s.clock.Remaining()),
		Answers:        records,
	}
	s.pending = &result
	s.log.Info().Float64("score", score).Msg("submitting attempt")
	return result, true
}

// Persist hands result to the saver. It does not touch session state and
// may run off the event loop.
func (s *Session) Persist(ctx context.Context, result model.AttemptResult) (string, error) {
	return s.saver.SaveAttempt(ctx, result)
}

// CompleteSubmit records the stored id and tears the session down.
func (s *Session) CompleteSubmit(id string) error {
	if s.phase != model.PhaseSubmitting {
		return ErrNotSubmitting
	}
	s.phase = model.PhaseSubmitted
	s.attemptID = id
	s.pending = nil
	s.confirmOpen = false
	s.notice = nil
	s.log.Info().Str("attempt", id).Msg("attempt saved")
	s.Close()
	return nil
}

// FailSubmit restores the pre-submit phase so the user can retry.
func (s *Session) FailSubmit(err error) {
	if s.phase != model.PhaseSubmitting {
		return
	}
	s.phase = s.prePhase
	s.lastErr = err
	s.log.Error().Err(err).Msg("failed to save attempt")
	if s.phase == model.PhaseInProgress && !s.closed {
		s.clock.Start()
	}
}

// Pending returns the scored attempt awaiting a successful save.
func (s *Session) Pending() (model.AttemptResult, bool) {
	if s.pending == nil {
		return model.AttemptResult{}, false
	}
	return *s.pending, true
}

// ConfirmSubmit scores and saves the attempt synchronously.
func (s *Session) ConfirmSubmit(ctx context.Context) (string, error) {
	result, ok := s.BeginSubmit()
	if !ok {
		return s.attemptID, ErrAlreadySubmitted
	}
	id, err := s.Persist(ctx, result)
	if err != nil {
		s.FailSubmit(err)
		return "", fmt.Errorf("failed to save attempt: %w", err)
	}
	if err := s.CompleteSubmit(id); err != nil {
		return "", err
	}
	return id, nil
}

// Close stops the clocks and releases the display listener. It is safe to
// call on every teardown path.
func (s *Session) Close() {
	if s.closed {
		return
	}
	s.closed = true
	s.clock.Stop()
	s.screen.Exit()
	s.screen.Close()
}
