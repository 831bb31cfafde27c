package session

import (
	"github.com/verte-zerg/mockexam/internal/model"
	"github.com/verte-zerg/mockexam/internal/timer"
)

// OptionView is an option projected into the session locale.
type OptionView struct {
	ID       string
	Text     string
	Selected bool
}

// SectionView is a section tab with its clock.
type SectionView struct {
	Name   string
	Clock  string
	Active bool
}

// View is a read-only snapshot for the presentation layer.
type View struct {
	ExamName     string
	Phase        model.Phase
	Locale       model.Locale
	Index        int
	Total        int
	QuestionID   string
	Prompt       string
	Options      []OptionView
	Marked       bool
	Section      string
	Sections     []SectionView
	OverallClock string
	SectionClock string
	Statuses     []model.Status
	Counts       model.Counts
	Progress     float64
	Fullscreen   bool
	ConfirmOpen  bool
	Notice       *TimeUpNotice
	Err          error
	CanPrev      bool
	CanNext      bool
}

// View builds the presentation snapshot.
func (s *Session) View() View {
	v := View{
		ExamName:     s.exam.Name,
		Phase:        s.phase,
		Locale:       s.locale,
		Index:        s.nav.Index(),
		Total:        len(s.questions),
		Section:      s.nav.Section(),
		OverallClock: timer.FormatClock(s.clock.Remaining(), true),
		SectionClock: timer.FormatClock(s.clock.ActiveRemaining()),
		Counts:       s.Counts(),
		Fullscreen:   s.screen.Active(),
		ConfirmOpen:  s.confirmOpen,
		Notice:       s.notice,
		Err:          s.lastErr,
		CanPrev:      !s.nav.AtFirst(),
		CanNext:      !s.nav.AtLast(),
	}
	if v.Total > 0 {
		v.Progress = float64(v.Counts.Answered) / float64(v.Total)
	}
	if q, ok := s.nav.Current(); ok {
		selected, _ := s.answers.Selected(q.ID)
		v.QuestionID = q.ID
		v.Prompt = q.PromptFor(s.locale)
		v.Marked = s.answers.Marked(q.ID)
		v.Options = make([]OptionView, 0, len(q.Options))
		for _, o := range q.Options {
			v.Options = append(v.Options, OptionView{
				ID:       o.ID,
				Text:     o.TextFor(s.locale),
				Selected: o.ID == selected,
			})
		}
	}
	v.Statuses = s.Statuses()
	for _, name := range s.sections {
		v.Sections = append(v.Sections, SectionView{
			Name:   name,
			Clock:  timer.FormatClock(s.clock.SectionRemaining(name)),
			Active: name == v.Section,
		})
	}
	return v
}

// Statuses derives the display status of every question in order.
func (s *Session) Statuses() []model.Status {
	out := make([]model.Status, len(s.questions))
	for i, q := range s.questions {
		out[i] = s.answers.Status(q.ID, s.nav.Visited(q.ID))
	}
	return out
}

// Counts tallies answered, marked and unattempted questions.
func (s *Session) Counts() model.Counts {
	return s.answers.Counts(s.nav.Visited)
}

// RemainingSeconds returns the overall seconds left.
func (s *Session) RemainingSeconds() int {
	return s.clock.Remaining()
}

// SectionSeconds returns the active section's seconds left.
func (s *Session) SectionSeconds() (int, bool) {
	return s.clock.ActiveRemaining()
}

// CurrentIndex returns the question pointer.
func (s *Session) CurrentIndex() int {
	return s.nav.Index()
}

// Selected returns the answer for a question.
func (s *Session) Selected(questionID string) (string, bool) {
	return s.answers.Selected(questionID)
}

// Status returns the display status of one question.
func (s *Session) Status(questionID string) model.Status {
	return s.answers.Status(questionID, s.nav.Visited(questionID))
}
