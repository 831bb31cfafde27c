// Package model defines shared data structures.
package model

import "time"

// Locale selects which text variant of a question is shown.
type Locale string

const (
	// LocalePrimary is the primary (English) text.
	LocalePrimary Locale = "en"
	// LocaleSecondary is the secondary (Hindi) text.
	LocaleSecondary Locale = "hi"
)

// ParseLocale maps a user-supplied code to a Locale.
func ParseLocale(code string) (Locale, bool) {
	switch Locale(code) {
	case LocalePrimary, "":
		return LocalePrimary, true
	case LocaleSecondary:
		return LocaleSecondary, true
	default:
		return LocalePrimary, false
	}
}

// Other returns the opposite locale.
func (l Locale) Other() Locale {
	if l == LocaleSecondary {
		return LocalePrimary
	}
	return LocaleSecondary
}

// Category groups exams for browsing.
type Category struct {
	ID          string
	Name        string
	Description string
	Exams       []ExamDefinition
}

// ExamDefinition describes an exam. It is immutable for a session.
type ExamDefinition struct {
	ID               string
	Name             string
	FullName         string
	Description      string
	CategoryID       string
	DurationMinutes  int
	Sections         []string
	SectionMinutes   map[string]int
	MarksPerQuestion float64
	NegativeMarking  float64
	TotalQuestions   int
}

// TotalMarks returns the maximum achievable score.
func (e ExamDefinition) TotalMarks() float64 {
	return float64(e.TotalQuestions) * e.MarksPerQuestion
}

// Option is one selectable answer.
type Option struct {
	ID            string
	Text          string
	SecondaryText string
}

// Question is a multiple-choice question.
type Question struct {
	ID                   string
	Section              string
	Prompt               string
	SecondaryPrompt      string
	Options              []Option
	CorrectOption        string
	Explanation          string
	SecondaryExplanation string
}

// PromptFor projects the prompt into the given locale.
func (q Question) PromptFor(l Locale) string {
	return pick(l, q.Prompt, q.SecondaryPrompt)
}

// ExplanationFor projects the explanation into the given locale.
func (q Question) ExplanationFor(l Locale) string {
	return pick(l, q.Explanation, q.SecondaryExplanation)
}

// TextFor projects the option text into the given locale.
func (o Option) TextFor(l Locale) string {
	return pick(l, o.Text, o.SecondaryText)
}

func pick(l Locale, primary, secondary string) string {
	if l == LocaleSecondary && secondary != "" {
		return secondary
	}
	return primary
}

// Phase is the submission phase of a session.
type Phase int

const (
	PhaseInProgress Phase = iota
	PhaseTimeUp
	PhaseSubmitting
	PhaseSubmitted
)

func (p Phase) String() string {
	switch p {
	case PhaseInProgress:
		return "in-progress"
	case PhaseTimeUp:
		return "time-up"
	case PhaseSubmitting:
		return "submitting"
	case PhaseSubmitted:
		return "submitted"
	default:
		return "unknown"
	}
}

// Status is the display status of a question.
type Status int

const (
	StatusNotVisited Status = iota
	StatusNotAnswered
	StatusMarked
	StatusAnswered
	StatusAnsweredMarked
)

func (s Status) String() string {
	switch s {
	case StatusNotVisited:
		return "not-visited"
	case StatusNotAnswered:
		return "not-answered"
	case StatusMarked:
		return "marked"
	case StatusAnswered:
		return "answered"
	case StatusAnsweredMarked:
		return "answered-marked"
	default:
		return "unknown"
	}
}

// Counts summarizes answer state across all questions.
type Counts struct {
	Total       int
	Answered    int
	Marked      int
	Unattempted int
	ByStatus    map[Status]int
}

// AnswerRecord is the per-question outcome of an attempt.
type AnswerRecord struct {
	QuestionID string
	Selected   string
	Answered   bool
	Correct    bool
}

// AttemptResult is a finished, scored attempt.
type AttemptResult struct {
	ExamID         string
	Locale         Locale
	Score          float64
	TotalMarks     float64
	ElapsedMinutes int
	Answers        []AnswerRecord
}

// StoredAttempt is an attempt as persisted.
type StoredAttempt struct {
	ID          string
	SubmittedAt time.Time
	AttemptResult
}

// HistoryFilter filters attempt listings.
type HistoryFilter struct {
	ExamID string
	Since  *time.Time
	Last   int
}
