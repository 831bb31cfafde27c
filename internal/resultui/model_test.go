package resultui

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/mockexam/internal/model"
)

type fakeLister struct {
	attempts []model.StoredAttempt
	filters  []model.HistoryFilter
}

func (f *fakeLister) ListAttempts(_ context.Context, filter model.HistoryFilter) ([]model.StoredAttempt, error) {
	f.filters = append(f.filters, filter)
	return f.attempts, nil
}

func testData() Data {
	exam := model.ExamDefinition{
		ID:               "mock",
		Name:             "Mock Exam",
		DurationMinutes:  60,
		Sections:         []string{"Maths", "English"},
		MarksPerQuestion: 2,
		NegativeMarking:  0.5,
		TotalQuestions:   2,
	}
	questions := []model.Question{
		{
			ID: "1", Section: "Maths", Prompt: "Two plus two?", SecondaryPrompt: "दो और दो?",
			Options:       []model.Option{{ID: "a", Text: "Four", SecondaryText: "चार"}, {ID: "b", Text: "Five"}},
			CorrectOption: "a",
		},
		{
			ID: "2", Section: "English", Prompt: "Opposite of hot?",
			Options:       []model.Option{{ID: "a", Text: "Warm"}, {ID: "b", Text: "Cold"}},
			CorrectOption: "b",
		},
	}
	attempt := model.StoredAttempt{
		ID:          "attempt-1",
		SubmittedAt: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
		AttemptResult: model.AttemptResult{
			ExamID:         "mock",
			Locale:         model.LocalePrimary,
			Score:          2,
			TotalMarks:     4,
			ElapsedMinutes: 12,
			Answers: []model.AnswerRecord{
				{QuestionID: "1", Selected: "a", Answered: true, Correct: true},
				{QuestionID: "2"},
			},
		},
	}
	return Data{Exam: exam, Questions: questions, Attempt: attempt}
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func sized(m *Model) *Model {
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return m
}

func TestOverviewShowsScore(t *testing.T) {
	m := sized(NewModel(testData(), nil))
	view := m.View()
	if !strings.Contains(view, "2.00 / 4.00") {
		t.Fatalf("expected score card in overview")
	}
	if !strings.Contains(view, "Unattempted") {
		t.Fatalf("expected unattempted card in overview")
	}
}

func TestTabsWrapAround(t *testing.T) {
	m := sized(NewModel(testData(), nil))
	m.Update(tea.KeyMsg{Type: tea.KeyLeft})
	if m.activeTab != tabHistory {
		t.Fatalf("expected history tab, got %d", m.activeTab)
	}
	m.Update(tea.KeyMsg{Type: tea.KeyRight})
	m.Update(tea.KeyMsg{Type: tea.KeyRight})
	if m.activeTab != tabSections {
		t.Fatalf("expected sections tab, got %d", m.activeTab)
	}
	if !strings.Contains(m.View(), "Maths") {
		t.Fatalf("expected section rows")
	}
}

func TestSolutionsLocaleToggle(t *testing.T) {
	m := sized(NewModel(testData(), nil))
	m.activeTab = tabSolutions
	if !strings.Contains(m.View(), "Two plus two?") {
		t.Fatalf("expected primary prompt")
	}
	m.Update(runes("L"))
	if !strings.Contains(m.View(), "दो और दो?") {
		t.Fatalf("expected secondary prompt after toggle")
	}
}

func TestHistoryFilterReloads(t *testing.T) {
	data := testData()
	lister := &fakeLister{attempts: []model.StoredAttempt{data.Attempt}}
	m := sized(NewModel(data, lister))
	if len(lister.filters) != 1 || lister.filters[0].ExamID != "mock" {
		t.Fatalf("expected initial history load for exam, got %+v", lister.filters)
	}
	m.activeTab = tabHistory
	m.Update(runes("/"))
	if !m.filterMode {
		t.Fatalf("expected filter mode")
	}
	m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m.Update(runes("5"))
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.filterMode {
		t.Fatalf("expected filter closed")
	}
	if len(lister.filters) != 2 || lister.filters[1].Last != 5 {
		t.Fatalf("expected reload with last=5, got %+v", lister.filters)
	}
	if !strings.Contains(m.View(), "last=5") {
		t.Fatalf("expected filter in history header")
	}
}

func TestHistoryFilterRejectsBadDate(t *testing.T) {
	lister := &fakeLister{}
	m := sized(NewModel(testData(), lister))
	m.activeTab = tabHistory
	m.Update(runes("/"))
	m.Update(runes("yesterday"))
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if !m.filterMode || m.filterError == "" {
		t.Fatalf("expected filter error to keep form open")
	}
	if len(lister.filters) != 1 {
		t.Fatalf("expected no reload on invalid filter")
	}
}

func TestRetakeQuits(t *testing.T) {
	m := sized(NewModel(testData(), nil))
	_, cmd := m.Update(runes("R"))
	if cmd == nil || !m.Retake() {
		t.Fatalf("expected retake to quit")
	}
}
