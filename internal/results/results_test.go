package results

import (
	"bytes"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/verte-zerg/mockexam/internal/model"
)

func sampleExam() (model.ExamDefinition, []model.Question) {
	exam := model.ExamDefinition{
		ID:               "mock",
		Name:             "Mock",
		DurationMinutes:  60,
		Sections:         []string{"A", "B"},
		MarksPerQuestion: 2,
		NegativeMarking:  0.5,
		TotalQuestions:   5,
	}
	opts := []model.Option{{ID: "a", Text: "A"}, {ID: "b", Text: "B"}, {ID: "c", Text: "C"}}
	questions := []model.Question{
		{ID: "1", Section: "A", Prompt: "one", Options: opts, CorrectOption: "a", Explanation: "because a"},
		{ID: "2", Section: "A", Prompt: "two", Options: opts, CorrectOption: "b"},
		{ID: "3", Section: "B", Prompt: "three", Options: opts, CorrectOption: "c"},
		{ID: "4", Section: "B", Prompt: "four", Options: opts, CorrectOption: "a"},
		{ID: "5", Section: "B", Prompt: "five", Options: opts, CorrectOption: "b"},
	}
	return exam, questions
}

func sampleAttempt() model.AttemptResult {
	return model.AttemptResult{
		ExamID:     "mock",
		Score:      5.5,
		TotalMarks: 10,
		Answers: []model.AnswerRecord{
			{QuestionID: "1", Selected: "a", Answered: true, Correct: true},
			{QuestionID: "2", Selected: "b", Answered: true, Correct: true},
			{QuestionID: "3", Selected: "a", Answered: true},
			{QuestionID: "4"},
			{QuestionID: "5", Selected: "b", Answered: true, Correct: true},
		},
	}
}

func TestBuildSectionPerformance(t *testing.T) {
	exam, questions := sampleExam()
	b := Build(exam, questions, sampleAttempt())
	if b.Correct != 3 || b.Incorrect != 1 || b.Unattempted != 1 {
		t.Fatalf("unexpected totals: %+v", b)
	}
	if math.Abs(b.Percentage-55) > 1e-9 {
		t.Fatalf("expected 55%%, got %.2f", b.Percentage)
	}
	if len(b.Sections) != 2 {
		t.Fatalf("expected 2 sections, got %d", len(b.Sections))
	}
	a, bb := b.Sections[0], b.Sections[1]
	if a.Name != "A" || a.Correct != 2 || a.Marks != 4 || a.TotalMarks != 4 {
		t.Fatalf("unexpected section A: %+v", a)
	}
	if bb.Name != "B" || bb.Correct != 1 || bb.Incorrect != 1 || bb.Unattempted != 1 || bb.Marks != 1.5 || bb.TotalMarks != 6 {
		t.Fatalf("unexpected section B: %+v", bb)
	}
}

func TestSectionPercentageFloorsAtZero(t *testing.T) {
	s := SectionPerformance{Marks: -1, TotalMarks: 4}
	if s.Percentage() != 0 {
		t.Fatalf("expected 0, got %.2f", s.Percentage())
	}
}

func TestWeakestSections(t *testing.T) {
	sections := []SectionPerformance{
		{Name: "A", Marks: 4, TotalMarks: 4},
		{Name: "B", Marks: 1, TotalMarks: 6},
		{Name: "C", Marks: 3, TotalMarks: 6},
	}
	weak := WeakestSections(sections, 2)
	if len(weak) != 2 || weak[0] != "B" || weak[1] != "C" {
		t.Fatalf("unexpected weakest sections: %v", weak)
	}
	if got := WeakestSections(nil, 1); got != nil {
		t.Fatalf("expected nil, got %v", got)
	}
}

func TestRenderSummaryAndSections(t *testing.T) {
	exam, questions := sampleExam()
	stored := model.StoredAttempt{ID: "abc", SubmittedAt: time.Now(), AttemptResult: sampleAttempt()}
	b := Build(exam, questions, stored.AttemptResult)

	var buf bytes.Buffer
	if err := RenderSummary(&buf, exam, stored, b); err != nil {
		t.Fatalf("render summary: %v", err)
	}
	if err := RenderSectionTable(&buf, b.Sections); err != nil {
		t.Fatalf("render sections: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Score: 5.5 / 10 (55%)", "Correct: 3  Incorrect: 1  Unattempted: 1", "Section-wise Performance", "1.5/6", "Focus next on: B"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestRenderSolutionsMarksChoices(t *testing.T) {
	_, questions := sampleExam()
	var buf bytes.Buffer
	if err := RenderSolutions(&buf, questions[:3], sampleAttempt(), model.LocalePrimary); err != nil {
		t.Fatalf("render solutions: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "Q1. one [correct]") || !strings.Contains(out, "because a") {
		t.Fatalf("unexpected first question:\n%s", out)
	}
	if !strings.Contains(out, "Q3. three [incorrect]") || !strings.Contains(out, "  x a) A") || !strings.Contains(out, "  * c) C") {
		t.Fatalf("unexpected third question:\n%s", out)
	}
}

func TestFormatMarks(t *testing.T) {
	cases := map[float64]string{0: "0", 5.5: "5.5", 10: "10", 1.25: "1.25"}
	for in, want := range cases {
		if got := formatMarks(in); got != want {
			t.Fatalf("formatMarks(%v) = %q, want %q", in, got, want)
		}
	}
}
