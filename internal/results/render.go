package results

import (
	"fmt"
	"io"
	"strings"

	"github.com/verte-zerg/mockexam/internal/model"
)

// RenderSummary prints the headline numbers of an attempt.
func RenderSummary(w io.Writer, exam model.ExamDefinition, attempt model.StoredAttempt, b Breakdown) error {
	lines := []string{
		fmt.Sprintf("%s result", examTitle(exam)),
		fmt.Sprintf("Attempt: %s", attempt.ID),
		fmt.Sprintf("Submitted: %s", attempt.SubmittedAt.Local().Format("2006-01-02 15:04")),
		fmt.Sprintf("Score: %s / %s (%.0f%%)", formatMarks(attempt.Score), formatMarks(attempt.TotalMarks), b.Percentage),
		fmt.Sprintf("Time taken: %d of %d min", attempt.ElapsedMinutes, exam.DurationMinutes),
		fmt.Sprintf("Correct: %d  Incorrect: %d  Unattempted: %d", b.Correct, b.Incorrect, b.Unattempted),
		"",
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// RenderSectionTable prints per-section performance.
func RenderSectionTable(w io.Writer, sections []SectionPerformance) error {
	if len(sections) == 0 {
		_, err := fmt.Fprintln(w, "No section data.")
		return err
	}
	if _, err := fmt.Fprintln(w, "Section-wise Performance"); err != nil {
		return err
	}
	headers := []string{"Section", "Total", "Correct", "Incorrect", "Skipped", "Marks", "Score"}
	rows := make([][]string, 0, len(sections))
	for _, s := range sections {
		rows = append(rows, []string{
			s.Name,
			fmt.Sprintf("%d", s.Total),
			fmt.Sprintf("%d", s.Correct),
			fmt.Sprintf("%d", s.Incorrect),
			fmt.Sprintf("%d", s.Unattempted),
			fmt.Sprintf("%s/%s", formatMarks(s.Marks), formatMarks(s.TotalMarks)),
			fmt.Sprintf("%.0f%%", s.Percentage()),
		})
	}
	rightAlign := map[int]bool{1: true, 2: true, 3: true, 4: true, 5: true, 6: true}
	for _, line := range formatTable(headers, rows, rightAlign) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	if weak := WeakestSections(sections, 1); len(weak) == 1 && len(sections) > 1 {
		if _, err := fmt.Fprintf(w, "\nFocus next on: %s\n", weak[0]); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// RenderSolutions prints every question with the chosen and correct option
// and the explanation, in the requested locale.
func RenderSolutions(w io.Writer, questions []model.Question, attempt model.AttemptResult, locale model.Locale) error {
	answers := make(map[string]model.AnswerRecord, len(attempt.Answers))
	for _, a := range attempt.Answers {
		answers[a.QuestionID] = a
	}
	for i, q := range questions {
		a := answers[q.ID]
		verdict := "skipped"
		switch {
		case a.Answered && a.Correct:
			verdict = "correct"
		case a.Answered:
			verdict = "incorrect"
		}
		if _, err := fmt.Fprintf(w, "Q%d. %s [%s]\n", i+1, q.PromptFor(locale), verdict); err != nil {
			return err
		}
		for _, o := range q.Options {
			marker := " "
			switch {
			case o.ID == q.CorrectOption:
				marker = "*"
			case a.Answered && o.ID == a.Selected:
				marker = "x"
			}
			if _, err := fmt.Fprintf(w, "  %s %s) %s\n", marker, o.ID, o.TextFor(locale)); err != nil {
				return err
			}
		}
		if expl := q.ExplanationFor(locale); expl != "" {
			if _, err := fmt.Fprintf(w, "  %s\n", expl); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(w, ""); err != nil {
			return err
		}
	}
	return nil
}

func examTitle(exam model.ExamDefinition) string {
	if exam.FullName != "" {
		return fmt.Sprintf("%s (%s)", exam.Name, exam.FullName)
	}
	if exam.Name != "" {
		return exam.Name
	}
	return exam.ID
}

func formatMarks(v float64) string {
	s := fmt.Sprintf("%.2f", v)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}
