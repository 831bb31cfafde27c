// Package results computes and renders attempt breakdowns and history.
package results

import (
	"sort"

	"github.com/verte-zerg/mockexam/internal/model"
)

// SectionPerformance tallies one section of an attempt.
type SectionPerformance struct {
	Name        string
	Total       int
	Correct     int
	Incorrect   int
	Unattempted int
	Marks       float64
	TotalMarks  float64
}

// Percentage is the section score relative to its maximum, floored at zero.
func (s SectionPerformance) Percentage() float64 {
	if s.TotalMarks <= 0 || s.Marks <= 0 {
		return 0
	}
	return s.Marks / s.TotalMarks * 100
}

// Breakdown summarizes a stored attempt against its exam.
type Breakdown struct {
	Correct     int
	Incorrect   int
	Unattempted int
	Percentage  float64
	Sections    []SectionPerformance
}

// Build computes the breakdown of an attempt. Sections appear in exam order,
// followed by any section only the questions mention.
func Build(exam model.ExamDefinition, questions []model.Question, attempt model.AttemptResult) Breakdown {
	answers := make(map[string]model.AnswerRecord, len(attempt.Answers))
	for _, a := range attempt.Answers {
		answers[a.QuestionID] = a
	}

	bySection := map[string]*SectionPerformance{}
	var order []string
	section := func(name string) *SectionPerformance {
		if sp, ok := bySection[name]; ok {
			return sp
		}
		sp := &SectionPerformance{Name: name}
		bySection[name] = sp
		order = append(order, name)
		return sp
	}
	for _, name := range exam.Sections {
		section(name)
	}

	var b Breakdown
	for _, q := range questions {
		sp := section(q.Section)
		sp.Total++
		sp.TotalMarks += exam.MarksPerQuestion
		a, ok := answers[q.ID]
		switch {
		case !ok || !a.Answered:
			sp.Unattempted++
			b.Unattempted++
		case a.Correct:
			sp.Correct++
			sp.Marks += exam.MarksPerQuestion
			b.Correct++
		default:
			sp.Incorrect++
			sp.Marks -= exam.NegativeMarking
			b.Incorrect++
		}
	}
	for _, name := range order {
		if sp := bySection[name]; sp.Total > 0 {
			b.Sections = append(b.Sections, *sp)
		}
	}
	if attempt.TotalMarks > 0 {
		b.Percentage = attempt.Score / attempt.TotalMarks * 100
	}
	return b
}

// WeakestSections returns up to top section names with the lowest score
// percentage.
func WeakestSections(sections []SectionPerformance, top int) []string {
	if len(sections) == 0 {
		return nil
	}
	candidates := make([]SectionPerformance, len(sections))
	copy(candidates, sections)
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Percentage() < candidates[j].Percentage()
	})
	if top <= 0 || top > len(candidates) {
		top = len(candidates)
	}
	out := make([]string, 0, top)
	for i := 0; i < top; i++ {
		out = append(out, candidates[i].Name)
	}
	return out
}
