// Package answers stores selected options and review marks per question.
package answers

import "github.com/verte-zerg/mockexam/internal/model"

// Store maps question ids to their selection and review mark.
// Keys are fixed at construction; unknown ids are ignored.
type Store struct {
	order    []string
	selected map[string]string
	marked   map[string]struct{}
}

// New seeds every question as unanswered and unmarked.
func New(ids []string) *Store {
	s := &Store{
		order:    append([]string(nil), ids...),
		selected: make(map[string]string, len(ids)),
		marked:   map[string]struct{}{},
	}
	for _, id := range ids {
		s.selected[id] = ""
	}
	return s
}

// SetAnswer overwrites the selection. An empty option clears it.
func (s *Store) SetAnswer(id, optionID string) {
	if _, ok := s.selected[id]; !ok {
		return
	}
	s.selected[id] = optionID
}

// Clear removes the selection for id.
func (s *Store) Clear(id string) {
	s.SetAnswer(id, "")
}

// Selected returns the chosen option and whether one is set.
func (s *Store) Selected(id string) (string, bool) {
	opt := s.selected[id]
	return opt, opt != ""
}

// ToggleMark flips the review mark and returns the new state.
func (s *Store) ToggleMark(id string) bool {
	if _, ok := s.selected[id]; !ok {
		return false
	}
	if _, ok := s.marked[id]; ok {
		delete(s.marked, id)
		return false
	}
	s.marked[id] = struct{}{}
	return true
}

// Marked reports whether id is marked for review.
func (s *Store) Marked(id string) bool {
	_, ok := s.marked[id]
	return ok
}

// Status derives the display status; the first matching rule wins.
func (s *Store) Status(id string, visited bool) model.Status {
	_, answered := s.Selected(id)
	marked := s.Marked(id)
	switch {
	case answered && marked:
		return model.StatusAnsweredMarked
	case answered:
		return model.StatusAnswered
	case marked:
		return model.StatusMarked
	case visited:
		return model.StatusNotAnswered
	default:
		return model.StatusNotVisited
	}
}

// AnsweredCount returns the number of questions with a selection.
func (s *Store) AnsweredCount() int {
	n := 0
	for _, opt := range s.selected {
		if opt != "" {
			n++
		}
	}
	return n
}

// Counts tallies answers, marks and statuses.
func (s *Store) Counts(visited func(id string) bool) model.Counts {
	c := model.Counts{
		Total:    len(s.order),
		ByStatus: map[model.Status]int{},
	}
	for _, id := range s.order {
		v := visited != nil && visited(id)
		c.ByStatus[s.Status(id, v)]++
		if _, ok := s.Selected(id); ok {
			c.Answered++
		}
		if s.Marked(id) {
			c.Marked++
		}
	}
	c.Unattempted = c.Total - c.Answered
	return c
}
