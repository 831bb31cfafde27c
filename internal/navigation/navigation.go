// Package navigation tracks the question pointer, visited set and active section.
package navigation

import "github.com/verte-zerg/mockexam/internal/model"

// Navigator owns the current question index. Every move marks the target
// visited and recomputes the active section before returning.
type Navigator struct {
	questions []model.Question
	index     int
	section   string
	visited   map[string]struct{}
}

// New builds a navigator positioned on the first question.
func New(questions []model.Question) *Navigator {
	n := &Navigator{
		questions: questions,
		visited:   map[string]struct{}{},
	}
	if len(questions) > 0 {
		n.land(0)
	}
	return n
}

// Next moves forward one question.
func (n *Navigator) Next() bool {
	return n.GoTo(n.index + 1)
}

// Previous moves back one question.
func (n *Navigator) Previous() bool {
	return n.GoTo(n.index - 1)
}

// GoTo jumps to index. Out-of-range indexes are ignored.
func (n *Navigator) GoTo(index int) bool {
	if index < 0 || index >= len(n.questions) || index == n.index {
		return false
	}
	n.land(index)
	return true
}

// GoToSection jumps to the first question of the named section.
func (n *Navigator) GoToSection(name string) bool {
	idx := n.SectionStart(name)
	if idx < 0 {
		return false
	}
	return n.GoTo(idx)
}

func (n *Navigator) land(index int) {
	n.index = index
	q := n.questions[index]
	n.visited[q.ID] = struct{}{}
	if q.Section != "" {
		n.section = q.Section
	}
}

// SectionStart returns the index of the first question in section, or -1.
func (n *Navigator) SectionStart(name string) int {
	for i, q := range n.questions {
		if q.Section == name {
			return i
		}
	}
	return -1
}

// Sections lists section names in order of first appearance.
func (n *Navigator) Sections() []string {
	seen := map[string]struct{}{}
	var out []string
	for _, q := range n.questions {
		if _, ok := seen[q.Section]; ok {
			continue
		}
		seen[q.Section] = struct{}{}
		out = append(out, q.Section)
	}
	return out
}

// Index returns the current question index.
func (n *Navigator) Index() int {
	return n.index
}

// Len returns the number of questions.
func (n *Navigator) Len() int {
	return len(n.questions)
}

// Current returns the current question; ok is false for an empty exam.
func (n *Navigator) Current() (model.Question, bool) {
	if len(n.questions) == 0 {
		return model.Question{}, false
	}
	return n.questions[n.index], true
}

// Section returns the active section.
func (n *Navigator) Section() string {
	return n.section
}

// Visited reports whether a question has been shown.
func (n *Navigator) Visited(id string) bool {
	_, ok := n.visited[id]
	return ok
}

// VisitedCount returns the number of visited questions.
func (n *Navigator) VisitedCount() int {
	return len(n.visited)
}

// AtFirst reports whether the pointer is on the first question.
func (n *Navigator) AtFirst() bool {
	return n.index == 0
}

// AtLast reports whether the pointer is on the last question.
func (n *Navigator) AtLast() bool {
	return len(n.questions) == 0 || n.index == len(n.questions)-1
}
