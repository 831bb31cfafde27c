// Package catalog loads exam definitions and questions from YAML banks.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/verte-zerg/mockexam/internal/model"
)

//go:embed sample.yaml
var sampleBank []byte

// ErrExamNotFound is returned for an unknown exam id.
var ErrExamNotFound = errors.New("exam not found")

type bankFile struct {
	Categories []categoryYAML `yaml:"categories"`
	Exams      []examYAML     `yaml:"exams"`
}

type categoryYAML struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

type examYAML struct {
	ID               string         `yaml:"id"`
	Category         string         `yaml:"category"`
	Name             string         `yaml:"name"`
	FullName         string         `yaml:"full_name"`
	Description      string         `yaml:"description"`
	Duration         int            `yaml:"duration"`
	TotalQuestions   int            `yaml:"total_questions"`
	MarksPerQuestion float64        `yaml:"marks_per_question"`
	NegativeMarking  float64        `yaml:"negative_marking"`
	Sections         []string       `yaml:"sections"`
	SectionDurations map[string]int `yaml:"section_durations"`
	Questions        []questionYAML `yaml:"questions"`
}

type questionYAML struct {
	ID            string       `yaml:"id"`
	Section       string       `yaml:"section"`
	Question      string       `yaml:"question"`
	QuestionHi    string       `yaml:"question_hi"`
	Options       []optionYAML `yaml:"options"`
	CorrectAnswer string       `yaml:"correct_answer"`
	Explanation   string       `yaml:"explanation"`
	ExplanationHi string       `yaml:"explanation_hi"`
}

type optionYAML struct {
	ID     string `yaml:"id"`
	Text   string `yaml:"text"`
	TextHi string `yaml:"text_hi"`
}

// Catalog is an in-memory exam store.
type Catalog struct {
	categories map[string]model.Category
	catOrder   []string
	exams      map[string]model.ExamDefinition
	questions  map[string][]model.Question
	log        zerolog.Logger
}

// Load reads the built-in sample bank and then every *.yaml file in dir.
// Exams from dir replace built-in exams with the same id. A missing dir is
// not an error.
func Load(dir string, log zerolog.Logger) (*Catalog, error) {
	c := &Catalog{
		categories: map[string]model.Category{},
		exams:      map[string]model.ExamDefinition{},
		questions:  map[string][]model.Question{},
		log:        log.With().Str("component", "catalog").Logger(),
	}
	if err := c.Add(sampleBank, "built-in"); err != nil {
		return nil, err
	}
	if dir == "" {
		return c, nil
	}
	paths, err := bankPaths(dir)
	if err != nil {
		return nil, err
	}
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read exam bank: %w", err)
		}
		if err := c.Add(data, path); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func bankPaths(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read exams directory: %w", err)
	}
	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml") {
			paths = append(paths, filepath.Join(dir, name))
		}
	}
	sort.Strings(paths)
	return paths, nil
}

// Add parses one YAML bank and merges it into the catalog.
func (c *Catalog) Add(data []byte, source string) error {
	var bank bankFile
	if err := yaml.Unmarshal(data, &bank); err != nil {
		return fmt.Errorf("failed to parse exam bank %s: %w", source, err)
	}
	for _, cat := range bank.Categories {
		if cat.ID == "" {
			return fmt.Errorf("exam bank %s: category without id", source)
		}
		existing, ok := c.categories[cat.ID]
		if !ok {
			c.catOrder = append(c.catOrder, cat.ID)
		}
		existing.ID = cat.ID
		existing.Name = cat.Name
		existing.Description = cat.Description
		c.categories[cat.ID] = existing
	}
	for _, ex := range bank.Exams {
		exam, questions, err := convertExam(ex)
		if err != nil {
			return fmt.Errorf("exam bank %s: %w", source, err)
		}
		if _, ok := c.exams[exam.ID]; ok {
			c.log.Info().Str("exam", exam.ID).Str("source", source).Msg("exam replaced")
		}
		c.exams[exam.ID] = exam
		c.questions[exam.ID] = questions
	}
	c.log.Debug().Str("source", source).Int("exams", len(bank.Exams)).Msg("exam bank loaded")
	return nil
}

func convertExam(ex examYAML) (model.ExamDefinition, []model.Question, error) {
	if ex.ID == "" {
		return model.ExamDefinition{}, nil, fmt.Errorf("exam without id")
	}
	sectionSet := map[string]struct{}{}
	for _, s := range ex.Sections {
		sectionSet[s] = struct{}{}
	}
	for name := range ex.SectionDurations {
		if _, ok := sectionSet[name]; !ok {
			return model.ExamDefinition{}, nil, fmt.Errorf("exam %s: duration for unknown section %q", ex.ID, name)
		}
	}

	seen := map[string]struct{}{}
	questions := make([]model.Question, 0, len(ex.Questions))
	for _, q := range ex.Questions {
		if q.ID == "" {
			return model.ExamDefinition{}, nil, fmt.Errorf("exam %s: question without id", ex.ID)
		}
		if _, dup := seen[q.ID]; dup {
			return model.ExamDefinition{}, nil, fmt.Errorf("exam %s: duplicate question id %s", ex.ID, q.ID)
		}
		seen[q.ID] = struct{}{}
		if len(sectionSet) > 0 {
			if _, ok := sectionSet[q.Section]; !ok {
				return model.ExamDefinition{}, nil, fmt.Errorf("exam %s: question %s in unknown section %q", ex.ID, q.ID, q.Section)
			}
		}
		question := model.Question{
			ID:                   q.ID,
			Section:              q.Section,
			Prompt:               q.Question,
			SecondaryPrompt:      q.QuestionHi,
			CorrectOption:        q.CorrectAnswer,
			Explanation:          q.Explanation,
			SecondaryExplanation: q.ExplanationHi,
		}
		found := false
		for _, o := range q.Options {
			if o.ID == q.CorrectAnswer {
				found = true
			}
			question.Options = append(question.Options, model.Option{
				ID:            o.ID,
				Text:          o.Text,
				SecondaryText: o.TextHi,
			})
		}
		if !found {
			return model.ExamDefinition{}, nil, fmt.Errorf("exam %s: question %s correct answer %q is not an option", ex.ID, q.ID, q.CorrectAnswer)
		}
		questions = append(questions, question)
	}

	total := ex.TotalQuestions
	if total <= 0 {
		total = len(questions)
	}
	exam := model.ExamDefinition{
		ID:               ex.ID,
		Name:             ex.Name,
		FullName:         ex.FullName,
		Description:      ex.Description,
		CategoryID:       ex.Category,
		DurationMinutes:  ex.Duration,
		Sections:         ex.Sections,
		SectionMinutes:   ex.SectionDurations,
		MarksPerQuestion: ex.MarksPerQuestion,
		NegativeMarking:  ex.NegativeMarking,
		TotalQuestions:   total,
	}
	return exam, questions, nil
}

// GetExam returns the exam definition for id.
func (c *Catalog) GetExam(id string) (model.ExamDefinition, error) {
	exam, ok := c.exams[id]
	if !ok {
		return model.ExamDefinition{}, fmt.Errorf("%w: %s", ErrExamNotFound, id)
	}
	return exam, nil
}

// GetQuestions returns the ordered questions for an exam.
func (c *Catalog) GetQuestions(id string) ([]model.Question, error) {
	if _, ok := c.exams[id]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrExamNotFound, id)
	}
	qs := c.questions[id]
	out := make([]model.Question, len(qs))
	copy(out, qs)
	return out, nil
}

// Categories lists categories with their exams. Exams whose category is not
// declared are grouped under "other".
func (c *Catalog) Categories() []model.Category {
	byCat := map[string][]model.ExamDefinition{}
	for _, exam := range c.exams {
		key := exam.CategoryID
		if _, ok := c.categories[key]; !ok {
			key = "other"
		}
		byCat[key] = append(byCat[key], exam)
	}
	order := append([]string(nil), c.catOrder...)
	if _, ok := byCat["other"]; ok {
		order = append(order, "other")
	}
	out := make([]model.Category, 0, len(order))
	for _, id := range order {
		exams := byCat[id]
		if len(exams) == 0 {
			continue
		}
		sort.Slice(exams, func(i, j int) bool { return exams[i].ID < exams[j].ID })
		cat, ok := c.categories[id]
		if !ok {
			cat = model.Category{ID: id, Name: "Other"}
		}
		cat.Exams = exams
		out = append(out, cat)
	}
	return out
}
