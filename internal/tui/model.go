// Package tui provides the Bubble Tea exam interface.
package tui

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/verte-zerg/mockexam/internal/model"
	"github.com/verte-zerg/mockexam/internal/session"
)

const lastQuestionNotice = "Marked for review. This is the last question."

type tickMsg struct {
	gen int
}

type savedMsg struct {
	id  string
	err error
}

// Model implements the Bubble Tea exam UI.
type Model struct {
	ctx     context.Context
	sess    *session.Session
	display *AltScreen
	log     zerolog.Logger

	keys     keyMap
	help     help.Model
	progress progress.Model
	jump     textinput.Model
	jumping  bool

	width  int
	height int

	tickGen   int
	saving    bool
	abandoned bool
	flash     string
}

// NewModel constructs the exam UI around a running session. display may be
// nil when the session was built without one.
func NewModel(ctx context.Context, sess *session.Session, display *AltScreen, log zerolog.Logger) *Model {
	jump := textinput.New()
	jump.Prompt = "Go to question: "
	jump.CharLimit = 4
	return &Model{
		ctx:     ctx,
		sess:    sess,
		display: display,
		log:     log.With().Str("component", "tui").Logger(),
		keys:    defaultKeyMap(),
		help:    help.New(),
		progress: progress.New(
			progress.WithDefaultGradient(),
			progress.WithoutPercentage(),
			progress.WithWidth(30),
		),
		jump: jump,
	}
}

// AttemptID returns the stored attempt id once the attempt was saved.
func (m *Model) AttemptID() string {
	return m.sess.AttemptID()
}

// Abandoned reports whether the user quit without submitting.
func (m *Model) Abandoned() bool {
	return m.abandoned
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.flush(), m.scheduleTick())
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.progress.Width = maxInt(10, minInt(40, msg.Width/3))
		return m, nil
	case tickMsg:
		if msg.gen != m.tickGen || m.sess.Phase() != model.PhaseInProgress {
			return m, nil
		}
		m.sess.Tick()
		if m.sess.Phase() != model.PhaseInProgress {
			return m, m.flush()
		}
		return m, m.scheduleTick()
	case savedMsg:
		return m.handleSaved(msg)
	case tea.KeyMsg:
		cmd := m.handleKey(msg)
		return m, tea.Batch(cmd, m.flush())
	}
	return m, nil
}

func (m *Model) scheduleTick() tea.Cmd {
	gen := m.tickGen
	return tea.Tick(time.Second, func(time.Time) tea.Msg {
		return tickMsg{gen: gen}
	})
}

func (m *Model) flush() tea.Cmd {
	if m.display == nil {
		return nil
	}
	return m.display.Flush()
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if key.Matches(msg, m.keys.Quit) {
		m.abandoned = true
		m.sess.Close()
		m.log.Warn().Msg("attempt abandoned")
		return tea.Quit
	}
	if m.saving {
		return nil
	}
	if m.jumping {
		return m.updateJump(msg)
	}
	if m.sess.LastError() != nil {
		switch {
		case key.Matches(msg, m.keys.Retry):
			return m.beginSubmit()
		case key.Matches(msg, m.keys.Cancel):
			m.sess.DismissError()
		}
		return nil
	}
	if m.sess.Phase() == model.PhaseTimeUp {
		if key.Matches(msg, m.keys.Confirm) {
			return m.beginSubmit()
		}
		return nil
	}
	if m.sess.ConfirmOpen() {
		switch {
		case key.Matches(msg, m.keys.Confirm):
			return m.beginSubmit()
		case key.Matches(msg, m.keys.Cancel):
			m.sess.CancelSubmit()
		}
		return nil
	}

	m.flash = ""
	switch {
	case key.Matches(msg, m.keys.Next):
		m.sess.Next()
	case key.Matches(msg, m.keys.Prev):
		m.sess.Previous()
	case key.Matches(msg, m.keys.NextSection):
		m.cycleSection(1)
	case key.Matches(msg, m.keys.PrevSection):
		m.cycleSection(-1)
	case key.Matches(msg, m.keys.Option):
		m.sess.SelectOption(int(msg.String()[0] - '1'))
	case key.Matches(msg, m.keys.Clear):
		m.sess.ClearCurrentAnswer()
	case key.Matches(msg, m.keys.Mark):
		m.sess.ToggleMark()
	case key.Matches(msg, m.keys.MarkNext):
		if marked, advanced := m.sess.ToggleMarkAndAdvance(); marked && !advanced {
			m.flash = lastQuestionNotice
		}
	case key.Matches(msg, m.keys.Jump):
		m.jumping = true
		m.jump.SetValue("")
		return m.jump.Focus()
	case key.Matches(msg, m.keys.Locale):
		m.sess.ToggleLocale()
	case key.Matches(msg, m.keys.Fullscreen):
		m.sess.ToggleFullscreen()
	case key.Matches(msg, m.keys.Cancel):
		if m.display != nil {
			m.display.Release()
		}
	case key.Matches(msg, m.keys.Submit):
		m.sess.RequestSubmit()
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}
	return nil
}

func (m *Model) updateJump(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEsc:
		m.jumping = false
		m.jump.Blur()
		return nil
	case tea.KeyEnter:
		m.jumping = false
		m.jump.Blur()
		n, err := strconv.Atoi(strings.TrimSpace(m.jump.Value()))
		if err != nil {
			return nil
		}
		m.sess.GoTo(n - 1)
		return nil
	}
	var cmd tea.Cmd
	m.jump, cmd = m.jump.Update(msg)
	return cmd
}

func (m *Model) cycleSection(delta int) {
	v := m.sess.View()
	if len(v.Sections) == 0 {
		return
	}
	idx := 0
	for i, s := range v.Sections {
		if s.Active {
			idx = i
			break
		}
	}
	n := len(v.Sections)
	next := ((idx+delta)%n + n) % n
	m.sess.GoToSection(v.Sections[next].Name)
}

func (m *Model) beginSubmit() tea.Cmd {
	result, ok := m.sess.BeginSubmit()
	if !ok {
		return nil
	}
	m.saving = true
	sess, ctx := m.sess, m.ctx
	return func() tea.Msg {
		id, err := sess.Persist(ctx, result)
		return savedMsg{id: id, err: err}
	}
}

func (m *Model) handleSaved(msg savedMsg) (tea.Model, tea.Cmd) {
	m.saving = false
	if msg.err != nil {
		m.sess.FailSubmit(msg.err)
		if m.sess.Phase() == model.PhaseInProgress {
			m.tickGen++
			return m, tea.Batch(m.flush(), m.scheduleTick())
		}
		return m, m.flush()
	}
	if err := m.sess.CompleteSubmit(msg.id); err != nil {
		m.log.Error().Err(err).Msg("unexpected save confirmation")
		return m, m.flush()
	}
	return m, tea.Sequence(m.flush(), tea.Quit)
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
