package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/mockexam/internal/model"
	"github.com/verte-zerg/mockexam/internal/session"
	"github.com/verte-zerg/mockexam/internal/timer"
)

const paletteColumns = 5

var (
	titleStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	mutedStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	clockStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	urgentClockStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F")).Bold(true)
	activeTabStyle   = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#F0F0F0")).
				Background(lipgloss.Color("#3A3A3A")).
				Bold(true).
				Padding(0, 1)
	inactiveTabStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#B0B0B0")).Padding(0, 1)
	promptStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	selectedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#52C41A")).Bold(true)
	optionStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#B8B8B8"))
	markedStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#B37FEB"))
	flashStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	errorStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	modalStyle       = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#C89A3A")).
				Padding(1, 2)
	paletteStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A")).
			Padding(0, 1)
)

var statusStyles = map[model.Status]lipgloss.Style{
	model.StatusNotVisited:     lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E")),
	model.StatusNotAnswered:    lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F")),
	model.StatusMarked:         lipgloss.NewStyle().Foreground(lipgloss.Color("#B37FEB")),
	model.StatusAnswered:       lipgloss.NewStyle().Foreground(lipgloss.Color("#52C41A")),
	model.StatusAnsweredMarked: lipgloss.NewStyle().Foreground(lipgloss.Color("#40A9FF")),
}

var statusOrder = []model.Status{
	model.StatusAnswered,
	model.StatusNotAnswered,
	model.StatusNotVisited,
	model.StatusMarked,
	model.StatusAnsweredMarked,
}

var statusLabels = map[model.Status]string{
	model.StatusNotVisited:     "Not visited",
	model.StatusNotAnswered:    "Not answered",
	model.StatusMarked:         "Marked",
	model.StatusAnswered:       "Answered",
	model.StatusAnsweredMarked: "Answered & marked",
}

// View implements tea.Model.
func (m *Model) View() string {
	v := m.sess.View()
	if dialog := m.renderDialog(v); dialog != "" {
		if m.width == 0 || m.height == 0 {
			return dialog
		}
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, dialog)
	}

	width := m.width
	if width <= 0 {
		width = 80
	}
	content := lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(v, width),
		m.renderSections(v),
		m.renderProgress(v),
		"",
		m.renderBody(v, width),
	)
	footer := m.renderFooter()
	if m.height < 3 {
		return content + "\n" + footer
	}
	bodyHeight := m.height - lipgloss.Height(footer)
	body := lipgloss.Place(width, maxInt(1, bodyHeight), lipgloss.Left, lipgloss.Top, content)
	return body + "\n" + footer
}

func (m *Model) renderHeader(v session.View, width int) string {
	title := titleStyle.Render(v.ExamName)
	style := clockStyle
	if m.sess.RemainingSeconds() < 60 {
		style = urgentClockStyle
	}
	right := []string{mutedStyle.Render(strings.ToUpper(string(v.Locale)))}
	if v.Fullscreen {
		right = append(right, mutedStyle.Render("fullscreen"))
	}
	right = append(right, style.Render("Time left "+v.OverallClock))
	rightText := strings.Join(right, "  ")
	gap := width - lipgloss.Width(title) - lipgloss.Width(rightText)
	if gap < 1 {
		gap = 1
	}
	return title + strings.Repeat(" ", gap) + rightText
}

func (m *Model) renderSections(v session.View) string {
	if len(v.Sections) == 0 {
		return ""
	}
	parts := make([]string, 0, len(v.Sections))
	for _, s := range v.Sections {
		label := s.Name
		if s.Clock != timer.Placeholder {
			label += " " + s.Clock
		}
		if s.Active {
			parts = append(parts, activeTabStyle.Render(label))
		} else {
			parts = append(parts, inactiveTabStyle.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m *Model) renderProgress(v session.View) string {
	return m.progress.ViewAs(v.Progress) + mutedStyle.Render(fmt.Sprintf("  %d/%d answered", v.Counts.Answered, v.Total))
}

func (m *Model) renderBody(v session.View, width int) string {
	palette := renderPalette(v)
	paletteWidth := lipgloss.Width(palette)
	if width < 60 {
		return lipgloss.JoinVertical(lipgloss.Left, renderQuestion(v, width), "", palette)
	}
	questionWidth := int(float64(width) * 0.70)
	if questionWidth > width-paletteWidth-2 {
		questionWidth = width - paletteWidth - 2
	}
	question := lipgloss.NewStyle().Width(questionWidth).Render(renderQuestion(v, questionWidth))
	return lipgloss.JoinHorizontal(lipgloss.Top, question, "  ", palette)
}

func renderQuestion(v session.View, width int) string {
	heading := fmt.Sprintf("Question %d of %d", v.Index+1, v.Total)
	if v.Section != "" {
		heading += " · " + v.Section
	}
	lines := []string{mutedStyle.Render(heading)}
	if v.Marked {
		lines[0] += "  " + markedStyle.Render("★ marked for review")
	}
	lines = append(lines, "")
	for _, line := range wrapText(v.Prompt, width) {
		lines = append(lines, promptStyle.Render(line))
	}
	lines = append(lines, "")
	for i, o := range v.Options {
		marker := "( )"
		style := optionStyle
		if o.Selected {
			marker = "(•)"
			style = selectedStyle
		}
		prefix := fmt.Sprintf("%s %d) ", marker, i+1)
		for _, line := range hangingIndent(prefix, o.Text, width) {
			lines = append(lines, style.Render(line))
		}
	}
	return strings.Join(lines, "\n")
}

func renderPalette(v session.View) string {
	var rows []string
	var row []string
	for i, status := range v.Statuses {
		cell := fmt.Sprintf("%3d", i+1)
		style := statusStyles[status]
		if i == v.Index {
			style = style.Underline(true).Bold(true)
		}
		row = append(row, style.Render(cell))
		if len(row) == paletteColumns {
			rows = append(rows, strings.Join(row, " "))
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, strings.Join(row, " "))
	}
	rows = append(rows, "")
	for _, status := range statusOrder {
		label := fmt.Sprintf("%s %d", statusLabels[status], v.Counts.ByStatus[status])
		rows = append(rows, statusStyles[status].Render("■ ")+mutedStyle.Render(label))
	}
	return paletteStyle.Render(strings.Join(rows, "\n"))
}

func (m *Model) renderFooter() string {
	helpView := m.help.View(m.keys)
	if m.flash == "" {
		return helpView
	}
	return flashStyle.Render(m.flash) + "\n" + helpView
}

func (m *Model) renderDialog(v session.View) string {
	switch {
	case m.saving:
		return modalStyle.Render("Saving your attempt...")
	case v.Err != nil:
		body := fmt.Sprintf("%s\n%s\n\n%s",
			errorStyle.Render("Could not save your attempt."),
			v.Err.Error(),
			mutedStyle.Render("r retry · esc keep working"))
		return modalStyle.Render(body)
	case v.Phase == model.PhaseTimeUp && v.Notice != nil:
		body := fmt.Sprintf("%s\nYou answered %d of %d questions.\n\n%s",
			titleStyle.Render("Time's up!"),
			v.Notice.Answered, v.Notice.Total,
			mutedStyle.Render("enter submit"))
		return modalStyle.Render(body)
	case v.ConfirmOpen:
		body := fmt.Sprintf("%s\nAnswered: %d  Marked: %d  Unattempted: %d\n\n%s",
			titleStyle.Render("Submit test?"),
			v.Counts.Answered, v.Counts.Marked, v.Counts.Unattempted,
			mutedStyle.Render("y submit · esc keep working"))
		return modalStyle.Render(body)
	case m.jumping:
		body := fmt.Sprintf("%s\n\n%s",
			m.jump.View(),
			mutedStyle.Render(fmt.Sprintf("1-%d, enter to go, esc to cancel", v.Total)))
		return modalStyle.Render(body)
	}
	return ""
}
