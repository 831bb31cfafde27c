// Package resultui provides the Bubble Tea result browser.
package resultui

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/mockexam/internal/model"
	"github.com/verte-zerg/mockexam/internal/results"
)

const (
	tabOverview = iota
	tabSections
	tabSolutions
	tabHistory
)

var (
	activeNavStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A"))
	inactiveNavStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#B0B0B0")).
				Padding(0, 1).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#4A4A4A"))
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	cardStyle   = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
	cardTitleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	cardValueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	modalStyle     = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A")).
			Padding(1, 2)
)

// Data is the attempt being reviewed.
type Data struct {
	Exam      model.ExamDefinition
	Questions []model.Question
	Attempt   model.StoredAttempt
	Locale    model.Locale
}

// Model implements the Bubble Tea result UI.
type Model struct {
	data      Data
	breakdown results.Breakdown
	lister    results.AttemptLister

	locale  model.Locale
	filter  model.HistoryFilter
	window  int
	history results.History
	errMsg  string

	tabs         []string
	activeTab    int
	viewports    []viewport.Model
	sectionTable table.Model

	width  int
	height int

	filterMode   bool
	filterInputs []textinput.Model
	filterIndex  int
	filterError  string

	retake bool
}

// NewModel constructs a result UI model. lister may be nil, in which case
// the history tab stays empty.
func NewModel(data Data, lister results.AttemptLister) *Model {
	m := &Model{
		data:      data,
		breakdown: results.Build(data.Exam, data.Questions, data.Attempt.AttemptResult),
		lister:    lister,
		locale:    data.Locale,
		filter:    model.HistoryFilter{ExamID: data.Exam.ID},
		window:    3,
		tabs:      []string{"Overview", "Sections", "Solutions", "History"},
	}
	if m.locale == "" {
		m.locale = data.Attempt.Locale
	}
	m.viewports = make([]viewport.Model, len(m.tabs))
	for i := range m.viewports {
		m.viewports[i] = viewport.New(0, 0)
	}
	m.sectionTable = buildSectionTable(m.breakdown.Sections, 80, 10)
	m.filterInputs = []textinput.Model{
		newFilterInput("Since (YYYY-MM-DD): "),
		newFilterInput("Last: "),
	}
	m.refreshHistory()
	m.renderTabContents()
	return m
}

// Retake reports whether the user asked to sit the exam again.
func (m *Model) Retake() bool {
	return m.retake
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		m.renderTabContents()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.filterMode {
			return m.updateFilter(msg)
		}
		switch msg.String() {
		case "q":
			return m, tea.Quit
		case "R":
			m.retake = true
			return m, tea.Quit
		case "left", "h":
			m.moveTab(-1)
			return m, tea.ClearScreen
		case "right", "l", "tab":
			m.moveTab(1)
			return m, tea.ClearScreen
		case "L":
			m.locale = m.locale.Other()
			m.renderTabContents()
			return m, nil
		case "=":
			m.window++
			m.renderTabContents()
			return m, nil
		case "-":
			if m.window > 1 {
				m.window--
			}
			m.renderTabContents()
			return m, nil
		case "/":
			if m.activeTab == tabHistory {
				return m.startFilter()
			}
			return m, nil
		case "g", "home":
			if m.activeTab == tabSections {
				m.sectionTable.GotoTop()
			} else {
				m.viewports[m.activeTab].GotoTop()
			}
			return m, nil
		case "G", "end":
			if m.activeTab == tabSections {
				m.sectionTable.GotoBottom()
			} else {
				m.viewports[m.activeTab].GotoBottom()
			}
			return m, nil
		}
		if m.activeTab == tabSections {
			var cmd tea.Cmd
			m.sectionTable, cmd = m.sectionTable.Update(msg)
			return m, cmd
		}
		var cmd tea.Cmd
		m.viewports[m.activeTab], cmd = m.viewports[m.activeTab].Update(msg)
		return m, cmd
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	headerHeight, bodyHeight, footerHeight := m.layoutHeights()
	header := fitLines(m.renderTabs(), m.width, headerHeight)
	var body string
	switch {
	case m.filterMode:
		body = m.renderFilterForm()
	case m.activeTab == tabSections:
		body = m.sectionTable.View()
	default:
		body = m.viewports[m.activeTab].View()
	}
	body = fitLines(body, m.width, bodyHeight)
	footer := fitLines(m.renderFooter(), m.width, footerHeight)
	return strings.Join([]string{header, body, footer}, "\n")
}

func (m *Model) layoutHeights() (headerHeight, bodyHeight, footerHeight int) {
	headerHeight = maxInt(1, lipgloss.Height(activeNavStyle.Render("X")))
	footerHeight = 1
	if m.errMsg != "" {
		footerHeight++
	}
	bodyHeight = maxInt(1, m.height-headerHeight-footerHeight)
	return headerHeight, bodyHeight, footerHeight
}

func (m *Model) updateLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	_, bodyHeight, _ := m.layoutHeights()
	for i := range m.viewports {
		m.viewports[i].Width = m.width
		m.viewports[i].Height = bodyHeight
	}
	m.sectionTable.SetWidth(m.width)
	m.sectionTable.SetHeight(maxInt(1, bodyHeight-1))
	for i := range m.filterInputs {
		promptWidth := lipgloss.Width(m.filterInputs[i].Prompt)
		m.filterInputs[i].Width = maxInt(10, m.width-promptWidth-2)
	}
}

func (m *Model) moveTab(delta int) {
	count := len(m.tabs)
	m.activeTab = ((m.activeTab+delta)%count + count) % count
	if m.activeTab == tabSections {
		m.sectionTable.Focus()
	} else {
		m.sectionTable.Blur()
	}
}

func (m *Model) renderTabs() string {
	parts := make([]string, 0, len(m.tabs))
	for i, tab := range m.tabs {
		if i == m.activeTab {
			parts = append(parts, activeNavStyle.Render(tab))
		} else {
			parts = append(parts, inactiveNavStyle.Render(tab))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m *Model) renderFooter() string {
	help := "Nav: left/right  Scroll: up/down/pgup/pgdn  Retake: R  Quit: q"
	switch m.activeTab {
	case tabSolutions:
		help = "Nav: left/right  Scroll: up/down  Language: L  Retake: R  Quit: q"
	case tabHistory:
		help = "Nav: left/right  Trend window: -/=  Filter: /  Retake: R  Quit: q"
	}
	if m.filterMode {
		help = "tab/shift+tab: next field  enter: apply  esc: cancel"
	}
	out := headerStyle.Render(help)
	if m.errMsg != "" {
		out += "\n" + errorStyle.Render(m.errMsg)
	}
	return out
}

func (m *Model) refreshHistory() {
	if m.lister == nil {
		return
	}
	h, err := results.BuildHistory(context.Background(), m.lister, m.filter)
	if err != nil {
		m.errMsg = err.Error()
		return
	}
	m.errMsg = ""
	m.history = h
}

func (m *Model) renderTabContents() {
	width := m.width
	if width <= 0 {
		width = 80
	}
	m.viewports[tabOverview].SetContent(m.renderOverview(width))
	m.viewports[tabSolutions].SetContent(m.renderSolutions())
	m.viewports[tabHistory].SetContent(m.renderHistory())
}

func (m *Model) renderOverview(width int) string {
	a := m.data.Attempt
	b := m.breakdown
	cards := []string{
		metricCard("Score", fmt.Sprintf("%.2f / %.2f", a.Score, a.TotalMarks)),
		metricCard("Percentage", fmt.Sprintf("%.0f%%", b.Percentage)),
		metricCard("Time", fmt.Sprintf("%d / %d min", a.ElapsedMinutes, m.data.Exam.DurationMinutes)),
		metricCard("Correct", strconv.Itoa(b.Correct)),
		metricCard("Incorrect", strconv.Itoa(b.Incorrect)),
		metricCard("Unattempted", strconv.Itoa(b.Unattempted)),
	}
	var grid string
	if width < 80 {
		grid = strings.Join(cards, "\n")
	} else {
		row1 := lipgloss.JoinHorizontal(lipgloss.Top, cards[0], cards[1], cards[2])
		row2 := lipgloss.JoinHorizontal(lipgloss.Top, cards[3], cards[4], cards[5])
		grid = lipgloss.JoinVertical(lipgloss.Left, row1, row2)
	}
	var buf bytes.Buffer
	if err := results.RenderSummary(&buf, m.data.Exam, a, b); err != nil {
		return fmt.Sprintf("Failed to render summary: %v", err)
	}
	return strings.TrimRight(grid+"\n\n"+buf.String(), "\n")
}

func (m *Model) renderSolutions() string {
	var buf bytes.Buffer
	if err := results.RenderSolutions(&buf, m.data.Questions, m.data.Attempt.AttemptResult, m.locale); err != nil {
		return fmt.Sprintf("Failed to render solutions: %v", err)
	}
	return strings.TrimRight(buf.String(), "\n")
}

func (m *Model) renderHistory() string {
	if m.lister == nil {
		return "History is not available."
	}
	since := "any"
	if m.filter.Since != nil {
		since = m.filter.Since.Format("2006-01-02")
	}
	last := "all"
	if m.filter.Last > 0 {
		last = strconv.Itoa(m.filter.Last)
	}
	header := headerStyle.Render(fmt.Sprintf("Exam: %s  since=%s  last=%s  window=%d", m.filter.ExamID, since, last, m.window))
	var buf bytes.Buffer
	if err := results.RenderHistory(&buf, m.history, m.window); err != nil {
		return fmt.Sprintf("Failed to render history: %v", err)
	}
	if len(m.history.Percentages) > 1 {
		width := m.width
		if width <= 0 {
			width = 80
		}
		buf.WriteString("\n")
		if err := results.RenderTrendChart(&buf, m.history, m.window, results.ChartWidthFor(width), 8); err != nil {
			return fmt.Sprintf("Failed to render chart: %v", err)
		}
	}
	return strings.TrimRight(header+"\n\n"+buf.String(), "\n")
}

func metricCard(label, value string) string {
	content := fmt.Sprintf("%s\n%s", cardTitleStyle.Render(label), cardValueStyle.Render(value))
	return cardStyle.Render(content)
}

func buildSectionTable(sections []results.SectionPerformance, width, height int) table.Model {
	columns := []table.Column{
		{Title: "Section", Width: 34},
		{Title: "Total", Width: 5},
		{Title: "Correct", Width: 7},
		{Title: "Incorrect", Width: 9},
		{Title: "Skipped", Width: 7},
		{Title: "Marks", Width: 11},
		{Title: "Score", Width: 6},
	}
	rows := make([]table.Row, 0, len(sections))
	for _, s := range sections {
		rows = append(rows, table.Row{
			s.Name,
			strconv.Itoa(s.Total),
			strconv.Itoa(s.Correct),
			strconv.Itoa(s.Incorrect),
			strconv.Itoa(s.Unattempted),
			fmt.Sprintf("%.1f/%.1f", s.Marks, s.TotalMarks),
			fmt.Sprintf("%.0f%%", s.Percentage()),
		})
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithHeight(maxInt(1, height-1)),
	)
	t.SetWidth(width)
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true)
	styles.Selected = styles.Cell.
		Foreground(lipgloss.Color("#F0F0F0")).
		Bold(true)
	t.SetStyles(styles)
	return t
}

func newFilterInput(prompt string) textinput.Model {
	input := textinput.New()
	input.Prompt = prompt
	input.CharLimit = 0
	return input
}

func (m *Model) startFilter() (tea.Model, tea.Cmd) {
	m.filterMode = true
	m.filterError = ""
	if m.filter.Since != nil {
		m.filterInputs[0].SetValue(m.filter.Since.Format("2006-01-02"))
	} else {
		m.filterInputs[0].SetValue("")
	}
	if m.filter.Last > 0 {
		m.filterInputs[1].SetValue(strconv.Itoa(m.filter.Last))
	} else {
		m.filterInputs[1].SetValue("")
	}
	return m, m.setFilterIndex(0)
}

func (m *Model) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.filterMode = false
		m.filterError = ""
		return m, nil
	case tea.KeyEnter:
		if err := m.applyFilter(); err != nil {
			m.filterError = err.Error()
			return m, nil
		}
		m.filterMode = false
		m.filterError = ""
		m.refreshHistory()
		m.renderTabContents()
		return m, nil
	case tea.KeyTab:
		return m, m.setFilterIndex(m.filterIndex + 1)
	case tea.KeyShiftTab:
		return m, m.setFilterIndex(m.filterIndex - 1)
	}
	var cmd tea.Cmd
	m.filterInputs[m.filterIndex], cmd = m.filterInputs[m.filterIndex].Update(msg)
	return m, cmd
}

func (m *Model) setFilterIndex(idx int) tea.Cmd {
	count := len(m.filterInputs)
	m.filterIndex = ((idx % count) + count) % count
	var cmd tea.Cmd
	for i := range m.filterInputs {
		if i == m.filterIndex {
			cmd = m.filterInputs[i].Focus()
		} else {
			m.filterInputs[i].Blur()
		}
	}
	return cmd
}

func (m *Model) applyFilter() error {
	var since *time.Time
	if v := strings.TrimSpace(m.filterInputs[0].Value()); v != "" {
		parsed, err := time.ParseInLocation("2006-01-02", v, time.Local)
		if err != nil {
			return fmt.Errorf("invalid since date (expected YYYY-MM-DD)")
		}
		since = &parsed
	}
	last := 0
	if v := strings.TrimSpace(m.filterInputs[1].Value()); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 0 {
			return fmt.Errorf("invalid last value (use 0 or positive integer)")
		}
		last = parsed
	}
	m.filter.Since = since
	m.filter.Last = last
	return nil
}

func (m *Model) renderFilterForm() string {
	lines := []string{"History filter (enter to apply, esc to cancel)"}
	for _, input := range m.filterInputs {
		lines = append(lines, input.View())
	}
	if m.filterError != "" {
		lines = append(lines, errorStyle.Render(m.filterError))
	}
	return modalStyle.Render(strings.Join(lines, "\n"))
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func padLine(line string, width int) string {
	lineWidth := lipgloss.Width(line)
	if lineWidth < width {
		return line + strings.Repeat(" ", width-lineWidth)
	}
	return line
}

func fitLines(s string, width, height int) string {
	if width <= 0 || height <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}
	return strings.Join(lines, "\n")
}
