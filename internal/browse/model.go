// Package browse provides the Bubble Tea ranking browser.
package browse

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/toptens/internal/model"
	"github.com/verte-zerg/toptens/internal/stats"
)

const (
	tabOccupations = iota
	tabStates
)

const maxKeyWidth = 48

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
	headerStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	tableMutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#B8B8B8"))
)

// Model implements the Bubble Tea ranking browser.
type Model struct {
	source string
	report stats.Report

	tabs      []string
	activeTab int
	tables    []table.Model

	width  int
	height int
}

// NewModel constructs a browser over a ranked report read from source.
func NewModel(source string, report stats.Report) *Model {
	m := &Model{
		source: source,
		report: report,
		tabs:   []string{"Occupations", "States"},
	}
	m.tables = []table.Model{
		buildRankingTable("Occupation", report.Occupations, report.Total),
		buildRankingTable("State", report.States, report.Total),
	}
	m.tables[m.activeTab].Focus()
	return m
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
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.String() == "q" {
			return m, tea.Quit
		}
		switch msg.String() {
		case "left", "h":
			m.moveTab(-1)
			return m, tea.ClearScreen
		case "right", "l", "tab":
			m.moveTab(1)
			return m, tea.ClearScreen
		case "g", "home":
			m.tables[m.activeTab].GotoTop()
			return m, nil
		case "G", "end":
			m.tables[m.activeTab].GotoBottom()
			return m, nil
		default:
			var cmd tea.Cmd
			m.tables[m.activeTab], cmd = m.tables[m.activeTab].Update(msg)
			return m, cmd
		}
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	headerHeight, bodyHeight, footerHeight := m.layoutHeights()
	header := fitLines(m.renderHeader(), m.width, headerHeight)
	body := fitLines(m.renderBody(), m.width, bodyHeight)
	footer := fitLines(m.renderHelp(), m.width, footerHeight)
	return strings.Join([]string{header, body, footer}, "\n")
}

func (m *Model) layoutHeights() (headerHeight, bodyHeight, footerHeight int) {
	tabsHeight := lipgloss.Height(activeNavStyle.Render("X"))
	if tabsHeight < 1 {
		tabsHeight = 1
	}
	headerHeight = tabsHeight + 1
	footerHeight = 1
	bodyHeight = m.height - headerHeight - footerHeight
	if bodyHeight < 1 {
		bodyHeight = 1
	}
	return headerHeight, bodyHeight, footerHeight
}

func (m *Model) updateLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	_, bodyHeight, _ := m.layoutHeights()
	for i := range m.tables {
		m.tables[i].SetWidth(m.width)
		m.tables[i].SetHeight(maxInt(1, bodyHeight-1))
	}
}

func (m *Model) moveTab(delta int) {
	count := len(m.tabs)
	if count == 0 {
		return
	}
	next := m.activeTab + delta
	if next < 0 {
		next = count - 1
	}
	if next >= count {
		next = 0
	}
	m.tables[m.activeTab].Blur()
	m.activeTab = next
	m.tables[m.activeTab].Focus()
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

func (m *Model) renderHeader() string {
	summary := fmt.Sprintf("Source: %s  certified=%d  occupations=%d  states=%d",
		m.source, m.report.Total, len(m.report.Occupations), len(m.report.States))
	summary = truncateLine(summary, m.width)
	return padLines(m.renderTabs(), m.width) + "\n" + headerStyle.Render(summary)
}

func (m *Model) renderHelp() string {
	return headerStyle.Render("Nav: left/right  Scroll: up/down/pgup/pgdn  Top/Bottom: g/G  Quit: q")
}

func (m *Model) renderBody() string {
	if m.report.Total == 0 {
		return "No certified applications found."
	}
	ranked := m.report.Occupations
	if m.activeTab == tabStates {
		ranked = m.report.States
	}
	if len(ranked) == 0 {
		return "No entries."
	}
	return tableMutedStyle.Render(m.tables[m.activeTab].View())
}

func buildRankingTable(keyTitle string, ranked []model.Count, total int) table.Model {
	cols, rows := buildRankingData(keyTitle, ranked, total)
	t := table.New(
		table.WithColumns(cols),
		table.WithRows(rows),
		table.WithHeight(10),
	)
	t.SetStyles(rankingTableStyles())
	return t
}

func buildRankingData(keyTitle string, ranked []model.Count, total int) ([]table.Column, []table.Row) {
	keyWidth := runewidth.StringWidth(keyTitle)
	for _, c := range ranked {
		if w := runewidth.StringWidth(c.Key); w > keyWidth {
			keyWidth = w
		}
	}
	if keyWidth > maxKeyWidth {
		keyWidth = maxKeyWidth
	}
	columns := []table.Column{
		{Title: "#", Width: maxInt(1, len(strconv.Itoa(len(ranked))))},
		{Title: keyTitle, Width: keyWidth},
		{Title: "Certified", Width: 9},
		{Title: "Share", Width: 6},
	}
	rows := make([]table.Row, 0, len(ranked))
	for i, c := range ranked {
		pct, err := stats.Percentage(c.Count, total)
		if err != nil {
			pct = "-"
		}
		rows = append(rows, table.Row{
			strconv.Itoa(i + 1),
			runewidth.Truncate(c.Key, keyWidth, "…"),
			strconv.Itoa(c.Count),
			pct,
		})
	}
	return columns, rows
}

func rankingTableStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		Padding(0, 1).
		PaddingLeft(0)
	styles.Cell = styles.Cell.
		Padding(0, 1).
		PaddingLeft(0)
	styles.Selected = styles.Cell.
		Foreground(lipgloss.Color("#F0F0F0")).
		Bold(true)
	return styles
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func padLines(s string, width int) string {
	if width <= 0 || s == "" {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	return strings.Join(lines, "\n")
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

func truncateLine(s string, width int) string {
	if width <= 0 {
		return s
	}
	if runewidth.StringWidth(s) <= width {
		return s
	}
	return runewidth.Truncate(s, width, "...")
}
