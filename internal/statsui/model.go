// Package statsui provides the Bubble Tea stats interface.
package statsui

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/tenpin/internal/model"
	"github.com/verte-zerg/tenpin/internal/offload"
	"github.com/verte-zerg/tenpin/internal/stats"
	"github.com/verte-zerg/tenpin/internal/store"
)

const (
	tabOverview = iota
	tabLeaves
	tabEquipment
	tabSeries
)

const (
	plotHeight = 10
)

const (
	fieldSince = iota
	fieldLeague
	fieldBall
	fieldPattern
	fieldLast
	fieldWindow
	fieldPractice
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
	cardTitleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	cardValueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	tableMutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#B8B8B8"))
)

var errNoStore = errors.New("no database configured")

// Model implements the Bubble Tea stats UI.
type Model struct {
	store  *store.Store
	client *offload.Client
	cfg    model.StatsConfig
	now    func() time.Time

	report stats.Report
	errMsg string

	tabs        []string
	activeTab   int
	viewports   []viewport.Model
	leaveTable  table.Model
	leaveLayout tableLayout

	width  int
	height int

	filterMode   bool
	filterInputs []textinput.Model
	filterIndex  int
	filterError  string
}

type tableLayout struct {
	width  int
	height int
}

// NewModel constructs a stats UI model. Reports are computed through client when it is not nil.
func NewModel(st *store.Store, client *offload.Client, cfg model.StatsConfig) *Model {
	m := &Model{
		store:  st,
		client: client,
		cfg:    cfg,
		now:    time.Now,
		tabs:   []string{"Overview", "Leaves", "Equipment", "Series"},
	}
	m.initInputs()
	m.leaveTable = buildLeaveTable(nil, 0, 1)
	m.initViewports()
	m.refreshReport()
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
		m.renderTabContents()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.filterMode {
			return m.updateFilter(msg)
		}
		if msg.String() == "q" {
			return m, tea.Quit
		}
		if m.activeTab == tabLeaves {
			m.leaveTable.Focus()
		} else {
			m.leaveTable.Blur()
		}
		switch msg.String() {
		case "left", "h":
			m.moveTab(-1)
			return m, tea.ClearScreen
		case "right", "l":
			m.moveTab(1)
			return m, tea.ClearScreen
		case "=":
			m.cfg.CurveWindow = nextCurveWindow(m.cfg.CurveWindow)
			m.refreshReport()
			m.updateLayout()
			return m, nil
		case "-":
			m.cfg.CurveWindow = prevCurveWindow(m.cfg.CurveWindow)
			m.refreshReport()
			m.updateLayout()
			return m, nil
		case "p":
			m.cfg.Filter.ExcludePractice = !m.cfg.Filter.ExcludePractice
			m.refreshReport()
			return m, nil
		case "/":
			return m.startFilter()
		case "g", "home":
			if m.activeTab == tabLeaves {
				m.leaveTable.GotoTop()
			} else {
				m.viewports[m.activeTab].GotoTop()
			}
			return m, nil
		case "G", "end":
			if m.activeTab == tabLeaves {
				m.leaveTable.GotoBottom()
			} else {
				m.viewports[m.activeTab].GotoBottom()
			}
			return m, nil
		default:
			if m.activeTab == tabLeaves {
				var cmd tea.Cmd
				m.leaveTable, cmd = m.leaveTable.Update(msg)
				return m, cmd
			}
			vp := m.viewports[m.activeTab]
			var cmd tea.Cmd
			vp, cmd = vp.Update(msg)
			m.viewports[m.activeTab] = vp
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
	body := fitLines(m.renderBody(bodyHeight), m.width, bodyHeight)
	footer := fitLines(m.renderFooter(), m.width, footerHeight)
	return strings.Join([]string{header, body, footer}, "\n")
}

func (m *Model) initViewports() {
	m.viewports = make([]viewport.Model, len(m.tabs))
	for i := range m.viewports {
		m.viewports[i] = viewport.New(0, 0)
	}
}

func (m *Model) initInputs() {
	m.filterInputs = []textinput.Model{
		fieldSince:    newFilterInput("Since (YYYY-MM-DD): "),
		fieldLeague:   newFilterInput("League: "),
		fieldBall:     newFilterInput("Ball: "),
		fieldPattern:  newFilterInput("Pattern: "),
		fieldLast:     newFilterInput("Last: "),
		fieldWindow:   newFilterInput("Curve window: "),
		fieldPractice: newFilterInput("Exclude practice (y/n): "),
	}
	m.setInputsFromConfig()
}

func (m *Model) layoutHeights() (headerHeight, bodyHeight, footerHeight int) {
	tabsHeight := lipgloss.Height(activeNavStyle.Render("X"))
	if tabsHeight < 1 {
		tabsHeight = 1
	}
	headerHeight = tabsHeight + 1
	footerHeight = 1
	if !m.filterMode && m.errMsg != "" {
		footerHeight++
	}
	bodyHeight = m.height - headerHeight - footerHeight
	if bodyHeight < 1 {
		bodyHeight = 1
	}
	return headerHeight, bodyHeight, footerHeight
}

func newFilterInput(prompt string) textinput.Model {
	input := textinput.New()
	input.Prompt = prompt
	input.CharLimit = 0
	input.Cursor.SetMode(cursor.CursorBlink)
	return input
}

func (m *Model) setInputsFromConfig() {
	if len(m.filterInputs) == 0 {
		return
	}
	f := m.cfg.Filter
	if f.Since != nil {
		m.filterInputs[fieldSince].SetValue(f.Since.Format("2006-01-02"))
	} else {
		m.filterInputs[fieldSince].SetValue("")
	}
	m.filterInputs[fieldLeague].SetValue(f.League)
	m.filterInputs[fieldBall].SetValue(f.Ball)
	m.filterInputs[fieldPattern].SetValue(f.Pattern)
	if f.Last > 0 {
		m.filterInputs[fieldLast].SetValue(strconv.Itoa(f.Last))
	} else {
		m.filterInputs[fieldLast].SetValue("")
	}
	m.filterInputs[fieldWindow].SetValue(strconv.Itoa(m.cfg.CurveWindow))
	if f.ExcludePractice {
		m.filterInputs[fieldPractice].SetValue("y")
	} else {
		m.filterInputs[fieldPractice].SetValue("n")
	}
}

func (m *Model) updateLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	_, vpHeight, _ := m.layoutHeights()
	for i := range m.viewports {
		m.viewports[i].Width = m.width
		m.viewports[i].Height = vpHeight
	}
	m.setLeaveTableSize(m.width, vpHeight)
	for i := range m.filterInputs {
		promptWidth := lipgloss.Width(m.filterInputs[i].Prompt)
		m.filterInputs[i].Width = maxInt(10, m.width-promptWidth-2)
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
	m.activeTab = next
	if m.activeTab == tabLeaves {
		m.leaveTable.Focus()
	} else {
		m.leaveTable.Blur()
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

func (m *Model) renderHeader() string {
	tabs := padLines(m.renderTabs(), m.width)
	filters := padLines(m.renderFilterSummary(), m.width)
	return tabs + "\n" + filters
}

func orAny(s string) string {
	if strings.TrimSpace(s) == "" {
		return "any"
	}
	return s
}

func (m *Model) renderFilterSummary() string {
	f := m.cfg.Filter
	since := "any"
	if f.Since != nil {
		since = f.Since.Format("2006-01-02")
	}
	last := "all"
	if f.Last > 0 {
		last = strconv.Itoa(f.Last)
	}
	practice := "incl"
	if f.ExcludePractice {
		practice = "excl"
	}
	summary := fmt.Sprintf("Filter: since=%s  league=%s  ball=%s  pattern=%s  last=%s  practice=%s  window=%d",
		since, orAny(f.League), orAny(f.Ball), orAny(f.Pattern), last, practice, m.cfg.CurveWindow)
	summary = truncateLine(summary, m.width)
	return headerStyle.Render(summary)
}

func (m *Model) renderHelp() string {
	return headerStyle.Render("Nav: left/right  Scroll: up/down/pgup/pgdn  Window: -/=  Practice: p  Filter: /  Quit: q")
}

func (m *Model) renderFilterHelp() string {
	return headerStyle.Render("tab/shift+tab: next field  enter: apply  esc: cancel")
}

func (m *Model) renderFooter() string {
	if m.filterMode {
		return m.renderFilterHelp()
	}
	if m.errMsg != "" {
		return m.renderHelp() + "\n" + errorStyle.Render(m.errMsg)
	}
	return m.renderHelp()
}

func (m *Model) renderFilterForm() string {
	lines := []string{"Filter (enter to apply, esc to cancel)"}
	for _, input := range m.filterInputs {
		lines = append(lines, input.View())
	}
	if m.filterError != "" {
		lines = append(lines, errorStyle.Render(m.filterError))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderBody(height int) string {
	if m.filterMode {
		return fitLines(m.renderFilterForm(), m.width, height)
	}
	if m.activeTab == tabLeaves && m.errMsg == "" {
		if len(m.report.Leaves) == 0 {
			return fitLines("No pin-tracked leaves found.", m.width, height)
		}
		view := tableMutedStyle.Render(m.leaveTable.View())
		return fitLines(view, m.width, height)
	}
	return fitLines(m.viewports[m.activeTab].View(), m.width, height)
}

func (m *Model) loadReport() (stats.Report, error) {
	if m.store == nil {
		return stats.Report{}, errNoStore
	}
	ctx := context.Background()
	in, err := stats.LoadInput(ctx, m.store, m.cfg, m.now())
	if err != nil {
		return stats.Report{}, err
	}
	if m.client == nil {
		return stats.Compute(in), nil
	}
	res := m.client.ComputeStatsWithFallback(ctx, offload.ComputeStatsRequest{Input: in})
	return res.Report, nil
}

func (m *Model) refreshReport() {
	report, err := m.loadReport()
	if err != nil {
		m.errMsg = err.Error()
		for i := range m.viewports {
			m.viewports[i].SetContent("Failed to load stats.")
		}
		return
	}
	m.errMsg = ""
	m.report = report
	width := m.width
	if width <= 0 {
		width = 80
	}
	_, bodyHeight, _ := m.layoutHeights()
	m.applyLeaveTable(width, bodyHeight)
	m.renderTabContents()
}

func (m *Model) renderTabContents() {
	if len(m.viewports) == 0 {
		return
	}
	if m.errMsg != "" {
		for i := range m.viewports {
			m.viewports[i].SetContent("Failed to load stats.")
		}
		return
	}
	width := m.width
	if width <= 0 {
		width = 80
	}
	m.viewports[tabOverview].SetContent(renderOverview(m.report, width))
	m.viewports[tabEquipment].SetContent(renderEquipment(m.report))
	m.viewports[tabSeries].SetContent(renderSeries(m.report.Stats))
}

func renderOverview(r stats.Report, width int) string {
	if len(r.Games) == 0 {
		return "No games found."
	}
	parts := []string{renderSummaryCards(r.Stats, width)}
	var buf bytes.Buffer
	if err := stats.RenderComparison(&buf, r.Comparison); err != nil {
		return fmt.Sprintf("Failed to render comparison: %v", err)
	}
	if err := stats.RenderSummary(&buf, r.Stats); err != nil {
		return fmt.Sprintf("Failed to render summary: %v", err)
	}
	parts = append(parts, strings.TrimRight(buf.String(), "\n"))
	buf.Reset()
	if err := stats.RenderScoreCurve(&buf, r.Games, r.CurveWindow, width, plotHeight, true); err != nil {
		return fmt.Sprintf("Failed to render score curve: %v", err)
	}
	parts = append(parts, strings.TrimRight(buf.String(), "\n"))
	return strings.TrimRight(strings.Join(parts, "\n\n"), "\n")
}

func renderSummaryCards(s stats.Stats, width int) string {
	cards := []string{
		metricCard("Games", strconv.Itoa(s.TotalGames)),
		metricCard("Average", fmt.Sprintf("%.1f", s.AverageScore)),
		metricCard("High", strconv.Itoa(s.HighGame)),
		metricCard("Strike", fmt.Sprintf("%.1f%%", s.StrikePct)),
		metricCard("Spare", fmt.Sprintf("%.1f%%", s.SparePct)),
		metricCard("Clean", fmt.Sprintf("%.1f%%", s.CleanPct)),
	}
	if width < 80 {
		return strings.Join(cards, "\n")
	}
	row1 := lipgloss.JoinHorizontal(lipgloss.Top, cards[0], cards[1], cards[2])
	row2 := lipgloss.JoinHorizontal(lipgloss.Top, cards[3], cards[4], cards[5])
	return lipgloss.JoinVertical(lipgloss.Left, row1, row2)
}

func metricCard(label, value string) string {
	content := fmt.Sprintf("%s\n%s", cardTitleStyle.Render(label), cardValueStyle.Render(value))
	return cardStyle.Render(content)
}

func renderEquipment(r stats.Report) string {
	if len(r.Games) == 0 {
		return "No games found."
	}
	var buf bytes.Buffer
	if err := stats.RenderEquipment(&buf, "Balls", r.Balls); err != nil {
		return fmt.Sprintf("Failed to render balls: %v", err)
	}
	if err := stats.RenderEquipment(&buf, "Patterns", r.Patterns); err != nil {
		return fmt.Sprintf("Failed to render patterns: %v", err)
	}
	return strings.TrimRight(buf.String(), "\n")
}

func renderSeries(s stats.Stats) string {
	if s.TotalGames == 0 {
		return "No games found."
	}
	var buf bytes.Buffer
	if err := stats.RenderSeries(&buf, s); err != nil {
		return fmt.Sprintf("Failed to render series: %v", err)
	}
	if err := stats.RenderSpareTable(&buf, s); err != nil {
		return fmt.Sprintf("Failed to render spares: %v", err)
	}
	return strings.TrimRight(buf.String(), "\n")
}

func buildLeaveTable(leaves []stats.LeaveStats, width, height int) table.Model {
	cols, rows := buildLeaveTableData(leaves)
	t := table.New(
		table.WithColumns(cols),
		table.WithRows(rows),
		table.WithHeight(maxInt(1, height-1)),
	)
	t.SetWidth(width)
	t.SetStyles(leaveTableStyles())
	return t
}

func buildLeaveTableData(leaves []stats.LeaveStats) ([]table.Column, []table.Row) {
	columns := []table.Column{
		{Title: "Leave", Width: 14},
		{Title: "Seen", Width: 6},
		{Title: "Made", Width: 6},
		{Title: "Rate", Width: 7},
		{Title: "Score", Width: 6},
		{Title: "Split", Width: 10},
	}
	rows := make([]table.Row, 0, len(leaves))
	for _, l := range leaves {
		rows = append(rows, table.Row{
			l.Pins.String(),
			strconv.Itoa(l.Occurrences),
			strconv.Itoa(l.Pickups),
			fmt.Sprintf("%.1f%%", l.PickupPct()),
			fmt.Sprintf("%.2f", l.Score()),
			l.SplitKind(),
		})
	}
	return columns, rows
}

func (m *Model) applyLeaveTable(width, height int) {
	cols, rows := buildLeaveTableData(m.report.Leaves)
	m.leaveTable.SetColumns(cols)
	m.leaveTable.SetRows(rows)
	m.leaveLayout.width = 0
	m.setLeaveTableSize(width, height)
}

func (m *Model) setLeaveTableSize(width, height int) {
	viewportHeight := maxInt(1, height-1)
	if m.leaveLayout.width == width && m.leaveLayout.height == viewportHeight {
		return
	}
	m.leaveLayout.width = width
	m.leaveLayout.height = viewportHeight
	m.leaveTable.SetWidth(width)
	m.leaveTable.SetHeight(viewportHeight)
}

func leaveTableStyles() table.Styles {
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

func (m *Model) startFilter() (tea.Model, tea.Cmd) {
	m.filterMode = true
	m.filterError = ""
	m.setInputsFromConfig()
	return m, m.setFilterIndex(0)
}

func (m *Model) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.filterMode = false
		m.filterError = ""
		return m, nil
	case tea.KeyEnter:
		cfg, err := parseFilterInputs(m.filterInputs)
		if err != nil {
			m.filterError = err.Error()
			return m, nil
		}
		m.cfg = cfg
		m.filterMode = false
		m.filterError = ""
		m.refreshReport()
		m.updateLayout()
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
	if count == 0 {
		return nil
	}
	if idx < 0 {
		idx = count - 1
	}
	if idx >= count {
		idx = 0
	}
	m.filterIndex = idx
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

func parseFilterInputs(inputs []textinput.Model) (model.StatsConfig, error) {
	value := func(i int) string { return strings.TrimSpace(inputs[i].Value()) }

	var cfg model.StatsConfig
	if s := value(fieldSince); s != "" {
		parsed, err := time.ParseInLocation("2006-01-02", s, time.Local)
		if err != nil {
			return cfg, fmt.Errorf("invalid since date (expected YYYY-MM-DD)")
		}
		cfg.Filter.Since = &parsed
	}
	cfg.Filter.League = value(fieldLeague)
	cfg.Filter.Ball = value(fieldBall)
	cfg.Filter.Pattern = value(fieldPattern)

	if s := value(fieldLast); s != "" {
		parsed, err := strconv.Atoi(s)
		if err != nil || parsed < 0 {
			return cfg, fmt.Errorf("invalid last value (use 0 or positive integer)")
		}
		cfg.Filter.Last = parsed
	}

	cfg.CurveWindow = 1
	if s := value(fieldWindow); s != "" {
		parsed, err := strconv.Atoi(s)
		if err != nil {
			return cfg, fmt.Errorf("invalid curve window (use integer)")
		}
		if parsed < 1 {
			return cfg, fmt.Errorf("invalid curve window (use integer >= 1)")
		}
		cfg.CurveWindow = parsed
	}

	switch strings.ToLower(value(fieldPractice)) {
	case "", "n", "no":
	case "y", "yes":
		cfg.Filter.ExcludePractice = true
	default:
		return cfg, fmt.Errorf("invalid exclude practice value (use y or n)")
	}
	return cfg, nil
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func nextCurveWindow(n int) int {
	if n < 5 {
		return 5
	}
	if n%5 == 0 {
		return n + 5
	}
	return ((n / 5) + 1) * 5
}

func prevCurveWindow(n int) int {
	if n <= 5 {
		return 1
	}
	if n%5 == 0 {
		return n - 5
	}
	return (n / 5) * 5
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
	return runewidth.Truncate(s, width, "...")
}
