// Package tui provides the Bubble Tea game entry interface.
package tui

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/tenpin/internal/frames"
	"github.com/verte-zerg/tenpin/internal/model"
	"github.com/verte-zerg/tenpin/internal/pins"
	"github.com/verte-zerg/tenpin/internal/scoring"
	statsPkg "github.com/verte-zerg/tenpin/internal/stats"
	"github.com/verte-zerg/tenpin/internal/store"
)

// Model implements the Bubble Tea scorecard entry UI.
type Model struct {
	config model.EntryConfig
	store  *store.Store
	now    func() time.Time

	entry    frames.Entry
	selected pins.Set
	status   string

	width  int
	height int

	lastScore int
	hasLast   bool
	allAvg    float64
	allGames  int
}

var (
	markStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	currentStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	pendingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	footerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	boxStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

// NewModel constructs an entry model. st may be nil, in which case games cannot be saved.
func NewModel(cfg model.EntryConfig, st *store.Store) *Model {
	m := &Model{config: cfg, store: st, now: time.Now}
	m.newGame()
	m.loadFooterStats()
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
		return m, nil
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyBackspace, tea.KeyDelete:
			m.undo()
			return m, nil
		case tea.KeyEnter:
			m.recordSelected()
			return m, nil
		case tea.KeyLeft:
			m.seek(-1)
			return m, nil
		case tea.KeyRight:
			m.seek(1)
			return m, nil
		case tea.KeyEnd:
			m.resume()
			return m, nil
		case tea.KeyRunes:
			for _, r := range msg.Runes {
				m.handleRune(r)
			}
			return m, nil
		default:
			return m, nil
		}
	default:
		return m, nil
	}
}

func (m *Model) handleRune(r rune) {
	m.status = ""
	switch r {
	case 's':
		m.save()
		return
	case 'n':
		m.newGame()
		m.status = "New game."
		return
	}
	if m.entry.Cursor().Done() {
		m.status = "Game complete: press s to save or n to start over."
		return
	}
	if m.entry.Mode() == model.EntryPins {
		m.handlePinRune(r)
		return
	}
	digit := m.entry.(frames.DigitEntry)
	next, ok := digit.Input(string(r))
	if !ok {
		m.status = fmt.Sprintf("%q is not allowed here.", r)
		return
	}
	m.entry = next
}

func (m *Model) handlePinRune(r rune) {
	pe := m.entry.(frames.PinEntry)
	switch {
	case r >= '1' && r <= '9':
		m.togglePin(pe, int(r-'0'))
	case r == '0':
		m.togglePin(pe, 10)
	case r == 'x' || r == 'X' || r == '/':
		m.selected = pe.Available()
		m.recordSelected()
	case r == '-':
		m.selected = 0
		m.recordSelected()
	default:
		m.status = fmt.Sprintf("%q is not a pin.", r)
	}
}

func (m *Model) togglePin(pe frames.PinEntry, p int) {
	if !pe.Available().Has(p) {
		m.status = fmt.Sprintf("Pin %d is already down.", p)
		return
	}
	m.selected = m.selected.Toggle(p)
}

func (m *Model) recordSelected() {
	pe, ok := m.entry.(frames.PinEntry)
	if !ok || pe.Cursor().Done() {
		return
	}
	next, ok := pe.Throw(m.selected.Pins()...)
	if !ok {
		m.status = "Throw rejected."
		return
	}
	m.entry = next
	m.selected = 0
}

func (m *Model) undo() {
	m.selected = 0
	next, ok := m.entry.Undo()
	if !ok {
		m.status = "Nothing to undo."
		return
	}
	m.entry = next
	m.status = ""
}

// seek moves the pin entry cursor one recorded throw back or forward so it can be thrown again.
func (m *Model) seek(step int) {
	pe, ok := m.entry.(frames.PinEntry)
	if !ok {
		m.status = "Corrections need pin entry."
		return
	}
	fs := pe.Frames()
	c := pe.Cursor()
	target := c
	if step < 0 {
		p, ok := frames.Prev(fs, c)
		if !ok {
			return
		}
		target = p
	} else {
		if c.Done() || !fs[c.Frame].Has(c.Throw) {
			return
		}
		target = frames.Next(fs, c)
	}
	next, ok := pe.Seek(target)
	if !ok {
		return
	}
	m.entry = next
	m.selected = 0
	m.status = ""
}

// resume returns the cursor to the first throw not yet recorded.
func (m *Model) resume() {
	pe, ok := m.entry.(frames.PinEntry)
	if !ok {
		return
	}
	m.entry = frames.ResumePinEntry(pe.Frames())
	m.selected = 0
	m.status = ""
}

func (m *Model) newGame() {
	m.selected = 0
	if m.config.Mode == model.EntryPins {
		m.entry = frames.NewPinEntry()
		return
	}
	m.entry = frames.NewDigitEntry()
}

func (m *Model) game() model.Game {
	g := model.Game{
		Date:     m.now(),
		Frames:   m.entry.Frames(),
		Practice: m.config.Practice,
		SeriesID: m.config.SeriesID,
		League:   m.config.League,
	}
	if m.config.Ball != "" {
		g.Balls = []string{m.config.Ball}
	}
	if m.config.Pattern != "" {
		g.Patterns = []string{m.config.Pattern}
	}
	return scoring.Finalize(g)
}

func (m *Model) save() {
	if !m.entry.Complete() {
		m.status = "Finish the game before saving."
		return
	}
	g := m.game()
	if m.store == nil {
		m.status = "No database configured."
		return
	}
	if _, err := m.store.InsertGame(context.Background(), g); err != nil {
		logErrf("failed to save game: %v\n", err)
		m.status = "Save failed."
		return
	}
	m.lastScore, m.hasLast = g.TotalScore, true
	m.allAvg = (m.allAvg*float64(m.allGames) + float64(g.TotalScore)) / float64(m.allGames+1)
	m.allGames++
	m.newGame()
	m.status = fmt.Sprintf("Saved %d.", g.TotalScore)
}

func (m *Model) loadFooterStats() {
	if m.store == nil {
		return
	}
	games, err := m.store.ListGames(context.Background(), model.Filter{})
	if err != nil {
		logErrf("failed to load game history: %v\n", err)
		return
	}
	if len(games) == 0 {
		return
	}
	s := statsPkg.Aggregate(games)
	m.allAvg, m.allGames = s.AverageScore, s.TotalGames
	scores := statsPkg.Scores(games)
	m.lastScore, m.hasLast = int(scores[len(scores)-1]), true
}

// View implements tea.Model.
func (m *Model) View() string {
	fs := m.entry.Frames()
	parts := []string{boxStyle.Render(renderScorecard(fs, m.entry.Cursor()))}
	if pe, ok := m.entry.(frames.PinEntry); ok && !pe.Cursor().Done() {
		parts = append(parts, renderRack(pe.Available(), m.selected))
	}
	parts = append(parts, m.renderHelp())
	if m.status != "" {
		parts = append(parts, errorStyle.Render(m.status))
	}
	content := lipgloss.JoinVertical(lipgloss.Center, parts...)
	if m.width == 0 || m.height == 0 {
		return content + "\n" + m.renderFooter()
	}
	body := lipgloss.Place(m.width, m.height-1, lipgloss.Center, lipgloss.Center, content)
	return body + "\n" + lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, m.renderFooter())
}

func (m *Model) renderHelp() string {
	if m.entry.Mode() == model.EntryPins {
		return pendingStyle.Render("1-9,0 toggle pins · enter throw · x all · - miss · ←/→ correct · end resume · ⌫ undo · s save · n new")
	}
	return pendingStyle.Render("0-9 x / - enter a throw · ⌫ undo · s save · n new")
}

func (m *Model) renderFooter() string {
	fs := m.entry.Frames()
	res := scoring.Calculate(fs)
	c := m.entry.Cursor()
	segments := []string{}
	if c.Done() {
		segments = append(segments, "Complete")
	} else {
		segments = append(segments, fmt.Sprintf("Frame %d", c.Frame+1))
	}
	segments = append(segments, fmt.Sprintf("Total %d · Max %d", res.Total, scoring.MaxScore(fs)))
	if m.hasLast {
		segments = append(segments, fmt.Sprintf("Last %d", m.lastScore))
	}
	if m.allGames > 0 {
		segments = append(segments, fmt.Sprintf("Average %.1f over %d games", m.allAvg, m.allGames))
	}
	return footerStyle.Render(strings.Join(segments, "  "))
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
