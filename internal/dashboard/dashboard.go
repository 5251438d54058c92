// Package dashboard renders a terminal status view of the running scene.
package dashboard

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ayusman/yuletide/internal/app"
	"github.com/ayusman/yuletide/internal/gesture"
	"github.com/ayusman/yuletide/internal/journal"
	"github.com/ayusman/yuletide/internal/scene"
)

const (
	refreshInterval = 200 * time.Millisecond
	journalTail     = 6
	barWidth        = 30
)

// Source is what the dashboard reads and controls.
type Source interface {
	Status() app.Status
	Journal() *journal.Journal
	SetEnabled(enabled bool)
}

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// card is one gesture legend entry.
type card struct {
	icon    string
	label   string
	gesture gesture.Gesture
	state   scene.State
}

var cards = []card{
	{"✊", "Fist", gesture.Fist, scene.Tree},
	{"🖐", "Open Hand", gesture.OpenPalm, scene.Scatter},
	{"🤏", "Pinch", gesture.Pinch, scene.Zoom},
}

// Model is the bubbletea model of the dashboard.
type Model struct {
	source  Source
	status  app.Status
	entries []journal.Entry
}

// New creates a dashboard over source.
func New(source Source) Model {
	m := Model{source: source}
	m.refresh()
	return m
}

func (m *Model) refresh() {
	m.status = m.source.Status()
	entries := m.source.Journal().Entries(0)
	if len(entries) > journalTail {
		entries = entries[len(entries)-journalTail:]
	}
	m.entries = entries
}

func (m Model) Init() tea.Cmd {
	return tick()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case " ", "p":
			m.source.SetEnabled(!m.status.Enabled)
			m.refresh()
		}
	case tickMsg:
		m.refresh()
		return m, tick()
	}
	return m, nil
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(styleTitle.Render("🎄 Yuletide"))
	b.WriteString("  ")
	b.WriteString(styleBadge.Render(gestureLabel(m.status.Gesture)))
	b.WriteString("\n\n")

	if m.status.Loading {
		b.WriteString(progressBar(m.status.Progress))
		b.WriteString("\n\n")
		for _, e := range m.entries {
			b.WriteString(renderEntry(e))
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(styleDim.Render("q quit"))
		return b.String()
	}

	b.WriteString(styleDim.Render("Mode  "))
	b.WriteString(styleValue.Render(m.status.State.String()))
	if !m.status.Enabled {
		b.WriteString(styleError.Render("  (paused)"))
	}
	b.WriteString("\n")
	b.WriteString(styleDim.Render(fmt.Sprintf("Hand  %s   Ornaments %d   Photos %d   Frame %d",
		handLabel(m.status.HandSeen), m.status.Ornaments, m.status.Photos, m.status.Frame)))
	b.WriteString("\n\n")

	rendered := make([]string, len(cards))
	for i, c := range cards {
		style := styleCard
		if c.state == m.status.State {
			style = styleCardActive
		}
		rendered[i] = style.Render(fmt.Sprintf("%s %s\n→ %s", c.icon, c.label, c.state))
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, rendered...))
	b.WriteString("\n\n")
	b.WriteString(styleDim.Render("space pause/resume  q quit"))

	return b.String()
}

func gestureLabel(g gesture.Gesture) string {
	for _, c := range cards {
		if c.gesture == g {
			return c.icon + " " + c.label
		}
	}
	return "No gesture"
}

func handLabel(seen bool) string {
	if seen {
		return "tracked"
	}
	return "none"
}

func progressBar(p int) string {
	filled := barWidth * p / 100
	return styleBarFull.Render(strings.Repeat("█", filled)) +
		styleBarEmpty.Render(strings.Repeat("░", barWidth-filled)) +
		styleDim.Render(fmt.Sprintf(" %3d%%", p))
}

func renderEntry(e journal.Entry) string {
	style := styleInfo
	switch e.Level {
	case journal.Error:
		style = styleError
	case journal.Success:
		style = styleSuccess
	}
	return styleDim.Render(e.Clock()+" ") + style.Render(e.Message)
}

// Run shows the dashboard until the user quits.
func Run(source Source) error {
	_, err := tea.NewProgram(New(source), tea.WithAltScreen()).Run()
	return err
}
