package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/gardonyia/basket/internal/present"
	"github.com/gardonyia/basket/internal/search"
	"github.com/gardonyia/basket/internal/session"
)

// Dracula colors
var (
	foreground = lipgloss.Color("#f8f8f2")
	selection  = lipgloss.Color("#44475a")
	comment    = lipgloss.Color("#6272a4")
	cyan       = lipgloss.Color("#8be9fd")
	green      = lipgloss.Color("#50fa7b")
	orange     = lipgloss.Color("#ffb86c")
	purple     = lipgloss.Color("#bd93f9")
	red        = lipgloss.Color("#ff5555")
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(purple).
			Bold(true).
			Padding(0, 1)

	inputStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(comment).
			Padding(0, 1)

	itemStyle = lipgloss.NewStyle().
			Foreground(foreground)

	cursorStyle = lipgloss.NewStyle().
			Foreground(cyan).
			Background(selection).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(green)

	warningStyle = lipgloss.NewStyle().
			Foreground(orange)

	helpStyle = lipgloss.NewStyle().
			Foreground(comment)

	errorStyle = lipgloss.NewStyle().
			Foreground(red)
)

// Finder is the part of the finder service the TUI drives
type Finder interface {
	Search(ctx context.Context, query, date, league string) (*session.State, error)
	Select(ctx context.Context, state *session.State, idx int) (*session.State, error)
}

type stage int

const (
	stageInput stage = iota
	stageList
	stageDetail
)

type model struct {
	finder  Finder
	timeout time.Duration

	query    textinput.Model
	date     textinput.Model
	league   int
	focus    int
	viewport viewport.Model

	stage  stage
	state  *session.State
	cursor int
	busy   bool
	err    error
	width  int
	height int
}

type searchResultMsg struct {
	state *session.State
	err   error
}

type selectResultMsg struct {
	state *session.State
	err   error
}

func initialModel(f Finder, timeout time.Duration) model {
	query := textinput.New()
	query.Placeholder = "Team name (e.g. Partizan, Bayern, Szolnok, Falco)"
	query.Focus()
	query.Width = 50

	date := textinput.New()
	date.Placeholder = search.DateLayout
	date.SetValue(time.Now().Format(search.DateLayout))
	date.CharLimit = 10
	date.Width = 12

	return model{
		finder:   f,
		timeout:  timeout,
		query:    query,
		date:     date,
		viewport: viewport.New(80, 20),
	}
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.busy {
			return m, nil
		}
		switch m.stage {
		case stageInput:
			return m.updateInput(msg)
		case stageList:
			return m.updateList(msg)
		case stageDetail:
			return m.updateDetail(msg)
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = msg.Width
		m.viewport.Height = max(msg.Height-8, 5)

	case searchResultMsg:
		m.busy = false
		m.err = msg.err
		if msg.err == nil {
			m.state = msg.state
			m.cursor = 0
			m.stage = stageList
		}

	case selectResultMsg:
		m.busy = false
		m.err = msg.err
		if msg.state != nil {
			m.state = msg.state
		}
		if msg.err == nil {
			m.stage = stageDetail
			m.viewport.SetContent(m.renderDetail())
			m.viewport.GotoTop()
		}
	}

	return m, nil
}

func (m model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "tab", "shift+tab":
		m.focus = 1 - m.focus
		if m.focus == 0 {
			m.date.Blur()
			return m, m.query.Focus()
		}
		m.query.Blur()
		return m, m.date.Focus()
	case "ctrl+l":
		m.league = (m.league + 1) % len(search.Leagues)
		return m, nil
	case "enter":
		m.busy = true
		m.err = nil
		return m, m.doSearch(m.query.Value(), m.date.Value(), string(search.Leagues[m.league]))
	case "esc":
		m.query.SetValue("")
		m.err = nil
		return m, nil
	}

	var cmd tea.Cmd
	if m.focus == 0 {
		m.query, cmd = m.query.Update(msg)
	} else {
		m.date, cmd = m.date.Update(msg)
	}
	return m, cmd
}

func (m model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "esc", "/":
		m.stage = stageInput
		m.err = nil
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.state != nil && m.cursor < len(m.state.Candidates)-1 {
			m.cursor++
		}
	case "enter":
		if m.state == nil || m.state.Empty() {
			return m, nil
		}
		m.busy = true
		m.err = nil
		return m, m.doSelect(m.state.Clone(), m.cursor)
	}
	return m, nil
}

func (m model) updateDetail(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "esc", "backspace":
		m.stage = stageList
		return m, nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m model) doSearch(query, date, league string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
		defer cancel()

		state, err := m.finder.Search(ctx, query, date, league)
		return searchResultMsg{state: state, err: err}
	}
}

func (m model) doSelect(state *session.State, idx int) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
		defer cancel()

		state, err := m.finder.Select(ctx, state, idx)
		return selectResultMsg{state: state, err: err}
	}
}

func (m model) renderList() string {
	if m.state == nil {
		return ""
	}
	if m.state.Empty() {
		return errorStyle.Render(present.MsgNoMatches)
	}

	var sb strings.Builder
	sb.WriteString(successStyle.Render(present.CountLine(len(m.state.Candidates))))
	sb.WriteString("\n\n")
	for i, c := range m.state.Candidates {
		if i == m.cursor {
			sb.WriteString(cursorStyle.Render("> " + c.Label()))
		} else {
			sb.WriteString(itemStyle.Render("  " + c.Label()))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func (m model) renderDetail() string {
	var sb strings.Builder
	present.NewPrinter(&sb, present.FormatTable).Match(m.state)

	out := sb.String()
	if !present.ViewStats(m.state.Stats).Available {
		out = strings.Replace(out, present.MsgStatsUnavailable, warningStyle.Render(present.MsgStatsUnavailable), 1)
	}
	return out
}

func (m model) renderSources() string {
	if m.state == nil {
		return ""
	}
	lines := make([]string, 0, len(m.state.Sources))
	for _, s := range m.state.Sources {
		lines = append(lines, present.SourceLine(s))
	}
	return helpStyle.Render("Sources: " + strings.Join(lines, " · "))
}

func (m model) View() string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Render("🏀 Basketball match finder"))
	sb.WriteString("\n\n")

	switch m.stage {
	case stageInput:
		sb.WriteString(inputStyle.Render(m.query.View()))
		sb.WriteString(" ")
		sb.WriteString(inputStyle.Render(m.date.View()))
		sb.WriteString("\n")
		sb.WriteString(helpStyle.Render("League: " + search.Leagues[m.league].DisplayName()))
		sb.WriteString("\n\n")
	case stageList:
		sb.WriteString(m.renderList())
		sb.WriteString("\n")
		sb.WriteString(m.renderSources())
		sb.WriteString("\n")
	case stageDetail:
		sb.WriteString(m.viewport.View())
		sb.WriteString("\n")
	}

	if m.busy {
		sb.WriteString(helpStyle.Render("Searching..."))
		sb.WriteString("\n")
	}
	if m.err != nil {
		sb.WriteString(errorStyle.Render(present.ValidationMessage(m.err)))
		sb.WriteString("\n")
	}

	sb.WriteString("\n")
	sb.WriteString(helpStyle.Render(m.help()))

	return sb.String()
}

func (m model) help() string {
	switch m.stage {
	case stageList:
		return "↑/↓: move • Enter: show match • Esc: new search • q: quit"
	case stageDetail:
		return "↑/↓: scroll • Esc: back to list • q: quit"
	default:
		return "Enter: search • Tab: switch field • Ctrl+L: league • Esc: clear • Ctrl+C: quit"
	}
}

// Run starts the TUI application
func Run(f Finder, timeout time.Duration) error {
	p := tea.NewProgram(initialModel(f, timeout), tea.WithAltScreen())
	_, err := p.Run()
	if err != nil {
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}
