// Package tui is the interactive terminal driver. It ticks the session on
// a real-time interval and lets the player start constructions.
package tui

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/napolitain/kingdom/internal/engine"
	"github.com/napolitain/kingdom/internal/session"
)

type tickMsg time.Time

// Model is the bubbletea model wrapping a started session
type Model struct {
	ctx      context.Context
	session  *session.Session
	interval time.Duration
	window   int

	cursor   int
	notice   session.Notice
	width    int
	quitting bool
}

func New(ctx context.Context, s *session.Session, interval time.Duration, window int) Model {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	if window <= 0 {
		window = 10
	}
	return Model{ctx: ctx, session: s, interval: interval, window: window}
}

// Run starts the program and blocks until the player quits
func Run(ctx context.Context, s *session.Session, interval time.Duration, window int) error {
	p := tea.NewProgram(New(ctx, s, interval, window), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Init ticks once immediately, then on the interval
func (m Model) Init() tea.Cmd {
	return func() tea.Msg { return tickMsg(time.Now()) }
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		_, n := m.session.Tick(m.ctx)
		if !n.Empty() {
			m.notice = n
		}
		return m, m.tick()

	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	count := len(m.session.State().Buildings)

	switch msg.String() {
	case "ctrl+c", "q", "esc":
		m.quitting = true
		return m, tea.Quit

	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}

	case "down", "j":
		if m.cursor < count-1 {
			m.cursor++
		}

	case "enter", "b":
		if count == 0 {
			return m, nil
		}
		id := m.session.State().Buildings[m.cursor].ID
		res, n := m.session.Build(m.ctx, id)
		m.notice = buildNotice(res)
		if !n.Empty() {
			m.notice = n
		}

	case "s":
		m.notice = m.session.Save(m.ctx)
	}
	return m, nil
}

func buildNotice(res engine.BuildResult) session.Notice {
	switch res.Outcome {
	case engine.Built:
		return session.Notice{
			Level:   session.Info,
			Message: fmt.Sprintf("Started %s (level %d)", res.Building.Name, res.Building.Level),
		}
	case engine.Rejected:
		return session.Notice{
			Level:   session.Warning,
			Message: fmt.Sprintf("Cannot build %s: %v", res.Building.Name, res.Err),
		}
	default:
		return session.Notice{Level: session.Warning, Message: fmt.Sprintf("%v", res.Err)}
	}
}

// Cursor returns the index of the selected building
func (m Model) Cursor() int { return m.cursor }

// Notice returns the last message shown to the player
func (m Model) Notice() session.Notice { return m.notice }
