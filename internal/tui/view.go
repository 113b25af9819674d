package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/napolitain/kingdom/internal/advisor"
	"github.com/napolitain/kingdom/internal/engine"
	"github.com/napolitain/kingdom/internal/models"
	"github.com/napolitain/kingdom/internal/session"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("220"))
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	panelStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)

	noticeStyles = map[session.Level]lipgloss.Style{
		session.Info:    lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		session.Warning: lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		session.Error:   lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
	}
)

const barWidth = 20

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	state := m.session.State()
	now := m.session.Now()

	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("👑 %s, ruled by %s", state.Kingdom.Name, state.Kingdom.Ruler)))
	b.WriteString(dimStyle.Render(fmt.Sprintf("  (day %.1f)", state.Kingdom.Age)))
	b.WriteString("\n\n")

	left := panelStyle.Render(m.resourcesView(state) + "\n\n" + m.buildingsView(state, now))
	right := panelStyle.Render(m.actionsView())
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, left, " ", right))
	b.WriteString("\n")

	if !m.notice.Empty() {
		b.WriteString(noticeStyles[m.notice.Level].Render(m.notice.Message))
		b.WriteString("\n")
	}
	if r, ok := advisor.Next(state, m.session.Production()); ok {
		b.WriteString(dimStyle.Render(fmt.Sprintf("💡 Suggested next: %s (level %d)", r.Name, r.ToLevel)))
		b.WriteString("\n")
	}
	b.WriteString(dimStyle.Render("↑/↓ select • enter/b build • s save • q quit"))
	return b.String()
}

func (m Model) resourcesView(state models.GameState) string {
	yield := m.session.Production()
	var b strings.Builder
	b.WriteString(headerStyle.Render("Resources"))
	b.WriteString("\n")
	for _, rt := range models.AllResourceTypes() {
		line := fmt.Sprintf("%-11s %8d", FormatName(string(rt)), state.Resources.Get(rt))
		if rate := yield.Get(rt); rate != 0 {
			line += dimStyle.Render(fmt.Sprintf("  %+.0f/h", rate))
		}
		b.WriteString(line + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m Model) buildingsView(state models.GameState, now int64) string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Buildings"))
	b.WriteString("\n")
	for i, bld := range state.Buildings {
		cursor := "  "
		name := fmt.Sprintf("%-14s", bld.Name)
		if i == m.cursor {
			cursor = "▸ "
			name = selectedStyle.Render(name)
		}
		b.WriteString(fmt.Sprintf("%s%s Lv%-2d %s  %s\n", cursor, name, bld.Level,
			ProgressBar(bld.Progress(now), barWidth), status(bld, now)))
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m Model) actionsView() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Recent events"))
	b.WriteString("\n")
	for _, a := range m.session.RecentActions(m.window) {
		b.WriteString(dimStyle.Render(engine.FromMillis(a.Timestamp).Format("15:04")))
		b.WriteString(" " + a.Message + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func status(b models.Building, now int64) string {
	switch {
	case b.UnderConstruction():
		left := (*b.CompletionTime - now) / engine.MillisPerMinute
		if left < 0 {
			left = 0
		}
		return fmt.Sprintf("building, %dm left", left)
	case b.Level == 0:
		return dimStyle.Render(fmt.Sprintf("cost %s", FormatCosts(b.Cost)))
	default:
		return "ready"
	}
}

// ProgressBar renders fraction (0..1) as a fixed-width bar
func ProgressBar(fraction float64, width int) string {
	if fraction < 0 {
		fraction = 0
	}
	if fraction > 1 {
		fraction = 1
	}
	filled := int(fraction * float64(width))
	return "[" + strings.Repeat("█", filled) + strings.Repeat("░", width-filled) + "]"
}

// FormatCosts renders the present cost fields like "50 gold, 20 wood"
func FormatCosts(c models.Costs) string {
	if c.IsZero() {
		return "free"
	}
	var parts []string
	c.Each(func(rt models.ResourceType, v int64) {
		parts = append(parts, fmt.Sprintf("%d %s", v, rt))
	})
	return strings.Join(parts, ", ")
}

// FormatName turns ids like "lumber_mill" into "Lumber Mill"
func FormatName(name string) string {
	name = strings.ReplaceAll(name, "_", " ")
	words := strings.Fields(name)
	for i, w := range words {
		if len(w) > 0 {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}
