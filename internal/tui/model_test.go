package tui

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/napolitain/kingdom/internal/engine"
	"github.com/napolitain/kingdom/internal/models"
	"github.com/napolitain/kingdom/internal/session"
	"github.com/napolitain/kingdom/internal/store"
)

func newTestModel(t *testing.T) (Model, *session.Session, *engine.ManualClock) {
	t.Helper()
	clk := engine.NewManualClock(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s := session.New(engine.NewDefault(clk), store.NewLocal(filepath.Join(t.TempDir(), "k.sav")), logger)
	if _, err := s.NewGame(context.Background(), "Avalon", "Arthur"); err != nil {
		t.Fatal(err)
	}
	return New(context.Background(), s, time.Second, 5), s, clk
}

func press(m Model, keys ...string) Model {
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "up":
			msg = tea.KeyMsg{Type: tea.KeyUp}
		case "down":
			msg = tea.KeyMsg{Type: tea.KeyDown}
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		next, _ := m.Update(msg)
		m = next.(Model)
	}
	return m
}

func TestCursorStaysInRange(t *testing.T) {
	m, s, _ := newTestModel(t)
	m = press(m, "up")
	if m.Cursor() != 0 {
		t.Errorf("Expected cursor 0, got %d", m.Cursor())
	}

	n := len(s.State().Buildings)
	for i := 0; i < n+3; i++ {
		m = press(m, "down")
	}
	if m.Cursor() != n-1 {
		t.Errorf("Expected cursor %d, got %d", n-1, m.Cursor())
	}
}

func TestEnterBuildsSelected(t *testing.T) {
	m, s, _ := newTestModel(t)
	m = press(m, "down", "enter")

	state := s.State()
	second := state.Buildings[1]
	if second.Level != 1 || !second.UnderConstruction() {
		t.Errorf("Expected %s under construction at level 1, got %+v", second.ID, second)
	}
	if m.Notice().Level != session.Info {
		t.Errorf("Expected an info notice, got %+v", m.Notice())
	}

	m = press(m, "b")
	if m.Notice().Level != session.Warning {
		t.Errorf("Expected a warning for a second build, got %+v", m.Notice())
	}
}

func TestSaveKey(t *testing.T) {
	m, s, _ := newTestModel(t)
	m = press(m, "s")
	if m.Notice().Message != "Game saved" {
		t.Errorf("Expected save notice, got %+v", m.Notice())
	}
	if engine.CountActions(s.State().Actions, models.ActionGameSaved) != 1 {
		t.Error("Expected a GAME_SAVED entry")
	}
}

func TestTickMsgAdvancesAndReschedules(t *testing.T) {
	m, s, clk := newTestModel(t)
	gold := s.State().Resources.Gold

	clk.Advance(2 * time.Hour)
	_, cmd := m.Update(tickMsg(time.Now()))
	if cmd == nil {
		t.Error("Expected the next tick to be scheduled")
	}
	if s.State().Resources.Gold <= gold {
		t.Errorf("Expected gold to grow, got %d", s.State().Resources.Gold)
	}
}

func TestQuit(t *testing.T) {
	m, _, _ := newTestModel(t)
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatal("Expected a quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("Expected tea.QuitMsg")
	}
	if next.View() != "" {
		t.Error("Expected an empty view after quitting")
	}
}

func TestViewShowsKingdom(t *testing.T) {
	m, _, _ := newTestModel(t)
	m = press(m, "enter")
	view := m.View()
	for _, want := range []string{"Avalon", "Arthur", "Farm", "Gold", "Started building Farm", "Suggested next"} {
		if !strings.Contains(view, want) {
			t.Errorf("Expected view to contain %q", want)
		}
	}
}

func TestProgressBar(t *testing.T) {
	if got := ProgressBar(0.5, 4); got != "[██░░]" {
		t.Errorf("Expected half bar, got %s", got)
	}
	if got := ProgressBar(2, 2); got != "[██]" {
		t.Errorf("Expected full bar, got %s", got)
	}
	if got := ProgressBar(-1, 2); got != "[░░]" {
		t.Errorf("Expected empty bar, got %s", got)
	}
}

func TestFormatHelpers(t *testing.T) {
	if got := FormatName("lumber_mill"); got != "Lumber Mill" {
		t.Errorf("Expected Lumber Mill, got %s", got)
	}
	if got := FormatCosts(models.Costs{Gold: 50, Wood: 20}); got != "50 gold, 20 wood" {
		t.Errorf("Expected '50 gold, 20 wood', got %s", got)
	}
	if got := FormatCosts(models.Costs{}); got != "free" {
		t.Errorf("Expected free, got %s", got)
	}
}
