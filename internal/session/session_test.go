package session

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/napolitain/kingdom/internal/engine"
	"github.com/napolitain/kingdom/internal/models"
	"github.com/napolitain/kingdom/internal/store"
)

// memStore is an in-memory store whose saves can be made to fail
type memStore struct {
	saved *models.GameState
	saves int
	fail  error
}

func (m *memStore) Save(_ context.Context, state models.GameState) (string, error) {
	if m.fail != nil {
		return "", m.fail
	}
	m.saves++
	c := state.Clone()
	if c.Kingdom.ID == "" {
		c.Kingdom.ID = "kingdom-1"
	}
	m.saved = &c
	return c.Kingdom.ID, nil
}

func (m *memStore) Load(context.Context) (*models.GameState, error) {
	if m.saved == nil {
		return nil, nil
	}
	c := m.saved.Clone()
	return &c, nil
}

func (m *memStore) Kind() string { return "memory" }
func (m *memStore) Close() error { return nil }

func newTestSession(t *testing.T, st store.Store) (*Session, *engine.ManualClock) {
	t.Helper()
	clk := engine.NewManualClock(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(engine.NewDefault(clk), st, logger), clk
}

func TestNewGameSavesAndAssignsID(t *testing.T) {
	st := &memStore{}
	s, _ := newTestSession(t, st)

	n, err := s.NewGame(context.Background(), "Avalon", "Arthur")
	if err != nil {
		t.Fatalf("NewGame failed: %v", err)
	}
	if !n.Empty() {
		t.Errorf("Expected no notice, got %+v", n)
	}
	if st.saves != 1 {
		t.Errorf("Expected 1 save, got %d", st.saves)
	}
	if s.State().Kingdom.ID != "kingdom-1" {
		t.Errorf("Expected the store id to be adopted, got %q", s.State().Kingdom.ID)
	}
}

func TestNewGameRejectsEmptyName(t *testing.T) {
	s, _ := newTestSession(t, &memStore{})
	if _, err := s.NewGame(context.Background(), "", "Arthur"); !errors.Is(err, engine.ErrInvalidName) {
		t.Errorf("Expected ErrInvalidName, got %v", err)
	}
}

func TestStartWithoutSave(t *testing.T) {
	s, _ := newTestSession(t, &memStore{})
	ok, n, err := s.Start(context.Background())
	if err != nil || ok || !n.Empty() {
		t.Errorf("Expected no game, got %v %+v %v", ok, n, err)
	}
	if s.Started() {
		t.Error("Expected session not started")
	}
}

func TestStartReconcilesSavedGame(t *testing.T) {
	st := &memStore{}
	s, clk := newTestSession(t, st)
	ctx := context.Background()
	if _, err := s.NewGame(ctx, "Avalon", "Arthur"); err != nil {
		t.Fatal(err)
	}
	gold := s.State().Resources.Gold

	clk.Advance(2 * time.Hour)
	restarted := New(s.engine, st, s.log)
	ok, _, err := restarted.Start(ctx)
	if err != nil || !ok {
		t.Fatalf("Expected the saved game to load, got %v %v", ok, err)
	}

	state := restarted.State()
	if state.Resources.Gold != gold+10 {
		t.Errorf("Expected gold %d after 2h, got %d", gold+10, state.Resources.Gold)
	}
	if engine.CountActions(state.Actions, models.ActionGameLoaded) != 1 {
		t.Error("Expected a GAME_LOADED entry")
	}
	if st.saved.Resources.Gold != state.Resources.Gold {
		t.Error("Expected the reconciled state to be saved")
	}
}

func TestBuildPersists(t *testing.T) {
	st := &memStore{}
	s, _ := newTestSession(t, st)
	ctx := context.Background()
	if _, err := s.NewGame(ctx, "Avalon", "Arthur"); err != nil {
		t.Fatal(err)
	}

	res, n := s.Build(ctx, "farm")
	if res.Outcome != engine.Built || !n.Empty() {
		t.Fatalf("Expected Built with no notice, got %v %+v", res.Outcome, n)
	}
	if st.saves != 2 {
		t.Errorf("Expected 2 saves, got %d", st.saves)
	}
	b, _ := st.saved.Building("farm")
	if b.Level != 1 {
		t.Errorf("Expected saved farm at level 1, got %d", b.Level)
	}
}

func TestBuildUnknownDoesNotSave(t *testing.T) {
	st := &memStore{}
	s, _ := newTestSession(t, st)
	ctx := context.Background()
	if _, err := s.NewGame(ctx, "Avalon", "Arthur"); err != nil {
		t.Fatal(err)
	}

	res, n := s.Build(ctx, "castle")
	if res.Outcome != engine.NotFound || n.Level != Warning {
		t.Errorf("Expected NotFound with a warning, got %v %+v", res.Outcome, n)
	}
	if st.saves != 1 {
		t.Errorf("Expected no extra save, got %d", st.saves)
	}
}

func TestBuildWithoutGame(t *testing.T) {
	s, _ := newTestSession(t, &memStore{})
	res, _ := s.Build(context.Background(), "farm")
	if !errors.Is(res.Err, ErrNoGame) {
		t.Errorf("Expected ErrNoGame, got %v", res.Err)
	}
}

func TestBuildCompletesDueConstructionFirst(t *testing.T) {
	s, clk := newTestSession(t, &memStore{})
	ctx := context.Background()
	if _, err := s.NewGame(ctx, "Avalon", "Arthur"); err != nil {
		t.Fatal(err)
	}
	first, _ := s.Build(ctx, "farm")
	clk.Advance(time.Duration(first.Building.ConstructionTimeMinutes+1) * time.Minute)

	res, _ := s.Build(ctx, "farm")
	if res.Outcome != engine.Built || res.Building.Level != 2 {
		t.Errorf("Expected the upgrade to start, got %v (%v)", res.Outcome, res.Err)
	}
}

func TestSaveFailureKeepsState(t *testing.T) {
	st := &memStore{}
	s, clk := newTestSession(t, st)
	ctx := context.Background()
	if _, err := s.NewGame(ctx, "Avalon", "Arthur"); err != nil {
		t.Fatal(err)
	}

	st.fail = errors.New("disk full")
	res, n := s.Build(ctx, "farm")
	if res.Outcome != engine.Built {
		t.Fatalf("Expected Built, got %v", res.Outcome)
	}
	if n.Level != Error {
		t.Errorf("Expected an error notice, got %+v", n)
	}
	state := s.State()
	if b, _ := state.Building("farm"); b.Level != 1 {
		t.Errorf("Expected the build to stay applied, got level %d", b.Level)
	}

	clk.Advance(2 * time.Hour)
	tick, n := s.Tick(ctx)
	if !tick.Applied || n.Level != Error {
		t.Errorf("Expected an applied tick with an error notice, got %v %+v", tick.Applied, n)
	}

	before := len(s.State().Actions)
	if n := s.Save(ctx); n.Level != Error {
		t.Errorf("Expected an error notice, got %+v", n)
	}
	if engine.CountActions(s.State().Actions, models.ActionGameSaved) != 0 || len(s.State().Actions) != before {
		t.Error("Expected no GAME_SAVED entry after a failed save")
	}

	st.fail = nil
	if n := s.Save(ctx); n.Level != Info {
		t.Errorf("Expected an info notice, got %+v", n)
	}
	if engine.CountActions(s.State().Actions, models.ActionGameSaved) != 1 {
		t.Error("Expected one GAME_SAVED entry")
	}
	if engine.CountActions(st.saved.Actions, models.ActionGameSaved) != 1 {
		t.Error("Expected the saved blob to carry GAME_SAVED")
	}
}

func TestTickDebouncedDoesNotSave(t *testing.T) {
	st := &memStore{}
	s, clk := newTestSession(t, st)
	ctx := context.Background()
	if _, err := s.NewGame(ctx, "Avalon", "Arthur"); err != nil {
		t.Fatal(err)
	}

	clk.Advance(time.Minute)
	res, _ := s.Tick(ctx)
	if res.Applied || st.saves != 1 {
		t.Errorf("Expected a suppressed tick with no save, got applied=%v saves=%d", res.Applied, st.saves)
	}
}

func TestRecentActions(t *testing.T) {
	s, _ := newTestSession(t, &memStore{})
	ctx := context.Background()
	if _, err := s.NewGame(ctx, "Avalon", "Arthur"); err != nil {
		t.Fatal(err)
	}
	s.Build(ctx, "farm")
	s.Build(ctx, "farm")

	got := s.RecentActions(2)
	if len(got) != 2 || got[0].Type != models.ActionBuildFailed || got[1].Type != models.ActionBuildStarted {
		t.Errorf("Expected BUILD_FAILED then BUILD_STARTED, got %+v", got)
	}
}

func TestSessionWithLocalStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kingdom.sav")
	s, clk := newTestSession(t, store.NewLocal(path))
	ctx := context.Background()
	if _, err := s.NewGame(ctx, "Avalon", "Arthur"); err != nil {
		t.Fatal(err)
	}
	s.Build(ctx, "farm")

	clk.Advance(time.Hour)
	again := New(s.engine, store.NewLocal(path), s.log)
	ok, n, err := again.Start(ctx)
	if err != nil || !ok || !n.Empty() {
		t.Fatalf("Expected the local save to load, got %v %+v %v", ok, n, err)
	}
	state := again.State()
	b, _ := state.Building("farm")
	if !b.Completed || b.Level != 1 {
		t.Errorf("Expected the farm completed on start, got %+v", b)
	}
}

func TestLoadDoesNotTick(t *testing.T) {
	st := &memStore{}
	s, clk := newTestSession(t, st)
	ctx := context.Background()
	if _, err := s.NewGame(ctx, "Avalon", "Arthur"); err != nil {
		t.Fatal(err)
	}
	gold := s.State().Resources.Gold

	clk.Advance(2 * time.Hour)
	again := New(s.engine, st, s.log)
	ok, err := again.Load(ctx)
	if err != nil || !ok {
		t.Fatalf("Expected the saved game to load, got %v %v", ok, err)
	}
	if again.State().Resources.Gold != gold {
		t.Errorf("Expected gold untouched by Load, got %d", again.State().Resources.Gold)
	}

	res, _ := again.Tick(ctx)
	if !res.Applied || res.Produced.Gold != 10 {
		t.Errorf("Expected the tick to produce 10 gold, got %+v", res.Produced)
	}
}
