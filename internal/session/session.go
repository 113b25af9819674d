// Package session owns the authoritative game state for a driver. It
// serialises core operations, persists after each state change and turns
// persistence failures into notices instead of rolling the state back.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/napolitain/kingdom/internal/engine"
	"github.com/napolitain/kingdom/internal/models"
	"github.com/napolitain/kingdom/internal/store"
)

var ErrNoGame = errors.New("no kingdom has been founded")

// Level grades a notice for display
type Level int

const (
	Info Level = iota
	Warning
	Error
)

func (l Level) String() string {
	switch l {
	case Info:
		return "info"
	case Warning:
		return "warning"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}

// Notice is a non-blocking message for the player. The zero Notice means
// there is nothing to report.
type Notice struct {
	Level   Level
	Message string
}

func (n Notice) Empty() bool { return n.Message == "" }

type Session struct {
	mu     sync.Mutex
	engine *engine.Engine
	store  store.Store
	state  models.GameState
	log    *slog.Logger
}

func New(e *engine.Engine, s store.Store, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{engine: e, store: s, log: logger}
}

// Load adopts the saved kingdom without reconciling it. It reports false
// when there is no saved kingdom.
func (s *Session) Load(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	loaded, err := s.store.Load(ctx)
	if err != nil {
		return false, fmt.Errorf("load %s store: %w", s.store.Kind(), err)
	}
	if loaded == nil {
		s.log.Info("no saved kingdom", "backend", s.store.Kind())
		return false, nil
	}

	s.state = s.engine.Record(*loaded, models.ActionGameLoaded,
		fmt.Sprintf("Welcome back to %s", loaded.Kingdom.Name))
	s.log.Info("kingdom loaded", "kingdom", loaded.Kingdom.Name, "id", loaded.Kingdom.ID, "backend", s.store.Kind())
	return true, nil
}

// Start loads the saved kingdom, reconciles it once and saves it back
func (s *Session) Start(ctx context.Context) (bool, Notice, error) {
	ok, err := s.Load(ctx)
	if err != nil || !ok {
		return ok, Notice{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	res := s.engine.Tick(s.state)
	s.state = res.State
	s.logTick(res)
	return true, s.persist(ctx), nil
}

// NewGame founds a kingdom, replacing any current one, and saves it
func (s *Session) NewGame(ctx context.Context, name, ruler string) (Notice, error) {
	state, err := s.engine.Found(name, ruler)
	if err != nil {
		return Notice{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
	s.log.Info("kingdom founded", "kingdom", state.Kingdom.Name, "ruler", state.Kingdom.Ruler)
	return s.persist(ctx), nil
}

// Build starts construction of id. Rejections are returned in the result,
// not as a notice.
func (s *Session) Build(ctx context.Context, id models.BuildingID) (engine.BuildResult, Notice) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.state.GameStarted {
		return engine.BuildResult{Outcome: engine.NotFound, State: s.state.Clone(), Err: ErrNoGame}, Notice{}
	}

	// Completed constructions must be visible before the next build.
	s.state = s.engine.UpdateGameState(s.state)

	res := s.engine.StartBuilding(s.state, id)
	if res.Outcome == engine.NotFound {
		s.log.Warn("unknown building", "building", id)
		return res, Notice{Level: Warning, Message: fmt.Sprintf("Unknown building %q", id)}
	}

	s.state = res.State
	if res.Outcome == engine.Built {
		s.log.Info("construction started", "building", id, "level", res.Building.Level,
			"completes_at", *res.Building.CompletionTime)
	} else {
		s.log.Info("construction rejected", "building", id, "err", res.Err)
	}
	return res, s.persist(ctx)
}

// Tick reconciles elapsed time and saves when anything changed
func (s *Session) Tick(ctx context.Context) (engine.TickResult, Notice) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res := s.engine.Tick(s.state)
	if !res.Applied {
		return res, Notice{}
	}
	s.state = res.State
	s.logTick(res)
	return res, s.persist(ctx)
}

// Save writes the current state. GAME_SAVED is logged only when the write
// succeeds.
func (s *Session) Save(ctx context.Context) Notice {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.state.GameStarted {
		return Notice{Level: Warning, Message: ErrNoGame.Error()}
	}
	saved, err := s.write(ctx, s.engine.Record(s.state, models.ActionGameSaved, "Game saved"))
	if err != nil {
		return failure(err)
	}
	s.state = saved
	s.log.Info("game saved", "kingdom", saved.Kingdom.Name, "backend", s.store.Kind())
	return Notice{Level: Info, Message: "Game saved"}
}

// State returns a copy of the current state
func (s *Session) State() models.GameState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Started reports whether a kingdom is loaded or founded
func (s *Session) Started() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.GameStarted
}

// RecentActions returns the n newest log entries, newest first
func (s *Session) RecentActions(n int) []models.GameAction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return engine.Recent(s.state.Actions, n)
}

// Production returns the per-hour yield of the current state
func (s *Session) Production() models.Yield {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.Production(s.state)
}

// Now returns the engine clock in milliseconds
func (s *Session) Now() int64 {
	return s.engine.Now()
}

func (s *Session) Close() error {
	return s.store.Close()
}

// persist saves s.state; callers hold mu. The in-memory state is kept on
// failure.
func (s *Session) persist(ctx context.Context) Notice {
	saved, err := s.write(ctx, s.state)
	if err != nil {
		return failure(err)
	}
	s.state = saved
	return Notice{}
}

// write stores state and returns it carrying the id the store assigned
func (s *Session) write(ctx context.Context, state models.GameState) (models.GameState, error) {
	id, err := s.store.Save(ctx, state)
	if err != nil {
		s.log.Error("save failed", "backend", s.store.Kind(), "err", err)
		return state, err
	}
	if id != "" && state.Kingdom.ID != id {
		state.Kingdom.ID = id
		s.log.Info("kingdom registered", "id", id, "backend", s.store.Kind())
	}
	return state, nil
}

func failure(err error) Notice {
	return Notice{Level: Error, Message: fmt.Sprintf("Could not save: %v", err)}
}

func (s *Session) logTick(res engine.TickResult) {
	if !res.Applied {
		return
	}
	s.log.Debug("tick",
		"hours", res.Hours,
		"multiplier", res.Multiplier,
		"gold", res.Produced.Gold,
		"food", res.Produced.Food,
		"wood", res.Produced.Wood,
		"stone", res.Produced.Stone,
	)
	for _, id := range res.Completed {
		s.log.Info("construction completed", "building", id)
	}
}
