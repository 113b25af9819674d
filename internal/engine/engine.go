// Package engine is the kingdom simulation core: production aggregation,
// the construction transaction and the tick engine that reconciles elapsed
// wall-clock time into simulated progress.
//
// Every operation takes a models.GameState and returns a new one; the input
// is never mutated, so callers can keep, compare or replay old states.
package engine

import (
	"errors"
	"fmt"
	"strings"

	"github.com/napolitain/kingdom/internal/models"
)

// ErrInvalidName is returned when founding a kingdom without a name or ruler
var ErrInvalidName = errors.New("kingdom name and ruler are required")

// Engine applies the game rules using an injected clock
type Engine struct {
	clock   Clock
	rules   Rules
	catalog models.Catalog
}

// New creates an engine. A nil clock uses the system clock.
func New(clock Clock, rules Rules, catalog models.Catalog) *Engine {
	if clock == nil {
		clock = RealClock{}
	}
	return &Engine{clock: clock, rules: rules, catalog: catalog}
}

// NewDefault creates an engine with the default rules and catalog
func NewDefault(clock Clock) *Engine {
	return New(clock, DefaultRules(), models.DefaultCatalog())
}

// Now returns the engine's current time in milliseconds since epoch
func (e *Engine) Now() int64 {
	return Millis(e.clock.Now())
}

// Rules returns the rules the engine applies
func (e *Engine) Rules() Rules {
	return e.rules
}

// Catalog returns the building catalog used to found kingdoms
func (e *Engine) Catalog() models.Catalog {
	return e.catalog
}

// Found creates the state of a new kingdom: starting resources, the whole
// catalog at level 0 and a KINGDOM_FOUNDED entry.
func (e *Engine) Found(name, ruler string) (models.GameState, error) {
	name = strings.TrimSpace(name)
	ruler = strings.TrimSpace(ruler)
	if name == "" || ruler == "" {
		return models.GameState{}, ErrInvalidName
	}

	now := e.Now()
	state := models.GameState{
		Kingdom: models.Kingdom{
			Name:        name,
			Ruler:       ruler,
			LastUpdated: now,
			FoundedAt:   now,
		},
		Resources:   e.rules.Starting,
		Buildings:   e.catalog.Instantiate(),
		Actions:     []models.GameAction{},
		GameStarted: true,
	}
	state.Actions = AppendAction(state.Actions, models.GameAction{
		Type:      models.ActionKingdomFounded,
		Message:   fmt.Sprintf("The kingdom of %s was founded by %s", name, ruler),
		Timestamp: now,
	})
	return state, nil
}

// Record returns a copy of state with one more log entry stamped now
func (e *Engine) Record(state models.GameState, typ models.ActionType, message string) models.GameState {
	next := state.Clone()
	next.Actions = AppendAction(next.Actions, models.GameAction{
		Type:      typ,
		Message:   message,
		Timestamp: e.Now(),
	})
	return next
}
