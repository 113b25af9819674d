// Package store persists kingdom state. Two backends implement Store: a
// compressed single-file blob for local play and a normalised SQLite
// database scoped by user id.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/napolitain/kingdom/internal/config"
	"github.com/napolitain/kingdom/internal/models"
)

var (
	ErrNotFound = errors.New("kingdom not found")
	ErrCorrupt  = errors.New("corrupt save")
	ErrNoUser   = errors.New("sqlite backend requires a user id")
	ErrForeign  = errors.New("kingdom belongs to another user")
)

// Store is the persistence adapter used by the session
type Store interface {
	// Save writes the state and returns the kingdom id it is stored under
	Save(ctx context.Context, state models.GameState) (string, error)
	// Load returns the saved state, or nil with no error when nothing is saved
	Load(ctx context.Context) (*models.GameState, error)
	// Kind names the backend ("local" or "sqlite")
	Kind() string
	Close() error
}

// Open picks the backend from the config: sqlite when a user id is present
// or the backend is forced, the local file otherwise.
func Open(cfg config.Config, catalog models.Catalog) (Store, error) {
	switch cfg.EffectiveBackend() {
	case config.BackendSQLite:
		user := strings.TrimSpace(cfg.UserID)
		if user == "" {
			return nil, ErrNoUser
		}
		return OpenSQLite(cfg.SQLiteFile(), user, catalog)
	case config.BackendLocal:
		return NewLocal(cfg.LocalFile()), nil
	default:
		return nil, fmt.Errorf("%w: unknown backend %q", config.ErrInvalid, cfg.Backend)
	}
}

// normalize replaces nil slices so the encoded state always carries arrays
func normalize(state models.GameState) models.GameState {
	if state.Buildings == nil {
		state.Buildings = []models.Building{}
	}
	if state.Actions == nil {
		state.Actions = []models.GameAction{}
	}
	return state
}
