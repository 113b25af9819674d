package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/napolitain/kingdom/internal/models"
)

// SQLiteStore keeps kingdoms in normalised tables, one kingdom per user
type SQLiteStore struct {
	db      *sqlx.DB
	owner   string
	catalog models.Catalog
}

type kingdomRow struct {
	ID          string  `db:"id"`
	OwnerID     string  `db:"owner_id"`
	Name        string  `db:"name"`
	Ruler       string  `db:"ruler"`
	Age         float64 `db:"age"`
	LastUpdated int64   `db:"last_updated"`
	FoundedAt   int64   `db:"founded_at"`
	GameStarted bool    `db:"game_started"`
	SavedAt     int64   `db:"saved_at"`
}

type resourceRow struct {
	KingdomID  string `db:"kingdom_id"`
	Gold       int64  `db:"gold"`
	Land       int64  `db:"land"`
	Population int64  `db:"population"`
	Food       int64  `db:"food"`
	Wood       int64  `db:"wood"`
	Stone      int64  `db:"stone"`
	Farmers    int64  `db:"farmers"`
	Miners     int64  `db:"miners"`
	Soldiers   int64  `db:"soldiers"`
	Scholars   int64  `db:"scholars"`
}

type buildingRow struct {
	KingdomID      string        `db:"kingdom_id"`
	BuildingID     string        `db:"building_id"`
	Position       int           `db:"position"`
	Level          int           `db:"level"`
	Completed      bool          `db:"completed"`
	CompletionTime sql.NullInt64 `db:"completion_time"`
	CompletedAt    sql.NullInt64 `db:"completed_at"`
}

type actionRow struct {
	KingdomID string `db:"kingdom_id"`
	Seq       int    `db:"seq"`
	Type      string `db:"type"`
	Message   string `db:"message"`
	Timestamp int64  `db:"timestamp"`
}

// OpenSQLite opens or creates the database at path for the given user
func OpenSQLite(path, owner string, catalog models.Catalog) (*SQLiteStore, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if owner == "" {
		return nil, ErrNoUser
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &SQLiteStore{db: db, owner: owner, catalog: catalog}, nil
}

func initPragmas(db *sqlx.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA foreign_keys=ON;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sqlx.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS kingdoms (
		id TEXT PRIMARY KEY,
		owner_id TEXT NOT NULL,
		name TEXT NOT NULL,
		ruler TEXT NOT NULL,
		age REAL NOT NULL,
		last_updated INTEGER NOT NULL,
		founded_at INTEGER NOT NULL,
		game_started INTEGER NOT NULL,
		saved_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS resources (
		kingdom_id TEXT PRIMARY KEY REFERENCES kingdoms(id) ON DELETE CASCADE,
		gold INTEGER NOT NULL,
		land INTEGER NOT NULL,
		population INTEGER NOT NULL,
		food INTEGER NOT NULL,
		wood INTEGER NOT NULL,
		stone INTEGER NOT NULL,
		farmers INTEGER NOT NULL,
		miners INTEGER NOT NULL,
		soldiers INTEGER NOT NULL,
		scholars INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS buildings (
		kingdom_id TEXT NOT NULL REFERENCES kingdoms(id) ON DELETE CASCADE,
		building_id TEXT NOT NULL,
		position INTEGER NOT NULL,
		level INTEGER NOT NULL,
		completed INTEGER NOT NULL,
		completion_time INTEGER,
		completed_at INTEGER,
		PRIMARY KEY (kingdom_id, building_id)
	);

	CREATE TABLE IF NOT EXISTS action_logs (
		kingdom_id TEXT NOT NULL REFERENCES kingdoms(id) ON DELETE CASCADE,
		seq INTEGER NOT NULL,
		type TEXT NOT NULL,
		message TEXT NOT NULL,
		timestamp INTEGER NOT NULL,
		PRIMARY KEY (kingdom_id, seq)
	);

	CREATE INDEX IF NOT EXISTS idx_kingdoms_owner ON kingdoms(owner_id, saved_at);
	`
	_, err := db.Exec(schema)
	return err
}

func (s *SQLiteStore) Kind() string { return "sqlite" }

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Save writes the whole state in one transaction. A state without an id is
// given a fresh UUID; only log entries beyond those already stored are
// inserted.
func (s *SQLiteStore) Save(ctx context.Context, state models.GameState) (string, error) {
	id := state.Kingdom.ID
	if id == "" {
		id = uuid.NewString()
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	var owner string
	err = tx.GetContext(ctx, &owner, `SELECT owner_id FROM kingdoms WHERE id = ?`, id)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return "", err
	case owner != s.owner:
		return "", ErrForeign
	}

	k := kingdomRow{
		ID:          id,
		OwnerID:     s.owner,
		Name:        state.Kingdom.Name,
		Ruler:       state.Kingdom.Ruler,
		Age:         state.Kingdom.Age,
		LastUpdated: state.Kingdom.LastUpdated,
		FoundedAt:   state.Kingdom.FoundedAt,
		GameStarted: state.GameStarted,
		SavedAt:     time.Now().UnixMilli(),
	}
	if _, err := tx.NamedExecContext(ctx, `INSERT INTO kingdoms
		(id, owner_id, name, ruler, age, last_updated, founded_at, game_started, saved_at)
		VALUES (:id, :owner_id, :name, :ruler, :age, :last_updated, :founded_at, :game_started, :saved_at)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			ruler = excluded.ruler,
			age = excluded.age,
			last_updated = excluded.last_updated,
			founded_at = excluded.founded_at,
			game_started = excluded.game_started,
			saved_at = excluded.saved_at`, k); err != nil {
		return "", fmt.Errorf("save kingdom: %w", err)
	}

	r := state.Resources
	res := resourceRow{
		KingdomID:  id,
		Gold:       r.Gold,
		Land:       r.Land,
		Population: r.Population,
		Food:       r.Food,
		Wood:       r.Wood,
		Stone:      r.Stone,
		Farmers:    r.Specialists.Farmers,
		Miners:     r.Specialists.Miners,
		Soldiers:   r.Specialists.Soldiers,
		Scholars:   r.Specialists.Scholars,
	}
	if _, err := tx.NamedExecContext(ctx, `INSERT OR REPLACE INTO resources
		(kingdom_id, gold, land, population, food, wood, stone, farmers, miners, soldiers, scholars)
		VALUES (:kingdom_id, :gold, :land, :population, :food, :wood, :stone, :farmers, :miners, :soldiers, :scholars)`, res); err != nil {
		return "", fmt.Errorf("save resources: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM buildings WHERE kingdom_id = ?`, id); err != nil {
		return "", err
	}
	stmt, err := tx.PrepareNamedContext(ctx, `INSERT INTO buildings
		(kingdom_id, building_id, position, level, completed, completion_time, completed_at)
		VALUES (:kingdom_id, :building_id, :position, :level, :completed, :completion_time, :completed_at)`)
	if err != nil {
		return "", err
	}
	defer stmt.Close()
	for i, b := range state.Buildings {
		row := buildingRow{
			KingdomID:      id,
			BuildingID:     string(b.ID),
			Position:       i,
			Level:          b.Level,
			Completed:      b.Completed,
			CompletionTime: nullInt(b.CompletionTime),
			CompletedAt:    nullInt(b.CompletedAt),
		}
		if _, err := stmt.ExecContext(ctx, row); err != nil {
			return "", fmt.Errorf("save building %s: %w", b.ID, err)
		}
	}

	var stored int
	if err := tx.GetContext(ctx, &stored, `SELECT COUNT(*) FROM action_logs WHERE kingdom_id = ?`, id); err != nil {
		return "", err
	}
	if stored > len(state.Actions) {
		// The log was replaced rather than extended; rewrite it.
		if _, err := tx.ExecContext(ctx, `DELETE FROM action_logs WHERE kingdom_id = ?`, id); err != nil {
			return "", err
		}
		stored = 0
	}
	for i := stored; i < len(state.Actions); i++ {
		a := state.Actions[i]
		row := actionRow{KingdomID: id, Seq: i, Type: string(a.Type), Message: a.Message, Timestamp: a.Timestamp}
		if _, err := tx.NamedExecContext(ctx, `INSERT INTO action_logs
			(kingdom_id, seq, type, message, timestamp)
			VALUES (:kingdom_id, :seq, :type, :message, :timestamp)`, row); err != nil {
			return "", fmt.Errorf("append log: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}
	return id, nil
}

// Load returns the user's most recently saved kingdom, or nil when the user
// has none. Static building fields come from the catalog; catalog entries
// missing from the database are added unbuilt.
func (s *SQLiteStore) Load(ctx context.Context) (*models.GameState, error) {
	var k kingdomRow
	err := s.db.GetContext(ctx, &k, `SELECT * FROM kingdoms WHERE owner_id = ?
		ORDER BY saved_at DESC LIMIT 1`, s.owner)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load kingdom: %w", err)
	}
	return s.loadKingdom(ctx, k)
}

// LoadByID returns a kingdom of the user by id
func (s *SQLiteStore) LoadByID(ctx context.Context, id string) (*models.GameState, error) {
	var k kingdomRow
	err := s.db.GetContext(ctx, &k, `SELECT * FROM kingdoms WHERE id = ? AND owner_id = ?`, id, s.owner)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load kingdom: %w", err)
	}
	return s.loadKingdom(ctx, k)
}

func (s *SQLiteStore) loadKingdom(ctx context.Context, k kingdomRow) (*models.GameState, error) {
	var r resourceRow
	if err := s.db.GetContext(ctx, &r, `SELECT * FROM resources WHERE kingdom_id = ?`, k.ID); err != nil {
		return nil, fmt.Errorf("%w: resources: %v", ErrCorrupt, err)
	}

	var brows []buildingRow
	if err := s.db.SelectContext(ctx, &brows, `SELECT * FROM buildings WHERE kingdom_id = ? ORDER BY position`, k.ID); err != nil {
		return nil, fmt.Errorf("load buildings: %w", err)
	}

	var arows []actionRow
	if err := s.db.SelectContext(ctx, &arows, `SELECT * FROM action_logs WHERE kingdom_id = ? ORDER BY seq`, k.ID); err != nil {
		return nil, fmt.Errorf("load log: %w", err)
	}

	state := models.GameState{
		Kingdom: models.Kingdom{
			ID:          k.ID,
			Name:        k.Name,
			Ruler:       k.Ruler,
			Age:         k.Age,
			LastUpdated: k.LastUpdated,
			FoundedAt:   k.FoundedAt,
		},
		Resources: models.Resources{
			Gold:       r.Gold,
			Land:       r.Land,
			Population: r.Population,
			Food:       r.Food,
			Wood:       r.Wood,
			Stone:      r.Stone,
			Specialists: models.Specialists{
				Farmers:  r.Farmers,
				Miners:   r.Miners,
				Soldiers: r.Soldiers,
				Scholars: r.Scholars,
			},
		},
		Buildings:   make([]models.Building, 0, s.catalog.Len()),
		Actions:     make([]models.GameAction, 0, len(arows)),
		GameStarted: k.GameStarted,
	}

	seen := make(map[models.BuildingID]bool, len(brows))
	for _, row := range brows {
		tpl, ok := s.catalog.Lookup(models.BuildingID(row.BuildingID))
		if !ok {
			slog.Warn("dropping building missing from catalog", "kingdom", k.ID, "building", row.BuildingID)
			continue
		}
		seen[tpl.ID] = true
		state.Buildings = append(state.Buildings, models.Building{
			BuildingTemplate: tpl,
			Level:            row.Level,
			Completed:        row.Completed,
			CompletionTime:   ptrInt(row.CompletionTime),
			CompletedAt:      ptrInt(row.CompletedAt),
		})
	}
	for _, b := range s.catalog.Instantiate() {
		if !seen[b.ID] {
			state.Buildings = append(state.Buildings, b)
		}
	}

	for _, row := range arows {
		state.Actions = append(state.Actions, models.GameAction{
			Type:      models.ActionType(row.Type),
			Message:   row.Message,
			Timestamp: row.Timestamp,
		})
	}
	return &state, nil
}

// Kingdoms lists the ids of the user's kingdoms, most recently saved first
func (s *SQLiteStore) Kingdoms(ctx context.Context) ([]string, error) {
	var ids []string
	err := s.db.SelectContext(ctx, &ids, `SELECT id FROM kingdoms WHERE owner_id = ? ORDER BY saved_at DESC`, s.owner)
	return ids, err
}

func nullInt(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}

func ptrInt(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	n := v.Int64
	return &n
}
