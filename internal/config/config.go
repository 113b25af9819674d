// Package config loads the kingdom.yaml settings shared by the CLI and the TUI.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/napolitain/kingdom/internal/engine"
	"github.com/napolitain/kingdom/internal/models"
)

// Backend names accepted in the backend field
const (
	BackendAuto   = "auto"
	BackendLocal  = "local"
	BackendSQLite = "sqlite"
)

const FileName = "kingdom.yaml"

var ErrInvalid = errors.New("invalid config")

type Config struct {
	DataDir    string `yaml:"data_dir"`
	Backend    string `yaml:"backend"`
	LocalPath  string `yaml:"local_path"`
	SQLitePath string `yaml:"sqlite_path"`
	UserID     string `yaml:"user_id"`

	// TickInterval drives the interactive loop
	TickInterval time.Duration `yaml:"tick_interval"`
	ActionWindow int           `yaml:"action_window"`

	LogLevel string `yaml:"log_level"`
	LogFile  string `yaml:"log_file"`

	CatalogPath string `yaml:"catalog_path"`

	Rules RulesConfig `yaml:"rules"`
}

// RulesConfig mirrors engine.Rules in file form
type RulesConfig struct {
	DebounceHours float64       `yaml:"debounce_hours"`
	CatchUpHours  float64       `yaml:"catch_up_hours"`
	Baseline      YieldConfig   `yaml:"baseline"`
	Starting      StartingStock `yaml:"starting"`
}

type YieldConfig struct {
	Gold       float64 `yaml:"gold"`
	Population float64 `yaml:"population"`
	Food       float64 `yaml:"food"`
	Wood       float64 `yaml:"wood"`
	Stone      float64 `yaml:"stone"`
}

type StartingStock struct {
	Gold       int64 `yaml:"gold"`
	Land       int64 `yaml:"land"`
	Population int64 `yaml:"population"`
	Food       int64 `yaml:"food"`
	Wood       int64 `yaml:"wood"`
	Stone      int64 `yaml:"stone"`
}

// Defaults returns the configuration used when no file is present
func Defaults() Config {
	r := engine.DefaultRules()
	return Config{
		DataDir:      ".kingdom",
		Backend:      BackendAuto,
		TickInterval: 5 * time.Second,
		ActionWindow: 10,
		LogLevel:     "info",
		Rules: RulesConfig{
			DebounceHours: r.DebounceHours,
			CatchUpHours:  r.CatchUpHours,
			Baseline: YieldConfig{
				Gold:       r.Baseline.Gold,
				Population: r.Baseline.Population,
				Food:       r.Baseline.Food,
				Wood:       r.Baseline.Wood,
				Stone:      r.Baseline.Stone,
			},
			Starting: StartingStock{
				Gold:       r.Starting.Gold,
				Land:       r.Starting.Land,
				Population: r.Starting.Population,
				Food:       r.Starting.Food,
				Wood:       r.Starting.Wood,
				Stone:      r.Starting.Stone,
			},
		},
	}
}

// Load overlays the YAML file at path on Defaults. A missing file is not an
// error; the defaults are returned as they are.
func Load(path string) (Config, error) {
	cfg := Defaults()
	if path == "" {
		return cfg, nil
	}
	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Write stores cfg as YAML at path
func Write(path string, cfg Config) error {
	raw, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, raw, 0o644)
}

func (c Config) Validate() error {
	switch c.Backend {
	case BackendAuto, BackendLocal, BackendSQLite:
	default:
		return fmt.Errorf("%w: unknown backend %q", ErrInvalid, c.Backend)
	}
	if c.TickInterval <= 0 {
		return fmt.Errorf("%w: tick_interval must be positive", ErrInvalid)
	}
	if c.ActionWindow <= 0 {
		return fmt.Errorf("%w: action_window must be positive", ErrInvalid)
	}
	if c.Rules.DebounceHours <= 0 || c.Rules.CatchUpHours < c.Rules.DebounceHours {
		return fmt.Errorf("%w: need 0 < debounce_hours <= catch_up_hours", ErrInvalid)
	}
	s := c.Rules.Starting
	if s.Gold < 0 || s.Land < 0 || s.Population < 0 || s.Food < 0 || s.Wood < 0 || s.Stone < 0 {
		return fmt.Errorf("%w: starting resources must be non-negative", ErrInvalid)
	}
	return nil
}

// EffectiveBackend resolves auto: sqlite when a user id is set, local otherwise
func (c Config) EffectiveBackend() string {
	if c.Backend != BackendAuto {
		return c.Backend
	}
	if strings.TrimSpace(c.UserID) != "" {
		return BackendSQLite
	}
	return BackendLocal
}

// LocalFile is the save file of the local backend
func (c Config) LocalFile() string {
	if c.LocalPath != "" {
		return c.LocalPath
	}
	return filepath.Join(c.DataDir, "kingdom.sav")
}

// SQLiteFile is the database file of the sqlite backend
func (c Config) SQLiteFile() string {
	if c.SQLitePath != "" {
		return c.SQLitePath
	}
	return filepath.Join(c.DataDir, "kingdom.db")
}

// EngineRules converts the rules section for the engine
func (c Config) EngineRules() engine.Rules {
	r := c.Rules
	return engine.Rules{
		DebounceHours: r.DebounceHours,
		CatchUpHours:  r.CatchUpHours,
		Baseline: models.Yield{
			Gold:       r.Baseline.Gold,
			Population: r.Baseline.Population,
			Food:       r.Baseline.Food,
			Wood:       r.Baseline.Wood,
			Stone:      r.Baseline.Stone,
		},
		Starting: models.Resources{
			Gold:       r.Starting.Gold,
			Land:       r.Starting.Land,
			Population: r.Starting.Population,
			Food:       r.Starting.Food,
			Wood:       r.Starting.Wood,
			Stone:      r.Starting.Stone,
		},
	}
}
