package loader

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/napolitain/kingdom/internal/models"
	"github.com/napolitain/kingdom/internal/schema"
)

// CatalogFile is the catalog file name inside a data directory
const CatalogFile = "buildings.json"

// ErrInvalidCatalog is returned when a catalog file fails validation
var ErrInvalidCatalog = errors.New("invalid catalog")

// LoadCatalog loads buildings.json from dataDir.
// A missing file yields the built-in catalog.
func LoadCatalog(dataDir string) (models.Catalog, error) {
	path := filepath.Join(dataDir, CatalogFile)
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return models.DefaultCatalog(), nil
	}
	return LoadCatalogFile(path)
}

// LoadCatalogFile loads and validates a JSON catalog file
func LoadCatalogFile(path string) (models.Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return models.Catalog{}, fmt.Errorf("failed to read %s: %w", filepath.Base(path), err)
	}
	return ParseCatalog(data)
}

// ParseCatalog decodes a JSON catalog and checks it for consistency
func ParseCatalog(data []byte) (models.Catalog, error) {
	if err := schema.Validate(schema.Catalog, data); err != nil {
		return models.Catalog{}, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}

	var templates []models.BuildingTemplate
	if err := json.Unmarshal(data, &templates); err != nil {
		return models.Catalog{}, fmt.Errorf("failed to parse catalog: %w", err)
	}
	if err := validateTemplates(templates); err != nil {
		return models.Catalog{}, err
	}
	return models.NewCatalog(templates), nil
}

func validateTemplates(templates []models.BuildingTemplate) error {
	if len(templates) == 0 {
		return fmt.Errorf("%w: no buildings", ErrInvalidCatalog)
	}
	seen := make(map[models.BuildingID]bool, len(templates))
	for i, t := range templates {
		if t.ID == "" {
			return fmt.Errorf("%w: entry %d has no id", ErrInvalidCatalog, i)
		}
		if seen[t.ID] {
			return fmt.Errorf("%w: duplicate id %q", ErrInvalidCatalog, t.ID)
		}
		seen[t.ID] = true
		if !t.Type.Valid() {
			return fmt.Errorf("%w: %s has unknown type %q", ErrInvalidCatalog, t.ID, t.Type)
		}
		if t.ConstructionTimeMinutes <= 0 {
			return fmt.Errorf("%w: %s construction time must be positive", ErrInvalidCatalog, t.ID)
		}
		var negative bool
		t.Cost.Each(func(_ models.ResourceType, v int64) {
			if v < 0 {
				negative = true
			}
		})
		if negative {
			return fmt.Errorf("%w: %s has a negative cost", ErrInvalidCatalog, t.ID)
		}
	}
	return nil
}

// WriteCatalog writes catalog as indented JSON, the format LoadCatalogFile reads
func WriteCatalog(path string, catalog models.Catalog) error {
	data, err := json.MarshalIndent(catalog.Templates, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}
