package engine

import (
	"math"
	"testing"
	"time"

	"github.com/napolitain/kingdom/internal/models"
)

var testStart = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

// newTestEngine returns an engine on a manual clock with the default rules and catalog
func newTestEngine(t *testing.T) (*Engine, *ManualClock) {
	t.Helper()
	clk := NewManualClock(testStart)
	return NewDefault(clk), clk
}

// keepTemplate costs exactly {gold:100, wood:50} and takes 30 minutes
func keepTemplate() models.BuildingTemplate {
	return models.BuildingTemplate{
		ID:                      "keep",
		Name:                    "Keep",
		Type:                    models.MilitaryBuilding,
		Cost:                    models.Costs{Gold: 100, Wood: 50},
		Production:              models.Yield{Gold: 25},
		ConstructionTimeMinutes: 30,
	}
}

// newTestState returns a started kingdom with the given buildings, last updated at now
func newTestState(now int64, buildings ...models.Building) models.GameState {
	return models.GameState{
		Kingdom: models.Kingdom{
			Name:        "Avalon",
			Ruler:       "Arthur",
			LastUpdated: now,
			FoundedAt:   now,
		},
		Resources: models.Resources{
			Gold:  1000,
			Land:  100,
			Food:  200,
			Wood:  100,
			Stone: 50,
		},
		Buildings:   buildings,
		Actions:     []models.GameAction{},
		GameStarted: true,
	}
}

func approxEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}
