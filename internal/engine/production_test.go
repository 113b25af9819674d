package engine

import (
	"testing"

	"github.com/napolitain/kingdom/internal/models"
)

func TestProductionBaselineOnly(t *testing.T) {
	e, _ := newTestEngine(t)
	state := newTestState(e.Now(), models.Building{BuildingTemplate: keepTemplate()})

	got := e.Production(state)
	want := DefaultBaseline()
	if got != want {
		t.Errorf("Expected baseline %+v, got %+v", want, got)
	}
}

func TestProductionLinearInLevel(t *testing.T) {
	baseline := DefaultBaseline()
	for _, level := range []int{1, 2, 4, 7} {
		b := models.Building{BuildingTemplate: keepTemplate(), Level: level, Completed: true}
		got := CalculateProduction([]models.Building{b}, baseline)

		want := baseline.Gold + 25*float64(level)
		if got.Gold != want {
			t.Errorf("Level %d: expected gold %v, got %v", level, want, got.Gold)
		}
		if got.Food != baseline.Food {
			t.Errorf("Level %d: expected food untouched, got %v", level, got.Food)
		}
	}

	one := CalculateProduction([]models.Building{{BuildingTemplate: keepTemplate(), Level: 3, Completed: true}}, models.Yield{})
	two := CalculateProduction([]models.Building{{BuildingTemplate: keepTemplate(), Level: 6, Completed: true}}, models.Yield{})
	if two.Gold != 2*one.Gold {
		t.Errorf("Expected doubling the level to double the contribution: %v vs %v", one.Gold, two.Gold)
	}
}

func TestProductionIgnoresUnfinishedAndLevelZero(t *testing.T) {
	buildings := []models.Building{
		{BuildingTemplate: keepTemplate(), Level: 0, Completed: true},
		{BuildingTemplate: keepTemplate(), Level: 2, Completed: false},
	}
	got := CalculateProduction(buildings, models.Yield{})
	if got.Gold != 0 {
		t.Errorf("Expected no contribution, got %v gold", got.Gold)
	}
}

func TestProductionSpecialistYields(t *testing.T) {
	catalog := models.DefaultCatalog()
	farm, _ := catalog.Lookup("farm")
	gold, _ := catalog.Lookup("gold_mine")

	buildings := []models.Building{
		{BuildingTemplate: farm, Level: 3, Completed: true},
		{BuildingTemplate: gold, Level: 2, Completed: true},
	}
	got := CalculateProduction(buildings, models.Yield{})

	if got.Specialists.Farmers != 3*farm.Production.Specialists.Farmers {
		t.Errorf("Expected %v farmers/hour, got %v", 3*farm.Production.Specialists.Farmers, got.Specialists.Farmers)
	}
	if got.Specialists.Miners != 2*gold.Production.Specialists.Miners {
		t.Errorf("Expected %v miners/hour, got %v", 2*gold.Production.Specialists.Miners, got.Specialists.Miners)
	}
}

func TestProductionDoesNotMutateInput(t *testing.T) {
	buildings := []models.Building{{BuildingTemplate: keepTemplate(), Level: 2, Completed: true}}
	before := buildings[0]
	_ = CalculateProduction(buildings, DefaultBaseline())
	if buildings[0].Level != before.Level || buildings[0].Production != before.Production {
		t.Error("Expected CalculateProduction to leave buildings untouched")
	}
}
