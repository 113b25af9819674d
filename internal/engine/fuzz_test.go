package engine

import (
	"testing"
	"time"

	"github.com/napolitain/kingdom/internal/models"
)

// FuzzStartBuilding checks that construction never drives a resource
// negative and that rejections leave the stock untouched.
func FuzzStartBuilding(f *testing.F) {
	f.Add(int64(1000), int64(100), int64(50), int64(200), int64(100), int64(50), int64(0), int64(0))
	f.Add(int64(0), int64(0), int64(0), int64(0), int64(1), int64(0), int64(0), int64(0))
	f.Add(int64(10), int64(10), int64(10), int64(10), int64(10), int64(10), int64(10), int64(10))
	f.Add(int64(5), int64(500), int64(3), int64(0), int64(6), int64(0), int64(3), int64(0))

	f.Fuzz(func(t *testing.T, gold, wood, stone, food, cGold, cWood, cStone, cFood int64) {
		abs := func(v int64) int64 {
			v %= 1_000_000_000
			if v < 0 {
				v = -v
			}
			return v
		}
		e, _ := newTestEngine(t)
		tpl := keepTemplate()
		tpl.Cost = models.Costs{Gold: abs(cGold), Wood: abs(cWood), Stone: abs(cStone), Food: abs(cFood)}
		state := newTestState(e.Now(), models.Building{BuildingTemplate: tpl})
		state.Resources.Gold = abs(gold)
		state.Resources.Wood = abs(wood)
		state.Resources.Stone = abs(stone)
		state.Resources.Food = abs(food)

		res := e.StartBuilding(state, "keep")

		if res.State.Resources.Negative() {
			t.Fatalf("Negative resources after build: %+v", res.State.Resources)
		}
		switch res.Outcome {
		case Built:
			for _, rt := range models.CostResourceTypes() {
				want := state.Resources.Get(rt) - tpl.Cost.Get(rt)
				if got := res.State.Resources.Get(rt); got != want {
					t.Errorf("%s: expected %d, got %d", rt, want, got)
				}
			}
		case Rejected:
			if res.State.Resources != state.Resources {
				t.Errorf("Rejected build changed resources: %+v -> %+v", state.Resources, res.State.Resources)
			}
			if res.State.Buildings[0].Level != 0 {
				t.Errorf("Rejected build changed level to %d", res.State.Buildings[0].Level)
			}
		default:
			t.Fatalf("Unexpected outcome %v", res.Outcome)
		}
	})
}

// FuzzTickMonotonicAge drives the clock forward and backward and checks
// that age and LastUpdated never decrease and resources stay non-negative.
func FuzzTickMonotonicAge(f *testing.F) {
	f.Add(uint16(5), uint16(120), int16(-30), uint16(3000))
	f.Add(uint16(0), uint16(0), int16(0), uint16(0))
	f.Add(uint16(60), uint16(6000), int16(500), uint16(7))

	f.Fuzz(func(t *testing.T, a, b uint16, back int16, c uint16) {
		e, clk := newTestEngine(t)
		state, err := e.Found("Avalon", "Arthur")
		if err != nil {
			t.Fatal(err)
		}
		state = e.StartBuilding(state, "farm").State

		steps := []time.Duration{
			time.Duration(a) * time.Minute,
			time.Duration(b) * time.Minute,
			time.Duration(back) * time.Minute,
			time.Duration(c) * time.Minute,
		}
		for _, d := range steps {
			clk.Advance(d)
			next := e.UpdateGameState(state)
			if next.Kingdom.Age < state.Kingdom.Age {
				t.Fatalf("Age decreased: %v -> %v", state.Kingdom.Age, next.Kingdom.Age)
			}
			if next.Kingdom.LastUpdated < state.Kingdom.LastUpdated {
				t.Fatalf("LastUpdated decreased: %d -> %d", state.Kingdom.LastUpdated, next.Kingdom.LastUpdated)
			}
			if next.Resources.Negative() {
				t.Fatalf("Negative resources: %+v", next.Resources)
			}
			state = next
		}
	})
}
