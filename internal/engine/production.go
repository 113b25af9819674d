package engine

import "github.com/napolitain/kingdom/internal/models"

// CalculateProduction returns the per-hour yield of a kingdom: the baseline
// plus production*level of every completed building with level > 0.
func CalculateProduction(buildings []models.Building, baseline models.Yield) models.Yield {
	total := baseline
	for i := range buildings {
		b := &buildings[i]
		if !b.Producing() {
			continue
		}
		total = total.Add(b.Production.Scale(float64(b.Level)))
	}
	return total
}

// Production returns the per-hour yield of state under the engine's rules
func (e *Engine) Production(state models.GameState) models.Yield {
	return CalculateProduction(state.Buildings, e.rules.Baseline)
}
