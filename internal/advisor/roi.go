// Package advisor ranks the constructions a kingdom can start next by
// return on investment: the production a level adds per unit of cost.
package advisor

import (
	"math"
	"sort"

	"github.com/napolitain/kingdom/internal/engine"
	"github.com/napolitain/kingdom/internal/models"
)

// ScarcityBonus is added to the ROI of a building that yields a resource
// whose net production is zero or negative
const ScarcityBonus = 0.5

// ROIMetric represents the components of an ROI calculation
type ROIMetric struct {
	GainPerHour   float64
	TotalCost     float64
	ScarcityBonus float64 // 0.5 = +50% ROI
}

// Calculate computes the final ROI value
func (m ROIMetric) Calculate() float64 {
	if m.TotalCost <= 0 {
		return m.GainPerHour * 1000 // Very high ROI if free
	}
	return m.GainPerHour / m.TotalCost * (1.0 + m.ScarcityBonus)
}

// Recommendation is one candidate construction
type Recommendation struct {
	ID         models.BuildingID
	Name       string
	ToLevel    int
	Metric     ROIMetric
	ROI        float64
	Affordable bool
	// WaitHours is the time until the stock covers the cost at the current
	// yield; +Inf when some missing resource is not produced at all
	WaitHours float64
	// PaybackHours is TotalCost / GainPerHour, +Inf for non-producing buildings
	PaybackHours float64
}

// Metric computes the ROI components of raising b by one level given the
// kingdom's current per-hour yield
func Metric(b models.Building, yield models.Yield) ROIMetric {
	var cost float64
	b.Cost.Each(func(_ models.ResourceType, v int64) {
		cost += float64(v)
	})

	var gain float64
	bonus := 0.0
	for _, rt := range models.ProducedResourceTypes() {
		v := b.Production.Get(rt)
		gain += v
		if v > 0 && yield.Get(rt) <= 0 {
			bonus = ScarcityBonus
		}
	}
	if gain < 0 {
		gain = 0
	}
	return ROIMetric{GainPerHour: gain, TotalCost: cost, ScarcityBonus: bonus}
}

// Recommend returns every building that can be started now or later, best
// first. Buildings under construction are skipped. Productive buildings come
// before zero-ROI ones, which are ordered by construction time.
func Recommend(state models.GameState, yield models.Yield) []Recommendation {
	var productive, deferred []Recommendation

	for _, b := range state.Buildings {
		if b.UnderConstruction() {
			continue
		}
		m := Metric(b, yield)
		r := Recommendation{
			ID:           b.ID,
			Name:         b.Name,
			ToLevel:      b.Level + 1,
			Metric:       m,
			ROI:          m.Calculate(),
			Affordable:   len(engine.Affordability(state.Resources, b.Cost)) == 0,
			WaitHours:    waitHours(state.Resources, b.Cost, yield),
			PaybackHours: math.Inf(1),
		}
		if m.GainPerHour > 0 {
			r.PaybackHours = m.TotalCost / m.GainPerHour
		}
		if r.ROI > 0 {
			productive = append(productive, r)
		} else {
			deferred = append(deferred, r)
		}
	}

	sort.SliceStable(productive, func(i, j int) bool {
		if productive[i].ROI != productive[j].ROI {
			return productive[i].ROI > productive[j].ROI
		}
		return productive[i].ID < productive[j].ID
	})

	times := make(map[models.BuildingID]int, len(state.Buildings))
	for _, b := range state.Buildings {
		times[b.ID] = b.ConstructionTimeMinutes
	}
	sort.SliceStable(deferred, func(i, j int) bool {
		ti, tj := times[deferred[i].ID], times[deferred[j].ID]
		if ti != tj {
			return ti < tj
		}
		return deferred[i].ID < deferred[j].ID
	})

	return append(productive, deferred...)
}

// Next returns the best affordable recommendation
func Next(state models.GameState, yield models.Yield) (Recommendation, bool) {
	for _, r := range Recommend(state, yield) {
		if r.Affordable && r.ROI > 0 {
			return r, true
		}
	}
	return Recommendation{}, false
}

func waitHours(stock models.Resources, cost models.Costs, yield models.Yield) float64 {
	var wait float64
	for _, s := range engine.Affordability(stock, cost) {
		rate := yield.Get(s.Resource)
		if rate <= 0 {
			return math.Inf(1)
		}
		wait = math.Max(wait, float64(s.Need-s.Have)/rate)
	}
	return wait
}
