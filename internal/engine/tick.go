package engine

import (
	"fmt"
	"math"

	"github.com/napolitain/kingdom/internal/models"
)

// TickResult describes what a tick reconciled
type TickResult struct {
	State models.GameState
	// Applied is false when the tick was suppressed (debounce or no game)
	Applied bool
	// Hours is the real time elapsed since the previous reconciliation
	Hours float64
	// Multiplier is Hours clamped to [DebounceHours, CatchUpHours]
	Multiplier float64
	// Yield is the per-hour production used for this tick
	Yield models.Yield
	// Produced holds the integer change of each produced resource
	Produced models.Resources
	// Completed lists the buildings whose construction finished
	Completed []models.BuildingID
}

// Tick reconciles the time elapsed since kingdom.LastUpdated.
//
// Ticks closer together than the debounce window return the input state
// unchanged, so calling Tick more often than needed is harmless. Otherwise
// due constructions complete, production for the clamped interval is added,
// the kingdom ages by the real elapsed time and LastUpdated moves to now.
func (e *Engine) Tick(state models.GameState) TickResult {
	if !state.GameStarted {
		return TickResult{State: state}
	}

	now := e.Now()
	elapsed := now - state.Kingdom.LastUpdated
	hours := float64(elapsed) / MillisPerHour
	if hours < e.rules.DebounceHours {
		return TickResult{State: state, Hours: hours}
	}

	next := state.Clone()
	res := TickResult{Applied: true, Hours: hours}

	for i := range next.Buildings {
		b := &next.Buildings[i]
		if b.Completed || b.CompletionTime == nil || now < *b.CompletionTime {
			continue
		}
		done := *b.CompletionTime
		b.Completed = true
		b.CompletionTime = nil
		b.CompletedAt = &done
		res.Completed = append(res.Completed, b.ID)
		next.Actions = AppendAction(next.Actions, models.GameAction{
			Type:      models.ActionBuildCompleted,
			Message:   fmt.Sprintf("%s reached level %d", b.Name, b.Level),
			Timestamp: now,
		})
	}

	res.Multiplier = clamp(hours, e.rules.DebounceHours, e.rules.CatchUpHours)
	res.Yield = CalculateProduction(next.Buildings, e.rules.Baseline)

	for _, rt := range models.ProducedResourceTypes() {
		old := next.Resources.Get(rt)
		updated := int64(math.Floor(float64(old) + res.Yield.Get(rt)*res.Multiplier))
		if updated < 0 {
			updated = 0
		}
		next.Resources.Set(rt, updated)
		res.Produced.Set(rt, updated-old)
	}

	next.Kingdom.Age += float64(elapsed) / MillisPerDay
	next.Kingdom.LastUpdated = now

	if hours >= ProductionLogThresholdHours {
		next.Actions = AppendAction(next.Actions, models.GameAction{
			Type: models.ActionResourcesProduced,
			Message: fmt.Sprintf("Your kingdom produced %d gold, %d food, %d wood and %d stone",
				res.Produced.Gold, res.Produced.Food, res.Produced.Wood, res.Produced.Stone),
			Timestamp: now,
		})
	}

	res.State = next
	return res
}

// UpdateGameState is Tick without the report
func (e *Engine) UpdateGameState(state models.GameState) models.GameState {
	return e.Tick(state).State
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
