package engine

import (
	"errors"
	"fmt"
	"strings"

	"github.com/napolitain/kingdom/internal/models"
)

var (
	ErrUnknownBuilding        = errors.New("unknown building")
	ErrInsufficientResources  = errors.New("insufficient resources")
	ErrConstructionInProgress = errors.New("construction already in progress")
)

// Outcome is the result kind of a construction request
type Outcome int

const (
	Built Outcome = iota
	Rejected
	NotFound
)

// String returns a string representation of the outcome
func (o Outcome) String() string {
	switch o {
	case Built:
		return "Built"
	case Rejected:
		return "Rejected"
	case NotFound:
		return "NotFound"
	default:
		return "Unknown"
	}
}

// Shortfall describes one resource the kingdom is missing for a construction
type Shortfall struct {
	Resource models.ResourceType
	Need     int64
	Have     int64
}

// BuildResult is the explicit outcome of StartBuilding
type BuildResult struct {
	Outcome Outcome
	// State is the state to adopt. For NotFound it is the input state.
	State models.GameState
	// Building is the affected building as it is in State (nil for NotFound)
	Building *models.Building
	// Shortfalls lists missing resources when rejected for cost
	Shortfalls []Shortfall
	// Err is nil when built, otherwise one of the Err* sentinels
	Err error
}

// StartBuilding runs the construction transaction for id.
//
// An unknown id leaves the state untouched. A building already under
// construction, or one the kingdom cannot afford, is rejected in full: the
// returned state differs from the input only by a BUILD_FAILED entry.
// On success the cost is deducted, the level goes up by one and the
// completion is scheduled constructionTime minutes from now.
func (e *Engine) StartBuilding(state models.GameState, id models.BuildingID) BuildResult {
	idx := state.BuildingIndex(id)
	if idx < 0 {
		return BuildResult{Outcome: NotFound, State: state, Err: ErrUnknownBuilding}
	}

	now := e.Now()
	current := state.Buildings[idx]

	if current.UnderConstruction() {
		next := state.Clone()
		next.Actions = AppendAction(next.Actions, models.GameAction{
			Type:      models.ActionBuildFailed,
			Message:   fmt.Sprintf("Cannot build %s: construction already in progress", current.Name),
			Timestamp: now,
		})
		return BuildResult{
			Outcome:  Rejected,
			State:    next,
			Building: &next.Buildings[idx],
			Err:      ErrConstructionInProgress,
		}
	}

	if shortfalls := Affordability(state.Resources, current.Cost); len(shortfalls) > 0 {
		next := state.Clone()
		next.Actions = AppendAction(next.Actions, models.GameAction{
			Type:      models.ActionBuildFailed,
			Message:   fmt.Sprintf("Cannot build %s: %s", current.Name, describeShortfalls(shortfalls)),
			Timestamp: now,
		})
		return BuildResult{
			Outcome:    Rejected,
			State:      next,
			Building:   &next.Buildings[idx],
			Shortfalls: shortfalls,
			Err:        ErrInsufficientResources,
		}
	}

	next := state.Clone()
	current.Cost.Each(func(rt models.ResourceType, v int64) {
		next.Resources.Set(rt, next.Resources.Get(rt)-v)
	})

	completion := now + int64(current.ConstructionTimeMinutes)*MillisPerMinute
	b := &next.Buildings[idx]
	b.Level++
	b.Completed = false
	b.CompletionTime = &completion

	next.Actions = AppendAction(next.Actions, models.GameAction{
		Type: models.ActionBuildStarted,
		Message: fmt.Sprintf("Started building %s (level %d), completes in %s",
			b.Name, b.Level, FormatMinutes(current.ConstructionTimeMinutes)),
		Timestamp: now,
	})

	return BuildResult{Outcome: Built, State: next, Building: b}
}

// Affordability lists the cost fields that exceed the stock (empty when affordable)
func Affordability(stock models.Resources, cost models.Costs) []Shortfall {
	var out []Shortfall
	cost.Each(func(rt models.ResourceType, v int64) {
		if have := stock.Get(rt); have < v {
			out = append(out, Shortfall{Resource: rt, Need: v, Have: have})
		}
	})
	return out
}

func describeShortfalls(shortfalls []Shortfall) string {
	parts := make([]string, 0, len(shortfalls))
	for _, s := range shortfalls {
		parts = append(parts, fmt.Sprintf("need %d %s (have %d)", s.Need, s.Resource, s.Have))
	}
	return strings.Join(parts, ", ")
}

// FormatMinutes renders a construction time like "5 minutes" or "2h 30m"
func FormatMinutes(minutes int) string {
	switch {
	case minutes == 1:
		return "1 minute"
	case minutes < 60:
		return fmt.Sprintf("%d minutes", minutes)
	case minutes%60 == 0:
		return fmt.Sprintf("%dh", minutes/60)
	default:
		return fmt.Sprintf("%dh %dm", minutes/60, minutes%60)
	}
}
