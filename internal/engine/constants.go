package engine

import "github.com/napolitain/kingdom/internal/models"

// Time constants (milliseconds)
const (
	MillisPerMinute = 60_000
	MillisPerHour   = 3_600_000
	MillisPerDay    = 86_400_000
)

const (
	// DefaultDebounceHours is the minimum elapsed time before a tick reconciles
	// anything (6 minutes). It is also the floor of the production multiplier.
	DefaultDebounceHours = 0.1

	// DefaultCatchUpHours caps the production applied by a single tick
	DefaultCatchUpHours = 24.0

	// ProductionLogThresholdHours is the minimum elapsed time for a tick to log
	// a RESOURCES_PRODUCED entry
	ProductionLogThresholdHours = 1.0
)

// Rules are the tunable numbers of the simulation
type Rules struct {
	// Baseline is the ambient per-hour growth independent of buildings
	Baseline      models.Yield
	DebounceHours float64
	CatchUpHours  float64
	// Starting is the ledger of a newly founded kingdom
	Starting models.Resources
}

// DefaultBaseline returns the ambient per-hour yield of every kingdom
func DefaultBaseline() models.Yield {
	return models.Yield{Gold: 5, Food: 10, Wood: 5, Stone: 2, Population: 1}
}

// DefaultStarting returns the ledger of a newly founded kingdom
func DefaultStarting() models.Resources {
	return models.Resources{
		Gold:       1000,
		Land:       100,
		Population: 50,
		Food:       200,
		Wood:       100,
		Stone:      50,
	}
}

// DefaultRules returns the standard game rules
func DefaultRules() Rules {
	return Rules{
		Baseline:      DefaultBaseline(),
		DebounceHours: DefaultDebounceHours,
		CatchUpHours:  DefaultCatchUpHours,
		Starting:      DefaultStarting(),
	}
}
