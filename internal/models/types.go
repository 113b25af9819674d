package models

import "math"

// ResourceType represents the different resource types in the game
type ResourceType string

const (
	Gold       ResourceType = "gold"
	Land       ResourceType = "land"
	Population ResourceType = "population"
	Food       ResourceType = "food"
	Wood       ResourceType = "wood"
	Stone      ResourceType = "stone"
)

// AllResourceTypes returns all resource types in deterministic order
func AllResourceTypes() []ResourceType {
	return []ResourceType{Gold, Land, Population, Food, Wood, Stone}
}

// ProducedResourceTypes returns the resources the tick engine grows over time.
// Land and specialists are only changed by explicit actions.
func ProducedResourceTypes() []ResourceType {
	return []ResourceType{Gold, Population, Food, Wood, Stone}
}

// CostResourceTypes returns the resources a construction may charge
func CostResourceTypes() []ResourceType {
	return []ResourceType{Gold, Wood, Stone, Food}
}

// SpecialistType represents a named sub-count of the population
type SpecialistType string

const (
	Farmers  SpecialistType = "farmers"
	Miners   SpecialistType = "miners"
	Soldiers SpecialistType = "soldiers"
	Scholars SpecialistType = "scholars"
)

// AllSpecialistTypes returns all specialist types in deterministic order
func AllSpecialistTypes() []SpecialistType {
	return []SpecialistType{Farmers, Miners, Soldiers, Scholars}
}

// Specialists tracks specialist counts (no maps)
type Specialists struct {
	Farmers  int64 `json:"farmers"`
	Miners   int64 `json:"miners"`
	Soldiers int64 `json:"soldiers"`
	Scholars int64 `json:"scholars"`
}

// Get returns the count for a specialist type
func (s Specialists) Get(st SpecialistType) int64 {
	switch st {
	case Farmers:
		return s.Farmers
	case Miners:
		return s.Miners
	case Soldiers:
		return s.Soldiers
	case Scholars:
		return s.Scholars
	}
	return 0
}

// Set sets the count for a specialist type
func (s *Specialists) Set(st SpecialistType, n int64) {
	switch st {
	case Farmers:
		s.Farmers = n
	case Miners:
		s.Miners = n
	case Soldiers:
		s.Soldiers = n
	case Scholars:
		s.Scholars = n
	}
}

// Resources is the kingdom's resource ledger
type Resources struct {
	Gold        int64       `json:"gold"`
	Land        int64       `json:"land"`
	Population  int64       `json:"population"`
	Food        int64       `json:"food"`
	Wood        int64       `json:"wood"`
	Stone       int64       `json:"stone"`
	Specialists Specialists `json:"specialists"`
}

// Get returns the stock of a resource type
func (r Resources) Get(rt ResourceType) int64 {
	switch rt {
	case Gold:
		return r.Gold
	case Land:
		return r.Land
	case Population:
		return r.Population
	case Food:
		return r.Food
	case Wood:
		return r.Wood
	case Stone:
		return r.Stone
	}
	return 0
}

// Set sets the stock of a resource type
func (r *Resources) Set(rt ResourceType, amount int64) {
	switch rt {
	case Gold:
		r.Gold = amount
	case Land:
		r.Land = amount
	case Population:
		r.Population = amount
	case Food:
		r.Food = amount
	case Wood:
		r.Wood = amount
	case Stone:
		r.Stone = amount
	}
}

// Negative reports whether any field of the ledger is below zero
func (r Resources) Negative() bool {
	for _, rt := range AllResourceTypes() {
		if r.Get(rt) < 0 {
			return true
		}
	}
	for _, st := range AllSpecialistTypes() {
		if r.Specialists.Get(st) < 0 {
			return true
		}
	}
	return false
}

// Costs represents the resources charged for one construction (zero means absent)
type Costs struct {
	Gold  int64 `json:"gold,omitempty"`
	Wood  int64 `json:"wood,omitempty"`
	Stone int64 `json:"stone,omitempty"`
	Food  int64 `json:"food,omitempty"`
}

// Get returns the cost for a specific resource type
func (c Costs) Get(rt ResourceType) int64 {
	switch rt {
	case Gold:
		return c.Gold
	case Wood:
		return c.Wood
	case Stone:
		return c.Stone
	case Food:
		return c.Food
	}
	return 0
}

// Each iterates over the cost fields that are present, in deterministic order
func (c Costs) Each(fn func(ResourceType, int64)) {
	for _, rt := range CostResourceTypes() {
		if v := c.Get(rt); v != 0 {
			fn(rt, v)
		}
	}
}

// IsZero reports whether the cost charges nothing
func (c Costs) IsZero() bool {
	return c == Costs{}
}

// Yield is a per-hour production vector
type Yield struct {
	Gold        float64        `json:"gold,omitempty"`
	Population  float64        `json:"population,omitempty"`
	Food        float64        `json:"food,omitempty"`
	Wood        float64        `json:"wood,omitempty"`
	Stone       float64        `json:"stone,omitempty"`
	Specialists SpecialistRate `json:"specialists,omitempty"`
}

// SpecialistRate is the specialist part of a Yield
type SpecialistRate struct {
	Farmers  float64 `json:"farmers,omitempty"`
	Miners   float64 `json:"miners,omitempty"`
	Soldiers float64 `json:"soldiers,omitempty"`
	Scholars float64 `json:"scholars,omitempty"`
}

// Get returns the yield for a resource type
func (y Yield) Get(rt ResourceType) float64 {
	switch rt {
	case Gold:
		return y.Gold
	case Population:
		return y.Population
	case Food:
		return y.Food
	case Wood:
		return y.Wood
	case Stone:
		return y.Stone
	}
	return 0
}

// Add returns y + o field by field
func (y Yield) Add(o Yield) Yield {
	return Yield{
		Gold:       y.Gold + o.Gold,
		Population: y.Population + o.Population,
		Food:       y.Food + o.Food,
		Wood:       y.Wood + o.Wood,
		Stone:      y.Stone + o.Stone,
		Specialists: SpecialistRate{
			Farmers:  y.Specialists.Farmers + o.Specialists.Farmers,
			Miners:   y.Specialists.Miners + o.Specialists.Miners,
			Soldiers: y.Specialists.Soldiers + o.Specialists.Soldiers,
			Scholars: y.Specialists.Scholars + o.Specialists.Scholars,
		},
	}
}

// Scale returns y with every field multiplied by f
func (y Yield) Scale(f float64) Yield {
	return Yield{
		Gold:       y.Gold * f,
		Population: y.Population * f,
		Food:       y.Food * f,
		Wood:       y.Wood * f,
		Stone:      y.Stone * f,
		Specialists: SpecialistRate{
			Farmers:  y.Specialists.Farmers * f,
			Miners:   y.Specialists.Miners * f,
			Soldiers: y.Specialists.Soldiers * f,
			Scholars: y.Specialists.Scholars * f,
		},
	}
}

// Floor returns the integer part of each produced field
func (y Yield) Floor() Yield {
	return Yield{
		Gold:       math.Floor(y.Gold),
		Population: math.Floor(y.Population),
		Food:       math.Floor(y.Food),
		Wood:       math.Floor(y.Wood),
		Stone:      math.Floor(y.Stone),
	}
}

// BuildingType represents the category of a building
type BuildingType string

const (
	ResourceBuilding       BuildingType = "resource"
	MilitaryBuilding       BuildingType = "military"
	SpecialBuilding        BuildingType = "special"
	InfrastructureBuilding BuildingType = "infrastructure"
)

// AllBuildingTypes returns all building categories in catalog order
func AllBuildingTypes() []BuildingType {
	return []BuildingType{ResourceBuilding, InfrastructureBuilding, MilitaryBuilding, SpecialBuilding}
}

// Valid reports whether bt is a known category
func (bt BuildingType) Valid() bool {
	switch bt {
	case ResourceBuilding, MilitaryBuilding, SpecialBuilding, InfrastructureBuilding:
		return true
	}
	return false
}

// BuildingID is a stable key for a building, unique within a kingdom
type BuildingID string

// BuildingTemplate is one immutable catalog entry
type BuildingTemplate struct {
	ID                      BuildingID   `json:"id"`
	Name                    string       `json:"name"`
	Type                    BuildingType `json:"type"`
	Description             string       `json:"description,omitempty"`
	Cost                    Costs        `json:"cost"`
	Production              Yield        `json:"production"`
	ConstructionTimeMinutes int          `json:"construction_time_minutes"`
}

// Building is one building instance owned by a kingdom
type Building struct {
	BuildingTemplate

	Level     int  `json:"level"`
	Completed bool `json:"completed"`

	// CompletionTime is set (ms since epoch) only while a construction is pending
	CompletionTime *int64 `json:"completion_time,omitempty"`
	// CompletedAt records when the last construction finished
	CompletedAt *int64 `json:"completed_at,omitempty"`
}

// UnderConstruction reports whether a construction is in flight
func (b *Building) UnderConstruction() bool {
	return !b.Completed && b.CompletionTime != nil
}

// Producing reports whether the building contributes to production
func (b *Building) Producing() bool {
	return b.Completed && b.Level > 0
}

// Progress returns the fraction of the pending construction done at now (ms).
// A building with no pending construction reports 1 when built and 0 otherwise.
func (b *Building) Progress(now int64) float64 {
	if !b.UnderConstruction() {
		if b.Level > 0 && b.Completed {
			return 1
		}
		return 0
	}
	total := int64(b.ConstructionTimeMinutes) * 60_000
	if total <= 0 {
		return 1
	}
	remaining := *b.CompletionTime - now
	if remaining <= 0 {
		return 1
	}
	if remaining >= total {
		return 0
	}
	return 1 - float64(remaining)/float64(total)
}

// Clone returns a deep copy of the building
func (b Building) Clone() Building {
	if b.CompletionTime != nil {
		v := *b.CompletionTime
		b.CompletionTime = &v
	}
	if b.CompletedAt != nil {
		v := *b.CompletedAt
		b.CompletedAt = &v
	}
	return b
}

// ActionType is the machine-readable tag of a log entry
type ActionType string

const (
	ActionKingdomFounded    ActionType = "KINGDOM_FOUNDED"
	ActionBuildStarted      ActionType = "BUILD_STARTED"
	ActionBuildFailed       ActionType = "BUILD_FAILED"
	ActionBuildCompleted    ActionType = "BUILD_COMPLETED"
	ActionResourcesProduced ActionType = "RESOURCES_PRODUCED"
	ActionGameSaved         ActionType = "GAME_SAVED"
	ActionGameLoaded        ActionType = "GAME_LOADED"
)

// GameAction is one immutable entry of the action log
type GameAction struct {
	Type      ActionType `json:"type"`
	Message   string     `json:"message"`
	Timestamp int64      `json:"timestamp"`
}

// Kingdom holds the identity and age of a realm
type Kingdom struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Ruler       string  `json:"ruler"`
	Age         float64 `json:"age"`
	LastUpdated int64   `json:"last_updated"`
	FoundedAt   int64   `json:"founded_at"`
}

// GameState is the aggregate root owned by the driver
type GameState struct {
	Kingdom     Kingdom      `json:"kingdom"`
	Resources   Resources    `json:"resources"`
	Buildings   []Building   `json:"buildings"`
	Actions     []GameAction `json:"actions"`
	GameStarted bool         `json:"game_started"`
}

// Clone returns a deep copy so callers can derive a new state without touching s
func (s GameState) Clone() GameState {
	out := s
	if s.Buildings != nil {
		out.Buildings = make([]Building, len(s.Buildings))
		for i, b := range s.Buildings {
			out.Buildings[i] = b.Clone()
		}
	}
	if s.Actions != nil {
		out.Actions = make([]GameAction, len(s.Actions))
		copy(out.Actions, s.Actions)
	}
	return out
}

// BuildingIndex returns the index of the building with id, or -1
func (s *GameState) BuildingIndex(id BuildingID) int {
	for i := range s.Buildings {
		if s.Buildings[i].ID == id {
			return i
		}
	}
	return -1
}

// Building returns the building with id
func (s *GameState) Building(id BuildingID) (*Building, bool) {
	i := s.BuildingIndex(id)
	if i < 0 {
		return nil, false
	}
	return &s.Buildings[i], true
}
