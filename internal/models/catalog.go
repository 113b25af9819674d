package models

// Catalog is the ordered list of building templates a kingdom can construct
type Catalog struct {
	Templates []BuildingTemplate
}

// NewCatalog wraps templates, keeping their order
func NewCatalog(templates []BuildingTemplate) Catalog {
	out := make([]BuildingTemplate, len(templates))
	copy(out, templates)
	return Catalog{Templates: out}
}

// Lookup returns the template with id
func (c Catalog) Lookup(id BuildingID) (BuildingTemplate, bool) {
	for _, t := range c.Templates {
		if t.ID == id {
			return t, true
		}
	}
	return BuildingTemplate{}, false
}

// Len returns the number of templates
func (c Catalog) Len() int {
	return len(c.Templates)
}

// ByType groups templates by category, preserving catalog order
func (c Catalog) ByType() map[BuildingType][]BuildingTemplate {
	out := make(map[BuildingType][]BuildingTemplate)
	for _, t := range c.Templates {
		out[t.Type] = append(out[t.Type], t)
	}
	return out
}

// Instantiate returns fresh, unbuilt building instances for a new kingdom
func (c Catalog) Instantiate() []Building {
	out := make([]Building, 0, len(c.Templates))
	for _, t := range c.Templates {
		out = append(out, Building{BuildingTemplate: t})
	}
	return out
}

// DefaultCatalog returns the built-in building catalog
func DefaultCatalog() Catalog {
	return Catalog{Templates: []BuildingTemplate{
		// Resource
		{
			ID: "farm", Name: "Farm", Type: ResourceBuilding,
			Description:             "Fields and granges that feed the realm.",
			Cost:                    Costs{Gold: 50, Wood: 20},
			Production:              Yield{Food: 20, Specialists: SpecialistRate{Farmers: 1}},
			ConstructionTimeMinutes: 5,
		},
		{
			ID: "lumber_mill", Name: "Lumber Mill", Type: ResourceBuilding,
			Description:             "Fells and saws timber from the royal forests.",
			Cost:                    Costs{Gold: 60, Stone: 10},
			Production:              Yield{Wood: 15},
			ConstructionTimeMinutes: 8,
		},
		{
			ID: "quarry", Name: "Quarry", Type: ResourceBuilding,
			Description:             "Cuts stone for walls and halls.",
			Cost:                    Costs{Gold: 80, Wood: 40},
			Production:              Yield{Stone: 10, Specialists: SpecialistRate{Miners: 1}},
			ConstructionTimeMinutes: 10,
		},
		{
			ID: "gold_mine", Name: "Gold Mine", Type: ResourceBuilding,
			Description:             "Digs the precious ore that fills the treasury.",
			Cost:                    Costs{Gold: 150, Wood: 80, Stone: 60},
			Production:              Yield{Gold: 25, Specialists: SpecialistRate{Miners: 2}},
			ConstructionTimeMinutes: 20,
		},
		{
			ID: "houses", Name: "Houses", Type: ResourceBuilding,
			Description:             "Homes that draw new settlers.",
			Cost:                    Costs{Gold: 40, Wood: 50},
			Production:              Yield{Population: 3},
			ConstructionTimeMinutes: 6,
		},

		// Infrastructure
		{
			ID: "roads", Name: "Roads", Type: InfrastructureBuilding,
			Description:             "Paved ways that speed trade.",
			Cost:                    Costs{Gold: 100, Stone: 50},
			Production:              Yield{Gold: 5},
			ConstructionTimeMinutes: 15,
		},
		{
			ID: "granary", Name: "Granary", Type: InfrastructureBuilding,
			Description:             "Keeps the harvest from spoiling.",
			Cost:                    Costs{Gold: 120, Wood: 60},
			Production:              Yield{Food: 10},
			ConstructionTimeMinutes: 12,
		},
		{
			ID: "warehouse", Name: "Warehouse", Type: InfrastructureBuilding,
			Description:             "Stores timber and stone near the works.",
			Cost:                    Costs{Gold: 120, Wood: 40, Stone: 40},
			Production:              Yield{Wood: 5, Stone: 5},
			ConstructionTimeMinutes: 12,
		},
		{
			ID: "town_hall", Name: "Town Hall", Type: InfrastructureBuilding,
			Description:             "Seat of the royal administrators and tax collectors.",
			Cost:                    Costs{Gold: 300, Wood: 100, Stone: 150},
			Production:              Yield{Gold: 15, Population: 1},
			ConstructionTimeMinutes: 30,
		},

		// Military
		{
			ID: "barracks", Name: "Barracks", Type: MilitaryBuilding,
			Description:             "Trains soldiers who eat from the royal stores.",
			Cost:                    Costs{Gold: 200, Wood: 100, Stone: 50},
			Production:              Yield{Food: -5, Specialists: SpecialistRate{Soldiers: 2}},
			ConstructionTimeMinutes: 25,
		},
		{
			ID: "archery_range", Name: "Archery Range", Type: MilitaryBuilding,
			Description:             "Butts and targets for the bowmen.",
			Cost:                    Costs{Gold: 180, Wood: 150},
			Production:              Yield{Food: -3, Specialists: SpecialistRate{Soldiers: 1}},
			ConstructionTimeMinutes: 20,
		},
		{
			ID: "walls", Name: "Walls", Type: MilitaryBuilding,
			Description:             "Stone curtain walls around the keep.",
			Cost:                    Costs{Gold: 250, Stone: 300},
			ConstructionTimeMinutes: 45,
		},

		// Special
		{
			ID: "temple", Name: "Temple", Type: SpecialBuilding,
			Description:             "A place of worship that draws pilgrims and their coin.",
			Cost:                    Costs{Gold: 400, Stone: 200, Food: 100},
			Production:              Yield{Gold: 10, Population: 2},
			ConstructionTimeMinutes: 60,
		},
		{
			ID: "library", Name: "Library", Type: SpecialBuilding,
			Description:             "Scrolls and scholars.",
			Cost:                    Costs{Gold: 350, Wood: 150, Stone: 100},
			Production:              Yield{Specialists: SpecialistRate{Scholars: 1}},
			ConstructionTimeMinutes: 50,
		},
		{
			ID: "wonder", Name: "Wonder", Type: SpecialBuilding,
			Description:             "A monument to the ruler's glory.",
			Cost:                    Costs{Gold: 5000, Wood: 2000, Stone: 3000, Food: 1000},
			Production:              Yield{Gold: 100, Population: 10},
			ConstructionTimeMinutes: 720,
		},
	}}
}
