package units

import "strings"

// DefaultCost is charged for unit ids the catalog does not know. Unknown
// units count as average-cost placeholders instead of being rejected.
const DefaultCost = 5

// Template holds the configured data for one unit id. Cost feeds team
// validation; the combat stats only feed the reference simulator.
type Template struct {
	ID        string `json:"id"`
	Cost      int    `json:"cost"`
	HitPoints int    `json:"hit_points"`
	Attack    int    `json:"attack"`
	Agility   int    `json:"agility"`
	Range     int    `json:"range"`
}

// defaultTemplate is used for stats lookups of unknown ids.
var defaultTemplate = Template{Cost: DefaultCost, HitPoints: 10, Attack: 3, Agility: 3, Range: 1}

// Catalog maps unit ids to templates. Lookups are case-insensitive.
type Catalog struct {
	byID map[string]Template
}

// NewCatalog builds a catalog from templates. Later entries win on
// duplicate ids.
func NewCatalog(templates []Template) *Catalog {
	m := make(map[string]Template, len(templates))
	for _, t := range templates {
		m[normalize(t.ID)] = t
	}
	return &Catalog{byID: m}
}

// DefaultCatalog carries the base roster used when no unit_list is
// configured.
func DefaultCatalog() *Catalog {
	return NewCatalog([]Template{
		{ID: "knight", Cost: 5, HitPoints: 14, Attack: 4, Agility: 2, Range: 1},
		{ID: "archer", Cost: 4, HitPoints: 8, Attack: 3, Agility: 4, Range: 4},
		{ID: "rogue", Cost: 4, HitPoints: 9, Attack: 4, Agility: 6, Range: 1},
		{ID: "mage", Cost: 5, HitPoints: 7, Attack: 5, Agility: 3, Range: 3},
	})
}

// Cost returns the configured cost for unitID, or DefaultCost.
func (c *Catalog) Cost(unitID string) int {
	if c != nil {
		if t, ok := c.byID[normalize(unitID)]; ok {
			return t.Cost
		}
	}
	return DefaultCost
}

// Stats returns the template for unitID, falling back to default stats.
func (c *Catalog) Stats(unitID string) Template {
	if c != nil {
		if t, ok := c.byID[normalize(unitID)]; ok {
			return t
		}
	}
	t := defaultTemplate
	t.ID = unitID
	return t
}

// Known reports whether unitID is configured.
func (c *Catalog) Known(unitID string) bool {
	if c == nil {
		return false
	}
	_, ok := c.byID[normalize(unitID)]
	return ok
}

// Len returns the number of configured templates.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.byID)
}

func normalize(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}
