package units

import "testing"

func TestDefaultCatalogCosts(t *testing.T) {
	c := DefaultCatalog()
	cases := map[string]int{"knight": 5, "archer": 4, "rogue": 4, "mage": 5, "Knight ": 5, "dragon": DefaultCost}
	for id, want := range cases {
		if got := c.Cost(id); got != want {
			t.Fatalf("Cost(%q) = %d, want %d", id, got, want)
		}
	}
}

func TestNilCatalogFallsBack(t *testing.T) {
	var c *Catalog
	if c.Cost("anything") != DefaultCost {
		t.Fatalf("nil catalog should charge the default cost")
	}
	if s := c.Stats("ghost"); s.ID != "ghost" || s.HitPoints <= 0 {
		t.Fatalf("unexpected default stats: %+v", s)
	}
}

func TestStatsForConfiguredUnit(t *testing.T) {
	c := NewCatalog([]Template{{ID: "Golem", Cost: 9, HitPoints: 30, Attack: 2, Agility: 1, Range: 1}})
	if !c.Known("golem") {
		t.Fatalf("expected golem to be known")
	}
	if s := c.Stats("golem"); s.HitPoints != 30 || s.Cost != 9 {
		t.Fatalf("unexpected stats: %+v", s)
	}
}
