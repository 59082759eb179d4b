package engine

import (
	"context"
	"reflect"
	"testing"

	"github.com/ericogr/chimera-arena/internal/game"
	"github.com/ericogr/chimera-arena/internal/units"
)

func roster(ids ...string) game.TeamSnapshot {
	t := game.TeamSnapshot{}
	for i, id := range ids {
		t.Units = append(t.Units, game.TeamUnit{UnitID: id, Tier: 1, Position: game.Position{X: i, Y: 9}})
	}
	return t
}

func TestSimulate_DeterministicForSameSeed(t *testing.T) {
	sim := NewSimulator(units.DefaultCatalog())
	player := roster("knight", "archer", "mage")
	enemy := roster("rogue", "rogue", "knight")

	first, err := sim.Simulate(context.Background(), player, enemy, 1234)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 0; i < 5; i++ {
		again, err := sim.Simulate(context.Background(), player, enemy, 1234)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if again.Verdict != first.Verdict || !reflect.DeepEqual(again.Events, first.Events) {
			t.Fatalf("simulation is not deterministic for a fixed seed")
		}
	}
	if !first.Verdict.Terminal() || len(first.Events) == 0 {
		t.Fatalf("expected a terminal verdict with events, got %+v", first.Verdict)
	}
}

func TestSimulate_OverwhelmingTeamWins(t *testing.T) {
	sim := NewSimulator(units.DefaultCatalog())
	strong := game.TeamSnapshot{Units: []game.TeamUnit{
		{UnitID: "knight", Tier: 3, Position: game.Position{X: 3, Y: 9}},
		{UnitID: "mage", Tier: 3, Position: game.Position{X: 4, Y: 9}},
	}}
	weak := roster("archer")
	for seed := int64(0); seed < 10; seed++ {
		res, err := sim.Simulate(context.Background(), strong, weak, seed)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if res.Verdict != game.ResultWin {
			t.Fatalf("seed %d: expected win, got %s", seed, res.Verdict)
		}
		last := res.Events[len(res.Events)-1]
		if last.Kind != EventDefeat || last.Side != SideEnemy {
			t.Fatalf("seed %d: expected the enemy defeat to close the log, got %+v", seed, last)
		}
	}
}

func TestSimulate_EmptyRosters(t *testing.T) {
	sim := NewSimulator(units.DefaultCatalog())
	res, err := sim.Simulate(context.Background(), roster("knight"), game.TeamSnapshot{}, 1)
	if err != nil || res.Verdict != game.ResultWin {
		t.Fatalf("expected win against an empty roster, got %s (%v)", res.Verdict, err)
	}
	res, err = sim.Simulate(context.Background(), game.TeamSnapshot{}, roster("knight"), 1)
	if err != nil || res.Verdict != game.ResultLoss {
		t.Fatalf("expected loss with an empty roster, got %s (%v)", res.Verdict, err)
	}
}

func TestSimulate_HonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	sim := NewSimulator(units.DefaultCatalog())
	if _, err := sim.Simulate(ctx, roster("knight"), roster("knight"), 1); err == nil {
		t.Fatalf("expected an error for a cancelled context")
	}
}

func TestSimulate_TimeoutDecidesOnHitPoints(t *testing.T) {
	sim := NewSimulator(units.NewCatalog([]units.Template{
		{ID: "wall", Cost: 1, HitPoints: 1000, Attack: 1, Agility: 1, Range: 1},
		{ID: "pebble", Cost: 1, HitPoints: 900, Attack: 1, Agility: 1, Range: 1},
	}))
	sim.maxTicks = 5
	res, err := sim.Simulate(context.Background(), roster("wall"), roster("pebble"), 9)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Verdict != game.ResultWin {
		t.Fatalf("expected the side with more hit points to win, got %s", res.Verdict)
	}
	if res.Events[len(res.Events)-1].Kind != EventTimeout {
		t.Fatalf("expected timeout events at the end of the log")
	}
}
