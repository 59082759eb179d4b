// Package engine is the reference battle simulator. Results are a pure
// function of the two rosters and the seed, so a stored battle can be
// replayed and re-verified at any time.
package engine

import (
	"context"
	"sort"

	"github.com/ericogr/chimera-arena/internal/game"
	"github.com/ericogr/chimera-arena/internal/team"
	"github.com/ericogr/chimera-arena/internal/units"
)

// DefaultMaxTicks bounds a battle. When it runs out, remaining hit points
// decide and a tie is a loss for the player.
const DefaultMaxTicks = 60

// Simulator resolves battles using unit stats from a catalog.
type Simulator struct {
	catalog  *units.Catalog
	maxTicks int
}

func NewSimulator(catalog *units.Catalog) *Simulator {
	return &Simulator{catalog: catalog, maxTicks: DefaultMaxTicks}
}

// Simulate runs the battle between player and enemy with the given seed.
// The enemy roster is mirrored onto the far half of the field so both
// teams deploy on their own side.
func (s *Simulator) Simulate(ctx context.Context, player, enemy game.TeamSnapshot, seed int64) (game.SimulationResult, error) {
	bc := newBattleContext(seed, s.deploy(SidePlayer, player), s.deploy(SideEnemy, enemy))

	for bc.tick = 1; bc.tick <= s.maxTicks; bc.tick++ {
		if err := ctx.Err(); err != nil {
			return game.SimulationResult{}, err
		}
		if aliveCount(bc.player) == 0 || aliveCount(bc.enemy) == 0 {
			break
		}
		bc.runTick()
	}

	switch {
	case aliveCount(bc.enemy) == 0 && aliveCount(bc.player) > 0:
		return game.SimulationResult{Events: bc.events, Verdict: game.ResultWin}, nil
	case aliveCount(bc.player) == 0:
		return game.SimulationResult{Events: bc.events, Verdict: game.ResultLoss}, nil
	}

	bc.tick = s.maxTicks
	bc.add(game.BattleEvent{Kind: EventTimeout, Side: SidePlayer, Amount: remainingHP(bc.player)})
	bc.add(game.BattleEvent{Kind: EventTimeout, Side: SideEnemy, Amount: remainingHP(bc.enemy)})
	if remainingHP(bc.player) > remainingHP(bc.enemy) {
		return game.SimulationResult{Events: bc.events, Verdict: game.ResultWin}, nil
	}
	return game.SimulationResult{Events: bc.events, Verdict: game.ResultLoss}, nil
}

func (s *Simulator) deploy(side string, t game.TeamSnapshot) []*fighter {
	out := make([]*fighter, 0, len(t.Units))
	for i, u := range t.Units {
		st := s.catalog.Stats(u.UnitID)
		tier := u.Tier
		if tier < 1 {
			tier = 1
		}
		pos := u.Position
		if side == SideEnemy {
			pos.Y = 2*team.GridHeight - 1 - pos.Y
		}
		rng := st.Range
		if rng < 1 {
			rng = 1
		}
		out = append(out, &fighter{
			side:    side,
			index:   i,
			unitID:  u.UnitID,
			hp:      st.HitPoints * tier,
			attack:  st.Attack * tier,
			agility: st.Agility,
			rng:     rng,
			pos:     pos,
		})
	}
	return out
}

// runTick lets every living unit act once, fastest first.
func (bc *battleContext) runTick() {
	order := bc.all()
	sort.SliceStable(order, func(i, j int) bool {
		if order[i].agility != order[j].agility {
			return order[i].agility > order[j].agility
		}
		if order[i].side != order[j].side {
			return order[i].side == SidePlayer
		}
		return order[i].index < order[j].index
	})

	for _, f := range order {
		if !f.alive() {
			continue
		}
		target := nearest(f, bc.opponentsOf(f))
		if target == nil {
			return
		}
		if distance(f.pos, target.pos) > f.rng {
			f.pos = stepToward(f.pos, target.pos)
			to := f.pos
			bc.add(game.BattleEvent{Kind: EventMove, Side: f.side, Actor: f.index, To: &to})
			continue
		}
		dmg := f.attack + bc.rand.Intn(3) - 1
		if dmg < 1 {
			dmg = 1
		}
		target.hp -= dmg
		bc.add(game.BattleEvent{Kind: EventAttack, Side: f.side, Actor: f.index, Target: target.index, Amount: dmg})
		if !target.alive() {
			bc.add(game.BattleEvent{Kind: EventDefeat, Side: target.side, Actor: target.index})
		}
	}
}
