package engine

import (
	"math/rand"

	"github.com/ericogr/chimera-arena/internal/game"
)

// Sides of a battle as written to the event log.
const (
	SidePlayer = "player"
	SideEnemy  = "enemy"
)

// Event kinds written to the event log.
const (
	EventMove    = "move"
	EventAttack  = "attack"
	EventDefeat  = "defeat"
	EventTimeout = "timeout"
)

// fighter is a unit's in-battle state.
type fighter struct {
	side    string
	index   int
	unitID  string
	hp      int
	attack  int
	agility int
	rng     int
	pos     game.Position
}

func (f *fighter) alive() bool { return f.hp > 0 }

// --- Battle context and helpers ---------------------------------------
type battleContext struct {
	rand   *rand.Rand
	player []*fighter
	enemy  []*fighter
	tick   int
	events []game.BattleEvent
}

func newBattleContext(seed int64, player, enemy []*fighter) *battleContext {
	return &battleContext{
		rand:   rand.New(rand.NewSource(seed)),
		player: player,
		enemy:  enemy,
		events: make([]game.BattleEvent, 0, 64),
	}
}

func (bc *battleContext) add(ev game.BattleEvent) {
	ev.Tick = bc.tick
	bc.events = append(bc.events, ev)
}

func (bc *battleContext) opponentsOf(f *fighter) []*fighter {
	if f.side == SidePlayer {
		return bc.enemy
	}
	return bc.player
}

func (bc *battleContext) all() []*fighter {
	out := make([]*fighter, 0, len(bc.player)+len(bc.enemy))
	out = append(out, bc.player...)
	return append(out, bc.enemy...)
}
