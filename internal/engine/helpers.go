package engine

import "github.com/ericogr/chimera-arena/internal/game"

// aliveCount returns how many fighters in fs are still standing.
func aliveCount(fs []*fighter) int {
	n := 0
	for _, f := range fs {
		if f.alive() {
			n++
		}
	}
	return n
}

// remainingHP sums the hit points left on a side.
func remainingHP(fs []*fighter) int {
	total := 0
	for _, f := range fs {
		if f.alive() {
			total += f.hp
		}
	}
	return total
}

func distance(a, b game.Position) int {
	return abs(a.X-b.X) + abs(a.Y-b.Y)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// nearest returns the closest living opponent, lowest index on ties.
func nearest(f *fighter, opponents []*fighter) *fighter {
	var best *fighter
	bestDist := 0
	for _, o := range opponents {
		if !o.alive() {
			continue
		}
		d := distance(f.pos, o.pos)
		if best == nil || d < bestDist {
			best, bestDist = o, d
		}
	}
	return best
}

// stepToward moves one cell toward to, closing the larger gap first.
func stepToward(from, to game.Position) game.Position {
	dx, dy := to.X-from.X, to.Y-from.Y
	if abs(dy) >= abs(dx) && dy != 0 {
		from.Y += sign(dy)
	} else if dx != 0 {
		from.X += sign(dx)
	}
	return from
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}
