// Package team validates team compositions before they are used in a run,
// stored as a snapshot or seeded as a bot team.
package team

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ericogr/chimera-arena/internal/game"
)

const (
	// MaxBudget is the highest total cost a team may have.
	MaxBudget = 30
	// GridWidth and GridHeight bound positions to [0,7]x[0,9].
	GridWidth  = 8
	GridHeight = 10
	// MinTier is the lowest tier a stored unit may carry.
	MinTier = 1
)

// Rule identifies a validation rule.
type Rule string

const (
	RuleLengthMismatch      Rule = "length_mismatch"
	RuleEmptyTeam           Rule = "empty_team"
	RuleOverBudget          Rule = "over_budget"
	RulePositionOutOfBounds Rule = "position_out_of_bounds"
	RuleTierBelowMinimum    Rule = "tier_below_minimum"
)

// CostFunc returns the cost of a unit id. It must be total: unknown ids get
// a deterministic default.
type CostFunc func(unitID string) int

// Violation describes one failed rule. Index is the offending position for
// RulePositionOutOfBounds, the offending unit for RuleTierBelowMinimum and
// -1 otherwise.
type Violation struct {
	Rule    Rule   `json:"rule"`
	Index   int    `json:"index"`
	Message string `json:"message"`
}

var ErrInvalidTeamComposition = errors.New("invalid team composition")

// ValidationError carries every violated rule.
type ValidationError struct {
	Violations []Violation
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		msgs[i] = v.Message
	}
	return fmt.Sprintf("%s: %s", ErrInvalidTeamComposition, strings.Join(msgs, "; "))
}

func (e *ValidationError) Unwrap() error { return ErrInvalidTeamComposition }

// Validate checks a team setup and returns all violations. An empty result
// means the team is valid.
func Validate(setup game.TeamSetup, costOf CostFunc) []Violation {
	var out []Violation
	if len(setup.Units) != len(setup.Positions) {
		out = append(out, Violation{
			Rule:    RuleLengthMismatch,
			Index:   -1,
			Message: fmt.Sprintf("%d units but %d positions", len(setup.Units), len(setup.Positions)),
		})
	}
	if len(setup.Units) < 1 {
		out = append(out, Violation{Rule: RuleEmptyTeam, Index: -1, Message: "team has no units"})
	}
	if total := totalCost(setup.Units, costOf); total > MaxBudget {
		out = append(out, Violation{
			Rule:    RuleOverBudget,
			Index:   -1,
			Message: fmt.Sprintf("total cost %d exceeds budget %d", total, MaxBudget),
		})
	}
	for i, p := range setup.Positions {
		if !InBounds(p) {
			out = append(out, Violation{
				Rule:    RulePositionOutOfBounds,
				Index:   i,
				Message: fmt.Sprintf("position %d (%d,%d) is outside the grid", i, p.X, p.Y),
			})
		}
	}
	return out
}

// Valid reports whether the setup passes every rule.
func Valid(setup game.TeamSetup, costOf CostFunc) bool {
	return len(Validate(setup, costOf)) == 0
}

// Check returns nil or a *ValidationError.
func Check(setup game.TeamSetup, costOf CostFunc) error {
	if v := Validate(setup, costOf); len(v) > 0 {
		return &ValidationError{Violations: v}
	}
	return nil
}

// CheckSnapshot validates a team in its canonical shape.
func CheckSnapshot(t game.TeamSnapshot, costOf CostFunc) error {
	return Check(t.Setup(), costOf)
}

// InBounds reports whether p lies on the battlefield grid.
func InBounds(p game.Position) bool {
	return p.X >= 0 && p.X < GridWidth && p.Y >= 0 && p.Y < GridHeight
}

// TotalCost sums the cost of every unit of a canonical team.
func TotalCost(t game.TeamSnapshot, costOf CostFunc) int {
	return totalCost(t.Setup().Units, costOf)
}

// SetupCost sums the cost of every submitted unit, positions aside.
func SetupCost(setup game.TeamSetup, costOf CostFunc) int {
	return totalCost(setup.Units, costOf)
}

// CheckTiers rejects units below MinTier. It is not part of Validate:
// composition legality ignores tier, but submitted rosters must still be
// well formed before they are stored.
func CheckTiers(setup game.TeamSetup) error {
	var out []Violation
	for i, u := range setup.Units {
		if u.Tier < MinTier {
			out = append(out, Violation{
				Rule:    RuleTierBelowMinimum,
				Index:   i,
				Message: fmt.Sprintf("unit %d (%s) has tier %d, minimum is %d", i, u.UnitID, u.Tier, MinTier),
			})
		}
	}
	if len(out) > 0 {
		return &ValidationError{Violations: out}
	}
	return nil
}

func totalCost(units []game.TeamSetupUnit, costOf CostFunc) int {
	total := 0
	for _, u := range units {
		total += costOf(u.UnitID)
	}
	return total
}

// Violations extracts the violation list from err, if any.
func Violations(err error) []Violation {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Violations
	}
	return nil
}
