// Package bots classifies synthetic opponents and decides whether a bot
// team suits a player's progression.
package bots

import (
	"github.com/ericogr/chimera-arena/internal/game"
	"github.com/ericogr/chimera-arena/internal/team"
)

const (
	MinStage      = 1
	MaxStage      = 9
	MinDifficulty = 1
	MaxDifficulty = 10
)

// Label maps a difficulty to its display name.
func Label(difficulty int) string {
	switch {
	case difficulty <= 2:
		return "Easy"
	case difficulty <= 4:
		return "Normal"
	case difficulty <= 6:
		return "Hard"
	case difficulty <= 8:
		return "Very Hard"
	default:
		return "Nightmare"
	}
}

// IsAppropriate reports whether bot may be offered to a player at
// playerStage with playerWins wins. The stage must match exactly. The win
// bands are one-sided on purpose: high-difficulty bots stay eligible for
// every player with three or more wins.
func IsAppropriate(bot game.BotTeam, playerStage, playerWins int) bool {
	if bot.Stage != playerStage {
		return false
	}
	switch {
	case playerWins <= 2:
		return bot.Difficulty <= 3
	case playerWins <= 5:
		return bot.Difficulty >= 4
	default:
		return bot.Difficulty >= 7
	}
}

// TargetDifficulty is the difficulty the resolver prefers among eligible
// bots for a player with the given wins.
func TargetDifficulty(wins int) int {
	t := 1 + wins
	if t < MinDifficulty {
		return MinDifficulty
	}
	if t > MaxDifficulty {
		return MaxDifficulty
	}
	return t
}

// TeamCost returns the total unit cost of the bot's team.
func TeamCost(bot game.BotTeam, costOf team.CostFunc) int {
	return team.TotalCost(bot.Team.Data(), costOf)
}

// ValidRange reports whether stage and difficulty are inside their
// allowed ranges.
func ValidRange(stage, difficulty int) bool {
	return stage >= MinStage && stage <= MaxStage && difficulty >= MinDifficulty && difficulty <= MaxDifficulty
}

// Summary is a listing view of a bot team.
type Summary struct {
	ID         uint   `json:"id"`
	Name       string `json:"name"`
	Stage      int    `json:"stage"`
	Difficulty int    `json:"difficulty"`
	Label      string `json:"label"`
	Cost       int    `json:"cost"`
	Units      int    `json:"units"`
}

// Describe builds the listing view for bot.
func Describe(bot game.BotTeam, costOf team.CostFunc) Summary {
	return Summary{
		ID:         bot.ID,
		Name:       bot.Name,
		Stage:      bot.Stage,
		Difficulty: bot.Difficulty,
		Label:      Label(bot.Difficulty),
		Cost:       TeamCost(bot, costOf),
		Units:      len(bot.Team.Data().Units),
	}
}
