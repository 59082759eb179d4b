package bots

import (
	"testing"

	"github.com/ericogr/chimera-arena/internal/game"
	"gorm.io/datatypes"
)

func TestLabelBoundaries(t *testing.T) {
	cases := map[int]string{
		1: "Easy", 2: "Easy", 3: "Normal", 4: "Normal", 5: "Hard", 6: "Hard",
		7: "Very Hard", 8: "Very Hard", 9: "Nightmare", 10: "Nightmare",
	}
	for d, want := range cases {
		if got := Label(d); got != want {
			t.Fatalf("Label(%d) = %q, want %q", d, got, want)
		}
	}
}

func TestIsAppropriate_Asymmetry(t *testing.T) {
	hard := game.BotTeam{Stage: 3, Difficulty: 10}
	easy := game.BotTeam{Stage: 3, Difficulty: 1}
	if !IsAppropriate(hard, 3, 10) {
		t.Fatalf("difficulty 10 must suit a player with 10 wins")
	}
	if IsAppropriate(hard, 3, 1) {
		t.Fatalf("difficulty 10 must not suit a player with 1 win")
	}
	if IsAppropriate(easy, 3, 6) {
		t.Fatalf("difficulty 1 must not suit a player with 6 wins")
	}
	if !IsAppropriate(hard, 3, 3) {
		t.Fatalf("the middle band has no upper bound")
	}
}

func TestIsAppropriate_Bands(t *testing.T) {
	cases := []struct {
		wins, difficulty int
		want             bool
	}{
		{0, 3, true}, {2, 3, true}, {2, 4, false},
		{3, 3, false}, {3, 4, true}, {5, 4, true}, {5, 10, true},
		{6, 6, false}, {6, 7, true}, {12, 7, true},
	}
	for _, c := range cases {
		bot := game.BotTeam{Stage: 2, Difficulty: c.difficulty}
		if got := IsAppropriate(bot, 2, c.wins); got != c.want {
			t.Fatalf("wins=%d difficulty=%d: got %v, want %v", c.wins, c.difficulty, got, c.want)
		}
	}
}

func TestIsAppropriate_StageMustMatch(t *testing.T) {
	if IsAppropriate(game.BotTeam{Stage: 4, Difficulty: 1}, 3, 0) {
		t.Fatalf("a bot from another stage is never appropriate")
	}
}

func TestTargetDifficulty(t *testing.T) {
	cases := map[int]int{0: 1, 3: 4, 9: 10, 25: 10, -4: 1}
	for wins, want := range cases {
		if got := TargetDifficulty(wins); got != want {
			t.Fatalf("TargetDifficulty(%d) = %d, want %d", wins, got, want)
		}
	}
}

func TestDescribe(t *testing.T) {
	bot := game.BotTeam{
		ID: 4, Name: "Goblin Camp", Stage: 1, Difficulty: 5,
		Team: datatypes.NewJSONType(game.TeamSnapshot{Units: []game.TeamUnit{
			{UnitID: "knight", Tier: 1}, {UnitID: "imp", Tier: 1, Position: game.Position{X: 1}},
		}}),
	}
	s := Describe(bot, func(id string) int {
		if id == "knight" {
			return 5
		}
		return 2
	})
	if s.Label != "Hard" || s.Cost != 7 || s.Units != 2 {
		t.Fatalf("unexpected summary: %+v", s)
	}
	if !ValidRange(bot.Stage, bot.Difficulty) || ValidRange(0, 5) || ValidRange(1, 11) {
		t.Fatalf("unexpected range checks")
	}
}
