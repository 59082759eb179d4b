package matchmaking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ericogr/chimera-arena/internal/bots"
	"github.com/ericogr/chimera-arena/internal/constants"
	"github.com/ericogr/chimera-arena/internal/game"
	"github.com/ericogr/chimera-arena/internal/logging"
)

// ErrNoEligibleOpponent means neither a snapshot nor an in-band bot team
// exists for the run's stage. Every stage is expected to have bot coverage,
// so this is a content problem and is never papered over with an
// out-of-band bot.
var ErrNoEligibleOpponent = errors.New("no eligible opponent")

// BotStore is the read side of the bot team table the resolver needs.
type BotStore interface {
	ListBotTeams(ctx context.Context, stage int) ([]game.BotTeam, error)
}

// Resolver chooses an opponent for a run. It never writes.
type Resolver struct {
	matcher *SnapshotMatcher
	bots    BotStore
}

func NewResolver(snapshots SnapshotStore, botStore BotStore) *Resolver {
	return &Resolver{matcher: NewSnapshotMatcher(snapshots), bots: botStore}
}

// Resolve returns the opponent for run.
func (r *Resolver) Resolve(ctx context.Context, run game.Run) (game.OpponentRef, error) {
	candidates, err := r.matcher.FindCandidates(ctx, run.Stage, run.PlayerID)
	if err != nil {
		return game.OpponentRef{}, fmt.Errorf("find snapshot candidates: %w", err)
	}
	if s, ok := SelectSnapshot(candidates, run.Wins); ok {
		logging.Debug("opponent resolved from snapshot", logging.Fields{
			constants.LogFieldRunID:      run.ID,
			constants.LogFieldSnapshotID: s.ID,
			constants.LogFieldStage:      run.Stage,
		})
		return game.SnapshotOpponent(s), nil
	}

	botTeams, err := r.bots.ListBotTeams(ctx, run.Stage)
	if err != nil {
		return game.OpponentRef{}, fmt.Errorf("list bot teams: %w", err)
	}
	if b, ok := SelectBot(botTeams, run.Stage, run.Wins); ok {
		logging.Debug("opponent resolved from bot team", logging.Fields{
			constants.LogFieldRunID:     run.ID,
			constants.LogFieldBotTeamID: b.ID,
			constants.LogFieldStage:     run.Stage,
		})
		return game.BotOpponent(b), nil
	}

	logging.Error("no bot team covers stage and win band", ErrNoEligibleOpponent, logging.Fields{
		constants.LogFieldRunID: run.ID,
		constants.LogFieldStage: run.Stage,
		constants.LogFieldWins:  run.Wins,
	})
	return game.OpponentRef{}, fmt.Errorf("%w: stage %d, %d wins", ErrNoEligibleOpponent, run.Stage, run.Wins)
}

// SelectSnapshot picks the candidate whose wins are closest to wins. Ties
// go to the most recent snapshot, then to the highest id so the choice is
// reproducible for the same candidate set.
func SelectSnapshot(candidates []game.Snapshot, wins int) (game.Snapshot, bool) {
	if len(candidates) == 0 {
		return game.Snapshot{}, false
	}
	best := candidates[0]
	for _, c := range candidates[1:] {
		d, bd := distance(c.Wins, wins), distance(best.Wins, wins)
		if d < bd || (d == bd && newer(c.CreatedAt, c.ID, best.CreatedAt, best.ID)) {
			best = c
		}
	}
	return best, true
}

// SelectBot filters bot teams by stage and win band and picks the one whose
// difficulty is closest to bots.TargetDifficulty(wins), then the most
// recent, then the highest id.
func SelectBot(teams []game.BotTeam, stage, wins int) (game.BotTeam, bool) {
	target := bots.TargetDifficulty(wins)
	var best game.BotTeam
	found := false
	for _, b := range teams {
		if !bots.IsAppropriate(b, stage, wins) {
			continue
		}
		if !found {
			best, found = b, true
			continue
		}
		d, bd := distance(b.Difficulty, target), distance(best.Difficulty, target)
		if d < bd || (d == bd && newer(b.CreatedAt, b.ID, best.CreatedAt, best.ID)) {
			best = b
		}
	}
	return best, found
}

func distance(a, b int) int {
	if a > b {
		return a - b
	}
	return b - a
}

// newer orders by creation time descending, then id descending.
func newer(at time.Time, id uint, otherAt time.Time, otherID uint) bool {
	if !at.Equal(otherAt) {
		return at.After(otherAt)
	}
	return id > otherID
}
