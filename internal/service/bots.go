package service

import (
	"context"
	"fmt"

	"github.com/ericogr/chimera-arena/internal/bots"
	"github.com/ericogr/chimera-arena/internal/constants"
	"github.com/ericogr/chimera-arena/internal/game"
	"github.com/ericogr/chimera-arena/internal/logging"
	"github.com/ericogr/chimera-arena/internal/storage"
	"github.com/ericogr/chimera-arena/internal/team"
	"github.com/ericogr/chimera-arena/internal/units"
)

// BotService seeds and lists the synthetic opponents.
type BotService struct {
	repo    storage.Repository
	catalog *units.Catalog
}

func NewBotService(repo storage.Repository, catalog *units.Catalog) *BotService {
	return &BotService{repo: repo, catalog: catalog}
}

// SeedBotTeams inserts teams when the bot table is empty and returns how
// many rows were written. Every team is validated before anything is
// stored, so a bad entry leaves the table untouched.
func (s *BotService) SeedBotTeams(ctx context.Context, teams []game.BotTeam) (int, error) {
	count, err := s.repo.CountBotTeams(ctx)
	if err != nil {
		return 0, err
	}
	if count > 0 {
		logging.Debug("bot teams already seeded", logging.Fields{constants.LogFieldCount: count})
		return 0, nil
	}

	for i, b := range teams {
		if !bots.ValidRange(b.Stage, b.Difficulty) {
			return 0, fmt.Errorf("%w: %q (#%d) has stage %d difficulty %d", ErrInvalidBotTeam, b.Name, i, b.Stage, b.Difficulty)
		}
		if err := team.CheckSnapshot(b.Team.Data(), s.catalog.Cost); err != nil {
			return 0, fmt.Errorf("%w: %q (#%d): %v", ErrInvalidBotTeam, b.Name, i, err)
		}
	}

	if err := s.repo.CreateBotTeams(ctx, teams); err != nil {
		return 0, err
	}
	logging.Info("bot teams seeded", logging.Fields{constants.LogFieldCount: len(teams)})
	return len(teams), nil
}

// ListBots returns the bot teams at stage with their labels and costs, or
// all of them when stage is 0.
func (s *BotService) ListBots(ctx context.Context, stage int) ([]bots.Summary, error) {
	if stage != 0 && (stage < bots.MinStage || stage > bots.MaxStage) {
		return nil, fmt.Errorf("%w: %d", ErrInvalidStage, stage)
	}
	rows, err := s.repo.ListBotTeams(ctx, stage)
	if err != nil {
		return nil, err
	}
	out := make([]bots.Summary, 0, len(rows))
	for _, b := range rows {
		out = append(out, bots.Describe(b, s.catalog.Cost))
	}
	return out, nil
}
