package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ericogr/chimera-arena/internal/bots"
	"github.com/ericogr/chimera-arena/internal/constants"
	"github.com/ericogr/chimera-arena/internal/game"
	"github.com/ericogr/chimera-arena/internal/logging"
	"github.com/ericogr/chimera-arena/internal/metrics"
	"github.com/ericogr/chimera-arena/internal/storage"
	"github.com/ericogr/chimera-arena/internal/team"
	"github.com/ericogr/chimera-arena/internal/units"

	"gorm.io/datatypes"
)

// RunService manages runs, their rosters and the snapshots taken from
// them. Stage and wins are written here but decided by the progression
// logic that calls RecordProgress.
type RunService struct {
	repo    storage.Repository
	catalog *units.Catalog
	metrics *metrics.Arena
}

func NewRunService(repo storage.Repository, catalog *units.Catalog, m *metrics.Arena) *RunService {
	return &RunService{repo: repo, catalog: catalog, metrics: m}
}

// ValidateTeam reports every rule the setup violates.
func (s *RunService) ValidateTeam(setup game.TeamSetup) []team.Violation {
	violations := team.Validate(setup, s.catalog.Cost)
	s.observe(violations)
	return violations
}

// TeamCost sums the unit costs of setup, positions aside.
func (s *RunService) TeamCost(setup game.TeamSetup) int {
	return team.SetupCost(setup, s.catalog.Cost)
}

func (s *RunService) check(setup game.TeamSetup) error {
	err := team.Check(setup, s.catalog.Cost)
	s.observe(team.Violations(err))
	return err
}

func (s *RunService) observe(violations []team.Violation) {
	for _, v := range violations {
		s.metrics.ObserveValidationFailure(string(v.Rule))
	}
}

// CreateRun starts a run at stage 1 with no wins.
func (s *RunService) CreateRun(ctx context.Context, playerID string, setup game.TeamSetup) (*game.Run, error) {
	playerID = strings.TrimSpace(playerID)
	if playerID == "" {
		return nil, ErrInvalidPlayer
	}
	if err := s.check(setup); err != nil {
		return nil, err
	}
	run := &game.Run{
		PlayerID: playerID,
		Stage:    bots.MinStage,
		Wins:     0,
		Team:     datatypes.NewJSONType(setup.Snapshot()),
	}
	if err := s.repo.CreateRun(ctx, run); err != nil {
		return nil, err
	}
	logging.Info("run created", logging.Fields{constants.LogFieldRunID: run.ID, constants.LogFieldPlayerID: playerID})
	return run, nil
}

func (s *RunService) GetRun(ctx context.Context, id uint) (*game.Run, error) {
	run, err := s.repo.GetRun(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrUnknownRun
	}
	return run, err
}

// UpdateTeam replaces the run's roster. Pending battles keep the roster
// they were created with.
func (s *RunService) UpdateTeam(ctx context.Context, runID uint, setup game.TeamSetup) (*game.Run, error) {
	if err := s.check(setup); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateRunTeam(ctx, runID, setup.Snapshot()); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrUnknownRun
		}
		return nil, err
	}
	return s.GetRun(ctx, runID)
}

// RecordProgress stores the stage and win count reached by the run.
func (s *RunService) RecordProgress(ctx context.Context, runID uint, stage, wins int) (*game.Run, error) {
	if stage < bots.MinStage || stage > bots.MaxStage {
		return nil, fmt.Errorf("%w: stage %d outside %d..%d", ErrInvalidProgress, stage, bots.MinStage, bots.MaxStage)
	}
	if wins < 0 {
		return nil, fmt.Errorf("%w: negative wins", ErrInvalidProgress)
	}
	if err := s.repo.UpdateRunProgress(ctx, runID, stage, wins); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrUnknownRun
		}
		return nil, err
	}
	logging.Debug("run progress recorded", logging.Fields{
		constants.LogFieldRunID: runID,
		constants.LogFieldStage: stage,
		constants.LogFieldWins:  wins,
	})
	return s.GetRun(ctx, runID)
}

// RecordSnapshot freezes the run's current roster at its current stage
// and wins so other players can be matched against it.
func (s *RunService) RecordSnapshot(ctx context.Context, runID uint) (*game.Snapshot, error) {
	run, err := s.GetRun(ctx, runID)
	if err != nil {
		return nil, err
	}
	if err := team.CheckSnapshot(run.Team.Data(), s.catalog.Cost); err != nil {
		s.observe(team.Violations(err))
		return nil, err
	}
	snap := &game.Snapshot{
		PlayerID: run.PlayerID,
		RunID:    run.ID,
		Stage:    run.Stage,
		Wins:     run.Wins,
		Team:     datatypes.NewJSONType(run.Team.Data()),
	}
	if err := s.repo.CreateSnapshot(ctx, snap); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrUnknownRun
		}
		return nil, err
	}
	logging.Info("snapshot recorded", logging.Fields{
		constants.LogFieldRunID:      run.ID,
		constants.LogFieldSnapshotID: snap.ID,
		constants.LogFieldStage:      snap.Stage,
		constants.LogFieldWins:       snap.Wins,
	})
	return snap, nil
}

// DeleteRun removes the run with its battles and snapshots.
func (s *RunService) DeleteRun(ctx context.Context, id uint) error {
	if err := s.repo.DeleteRun(ctx, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrUnknownRun
		}
		return err
	}
	logging.Info("run deleted", logging.Fields{constants.LogFieldRunID: id})
	return nil
}

// DeleteSnapshot removes a snapshot. Battles fought against it keep their
// record with the snapshot reference cleared.
func (s *RunService) DeleteSnapshot(ctx context.Context, id uint) error {
	if err := s.repo.DeleteSnapshot(ctx, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrUnknownSnapshot
		}
		return err
	}
	logging.Info("snapshot deleted", logging.Fields{constants.LogFieldSnapshotID: id})
	return nil
}
