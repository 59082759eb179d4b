// Package service implements the arena operations on top of the storage
// layer: starting a battle against a resolved opponent, recording its
// outcome, and managing runs, snapshots and bot teams.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/ericogr/chimera-arena/internal/constants"
	"github.com/ericogr/chimera-arena/internal/dedupe"
	"github.com/ericogr/chimera-arena/internal/game"
	"github.com/ericogr/chimera-arena/internal/logging"
	"github.com/ericogr/chimera-arena/internal/matchmaking"
	"github.com/ericogr/chimera-arena/internal/metrics"
	"github.com/ericogr/chimera-arena/internal/storage"

	"gorm.io/datatypes"
)

// DefaultSimulatorTimeout bounds one simulator call when none is configured.
const DefaultSimulatorTimeout = 5 * time.Second

// Simulator computes a battle from both rosters and a seed. The same
// inputs must always produce the same result.
type Simulator interface {
	Simulate(ctx context.Context, player, enemy game.TeamSnapshot, seed int64) (game.SimulationResult, error)
}

// BattleService creates battles and records their outcomes.
type BattleService struct {
	repo    storage.Repository
	sim     Simulator
	timeout time.Duration
	metrics *metrics.Arena
	seed    func() int64
	now     func() time.Time
}

type BattleOption func(*BattleService)

func WithSimulatorTimeout(d time.Duration) BattleOption {
	return func(s *BattleService) {
		if d > 0 {
			s.timeout = d
		}
	}
}

func WithBattleMetrics(m *metrics.Arena) BattleOption {
	return func(s *BattleService) { s.metrics = m }
}

// WithSeedSource replaces the random seed generator. Tests use it to pin
// battle seeds.
func WithSeedSource(fn func() int64) BattleOption {
	return func(s *BattleService) { s.seed = fn }
}

func WithClock(fn func() time.Time) BattleOption {
	return func(s *BattleService) { s.now = fn }
}

func NewBattleService(repo storage.Repository, sim Simulator, opts ...BattleOption) *BattleService {
	s := &BattleService{
		repo:    repo,
		sim:     sim,
		timeout: DefaultSimulatorTimeout,
		seed:    rand.Int63,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// StartBattle resolves an opponent for the run and stores a pending battle
// with a fresh seed. Concurrent calls for the same run share one
// execution, and the store rejects a second pending battle for a run.
//
// The shared execution is detached from the caller's cancellation: a
// caller that gives up returns ctx.Err() while the others still get the
// battle.
func (s *BattleService) StartBattle(ctx context.Context, runID uint) (*game.Battle, error) {
	detached := context.WithoutCancel(ctx)
	ch := dedupe.BattleGroup.DoChan(dedupe.RunKey(runID), func() (interface{}, error) {
		return s.startBattle(detached, runID)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		if res.Shared {
			logging.Debug("battle creation shared with concurrent caller", logging.Fields{constants.LogFieldRunID: runID})
		}
		b := *res.Val.(*game.Battle)
		return &b, nil
	}
}

func (s *BattleService) startBattle(ctx context.Context, runID uint) (*game.Battle, error) {
	var (
		created  *game.Battle
		opponent game.OpponentRef
	)
	err := s.repo.Transaction(ctx, func(tx storage.Repository) error {
		run, err := tx.GetRun(ctx, runID)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return ErrUnknownRun
			}
			return err
		}

		if pending, err := tx.FindPendingBattle(ctx, runID); err == nil {
			logging.Warn("battle already pending for run", logging.Fields{
				constants.LogFieldRunID:    runID,
				constants.LogFieldBattleID: pending.ID,
			})
			return ErrBattleInFlight
		} else if !errors.Is(err, storage.ErrNotFound) {
			return err
		}

		opponent, err = matchmaking.NewResolver(tx, tx).Resolve(ctx, *run)
		if err != nil {
			return err
		}

		b := &game.Battle{
			RunID:           run.ID,
			EnemySnapshotID: opponent.EnemySnapshotRef(),
			OpponentKind:    opponent.Kind,
			Seed:            s.seed(),
			Result:          game.ResultPending,
			PlayerTeam:      datatypes.NewJSONType(run.Team.Data()),
			EnemyTeam:       datatypes.NewJSONType(opponent.Team),
		}
		if err := tx.CreateBattle(ctx, b); err != nil {
			if errors.Is(err, storage.ErrConflict) {
				return ErrBattleInFlight
			}
			return err
		}
		created = b
		return nil
	})
	if err != nil {
		if errors.Is(err, matchmaking.ErrNoEligibleOpponent) {
			s.metrics.ObserveResolution("none")
		}
		return nil, err
	}

	s.metrics.ObserveResolution(string(opponent.Kind))
	s.metrics.ObserveBattleCreated()
	logging.Info("battle created", logging.Fields{
		constants.LogFieldRunID:      runID,
		constants.LogFieldBattleID:   created.ID,
		constants.LogFieldSource:     opponent.Kind,
		constants.LogFieldSeed:       created.Seed,
		constants.LogFieldSnapshotID: opponent.SnapshotID,
		constants.LogFieldBotTeamID:  opponent.BotTeamID,
	})
	return created, nil
}

// ResolveOutcome runs the simulator for a pending battle and stores the
// verdict and event log. A failed or timed out simulation leaves the
// battle pending. The player's roster is the one frozen by StartBattle, so
// a deck edit after the battle was created does not affect the fight.
func (s *BattleService) ResolveOutcome(ctx context.Context, battleID uint) (*game.Battle, error) {
	b, err := s.repo.GetBattle(ctx, battleID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrUnknownBattle
		}
		return nil, err
	}
	if b.Result != game.ResultPending {
		return nil, ErrBattleAlreadyResolved
	}

	res, err := s.simulate(ctx, b)
	if err != nil {
		logging.Error("battle simulation failed", err, logging.Fields{
			constants.LogFieldBattleID: b.ID,
			constants.LogFieldRunID:    b.RunID,
			constants.LogFieldSeed:     b.Seed,
		})
		return nil, fmt.Errorf("%w: %v", ErrSimulatorFailure, err)
	}
	if !res.Verdict.Terminal() {
		return nil, fmt.Errorf("%w: verdict %q", ErrSimulatorFailure, res.Verdict)
	}

	events := res.Events
	if events == nil {
		events = []game.BattleEvent{}
	}
	raw, err := json.Marshal(events)
	if err != nil {
		return nil, err
	}

	at := s.now()
	if err := s.repo.FinalizeBattle(ctx, b.ID, res.Verdict, datatypes.JSON(raw), at); err != nil {
		switch {
		case errors.Is(err, storage.ErrConflict):
			return nil, ErrBattleAlreadyResolved
		case errors.Is(err, storage.ErrNotFound):
			return nil, ErrUnknownBattle
		}
		return nil, err
	}

	b.Result = res.Verdict
	b.Events = datatypes.JSON(raw)
	b.ResolvedAt = &at
	s.metrics.ObserveOutcome(string(res.Verdict))
	logging.Info("battle resolved", logging.Fields{
		constants.LogFieldBattleID: b.ID,
		constants.LogFieldRunID:    b.RunID,
		constants.LogFieldResult:   res.Verdict,
		constants.LogFieldCount:    len(events),
	})
	return b, nil
}

func (s *BattleService) simulate(ctx context.Context, b *game.Battle) (game.SimulationResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	type outcome struct {
		res game.SimulationResult
		err error
	}
	done := make(chan outcome, 1)
	start := time.Now()
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- outcome{err: fmt.Errorf("simulator panic: %v", r)}
			}
		}()
		res, err := s.sim.Simulate(ctx, b.PlayerTeam.Data(), b.EnemyTeam.Data(), b.Seed)
		done <- outcome{res: res, err: err}
	}()

	select {
	case o := <-done:
		s.metrics.ObserveSimulation(time.Since(start), o.err != nil)
		return o.res, o.err
	case <-ctx.Done():
		s.metrics.ObserveSimulation(time.Since(start), true)
		return game.SimulationResult{}, ctx.Err()
	}
}

func (s *BattleService) GetBattle(ctx context.Context, id uint) (*game.Battle, error) {
	b, err := s.repo.GetBattle(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrUnknownBattle
	}
	return b, err
}

// ListRunBattles returns the run's battles, most recent first.
func (s *BattleService) ListRunBattles(ctx context.Context, runID uint) ([]game.Battle, error) {
	if _, err := s.repo.GetRun(ctx, runID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrUnknownRun
		}
		return nil, err
	}
	return s.repo.ListBattlesByRun(ctx, runID)
}

// StalePending returns pending battles created more than age ago.
func (s *BattleService) StalePending(ctx context.Context, age time.Duration, limit int) ([]game.Battle, error) {
	return s.repo.FindStalePendingBattles(ctx, s.now().Add(-age), limit)
}

// PreviewOpponent resolves the opponent a run would fight without
// creating a battle.
func (s *BattleService) PreviewOpponent(ctx context.Context, runID uint) (game.OpponentRef, error) {
	run, err := s.repo.GetRun(ctx, runID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return game.OpponentRef{}, ErrUnknownRun
		}
		return game.OpponentRef{}, err
	}
	return matchmaking.NewResolver(s.repo, s.repo).Resolve(ctx, *run)
}
