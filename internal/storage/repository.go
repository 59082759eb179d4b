package storage

import (
	"context"
	"errors"
	"time"

	"github.com/ericogr/chimera-arena/internal/game"

	"gorm.io/datatypes"
)

var (
	// ErrNotFound is returned when a referenced row does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrConflict is returned when a write loses against a concurrent one:
	// a second pending battle for a run, or finalizing a battle that is no
	// longer pending.
	ErrConflict = errors.New("conflicting write")
)

type Repository interface {
	// Transaction runs fn against a repository bound to a single database
	// transaction. Returning an error rolls everything back.
	Transaction(ctx context.Context, fn func(tx Repository) error) error

	CreateRun(ctx context.Context, r *game.Run) error
	GetRun(ctx context.Context, id uint) (*game.Run, error)
	UpdateRunTeam(ctx context.Context, id uint, t game.TeamSnapshot) error
	UpdateRunProgress(ctx context.Context, id uint, stage, wins int) error
	// DeleteRun removes the run, its battles and its snapshots. Battles of
	// other runs that fought one of those snapshots keep their row with
	// the snapshot reference cleared.
	DeleteRun(ctx context.Context, id uint) error

	CreateSnapshot(ctx context.Context, s *game.Snapshot) error
	GetSnapshot(ctx context.Context, id uint) (*game.Snapshot, error)
	// ListSnapshotsByStage returns snapshots at stage not authored by
	// excludePlayerID, most recent first.
	ListSnapshotsByStage(ctx context.Context, stage int, excludePlayerID string) ([]game.Snapshot, error)
	// DeleteSnapshot clears the reference on battles then deletes the row.
	DeleteSnapshot(ctx context.Context, id uint) error

	// ListBotTeams returns bot teams at stage, or all of them when stage is 0.
	ListBotTeams(ctx context.Context, stage int) ([]game.BotTeam, error)
	CountBotTeams(ctx context.Context) (int64, error)
	CreateBotTeams(ctx context.Context, bots []game.BotTeam) error

	CreateBattle(ctx context.Context, b *game.Battle) error
	GetBattle(ctx context.Context, id uint) (*game.Battle, error)
	FindPendingBattle(ctx context.Context, runID uint) (*game.Battle, error)
	ListBattlesByRun(ctx context.Context, runID uint) ([]game.Battle, error)
	// FinalizeBattle moves a pending battle to its verdict and stores the
	// event log in one conditional update.
	FinalizeBattle(ctx context.Context, id uint, result game.BattleResult, events datatypes.JSON, at time.Time) error
	// FindStalePendingBattles returns pending battles created at or before
	// the given time, oldest first.
	FindStalePendingBattles(ctx context.Context, before time.Time, limit int) ([]game.Battle, error)
}
