package storage

import (
	"context"
	"errors"
	"time"

	"github.com/ericogr/chimera-arena/internal/game"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type sqliteRepository struct {
	db *gorm.DB
}

func NewSQLiteRepository(db *gorm.DB) Repository {
	return &sqliteRepository{db: db}
}

// translate maps gorm errors onto the package sentinels.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrConflict
	default:
		return err
	}
}

func (r *sqliteRepository) Transaction(ctx context.Context, fn func(tx Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&sqliteRepository{db: tx})
	})
}

func (r *sqliteRepository) CreateRun(ctx context.Context, run *game.Run) error {
	return translate(r.db.WithContext(ctx).Create(run).Error)
}

func (r *sqliteRepository) GetRun(ctx context.Context, id uint) (*game.Run, error) {
	var run game.Run
	if err := r.db.WithContext(ctx).First(&run, id).Error; err != nil {
		return nil, translate(err)
	}
	return &run, nil
}

func (r *sqliteRepository) UpdateRunTeam(ctx context.Context, id uint, t game.TeamSnapshot) error {
	res := r.db.WithContext(ctx).Model(&game.Run{}).Where("id = ?", id).Update("team", datatypes.NewJSONType(t))
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *sqliteRepository) UpdateRunProgress(ctx context.Context, id uint, stage, wins int) error {
	res := r.db.WithContext(ctx).Model(&game.Run{}).Where("id = ?", id).
		Updates(map[string]interface{}{"stage": stage, "wins": wins})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *sqliteRepository) DeleteRun(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var run game.Run
		if err := tx.Select("id").First(&run, id).Error; err != nil {
			return translate(err)
		}
		// cascade: the run's own battles
		if err := tx.Where("run_id = ?", id).Delete(&game.Battle{}).Error; err != nil {
			return err
		}
		// set-null: other runs' battles against this run's snapshots
		owned := tx.Model(&game.Snapshot{}).Select("id").Where("run_id = ?", id)
		if err := tx.Model(&game.Battle{}).Where("enemy_snapshot_id IN (?)", owned).
			Update("enemy_snapshot_id", gorm.Expr("NULL")).Error; err != nil {
			return err
		}
		// cascade: the run's snapshots
		if err := tx.Where("run_id = ?", id).Delete(&game.Snapshot{}).Error; err != nil {
			return err
		}
		return tx.Delete(&game.Run{}, id).Error
	})
}

func (r *sqliteRepository) CreateSnapshot(ctx context.Context, s *game.Snapshot) error {
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Create(s).Error)
}

func (r *sqliteRepository) GetSnapshot(ctx context.Context, id uint) (*game.Snapshot, error) {
	var s game.Snapshot
	if err := r.db.WithContext(ctx).First(&s, id).Error; err != nil {
		return nil, translate(err)
	}
	return &s, nil
}

func (r *sqliteRepository) ListSnapshotsByStage(ctx context.Context, stage int, excludePlayerID string) ([]game.Snapshot, error) {
	var out []game.Snapshot
	err := r.db.WithContext(ctx).
		Where("stage = ? AND player_id <> ?", stage, excludePlayerID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&out).Error
	if err != nil {
		return nil, translate(err)
	}
	return out, nil
}

func (r *sqliteRepository) DeleteSnapshot(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var s game.Snapshot
		if err := tx.Select("id").First(&s, id).Error; err != nil {
			return translate(err)
		}
		if err := tx.Model(&game.Battle{}).Where("enemy_snapshot_id = ?", id).
			Update("enemy_snapshot_id", gorm.Expr("NULL")).Error; err != nil {
			return err
		}
		return tx.Delete(&game.Snapshot{}, id).Error
	})
}

func (r *sqliteRepository) ListBotTeams(ctx context.Context, stage int) ([]game.BotTeam, error) {
	q := r.db.WithContext(ctx).Model(&game.BotTeam{})
	if stage > 0 {
		q = q.Where("stage = ?", stage)
	}
	var out []game.BotTeam
	if err := q.Order("stage ASC").Order("difficulty ASC").Order("id ASC").Find(&out).Error; err != nil {
		return nil, translate(err)
	}
	return out, nil
}

func (r *sqliteRepository) CountBotTeams(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&game.BotTeam{}).Count(&count).Error; err != nil {
		return 0, translate(err)
	}
	return count, nil
}

func (r *sqliteRepository) CreateBotTeams(ctx context.Context, bots []game.BotTeam) error {
	if len(bots) == 0 {
		return nil
	}
	return translate(r.db.WithContext(ctx).Create(&bots).Error)
}

func (r *sqliteRepository) CreateBattle(ctx context.Context, b *game.Battle) error {
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Create(b).Error)
}

func (r *sqliteRepository) GetBattle(ctx context.Context, id uint) (*game.Battle, error) {
	var b game.Battle
	if err := r.db.WithContext(ctx).First(&b, id).Error; err != nil {
		return nil, translate(err)
	}
	return &b, nil
}

func (r *sqliteRepository) FindPendingBattle(ctx context.Context, runID uint) (*game.Battle, error) {
	var b game.Battle
	err := r.db.WithContext(ctx).Where("run_id = ? AND result = ?", runID, game.ResultPending).First(&b).Error
	if err != nil {
		return nil, translate(err)
	}
	return &b, nil
}

func (r *sqliteRepository) ListBattlesByRun(ctx context.Context, runID uint) ([]game.Battle, error) {
	var out []game.Battle
	if err := r.db.WithContext(ctx).Where("run_id = ?", runID).Order("created_at DESC").Order("id DESC").Find(&out).Error; err != nil {
		return nil, translate(err)
	}
	return out, nil
}

func (r *sqliteRepository) FinalizeBattle(ctx context.Context, id uint, result game.BattleResult, events datatypes.JSON, at time.Time) error {
	res := r.db.WithContext(ctx).Model(&game.Battle{}).
		Where("id = ? AND result = ?", id, game.ResultPending).
		Updates(map[string]interface{}{
			"result":      result,
			"events":      events,
			"resolved_at": at,
		})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected > 0 {
		return nil
	}
	var count int64
	if err := r.db.WithContext(ctx).Model(&game.Battle{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return translate(err)
	}
	if count == 0 {
		return ErrNotFound
	}
	return ErrConflict
}

func (r *sqliteRepository) FindStalePendingBattles(ctx context.Context, before time.Time, limit int) ([]game.Battle, error) {
	if limit <= 0 {
		limit = 50
	}
	var out []game.Battle
	err := r.db.WithContext(ctx).
		Where("result = ? AND created_at <= ?", game.ResultPending, before).
		Order("created_at ASC").
		Limit(limit).
		Find(&out).Error
	if err != nil {
		return nil, translate(err)
	}
	return out, nil
}
