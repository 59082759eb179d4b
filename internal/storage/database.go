package storage

import (
	"strings"

	"github.com/ericogr/chimera-arena/internal/game"
	"github.com/ericogr/chimera-arena/internal/logging"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// OpenDB opens the sqlite database at dataSourceName, enables foreign keys
// and migrates the schema.
func OpenDB(dataSourceName string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(withForeignKeys(dataSourceName)), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, err
	}

	// SQLite allows a single writer; one connection keeps transactions and
	// the pending-battle index check strictly serialized.
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate creates or updates the schema.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&game.Run{}, &game.Snapshot{}, &game.BotTeam{}, &game.Battle{}); err != nil {
		return err
	}
	// At most one pending battle per run. The partial index makes a second
	// concurrent battle creation fail even if two processes share the file.
	if err := db.Exec("CREATE UNIQUE INDEX IF NOT EXISTS idx_battles_one_pending_per_run ON battles(run_id) WHERE result = 'pending';").Error; err != nil {
		return err
	}
	logging.Debug("schema migrated", nil)
	return nil
}

func withForeignKeys(dsn string) string {
	if strings.Contains(dsn, "_foreign_keys") || strings.Contains(dsn, "_fk=") {
		return dsn
	}
	if strings.Contains(dsn, "?") {
		return dsn + "&_foreign_keys=on"
	}
	return dsn + "?_foreign_keys=on"
}
