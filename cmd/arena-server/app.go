package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/ericogr/chimera-arena/internal/config"
	"github.com/ericogr/chimera-arena/internal/constants"
	"github.com/ericogr/chimera-arena/internal/logging"
	"github.com/ericogr/chimera-arena/internal/service"
	"github.com/ericogr/chimera-arena/internal/storage"
)

func loadConfigOrExit(path string) *config.LoadedConfig {
	cfg, err := config.LoadConfig(path)
	if err != nil {
		logging.Fatal("Missing or invalid arena configuration", err, logging.Fields{
			constants.LogFieldConfigPath: path,
			"hint":                       "create an arena_config.json with optional keys unit_list, bot_team_list, server.address, simulator_timeout, stale_battle_after",
		})
	}
	return cfg
}

func createRepositoryOrExit(dbPath string) storage.Repository {
	if !strings.HasPrefix(dbPath, "file:") && dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			logging.Fatal("Failed to create database directory", err, logging.Fields{"db_path": dbPath})
		}
	}
	db, err := storage.OpenDB(dbPath)
	if err != nil {
		logging.Fatal("Failed to initialize database", err, logging.Fields{"db_path": dbPath})
	}
	return storage.NewSQLiteRepository(db)
}

// seedBotTeamsOrExit fills an empty bot table from the config. A bot team
// that fails validation stops the server: stages without bot coverage
// would otherwise surface later as unresolvable battles.
func seedBotTeamsOrExit(ctx context.Context, bots *service.BotService, cfg *config.LoadedConfig) {
	n, err := bots.SeedBotTeams(ctx, cfg.BotTeams)
	if err != nil {
		logging.Fatal("Failed to seed bot teams", err, nil)
	}
	if n == 0 && len(cfg.BotTeams) == 0 {
		logging.Warn("No bot teams configured; runs without snapshot opponents cannot battle", nil)
	}
}
