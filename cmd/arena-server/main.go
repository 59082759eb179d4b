package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/ericogr/chimera-arena/internal/api"
	"github.com/ericogr/chimera-arena/internal/config"
	"github.com/ericogr/chimera-arena/internal/constants"
	"github.com/ericogr/chimera-arena/internal/engine"
	"github.com/ericogr/chimera-arena/internal/logging"
	"github.com/ericogr/chimera-arena/internal/metrics"
	"github.com/ericogr/chimera-arena/internal/service"
	"github.com/ericogr/chimera-arena/internal/version"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	env, err := config.LoadEnv()
	if err != nil {
		logging.Fatal("Invalid environment", err, nil)
	}
	logging.SetLevel(logging.ParseLevel(env.LogLevel))
	gin.SetMode(gin.ReleaseMode)

	cfg := loadConfigOrExit(env.ConfigPath)
	catalog := cfg.Catalog()
	repo := createRepositoryOrExit(env.DatabasePath)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	runs := service.NewRunService(repo, catalog, m)
	bots := service.NewBotService(repo, catalog)
	battles := service.NewBattleService(repo, engine.NewSimulator(catalog),
		service.WithSimulatorTimeout(cfg.SimulatorTimeout),
		service.WithBattleMetrics(m),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	seedBotTeamsOrExit(ctx, bots, cfg)

	scanner := startStaleScanner(battles, cfg.StaleBattleAfter, env.StaleScan, m)
	defer scanner.Stop()

	router := api.NewRouter(api.NewHandler(runs, battles, bots), m, reg)

	addr := cfg.ServerAddress
	if env.ServerAddr != "" {
		addr = env.ServerAddr
	}
	logging.Info("Server started", logging.Fields{
		constants.LogFieldAddr: addr,
		"version":              version.Get().String(),
		"units":                catalog.Len(),
	})
	if err := runServer(ctx, addr, router); err != nil {
		logging.Fatal("Failed to start server", err, nil)
	}
	logging.Info("Server stopped", nil)
}
