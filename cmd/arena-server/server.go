package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/ericogr/chimera-arena/internal/logging"
	"github.com/ericogr/chimera-arena/internal/metrics"
	"github.com/ericogr/chimera-arena/internal/tasks"
)

const shutdownGrace = 10 * time.Second

// startStaleScanner schedules the stale pending battle report.
func startStaleScanner(finder tasks.StaleFinder, age time.Duration, spec string, m *metrics.Arena) *tasks.StaleBattleTask {
	task := tasks.NewStaleBattleTask(finder, age, spec, m)
	if err := task.Start(); err != nil {
		logging.Fatal("Invalid stale battle scan schedule", err, logging.Fields{"spec": spec})
	}
	return task
}

// runServer serves handler on addr until ctx is cancelled, then drains
// in-flight requests.
func runServer(ctx context.Context, addr string, handler http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
