// Package tasks holds the scheduled background jobs of the arena server.
package tasks

import (
	"context"
	"time"

	"github.com/ericogr/chimera-arena/internal/constants"
	"github.com/ericogr/chimera-arena/internal/game"
	"github.com/ericogr/chimera-arena/internal/logging"
	"github.com/ericogr/chimera-arena/internal/metrics"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
)

// DefaultStaleScanSpec runs the scan every minute (seconds field first).
const DefaultStaleScanSpec = "0 * * * * *"

const staleScanLimit = 100

// StaleFinder lists pending battles older than a given age.
type StaleFinder interface {
	StalePending(ctx context.Context, age time.Duration, limit int) ([]game.Battle, error)
}

// StaleBattleTask reports battles that stayed pending for too long. Pending
// battles are never cancelled or retried here; the report is for operators.
type StaleBattleTask struct {
	finder  StaleFinder
	age     time.Duration
	spec    string
	metrics *metrics.Arena
	worker  string
	cron    *cron.Cron
}

func NewStaleBattleTask(finder StaleFinder, age time.Duration, spec string, m *metrics.Arena) *StaleBattleTask {
	if spec == "" {
		spec = DefaultStaleScanSpec
	}
	return &StaleBattleTask{
		finder:  finder,
		age:     age,
		spec:    spec,
		metrics: m,
		worker:  uuid.NewString(),
	}
}

// Start schedules the scan. It fails when the cron spec is invalid.
func (t *StaleBattleTask) Start() error {
	t.cron = cron.New(cron.WithSeconds())
	if _, err := t.cron.AddFunc(t.spec, func() { t.Scan(context.Background()) }); err != nil {
		logging.Error("stale battle scan not scheduled", err, logging.Fields{constants.LogFieldWorker: t.worker})
		return err
	}
	t.cron.Start()
	logging.Info("stale battle scan scheduled", logging.Fields{
		constants.LogFieldWorker: t.worker,
		"spec":                   t.spec,
		"age":                    t.age.String(),
	})
	return nil
}

// Scan runs one pass and returns how many stale battles were found.
func (t *StaleBattleTask) Scan(ctx context.Context) int {
	stale, err := t.finder.StalePending(ctx, t.age, staleScanLimit)
	if err != nil {
		logging.Error("stale battle scan failed", err, logging.Fields{constants.LogFieldWorker: t.worker})
		return 0
	}
	t.metrics.SetStalePending(len(stale))
	for _, b := range stale {
		logging.Warn("battle pending past threshold", logging.Fields{
			constants.LogFieldWorker:   t.worker,
			constants.LogFieldBattleID: b.ID,
			constants.LogFieldRunID:    b.RunID,
			"created_at":               b.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return len(stale)
}

// Stop waits for a running scan to finish.
func (t *StaleBattleTask) Stop() {
	if t.cron == nil {
		return
	}
	<-t.cron.Stop().Done()
	logging.Info("stale battle scan stopped", logging.Fields{constants.LogFieldWorker: t.worker})
}
