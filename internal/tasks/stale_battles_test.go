package tasks

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ericogr/chimera-arena/internal/game"
	"github.com/ericogr/chimera-arena/internal/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

type mockFinder struct {
	battles []game.Battle
	err     error
	age     time.Duration
}

func (m *mockFinder) StalePending(ctx context.Context, age time.Duration, limit int) ([]game.Battle, error) {
	m.age = age
	return m.battles, m.err
}

func TestScanReportsStaleBattles(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	finder := &mockFinder{battles: []game.Battle{{ID: 1, RunID: 3}, {ID: 2, RunID: 4}}}
	task := NewStaleBattleTask(finder, 15*time.Minute, "", m)

	if n := task.Scan(context.Background()); n != 2 {
		t.Fatalf("expected 2 stale battles, got %d", n)
	}
	if finder.age != 15*time.Minute {
		t.Fatalf("expected age to be forwarded, got %v", finder.age)
	}
	if v := testutil.ToFloat64(m.StalePending); v != 2 {
		t.Fatalf("expected gauge 2, got %v", v)
	}
}

func TestScanSurvivesStoreErrors(t *testing.T) {
	task := NewStaleBattleTask(&mockFinder{err: errors.New("db down")}, time.Minute, "", nil)
	if n := task.Scan(context.Background()); n != 0 {
		t.Fatalf("expected 0 on error, got %d", n)
	}
}

func TestStartRejectsInvalidSpec(t *testing.T) {
	task := NewStaleBattleTask(&mockFinder{}, time.Minute, "not a cron spec", nil)
	if err := task.Start(); err == nil {
		t.Fatalf("expected an error for an invalid spec")
	}
}

func TestStartAndStop(t *testing.T) {
	task := NewStaleBattleTask(&mockFinder{}, time.Minute, "*/1 * * * * *", nil)
	if err := task.Start(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	task.Stop()
}
