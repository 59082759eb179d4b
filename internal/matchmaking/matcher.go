// Package matchmaking picks the opponent a run fights next: another
// player's recorded snapshot when one exists at the run's stage, otherwise
// a bot team scaled to the run's progression.
package matchmaking

import (
	"context"
	"sort"

	"github.com/ericogr/chimera-arena/internal/game"
)

// SnapshotStore is the read side of the snapshot table the matcher needs.
type SnapshotStore interface {
	ListSnapshotsByStage(ctx context.Context, stage int, excludePlayerID string) ([]game.Snapshot, error)
}

// SnapshotMatcher finds stage-compatible snapshots for a player.
type SnapshotMatcher struct {
	store SnapshotStore
}

func NewSnapshotMatcher(store SnapshotStore) *SnapshotMatcher {
	return &SnapshotMatcher{store: store}
}

// FindCandidates returns every snapshot at stage that was not recorded by
// excludePlayerID, most recent first. Win-count proximity is left to the
// resolver.
func (m *SnapshotMatcher) FindCandidates(ctx context.Context, stage int, excludePlayerID string) ([]game.Snapshot, error) {
	rows, err := m.store.ListSnapshotsByStage(ctx, stage, excludePlayerID)
	if err != nil {
		return nil, err
	}
	// A player must never face their own snapshot, whatever the store did.
	out := rows[:0]
	for _, s := range rows {
		if s.Stage != stage || s.PlayerID == excludePlayerID {
			continue
		}
		out = append(out, s)
	}
	sort.SliceStable(out, func(i, j int) bool { return newer(out[i].CreatedAt, out[i].ID, out[j].CreatedAt, out[j].ID) })
	return out, nil
}
