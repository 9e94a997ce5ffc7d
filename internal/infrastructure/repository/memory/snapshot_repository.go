package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/venomio/matchsim/internal/domain/history"
)

// SnapshotRepository keeps historical snapshots in process memory. It backs
// tests and the CLI's no-database mode.
type SnapshotRepository struct {
	mu        sync.RWMutex
	snapshots map[string]history.Snapshot
}

func NewSnapshotRepository() *SnapshotRepository {
	return &SnapshotRepository{snapshots: make(map[string]history.Snapshot)}
}

func (r *SnapshotRepository) Put(snapshot history.Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snapshots[snapshot.LeagueID] = snapshot
}

func (r *SnapshotRepository) LoadSnapshot(_ context.Context, leagueID string) (history.Snapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	snapshot, ok := r.snapshots[leagueID]
	if !ok {
		return history.Snapshot{}, fmt.Errorf("%w: league %q", history.ErrSnapshotNotFound, leagueID)
	}
	return snapshot, nil
}
