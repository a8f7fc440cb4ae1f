package api

import (
	"strings"
	"sync"
	"time"

	"github.com/tokentrail/tokentrail/internal/transfer"
)

// refreshSnapshot holds the most recent scheduled fetch for one address.
// Snapshots live and die with the process; fetched transfers are never
// written to the database.
type refreshSnapshot struct {
	Address   string              `json:"address"`
	FetchedAt time.Time           `json:"fetched_at"`
	Transfers []transfer.Transfer `json:"transfers"`
}

type snapshotStore struct {
	mu   sync.RWMutex
	data map[string]refreshSnapshot
}

func newSnapshotStore() *snapshotStore {
	return &snapshotStore{data: make(map[string]refreshSnapshot)}
}

func (s *snapshotStore) update(address string, transfers []transfer.Transfer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[strings.ToLower(address)] = refreshSnapshot{
		Address:   address,
		FetchedAt: time.Now().UTC(),
		Transfers: transfers,
	}
}

func (s *snapshotStore) get(address string) (refreshSnapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap, ok := s.data[strings.ToLower(address)]
	return snap, ok
}
