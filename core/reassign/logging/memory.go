package logging

import (
	"context"
	"sync"

	"github.com/skyops/fleetmatch/core/model"
)

// MemoryStore keeps log entries in memory. Default backend and test double.
type MemoryStore struct {
	mu      sync.RWMutex
	entries []model.ReassignmentLogEntry
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore { return &MemoryStore{} }

func (s *MemoryStore) Append(ctx context.Context, entry model.ReassignmentLogEntry) error {
	s.mu.Lock()
	s.entries = append(s.entries, entry)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Query(ctx context.Context, q LogQuery) ([]model.ReassignmentLogEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var res []model.ReassignmentLogEntry
	for _, e := range s.entries {
		if matches(e, q) {
			res = append(res, e)
		}
	}
	return res, nil
}

func (s *MemoryStore) Close() error { return nil }

// Len returns the number of entries appended so far.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
