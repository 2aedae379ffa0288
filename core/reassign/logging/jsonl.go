package logging

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"sync"

	"github.com/skyops/fleetmatch/core/model"
)

// JSONLStore stores log entries in a JSONL file, one entry per line.
type JSONLStore struct {
	path string
	mu   sync.Mutex
}

// NewJSONLStore creates the file if needed and returns the store.
func NewJSONLStore(path string) (*JSONLStore, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, err
	}
	if cerr := f.Close(); cerr != nil {
		return nil, cerr
	}
	return &JSONLStore{path: path}, nil
}

func (s *JSONLStore) Append(ctx context.Context, entry model.ReassignmentLogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	return json.NewEncoder(f).Encode(entry)
}

func (s *JSONLStore) Query(ctx context.Context, q LogQuery) ([]model.ReassignmentLogEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, err := os.Open(s.path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	var res []model.ReassignmentLogEntry
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var e model.ReassignmentLogEntry
		if err := json.Unmarshal(scanner.Bytes(), &e); err != nil {
			continue
		}
		if matches(e, q) {
			res = append(res, e)
		}
	}
	return res, scanner.Err()
}

func (s *JSONLStore) Close() error { return nil }
