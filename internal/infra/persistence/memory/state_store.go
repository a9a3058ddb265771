package memory

import (
	"amity/pkg/domain"
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
)

var _ domain.StateStore = (*StateStore)(nil)

// StateStore keeps named snapshots in process memory. Snapshots are stored
// JSON encoded so a load never aliases the registries that were saved.
type StateStore struct {
	mu    sync.RWMutex
	saved map[string][]byte
}

// NewStateStore returns an empty in-process state store.
func NewStateStore() *StateStore {
	return &StateStore{saved: make(map[string][]byte)}
}

// Save stores the snapshot under name, replacing any previous one.
func (s *StateStore) Save(_ context.Context, name string, snapshot Snapshot) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved[name] = data
	return nil
}

// Load returns the snapshot saved under name.
func (s *StateStore) Load(_ context.Context, name string) (Snapshot, error) {
	s.mu.RLock()
	data, ok := s.saved[name]
	s.mu.RUnlock()
	if !ok {
		return Snapshot{}, fmt.Errorf("%w: %q", domain.ErrStateNotFound, name)
	}
	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return Snapshot{}, fmt.Errorf("%w: decode %q: %v", domain.ErrInvalidState, name, err)
	}
	return snapshot, nil
}

// Names lists the saved snapshot names in lexical order.
func (s *StateStore) Names(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.saved))
	for name := range s.saved {
		out = append(out, name)
	}
	sort.Strings(out)
	return out, nil
}

// Close is a no-op.
func (s *StateStore) Close() error { return nil }
