package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// DefaultStateName is used when save/load is called without a store name.
const DefaultStateName = "default_db"

// SaveState writes the current registries to the state store under name.
func (s *Service) SaveState(ctx context.Context, store StateStore, name string) (Snapshot, error) {
	if store == nil {
		return Snapshot{}, errors.New("state store is required")
	}
	name = stateName(name)
	start := s.clock.Now()
	snapshot := s.store.ExportState()
	err := store.Save(ctx, name, snapshot)
	s.metrics.Observe(ctx, "save_state", err == nil, s.clock.Now().Sub(start))
	if err != nil {
		return Snapshot{}, fmt.Errorf("save state %q: %w", name, err)
	}
	s.logger.Info("state saved", "name", name, "rooms", len(snapshot.Rooms), "people", len(snapshot.People))
	return snapshot, nil
}

// LoadState replaces the registries with the snapshot saved under name. The
// snapshot is validated before it is swapped in; on failure the current
// registries are unchanged.
func (s *Service) LoadState(ctx context.Context, store StateStore, name string) (Snapshot, error) {
	if store == nil {
		return Snapshot{}, errors.New("state store is required")
	}
	name = stateName(name)
	start := s.clock.Now()
	snapshot, err := store.Load(ctx, name)
	if err == nil {
		err = s.store.ImportState(ctx, snapshot)
	}
	s.metrics.Observe(ctx, "load_state", err == nil, s.clock.Now().Sub(start))
	if err != nil {
		s.logger.Warn("state load failed", "name", name, "error", err)
		return Snapshot{}, fmt.Errorf("load state %q: %w", name, err)
	}
	s.logger.Info("state loaded", "name", name, "rooms", len(snapshot.Rooms), "people", len(snapshot.People))
	return snapshot, nil
}

// ListStates returns the names saved in store.
func (s *Service) ListStates(ctx context.Context, store StateStore) ([]string, error) {
	if store == nil {
		return nil, errors.New("state store is required")
	}
	start := s.clock.Now()
	names, err := store.Names(ctx)
	s.metrics.Observe(ctx, "list_states", err == nil, s.clock.Now().Sub(start))
	if err != nil {
		return nil, fmt.Errorf("list states: %w", err)
	}
	return names, nil
}

func stateName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return DefaultStateName
	}
	return name
}
