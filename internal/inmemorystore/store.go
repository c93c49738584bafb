package inmemorystore

import (
	"context"
	"sync"

	"github.com/vk/dxecore/internal/dispatchstore"
	"github.com/vk/dxecore/internal/unitid"
)

// Store is an in-memory implementation of dispatchstore.Store.
//
// Per-unit values live in independent sync.Maps keyed by the unit's
// canonical ID. The first-seen order needed for reports is kept in a slice
// guarded by its own mutex.
type Store struct {
	states  sync.Map // Key: unit ID string, Value: dispatchstore.Status
	errors  sync.Map // Key: unit ID string, Value: error
	reasons sync.Map // Key: unit ID string, Value: string

	mu    sync.Mutex
	order []unitid.ID
	seen  map[string]struct{}
}

// New creates a new, empty in-memory dispatch store.
func New() dispatchstore.Store {
	return &Store{seen: make(map[string]struct{})}
}

func (s *Store) track(id unitid.ID) string {
	key := id.String()
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.seen[key]; !ok {
		s.seen[key] = struct{}{}
		s.order = append(s.order, id)
	}
	return key
}

// SetStatus updates the status of a unit.
func (s *Store) SetStatus(ctx context.Context, id unitid.ID, status dispatchstore.Status) error {
	s.states.Store(s.track(id), status)
	return nil
}

// GetStatus retrieves the status of a unit, StatusPending if never set.
func (s *Store) GetStatus(ctx context.Context, id unitid.ID) (dispatchstore.Status, error) {
	status, ok := s.states.Load(id.String())
	if !ok {
		return dispatchstore.StatusPending, nil
	}
	return status.(dispatchstore.Status), nil
}

// SetError records the failure of a unit.
func (s *Store) SetError(ctx context.Context, id unitid.ID, unitErr error) error {
	s.errors.Store(s.track(id), unitErr)
	return nil
}

// GetError retrieves the recorded failure of a unit.
func (s *Store) GetError(ctx context.Context, id unitid.ID) (error, error) {
	err, ok := s.errors.Load(id.String())
	if !ok {
		return nil, nil
	}
	return err.(error), nil
}

// SetReason records or clears the blocking reason of a unit.
func (s *Store) SetReason(ctx context.Context, id unitid.ID, reason string) error {
	key := s.track(id)
	if reason == "" {
		s.reasons.Delete(key)
		return nil
	}
	s.reasons.Store(key, reason)
	return nil
}

// GetReason retrieves the blocking reason of a unit.
func (s *Store) GetReason(ctx context.Context, id unitid.ID) (string, error) {
	reason, ok := s.reasons.Load(id.String())
	if !ok {
		return "", nil
	}
	return reason.(string), nil
}

// Records returns a snapshot of every unit in first-seen order.
func (s *Store) Records(ctx context.Context) ([]dispatchstore.Record, error) {
	s.mu.Lock()
	ids := make([]unitid.ID, len(s.order))
	copy(ids, s.order)
	s.mu.Unlock()

	records := make([]dispatchstore.Record, 0, len(ids))
	for _, id := range ids {
		status, _ := s.GetStatus(ctx, id)
		unitErr, _ := s.GetError(ctx, id)
		reason, _ := s.GetReason(ctx, id)
		records = append(records, dispatchstore.Record{ID: id, Status: status, Err: unitErr, Reason: reason})
	}
	return records, nil
}
