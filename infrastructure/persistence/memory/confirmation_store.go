// Package memory implements repository ports in process memory, for the
// long-running API binary and for tests.
package memory

import (
	"context"
	"sync"
	"time"

	"seds-backend/application/ports"
	pkgerrors "seds-backend/pkg/errors"
)

// ConfirmationStore keeps pending confirmations in a map. It only works when
// one process serves both halves of the exchange.
type ConfirmationStore struct {
	mu    sync.Mutex
	items map[string]ports.PendingConfirmation
}

// NewConfirmationStore creates an empty store
func NewConfirmationStore() *ConfirmationStore {
	return &ConfirmationStore{items: make(map[string]ports.PendingConfirmation)}
}

var _ ports.ConfirmationStore = (*ConfirmationStore)(nil)

// Put stores p, replacing any entry with the same id
func (s *ConfirmationStore) Put(ctx context.Context, p ports.PendingConfirmation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items[p.ID] = p
	return nil
}

// Claim removes and returns the entry under the store lock
func (s *ConfirmationStore) Claim(ctx context.Context, id, requestedBy string, now time.Time) (*ports.PendingConfirmation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.items[id]
	if !ok {
		return nil, pkgerrors.ErrConfirmationNotFound
	}
	if p.Expired(now) {
		delete(s.items, id)
		return nil, pkgerrors.ErrConfirmationNotFound
	}
	if p.RequestedBy != requestedBy {
		return nil, pkgerrors.ErrUserNotAuthorized
	}

	delete(s.items, id)
	return &p, nil
}

// Delete drops an entry
func (s *ConfirmationStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.items, id)
	return nil
}

// Len returns the number of stored entries, expired ones included
func (s *ConfirmationStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.items)
}
