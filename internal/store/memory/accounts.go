// Package memory implements the account store as a mutex-guarded map.
// It mirrors the PostgreSQL store's semantics, including the uniqueness
// constraint on email, and backs tests and DSN-less dev runs.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"metrodocs.org/internal/auth"
	"metrodocs.org/internal/ids"
)

// Store implements auth.AccountStore in process memory.
type Store struct {
	mu      sync.RWMutex
	byID    map[string]*auth.Account
	byEmail map[string]string
	now     func() time.Time
}

var _ auth.AccountStore = (*Store)(nil)

// New returns an empty store.
func New() *Store {
	return &Store{
		byID:    make(map[string]*auth.Account),
		byEmail: make(map[string]string),
		now:     time.Now,
	}
}

// WithClock overrides the timestamp source (useful for tests).
func (s *Store) WithClock(fn func() time.Time) *Store {
	if fn != nil {
		s.now = fn
	}
	return s
}

// Create stores a new account. The email check and the insert happen
// under one lock, so concurrent creates with the same email yield exactly
// one success.
func (s *Store) Create(ctx context.Context, account *auth.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byEmail[account.Email]; exists {
		return auth.ErrDuplicateEmail
	}
	if account.ID == "" {
		account.ID = ids.New()
	}
	now := s.now().UTC()
	account.CreatedAt = now
	account.UpdatedAt = now

	stored := *account
	s.byID[stored.ID] = &stored
	s.byEmail[stored.Email] = stored.ID
	return nil
}

// FindByEmail returns a copy of the account registered under email.
func (s *Store) FindByEmail(ctx context.Context, email string) (*auth.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[email]
	if !ok {
		return nil, auth.ErrAccountNotFound
	}
	out := *s.byID[id]
	return &out, nil
}

// FindByID returns a copy of the account with the given id.
func (s *Store) FindByID(ctx context.Context, id string) (*auth.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	account, ok := s.byID[id]
	if !ok {
		return nil, auth.ErrAccountNotFound
	}
	out := *account
	return &out, nil
}

// List returns copies of all accounts in creation order.
func (s *Store) List(ctx context.Context) ([]*auth.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*auth.Account, 0, len(s.byID))
	for _, account := range s.byID {
		out := *account
		result = append(result, &out)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID < result[j].ID
		}
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}
