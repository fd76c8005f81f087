package memory

import (
	"context"
	"errors"
	"strings"
	"sync"

	"vet-clinic/internal/domain/accounts"
)

var (
	ErrNotFound = errors.New("not found")
)

type accountsRepo struct {
	mu         sync.RWMutex
	byID       map[string]accounts.User
	byUsername map[string]string
}

func NewAccountsRepo() accounts.Repository {
	return &accountsRepo{
		byID:       make(map[string]accounts.User),
		byUsername: make(map[string]string),
	}
}

func (r *accountsRepo) Create(ctx context.Context, u accounts.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(u.ID) == "" {
		return errors.New("user id required")
	}
	if _, exists := r.byUsername[u.Username]; exists {
		return accounts.ErrDuplicate
	}
	r.byID[u.ID] = u
	r.byUsername[u.Username] = u.ID
	return nil
}

func (r *accountsRepo) Update(ctx context.Context, u accounts.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[u.ID]; !exists {
		return ErrNotFound
	}
	r.byID[u.ID] = u
	return nil
}

func (r *accountsRepo) GetByID(ctx context.Context, id string) (accounts.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	if !ok {
		return accounts.User{}, ErrNotFound
	}
	return u, nil
}

func (r *accountsRepo) GetByUsername(ctx context.Context, username string) (accounts.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byUsername[username]
	if !ok {
		return accounts.User{}, ErrNotFound
	}
	return r.byID[id], nil
}

// IncrementFailedAttempts hace el read-modify-write bajo el mismo lock:
// equivalente en memoria al UPDATE ... RETURNING de Postgres.
func (r *accountsRepo) IncrementFailedAttempts(ctx context.Context, id string) (accounts.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[id]
	if !ok {
		return accounts.User{}, ErrNotFound
	}
	u.FailedAttempts++
	r.byID[id] = u
	return u, nil
}
