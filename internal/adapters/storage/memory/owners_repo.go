package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"vet-clinic/internal/domain/owners"
)

type ownersRepo struct {
	mu   sync.RWMutex
	byID map[string]owners.Owner
}

func NewOwnersRepo() owners.Repository {
	return &ownersRepo{byID: make(map[string]owners.Owner)}
}

func (r *ownersRepo) Create(ctx context.Context, o owners.Owner) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(o.ID) == "" {
		return errors.New("owner id required")
	}
	for _, got := range r.byID {
		if got.Documento == o.Documento {
			return owners.ErrDuplicate
		}
	}
	r.byID[o.ID] = o
	return nil
}

func (r *ownersRepo) Update(ctx context.Context, o owners.Owner) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[o.ID]; !exists {
		return ErrNotFound
	}
	for _, got := range r.byID {
		if got.ID != o.ID && got.Documento == o.Documento {
			return owners.ErrDuplicate
		}
	}
	r.byID[o.ID] = o
	return nil
}

func (r *ownersRepo) GetByID(ctx context.Context, id string) (owners.Owner, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	o, ok := r.byID[id]
	if !ok {
		return owners.Owner{}, ErrNotFound
	}
	return o, nil
}

func (r *ownersRepo) GetByDocumento(ctx context.Context, documento string) (owners.Owner, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, o := range r.byID {
		if o.Documento == documento {
			return o, nil
		}
	}
	return owners.Owner{}, ErrNotFound
}

func (r *ownersRepo) GetByUserID(ctx context.Context, userID string) (owners.Owner, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if strings.TrimSpace(userID) == "" {
		return owners.Owner{}, ErrNotFound
	}
	for _, o := range r.byID {
		if o.UserID == userID {
			return o, nil
		}
	}
	return owners.Owner{}, ErrNotFound
}

func (r *ownersRepo) List(ctx context.Context) ([]owners.Owner, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]owners.Owner, 0, len(r.byID))
	for _, o := range r.byID {
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FullName < out[j].FullName })
	return out, nil
}
