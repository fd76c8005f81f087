package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"vet-clinic/internal/domain/services"
)

type servicesRepo struct {
	mu   sync.RWMutex
	byID map[string]services.Service
}

func NewServicesRepo() services.Repository {
	return &servicesRepo{byID: make(map[string]services.Service)}
}

func (r *servicesRepo) Create(ctx context.Context, s services.Service) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(s.ID) == "" {
		return errors.New("service id required")
	}
	for _, got := range r.byID {
		if got.Type == s.Type {
			return services.ErrDuplicate
		}
	}
	r.byID[s.ID] = s
	return nil
}

func (r *servicesRepo) Update(ctx context.Context, s services.Service) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[s.ID]; !exists {
		return ErrNotFound
	}
	r.byID[s.ID] = s
	return nil
}

func (r *servicesRepo) GetByID(ctx context.Context, id string) (services.Service, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.byID[id]
	if !ok {
		return services.Service{}, ErrNotFound
	}
	return s, nil
}

func (r *servicesRepo) GetByType(ctx context.Context, t services.ServiceType) (services.Service, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, s := range r.byID {
		if s.Type == t {
			return s, nil
		}
	}
	return services.Service{}, ErrNotFound
}

func (r *servicesRepo) List(ctx context.Context, onlyActive bool) ([]services.Service, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]services.Service, 0, len(r.byID))
	for _, s := range r.byID {
		if onlyActive && !s.Active {
			continue
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Type < out[j].Type })
	return out, nil
}
