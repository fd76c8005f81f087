package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"vet-clinic/internal/domain/records"
)

type recordsRepo struct {
	mu            sync.RWMutex
	byID          map[string]records.Record
	byAppointment map[string]string
}

func NewRecordsRepo() records.Repository {
	return &recordsRepo{
		byID:          make(map[string]records.Record),
		byAppointment: make(map[string]string),
	}
}

func (r *recordsRepo) Create(ctx context.Context, rec records.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(rec.ID) == "" {
		return errors.New("record id required")
	}
	if _, exists := r.byAppointment[rec.AppointmentID]; exists {
		return records.ErrDuplicate
	}
	r.byID[rec.ID] = rec
	r.byAppointment[rec.AppointmentID] = rec.ID
	return nil
}

func (r *recordsRepo) Update(ctx context.Context, rec records.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[rec.ID]; !exists {
		return ErrNotFound
	}
	r.byID[rec.ID] = rec
	return nil
}

func (r *recordsRepo) GetByID(ctx context.Context, id string) (records.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.byID[id]
	if !ok {
		return records.Record{}, ErrNotFound
	}
	return rec, nil
}

func (r *recordsRepo) GetByAppointment(ctx context.Context, appointmentID string) (records.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byAppointment[appointmentID]
	if !ok {
		return records.Record{}, ErrNotFound
	}
	return r.byID[id], nil
}

func (r *recordsRepo) ListByPet(ctx context.Context, petID string) ([]records.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]records.Record, 0)
	for _, rec := range r.byID {
		if rec.PetID == petID {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}
