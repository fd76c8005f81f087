package memory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"vet-clinic/internal/domain/appointments"
)

type appointmentsRepo struct {
	mu   sync.Mutex
	byID map[string]appointments.Appointment

	// slots indexa las citas activas por (vet, fecha, hora); el chequeo
	// de unicidad y el insert ocurren bajo el mismo lock, igual que el
	// índice único en Postgres.
	slots map[string]string // slot key -> appointment id
}

func NewAppointmentsRepo() appointments.Repository {
	return &appointmentsRepo{
		byID:  make(map[string]appointments.Appointment),
		slots: make(map[string]string),
	}
}

func slotKey(vetID string, fecha time.Time, hora string) string {
	return fmt.Sprintf("%s|%s|%s", vetID, fecha.Format("2006-01-02"), hora)
}

func (r *appointmentsRepo) Create(ctx context.Context, a appointments.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(a.ID) == "" {
		return errors.New("appointment id required")
	}
	key := slotKey(a.VetID, a.Fecha, a.Hora)
	if _, taken := r.slots[key]; taken {
		return appointments.ErrSlotTaken
	}
	r.byID[a.ID] = a
	r.slots[key] = a.ID
	return nil
}

func (r *appointmentsRepo) Update(ctx context.Context, a appointments.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	prev, exists := r.byID[a.ID]
	if !exists {
		return ErrNotFound
	}

	// Los estados terminales liberan el slot para otra cita.
	if a.Status.Terminal() && !prev.Status.Terminal() {
		delete(r.slots, slotKey(prev.VetID, prev.Fecha, prev.Hora))
	}
	r.byID[a.ID] = a
	return nil
}

func (r *appointmentsRepo) UpdateSlot(ctx context.Context, a appointments.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	prev, exists := r.byID[a.ID]
	if !exists {
		return ErrNotFound
	}

	newKey := slotKey(a.VetID, a.Fecha, a.Hora)
	if holder, taken := r.slots[newKey]; taken && holder != a.ID {
		return appointments.ErrSlotTaken
	}

	delete(r.slots, slotKey(prev.VetID, prev.Fecha, prev.Hora))
	r.slots[newKey] = a.ID
	r.byID[a.ID] = a
	return nil
}

func (r *appointmentsRepo) GetByID(ctx context.Context, id string) (appointments.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.byID[id]
	if !ok {
		return appointments.Appointment{}, ErrNotFound
	}
	return a, nil
}

func (r *appointmentsRepo) ListByVetAndDate(ctx context.Context, vetID string, fecha time.Time) ([]appointments.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	day := fecha.Format("2006-01-02")
	out := make([]appointments.Appointment, 0)
	for _, a := range r.byID {
		if a.VetID == vetID && a.Fecha.Format("2006-01-02") == day {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Hora < out[j].Hora })
	return out, nil
}

func (r *appointmentsRepo) ListByOwner(ctx context.Context, ownerID string) ([]appointments.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]appointments.Appointment, 0)
	for _, a := range r.byID {
		if a.OwnerID == ownerID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Fecha.Equal(out[j].Fecha) {
			return out[i].Fecha.After(out[j].Fecha)
		}
		return out[i].Hora > out[j].Hora
	})
	return out, nil
}

func (r *appointmentsRepo) CountFutureActiveByService(ctx context.Context, serviceID string, from time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	count := 0
	for _, a := range r.byID {
		if a.ServiceID != serviceID || a.Fecha.Before(from) {
			continue
		}
		if a.Status == appointments.StatusProgramada || a.Status == appointments.StatusConfirmada {
			count++
		}
	}
	return count, nil
}

type waitlistRepo struct {
	mu   sync.RWMutex
	byID map[string]appointments.WaitlistEntry
}

func NewWaitlistRepo() appointments.WaitlistRepository {
	return &waitlistRepo{byID: make(map[string]appointments.WaitlistEntry)}
}

func (r *waitlistRepo) Create(ctx context.Context, e appointments.WaitlistEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(e.ID) == "" {
		return errors.New("waitlist entry id required")
	}
	r.byID[e.ID] = e
	return nil
}

func (r *waitlistRepo) Update(ctx context.Context, e appointments.WaitlistEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[e.ID]; !exists {
		return ErrNotFound
	}
	r.byID[e.ID] = e
	return nil
}

func (r *waitlistRepo) GetByID(ctx context.Context, id string) (appointments.WaitlistEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.byID[id]
	if !ok {
		return appointments.WaitlistEntry{}, ErrNotFound
	}
	return e, nil
}

func (r *waitlistRepo) ListPending(ctx context.Context) ([]appointments.WaitlistEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]appointments.WaitlistEntry, 0)
	for _, e := range r.byID {
		if !e.Attended {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Priority != out[j].Priority {
			return out[i].Priority < out[j].Priority
		}
		return out[i].RequestedAt.Before(out[j].RequestedAt)
	})
	return out, nil
}
