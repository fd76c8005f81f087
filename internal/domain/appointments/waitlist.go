package appointments

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

// Lista de espera: pacientes sin disponibilidad inmediata, ordenados
// por prioridad de servicio y orden de llegada.

type EnqueueInput struct {
	PetID     string
	ServiceID string
	Priority  Priority
	Notes     string
}

func (s *Service) Enqueue(ctx context.Context, in EnqueueInput) (WaitlistEntry, error) {
	in.PetID = strings.TrimSpace(in.PetID)
	in.ServiceID = strings.TrimSpace(in.ServiceID)

	if in.PetID == "" || in.ServiceID == "" || !in.Priority.Valid() {
		return WaitlistEntry{}, ErrInvalidInput
	}
	if _, err := s.pets.OwnerOf(ctx, in.PetID); err != nil {
		return WaitlistEntry{}, ErrNotFound
	}

	e := WaitlistEntry{
		ID:          uuid.NewString(),
		PetID:       in.PetID,
		ServiceID:   in.ServiceID,
		Priority:    in.Priority,
		Notes:       strings.TrimSpace(in.Notes),
		RequestedAt: s.now(),
	}

	if err := s.waitlist.Create(ctx, e); err != nil {
		return WaitlistEntry{}, err
	}
	return e, nil
}

func (s *Service) ListWaitlist(ctx context.Context) ([]WaitlistEntry, error) {
	return s.waitlist.ListPending(ctx)
}

// MarkAttended marca la entrada como atendida (ya se le asignó cita).
func (s *Service) MarkAttended(ctx context.Context, id string) (WaitlistEntry, error) {
	e, err := s.waitlist.GetByID(ctx, id)
	if err != nil {
		return WaitlistEntry{}, ErrNotFound
	}
	if e.Attended {
		return e, nil // idempotente
	}

	e.Attended = true
	if err := s.waitlist.Update(ctx, e); err != nil {
		return WaitlistEntry{}, err
	}
	return e, nil
}
