package records

import (
	"context"
	"errors"
	"strings"
	"time"

	"vet-clinic/internal/domain/appointments"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
	ErrDuplicate    = errors.New("appointment already has a clinical record")
	ErrBadState     = errors.New("appointment cannot be completed")
)

// Appointments es la porción del módulo de citas que este servicio usa:
// leer la cita y cerrarla cuando la consulta queda registrada.
type Appointments interface {
	GetByID(ctx context.Context, id string) (appointments.Appointment, error)
	Complete(ctx context.Context, id string) (appointments.Appointment, error)
}

type Service struct {
	repo     Repository
	appts    Appointments
	validate *validator.Validate
	now      func() time.Time
}

func NewService(repo Repository, appts Appointments) *Service {
	return &Service{
		repo:     repo,
		appts:    appts,
		validate: validator.New(),
		now:      time.Now,
	}
}

type CreateInput struct {
	AppointmentID string `validate:"required"`
	VetID         string `validate:"required"`
	Motivo        string `validate:"required,max=300"`
	Diagnostico   string `validate:"required,max=2000"`
	Tratamiento   string `validate:"max=2000"`
	Notas         string `validate:"max=2000"`
	WeightGrams   *int64 `validate:"omitempty,gt=0"`
}

// Create registra la consulta clínica y completa la cita asociada en la
// misma operación lógica: una cita completada siempre tiene su entrada
// de historial.
func (s *Service) Create(ctx context.Context, in CreateInput) (Record, error) {
	if err := s.validate.Struct(in); err != nil {
		return Record{}, ErrInvalidInput
	}

	a, err := s.appts.GetByID(ctx, in.AppointmentID)
	if err != nil {
		return Record{}, ErrNotFound
	}
	if !appointments.CanTransition(a.Status, appointments.StatusCompletada) {
		return Record{}, ErrBadState
	}
	if _, err := s.repo.GetByAppointment(ctx, in.AppointmentID); err == nil {
		return Record{}, ErrDuplicate
	}

	now := s.now()
	rec := Record{
		ID:            uuid.NewString(),
		PetID:         a.PetID,
		AppointmentID: a.ID,
		VetID:         strings.TrimSpace(in.VetID),
		Motivo:        strings.TrimSpace(in.Motivo),
		Diagnostico:   strings.TrimSpace(in.Diagnostico),
		Tratamiento:   strings.TrimSpace(in.Tratamiento),
		Notas:         strings.TrimSpace(in.Notas),
		WeightGrams:   in.WeightGrams,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.repo.Create(ctx, rec); err != nil {
		return Record{}, err
	}

	if _, err := s.appts.Complete(ctx, a.ID); err != nil {
		return Record{}, err
	}
	return rec, nil
}

type UpdateInput struct {
	Diagnostico string `validate:"required,max=2000"`
	Tratamiento string `validate:"max=2000"`
	Notas       string `validate:"max=2000"`
}

// Update corrige una entrada existente (solo campos clínicos).
func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (Record, error) {
	if err := s.validate.Struct(in); err != nil {
		return Record{}, ErrInvalidInput
	}

	rec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Record{}, ErrNotFound
	}

	rec.Diagnostico = strings.TrimSpace(in.Diagnostico)
	rec.Tratamiento = strings.TrimSpace(in.Tratamiento)
	rec.Notas = strings.TrimSpace(in.Notas)
	rec.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, rec); err != nil {
		return Record{}, err
	}
	return rec, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Record, error) {
	rec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Record{}, ErrNotFound
	}
	return rec, nil
}

func (s *Service) ListByPet(ctx context.Context, petID string) ([]Record, error) {
	return s.repo.ListByPet(ctx, petID)
}
