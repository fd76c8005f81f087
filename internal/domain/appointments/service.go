package appointments

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrBadState     = errors.New("invalid state transition")
)

// PetOwnership resuelve el propietario de una mascota.
// Lo implementa pets.Service; la interfaz vive acá para evitar ciclos.
type PetOwnership interface {
	OwnerOf(ctx context.Context, petID string) (string, error)
}

// Tipos de evento emitidos en cada transición de estado.
const (
	EventCreated      = "appointment.created"
	EventConfirmed    = "appointment.confirmed"
	EventRescheduled  = "appointment.rescheduled"
	EventCancelled    = "appointment.cancelled"
	EventCompleted    = "appointment.completed"
	EventMarkedNoShow = "appointment.no_show"
)

// Notifier observa transiciones de estado. La cita no envía
// notificaciones por sí misma: solo publica el hecho.
type Notifier interface {
	AppointmentChanged(ctx context.Context, eventType string, a Appointment)
}

type Service struct {
	repo     Repository
	waitlist WaitlistRepository
	pets     PetOwnership
	notifier Notifier
	validate *validator.Validate
	now      func() time.Time
}

func NewService(repo Repository, waitlist WaitlistRepository, pets PetOwnership) *Service {
	v := validator.New()
	// "hhmm" valida horas con formato HH:MM de 24hs.
	_ = v.RegisterValidation("hhmm", func(fl validator.FieldLevel) bool {
		_, err := time.Parse("15:04", fl.Field().String())
		return err == nil
	})

	return &Service{
		repo:     repo,
		waitlist: waitlist,
		pets:     pets,
		validate: v,
		now:      time.Now,
	}
}

// SetNotifier conecta el despachador de notificaciones (opcional).
func (s *Service) SetNotifier(n Notifier) { s.notifier = n }

func (s *Service) emit(ctx context.Context, eventType string, a Appointment) {
	if s.notifier != nil {
		s.notifier.AppointmentChanged(ctx, eventType, a)
	}
}

type CreateInput struct {
	OwnerID     string `validate:"required"`
	PetID       string `validate:"required"`
	ServiceID   string `validate:"required"`
	VetID       string `validate:"required"`
	CreatedByID string `validate:"required"`
	Fecha       string `validate:"required,datetime=2006-01-02"`
	Hora        string `validate:"required,hhmm"`
	Emergency   bool
	Notes       string `validate:"max=500"`
}

// Create valida y agenda una cita nueva en estado PROGRAMADA.
// La unicidad del slot la aplica el repositorio: si otro request ganó el
// mismo slot, devuelve ErrSlotTaken.
func (s *Service) Create(ctx context.Context, in CreateInput) (Appointment, error) {
	if err := s.validate.Struct(in); err != nil {
		return Appointment{}, ErrInvalidInput
	}

	fecha, err := time.Parse("2006-01-02", in.Fecha)
	if err != nil {
		return Appointment{}, ErrInvalidInput
	}

	ownerID, err := s.pets.OwnerOf(ctx, in.PetID)
	if err != nil {
		return Appointment{}, ErrNotFound
	}

	now := s.now()
	a := Appointment{
		ID:          uuid.NewString(),
		OwnerID:     strings.TrimSpace(in.OwnerID),
		PetID:       in.PetID,
		ServiceID:   in.ServiceID,
		VetID:       in.VetID,
		CreatedByID: in.CreatedByID,
		Fecha:       fecha,
		Hora:        in.Hora,
		Status:      StatusProgramada,
		Emergency:   in.Emergency,
		Notes:       strings.TrimSpace(in.Notes),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := Validate(a, ownerID); err != nil {
		return Appointment{}, err
	}

	if err := s.repo.Create(ctx, a); err != nil {
		return Appointment{}, err
	}

	s.emit(ctx, EventCreated, a)
	return a, nil
}

// Confirm marca la asistencia confirmada (PROGRAMADA -> CONFIRMADA).
func (s *Service) Confirm(ctx context.Context, id string) (Appointment, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Appointment{}, ErrNotFound
	}
	if !CanTransition(a.Status, StatusConfirmada) {
		return Appointment{}, ErrBadState
	}

	a.Status = StatusConfirmada
	a.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, a); err != nil {
		return Appointment{}, err
	}

	s.emit(ctx, EventConfirmed, a)
	return a, nil
}

// Cancel cancela la cita con motivo obligatorio, sujeta a CanCancel.
func (s *Service) Cancel(ctx context.Context, id string, actor Actor, reason string) (Appointment, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return Appointment{}, ErrInvalidInput
	}

	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Appointment{}, ErrNotFound
	}

	if ok, msg := CanCancel(a, actor, s.now()); !ok {
		code := CodeNotCancellable
		if a.Status == StatusProgramada || a.Status == StatusConfirmada {
			code = CodeInsufficientNotice
		}
		return Appointment{}, &RuleError{Code: code, Msg: msg}
	}

	a.Status = StatusCancelada
	a.CancelReason = reason
	a.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, a); err != nil {
		return Appointment{}, err
	}

	s.emit(ctx, EventCancelled, a)
	return a, nil
}

// Reschedule mueve la cita a otro slot, sujeta a CanReschedule.
// El slot nuevo pasa por las mismas validaciones de creación y por el
// chequeo atómico de unicidad.
func (s *Service) Reschedule(ctx context.Context, id string, actor Actor, newFecha, newHora string) (Appointment, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Appointment{}, ErrNotFound
	}

	if ok, msg := CanReschedule(a, actor, s.now()); !ok {
		code := CodeNotCancellable
		if a.Status == StatusProgramada || a.Status == StatusConfirmada {
			code = CodeInsufficientNotice
		}
		return Appointment{}, &RuleError{Code: code, Msg: msg}
	}

	fecha, err := time.Parse("2006-01-02", strings.TrimSpace(newFecha))
	if err != nil {
		return Appointment{}, ErrInvalidInput
	}
	if _, err := time.Parse("15:04", strings.TrimSpace(newHora)); err != nil {
		return Appointment{}, ErrInvalidInput
	}

	moved := a
	moved.Fecha = fecha
	moved.Hora = strings.TrimSpace(newHora)

	// Revalida contra el dueño real de la mascota, no contra el owner_id
	// guardado en la cita (pudo haber una transferencia de por medio).
	ownerID, err := s.pets.OwnerOf(ctx, moved.PetID)
	if err != nil {
		return Appointment{}, ErrNotFound
	}
	if err := Validate(moved, ownerID); err != nil {
		return Appointment{}, err
	}

	moved.UpdatedAt = s.now()
	if err := s.repo.UpdateSlot(ctx, moved); err != nil {
		return Appointment{}, err
	}

	s.emit(ctx, EventRescheduled, moved)
	return moved, nil
}

// Complete cierra la cita cuando se registra la consulta clínica.
func (s *Service) Complete(ctx context.Context, id string) (Appointment, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Appointment{}, ErrNotFound
	}
	if !CanTransition(a.Status, StatusCompletada) {
		return Appointment{}, ErrBadState
	}

	a.Status = StatusCompletada
	a.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, a); err != nil {
		return Appointment{}, err
	}

	s.emit(ctx, EventCompleted, a)
	return a, nil
}

// MarkNoShow registra la inasistencia del paciente.
// Es una acción manual del personal: no hay barrido automático por tiempo.
func (s *Service) MarkNoShow(ctx context.Context, id string) (Appointment, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Appointment{}, ErrNotFound
	}
	if !CanTransition(a.Status, StatusInasistencia) {
		return Appointment{}, ErrBadState
	}

	a.Status = StatusInasistencia
	a.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, a); err != nil {
		return Appointment{}, err
	}

	s.emit(ctx, EventMarkedNoShow, a)
	return a, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Appointment, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListByVetAndDate(ctx context.Context, vetID string, fecha time.Time) ([]Appointment, error) {
	return s.repo.ListByVetAndDate(ctx, vetID, fecha)
}

func (s *Service) ListByOwner(ctx context.Context, ownerID string) ([]Appointment, error) {
	return s.repo.ListByOwner(ctx, ownerID)
}

// CountFutureByService implementa services.FutureAppointmentCounter.
func (s *Service) CountFutureByService(ctx context.Context, serviceID string) (int, error) {
	now := s.now()
	from := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return s.repo.CountFutureActiveByService(ctx, serviceID, from)
}
