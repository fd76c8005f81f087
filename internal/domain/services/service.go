package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	// MinDurationMinutes es la duración mínima de un servicio.
	MinDurationMinutes = 15

	defaultCalendarColor = "#00736A"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
	ErrDuplicate    = errors.New("service type already registered")
)

// InUseError indica que el servicio tiene citas futuras y no puede desactivarse.
type InUseError struct {
	FutureAppointments int
}

func (e *InUseError) Error() string {
	return fmt.Sprintf("no se puede desactivar: hay %d cita(s) futura(s) con este servicio", e.FutureAppointments)
}

// FutureAppointmentCounter cuenta citas futuras activas para un servicio.
// Lo implementa el módulo de citas; la interfaz vive aquí para evitar
// el ciclo de imports services <-> appointments.
type FutureAppointmentCounter interface {
	CountFutureByService(ctx context.Context, serviceID string) (int, error)
}

var colorRe = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

type Catalog struct {
	repo  Repository
	appts FutureAppointmentCounter
	now   func() time.Time
}

func NewCatalog(repo Repository) *Catalog {
	return &Catalog{
		repo: repo,
		now:  time.Now,
	}
}

// BindAppointments conecta el contador de citas futuras (se llama al armar el router).
func (c *Catalog) BindAppointments(counter FutureAppointmentCounter) {
	c.appts = counter
}

type CreateInput struct {
	Type            ServiceType
	DurationMinutes int
	PriceCents      int64
	Description     string
	CalendarColor   string
}

func (c *Catalog) Create(ctx context.Context, in CreateInput) (Service, error) {
	if !in.Type.Valid() {
		return Service{}, ErrInvalidInput
	}
	if in.DurationMinutes < MinDurationMinutes {
		return Service{}, ErrInvalidInput
	}
	if in.PriceCents < 0 {
		return Service{}, ErrInvalidInput
	}

	color := strings.TrimSpace(in.CalendarColor)
	if color == "" {
		color = defaultCalendarColor
	}
	if !colorRe.MatchString(color) {
		return Service{}, ErrInvalidInput
	}

	if _, err := c.repo.GetByType(ctx, in.Type); err == nil {
		return Service{}, ErrDuplicate
	}

	now := c.now()
	s := Service{
		ID:              uuid.NewString(),
		Type:            in.Type,
		DurationMinutes: in.DurationMinutes,
		PriceCents:      in.PriceCents,
		Description:     strings.TrimSpace(in.Description),
		Active:          true,
		CalendarColor:   color,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := c.repo.Create(ctx, s); err != nil {
		return Service{}, err
	}
	return s, nil
}

type UpdateInput struct {
	DurationMinutes *int
	PriceCents      *int64
	Description     *string
	CalendarColor   *string
}

func (c *Catalog) Update(ctx context.Context, id string, in UpdateInput) (Service, error) {
	s, err := c.repo.GetByID(ctx, id)
	if err != nil {
		return Service{}, ErrNotFound
	}

	if in.DurationMinutes != nil {
		if *in.DurationMinutes < MinDurationMinutes {
			return Service{}, ErrInvalidInput
		}
		s.DurationMinutes = *in.DurationMinutes
	}
	if in.PriceCents != nil {
		if *in.PriceCents < 0 {
			return Service{}, ErrInvalidInput
		}
		s.PriceCents = *in.PriceCents
	}
	if in.Description != nil {
		s.Description = strings.TrimSpace(*in.Description)
	}
	if in.CalendarColor != nil {
		if !colorRe.MatchString(*in.CalendarColor) {
			return Service{}, ErrInvalidInput
		}
		s.CalendarColor = *in.CalendarColor
	}

	s.UpdatedAt = c.now()
	if err := c.repo.Update(ctx, s); err != nil {
		return Service{}, err
	}
	return s, nil
}

// Deactivate saca el servicio del catálogo activo.
// Se rechaza mientras existan citas futuras PROGRAMADA/CONFIRMADA que lo usen.
func (c *Catalog) Deactivate(ctx context.Context, id string) (Service, error) {
	s, err := c.repo.GetByID(ctx, id)
	if err != nil {
		return Service{}, ErrNotFound
	}
	if !s.Active {
		return s, nil // idempotente
	}

	if c.appts != nil {
		n, err := c.appts.CountFutureByService(ctx, id)
		if err != nil {
			return Service{}, err
		}
		if n > 0 {
			return Service{}, &InUseError{FutureAppointments: n}
		}
	}

	s.Active = false
	s.UpdatedAt = c.now()
	if err := c.repo.Update(ctx, s); err != nil {
		return Service{}, err
	}
	return s, nil
}

func (c *Catalog) GetByID(ctx context.Context, id string) (Service, error) {
	return c.repo.GetByID(ctx, id)
}

func (c *Catalog) List(ctx context.Context, onlyActive bool) ([]Service, error) {
	return c.repo.List(ctx, onlyActive)
}
