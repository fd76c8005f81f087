package billing

import (
	"context"
	"errors"
	"time"

	"vet-clinic/internal/domain/appointments"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
	ErrDuplicate    = errors.New("appointment already paid")
	ErrBadState     = errors.New("payment not in a payable state")
)

// Appointments es la vista del módulo de citas que necesita caja:
// solo lectura, para validar que la cita exista y asociar el pago.
type Appointments interface {
	GetByID(ctx context.Context, id string) (appointments.Appointment, error)
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

type RegisterPaymentInput struct {
	AppointmentID string `validate:"required"`
	AmountCents   int64  `validate:"required,gt=0"`
	Method        Method `validate:"required"`
	RegisteredBy  string `validate:"required"`

	// Deferred deja el pago en PENDIENTE (pago a confirmar); por defecto
	// el cobro simulado se completa y factura en el acto.
	Deferred bool
}

// RegisterPayment cobra una cita. Un pago completado emite su factura
// inmediatamente; uno diferido queda PENDIENTE hasta ConfirmPayment.
func (s *Service) RegisterPayment(ctx context.Context, in RegisterPaymentInput) (Payment, *Invoice, error) {
	if err := s.validate.Struct(in); err != nil || !in.Method.Valid() {
		return Payment{}, nil, ErrInvalidInput
	}

	a, err := s.appts.GetByID(ctx, in.AppointmentID)
	if err != nil {
		return Payment{}, nil, ErrNotFound
	}
	if existing, err := s.repo.GetPaymentByAppointment(ctx, in.AppointmentID); err == nil && existing.Status != PaymentAnulado {
		return Payment{}, nil, ErrDuplicate
	}

	now := s.now()
	p := Payment{
		ID:            uuid.NewString(),
		AppointmentID: a.ID,
		OwnerID:       a.OwnerID,
		AmountCents:   in.AmountCents,
		Method:        in.Method,
		Status:        PaymentCompletado,
		RegisteredBy:  in.RegisteredBy,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if in.Deferred {
		p.Status = PaymentPendiente
	}

	if err := s.repo.CreatePayment(ctx, p); err != nil {
		return Payment{}, nil, err
	}

	if p.Status != PaymentCompletado {
		return p, nil, nil
	}
	inv, err := s.issueInvoice(ctx, p)
	if err != nil {
		return Payment{}, nil, err
	}
	return p, &inv, nil
}

// ConfirmPayment completa un pago diferido y emite la factura.
func (s *Service) ConfirmPayment(ctx context.Context, id string) (Payment, *Invoice, error) {
	p, err := s.repo.GetPaymentByID(ctx, id)
	if err != nil {
		return Payment{}, nil, ErrNotFound
	}
	if p.Status != PaymentPendiente {
		return Payment{}, nil, ErrBadState
	}

	p.Status = PaymentCompletado
	p.UpdatedAt = s.now()
	if err := s.repo.UpdatePayment(ctx, p); err != nil {
		return Payment{}, nil, err
	}

	inv, err := s.issueInvoice(ctx, p)
	if err != nil {
		return Payment{}, nil, err
	}
	return p, &inv, nil
}

// VoidPayment anula un pago pendiente (no cobrado aún).
func (s *Service) VoidPayment(ctx context.Context, id string) (Payment, error) {
	p, err := s.repo.GetPaymentByID(ctx, id)
	if err != nil {
		return Payment{}, ErrNotFound
	}
	if p.Status != PaymentPendiente {
		return Payment{}, ErrBadState
	}

	p.Status = PaymentAnulado
	p.UpdatedAt = s.now()
	if err := s.repo.UpdatePayment(ctx, p); err != nil {
		return Payment{}, err
	}
	return p, nil
}

func (s *Service) issueInvoice(ctx context.Context, p Payment) (Invoice, error) {
	return s.repo.CreateInvoice(ctx, Invoice{
		ID:          uuid.NewString(),
		PaymentID:   p.ID,
		OwnerID:     p.OwnerID,
		AmountCents: p.AmountCents,
		IssuedAt:    s.now(),
	})
}

func (s *Service) GetPayment(ctx context.Context, id string) (Payment, error) {
	p, err := s.repo.GetPaymentByID(ctx, id)
	if err != nil {
		return Payment{}, ErrNotFound
	}
	return p, nil
}

func (s *Service) ListPaymentsByOwner(ctx context.Context, ownerID string) ([]Payment, error) {
	return s.repo.ListPaymentsByOwner(ctx, ownerID)
}

func (s *Service) GetInvoiceByPayment(ctx context.Context, paymentID string) (Invoice, error) {
	inv, err := s.repo.GetInvoiceByPayment(ctx, paymentID)
	if err != nil {
		return Invoice{}, ErrNotFound
	}
	return inv, nil
}

func (s *Service) ListInvoicesByOwner(ctx context.Context, ownerID string) ([]Invoice, error) {
	return s.repo.ListInvoicesByOwner(ctx, ownerID)
}
