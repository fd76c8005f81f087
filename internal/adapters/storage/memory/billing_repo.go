package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"vet-clinic/internal/domain/billing"
)

type billingRepo struct {
	mu       sync.Mutex
	payments map[string]billing.Payment
	invoices map[string]billing.Invoice

	// nextSeq emula la secuencia de facturación de Postgres.
	nextSeq int64
}

func NewBillingRepo() billing.Repository {
	return &billingRepo{
		payments: make(map[string]billing.Payment),
		invoices: make(map[string]billing.Invoice),
		nextSeq:  1,
	}
}

func (r *billingRepo) CreatePayment(ctx context.Context, p billing.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(p.ID) == "" {
		return errors.New("payment id required")
	}
	for _, got := range r.payments {
		if got.AppointmentID == p.AppointmentID && got.Status != billing.PaymentAnulado {
			return billing.ErrDuplicate
		}
	}
	r.payments[p.ID] = p
	return nil
}

func (r *billingRepo) UpdatePayment(ctx context.Context, p billing.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.payments[p.ID]; !exists {
		return ErrNotFound
	}
	r.payments[p.ID] = p
	return nil
}

func (r *billingRepo) GetPaymentByID(ctx context.Context, id string) (billing.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.payments[id]
	if !ok {
		return billing.Payment{}, ErrNotFound
	}
	return p, nil
}

func (r *billingRepo) GetPaymentByAppointment(ctx context.Context, appointmentID string) (billing.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range r.payments {
		if p.AppointmentID == appointmentID && p.Status != billing.PaymentAnulado {
			return p, nil
		}
	}
	return billing.Payment{}, ErrNotFound
}

func (r *billingRepo) ListPaymentsByOwner(ctx context.Context, ownerID string) ([]billing.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]billing.Payment, 0)
	for _, p := range r.payments {
		if p.OwnerID == ownerID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *billingRepo) CreateInvoice(ctx context.Context, inv billing.Invoice) (billing.Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	inv.Sequence = r.nextSeq
	r.nextSeq++
	r.invoices[inv.ID] = inv
	return inv, nil
}

func (r *billingRepo) GetInvoiceByPayment(ctx context.Context, paymentID string) (billing.Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, inv := range r.invoices {
		if inv.PaymentID == paymentID {
			return inv, nil
		}
	}
	return billing.Invoice{}, ErrNotFound
}

func (r *billingRepo) ListInvoicesByOwner(ctx context.Context, ownerID string) ([]billing.Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]billing.Invoice, 0)
	for _, inv := range r.invoices {
		if inv.OwnerID == ownerID {
			out = append(out, inv)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Sequence > out[j].Sequence })
	return out, nil
}
