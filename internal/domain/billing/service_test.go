package billing

import (
	"context"
	"errors"
	"testing"
	"time"

	"vet-clinic/internal/domain/appointments"
)

var errRepoNotFound = errors.New("repo: not found")

type testRepo struct {
	payments map[string]Payment
	invoices map[string]Invoice
	nextSeq  int64
}

func newTestRepo() *testRepo {
	return &testRepo{
		payments: map[string]Payment{},
		invoices: map[string]Invoice{},
	}
}

func (r *testRepo) CreatePayment(ctx context.Context, p Payment) error {
	r.payments[p.ID] = p
	return nil
}

func (r *testRepo) UpdatePayment(ctx context.Context, p Payment) error {
	if _, ok := r.payments[p.ID]; !ok {
		return errRepoNotFound
	}
	r.payments[p.ID] = p
	return nil
}

func (r *testRepo) GetPaymentByID(ctx context.Context, id string) (Payment, error) {
	p, ok := r.payments[id]
	if !ok {
		return Payment{}, errRepoNotFound
	}
	return p, nil
}

func (r *testRepo) GetPaymentByAppointment(ctx context.Context, appointmentID string) (Payment, error) {
	for _, p := range r.payments {
		if p.AppointmentID == appointmentID && p.Status != PaymentAnulado {
			return p, nil
		}
	}
	return Payment{}, errRepoNotFound
}

func (r *testRepo) ListPaymentsByOwner(ctx context.Context, ownerID string) ([]Payment, error) {
	out := make([]Payment, 0)
	for _, p := range r.payments {
		if p.OwnerID == ownerID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *testRepo) CreateInvoice(ctx context.Context, inv Invoice) (Invoice, error) {
	r.nextSeq++
	inv.Sequence = r.nextSeq
	r.invoices[inv.ID] = inv
	return inv, nil
}

func (r *testRepo) GetInvoiceByPayment(ctx context.Context, paymentID string) (Invoice, error) {
	for _, inv := range r.invoices {
		if inv.PaymentID == paymentID {
			return inv, nil
		}
	}
	return Invoice{}, errRepoNotFound
}

func (r *testRepo) ListInvoicesByOwner(ctx context.Context, ownerID string) ([]Invoice, error) {
	out := make([]Invoice, 0)
	for _, inv := range r.invoices {
		if inv.OwnerID == ownerID {
			out = append(out, inv)
		}
	}
	return out, nil
}

// testAppointments conoce citas por ID sin más estado.
type testAppointments struct {
	known map[string]appointments.Appointment
}

func (a testAppointments) GetByID(ctx context.Context, id string) (appointments.Appointment, error) {
	appt, ok := a.known[id]
	if !ok {
		return appointments.Appointment{}, errRepoNotFound
	}
	return appt, nil
}

func newTestService() (*Service, *testRepo) {
	repo := newTestRepo()
	appts := testAppointments{known: map[string]appointments.Appointment{
		"cita-1": {ID: "cita-1", OwnerID: "owner-1", Status: appointments.StatusCompletada},
		"cita-2": {ID: "cita-2", OwnerID: "owner-1", Status: appointments.StatusCompletada},
	}}
	return NewService(repo, appts), repo
}

func registerInput(apptID string) RegisterPaymentInput {
	return RegisterPaymentInput{
		AppointmentID: apptID,
		AmountCents:   500_00,
		Method:        MethodEfectivo,
		RegisteredBy:  "cajero-1",
	}
}

func TestService_RegisterPayment_IssuesInvoice(t *testing.T) {
	svc, _ := newTestService()

	p, inv, err := svc.RegisterPayment(context.Background(), registerInput("cita-1"))
	if err != nil {
		t.Fatalf("RegisterPayment error: %v", err)
	}
	if p.Status != PaymentCompletado {
		t.Fatalf("expected payment completed, got %s", p.Status)
	}
	if inv == nil {
		t.Fatalf("expected invoice issued with completed payment")
	}
	if inv.Number() != "F-000001" {
		t.Fatalf("expected first invoice F-000001, got %s", inv.Number())
	}

	// El siguiente comprobante continúa la secuencia.
	_, inv2, err := svc.RegisterPayment(context.Background(), registerInput("cita-2"))
	if err != nil {
		t.Fatalf("RegisterPayment #2 error: %v", err)
	}
	if inv2.Number() != "F-000002" {
		t.Fatalf("expected F-000002, got %s", inv2.Number())
	}
}

func TestService_RegisterPayment_Validation(t *testing.T) {
	svc, _ := newTestService()

	cases := []RegisterPaymentInput{
		{AppointmentID: "cita-1", AmountCents: 0, Method: MethodEfectivo, RegisteredBy: "cajero-1"},
		{AppointmentID: "cita-1", AmountCents: -100, Method: MethodTarjeta, RegisteredBy: "cajero-1"},
		{AppointmentID: "cita-1", AmountCents: 500_00, Method: "CHEQUE", RegisteredBy: "cajero-1"},
		{AppointmentID: "cita-1", AmountCents: 500_00, Method: MethodEfectivo},
	}
	for i, in := range cases {
		if _, _, err := svc.RegisterPayment(context.Background(), in); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("case %d: expected ErrInvalidInput, got %v", i, err)
		}
	}
}

func TestService_RegisterPayment_UnknownAppointment(t *testing.T) {
	svc, _ := newTestService()

	if _, _, err := svc.RegisterPayment(context.Background(), registerInput("no-existe")); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestService_RegisterPayment_DuplicatePerAppointment(t *testing.T) {
	svc, _ := newTestService()

	if _, _, err := svc.RegisterPayment(context.Background(), registerInput("cita-1")); err != nil {
		t.Fatalf("first payment error: %v", err)
	}
	if _, _, err := svc.RegisterPayment(context.Background(), registerInput("cita-1")); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
}

func TestService_DeferredPayment_ConfirmIssuesInvoice(t *testing.T) {
	svc, _ := newTestService()

	in := registerInput("cita-1")
	in.Deferred = true
	p, inv, err := svc.RegisterPayment(context.Background(), in)
	if err != nil {
		t.Fatalf("RegisterPayment error: %v", err)
	}
	if p.Status != PaymentPendiente || inv != nil {
		t.Fatalf("expected pending payment without invoice, got status=%s inv=%v", p.Status, inv)
	}

	confirmed, inv, err := svc.ConfirmPayment(context.Background(), p.ID)
	if err != nil {
		t.Fatalf("ConfirmPayment error: %v", err)
	}
	if confirmed.Status != PaymentCompletado || inv == nil {
		t.Fatalf("expected completed payment with invoice")
	}

	// Ya completado: no se puede confirmar de nuevo ni anular.
	if _, _, err := svc.ConfirmPayment(context.Background(), p.ID); !errors.Is(err, ErrBadState) {
		t.Fatalf("expected ErrBadState on second confirm, got %v", err)
	}
	if _, err := svc.VoidPayment(context.Background(), p.ID); !errors.Is(err, ErrBadState) {
		t.Fatalf("expected ErrBadState voiding completed payment, got %v", err)
	}
}

func TestService_VoidPayment_FreesAppointment(t *testing.T) {
	svc, _ := newTestService()

	in := registerInput("cita-1")
	in.Deferred = true
	p, _, _ := svc.RegisterPayment(context.Background(), in)

	voided, err := svc.VoidPayment(context.Background(), p.ID)
	if err != nil || voided.Status != PaymentAnulado {
		t.Fatalf("expected voided payment, err=%v status=%s", err, voided.Status)
	}

	// Un pago anulado no bloquea un nuevo cobro de la misma cita.
	if _, _, err := svc.RegisterPayment(context.Background(), registerInput("cita-1")); err != nil {
		t.Fatalf("expected new payment after void, got %v", err)
	}
}

func TestService_ConfirmPayment_UnknownPayment(t *testing.T) {
	svc, _ := newTestService()

	if _, _, err := svc.ConfirmPayment(context.Background(), "no-existe"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestInvoice_Number(t *testing.T) {
	inv := Invoice{Sequence: 42, IssuedAt: time.Now()}
	if got := inv.Number(); got != "F-000042" {
		t.Fatalf("expected F-000042, got %s", got)
	}
}
