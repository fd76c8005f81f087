package appointments

import (
	"context"
	"errors"
	"testing"
	"time"
)

// -------------------------
// Test repos (in-memory)
// -------------------------

var errRepoNotFound = errors.New("repo: not found")

type testRepo struct {
	byID  map[string]Appointment
	slots map[string]string
}

func newApptTestRepo() *testRepo {
	return &testRepo{
		byID:  map[string]Appointment{},
		slots: map[string]string{},
	}
}

func testSlotKey(a Appointment) string {
	return a.VetID + "|" + a.Fecha.Format("2006-01-02") + "|" + a.Hora
}

func (r *testRepo) Create(ctx context.Context, a Appointment) error {
	key := testSlotKey(a)
	if _, taken := r.slots[key]; taken {
		return ErrSlotTaken
	}
	r.byID[a.ID] = a
	r.slots[key] = a.ID
	return nil
}

func (r *testRepo) Update(ctx context.Context, a Appointment) error {
	if _, ok := r.byID[a.ID]; !ok {
		return errRepoNotFound
	}
	r.byID[a.ID] = a
	return nil
}

func (r *testRepo) UpdateSlot(ctx context.Context, a Appointment) error {
	prev, ok := r.byID[a.ID]
	if !ok {
		return errRepoNotFound
	}
	newKey := testSlotKey(a)
	if holder, taken := r.slots[newKey]; taken && holder != a.ID {
		return ErrSlotTaken
	}
	delete(r.slots, testSlotKey(prev))
	r.slots[newKey] = a.ID
	r.byID[a.ID] = a
	return nil
}

func (r *testRepo) GetByID(ctx context.Context, id string) (Appointment, error) {
	a, ok := r.byID[id]
	if !ok {
		return Appointment{}, errRepoNotFound
	}
	return a, nil
}

func (r *testRepo) ListByVetAndDate(ctx context.Context, vetID string, fecha time.Time) ([]Appointment, error) {
	out := make([]Appointment, 0)
	for _, a := range r.byID {
		if a.VetID == vetID && a.Fecha.Equal(fecha) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *testRepo) ListByOwner(ctx context.Context, ownerID string) ([]Appointment, error) {
	out := make([]Appointment, 0)
	for _, a := range r.byID {
		if a.OwnerID == ownerID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *testRepo) CountFutureActiveByService(ctx context.Context, serviceID string, from time.Time) (int, error) {
	n := 0
	for _, a := range r.byID {
		if a.ServiceID == serviceID && !a.Fecha.Before(from) &&
			(a.Status == StatusProgramada || a.Status == StatusConfirmada) {
			n++
		}
	}
	return n, nil
}

type testWaitlistRepo struct {
	byID map[string]WaitlistEntry
}

func newWaitlistTestRepo() *testWaitlistRepo {
	return &testWaitlistRepo{byID: map[string]WaitlistEntry{}}
}

func (r *testWaitlistRepo) Create(ctx context.Context, e WaitlistEntry) error {
	r.byID[e.ID] = e
	return nil
}

func (r *testWaitlistRepo) Update(ctx context.Context, e WaitlistEntry) error {
	if _, ok := r.byID[e.ID]; !ok {
		return errRepoNotFound
	}
	r.byID[e.ID] = e
	return nil
}

func (r *testWaitlistRepo) GetByID(ctx context.Context, id string) (WaitlistEntry, error) {
	e, ok := r.byID[id]
	if !ok {
		return WaitlistEntry{}, errRepoNotFound
	}
	return e, nil
}

func (r *testWaitlistRepo) ListPending(ctx context.Context) ([]WaitlistEntry, error) {
	out := make([]WaitlistEntry, 0)
	for _, e := range r.byID {
		if !e.Attended {
			out = append(out, e)
		}
	}
	return out, nil
}

// testOwnership: toda mascota conocida pertenece a "owner-1".
type testOwnership struct{ known map[string]string }

func (o *testOwnership) OwnerOf(ctx context.Context, petID string) (string, error) {
	owner, ok := o.known[petID]
	if !ok {
		return "", errRepoNotFound
	}
	return owner, nil
}

type recordedEvent struct {
	Type string
	Appt Appointment
}

type testNotifier struct{ events []recordedEvent }

func (n *testNotifier) AppointmentChanged(ctx context.Context, eventType string, a Appointment) {
	n.events = append(n.events, recordedEvent{Type: eventType, Appt: a})
}

func newTestService() (*Service, *testRepo, *testNotifier) {
	repo := newApptTestRepo()
	svc := NewService(repo, newWaitlistTestRepo(), &testOwnership{
		known: map[string]string{"pet-1": "owner-1"},
	})
	notifier := &testNotifier{}
	svc.SetNotifier(notifier)
	return svc, repo, notifier
}

func validCreateInput() CreateInput {
	return CreateInput{
		OwnerID:     "owner-1",
		PetID:       "pet-1",
		ServiceID:   "svc-1",
		VetID:       "vet-1",
		CreatedByID: "staff-1",
		Fecha:       "2026-03-09", // lunes
		Hora:        "10:00",
	}
}

// -------------------------
// Tests
// -------------------------

func TestService_Create_SchedulesAndEmits(t *testing.T) {
	svc, _, notifier := newTestService()

	a, err := svc.Create(context.Background(), validCreateInput())
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if a.Status != StatusProgramada {
		t.Fatalf("expected PROGRAMADA, got %s", a.Status)
	}
	if len(notifier.events) != 1 || notifier.events[0].Type != EventCreated {
		t.Fatalf("expected %s event, got %#v", EventCreated, notifier.events)
	}
}

func TestService_Create_RejectsBadInput(t *testing.T) {
	svc, _, _ := newTestService()

	cases := []func(*CreateInput){
		func(in *CreateInput) { in.Fecha = "09-03-2026" },
		func(in *CreateInput) { in.Hora = "25:00" },
		func(in *CreateInput) { in.Hora = "" },
		func(in *CreateInput) { in.VetID = "" },
	}
	for i, mutate := range cases {
		in := validCreateInput()
		mutate(&in)
		if _, err := svc.Create(context.Background(), in); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("case %d: expected ErrInvalidInput, got %v", i, err)
		}
	}
}

func TestService_Create_UnknownPet(t *testing.T) {
	svc, _, _ := newTestService()

	in := validCreateInput()
	in.PetID = "pet-fantasma"
	if _, err := svc.Create(context.Background(), in); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestService_Create_SlotConflict(t *testing.T) {
	svc, _, _ := newTestService()

	if _, err := svc.Create(context.Background(), validCreateInput()); err != nil {
		t.Fatalf("first Create error: %v", err)
	}
	if _, err := svc.Create(context.Background(), validCreateInput()); !errors.Is(err, ErrSlotTaken) {
		t.Fatalf("expected ErrSlotTaken for same slot, got %v", err)
	}

	// Otro veterinario a la misma hora sí puede.
	in := validCreateInput()
	in.VetID = "vet-2"
	if _, err := svc.Create(context.Background(), in); err != nil {
		t.Fatalf("expected different vet to book same hour, got %v", err)
	}
}

func TestService_Cancel_RequiresReason(t *testing.T) {
	svc, _, _ := newTestService()
	a, _ := svc.Create(context.Background(), validCreateInput())

	actor := Actor{UserID: "admin-1", Role: "ADMIN"}
	if _, err := svc.Cancel(context.Background(), a.ID, actor, "   "); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput without reason, got %v", err)
	}
}

func TestService_Cancel_InsufficientNotice(t *testing.T) {
	svc, _, _ := newTestService()
	a, _ := svc.Create(context.Background(), validCreateInput())

	// 2 horas antes de la cita.
	svc.now = func() time.Time { return a.StartTime().Add(-2 * time.Hour) }

	actor := Actor{UserID: "owner-user-1", Role: "PROPIETARIO"}
	_, err := svc.Cancel(context.Background(), a.ID, actor, "no puedo asistir")
	var rerr *RuleError
	if !errors.As(err, &rerr) || rerr.Code != CodeInsufficientNotice {
		t.Fatalf("expected INSUFFICIENT_NOTICE, got %v", err)
	}
}

func TestService_Cancel_AdminAndEmits(t *testing.T) {
	svc, repo, notifier := newTestService()
	a, _ := svc.Create(context.Background(), validCreateInput())

	svc.now = func() time.Time { return a.StartTime().Add(-time.Minute) }

	actor := Actor{UserID: "admin-1", Role: "ADMIN"}
	got, err := svc.Cancel(context.Background(), a.ID, actor, "emergencia familiar")
	if err != nil {
		t.Fatalf("Cancel error: %v", err)
	}
	if got.Status != StatusCancelada || got.CancelReason != "emergencia familiar" {
		t.Fatalf("unexpected cancelled appointment: %#v", got)
	}

	stored := repo.byID[a.ID]
	if stored.Status != StatusCancelada {
		t.Fatalf("expected stored status CANCELADA, got %s", stored.Status)
	}

	last := notifier.events[len(notifier.events)-1]
	if last.Type != EventCancelled {
		t.Fatalf("expected %s event, got %s", EventCancelled, last.Type)
	}
}

func TestService_Cancel_TerminalState(t *testing.T) {
	svc, _, _ := newTestService()
	a, _ := svc.Create(context.Background(), validCreateInput())

	actor := Actor{UserID: "admin-1", Role: "ADMIN"}
	svc.now = func() time.Time { return a.StartTime().Add(-24 * time.Hour) }

	if _, err := svc.Cancel(context.Background(), a.ID, actor, "motivo"); err != nil {
		t.Fatalf("first cancel error: %v", err)
	}

	_, err := svc.Cancel(context.Background(), a.ID, actor, "otra vez")
	var rerr *RuleError
	if !errors.As(err, &rerr) || rerr.Code != CodeNotCancellable {
		t.Fatalf("expected NOT_CANCELLABLE on cancelled appointment, got %v", err)
	}
}

func TestService_Reschedule_MovesSlot(t *testing.T) {
	svc, _, notifier := newTestService()
	a, _ := svc.Create(context.Background(), validCreateInput())

	svc.now = func() time.Time { return a.StartTime().Add(-24 * time.Hour) }

	actor := Actor{UserID: "staff-1", Role: "ADMIN"}
	moved, err := svc.Reschedule(context.Background(), a.ID, actor, "2026-03-10", "11:30")
	if err != nil {
		t.Fatalf("Reschedule error: %v", err)
	}
	if moved.Hora != "11:30" || moved.Fecha.Day() != 10 {
		t.Fatalf("unexpected slot after reschedule: %s %s", moved.Fecha, moved.Hora)
	}

	last := notifier.events[len(notifier.events)-1]
	if last.Type != EventRescheduled {
		t.Fatalf("expected %s event, got %s", EventRescheduled, last.Type)
	}

	// El slot viejo quedó libre.
	in := validCreateInput()
	in.PetID = "pet-1"
	if _, err := svc.Create(context.Background(), in); err != nil {
		t.Fatalf("expected old slot to be free, got %v", err)
	}
}

func TestService_Reschedule_TargetMustPassRules(t *testing.T) {
	svc, _, _ := newTestService()
	a, _ := svc.Create(context.Background(), validCreateInput())

	svc.now = func() time.Time { return a.StartTime().Add(-24 * time.Hour) }
	actor := Actor{UserID: "staff-1", Role: "ADMIN"}

	// Mover a domingo: rechazado.
	_, err := svc.Reschedule(context.Background(), a.ID, actor, "2026-03-15", "10:00")
	var rerr *RuleError
	if !errors.As(err, &rerr) || rerr.Code != CodeNonBusinessDay {
		t.Fatalf("expected NON_BUSINESS_DAY for sunday target, got %v", err)
	}
}

func TestService_Reschedule_RechecksOwnership(t *testing.T) {
	ownership := &testOwnership{known: map[string]string{"pet-1": "owner-1"}}
	svc := NewService(newApptTestRepo(), newWaitlistTestRepo(), ownership)
	a, err := svc.Create(context.Background(), validCreateInput())
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}

	// La mascota cambió de dueño después de agendar: la cita guarda al
	// propietario viejo y la revalidación lo detecta.
	ownership.known["pet-1"] = "owner-2"

	svc.now = func() time.Time { return a.StartTime().Add(-24 * time.Hour) }
	actor := Actor{UserID: "staff-1", Role: "ADMIN"}

	_, err = svc.Reschedule(context.Background(), a.ID, actor, "2026-03-10", "11:30")
	var rerr *RuleError
	if !errors.As(err, &rerr) || rerr.Code != CodeOwnershipMismatch {
		t.Fatalf("expected OWNERSHIP_MISMATCH after transfer, got %v", err)
	}
}

func TestService_Reschedule_TargetSlotTaken(t *testing.T) {
	svc, _, _ := newTestService()
	a, _ := svc.Create(context.Background(), validCreateInput())

	in := validCreateInput()
	in.Hora = "11:00"
	if _, err := svc.Create(context.Background(), in); err != nil {
		t.Fatalf("second Create error: %v", err)
	}

	svc.now = func() time.Time { return a.StartTime().Add(-24 * time.Hour) }
	actor := Actor{UserID: "staff-1", Role: "ADMIN"}

	if _, err := svc.Reschedule(context.Background(), a.ID, actor, "2026-03-09", "11:00"); !errors.Is(err, ErrSlotTaken) {
		t.Fatalf("expected ErrSlotTaken, got %v", err)
	}
}

func TestService_Lifecycle_ConfirmCompleteNoShow(t *testing.T) {
	svc, _, _ := newTestService()

	// Confirmar y completar.
	a, _ := svc.Create(context.Background(), validCreateInput())
	if _, err := svc.Confirm(context.Background(), a.ID); err != nil {
		t.Fatalf("Confirm error: %v", err)
	}
	if _, err := svc.Confirm(context.Background(), a.ID); !errors.Is(err, ErrBadState) {
		t.Fatalf("expected ErrBadState on double confirm, got %v", err)
	}
	done, err := svc.Complete(context.Background(), a.ID)
	if err != nil {
		t.Fatalf("Complete error: %v", err)
	}
	if done.Status != StatusCompletada {
		t.Fatalf("expected COMPLETADA, got %s", done.Status)
	}
	if _, err := svc.MarkNoShow(context.Background(), a.ID); !errors.Is(err, ErrBadState) {
		t.Fatalf("expected ErrBadState marking no-show on completed, got %v", err)
	}

	// Inasistencia directa desde PROGRAMADA.
	in := validCreateInput()
	in.Hora = "12:00"
	b, _ := svc.Create(context.Background(), in)
	missed, err := svc.MarkNoShow(context.Background(), b.ID)
	if err != nil {
		t.Fatalf("MarkNoShow error: %v", err)
	}
	if missed.Status != StatusInasistencia {
		t.Fatalf("expected INASISTENCIA, got %s", missed.Status)
	}
}

func TestService_Waitlist(t *testing.T) {
	svc, _, _ := newTestService()

	if _, err := svc.Enqueue(context.Background(), EnqueueInput{
		PetID: "pet-1", ServiceID: "svc-1", Priority: Priority(9),
	}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for bad priority, got %v", err)
	}

	e, err := svc.Enqueue(context.Background(), EnqueueInput{
		PetID: "pet-1", ServiceID: "svc-1", Priority: PriorityCirugia,
	})
	if err != nil {
		t.Fatalf("Enqueue error: %v", err)
	}

	attended, err := svc.MarkAttended(context.Background(), e.ID)
	if err != nil || !attended.Attended {
		t.Fatalf("MarkAttended error: %v attended=%v", err, attended.Attended)
	}
	// idempotente
	if _, err := svc.MarkAttended(context.Background(), e.ID); err != nil {
		t.Fatalf("MarkAttended #2 error: %v", err)
	}

	pending, _ := svc.ListWaitlist(context.Background())
	if len(pending) != 0 {
		t.Fatalf("expected empty waitlist, got %d", len(pending))
	}
}
