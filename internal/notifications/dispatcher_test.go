package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"vet-clinic/internal/domain/appointments"
	"vet-clinic/internal/domain/owners"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureRepo struct {
	created []Notification
}

func (r *captureRepo) Create(ctx context.Context, n Notification) error {
	r.created = append(r.created, n)
	return nil
}

func (r *captureRepo) GetByID(ctx context.Context, id string) (Notification, error) {
	for _, n := range r.created {
		if n.ID == id {
			return n, nil
		}
	}
	return Notification{}, errors.New("not found")
}

func (r *captureRepo) ListByUser(ctx context.Context, userID string, onlyUnread bool) ([]Notification, error) {
	out := make([]Notification, 0)
	for _, n := range r.created {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (r *captureRepo) MarkRead(ctx context.Context, id string) error { return nil }

type captureOutbox struct {
	events    []Event
	insertErr error
}

func (o *captureOutbox) Insert(ctx context.Context, evt Event) error {
	if o.insertErr != nil {
		return o.insertErr
	}
	o.events = append(o.events, evt)
	return nil
}

func (o *captureOutbox) FetchUnpublished(ctx context.Context, limit int) ([]Event, error) {
	return nil, nil
}

func (o *captureOutbox) MarkPublished(ctx context.Context, ids []string) error { return nil }

type staticOwners struct {
	byID map[string]owners.Owner
}

func (s staticOwners) GetByID(ctx context.Context, id string) (owners.Owner, error) {
	o, ok := s.byID[id]
	if !ok {
		return owners.Owner{}, errors.New("not found")
	}
	return o, nil
}

func quietLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

func sampleAppointment() appointments.Appointment {
	return appointments.Appointment{
		ID:      "cita-1",
		OwnerID: "owner-1",
		PetID:   "pet-1",
		VetID:   "vet-1",
		Fecha:   time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC),
		Hora:    "10:00",
		Status:  appointments.StatusProgramada,
	}
}

func TestDispatcher_AppointmentChanged(t *testing.T) {
	repo := &captureRepo{}
	outbox := &captureOutbox{}
	lookup := staticOwners{byID: map[string]owners.Owner{
		"owner-1": {ID: "owner-1", UserID: "user-9"},
	}}
	d := NewDispatcher(repo, outbox, lookup, quietLogger())

	d.AppointmentChanged(context.Background(), appointments.EventCreated, sampleAppointment())

	require.Len(t, outbox.events, 1)
	evt := outbox.events[0]
	assert.Equal(t, "cita-1", evt.AggregateID)
	assert.Equal(t, appointments.EventCreated, evt.EventType)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(evt.Payload, &payload))
	assert.Equal(t, "2026-03-09", payload["fecha"])
	assert.Equal(t, "10:00", payload["hora"])
	assert.Equal(t, "PROGRAMADA", payload["status"])

	// Una notificación para el veterinario y otra para el usuario
	// del propietario.
	require.Len(t, repo.created, 2)
	recipients := []string{repo.created[0].UserID, repo.created[1].UserID}
	assert.ElementsMatch(t, []string{"vet-1", "user-9"}, recipients)
}

func TestDispatcher_OwnerWithoutAccount(t *testing.T) {
	repo := &captureRepo{}
	outbox := &captureOutbox{}
	lookup := staticOwners{byID: map[string]owners.Owner{
		"owner-1": {ID: "owner-1"}, // sin usuario asociado
	}}
	d := NewDispatcher(repo, outbox, lookup, quietLogger())

	d.AppointmentChanged(context.Background(), appointments.EventConfirmed, sampleAppointment())

	require.Len(t, repo.created, 1)
	assert.Equal(t, "vet-1", repo.created[0].UserID)
}

func TestDispatcher_OutboxFailureDoesNotPanic(t *testing.T) {
	repo := &captureRepo{}
	outbox := &captureOutbox{insertErr: errors.New("outbox caído")}
	lookup := staticOwners{byID: map[string]owners.Owner{}}
	d := NewDispatcher(repo, outbox, lookup, quietLogger())

	// El fallo del outbox no impide las notificaciones in-app.
	d.AppointmentChanged(context.Background(), appointments.EventCancelled, sampleAppointment())

	require.Len(t, repo.created, 1)
	assert.Equal(t, "vet-1", repo.created[0].UserID)
}

func TestDispatcher_CancelMessageIncludesReason(t *testing.T) {
	a := sampleAppointment()
	a.CancelReason = "viaje imprevisto"

	_, body := messageFor(appointments.EventCancelled, a)
	assert.Contains(t, body, "viaje imprevisto")
}
