package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"vet-clinic/internal/domain/appointments"
	"vet-clinic/internal/domain/owners"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// OwnerLookup resuelve el usuario detrás de un propietario.
type OwnerLookup interface {
	GetByID(ctx context.Context, id string) (owners.Owner, error)
}

// Dispatcher recibe transiciones de citas y las convierte en
// notificaciones in-app más un evento de outbox. Implementa
// appointments.Notifier.
type Dispatcher struct {
	repo   Repository
	outbox OutboxRepository
	owners OwnerLookup
	logger *logrus.Entry
	now    func() time.Time
}

func NewDispatcher(repo Repository, outbox OutboxRepository, owners OwnerLookup, logger *logrus.Entry) *Dispatcher {
	return &Dispatcher{
		repo:   repo,
		outbox: outbox,
		owners: owners,
		logger: logger,
		now:    time.Now,
	}
}

type appointmentEvent struct {
	AppointmentID string `json:"appointment_id"`
	OwnerID       string `json:"owner_id"`
	PetID         string `json:"pet_id"`
	VetID         string `json:"vet_id"`
	Fecha         string `json:"fecha"`
	Hora          string `json:"hora"`
	Status        string `json:"status"`
	Emergency     bool   `json:"es_emergencia"`
}

// AppointmentChanged registra el evento. Un fallo acá no puede voltear
// la operación de negocio que lo disparó: se loguea y se sigue.
func (d *Dispatcher) AppointmentChanged(ctx context.Context, eventType string, a appointments.Appointment) {
	payload, err := json.Marshal(appointmentEvent{
		AppointmentID: a.ID,
		OwnerID:       a.OwnerID,
		PetID:         a.PetID,
		VetID:         a.VetID,
		Fecha:         a.Fecha.Format("2006-01-02"),
		Hora:          a.Hora,
		Status:        string(a.Status),
		Emergency:     a.Emergency,
	})
	if err != nil {
		d.logger.WithError(err).Error("no se pudo serializar el evento de cita")
		return
	}

	if err := d.outbox.Insert(ctx, Event{
		ID:          uuid.NewString(),
		AggregateID: a.ID,
		EventType:   eventType,
		Payload:     payload,
		CreatedAt:   d.now(),
	}); err != nil {
		d.logger.WithError(err).WithField("event_type", eventType).Error("no se pudo encolar el evento en el outbox")
	}

	title, body := messageFor(eventType, a)
	for _, userID := range d.recipients(ctx, a) {
		n := Notification{
			ID:        uuid.NewString(),
			UserID:    userID,
			EventType: eventType,
			Title:     title,
			Body:      body,
			CreatedAt: d.now(),
		}
		if err := d.repo.Create(ctx, n); err != nil {
			d.logger.WithError(err).WithField("user_id", userID).Error("no se pudo crear la notificación")
		}
	}
}

// recipients: el veterinario asignado y, si el propietario tiene cuenta,
// también su usuario.
func (d *Dispatcher) recipients(ctx context.Context, a appointments.Appointment) []string {
	out := []string{a.VetID}
	if o, err := d.owners.GetByID(ctx, a.OwnerID); err == nil && o.UserID != "" && o.UserID != a.VetID {
		out = append(out, o.UserID)
	}
	return out
}

func messageFor(eventType string, a appointments.Appointment) (title, body string) {
	when := fmt.Sprintf("%s a las %s", a.Fecha.Format("2006-01-02"), a.Hora)
	switch eventType {
	case appointments.EventCreated:
		return "Cita agendada", fmt.Sprintf("Se agendó una cita para el %s.", when)
	case appointments.EventConfirmed:
		return "Cita confirmada", fmt.Sprintf("La cita del %s fue confirmada.", when)
	case appointments.EventRescheduled:
		return "Cita reprogramada", fmt.Sprintf("La cita fue movida al %s.", when)
	case appointments.EventCancelled:
		return "Cita cancelada", fmt.Sprintf("La cita del %s fue cancelada. Motivo: %s", when, a.CancelReason)
	case appointments.EventCompleted:
		return "Consulta registrada", fmt.Sprintf("La consulta del %s quedó registrada en el historial.", when)
	case appointments.EventMarkedNoShow:
		return "Inasistencia registrada", fmt.Sprintf("Se registró inasistencia a la cita del %s.", when)
	}
	return eventType, when
}
