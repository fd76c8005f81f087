package appointments

import (
	"context"
	"errors"
	"time"
)

// ErrSlotTaken indica que el slot (vet, fecha, hora) ya está ocupado.
// Lo produce la persistencia en forma atómica: dos creaciones simultáneas
// para el mismo slot no pueden tener éxito las dos.
var ErrSlotTaken = errors.New("time slot already booked")

type Repository interface {
	// Create inserta la cita validando la unicidad del slot en la misma
	// operación; devuelve ErrSlotTaken si el slot está ocupado.
	Create(ctx context.Context, a Appointment) error

	// Update modifica campos de estado sin tocar el slot.
	Update(ctx context.Context, a Appointment) error

	// UpdateSlot mueve la cita a (fecha, hora) nuevos con el mismo chequeo
	// atómico de unicidad que Create.
	UpdateSlot(ctx context.Context, a Appointment) error

	GetByID(ctx context.Context, id string) (Appointment, error)
	ListByVetAndDate(ctx context.Context, vetID string, fecha time.Time) ([]Appointment, error)
	ListByOwner(ctx context.Context, ownerID string) ([]Appointment, error)

	// CountFutureActiveByService cuenta citas PROGRAMADA/CONFIRMADA con
	// fecha >= from para un servicio (bloqueo de desactivación del catálogo).
	CountFutureActiveByService(ctx context.Context, serviceID string, from time.Time) (int, error)
}

type WaitlistRepository interface {
	Create(ctx context.Context, e WaitlistEntry) error
	Update(ctx context.Context, e WaitlistEntry) error
	GetByID(ctx context.Context, id string) (WaitlistEntry, error)

	// ListPending devuelve entradas no atendidas ordenadas por
	// (prioridad asc, fecha de solicitud asc).
	ListPending(ctx context.Context) ([]WaitlistEntry, error)
}
