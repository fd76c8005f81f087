package records

import "context"

type Repository interface {
	Create(ctx context.Context, rec Record) error
	Update(ctx context.Context, rec Record) error
	GetByID(ctx context.Context, id string) (Record, error)
	GetByAppointment(ctx context.Context, appointmentID string) (Record, error)

	// ListByPet devuelve el historial completo de la mascota,
	// ordenado de la entrada más reciente a la más antigua.
	ListByPet(ctx context.Context, petID string) ([]Record, error)
}
