package records

import "time"

// Record es una entrada de historial clínico: el resultado de una
// consulta atendida. Cada mascota acumula sus entradas en orden
// cronológico.
type Record struct {
	ID            string
	PetID         string
	AppointmentID string
	VetID         string

	Motivo      string
	Diagnostico string
	Tratamiento string
	Notas       string

	// WeightGrams registra el peso del paciente en la consulta (opcional).
	WeightGrams *int64

	CreatedAt time.Time
	UpdatedAt time.Time
}
