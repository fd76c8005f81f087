package appointments

import "time"

// Status define el ciclo de vida de una cita.
// @Enum PROGRAMADA, CONFIRMADA, COMPLETADA, CANCELADA, INASISTENCIA
type Status string

const (
	StatusProgramada   Status = "PROGRAMADA"
	StatusConfirmada   Status = "CONFIRMADA"
	StatusCompletada   Status = "COMPLETADA"
	StatusCancelada    Status = "CANCELADA"
	StatusInasistencia Status = "INASISTENCIA"
)

// Terminal indica si el estado no admite más transiciones.
func (s Status) Terminal() bool {
	return s == StatusCompletada || s == StatusCancelada || s == StatusInasistencia
}

// Appointment es una cita veterinaria.
// El par (VetID, Fecha, Hora) es único: lo garantiza la capa de persistencia.
type Appointment struct {
	ID          string
	OwnerID     string
	PetID       string
	ServiceID   string
	VetID       string
	CreatedByID string

	Fecha time.Time // solo la parte de fecha es significativa
	Hora  string    // "HH:MM"

	Status Status

	// Emergency saltea las validaciones de día/horario laboral.
	Emergency bool

	Notes        string
	CancelReason string // solo cuando Status == CANCELADA

	CreatedAt time.Time
	UpdatedAt time.Time
}

// StartTime combina fecha y hora en el instante de inicio de la cita.
func (a Appointment) StartTime() time.Time {
	t, err := time.Parse("15:04", a.Hora)
	if err != nil {
		return time.Date(a.Fecha.Year(), a.Fecha.Month(), a.Fecha.Day(), 0, 0, 0, 0, a.Fecha.Location())
	}
	return time.Date(a.Fecha.Year(), a.Fecha.Month(), a.Fecha.Day(), t.Hour(), t.Minute(), 0, 0, a.Fecha.Location())
}

// Priority define el orden de atención de la lista de espera.
type Priority int

const (
	PriorityEmergencia     Priority = 1
	PriorityCirugia        Priority = 2
	PriorityServicioMedico Priority = 3
	PriorityPeluqueria     Priority = 4
	PriorityVentaProductos Priority = 5
)

func (p Priority) Valid() bool {
	return p >= PriorityEmergencia && p <= PriorityVentaProductos
}

// WaitlistEntry es un paciente en lista de espera cuando no hay
// disponibilidad inmediata.
type WaitlistEntry struct {
	ID        string
	PetID     string
	ServiceID string
	Priority  Priority
	Notes     string

	RequestedAt time.Time
	Attended    bool
}
