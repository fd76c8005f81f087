package appointments

import (
	"fmt"
	"time"

	"vet-clinic/internal/domain/accounts"
)

// Reglas de negocio del ciclo de vida de citas: horario laboral,
// anticipación mínima y transiciones legales.

const (
	// Horario de atención: 08:00 a 18:00 inclusive, lunes a sábado.
	OpeningHourMinutes = 8 * 60
	ClosingHourMinutes = 18 * 60

	// CancelNotice es la anticipación mínima para cancelar.
	CancelNotice = 6 * time.Hour

	// RescheduleNotice es la anticipación mínima para reprogramar.
	// Es mayor que la de cancelación: reprogramar consume un slot de
	// reemplazo que hay que encontrar; cancelar solo libera el actual.
	RescheduleNotice = 12 * time.Hour
)

// RuleCode identifica la regla violada.
type RuleCode string

const (
	CodeOwnershipMismatch  RuleCode = "OWNERSHIP_MISMATCH"
	CodeNonBusinessDay     RuleCode = "NON_BUSINESS_DAY"
	CodeOutOfHours         RuleCode = "OUT_OF_HOURS"
	CodeSlotConflict       RuleCode = "SLOT_CONFLICT"
	CodeNotCancellable     RuleCode = "NOT_CANCELLABLE"
	CodeInsufficientNotice RuleCode = "INSUFFICIENT_NOTICE"
)

// RuleError es una violación de regla de negocio reportada al caller.
type RuleError struct {
	Code RuleCode
	Msg  string
}

func (e *RuleError) Error() string { return e.Msg }

// Actor es quien ejecuta la acción sobre la cita.
type Actor struct {
	UserID string
	Role   accounts.Role
}

// Validate aplica las reglas de creación:
// - la mascota debe pertenecer al propietario declarado
// - salvo emergencia: no domingos, horario 08:00-18:00 inclusive
// La unicidad del slot (vet, fecha, hora) NO se valida acá: la garantiza
// la persistencia en forma atómica (ErrSlotTaken).
func Validate(a Appointment, petOwnerID string) error {
	if a.OwnerID != petOwnerID {
		return &RuleError{
			Code: CodeOwnershipMismatch,
			Msg:  "la mascota no pertenece al propietario seleccionado",
		}
	}

	if a.Emergency {
		return nil
	}

	if a.Fecha.Weekday() == time.Sunday {
		return &RuleError{
			Code: CodeNonBusinessDay,
			Msg:  "no se atiende los domingos; horario: lunes a sábado",
		}
	}

	mins, err := horaToMinutes(a.Hora)
	if err != nil {
		return &RuleError{Code: CodeOutOfHours, Msg: "hora inválida, formato HH:MM"}
	}
	if mins < OpeningHourMinutes || mins > ClosingHourMinutes {
		return &RuleError{
			Code: CodeOutOfHours,
			Msg:  "horario laboral: 8:00 AM - 6:00 PM",
		}
	}

	return nil
}

// CanCancel valida si la cita puede cancelarse:
// - estado PROGRAMADA o CONFIRMADA
// - administradores anulan la regla de anticipación
// - resto: mínimo 6 horas de anticipación
func CanCancel(a Appointment, actor Actor, now time.Time) (bool, string) {
	return allowedWithNotice(a, actor, now, CancelNotice, "cancelada", "cancelación")
}

// CanReschedule valida si la cita puede reprogramarse (12 horas de anticipación).
func CanReschedule(a Appointment, actor Actor, now time.Time) (bool, string) {
	return allowedWithNotice(a, actor, now, RescheduleNotice, "reprogramada", "reprogramación")
}

func allowedWithNotice(a Appointment, actor Actor, now time.Time, notice time.Duration, pastParticiple, action string) (bool, string) {
	if a.Status != StatusProgramada && a.Status != StatusConfirmada {
		return false, fmt.Sprintf("la cita ya no puede ser %s", pastParticiple)
	}

	if actor.Role.EsAdmin() {
		return true, ""
	}

	lead := a.StartTime().Sub(now)
	if lead < notice {
		return false, fmt.Sprintf("la %s requiere al menos %d horas de anticipación", action, int(notice.Hours()))
	}
	return true, ""
}

// CanTransition define las transiciones legales de estado.
func CanTransition(from, to Status) bool {
	switch to {
	case StatusConfirmada:
		return from == StatusProgramada
	case StatusCompletada, StatusCancelada:
		return from == StatusProgramada || from == StatusConfirmada
	case StatusInasistencia:
		// Marcación manual del personal; solo desde estados no terminales.
		return !from.Terminal()
	}
	return false
}

func horaToMinutes(hora string) (int, error) {
	t, err := time.Parse("15:04", hora)
	if err != nil {
		return 0, err
	}
	return t.Hour()*60 + t.Minute(), nil
}
