package appointments

import (
	"errors"
	"testing"
	"time"

	"vet-clinic/internal/domain/accounts"
)

// lunes 9 de marzo de 2026
var lunes = time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)

// domingo 8 de marzo de 2026
var domingo = time.Date(2026, 3, 8, 0, 0, 0, 0, time.UTC)

func baseAppointment() Appointment {
	return Appointment{
		ID:      "cita-1",
		OwnerID: "owner-1",
		PetID:   "pet-1",
		VetID:   "vet-1",
		Fecha:   lunes,
		Hora:    "10:00",
		Status:  StatusProgramada,
	}
}

func ruleCode(t *testing.T, err error) RuleCode {
	t.Helper()
	var rerr *RuleError
	if !errors.As(err, &rerr) {
		t.Fatalf("expected RuleError, got %v", err)
	}
	return rerr.Code
}

func TestValidate_OwnershipMismatch(t *testing.T) {
	a := baseAppointment()
	err := Validate(a, "otro-owner")
	if got := ruleCode(t, err); got != CodeOwnershipMismatch {
		t.Fatalf("expected OWNERSHIP_MISMATCH, got %s", got)
	}
}

func TestValidate_BusinessHours(t *testing.T) {
	cases := []struct {
		hora string
		ok   bool
	}{
		{"07:59", false},
		{"08:00", true}, // apertura inclusive
		{"12:30", true},
		{"18:00", true}, // cierre inclusive
		{"18:01", false},
		{"23:00", false},
	}
	for _, tc := range cases {
		a := baseAppointment()
		a.Hora = tc.hora
		err := Validate(a, a.OwnerID)
		if tc.ok && err != nil {
			t.Fatalf("hora %s: expected valid, got %v", tc.hora, err)
		}
		if !tc.ok {
			if got := ruleCode(t, err); got != CodeOutOfHours {
				t.Fatalf("hora %s: expected OUT_OF_HOURS, got %s", tc.hora, got)
			}
		}
	}
}

func TestValidate_SundayRejected(t *testing.T) {
	a := baseAppointment()
	a.Fecha = domingo
	if got := ruleCode(t, Validate(a, a.OwnerID)); got != CodeNonBusinessDay {
		t.Fatalf("expected NON_BUSINESS_DAY, got %s", got)
	}
}

func TestValidate_SaturdayAllowed(t *testing.T) {
	a := baseAppointment()
	a.Fecha = time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC) // sábado
	if err := Validate(a, a.OwnerID); err != nil {
		t.Fatalf("expected saturday valid, got %v", err)
	}
}

func TestValidate_EmergencyBypassesDayAndHours(t *testing.T) {
	a := baseAppointment()
	a.Fecha = domingo
	a.Hora = "23:30"
	a.Emergency = true
	if err := Validate(a, a.OwnerID); err != nil {
		t.Fatalf("expected emergency to bypass rules, got %v", err)
	}
}

func TestValidate_EmergencyDoesNotBypassOwnership(t *testing.T) {
	a := baseAppointment()
	a.Emergency = true
	if got := ruleCode(t, Validate(a, "otro-owner")); got != CodeOwnershipMismatch {
		t.Fatalf("expected OWNERSHIP_MISMATCH even for emergency, got %s", got)
	}
}

func TestCanCancel_NoticeBoundary(t *testing.T) {
	a := baseAppointment() // lunes 10:00
	owner := Actor{UserID: "owner-1", Role: accounts.RolePropietario}

	// 5h59m de anticipación: no alcanza.
	now := a.StartTime().Add(-CancelNotice + time.Minute)
	if ok, _ := CanCancel(a, owner, now); ok {
		t.Fatalf("expected cancel rejected with 5h59m notice")
	}

	// exactamente 6h: alcanza.
	now = a.StartTime().Add(-CancelNotice)
	if ok, msg := CanCancel(a, owner, now); !ok {
		t.Fatalf("expected cancel allowed with exactly 6h notice: %s", msg)
	}
}

func TestCanCancel_AdminBypassesNotice(t *testing.T) {
	a := baseAppointment()
	admin := Actor{UserID: "admin-1", Role: accounts.RoleAdmin}

	now := a.StartTime().Add(-time.Minute)
	if ok, msg := CanCancel(a, admin, now); !ok {
		t.Fatalf("expected admin to bypass notice: %s", msg)
	}
}

func TestCanCancel_TerminalStates(t *testing.T) {
	admin := Actor{UserID: "admin-1", Role: accounts.RoleAdmin}
	for _, st := range []Status{StatusCompletada, StatusCancelada, StatusInasistencia} {
		a := baseAppointment()
		a.Status = st
		if ok, _ := CanCancel(a, admin, lunes); ok {
			t.Fatalf("expected cancel rejected in state %s even for admin", st)
		}
	}
}

func TestCanReschedule_NoticeBoundary(t *testing.T) {
	a := baseAppointment()
	a.Status = StatusConfirmada
	owner := Actor{UserID: "owner-1", Role: accounts.RolePropietario}

	// 11h59m: no alcanza (la reprogramación pide más que la cancelación).
	now := a.StartTime().Add(-RescheduleNotice + time.Minute)
	if ok, _ := CanReschedule(a, owner, now); ok {
		t.Fatalf("expected reschedule rejected with 11h59m notice")
	}

	now = a.StartTime().Add(-RescheduleNotice)
	if ok, msg := CanReschedule(a, owner, now); !ok {
		t.Fatalf("expected reschedule allowed with exactly 12h notice: %s", msg)
	}
}

func TestCanReschedule_AdminBypass(t *testing.T) {
	a := baseAppointment()
	admin := Actor{UserID: "admin-1", Role: accounts.RoleAdmin}

	now := a.StartTime().Add(-time.Minute)
	if ok, msg := CanReschedule(a, admin, now); !ok {
		t.Fatalf("expected admin to bypass reschedule notice: %s", msg)
	}
}

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to Status
		want     bool
	}{
		{StatusProgramada, StatusConfirmada, true},
		{StatusProgramada, StatusCompletada, true},
		{StatusProgramada, StatusCancelada, true},
		{StatusProgramada, StatusInasistencia, true},
		{StatusConfirmada, StatusCompletada, true},
		{StatusConfirmada, StatusCancelada, true},
		{StatusConfirmada, StatusInasistencia, true},
		{StatusConfirmada, StatusConfirmada, false},
		{StatusCompletada, StatusCancelada, false},
		{StatusCancelada, StatusConfirmada, false},
		{StatusCancelada, StatusCompletada, false},
		{StatusInasistencia, StatusCompletada, false},
		{StatusCompletada, StatusInasistencia, false},
	}
	for _, tc := range cases {
		if got := CanTransition(tc.from, tc.to); got != tc.want {
			t.Fatalf("CanTransition(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}
