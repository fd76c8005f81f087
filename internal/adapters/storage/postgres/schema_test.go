package postgres

import (
	"strings"
	"testing"
)

// El índice de slot debe ser parcial: solo PROGRAMADA/CONFIRMADA ocupan
// (vet_id, fecha, hora). Un índice pleno dejaría citas canceladas
// bloqueando su horario para siempre.
func TestSchema_SlotIndexOnlyCoversActiveStates(t *testing.T) {
	var slotIndex string
	for _, stmt := range schemaStatements {
		if strings.Contains(stmt, "uq_appointments_slot") {
			slotIndex = stmt
			break
		}
	}
	if slotIndex == "" {
		t.Fatalf("missing uq_appointments_slot statement")
	}
	if !strings.Contains(slotIndex, "WHERE status IN ('PROGRAMADA', 'CONFIRMADA')") {
		t.Fatalf("slot index must be partial over active states:\n%s", slotIndex)
	}
}

func TestSchema_StatementsAreIdempotent(t *testing.T) {
	for _, stmt := range schemaStatements {
		if !strings.Contains(stmt, "IF NOT EXISTS") {
			t.Fatalf("statement is not idempotent:\n%s", stmt)
		}
	}
}
