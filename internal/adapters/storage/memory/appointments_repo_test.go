package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"vet-clinic/internal/domain/appointments"
)

func testAppointment(id, vetID, hora string) appointments.Appointment {
	return appointments.Appointment{
		ID:      id,
		OwnerID: "owner-1",
		PetID:   "pet-1",
		VetID:   vetID,
		Fecha:   time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC),
		Hora:    hora,
		Status:  appointments.StatusProgramada,
	}
}

// Dos creaciones simultáneas para el mismo slot: exactamente una gana.
func TestAppointmentsRepo_Create_SlotRace(t *testing.T) {
	repo := NewAppointmentsRepo()

	const goroutines = 2
	errs := make([]error, goroutines)
	var wg sync.WaitGroup
	start := make(chan struct{})

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			errs[i] = repo.Create(context.Background(), testAppointment(fmt.Sprintf("cita-%d", i), "vet-1", "10:00"))
		}(i)
	}
	close(start)
	wg.Wait()

	conflicts := 0
	for _, err := range errs {
		if errors.Is(err, appointments.ErrSlotTaken) {
			conflicts++
		} else if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if conflicts != 1 {
		t.Fatalf("expected exactly 1 slot conflict, got %d", conflicts)
	}
}

func TestAppointmentsRepo_TerminalStateFreesSlot(t *testing.T) {
	repo := NewAppointmentsRepo()
	ctx := context.Background()

	a := testAppointment("cita-1", "vet-1", "10:00")
	if err := repo.Create(ctx, a); err != nil {
		t.Fatalf("Create error: %v", err)
	}

	// Mismo slot ocupado.
	if err := repo.Create(ctx, testAppointment("cita-2", "vet-1", "10:00")); !errors.Is(err, appointments.ErrSlotTaken) {
		t.Fatalf("expected ErrSlotTaken, got %v", err)
	}

	a.Status = appointments.StatusCancelada
	if err := repo.Update(ctx, a); err != nil {
		t.Fatalf("Update error: %v", err)
	}

	// La cancelación libera el slot.
	if err := repo.Create(ctx, testAppointment("cita-3", "vet-1", "10:00")); err != nil {
		t.Fatalf("expected slot free after cancel, got %v", err)
	}
}

func TestAppointmentsRepo_UpdateSlot(t *testing.T) {
	repo := NewAppointmentsRepo()
	ctx := context.Background()

	a := testAppointment("cita-1", "vet-1", "10:00")
	b := testAppointment("cita-2", "vet-1", "11:00")
	_ = repo.Create(ctx, a)
	_ = repo.Create(ctx, b)

	// Mover a sobre el slot de b: conflicto.
	a.Hora = "11:00"
	if err := repo.UpdateSlot(ctx, a); !errors.Is(err, appointments.ErrSlotTaken) {
		t.Fatalf("expected ErrSlotTaken, got %v", err)
	}

	// Mover a un slot libre y reutilizar el original.
	a.Hora = "12:00"
	if err := repo.UpdateSlot(ctx, a); err != nil {
		t.Fatalf("UpdateSlot error: %v", err)
	}
	if err := repo.Create(ctx, testAppointment("cita-3", "vet-1", "10:00")); err != nil {
		t.Fatalf("expected old slot free after move, got %v", err)
	}
}
