package postgres

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"vet-clinic/internal/domain/appointments"
)

// El índice único (vet_id, fecha, hora) sobre citas activas hace el
// chequeo de slot atómico: de dos inserciones en carrera, una recibe
// 23505 y se traduce a ErrSlotTaken.

type AppointmentsRepo struct {
	db *sql.DB
}

func NewAppointmentsRepo(db *sql.DB) *AppointmentsRepo {
	return &AppointmentsRepo{db: db}
}

const appointmentColumns = `
	id, owner_id, pet_id, service_id, vet_id, created_by_id,
	fecha, hora, status, emergency, notes, cancel_reason,
	created_at, updated_at`

func (r *AppointmentsRepo) Create(ctx context.Context, a appointments.Appointment) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO appointments (`+appointmentColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
	`,
		a.ID,
		a.OwnerID,
		a.PetID,
		a.ServiceID,
		a.VetID,
		a.CreatedByID,
		a.Fecha,
		a.Hora,
		a.Status,
		a.Emergency,
		a.Notes,
		a.CancelReason,
		a.CreatedAt,
		a.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return appointments.ErrSlotTaken
	}
	return err
}

func (r *AppointmentsRepo) Update(ctx context.Context, a appointments.Appointment) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE appointments
		SET
			status = $2,
			notes = $3,
			cancel_reason = $4,
			updated_at = $5
		WHERE id = $1
	`,
		a.ID,
		a.Status,
		a.Notes,
		a.CancelReason,
		a.UpdatedAt,
	)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *AppointmentsRepo) UpdateSlot(ctx context.Context, a appointments.Appointment) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE appointments
		SET
			fecha = $2,
			hora = $3,
			updated_at = $4
		WHERE id = $1
	`,
		a.ID,
		a.Fecha,
		a.Hora,
		a.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return appointments.ErrSlotTaken
		}
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *AppointmentsRepo) GetByID(ctx context.Context, id string) (appointments.Appointment, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return appointments.Appointment{}, ErrNotFound
	}
	row := r.db.QueryRowContext(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE id = $1
	`, id)
	return scanAppointment(row)
}

func (r *AppointmentsRepo) ListByVetAndDate(ctx context.Context, vetID string, fecha time.Time) ([]appointments.Appointment, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE vet_id = $1 AND fecha = $2
		ORDER BY hora ASC
	`, vetID, fecha)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectAppointments(rows)
}

func (r *AppointmentsRepo) ListByOwner(ctx context.Context, ownerID string) ([]appointments.Appointment, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE owner_id = $1
		ORDER BY fecha DESC, hora DESC
	`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectAppointments(rows)
}

func (r *AppointmentsRepo) CountFutureActiveByService(ctx context.Context, serviceID string, from time.Time) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `
		SELECT count(*)
		FROM appointments
		WHERE service_id = $1
		  AND fecha >= $2
		  AND status IN ('PROGRAMADA', 'CONFIRMADA')
	`, serviceID, from).Scan(&count)
	return count, err
}

func collectAppointments(rows *sql.Rows) ([]appointments.Appointment, error) {
	out := make([]appointments.Appointment, 0)
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func scanAppointment(row rowScanner) (appointments.Appointment, error) {
	var a appointments.Appointment
	if err := row.Scan(
		&a.ID,
		&a.OwnerID,
		&a.PetID,
		&a.ServiceID,
		&a.VetID,
		&a.CreatedByID,
		&a.Fecha,
		&a.Hora,
		&a.Status,
		&a.Emergency,
		&a.Notes,
		&a.CancelReason,
		&a.CreatedAt,
		&a.UpdatedAt,
	); err != nil {
		if err == sql.ErrNoRows {
			return appointments.Appointment{}, ErrNotFound
		}
		return appointments.Appointment{}, err
	}
	return a, nil
}

type WaitlistRepo struct {
	db *sql.DB
}

func NewWaitlistRepo(db *sql.DB) *WaitlistRepo {
	return &WaitlistRepo{db: db}
}

func (r *WaitlistRepo) Create(ctx context.Context, e appointments.WaitlistEntry) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO waitlist (id, pet_id, service_id, priority, notes, requested_at, attended)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
	`, e.ID, e.PetID, e.ServiceID, e.Priority, e.Notes, e.RequestedAt, e.Attended)
	return err
}

func (r *WaitlistRepo) Update(ctx context.Context, e appointments.WaitlistEntry) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE waitlist
		SET priority = $2, notes = $3, attended = $4
		WHERE id = $1
	`, e.ID, e.Priority, e.Notes, e.Attended)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *WaitlistRepo) GetByID(ctx context.Context, id string) (appointments.WaitlistEntry, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, pet_id, service_id, priority, notes, requested_at, attended
		FROM waitlist
		WHERE id = $1
	`, id)

	var e appointments.WaitlistEntry
	if err := row.Scan(&e.ID, &e.PetID, &e.ServiceID, &e.Priority, &e.Notes, &e.RequestedAt, &e.Attended); err != nil {
		if err == sql.ErrNoRows {
			return appointments.WaitlistEntry{}, ErrNotFound
		}
		return appointments.WaitlistEntry{}, err
	}
	return e, nil
}

func (r *WaitlistRepo) ListPending(ctx context.Context) ([]appointments.WaitlistEntry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, pet_id, service_id, priority, notes, requested_at, attended
		FROM waitlist
		WHERE NOT attended
		ORDER BY priority ASC, requested_at ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]appointments.WaitlistEntry, 0)
	for rows.Next() {
		var e appointments.WaitlistEntry
		if err := rows.Scan(&e.ID, &e.PetID, &e.ServiceID, &e.Priority, &e.Notes, &e.RequestedAt, &e.Attended); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
