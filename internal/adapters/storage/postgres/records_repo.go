package postgres

import (
	"context"
	"database/sql"
	"strings"

	"vet-clinic/internal/domain/records"
)

type RecordsRepo struct {
	db *sql.DB
}

func NewRecordsRepo(db *sql.DB) *RecordsRepo {
	return &RecordsRepo{db: db}
}

const recordColumns = `
	id, pet_id, appointment_id, vet_id,
	motivo, diagnostico, tratamiento, notas, weight_grams,
	created_at, updated_at`

func (r *RecordsRepo) Create(ctx context.Context, rec records.Record) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO clinical_records (`+recordColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
	`,
		rec.ID,
		rec.PetID,
		rec.AppointmentID,
		rec.VetID,
		rec.Motivo,
		rec.Diagnostico,
		rec.Tratamiento,
		rec.Notas,
		toNullInt64(rec.WeightGrams),
		rec.CreatedAt,
		rec.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return records.ErrDuplicate
	}
	return err
}

func (r *RecordsRepo) Update(ctx context.Context, rec records.Record) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE clinical_records
		SET
			diagnostico = $2,
			tratamiento = $3,
			notas = $4,
			updated_at = $5
		WHERE id = $1
	`,
		rec.ID,
		rec.Diagnostico,
		rec.Tratamiento,
		rec.Notas,
		rec.UpdatedAt,
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

func (r *RecordsRepo) GetByID(ctx context.Context, id string) (records.Record, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return records.Record{}, ErrNotFound
	}
	row := r.db.QueryRowContext(ctx, `
		SELECT `+recordColumns+`
		FROM clinical_records
		WHERE id = $1
	`, id)
	return scanRecord(row)
}

func (r *RecordsRepo) GetByAppointment(ctx context.Context, appointmentID string) (records.Record, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+recordColumns+`
		FROM clinical_records
		WHERE appointment_id = $1
	`, appointmentID)
	return scanRecord(row)
}

func (r *RecordsRepo) ListByPet(ctx context.Context, petID string) ([]records.Record, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+recordColumns+`
		FROM clinical_records
		WHERE pet_id = $1
		ORDER BY created_at DESC
	`, petID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]records.Record, 0)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func scanRecord(row rowScanner) (records.Record, error) {
	var rec records.Record
	var weight sql.NullInt64
	if err := row.Scan(
		&rec.ID,
		&rec.PetID,
		&rec.AppointmentID,
		&rec.VetID,
		&rec.Motivo,
		&rec.Diagnostico,
		&rec.Tratamiento,
		&rec.Notas,
		&weight,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	); err != nil {
		if err == sql.ErrNoRows {
			return records.Record{}, ErrNotFound
		}
		return records.Record{}, err
	}
	if weight.Valid {
		w := weight.Int64
		rec.WeightGrams = &w
	}
	return rec, nil
}
