package postgres

import (
	"context"
	"database/sql"
	"strings"

	"vet-clinic/internal/domain/pets"
)

type PetsRepo struct {
	db *sql.DB
}

func NewPetsRepo(db *sql.DB) *PetsRepo {
	return &PetsRepo{db: db}
}

const petColumns = `
	id, owner_id, name, species, breed, sex,
	age_years, weight_grams, notes, active,
	created_at, updated_at`

func (r *PetsRepo) Create(ctx context.Context, p pets.Pet) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO pets (`+petColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
	`,
		p.ID,
		p.OwnerID,
		p.Name,
		p.Species,
		p.Breed,
		p.Sex,
		p.AgeYears,
		toNullInt64(p.WeightGrams),
		p.Notes,
		p.Active,
		p.CreatedAt,
		p.UpdatedAt,
	)
	return err
}

func (r *PetsRepo) Update(ctx context.Context, p pets.Pet) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE pets
		SET
			owner_id = $2,
			name = $3,
			species = $4,
			breed = $5,
			sex = $6,
			age_years = $7,
			weight_grams = $8,
			notes = $9,
			active = $10,
			updated_at = $11
		WHERE id = $1
	`,
		p.ID,
		p.OwnerID,
		p.Name,
		p.Species,
		p.Breed,
		p.Sex,
		p.AgeYears,
		toNullInt64(p.WeightGrams),
		p.Notes,
		p.Active,
		p.UpdatedAt,
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

func (r *PetsRepo) GetByID(ctx context.Context, id string) (pets.Pet, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return pets.Pet{}, ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT `+petColumns+`
		FROM pets
		WHERE id = $1
	`, id)
	return scanPet(row)
}

func (r *PetsRepo) ListByOwner(ctx context.Context, ownerID string) ([]pets.Pet, error) {
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return nil, nil
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT `+petColumns+`
		FROM pets
		WHERE owner_id = $1
		ORDER BY created_at ASC
	`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]pets.Pet, 0)
	for rows.Next() {
		p, err := scanPet(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *PetsRepo) CreateTransfer(ctx context.Context, t pets.Transfer) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO pet_transfers (id, pet_id, from_owner_id, to_owner_id, reason, created_at)
		VALUES ($1,$2,$3,$4,$5,$6)
	`, t.ID, t.PetID, t.FromOwnerID, t.ToOwnerID, t.Reason, t.CreatedAt)
	return err
}

func (r *PetsRepo) ListTransfers(ctx context.Context, petID string) ([]pets.Transfer, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, pet_id, from_owner_id, to_owner_id, reason, created_at
		FROM pet_transfers
		WHERE pet_id = $1
		ORDER BY created_at ASC
	`, petID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]pets.Transfer, 0)
	for rows.Next() {
		var t pets.Transfer
		if err := rows.Scan(&t.ID, &t.PetID, &t.FromOwnerID, &t.ToOwnerID, &t.Reason, &t.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func scanPet(row rowScanner) (pets.Pet, error) {
	var p pets.Pet
	var weight sql.NullInt64
	if err := row.Scan(
		&p.ID,
		&p.OwnerID,
		&p.Name,
		&p.Species,
		&p.Breed,
		&p.Sex,
		&p.AgeYears,
		&weight,
		&p.Notes,
		&p.Active,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		if err == sql.ErrNoRows {
			return pets.Pet{}, ErrNotFound
		}
		return pets.Pet{}, err
	}
	if weight.Valid {
		w := weight.Int64
		p.WeightGrams = &w
	}
	return p, nil
}
