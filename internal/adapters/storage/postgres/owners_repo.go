package postgres

import (
	"context"
	"database/sql"
	"strings"

	"vet-clinic/internal/domain/owners"
)

type OwnersRepo struct {
	db *sql.DB
}

func NewOwnersRepo(db *sql.DB) *OwnersRepo {
	return &OwnersRepo{db: db}
}

const ownerColumns = `
	id, user_id, full_name, documento, phone, email, address,
	created_at, updated_at`

func (r *OwnersRepo) Create(ctx context.Context, o owners.Owner) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO owners (`+ownerColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`,
		o.ID,
		nullString(o.UserID),
		o.FullName,
		o.Documento,
		o.Phone,
		o.Email,
		o.Address,
		o.CreatedAt,
		o.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return owners.ErrDuplicate
	}
	return err
}

func (r *OwnersRepo) Update(ctx context.Context, o owners.Owner) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE owners
		SET
			user_id = $2,
			full_name = $3,
			documento = $4,
			phone = $5,
			email = $6,
			address = $7,
			updated_at = $8
		WHERE id = $1
	`,
		o.ID,
		nullString(o.UserID),
		o.FullName,
		o.Documento,
		o.Phone,
		o.Email,
		o.Address,
		o.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return owners.ErrDuplicate
		}
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *OwnersRepo) GetByID(ctx context.Context, id string) (owners.Owner, error) {
	return r.getBy(ctx, "id", id)
}

func (r *OwnersRepo) GetByDocumento(ctx context.Context, documento string) (owners.Owner, error) {
	return r.getBy(ctx, "documento", documento)
}

func (r *OwnersRepo) GetByUserID(ctx context.Context, userID string) (owners.Owner, error) {
	return r.getBy(ctx, "user_id", userID)
}

func (r *OwnersRepo) getBy(ctx context.Context, column, value string) (owners.Owner, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return owners.Owner{}, ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT `+ownerColumns+`
		FROM owners
		WHERE `+column+` = $1
	`, value)
	return scanOwner(row)
}

func (r *OwnersRepo) List(ctx context.Context) ([]owners.Owner, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+ownerColumns+`
		FROM owners
		ORDER BY full_name ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]owners.Owner, 0)
	for rows.Next() {
		o, err := scanOwner(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func scanOwner(row rowScanner) (owners.Owner, error) {
	var o owners.Owner
	var userID sql.NullString
	if err := row.Scan(
		&o.ID,
		&userID,
		&o.FullName,
		&o.Documento,
		&o.Phone,
		&o.Email,
		&o.Address,
		&o.CreatedAt,
		&o.UpdatedAt,
	); err != nil {
		if err == sql.ErrNoRows {
			return owners.Owner{}, ErrNotFound
		}
		return owners.Owner{}, err
	}
	o.UserID = userID.String
	return o, nil
}

func nullString(s string) sql.NullString {
	if strings.TrimSpace(s) == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
