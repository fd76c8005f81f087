package postgres

import (
	"context"
	"database/sql"
	"strings"

	"vet-clinic/internal/domain/services"
)

type ServicesRepo struct {
	db *sql.DB
}

func NewServicesRepo(db *sql.DB) *ServicesRepo {
	return &ServicesRepo{db: db}
}

const serviceColumns = `
	id, type, duration_minutes, price_cents, description,
	active, calendar_color, created_at, updated_at`

func (r *ServicesRepo) Create(ctx context.Context, s services.Service) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO services (`+serviceColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`,
		s.ID,
		s.Type,
		s.DurationMinutes,
		s.PriceCents,
		s.Description,
		s.Active,
		s.CalendarColor,
		s.CreatedAt,
		s.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return services.ErrDuplicate
	}
	return err
}

func (r *ServicesRepo) Update(ctx context.Context, s services.Service) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE services
		SET
			duration_minutes = $2,
			price_cents = $3,
			description = $4,
			active = $5,
			calendar_color = $6,
			updated_at = $7
		WHERE id = $1
	`,
		s.ID,
		s.DurationMinutes,
		s.PriceCents,
		s.Description,
		s.Active,
		s.CalendarColor,
		s.UpdatedAt,
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

func (r *ServicesRepo) GetByID(ctx context.Context, id string) (services.Service, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return services.Service{}, ErrNotFound
	}
	row := r.db.QueryRowContext(ctx, `
		SELECT `+serviceColumns+`
		FROM services
		WHERE id = $1
	`, id)
	return scanService(row)
}

func (r *ServicesRepo) GetByType(ctx context.Context, t services.ServiceType) (services.Service, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+serviceColumns+`
		FROM services
		WHERE type = $1
	`, t)
	return scanService(row)
}

func (r *ServicesRepo) List(ctx context.Context, onlyActive bool) ([]services.Service, error) {
	query := `
		SELECT ` + serviceColumns + `
		FROM services`
	if onlyActive {
		query += `
		WHERE active`
	}
	query += `
		ORDER BY type ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]services.Service, 0)
	for rows.Next() {
		s, err := scanService(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func scanService(row rowScanner) (services.Service, error) {
	var s services.Service
	if err := row.Scan(
		&s.ID,
		&s.Type,
		&s.DurationMinutes,
		&s.PriceCents,
		&s.Description,
		&s.Active,
		&s.CalendarColor,
		&s.CreatedAt,
		&s.UpdatedAt,
	); err != nil {
		if err == sql.ErrNoRows {
			return services.Service{}, ErrNotFound
		}
		return services.Service{}, err
	}
	return s, nil
}
