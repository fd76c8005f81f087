package postgres

import (
	"context"
	"database/sql"
	"strings"

	"vet-clinic/internal/domain/accounts"
)

type AccountsRepo struct {
	db *sql.DB
}

func NewAccountsRepo(db *sql.DB) *AccountsRepo {
	return &AccountsRepo{db: db}
}

const userColumns = `
	id, username, email, full_name, password_hash, role, phone,
	active, failed_attempts, locked_until, created_at, updated_at`

func (r *AccountsRepo) Create(ctx context.Context, u accounts.User) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
	`,
		u.ID,
		u.Username,
		u.Email,
		u.FullName,
		u.PasswordHash,
		u.Role,
		u.Phone,
		u.Active,
		u.FailedAttempts,
		toNullTime(u.LockedUntil),
		u.CreatedAt,
		u.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return accounts.ErrDuplicate
	}
	return err
}

func (r *AccountsRepo) Update(ctx context.Context, u accounts.User) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE users
		SET
			email = $2,
			full_name = $3,
			password_hash = $4,
			role = $5,
			phone = $6,
			active = $7,
			failed_attempts = $8,
			locked_until = $9,
			updated_at = $10
		WHERE id = $1
	`,
		u.ID,
		u.Email,
		u.FullName,
		u.PasswordHash,
		u.Role,
		u.Phone,
		u.Active,
		u.FailedAttempts,
		toNullTime(u.LockedUntil),
		u.UpdatedAt,
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

func (r *AccountsRepo) GetByID(ctx context.Context, id string) (accounts.User, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return accounts.User{}, ErrNotFound
	}
	row := r.db.QueryRowContext(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE id = $1
	`, id)
	return scanUser(row)
}

func (r *AccountsRepo) GetByUsername(ctx context.Context, username string) (accounts.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return accounts.User{}, ErrNotFound
	}
	row := r.db.QueryRowContext(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE username = $1
	`, username)
	return scanUser(row)
}

// IncrementFailedAttempts serializa el incremento en la fila: dos logins
// fallidos simultáneos no pueden pisar el contador del otro.
func (r *AccountsRepo) IncrementFailedAttempts(ctx context.Context, id string) (accounts.User, error) {
	row := r.db.QueryRowContext(ctx, `
		UPDATE users
		SET failed_attempts = failed_attempts + 1, updated_at = now()
		WHERE id = $1
		RETURNING `+userColumns+`
	`, id)
	return scanUser(row)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (accounts.User, error) {
	var u accounts.User
	var locked sql.NullTime
	if err := row.Scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&u.FullName,
		&u.PasswordHash,
		&u.Role,
		&u.Phone,
		&u.Active,
		&u.FailedAttempts,
		&locked,
		&u.CreatedAt,
		&u.UpdatedAt,
	); err != nil {
		if err == sql.ErrNoRows {
			return accounts.User{}, ErrNotFound
		}
		return accounts.User{}, err
	}
	if locked.Valid {
		t := locked.Time
		u.LockedUntil = &t
	}
	return u, nil
}
