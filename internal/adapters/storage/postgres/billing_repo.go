package postgres

import (
	"context"
	"database/sql"
	"strings"

	"vet-clinic/internal/domain/billing"
)

type BillingRepo struct {
	db *sql.DB
}

func NewBillingRepo(db *sql.DB) *BillingRepo {
	return &BillingRepo{db: db}
}

const paymentColumns = `
	id, appointment_id, owner_id, amount_cents, method, status,
	registered_by, created_at, updated_at`

func (r *BillingRepo) CreatePayment(ctx context.Context, p billing.Payment) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO payments (`+paymentColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`,
		p.ID,
		p.AppointmentID,
		p.OwnerID,
		p.AmountCents,
		p.Method,
		p.Status,
		p.RegisteredBy,
		p.CreatedAt,
		p.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return billing.ErrDuplicate
	}
	return err
}

func (r *BillingRepo) UpdatePayment(ctx context.Context, p billing.Payment) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE payments
		SET status = $2, updated_at = $3
		WHERE id = $1
	`, p.ID, p.Status, p.UpdatedAt)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *BillingRepo) GetPaymentByID(ctx context.Context, id string) (billing.Payment, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return billing.Payment{}, ErrNotFound
	}
	row := r.db.QueryRowContext(ctx, `
		SELECT `+paymentColumns+`
		FROM payments
		WHERE id = $1
	`, id)
	return scanPayment(row)
}

func (r *BillingRepo) GetPaymentByAppointment(ctx context.Context, appointmentID string) (billing.Payment, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+paymentColumns+`
		FROM payments
		WHERE appointment_id = $1 AND status <> 'ANULADO'
		ORDER BY created_at DESC
		LIMIT 1
	`, appointmentID)
	return scanPayment(row)
}

func (r *BillingRepo) ListPaymentsByOwner(ctx context.Context, ownerID string) ([]billing.Payment, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+paymentColumns+`
		FROM payments
		WHERE owner_id = $1
		ORDER BY created_at DESC
	`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]billing.Payment, 0)
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// CreateInvoice toma el número de la secuencia de la tabla en el mismo
// INSERT: la numeración queda monótona sin round-trip extra.
func (r *BillingRepo) CreateInvoice(ctx context.Context, inv billing.Invoice) (billing.Invoice, error) {
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO invoices (id, sequence, payment_id, owner_id, amount_cents, issued_at)
		VALUES ($1, nextval('invoice_sequence'), $2, $3, $4, $5)
		RETURNING sequence
	`,
		inv.ID,
		inv.PaymentID,
		inv.OwnerID,
		inv.AmountCents,
		inv.IssuedAt,
	)
	if err := row.Scan(&inv.Sequence); err != nil {
		return billing.Invoice{}, err
	}
	return inv, nil
}

func (r *BillingRepo) GetInvoiceByPayment(ctx context.Context, paymentID string) (billing.Invoice, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, sequence, payment_id, owner_id, amount_cents, issued_at
		FROM invoices
		WHERE payment_id = $1
	`, paymentID)
	return scanInvoice(row)
}

func (r *BillingRepo) ListInvoicesByOwner(ctx context.Context, ownerID string) ([]billing.Invoice, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, sequence, payment_id, owner_id, amount_cents, issued_at
		FROM invoices
		WHERE owner_id = $1
		ORDER BY sequence DESC
	`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]billing.Invoice, 0)
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, inv)
	}
	return out, rows.Err()
}

func scanPayment(row rowScanner) (billing.Payment, error) {
	var p billing.Payment
	if err := row.Scan(
		&p.ID,
		&p.AppointmentID,
		&p.OwnerID,
		&p.AmountCents,
		&p.Method,
		&p.Status,
		&p.RegisteredBy,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		if err == sql.ErrNoRows {
			return billing.Payment{}, ErrNotFound
		}
		return billing.Payment{}, err
	}
	return p, nil
}

func scanInvoice(row rowScanner) (billing.Invoice, error) {
	var inv billing.Invoice
	if err := row.Scan(
		&inv.ID,
		&inv.Sequence,
		&inv.PaymentID,
		&inv.OwnerID,
		&inv.AmountCents,
		&inv.IssuedAt,
	); err != nil {
		if err == sql.ErrNoRows {
			return billing.Invoice{}, ErrNotFound
		}
		return billing.Invoice{}, err
	}
	return inv, nil
}
