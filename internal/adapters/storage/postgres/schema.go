package postgres

import (
	"context"
	"database/sql"
	"fmt"
)

// EnsureSchema crea tablas e índices si no existen. Se ejecuta al abrir
// la conexión; todas las sentencias son idempotentes.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id              TEXT PRIMARY KEY,
		username        TEXT NOT NULL UNIQUE,
		email           TEXT NOT NULL UNIQUE,
		full_name       TEXT NOT NULL,
		password_hash   TEXT NOT NULL,
		role            TEXT NOT NULL,
		phone           TEXT NOT NULL DEFAULT '',
		active          BOOLEAN NOT NULL DEFAULT TRUE,
		failed_attempts INTEGER NOT NULL DEFAULT 0,
		locked_until    TIMESTAMPTZ,
		created_at      TIMESTAMPTZ NOT NULL,
		updated_at      TIMESTAMPTZ NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS owners (
		id         TEXT PRIMARY KEY,
		user_id    TEXT,
		full_name  TEXT NOT NULL,
		documento  TEXT NOT NULL UNIQUE,
		phone      TEXT NOT NULL,
		email      TEXT NOT NULL UNIQUE,
		address    TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_owners_user_id
		ON owners (user_id) WHERE user_id IS NOT NULL`,

	`CREATE TABLE IF NOT EXISTS pets (
		id           TEXT PRIMARY KEY,
		owner_id     TEXT NOT NULL REFERENCES owners (id),
		name         TEXT NOT NULL,
		species      TEXT NOT NULL,
		breed        TEXT NOT NULL DEFAULT '',
		sex          TEXT NOT NULL DEFAULT '',
		age_years    INTEGER NOT NULL DEFAULT 0,
		weight_grams BIGINT,
		notes        TEXT NOT NULL DEFAULT '',
		active       BOOLEAN NOT NULL DEFAULT TRUE,
		created_at   TIMESTAMPTZ NOT NULL,
		updated_at   TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_pets_owner_id ON pets (owner_id)`,

	`CREATE TABLE IF NOT EXISTS pet_transfers (
		id            TEXT PRIMARY KEY,
		pet_id        TEXT NOT NULL REFERENCES pets (id),
		from_owner_id TEXT NOT NULL,
		to_owner_id   TEXT NOT NULL,
		reason        TEXT NOT NULL DEFAULT '',
		created_at    TIMESTAMPTZ NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS services (
		id               TEXT PRIMARY KEY,
		type             TEXT NOT NULL UNIQUE,
		duration_minutes INTEGER NOT NULL,
		price_cents      BIGINT NOT NULL DEFAULT 0,
		description      TEXT NOT NULL DEFAULT '',
		active           BOOLEAN NOT NULL DEFAULT TRUE,
		calendar_color   TEXT NOT NULL,
		created_at       TIMESTAMPTZ NOT NULL,
		updated_at       TIMESTAMPTZ NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS appointments (
		id            TEXT PRIMARY KEY,
		owner_id      TEXT NOT NULL REFERENCES owners (id),
		pet_id        TEXT NOT NULL REFERENCES pets (id),
		service_id    TEXT NOT NULL,
		vet_id        TEXT NOT NULL,
		created_by_id TEXT NOT NULL,
		fecha         DATE NOT NULL,
		hora          TEXT NOT NULL,
		status        TEXT NOT NULL,
		emergency     BOOLEAN NOT NULL DEFAULT FALSE,
		notes         TEXT NOT NULL DEFAULT '',
		cancel_reason TEXT NOT NULL DEFAULT '',
		created_at    TIMESTAMPTZ NOT NULL,
		updated_at    TIMESTAMPTZ NOT NULL
	)`,
	// Índice parcial: solo las citas activas ocupan el slot. Una cita
	// cancelada o cerrada deja de bloquear (vet, fecha, hora), igual que
	// el adaptador en memoria.
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_appointments_slot
		ON appointments (vet_id, fecha, hora)
		WHERE status IN ('PROGRAMADA', 'CONFIRMADA')`,
	`CREATE INDEX IF NOT EXISTS idx_appointments_owner_id ON appointments (owner_id)`,
	`CREATE INDEX IF NOT EXISTS idx_appointments_vet_fecha ON appointments (vet_id, fecha)`,

	`CREATE TABLE IF NOT EXISTS waitlist (
		id           TEXT PRIMARY KEY,
		pet_id       TEXT NOT NULL REFERENCES pets (id),
		service_id   TEXT NOT NULL,
		priority     INTEGER NOT NULL,
		notes        TEXT NOT NULL DEFAULT '',
		requested_at TIMESTAMPTZ NOT NULL,
		attended     BOOLEAN NOT NULL DEFAULT FALSE
	)`,

	`CREATE TABLE IF NOT EXISTS clinical_records (
		id             TEXT PRIMARY KEY,
		pet_id         TEXT NOT NULL REFERENCES pets (id),
		appointment_id TEXT NOT NULL UNIQUE REFERENCES appointments (id),
		vet_id         TEXT NOT NULL,
		motivo         TEXT NOT NULL,
		diagnostico    TEXT NOT NULL,
		tratamiento    TEXT NOT NULL DEFAULT '',
		notas          TEXT NOT NULL DEFAULT '',
		weight_grams   BIGINT,
		created_at     TIMESTAMPTZ NOT NULL,
		updated_at     TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_clinical_records_pet_id ON clinical_records (pet_id)`,

	`CREATE TABLE IF NOT EXISTS payments (
		id             TEXT PRIMARY KEY,
		appointment_id TEXT NOT NULL REFERENCES appointments (id),
		owner_id       TEXT NOT NULL,
		amount_cents   BIGINT NOT NULL,
		method         TEXT NOT NULL,
		status         TEXT NOT NULL,
		registered_by  TEXT NOT NULL,
		created_at     TIMESTAMPTZ NOT NULL,
		updated_at     TIMESTAMPTZ NOT NULL
	)`,
	// Un solo pago vigente por cita; los anulados no cuentan.
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_payments_appointment
		ON payments (appointment_id) WHERE status <> 'ANULADO'`,

	`CREATE SEQUENCE IF NOT EXISTS invoice_sequence`,
	`CREATE TABLE IF NOT EXISTS invoices (
		id           TEXT PRIMARY KEY,
		sequence     BIGINT NOT NULL UNIQUE,
		payment_id   TEXT NOT NULL UNIQUE REFERENCES payments (id),
		owner_id     TEXT NOT NULL,
		amount_cents BIGINT NOT NULL,
		issued_at    TIMESTAMPTZ NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS notifications (
		id         TEXT PRIMARY KEY,
		user_id    TEXT NOT NULL,
		event_type TEXT NOT NULL,
		title      TEXT NOT NULL,
		body       TEXT NOT NULL,
		read       BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_notifications_user_id ON notifications (user_id)`,

	`CREATE TABLE IF NOT EXISTS outbox_events (
		id           TEXT PRIMARY KEY,
		aggregate_id TEXT NOT NULL,
		event_type   TEXT NOT NULL,
		payload      BYTEA NOT NULL,
		created_at   TIMESTAMPTZ NOT NULL,
		published_at TIMESTAMPTZ
	)`,
	`CREATE INDEX IF NOT EXISTS idx_outbox_unpublished
		ON outbox_events (created_at) WHERE published_at IS NULL`,
}
