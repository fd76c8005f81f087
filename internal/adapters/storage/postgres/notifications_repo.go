package postgres

import (
	"context"
	"database/sql"

	"vet-clinic/internal/notifications"
)

type NotificationsRepo struct {
	db *sql.DB
}

func NewNotificationsRepo(db *sql.DB) *NotificationsRepo {
	return &NotificationsRepo{db: db}
}

func (r *NotificationsRepo) Create(ctx context.Context, n notifications.Notification) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO notifications (id, user_id, event_type, title, body, read, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
	`, n.ID, n.UserID, n.EventType, n.Title, n.Body, n.Read, n.CreatedAt)
	return err
}

func (r *NotificationsRepo) GetByID(ctx context.Context, id string) (notifications.Notification, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, event_type, title, body, read, created_at
		FROM notifications
		WHERE id = $1
	`, id)

	var n notifications.Notification
	if err := row.Scan(&n.ID, &n.UserID, &n.EventType, &n.Title, &n.Body, &n.Read, &n.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return notifications.Notification{}, ErrNotFound
		}
		return notifications.Notification{}, err
	}
	return n, nil
}

func (r *NotificationsRepo) ListByUser(ctx context.Context, userID string, onlyUnread bool) ([]notifications.Notification, error) {
	query := `
		SELECT id, user_id, event_type, title, body, read, created_at
		FROM notifications
		WHERE user_id = $1`
	if onlyUnread {
		query += ` AND NOT read`
	}
	query += `
		ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]notifications.Notification, 0)
	for rows.Next() {
		var n notifications.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.EventType, &n.Title, &n.Body, &n.Read, &n.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (r *NotificationsRepo) MarkRead(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE notifications SET read = true WHERE id = $1
	`, id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

type OutboxRepo struct {
	db *sql.DB
}

func NewOutboxRepo(db *sql.DB) *OutboxRepo {
	return &OutboxRepo{db: db}
}

func (r *OutboxRepo) Insert(ctx context.Context, evt notifications.Event) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO outbox_events (id, aggregate_id, event_type, payload, created_at)
		VALUES ($1,$2,$3,$4,$5)
	`, evt.ID, evt.AggregateID, evt.EventType, evt.Payload, evt.CreatedAt)
	return err
}

func (r *OutboxRepo) FetchUnpublished(ctx context.Context, limit int) ([]notifications.Event, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, aggregate_id, event_type, payload, created_at
		FROM outbox_events
		WHERE published_at IS NULL
		ORDER BY created_at ASC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]notifications.Event, 0)
	for rows.Next() {
		var evt notifications.Event
		if err := rows.Scan(&evt.ID, &evt.AggregateID, &evt.EventType, &evt.Payload, &evt.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, evt)
	}
	return out, rows.Err()
}

func (r *OutboxRepo) MarkPublished(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	// pgx mapea []string a un array de Postgres.
	_, err := r.db.ExecContext(ctx, `
		UPDATE outbox_events
		SET published_at = now()
		WHERE id = ANY($1)
	`, ids)
	return err
}
