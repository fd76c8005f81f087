package notifications

import "context"

type Repository interface {
	Create(ctx context.Context, n Notification) error
	GetByID(ctx context.Context, id string) (Notification, error)
	ListByUser(ctx context.Context, userID string, onlyUnread bool) ([]Notification, error)
	MarkRead(ctx context.Context, id string) error
}

type OutboxRepository interface {
	Insert(ctx context.Context, evt Event) error

	// FetchUnpublished devuelve eventos pendientes en orden de inserción.
	FetchUnpublished(ctx context.Context, limit int) ([]Event, error)
	MarkPublished(ctx context.Context, ids []string) error
}
