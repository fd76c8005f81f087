package notifications

import "time"

// Notification es una entrada del buzón in-app de un usuario.
type Notification struct {
	ID        string
	UserID    string
	EventType string
	Title     string
	Body      string
	Read      bool
	CreatedAt time.Time
}

// Event es un registro del outbox: se persiste junto con el cambio de
// estado y un publicador lo envía a Kafka después, desacoplado del
// request que lo originó.
type Event struct {
	ID          string
	AggregateID string
	EventType   string
	Payload     []byte
	CreatedAt   time.Time
	PublishedAt *time.Time
}
