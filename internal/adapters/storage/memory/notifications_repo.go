package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"vet-clinic/internal/notifications"
)

type notificationsRepo struct {
	mu   sync.RWMutex
	byID map[string]notifications.Notification
}

func NewNotificationsRepo() notifications.Repository {
	return &notificationsRepo{byID: make(map[string]notifications.Notification)}
}

func (r *notificationsRepo) Create(ctx context.Context, n notifications.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(n.ID) == "" {
		return errors.New("notification id required")
	}
	r.byID[n.ID] = n
	return nil
}

func (r *notificationsRepo) GetByID(ctx context.Context, id string) (notifications.Notification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n, ok := r.byID[id]
	if !ok {
		return notifications.Notification{}, ErrNotFound
	}
	return n, nil
}

func (r *notificationsRepo) ListByUser(ctx context.Context, userID string, onlyUnread bool) ([]notifications.Notification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]notifications.Notification, 0)
	for _, n := range r.byID {
		if n.UserID != userID {
			continue
		}
		if onlyUnread && n.Read {
			continue
		}
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *notificationsRepo) MarkRead(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	n, ok := r.byID[id]
	if !ok {
		return ErrNotFound
	}
	n.Read = true
	r.byID[id] = n
	return nil
}

type outboxRepo struct {
	mu     sync.Mutex
	events []notifications.Event
}

func NewOutboxRepo() notifications.OutboxRepository {
	return &outboxRepo{}
}

func (r *outboxRepo) Insert(ctx context.Context, evt notifications.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.events = append(r.events, evt)
	return nil
}

func (r *outboxRepo) FetchUnpublished(ctx context.Context, limit int) ([]notifications.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]notifications.Event, 0)
	for _, evt := range r.events {
		if evt.PublishedAt == nil {
			out = append(out, evt)
			if len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

func (r *outboxRepo) MarkPublished(ctx context.Context, ids []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	now := time.Now()
	for i := range r.events {
		if _, ok := set[r.events[i].ID]; ok && r.events[i].PublishedAt == nil {
			t := now
			r.events[i].PublishedAt = &t
		}
	}
	return nil
}
