package notifications

import (
	"encoding/json"
	"net/http"
	"time"

	"vet-clinic/internal/middleware"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, repo Repository) {
	r.Route("/me/notifications", func(nr chi.Router) {
		nr.Get("/", listMyNotificationsHandler(repo))
		nr.Post("/{notificationID}/read", markReadHandler(repo))
	})
}

type notificationResponse struct {
	ID        string    `json:"id"`
	EventType string    `json:"event_type"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

// listMyNotificationsHandler godoc
// @Summary Buzón de notificaciones del usuario autenticado
// @Tags notifications
// @Produce json
// @Param unread query bool false "Solo no leídas"
// @Success 200 {array} notificationResponse
// @Router /me/notifications [get]
func listMyNotificationsHandler(repo Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		onlyUnread := r.URL.Query().Get("unread") == "true"
		items, err := repo.ListByUser(r.Context(), claims.UserID, onlyUnread)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]notificationResponse, 0, len(items))
		for _, n := range items {
			out = append(out, notificationResponse{
				ID:        n.ID,
				EventType: n.EventType,
				Title:     n.Title,
				Body:      n.Body,
				Read:      n.Read,
				CreatedAt: n.CreatedAt,
			})
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func markReadHandler(repo Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		id := chi.URLParam(r, "notificationID")
		n, err := repo.GetByID(r.Context(), id)
		if err != nil {
			http.Error(w, "notification not found", http.StatusNotFound)
			return
		}
		if n.UserID != claims.UserID {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		if err := repo.MarkRead(r.Context(), id); err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
