package services

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"vet-clinic/internal/domain/accounts"
	"vet-clinic/internal/middleware"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, catalog *Catalog) {
	r.Route("/services", func(sr chi.Router) {
		sr.Post("/", createServiceHandler(catalog))
		sr.Get("/", listServicesHandler(catalog))
		sr.Get("/{serviceID}", getServiceHandler(catalog))
		sr.Patch("/{serviceID}", updateServiceHandler(catalog))
		sr.Post("/{serviceID}/deactivate", deactivateServiceHandler(catalog))
	})
}

type createServiceRequest struct {
	Type            string `json:"type"`
	DurationMinutes int    `json:"duration_minutes"`
	PriceCents      int64  `json:"price_cents"`
	Description     string `json:"description"`
	CalendarColor   string `json:"calendar_color"`
}

type updateServiceRequest struct {
	DurationMinutes *int    `json:"duration_minutes"`
	PriceCents      *int64  `json:"price_cents"`
	Description     *string `json:"description"`
	CalendarColor   *string `json:"calendar_color"`
}

type serviceResponse struct {
	ID              string      `json:"id"`
	Type            ServiceType `json:"type"`
	DurationMinutes int         `json:"duration_minutes"`
	PriceCents      int64       `json:"price_cents"`
	Description     string      `json:"description,omitempty"`
	Active          bool        `json:"active"`
	CalendarColor   string      `json:"calendar_color"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

func requireCatalogManager(w http.ResponseWriter, r *http.Request) bool {
	claims, ok := middleware.GetClaims(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return false
	}
	if !accounts.Role(claims.Role).Can(accounts.CapManageCatalog) {
		http.Error(w, "forbidden", http.StatusForbidden)
		return false
	}
	return true
}

// createServiceHandler godoc
// @Summary Crear servicio del catálogo
// @Tags services
// @Accept json
// @Produce json
// @Param payload body createServiceRequest true "Datos del servicio"
// @Success 201 {object} serviceResponse
// @Failure 409 {string} string "tipo duplicado"
// @Router /services [post]
func createServiceHandler(catalog *Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireCatalogManager(w, r) {
			return
		}

		var req createServiceRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		s, err := catalog.Create(r.Context(), CreateInput{
			Type:            ServiceType(req.Type),
			DurationMinutes: req.DurationMinutes,
			PriceCents:      req.PriceCents,
			Description:     req.Description,
			CalendarColor:   req.CalendarColor,
		})
		if err != nil {
			switch {
			case errors.Is(err, ErrDuplicate):
				http.Error(w, err.Error(), http.StatusConflict)
			case errors.Is(err, ErrInvalidInput):
				http.Error(w, err.Error(), http.StatusBadRequest)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		writeJSON(w, http.StatusCreated, toServiceResponse(s))
	}
}

// listServicesHandler godoc
// @Summary Listar servicios
// @Description Lista el catálogo. Con ?active=true solo servicios activos (vista de agendamiento).
// @Tags services
// @Produce json
// @Param active query bool false "Solo activos"
// @Success 200 {array} serviceResponse
// @Router /services [get]
func listServicesHandler(catalog *Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := middleware.GetClaims(r.Context()); !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		onlyActive := r.URL.Query().Get("active") == "true"
		items, err := catalog.List(r.Context(), onlyActive)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]serviceResponse, 0, len(items))
		for _, s := range items {
			out = append(out, toServiceResponse(s))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func getServiceHandler(catalog *Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := middleware.GetClaims(r.Context()); !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		s, err := catalog.GetByID(r.Context(), chi.URLParam(r, "serviceID"))
		if err != nil {
			http.Error(w, "service not found", http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, toServiceResponse(s))
	}
}

func updateServiceHandler(catalog *Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireCatalogManager(w, r) {
			return
		}

		var req updateServiceRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		s, err := catalog.Update(r.Context(), chi.URLParam(r, "serviceID"), UpdateInput{
			DurationMinutes: req.DurationMinutes,
			PriceCents:      req.PriceCents,
			Description:     req.Description,
			CalendarColor:   req.CalendarColor,
		})
		if err != nil {
			switch {
			case errors.Is(err, ErrNotFound):
				http.Error(w, "service not found", http.StatusNotFound)
			case errors.Is(err, ErrInvalidInput):
				http.Error(w, err.Error(), http.StatusBadRequest)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		writeJSON(w, http.StatusOK, toServiceResponse(s))
	}
}

// deactivateServiceHandler godoc
// @Summary Desactivar servicio
// @Description Rechazado con 409 si el servicio tiene citas futuras programadas o confirmadas.
// @Tags services
// @Produce json
// @Param serviceID path string true "ID del servicio"
// @Success 200 {object} serviceResponse
// @Failure 409 {string} string "servicio con citas futuras"
// @Router /services/{serviceID}/deactivate [post]
func deactivateServiceHandler(catalog *Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireCatalogManager(w, r) {
			return
		}

		s, err := catalog.Deactivate(r.Context(), chi.URLParam(r, "serviceID"))
		if err != nil {
			var inUse *InUseError
			switch {
			case errors.As(err, &inUse):
				http.Error(w, inUse.Error(), http.StatusConflict)
			case errors.Is(err, ErrNotFound):
				http.Error(w, "service not found", http.StatusNotFound)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		writeJSON(w, http.StatusOK, toServiceResponse(s))
	}
}

func toServiceResponse(s Service) serviceResponse {
	return serviceResponse{
		ID:              s.ID,
		Type:            s.Type,
		DurationMinutes: s.DurationMinutes,
		PriceCents:      s.PriceCents,
		Description:     s.Description,
		Active:          s.Active,
		CalendarColor:   s.CalendarColor,
		CreatedAt:       s.CreatedAt,
		UpdatedAt:       s.UpdatedAt,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
