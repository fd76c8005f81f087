package owners

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"vet-clinic/internal/domain/accounts"
	"vet-clinic/internal/middleware"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/owners", func(or chi.Router) {
		or.Post("/", createOwnerHandler(svc))
		or.Get("/", listOwnersHandler(svc))
		or.Get("/{ownerID}", getOwnerHandler(svc))
		or.Patch("/{ownerID}", updateOwnerHandler(svc))
	})
}

type createOwnerRequest struct {
	UserID    string `json:"user_id"`
	FullName  string `json:"full_name"`
	Documento string `json:"documento"`
	Phone     string `json:"phone"`
	Email     string `json:"email"`
	Address   string `json:"address"`
}

type updateOwnerRequest struct {
	FullName *string `json:"full_name"`
	Phone    *string `json:"phone"`
	Email    *string `json:"email"`
	Address  *string `json:"address"`
}

type ownerResponse struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id,omitempty"`
	FullName  string    `json:"full_name"`
	Documento string    `json:"documento"`
	Phone     string    `json:"phone"`
	Email     string    `json:"email"`
	Address   string    `json:"address,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// createOwnerHandler godoc
// @Summary Registrar propietario
// @Tags owners
// @Accept json
// @Produce json
// @Param payload body createOwnerRequest true "Datos del propietario"
// @Success 201 {object} ownerResponse
// @Failure 400 {string} string "datos inválidos"
// @Failure 409 {string} string "documento o email duplicado"
// @Router /owners [post]
func createOwnerHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		if !accounts.Role(claims.Role).Can(accounts.CapManageAppointments) {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		var req createOwnerRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		o, err := svc.Create(r.Context(), CreateInput{
			UserID:    req.UserID,
			FullName:  req.FullName,
			Documento: req.Documento,
			Phone:     req.Phone,
			Email:     req.Email,
			Address:   req.Address,
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

		writeJSON(w, http.StatusCreated, toOwnerResponse(o))
	}
}

// listOwnersHandler godoc
// @Summary Listar propietarios
// @Tags owners
// @Produce json
// @Success 200 {array} ownerResponse
// @Router /owners [get]
func listOwnersHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		if !accounts.Role(claims.Role).Can(accounts.CapManageAppointments) {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		items, err := svc.List(r.Context())
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]ownerResponse, 0, len(items))
		for _, o := range items {
			out = append(out, toOwnerResponse(o))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func getOwnerHandler(svc *Service) http.HandlerFunc {
	// Staff, o el propio propietario (self-service).
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		o, err := svc.GetByID(r.Context(), chi.URLParam(r, "ownerID"))
		if err != nil {
			http.Error(w, "owner not found", http.StatusNotFound)
			return
		}

		if !accounts.Role(claims.Role).Can(accounts.CapManageAppointments) && o.UserID != claims.UserID {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		writeJSON(w, http.StatusOK, toOwnerResponse(o))
	}
}

func updateOwnerHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		ownerID := chi.URLParam(r, "ownerID")
		current, err := svc.GetByID(r.Context(), ownerID)
		if err != nil {
			http.Error(w, "owner not found", http.StatusNotFound)
			return
		}
		if !accounts.Role(claims.Role).Can(accounts.CapManageAppointments) && current.UserID != claims.UserID {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		var req updateOwnerRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		o, err := svc.Update(r.Context(), ownerID, UpdateInput{
			FullName: req.FullName,
			Phone:    req.Phone,
			Email:    req.Email,
			Address:  req.Address,
		})
		if err != nil {
			switch {
			case errors.Is(err, ErrInvalidInput):
				http.Error(w, err.Error(), http.StatusBadRequest)
			case errors.Is(err, ErrNotFound):
				http.Error(w, "owner not found", http.StatusNotFound)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		writeJSON(w, http.StatusOK, toOwnerResponse(o))
	}
}

func toOwnerResponse(o Owner) ownerResponse {
	return ownerResponse{
		ID:        o.ID,
		UserID:    o.UserID,
		FullName:  o.FullName,
		Documento: o.Documento,
		Phone:     o.Phone,
		Email:     o.Email,
		Address:   o.Address,
		CreatedAt: o.CreatedAt,
		UpdatedAt: o.UpdatedAt,
	}
}

// writeJSON está duplicado intencionalmente en handlers de distintos módulos
// para evitar crear helpers compartidos demasiado pronto.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
