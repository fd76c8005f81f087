package pets

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"vet-clinic/internal/domain/accounts"
	"vet-clinic/internal/domain/owners"
	"vet-clinic/internal/middleware"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service, ownersSvc *owners.Service) {
	r.Route("/pets", func(pr chi.Router) {
		pr.Post("/", createPetHandler(svc, ownersSvc))
		pr.Get("/{petID}", getPetHandler(svc, ownersSvc))
		pr.Patch("/{petID}", updatePetHandler(svc, ownersSvc))
		pr.Post("/{petID}/transfer", transferPetHandler(svc))
		pr.Post("/{petID}/deactivate", deactivatePetHandler(svc))
		pr.Get("/{petID}/transfers", listTransfersHandler(svc))
	})

	r.Get("/owners/{ownerID}/pets", listOwnerPetsHandler(svc, ownersSvc))
}

type createPetRequest struct {
	OwnerID     string `json:"owner_id"`
	Name        string `json:"name"`
	Species     string `json:"species"`
	Breed       string `json:"breed"`
	Sex         string `json:"sex"`
	AgeYears    int    `json:"age_years"`
	WeightGrams *int64 `json:"weight_grams"`
	Notes       string `json:"notes"`
}

type updatePetRequest struct {
	Name        *string `json:"name"`
	Breed       *string `json:"breed"`
	AgeYears    *int    `json:"age_years"`
	WeightGrams *int64  `json:"weight_grams"`
	Notes       *string `json:"notes"`
}

type transferPetRequest struct {
	ToOwnerID string `json:"to_owner_id"`
	Reason    string `json:"reason"`
}

type petResponse struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"owner_id"`
	Name        string    `json:"name"`
	Species     Species   `json:"species"`
	Breed       string    `json:"breed,omitempty"`
	Sex         Sex       `json:"sex,omitempty"`
	AgeYears    int       `json:"age_years"`
	WeightGrams *int64    `json:"weight_grams,omitempty"`
	Notes       string    `json:"notes,omitempty"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type transferResponse struct {
	ID          string    `json:"id"`
	PetID       string    `json:"pet_id"`
	FromOwnerID string    `json:"from_owner_id"`
	ToOwnerID   string    `json:"to_owner_id"`
	Reason      string    `json:"reason,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// canAccessPet: staff siempre; propietario solo sobre sus mascotas.
func canAccessPet(r *http.Request, ownersSvc *owners.Service, petOwnerID string) bool {
	claims, ok := middleware.GetClaims(r.Context())
	if !ok {
		return false
	}
	if accounts.Role(claims.Role).Can(accounts.CapManageAppointments) ||
		accounts.Role(claims.Role).Can(accounts.CapAttendAppointments) {
		return true
	}
	o, err := ownersSvc.GetByUserID(r.Context(), claims.UserID)
	if err != nil {
		return false
	}
	return o.ID == petOwnerID
}

// createPetHandler godoc
// @Summary Registrar mascota
// @Tags pets
// @Accept json
// @Produce json
// @Param payload body createPetRequest true "Datos de la mascota"
// @Success 201 {object} petResponse
// @Failure 400 {string} string "datos inválidos"
// @Router /pets [post]
func createPetHandler(svc *Service, ownersSvc *owners.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req createPetRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		ownerID := req.OwnerID
		// Self-service: un propietario solo registra mascotas propias.
		if !accounts.Role(claims.Role).Can(accounts.CapManageAppointments) {
			o, err := ownersSvc.GetByUserID(r.Context(), claims.UserID)
			if err != nil {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}
			ownerID = o.ID
		}

		p, err := svc.Create(r.Context(), CreateInput{
			OwnerID:     ownerID,
			Name:        req.Name,
			Species:     Species(req.Species),
			Breed:       req.Breed,
			Sex:         Sex(req.Sex),
			AgeYears:    req.AgeYears,
			WeightGrams: req.WeightGrams,
			Notes:       req.Notes,
		})
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		writeJSON(w, http.StatusCreated, toPetResponse(p))
	}
}

func getPetHandler(svc *Service, ownersSvc *owners.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := svc.GetByID(r.Context(), chi.URLParam(r, "petID"))
		if err != nil {
			http.Error(w, "pet not found", http.StatusNotFound)
			return
		}
		if !canAccessPet(r, ownersSvc, p.OwnerID) {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		writeJSON(w, http.StatusOK, toPetResponse(p))
	}
}

func updatePetHandler(svc *Service, ownersSvc *owners.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		petID := chi.URLParam(r, "petID")
		current, err := svc.GetByID(r.Context(), petID)
		if err != nil {
			http.Error(w, "pet not found", http.StatusNotFound)
			return
		}
		if !canAccessPet(r, ownersSvc, current.OwnerID) {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		var req updatePetRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		p, err := svc.Update(r.Context(), petID, UpdateInput{
			Name:        req.Name,
			Breed:       req.Breed,
			AgeYears:    req.AgeYears,
			WeightGrams: req.WeightGrams,
			Notes:       req.Notes,
		})
		if err != nil {
			switch {
			case errors.Is(err, ErrInvalidInput):
				http.Error(w, err.Error(), http.StatusBadRequest)
			case errors.Is(err, ErrNotFound):
				http.Error(w, "pet not found", http.StatusNotFound)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		writeJSON(w, http.StatusOK, toPetResponse(p))
	}
}

// transferPetHandler godoc
// @Summary Transferir mascota a otro propietario
// @Tags pets
// @Accept json
// @Produce json
// @Param petID path string true "ID de la mascota"
// @Param payload body transferPetRequest true "Nuevo propietario"
// @Success 200 {object} petResponse
// @Router /pets/{petID}/transfer [post]
func transferPetHandler(svc *Service) http.HandlerFunc {
	// Solo personal con gestión de agenda puede transferir.
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

		var req transferPetRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		p, err := svc.Transfer(r.Context(), chi.URLParam(r, "petID"), req.ToOwnerID, req.Reason)
		if err != nil {
			switch {
			case errors.Is(err, ErrNotFound):
				http.Error(w, "pet not found", http.StatusNotFound)
			case errors.Is(err, ErrInactive):
				http.Error(w, err.Error(), http.StatusConflict)
			default:
				http.Error(w, err.Error(), http.StatusBadRequest)
			}
			return
		}

		writeJSON(w, http.StatusOK, toPetResponse(p))
	}
}

func deactivatePetHandler(svc *Service) http.HandlerFunc {
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

		p, err := svc.Deactivate(r.Context(), chi.URLParam(r, "petID"))
		if err != nil {
			http.Error(w, "pet not found", http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, toPetResponse(p))
	}
}

func listTransfersHandler(svc *Service) http.HandlerFunc {
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

		items, err := svc.ListTransfers(r.Context(), chi.URLParam(r, "petID"))
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]transferResponse, 0, len(items))
		for _, t := range items {
			out = append(out, transferResponse{
				ID:          t.ID,
				PetID:       t.PetID,
				FromOwnerID: t.FromOwnerID,
				ToOwnerID:   t.ToOwnerID,
				Reason:      t.Reason,
				CreatedAt:   t.CreatedAt,
			})
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func listOwnerPetsHandler(svc *Service, ownersSvc *owners.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID := chi.URLParam(r, "ownerID")
		if !canAccessPet(r, ownersSvc, ownerID) {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		items, err := svc.ListByOwner(r.Context(), ownerID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]petResponse, 0, len(items))
		for _, p := range items {
			out = append(out, toPetResponse(p))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func toPetResponse(p Pet) petResponse {
	return petResponse{
		ID:          p.ID,
		OwnerID:     p.OwnerID,
		Name:        p.Name,
		Species:     p.Species,
		Breed:       p.Breed,
		Sex:         p.Sex,
		AgeYears:    p.AgeYears,
		WeightGrams: p.WeightGrams,
		Notes:       p.Notes,
		Active:      p.Active,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
