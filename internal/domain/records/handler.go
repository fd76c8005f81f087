package records

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"vet-clinic/internal/domain/accounts"
	"vet-clinic/internal/domain/owners"
	"vet-clinic/internal/domain/pets"
	"vet-clinic/internal/middleware"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service, petsSvc *pets.Service, ownersSvc *owners.Service) {
	r.Route("/records", func(rr chi.Router) {
		rr.Post("/", createRecordHandler(svc))
		rr.Get("/{recordID}", getRecordHandler(svc, petsSvc, ownersSvc))
		rr.Put("/{recordID}", updateRecordHandler(svc))
	})
	r.Get("/pets/{petID}/records", listPetRecordsHandler(svc, petsSvc, ownersSvc))
}

type createRecordRequest struct {
	AppointmentID string `json:"appointment_id"`
	Motivo        string `json:"motivo"`
	Diagnostico   string `json:"diagnostico"`
	Tratamiento   string `json:"tratamiento"`
	Notas         string `json:"notas"`
	WeightGrams   *int64 `json:"weight_grams,omitempty"`
}

type updateRecordRequest struct {
	Diagnostico string `json:"diagnostico"`
	Tratamiento string `json:"tratamiento"`
	Notas       string `json:"notas"`
}

type recordResponse struct {
	ID            string    `json:"id"`
	PetID         string    `json:"pet_id"`
	AppointmentID string    `json:"appointment_id"`
	VetID         string    `json:"vet_id"`
	Motivo        string    `json:"motivo"`
	Diagnostico   string    `json:"diagnostico"`
	Tratamiento   string    `json:"tratamiento,omitempty"`
	Notas         string    `json:"notas,omitempty"`
	WeightGrams   *int64    `json:"weight_grams,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// canReadPetHistory permite personal clínico o el propietario de la mascota.
func canReadPetHistory(r *http.Request, petsSvc *pets.Service, ownersSvc *owners.Service, petID string) bool {
	claims, ok := middleware.GetClaims(r.Context())
	if !ok {
		return false
	}
	role := accounts.Role(claims.Role)
	if role.Can(accounts.CapRecordClinical) || role.Can(accounts.CapManageAppointments) {
		return true
	}
	if !role.Can(accounts.CapSelfService) {
		return false
	}
	ownerID, err := petsSvc.OwnerOf(r.Context(), petID)
	if err != nil {
		return false
	}
	o, err := ownersSvc.GetByUserID(r.Context(), claims.UserID)
	if err != nil {
		return false
	}
	return o.ID == ownerID
}

// createRecordHandler godoc
// @Summary Registrar consulta clínica
// @Description Crea la entrada de historial y completa la cita asociada.
// @Tags records
// @Accept json
// @Produce json
// @Param payload body createRecordRequest true "Datos de la consulta"
// @Success 201 {object} recordResponse
// @Failure 409 {string} string "la cita ya tiene historial o no puede completarse"
// @Router /records [post]
func createRecordHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		if !accounts.Role(claims.Role).Can(accounts.CapRecordClinical) {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		var req createRecordRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		rec, err := svc.Create(r.Context(), CreateInput{
			AppointmentID: req.AppointmentID,
			VetID:         claims.UserID,
			Motivo:        req.Motivo,
			Diagnostico:   req.Diagnostico,
			Tratamiento:   req.Tratamiento,
			Notas:         req.Notas,
			WeightGrams:   req.WeightGrams,
		})
		if err != nil {
			switch {
			case errors.Is(err, ErrInvalidInput):
				http.Error(w, "invalid record data", http.StatusBadRequest)
			case errors.Is(err, ErrNotFound):
				http.Error(w, "appointment not found", http.StatusNotFound)
			case errors.Is(err, ErrDuplicate), errors.Is(err, ErrBadState):
				http.Error(w, err.Error(), http.StatusConflict)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		writeJSON(w, http.StatusCreated, toRecordResponse(rec))
	}
}

func getRecordHandler(svc *Service, petsSvc *pets.Service, ownersSvc *owners.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec, err := svc.GetByID(r.Context(), chi.URLParam(r, "recordID"))
		if err != nil {
			http.Error(w, "record not found", http.StatusNotFound)
			return
		}
		if !canReadPetHistory(r, petsSvc, ownersSvc, rec.PetID) {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		writeJSON(w, http.StatusOK, toRecordResponse(rec))
	}
}

func updateRecordHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		if !accounts.Role(claims.Role).Can(accounts.CapRecordClinical) {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		var req updateRecordRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		rec, err := svc.Update(r.Context(), chi.URLParam(r, "recordID"), UpdateInput{
			Diagnostico: req.Diagnostico,
			Tratamiento: req.Tratamiento,
			Notas:       req.Notas,
		})
		if err != nil {
			switch {
			case errors.Is(err, ErrInvalidInput):
				http.Error(w, "invalid record data", http.StatusBadRequest)
			case errors.Is(err, ErrNotFound):
				http.Error(w, "record not found", http.StatusNotFound)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		writeJSON(w, http.StatusOK, toRecordResponse(rec))
	}
}

// listPetRecordsHandler godoc
// @Summary Historial clínico de la mascota
// @Tags records
// @Produce json
// @Param petID path string true "ID de la mascota"
// @Success 200 {array} recordResponse
// @Router /pets/{petID}/records [get]
func listPetRecordsHandler(svc *Service, petsSvc *pets.Service, ownersSvc *owners.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		petID := chi.URLParam(r, "petID")
		if !canReadPetHistory(r, petsSvc, ownersSvc, petID) {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		items, err := svc.ListByPet(r.Context(), petID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]recordResponse, 0, len(items))
		for _, rec := range items {
			out = append(out, toRecordResponse(rec))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func toRecordResponse(rec Record) recordResponse {
	return recordResponse{
		ID:            rec.ID,
		PetID:         rec.PetID,
		AppointmentID: rec.AppointmentID,
		VetID:         rec.VetID,
		Motivo:        rec.Motivo,
		Diagnostico:   rec.Diagnostico,
		Tratamiento:   rec.Tratamiento,
		Notas:         rec.Notas,
		WeightGrams:   rec.WeightGrams,
		CreatedAt:     rec.CreatedAt,
		UpdatedAt:     rec.UpdatedAt,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
