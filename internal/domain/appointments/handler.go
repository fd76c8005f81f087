package appointments

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"vet-clinic/internal/domain/accounts"
	"vet-clinic/internal/domain/owners"
	"vet-clinic/internal/middleware"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service, ownersSvc *owners.Service) {
	r.Route("/appointments", func(ar chi.Router) {
		ar.Post("/", createAppointmentHandler(svc, ownersSvc))
		ar.Get("/", listAppointmentsHandler(svc, ownersSvc))
		ar.Get("/{appointmentID}", getAppointmentHandler(svc, ownersSvc))
		ar.Post("/{appointmentID}/confirm", confirmHandler(svc))
		ar.Post("/{appointmentID}/cancel", cancelHandler(svc, ownersSvc))
		ar.Post("/{appointmentID}/reschedule", rescheduleHandler(svc, ownersSvc))
		ar.Post("/{appointmentID}/no-show", noShowHandler(svc))
	})

	r.Route("/waitlist", func(wr chi.Router) {
		wr.Post("/", enqueueWaitlistHandler(svc))
		wr.Get("/", listWaitlistHandler(svc))
		wr.Post("/{entryID}/attended", attendedWaitlistHandler(svc))
	})
}

type createAppointmentRequest struct {
	OwnerID   string `json:"owner_id"`
	PetID     string `json:"pet_id"`
	ServiceID string `json:"service_id"`
	VetID     string `json:"vet_id"`
	Fecha     string `json:"fecha"` // YYYY-MM-DD
	Hora      string `json:"hora"`  // HH:MM
	Emergency bool   `json:"es_emergencia"`
	Notes     string `json:"notes"`
}

type cancelAppointmentRequest struct {
	Reason string `json:"reason"`
}

type rescheduleAppointmentRequest struct {
	Fecha string `json:"fecha"`
	Hora  string `json:"hora"`
}

type appointmentResponse struct {
	ID           string    `json:"id"`
	OwnerID      string    `json:"owner_id"`
	PetID        string    `json:"pet_id"`
	ServiceID    string    `json:"service_id"`
	VetID        string    `json:"vet_id"`
	CreatedByID  string    `json:"created_by_id"`
	Fecha        string    `json:"fecha"`
	Hora         string    `json:"hora"`
	Status       Status    `json:"status"`
	Emergency    bool      `json:"es_emergencia"`
	Notes        string    `json:"notes,omitempty"`
	CancelReason string    `json:"cancel_reason,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type waitlistRequest struct {
	PetID     string `json:"pet_id"`
	ServiceID string `json:"service_id"`
	Priority  int    `json:"priority"`
	Notes     string `json:"notes"`
}

type waitlistResponse struct {
	ID          string    `json:"id"`
	PetID       string    `json:"pet_id"`
	ServiceID   string    `json:"service_id"`
	Priority    Priority  `json:"priority"`
	Notes       string    `json:"notes,omitempty"`
	RequestedAt time.Time `json:"requested_at"`
	Attended    bool      `json:"attended"`
}

// ownOwnerID resuelve el propietario asociado al usuario autenticado
// (vacío si no tiene perfil de propietario).
func ownOwnerID(r *http.Request, ownersSvc *owners.Service, userID string) string {
	o, err := ownersSvc.GetByUserID(r.Context(), userID)
	if err != nil {
		return ""
	}
	return o.ID
}

func writeRuleError(w http.ResponseWriter, err error) bool {
	if errors.Is(err, ErrSlotTaken) {
		// Conflicto de slot: puede venir de una carrera entre dos requests,
		// el caller debe ofrecer otro horario.
		http.Error(w, "time slot already booked", http.StatusConflict)
		return true
	}
	var rerr *RuleError
	if errors.As(err, &rerr) {
		http.Error(w, rerr.Msg, http.StatusUnprocessableEntity)
		return true
	}
	return false
}

// createAppointmentHandler godoc
// @Summary Agendar cita
// @Description Crea una cita en estado PROGRAMADA. Sin es_emergencia rigen las reglas de día y horario laboral. El slot (veterinario, fecha, hora) es único.
// @Tags appointments
// @Accept json
// @Produce json
// @Param payload body createAppointmentRequest true "Datos de la cita"
// @Success 201 {object} appointmentResponse
// @Failure 409 {string} string "slot ocupado"
// @Failure 422 {string} string "regla de negocio violada"
// @Router /appointments [post]
func createAppointmentHandler(svc *Service, ownersSvc *owners.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req createAppointmentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		role := accounts.Role(claims.Role)
		ownerID := strings.TrimSpace(req.OwnerID)

		// Self-service: el propietario agenda solo para sí mismo.
		if !role.Can(accounts.CapManageAppointments) {
			if !role.Can(accounts.CapSelfService) {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}
			own := ownOwnerID(r, ownersSvc, claims.UserID)
			if own == "" {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}
			ownerID = own
		}

		a, err := svc.Create(r.Context(), CreateInput{
			OwnerID:     ownerID,
			PetID:       req.PetID,
			ServiceID:   req.ServiceID,
			VetID:       req.VetID,
			CreatedByID: claims.UserID,
			Fecha:       req.Fecha,
			Hora:        req.Hora,
			Emergency:   req.Emergency,
			Notes:       req.Notes,
		})
		if err != nil {
			if writeRuleError(w, err) {
				return
			}
			switch {
			case errors.Is(err, ErrNotFound):
				http.Error(w, "pet not found", http.StatusNotFound)
			case errors.Is(err, ErrInvalidInput):
				http.Error(w, "invalid appointment data", http.StatusBadRequest)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		writeJSON(w, http.StatusCreated, toAppointmentResponse(a))
	}
}

// listAppointmentsHandler godoc
// @Summary Listar citas
// @Description Con vet_id+fecha lista la agenda del veterinario; con owner_id las citas del propietario.
// @Tags appointments
// @Produce json
// @Param vet_id query string false "ID del veterinario"
// @Param fecha query string false "YYYY-MM-DD"
// @Param owner_id query string false "ID del propietario"
// @Success 200 {array} appointmentResponse
// @Router /appointments [get]
func listAppointmentsHandler(svc *Service, ownersSvc *owners.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		role := accounts.Role(claims.Role)

		q := r.URL.Query()
		vetID := strings.TrimSpace(q.Get("vet_id"))
		ownerID := strings.TrimSpace(q.Get("owner_id"))

		var (
			items []Appointment
			err   error
		)
		switch {
		case vetID != "":
			if !role.Can(accounts.CapManageAppointments) && !role.Can(accounts.CapAttendAppointments) {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}
			fecha, perr := time.Parse("2006-01-02", strings.TrimSpace(q.Get("fecha")))
			if perr != nil {
				http.Error(w, "fecha must be YYYY-MM-DD", http.StatusBadRequest)
				return
			}
			items, err = svc.ListByVetAndDate(r.Context(), vetID, fecha)
		case ownerID != "":
			if !role.Can(accounts.CapManageAppointments) && ownOwnerID(r, ownersSvc, claims.UserID) != ownerID {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}
			items, err = svc.ListByOwner(r.Context(), ownerID)
		default:
			http.Error(w, "vet_id+fecha or owner_id required", http.StatusBadRequest)
			return
		}
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]appointmentResponse, 0, len(items))
		for _, a := range items {
			out = append(out, toAppointmentResponse(a))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func getAppointmentHandler(svc *Service, ownersSvc *owners.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		a, err := svc.GetByID(r.Context(), chi.URLParam(r, "appointmentID"))
		if err != nil {
			http.Error(w, "appointment not found", http.StatusNotFound)
			return
		}

		role := accounts.Role(claims.Role)
		if !role.Can(accounts.CapManageAppointments) &&
			!role.Can(accounts.CapAttendAppointments) &&
			ownOwnerID(r, ownersSvc, claims.UserID) != a.OwnerID {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		writeJSON(w, http.StatusOK, toAppointmentResponse(a))
	}
}

func confirmHandler(svc *Service) http.HandlerFunc {
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

		a, err := svc.Confirm(r.Context(), chi.URLParam(r, "appointmentID"))
		if err != nil {
			switch {
			case errors.Is(err, ErrNotFound):
				http.Error(w, "appointment not found", http.StatusNotFound)
			case errors.Is(err, ErrBadState):
				http.Error(w, "appointment cannot be confirmed", http.StatusConflict)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}
		writeJSON(w, http.StatusOK, toAppointmentResponse(a))
	}
}

// cancelHandler godoc
// @Summary Cancelar cita
// @Description Requiere motivo. Propietarios necesitan 6 horas de anticipación; ADMIN anula la regla.
// @Tags appointments
// @Accept json
// @Produce json
// @Param appointmentID path string true "ID de la cita"
// @Param payload body cancelAppointmentRequest true "Motivo de cancelación"
// @Success 200 {object} appointmentResponse
// @Failure 422 {string} string "no cancelable / sin anticipación suficiente"
// @Router /appointments/{appointmentID}/cancel [post]
func cancelHandler(svc *Service, ownersSvc *owners.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		id := chi.URLParam(r, "appointmentID")
		role := accounts.Role(claims.Role)

		current, err := svc.GetByID(r.Context(), id)
		if err != nil {
			http.Error(w, "appointment not found", http.StatusNotFound)
			return
		}
		if !role.Can(accounts.CapManageAppointments) &&
			ownOwnerID(r, ownersSvc, claims.UserID) != current.OwnerID {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		var req cancelAppointmentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		a, err := svc.Cancel(r.Context(), id, Actor{UserID: claims.UserID, Role: role}, req.Reason)
		if err != nil {
			if writeRuleError(w, err) {
				return
			}
			switch {
			case errors.Is(err, ErrInvalidInput):
				http.Error(w, "cancellation reason required", http.StatusBadRequest)
			case errors.Is(err, ErrNotFound):
				http.Error(w, "appointment not found", http.StatusNotFound)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		writeJSON(w, http.StatusOK, toAppointmentResponse(a))
	}
}

// rescheduleHandler godoc
// @Summary Reprogramar cita
// @Description Mueve la cita a otro slot. Propietarios necesitan 12 horas de anticipación; ADMIN anula la regla.
// @Tags appointments
// @Accept json
// @Produce json
// @Param appointmentID path string true "ID de la cita"
// @Param payload body rescheduleAppointmentRequest true "Nuevo slot"
// @Success 200 {object} appointmentResponse
// @Failure 409 {string} string "slot ocupado"
// @Failure 422 {string} string "regla de negocio violada"
// @Router /appointments/{appointmentID}/reschedule [post]
func rescheduleHandler(svc *Service, ownersSvc *owners.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		id := chi.URLParam(r, "appointmentID")
		role := accounts.Role(claims.Role)

		current, err := svc.GetByID(r.Context(), id)
		if err != nil {
			http.Error(w, "appointment not found", http.StatusNotFound)
			return
		}
		if !role.Can(accounts.CapManageAppointments) &&
			ownOwnerID(r, ownersSvc, claims.UserID) != current.OwnerID {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		var req rescheduleAppointmentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		a, err := svc.Reschedule(r.Context(), id, Actor{UserID: claims.UserID, Role: role}, req.Fecha, req.Hora)
		if err != nil {
			if writeRuleError(w, err) {
				return
			}
			switch {
			case errors.Is(err, ErrInvalidInput):
				http.Error(w, "fecha/hora inválidas", http.StatusBadRequest)
			case errors.Is(err, ErrNotFound):
				http.Error(w, "appointment not found", http.StatusNotFound)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		writeJSON(w, http.StatusOK, toAppointmentResponse(a))
	}
}

func noShowHandler(svc *Service) http.HandlerFunc {
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

		a, err := svc.MarkNoShow(r.Context(), chi.URLParam(r, "appointmentID"))
		if err != nil {
			switch {
			case errors.Is(err, ErrNotFound):
				http.Error(w, "appointment not found", http.StatusNotFound)
			case errors.Is(err, ErrBadState):
				http.Error(w, "appointment already closed", http.StatusConflict)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}
		writeJSON(w, http.StatusOK, toAppointmentResponse(a))
	}
}

func enqueueWaitlistHandler(svc *Service) http.HandlerFunc {
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

		var req waitlistRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		e, err := svc.Enqueue(r.Context(), EnqueueInput{
			PetID:     req.PetID,
			ServiceID: req.ServiceID,
			Priority:  Priority(req.Priority),
			Notes:     req.Notes,
		})
		if err != nil {
			switch {
			case errors.Is(err, ErrNotFound):
				http.Error(w, "pet not found", http.StatusNotFound)
			default:
				http.Error(w, "invalid waitlist entry", http.StatusBadRequest)
			}
			return
		}

		writeJSON(w, http.StatusCreated, toWaitlistResponse(e))
	}
}

func listWaitlistHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		role := accounts.Role(claims.Role)
		if !role.Can(accounts.CapManageAppointments) && !role.Can(accounts.CapAttendAppointments) {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		items, err := svc.ListWaitlist(r.Context())
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]waitlistResponse, 0, len(items))
		for _, e := range items {
			out = append(out, toWaitlistResponse(e))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func attendedWaitlistHandler(svc *Service) http.HandlerFunc {
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

		e, err := svc.MarkAttended(r.Context(), chi.URLParam(r, "entryID"))
		if err != nil {
			http.Error(w, "waitlist entry not found", http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, toWaitlistResponse(e))
	}
}

func toAppointmentResponse(a Appointment) appointmentResponse {
	return appointmentResponse{
		ID:           a.ID,
		OwnerID:      a.OwnerID,
		PetID:        a.PetID,
		ServiceID:    a.ServiceID,
		VetID:        a.VetID,
		CreatedByID:  a.CreatedByID,
		Fecha:        a.Fecha.Format("2006-01-02"),
		Hora:         a.Hora,
		Status:       a.Status,
		Emergency:    a.Emergency,
		Notes:        a.Notes,
		CancelReason: a.CancelReason,
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    a.UpdatedAt,
	}
}

func toWaitlistResponse(e WaitlistEntry) waitlistResponse {
	return waitlistResponse{
		ID:          e.ID,
		PetID:       e.PetID,
		ServiceID:   e.ServiceID,
		Priority:    e.Priority,
		Notes:       e.Notes,
		RequestedAt: e.RequestedAt,
		Attended:    e.Attended,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
