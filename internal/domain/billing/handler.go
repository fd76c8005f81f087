package billing

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
	r.Route("/payments", func(pr chi.Router) {
		pr.Post("/", registerPaymentHandler(svc))
		pr.Get("/{paymentID}", getPaymentHandler(svc, ownersSvc))
		pr.Post("/{paymentID}/confirm", confirmPaymentHandler(svc))
		pr.Post("/{paymentID}/void", voidPaymentHandler(svc))
		pr.Get("/{paymentID}/invoice", getInvoiceHandler(svc, ownersSvc))
	})
	r.Get("/owners/{ownerID}/payments", listOwnerPaymentsHandler(svc, ownersSvc))
	r.Get("/owners/{ownerID}/invoices", listOwnerInvoicesHandler(svc, ownersSvc))
}

type registerPaymentRequest struct {
	AppointmentID string `json:"appointment_id"`
	AmountCents   int64  `json:"amount_cents"`
	Method        string `json:"method"`
	Deferred      bool   `json:"deferred"`
}

type paymentResponse struct {
	ID            string           `json:"id"`
	AppointmentID string           `json:"appointment_id"`
	OwnerID       string           `json:"owner_id"`
	AmountCents   int64            `json:"amount_cents"`
	Method        Method           `json:"method"`
	Status        PaymentStatus    `json:"status"`
	RegisteredBy  string           `json:"registered_by"`
	CreatedAt     time.Time        `json:"created_at"`
	Invoice       *invoiceResponse `json:"invoice,omitempty"`
}

type invoiceResponse struct {
	ID          string    `json:"id"`
	Number      string    `json:"number"`
	PaymentID   string    `json:"payment_id"`
	OwnerID     string    `json:"owner_id"`
	AmountCents int64     `json:"amount_cents"`
	IssuedAt    time.Time `json:"issued_at"`
}

func requireCashier(w http.ResponseWriter, r *http.Request) (string, bool) {
	claims, ok := middleware.GetClaims(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return "", false
	}
	if !accounts.Role(claims.Role).Can(accounts.CapRegisterPayments) {
		http.Error(w, "forbidden", http.StatusForbidden)
		return "", false
	}
	return claims.UserID, true
}

// canReadOwnerBilling permite personal de caja o el propio propietario.
func canReadOwnerBilling(r *http.Request, ownersSvc *owners.Service, ownerID string) bool {
	claims, ok := middleware.GetClaims(r.Context())
	if !ok {
		return false
	}
	role := accounts.Role(claims.Role)
	if role.Can(accounts.CapRegisterPayments) {
		return true
	}
	if !role.Can(accounts.CapSelfService) {
		return false
	}
	o, err := ownersSvc.GetByUserID(r.Context(), claims.UserID)
	return err == nil && o.ID == ownerID
}

// registerPaymentHandler godoc
// @Summary Registrar pago de una cita
// @Description Cobro simulado en caja. Si no es diferido, se completa y factura en el acto.
// @Tags billing
// @Accept json
// @Produce json
// @Param payload body registerPaymentRequest true "Datos del pago"
// @Success 201 {object} paymentResponse
// @Failure 409 {string} string "la cita ya fue cobrada"
// @Router /payments [post]
func registerPaymentHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireCashier(w, r)
		if !ok {
			return
		}

		var req registerPaymentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		p, inv, err := svc.RegisterPayment(r.Context(), RegisterPaymentInput{
			AppointmentID: req.AppointmentID,
			AmountCents:   req.AmountCents,
			Method:        Method(req.Method),
			RegisteredBy:  userID,
			Deferred:      req.Deferred,
		})
		if err != nil {
			switch {
			case errors.Is(err, ErrInvalidInput):
				http.Error(w, "invalid payment data", http.StatusBadRequest)
			case errors.Is(err, ErrNotFound):
				http.Error(w, "appointment not found", http.StatusNotFound)
			case errors.Is(err, ErrDuplicate):
				http.Error(w, "appointment already paid", http.StatusConflict)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		writeJSON(w, http.StatusCreated, toPaymentResponse(p, inv))
	}
}

func getPaymentHandler(svc *Service, ownersSvc *owners.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := svc.GetPayment(r.Context(), chi.URLParam(r, "paymentID"))
		if err != nil {
			http.Error(w, "payment not found", http.StatusNotFound)
			return
		}
		if !canReadOwnerBilling(r, ownersSvc, p.OwnerID) {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		writeJSON(w, http.StatusOK, toPaymentResponse(p, nil))
	}
}

func confirmPaymentHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := requireCashier(w, r); !ok {
			return
		}

		p, inv, err := svc.ConfirmPayment(r.Context(), chi.URLParam(r, "paymentID"))
		if err != nil {
			switch {
			case errors.Is(err, ErrNotFound):
				http.Error(w, "payment not found", http.StatusNotFound)
			case errors.Is(err, ErrBadState):
				http.Error(w, "payment is not pending", http.StatusConflict)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}
		writeJSON(w, http.StatusOK, toPaymentResponse(p, inv))
	}
}

func voidPaymentHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := requireCashier(w, r); !ok {
			return
		}

		p, err := svc.VoidPayment(r.Context(), chi.URLParam(r, "paymentID"))
		if err != nil {
			switch {
			case errors.Is(err, ErrNotFound):
				http.Error(w, "payment not found", http.StatusNotFound)
			case errors.Is(err, ErrBadState):
				http.Error(w, "payment is not pending", http.StatusConflict)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}
		writeJSON(w, http.StatusOK, toPaymentResponse(p, nil))
	}
}

func getInvoiceHandler(svc *Service, ownersSvc *owners.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		inv, err := svc.GetInvoiceByPayment(r.Context(), chi.URLParam(r, "paymentID"))
		if err != nil {
			http.Error(w, "invoice not found", http.StatusNotFound)
			return
		}
		if !canReadOwnerBilling(r, ownersSvc, inv.OwnerID) {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		writeJSON(w, http.StatusOK, toInvoiceResponse(inv))
	}
}

func listOwnerPaymentsHandler(svc *Service, ownersSvc *owners.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID := chi.URLParam(r, "ownerID")
		if !canReadOwnerBilling(r, ownersSvc, ownerID) {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		items, err := svc.ListPaymentsByOwner(r.Context(), ownerID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]paymentResponse, 0, len(items))
		for _, p := range items {
			out = append(out, toPaymentResponse(p, nil))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func listOwnerInvoicesHandler(svc *Service, ownersSvc *owners.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID := chi.URLParam(r, "ownerID")
		if !canReadOwnerBilling(r, ownersSvc, ownerID) {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		items, err := svc.ListInvoicesByOwner(r.Context(), ownerID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]invoiceResponse, 0, len(items))
		for _, inv := range items {
			out = append(out, toInvoiceResponse(inv))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func toPaymentResponse(p Payment, inv *Invoice) paymentResponse {
	resp := paymentResponse{
		ID:            p.ID,
		AppointmentID: p.AppointmentID,
		OwnerID:       p.OwnerID,
		AmountCents:   p.AmountCents,
		Method:        p.Method,
		Status:        p.Status,
		RegisteredBy:  p.RegisteredBy,
		CreatedAt:     p.CreatedAt,
	}
	if inv != nil {
		ir := toInvoiceResponse(*inv)
		resp.Invoice = &ir
	}
	return resp
}

func toInvoiceResponse(inv Invoice) invoiceResponse {
	return invoiceResponse{
		ID:          inv.ID,
		Number:      inv.Number(),
		PaymentID:   inv.PaymentID,
		OwnerID:     inv.OwnerID,
		AmountCents: inv.AmountCents,
		IssuedAt:    inv.IssuedAt,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
