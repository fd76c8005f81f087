package accounts

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"vet-clinic/internal/middleware"

	"github.com/go-chi/chi/v5"
)

// TokenIssuer emite el token de sesión tras un login exitoso.
type TokenIssuer interface {
	Issue(userID, email, role string) (string, error)
}

func RegisterRoutes(r chi.Router, svc *Service, issuer TokenIssuer, loginMW func(http.Handler) http.Handler) {
	r.Route("/auth", func(ar chi.Router) {
		if loginMW != nil {
			ar.With(loginMW).Post("/login", loginHandler(svc, issuer))
		} else {
			ar.Post("/login", loginHandler(svc, issuer))
		}

		ar.Post("/users", registerUserHandler(svc))
		ar.Post("/users/{userID}/unlock", unlockHandler(svc))
	})
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string       `json:"token,omitempty"`
	User  userResponse `json:"user"`
}

type userResponse struct {
	ID             string     `json:"id"`
	Username       string     `json:"username"`
	Email          string     `json:"email"`
	FullName       string     `json:"full_name"`
	Role           Role       `json:"role"`
	Active         bool       `json:"active"`
	FailedAttempts int        `json:"failed_attempts"`
	LockedUntil    *time.Time `json:"locked_until,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

type registerUserRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Password string `json:"password"`
	Role     string `json:"role"`
	Phone    string `json:"phone"`
}

// loginHandler godoc
// @Summary Iniciar sesión
// @Description Autentica username/password. Tras 5 intentos fallidos consecutivos la cuenta se bloquea por 15 minutos.
// @Tags auth
// @Accept json
// @Produce json
// @Param payload body loginRequest true "Credenciales"
// @Success 200 {object} loginResponse
// @Failure 401 {string} string "credenciales inválidas"
// @Failure 403 {string} string "cuenta bloqueada o inactiva"
// @Failure 429 {string} string "rate limit"
// @Router /auth/login [post]
func loginHandler(svc *Service, issuer TokenIssuer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		u, err := svc.Authenticate(r.Context(), req.Username, req.Password)
		if err != nil {
			var credErr *CredentialsError
			switch {
			case errors.As(err, &credErr):
				http.Error(w, credErr.Error(), http.StatusUnauthorized)
			case errors.Is(err, ErrLocked):
				http.Error(w, "cuenta bloqueada temporalmente", http.StatusForbidden)
			case errors.Is(err, ErrInactive):
				http.Error(w, "cuenta inactiva", http.StatusForbidden)
			case errors.Is(err, ErrInvalidInput):
				http.Error(w, "username and password required", http.StatusBadRequest)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		resp := loginResponse{User: toUserResponse(u)}
		if issuer != nil {
			tok, err := issuer.Issue(u.ID, u.Email, string(u.Role))
			if err != nil {
				http.Error(w, "internal error", http.StatusInternalServerError)
				return
			}
			resp.Token = tok
		}

		writeJSON(w, http.StatusOK, resp)
	}
}

// registerUserHandler godoc
// @Summary Registrar usuario
// @Description Crea un usuario del sistema. Requiere capacidad users:manage (ADMIN).
// @Tags auth
// @Accept json
// @Produce json
// @Param payload body registerUserRequest true "Datos del usuario"
// @Success 201 {object} userResponse
// @Failure 400 {string} string "datos inválidos"
// @Failure 403 {string} string "forbidden"
// @Router /auth/users [post]
func registerUserHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		if !Role(claims.Role).Can(CapManageUsers) {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		var req registerUserRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		u, err := svc.Register(r.Context(), RegisterInput{
			Username: req.Username,
			Email:    req.Email,
			FullName: req.FullName,
			Password: req.Password,
			Role:     Role(req.Role),
			Phone:    req.Phone,
		})
		if err != nil {
			switch {
			case errors.Is(err, ErrInvalidInput):
				http.Error(w, err.Error(), http.StatusBadRequest)
			case errors.Is(err, ErrDuplicate):
				http.Error(w, err.Error(), http.StatusConflict)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		writeJSON(w, http.StatusCreated, toUserResponse(u))
	}
}

// unlockHandler godoc
// @Summary Desbloquear cuenta
// @Description Override administrativo: limpia el bloqueo y el contador de intentos.
// @Tags auth
// @Produce json
// @Param userID path string true "ID del usuario"
// @Success 200 {object} userResponse
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "not found"
// @Router /auth/users/{userID}/unlock [post]
func unlockHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		if !Role(claims.Role).Can(CapManageUsers) {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		u, err := svc.Unlock(r.Context(), chi.URLParam(r, "userID"))
		if err != nil {
			http.Error(w, "user not found", http.StatusNotFound)
			return
		}

		writeJSON(w, http.StatusOK, toUserResponse(u))
	}
}

func toUserResponse(u User) userResponse {
	return userResponse{
		ID:             u.ID,
		Username:       u.Username,
		Email:          u.Email,
		FullName:       u.FullName,
		Role:           u.Role,
		Active:         u.Active,
		FailedAttempts: u.FailedAttempts,
		LockedUntil:    u.LockedUntil,
		CreatedAt:      u.CreatedAt,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
