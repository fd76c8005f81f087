package accounts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	// MaxFailedAttempts es el número de intentos fallidos consecutivos
	// antes de bloquear la cuenta.
	MaxFailedAttempts = 5

	// LockDuration es la duración del bloqueo temporal.
	LockDuration = 15 * time.Minute
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
	ErrLocked       = errors.New("account temporarily locked")
	ErrInactive     = errors.New("account disabled")
	ErrDuplicate    = errors.New("username or email already registered")
)

// CredentialsError indica credenciales inválidas e informa
// cuántos intentos acumula la cuenta.
type CredentialsError struct {
	Attempts int
}

func (e *CredentialsError) Error() string {
	return fmt.Sprintf("credenciales inválidas (intento %d/%d)", e.Attempts, MaxFailedAttempts)
}

type Service struct {
	repo     Repository
	validate *validator.Validate
	now      func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{
		repo:     repo,
		validate: validator.New(),
		now:      time.Now,
	}
}

type RegisterInput struct {
	Username string `validate:"required,min=3,max=50"`
	Email    string `validate:"required,email"`
	FullName string `validate:"required,min=3,max=100"`
	Password string `validate:"required,min=8,max=72"`
	Role     Role   `validate:"required"`
	Phone    string `validate:"omitempty,numeric,min=7,max=15"`
}

// Register crea un usuario con password hasheado (bcrypt).
func (s *Service) Register(ctx context.Context, in RegisterInput) (User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(strings.ToLower(in.Email))
	in.FullName = strings.TrimSpace(in.FullName)

	if err := s.validate.Struct(in); err != nil {
		return User{}, ErrInvalidInput
	}
	if !in.Role.Valid() {
		return User{}, ErrInvalidInput
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, err
	}

	now := s.now()
	u := User{
		ID:           uuid.NewString(),
		Username:     in.Username,
		Email:        in.Email,
		FullName:     in.FullName,
		PasswordHash: string(hash),
		Role:         in.Role,
		Phone:        strings.TrimSpace(in.Phone),
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Create(ctx, u); err != nil {
		return User{}, err
	}
	return u, nil
}

// IsLocked evalúa si la cuenta está bloqueada en este momento.
// Solo evalúa: un bloqueo vencido no se limpia aquí.
func (s *Service) IsLocked(u User) bool {
	if u.LockedUntil == nil {
		return false
	}
	return s.now().Before(*u.LockedUntil)
}

// RecordFailedAttempt registra un intento fallido de login.
// Al llegar a MaxFailedAttempts bloquea la cuenta por LockDuration.
func (s *Service) RecordFailedAttempt(ctx context.Context, userID string) (User, error) {
	u, err := s.repo.IncrementFailedAttempts(ctx, userID)
	if err != nil {
		return User{}, err
	}

	if u.FailedAttempts >= MaxFailedAttempts {
		until := s.now().Add(LockDuration)
		u.LockedUntil = &until
		u.UpdatedAt = s.now()
		if err := s.repo.Update(ctx, u); err != nil {
			return User{}, err
		}
	}
	return u, nil
}

// RecordSuccessfulLogin reinicia el contador y levanta cualquier bloqueo.
func (s *Service) RecordSuccessfulLogin(ctx context.Context, userID string) error {
	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	u.FailedAttempts = 0
	u.LockedUntil = nil
	u.UpdatedAt = s.now()
	return s.repo.Update(ctx, u)
}

// Unlock es el override administrativo: limpia bloqueo y contador
// sin importar el estado actual.
func (s *Service) Unlock(ctx context.Context, userID string) (User, error) {
	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return User{}, ErrNotFound
	}
	u.FailedAttempts = 0
	u.LockedUntil = nil
	u.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, u); err != nil {
		return User{}, err
	}
	return u, nil
}

// Authenticate ejecuta el flujo de login:
// cuenta bloqueada => ErrLocked sin evaluar credenciales;
// password incorrecto => registra el intento fallido;
// éxito => reinicia contador y devuelve el usuario.
func (s *Service) Authenticate(ctx context.Context, username, password string) (User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return User{}, ErrInvalidInput
	}

	u, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		return User{}, &CredentialsError{Attempts: 0}
	}

	if !u.Active {
		return User{}, ErrInactive
	}
	if s.IsLocked(u) {
		return User{}, ErrLocked
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		updated, ferr := s.RecordFailedAttempt(ctx, u.ID)
		if ferr != nil {
			return User{}, ferr
		}
		return User{}, &CredentialsError{Attempts: updated.FailedAttempts}
	}

	if err := s.RecordSuccessfulLogin(ctx, u.ID); err != nil {
		return User{}, err
	}
	u.FailedAttempts = 0
	u.LockedUntil = nil
	return u, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (User, error) {
	return s.repo.GetByID(ctx, id)
}
