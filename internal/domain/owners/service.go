package owners

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
	ErrDuplicate    = errors.New("documento or email already registered")
)

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

type CreateInput struct {
	UserID    string `validate:"omitempty"`
	FullName  string `validate:"required,min=3,max=100"`
	Documento string `validate:"required,min=5,max=20"`
	Phone     string `validate:"required,numeric,min=7,max=15"`
	Email     string `validate:"required,email"`
	Address   string `validate:"omitempty,max=200"`
}

func (s *Service) Create(ctx context.Context, in CreateInput) (Owner, error) {
	in.FullName = strings.TrimSpace(in.FullName)
	in.Documento = strings.TrimSpace(in.Documento)
	in.Email = strings.TrimSpace(strings.ToLower(in.Email))

	if err := s.validate.Struct(in); err != nil {
		return Owner{}, ErrInvalidInput
	}

	// Documento único: lo chequea también la base, pero devolvemos
	// un error claro en el caso común.
	if _, err := s.repo.GetByDocumento(ctx, in.Documento); err == nil {
		return Owner{}, ErrDuplicate
	}

	now := s.now()
	o := Owner{
		ID:        uuid.NewString(),
		UserID:    strings.TrimSpace(in.UserID),
		FullName:  in.FullName,
		Documento: in.Documento,
		Phone:     strings.TrimSpace(in.Phone),
		Email:     in.Email,
		Address:   strings.TrimSpace(in.Address),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, o); err != nil {
		return Owner{}, err
	}
	return o, nil
}

type UpdateInput struct {
	// Punteros para PATCH real: nil = no tocar.
	FullName *string
	Phone    *string
	Email    *string
	Address  *string
}

func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (Owner, error) {
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Owner{}, ErrNotFound
	}

	if in.FullName != nil {
		v := strings.TrimSpace(*in.FullName)
		if len(v) < 3 || len(v) > 100 {
			return Owner{}, ErrInvalidInput
		}
		o.FullName = v
	}
	if in.Phone != nil {
		v := strings.TrimSpace(*in.Phone)
		if err := s.validate.Var(v, "required,numeric,min=7,max=15"); err != nil {
			return Owner{}, ErrInvalidInput
		}
		o.Phone = v
	}
	if in.Email != nil {
		v := strings.TrimSpace(strings.ToLower(*in.Email))
		if err := s.validate.Var(v, "required,email"); err != nil {
			return Owner{}, ErrInvalidInput
		}
		o.Email = v
	}
	if in.Address != nil {
		o.Address = strings.TrimSpace(*in.Address)
	}

	o.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, o); err != nil {
		return Owner{}, err
	}
	return o, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Owner, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) GetByUserID(ctx context.Context, userID string) (Owner, error) {
	return s.repo.GetByUserID(ctx, userID)
}

func (s *Service) List(ctx context.Context) ([]Owner, error) {
	return s.repo.List(ctx)
}
