package pets

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
	ErrInactive     = errors.New("pet is inactive")
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		now:  time.Now,
	}
}

type CreateInput struct {
	OwnerID     string
	Name        string
	Species     Species
	Breed       string
	Sex         Sex
	AgeYears    int
	WeightGrams *int64
	Notes       string
}

func (s *Service) Create(ctx context.Context, in CreateInput) (Pet, error) {
	in.OwnerID = strings.TrimSpace(in.OwnerID)
	in.Name = strings.TrimSpace(in.Name)

	if in.OwnerID == "" {
		return Pet{}, ErrInvalidInput
	}
	if len(in.Name) < 2 || len(in.Name) > 50 {
		return Pet{}, ErrInvalidInput
	}
	if !in.Species.Valid() {
		return Pet{}, ErrInvalidInput
	}
	if in.Sex != "" && in.Sex != SexMacho && in.Sex != SexHembra {
		return Pet{}, ErrInvalidInput
	}
	if in.AgeYears < 0 {
		return Pet{}, ErrInvalidInput
	}
	if in.WeightGrams != nil && *in.WeightGrams <= 0 {
		return Pet{}, ErrInvalidInput
	}

	now := s.now()
	p := Pet{
		ID:          uuid.NewString(),
		OwnerID:     in.OwnerID,
		Name:        in.Name,
		Species:     in.Species,
		Breed:       strings.TrimSpace(in.Breed),
		Sex:         in.Sex,
		AgeYears:    in.AgeYears,
		WeightGrams: in.WeightGrams,
		Notes:       strings.TrimSpace(in.Notes),
		Active:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return Pet{}, err
	}
	return p, nil
}

type UpdateInput struct {
	// Punteros para PATCH real: nil = no tocar.
	Name        *string
	Breed       *string
	AgeYears    *int
	WeightGrams *int64
	Notes       *string
}

func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (Pet, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Pet{}, ErrNotFound
	}

	if in.Name != nil {
		v := strings.TrimSpace(*in.Name)
		if len(v) < 2 || len(v) > 50 {
			return Pet{}, ErrInvalidInput
		}
		p.Name = v
	}
	if in.Breed != nil {
		p.Breed = strings.TrimSpace(*in.Breed)
	}
	if in.AgeYears != nil {
		if *in.AgeYears < 0 {
			return Pet{}, ErrInvalidInput
		}
		p.AgeYears = *in.AgeYears
	}
	if in.WeightGrams != nil {
		if *in.WeightGrams <= 0 {
			return Pet{}, ErrInvalidInput
		}
		p.WeightGrams = in.WeightGrams
	}
	if in.Notes != nil {
		p.Notes = strings.TrimSpace(*in.Notes)
	}

	p.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, p); err != nil {
		return Pet{}, err
	}
	return p, nil
}

// Transfer traspasa la mascota a otro propietario y deja constancia
// del movimiento.
func (s *Service) Transfer(ctx context.Context, petID, toOwnerID, reason string) (Pet, error) {
	toOwnerID = strings.TrimSpace(toOwnerID)
	if toOwnerID == "" {
		return Pet{}, ErrInvalidInput
	}

	p, err := s.repo.GetByID(ctx, petID)
	if err != nil {
		return Pet{}, ErrNotFound
	}
	if !p.Active {
		return Pet{}, ErrInactive
	}
	if p.OwnerID == toOwnerID {
		return Pet{}, ErrInvalidInput
	}

	now := s.now()
	t := Transfer{
		ID:          uuid.NewString(),
		PetID:       p.ID,
		FromOwnerID: p.OwnerID,
		ToOwnerID:   toOwnerID,
		Reason:      strings.TrimSpace(reason),
		CreatedAt:   now,
	}

	p.OwnerID = toOwnerID
	p.UpdatedAt = now

	if err := s.repo.Update(ctx, p); err != nil {
		return Pet{}, err
	}
	if err := s.repo.CreateTransfer(ctx, t); err != nil {
		return Pet{}, err
	}
	return p, nil
}

// Deactivate da de baja la mascota (no se borra: conserva historial).
func (s *Service) Deactivate(ctx context.Context, petID string) (Pet, error) {
	p, err := s.repo.GetByID(ctx, petID)
	if err != nil {
		return Pet{}, ErrNotFound
	}
	if !p.Active {
		return p, nil // idempotente
	}

	p.Active = false
	p.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, p); err != nil {
		return Pet{}, err
	}
	return p, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Pet, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListByOwner(ctx context.Context, ownerID string) ([]Pet, error) {
	return s.repo.ListByOwner(ctx, ownerID)
}

func (s *Service) ListTransfers(ctx context.Context, petID string) ([]Transfer, error) {
	return s.repo.ListTransfers(ctx, petID)
}
