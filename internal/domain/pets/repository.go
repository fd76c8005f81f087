package pets

import "context"

type Repository interface {
	Create(ctx context.Context, p Pet) error
	Update(ctx context.Context, p Pet) error
	GetByID(ctx context.Context, id string) (Pet, error)
	ListByOwner(ctx context.Context, ownerID string) ([]Pet, error)

	CreateTransfer(ctx context.Context, t Transfer) error
	ListTransfers(ctx context.Context, petID string) ([]Transfer, error)
}
