package accounts

import "context"

type Repository interface {
	Create(ctx context.Context, u User) error
	Update(ctx context.Context, u User) error
	GetByID(ctx context.Context, id string) (User, error)
	GetByUsername(ctx context.Context, username string) (User, error)

	// IncrementFailedAttempts incrementa el contador en forma atómica
	// (read-modify-write serializado por fila) y devuelve el usuario actualizado.
	IncrementFailedAttempts(ctx context.Context, id string) (User, error)
}
