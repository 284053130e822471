package ports

import (
	"context"

	"github.com/connectly/support-api/internal/core/domain"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	// Create stores user only if no user with the same email exists. The
	// check and the write are a single atomic step; a duplicate yields
	// domain.ErrUserExists.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	// FindByEmail expects an already normalized address.
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	// List returns every user. Order is unspecified.
	List(ctx context.Context) ([]*domain.User, error)
}
