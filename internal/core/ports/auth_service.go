package ports

import (
	"context"

	"github.com/connectly/support-api/internal/core/domain"
)

// RegisterInput carries the registration form. Role may be empty.
type RegisterInput struct {
	Email    string
	Password string
	Role     string
}

// AuthResult is returned by a successful registration or login.
type AuthResult struct {
	User  *domain.User
	Token string
}

type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	Profile(ctx context.Context, userID string) (*domain.User, error)
	// ListUsers returns all users, newest first.
	ListUsers(ctx context.Context) ([]*domain.User, error)
}

// TokenService issues and verifies session tokens.
type TokenService interface {
	Issue(identity domain.Identity) (string, error)
	Verify(token string) (*domain.Claims, error)
}
