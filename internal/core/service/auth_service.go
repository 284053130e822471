package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/rs/zerolog"

	"github.com/connectly/support-api/internal/core/domain"
	"github.com/connectly/support-api/internal/core/ports"
)

// AuthService implements registration, login and account lookups.
type AuthService struct {
	repo   ports.UserRepository
	tokens ports.TokenService
	hasher *PasswordHasher
	log    zerolog.Logger
	now    func() time.Time
}

func NewAuthService(repo ports.UserRepository, tokens ports.TokenService, hasher *PasswordHasher, log zerolog.Logger) *AuthService {
	if hasher == nil {
		hasher = NewPasswordHasher(DefaultPasswordCost)
	}
	return &AuthService{repo: repo, tokens: tokens, hasher: hasher, log: log, now: time.Now}
}

func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*ports.AuthResult, error) {
	email := domain.NormalizeEmail(in.Email)
	if email == "" || in.Password == "" {
		return nil, domain.NewValidationError("", "Email and password are required")
	}
	if reason := domain.CheckPasswordStrength(in.Password); reason != "" {
		return nil, domain.NewValidationError("password", reason)
	}

	role := in.Role
	if role == "" {
		role = domain.DefaultRole
	}
	if !domain.IsValidRole(role) {
		return nil, domain.NewValidationError("role", "role must be one of: agent admin")
	}

	// Early exit avoids a bcrypt round for obvious duplicates; the insert
	// below is still the authority.
	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		return nil, domain.ErrUserExists
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, fmt.Errorf("register: lookup: %w", err)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("register: hash password: %w", err)
	}

	now := s.now().UTC()
	id, err := domain.NewUserID(now)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	created, err := s.repo.Create(ctx, &domain.User{
		ID:           id,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		if errors.Is(err, domain.ErrUserExists) {
			return nil, domain.ErrUserExists
		}
		return nil, fmt.Errorf("register: create user: %w", err)
	}

	token, err := s.tokens.Issue(created.Identity())
	if err != nil {
		return nil, fmt.Errorf("register: issue token: %w", err)
	}

	s.log.Info().Str("user_id", created.ID).Str("role", created.Role).Msg("user registered")
	return &ports.AuthResult{User: created, Token: token}, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*ports.AuthResult, error) {
	email = domain.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, domain.NewValidationError("", "Email and password are required")
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			s.hasher.VerifyUnknown(password)
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("login: lookup: %w", err)
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, domain.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.Identity())
	if err != nil {
		return nil, fmt.Errorf("login: issue token: %w", err)
	}

	s.log.Debug().Str("user_id", user.ID).Msg("user logged in")
	return &ports.AuthResult{User: user, Token: token}, nil
}

// Profile loads the account behind a verified token. A deleted account yields
// domain.ErrUserNotFound even though the token is still valid.
func (s *AuthService) Profile(ctx context.Context, userID string) (*domain.User, error) {
	if userID == "" {
		return nil, domain.ErrUserNotFound
	}
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("profile: %w", err)
	}
	return user, nil
}

func (s *AuthService) ListUsers(ctx context.Context) ([]*domain.User, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	slices.SortStableFunc(users, func(a, b *domain.User) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return users, nil
}
