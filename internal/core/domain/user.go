package domain

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
	"strings"
	"time"
	"unicode"
)

const (
	RoleAgent = "agent"
	RoleAdmin = "admin"
)

// DefaultRole is assigned when a registration does not ask for one.
const DefaultRole = RoleAgent

const (
	MaxEmailLength    = 254
	MinPasswordLength = 8
	MaxPasswordLength = 128
)

// User models an agent or administrator of the support desk.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Identity is the subset of a User embedded in session tokens.
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// Identity returns the token identity of u.
func (u *User) Identity() Identity {
	return Identity{ID: u.ID, Email: u.Email, Role: u.Role}
}

// Claims is a verified token payload. IssuedAt and ExpiresAt are unix seconds.
type Claims struct {
	Identity
	IssuedAt  int64 `json:"iat"`
	ExpiresAt int64 `json:"exp"`
}

// IsValidRole reports whether role may be stored on a User.
func IsValidRole(role string) bool {
	return role == RoleAgent || role == RoleAdmin
}

// NormalizeEmail trims and lower-cases an address so lookups are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

const idAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// NewUserID returns an id of the form user_<unix millis>_<9 base36 chars>.
func NewUserID(now time.Time) (string, error) {
	return newUserID(now, rand.Reader)
}

func newUserID(now time.Time, random io.Reader) (string, error) {
	var b strings.Builder
	max := big.NewInt(int64(len(idAlphabet)))
	for i := 0; i < 9; i++ {
		n, err := rand.Int(random, max)
		if err != nil {
			return "", fmt.Errorf("user id: %w", err)
		}
		b.WriteByte(idAlphabet[n.Int64()])
	}
	return fmt.Sprintf("user_%d_%s", now.UnixMilli(), b.String()), nil
}

// CheckPasswordStrength returns a user-facing reason when password does not
// meet the composition rules, or "" when it does.
func CheckPasswordStrength(password string) string {
	n := len([]rune(password))
	if n < MinPasswordLength {
		return fmt.Sprintf("password must be at least %d characters long", MinPasswordLength)
	}
	if n > MaxPasswordLength {
		return fmt.Sprintf("password must be at most %d characters long", MaxPasswordLength)
	}

	var upper, lower, digit, special bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			special = true
		}
	}
	if !upper || !lower || !digit || !special {
		return "password must contain an uppercase letter, a lowercase letter, a digit and a special character"
	}
	return ""
}
