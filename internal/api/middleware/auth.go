package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/connectly/support-api/internal/core/domain"
)

// Context keys set by Auth.
const (
	ClaimsKey = "claims"
	UserIDKey = "user_id"
	RoleKey   = "role"
)

// Client-facing messages of the auth chain.
const (
	MsgTokenRequired = "Access token required"
	MsgTokenInvalid  = "Invalid or expired token"
	MsgAdminRequired = "Admin access required"
)

// TokenVerifier checks a bearer token and returns its claims.
type TokenVerifier interface {
	Verify(token string) (*domain.Claims, error)
}

// Auth requires a valid bearer token. A missing or malformed Authorization
// header is rejected with 401, a token that fails verification with 403.
func Auth(verifier TokenVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := ExtractToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if token == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, MsgTokenRequired)
			}

			claims, err := verifier.Verify(token)
			if err != nil {
				if errors.Is(err, domain.ErrMissingToken) {
					return echo.NewHTTPError(http.StatusUnauthorized, MsgTokenRequired)
				}
				return echo.NewHTTPError(http.StatusForbidden, MsgTokenInvalid)
			}

			c.Set(ClaimsKey, claims)
			c.Set(UserIDKey, claims.ID)
			c.Set(RoleKey, claims.Role)

			return next(c)
		}
	}
}

// ExtractToken returns the token of a "Bearer <token>" header value, or ""
// when the header is absent or uses another scheme.
func ExtractToken(header string) string {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// ClaimsFrom returns the claims attached by Auth, if any.
func ClaimsFrom(c echo.Context) (*domain.Claims, bool) {
	claims, ok := c.Get(ClaimsKey).(*domain.Claims)
	return claims, ok && claims != nil
}
