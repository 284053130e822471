package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/connectly/support-api/internal/api/middleware"
	"github.com/connectly/support-api/internal/core/domain"
)

// ctxClaims extracts the claims injected by the Auth middleware. Missing
// claims mean the route was mounted without Auth; reject with 401.
func ctxClaims(c echo.Context) (*domain.Claims, error) {
	claims, ok := middleware.ClaimsFrom(c)
	if !ok || claims.ID == "" {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, middleware.MsgTokenRequired)
	}
	return claims, nil
}
