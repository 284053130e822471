package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/connectly/support-api/internal/api/middleware"
	"github.com/connectly/support-api/internal/core/domain"
)

// Client-facing messages.
const (
	MsgCredentialsRequired = "Email and password are required"
	MsgInvalidBody         = "Invalid request body"
	MsgUserExists          = "User with this email already exists"
	MsgInvalidCredentials  = "Invalid email or password"
	MsgUserNotFound        = "User not found"
	MsgForbidden           = "Access forbidden"
	MsgRegisterFailed      = "Failed to register user"
	MsgLoginFailed         = "Failed to login"
	MsgProfileFailed       = "Failed to fetch profile"
	MsgUsersFailed         = "Failed to fetch users"
	MsgChatsFailed         = "Failed to fetch chats"
	MsgMessagesFailed      = "Failed to fetch messages"
	MsgSendFailed          = "Failed to send message"
)

// HTTPError maps err to an *echo.HTTPError. Known domain errors get their
// status and a fixed message; anything else becomes a 500 carrying fallback
// with err attached as the internal cause.
func HTTPError(err error, fallback string) *echo.HTTPError {
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		return echo.NewHTTPError(http.StatusBadRequest, ve.Message)
	case errors.Is(err, domain.ErrInvalidInput):
		return echo.NewHTTPError(http.StatusBadRequest, MsgInvalidBody)
	case errors.Is(err, domain.ErrUserExists):
		return echo.NewHTTPError(http.StatusConflict, MsgUserExists)
	case errors.Is(err, domain.ErrInvalidCredentials):
		return echo.NewHTTPError(http.StatusUnauthorized, MsgInvalidCredentials)
	case errors.Is(err, domain.ErrMissingToken):
		return echo.NewHTTPError(http.StatusUnauthorized, middleware.MsgTokenRequired)
	case errors.Is(err, domain.ErrInvalidToken):
		return echo.NewHTTPError(http.StatusForbidden, middleware.MsgTokenInvalid)
	case errors.Is(err, domain.ErrForbidden):
		return echo.NewHTTPError(http.StatusForbidden, MsgForbidden)
	case errors.Is(err, domain.ErrUserNotFound):
		return echo.NewHTTPError(http.StatusNotFound, MsgUserNotFound)
	}
	return echo.NewHTTPError(http.StatusInternalServerError, fallback).SetInternal(err)
}
