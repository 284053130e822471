package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/connectly/support-api/internal/api/metrics"
	"github.com/connectly/support-api/internal/core/ports"
)

type AuthHandler struct {
	authService ports.AuthService
}

func NewAuthHandler(authService ports.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Register creates a new user account and returns a session token.
//
// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "User registration details"
// @Success      201   {object}  authResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      409   {object}  ErrorResponse
// @Failure      429   {object}  ErrorResponse
// @Failure      500   {object}  ErrorResponse
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return h.reject("register", echo.NewHTTPError(http.StatusBadRequest, MsgInvalidBody))
	}

	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		return h.reject("register", echo.NewHTTPError(http.StatusBadRequest, MsgCredentialsRequired))
	}
	if err := c.Validate(&req); err != nil {
		return h.reject("register", HTTPError(err, MsgRegisterFailed))
	}

	res, err := h.authService.Register(c.Request().Context(), ports.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		return h.reject("register", HTTPError(err, MsgRegisterFailed))
	}

	metrics.AuthAttemptsTotal.WithLabelValues("register", metrics.ResultSuccess).Inc()
	return c.JSON(http.StatusCreated, authResponse{
		Message: "User registered successfully",
		User:    toUserResponse(res.User),
		Token:   res.Token,
	})
}

// Login authenticates a user and returns a session token.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  authResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      401   {object}  ErrorResponse
// @Failure      429   {object}  ErrorResponse
// @Failure      500   {object}  ErrorResponse
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return h.reject("login", echo.NewHTTPError(http.StatusBadRequest, MsgInvalidBody))
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return h.reject("login", echo.NewHTTPError(http.StatusBadRequest, MsgCredentialsRequired))
	}

	res, err := h.authService.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return h.reject("login", HTTPError(err, MsgLoginFailed))
	}

	metrics.AuthAttemptsTotal.WithLabelValues("login", metrics.ResultSuccess).Inc()
	return c.JSON(http.StatusOK, authResponse{
		Message: "Login successful",
		User:    toUserResponse(res.User),
		Token:   res.Token,
	})
}

// Profile returns the account behind the presented token.
//
// @Summary      Current user profile
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  profileResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /auth/profile [get]
func (h *AuthHandler) Profile(c echo.Context) error {
	claims, err := ctxClaims(c)
	if err != nil {
		return err
	}

	user, err := h.authService.Profile(c.Request().Context(), claims.ID)
	if err != nil {
		return HTTPError(err, MsgProfileFailed)
	}
	return c.JSON(http.StatusOK, profileResponse{User: toProfileUser(user)})
}

// Verify echoes the claims of a valid token.
//
// @Summary      Verify a session token
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  verifyResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Router       /auth/verify [post]
func (h *AuthHandler) Verify(c echo.Context) error {
	claims, err := ctxClaims(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, verifyResponse{
		Valid: true,
		User: verifyUser{
			ID:    claims.ID,
			Email: claims.Email,
			Role:  claims.Role,
			Iat:   claims.IssuedAt,
			Exp:   claims.ExpiresAt,
		},
	})
}

// ListUsers returns every account, newest first. Admin only.
//
// @Summary      List users
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  usersResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /auth/users [get]
func (h *AuthHandler) ListUsers(c echo.Context) error {
	users, err := h.authService.ListUsers(c.Request().Context())
	if err != nil {
		return HTTPError(err, MsgUsersFailed)
	}

	out := make([]profileUser, 0, len(users))
	for _, u := range users {
		out = append(out, toProfileUser(u))
	}
	return c.JSON(http.StatusOK, usersResponse{Count: len(out), Users: out})
}

// reject records a failed register or login attempt and returns he.
func (h *AuthHandler) reject(operation string, he *echo.HTTPError) error {
	result := metrics.ResultRejected
	if he.Code >= http.StatusInternalServerError {
		result = metrics.ResultFailure
	}
	metrics.AuthAttemptsTotal.WithLabelValues(operation, result).Inc()
	return he
}
