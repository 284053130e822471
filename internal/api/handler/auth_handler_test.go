package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/connectly/support-api/internal/api/middleware"
	"github.com/connectly/support-api/internal/core/domain"
	"github.com/connectly/support-api/internal/core/ports"
)

type stubAuthService struct {
	registerFn  func(ctx context.Context, in ports.RegisterInput) (*ports.AuthResult, error)
	loginFn     func(ctx context.Context, email, password string) (*ports.AuthResult, error)
	profileFn   func(ctx context.Context, userID string) (*domain.User, error)
	listUsersFn func(ctx context.Context) ([]*domain.User, error)
}

func (s *stubAuthService) Register(ctx context.Context, in ports.RegisterInput) (*ports.AuthResult, error) {
	return s.registerFn(ctx, in)
}

func (s *stubAuthService) Login(ctx context.Context, email, password string) (*ports.AuthResult, error) {
	return s.loginFn(ctx, email, password)
}

func (s *stubAuthService) Profile(ctx context.Context, userID string) (*domain.User, error) {
	return s.profileFn(ctx, userID)
}

func (s *stubAuthService) ListUsers(ctx context.Context) ([]*domain.User, error) {
	return s.listUsersFn(ctx)
}

func newTestEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

func jsonRequest(e *echo.Echo, method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func expectHTTPError(t *testing.T, err error, code int, msg string) {
	t.Helper()
	var he *echo.HTTPError
	if !errors.As(err, &he) {
		t.Fatalf("expected *echo.HTTPError, got %v", err)
	}
	if he.Code != code {
		t.Fatalf("expected %d, got %d (%v)", code, he.Code, he.Message)
	}
	if msg != "" && he.Message != msg {
		t.Fatalf("expected message %q, got %v", msg, he.Message)
	}
}

func withClaims(c echo.Context, claims *domain.Claims) {
	c.Set(middleware.ClaimsKey, claims)
	c.Set(middleware.UserIDKey, claims.ID)
	c.Set(middleware.RoleKey, claims.Role)
}

func TestAuthHandler_Register_Success(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{
		registerFn: func(_ context.Context, in ports.RegisterInput) (*ports.AuthResult, error) {
			if in.Email != "alice@example.com" || in.Role != "" {
				t.Fatalf("unexpected input: %+v", in)
			}
			return &ports.AuthResult{
				User:  &domain.User{ID: "user_1", Email: in.Email, Role: domain.RoleAgent, PasswordHash: "$2a$hash"},
				Token: "tok",
			}, nil
		},
	}
	h := NewAuthHandler(stub)

	c, rec := jsonRequest(e, http.MethodPost, "/auth/register", `{"email":" alice@example.com ","password":"Str0ng!pass"}`)
	if err := h.Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["message"] != "User registered successfully" || resp["token"] != "tok" {
		t.Fatalf("unexpected payload: %+v", resp)
	}
	user, ok := resp["user"].(map[string]any)
	if !ok || user["id"] != "user_1" || user["role"] != "agent" {
		t.Fatalf("unexpected user payload: %+v", resp["user"])
	}
	if strings.Contains(rec.Body.String(), "hash") {
		t.Fatalf("password hash leaked: %s", rec.Body.String())
	}
}

func TestAuthHandler_Register_Validation(t *testing.T) {
	e := newTestEcho()
	h := NewAuthHandler(&stubAuthService{
		registerFn: func(context.Context, ports.RegisterInput) (*ports.AuthResult, error) {
			t.Fatalf("service must not be called")
			return nil, nil
		},
	})

	cases := []struct {
		name string
		body string
		msg  string
	}{
		{"missing password", `{"email":"a@example.com"}`, MsgCredentialsRequired},
		{"missing email", `{"password":"Str0ng!pass"}`, MsgCredentialsRequired},
		{"bad email", `{"email":"not-an-email","password":"Str0ng!pass"}`, "email must be a valid email"},
		{"weak password", `{"email":"a@example.com","password":"password1"}`, domain.CheckPasswordStrength("password1")},
		{"bad role", `{"email":"a@example.com","password":"Str0ng!pass","role":"supervisor"}`, "role must be one of: agent admin"},
		{"bad json", `{"email":`, MsgInvalidBody},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, _ := jsonRequest(e, http.MethodPost, "/auth/register", tc.body)
			expectHTTPError(t, h.Register(c), http.StatusBadRequest, tc.msg)
		})
	}
}

func TestAuthHandler_Register_UserExists(t *testing.T) {
	e := newTestEcho()
	h := NewAuthHandler(&stubAuthService{
		registerFn: func(context.Context, ports.RegisterInput) (*ports.AuthResult, error) {
			return nil, domain.ErrUserExists
		},
	})

	c, _ := jsonRequest(e, http.MethodPost, "/auth/register", `{"email":"bob@example.com","password":"Str0ng!pass"}`)
	expectHTTPError(t, h.Register(c), http.StatusConflict, MsgUserExists)
}

func TestAuthHandler_Register_StoreFailure(t *testing.T) {
	e := newTestEcho()
	cause := errors.New("connection refused")
	h := NewAuthHandler(&stubAuthService{
		registerFn: func(context.Context, ports.RegisterInput) (*ports.AuthResult, error) {
			return nil, cause
		},
	})

	c, _ := jsonRequest(e, http.MethodPost, "/auth/register", `{"email":"bob@example.com","password":"Str0ng!pass"}`)
	err := h.Register(c)
	expectHTTPError(t, err, http.StatusInternalServerError, MsgRegisterFailed)
	if !errors.Is(err, cause) {
		t.Fatalf("expected internal cause to be attached")
	}
}

func TestAuthHandler_Login(t *testing.T) {
	e := newTestEcho()
	h := NewAuthHandler(&stubAuthService{
		loginFn: func(_ context.Context, email, password string) (*ports.AuthResult, error) {
			if email == "carol@example.com" && password == "S3cret!pass" {
				return &ports.AuthResult{User: &domain.User{ID: "user_3", Email: email, Role: domain.RoleAdmin}, Token: "tok"}, nil
			}
			return nil, domain.ErrInvalidCredentials
		},
	})

	c, rec := jsonRequest(e, http.MethodPost, "/auth/login", `{"email":"carol@example.com","password":"S3cret!pass"}`)
	if err := h.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	var resp map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if rec.Code != http.StatusOK || resp["message"] != "Login successful" || resp["token"] != "tok" {
		t.Fatalf("unexpected response %d %+v", rec.Code, resp)
	}

	c, _ = jsonRequest(e, http.MethodPost, "/auth/login", `{"email":"carol@example.com","password":"wrong"}`)
	expectHTTPError(t, h.Login(c), http.StatusUnauthorized, MsgInvalidCredentials)

	c, _ = jsonRequest(e, http.MethodPost, "/auth/login", `{"email":"carol@example.com"}`)
	expectHTTPError(t, h.Login(c), http.StatusBadRequest, MsgCredentialsRequired)
}

func TestAuthHandler_Profile(t *testing.T) {
	e := newTestEcho()
	created := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	h := NewAuthHandler(&stubAuthService{
		profileFn: func(_ context.Context, id string) (*domain.User, error) {
			if id == "user_1" {
				return &domain.User{ID: id, Email: "a@example.com", Role: domain.RoleAgent, CreatedAt: created}, nil
			}
			return nil, domain.ErrUserNotFound
		},
	})

	c, rec := jsonRequest(e, http.MethodGet, "/auth/profile", "")
	withClaims(c, &domain.Claims{Identity: domain.Identity{ID: "user_1", Role: domain.RoleAgent}})
	if err := h.Profile(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	var resp profileResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.User.Email != "a@example.com" || resp.User.CreatedAt != "2025-01-02T03:04:05.000Z" {
		t.Fatalf("unexpected profile %+v", resp)
	}

	c, _ = jsonRequest(e, http.MethodGet, "/auth/profile", "")
	withClaims(c, &domain.Claims{Identity: domain.Identity{ID: "user_gone", Role: domain.RoleAgent}})
	expectHTTPError(t, h.Profile(c), http.StatusNotFound, MsgUserNotFound)

	c, _ = jsonRequest(e, http.MethodGet, "/auth/profile", "")
	expectHTTPError(t, h.Profile(c), http.StatusUnauthorized, "")
}

func TestAuthHandler_Verify(t *testing.T) {
	e := newTestEcho()
	h := NewAuthHandler(&stubAuthService{})

	c, rec := jsonRequest(e, http.MethodPost, "/auth/verify", "")
	withClaims(c, &domain.Claims{
		Identity:  domain.Identity{ID: "user_1", Email: "a@example.com", Role: domain.RoleAgent},
		IssuedAt:  100,
		ExpiresAt: 200,
	})
	if err := h.Verify(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp verifyResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if !resp.Valid || resp.User.ID != "user_1" || resp.User.Iat != 100 || resp.User.Exp != 200 {
		t.Fatalf("unexpected verify response %+v", resp)
	}
}

func TestAuthHandler_ListUsers(t *testing.T) {
	e := newTestEcho()
	h := NewAuthHandler(&stubAuthService{
		listUsersFn: func(context.Context) ([]*domain.User, error) {
			return []*domain.User{
				{ID: "user_2", Email: "b@example.com", Role: domain.RoleAdmin},
				{ID: "user_1", Email: "a@example.com", Role: domain.RoleAgent},
			}, nil
		},
	})

	c, rec := jsonRequest(e, http.MethodGet, "/auth/users", "")
	if err := h.ListUsers(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	var resp usersResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.Count != 2 || resp.Users[0].ID != "user_2" {
		t.Fatalf("unexpected users response %+v", resp)
	}

	h = NewAuthHandler(&stubAuthService{
		listUsersFn: func(context.Context) ([]*domain.User, error) { return nil, errors.New("scan failed") },
	})
	c, _ = jsonRequest(e, http.MethodGet, "/auth/users", "")
	expectHTTPError(t, h.ListUsers(c), http.StatusInternalServerError, MsgUsersFailed)
}
