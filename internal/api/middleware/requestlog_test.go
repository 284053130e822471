package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
)

func TestRequestLogger_OmitsHeaders(t *testing.T) {
	var buf bytes.Buffer
	e := echo.New()
	e.Use(echomiddleware.RequestID())
	e.Use(RequestLogger(zerolog.New(&buf)))
	e.GET("/chats", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/chats?x=1", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer secret-token")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected one JSON log line, got %q", buf.String())
	}
	if entry["path"] != "/chats" || entry["status"] != float64(200) || entry["method"] != http.MethodGet {
		t.Fatalf("unexpected entry %v", entry)
	}
	if entry["request_id"] == "" {
		t.Fatalf("expected request id")
	}
	if strings.Contains(buf.String(), "secret-token") {
		t.Fatalf("authorization header leaked into logs")
	}
}
