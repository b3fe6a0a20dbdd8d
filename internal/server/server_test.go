package server

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

type echoRoute struct{}

func (echoRoute) Register(e *echo.Echo) {
	e.GET("/hello", func(c echo.Context) error {
		return c.String(http.StatusOK, "hi")
	})
}

func TestNewServerDefaults(t *testing.T) {
	t.Parallel()
	srv := NewServer(slog.New(slog.NewTextHandler(io.Discard, nil)), "", nil, echoRoute{}, nil)
	if srv.Addr() != DefaultAddr {
		t.Fatalf("expected default addr, got %q", srv.Addr())
	}

	req := httptest.NewRequest(http.MethodGet, "/hello", nil)
	req.Header.Set(echo.HeaderOrigin, "https://example.com")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got := rec.Header().Get(echo.HeaderAccessControlAllowOrigin); got != "*" {
		t.Fatalf("expected wildcard CORS origin, got %q", got)
	}
}

func TestNewServerRestrictedOrigins(t *testing.T) {
	t.Parallel()
	srv := NewServer(slog.New(slog.NewTextHandler(io.Discard, nil)), ":9999", []string{"https://allowed.test"}, echoRoute{})

	req := httptest.NewRequest(http.MethodGet, "/hello", nil)
	req.Header.Set(echo.HeaderOrigin, "https://other.test")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	if got := rec.Header().Get(echo.HeaderAccessControlAllowOrigin); got != "" {
		t.Fatalf("expected no CORS header for unlisted origin, got %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/hello", nil)
	req.Header.Set(echo.HeaderOrigin, "https://allowed.test")
	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	if got := rec.Header().Get(echo.HeaderAccessControlAllowOrigin); got != "https://allowed.test" {
		t.Fatalf("expected allowed origin echoed, got %q", got)
	}
}

func TestUnknownRouteIs404(t *testing.T) {
	t.Parallel()
	srv := NewServer(slog.New(slog.NewTextHandler(io.Discard, nil)), "", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
