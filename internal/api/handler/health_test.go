package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/identity-service/internal/core/ports"
)

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestHealthHandler_Liveness(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	if err := NewHealthHandler().Liveness(e.NewContext(httptest.NewRequest(http.MethodGet, "/health", nil), rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestHealthDependenciesHandler_Readiness(t *testing.T) {
	ok := pingerFunc(func(context.Context) error { return nil })
	down := pingerFunc(func(context.Context) error { return errors.New("connection refused") })

	cases := map[string]struct {
		deps   map[string]ports.Pinger
		status int
		state  string
	}{
		"all up":         {map[string]ports.Pinger{"store": ok, "cache": ok}, http.StatusOK, "ok"},
		"cache down":     {map[string]ports.Pinger{"store": ok, "cache": down}, http.StatusServiceUnavailable, "degraded"},
		"nil skipped":    {map[string]ports.Pinger{"store": ok, "cache": nil}, http.StatusOK, "ok"},
		"no deps at all": {nil, http.StatusOK, "ok"},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			e := echo.New()
			rec := httptest.NewRecorder()
			h := NewHealthDependenciesHandler(tc.deps)
			if err := h.Readiness(e.NewContext(httptest.NewRequest(http.MethodGet, "/health/ready", nil), rec)); err != nil {
				t.Fatalf("handler error: %v", err)
			}
			if rec.Code != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, rec.Code)
			}
			if resp := decode(t, rec); resp["status"] != tc.state {
				t.Fatalf("unexpected body: %+v", resp)
			}
		})
	}
}
