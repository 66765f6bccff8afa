package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/99minutos/identity-service/internal/api/middleware"
	"github.com/99minutos/identity-service/internal/core/domain"
)

func render(t *testing.T, log zerolog.Logger, err error) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/v1/api/users", nil), rec)

	NewHTTPErrorHandler(log)(err, c)

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	return rec, body
}

func TestHTTPErrorHandler_Validation(t *testing.T) {
	ve := domain.NewValidationError()
	ve.Add("username", "username is required")

	rec, body := render(t, zerolog.Nop(), fmt.Errorf("register: %w", ve))
	if rec.Code != http.StatusBadRequest || body["code"] != float64(6002) {
		t.Fatalf("unexpected response: %d %+v", rec.Code, body)
	}
	errs, _ := body["errors"].(map[string]any)
	if errs["username"] != "username is required" {
		t.Fatalf("unexpected field errors: %+v", body["errors"])
	}
}

func TestHTTPErrorHandler_Unauthenticated(t *testing.T) {
	rec, body := render(t, zerolog.Nop(), middleware.ErrUnauthenticated)
	if rec.Code != http.StatusUnauthorized || body["code"] != float64(6003) || body["status"] != "UNAUTHENTICATED" {
		t.Fatalf("unexpected response: %d %+v", rec.Code, body)
	}
}

func TestHTTPErrorHandler_EchoError(t *testing.T) {
	rec, body := render(t, zerolog.Nop(), echo.ErrMethodNotAllowed)
	if rec.Code != http.StatusMethodNotAllowed || body["status"] != "METHOD_NOT_ALLOWED" {
		t.Fatalf("unexpected response: %d %+v", rec.Code, body)
	}
}

func TestHTTPErrorHandler_UnexpectedIsOpaque(t *testing.T) {
	var buf bytes.Buffer
	rec, body := render(t, zerolog.New(&buf), errors.New("mongo: connection pool exhausted"))

	if rec.Code != http.StatusInternalServerError || body["code"] != float64(7001) {
		t.Fatalf("unexpected response: %d %+v", rec.Code, body)
	}
	if strings.Contains(rec.Body.String(), "mongo") {
		t.Fatalf("internal detail leaked: %s", rec.Body.String())
	}
	if !strings.Contains(buf.String(), "connection pool exhausted") {
		t.Fatalf("expected the cause to be logged, got %q", buf.String())
	}
}

func TestStatusName(t *testing.T) {
	cases := map[int]string{
		http.StatusNotFound:              "NOT_FOUND",
		http.StatusRequestEntityTooLarge: "REQUEST_ENTITY_TOO_LARGE",
		http.StatusTeapot:                "IM_A_TEAPOT",
		799:                              "HTTP_ERROR",
	}
	for code, want := range cases {
		if got := statusName(code); got != want {
			t.Errorf("statusName(%d) = %q, want %q", code, got, want)
		}
	}
}
