package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"

	"github.com/99minutos/identity-service/internal/api/metrics"
	"github.com/99minutos/identity-service/internal/core/domain"
)

type stubAuthenticator struct {
	authenticateFn func(ctx context.Context, username, password string) (domain.Caller, error)
}

func (s *stubAuthenticator) Authenticate(ctx context.Context, username, password string) (domain.Caller, error) {
	return s.authenticateFn(ctx, username, password)
}

func signToken(t *testing.T, method jwt.SigningMethod, secret string, claims jwt.Claims) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(method, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func runAuth(t *testing.T, cfg AuthConfig, header string) (domain.Caller, bool, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set(echo.HeaderAuthorization, header)
	}
	c := e.NewContext(req, httptest.NewRecorder())

	var (
		caller domain.Caller
		called bool
	)
	err := Auth(cfg)(func(c echo.Context) error {
		called = true
		caller, _ = c.Get(CallerKey).(domain.Caller)
		return nil
	})(c)
	return caller, called, err
}

func bearerConfig() AuthConfig {
	return AuthConfig{JWTSecret: "secret", Logger: zerolog.Nop()}
}

func TestAuth_NoHeaderIsAnonymous(t *testing.T) {
	caller, called, err := runAuth(t, bearerConfig(), "")
	if err != nil || !called {
		t.Fatalf("expected next to run, err=%v", err)
	}
	if !caller.Anonymous() {
		t.Fatalf("expected anonymous caller, got %+v", caller)
	}
}

func TestAuth_ValidBearer(t *testing.T) {
	token := signToken(t, jwt.SigningMethodHS256, "secret", tokenClaims{
		Roles: []string{"ROLE_ADMIN", "user", "auditor"},
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "admin1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})

	caller, called, err := runAuth(t, bearerConfig(), "Bearer "+token)
	if err != nil || !called {
		t.Fatalf("expected next to run, err=%v", err)
	}
	if caller.Username != "admin1" || !caller.Roles.IsAdmin() || !caller.Roles.Has(domain.RoleUser) {
		t.Fatalf("unexpected caller: %+v", caller)
	}
	if len(caller.Roles) != 2 {
		t.Fatalf("unknown roles must be dropped, got %v", caller.Roles)
	}
}

func TestAuth_RejectedBearer(t *testing.T) {
	valid := jwt.RegisteredClaims{Subject: "alice"}
	cases := map[string]struct {
		cfg    AuthConfig
		header string
	}{
		"bad signature": {bearerConfig(), "Bearer " + signToken(t, jwt.SigningMethodHS256, "other", valid)},
		"wrong alg":     {bearerConfig(), "Bearer " + signToken(t, jwt.SigningMethodHS512, "secret", valid)},
		"expired": {bearerConfig(), "Bearer " + signToken(t, jwt.SigningMethodHS256, "secret", jwt.RegisteredClaims{
			Subject:   "alice",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		})},
		"missing subject": {bearerConfig(), "Bearer " + signToken(t, jwt.SigningMethodHS256, "secret", jwt.RegisteredClaims{})},
		"garbage":         {bearerConfig(), "Bearer not.a.jwt"},
		"no secret":       {AuthConfig{Logger: zerolog.Nop()}, "Bearer " + signToken(t, jwt.SigningMethodHS256, "secret", valid)},
		"unknown scheme":  {bearerConfig(), "Token abc"},
		"no scheme":       {bearerConfig(), "abc"},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, called, err := runAuth(t, tc.cfg, tc.header)
			if called {
				t.Fatal("next must not run")
			}
			if !errors.Is(err, ErrUnauthenticated) {
				t.Fatalf("expected ErrUnauthenticated, got %v", err)
			}
		})
	}
}

func TestAuth_Basic(t *testing.T) {
	cfg := AuthConfig{
		Logger: zerolog.Nop(),
		Authenticator: &stubAuthenticator{authenticateFn: func(_ context.Context, username, password string) (domain.Caller, error) {
			if username == "alice" && password == "secret1" {
				return domain.NewCaller("alice", domain.RoleUser), nil
			}
			return domain.Caller{}, domain.ErrInvalidCredentials
		}},
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.SetBasicAuth("alice", "secret1")
	caller, called, err := runAuth(t, cfg, req.Header.Get(echo.HeaderAuthorization))
	if err != nil || !called {
		t.Fatalf("expected next to run, err=%v", err)
	}
	if caller.Username != "alice" || !caller.Roles.Has(domain.RoleUser) {
		t.Fatalf("unexpected caller: %+v", caller)
	}

	req.SetBasicAuth("alice", "wrong")
	_, called, err = runAuth(t, cfg, req.Header.Get(echo.HeaderAuthorization))
	if called || !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected 401, called=%v err=%v", called, err)
	}

	_, called, err = runAuth(t, cfg, "Basic !!!not-base64")
	if called || !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected 401 for malformed basic, called=%v err=%v", called, err)
	}
}

func TestAuth_RejectionsAreCounted(t *testing.T) {
	reg := prometheus.NewRegistry()
	cfg := bearerConfig()
	cfg.Metrics = metrics.New(reg)

	for _, header := range []string{"Bearer not.a.jwt", "Bearer also.not.jwt", "Token abc"} {
		if _, _, err := runAuth(t, cfg, header); !errors.Is(err, ErrUnauthenticated) {
			t.Fatalf("%q: expected ErrUnauthenticated, got %v", header, err)
		}
	}

	n, err := testutil.GatherAndCount(reg, "identity_authentication_failures_total")
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Fatalf("expected bearer and unsupported series, got %d", n)
	}
}

func TestAuth_BasicStoreFailurePropagates(t *testing.T) {
	boom := errors.New("store down")
	cfg := AuthConfig{
		Logger: zerolog.Nop(),
		Authenticator: &stubAuthenticator{authenticateFn: func(context.Context, string, string) (domain.Caller, error) {
			return domain.Caller{}, boom
		}},
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.SetBasicAuth("alice", "secret1")
	_, called, err := runAuth(t, cfg, req.Header.Get(echo.HeaderAuthorization))
	if called || !errors.Is(err, boom) {
		t.Fatalf("expected store error to propagate, called=%v err=%v", called, err)
	}
}

func TestRequireCaller(t *testing.T) {
	e := echo.New()
	mw := RequireCaller()

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	c.Set(CallerKey, domain.Caller{})
	err := mw(func(echo.Context) error {
		t.Fatal("anonymous caller must not reach next")
		return nil
	})(c)
	if !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
	if rec.Header().Get(echo.HeaderWWWAuthenticate) == "" {
		t.Error("expected WWW-Authenticate challenge")
	}

	c = e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	c.Set(CallerKey, domain.NewCaller("alice", domain.RoleUser))
	called := false
	if err := mw(func(echo.Context) error { called = true; return nil })(c); err != nil || !called {
		t.Fatalf("authenticated caller must pass, err=%v", err)
	}
}
