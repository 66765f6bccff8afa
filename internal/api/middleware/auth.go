package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/99minutos/identity-service/internal/api/metrics"
	"github.com/99minutos/identity-service/internal/core/domain"
	"github.com/99minutos/identity-service/internal/core/ports"
)

// CallerKey is the echo context key holding the authenticated domain.Caller.
const CallerKey = "caller"

// ErrUnauthenticated is returned when credentials are missing or invalid.
var ErrUnauthenticated = echo.NewHTTPError(http.StatusUnauthorized, "authentication required")

// AuthConfig configures the Auth middleware.
type AuthConfig struct {
	// Authenticator verifies HTTP Basic credentials.
	Authenticator ports.Authenticator
	// JWTSecret verifies HS256 bearer tokens. Empty disables bearer auth.
	JWTSecret string
	// Metrics counts rejected credentials. May be nil.
	Metrics *metrics.Metrics
	Logger  zerolog.Logger
}

// tokenClaims is the bearer token payload: the subject is the username and
// roles lists the caller's role names.
type tokenClaims struct {
	Roles []string `json:"roles"`
	jwt.RegisteredClaims
}

// Auth identifies the caller and stores it under CallerKey. A request without
// an Authorization header proceeds as anonymous; RequireCaller decides
// whether that is acceptable. Credentials that are present but invalid are
// always rejected with 401. No authorization decision is taken here.
func Auth(cfg AuthConfig) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				c.Set(CallerKey, domain.Caller{})
				return next(c)
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 {
				return reject(c, cfg.Metrics, "unsupported")
			}

			var (
				caller domain.Caller
				err    error
				scheme = strings.ToLower(parts[0])
			)
			switch scheme {
			case "basic":
				caller, err = basicCaller(c, cfg.Authenticator)
			case "bearer":
				caller, err = bearerCaller(parts[1], cfg.JWTSecret)
			default:
				return reject(c, cfg.Metrics, "unsupported")
			}

			if err != nil {
				if errors.Is(err, domain.ErrInvalidCredentials) {
					cfg.Logger.Debug().Str("scheme", scheme).Msg("credentials rejected")
					return reject(c, cfg.Metrics, scheme)
				}
				return err
			}

			c.Set(CallerKey, caller)
			return next(c)
		}
	}
}

// RequireCaller rejects anonymous requests with 401.
func RequireCaller() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			caller, _ := c.Get(CallerKey).(domain.Caller)
			if caller.Anonymous() {
				c.Response().Header().Set(echo.HeaderWWWAuthenticate, `Basic realm="identity"`)
				return ErrUnauthenticated
			}
			return next(c)
		}
	}
}

func reject(c echo.Context, m *metrics.Metrics, scheme string) error {
	m.AuthFailure(scheme)
	c.Response().Header().Set(echo.HeaderWWWAuthenticate, `Basic realm="identity"`)
	return ErrUnauthenticated
}

func basicCaller(c echo.Context, auth ports.Authenticator) (domain.Caller, error) {
	username, password, ok := c.Request().BasicAuth()
	if !ok || auth == nil {
		return domain.Caller{}, domain.ErrInvalidCredentials
	}
	return auth.Authenticate(c.Request().Context(), username, password)
}

func bearerCaller(raw, secret string) (domain.Caller, error) {
	if secret == "" {
		return domain.Caller{}, domain.ErrInvalidCredentials
	}

	claims := &tokenClaims{}
	tkn, err := jwt.ParseWithClaims(strings.TrimSpace(raw), claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !tkn.Valid || claims.Subject == "" {
		return domain.Caller{}, domain.ErrInvalidCredentials
	}

	roles := make([]domain.Role, 0, len(claims.Roles))
	for _, name := range claims.Roles {
		if r, err := domain.ParseRole(name); err == nil {
			roles = append(roles, r)
		}
	}
	return domain.NewCaller(claims.Subject, roles...), nil
}
