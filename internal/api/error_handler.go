package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/99minutos/identity-service/internal/api/handler"
	"github.com/99minutos/identity-service/internal/core/domain"
	"github.com/99minutos/identity-service/pkg/logger"
)

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Renders validation failures as VALIDATION_FAILURE with per-field errors.
//   - Renders 401s as UNAUTHENTICATED and other echo errors with their status.
//   - Logs unexpected errors internally without leaking details to the client.
//
// Every response uses the outcome envelope.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status, body := resolveError(err, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(status)
			return
		}
		_ = c.JSON(status, body)
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, handler.OutcomeResponse) {
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		body := handler.NewOutcomeResponse(domain.OutcomeValidationFailure, "")
		body.Errors = ve.Fields
		return http.StatusBadRequest, body
	}

	// Echo's own errors (auth rejection, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		switch he.Code {
		case http.StatusUnauthorized:
			return he.Code, handler.NewOutcomeResponse(domain.OutcomeUnauthenticated, "")
		case http.StatusInternalServerError:
			// fall through to the unexpected-error path
		default:
			return he.Code, handler.OutcomeResponse{
				Code:    he.Code,
				Status:  statusName(he.Code),
				Message: fmt.Sprintf("%v", he.Message),
			}
		}
	}

	// Unexpected error: log the real cause, return a generic message.
	l := logger.WithRequestID(log, c.Response().Header().Get(echo.HeaderXRequestID))
	l.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, handler.NewOutcomeResponse(domain.OutcomeProcessingFailure, "")
}

// statusName turns an HTTP status into an upper snake-case label,
// e.g. 405 → METHOD_NOT_ALLOWED.
func statusName(code int) string {
	text := http.StatusText(code)
	if text == "" {
		return "HTTP_ERROR"
	}
	return strings.ToUpper(strings.NewReplacer(" ", "_", "-", "_", "'", "").Replace(text))
}
