package handler

import (
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/99minutos/identity-service/internal/api/middleware"
	"github.com/99minutos/identity-service/internal/core/domain"
	"github.com/99minutos/identity-service/pkg/logger"
)

// ctxCaller returns the caller resolved by the Auth middleware, or the
// anonymous caller when none was set.
func ctxCaller(c echo.Context) domain.Caller {
	caller, _ := c.Get(middleware.CallerKey).(domain.Caller)
	return caller
}

// ctxLogger tags log with the request correlation id.
func ctxLogger(c echo.Context, log zerolog.Logger) zerolog.Logger {
	return logger.WithRequestID(log, c.Response().Header().Get(echo.HeaderXRequestID))
}
