package middleware

import (
	"encoding/json"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/99minutos/identity-service/pkg/logger"
)

const redacted = "[REDACTED]"

// sensitiveFields are masked in logged bodies.
var sensitiveFields = map[string]struct{}{
	"password":       {},
	"credentialHash": {},
}

// RequestLogger writes one access-log entry per request through zerolog.
func RequestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			evt := log.Info()
			if v.Status >= 500 {
				evt = log.Error().Err(v.Error)
			}
			evt.Str("request_id", v.RequestID).
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Msg("request")
			return nil
		},
	})
}

// BodyLogConfig selects which bodies BodyLogger records.
type BodyLogConfig struct {
	Requests  bool
	Responses bool
}

// BodyLogger logs request and/or response bodies at debug level with
// sensitive fields masked. It is a no-op when both flags are off.
func BodyLogger(log zerolog.Logger, cfg BodyLogConfig) echo.MiddlewareFunc {
	return echomiddleware.BodyDumpWithConfig(echomiddleware.BodyDumpConfig{
		Skipper: func(echo.Context) bool {
			return !cfg.Requests && !cfg.Responses
		},
		Handler: func(c echo.Context, reqBody, resBody []byte) {
			l := logger.WithRequestID(log, c.Response().Header().Get(echo.HeaderXRequestID))
			if cfg.Requests && len(reqBody) > 0 {
				l.Debug().
					Str("method", c.Request().Method).
					Str("uri", c.Request().RequestURI).
					RawJSON("body", redact(reqBody)).
					Msg("request body")
			}
			if cfg.Responses && len(resBody) > 0 {
				l.Debug().
					Int("status", c.Response().Status).
					RawJSON("body", redact(resBody)).
					Msg("response body")
			}
		},
	})
}

// redact masks sensitive fields in a JSON object body. Bodies that are not
// JSON objects are replaced by a quoted placeholder so the log line stays
// valid JSON.
func redact(body []byte) []byte {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(body, &obj); err != nil {
		var other json.RawMessage
		if json.Unmarshal(body, &other) == nil {
			return body
		}
		return []byte(`"<non-json body>"`)
	}

	masked, _ := json.Marshal(redacted)
	for k := range obj {
		if _, ok := sensitiveFields[k]; ok {
			obj[k] = masked
		}
	}
	out, err := json.Marshal(obj)
	if err != nil {
		return []byte(`"<unloggable body>"`)
	}
	return out
}
