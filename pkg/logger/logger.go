// Package logger builds the service's zerolog logger and keeps one
// process-wide instance for code that is not handed a logger explicitly.
package logger

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Options describes the logger built by New and Init.
type Options struct {
	// Level is trace, debug, info, warn or error. Anything else means info.
	Level string
	// Pretty switches from JSON lines to zerolog's console writer.
	Pretty bool
	// Output defaults to os.Stdout.
	Output io.Writer
	// Service is attached to every entry as "service" when set.
	Service string
}

var (
	mu      sync.RWMutex
	current *zerolog.Logger
)

// New builds a logger from opts. It does not touch the process-wide logger.
func New(opts Options) zerolog.Logger {
	w := opts.Output
	if w == nil {
		w = os.Stdout
	}
	if opts.Pretty {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}

	ctx := zerolog.New(w).Level(ParseLevel(opts.Level)).With().Timestamp().Caller()
	if opts.Service != "" {
		ctx = ctx.Str("service", opts.Service)
	}
	return ctx.Logger()
}

// Init installs the process-wide logger and returns it. Only the first call
// builds a logger; later calls return the installed one unchanged.
func Init(opts Options) zerolog.Logger {
	mu.Lock()
	defer mu.Unlock()

	if current == nil {
		zerolog.TimeFieldFormat = time.RFC3339Nano
		zerolog.SetGlobalLevel(ParseLevel(opts.Level))
		l := New(opts)
		current = &l
	}
	return *current
}

// Get returns the process-wide logger. It panics before Init.
func Get() zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()

	if current == nil {
		panic("logger: Get called before Init")
	}
	return *current
}

// Reset drops the process-wide logger. Tests only.
func Reset() {
	mu.Lock()
	current = nil
	mu.Unlock()
}

// WithRequestID returns a child of l carrying the request correlation id.
// An empty id returns l as is.
func WithRequestID(l zerolog.Logger, requestID string) zerolog.Logger {
	if requestID == "" {
		return l
	}
	return l.With().Str("request_id", requestID).Logger()
}

// ParseLevel maps a configured level name onto zerolog, defaulting to info.
func ParseLevel(s string) zerolog.Level {
	name := strings.ToLower(strings.TrimSpace(s))
	if name == "warning" {
		name = "warn"
	}
	switch lvl, err := zerolog.ParseLevel(name); {
	case err != nil:
		return zerolog.InfoLevel
	case lvl < zerolog.TraceLevel, lvl > zerolog.ErrorLevel:
		return zerolog.InfoLevel
	default:
		return lvl
	}
}
