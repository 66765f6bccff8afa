package domain

import (
	"net/http"
	"sort"
	"strings"
)

// Outcome is the result code attached to every operation. Numeric values are
// part of the public contract and must never be reassigned.
type Outcome int

const (
	OutcomeCreated           Outcome = 5001
	OutcomeAlreadyExists     Outcome = 5002
	OutcomeNotFound          Outcome = 5003
	OutcomeFound             Outcome = 5004
	OutcomeRemoved           Outcome = 5005
	OutcomeAccessDenied      Outcome = 6001
	OutcomeValidationFailure Outcome = 6002
	OutcomeUnauthenticated   Outcome = 6003
	OutcomeProcessingFailure Outcome = 7001
)

type outcomeInfo struct {
	name    string
	message string
	status  int
}

var outcomes = map[Outcome]outcomeInfo{
	OutcomeCreated:           {"CREATED", "Record created successfully", http.StatusCreated},
	OutcomeAlreadyExists:     {"ALREADY_EXISTS", "Record already exists", http.StatusConflict},
	OutcomeNotFound:          {"NOT_FOUND", "Record not found", http.StatusNotFound},
	OutcomeFound:             {"FOUND", "Record found", http.StatusOK},
	OutcomeRemoved:           {"REMOVED", "Record removed successfully", http.StatusOK},
	OutcomeAccessDenied:      {"ACCESS_DENIED", "Access denied", http.StatusForbidden},
	OutcomeValidationFailure: {"VALIDATION_FAILURE", "Request validation failed", http.StatusBadRequest},
	OutcomeUnauthenticated:   {"UNAUTHENTICATED", "Authentication required", http.StatusUnauthorized},
	OutcomeProcessingFailure: {"PROCESSING_FAILURE", "Error while processing the request", http.StatusInternalServerError},
}

// Name is the stable symbolic name, e.g. "NOT_FOUND".
func (o Outcome) Name() string {
	if info, ok := outcomes[o]; ok {
		return info.name
	}
	return "UNKNOWN"
}

// Message is the default human-readable message.
func (o Outcome) Message() string {
	if info, ok := outcomes[o]; ok {
		return info.message
	}
	return outcomes[OutcomeProcessingFailure].message
}

// HTTPStatus is the canonical transport status for the outcome.
func (o Outcome) HTTPStatus() int {
	if info, ok := outcomes[o]; ok {
		return info.status
	}
	return http.StatusInternalServerError
}

func (o Outcome) String() string { return o.Name() }

// ValidationError reports malformed input, keyed by field name.
type ValidationError struct {
	Fields map[string]string
}

func NewValidationError() *ValidationError {
	return &ValidationError{Fields: make(map[string]string)}
}

// Add records a message for field; the first message per field wins.
func (e *ValidationError) Add(field, msg string) {
	if _, exists := e.Fields[field]; !exists {
		e.Fields[field] = msg
	}
}

// OrNil returns e when it holds at least one field error, nil otherwise.
func (e *ValidationError) OrNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}
