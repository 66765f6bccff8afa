package ports

import (
	"context"

	"github.com/99minutos/identity-service/internal/core/domain"
)

// RegisterInput is the DTO passed from the transport layer on registration.
type RegisterInput struct {
	Username    string
	Password    string
	Role        string
	EmailID     string
	PhoneNumber string
}

// Result carries the outcome of an account operation. Account is set for
// CREATED and single-record FOUND; Accounts for list FOUND; Message overrides
// the outcome's default text (used for access denials).
type Result struct {
	Outcome  domain.Outcome
	Message  string
	Account  *domain.PublicView
	Accounts []domain.PublicView
}

// AccountService defines the account use cases. A non-nil error is always a
// processing failure or a validation error; every other result, including
// denials and duplicates, is reported through Result.Outcome.
type AccountService interface {
	Register(ctx context.Context, caller domain.Caller, in RegisterInput) (*Result, error)
	Fetch(ctx context.Context, caller domain.Caller, username string) (*Result, error)
	List(ctx context.Context, caller domain.Caller) (*Result, error)
	Remove(ctx context.Context, caller domain.Caller, username string) (*Result, error)
}

// Authenticator verifies presented credentials and resolves the caller.
type Authenticator interface {
	// Authenticate returns domain.ErrInvalidCredentials on any mismatch,
	// including unknown usernames.
	Authenticate(ctx context.Context, username, password string) (domain.Caller, error)
}
