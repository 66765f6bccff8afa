package domain

import (
	"errors"
	"time"
)

var (
	ErrAccountNotFound    = errors.New("account not found")
	ErrAccountExists      = errors.New("account already exists")
	ErrInvalidRole        = errors.New("invalid role")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Account is the persisted identity record. It is created once and never
// updated in place; CredentialHash never leaves the service.
type Account struct {
	ID             string
	Username       string
	CredentialHash string
	Role           Role
	EmailID        string
	PhoneNumber    string
	CreatedAt      time.Time
}

// PublicView is the credential-free projection returned to callers.
type PublicView struct {
	Username    string `json:"username"`
	Role        Role   `json:"role" swaggertype:"string" enums:"ADMIN,USER"`
	EmailID     string `json:"emailId,omitempty"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
}

// View projects the account onto its public representation.
func (a *Account) View() PublicView {
	return PublicView{
		Username:    a.Username,
		Role:        a.Role,
		EmailID:     a.EmailID,
		PhoneNumber: a.PhoneNumber,
	}
}

// Views projects a slice of accounts, preserving order. A nil or empty input
// yields an empty, non-nil slice.
func Views(accounts []*Account) []PublicView {
	out := make([]PublicView, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, a.View())
	}
	return out
}
