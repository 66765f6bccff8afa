package handler

import (
	"github.com/99minutos/identity-service/internal/core/domain"
	"github.com/99minutos/identity-service/internal/core/ports"
)

// registerRequest is the POST /v1/api/users/register payload.
type registerRequest struct {
	Username    string `json:"username" validate:"required,max=64" example:"alice"`
	Password    string `json:"password" validate:"required,max=72" example:"secret1"`
	Role        string `json:"role" validate:"required,role" example:"USER" enums:"ADMIN,USER"`
	EmailID     string `json:"emailId" validate:"omitempty,email" example:"alice@example.com"`
	PhoneNumber string `json:"phoneNumber" validate:"omitempty,max=32" example:"8293738321"`
}

func (r registerRequest) toInput() ports.RegisterInput {
	return ports.RegisterInput{
		Username:    r.Username,
		Password:    r.Password,
		Role:        r.Role,
		EmailID:     r.EmailID,
		PhoneNumber: r.PhoneNumber,
	}
}

// OutcomeResponse is the envelope every account endpoint answers with.
type OutcomeResponse struct {
	Code    int                `json:"code" example:"5001"`
	Status  string             `json:"status" example:"CREATED"`
	Message string             `json:"message" example:"Record created successfully"`
	User    *domain.PublicView `json:"user,omitempty"`
	Errors  map[string]string  `json:"errors,omitempty"`
}

// ListResponse is the envelope for GET /v1/api/users. users is always
// present, possibly empty.
type ListResponse struct {
	OutcomeResponse
	Users []domain.PublicView `json:"users"`
}

// NewOutcomeResponse builds the envelope for o. An empty message falls back
// to the outcome's canonical message.
func NewOutcomeResponse(o domain.Outcome, message string) OutcomeResponse {
	if message == "" {
		message = o.Message()
	}
	return OutcomeResponse{Code: int(o), Status: o.Name(), Message: message}
}

type versionResponse struct {
	Version string `json:"version" example:"v1"`
}
