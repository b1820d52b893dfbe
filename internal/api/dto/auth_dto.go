package dto

import (
	"time"

	"github.com/spec-kit/academy-auth/internal/domain"
)

// LoginRequest payload for POST /auth/login.
type LoginRequest struct {
	Email  string `json:"email" validate:"required,email,max=254"`
	Secret string `json:"secret" validate:"required,max=72"`
}

// RegisterRequest payload for self-service registration.
type RegisterRequest struct {
	Email  string        `json:"email" validate:"required,email,max=254"`
	Secret string        `json:"secret" validate:"required,min=8,max=72"`
	Roles  []domain.Role `json:"roles" validate:"omitempty,dive,oneof=administrator center_manager trainer learner job_seeker enterprise"`
}

// PasswordChangeRequest payload for POST /auth/password/change.
type PasswordChangeRequest struct {
	CurrentSecret string `json:"current_secret" validate:"required,max=72"`
	NewSecret     string `json:"new_secret" validate:"required,min=8,max=72,nefield=CurrentSecret"`
}

// SubjectResponse is the public view of a subject.
type SubjectResponse struct {
	ID    string        `json:"id"`
	Email string        `json:"email"`
	Roles []domain.Role `json:"roles"`
}

// LoginResponse is returned on successful login.
type LoginResponse struct {
	Token       string          `json:"token"`
	ExpiresAt   time.Time       `json:"expires_at"`
	LandingPath string          `json:"landing_path"`
	Subject     SubjectResponse `json:"subject"`
}

// IdentityResponse describes the caller of an authenticated request.
type IdentityResponse struct {
	SubjectID   string        `json:"subject_id"`
	Roles       []domain.Role `json:"roles"`
	ExpiresAt   time.Time     `json:"expires_at"`
	LandingPath string        `json:"landing_path"`
}

// NewSubjectResponse converts a domain subject. The secret hash never leaves this package.
func NewSubjectResponse(s *domain.Subject) SubjectResponse {
	return SubjectResponse{ID: s.ID, Email: s.Email, Roles: s.Roles}
}
