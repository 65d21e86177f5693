package dto

import (
	"time"

	"github.com/spec-kit/sla-service/internal/domain"
)

// LoginRequest payload.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// LoginResponse payload.
type LoginResponse struct {
	Token     string        `json:"token"`
	ExpiresAt time.Time     `json:"expires_at"`
	Agent     AgentResponse `json:"agent"`
}

// RegisterAgentRequest payload.
type RegisterAgentRequest struct {
	Name                 string                 `json:"name" validate:"required,min=2,max=120"`
	Email                string                 `json:"email" validate:"required,email"`
	Password             string                 `json:"password" validate:"required,min=8"`
	ExperienceLevel      domain.AgentExperience `json:"experience_level" validate:"omitempty,oneof=JUNIOR MID SENIOR"`
	MaxConcurrentTickets int                    `json:"max_concurrent_tickets" validate:"required,min=1,max=100"`
}

// AgentResponse payload.
type AgentResponse struct {
	ID                   string                 `json:"id"`
	Name                 string                 `json:"name"`
	Email                string                 `json:"email"`
	Active               bool                   `json:"active"`
	ExperienceLevel      domain.AgentExperience `json:"experience_level"`
	MaxConcurrentTickets int                    `json:"max_concurrent_tickets"`
}

// AgentFromDomain maps an agent onto the response shape. The password hash
// never leaves the service.
func AgentFromDomain(a *domain.Agent) AgentResponse {
	return AgentResponse{
		ID:                   a.ID,
		Name:                 a.Name,
		Email:                a.Email,
		Active:               a.Active,
		ExperienceLevel:      a.ExperienceLevel,
		MaxConcurrentTickets: a.MaxConcurrentTickets,
	}
}
