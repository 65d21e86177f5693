package dto

import (
	"time"

	"github.com/spec-kit/sla-service/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	Subject        string                `json:"subject" validate:"required,min=3,max=200"`
	Description    string                `json:"description" validate:"max=10000"`
	RequesterEmail string                `json:"requester_email" validate:"omitempty,email"`
	Priority       domain.TicketPriority `json:"priority" validate:"omitempty,oneof=CRITICAL URGENT HIGH NORMAL LOW"`
}

// TicketResponse payload.
type TicketResponse struct {
	ID               string                `json:"id"`
	Subject          string                `json:"subject"`
	Description      string                `json:"description,omitempty"`
	RequesterEmail   string                `json:"requester_email,omitempty"`
	Status           domain.TicketStatus   `json:"status"`
	Priority         domain.TicketPriority `json:"priority"`
	OpenedAt         time.Time             `json:"opened_at"`
	FirstRespondedAt *time.Time            `json:"first_responded_at,omitempty"`
	ClosedAt         *time.Time            `json:"closed_at,omitempty"`
	CreatedAt        time.Time             `json:"created_at"`
	UpdatedAt        time.Time             `json:"updated_at"`
}

// TicketFromDomain maps the aggregate onto the response shape.
func TicketFromDomain(t *domain.Ticket) TicketResponse {
	return TicketResponse{
		ID:               t.ID,
		Subject:          t.Subject,
		Description:      t.Description,
		RequesterEmail:   t.RequesterEmail,
		Status:           t.Status,
		Priority:         t.Priority,
		OpenedAt:         t.OpenedAt,
		FirstRespondedAt: t.FirstRespondedAt,
		ClosedAt:         t.ClosedAt,
		CreatedAt:        t.CreatedAt,
		UpdatedAt:        t.UpdatedAt,
	}
}
