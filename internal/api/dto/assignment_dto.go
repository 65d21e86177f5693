package dto

import (
	"time"

	"github.com/spec-kit/sla-service/internal/domain"
)

// AssignRequest payload for POST /tickets/:id/assign.
type AssignRequest struct {
	AgentID string `json:"agent_id" validate:"required"`
	Note    string `json:"note" validate:"max=2000"`
}

// TransferRequest payload for POST /tickets/:id/transfer.
type TransferRequest struct {
	ToAgentID string `json:"to_agent_id" validate:"required"`
	Note      string `json:"note" validate:"max=2000"`
}

// CloseRequest payload for POST /tickets/:id/close.
type CloseRequest struct {
	Outcome domain.TicketStatus `json:"outcome" validate:"required,oneof=RESOLVED CANCELLED"`
}

// AssignmentResponse payload.
type AssignmentResponse struct {
	ID         string     `json:"id"`
	TicketID   string     `json:"ticket_id"`
	AgentID    string     `json:"agent_id"`
	AssignedBy string     `json:"assigned_by,omitempty"`
	Note       string     `json:"note,omitempty"`
	Active     bool       `json:"active"`
	AssignedAt time.Time  `json:"assigned_at"`
	EndedAt    *time.Time `json:"ended_at,omitempty"`
}

// AssignmentHistoryEntry payload for the audit trail.
type AssignmentHistoryEntry struct {
	ID                      string                      `json:"id"`
	AssignmentID            string                      `json:"assignment_id"`
	AgentID                 string                      `json:"agent_id"`
	FromAgentID             *string                     `json:"from_agent_id,omitempty"`
	AssignedBy              string                      `json:"assigned_by,omitempty"`
	Note                    string                      `json:"note,omitempty"`
	AssignedAt              time.Time                   `json:"assigned_at"`
	EndedAt                 *time.Time                  `json:"ended_at,omitempty"`
	EndReason               *domain.AssignmentEndReason `json:"end_reason,omitempty"`
	ResolutionBusinessHours *float64                    `json:"resolution_business_hours,omitempty"`
}

// AssignmentFromDomain maps an assignment onto the response shape.
func AssignmentFromDomain(a *domain.Assignment) AssignmentResponse {
	return AssignmentResponse{
		ID:         a.ID,
		TicketID:   a.TicketID,
		AgentID:    a.AgentID,
		AssignedBy: a.AssignedBy,
		Note:       a.Note,
		Active:     a.Active,
		AssignedAt: a.AssignedAt,
		EndedAt:    a.EndedAt,
	}
}

// HistoryFromDomain maps an audit record onto the response shape.
func HistoryFromDomain(r *domain.AssignmentHistoryRecord) AssignmentHistoryEntry {
	return AssignmentHistoryEntry{
		ID:                      r.ID,
		AssignmentID:            r.AssignmentID,
		AgentID:                 r.AgentID,
		FromAgentID:             r.FromAgentID,
		AssignedBy:              r.AssignedBy,
		Note:                    r.Note,
		AssignedAt:              r.AssignedAt,
		EndedAt:                 r.EndedAt,
		EndReason:               r.EndReason,
		ResolutionBusinessHours: r.ResolutionBusinessHours,
	}
}
