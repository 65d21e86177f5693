package events

import (
	"time"

	"github.com/spec-kit/sla-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketAssigned    EventType = "ticket_assigned"
	EventTicketTransferred EventType = "ticket_transferred"
	EventTicketClosed      EventType = "ticket_closed"
	EventSLAViolation      EventType = "sla_violation"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  string      `json:"ticket_id"`
	ActorID   string      `json:"actor_id,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketAssignedPayload payload.
type TicketAssignedPayload struct {
	AssignmentID string `json:"assignment_id"`
	AgentID      string `json:"agent_id"`
	Note         string `json:"note,omitempty"`
}

// TicketTransferredPayload payload, naming both agents.
type TicketTransferredPayload struct {
	AssignmentID string `json:"assignment_id"`
	FromAgentID  string `json:"from_agent_id"`
	ToAgentID    string `json:"to_agent_id"`
	Note         string `json:"note,omitempty"`
}

// TicketClosedPayload payload.
type TicketClosedPayload struct {
	Outcome domain.TicketStatus `json:"outcome"`
	AgentID *string             `json:"agent_id,omitempty"`
}

// SLAViolationPayload payload.
type SLAViolationPayload struct {
	Priority             domain.TicketPriority `json:"priority"`
	ElapsedBusinessHours float64               `json:"elapsed_business_hours"`
	LimitHours           float64               `json:"limit_hours"`
	PercentUsed          float64               `json:"percent_used"`
}
