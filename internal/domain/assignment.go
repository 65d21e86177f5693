package domain

import "time"

// AssignmentEndReason captures why an assignment stopped being active.
type AssignmentEndReason string

const (
	EndReasonTransferred AssignmentEndReason = "TRANSFERRED"
	EndReasonResolved    AssignmentEndReason = "RESOLVED"
	EndReasonCancelled   AssignmentEndReason = "CANCELLED"
)

// Assignment binds a ticket to the agent currently responsible for it.
// At most one assignment per ticket is active at any instant.
type Assignment struct {
	ID         string
	TicketID   string
	AgentID    string
	AssignedBy string
	Note       string
	Active     bool
	AssignedAt time.Time
	EndedAt    *time.Time
}

// AssignmentHistoryRecord is an immutable audit snapshot of one assignment,
// created when the assignment is made and finalized when it ends.
type AssignmentHistoryRecord struct {
	ID                      string
	AssignmentID            string
	TicketID                string
	AgentID                 string
	FromAgentID             *string
	AssignedBy              string
	Note                    string
	AssignedAt              time.Time
	EndedAt                 *time.Time
	EndReason               *AssignmentEndReason
	ResolutionBusinessHours *float64
	CreatedAt               time.Time
}
