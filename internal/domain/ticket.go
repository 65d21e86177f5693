package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen      TicketStatus = "OPEN"
	TicketStatusWaiting   TicketStatus = "WAITING"
	TicketStatusResolved  TicketStatus = "RESOLVED"
	TicketStatusCancelled TicketStatus = "CANCELLED"
)

// TicketPriority enumerates SLA urgency.
type TicketPriority string

const (
	TicketPriorityCritical TicketPriority = "CRITICAL"
	TicketPriorityUrgent   TicketPriority = "URGENT"
	TicketPriorityHigh     TicketPriority = "HIGH"
	TicketPriorityNormal   TicketPriority = "NORMAL"
	TicketPriorityLow      TicketPriority = "LOW"
)

// Ticket is the aggregate for support requests.
type Ticket struct {
	ID               string
	Subject          string
	Description      string
	RequesterEmail   string
	Status           TicketStatus
	Priority         TicketPriority
	OpenedAt         time.Time
	FirstRespondedAt *time.Time
	ClosedAt         *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Terminal reports whether the ticket reached a final lifecycle state.
func (t *Ticket) Terminal() bool {
	return t.Status == TicketStatusResolved || t.Status == TicketStatusCancelled
}

// Assignable reports whether the ticket may receive an assignment.
func (t *Ticket) Assignable() bool {
	return t.Status == TicketStatusOpen || t.Status == TicketStatusWaiting
}

// ValidPriority reports whether p is a known priority tier.
func ValidPriority(p TicketPriority) bool {
	switch p {
	case TicketPriorityCritical, TicketPriorityUrgent, TicketPriorityHigh, TicketPriorityNormal, TicketPriorityLow:
		return true
	}
	return false
}
