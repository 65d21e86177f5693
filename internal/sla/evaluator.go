package sla

import (
	"time"

	"github.com/spec-kit/sla-service/internal/domain"
)

// Status classifies a ticket against its SLA budget.
type Status string

const (
	StatusOnTrack  Status = "ON_TRACK"
	StatusAtRisk   Status = "AT_RISK"
	StatusViolated Status = "VIOLATED"
	StatusMet      Status = "MET"
	// StatusUndefined is reported for tickets whose timestamps or policy do
	// not allow a meaningful evaluation. Keeps the upstream "Indefinido"
	// wire value.
	StatusUndefined Status = "INDEFINIDO"
)

// AtRiskThresholdPercent marks the budget consumption at which an open
// ticket is flagged before violating.
const AtRiskThresholdPercent = 80.0

// Evaluation is the derived SLA verdict for a single ticket. It is never
// persisted.
type Evaluation struct {
	TicketID             string
	Priority             domain.TicketPriority
	Status               Status
	ElapsedBusinessHours float64
	LimitHours           float64
	PercentUsed          float64

	FirstResponseHours       float64
	FirstResponseLimitHours  float64
	FirstResponseViolated    bool
	FirstResponseApproximate bool

	// Data-quality flags. Neither is fatal: the evaluation substitutes a
	// sensible value and reports what it did.
	UnknownPriority bool
	MissingClosedAt bool
}

// Evaluate classifies a ticket against the policy and calendar at instant
// now. It never fails and never mutates the ticket: a ticket without an
// opened-at timestamp or a policy without usable budgets yields a
// zero-valued StatusUndefined evaluation.
func Evaluate(ticket *domain.Ticket, policy Policy, cal *Calendar, now time.Time) Evaluation {
	if ticket == nil {
		return Evaluation{Status: StatusUndefined}
	}
	eval := Evaluation{TicketID: ticket.ID, Priority: ticket.Priority, Status: StatusUndefined}
	if ticket.OpenedAt.IsZero() || cal == nil {
		return eval
	}

	target, fellBack := policy.Target(ticket.Priority)
	eval.UnknownPriority = fellBack
	eval.LimitHours = target.ResolutionHours
	eval.FirstResponseLimitHours = target.FirstResponseHours
	if target.ResolutionHours <= 0 {
		return eval
	}

	end := now
	terminal := ticket.Terminal()
	if terminal {
		if ticket.ClosedAt != nil {
			end = *ticket.ClosedAt
		} else {
			eval.MissingClosedAt = true
		}
	}

	eval.ElapsedBusinessHours = BusinessHoursBetween(ticket.OpenedAt, end, cal)
	eval.PercentUsed = eval.ElapsedBusinessHours / eval.LimitHours * 100

	if ticket.FirstRespondedAt != nil {
		eval.FirstResponseHours = BusinessHoursBetween(ticket.OpenedAt, *ticket.FirstRespondedAt, cal)
	} else {
		// No recorded first response: the elapsed-so-far value stands in as
		// an approximation rather than being corrected silently.
		eval.FirstResponseHours = eval.ElapsedBusinessHours
		eval.FirstResponseApproximate = true
	}
	if target.FirstResponseHours > 0 {
		eval.FirstResponseViolated = eval.FirstResponseHours > target.FirstResponseHours
	}

	switch {
	case terminal && eval.ElapsedBusinessHours <= eval.LimitHours:
		eval.Status = StatusMet
	case terminal:
		eval.Status = StatusViolated
	case eval.ElapsedBusinessHours > eval.LimitHours:
		eval.Status = StatusViolated
	case eval.PercentUsed >= AtRiskThresholdPercent:
		eval.Status = StatusAtRisk
	default:
		eval.Status = StatusOnTrack
	}
	return eval
}
