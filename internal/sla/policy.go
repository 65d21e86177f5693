package sla

import "github.com/spec-kit/sla-service/internal/domain"

// PolicyTarget carries the business-hour budgets for one priority tier.
type PolicyTarget struct {
	FirstResponseHours float64
	ResolutionHours    float64
}

// Policy maps ticket priorities to their SLA targets.
type Policy map[domain.TicketPriority]PolicyTarget

// Target resolves the budget for a priority. Unknown priorities fall back to
// the Normal tier; fellBack reports when that happened so callers can log the
// data-quality signal.
func (p Policy) Target(priority domain.TicketPriority) (target PolicyTarget, fellBack bool) {
	if t, ok := p[priority]; ok {
		return t, false
	}
	return p[domain.TicketPriorityNormal], true
}

// Valid reports whether every tier carries positive budgets.
func (p Policy) Valid() bool {
	if len(p) == 0 {
		return false
	}
	if _, ok := p[domain.TicketPriorityNormal]; !ok {
		return false
	}
	for _, t := range p {
		if t.FirstResponseHours <= 0 || t.ResolutionHours <= 0 {
			return false
		}
	}
	return true
}
