package sla

import (
	"time"

	"github.com/spec-kit/sla-service/internal/domain"
)

// Snapshot is a consolidated view of SLA compliance across a ticket
// population for a reporting window.
type Snapshot struct {
	WindowDays  int       `json:"window_days"`
	GeneratedAt time.Time `json:"generated_at"`

	TotalTickets  int `json:"total_tickets"`
	OpenTickets   int `json:"open_tickets"`
	ClosedTickets int `json:"closed_tickets"`

	// Live risk counters, tallied only for non-terminal tickets.
	OnTrack  int `json:"on_track"`
	AtRisk   int `json:"at_risk"`
	Violated int `json:"violated"`

	// Closed tickets contribute here instead, so stale risk signals are not
	// double-counted against already-resolved work.
	MetOnClose      int `json:"met_on_close"`
	ViolatedOnClose int `json:"violated_on_close"`

	Undefined int `json:"undefined"`

	AvgFirstResponseHours float64 `json:"avg_first_response_hours"`
	AvgResolutionHours    float64 `json:"avg_resolution_hours"`
	FirstResponseSamples  int     `json:"first_response_samples"`
	ResolutionSamples     int     `json:"resolution_samples"`

	CompliancePercent float64 `json:"compliance_percent"`
}

// Consolidate evaluates every ticket opened within the trailing window and
// rolls the results up into a Snapshot.
func Consolidate(tickets []domain.Ticket, policy Policy, cal *Calendar, windowDays int, now time.Time) Snapshot {
	snap := Snapshot{WindowDays: windowDays, GeneratedAt: now}
	cutoff := now.AddDate(0, 0, -windowDays)

	var firstResponseTotal, resolutionTotal float64
	for i := range tickets {
		ticket := &tickets[i]
		// Tickets without an opened-at timestamp cannot be placed in the
		// window; they stay in the population as undefined rather than
		// disappearing from the report.
		if !ticket.OpenedAt.IsZero() && ticket.OpenedAt.Before(cutoff) {
			continue
		}
		snap.TotalTickets++

		eval := Evaluate(ticket, policy, cal, now)
		switch eval.Status {
		case StatusUndefined:
			snap.Undefined++
			continue
		case StatusMet:
			snap.MetOnClose++
		case StatusViolated:
			if ticket.Terminal() {
				snap.ViolatedOnClose++
			} else {
				snap.Violated++
			}
		case StatusAtRisk:
			snap.AtRisk++
		case StatusOnTrack:
			snap.OnTrack++
		}
		if ticket.Terminal() {
			snap.ClosedTickets++
		} else {
			snap.OpenTickets++
		}

		if ticket.FirstRespondedAt != nil {
			firstResponseTotal += BusinessHoursBetween(ticket.OpenedAt, *ticket.FirstRespondedAt, cal)
			snap.FirstResponseSamples++
		}
		if ticket.Terminal() && ticket.ClosedAt != nil {
			resolutionTotal += BusinessHoursBetween(ticket.OpenedAt, *ticket.ClosedAt, cal)
			snap.ResolutionSamples++
		}
	}

	if snap.FirstResponseSamples > 0 {
		snap.AvgFirstResponseHours = firstResponseTotal / float64(snap.FirstResponseSamples)
	}
	if snap.ResolutionSamples > 0 {
		snap.AvgResolutionHours = resolutionTotal / float64(snap.ResolutionSamples)
	}
	if closed := snap.MetOnClose + snap.ViolatedOnClose; closed > 0 {
		snap.CompliancePercent = float64(snap.MetOnClose) / float64(closed) * 100
	}
	return snap
}
