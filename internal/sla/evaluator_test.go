package sla

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/spec-kit/sla-service/internal/domain"
)

func testPolicy() Policy {
	return Policy{
		domain.TicketPriorityCritical: {FirstResponseHours: 1, ResolutionHours: 2},
		domain.TicketPriorityUrgent:   {FirstResponseHours: 2, ResolutionHours: 8},
		domain.TicketPriorityHigh:     {FirstResponseHours: 4, ResolutionHours: 16},
		domain.TicketPriorityNormal:   {FirstResponseHours: 8, ResolutionHours: 24},
		domain.TicketPriorityLow:      {FirstResponseHours: 16, ResolutionHours: 48},
	}
}

func ptrTime(t time.Time) *time.Time { return &t }

func TestEvaluateUndefinedCases(t *testing.T) {
	cal := testCalendar(t)
	now := time.Now()

	assert.Equal(t, StatusUndefined, Evaluate(nil, testPolicy(), cal, now).Status)

	noOpened := &domain.Ticket{ID: "t1", Priority: domain.TicketPriorityNormal, Status: domain.TicketStatusOpen}
	eval := Evaluate(noOpened, testPolicy(), cal, now)
	assert.Equal(t, StatusUndefined, eval.Status)
	assert.Zero(t, eval.ElapsedBusinessHours)
	assert.Zero(t, eval.PercentUsed)

	opened := &domain.Ticket{
		ID:       "t2",
		Priority: domain.TicketPriorityNormal,
		Status:   domain.TicketStatusOpen,
		OpenedAt: now.Add(-time.Hour),
	}
	assert.Equal(t, StatusUndefined, Evaluate(opened, Policy{}, cal, now).Status)
	assert.Equal(t, StatusUndefined, Evaluate(opened, testPolicy(), nil, now).Status)
}

func TestEvaluateFirstResponseWithinLimit(t *testing.T) {
	cal := testCalendar(t)
	loc := saoPaulo(t)

	// Opened Monday 16:00, responded Tuesday 09:00: 3 business hours, under
	// the Normal 8h first-response budget.
	ticket := &domain.Ticket{
		ID:               "t1",
		Priority:         domain.TicketPriorityNormal,
		Status:           domain.TicketStatusWaiting,
		OpenedAt:         time.Date(2024, 3, 4, 16, 0, 0, 0, loc),
		FirstRespondedAt: ptrTime(time.Date(2024, 3, 5, 9, 0, 0, 0, loc)),
	}
	now := time.Date(2024, 3, 5, 9, 0, 0, 0, loc)

	eval := Evaluate(ticket, testPolicy(), cal, now)
	assert.Equal(t, StatusOnTrack, eval.Status)
	assert.InDelta(t, 3, eval.FirstResponseHours, 1e-9)
	assert.False(t, eval.FirstResponseViolated)
	assert.False(t, eval.FirstResponseApproximate)
	assert.InDelta(t, 3, eval.ElapsedBusinessHours, 1e-9)
}

func TestEvaluateCriticalViolatedOverWeekend(t *testing.T) {
	cal := testCalendar(t)
	loc := saoPaulo(t)

	// Opened Friday 17:00, no response, now Monday 09:30: 2.5 elapsed
	// business hours against a 2h Critical budget.
	ticket := &domain.Ticket{
		ID:       "t1",
		Priority: domain.TicketPriorityCritical,
		Status:   domain.TicketStatusOpen,
		OpenedAt: time.Date(2024, 3, 8, 17, 0, 0, 0, loc),
	}
	now := time.Date(2024, 3, 11, 9, 30, 0, 0, loc)

	eval := Evaluate(ticket, testPolicy(), cal, now)
	assert.Equal(t, StatusViolated, eval.Status)
	assert.InDelta(t, 2.5, eval.ElapsedBusinessHours, 1e-9)
	assert.InDelta(t, 125, eval.PercentUsed, 1e-9)
	assert.True(t, eval.FirstResponseViolated)
	assert.True(t, eval.FirstResponseApproximate)
}

func TestEvaluateAtRiskThreshold(t *testing.T) {
	cal := testCalendar(t)
	loc := saoPaulo(t)

	ticket := &domain.Ticket{
		ID:       "t1",
		Priority: domain.TicketPriorityUrgent, // 8h budget
		Status:   domain.TicketStatusWaiting,
		OpenedAt: time.Date(2024, 3, 4, 8, 0, 0, 0, loc),
	}

	// 6.4h of 8h used: exactly 80 percent.
	atRisk := Evaluate(ticket, testPolicy(), cal, time.Date(2024, 3, 4, 14, 24, 0, 0, loc))
	assert.Equal(t, StatusAtRisk, atRisk.Status)
	assert.InDelta(t, 80, atRisk.PercentUsed, 1e-9)

	onTrack := Evaluate(ticket, testPolicy(), cal, time.Date(2024, 3, 4, 14, 0, 0, 0, loc))
	assert.Equal(t, StatusOnTrack, onTrack.Status)
}

func TestEvaluateTerminalTickets(t *testing.T) {
	cal := testCalendar(t)
	loc := saoPaulo(t)
	opened := time.Date(2024, 3, 4, 8, 0, 0, 0, loc)

	met := &domain.Ticket{
		ID:       "met",
		Priority: domain.TicketPriorityNormal, // 24h budget
		Status:   domain.TicketStatusResolved,
		OpenedAt: opened,
		ClosedAt: ptrTime(time.Date(2024, 3, 5, 12, 0, 0, 0, loc)), // 14h elapsed
	}
	violated := &domain.Ticket{
		ID:       "violated",
		Priority: domain.TicketPriorityNormal,
		Status:   domain.TicketStatusResolved,
		OpenedAt: opened,
		ClosedAt: ptrTime(time.Date(2024, 3, 7, 12, 0, 0, 0, loc)), // 34h elapsed
	}
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, loc)

	assert.Equal(t, StatusMet, Evaluate(met, testPolicy(), cal, now).Status)
	assert.Equal(t, StatusViolated, Evaluate(violated, testPolicy(), cal, now).Status)

	// Terminal tickets are judged by closedAt even long after closure: a
	// resolved ticket never drifts into violation as time passes.
	later := Evaluate(met, testPolicy(), cal, now.AddDate(0, 1, 0))
	assert.Equal(t, StatusMet, later.Status)
	assert.InDelta(t, 14, later.ElapsedBusinessHours, 1e-9)
}

func TestEvaluateTerminalMissingClosedAt(t *testing.T) {
	cal := testCalendar(t)
	loc := saoPaulo(t)

	ticket := &domain.Ticket{
		ID:       "t1",
		Priority: domain.TicketPriorityNormal,
		Status:   domain.TicketStatusCancelled,
		OpenedAt: time.Date(2024, 3, 4, 8, 0, 0, 0, loc),
	}
	now := time.Date(2024, 3, 4, 12, 0, 0, 0, loc)

	eval := Evaluate(ticket, testPolicy(), cal, now)
	assert.True(t, eval.MissingClosedAt)
	assert.Equal(t, StatusMet, eval.Status)
	assert.InDelta(t, 4, eval.ElapsedBusinessHours, 1e-9)
}

func TestEvaluateUnknownPriorityFallsBackToNormal(t *testing.T) {
	cal := testCalendar(t)
	loc := saoPaulo(t)

	ticket := &domain.Ticket{
		ID:       "t1",
		Priority: domain.TicketPriority("LEGACY_P3"),
		Status:   domain.TicketStatusOpen,
		OpenedAt: time.Date(2024, 3, 4, 8, 0, 0, 0, loc),
	}
	eval := Evaluate(ticket, testPolicy(), cal, time.Date(2024, 3, 4, 10, 0, 0, 0, loc))

	assert.True(t, eval.UnknownPriority)
	assert.InDelta(t, 24, eval.LimitHours, 1e-9)
	assert.Equal(t, StatusOnTrack, eval.Status)
}

func TestEvaluateNeverMutatesTicket(t *testing.T) {
	cal := testCalendar(t)
	loc := saoPaulo(t)

	ticket := &domain.Ticket{
		ID:       "t1",
		Priority: domain.TicketPriorityNormal,
		Status:   domain.TicketStatusOpen,
		OpenedAt: time.Date(2024, 3, 4, 8, 0, 0, 0, loc),
	}
	before := *ticket
	Evaluate(ticket, testPolicy(), cal, time.Now())
	assert.Equal(t, before, *ticket)
}
