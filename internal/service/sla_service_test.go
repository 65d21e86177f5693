package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/sla-service/internal/configstore"
	"github.com/spec-kit/sla-service/internal/domain"
	"github.com/spec-kit/sla-service/internal/sla"
)

func newSLAFixture() (*memStore, *SLAService) {
	store := newMemStore()
	cfg := configstore.New(staticLoader{}, time.Hour, zap.NewNop())
	svc := NewSLAService(nil, memTicketRepo{store}, cfg, zap.NewNop())
	return store, svc
}

func saoPauloTime(t *testing.T, value string) time.Time {
	t.Helper()
	loc, err := time.LoadLocation("America/Sao_Paulo")
	require.NoError(t, err)
	ts, err := time.ParseInLocation("2006-01-02 15:04", value, loc)
	require.NoError(t, err)
	return ts
}

func TestEvaluateTicketViolatedCritical(t *testing.T) {
	store, svc := newSLAFixture()
	ticket := &domain.Ticket{
		ID:       store.id("ticket"),
		Subject:  "database down",
		Status:   domain.TicketStatusOpen,
		Priority: domain.TicketPriorityCritical,
		// Monday 09:00; evaluated Monday 14:00 = 5 business hours elapsed.
		OpenedAt: saoPauloTime(t, "2025-03-03 09:00"),
	}
	store.tickets[ticket.ID] = ticket
	svc.now = func() time.Time { return saoPauloTime(t, "2025-03-03 14:00") }

	report, err := svc.EvaluateTicket(context.Background(), ticket.ID)
	require.NoError(t, err)

	eval := report.Evaluation
	assert.Equal(t, sla.StatusViolated, eval.Status)
	assert.InDelta(t, 5.0, eval.ElapsedBusinessHours, 0.001)
	assert.InDelta(t, 2.0, eval.LimitHours, 0.001)
	assert.True(t, eval.PercentUsed > 100)

	// Critical resolution budget is 2h, so the deadline lands Monday 11:00.
	assert.True(t, report.ResolutionDeadline.Equal(saoPauloTime(t, "2025-03-03 11:00")),
		"got %s", report.ResolutionDeadline)
	assert.True(t, report.FirstResponseDeadline.Equal(saoPauloTime(t, "2025-03-03 10:00")),
		"got %s", report.FirstResponseDeadline)
}

func TestEvaluateTicketOnTrack(t *testing.T) {
	store, svc := newSLAFixture()
	ticket := &domain.Ticket{
		ID:       store.id("ticket"),
		Subject:  "slow reports",
		Status:   domain.TicketStatusOpen,
		Priority: domain.TicketPriorityLow,
		OpenedAt: saoPauloTime(t, "2025-03-03 09:00"),
	}
	store.tickets[ticket.ID] = ticket
	svc.now = func() time.Time { return saoPauloTime(t, "2025-03-03 10:00") }

	report, err := svc.EvaluateTicket(context.Background(), ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, sla.StatusOnTrack, report.Evaluation.Status)
}

func TestEvaluateTicketUnknownPriorityFallsBack(t *testing.T) {
	store, svc := newSLAFixture()
	ticket := &domain.Ticket{
		ID:       store.id("ticket"),
		Subject:  "weird priority",
		Status:   domain.TicketStatusOpen,
		Priority: domain.TicketPriority("P0"),
		OpenedAt: saoPauloTime(t, "2025-03-03 09:00"),
	}
	store.tickets[ticket.ID] = ticket
	svc.now = func() time.Time { return saoPauloTime(t, "2025-03-03 10:00") }

	report, err := svc.EvaluateTicket(context.Background(), ticket.ID)
	require.NoError(t, err)
	assert.True(t, report.Evaluation.UnknownPriority)
	assert.NotEqual(t, sla.StatusUndefined, report.Evaluation.Status)
}

func TestEvaluateTicketNotFound(t *testing.T) {
	_, svc := newSLAFixture()

	_, err := svc.EvaluateTicket(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", errCode(t, err))
}
