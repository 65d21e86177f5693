package worker

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/sla-service/internal/configstore"
	"github.com/spec-kit/sla-service/internal/domain"
	"github.com/spec-kit/sla-service/internal/events"
	"github.com/spec-kit/sla-service/internal/repository"
	"github.com/spec-kit/sla-service/internal/service"
	"github.com/spec-kit/sla-service/internal/sla"
)

type defaultsLoader struct{}

func (defaultsLoader) LoadPolicy(context.Context) (sla.Policy, error) {
	return configstore.DefaultPolicy(), nil
}

func (defaultsLoader) LoadCalendar(context.Context) (*sla.Calendar, error) {
	return configstore.DefaultCalendar(), nil
}

// scanTicketRepo serves a mutable scan set; only ListWithFilter matters to
// the monitor.
type scanTicketRepo struct {
	tickets map[string]domain.Ticket
}

func (r *scanTicketRepo) Create(context.Context, repository.Querier, *domain.Ticket) error {
	return nil
}

func (r *scanTicketRepo) Update(context.Context, repository.Querier, *domain.Ticket) error {
	return nil
}

func (r *scanTicketRepo) GetByID(_ context.Context, _ repository.Querier, id string) (*domain.Ticket, error) {
	if t, ok := r.tickets[id]; ok {
		return &t, nil
	}
	return nil, pgx.ErrNoRows
}

func (r *scanTicketRepo) GetForUpdate(ctx context.Context, q repository.Querier, id string) (*domain.Ticket, error) {
	return r.GetByID(ctx, q, id)
}

func (r *scanTicketRepo) ListWithFilter(context.Context, repository.Querier, repository.TicketFilter) ([]domain.Ticket, error) {
	out := make([]domain.Ticket, 0, len(r.tickets))
	for _, t := range r.tickets {
		out = append(out, t)
	}
	return out, nil
}

func newMonitorFixture() (*SLAMonitor, *scanTicketRepo, *[]events.Event) {
	logger := zap.NewNop()
	repo := &scanTicketRepo{tickets: map[string]domain.Ticket{}}
	store := configstore.New(defaultsLoader{}, time.Hour, logger)
	slaService := service.NewSLAService(nil, repo, store, logger)

	dispatcher := events.NewInMemoryDispatcher()
	var captured []events.Event
	dispatcher.Subscribe(events.EventSLAViolation, func(_ context.Context, e events.Event) error {
		captured = append(captured, e)
		return nil
	})

	monitor := NewSLAMonitor(nil, repo, slaService, dispatcher, time.Minute, logger)
	return monitor, repo, &captured
}

func overdueTicket(id string) domain.Ticket {
	return domain.Ticket{
		ID:       id,
		Status:   domain.TicketStatusOpen,
		Priority: domain.TicketPriorityCritical,
		OpenedAt: time.Now().AddDate(0, -1, 0),
	}
}

func TestScanReportsViolationOncePerTicket(t *testing.T) {
	monitor, repo, captured := newMonitorFixture()
	repo.tickets["t-1"] = overdueTicket("t-1")

	monitor.Scan(context.Background())
	monitor.Scan(context.Background())

	require.Len(t, *captured, 1)
	event := (*captured)[0]
	assert.Equal(t, events.EventSLAViolation, event.Type)
	assert.Equal(t, "t-1", event.TicketID)

	payload, ok := event.Payload.(events.SLAViolationPayload)
	require.True(t, ok)
	assert.Equal(t, domain.TicketPriorityCritical, payload.Priority)
	assert.Greater(t, payload.ElapsedBusinessHours, payload.LimitHours)
}

func TestScanReportsAgainAfterTicketLeavesScanSet(t *testing.T) {
	monitor, repo, captured := newMonitorFixture()
	repo.tickets["t-1"] = overdueTicket("t-1")

	monitor.Scan(context.Background())
	require.Len(t, *captured, 1)

	// Resolving the ticket removes it from the scan set; the monitor
	// must drop its bookkeeping so a reopened ticket is reported anew.
	delete(repo.tickets, "t-1")
	monitor.Scan(context.Background())
	require.Len(t, *captured, 1)

	repo.tickets["t-1"] = overdueTicket("t-1")
	monitor.Scan(context.Background())
	require.Len(t, *captured, 2)
}

func TestScanSkipsTicketsWithinBudget(t *testing.T) {
	monitor, repo, captured := newMonitorFixture()
	repo.tickets["t-2"] = domain.Ticket{
		ID:       "t-2",
		Status:   domain.TicketStatusOpen,
		Priority: domain.TicketPriorityLow,
		OpenedAt: time.Now(),
	}

	monitor.Scan(context.Background())

	assert.Empty(t, *captured)
}
