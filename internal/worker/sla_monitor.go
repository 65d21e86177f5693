package worker

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/sla-service/internal/domain"
	"github.com/spec-kit/sla-service/internal/events"
	"github.com/spec-kit/sla-service/internal/repository"
	"github.com/spec-kit/sla-service/internal/service"
	"github.com/spec-kit/sla-service/internal/sla"
)

// SLAMonitor periodically scans non-terminal tickets and emits a
// sla_violation event the first time each ticket crosses its resolution
// budget. Verdicts are derived on every scan; the monitor persists
// nothing and only remembers which tickets it already reported.
type SLAMonitor struct {
	db         repository.Querier
	tickets    repository.TicketRepository
	slaService *service.SLAService
	dispatcher events.Dispatcher
	logger     *zap.Logger
	interval   time.Duration

	mu       sync.Mutex
	reported map[string]struct{}
}

// NewSLAMonitor creates the monitor.
func NewSLAMonitor(db repository.Querier, tickets repository.TicketRepository, slaService *service.SLAService, dispatcher events.Dispatcher, interval time.Duration, logger *zap.Logger) *SLAMonitor {
	return &SLAMonitor{
		db:         db,
		tickets:    tickets,
		slaService: slaService,
		dispatcher: dispatcher,
		logger:     logger,
		interval:   interval,
		reported:   map[string]struct{}{},
	}
}

// Run loops until ctx is cancelled.
func (m *SLAMonitor) Run(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.logger.Info("sla monitor started", zap.Duration("interval", m.interval))
	for {
		select {
		case <-ctx.Done():
			m.logger.Info("sla monitor stopped")
			return
		case <-ticker.C:
			m.Scan(ctx)
		}
	}
}

// Scan runs one evaluation pass over open and waiting tickets.
func (m *SLAMonitor) Scan(ctx context.Context) {
	tickets, err := m.tickets.ListWithFilter(ctx, m.db, repository.TicketFilter{
		Statuses: []domain.TicketStatus{domain.TicketStatusOpen, domain.TicketStatusWaiting},
	})
	if err != nil {
		m.logger.Warn("sla monitor scan failed", zap.Error(err))
		return
	}

	live := make(map[string]struct{}, len(tickets))
	violations := 0
	for i := range tickets {
		ticket := &tickets[i]
		live[ticket.ID] = struct{}{}

		report := m.slaService.Evaluate(ctx, ticket)
		if report.Evaluation.Status != sla.StatusViolated {
			continue
		}
		violations++
		if !m.markReported(ticket.ID) {
			continue
		}
		m.publishViolation(ctx, ticket, report.Evaluation)
	}
	m.forgetClosed(live)

	m.logger.Debug("sla monitor scan complete",
		zap.Int("tickets", len(tickets)),
		zap.Int("violated", violations))
}

func (m *SLAMonitor) publishViolation(ctx context.Context, ticket *domain.Ticket, eval sla.Evaluation) {
	event := events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventSLAViolation,
		TicketID:  ticket.ID,
		Timestamp: time.Now(),
		Payload: events.SLAViolationPayload{
			Priority:             ticket.Priority,
			ElapsedBusinessHours: eval.ElapsedBusinessHours,
			LimitHours:           eval.LimitHours,
			PercentUsed:          eval.PercentUsed,
		},
	}
	if err := m.dispatcher.Publish(ctx, event); err != nil {
		m.logger.Warn("sla violation publish failed", zap.String("ticket_id", ticket.ID), zap.Error(err))
	}
}

// markReported returns true the first time a ticket is reported.
func (m *SLAMonitor) markReported(ticketID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, seen := m.reported[ticketID]; seen {
		return false
	}
	m.reported[ticketID] = struct{}{}
	return true
}

// forgetClosed drops bookkeeping for tickets no longer in the scan set, so
// a ticket reopened later can be reported again.
func (m *SLAMonitor) forgetClosed(live map[string]struct{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id := range m.reported {
		if _, ok := live[id]; !ok {
			delete(m.reported, id)
		}
	}
}
