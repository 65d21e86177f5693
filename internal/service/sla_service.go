package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/sla-service/internal/configstore"
	"github.com/spec-kit/sla-service/internal/domain"
	"github.com/spec-kit/sla-service/internal/repository"
	"github.com/spec-kit/sla-service/internal/sla"
	apperrors "github.com/spec-kit/sla-service/pkg/util/errorutil"
)

// SLAService derives SLA verdicts and deadlines for tickets on demand.
// Nothing here is persisted; every report is computed from the ticket's
// timestamps and the current policy snapshot.
type SLAService struct {
	db        repository.Querier
	tickets   repository.TicketRepository
	slaConfig *configstore.Store
	logger    *zap.Logger
	now       func() time.Time
}

// NewSLAService creates the service.
func NewSLAService(db repository.Querier, tickets repository.TicketRepository, slaConfig *configstore.Store, logger *zap.Logger) *SLAService {
	return &SLAService{
		db:        db,
		tickets:   tickets,
		slaConfig: slaConfig,
		logger:    logger,
		now:       time.Now,
	}
}

// TicketSLAReport bundles the verdict with the projected deadlines.
type TicketSLAReport struct {
	Evaluation sla.Evaluation

	FirstResponseDeadline time.Time
	ResolutionDeadline    time.Time

	// ConfigFallback is set when the report was computed against the
	// conservative built-in policy because stored configuration was not
	// available.
	ConfigFallback bool
}

// EvaluateTicket loads the ticket and reports its SLA standing at the
// current instant.
func (s *SLAService) EvaluateTicket(ctx context.Context, ticketID string) (*TicketSLAReport, error) {
	ticket, err := s.tickets.GetByID(ctx, s.db, ticketID)
	if err != nil {
		return nil, apperrors.MapStorageError(err, "ticket")
	}
	report := s.Evaluate(ctx, ticket)
	return &report, nil
}

// Evaluate reports the SLA standing of an already-loaded ticket. Shared
// with the monitor worker so scans avoid a per-ticket reload.
func (s *SLAService) Evaluate(ctx context.Context, ticket *domain.Ticket) TicketSLAReport {
	snap := s.slaConfig.Snapshot(ctx)
	eval := sla.Evaluate(ticket, snap.Policy, snap.Calendar, s.now())
	if eval.UnknownPriority {
		s.logger.Warn("unknown ticket priority, normal targets applied",
			zap.String("ticket_id", ticket.ID),
			zap.String("priority", string(ticket.Priority)))
	}

	report := TicketSLAReport{Evaluation: eval, ConfigFallback: snap.Fallback}
	if !ticket.OpenedAt.IsZero() {
		target, _ := snap.Policy.Target(ticket.Priority)
		if target.FirstResponseHours > 0 {
			report.FirstResponseDeadline = sla.ProjectDeadline(ticket.OpenedAt, target.FirstResponseHours, snap.Calendar)
		}
		if target.ResolutionHours > 0 {
			report.ResolutionDeadline = sla.ProjectDeadline(ticket.OpenedAt, target.ResolutionHours, snap.Calendar)
		}
	}
	return report
}
