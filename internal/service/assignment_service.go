package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/sla-service/internal/configstore"
	"github.com/spec-kit/sla-service/internal/domain"
	"github.com/spec-kit/sla-service/internal/events"
	"github.com/spec-kit/sla-service/internal/repository"
	"github.com/spec-kit/sla-service/internal/sla"
	apperrors "github.com/spec-kit/sla-service/pkg/util/errorutil"
)

// AssignmentService handles the ticket-agent binding state machine. Every
// operation runs as one committed transaction: the ticket row is locked
// first (serializing operations per ticket), then the target agent row
// (serializing the capacity check per agent). A partial unique index on
// active assignments backs the single-active-assignment invariant in
// storage.
type AssignmentService struct {
	tx          repository.TxManager
	db          repository.Querier
	tickets     repository.TicketRepository
	agents      repository.AgentRepository
	assignments repository.AssignmentRepository
	history     repository.AssignmentHistoryRepository
	slaConfig   *configstore.Store
	dispatcher  events.Dispatcher
	logger      *zap.Logger
	now         func() time.Time
}

// AssignmentDependencies bundles collaborators.
type AssignmentDependencies struct {
	Tx             repository.TxManager
	DB             repository.Querier
	TicketRepo     repository.TicketRepository
	AgentRepo      repository.AgentRepository
	AssignmentRepo repository.AssignmentRepository
	HistoryRepo    repository.AssignmentHistoryRepository
	SLAConfig      *configstore.Store
	Dispatcher     events.Dispatcher
	Logger         *zap.Logger
}

// NewAssignmentService creates the service.
func NewAssignmentService(deps AssignmentDependencies) *AssignmentService {
	return &AssignmentService{
		tx:          deps.Tx,
		db:          deps.DB,
		tickets:     deps.TicketRepo,
		agents:      deps.AgentRepo,
		assignments: deps.AssignmentRepo,
		history:     deps.HistoryRepo,
		slaConfig:   deps.SLAConfig,
		dispatcher:  deps.Dispatcher,
		logger:      deps.Logger,
		now:         time.Now,
	}
}

// Assign binds an open or waiting ticket to an agent with free capacity.
func (s *AssignmentService) Assign(ctx context.Context, ticketID, agentID, actorID, note string) (*domain.Assignment, error) {
	var created *domain.Assignment
	err := s.tx.WithTx(ctx, func(q repository.Querier) error {
		ticket, err := s.tickets.GetForUpdate(ctx, q, ticketID)
		if err != nil {
			return apperrors.MapStorageError(err, "ticket")
		}
		if !ticket.Assignable() {
			return apperrors.NewInvalidTicketState(ticket.ID, string(ticket.Status))
		}

		if _, err := s.assignments.GetActiveByTicket(ctx, q, ticketID); err == nil {
			return apperrors.NewAlreadyAssigned(ticketID)
		} else if !errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewStorageError(err)
		}

		agent, err := s.lockAgentWithCapacity(ctx, q, agentID)
		if err != nil {
			return err
		}

		now := s.now()
		created = &domain.Assignment{
			TicketID:   ticket.ID,
			AgentID:    agent.ID,
			AssignedBy: actorID,
			Note:       note,
			Active:     true,
			AssignedAt: now,
		}
		if err := s.assignments.Create(ctx, q, created); err != nil {
			return apperrors.NewStorageError(err)
		}
		if err := s.history.Create(ctx, q, &domain.AssignmentHistoryRecord{
			AssignmentID: created.ID,
			TicketID:     ticket.ID,
			AgentID:      agent.ID,
			AssignedBy:   actorID,
			Note:         note,
			AssignedAt:   now,
		}); err != nil {
			return apperrors.NewStorageError(err)
		}

		if ticket.Status == domain.TicketStatusOpen {
			ticket.Status = domain.TicketStatusWaiting
			if err := s.tickets.Update(ctx, q, ticket); err != nil {
				return apperrors.NewStorageError(err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.Event{
		Type:     events.EventTicketAssigned,
		TicketID: ticketID,
		ActorID:  actorID,
		Payload: events.TicketAssignedPayload{
			AssignmentID: created.ID,
			AgentID:      created.AgentID,
			Note:         note,
		},
	})
	return created, nil
}

// Transfer atomically moves the active assignment to another agent,
// preserving the prior agent in the audit trail.
func (s *AssignmentService) Transfer(ctx context.Context, ticketID, toAgentID, actorID, note string) (*domain.Assignment, error) {
	var created *domain.Assignment
	var fromAgentID string
	err := s.tx.WithTx(ctx, func(q repository.Querier) error {
		ticket, err := s.tickets.GetForUpdate(ctx, q, ticketID)
		if err != nil {
			return apperrors.MapStorageError(err, "ticket")
		}
		if ticket.Terminal() {
			return apperrors.NewInvalidTicketState(ticket.ID, string(ticket.Status))
		}

		current, err := s.assignments.GetActiveByTicketForUpdate(ctx, q, ticketID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.NewNoActiveAssignment(ticketID)
			}
			return apperrors.NewStorageError(err)
		}
		if current.AgentID == toAgentID {
			return apperrors.NewAlreadyAssigned(ticketID)
		}
		fromAgentID = current.AgentID

		toAgent, err := s.lockAgentWithCapacity(ctx, q, toAgentID)
		if err != nil {
			return err
		}

		now := s.now()
		if err := s.assignments.End(ctx, q, current.ID, now, appendNote(current.Note, note)); err != nil {
			return apperrors.NewStorageError(err)
		}
		if err := s.history.Finalize(ctx, q, current.ID, now, domain.EndReasonTransferred, nil); err != nil {
			return apperrors.NewStorageError(err)
		}

		created = &domain.Assignment{
			TicketID:   ticket.ID,
			AgentID:    toAgent.ID,
			AssignedBy: actorID,
			Note:       note,
			Active:     true,
			AssignedAt: now,
		}
		if err := s.assignments.Create(ctx, q, created); err != nil {
			return apperrors.NewStorageError(err)
		}
		return s.recordTransferHistory(ctx, q, created, fromAgentID)
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.Event{
		Type:     events.EventTicketTransferred,
		TicketID: ticketID,
		ActorID:  actorID,
		Payload: events.TicketTransferredPayload{
			AssignmentID: created.ID,
			FromAgentID:  fromAgentID,
			ToAgentID:    created.AgentID,
			Note:         note,
		},
	})
	return created, nil
}

// Close finalizes a ticket as Resolved or Cancelled, ending its active
// assignment if one exists and stamping resolution timing on the audit
// record.
func (s *AssignmentService) Close(ctx context.Context, ticketID string, outcome domain.TicketStatus, actorID string) error {
	if outcome != domain.TicketStatusResolved && outcome != domain.TicketStatusCancelled {
		return apperrors.NewValidationError("outcome must be RESOLVED or CANCELLED", map[string]any{"outcome": outcome})
	}

	var closedAgentID *string
	err := s.tx.WithTx(ctx, func(q repository.Querier) error {
		ticket, err := s.tickets.GetForUpdate(ctx, q, ticketID)
		if err != nil {
			return apperrors.MapStorageError(err, "ticket")
		}
		if ticket.Terminal() {
			return apperrors.NewInvalidTicketState(ticket.ID, string(ticket.Status))
		}

		now := s.now()
		ticket.Status = outcome
		ticket.ClosedAt = &now
		if err := s.tickets.Update(ctx, q, ticket); err != nil {
			return apperrors.NewStorageError(err)
		}

		current, err := s.assignments.GetActiveByTicketForUpdate(ctx, q, ticketID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil // closing an unassigned ticket is legitimate
			}
			return apperrors.NewStorageError(err)
		}
		closedAgentID = &current.AgentID

		if err := s.assignments.End(ctx, q, current.ID, now, current.Note); err != nil {
			return apperrors.NewStorageError(err)
		}
		reason := domain.EndReasonResolved
		if outcome == domain.TicketStatusCancelled {
			reason = domain.EndReasonCancelled
		}
		return s.finalizeWithTiming(ctx, q, current.ID, ticket, now, reason)
	})
	if err != nil {
		return err
	}

	s.publish(ctx, events.Event{
		Type:     events.EventTicketClosed,
		TicketID: ticketID,
		ActorID:  actorID,
		Payload: events.TicketClosedPayload{
			Outcome: outcome,
			AgentID: closedAgentID,
		},
	})
	return nil
}

// History returns the audit trail for a ticket.
func (s *AssignmentService) History(ctx context.Context, ticketID string) ([]domain.AssignmentHistoryRecord, error) {
	records, err := s.history.ListByTicket(ctx, s.db, ticketID)
	if err != nil {
		return nil, apperrors.NewStorageError(err)
	}
	return records, nil
}

// lockAgentWithCapacity locks the agent row and verifies it can take one
// more active assignment.
func (s *AssignmentService) lockAgentWithCapacity(ctx context.Context, q repository.Querier, agentID string) (*domain.Agent, error) {
	agent, err := s.agents.LockForAssignment(ctx, q, agentID)
	if err != nil {
		return nil, apperrors.MapStorageError(err, "agent")
	}
	if !agent.Active {
		return nil, apperrors.NewConflict("agent inactive", map[string]any{"agent_id": agentID})
	}
	count, err := s.assignments.CountActiveByAgent(ctx, q, agentID)
	if err != nil {
		return nil, apperrors.NewStorageError(err)
	}
	if count >= agent.MaxConcurrentTickets {
		return nil, apperrors.NewCapacityExceeded(agentID, agent.MaxConcurrentTickets)
	}
	return agent, nil
}

func (s *AssignmentService) recordTransferHistory(ctx context.Context, q repository.Querier, created *domain.Assignment, fromAgentID string) error {
	err := s.history.Create(ctx, q, &domain.AssignmentHistoryRecord{
		AssignmentID: created.ID,
		TicketID:     created.TicketID,
		AgentID:      created.AgentID,
		FromAgentID:  &fromAgentID,
		AssignedBy:   created.AssignedBy,
		Note:         created.Note,
		AssignedAt:   created.AssignedAt,
	})
	if err != nil {
		return apperrors.NewStorageError(err)
	}
	return nil
}

func (s *AssignmentService) finalizeWithTiming(ctx context.Context, q repository.Querier, assignmentID string, ticket *domain.Ticket, endedAt time.Time, reason domain.AssignmentEndReason) error {
	var resolutionHours *float64
	if !ticket.OpenedAt.IsZero() {
		snap := s.slaConfig.Snapshot(ctx)
		hours := sla.BusinessHoursBetween(ticket.OpenedAt, endedAt, snap.Calendar)
		resolutionHours = &hours
	}
	if err := s.history.Finalize(ctx, q, assignmentID, endedAt, reason, resolutionHours); err != nil {
		return apperrors.NewStorageError(err)
	}
	return nil
}

func (s *AssignmentService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	event.ID = uuid.NewString()
	event.Timestamp = s.now()
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event publish failed", zap.String("type", string(event.Type)), zap.Error(err))
	}
}

func appendNote(existing, addition string) string {
	addition = strings.TrimSpace(addition)
	if addition == "" {
		return existing
	}
	if existing == "" {
		return addition
	}
	return existing + " | " + addition
}
