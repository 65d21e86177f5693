package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/sla-service/internal/domain"
	"github.com/spec-kit/sla-service/internal/repository"
	apperrors "github.com/spec-kit/sla-service/pkg/util/errorutil"
)

// TicketService covers ticket intake and lookups.
type TicketService struct {
	tx      repository.TxManager
	db      repository.Querier
	tickets repository.TicketRepository
	logger  *zap.Logger
	now     func() time.Time
}

// NewTicketService creates the service. db serves read paths outside a
// transaction.
func NewTicketService(tx repository.TxManager, db repository.Querier, tickets repository.TicketRepository, logger *zap.Logger) *TicketService {
	return &TicketService{
		tx:      tx,
		db:      db,
		tickets: tickets,
		logger:  logger,
		now:     time.Now,
	}
}

// TicketIntake carries the fields accepted at creation.
type TicketIntake struct {
	Subject        string
	Description    string
	RequesterEmail string
	Priority       domain.TicketPriority
}

// Create opens a new ticket. Priority defaults to NORMAL when omitted.
func (s *TicketService) Create(ctx context.Context, intake TicketIntake) (*domain.Ticket, error) {
	subject := strings.TrimSpace(intake.Subject)
	if subject == "" {
		return nil, apperrors.NewValidationError("subject is required", nil)
	}
	priority := intake.Priority
	if priority == "" {
		priority = domain.TicketPriorityNormal
	}
	if !domain.ValidPriority(priority) {
		return nil, apperrors.NewValidationError("unknown priority", map[string]any{"priority": priority})
	}

	ticket := &domain.Ticket{
		Subject:        subject,
		Description:    intake.Description,
		RequesterEmail: intake.RequesterEmail,
		Status:         domain.TicketStatusOpen,
		Priority:       priority,
		OpenedAt:       s.now(),
	}
	err := s.tx.WithTx(ctx, func(q repository.Querier) error {
		return s.tickets.Create(ctx, q, ticket)
	})
	if err != nil {
		return nil, apperrors.NewStorageError(err)
	}
	s.logger.Info("ticket created",
		zap.String("ticket_id", ticket.ID),
		zap.String("priority", string(ticket.Priority)))
	return ticket, nil
}

// GetByID loads a single ticket.
func (s *TicketService) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, s.db, id)
	if err != nil {
		return nil, apperrors.MapStorageError(err, "ticket")
	}
	return ticket, nil
}

// List returns tickets matching the filter.
func (s *TicketService) List(ctx context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	tickets, err := s.tickets.ListWithFilter(ctx, s.db, filter)
	if err != nil {
		return nil, apperrors.NewStorageError(err)
	}
	return tickets, nil
}

// RecordFirstResponse stamps the first agent reply on the ticket. The
// earliest stamp wins; later calls are no-ops returning the stored ticket.
func (s *TicketService) RecordFirstResponse(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	var ticket *domain.Ticket
	err := s.tx.WithTx(ctx, func(q repository.Querier) error {
		var err error
		ticket, err = s.tickets.GetForUpdate(ctx, q, ticketID)
		if err != nil {
			return apperrors.MapStorageError(err, "ticket")
		}
		if ticket.Terminal() {
			return apperrors.NewInvalidTicketState(ticket.ID, string(ticket.Status))
		}
		if ticket.FirstRespondedAt != nil {
			return nil
		}
		now := s.now()
		ticket.FirstRespondedAt = &now
		if ticket.Status == domain.TicketStatusOpen {
			ticket.Status = domain.TicketStatusWaiting
		}
		if err := s.tickets.Update(ctx, q, ticket); err != nil {
			return apperrors.NewStorageError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ticket, nil
}
