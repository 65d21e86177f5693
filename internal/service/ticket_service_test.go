package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/sla-service/internal/domain"
)

func newTicketFixture() (*memStore, *TicketService) {
	store := newMemStore()
	svc := NewTicketService(fakeTxManager{}, nil, memTicketRepo{store}, zap.NewNop())
	return store, svc
}

func TestCreateTicketDefaults(t *testing.T) {
	store, svc := newTicketFixture()

	ticket, err := svc.Create(context.Background(), TicketIntake{Subject: "  vpn down  "})
	require.NoError(t, err)

	assert.Equal(t, "vpn down", ticket.Subject)
	assert.Equal(t, domain.TicketStatusOpen, ticket.Status)
	assert.Equal(t, domain.TicketPriorityNormal, ticket.Priority)
	assert.False(t, ticket.OpenedAt.IsZero())
	assert.Len(t, store.tickets, 1)
}

func TestCreateTicketValidation(t *testing.T) {
	_, svc := newTicketFixture()

	_, err := svc.Create(context.Background(), TicketIntake{Subject: "   "})
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_FAILED", errCode(t, err))

	_, err = svc.Create(context.Background(), TicketIntake{Subject: "x", Priority: "BANANA"})
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_FAILED", errCode(t, err))
}

func TestRecordFirstResponse(t *testing.T) {
	store, svc := newTicketFixture()
	ticket := &domain.Ticket{
		ID:       store.id("ticket"),
		Subject:  "subject",
		Status:   domain.TicketStatusOpen,
		Priority: domain.TicketPriorityHigh,
		OpenedAt: time.Now().Add(-2 * time.Hour),
	}
	store.tickets[ticket.ID] = ticket

	updated, err := svc.RecordFirstResponse(context.Background(), ticket.ID)
	require.NoError(t, err)
	require.NotNil(t, updated.FirstRespondedAt)
	assert.Equal(t, domain.TicketStatusWaiting, updated.Status)

	// Second call keeps the earliest stamp.
	first := *updated.FirstRespondedAt
	again, err := svc.RecordFirstResponse(context.Background(), ticket.ID)
	require.NoError(t, err)
	require.NotNil(t, again.FirstRespondedAt)
	assert.Equal(t, first, *again.FirstRespondedAt)
}

func TestRecordFirstResponseTerminalTicket(t *testing.T) {
	store, svc := newTicketFixture()
	closedAt := time.Now()
	ticket := &domain.Ticket{
		ID:       store.id("ticket"),
		Subject:  "subject",
		Status:   domain.TicketStatusResolved,
		Priority: domain.TicketPriorityLow,
		OpenedAt: time.Now().Add(-4 * time.Hour),
		ClosedAt: &closedAt,
	}
	store.tickets[ticket.ID] = ticket

	_, err := svc.RecordFirstResponse(context.Background(), ticket.ID)
	require.Error(t, err)
	assert.Equal(t, "INVALID_TICKET_STATE", errCode(t, err))
}

func TestGetTicketNotFound(t *testing.T) {
	_, svc := newTicketFixture()

	_, err := svc.GetByID(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", errCode(t, err))
}
