package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/sla-service/internal/domain"
)

// AssignmentHistoryRepository persists the immutable audit trail of
// assignments.
type AssignmentHistoryRepository interface {
	Create(ctx context.Context, q Querier, record *domain.AssignmentHistoryRecord) error
	// Finalize stamps the end of the assignment the record snapshots.
	Finalize(ctx context.Context, q Querier, assignmentID string, endedAt time.Time, reason domain.AssignmentEndReason, resolutionBusinessHours *float64) error
	ListByTicket(ctx context.Context, q Querier, ticketID string) ([]domain.AssignmentHistoryRecord, error)
}

type assignmentHistoryRepository struct{}

// NewAssignmentHistoryRepository instantiates repository.
func NewAssignmentHistoryRepository() AssignmentHistoryRepository {
	return &assignmentHistoryRepository{}
}

func (r *assignmentHistoryRepository) Create(ctx context.Context, q Querier, record *domain.AssignmentHistoryRecord) error {
	const query = `
        INSERT INTO assignment_history (assignment_id, ticket_id, agent_id, from_agent_id, assigned_by, note, assigned_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id, created_at`
	return q.QueryRow(ctx, query,
		record.AssignmentID,
		record.TicketID,
		record.AgentID,
		record.FromAgentID,
		record.AssignedBy,
		record.Note,
		record.AssignedAt,
	).Scan(&record.ID, &record.CreatedAt)
}

func (r *assignmentHistoryRepository) Finalize(ctx context.Context, q Querier, assignmentID string, endedAt time.Time, reason domain.AssignmentEndReason, resolutionBusinessHours *float64) error {
	const query = `
        UPDATE assignment_history SET ended_at=$1, end_reason=$2, resolution_business_hours=$3
        WHERE assignment_id=$4 AND ended_at IS NULL`
	cmd, err := q.Exec(ctx, query, endedAt, reason, resolutionBusinessHours, assignmentID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *assignmentHistoryRepository) ListByTicket(ctx context.Context, q Querier, ticketID string) ([]domain.AssignmentHistoryRecord, error) {
	const query = `
        SELECT id, assignment_id, ticket_id, agent_id, from_agent_id, assigned_by, note,
               assigned_at, ended_at, end_reason, resolution_business_hours, created_at
        FROM assignment_history WHERE ticket_id=$1 ORDER BY assigned_at`
	rows, err := q.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.AssignmentHistoryRecord
	for rows.Next() {
		var record domain.AssignmentHistoryRecord
		if err := rows.Scan(
			&record.ID,
			&record.AssignmentID,
			&record.TicketID,
			&record.AgentID,
			&record.FromAgentID,
			&record.AssignedBy,
			&record.Note,
			&record.AssignedAt,
			&record.EndedAt,
			&record.EndReason,
			&record.ResolutionBusinessHours,
			&record.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, record)
	}
	return result, rows.Err()
}
