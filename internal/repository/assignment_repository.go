package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/sla-service/internal/domain"
)

// AssignmentRepository encapsulates assignment persistence.
type AssignmentRepository interface {
	Create(ctx context.Context, q Querier, assignment *domain.Assignment) error
	GetActiveByTicket(ctx context.Context, q Querier, ticketID string) (*domain.Assignment, error)
	// GetActiveByTicketForUpdate locks the active assignment row within the
	// surrounding transaction.
	GetActiveByTicketForUpdate(ctx context.Context, q Querier, ticketID string) (*domain.Assignment, error)
	CountActiveByAgent(ctx context.Context, q Querier, agentID string) (int, error)
	ListActiveByAgent(ctx context.Context, q Querier, agentID string) ([]domain.Assignment, error)
	// End deactivates an assignment, stamping ended_at and replacing the note.
	End(ctx context.Context, q Querier, id string, endedAt time.Time, note string) error
}

type assignmentRepository struct{}

// NewAssignmentRepository instantiates repository.
func NewAssignmentRepository() AssignmentRepository {
	return &assignmentRepository{}
}

const assignmentColumns = `id, ticket_id, agent_id, assigned_by, note, active, assigned_at, ended_at`

func (r *assignmentRepository) Create(ctx context.Context, q Querier, assignment *domain.Assignment) error {
	const query = `
        INSERT INTO assignments (ticket_id, agent_id, assigned_by, note, active, assigned_at)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id`
	return q.QueryRow(ctx, query,
		assignment.TicketID,
		assignment.AgentID,
		assignment.AssignedBy,
		assignment.Note,
		assignment.Active,
		assignment.AssignedAt,
	).Scan(&assignment.ID)
}

func (r *assignmentRepository) GetActiveByTicket(ctx context.Context, q Querier, ticketID string) (*domain.Assignment, error) {
	query := `SELECT ` + assignmentColumns + ` FROM assignments WHERE ticket_id=$1 AND active`
	return r.fetchSingle(ctx, q, query, ticketID)
}

func (r *assignmentRepository) GetActiveByTicketForUpdate(ctx context.Context, q Querier, ticketID string) (*domain.Assignment, error) {
	query := `SELECT ` + assignmentColumns + ` FROM assignments WHERE ticket_id=$1 AND active FOR UPDATE`
	return r.fetchSingle(ctx, q, query, ticketID)
}

func (r *assignmentRepository) CountActiveByAgent(ctx context.Context, q Querier, agentID string) (int, error) {
	const query = `SELECT COUNT(*) FROM assignments WHERE agent_id=$1 AND active`
	var count int
	if err := q.QueryRow(ctx, query, agentID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *assignmentRepository) ListActiveByAgent(ctx context.Context, q Querier, agentID string) ([]domain.Assignment, error) {
	query := `SELECT ` + assignmentColumns + ` FROM assignments WHERE agent_id=$1 AND active ORDER BY assigned_at`
	rows, err := q.Query(ctx, query, agentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Assignment
	for rows.Next() {
		var assignment domain.Assignment
		if err := scanAssignment(rows, &assignment); err != nil {
			return nil, err
		}
		result = append(result, assignment)
	}
	return result, rows.Err()
}

func (r *assignmentRepository) End(ctx context.Context, q Querier, id string, endedAt time.Time, note string) error {
	const query = `UPDATE assignments SET active=FALSE, ended_at=$1, note=$2 WHERE id=$3 AND active`
	cmd, err := q.Exec(ctx, query, endedAt, note, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *assignmentRepository) fetchSingle(ctx context.Context, q Querier, query string, arg any) (*domain.Assignment, error) {
	var assignment domain.Assignment
	if err := scanAssignment(q.QueryRow(ctx, query, arg), &assignment); err != nil {
		return nil, err
	}
	return &assignment, nil
}

func scanAssignment(row pgx.Row, assignment *domain.Assignment) error {
	return row.Scan(
		&assignment.ID,
		&assignment.TicketID,
		&assignment.AgentID,
		&assignment.AssignedBy,
		&assignment.Note,
		&assignment.Active,
		&assignment.AssignedAt,
		&assignment.EndedAt,
	)
}
