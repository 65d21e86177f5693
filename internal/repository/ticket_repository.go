package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/sla-service/internal/domain"
)

// TicketFilter captures ticket search parameters.
type TicketFilter struct {
	Statuses   []domain.TicketStatus
	Priorities []domain.TicketPriority
	OpenedFrom *time.Time
	OpenedTo   *time.Time
	Limit      int
	Offset     int
}

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, q Querier, ticket *domain.Ticket) error
	Update(ctx context.Context, q Querier, ticket *domain.Ticket) error
	GetByID(ctx context.Context, q Querier, id string) (*domain.Ticket, error)
	GetForUpdate(ctx context.Context, q Querier, id string) (*domain.Ticket, error)
	ListWithFilter(ctx context.Context, q Querier, filter TicketFilter) ([]domain.Ticket, error)
}

type ticketRepository struct{}

// NewTicketRepository instantiates repository.
func NewTicketRepository() TicketRepository {
	return &ticketRepository{}
}

const ticketColumns = `id, subject, description, requester_email, status, priority,
               opened_at, first_responded_at, closed_at, created_at, updated_at`

func (r *ticketRepository) Create(ctx context.Context, q Querier, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (subject, description, requester_email, status, priority, opened_at)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at, updated_at`
	return q.QueryRow(ctx, query,
		ticket.Subject,
		ticket.Description,
		ticket.RequesterEmail,
		ticket.Status,
		ticket.Priority,
		ticket.OpenedAt,
	).Scan(&ticket.ID, &ticket.CreatedAt, &ticket.UpdatedAt)
}

func (r *ticketRepository) Update(ctx context.Context, q Querier, ticket *domain.Ticket) error {
	const query = `
        UPDATE tickets SET subject=$1, description=$2, requester_email=$3, status=$4,
            priority=$5, first_responded_at=$6, closed_at=$7, updated_at=NOW()
        WHERE id=$8`
	cmd, err := q.Exec(ctx, query,
		ticket.Subject,
		ticket.Description,
		ticket.RequesterEmail,
		ticket.Status,
		ticket.Priority,
		ticket.FirstRespondedAt,
		ticket.ClosedAt,
		ticket.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketRepository) GetByID(ctx context.Context, q Querier, id string) (*domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE id=$1`
	return r.fetchSingle(ctx, q, query, id)
}

// GetForUpdate locks the ticket row for the duration of the surrounding
// transaction, serializing assignment operations per ticket.
func (r *ticketRepository) GetForUpdate(ctx context.Context, q Querier, id string) (*domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE id=$1 FOR UPDATE`
	return r.fetchSingle(ctx, q, query, id)
}

func (r *ticketRepository) fetchSingle(ctx context.Context, q Querier, query string, arg any) (*domain.Ticket, error) {
	var ticket domain.Ticket
	if err := q.QueryRow(ctx, query, arg).Scan(
		&ticket.ID,
		&ticket.Subject,
		&ticket.Description,
		&ticket.RequesterEmail,
		&ticket.Status,
		&ticket.Priority,
		&ticket.OpenedAt,
		&ticket.FirstRespondedAt,
		&ticket.ClosedAt,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *ticketRepository) ListWithFilter(ctx context.Context, q Querier, filter TicketFilter) ([]domain.Ticket, error) {
	base := `SELECT ` + ticketColumns + ` FROM tickets`
	clauses := []string{"1=1"}
	args := []any{}

	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}
	if len(filter.Priorities) > 0 {
		placeholders := make([]string, len(filter.Priorities))
		for i, pr := range filter.Priorities {
			args = append(args, pr)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("priority IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.OpenedFrom != nil {
		args = append(args, *filter.OpenedFrom)
		clauses = append(clauses, fmt.Sprintf("opened_at >= $%d", len(args)))
	}
	if filter.OpenedTo != nil {
		args = append(args, *filter.OpenedTo)
		clauses = append(clauses, fmt.Sprintf("opened_at <= $%d", len(args)))
	}

	// A non-positive limit means the full population: scan callers
	// (metrics rollup, violation monitor) must see every matching row.
	query := fmt.Sprintf(`%s WHERE %s ORDER BY opened_at DESC`,
		base, strings.Join(clauses, " AND "))
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET %d", filter.Offset)
	}

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

func scanTickets(rows pgx.Rows) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for rows.Next() {
		var ticket domain.Ticket
		if err := rows.Scan(
			&ticket.ID,
			&ticket.Subject,
			&ticket.Description,
			&ticket.RequesterEmail,
			&ticket.Status,
			&ticket.Priority,
			&ticket.OpenedAt,
			&ticket.FirstRespondedAt,
			&ticket.ClosedAt,
			&ticket.CreatedAt,
			&ticket.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, ticket)
	}
	return result, rows.Err()
}
