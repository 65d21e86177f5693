package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/sla-service/internal/domain"
)

// AgentRepository encapsulates agent persistence.
type AgentRepository interface {
	Create(ctx context.Context, q Querier, agent *domain.Agent) error
	GetByID(ctx context.Context, q Querier, id string) (*domain.Agent, error)
	GetByEmail(ctx context.Context, q Querier, email string) (*domain.Agent, error)
	// LockForAssignment loads the agent row under FOR UPDATE so the capacity
	// check and the assignment insert serialize per agent.
	LockForAssignment(ctx context.Context, q Querier, id string) (*domain.Agent, error)
	ListActive(ctx context.Context, q Querier) ([]domain.Agent, error)
}

type agentRepository struct{}

// NewAgentRepository instantiates repository.
func NewAgentRepository() AgentRepository {
	return &agentRepository{}
}

const agentColumns = `id, name, email, password_hash, active, experience_level,
               max_concurrent_tickets, created_at, updated_at`

func (r *agentRepository) Create(ctx context.Context, q Querier, agent *domain.Agent) error {
	const query = `
        INSERT INTO agents (name, email, password_hash, active, experience_level, max_concurrent_tickets)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at, updated_at`
	return q.QueryRow(ctx, query,
		agent.Name,
		agent.Email,
		agent.PasswordHash,
		agent.Active,
		agent.ExperienceLevel,
		agent.MaxConcurrentTickets,
	).Scan(&agent.ID, &agent.CreatedAt, &agent.UpdatedAt)
}

func (r *agentRepository) GetByID(ctx context.Context, q Querier, id string) (*domain.Agent, error) {
	query := `SELECT ` + agentColumns + ` FROM agents WHERE id=$1`
	return r.fetchSingle(ctx, q, query, id)
}

func (r *agentRepository) GetByEmail(ctx context.Context, q Querier, email string) (*domain.Agent, error) {
	query := `SELECT ` + agentColumns + ` FROM agents WHERE email=$1`
	return r.fetchSingle(ctx, q, query, email)
}

func (r *agentRepository) LockForAssignment(ctx context.Context, q Querier, id string) (*domain.Agent, error) {
	query := `SELECT ` + agentColumns + ` FROM agents WHERE id=$1 FOR UPDATE`
	return r.fetchSingle(ctx, q, query, id)
}

func (r *agentRepository) ListActive(ctx context.Context, q Querier) ([]domain.Agent, error) {
	query := `SELECT ` + agentColumns + ` FROM agents WHERE active ORDER BY created_at`
	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Agent
	for rows.Next() {
		var agent domain.Agent
		if err := scanAgent(rows, &agent); err != nil {
			return nil, err
		}
		result = append(result, agent)
	}
	return result, rows.Err()
}

func (r *agentRepository) fetchSingle(ctx context.Context, q Querier, query string, arg any) (*domain.Agent, error) {
	var agent domain.Agent
	if err := scanAgent(q.QueryRow(ctx, query, arg), &agent); err != nil {
		return nil, err
	}
	return &agent, nil
}

func scanAgent(row pgx.Row, agent *domain.Agent) error {
	return row.Scan(
		&agent.ID,
		&agent.Name,
		&agent.Email,
		&agent.PasswordHash,
		&agent.Active,
		&agent.ExperienceLevel,
		&agent.MaxConcurrentTickets,
		&agent.CreatedAt,
		&agent.UpdatedAt,
	)
}
