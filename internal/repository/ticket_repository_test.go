package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/sla-service/internal/domain"
)

// errRecorded aborts query execution after the SQL text has been captured.
var errRecorded = errors.New("recorded")

// recordingQuerier captures the SQL handed to Query so tests can assert on
// the generated statement without a database.
type recordingQuerier struct {
	sql  string
	args []any
}

func (r *recordingQuerier) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	r.sql, r.args = sql, arguments
	return pgconn.CommandTag{}, errRecorded
}

func (r *recordingQuerier) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	r.sql, r.args = sql, args
	return nil, errRecorded
}

func (r *recordingQuerier) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	r.sql, r.args = sql, args
	return nil
}

func TestListWithFilterZeroLimitScansFullPopulation(t *testing.T) {
	repo := NewTicketRepository()
	q := &recordingQuerier{}
	cutoff := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	_, err := repo.ListWithFilter(context.Background(), q, TicketFilter{OpenedFrom: &cutoff})
	require.ErrorIs(t, err, errRecorded)

	assert.Contains(t, q.sql, "opened_at >= $1")
	assert.NotContains(t, q.sql, "LIMIT")
	assert.NotContains(t, q.sql, "OFFSET")
	require.Len(t, q.args, 1)
	assert.Equal(t, cutoff, q.args[0])
}

func TestListWithFilterExplicitPaging(t *testing.T) {
	repo := NewTicketRepository()
	q := &recordingQuerier{}

	_, err := repo.ListWithFilter(context.Background(), q, TicketFilter{Limit: 25, Offset: 50})
	require.ErrorIs(t, err, errRecorded)

	assert.Contains(t, q.sql, "LIMIT 25")
	assert.Contains(t, q.sql, "OFFSET 50")
}

func TestListWithFilterStatusPlaceholders(t *testing.T) {
	repo := NewTicketRepository()
	q := &recordingQuerier{}

	_, err := repo.ListWithFilter(context.Background(), q, TicketFilter{
		Statuses: []domain.TicketStatus{domain.TicketStatusOpen, domain.TicketStatusWaiting},
	})
	require.ErrorIs(t, err, errRecorded)

	assert.Contains(t, q.sql, "status IN ($1,$2)")
	assert.NotContains(t, q.sql, "LIMIT")
	require.Len(t, q.args, 2)
}
