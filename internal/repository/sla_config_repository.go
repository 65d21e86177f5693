package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/sla-service/internal/domain"
	"github.com/spec-kit/sla-service/internal/sla"
)

// CalendarRow is the persisted form of a business calendar.
type CalendarRow struct {
	ID       string
	DayStart string
	DayEnd   string
	Weekdays []int
	Timezone string
}

// DefaultCalendarID names the calendar evaluations use.
const DefaultCalendarID = "default"

// SLAConfigRepository reads the persisted SLA policy and business calendar.
type SLAConfigRepository interface {
	GetPolicy(ctx context.Context, q Querier) (sla.Policy, error)
	GetCalendar(ctx context.Context, q Querier, id string) (*sla.Calendar, error)
}

type slaConfigRepository struct{}

// NewSLAConfigRepository instantiates repository.
func NewSLAConfigRepository() SLAConfigRepository {
	return &slaConfigRepository{}
}

func (r *slaConfigRepository) GetPolicy(ctx context.Context, q Querier) (sla.Policy, error) {
	const query = `SELECT priority, first_response_hours, resolution_hours FROM sla_policies`
	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	policy := sla.Policy{}
	for rows.Next() {
		var priority domain.TicketPriority
		var target sla.PolicyTarget
		if err := rows.Scan(&priority, &target.FirstResponseHours, &target.ResolutionHours); err != nil {
			return nil, err
		}
		policy[priority] = target
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(policy) == 0 {
		return nil, pgx.ErrNoRows
	}
	return policy, nil
}

func (r *slaConfigRepository) GetCalendar(ctx context.Context, q Querier, id string) (*sla.Calendar, error) {
	const query = `SELECT id, day_start, day_end, weekdays, timezone FROM business_calendars WHERE id=$1`
	var row CalendarRow
	if err := q.QueryRow(ctx, query, id).Scan(&row.ID, &row.DayStart, &row.DayEnd, &row.Weekdays, &row.Timezone); err != nil {
		return nil, err
	}
	return row.Build()
}

// Build converts the persisted row into a calendar.
func (c CalendarRow) Build() (*sla.Calendar, error) {
	weekdays := make([]time.Weekday, 0, len(c.Weekdays))
	for _, wd := range c.Weekdays {
		weekdays = append(weekdays, time.Weekday(wd))
	}
	return sla.NewCalendar(c.DayStart, c.DayEnd, weekdays, c.Timezone)
}
