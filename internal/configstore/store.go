// Package configstore supplies the SLA policy and business calendar to
// evaluations. Configuration is read from storage, cached with an explicit
// TTL, and invalidated on demand; staleness up to the TTL is tolerated by
// design. Missing or invalid configuration fails closed to a conservative
// default rather than failing the caller.
package configstore

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/sla-service/internal/domain"
	"github.com/spec-kit/sla-service/internal/repository"
	"github.com/spec-kit/sla-service/internal/sla"
)

// Loader fetches configuration from its source of truth.
type Loader interface {
	LoadPolicy(ctx context.Context) (sla.Policy, error)
	LoadCalendar(ctx context.Context) (*sla.Calendar, error)
}

// Snapshot is one coherent policy/calendar pair.
type Snapshot struct {
	Policy   sla.Policy
	Calendar *sla.Calendar
	// Fallback is set when the snapshot carries the conservative default
	// because configuration could not be loaded or failed validation.
	Fallback bool
}

// Store caches configuration snapshots with a TTL.
type Store struct {
	loader Loader
	ttl    time.Duration
	logger *zap.Logger
	now    func() time.Time

	mu       sync.RWMutex
	cached   *Snapshot
	loadedAt time.Time
}

// New builds a store around a loader.
func New(loader Loader, ttl time.Duration, logger *zap.Logger) *Store {
	return &Store{loader: loader, ttl: ttl, logger: logger, now: time.Now}
}

// Snapshot returns the cached configuration, reloading it after the TTL
// expires. It never fails: load errors produce the conservative default
// snapshot, logged as a warning.
func (s *Store) Snapshot(ctx context.Context) Snapshot {
	s.mu.RLock()
	if s.cached != nil && s.now().Sub(s.loadedAt) < s.ttl {
		snap := *s.cached
		s.mu.RUnlock()
		return snap
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cached != nil && s.now().Sub(s.loadedAt) < s.ttl {
		return *s.cached
	}

	snap := s.load(ctx)
	s.cached = &snap
	s.loadedAt = s.now()
	return snap
}

// Invalidate drops the cached snapshot so the next call reloads.
func (s *Store) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cached = nil
	s.loadedAt = time.Time{}
}

func (s *Store) load(ctx context.Context) Snapshot {
	policy, err := s.loader.LoadPolicy(ctx)
	if err != nil {
		s.logger.Warn("failed to load sla policy, using conservative default", zap.Error(err))
		return defaultSnapshot()
	}
	if !policy.Valid() {
		s.logger.Warn("loaded sla policy failed validation, using conservative default")
		return defaultSnapshot()
	}
	calendar, err := s.loader.LoadCalendar(ctx)
	if err != nil {
		s.logger.Warn("failed to load business calendar, using conservative default", zap.Error(err))
		return defaultSnapshot()
	}
	return Snapshot{Policy: policy, Calendar: calendar}
}

// DefaultPolicy is the conservative fallback: the tightest budgets shipped
// with the service, so a configuration outage never silently relaxes SLAs.
func DefaultPolicy() sla.Policy {
	return sla.Policy{
		domain.TicketPriorityCritical: {FirstResponseHours: 1, ResolutionHours: 2},
		domain.TicketPriorityUrgent:   {FirstResponseHours: 2, ResolutionHours: 4},
		domain.TicketPriorityHigh:     {FirstResponseHours: 4, ResolutionHours: 16},
		domain.TicketPriorityNormal:   {FirstResponseHours: 8, ResolutionHours: 24},
		domain.TicketPriorityLow:      {FirstResponseHours: 16, ResolutionHours: 48},
	}
}

// DefaultCalendar mirrors the seeded default: Mon-Fri 08:00-18:00 in Sao
// Paulo.
func DefaultCalendar() *sla.Calendar {
	return sla.MustCalendar("08:00", "18:00",
		[]time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday},
		"America/Sao_Paulo")
}

func defaultSnapshot() Snapshot {
	return Snapshot{Policy: DefaultPolicy(), Calendar: DefaultCalendar(), Fallback: true}
}

// RepositoryLoader reads configuration through the SLA config repository.
type RepositoryLoader struct {
	DB   repository.Querier
	Repo repository.SLAConfigRepository
}

func (l RepositoryLoader) LoadPolicy(ctx context.Context) (sla.Policy, error) {
	return l.Repo.GetPolicy(ctx, l.DB)
}

func (l RepositoryLoader) LoadCalendar(ctx context.Context) (*sla.Calendar, error) {
	return l.Repo.GetCalendar(ctx, l.DB, repository.DefaultCalendarID)
}
