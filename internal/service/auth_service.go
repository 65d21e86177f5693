package service

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/sla-service/internal/auth"
	"github.com/spec-kit/sla-service/internal/config"
	"github.com/spec-kit/sla-service/internal/domain"
	"github.com/spec-kit/sla-service/internal/repository"
	apperrors "github.com/spec-kit/sla-service/pkg/util/errorutil"
)

// AuthService coordinates agent registration and login.
type AuthService struct {
	tx         repository.TxManager
	db         repository.Querier
	agents     repository.AgentRepository
	tokenMgr   *auth.TokenManager
	bcryptCost int
}

// NewAuthService builds the service.
func NewAuthService(cfg config.AuthConfig, tx repository.TxManager, db repository.Querier, agents repository.AgentRepository) *AuthService {
	return &AuthService{
		tx:         tx,
		db:         db,
		agents:     agents,
		tokenMgr:   auth.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTLMinutes),
		bcryptCost: cfg.BcryptCost,
	}
}

// TokenManager exposes the manager for middleware wiring.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

// RegisterAgent creates an agent account with a hashed password.
func (s *AuthService) RegisterAgent(ctx context.Context, name, email, password string, experience domain.AgentExperience, maxConcurrent int) (*domain.Agent, error) {
	if _, err := s.agents.GetByEmail(ctx, s.db, email); err == nil {
		return nil, apperrors.NewConflict("email already registered", map[string]any{"email": email})
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NewStorageError(err)
	}
	if maxConcurrent <= 0 {
		return nil, apperrors.NewValidationError("max concurrent tickets must be positive", nil)
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	agent := &domain.Agent{
		Name:                 name,
		Email:                email,
		PasswordHash:         hash,
		Active:               true,
		ExperienceLevel:      experience,
		MaxConcurrentTickets: maxConcurrent,
	}
	err = s.tx.WithTx(ctx, func(q repository.Querier) error {
		return s.agents.Create(ctx, q, agent)
	})
	if err != nil {
		return nil, apperrors.NewStorageError(err)
	}
	return agent, nil
}

// Login verifies credentials and issues an access token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.Agent, string, time.Time, error) {
	agent, err := s.agents.GetByEmail(ctx, s.db, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, "", time.Time{}, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, "", time.Time{}, apperrors.NewStorageError(err)
	}
	if !agent.Active {
		return nil, "", time.Time{}, apperrors.NewUnauthorized("agent disabled")
	}
	if err := auth.ComparePassword(agent.PasswordHash, password); err != nil {
		return nil, "", time.Time{}, apperrors.NewUnauthorized("invalid credentials")
	}

	token, exp, err := s.tokenMgr.GenerateToken(agent.ID)
	if err != nil {
		return nil, "", time.Time{}, apperrors.NewInternalError(err)
	}
	return agent, token, exp, nil
}
