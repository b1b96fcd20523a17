package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/hostbay/livechat-service/internal/auth"
	"github.com/hostbay/livechat-service/internal/config"
	"github.com/hostbay/livechat-service/internal/domain"
	"github.com/hostbay/livechat-service/internal/repository"
	apperrors "github.com/hostbay/livechat-service/pkg/util"
)

// AuthService signs agents into the console. Two paths exist: a
// password login, and one-time emailed login tokens with an expiry.
// Token delivery (the email itself) is external; this service only
// owns the token/expiry contract.
type AuthService struct {
	agents repository.AgentRepository
	tokens repository.LoginTokenRepository
	jwt    *auth.TokenManager
	cfg    config.AuthConfig
	logger *zap.Logger
	now    func() time.Time
}

// AuthDependencies bundles collaborators for the auth service.
type AuthDependencies struct {
	AgentRepo      repository.AgentRepository
	LoginTokenRepo repository.LoginTokenRepository
	Logger         *zap.Logger
	Now            func() time.Time
}

// LoginResult carries an issued bearer token.
type LoginResult struct {
	AccessToken string
	ExpiresAt   time.Time
	Agent       *domain.Agent
}

// NewAuthService constructs the service.
func NewAuthService(cfg config.AuthConfig, deps AuthDependencies) *AuthService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &AuthService{
		agents: deps.AgentRepo,
		tokens: deps.LoginTokenRepo,
		jwt:    auth.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTLMin),
		cfg:    cfg,
		logger: logger,
		now:    now,
	}
}

// TokenManager exposes the JWT manager for middleware wiring.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.jwt
}

// Login verifies an agent's password and issues a bearer token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return nil, apperrors.NewValidationError("email and password required", nil)
	}

	agent, err := s.agents.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, apperrors.MapError(err)
	}
	if err := auth.ComparePassword(agent.PasswordHash, password); err != nil {
		return nil, apperrors.NewUnauthorized("invalid credentials")
	}
	return s.issueAccessToken(agent)
}

// IssueLoginToken creates a one-time login token for the agent behind
// the given email. The token is handed to the mail pipeline by the
// caller; it expires after the configured TTL and dies on first use.
func (s *AuthService) IssueLoginToken(ctx context.Context, email string) (*domain.LoginToken, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" {
		return nil, apperrors.NewValidationError("email required", nil)
	}
	agent, err := s.agents.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("agent not found", map[string]any{"email": email})
		}
		return nil, apperrors.MapError(err)
	}

	token := &domain.LoginToken{
		AgentID:   agent.ID,
		Token:     uuid.NewString(),
		ExpiresAt: s.now().Add(time.Duration(s.cfg.LoginTokenTTLMinutes) * time.Minute),
	}
	if err := s.tokens.Create(ctx, token); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.logger.Info("login token issued", zap.String("agent_id", agent.ID))
	return token, nil
}

// RedeemLoginToken exchanges an unused, unexpired login token for a
// bearer token. Redemption is single-use even under concurrent calls.
func (s *AuthService) RedeemLoginToken(ctx context.Context, token string) (*LoginResult, error) {
	if strings.TrimSpace(token) == "" {
		return nil, apperrors.NewValidationError("token required", nil)
	}

	record, err := s.tokens.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewUnauthorized("invalid login token")
		}
		return nil, apperrors.MapError(err)
	}
	if !record.Usable(s.now()) {
		return nil, apperrors.NewUnauthorized("login token expired or already used")
	}
	if err := s.tokens.MarkUsed(ctx, record.ID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewUnauthorized("login token expired or already used")
		}
		return nil, apperrors.MapError(err)
	}

	agent, err := s.agents.GetByID(ctx, record.AgentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewUnauthorized("agent not found")
		}
		return nil, apperrors.MapError(err)
	}
	return s.issueAccessToken(agent)
}

func (s *AuthService) issueAccessToken(agent *domain.Agent) (*LoginResult, error) {
	accessToken, expiresAt, err := s.jwt.GenerateToken(agent.ID, agent.Role)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return &LoginResult{AccessToken: accessToken, ExpiresAt: expiresAt, Agent: agent}, nil
}
