package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hostbay/livechat-service/internal/auth"
	"github.com/hostbay/livechat-service/internal/config"
	"github.com/hostbay/livechat-service/internal/domain"
)

type authFixture struct {
	svc    *AuthService
	agents *memAgentRepo
	tokens *memLoginTokenRepo
	now    time.Time
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	hash, err := auth.HashPassword("s3cret", 4)
	require.NoError(t, err)

	f := &authFixture{
		agents: &memAgentRepo{agents: []domain.Agent{
			{
				ID:           "a1",
				Name:         "Ana",
				Email:        "ana@example.com",
				PasswordHash: hash,
				Role:         domain.AgentRoleAgent,
				IsActive:     true,
			},
		}},
		tokens: newMemLoginTokenRepo(),
		now:    time.Date(2026, 3, 14, 10, 30, 0, 0, time.UTC),
	}
	f.svc = NewAuthService(config.AuthConfig{
		JWTSecret:            "test-secret",
		AccessTokenTTLMin:    60,
		LoginTokenTTLMinutes: 15,
		BcryptCost:           4,
	}, AuthDependencies{
		AgentRepo:      f.agents,
		LoginTokenRepo: f.tokens,
		Now:            func() time.Time { return f.now },
	})
	return f
}

func TestLoginIssuesBearerToken(t *testing.T) {
	f := newAuthFixture(t)

	result, err := f.svc.Login(context.Background(), "Ana@Example.com", "s3cret")
	require.NoError(t, err)
	assert.NotEmpty(t, result.AccessToken)
	assert.Equal(t, "a1", result.Agent.ID)

	claims, err := f.svc.TokenManager().ParseToken(result.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "a1", claims.AgentID)
	assert.Equal(t, domain.AgentRoleAgent, claims.Role)
}

func TestLoginWrongPassword(t *testing.T) {
	f := newAuthFixture(t)

	_, err := f.svc.Login(context.Background(), "ana@example.com", "wrong")
	requireCode(t, err, "UNAUTHORIZED")
}

func TestLoginUnknownEmail(t *testing.T) {
	f := newAuthFixture(t)

	// Unknown emails read the same as a bad password.
	_, err := f.svc.Login(context.Background(), "nobody@example.com", "s3cret")
	requireCode(t, err, "UNAUTHORIZED")
}

func TestIssueAndRedeemLoginToken(t *testing.T) {
	f := newAuthFixture(t)

	token, err := f.svc.IssueLoginToken(context.Background(), "ana@example.com")
	require.NoError(t, err)
	assert.NotEmpty(t, token.Token)
	assert.Equal(t, f.now.Add(15*time.Minute), token.ExpiresAt)

	result, err := f.svc.RedeemLoginToken(context.Background(), token.Token)
	require.NoError(t, err)
	assert.NotEmpty(t, result.AccessToken)
	assert.Equal(t, "a1", result.Agent.ID)
}

func TestRedeemLoginTokenOnlyOnce(t *testing.T) {
	f := newAuthFixture(t)

	token, err := f.svc.IssueLoginToken(context.Background(), "ana@example.com")
	require.NoError(t, err)

	_, err = f.svc.RedeemLoginToken(context.Background(), token.Token)
	require.NoError(t, err)

	_, err = f.svc.RedeemLoginToken(context.Background(), token.Token)
	domainErr := requireCode(t, err, "UNAUTHORIZED")
	assert.Equal(t, "login token expired or already used", domainErr.Message)
}

func TestRedeemExpiredLoginToken(t *testing.T) {
	f := newAuthFixture(t)

	token, err := f.svc.IssueLoginToken(context.Background(), "ana@example.com")
	require.NoError(t, err)

	f.now = f.now.Add(16 * time.Minute)
	_, err = f.svc.RedeemLoginToken(context.Background(), token.Token)
	domainErr := requireCode(t, err, "UNAUTHORIZED")
	assert.Equal(t, "login token expired or already used", domainErr.Message)
}

func TestRedeemUnknownToken(t *testing.T) {
	f := newAuthFixture(t)

	_, err := f.svc.RedeemLoginToken(context.Background(), "no-such-token")
	domainErr := requireCode(t, err, "UNAUTHORIZED")
	assert.Equal(t, "invalid login token", domainErr.Message)
}

func TestIssueLoginTokenUnknownEmail(t *testing.T) {
	f := newAuthFixture(t)

	_, err := f.svc.IssueLoginToken(context.Background(), "nobody@example.com")
	requireCode(t, err, "NOT_FOUND")
}
