package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hostbay/livechat-service/internal/domain"
)

// LoginTokenRepository stores one-time console login tokens. MarkUsed
// is conditional so a token can be redeemed at most once even under
// concurrent redemption.
type LoginTokenRepository interface {
	Create(ctx context.Context, token *domain.LoginToken) error
	GetByToken(ctx context.Context, token string) (*domain.LoginToken, error)
	MarkUsed(ctx context.Context, id string) error
}

type loginTokenRepository struct {
	pool *pgxpool.Pool
}

// NewLoginTokenRepository builds the repository.
func NewLoginTokenRepository(pool *pgxpool.Pool) LoginTokenRepository {
	return &loginTokenRepository{pool: pool}
}

func (r *loginTokenRepository) Create(ctx context.Context, token *domain.LoginToken) error {
	const query = `
        INSERT INTO agent_login_tokens (agent_id, token, expires_at)
        VALUES ($1,$2,$3)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		token.AgentID,
		token.Token,
		token.ExpiresAt,
	).Scan(&token.ID, &token.CreatedAt)
}

func (r *loginTokenRepository) GetByToken(ctx context.Context, token string) (*domain.LoginToken, error) {
	const query = `
        SELECT id, agent_id, token, expires_at, used_at, created_at
        FROM agent_login_tokens WHERE token=$1`
	var record domain.LoginToken
	if err := r.pool.QueryRow(ctx, query, token).Scan(
		&record.ID,
		&record.AgentID,
		&record.Token,
		&record.ExpiresAt,
		&record.UsedAt,
		&record.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *loginTokenRepository) MarkUsed(ctx context.Context, id string) error {
	const query = `UPDATE agent_login_tokens SET used_at=NOW() WHERE id=$1 AND used_at IS NULL`
	cmd, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
