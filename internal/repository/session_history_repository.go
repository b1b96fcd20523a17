package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hostbay/livechat-service/internal/domain"
)

// SessionHistoryRepository stores the immutable audit trail for
// session status and binding changes.
type SessionHistoryRepository interface {
	Create(ctx context.Context, entry *domain.SessionHistory) error
	ListBySession(ctx context.Context, sessionID string, limit, offset int) ([]domain.SessionHistory, error)
}

type sessionHistoryRepository struct {
	pool *pgxpool.Pool
}

// NewSessionHistoryRepository builds the repository.
func NewSessionHistoryRepository(pool *pgxpool.Pool) SessionHistoryRepository {
	return &sessionHistoryRepository{pool: pool}
}

func (r *sessionHistoryRepository) Create(ctx context.Context, entry *domain.SessionHistory) error {
	const query = `
        INSERT INTO session_history (session_id, actor_type, actor_id, change_type, old_value, new_value)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		entry.SessionID,
		entry.ActorType,
		entry.ActorID,
		entry.ChangeType,
		entry.OldValue,
		entry.NewValue,
	).Scan(&entry.ID, &entry.CreatedAt)
}

func (r *sessionHistoryRepository) ListBySession(ctx context.Context, sessionID string, limit, offset int) ([]domain.SessionHistory, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	const query = `
        SELECT id, session_id, actor_type, actor_id, change_type, old_value, new_value, created_at
        FROM session_history WHERE session_id=$1
        ORDER BY created_at ASC LIMIT $2 OFFSET $3`
	rows, err := r.pool.Query(ctx, query, sessionID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.SessionHistory
	for rows.Next() {
		var entry domain.SessionHistory
		if err := rows.Scan(
			&entry.ID,
			&entry.SessionID,
			&entry.ActorType,
			&entry.ActorID,
			&entry.ChangeType,
			&entry.OldValue,
			&entry.NewValue,
			&entry.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}
