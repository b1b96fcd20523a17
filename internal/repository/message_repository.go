package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hostbay/livechat-service/internal/domain"
)

// MessageRepository manages the append-only per-session message log.
// Messages are never updated or deleted. Reads order by
// (created_at, seq) so two messages inside the same clock tick still
// have a stable total order.
type MessageRepository interface {
	Create(ctx context.Context, msg *domain.ChatMessage) error
	ListBySession(ctx context.Context, sessionID string) ([]domain.ChatMessage, error)
}

type messageRepository struct {
	pool *pgxpool.Pool
}

// NewMessageRepository builds the repository.
func NewMessageRepository(pool *pgxpool.Pool) MessageRepository {
	return &messageRepository{pool: pool}
}

func (r *messageRepository) Create(ctx context.Context, msg *domain.ChatMessage) error {
	const query = `
        INSERT INTO chat_messages (session_id, sender, agent_id, body)
        VALUES ($1,$2,$3,$4)
        RETURNING id, seq, created_at`
	return r.pool.QueryRow(ctx, query,
		msg.SessionID,
		msg.Sender,
		msg.AgentID,
		msg.Body,
	).Scan(&msg.ID, &msg.Seq, &msg.CreatedAt)
}

func (r *messageRepository) ListBySession(ctx context.Context, sessionID string) ([]domain.ChatMessage, error) {
	const query = `
        SELECT id, session_id, seq, sender, agent_id, body, created_at
        FROM chat_messages WHERE session_id=$1 ORDER BY created_at ASC, seq ASC`
	rows, err := r.pool.Query(ctx, query, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.ChatMessage
	for rows.Next() {
		var msg domain.ChatMessage
		if err := rows.Scan(
			&msg.ID,
			&msg.SessionID,
			&msg.Seq,
			&msg.Sender,
			&msg.AgentID,
			&msg.Body,
			&msg.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, msg)
	}
	return result, rows.Err()
}
