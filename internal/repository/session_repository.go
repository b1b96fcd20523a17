package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hostbay/livechat-service/internal/domain"
)

// SessionFilter captures console listing parameters.
type SessionFilter struct {
	DepartmentID *string
	AgentID      *string
	Unassigned   bool
	Statuses     []domain.SessionStatus
	Limit        int
	Offset       int
}

// SessionRepository encapsulates chat session persistence. Status and
// assignment mutations are conditional updates so a lost race surfaces
// as pgx.ErrNoRows instead of a silent double-apply.
type SessionRepository interface {
	Create(ctx context.Context, session *domain.ChatSession) error
	GetByID(ctx context.Context, id string) (*domain.ChatSession, error)
	CloseIfOpen(ctx context.Context, id string, notes *string, closedAt time.Time) (*domain.ChatSession, error)
	AssignAgentIfUnassigned(ctx context.Context, id, agentID string) (*domain.ChatSession, error)
	ListWithFilter(ctx context.Context, filter SessionFilter) ([]domain.ChatSession, error)
	CountOpenByAgent(ctx context.Context, agentID string) (int, error)
}

type sessionRepository struct {
	pool *pgxpool.Pool
}

// NewSessionRepository instantiates the repository.
func NewSessionRepository(pool *pgxpool.Pool) SessionRepository {
	return &sessionRepository{pool: pool}
}

const sessionColumns = `id, visitor_name, visitor_email, department_id, agent_id, status, subject, notes, created_at, updated_at, closed_at`

func (r *sessionRepository) Create(ctx context.Context, session *domain.ChatSession) error {
	const query = `
        INSERT INTO chat_sessions (visitor_name, visitor_email, department_id, agent_id, status, subject, notes)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		session.VisitorName,
		session.VisitorEmail,
		session.DepartmentID,
		session.AgentID,
		session.Status,
		session.Subject,
		session.Notes,
	).Scan(&session.ID, &session.CreatedAt, &session.UpdatedAt)
}

func (r *sessionRepository) GetByID(ctx context.Context, id string) (*domain.ChatSession, error) {
	query := `SELECT ` + sessionColumns + ` FROM chat_sessions WHERE id=$1`
	return r.scanRow(r.pool.QueryRow(ctx, query, id))
}

// CloseIfOpen transitions the session to CLOSED only from OPEN. Notes
// are extended, never overwritten: a supplied annotation is appended to
// whatever is already there, newline separated.
func (r *sessionRepository) CloseIfOpen(ctx context.Context, id string, notes *string, closedAt time.Time) (*domain.ChatSession, error) {
	query := `
        UPDATE chat_sessions
        SET status=$2, closed_at=$3, updated_at=NOW(),
            notes = CASE
                WHEN $4::text IS NULL THEN notes
                WHEN notes = '' THEN $4::text
                ELSE notes || E'\n' || $4::text
            END
        WHERE id=$1 AND status=$5
        RETURNING ` + sessionColumns
	return r.scanRow(r.pool.QueryRow(ctx, query, id, domain.SessionStatusClosed, closedAt, notes, domain.SessionStatusOpen))
}

// AssignAgentIfUnassigned binds an agent only when no agent holds the
// session yet; an already-bound session is never silently reassigned.
func (r *sessionRepository) AssignAgentIfUnassigned(ctx context.Context, id, agentID string) (*domain.ChatSession, error) {
	query := `
        UPDATE chat_sessions
        SET agent_id=$2, updated_at=NOW()
        WHERE id=$1 AND agent_id IS NULL AND status=$3
        RETURNING ` + sessionColumns
	return r.scanRow(r.pool.QueryRow(ctx, query, id, agentID, domain.SessionStatusOpen))
}

func (r *sessionRepository) ListWithFilter(ctx context.Context, filter SessionFilter) ([]domain.ChatSession, error) {
	query := `SELECT ` + sessionColumns + ` FROM chat_sessions`
	args := []any{}
	clauses := []string{}

	if filter.DepartmentID != nil {
		args = append(args, *filter.DepartmentID)
		clauses = append(clauses, fmt.Sprintf("department_id=$%d", len(args)))
	}
	if filter.AgentID != nil {
		args = append(args, *filter.AgentID)
		clauses = append(clauses, fmt.Sprintf("agent_id=$%d", len(args)))
	}
	if filter.Unassigned {
		clauses = append(clauses, "agent_id IS NULL")
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	query += fmt.Sprintf(" ORDER BY created_at ASC LIMIT %d OFFSET %d", limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.ChatSession
	for rows.Next() {
		session, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *session)
	}
	return result, rows.Err()
}

func (r *sessionRepository) CountOpenByAgent(ctx context.Context, agentID string) (int, error) {
	const query = `SELECT COUNT(*) FROM chat_sessions WHERE agent_id=$1 AND status=$2`
	var count int
	if err := r.pool.QueryRow(ctx, query, agentID, domain.SessionStatusOpen).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *sessionRepository) scanRow(row pgx.Row) (*domain.ChatSession, error) {
	var session domain.ChatSession
	if err := row.Scan(
		&session.ID,
		&session.VisitorName,
		&session.VisitorEmail,
		&session.DepartmentID,
		&session.AgentID,
		&session.Status,
		&session.Subject,
		&session.Notes,
		&session.CreatedAt,
		&session.UpdatedAt,
		&session.ClosedAt,
	); err != nil {
		return nil, err
	}
	return &session, nil
}
