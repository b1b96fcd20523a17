package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/hostbay/livechat-service/internal/domain"
	"github.com/hostbay/livechat-service/internal/repository"
	apperrors "github.com/hostbay/livechat-service/pkg/util"
)

// SessionView is the read-only composition served to the visitor
// widget and the agent console: the session joined with its department
// and agent, plus the full ordered message sequence. The message
// sequence is a consistent snapshot at read time; callers needing live
// updates re-poll.
type SessionView struct {
	Session    *domain.ChatSession
	Department *domain.Department
	Agent      *domain.Agent
	Messages   []domain.ChatMessage
}

// ChatViewService is the read path composing the session store and the
// message log. It performs no mutation.
type ChatViewService struct {
	sessions    *SessionService
	departments repository.DepartmentRepository
	agents      repository.AgentRepository
}

// NewChatViewService constructs the facade.
func NewChatViewService(sessions *SessionService, departments repository.DepartmentRepository, agents repository.AgentRepository) *ChatViewService {
	return &ChatViewService{
		sessions:    sessions,
		departments: departments,
		agents:      agents,
	}
}

// GetSessionView returns the full view for a session.
func (s *ChatViewService) GetSessionView(ctx context.Context, sessionID string) (*SessionView, error) {
	session, messages, err := s.sessions.GetSessionWithMessages(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	view, err := s.JoinSession(ctx, session)
	if err != nil {
		return nil, err
	}
	view.Messages = messages
	return view, nil
}

// JoinSession attaches department and agent context to a session
// without loading its messages, used for mutation responses.
func (s *ChatViewService) JoinSession(ctx context.Context, session *domain.ChatSession) (*SessionView, error) {
	view := &SessionView{Session: session}

	if session.DepartmentID != nil {
		dept, err := s.departments.GetByID(ctx, *session.DepartmentID)
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.MapError(err)
		}
		view.Department = dept
	}
	if session.AgentID != nil {
		agent, err := s.agents.GetByID(ctx, *session.AgentID)
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.MapError(err)
		}
		view.Agent = agent
	}
	return view, nil
}
