package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/hostbay/livechat-service/internal/domain"
	"github.com/hostbay/livechat-service/internal/events"
	"github.com/hostbay/livechat-service/internal/repository"
	apperrors "github.com/hostbay/livechat-service/pkg/util"
)

// ActorRef identifies who performed an operation, for audit entries
// and events. Handlers build it from explicit request state, never
// from anything ambient.
type ActorRef struct {
	Type domain.ActorType
	ID   *string
}

// SystemActor is used for operations without a request principal.
var SystemActor = ActorRef{Type: domain.ActorTypeSystem}

// SessionService owns the chat session lifecycle and the per-session
// message log.
type SessionService struct {
	sessions   repository.SessionRepository
	messages   repository.MessageRepository
	history    repository.SessionHistoryRepository
	routing    *RoutingService
	dispatcher events.Dispatcher
	logger     *zap.Logger
	now        func() time.Time
}

// SessionDependencies bundles collaborators for the session service.
type SessionDependencies struct {
	SessionRepo repository.SessionRepository
	MessageRepo repository.MessageRepository
	HistoryRepo repository.SessionHistoryRepository
	Routing     *RoutingService
	Dispatcher  events.Dispatcher
	Logger      *zap.Logger
	Now         func() time.Time
}

// StartSessionInput describes the visitor "start chat" payload.
type StartSessionInput struct {
	VisitorName  string
	VisitorEmail string
	Subject      string
	DepartmentID *string
}

// SessionListInput describes console queue filters.
type SessionListInput struct {
	DepartmentID *string
	AgentID      *string
	Unassigned   bool
	Statuses     []domain.SessionStatus
	Limit        int
	Offset       int
}

// PostMessageInput describes a message append. Sender is carried by
// the caller, never inferred.
type PostMessageInput struct {
	SessionID string
	Sender    domain.SenderRole
	AgentID   *string
	Body      string
}

// NewSessionService constructs the service.
func NewSessionService(deps SessionDependencies) *SessionService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &SessionService{
		sessions:   deps.SessionRepo,
		messages:   deps.MessageRepo,
		history:    deps.HistoryRepo,
		routing:    deps.Routing,
		dispatcher: deps.Dispatcher,
		logger:     logger,
		now:        now,
	}
}

// StartSession opens a new session for a visitor. A requested
// department is validated against the current directory view before
// binding; with no department requested the session starts unbound.
func (s *SessionService) StartSession(ctx context.Context, input StartSessionInput) (*domain.ChatSession, error) {
	if strings.TrimSpace(input.VisitorName) == "" {
		return nil, apperrors.NewValidationError("Visitor name is required", nil)
	}
	if strings.TrimSpace(input.Subject) == "" {
		return nil, apperrors.NewValidationError("Subject is required", nil)
	}

	departmentID := input.DepartmentID
	if s.routing != nil {
		resolved, err := s.routing.ResolveDepartment(ctx, input.DepartmentID)
		if err != nil {
			return nil, err
		}
		departmentID = resolved
	}

	session := &domain.ChatSession{
		VisitorName:  strings.TrimSpace(input.VisitorName),
		VisitorEmail: strings.TrimSpace(input.VisitorEmail),
		DepartmentID: departmentID,
		Status:       domain.SessionStatusOpen,
		Subject:      strings.TrimSpace(input.Subject),
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publish(ctx, events.Event{
		Type:      events.EventSessionOpened,
		SessionID: session.ID,
		Actor:     events.Actor{Type: domain.ActorTypeVisitor},
		Payload: events.SessionOpenedPayload{
			DepartmentID: session.DepartmentID,
			AgentID:      session.AgentID,
			Subject:      session.Subject,
			VisitorName:  session.VisitorName,
		},
	})
	return session, nil
}

// GetSessionWithMessages returns session metadata plus every message
// ordered by creation time ascending.
func (s *SessionService) GetSessionWithMessages(ctx context.Context, sessionID string) (*domain.ChatSession, []domain.ChatMessage, error) {
	if err := requireSessionID(sessionID); err != nil {
		return nil, nil, err
	}
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, apperrors.NewNotFound("Chat session not found", map[string]any{"session_id": sessionID})
		}
		return nil, nil, apperrors.MapError(err)
	}
	messages, err := s.messages.ListBySession(ctx, session.ID)
	if err != nil {
		return nil, nil, apperrors.MapError(err)
	}
	return session, messages, nil
}

// ListSessions returns the console queue view.
func (s *SessionService) ListSessions(ctx context.Context, input SessionListInput) ([]domain.ChatSession, error) {
	sessions, err := s.sessions.ListWithFilter(ctx, repository.SessionFilter{
		DepartmentID: input.DepartmentID,
		AgentID:      input.AgentID,
		Unassigned:   input.Unassigned,
		Statuses:     input.Statuses,
		Limit:        input.Limit,
		Offset:       input.Offset,
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return sessions, nil
}

// CloseSession transitions a session to its terminal state. Closing
// notes, when supplied, are appended to the existing notes separated
// by a newline; existing notes are never overwritten. The transition
// is guarded: a session that is already closed yields a conflict
// rather than a second closed_at stamp.
func (s *SessionService) CloseSession(ctx context.Context, actor ActorRef, sessionID string, notes *string) (*domain.ChatSession, error) {
	if err := requireSessionID(sessionID); err != nil {
		return nil, err
	}
	if notes != nil && strings.TrimSpace(*notes) == "" {
		notes = nil
	}

	closedAt := s.now()
	session, err := s.sessions.CloseIfOpen(ctx, sessionID, notes, closedAt)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.MapError(err)
		}
		// The conditional update matched nothing: distinguish a missing
		// session from one that already reached the terminal state.
		existing, getErr := s.sessions.GetByID(ctx, sessionID)
		if getErr != nil {
			if errors.Is(getErr, pgx.ErrNoRows) {
				return nil, apperrors.NewNotFound("Chat session not found", map[string]any{"session_id": sessionID})
			}
			return nil, apperrors.MapError(getErr)
		}
		if existing.IsClosed() {
			return nil, apperrors.NewConflict("Chat session already closed", map[string]any{"session_id": sessionID})
		}
		return nil, apperrors.NewNotFound("Chat session not found", map[string]any{"session_id": sessionID})
	}

	s.recordStatusChange(ctx, actor, session.ID, domain.SessionStatusOpen, domain.SessionStatusClosed)
	s.publish(ctx, events.Event{
		Type:      events.EventSessionClosed,
		SessionID: session.ID,
		Actor:     actorForEvent(actor),
		Payload: events.SessionClosedPayload{
			ClosedAt:   closedAt,
			NotesAdded: notes != nil,
		},
	})
	return session, nil
}

// PostMessage appends a message to the session log. Messages to closed
// sessions are rejected: the transcript a visitor saw at close time is
// final.
func (s *SessionService) PostMessage(ctx context.Context, input PostMessageInput) (*domain.ChatMessage, error) {
	if err := requireSessionID(input.SessionID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.Body) == "" {
		return nil, apperrors.NewValidationError("Message body is required", nil)
	}
	switch input.Sender {
	case domain.SenderRoleVisitor:
	case domain.SenderRoleAgent:
		if input.AgentID == nil {
			return nil, apperrors.NewValidationError("Agent ID is required for agent messages", nil)
		}
	default:
		return nil, apperrors.NewValidationError("Unknown sender role", nil)
	}

	session, err := s.sessions.GetByID(ctx, input.SessionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("Chat session not found", map[string]any{"session_id": input.SessionID})
		}
		return nil, apperrors.MapError(err)
	}
	if session.IsClosed() {
		return nil, apperrors.NewConflict("Chat session is closed", map[string]any{"session_id": session.ID})
	}

	msg := &domain.ChatMessage{
		SessionID: session.ID,
		Sender:    input.Sender,
		AgentID:   input.AgentID,
		Body:      strings.TrimSpace(input.Body),
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publish(ctx, events.Event{
		Type:      events.EventMessagePosted,
		SessionID: session.ID,
		Actor:     actorForSender(input.Sender, input.AgentID),
		Payload: events.MessagePostedPayload{
			MessageID:   msg.ID,
			Sender:      msg.Sender,
			AgentID:     msg.AgentID,
			BodyPreview: bodyPreview(msg.Body, 120),
		},
	})
	return msg, nil
}

func (s *SessionService) recordStatusChange(ctx context.Context, actor ActorRef, sessionID string, oldStatus, newStatus domain.SessionStatus) {
	if s.history == nil {
		return
	}
	entry := &domain.SessionHistory{
		SessionID:  sessionID,
		ActorType:  actor.Type,
		ActorID:    actor.ID,
		ChangeType: domain.ChangeTypeStatus,
		OldValue:   map[string]any{"status": oldStatus},
		NewValue:   map[string]any{"status": newStatus},
	}
	if err := s.history.Create(ctx, entry); err != nil {
		s.logger.Warn("session history write failed", zap.String("session_id", sessionID), zap.Error(err))
	}
}

func (s *SessionService) publish(ctx context.Context, event events.Event) {
	publishEvent(ctx, s.dispatcher, event, s.now)
}

func requireSessionID(sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return apperrors.NewValidationError("Session ID is required", nil)
	}
	return nil
}

func actorForEvent(actor ActorRef) events.Actor {
	converted := events.Actor{Type: actor.Type}
	if actor.Type == domain.ActorTypeAgent {
		converted.AgentID = actor.ID
	}
	return converted
}

func actorForSender(sender domain.SenderRole, agentID *string) events.Actor {
	if sender == domain.SenderRoleAgent {
		return events.Actor{Type: domain.ActorTypeAgent, AgentID: agentID}
	}
	return events.Actor{Type: domain.ActorTypeVisitor}
}

// bodyPreview truncates to max runes, never mid-sequence, so event
// payloads stay valid UTF-8.
func bodyPreview(body string, max int) string {
	body = strings.TrimSpace(body)
	runes := []rune(body)
	if len(runes) <= max {
		return body
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}
