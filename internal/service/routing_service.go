package service

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/hostbay/livechat-service/internal/domain"
	"github.com/hostbay/livechat-service/internal/events"
	"github.com/hostbay/livechat-service/internal/repository"
	apperrors "github.com/hostbay/livechat-service/pkg/util"
)

// RoutingService decides which department and agent a session binds
// to, at session start and at claim time. It guarantees the
// availability view is validated at bind time, not stickiness: two
// concurrent claims race, and the conditional update decides the
// winner.
type RoutingService struct {
	directory  *DirectoryService
	sessions   repository.SessionRepository
	agents     repository.AgentRepository
	history    repository.SessionHistoryRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
	now        func() time.Time
}

// RoutingDependencies bundles collaborators for routing decisions.
type RoutingDependencies struct {
	Directory   *DirectoryService
	SessionRepo repository.SessionRepository
	AgentRepo   repository.AgentRepository
	HistoryRepo repository.SessionHistoryRepository
	Dispatcher  events.Dispatcher
	Logger      *zap.Logger
	Now         func() time.Time
}

// NewRoutingService constructs the service.
func NewRoutingService(deps RoutingDependencies) *RoutingService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &RoutingService{
		directory:  deps.Directory,
		sessions:   deps.SessionRepo,
		agents:     deps.AgentRepo,
		history:    deps.HistoryRepo,
		dispatcher: deps.Dispatcher,
		logger:     logger,
		now:        now,
	}
}

// ResolveDepartment validates a requested department against the
// current directory view, which may be the availability fallback. A
// nil request stays nil: picking a default department belongs to the
// session-creation flow, not to routing.
func (s *RoutingService) ResolveDepartment(ctx context.Context, requested *string) (*string, error) {
	if requested == nil {
		return nil, nil
	}
	listings, err := s.directory.ListActiveDepartments(ctx)
	if err != nil {
		return nil, err
	}
	for _, listing := range listings {
		if listing.ID == *requested {
			return requested, nil
		}
	}
	return nil, apperrors.NewValidationError("Department is not available", map[string]any{"department_id": *requested})
}

// ClaimSession binds the calling agent to an unassigned open session.
// A session that already has an agent is never silently reassigned;
// the claim fails with a conflict instead.
func (s *RoutingService) ClaimSession(ctx context.Context, agent *domain.Agent, sessionID string) (*domain.ChatSession, error) {
	if agent == nil {
		return nil, apperrors.NewUnauthorized("agent required")
	}
	if err := requireSessionID(sessionID); err != nil {
		return nil, err
	}

	session, err := s.sessions.AssignAgentIfUnassigned(ctx, sessionID, agent.ID)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.MapError(err)
		}
		return nil, s.explainFailedAssign(ctx, sessionID)
	}

	s.recordAgentChange(ctx, agent.ID, session, nil)
	s.publishAssigned(ctx, agent.ID, session)
	return session, nil
}

// AutoAssignSession picks the active agent with the fewest open
// sessions in the session's department and binds them. Two concurrent
// calls may pick the same agent; the conditional assign serializes the
// outcome.
func (s *RoutingService) AutoAssignSession(ctx context.Context, sessionID string) (*domain.ChatSession, *domain.Agent, error) {
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
	if session.DepartmentID == nil {
		return nil, nil, apperrors.NewConflict("session has no department to route within", map[string]any{"session_id": sessionID})
	}

	assignee, err := s.pickLeastLoadedAgent(ctx, *session.DepartmentID)
	if err != nil {
		return nil, nil, err
	}

	updated, err := s.sessions.AssignAgentIfUnassigned(ctx, sessionID, assignee.ID)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, apperrors.MapError(err)
		}
		return nil, nil, s.explainFailedAssign(ctx, sessionID)
	}

	s.recordAgentChange(ctx, assignee.ID, updated, nil)
	s.publishAssigned(ctx, assignee.ID, updated)
	return updated, assignee, nil
}

func (s *RoutingService) pickLeastLoadedAgent(ctx context.Context, departmentID string) (*domain.Agent, error) {
	active := true
	candidates, err := s.agents.List(ctx, repository.AgentFilter{
		DepartmentID: &departmentID,
		Active:       &active,
		Limit:        1000,
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if len(candidates) == 0 {
		return nil, apperrors.NewConflict("no active agents in department", map[string]any{"department_id": departmentID})
	}

	best := &candidates[0]
	bestLoad := -1
	for i := range candidates {
		load, err := s.sessions.CountOpenByAgent(ctx, candidates[i].ID)
		if err != nil {
			return nil, apperrors.MapError(err)
		}
		if bestLoad < 0 || load < bestLoad {
			best = &candidates[i]
			bestLoad = load
		}
	}
	return best, nil
}

// explainFailedAssign translates a failed conditional assign into the
// client-facing reason.
func (s *RoutingService) explainFailedAssign(ctx context.Context, sessionID string) error {
	existing, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("Chat session not found", map[string]any{"session_id": sessionID})
		}
		return apperrors.MapError(err)
	}
	if existing.IsClosed() {
		return apperrors.NewConflict("Chat session is closed", map[string]any{"session_id": sessionID})
	}
	if existing.AgentID != nil {
		return apperrors.NewConflict("Chat session already assigned", map[string]any{
			"session_id": sessionID,
			"agent_id":   *existing.AgentID,
		})
	}
	return apperrors.NewConflict("Chat session could not be assigned", map[string]any{"session_id": sessionID})
}

func (s *RoutingService) recordAgentChange(ctx context.Context, agentID string, session *domain.ChatSession, oldAgent *string) {
	if s.history == nil {
		return
	}
	entry := &domain.SessionHistory{
		SessionID:  session.ID,
		ActorType:  domain.ActorTypeAgent,
		ActorID:    &agentID,
		ChangeType: domain.ChangeTypeAgent,
		OldValue:   map[string]any{"agent_id": oldAgent},
		NewValue:   map[string]any{"agent_id": session.AgentID},
	}
	if err := s.history.Create(ctx, entry); err != nil {
		s.logger.Warn("session history write failed", zap.String("session_id", session.ID), zap.Error(err))
	}
}

func (s *RoutingService) publishAssigned(ctx context.Context, agentID string, session *domain.ChatSession) {
	publishEvent(ctx, s.dispatcher, events.Event{
		Type:      events.EventSessionAssigned,
		SessionID: session.ID,
		Actor:     events.Actor{Type: domain.ActorTypeAgent, AgentID: &agentID},
		Payload: events.SessionAssignedPayload{
			AgentID:      agentID,
			DepartmentID: session.DepartmentID,
		},
	}, s.now)
}
