package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/hostbay/livechat-service/internal/domain"
	"github.com/hostbay/livechat-service/internal/repository"
	apperrors "github.com/hostbay/livechat-service/pkg/util"
)

// AgentService covers the staff-management edge the chat core
// consumes: flipping an agent's on-duty flag and listing the roster.
type AgentService struct {
	agents repository.AgentRepository
}

// NewAgentService constructs the service.
func NewAgentService(agents repository.AgentRepository) *AgentService {
	return &AgentService{agents: agents}
}

// SetAvailability marks the agent on or off duty and returns the
// updated record. The directory view picks the change up on its next
// cache refresh.
func (s *AgentService) SetAvailability(ctx context.Context, agentID string, active bool) (*domain.Agent, error) {
	if agentID == "" {
		return nil, apperrors.NewValidationError("agent id required", nil)
	}
	if err := s.agents.SetActive(ctx, agentID, active); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("agent not found", map[string]any{"agent_id": agentID})
		}
		return nil, apperrors.MapError(err)
	}
	agent, err := s.agents.GetByID(ctx, agentID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return agent, nil
}

// ListByDepartment returns the roster for a department.
func (s *AgentService) ListByDepartment(ctx context.Context, departmentID string) ([]domain.Agent, error) {
	if departmentID == "" {
		return nil, apperrors.NewValidationError("department id required", nil)
	}
	agents, err := s.agents.List(ctx, repository.AgentFilter{DepartmentID: &departmentID, Limit: 500})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return agents, nil
}
