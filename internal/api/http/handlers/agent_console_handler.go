package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/hostbay/livechat-service/internal/api/dto"
	"github.com/hostbay/livechat-service/internal/auth"
	"github.com/hostbay/livechat-service/internal/domain"
	"github.com/hostbay/livechat-service/internal/service"
	apperrors "github.com/hostbay/livechat-service/pkg/util"
)

// AgentConsoleHandler serves authenticated agent operations: presence,
// claiming, replying and closing.
type AgentConsoleHandler struct {
	sessions *service.SessionService
	routing  *service.RoutingService
	agents   *service.AgentService
	view     *service.ChatViewService
}

// NewAgentConsoleHandler constructs handler.
func NewAgentConsoleHandler(sessions *service.SessionService, routing *service.RoutingService, agents *service.AgentService, view *service.ChatViewService) *AgentConsoleHandler {
	return &AgentConsoleHandler{sessions: sessions, routing: routing, agents: agents, view: view}
}

// SetPresence PUT /agent/presence.
func (h *AgentConsoleHandler) SetPresence(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Agent == nil {
		return apperrors.NewUnauthorized("agent required")
	}
	var req dto.PresenceRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	agent, err := h.agents.SetAvailability(c.UserContext(), principal.Agent.ID, req.Active)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"agent": dto.AgentPublic{
			ID:       agent.ID,
			Name:     agent.Name,
			IsActive: agent.IsActive,
		},
	})
}

// Claim POST /agent/sessions/:id/claim.
func (h *AgentConsoleHandler) Claim(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Agent == nil {
		return apperrors.NewUnauthorized("agent required")
	}

	session, err := h.routing.ClaimSession(c.UserContext(), principal.Agent, c.Params("id"))
	if err != nil {
		return err
	}
	view, err := h.view.JoinSession(c.UserContext(), session)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"session": sessionResponse(view),
	})
}

// AutoAssign POST /agent/sessions/:id/assign/auto. Supervisor only.
func (h *AgentConsoleHandler) AutoAssign(c *fiber.Ctx) error {
	session, assignee, err := h.routing.AutoAssignSession(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	view, err := h.view.JoinSession(c.UserContext(), session)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"session": sessionResponse(view),
		"agent": dto.AgentPublic{
			ID:       assignee.ID,
			Name:     assignee.Name,
			IsActive: assignee.IsActive,
		},
	})
}

// PostMessage POST /agent/sessions/:id/messages.
func (h *AgentConsoleHandler) PostMessage(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Agent == nil {
		return apperrors.NewUnauthorized("agent required")
	}
	var req dto.PostMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	msg, err := h.sessions.PostMessage(c.UserContext(), service.PostMessageInput{
		SessionID: c.Params("id"),
		Sender:    domain.SenderRoleAgent,
		AgentID:   &principal.Agent.ID,
		Body:      req.Body,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": messageResponse(msg),
	})
}

// Close POST /agent/sessions/:id/close.
func (h *AgentConsoleHandler) Close(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Agent == nil {
		return apperrors.NewUnauthorized("agent required")
	}
	var req dto.CloseSessionRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return apperrors.NewValidationError("invalid payload", nil)
		}
	}

	actor := service.ActorRef{Type: domain.ActorTypeAgent, ID: &principal.Agent.ID}
	session, err := h.sessions.CloseSession(c.UserContext(), actor, c.Params("id"), req.Notes)
	if err != nil {
		return err
	}
	view, err := h.view.JoinSession(c.UserContext(), session)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Chat session closed",
		"session": sessionResponse(view),
	})
}

// List GET /agent/sessions. Console queue: filter by status,
// department, assignee, or unassigned.
func (h *AgentConsoleHandler) List(c *fiber.Ctx) error {
	input := service.SessionListInput{}
	if dept := c.Query("department_id"); dept != "" {
		input.DepartmentID = &dept
	}
	if agentID := c.Query("agent_id"); agentID != "" {
		input.AgentID = &agentID
	}
	if c.QueryBool("unassigned") {
		input.Unassigned = true
	}
	if statusStr := c.Query("status"); statusStr != "" {
		for _, part := range strings.Split(statusStr, ",") {
			input.Statuses = append(input.Statuses, domain.SessionStatus(strings.TrimSpace(part)))
		}
	}
	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}
	pageSize := c.QueryInt("page_size", 20)
	if pageSize < 1 {
		pageSize = 20
	}
	input.Offset = (page - 1) * pageSize
	input.Limit = pageSize

	sessions, err := h.sessions.ListSessions(c.UserContext(), input)
	if err != nil {
		return err
	}
	items := make([]dto.SessionResponse, 0, len(sessions))
	for i := range sessions {
		items = append(items, sessionResponse(&service.SessionView{Session: &sessions[i]}))
	}
	return c.JSON(fiber.Map{
		"success":  true,
		"sessions": items,
	})
}

// Roster GET /agent/departments/:id/agents.
func (h *AgentConsoleHandler) Roster(c *fiber.Ctx) error {
	agents, err := h.agents.ListByDepartment(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	items := make([]dto.AgentPublic, 0, len(agents))
	for _, agent := range agents {
		items = append(items, dto.AgentPublic{
			ID:       agent.ID,
			Name:     agent.Name,
			IsActive: agent.IsActive,
		})
	}
	return c.JSON(fiber.Map{
		"success": true,
		"agents":  items,
	})
}

// Get GET /agent/sessions/:id.
func (h *AgentConsoleHandler) Get(c *fiber.Ctx) error {
	view, err := h.view.GetSessionView(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success":  true,
		"session":  sessionResponse(view),
		"messages": messageResponses(view.Messages),
	})
}
