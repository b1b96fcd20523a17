package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/hostbay/livechat-service/internal/api/dto"
	"github.com/hostbay/livechat-service/internal/domain"
	"github.com/hostbay/livechat-service/internal/service"
	apperrors "github.com/hostbay/livechat-service/pkg/util"
)

// SessionsHandler serves the unauthenticated visitor widget.
type SessionsHandler struct {
	sessions *service.SessionService
	view     *service.ChatViewService
}

// NewSessionsHandler constructs handler.
func NewSessionsHandler(sessions *service.SessionService, view *service.ChatViewService) *SessionsHandler {
	return &SessionsHandler{sessions: sessions, view: view}
}

// Start POST /chat/sessions.
func (h *SessionsHandler) Start(c *fiber.Ctx) error {
	var req dto.StartSessionRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	session, err := h.sessions.StartSession(c.UserContext(), service.StartSessionInput{
		VisitorName:  req.VisitorName,
		VisitorEmail: req.VisitorEmail,
		Subject:      req.Subject,
		DepartmentID: req.DepartmentID,
	})
	if err != nil {
		return err
	}
	view, err := h.view.JoinSession(c.UserContext(), session)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"session": sessionResponse(view),
	})
}

// Get GET /chat/sessions/:id.
func (h *SessionsHandler) Get(c *fiber.Ctx) error {
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

// PostMessage POST /chat/sessions/:id/messages.
func (h *SessionsHandler) PostMessage(c *fiber.Ctx) error {
	var req dto.PostMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	msg, err := h.sessions.PostMessage(c.UserContext(), service.PostMessageInput{
		SessionID: c.Params("id"),
		Sender:    domain.SenderRoleVisitor,
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

func sessionResponse(view *service.SessionView) dto.SessionResponse {
	session := view.Session
	resp := dto.SessionResponse{
		ID:           session.ID,
		VisitorName:  session.VisitorName,
		VisitorEmail: session.VisitorEmail,
		Status:       session.Status,
		Subject:      session.Subject,
		Notes:        session.Notes,
		CreatedAt:    session.CreatedAt,
		UpdatedAt:    session.UpdatedAt,
		ClosedAt:     session.ClosedAt,
	}
	if view.Department != nil {
		resp.Department = &dto.DepartmentSummary{
			ID:   view.Department.ID,
			Name: view.Department.Name,
		}
	}
	if view.Agent != nil {
		resp.Agent = &dto.AgentPublic{
			ID:       view.Agent.ID,
			Name:     view.Agent.Name,
			IsActive: view.Agent.IsActive,
		}
	}
	return resp
}

func messageResponse(msg *domain.ChatMessage) dto.MessageResponse {
	return dto.MessageResponse{
		ID:        msg.ID,
		SessionID: msg.SessionID,
		Seq:       msg.Seq,
		Sender:    msg.Sender,
		AgentID:   msg.AgentID,
		Body:      msg.Body,
		CreatedAt: msg.CreatedAt,
	}
}

func messageResponses(messages []domain.ChatMessage) []dto.MessageResponse {
	result := make([]dto.MessageResponse, 0, len(messages))
	for i := range messages {
		result = append(result, messageResponse(&messages[i]))
	}
	return result
}
