package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/hostbay/livechat-service/internal/api/dto"
	"github.com/hostbay/livechat-service/internal/service"
	apperrors "github.com/hostbay/livechat-service/pkg/util"
)

// AuthHandler serves agent console sign-in.
type AuthHandler struct {
	authService *service.AuthService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Login POST /auth/agents/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.AgentLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	result, err := h.authService.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"auth":    loginResponse(result),
	})
}

// IssueToken POST /auth/agents/token/issue. The token itself goes out
// through the mail pipeline; the response only confirms issuance.
func (h *AuthHandler) IssueToken(c *fiber.Ctx) error {
	var req dto.LoginTokenRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	token, err := h.authService.IssueLoginToken(c.UserContext(), req.Email)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success":    true,
		"expires_at": token.ExpiresAt,
	})
}

// RedeemToken POST /auth/agents/token/redeem.
func (h *AuthHandler) RedeemToken(c *fiber.Ctx) error {
	var req dto.RedeemTokenRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	result, err := h.authService.RedeemLoginToken(c.UserContext(), req.Token)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"auth":    loginResponse(result),
	})
}

func loginResponse(result *service.LoginResult) dto.LoginResponse {
	return dto.LoginResponse{
		AccessToken: result.AccessToken,
		ExpiresAt:   result.ExpiresAt,
		AgentID:     result.Agent.ID,
		AgentName:   result.Agent.Name,
	}
}
