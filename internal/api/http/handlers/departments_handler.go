package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/hostbay/livechat-service/internal/api/dto"
	"github.com/hostbay/livechat-service/internal/domain"
	"github.com/hostbay/livechat-service/internal/service"
)

// DepartmentsHandler serves the visitor-facing department directory.
type DepartmentsHandler struct {
	directory *service.DirectoryService
}

// NewDepartmentsHandler constructs handler.
func NewDepartmentsHandler(directory *service.DirectoryService) *DepartmentsHandler {
	return &DepartmentsHandler{directory: directory}
}

// List GET /chat/departments.
func (h *DepartmentsHandler) List(c *fiber.Ctx) error {
	listings, err := h.directory.ListActiveDepartments(c.UserContext())
	if err != nil {
		return err
	}

	departments := make([]dto.DepartmentResponse, 0, len(listings))
	for _, listing := range listings {
		departments = append(departments, departmentResponse(listing))
	}
	return c.JSON(fiber.Map{
		"success":     true,
		"departments": departments,
	})
}

func departmentResponse(listing domain.DepartmentListing) dto.DepartmentResponse {
	agents := make([]dto.AgentPublic, 0, len(listing.Agents))
	for _, agent := range listing.Agents {
		agents = append(agents, dto.AgentPublic{
			ID:       agent.ID,
			Name:     agent.Name,
			IsActive: agent.IsActive,
		})
	}
	return dto.DepartmentResponse{
		ID:          listing.ID,
		Name:        listing.Name,
		Description: listing.Description,
		Agents:      agents,
	}
}
