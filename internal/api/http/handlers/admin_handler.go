package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/printops/jobtrack/internal/api/dto"
	"github.com/printops/jobtrack/internal/service"
	apperrors "github.com/printops/jobtrack/pkg/util"
)

// AdminHandler covers owner-only administration endpoints.
type AdminHandler struct {
	userService      *service.UserService
	diagnosisService *service.DiagnosisService
}

// NewAdminHandler constructs handler.
func NewAdminHandler(userService *service.UserService, diagnosisService *service.DiagnosisService) *AdminHandler {
	return &AdminHandler{userService: userService, diagnosisService: diagnosisService}
}

// ListUsers GET /admin/users.
func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	users, err := h.userService.ListUsers(c.UserContext())
	if err != nil {
		return err
	}
	items := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		items = append(items, userResponse(&users[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// ReassignDepartment PATCH /admin/users/:id/department.
func (h *AdminHandler) ReassignDepartment(c *fiber.Ctx) error {
	var req dto.ReassignDepartmentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	profile, err := h.userService.ReassignDepartment(c.UserContext(), c.Params("id"), req.DepartmentID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": userResponse(profile)})
}

// Diagnose POST /admin/diagnose.
func (h *AdminHandler) Diagnose(c *fiber.Ctx) error {
	var req dto.DiagnoseRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	result, err := h.diagnosisService.Diagnose(c.UserContext(), req.Description, req.CodeContext)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.DiagnoseResponse{
		Diagnosis:  result.Diagnosis,
		Suggestion: result.Suggestion,
	}})
}
