package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/printops/jobtrack/internal/api/dto"
	"github.com/printops/jobtrack/internal/auth"
	"github.com/printops/jobtrack/internal/service"
	apperrors "github.com/printops/jobtrack/pkg/util"
)

// BoardHandler serves the role-scoped Kanban view.
type BoardHandler struct {
	sessionService *service.SessionService
	boardService   *service.BoardService
}

// NewBoardHandler constructs handler.
func NewBoardHandler(sessionService *service.SessionService, boardService *service.BoardService) *BoardHandler {
	return &BoardHandler{sessionService: sessionService, boardService: boardService}
}

// Board GET /board.
func (h *BoardHandler) Board(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Profile == nil {
		return apperrors.NewUnauthenticated("staff required")
	}

	snapshot, err := h.sessionService.ResolveProfile(c.UserContext(), principal.Profile)
	if err != nil {
		return err
	}
	view, err := h.boardService.Board(c.UserContext(), snapshot)
	if err != nil {
		return err
	}

	resp := dto.BoardResponse{
		Departments: make([]dto.DepartmentResponse, 0, len(view.Departments)),
		Jobs:        make([]dto.JobResponse, 0, len(view.Jobs)),
	}
	for i := range view.Departments {
		resp.Departments = append(resp.Departments, departmentResponse(&view.Departments[i]))
	}
	for i := range view.Jobs {
		resp.Jobs = append(resp.Jobs, jobResponse(&view.Jobs[i]))
	}
	return c.JSON(fiber.Map{"data": resp})
}
