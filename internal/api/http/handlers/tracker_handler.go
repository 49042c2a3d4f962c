package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/printops/jobtrack/internal/service"
)

// TrackerHandler serves the public, unauthenticated order tracker.
type TrackerHandler struct {
	trackerService *service.TrackerService
}

// NewTrackerHandler constructs handler.
func NewTrackerHandler(trackerService *service.TrackerService) *TrackerHandler {
	return &TrackerHandler{trackerService: trackerService}
}

// Track GET /track/:id.
func (h *TrackerHandler) Track(c *fiber.Ctx) error {
	view, err := h.trackerService.Track(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": view})
}
