package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/printops/jobtrack/internal/api/dto"
	"github.com/printops/jobtrack/internal/auth"
	"github.com/printops/jobtrack/internal/service"
	apperrors "github.com/printops/jobtrack/pkg/util"
)

// AuthHandler manages sign-in and session endpoints.
type AuthHandler struct {
	authService    *service.AuthService
	sessionService *service.SessionService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService, sessionService *service.SessionService) *AuthHandler {
	return &AuthHandler{authService: authService, sessionService: sessionService}
}

// OwnerLogin POST /auth/owner/login.
func (h *AuthHandler) OwnerLogin(c *fiber.Ctx) error {
	var req dto.OwnerLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	result, err := h.authService.OwnerLogin(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": authResponse(result)})
}

// SSOLogin POST /auth/sso/login.
func (h *AuthHandler) SSOLogin(c *fiber.Ctx) error {
	var req dto.SSOLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.IdentityToken == "" {
		return apperrors.NewValidationError("identity_token required", nil)
	}
	result, err := h.authService.SSOLogin(c.UserContext(), req.IdentityToken)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": authResponse(result)})
}

// Me GET /me resolves the caller's session snapshot. Reachable without a
// valid token: the unauthenticated state is a normal answer here, not an
// error.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	snapshot, err := h.sessionService.Resolve(c.UserContext(), auth.BearerToken(c))
	if err != nil {
		return err
	}

	resp := dto.SessionResponse{State: string(snapshot.State)}
	if snapshot.Ready() {
		profile := userResponse(snapshot.Profile)
		resp.Profile = &profile
		resp.Departments = make([]dto.DepartmentResponse, 0, len(snapshot.Departments))
		for i := range snapshot.Departments {
			resp.Departments = append(resp.Departments, departmentResponse(&snapshot.Departments[i]))
		}
	}
	return c.JSON(fiber.Map{"data": resp})
}

func authResponse(result *service.AuthResult) dto.AuthResponse {
	return dto.AuthResponse{
		Token:     result.Token,
		ExpiresAt: result.ExpiresAt,
		Profile:   userResponse(result.Profile),
	}
}
