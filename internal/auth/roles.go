package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/printops/jobtrack/internal/domain"
	apperrors "github.com/printops/jobtrack/pkg/util"
)

// RequireOwner ensures the caller holds the administrative role.
func RequireOwner() fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok || principal.Profile == nil {
			return apperrors.NewUnauthenticated("authentication required")
		}
		if principal.Profile.Role != domain.RoleOwner {
			return apperrors.NewPermissionDenied("owner role required")
		}
		return c.Next()
	}
}

// RequireStaff ensures the caller is an authenticated staff member of any
// role.
func RequireStaff() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if principal, ok := PrincipalFromContext(c); !ok || principal.Profile == nil {
			return apperrors.NewUnauthenticated("authentication required")
		}
		return c.Next()
	}
}
