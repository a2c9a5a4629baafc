package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/tour-service/internal/domain"
)

// Role groups shared by several routes.
var (
	TourManagers  = []domain.Role{domain.RoleAdmin, domain.RoleLeadGuide}
	ReviewEditors = []domain.Role{domain.RoleUser, domain.RoleAdmin}
)

// RestrictTo must run after Protect.
func RestrictTo(roles ...domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, _ := IdentityFromContext(c)
		if err := RequireRole(user, roles...); err != nil {
			return err
		}
		return c.Next()
	}
}
