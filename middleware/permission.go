package middleware

import (
	"classroom/models"

	"github.com/gofiber/fiber/v2"
)

// RequireRole returns a middleware that rejects callers whose token role
// does not match. Ownership and enrollment checks still happen in the
// handlers; this only fences whole route groups by role.
func RequireRole(requiredRole string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, ok := c.Locals("role").(string)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"message": "Unauthorized: role not found",
				"data":    nil,
			})
		}

		if role != requiredRole {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"success": false,
				"message": "You do not have permission to access this resource!",
				"data":    nil,
			})
		}

		return c.Next()
	}
}

// RequireTeacher fences a route group to teacher accounts.
func RequireTeacher() fiber.Handler {
	return RequireRole(models.RoleTeacher)
}

// RequireStudent fences a route group to student accounts.
func RequireStudent() fiber.Handler {
	return RequireRole(models.RoleStudent)
}
