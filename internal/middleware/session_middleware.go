package middleware

import (
	"github.com/gofiber/fiber/v2"

	"shopapp/internal/store"
)

// SessionRequired rejects requests while no valid (unexpired) session is
// held by the auth container.
func SessionRequired(auth *store.AuthStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !auth.IsLoggedIn() {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Authentication required",
			})
		}
		return c.Next()
	}
}
