// Package handlers exposes the state containers over HTTP so the
// storefront is drivable without a native view layer.
package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"shopapp/internal/remote"
)

// remoteError maps a container failure onto the response. When the
// failure came from a remote API the upstream status code is reused,
// otherwise the gateway answers 502.
func remoteError(c *fiber.Ctx, message string, err error) error {
	status := fiber.StatusBadGateway
	var apiErr *remote.APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode >= 400 {
		status = apiErr.StatusCode
	}
	return c.Status(status).JSON(fiber.Map{
		"message": message,
		"error":   err.Error(),
	})
}
