package middleware

import (
	"github.com/gofiber/fiber/v2"
)

// VersionMiddleware resolves the X-Api-Version request header and echoes the
// resolved version back on the response, so clients can see which API version
// served them.
func VersionMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		version := c.Get("X-Api-Version", "1.0.0")

		// Support version aliases
		if version == "1.0" {
			version = "1.0.0"
		}

		c.Set("X-Api-Version", version)

		return c.Next()
	}
}
