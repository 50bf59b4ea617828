package middleware

import (
	"strings"

	"github.com/docuforms/docuforms-api/internal/config"
	"github.com/docuforms/docuforms-api/internal/services"
	"github.com/docuforms/docuforms-api/internal/types"
	"github.com/gofiber/fiber/v2"
)

// DevBypassHeader short-circuits authentication when the development bypass
// is enabled in configuration.
const DevBypassHeader = "X-Dev-Bypass-Auth"

// TokenVerifier resolves a bearer token to a caller identity.
type TokenVerifier interface {
	VerifyToken(token string) (*services.Identity, error)
	DevIdentity() *services.Identity
}

// Auth validates the Authorization bearer token and stores the resolved
// identity in the request context
func Auth(cfg *config.Config, verifier TokenVerifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if cfg.DevAuthBypass && truthy(c.Get(DevBypassHeader)) {
			c.Locals("identity", verifier.DevIdentity())
			return c.Next()
		}

		header := c.Get(fiber.HeaderAuthorization)
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			return &types.CustomError{
				Code:    fiber.StatusUnauthorized,
				Message: "Not authenticated",
				Type:    "auth.authentication",
			}
		}

		identity, err := verifier.VerifyToken(token)
		if err != nil {
			return &types.CustomError{
				Code:    fiber.StatusUnauthorized,
				Message: "Invalid authentication credentials",
				Type:    "auth.authentication",
			}
		}

		c.Locals("identity", identity)
		return c.Next()
	}
}

// RequireAdmin rejects requests whose identity is not in the admin group.
// It must run after Auth.
func RequireAdmin(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity := Identity(c)
		if identity == nil || !services.IsAdmin(identity, cfg.AdminGroup) {
			return &types.CustomError{
				Code:    fiber.StatusForbidden,
				Message: "Admin access required",
				Type:    "auth.authorization",
			}
		}
		return c.Next()
	}
}

// Identity returns the authenticated identity stored by Auth, or nil.
func Identity(c *fiber.Ctx) *services.Identity {
	identity, _ := c.Locals("identity").(*services.Identity)
	return identity
}

func truthy(value string) bool {
	switch strings.ToLower(value) {
	case "", "0", "false", "no":
		return false
	}
	return true
}
