package handlers

import (
	"github.com/docuforms/docuforms-api/internal/middleware"
	"github.com/docuforms/docuforms-api/internal/services"
	"github.com/docuforms/docuforms-api/internal/utils"
	"github.com/gofiber/fiber/v2"
)

// UserHandler handles user routes. User records live in the identity
// provider; this surface only reflects the verified token.
type UserHandler struct{}

// GetMe handles GET /api/users/me
// @Summary Get the current user
// @Description Get the identity resolved from the bearer token
// @Tags Users
// @Accept json
// @Produce json
// @Success 200 {object} services.Identity
// @Failure 401 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /users/me [get]
func (h *UserHandler) GetMe(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(middleware.Identity(c))
}

// GetUsers handles GET /api/users
// @Summary List users
// @Description Placeholder listing; user administration happens in the identity provider
// @Tags Users
// @Accept json
// @Produce json
// @Success 200 {array} services.Identity
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /users [get]
func (h *UserHandler) GetUsers(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON([]services.Identity{})
}

// UpdateUser handles PUT /api/users/:id
// @Summary Update a user
// @Description Not implemented; user records are managed by the identity provider
// @Tags Users
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 501 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /users/{id} [put]
func (h *UserHandler) UpdateUser(c *fiber.Ctx) error {
	return utils.ErrorResponse(c, "Not implemented yet", fiber.StatusNotImplemented, "users.update")
}
