package handlers

import (
	"errors"

	"github.com/docuforms/docuforms-api/internal/middleware"
	"github.com/docuforms/docuforms-api/internal/services"
	"github.com/docuforms/docuforms-api/internal/utils"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// SubmissionHandler handles form submission routes
type SubmissionHandler struct {
	DB         *gorm.DB
	AdminGroup string
}

// GetSubmissions handles GET /api/submissions?document_id=...
// @Summary List submissions
// @Description List submissions, optionally filtered by document; non-admins see only their own
// @Tags Submissions
// @Accept json
// @Produce json
// @Param document_id query int false "Filter by document ID"
// @Success 200 {array} services.SubmissionView
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /submissions [get]
func (h *SubmissionHandler) GetSubmissions(c *fiber.Ctx) error {
	documentID, ok := parseOptionalIDQuery(c, "document_id")
	if !ok {
		return utils.ErrorResponse(c, "Invalid input", fiber.StatusBadRequest, "data.validation.input")
	}

	views, err := services.ListSubmissions(h.DB, documentID, middleware.Identity(c), h.AdminGroup)
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, "getSubmissions")
	}
	return c.Status(fiber.StatusOK).JSON(views)
}

// GetSubmission handles GET /api/submissions/:id
// @Summary Get a submission
// @Description Get a single submission; owner or admin only
// @Tags Submissions
// @Accept json
// @Produce json
// @Param id path int true "Submission ID"
// @Success 200 {object} services.SubmissionView
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /submissions/{id} [get]
func (h *SubmissionHandler) GetSubmission(c *fiber.Ctx) error {
	id, ok := parseIDParam(c)
	if !ok {
		return utils.NotFoundResponse(c, "Submission not found")
	}

	view, err := services.GetSubmission(h.DB, id, middleware.Identity(c), h.AdminGroup)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return utils.NotFoundResponse(c, "Submission not found")
		}
		if errors.Is(err, services.ErrForbidden) {
			return utils.ErrorResponse(c, "Access denied", fiber.StatusForbidden, "auth.authorization")
		}
		return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, "getSubmission")
	}
	return c.Status(fiber.StatusOK).JSON(view)
}

// CreateSubmission handles POST /api/submissions
// @Summary Create a submission
// @Description Submit form answers against a document; the answers are normalized before storage
// @Tags Submissions
// @Accept json
// @Produce json
// @Param body body services.SubmissionInput true "Submission to create"
// @Success 201 {object} services.SubmissionView
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /submissions [post]
func (h *SubmissionHandler) CreateSubmission(c *fiber.Ctx) error {
	var body services.SubmissionInput
	if err := c.BodyParser(&body); err != nil {
		return utils.ErrorResponse(c, "Invalid input", fiber.StatusBadRequest, "data.validation.input")
	}
	if body.DocumentID.Uint64() == 0 {
		return utils.ErrorResponse(c, "Invalid input", fiber.StatusBadRequest, "data.validation.input")
	}

	view, err := services.CreateSubmission(h.DB, body, middleware.Identity(c))
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return utils.NotFoundResponse(c, "Document not found")
		}
		return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, "createSubmission")
	}
	return c.Status(fiber.StatusCreated).JSON(view)
}

// DeleteSubmission handles DELETE /api/submissions/:id
// @Summary Delete a submission
// @Description Delete a submission; owner or admin only
// @Tags Submissions
// @Accept json
// @Produce json
// @Param id path int true "Submission ID"
// @Success 204
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /submissions/{id} [delete]
func (h *SubmissionHandler) DeleteSubmission(c *fiber.Ctx) error {
	id, ok := parseIDParam(c)
	if !ok {
		return utils.NotFoundResponse(c, "Submission not found")
	}

	if err := services.DeleteSubmission(h.DB, id, middleware.Identity(c), h.AdminGroup); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return utils.NotFoundResponse(c, "Submission not found")
		}
		if errors.Is(err, services.ErrForbidden) {
			return utils.ErrorResponse(c, "Access denied", fiber.StatusForbidden, "auth.authorization")
		}
		return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, "deleteSubmission")
	}
	return c.SendStatus(fiber.StatusNoContent)
}
