package handlers

import (
	"errors"

	"github.com/docuforms/docuforms-api/internal/services"
	"github.com/docuforms/docuforms-api/internal/utils"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// DocumentHandler handles document routes
type DocumentHandler struct {
	DB *gorm.DB
}

// GetDocuments handles GET /api/documents?node_id=...
// @Summary List documents
// @Description List documents, optionally filtered by node
// @Tags Documents
// @Accept json
// @Produce json
// @Param node_id query int false "Filter by node ID"
// @Success 200 {array} models.Document
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /documents [get]
func (h *DocumentHandler) GetDocuments(c *fiber.Ctx) error {
	nodeID, ok := parseOptionalIDQuery(c, "node_id")
	if !ok {
		return utils.ErrorResponse(c, "Invalid input", fiber.StatusBadRequest, "data.validation.input")
	}

	docs, err := services.ListDocuments(h.DB, nodeID)
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, "getDocuments")
	}
	return c.Status(fiber.StatusOK).JSON(docs)
}

// GetDocument handles GET /api/documents/:id
// @Summary Get a document
// @Description Get a single document by id
// @Tags Documents
// @Accept json
// @Produce json
// @Param id path int true "Document ID"
// @Success 200 {object} models.Document
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /documents/{id} [get]
func (h *DocumentHandler) GetDocument(c *fiber.Ctx) error {
	id, ok := parseIDParam(c)
	if !ok {
		return utils.NotFoundResponse(c, "Document not found")
	}

	doc, err := services.GetDocument(h.DB, id)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return utils.NotFoundResponse(c, "Document not found")
		}
		return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, "getDocument")
	}
	return c.Status(fiber.StatusOK).JSON(doc)
}

// CreateDocument handles POST /api/documents
// @Summary Create a document
// @Description Create a document under an existing node; version starts at 1
// @Tags Documents
// @Accept json
// @Produce json
// @Param body body services.DocumentInput true "Document to create"
// @Success 201 {object} models.Document
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /documents [post]
func (h *DocumentHandler) CreateDocument(c *fiber.Ctx) error {
	var body services.DocumentInput
	if err := c.BodyParser(&body); err != nil {
		return utils.ErrorResponse(c, "Invalid input", fiber.StatusBadRequest, "data.validation.input")
	}
	if body.Title == "" || body.NodeID.Uint64() == 0 {
		return utils.ErrorResponse(c, "Invalid input", fiber.StatusBadRequest, "data.validation.input")
	}

	doc, err := services.CreateDocument(h.DB, body)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return utils.NotFoundResponse(c, "Node not found")
		}
		return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, "createDocument")
	}
	return c.Status(fiber.StatusCreated).JSON(doc)
}

// UpdateDocument handles PUT /api/documents/:id
// @Summary Update a document
// @Description Partially update a document; the version bumps only when content is present
// @Tags Documents
// @Accept json
// @Produce json
// @Param id path int true "Document ID"
// @Param body body services.DocumentUpdateInput true "Fields to update"
// @Success 200 {object} models.Document
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /documents/{id} [put]
func (h *DocumentHandler) UpdateDocument(c *fiber.Ctx) error {
	id, ok := parseIDParam(c)
	if !ok {
		return utils.NotFoundResponse(c, "Document not found")
	}

	var body services.DocumentUpdateInput
	if err := c.BodyParser(&body); err != nil {
		return utils.ErrorResponse(c, "Invalid input", fiber.StatusBadRequest, "data.validation.input")
	}

	doc, err := services.UpdateDocument(h.DB, id, body)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return utils.NotFoundResponse(c, "Document not found")
		}
		return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, "updateDocument")
	}
	return c.Status(fiber.StatusOK).JSON(doc)
}

// DeleteDocument handles DELETE /api/documents/:id
// @Summary Delete a document
// @Description Delete a document and all submissions against it
// @Tags Documents
// @Accept json
// @Produce json
// @Param id path int true "Document ID"
// @Success 200 {object} utils.MessageResponseStruct
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /documents/{id} [delete]
func (h *DocumentHandler) DeleteDocument(c *fiber.Ctx) error {
	id, ok := parseIDParam(c)
	if !ok {
		return utils.NotFoundResponse(c, "Document not found")
	}

	if err := services.DeleteDocument(h.DB, id); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return utils.NotFoundResponse(c, "Document not found")
		}
		return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, "deleteDocument")
	}
	return utils.MessageResponse(c, "Document deleted successfully")
}
