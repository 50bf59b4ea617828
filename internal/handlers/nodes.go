// nodes.go
//
// A document tree and form submission service for Keycloak-secured sites
// Copyright (c) 2026 Marta Kowalik <marta@docuforms.dev> (https://www.docuforms.dev), DocuForms
//
// This file is part of docuforms-api.
// docuforms-api is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// docuforms-api is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with docuforms-api.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Marta Kowalik <marta@docuforms.dev> (https://www.docuforms.dev), DocuForms"
//    in this material, copies, or source code of derived works.

package handlers

import (
	"errors"

	"github.com/docuforms/docuforms-api/internal/services"
	"github.com/docuforms/docuforms-api/internal/utils"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// NodeHandler handles tree node routes
type NodeHandler struct {
	DB *gorm.DB
}

// GetNodes handles GET /api/nodes
// @Summary Get the node forest
// @Description Get the full node hierarchy with documents nested per node
// @Tags Nodes
// @Accept json
// @Produce json
// @Success 200 {array} services.NodeTree
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /nodes [get]
func (h *NodeHandler) GetNodes(c *fiber.Ctx) error {
	forest, err := services.GetNodeForest(h.DB)
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, "getNodes")
	}
	return c.Status(fiber.StatusOK).JSON(forest)
}

// GetNode handles GET /api/nodes/:id
// @Summary Get a node
// @Description Get a single tree node by id
// @Tags Nodes
// @Accept json
// @Produce json
// @Param id path int true "Node ID"
// @Success 200 {object} models.TreeNode
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /nodes/{id} [get]
func (h *NodeHandler) GetNode(c *fiber.Ctx) error {
	id, ok := parseIDParam(c)
	if !ok {
		return utils.NotFoundResponse(c, "Node not found")
	}

	node, err := services.GetNode(h.DB, id)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return utils.NotFoundResponse(c, "Node not found")
		}
		return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, "getNode")
	}
	return c.Status(fiber.StatusOK).JSON(node)
}

// CreateNode handles POST /api/nodes
// @Summary Create a node
// @Description Create a tree node, optionally under an existing parent
// @Tags Nodes
// @Accept json
// @Produce json
// @Param body body services.NodeInput true "Node to create"
// @Success 201 {object} models.TreeNode
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /nodes [post]
func (h *NodeHandler) CreateNode(c *fiber.Ctx) error {
	var body services.NodeInput
	if err := c.BodyParser(&body); err != nil {
		return utils.ErrorResponse(c, "Invalid input", fiber.StatusBadRequest, "data.validation.input")
	}
	if body.Name == "" {
		return utils.ErrorResponse(c, "Invalid input", fiber.StatusBadRequest, "data.validation.input")
	}

	node, err := services.CreateNode(h.DB, body)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return utils.NotFoundResponse(c, "Parent node not found")
		}
		return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, "createNode")
	}
	return c.Status(fiber.StatusCreated).JSON(node)
}

// UpdateNode handles PUT /api/nodes/:id
// @Summary Update a node
// @Description Partially update a tree node; absent fields are unchanged
// @Tags Nodes
// @Accept json
// @Produce json
// @Param id path int true "Node ID"
// @Param body body services.NodeUpdateInput true "Fields to update"
// @Success 200 {object} models.TreeNode
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /nodes/{id} [put]
func (h *NodeHandler) UpdateNode(c *fiber.Ctx) error {
	id, ok := parseIDParam(c)
	if !ok {
		return utils.NotFoundResponse(c, "Node not found")
	}

	var body services.NodeUpdateInput
	if err := c.BodyParser(&body); err != nil {
		return utils.ErrorResponse(c, "Invalid input", fiber.StatusBadRequest, "data.validation.input")
	}

	node, err := services.UpdateNode(h.DB, id, body)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return utils.NotFoundResponse(c, "Node not found")
		}
		if errors.Is(err, services.ErrOwnSubtree) {
			return utils.ErrorResponse(c, "Node cannot be moved under its own subtree", fiber.StatusBadRequest, "data.validation.input")
		}
		return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, "updateNode")
	}
	return c.Status(fiber.StatusOK).JSON(node)
}

// DeleteNode handles DELETE /api/nodes/:id
// @Summary Delete a node
// @Description Delete a node and its whole subtree, documents and submissions included
// @Tags Nodes
// @Accept json
// @Produce json
// @Param id path int true "Node ID"
// @Success 200 {object} utils.MessageResponseStruct
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /nodes/{id} [delete]
func (h *NodeHandler) DeleteNode(c *fiber.Ctx) error {
	id, ok := parseIDParam(c)
	if !ok {
		return utils.NotFoundResponse(c, "Node not found")
	}

	if err := services.DeleteNode(h.DB, id); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return utils.NotFoundResponse(c, "Node not found")
		}
		return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, "deleteNode")
	}
	return utils.MessageResponse(c, "Node deleted successfully")
}
