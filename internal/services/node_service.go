// node_service.go
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

package services

import (
	"errors"

	"github.com/docuforms/docuforms-api/internal/models"
	"github.com/docuforms/docuforms-api/internal/types"
	"gorm.io/gorm"
)

// NodeInput is the create payload for a tree node.
type NodeInput struct {
	Name     string            `json:"name"`
	ParentID *types.FlexUint64 `json:"parent_id"`
}

// NodeUpdateInput carries a partial update; absent fields are left untouched.
// An explicit null parent_id re-roots the node.
type NodeUpdateInput struct {
	Name     *string          `json:"name"`
	ParentID types.OptionalID `json:"parent_id"`
}

// NodeTree is one node of the forest read, with children and attached
// documents nested.
type NodeTree struct {
	models.TreeNode
	Children  []*NodeTree       `json:"children"`
	Documents []models.Document `json:"documents"`
}

// CreateNode creates a tree node. A given parent must already exist.
func CreateNode(db *gorm.DB, in NodeInput) (*models.TreeNode, error) {
	node := models.TreeNode{Name: in.Name}

	err := db.Transaction(func(tx *gorm.DB) error {
		if in.ParentID != nil {
			parentID := uint(in.ParentID.Uint64())
			if err := ensureNodeExists(tx, parentID); err != nil {
				return err
			}
			node.ParentID = &parentID
		}
		return tx.Create(&node).Error
	})

	if err != nil {
		return nil, err
	}
	return &node, nil
}

// GetNode retrieves a single node by id.
func GetNode(db *gorm.DB, id uint) (*models.TreeNode, error) {
	var node models.TreeNode
	if err := db.First(&node, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &node, nil
}

// ListNodes returns the flat node listing in storage order.
func ListNodes(db *gorm.DB) ([]models.TreeNode, error) {
	var nodes []models.TreeNode
	if err := db.Find(&nodes).Error; err != nil {
		return nil, err
	}
	return nodes, nil
}

// GetNodeForest returns the full hierarchy reconstructed from the flat
// listing, with each node's documents eagerly included.
func GetNodeForest(db *gorm.DB) ([]*NodeTree, error) {
	var nodes []models.TreeNode
	if err := db.Preload("Documents").Find(&nodes).Error; err != nil {
		return nil, err
	}
	return buildForest(nodes), nil
}

// UpdateNode applies a partial update to a node.
func UpdateNode(db *gorm.DB, id uint, in NodeUpdateInput) (*models.TreeNode, error) {
	var node models.TreeNode

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&node, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		updates := map[string]interface{}{}
		if in.Name != nil {
			updates["name"] = *in.Name
		}
		if in.ParentID.Set {
			if in.ParentID.Valid {
				parentID := uint(in.ParentID.Value)
				if err := ensureNodeExists(tx, parentID); err != nil {
					return err
				}
				// A node can never be re-parented under itself or any of
				// its descendants.
				subtree, err := collectSubtreeIDs(tx, id)
				if err != nil {
					return err
				}
				for _, subtreeID := range subtree {
					if subtreeID == parentID {
						return ErrOwnSubtree
					}
				}
				updates["parent_id"] = parentID
			} else {
				updates["parent_id"] = nil
			}
		}

		if len(updates) == 0 {
			return nil
		}
		if err := tx.Model(&node).Updates(updates).Error; err != nil {
			return err
		}
		return tx.First(&node, id).Error
	})

	if err != nil {
		return nil, err
	}
	return &node, nil
}

// DeleteNode deletes a node and its whole subtree: all descendant nodes, the
// documents attached to any of them, and the submissions under those
// documents, in one transaction.
func DeleteNode(db *gorm.DB, id uint) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var node models.TreeNode
		if err := tx.First(&node, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		ids, err := collectSubtreeIDs(tx, id)
		if err != nil {
			return err
		}

		var docIDs []uint
		if err := tx.Model(&models.Document{}).Where("node_id IN ?", ids).Pluck("id", &docIDs).Error; err != nil {
			return err
		}
		if len(docIDs) > 0 {
			if err := tx.Where("document_id IN ?", docIDs).Delete(&models.FormSubmission{}).Error; err != nil {
				return err
			}
			if err := tx.Where("id IN ?", docIDs).Delete(&models.Document{}).Error; err != nil {
				return err
			}
		}

		// Delete deepest levels first so the self reference never dangles.
		for i := len(ids) - 1; i >= 0; i-- {
			if err := tx.Delete(&models.TreeNode{}, ids[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// collectSubtreeIDs walks the parent relation breadth-first from rootID.
// The result is level-ordered with the root first. Nodes already collected
// are skipped, so a parent cycle in storage terminates the walk instead of
// growing it without bound.
func collectSubtreeIDs(tx *gorm.DB, rootID uint) ([]uint, error) {
	ids := []uint{rootID}
	seen := map[uint]bool{rootID: true}
	frontier := []uint{rootID}
	for len(frontier) > 0 {
		var children []uint
		if err := tx.Model(&models.TreeNode{}).Where("parent_id IN ?", frontier).Pluck("id", &children).Error; err != nil {
			return nil, err
		}
		frontier = nil
		for _, child := range children {
			if seen[child] {
				continue
			}
			seen[child] = true
			ids = append(ids, child)
			frontier = append(frontier, child)
		}
	}
	return ids, nil
}

func buildForest(nodes []models.TreeNode) []*NodeTree {
	trees := make([]*NodeTree, len(nodes))
	index := make(map[uint]*NodeTree, len(nodes))
	for i := range nodes {
		tree := &NodeTree{
			TreeNode:  nodes[i],
			Children:  []*NodeTree{},
			Documents: nodes[i].Documents,
		}
		if tree.Documents == nil {
			tree.Documents = []models.Document{}
		}
		trees[i] = tree
		index[nodes[i].ID] = tree
	}

	roots := []*NodeTree{}
	for _, tree := range trees {
		if tree.ParentID == nil {
			roots = append(roots, tree)
			continue
		}
		if parent, ok := index[*tree.ParentID]; ok {
			parent.Children = append(parent.Children, tree)
		} else {
			// Dangling parent reference in storage; surface the node as a root
			// rather than dropping it from the listing.
			roots = append(roots, tree)
		}
	}
	return roots
}

func ensureNodeExists(db *gorm.DB, id uint) error {
	var count int64
	if err := db.Model(&models.TreeNode{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrNotFound
	}
	return nil
}
