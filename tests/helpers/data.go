// data.go
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

package helpers

import (
	"encoding/json"
	"testing"

	"github.com/docuforms/docuforms-api/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// CreateTestNode creates a tree node, optionally under a parent
func CreateTestNode(t *testing.T, db *gorm.DB, name string, parentID *uint) *models.TreeNode {
	t.Helper()
	node := models.TreeNode{
		Name:     name,
		ParentID: parentID,
	}
	if err := db.Create(&node).Error; err != nil {
		t.Fatalf("Failed to create node: %v", err)
	}
	return &node
}

// CreateTestDocument creates a document under a node
func CreateTestDocument(t *testing.T, db *gorm.DB, nodeID uint, title, content string) *models.Document {
	t.Helper()
	doc := models.Document{
		NodeID:  nodeID,
		Title:   title,
		Content: content,
		Version: 1,
	}
	if err := db.Create(&doc).Error; err != nil {
		t.Fatalf("Failed to create document: %v", err)
	}
	return &doc
}

// CreateTestSubmission creates a submission with pre-normalized answers
func CreateTestSubmission(t *testing.T, db *gorm.DB, documentID uint, userID string, answers []models.Answer) *models.FormSubmission {
	t.Helper()
	raw, err := json.Marshal(answers)
	if err != nil {
		t.Fatalf("Failed to marshal answers: %v", err)
	}

	sub := models.FormSubmission{
		DocumentID: documentID,
		UserID:     userID,
		Answers:    models.JSON{JSON: datatypes.JSON(raw)},
	}
	if err := db.Create(&sub).Error; err != nil {
		t.Fatalf("Failed to create submission: %v", err)
	}
	return &sub
}

// CreateTestLegacySubmission creates a submission whose answers column holds a
// raw legacy payload, bypassing normalization
func CreateTestLegacySubmission(t *testing.T, db *gorm.DB, documentID uint, userID string, rawAnswers string) *models.FormSubmission {
	t.Helper()
	sub := models.FormSubmission{
		DocumentID: documentID,
		UserID:     userID,
		Answers:    models.JSON{JSON: datatypes.JSON(rawAnswers)},
	}
	if err := db.Create(&sub).Error; err != nil {
		t.Fatalf("Failed to create legacy submission: %v", err)
	}
	return &sub
}
