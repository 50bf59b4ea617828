package services

import (
	"errors"

	"github.com/docuforms/docuforms-api/internal/models"
	"github.com/docuforms/docuforms-api/internal/types"
	"gorm.io/gorm"
)

// DocumentInput is the create payload for a document.
type DocumentInput struct {
	Title   string           `json:"title"`
	Content string           `json:"content"`
	NodeID  types.FlexUint64 `json:"node_id"`
}

// DocumentUpdateInput carries a partial update; absent fields are left
// untouched. The version bumps exactly once per call iff content is present.
type DocumentUpdateInput struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`
}

// CreateDocument creates a document under an existing node. Version starts
// at 1.
func CreateDocument(db *gorm.DB, in DocumentInput) (*models.Document, error) {
	nodeID := uint(in.NodeID.Uint64())
	doc := models.Document{
		NodeID:  nodeID,
		Title:   in.Title,
		Content: in.Content,
		Version: 1,
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := ensureNodeExists(tx, nodeID); err != nil {
			return err
		}
		return tx.Create(&doc).Error
	})

	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// GetDocument retrieves a single document by id.
func GetDocument(db *gorm.DB, id uint) (*models.Document, error) {
	var doc models.Document
	if err := db.First(&doc, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &doc, nil
}

// ListDocuments returns documents, optionally filtered by node.
func ListDocuments(db *gorm.DB, nodeID *uint64) ([]models.Document, error) {
	query := db.Model(&models.Document{})
	if nodeID != nil {
		query = query.Where("node_id = ?", *nodeID)
	}

	docs := []models.Document{}
	if err := query.Find(&docs).Error; err != nil {
		return nil, err
	}
	return docs, nil
}

// UpdateDocument applies a partial update. The version increments by exactly
// one when, and only when, the payload carries content; a title-only update
// leaves it unchanged.
func UpdateDocument(db *gorm.DB, id uint, in DocumentUpdateInput) (*models.Document, error) {
	var doc models.Document

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&doc, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		updates := map[string]interface{}{}
		if in.Title != nil {
			updates["title"] = *in.Title
		}
		if in.Content != nil {
			updates["content"] = *in.Content
			updates["version"] = doc.Version + 1
		}

		if len(updates) == 0 {
			return nil
		}
		if err := tx.Model(&doc).Updates(updates).Error; err != nil {
			return err
		}
		return tx.First(&doc, id).Error
	})

	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// DeleteDocument deletes a document and all submissions under it.
func DeleteDocument(db *gorm.DB, id uint) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var doc models.Document
		if err := tx.First(&doc, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		if err := tx.Where("document_id = ?", doc.ID).Delete(&models.FormSubmission{}).Error; err != nil {
			return err
		}
		return tx.Delete(&doc).Error
	})
}
