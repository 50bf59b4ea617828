package services

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/docuforms/docuforms-api/internal/models"
	"github.com/docuforms/docuforms-api/internal/types"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// SubmissionInput is the create payload. Answers accepts any historical wire
// shape; user id never comes from the payload.
type SubmissionInput struct {
	DocumentID types.FlexUint64  `json:"document_id"`
	Answers    types.FlexAnswers `json:"answers"`
}

// SubmissionView is the API projection of a submission with answers in the
// canonical normalized form.
type SubmissionView struct {
	ID          uint            `json:"id"`
	DocumentID  uint            `json:"document_id"`
	UserID      string          `json:"user_id"`
	Answers     []models.Answer `json:"answers"`
	SubmittedAt time.Time       `json:"submitted_at"`
}

// CreateSubmission records the acting identity's answers against an existing
// document. Answers are normalized before persistence.
func CreateSubmission(db *gorm.DB, in SubmissionInput, identity *Identity) (*SubmissionView, error) {
	var sub models.FormSubmission

	err := db.Transaction(func(tx *gorm.DB) error {
		docID := uint(in.DocumentID.Uint64())
		var doc models.Document
		if err := tx.First(&doc, docID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		raw, err := json.Marshal(NormalizeAnswers(in.Answers))
		if err != nil {
			return err
		}

		sub = models.FormSubmission{
			DocumentID: docID,
			UserID:     identity.ID,
			Answers:    models.JSON{JSON: datatypes.JSON(raw)},
		}
		return tx.Create(&sub).Error
	})

	if err != nil {
		return nil, err
	}
	return viewSubmission(&sub), nil
}

// GetSubmission retrieves one submission. Only the owner or an admin may read
// it; absence is reported before ownership.
func GetSubmission(db *gorm.DB, id uint, identity *Identity, adminGroup string) (*SubmissionView, error) {
	var sub models.FormSubmission
	if err := db.First(&sub, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if !IsAdmin(identity, adminGroup) && !IsOwner(identity, sub.UserID) {
		return nil, ErrForbidden
	}
	return viewSubmission(&sub), nil
}

// ListSubmissions returns submissions, optionally filtered by document. For
// non-admins the listing is filtered to the requester's own submissions
// rather than rejected.
func ListSubmissions(db *gorm.DB, documentID *uint64, identity *Identity, adminGroup string) ([]*SubmissionView, error) {
	query := db.Model(&models.FormSubmission{})
	if documentID != nil {
		query = query.Where("document_id = ?", *documentID)
	}
	if !IsAdmin(identity, adminGroup) {
		query = query.Where("user_id = ?", identity.ID)
	}

	var subs []models.FormSubmission
	if err := query.Find(&subs).Error; err != nil {
		return nil, err
	}

	views := make([]*SubmissionView, 0, len(subs))
	for i := range subs {
		views = append(views, viewSubmission(&subs[i]))
	}
	return views, nil
}

// DeleteSubmission deletes one submission under the same visibility rule as
// GetSubmission.
func DeleteSubmission(db *gorm.DB, id uint, identity *Identity, adminGroup string) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var sub models.FormSubmission
		if err := tx.First(&sub, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		if !IsAdmin(identity, adminGroup) && !IsOwner(identity, sub.UserID) {
			return ErrForbidden
		}
		return tx.Delete(&sub).Error
	})
}

// viewSubmission projects a stored row, re-normalizing the answers column so
// legacy rows come back in the canonical shape.
func viewSubmission(sub *models.FormSubmission) *SubmissionView {
	return &SubmissionView{
		ID:          sub.ID,
		DocumentID:  sub.DocumentID,
		UserID:      sub.UserID,
		Answers:     NormalizeStoredAnswers([]byte(sub.Answers.JSON)),
		SubmittedAt: sub.SubmittedAt,
	}
}
