package models

import (
	"time"
)

// FormSubmission records one user's answers against a document. UserID is the
// opaque subject from the identity provider, not a local foreign key. Answers
// holds the canonical normalized answer list as a JSON column; historical rows
// may still carry legacy shapes and are re-normalized on read.
type FormSubmission struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	DocumentID  uint      `gorm:"not null;index" json:"document_id"`
	UserID      string    `gorm:"size:255;not null;index" json:"user_id"`
	Answers     JSON      `gorm:"not null" json:"-"`
	SubmittedAt time.Time `gorm:"autoCreateTime" json:"submitted_at"`
}

// TableName overrides the table name for FormSubmission
func (FormSubmission) TableName() string {
	return "form_submissions"
}
