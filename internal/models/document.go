package models

import (
	"time"
)

// Document is versioned content attached to exactly one tree node. Content is
// opaque MDX markup; Version starts at 1 and increments only on content
// updates.
type Document struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	NodeID    uint      `gorm:"not null;index" json:"node_id"`
	Title     string    `gorm:"size:255;not null" json:"title"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	Version   uint64    `gorm:"not null;default:1" json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Submissions []FormSubmission `gorm:"foreignKey:DocumentID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName overrides the table name for Document
func (Document) TableName() string {
	return "documents"
}
