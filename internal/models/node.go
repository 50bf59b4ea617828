package models

import (
	"time"
)

// TreeNode is a named entry in the document hierarchy. A nil ParentID marks
// a root of the forest.
type TreeNode struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	ParentID  *uint     `gorm:"index" json:"parent_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Parent    *TreeNode  `gorm:"foreignKey:ParentID" json:"-"`
	Documents []Document `gorm:"foreignKey:NodeID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName overrides the table name for TreeNode
func (TreeNode) TableName() string {
	return "tree_nodes"
}
