package models

import (
	"time"

	"github.com/yukikurage/org-task-api/internal/authz"
)

type Organization struct {
	ID          uint64    `gorm:"primarykey" json:"id"`
	Name        string    `gorm:"type:varchar(255);not null" json:"name"`
	Description string    `gorm:"type:text" json:"description,omitempty"`
	ParentID    *uint64   `gorm:"index" json:"parent_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Relations
	Parent   *Organization  `gorm:"foreignKey:ParentID" json:"parent,omitempty"`
	Children []Organization `gorm:"foreignKey:ParentID" json:"children,omitempty"`
}

// Node returns the hierarchy snapshot used by organization scope checks.
// Children must have been preloaded to be included.
func (o Organization) Node() authz.OrgNode {
	node := authz.OrgNode{ID: o.ID, ParentID: o.ParentID}
	if len(o.Children) > 0 {
		node.ChildIDs = make([]uint64, len(o.Children))
		for i, child := range o.Children {
			node.ChildIDs[i] = child.ID
		}
	}
	return node
}
