package database

import (
	"gorm.io/gorm"

	"github.com/yukikurage/org-task-api/internal/authz"
	"github.com/yukikurage/org-task-api/internal/utils"
)

// Paginate applies pagination to a GORM query
func Paginate(params utils.PaginationParams) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset(params.Offset).Limit(params.Limit)
	}
}

// TaskVisibility restricts a tasks query to the rows authz.Visibility admits.
func TaskVisibility(v authz.Visibility) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		db = db.Where("tasks.organization_id = ?", v.OrganizationID)
		if v.RestrictToUserID != nil {
			db = db.Where("(tasks.created_by_id = ? OR tasks.assigned_to_id = ?)",
				*v.RestrictToUserID, *v.RestrictToUserID)
		}
		return db
	}
}
