package database

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// AddIndexes adds the composite indexes used by the scoped task and audit queries.
func AddIndexes(db *gorm.DB, log *logrus.Logger) error {
	indexes := []struct {
		table   string
		name    string
		columns string
	}{
		// Visibility-scoped task listing
		{"tasks", "idx_tasks_org_created_by", "organization_id, created_by_id"},
		{"tasks", "idx_tasks_org_assigned_to", "organization_id, assigned_to_id"},
		{"tasks", "idx_tasks_org_created_at", "organization_id, created_at"},

		// Audit log listing by resource
		{"audit_logs", "idx_audit_logs_resource", "resource, resource_id"},
	}

	for _, idx := range indexes {
		if db.Migrator().HasIndex(idx.table, idx.name) {
			log.Debugf("Index %s already exists, skipping", idx.name)
			continue
		}

		sql := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idx.name, idx.table, idx.columns)
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}

		log.Infof("Created index %s on %s(%s)", idx.name, idx.table, idx.columns)
	}

	return nil
}
