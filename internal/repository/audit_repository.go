package repository

import (
	"github.com/yukikurage/org-task-api/internal/models"
	"gorm.io/gorm"
)

// GormAuditRepository is a GORM implementation of AuditRepository
type GormAuditRepository struct {
	db *gorm.DB
}

// NewAuditRepository creates a new AuditRepository
func NewAuditRepository(db *gorm.DB) AuditRepository {
	return &GormAuditRepository{db: db}
}

// Create appends an entry
func (r *GormAuditRepository) Create(entry *models.AuditLog) error {
	return appendAudit(r.db, entry)
}

// List retrieves audit entries with filtering and pagination
func (r *GormAuditRepository) List(filter AuditFilter) ([]models.AuditLog, int64, error) {
	var entries []models.AuditLog

	query := r.inOrganization(filter.OrganizationID)

	if filter.UserID != nil {
		query = query.Where("audit_logs.user_id = ?", *filter.UserID)
	}
	if filter.Action != "" {
		query = query.Where("audit_logs.action = ?", filter.Action)
	}
	if filter.Resource != "" {
		query = query.Where("audit_logs.resource = ?", filter.Resource)
	}
	if filter.ResourceID != "" {
		query = query.Where("audit_logs.resource_id = ?", filter.ResourceID)
	}
	if filter.StartDate != nil {
		query = query.Where("audit_logs.created_at >= ?", *filter.StartDate)
	}
	if filter.EndDate != nil {
		query = query.Where("audit_logs.created_at <= ?", *filter.EndDate)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	direction := "DESC"
	if filter.SortAscending {
		direction = "ASC"
	}
	listQuery := query.Order("audit_logs.created_at " + direction).Order("audit_logs.id " + direction)
	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		listQuery = listQuery.Offset(offset).Limit(filter.PageSize)
	}

	if err := listQuery.Preload("User").Find(&entries).Error; err != nil {
		return nil, 0, err
	}

	return entries, total, nil
}

// Actions lists the distinct actions recorded for an organization
func (r *GormAuditRepository) Actions(organizationID uint64) ([]string, error) {
	return r.distinct(organizationID, "action")
}

// Resources lists the distinct resources recorded for an organization
func (r *GormAuditRepository) Resources(organizationID uint64) ([]string, error) {
	return r.distinct(organizationID, "resource")
}

func (r *GormAuditRepository) distinct(organizationID uint64, column string) ([]string, error) {
	qualified := "audit_logs." + column
	values := []string{}
	err := r.inOrganization(organizationID).
		Distinct(qualified).
		Order(qualified).
		Pluck(qualified, &values).Error
	return values, err
}

// inOrganization limits entries to those written by members of organizationID.
func (r *GormAuditRepository) inOrganization(organizationID uint64) *gorm.DB {
	return r.db.Model(&models.AuditLog{}).
		Joins("JOIN users ON users.id = audit_logs.user_id").
		Where("users.organization_id = ?", organizationID)
}
