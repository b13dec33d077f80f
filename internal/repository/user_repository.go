package repository

import (
	"errors"
	"fmt"

	"github.com/yukikurage/org-task-api/internal/authz"
	"github.com/yukikurage/org-task-api/internal/models"
	"gorm.io/gorm"
)

// GormUserRepository is a GORM implementation of UserRepository
type GormUserRepository struct {
	db *gorm.DB
}

var (
	// ErrStatusConflict is returned when a status write finds the user no longer in the expected state.
	ErrStatusConflict = errors.New("user repository: status changed concurrently")
	// ErrAppendAudit is returned when the audit entry of a status change cannot be written.
	ErrAppendAudit = errors.New("user repository: append audit entry failed")
)

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &GormUserRepository{db: db}
}

// Create creates a new user
func (r *GormUserRepository) Create(user *models.User) error {
	return r.db.Create(user).Error
}

// FindByID finds a user by ID
func (r *GormUserRepository) FindByID(id uint64) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByIDWithOrganization finds a user with the organization hierarchy snapshot
func (r *GormUserRepository) FindByIDWithOrganization(id uint64) (*models.User, error) {
	var user models.User
	if err := r.db.Preload("Organization.Children").First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByEmail finds a user by email
func (r *GormUserRepository) FindByEmail(email string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// ListByStatus lists users in a status, newest first
func (r *GormUserRepository) ListByStatus(status authz.Status) ([]models.User, error) {
	var users []models.User
	err := r.db.Where("status = ?", status).
		Order("created_at DESC").
		Order("id DESC").
		Find(&users).Error
	return users, err
}

// ListActiveByOrganization lists active members of an organization ordered by name
func (r *GormUserRepository) ListActiveByOrganization(organizationID uint64) ([]models.User, error) {
	var users []models.User
	err := r.db.Where("organization_id = ? AND status = ?", organizationID, authz.StatusActive).
		Order("first_name ASC").
		Order("last_name ASC").
		Find(&users).Error
	return users, err
}

// UpdateStatus performs a guarded status transition with its audit entry.
func (r *GormUserRepository) UpdateStatus(change StatusChange, entry *models.AuditLog) error {
	updates := map[string]interface{}{"status": change.To}
	if change.Role != nil {
		updates["role"] = *change.Role
	}
	if change.OrganizationID != nil {
		updates["organization_id"] = *change.OrganizationID
	}

	return r.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.User{}).
			Where("id = ? AND status = ?", change.UserID, change.From).
			Updates(updates)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrStatusConflict
		}

		if entry != nil {
			if err := tx.Create(entry).Error; err != nil {
				return fmt.Errorf("%w: %v", ErrAppendAudit, err)
			}
		}
		return nil
	})
}
