package repository

import (
	"github.com/yukikurage/org-task-api/internal/models"
	"gorm.io/gorm"
)

// GormOrganizationRepository is a GORM implementation of OrganizationRepository
type GormOrganizationRepository struct {
	db *gorm.DB
}

// NewOrganizationRepository creates a new OrganizationRepository
func NewOrganizationRepository(db *gorm.DB) OrganizationRepository {
	return &GormOrganizationRepository{db: db}
}

// Create creates a new organization
func (r *GormOrganizationRepository) Create(org *models.Organization) error {
	return r.db.Omit("Parent", "Children").Create(org).Error
}

// FindByID finds an organization by ID
func (r *GormOrganizationRepository) FindByID(id uint64) (*models.Organization, error) {
	var org models.Organization
	if err := r.db.First(&org, id).Error; err != nil {
		return nil, err
	}
	return &org, nil
}

// FindByIDWithChildren finds an organization and its direct children
func (r *GormOrganizationRepository) FindByIDWithChildren(id uint64) (*models.Organization, error) {
	var org models.Organization
	if err := r.db.Preload("Children").First(&org, id).Error; err != nil {
		return nil, err
	}
	return &org, nil
}

// List lists all organizations ordered by name
func (r *GormOrganizationRepository) List() ([]models.Organization, error) {
	var orgs []models.Organization
	err := r.db.Order("name ASC").Order("id ASC").Find(&orgs).Error
	return orgs, err
}
