package dto

import (
	"time"

	"github.com/yukikurage/org-task-api/internal/models"
)

// OrganizationDTO represents an organization in API responses
type OrganizationDTO struct {
	ID          uint64    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	ParentID    *uint64   `json:"parent_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// ToOrganizationDTO converts an Organization model to OrganizationDTO
func ToOrganizationDTO(org models.Organization) OrganizationDTO {
	return OrganizationDTO{
		ID:          org.ID,
		Name:        org.Name,
		Description: org.Description,
		ParentID:    org.ParentID,
		CreatedAt:   org.CreatedAt,
	}
}

// ToOrganizationDTOs converts a slice of organizations
func ToOrganizationDTOs(orgs []models.Organization) []OrganizationDTO {
	out := make([]OrganizationDTO, len(orgs))
	for i, org := range orgs {
		out[i] = ToOrganizationDTO(org)
	}
	return out
}
