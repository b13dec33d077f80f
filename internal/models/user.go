package models

import (
	"time"

	"github.com/yukikurage/org-task-api/internal/authz"
)

type User struct {
	ID             uint64       `gorm:"primarykey" json:"id"`
	Email          string       `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	PasswordHash   string       `gorm:"type:varchar(255);not null" json:"-"`
	FirstName      string       `gorm:"type:varchar(100)" json:"first_name"`
	LastName       string       `gorm:"type:varchar(100)" json:"last_name"`
	Role           *authz.Role  `gorm:"type:varchar(20)" json:"role"`
	Status         authz.Status `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	OrganizationID *uint64      `gorm:"index" json:"organization_id"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`

	// Relations
	Organization *Organization `gorm:"foreignKey:OrganizationID" json:"organization,omitempty"`
}

// RoleValue returns the user's role, or authz.RoleNone when unset.
func (u User) RoleValue() authz.Role {
	if u.Role == nil {
		return authz.RoleNone
	}
	return *u.Role
}

// FullName joins first and last name.
func (u User) FullName() string {
	switch {
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	default:
		return u.FirstName + " " + u.LastName
	}
}

// Actor converts the user into the identity the authorization engine evaluates.
// The organization snapshot is attached only when the organization was preloaded.
func (u User) Actor() authz.Actor {
	actor := authz.Actor{
		ID:             u.ID,
		Email:          u.Email,
		Role:           u.RoleValue(),
		Status:         u.Status,
		OrganizationID: u.OrganizationID,
	}
	if u.Organization != nil && u.OrganizationID != nil && u.Organization.ID == *u.OrganizationID {
		node := u.Organization.Node()
		actor.Organization = &node
	}
	return actor
}
