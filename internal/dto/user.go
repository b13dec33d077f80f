package dto

import (
	"time"

	"github.com/yukikurage/org-task-api/internal/authz"
	"github.com/yukikurage/org-task-api/internal/models"
	"github.com/yukikurage/org-task-api/internal/token"
)

// UserDTO represents a user in API responses
type UserDTO struct {
	ID             uint64       `json:"id"`
	Email          string       `json:"email"`
	FirstName      string       `json:"first_name"`
	LastName       string       `json:"last_name"`
	Role           *authz.Role  `json:"role"`
	Status         authz.Status `json:"status"`
	OrganizationID *uint64      `json:"organization_id"`
}

// UserSummaryDTO is the compact form of a user embedded in other resources
type UserSummaryDTO struct {
	ID    uint64 `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// PendingUserDTO represents a registration awaiting a decision
type PendingUserDTO struct {
	ID        uint64    `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	CreatedAt time.Time `json:"created_at"`
}

// LoginResponse is returned by a successful login
type LoginResponse struct {
	token.Pair
	User UserDTO `json:"user"`
}

// MessageResponse carries a human readable confirmation
type MessageResponse struct {
	Message string `json:"message"`
}

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:             user.ID,
		Email:          user.Email,
		FirstName:      user.FirstName,
		LastName:       user.LastName,
		Role:           user.Role,
		Status:         user.Status,
		OrganizationID: user.OrganizationID,
	}
}

// ToUserDTOs converts a slice of users
func ToUserDTOs(users []models.User) []UserDTO {
	out := make([]UserDTO, len(users))
	for i, user := range users {
		out[i] = ToUserDTO(user)
	}
	return out
}

// ToUserSummaryDTO converts a preloaded relation, returning nil when it was not loaded
func ToUserSummaryDTO(user *models.User) *UserSummaryDTO {
	if user == nil {
		return nil
	}
	return &UserSummaryDTO{
		ID:    user.ID,
		Email: user.Email,
		Name:  user.FullName(),
	}
}

// ToPendingUserDTOs converts pending registrations
func ToPendingUserDTOs(users []models.User) []PendingUserDTO {
	out := make([]PendingUserDTO, len(users))
	for i, user := range users {
		out[i] = PendingUserDTO{
			ID:        user.ID,
			Email:     user.Email,
			FirstName: user.FirstName,
			LastName:  user.LastName,
			CreatedAt: user.CreatedAt,
		}
	}
	return out
}
