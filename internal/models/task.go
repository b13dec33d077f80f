package models

import (
	"time"

	"github.com/yukikurage/org-task-api/internal/authz"
	"gorm.io/gorm"
)

type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "todo"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusArchived   TaskStatus = "archived"
)

// Valid reports whether s is a known task status.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusTodo, TaskStatusInProgress, TaskStatusCompleted, TaskStatusArchived:
		return true
	}
	return false
}

type TaskCategory string

const (
	TaskCategoryWork     TaskCategory = "work"
	TaskCategoryPersonal TaskCategory = "personal"
	TaskCategoryUrgent   TaskCategory = "urgent"
	TaskCategoryOther    TaskCategory = "other"
)

// Valid reports whether c is a known task category.
func (c TaskCategory) Valid() bool {
	switch c {
	case TaskCategoryWork, TaskCategoryPersonal, TaskCategoryUrgent, TaskCategoryOther:
		return true
	}
	return false
}

type Task struct {
	ID             uint64         `gorm:"primarykey" json:"id"`
	Title          string         `gorm:"type:varchar(255);not null" json:"title"`
	Description    string         `gorm:"type:text" json:"description"`
	Status         TaskStatus     `gorm:"type:varchar(20);not null;default:'todo';index" json:"status"`
	Category       TaskCategory   `gorm:"type:varchar(20);not null;default:'other'" json:"category"`
	Priority       int            `gorm:"not null;default:0" json:"priority"`
	DueDate        *time.Time     `json:"due_date"`
	CreatedByID    uint64         `gorm:"not null;index" json:"created_by_id"`
	AssignedToID   *uint64        `gorm:"index" json:"assigned_to_id"`
	OrganizationID uint64         `gorm:"not null;index" json:"organization_id"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	CreatedBy  *User `gorm:"foreignKey:CreatedByID" json:"created_by,omitempty"`
	AssignedTo *User `gorm:"foreignKey:AssignedToID" json:"assigned_to,omitempty"`
}

// Ref returns the attributes the task policy decides on.
func (t Task) Ref() authz.TaskRef {
	return authz.TaskRef{
		ID:             t.ID,
		OrganizationID: t.OrganizationID,
		CreatedByID:    t.CreatedByID,
		AssignedToID:   t.AssignedToID,
	}
}
