package dto

import (
	"time"

	"github.com/yukikurage/org-task-api/internal/models"
	"github.com/yukikurage/org-task-api/internal/services"
	"github.com/yukikurage/org-task-api/internal/utils"
)

// TaskDTO represents a task in API responses
type TaskDTO struct {
	ID             uint64              `json:"id"`
	Title          string              `json:"title"`
	Description    string              `json:"description"`
	Status         models.TaskStatus   `json:"status"`
	Category       models.TaskCategory `json:"category"`
	Priority       int                 `json:"priority"`
	DueDate        *time.Time          `json:"due_date"`
	CreatedByID    uint64              `json:"created_by_id"`
	AssignedToID   *uint64             `json:"assigned_to_id"`
	OrganizationID uint64              `json:"organization_id"`
	CreatedAt      time.Time           `json:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at"`
	CreatedBy      *UserSummaryDTO     `json:"created_by,omitempty"`
	AssignedTo     *UserSummaryDTO     `json:"assigned_to,omitempty"`
}

// TaskListResponse represents a paginated list of tasks
type TaskListResponse struct {
	Data []TaskDTO            `json:"data"`
	Meta utils.PaginationMeta `json:"meta"`
}

// TaskDraftsResponse lists generated drafts that have not been saved
type TaskDraftsResponse struct {
	Drafts []services.TaskDraft `json:"drafts"`
}

// Conversion functions

// ToTaskDTO converts a Task model to TaskDTO
func ToTaskDTO(task models.Task) TaskDTO {
	return TaskDTO{
		ID:             task.ID,
		Title:          task.Title,
		Description:    task.Description,
		Status:         task.Status,
		Category:       task.Category,
		Priority:       task.Priority,
		DueDate:        task.DueDate,
		CreatedByID:    task.CreatedByID,
		AssignedToID:   task.AssignedToID,
		OrganizationID: task.OrganizationID,
		CreatedAt:      task.CreatedAt,
		UpdatedAt:      task.UpdatedAt,
		CreatedBy:      ToUserSummaryDTO(task.CreatedBy),
		AssignedTo:     ToUserSummaryDTO(task.AssignedTo),
	}
}

// ToTaskListResponse converts a page of tasks
func ToTaskListResponse(tasks []models.Task, params utils.PaginationParams, total int64) TaskListResponse {
	data := make([]TaskDTO, len(tasks))
	for i, task := range tasks {
		data[i] = ToTaskDTO(task)
	}
	return TaskListResponse{
		Data: data,
		Meta: params.Meta(total),
	}
}
