package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/yukikurage/org-task-api/internal/authz"
	"github.com/yukikurage/org-task-api/internal/constants"
	"github.com/yukikurage/org-task-api/internal/dto"
	apierrors "github.com/yukikurage/org-task-api/internal/errors"
	"github.com/yukikurage/org-task-api/internal/middleware"
	"github.com/yukikurage/org-task-api/internal/models"
	"github.com/yukikurage/org-task-api/internal/repository"
	"github.com/yukikurage/org-task-api/internal/services"
	"github.com/yukikurage/org-task-api/internal/utils"
)

var taskSortFields = map[string]repository.TaskSortField{
	"createdAt": repository.TaskSortCreatedAt,
	"updatedAt": repository.TaskSortUpdatedAt,
	"dueDate":   repository.TaskSortDueDate,
	"priority":  repository.TaskSortPriority,
	"title":     repository.TaskSortTitle,
}

// TaskHandler serves the task endpoints.
type TaskHandler struct {
	taskService *services.TaskService
	log         *logrus.Logger
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(taskService *services.TaskService, log *logrus.Logger) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
		log:         log,
	}
}

// ListTasks returns the tasks visible to the current user.
func (h *TaskHandler) ListTasks(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	input := services.TaskListInput{Search: strings.TrimSpace(c.Query("search"))}

	if raw := c.Query("status"); raw != "" {
		status := models.TaskStatus(raw)
		input.Status = &status
	}
	if raw := c.Query("category"); raw != "" {
		category := models.TaskCategory(raw)
		input.Category = &category
	}
	if input.AssignedToID, ok = optionalUint64Query(c, "assignedToId"); !ok {
		return
	}
	if input.CreatedByID, ok = optionalUint64Query(c, "createdById"); !ok {
		return
	}
	if raw := c.Query("sortBy"); raw != "" {
		field, known := taskSortFields[raw]
		if !known {
			apierrors.BadRequest(c, "Invalid sortBy")
			return
		}
		input.SortBy = field
	}
	if input.SortAscending, ok = sortAscending(c); !ok {
		return
	}

	params := utils.GetPaginationParams(c, constants.DefaultPageSize)
	input.Page = params.Page
	input.PageSize = params.Limit

	tasks, total, err := h.taskService.List(actor, input)
	if err != nil {
		h.respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskListResponse(tasks, params, total))
}

// GetTask returns a single task.
func (h *TaskHandler) GetTask(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	taskID, ok := middleware.GetTaskID(c)
	if !ok {
		apierrors.BadRequest(c, "Invalid task ID")
		return
	}

	task, err := h.taskService.Get(actor, taskID)
	if err != nil {
		h.respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// CreateTask adds a task to the current user's organization.
func (h *TaskHandler) CreateTask(c *gin.Context) {
	type CreateTaskRequest struct {
		Title        string               `json:"title" binding:"required,max=255"`
		Description  string               `json:"description"`
		Status       *models.TaskStatus   `json:"status"`
		Category     *models.TaskCategory `json:"category"`
		Priority     *int                 `json:"priority"`
		DueDate      *time.Time           `json:"dueDate"`
		AssignedToID *uint64              `json:"assignedToId"`
	}

	actor, ok := requireActor(c)
	if !ok {
		return
	}

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	task, err := h.taskService.Create(actor, services.CreateTaskInput{
		Title:        req.Title,
		Description:  req.Description,
		Status:       req.Status,
		Category:     req.Category,
		Priority:     req.Priority,
		DueDate:      req.DueDate,
		AssignedToID: req.AssignedToID,
	}, requestMeta(c))
	if err != nil {
		h.respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTaskDTO(*task))
}

// UpdateTask applies a partial update. An explicit null for dueDate or
// assignedToId clears the field.
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	type UpdateTaskRequest struct {
		Title        *string              `json:"title" binding:"omitempty,max=255"`
		Description  *string              `json:"description"`
		Status       *models.TaskStatus   `json:"status"`
		Category     *models.TaskCategory `json:"category"`
		Priority     *int                 `json:"priority"`
		DueDate      json.RawMessage      `json:"dueDate"`
		AssignedToID json.RawMessage      `json:"assignedToId"`
	}

	actor, ok := requireActor(c)
	if !ok {
		return
	}
	taskID, ok := middleware.GetTaskID(c)
	if !ok {
		apierrors.BadRequest(c, "Invalid task ID")
		return
	}

	var req UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	input := services.UpdateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Category:    req.Category,
		Priority:    req.Priority,
	}
	if isNull(req.DueDate) {
		input.ClearDueDate = true
	} else if len(req.DueDate) > 0 {
		var due time.Time
		if err := json.Unmarshal(req.DueDate, &due); err != nil {
			apierrors.BadRequest(c, "Invalid dueDate")
			return
		}
		input.DueDate = &due
	}
	if isNull(req.AssignedToID) {
		input.Unassign = true
	} else if len(req.AssignedToID) > 0 {
		var assignee uint64
		if err := json.Unmarshal(req.AssignedToID, &assignee); err != nil {
			apierrors.BadRequest(c, "Invalid assignedToId")
			return
		}
		input.AssignedToID = &assignee
	}

	task, err := h.taskService.Update(actor, taskID, input, requestMeta(c))
	if err != nil {
		h.respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// ReorderTask sets the priority of a task.
func (h *TaskHandler) ReorderTask(c *gin.Context) {
	type ReorderRequest struct {
		Priority *int `json:"priority" binding:"required"`
	}

	actor, ok := requireActor(c)
	if !ok {
		return
	}
	taskID, ok := middleware.GetTaskID(c)
	if !ok {
		apierrors.BadRequest(c, "Invalid task ID")
		return
	}

	var req ReorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	task, err := h.taskService.Reorder(actor, taskID, *req.Priority, requestMeta(c))
	if err != nil {
		h.respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// DeleteTask soft deletes a task.
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	taskID, ok := middleware.GetTaskID(c)
	if !ok {
		apierrors.BadRequest(c, "Invalid task ID")
		return
	}

	if err := h.taskService.Delete(actor, taskID, requestMeta(c)); err != nil {
		h.respondTaskError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// GenerateTasks suggests task drafts from free text. Nothing is stored.
func (h *TaskHandler) GenerateTasks(c *gin.Context) {
	type GenerateRequest struct {
		Text string `json:"text" binding:"required"`
	}

	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	drafts, err := h.taskService.GenerateDrafts(c.Request.Context(), req.Text)
	if err != nil {
		h.respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.TaskDraftsResponse{Drafts: drafts})
}

func (h *TaskHandler) respondTaskError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrTaskNotFound):
		apierrors.NotFound(c, "Task not found")
	case errors.Is(err, services.ErrTaskPermissionDenied):
		apierrors.Forbidden(c, "")
	case errors.Is(err, authz.ErrDenied):
		middleware.RespondDenial(c, h.log, err)
	case errors.Is(err, services.ErrTitleRequired),
		errors.Is(err, services.ErrInvalidStatus),
		errors.Is(err, services.ErrInvalidCategory),
		errors.Is(err, services.ErrInvalidPriority),
		errors.Is(err, services.ErrInvalidAssignee),
		errors.Is(err, services.ErrTextRequired):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrAINotConfigured):
		apierrors.ServiceUnavailable(c, "Task generation is not configured")
	default:
		h.log.WithError(err).Error("Task request failed")
		apierrors.InternalError(c, "Internal server error")
	}
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
