package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yukikurage/org-task-api/internal/authz"
	"github.com/yukikurage/org-task-api/internal/constants"
	"github.com/yukikurage/org-task-api/internal/metrics"
	"github.com/yukikurage/org-task-api/internal/models"
	"github.com/yukikurage/org-task-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrTaskNotFound         = errors.New("task not found")
	ErrTaskPermissionDenied = errors.New("not permitted to modify this task")
	ErrTitleRequired        = errors.New("title is required")
	ErrInvalidStatus        = errors.New("invalid task status")
	ErrInvalidCategory      = errors.New("invalid task category")
	ErrInvalidPriority      = errors.New("priority must be between 0 and 10")
	ErrInvalidAssignee      = errors.New("assignee must be an active member of the organization")
	ErrTextRequired         = errors.New("text is required")
)

var taskPreloads = []string{"CreatedBy", "AssignedTo"}

// TaskService applies the task visibility and mutation policy around storage.
type TaskService struct {
	taskRepo repository.TaskRepository
	userRepo repository.UserRepository
	ai       *AIService
	log      *logrus.Logger
}

// NewTaskService creates a new TaskService. ai may be nil.
func NewTaskService(taskRepo repository.TaskRepository, userRepo repository.UserRepository, ai *AIService, log *logrus.Logger) *TaskService {
	return &TaskService{
		taskRepo: taskRepo,
		userRepo: userRepo,
		ai:       ai,
		log:      log,
	}
}

// CreateTaskInput describes a new task. Nil fields take their defaults.
type CreateTaskInput struct {
	Title        string
	Description  string
	Status       *models.TaskStatus
	Category     *models.TaskCategory
	Priority     *int
	DueDate      *time.Time
	AssignedToID *uint64
}

// Create adds a task to the actor's organization.
func (s *TaskService) Create(actor authz.Actor, input CreateTaskInput, meta RequestMeta) (*models.Task, error) {
	orgID, err := organizationOf(actor, "tasks.create")
	if err != nil {
		return nil, err
	}

	task := &models.Task{
		Title:          strings.TrimSpace(input.Title),
		Description:    input.Description,
		Status:         models.TaskStatusTodo,
		Category:       models.TaskCategoryOther,
		Priority:       constants.MinTaskPriority,
		DueDate:        input.DueDate,
		CreatedByID:    actor.ID,
		AssignedToID:   input.AssignedToID,
		OrganizationID: orgID,
	}
	if task.Title == "" {
		return nil, ErrTitleRequired
	}
	if input.Status != nil {
		task.Status = *input.Status
	}
	if input.Category != nil {
		task.Category = *input.Category
	}
	if input.Priority != nil {
		task.Priority = *input.Priority
	}
	if err := validateTask(task); err != nil {
		return nil, err
	}
	if err := s.validateAssignee(input.AssignedToID, orgID); err != nil {
		return nil, err
	}

	err = s.taskRepo.Create(task, func(t *models.Task) (*models.AuditLog, error) {
		return newAuditEntry(actor.ID, models.AuditActionCreate, models.AuditResourceTask, t.ID, nil, taskSnapshot(*t), meta)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	return s.reload(task.ID)
}

// TaskListInput holds the filters of a task list query.
type TaskListInput struct {
	Status        *models.TaskStatus
	Category      *models.TaskCategory
	AssignedToID  *uint64
	CreatedByID   *uint64
	Search        string
	SortBy        repository.TaskSortField
	SortAscending bool
	Page          int
	PageSize      int
}

// List returns the tasks of the actor's organization the list scope admits.
// Admins list every task of their organization, including ones Get refuses.
func (s *TaskService) List(actor authz.Actor, input TaskListInput) ([]models.Task, int64, error) {
	visibility, err := authz.TaskVisibility(actor)
	if err != nil {
		s.observe(actor, "tasks.list", 0, err)
		return nil, 0, err
	}
	if input.Status != nil && !input.Status.Valid() {
		return nil, 0, ErrInvalidStatus
	}
	if input.Category != nil && !input.Category.Valid() {
		return nil, 0, ErrInvalidCategory
	}

	tasks, total, err := s.taskRepo.List(repository.TaskFilter{
		Visibility:    visibility,
		Status:        input.Status,
		Category:      input.Category,
		CreatedByID:   input.CreatedByID,
		AssignedToID:  input.AssignedToID,
		Search:        input.Search,
		SortBy:        input.SortBy,
		SortAscending: input.SortAscending,
		Page:          input.Page,
		PageSize:      input.PageSize,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, total, nil
}

// Get returns a task the actor may view. Tasks outside the actor's view are
// reported as not found.
func (s *TaskService) Get(actor authz.Actor, id uint64) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(id, taskPreloads...)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	if err := authz.CheckView(task.Ref(), actor); err != nil {
		s.observe(actor, "tasks.view", id, err)
		return nil, fmt.Errorf("%w: %w", ErrTaskNotFound, err)
	}
	return task, nil
}

// UpdateTaskInput lists the fields to change. Nil fields are left as they are.
type UpdateTaskInput struct {
	Title        *string
	Description  *string
	Status       *models.TaskStatus
	Category     *models.TaskCategory
	Priority     *int
	DueDate      *time.Time
	ClearDueDate bool
	AssignedToID *uint64
	Unassign     bool
}

// Update changes a task the actor may modify.
func (s *TaskService) Update(actor authz.Actor, id uint64, input UpdateTaskInput, meta RequestMeta) (*models.Task, error) {
	if input.Title != nil && strings.TrimSpace(*input.Title) == "" {
		return nil, ErrTitleRequired
	}
	if actor.OrganizationID != nil {
		if err := s.validateAssignee(input.AssignedToID, *actor.OrganizationID); err != nil {
			return nil, err
		}
	}

	return s.modify(actor, id, "tasks.update", meta, func(task *models.Task) error {
		if input.Title != nil {
			task.Title = strings.TrimSpace(*input.Title)
		}
		if input.Description != nil {
			task.Description = *input.Description
		}
		if input.Status != nil {
			task.Status = *input.Status
		}
		if input.Category != nil {
			task.Category = *input.Category
		}
		if input.Priority != nil {
			task.Priority = *input.Priority
		}
		switch {
		case input.ClearDueDate:
			task.DueDate = nil
		case input.DueDate != nil:
			task.DueDate = input.DueDate
		}
		switch {
		case input.Unassign:
			task.AssignedToID = nil
		case input.AssignedToID != nil:
			task.AssignedToID = input.AssignedToID
		}
		return validateTask(task)
	})
}

// Reorder sets the priority of a task the actor may modify.
func (s *TaskService) Reorder(actor authz.Actor, id uint64, priority int, meta RequestMeta) (*models.Task, error) {
	if priority < constants.MinTaskPriority || priority > constants.MaxTaskPriority {
		return nil, ErrInvalidPriority
	}
	return s.modify(actor, id, "tasks.reorder", meta, func(task *models.Task) error {
		task.Priority = priority
		return nil
	})
}

// Delete soft deletes a task the actor may modify.
func (s *TaskService) Delete(actor authz.Actor, id uint64, meta RequestMeta) error {
	err := s.taskRepo.Remove(id, func(task *models.Task) (*models.AuditLog, error) {
		if err := s.checkModify(actor, *task, "tasks.delete"); err != nil {
			return nil, err
		}
		return newAuditEntry(actor.ID, models.AuditActionDelete, models.AuditResourceTask, task.ID, taskSnapshot(*task), nil, meta)
	})
	return s.translate(err, "failed to delete task")
}

// GenerateDrafts suggests tasks for text without storing anything.
func (s *TaskService) GenerateDrafts(ctx context.Context, text string) ([]TaskDraft, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrTextRequired
	}
	if s.ai == nil {
		return nil, ErrAINotConfigured
	}
	return s.ai.GenerateTaskDrafts(ctx, text)
}

// modify runs apply on the locked task after the mutation policy admits the
// actor, and records the before and after snapshots.
func (s *TaskService) modify(actor authz.Actor, id uint64, operation string, meta RequestMeta, apply func(task *models.Task) error) (*models.Task, error) {
	_, err := s.taskRepo.Modify(id, func(task *models.Task) (*models.AuditLog, error) {
		if err := s.checkModify(actor, *task, operation); err != nil {
			return nil, err
		}

		before := taskSnapshot(*task)
		if err := apply(task); err != nil {
			return nil, err
		}
		return newAuditEntry(actor.ID, models.AuditActionUpdate, models.AuditResourceTask, task.ID, before, taskSnapshot(*task), meta)
	})
	if err := s.translate(err, "failed to update task"); err != nil {
		return nil, err
	}
	return s.reload(id)
}

// checkModify applies the mutation policy. An actor that cannot even view the
// task gets not found, so the task's existence is not revealed.
func (s *TaskService) checkModify(actor authz.Actor, task models.Task, operation string) error {
	err := authz.CheckModify(task.Ref(), actor)
	s.observe(actor, operation, task.ID, err)
	if err == nil {
		return nil
	}
	if !authz.CanView(task.Ref(), actor) {
		return fmt.Errorf("%w: %w", ErrTaskNotFound, err)
	}
	return fmt.Errorf("%w: %w", ErrTaskPermissionDenied, err)
}

func (s *TaskService) translate(err error, message string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrTaskNotFound
	case errors.Is(err, ErrTaskNotFound),
		errors.Is(err, ErrTaskPermissionDenied),
		errors.Is(err, ErrInvalidStatus),
		errors.Is(err, ErrInvalidCategory),
		errors.Is(err, ErrInvalidPriority):
		return err
	default:
		return fmt.Errorf("%s: %w", message, err)
	}
}

func (s *TaskService) reload(id uint64) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(id, taskPreloads...)
	if err != nil {
		return nil, fmt.Errorf("failed to load task: %w", err)
	}
	return task, nil
}

// validateAssignee checks that assigneeID, when set, is an active user of orgID.
func (s *TaskService) validateAssignee(assigneeID *uint64, orgID uint64) error {
	if assigneeID == nil {
		return nil
	}
	user, err := s.userRepo.FindByID(*assigneeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInvalidAssignee
		}
		return fmt.Errorf("failed to find assignee: %w", err)
	}
	if !user.Actor().Active() || !user.Actor().InOrganization(orgID) {
		return ErrInvalidAssignee
	}
	return nil
}

func (s *TaskService) observe(actor authz.Actor, operation string, taskID uint64, err error) {
	metrics.ObserveDecision(operation, err)
	if err == nil {
		return
	}
	reason, _ := authz.ReasonOf(err)
	s.log.WithFields(logrus.Fields{
		"operation": operation,
		"user_id":   actor.ID,
		"task_id":   taskID,
		"reason":    reason,
	}).Info("Task access denied")
}

func validateTask(task *models.Task) error {
	if !task.Status.Valid() {
		return ErrInvalidStatus
	}
	if !task.Category.Valid() {
		return ErrInvalidCategory
	}
	if task.Priority < constants.MinTaskPriority || task.Priority > constants.MaxTaskPriority {
		return ErrInvalidPriority
	}
	return nil
}

// taskSnapshot is the audited form of a task, without relations.
func taskSnapshot(task models.Task) models.Task {
	task.CreatedBy = nil
	task.AssignedTo = nil
	return task
}
