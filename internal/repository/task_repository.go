package repository

import (
	"errors"
	"fmt"
	"strings"

	"github.com/yukikurage/org-task-api/internal/database"
	"github.com/yukikurage/org-task-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrMissingAuditEntry is returned when a task mutation yields no audit entry.
var ErrMissingAuditEntry = errors.New("task repository: mutation returned no audit entry")

var taskSortColumns = map[TaskSortField]string{
	TaskSortCreatedAt: "tasks.created_at",
	TaskSortUpdatedAt: "tasks.updated_at",
	TaskSortDueDate:   "tasks.due_date",
	TaskSortPriority:  "tasks.priority",
	TaskSortTitle:     "tasks.title",
}

// GormTaskRepository is a GORM implementation of TaskRepository
type GormTaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &GormTaskRepository{db: db}
}

// Create creates a new task and its audit entry
func (r *GormTaskRepository) Create(task *models.Task, audit func(task *models.Task) (*models.AuditLog, error)) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(task).Error; err != nil {
			return err
		}

		entry, err := audit(task)
		if err != nil {
			return err
		}
		return appendAudit(tx, entry)
	})
}

// FindByID finds a task by ID with optional preloading
func (r *GormTaskRepository) FindByID(id uint64, preload ...string) (*models.Task, error) {
	var task models.Task
	query := r.db

	// Apply preloading if specified
	for _, p := range preload {
		query = query.Preload(p)
	}

	if err := query.First(&task, id).Error; err != nil {
		return nil, err
	}

	return &task, nil
}

// List retrieves tasks with filtering and pagination
func (r *GormTaskRepository) List(filter TaskFilter) ([]models.Task, int64, error) {
	var tasks []models.Task

	query := r.db.Model(&models.Task{}).Scopes(database.TaskVisibility(filter.Visibility))

	// Apply filters
	if filter.Status != nil {
		query = query.Where("tasks.status = ?", *filter.Status)
	}
	if filter.Category != nil {
		query = query.Where("tasks.category = ?", *filter.Category)
	}
	if filter.CreatedByID != nil {
		query = query.Where("tasks.created_by_id = ?", *filter.CreatedByID)
	}
	if filter.AssignedToID != nil {
		query = query.Where("tasks.assigned_to_id = ?", *filter.AssignedToID)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where("(LOWER(tasks.title) LIKE ? OR LOWER(tasks.description) LIKE ?)", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	column, ok := taskSortColumns[filter.SortBy]
	if !ok {
		column = taskSortColumns[TaskSortCreatedAt]
	}
	direction := "DESC"
	if filter.SortAscending {
		direction = "ASC"
	}

	listQuery := query.Order(fmt.Sprintf("%s %s", column, direction)).Order("tasks.id " + direction)
	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		listQuery = listQuery.Offset(offset).Limit(filter.PageSize)
	}

	if err := listQuery.Preload("CreatedBy").Preload("AssignedTo").Find(&tasks).Error; err != nil {
		return nil, 0, err
	}

	return tasks, total, nil
}

// Modify updates a locked task and appends its audit entry
func (r *GormTaskRepository) Modify(id uint64, apply TaskMutation) (*models.Task, error) {
	var task models.Task
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := lockTask(tx, id, &task); err != nil {
			return err
		}

		entry, err := apply(&task)
		if err != nil {
			return err
		}

		if err := tx.Omit(clause.Associations).Save(&task).Error; err != nil {
			return err
		}
		return appendAudit(tx, entry)
	})
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// Remove soft deletes a locked task and appends its audit entry
func (r *GormTaskRepository) Remove(id uint64, check TaskMutation) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var task models.Task
		if err := lockTask(tx, id, &task); err != nil {
			return err
		}

		entry, err := check(&task)
		if err != nil {
			return err
		}

		if err := tx.Delete(&task).Error; err != nil {
			return err
		}
		return appendAudit(tx, entry)
	})
}

// lockTask reads the task row with SELECT ... FOR UPDATE. Dialects without
// row locks (sqlite) ignore the clause.
func lockTask(tx *gorm.DB, id uint64, task *models.Task) error {
	return tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(task, id).Error
}

func appendAudit(tx *gorm.DB, entry *models.AuditLog) error {
	if entry == nil {
		return ErrMissingAuditEntry
	}
	return tx.Omit(clause.Associations).Create(entry).Error
}
