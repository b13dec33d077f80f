package repository

import (
	"time"

	"github.com/yukikurage/org-task-api/internal/authz"
	"github.com/yukikurage/org-task-api/internal/models"
)

// TaskMutation inspects a locked task, changes it in place when allowed,
// and returns the audit entry describing the change.
type TaskMutation func(task *models.Task) (*models.AuditLog, error)

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// Create inserts the task and the audit entry built for it in one transaction
	Create(task *models.Task, audit func(task *models.Task) (*models.AuditLog, error)) error

	// FindByID finds a task by ID with optional preloading
	FindByID(id uint64, preload ...string) (*models.Task, error)

	// List retrieves tasks with filtering and pagination
	List(filter TaskFilter) ([]models.Task, int64, error)

	// Modify locks the task row, applies the mutation and saves the task
	// together with the returned audit entry
	Modify(id uint64, apply TaskMutation) (*models.Task, error)

	// Remove locks the task row, runs check and soft deletes the task
	// together with the returned audit entry
	Remove(id uint64, check TaskMutation) error
}

// TaskSortField is a column a task list may be ordered by.
type TaskSortField string

const (
	TaskSortCreatedAt TaskSortField = "createdAt"
	TaskSortUpdatedAt TaskSortField = "updatedAt"
	TaskSortDueDate   TaskSortField = "dueDate"
	TaskSortPriority  TaskSortField = "priority"
	TaskSortTitle     TaskSortField = "title"
)

// TaskFilter holds filtering options for listing tasks
type TaskFilter struct {
	Visibility    authz.Visibility
	Status        *models.TaskStatus
	Category      *models.TaskCategory
	CreatedByID   *uint64
	AssignedToID  *uint64
	Search        string
	SortBy        TaskSortField
	SortAscending bool
	Page          int
	PageSize      int
}

// OrganizationRepository defines the interface for organization data access
type OrganizationRepository interface {
	// Create creates a new organization
	Create(org *models.Organization) error

	// FindByID finds an organization by ID
	FindByID(id uint64) (*models.Organization, error)

	// FindByIDWithChildren finds an organization and its direct children
	FindByIDWithChildren(id uint64) (*models.Organization, error)

	// List lists all organizations ordered by name
	List() ([]models.Organization, error)
}

// StatusChange is a registration decision applied to a user.
type StatusChange struct {
	UserID         uint64
	From           authz.Status
	To             authz.Status
	Role           *authz.Role
	OrganizationID *uint64
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(user *models.User) error

	// FindByID finds a user by ID
	FindByID(id uint64) (*models.User, error)

	// FindByIDWithOrganization finds a user with the organization and its children preloaded
	FindByIDWithOrganization(id uint64) (*models.User, error)

	// FindByEmail finds a user by exact email
	FindByEmail(email string) (*models.User, error)

	// ListByStatus lists users in a status, newest first
	ListByStatus(status authz.Status) ([]models.User, error)

	// ListActiveByOrganization lists active members of an organization ordered by name
	ListActiveByOrganization(organizationID uint64) ([]models.User, error)

	// UpdateStatus applies change only while the user is still in change.From
	// and appends entry in the same transaction. It returns ErrStatusConflict
	// when the user left change.From before the write.
	UpdateStatus(change StatusChange, entry *models.AuditLog) error
}

// AuditFilter holds filtering options for listing audit entries
type AuditFilter struct {
	OrganizationID uint64
	UserID         *uint64
	Action         string
	Resource       string
	ResourceID     string
	StartDate      *time.Time
	EndDate        *time.Time
	SortAscending  bool
	Page           int
	PageSize       int
}

// AuditRepository defines the interface for audit log data access
type AuditRepository interface {
	// Create appends an entry
	Create(entry *models.AuditLog) error

	// List retrieves entries written by members of filter.OrganizationID
	List(filter AuditFilter) ([]models.AuditLog, int64, error)

	// Actions lists the distinct actions recorded for an organization
	Actions(organizationID uint64) ([]string, error)

	// Resources lists the distinct resources recorded for an organization
	Resources(organizationID uint64) ([]string, error)
}
