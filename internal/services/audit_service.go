package services

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/yukikurage/org-task-api/internal/authz"
	"github.com/yukikurage/org-task-api/internal/models"
	"github.com/yukikurage/org-task-api/internal/repository"
)

var (
	// ErrInvalidDateRange is returned when an audit query ends before it starts.
	ErrInvalidDateRange = errors.New("endDate must not be before startDate")
)

// RequestMeta identifies the request that caused a mutation for the audit trail.
type RequestMeta struct {
	IPAddress string
	UserAgent string
	RequestID string
}

// AuditService serves the audit log to administrators.
type AuditService struct {
	auditRepo repository.AuditRepository
}

// NewAuditService creates a new AuditService.
func NewAuditService(auditRepo repository.AuditRepository) *AuditService {
	return &AuditService{auditRepo: auditRepo}
}

// AuditListInput holds the filters of an audit log query.
type AuditListInput struct {
	UserID        *uint64
	Action        string
	Resource      string
	ResourceID    string
	StartDate     *time.Time
	EndDate       *time.Time
	SortAscending bool
	Page          int
	PageSize      int
}

// List returns the entries written by members of the actor's organization.
func (s *AuditService) List(actor authz.Actor, input AuditListInput) ([]models.AuditLog, int64, error) {
	orgID, err := organizationOf(actor, "audit.list")
	if err != nil {
		return nil, 0, err
	}
	if input.StartDate != nil && input.EndDate != nil && input.EndDate.Before(*input.StartDate) {
		return nil, 0, ErrInvalidDateRange
	}

	entries, total, err := s.auditRepo.List(repository.AuditFilter{
		OrganizationID: orgID,
		UserID:         input.UserID,
		Action:         input.Action,
		Resource:       input.Resource,
		ResourceID:     input.ResourceID,
		StartDate:      input.StartDate,
		EndDate:        input.EndDate,
		SortAscending:  input.SortAscending,
		Page:           input.Page,
		PageSize:       input.PageSize,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list audit entries: %w", err)
	}
	return entries, total, nil
}

// Actions lists the distinct actions visible to the actor.
func (s *AuditService) Actions(actor authz.Actor) ([]string, error) {
	orgID, err := organizationOf(actor, "audit.actions")
	if err != nil {
		return nil, err
	}
	return s.auditRepo.Actions(orgID)
}

// Resources lists the distinct resources visible to the actor.
func (s *AuditService) Resources(actor authz.Actor) ([]string, error) {
	orgID, err := organizationOf(actor, "audit.resources")
	if err != nil {
		return nil, err
	}
	return s.auditRepo.Resources(orgID)
}

// organizationOf returns the actor's organization, or a wrong-organization
// denial for actors that have none.
func organizationOf(actor authz.Actor, operation string) (uint64, error) {
	if actor.OrganizationID == nil {
		return 0, &authz.Denial{Reason: authz.ReasonWrongOrganization, Operation: operation}
	}
	return *actor.OrganizationID, nil
}

// newAuditEntry builds an entry with JSON snapshots of before and after.
func newAuditEntry(actorID uint64, action, resource string, resourceID uint64, before, after any, meta RequestMeta) (*models.AuditLog, error) {
	oldValue, err := models.NewJSON(before)
	if err != nil {
		return nil, fmt.Errorf("failed to encode audit snapshot: %w", err)
	}
	newValue, err := models.NewJSON(after)
	if err != nil {
		return nil, fmt.Errorf("failed to encode audit snapshot: %w", err)
	}

	return &models.AuditLog{
		UserID:     actorID,
		Action:     action,
		Resource:   resource,
		ResourceID: strconv.FormatUint(resourceID, 10),
		OldValue:   oldValue,
		NewValue:   newValue,
		IPAddress:  meta.IPAddress,
		UserAgent:  meta.UserAgent,
		RequestID:  meta.RequestID,
	}, nil
}
