package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/yukikurage/org-task-api/internal/authz"
	"github.com/yukikurage/org-task-api/internal/models"
	"github.com/yukikurage/org-task-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrUserNotPending             = errors.New("user is not pending approval")
	ErrInvalidRole                = errors.New("invalid role")
	ErrOwnerGrantRequiresOwner    = errors.New("only an owner can grant the owner role")
	ErrParentOrganizationNotFound = errors.New("parent organization not found")
	ErrOrganizationNameRequired   = errors.New("organization name is required")
)

// RegistrationService moves registrations through the approval lifecycle and
// serves the organization and user listings of the admin console.
type RegistrationService struct {
	userRepo  repository.UserRepository
	orgRepo   repository.OrganizationRepository
	directory *OrganizationDirectory
	log       *logrus.Logger
}

// NewRegistrationService creates a new RegistrationService.
func NewRegistrationService(
	userRepo repository.UserRepository,
	orgRepo repository.OrganizationRepository,
	directory *OrganizationDirectory,
	log *logrus.Logger,
) *RegistrationService {
	return &RegistrationService{
		userRepo:  userRepo,
		orgRepo:   orgRepo,
		directory: directory,
		log:       log,
	}
}

// ListPending returns users awaiting a decision, newest first.
func (s *RegistrationService) ListPending() ([]models.User, error) {
	users, err := s.userRepo.ListByStatus(authz.StatusPending)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending users: %w", err)
	}
	return users, nil
}

// ApproveInput is an approval decision.
type ApproveInput struct {
	UserID         uint64
	OrganizationID uint64
	Role           string
}

// Approve activates a pending user with a role and an organization.
func (s *RegistrationService) Approve(approver authz.Actor, input ApproveInput, meta RequestMeta) (*models.User, error) {
	role, err := authz.ParseRole(input.Role)
	if err != nil {
		return nil, ErrInvalidRole
	}

	user, err := s.findUser(input.UserID)
	if err != nil {
		return nil, err
	}
	if _, err := s.orgRepo.FindByID(input.OrganizationID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrganizationNotFound
		}
		return nil, fmt.Errorf("failed to find organization: %w", err)
	}

	next, err := authz.Transition(user.Status, authz.EventApprove)
	if err != nil {
		return nil, ErrUserNotPending
	}
	if !authz.CanGrant(approver.Role, role) {
		return nil, ErrOwnerGrantRequiresOwner
	}

	orgID := input.OrganizationID
	change := repository.StatusChange{
		UserID:         user.ID,
		From:           user.Status,
		To:             next,
		Role:           &role,
		OrganizationID: &orgID,
	}
	entry, err := newAuditEntry(approver.ID, models.AuditActionApprove, models.AuditResourceUser, user.ID,
		statusSnapshot{Status: user.Status},
		statusSnapshot{Status: next, Role: role, OrganizationID: &orgID},
		meta)
	if err != nil {
		return nil, err
	}

	if err := s.applyChange(change, entry); err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"approver_id":     approver.ID,
		"user_id":         user.ID,
		"organization_id": orgID,
		"role":            role,
	}).Info("Registration approved")

	return s.findUser(user.ID)
}

// Reject closes a pending registration.
func (s *RegistrationService) Reject(approver authz.Actor, userID uint64, meta RequestMeta) (*models.User, error) {
	user, err := s.findUser(userID)
	if err != nil {
		return nil, err
	}

	next, err := authz.Transition(user.Status, authz.EventReject)
	if err != nil {
		return nil, ErrUserNotPending
	}

	change := repository.StatusChange{UserID: user.ID, From: user.Status, To: next}
	entry, err := newAuditEntry(approver.ID, models.AuditActionReject, models.AuditResourceUser, user.ID,
		statusSnapshot{Status: user.Status},
		statusSnapshot{Status: next},
		meta)
	if err != nil {
		return nil, err
	}

	if err := s.applyChange(change, entry); err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"approver_id": approver.ID,
		"user_id":     user.ID,
	}).Info("Registration rejected")

	return s.findUser(user.ID)
}

// ListOrganizations returns every organization ordered by name.
func (s *RegistrationService) ListOrganizations() ([]models.Organization, error) {
	orgs, err := s.orgRepo.List()
	if err != nil {
		return nil, fmt.Errorf("failed to list organizations: %w", err)
	}
	return orgs, nil
}

// CreateOrganizationInput describes a new organization.
type CreateOrganizationInput struct {
	Name        string
	Description string
	ParentID    *uint64
}

// CreateOrganization adds an organization, optionally under an existing parent.
// A new node has no children yet, so attaching it cannot form a cycle.
func (s *RegistrationService) CreateOrganization(input CreateOrganizationInput) (*models.Organization, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrOrganizationNameRequired
	}

	if input.ParentID != nil {
		if _, err := s.orgRepo.FindByID(*input.ParentID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrParentOrganizationNotFound
			}
			return nil, fmt.Errorf("failed to find parent organization: %w", err)
		}
	}

	org := &models.Organization{
		Name:        name,
		Description: strings.TrimSpace(input.Description),
		ParentID:    input.ParentID,
	}
	if err := s.orgRepo.Create(org); err != nil {
		return nil, fmt.Errorf("failed to create organization: %w", err)
	}

	if input.ParentID != nil {
		s.directory.Invalidate(*input.ParentID)
	}
	return org, nil
}

// ListUsers returns the active members of an organization.
func (s *RegistrationService) ListUsers(organizationID uint64) ([]models.User, error) {
	users, err := s.userRepo.ListActiveByOrganization(organizationID)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

func (s *RegistrationService) findUser(id uint64) (*models.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

func (s *RegistrationService) applyChange(change repository.StatusChange, entry *models.AuditLog) error {
	if err := s.userRepo.UpdateStatus(change, entry); err != nil {
		if errors.Is(err, repository.ErrStatusConflict) {
			return ErrUserNotPending
		}
		return fmt.Errorf("failed to update user status: %w", err)
	}
	return nil
}

type statusSnapshot struct {
	Status         authz.Status `json:"status"`
	Role           authz.Role   `json:"role,omitempty"`
	OrganizationID *uint64      `json:"organization_id,omitempty"`
}
