package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/yukikurage/org-task-api/internal/authz"
	"github.com/yukikurage/org-task-api/internal/dto"
	apierrors "github.com/yukikurage/org-task-api/internal/errors"
	"github.com/yukikurage/org-task-api/internal/middleware"
	"github.com/yukikurage/org-task-api/internal/services"
)

// AdminHandler serves registration decisions and the member listing.
type AdminHandler struct {
	registrationService *services.RegistrationService
	log                 *logrus.Logger
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(registrationService *services.RegistrationService, log *logrus.Logger) *AdminHandler {
	return &AdminHandler{
		registrationService: registrationService,
		log:                 log,
	}
}

// ListRegistrations returns the users awaiting approval.
func (h *AdminHandler) ListRegistrations(c *gin.Context) {
	users, err := h.registrationService.ListPending()
	if err != nil {
		h.respondAdminError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToPendingUserDTOs(users))
}

// ApproveRegistration activates a pending user.
func (h *AdminHandler) ApproveRegistration(c *gin.Context) {
	type ApproveRequest struct {
		OrganizationID uint64 `json:"organizationId" binding:"required"`
		Role           string `json:"role" binding:"required"`
	}

	actor, ok := requireActor(c)
	if !ok {
		return
	}
	userID, ok := parseUint64Param(c, "userId", "Invalid user ID")
	if !ok {
		return
	}

	var req ApproveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	user, err := h.registrationService.Approve(actor, services.ApproveInput{
		UserID:         userID,
		OrganizationID: req.OrganizationID,
		Role:           req.Role,
	}, requestMeta(c))
	if err != nil {
		h.respondAdminError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserDTO(*user))
}

// RejectRegistration closes a pending registration.
func (h *AdminHandler) RejectRegistration(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	userID, ok := parseUint64Param(c, "userId", "Invalid user ID")
	if !ok {
		return
	}

	user, err := h.registrationService.Reject(actor, userID, requestMeta(c))
	if err != nil {
		h.respondAdminError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserDTO(*user))
}

// ListUsers returns the active members of the requested organization. The
// route scope has already checked organizationId against the caller.
func (h *AdminHandler) ListUsers(c *gin.Context) {
	orgID, ok := optionalUint64Query(c, "organizationId")
	if !ok {
		return
	}
	if orgID == nil {
		actor, ok := requireActor(c)
		if !ok {
			return
		}
		if actor.OrganizationID == nil {
			apierrors.BadRequest(c, "organizationId is required")
			return
		}
		orgID = actor.OrganizationID
	}

	users, err := h.registrationService.ListUsers(*orgID)
	if err != nil {
		h.respondAdminError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserDTOs(users))
}

// ListOrganizations returns every organization.
func (h *AdminHandler) ListOrganizations(c *gin.Context) {
	orgs, err := h.registrationService.ListOrganizations()
	if err != nil {
		h.respondAdminError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToOrganizationDTOs(orgs))
}

// CreateOrganization adds an organization, optionally under a parent.
func (h *AdminHandler) CreateOrganization(c *gin.Context) {
	type CreateOrganizationRequest struct {
		Name        string  `json:"name" binding:"required,max=255"`
		Description string  `json:"description"`
		ParentID    *uint64 `json:"parentId"`
	}

	var req CreateOrganizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	org, err := h.registrationService.CreateOrganization(services.CreateOrganizationInput{
		Name:        req.Name,
		Description: req.Description,
		ParentID:    req.ParentID,
	})
	if err != nil {
		h.respondAdminError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToOrganizationDTO(*org))
}

func (h *AdminHandler) respondAdminError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrUserNotFound):
		apierrors.NotFound(c, "User not found")
	case errors.Is(err, services.ErrOrganizationNotFound):
		apierrors.NotFound(c, "Organization not found")
	case errors.Is(err, services.ErrParentOrganizationNotFound):
		apierrors.BadRequest(c, "Parent organization not found")
	case errors.Is(err, services.ErrUserNotPending):
		apierrors.Conflict(c, "User is not pending approval")
	case errors.Is(err, services.ErrInvalidRole):
		apierrors.BadRequest(c, "Invalid role, expected owner, admin or viewer")
	case errors.Is(err, services.ErrOrganizationNameRequired):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrOwnerGrantRequiresOwner):
		apierrors.ForbiddenWithCode(c, apierrors.ErrCodeInsufficientPermissions, "Only an owner can grant the owner role")
	case errors.Is(err, authz.ErrDenied):
		middleware.RespondDenial(c, h.log, err)
	default:
		h.log.WithError(err).Error("Admin request failed")
		apierrors.InternalError(c, "Internal server error")
	}
}
