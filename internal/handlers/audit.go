package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/yukikurage/org-task-api/internal/authz"
	"github.com/yukikurage/org-task-api/internal/constants"
	"github.com/yukikurage/org-task-api/internal/dto"
	apierrors "github.com/yukikurage/org-task-api/internal/errors"
	"github.com/yukikurage/org-task-api/internal/middleware"
	"github.com/yukikurage/org-task-api/internal/services"
	"github.com/yukikurage/org-task-api/internal/utils"
)

// AuditHandler serves the audit log of the caller's organization.
type AuditHandler struct {
	auditService *services.AuditService
	log          *logrus.Logger
}

// NewAuditHandler creates a new AuditHandler.
func NewAuditHandler(auditService *services.AuditService, log *logrus.Logger) *AuditHandler {
	return &AuditHandler{
		auditService: auditService,
		log:          log,
	}
}

// ListAuditLogs returns a filtered page of audit entries.
func (h *AuditHandler) ListAuditLogs(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	input := services.AuditListInput{
		Action:     strings.TrimSpace(c.Query("action")),
		Resource:   strings.TrimSpace(c.Query("resource")),
		ResourceID: strings.TrimSpace(c.Query("resourceId")),
	}
	if input.UserID, ok = optionalUint64Query(c, "userId"); !ok {
		return
	}
	if input.StartDate, ok = optionalTimeQuery(c, "startDate"); !ok {
		return
	}
	if input.EndDate, ok = optionalTimeQuery(c, "endDate"); !ok {
		return
	}
	if input.SortAscending, ok = sortAscending(c); !ok {
		return
	}

	params := utils.GetPaginationParams(c, constants.DefaultAuditPageSize)
	input.Page = params.Page
	input.PageSize = params.Limit

	entries, total, err := h.auditService.List(actor, input)
	if err != nil {
		h.respondAuditError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToAuditListResponse(entries, params, total))
}

// ListActions returns the distinct action names in the caller's audit log.
func (h *AuditHandler) ListActions(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	actions, err := h.auditService.Actions(actor)
	if err != nil {
		h.respondAuditError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"actions": actions})
}

// ListResources returns the distinct resource names in the caller's audit log.
func (h *AuditHandler) ListResources(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	resources, err := h.auditService.Resources(actor)
	if err != nil {
		h.respondAuditError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"resources": resources})
}

func (h *AuditHandler) respondAuditError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidDateRange):
		apierrors.BadRequest(c, "startDate must not be after endDate")
	case errors.Is(err, authz.ErrDenied):
		middleware.RespondDenial(c, h.log, err)
	default:
		h.log.WithError(err).Error("Audit log request failed")
		apierrors.InternalError(c, "Internal server error")
	}
}
