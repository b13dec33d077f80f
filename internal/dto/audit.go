package dto

import (
	"time"

	"github.com/yukikurage/org-task-api/internal/models"
	"github.com/yukikurage/org-task-api/internal/utils"
)

// AuditLogDTO represents an audit entry in API responses
type AuditLogDTO struct {
	ID         uint64          `json:"id"`
	UserID     uint64          `json:"user_id"`
	Action     string          `json:"action"`
	Resource   string          `json:"resource"`
	ResourceID string          `json:"resource_id"`
	OldValue   models.JSON     `json:"old_value"`
	NewValue   models.JSON     `json:"new_value"`
	IPAddress  string          `json:"ip_address"`
	UserAgent  string          `json:"user_agent"`
	RequestID  string          `json:"request_id"`
	CreatedAt  time.Time       `json:"created_at"`
	User       *UserSummaryDTO `json:"user,omitempty"`
}

// AuditListResponse represents a paginated list of audit entries
type AuditListResponse struct {
	Data []AuditLogDTO        `json:"data"`
	Meta utils.PaginationMeta `json:"meta"`
}

// ToAuditListResponse converts a page of audit entries
func ToAuditListResponse(entries []models.AuditLog, params utils.PaginationParams, total int64) AuditListResponse {
	data := make([]AuditLogDTO, len(entries))
	for i, e := range entries {
		data[i] = AuditLogDTO{
			ID:         e.ID,
			UserID:     e.UserID,
			Action:     e.Action,
			Resource:   e.Resource,
			ResourceID: e.ResourceID,
			OldValue:   e.OldValue,
			NewValue:   e.NewValue,
			IPAddress:  e.IPAddress,
			UserAgent:  e.UserAgent,
			RequestID:  e.RequestID,
			CreatedAt:  e.CreatedAt,
			User:       ToUserSummaryDTO(e.User),
		}
	}
	return AuditListResponse{
		Data: data,
		Meta: params.Meta(total),
	}
}
