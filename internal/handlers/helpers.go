package handlers

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/org-task-api/internal/authz"
	apierrors "github.com/yukikurage/org-task-api/internal/errors"
	"github.com/yukikurage/org-task-api/internal/middleware"
	"github.com/yukikurage/org-task-api/internal/services"
)

// requestMeta collects the request details recorded with audit entries.
func requestMeta(c *gin.Context) services.RequestMeta {
	return services.RequestMeta{
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
		RequestID: middleware.GetRequestID(c),
	}
}

// requireActor returns the authenticated actor or writes a 401.
func requireActor(c *gin.Context) (authz.Actor, bool) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		apierrors.Unauthorized(c, "Not authenticated")
		return authz.Actor{}, false
	}
	return *actor, true
}

func optionalUint64Query(c *gin.Context, key string) (*uint64, bool) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, true
	}
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid "+key)
		return nil, false
	}
	return &v, true
}

func optionalTimeQuery(c *gin.Context, key string) (*time.Time, bool) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, true
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		apierrors.BadRequest(c, "Invalid "+key+", expected RFC3339")
		return nil, false
	}
	return &t, true
}

// sortAscending parses sortOrder, defaulting to descending.
func sortAscending(c *gin.Context) (bool, bool) {
	switch strings.ToUpper(strings.TrimSpace(c.Query("sortOrder"))) {
	case "", "DESC":
		return false, true
	case "ASC":
		return true, true
	default:
		apierrors.BadRequest(c, "Invalid sortOrder, expected ASC or DESC")
		return false, false
	}
}

func parseUint64Param(c *gin.Context, key, message string) (uint64, bool) {
	v, err := strconv.ParseUint(c.Param(key), 10, 64)
	if err != nil || v == 0 {
		apierrors.BadRequest(c, message)
		return 0, false
	}
	return v, true
}
