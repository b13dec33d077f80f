package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/yukikurage/org-task-api/internal/authz"
	apierrors "github.com/yukikurage/org-task-api/internal/errors"
	"github.com/yukikurage/org-task-api/internal/metrics"
)

const (
	messagePendingApproval = "Your account is pending approval"
	messageRejected        = "Your account registration was rejected"
)

// Authorize gates a route with op. For scoped operations the target
// organization is read from the path, then the JSON body, then the query.
func Authorize(op authz.Operation, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, _ := GetActor(c)

		var target *uint64
		if scope, ok := op.Scope(); ok {
			var err error
			target, err = targetOrganization(c, scope)
			if err != nil {
				apierrors.BadRequest(c, fmt.Sprintf("Invalid %s", scope.FieldName()))
				c.Abort()
				return
			}
		}

		err := authz.AuthorizeInScope(actor, op, target)
		metrics.ObserveDecision(op.Name(), err)
		if err != nil {
			RespondDenial(c, log, err)
			c.Abort()
			return
		}
		c.Next()
	}
}

// RespondDenial logs the denial reason and writes the client response.
// Only account-state reasons are disclosed to the caller.
func RespondDenial(c *gin.Context, log *logrus.Logger, err error) {
	var denial *authz.Denial
	if !errors.As(err, &denial) {
		log.WithError(err).Error("Authorization failed")
		apierrors.InternalError(c, "")
		return
	}

	entry := log.WithFields(logrus.Fields{
		"operation": denial.Operation,
		"reason":    denial.Reason,
		"path":      c.FullPath(),
	})
	if userID, ok := GetUserID(c); ok {
		entry = entry.WithField("user_id", userID)
	}
	entry.Info("Authorization denied")

	switch {
	case denial.Reason == authz.ReasonNotAuthenticated:
		apierrors.Unauthorized(c, "")
	case denial.Reason == authz.ReasonAccountPendingApproval:
		apierrors.ForbiddenWithCode(c, apierrors.ErrCodeAccountPendingApproval, messagePendingApproval)
	case denial.Reason == authz.ReasonAccountRejected:
		apierrors.ForbiddenWithCode(c, apierrors.ErrCodeAccountRejected, messageRejected)
	default:
		apierrors.Forbidden(c, "")
	}
}

func targetOrganization(c *gin.Context, scope authz.OrgScope) (*uint64, error) {
	body, err := jsonBodyFields(c)
	if err != nil {
		return nil, err
	}
	return authz.TargetOrgFrom(scope,
		c.Param,
		func(field string) string { return body[field] },
		c.Query,
	)
}

// jsonBodyFields reads the top-level scalar fields of a JSON body and puts
// the body back for the handler.
func jsonBodyFields(c *gin.Context) (map[string]string, error) {
	if c.Request.Body == nil || !strings.HasPrefix(c.ContentType(), "application/json") {
		return nil, nil
	}

	raw, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return nil, err
	}
	c.Request.Body = io.NopCloser(bytes.NewReader(raw))
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, nil
	}

	var values map[string]interface{}
	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()
	if err := decoder.Decode(&values); err != nil {
		// Malformed bodies are left for the handler's binding to reject.
		return nil, nil
	}

	fields := make(map[string]string, len(values))
	for key, value := range values {
		switch v := value.(type) {
		case json.Number:
			fields[key] = v.String()
		case string:
			fields[key] = v
		}
	}
	return fields, nil
}
