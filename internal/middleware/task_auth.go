package middleware

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/org-task-api/internal/constants"
	apierrors "github.com/yukikurage/org-task-api/internal/errors"
)

// RequireTaskID parses the :id parameter of task routes. Visibility and
// mutation checks run in the task service, against the locked row.
func RequireTaskID() gin.HandlerFunc {
	return func(c *gin.Context) {
		taskID, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil || taskID == 0 {
			apierrors.BadRequest(c, "Invalid task ID")
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyTaskID, taskID)
		c.Next()
	}
}

// GetTaskID retrieves the task ID stored by RequireTaskID.
func GetTaskID(c *gin.Context) (uint64, bool) {
	value, exists := c.Get(constants.ContextKeyTaskID)
	if !exists {
		return 0, false
	}
	id, ok := value.(uint64)
	return id, ok
}
