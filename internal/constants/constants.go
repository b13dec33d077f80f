package constants

const (
	// ContextKeyUserID is the session and gin context key holding the user ID.
	ContextKeyUserID = "user_id"
	// ContextKeyActor is the gin context key holding the resolved authz.Actor.
	ContextKeyActor = "actor"
	// ContextKeyRequestID is the gin context key holding the request ID.
	ContextKeyRequestID = "request_id"
	// ContextKeyTaskID is the gin context key holding the parsed :id of a task route.
	ContextKeyTaskID = "task_id"

	// HeaderRequestID is echoed back on every response.
	HeaderRequestID = "X-Request-ID"

	SessionCookieName = "task_session"

	MinPasswordLength = 6

	MinPageSize          = 1
	DefaultPageSize      = 10
	DefaultAuditPageSize = 20
	MaxPageSize          = 100

	MinTaskPriority = 0
	MaxTaskPriority = 10

	MaxAIGeneratedTasks = 20
)
