package server

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/yukikurage/org-task-api/internal/config"
	"github.com/yukikurage/org-task-api/internal/constants"
	"github.com/yukikurage/org-task-api/internal/handlers"
	"github.com/yukikurage/org-task-api/internal/metrics"
	"github.com/yukikurage/org-task-api/internal/middleware"
	"github.com/yukikurage/org-task-api/internal/repository"
	"github.com/yukikurage/org-task-api/internal/services"
	"github.com/yukikurage/org-task-api/internal/token"
	"gorm.io/gorm"
)

const orgCacheSize = 1024

// Services bundles the application services behind the HTTP layer.
type Services struct {
	Auth         *services.AuthService
	Registration *services.RegistrationService
	Task         *services.TaskService
	Audit        *services.AuditService
}

// NewServices wires repositories and services over db. The AI service is
// only created when an API key is configured.
func NewServices(cfg *config.Config, db *gorm.DB, log *logrus.Logger) (*Services, error) {
	tokens, err := token.NewManager(cfg.JWTSecret, cfg.JWTRefreshSecret, cfg.JWTAccessTTL, cfg.JWTRefreshTTL)
	if err != nil {
		return nil, err
	}

	userRepo := repository.NewUserRepository(db)
	orgRepo := repository.NewOrganizationRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	auditRepo := repository.NewAuditRepository(db)

	directory := services.NewOrganizationDirectory(orgRepo, orgCacheSize, cfg.OrgCacheTTL)

	var aiService *services.AIService
	if cfg.OpenAIAPIKey != "" {
		aiService = services.NewAIService(cfg.OpenAIAPIKey)
	}

	return &Services{
		Auth:         services.NewAuthService(userRepo, tokens, directory),
		Registration: services.NewRegistrationService(userRepo, orgRepo, directory, log),
		Task:         services.NewTaskService(taskRepo, userRepo, aiService, log),
		Audit:        services.NewAuditService(auditRepo),
	}, nil
}

// NewRouter builds the gin engine with the full route table.
func NewRouter(cfg *config.Config, svc *Services, store sessions.Store, log *logrus.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.Metrics())
	r.Use(sessions.Sessions(constants.SessionCookieName, store))

	authHandler := handlers.NewAuthHandler(svc.Auth, log)
	adminHandler := handlers.NewAdminHandler(svc.Registration, log)
	taskHandler := handlers.NewTaskHandler(svc.Task, log)
	auditHandler := handlers.NewAuditHandler(svc.Audit, log)

	requireAuth := middleware.RequireAuth(svc.Auth, log)
	limiter := middleware.NewIPRateLimiter(cfg.LoginRatePerMinute)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Task API is running",
		})
	})
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	api := r.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", middleware.RateLimit(limiter), authHandler.Register)
			auth.POST("/login", middleware.RateLimit(limiter), authHandler.Login)
			auth.POST("/refresh", authHandler.Refresh)
			auth.POST("/logout", authHandler.Logout)
			auth.GET("/me", requireAuth, authHandler.GetCurrentUser)
		}

		admin := api.Group("/admin")
		admin.Use(requireAuth, middleware.Authorize(opAdminConsole, log))
		{
			admin.GET("/registrations", middleware.Authorize(opRegistrationsList, log), adminHandler.ListRegistrations)
			admin.POST("/registrations/:userId/approve", middleware.Authorize(opRegistrationsDecide, log), adminHandler.ApproveRegistration)
			admin.POST("/registrations/:userId/reject", middleware.Authorize(opRegistrationsDecide, log), adminHandler.RejectRegistration)
			admin.GET("/organizations", middleware.Authorize(opOrganizationsList, log), adminHandler.ListOrganizations)
			admin.POST("/organizations", middleware.Authorize(opOrganizationsCreate, log), adminHandler.CreateOrganization)
			admin.GET("/users", middleware.Authorize(opUsersList, log), adminHandler.ListUsers)
		}

		tasks := api.Group("/tasks")
		tasks.Use(requireAuth)
		{
			tasks.GET("", middleware.Authorize(opTasksList, log), taskHandler.ListTasks)
			tasks.POST("", middleware.Authorize(opTasksCreate, log), taskHandler.CreateTask)
			tasks.POST("/generate", middleware.Authorize(opTasksGenerate, log), taskHandler.GenerateTasks)
			tasks.GET("/:id", middleware.Authorize(opTasksView, log), middleware.RequireTaskID(), taskHandler.GetTask)
			tasks.PUT("/:id", middleware.Authorize(opTasksUpdate, log), middleware.RequireTaskID(), taskHandler.UpdateTask)
			tasks.DELETE("/:id", middleware.Authorize(opTasksDelete, log), middleware.RequireTaskID(), taskHandler.DeleteTask)
			tasks.PUT("/:id/reorder", middleware.Authorize(opTasksUpdate, log), middleware.RequireTaskID(), taskHandler.ReorderTask)
		}

		audit := api.Group("/audit-log")
		audit.Use(requireAuth, middleware.Authorize(opAuditView, log))
		{
			audit.GET("", auditHandler.ListAuditLogs)
			audit.GET("/actions", auditHandler.ListActions)
			audit.GET("/resources", auditHandler.ListResources)
		}
	}

	return r
}
