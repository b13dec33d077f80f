package main

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/org-task-api/internal/config"
	"github.com/yukikurage/org-task-api/internal/database"
	"github.com/yukikurage/org-task-api/internal/logging"
	"github.com/yukikurage/org-task-api/internal/server"
)

func main() {
	// Load configuration
	cfg := config.Load()
	log := logging.New(cfg.LogLevel, cfg.LogFormat)

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	// Connect to database
	db, err := database.Connect(cfg, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to database")
	}

	// Run migrations
	if err := database.Migrate(db, log); err != nil {
		log.WithError(err).Fatal("Failed to run migrations")
	}

	// Setup session store with Redis
	redisAddr := cfg.RedisHost + ":" + cfg.RedisPort
	store, err := redisStore.NewStore(
		10,        // Redis pool size
		"tcp",     // network type
		redisAddr, // Redis address from config
		"",        // username (empty for default user)
		"",        // password (empty = no password)
		[]byte(cfg.SessionSecret), // authentication key
	)
	if err != nil {
		log.WithError(err).Fatal("Failed to create Redis store")
	}
	isProduction := cfg.GinMode == gin.ReleaseMode
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7, // 7 days
		HttpOnly: true,
		Secure:   isProduction,
		SameSite: http.SameSiteLaxMode,
	})

	svc, err := server.NewServices(cfg, db, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to initialize services")
	}

	r := server.NewRouter(cfg, svc, store, log)

	// Start server
	addr := ":" + cfg.Port
	log.WithField("addr", addr).Info("Server starting")
	if err := r.Run(addr); err != nil {
		log.WithError(err).Fatal("Failed to start server")
	}
}
