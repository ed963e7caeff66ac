package main

import (
	"fmt"
	"log"
	"net/http"

	"hookwatch/internal/api"
	"hookwatch/internal/api/handlers"
	"hookwatch/internal/api/middleware"
	"hookwatch/internal/engine/dispatch"
	"hookwatch/internal/engine/github"
	"hookwatch/internal/pkg/logger"
	"hookwatch/internal/platform/audit"
	"hookwatch/internal/platform/auth"
	"hookwatch/internal/platform/config"
	"hookwatch/internal/platform/database"
	"hookwatch/internal/platform/repositories"
)

func main() {
	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.Init(cfg.Logging)

	db, err := database.New(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Repositories
	projectRepo := repositories.NewProjectRepository(db)
	triggerRepo := repositories.NewTriggerRepository(db)
	logRepo := repositories.NewDispatchLogRepository(db)

	// Services
	tokenSvc := auth.NewTokenService(cfg.JWT)
	auditLog := audit.NewLogger(db)
	githubClient := github.NewClient(cfg.GitHub)
	dispatcher := dispatch.NewDispatcher(triggerRepo, logRepo)

	// Handlers
	projectHandler := handlers.NewProjectHandler(projectRepo, triggerRepo, auditLog)
	triggerHandler := handlers.NewTriggerHandler(triggerRepo, projectRepo, auditLog)
	logHandler := handlers.NewLogHandler(logRepo, triggerRepo, projectRepo)
	registrationHandler := handlers.NewRegistrationHandler(projectRepo, githubClient, cfg.GitHub.PublicBaseURL)
	deliveryHandler := handlers.NewDeliveryHandler(projectRepo, dispatcher)
	healthHandler := handlers.NewHealthHandler(db)

	// Middleware
	authMiddleware := middleware.NewAuthMiddleware(tokenSvc)
	corsMiddleware := middleware.NewCORSMiddleware(cfg.CORS)

	router := api.NewRouter(&api.Dependencies{
		ProjectHandler:      projectHandler,
		TriggerHandler:      triggerHandler,
		LogHandler:          logHandler,
		RegistrationHandler: registrationHandler,
		DeliveryHandler:     deliveryHandler,
		HealthHandler:       healthHandler,
		AuthMiddleware:      authMiddleware,
		CORSMiddleware:      corsMiddleware,
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	log.Printf("Server starting on %s", addr)
	if err := server.ListenAndServe(); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
