package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"community_whatsapp_bot/internal/api"
	"community_whatsapp_bot/internal/api/handlers"
	"community_whatsapp_bot/internal/app"
	"community_whatsapp_bot/internal/infra/config"
	idb "community_whatsapp_bot/internal/infra/database"
	"community_whatsapp_bot/internal/infra/logger"
	"community_whatsapp_bot/internal/infra/scheduler"
	iwa "community_whatsapp_bot/internal/infra/whatsapp"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Get().Fatalf("FATAL: Could not load application configuration: %v", err)
	}

	logger.Init(cfg)
	log := logger.Get().WithField("component", "main")
	log.Infof("Configuration loaded. LogLevel: %s, Environment: %s", cfg.LogLevel, cfg.Environment)

	// Initialize Database Connection
	db, err := idb.NewPostgresConnection(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("FATAL: Could not connect to database: %v", err)
	}
	defer db.Close()
	log.Info("Database connection established successfully.")

	if err := idb.RunMigrations(db, cfg.MigrationsPath); err != nil {
		log.Fatalf("FATAL: Could not run database migrations: %v", err)
	}
	log.Info("Database migrations applied.")

	// Initialize Repositories
	userRepo := idb.NewPostgresUserRepository(db)
	faqRepo := idb.NewPostgresFAQRepository(db)
	courseRepo := idb.NewPostgresCourseRepository(db)
	contentRepo := idb.NewPostgresContentRepository(db)
	messageRepo := idb.NewPostgresMessageRepository(db)
	analyticsRepo := idb.NewPostgresAnalyticsRepository(db)

	// Initialize WhatsApp gateway
	waClient := iwa.NewPlaceholderClient(userRepo, messageRepo, logger.Get().WithField("component", "whatsapp"))
	waClient.Initialize()

	// Initialize Services
	appLogger := logger.Get().WithField("layer", "app")
	pacer := app.NewFixedDelayPacer(cfg.PacingDelay)

	faqService := app.NewFAQService(faqRepo, messageRepo, appLogger)
	if err := faqService.Reload(context.Background()); err != nil {
		log.Fatalf("FATAL: Could not load FAQ knowledge base: %v", err)
	}
	log.Info("FAQ knowledge base loaded.")

	dispatchService := app.NewDispatchService(userRepo, contentRepo, waClient, pacer, appLogger)
	reminderService := app.NewReminderService(courseRepo, userRepo, messageRepo, waClient, pacer, cfg.ReminderWindow, appLogger)
	analyticsService := app.NewAnalyticsService(analyticsRepo, messageRepo, cfg.MessageRetention, appLogger)
	inboundService := app.NewInboundService(
		userRepo,
		courseRepo,
		messageRepo,
		faqService,
		waClient,
		app.SupportContacts{Email: cfg.AcademyEmail, Phone: cfg.AcademyPhone},
		appLogger,
	)

	// Initialize scheduler
	cronScheduler := scheduler.New(dispatchService, reminderService, analyticsService, cfg, logger.Get().WithField("layer", "infra"))
	if err := cronScheduler.Start(); err != nil {
		log.Fatalf("FATAL: Could not start scheduler: %v", err)
	}

	// Initialize HTTP API
	httpLogger := logger.Get().WithField("component", "http")
	router := api.NewRouter(api.Handlers{
		FAQ:       handlers.NewFAQHandler(faqService),
		Users:     handlers.NewUsersHandler(userRepo),
		Courses:   handlers.NewCoursesHandler(courseRepo),
		Content:   handlers.NewContentHandler(dispatchService, contentRepo),
		Messages:  handlers.NewMessagesHandler(dispatchService),
		Dashboard: handlers.NewDashboardHandler(analyticsService).Get,
		Webhook:   handlers.NewWebhookHandler(cfg.WebhookVerifyToken, inboundService, messageRepo, httpLogger),
		Health: func(w http.ResponseWriter, r *http.Request) {
			api.JSON(w, http.StatusOK, map[string]any{
				"status":         "ok",
				"whatsapp_ready": waClient.Ready(),
			})
		},
	}, httpLogger)

	server := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		log.Infof("HTTP server listening on :%s", cfg.HTTPPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("FATAL: HTTP server failed: %v", err)
		}
	}()

	log.Info("Application setup complete. Scheduler and HTTP server are running.")

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down application...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorf("HTTP server shutdown error: %v", err)
	}
	cronScheduler.Stop()

	log.Info("Application shut down gracefully.")
}
