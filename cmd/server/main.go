package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/CheickOuedraogo/tuteur-backend/internal/app"
	"github.com/CheickOuedraogo/tuteur-backend/internal/config"
	"github.com/CheickOuedraogo/tuteur-backend/internal/handlers"
	"github.com/CheickOuedraogo/tuteur-backend/internal/logger"
	"github.com/CheickOuedraogo/tuteur-backend/internal/scheduler"
	"github.com/CheickOuedraogo/tuteur-backend/internal/security"
	"github.com/CheickOuedraogo/tuteur-backend/internal/service"
)

// authRateLimit is the number of signup/login attempts allowed per client IP
// and rate window.
const authRateLimit = 10

func main() {
	// Load configuration
	cfg := config.Load()

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	ctx := context.Background()

	db, err := app.OpenDatabase(ctx, cfg, log)
	if err != nil {
		log.Fatal("Failed to initialize database", "error", err)
	}
	defer db.Close()

	gateway, err := app.NewGateway(ctx, cfg, log)
	if err != nil {
		log.Fatal("Failed to initialize AI gateway", "error", err)
	}
	narrator, err := app.NewNarrator(ctx, cfg, log)
	if err != nil {
		log.Fatal("Failed to initialize audio", "error", err)
	}
	defer narrator.Close()

	chatLimiter := app.NewLimiter(ctx, cfg, cfg.ChatRateLimit, log)
	defer chatLimiter.Close()
	authLimiter := security.NewRateLimiter(authRateLimit, cfg.ChatRateWindow)
	defer authLimiter.Close()

	tokens, err := security.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		log.Fatal("Invalid JWT configuration", "error", err)
	}
	if cfg.JWTSecret == "change-me-in-production" {
		log.Warn("JWT_SECRET is the development default")
	}

	emailService, err := service.NewEmailService(ctx, cfg.AWSRegion, cfg.SESFromEmail, cfg.SESFromName, cfg.AppBaseURL, log)
	if err != nil {
		log.Warn("Email service unavailable", "error", err)
		emailService = nil
	}

	// Initialize services
	policy := app.AIPolicy(cfg)
	guestService := service.NewGuestService(db, cfg.GuestTTL, log)
	var mailer service.WelcomeMailer
	if emailService.IsEnabled() {
		mailer = emailService
	}
	authService := service.NewAuthService(db, tokens, mailer, log)
	profileService := service.NewProfileService(db, log)
	progressionService := service.NewProgressionService(db, guestService)
	curriculumService := service.NewCurriculumService(db, guestService, policy)
	exerciseService := service.NewExerciseService(db, guestService, nil, log)
	lessonService := service.NewLessonService(db, guestService, gateway, narrator.Service, policy, log)
	tutorService := service.NewTutorService(guestService, gateway, chatLimiter, policy, log)
	generationService := service.NewGenerationService(db, guestService, gateway, policy, log)

	// Initialize handlers
	api := &handlers.API{
		Middleware:  handlers.NewMiddleware(authService, security.NewSessionSigner(cfg.JWTSecret), cfg.GuestTTL, cfg.SessionCookieSecure, log),
		Accounts:    handlers.NewAccountHandler(authService, profileService, progressionService, policy),
		Curriculum:  handlers.NewCurriculumHandler(curriculumService),
		Exercises:   handlers.NewExerciseHandler(exerciseService),
		Learning:    handlers.NewLearningHandler(lessonService, tutorService, generationService),
		Health:      handlers.NewHealthHandler(db),
		AuthLimiter: authLimiter,
	}

	// Setup routes
	mux := http.NewServeMux()
	api.Register(mux)
	if narrator.LocalRoot != "" {
		prefix := "/" + strings.Trim(cfg.MediaURL, "/") + "/"
		mux.Handle("GET "+prefix, http.StripPrefix(prefix, http.FileServer(http.Dir(narrator.LocalRoot))))
	}

	// Start background guest cleanup
	jobs := scheduler.New(guestService, scheduler.DefaultCleanupInterval, log)
	if err := jobs.Start(); err != nil {
		log.Fatal("Failed to start scheduler", "error", err)
	}
	defer jobs.Stop()

	addr := ":" + cfg.ServerPort
	server := &http.Server{
		Addr:         addr,
		Handler:      handlers.Logging(log, mux),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.AITimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info("Server starting", "addr", addr, "ai", gateway.Configured(), "audio_store", cfg.AudioStore)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server failed", "error", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Server shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Graceful shutdown failed", "error", err)
	}
}
