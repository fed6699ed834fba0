package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"iftarmatch/config"
	"iftarmatch/internal/adapters/auth"
	"iftarmatch/internal/adapters/email"
	"iftarmatch/internal/adapters/oauth"
	"iftarmatch/internal/database"
	httpdelivery "iftarmatch/internal/delivery/http"
	"iftarmatch/internal/delivery/http/controllers"
	"iftarmatch/internal/delivery/http/middleware"
	"iftarmatch/internal/repository/postgres"
	"iftarmatch/internal/services"
)

const serviceTimeout = 5 * time.Second

// @title IftarMatch API
// @version 1.0
// @description Booking API for scheduling iftar invitations between hosts and guest groups.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	logger := config.NewLogger()

	logger.Info("connecting to postgres")
	db, err := database.NewPostgresDB(cfg.DBUrl)
	if err != nil {
		return fmt.Errorf("connecting to postgres: %w", err)
	}
	defer db.Close()

	logger.Info("running migrations", "path", cfg.MigrationsPath)
	migrator, err := database.NewMigrator(cfg.DBUrl, cfg.MigrationsPath)
	if err != nil {
		return fmt.Errorf("creating migrator: %w", err)
	}
	if err := migrator.Up(); err != nil {
		_ = migrator.Close()
		return fmt.Errorf("running migrations: %w", err)
	}
	_ = migrator.Close()

	// Repositories
	hostRepo := postgres.NewHostRepository(db)
	groupRepo := postgres.NewGuestGroupRepository(db)
	invitationRepo := postgres.NewInvitationRepository(db)
	assignmentRepo := postgres.NewGroupAssignmentRepository(db)
	unavailabilityRepo := postgres.NewGroupUnavailabilityRepository(db)
	loginCodeRepo := postgres.NewLoginCodeRepository(db)

	// Adapters
	jwtManager := auth.NewJWTManager(cfg.JWTSecret)
	codeHasher := auth.NewBcryptCodeHasher()
	googleProvider := oauth.NewGoogleProvider(oauth.GoogleConfig{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		RedirectURL:  cfg.GoogleRedirectURL,
	})
	mailer, err := email.NewMailer(email.MailerConfig{
		Provider:    cfg.EmailProvider,
		FromAddress: cfg.EmailFrom,
		FromName:    cfg.EmailFromName,
		SES: email.SESConfig{
			Region:             cfg.SESRegion,
			AccessKeyID:        cfg.SESAccessKeyID,
			SecretAccessKey:    cfg.SESSecretKey,
			InsecureSkipVerify: cfg.SESInsecureTLS,
		},
	})
	if err != nil {
		return fmt.Errorf("creating mailer: %w", err)
	}
	renderer := email.NewTemplateRenderer()

	// Services
	emailService := services.NewEmailService(mailer, renderer)
	resolver := services.NewIdentityResolver(cfg.AdminEmails, assignmentRepo, hostRepo)
	slots := services.NewSlotRegistry(invitationRepo, unavailabilityRepo, groupRepo, serviceTimeout)
	invitationService := services.NewInvitationService(
		invitationRepo, hostRepo, groupRepo, unavailabilityRepo,
		resolver, slots, emailService, cfg.AdminEmails, logger, serviceTimeout,
	)
	directoryService := services.NewDirectoryService(
		groupRepo, hostRepo, assignmentRepo, resolver, cfg.AdminEmails, serviceTimeout,
	)
	authService := services.NewAuthService(
		hostRepo, loginCodeRepo, resolver, googleProvider,
		jwtManager, codeHasher, emailService, cfg.JWTExpiry, logger, serviceTimeout,
	)

	// Controllers and router
	authController := controllers.NewAuthController(logger, authService)
	invitationController := controllers.NewInvitationController(logger, invitationService, slots)
	directoryController := controllers.NewDirectoryController(logger, directoryService)

	mux := httpdelivery.NewRouter(
		authController,
		invitationController,
		directoryController,
		middleware.RequireAuth(jwtManager, logger),
	)

	var handler http.Handler = mux
	handler = middleware.CORS(cfg.CORSAllowedOrigins, handler)
	handler = middleware.LoggingMiddleware(logger, handler)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	done := make(chan struct{})
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		logger.Info("shutting down")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		server.SetKeepAlivesEnabled(false)
		if err := server.Shutdown(ctx); err != nil {
			logger.Error("graceful shutdown failed", "error", err)
		}
		close(done)
	}()

	logger.Info("server listening", "addr", server.Addr, "env", cfg.Environment)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("listen: %w", err)
	}

	<-done
	logger.Info("server stopped")
	return nil
}
