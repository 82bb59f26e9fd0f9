package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"mojotix/config"
	"mojotix/internal/adapters/auth"
	"mojotix/internal/adapters/credential"
	emailadapter "mojotix/internal/adapters/email"
	"mojotix/internal/adapters/messaging"
	"mojotix/internal/adapters/render"
	httpdelivery "mojotix/internal/delivery/http"
	"mojotix/internal/delivery/http/controllers"
	"mojotix/internal/delivery/http/middleware"
	"mojotix/internal/domain"
	"mojotix/internal/repository/postgres"
	"mojotix/internal/services"
)

const serviceTimeout = 10 * time.Second

// @title MojoTix API
// @version 1.0
// @description Event discovery and ticket booking API: events, bookings, QR ticket issuance and delivery, private-event invitations, and attendance reconciliation.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "err", err)
		os.Exit(1)
	}
	logger := config.NewLogger(cfg.Environment)
	slog.SetDefault(logger)

	db, err := sql.Open("postgres", cfg.DBUrl)
	if err != nil {
		logger.Error("could not open database", "err", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		logger.Error("could not reach database", "err", err)
		os.Exit(1)
	}

	// Repositories
	userRepo := postgres.NewUserRepository(db)
	eventRepo := postgres.NewEventRepository(db)
	bookingRepo := postgres.NewBookingRepository(db)
	ticketRepo := postgres.NewTicketRepository(db)
	invitationRepo := postgres.NewInvitationRepository(db)
	seatRepo := postgres.NewSeatRepository(db)

	// Adapters
	hasher := auth.NewBcryptHasher(12)
	tokenIssuer, tokenVerifier := auth.NewJWTCodec(cfg.JWTSecret)
	credentials := credential.NewGenerator()
	pdfRenderer := render.NewPDFRenderer()
	templates := emailadapter.NewTemplateRenderer()
	mailer, err := emailadapter.NewMailer(emailadapter.MailerConfig{
		Provider:    cfg.Email.Provider,
		FromAddress: cfg.Email.FromAddress,
		FromName:    cfg.Email.FromName,
		SES: emailadapter.SESConfig{
			Region:          cfg.Email.SESRegion,
			AccessKeyID:     cfg.Email.SESAccessKeyID,
			SecretAccessKey: cfg.Email.SESSecretKey,
		},
		Logger: logger,
	})
	if err != nil {
		logger.Error("could not create mailer", "err", err)
		os.Exit(1)
	}
	messenger, err := messaging.NewMessenger(messaging.MessengerConfig{
		Provider:   cfg.Messaging.Provider,
		AccountSID: cfg.Messaging.AccountSID,
		AuthToken:  cfg.Messaging.AuthToken,
		FromNumber: cfg.Messaging.FromNumber,
		Logger:     logger,
	})
	if err != nil {
		logger.Error("could not create messenger", "err", err)
		os.Exit(1)
	}

	// Services
	gate := services.NewAccessGate(invitationRepo)
	emailService := services.NewEmailService(mailer, templates)
	issuer := services.NewTicketIssuer(bookingRepo, ticketRepo, credentials, pdfRenderer, emailService, messenger, logger, services.IssuerConfig{
		MaxEmailAttempts: cfg.Email.MaxSendAttempts,
	})
	authService := services.NewAuthService(userRepo, hasher, tokenIssuer, cfg.TokenExpiry, serviceTimeout)
	eventService := services.NewEventService(eventRepo, seatRepo, gate, serviceTimeout)
	bookingService := services.NewBookingService(bookingRepo, eventRepo, seatRepo, issuer, gate, logger, serviceTimeout)
	invitationService := services.NewInvitationService(invitationRepo, eventRepo, userRepo, emailService, gate, serviceTimeout)
	reconciler := services.NewAttendanceReconciler(eventRepo, ticketRepo, cfg.AttendanceGrace, logger)

	// HTTP
	router := httpdelivery.NewRouter(httpdelivery.Controllers{
		Auth:       controllers.NewAuthController(logger, authService),
		Event:      controllers.NewEventController(logger, eventService),
		Booking:    controllers.NewBookingController(logger, bookingService),
		Invitation: controllers.NewInvitationController(logger, invitationService),
		Ticket:     controllers.NewTicketController(logger, pdfRenderer, credentials, emailService, messenger),
		Admin:      controllers.NewAdminController(logger, reconciler),
	}, tokenVerifier)

	handler := middleware.Logging(logger, middleware.CORS(cfg.AllowedOrigins, router))
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// The admin endpoint runs the same reconciler on demand; the ticker is the
	// scheduled path.
	go runReconcilerLoop(ctx, reconciler, cfg.ReconcileInterval, logger)

	go func() {
		logger.Info("server listening", "port", cfg.Port, "env", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "err", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "err", err)
	}
}

// runReconcilerLoop runs attendance reconciliation on a fixed interval until
// the context is cancelled. Each run is independently safe to repeat, so an
// overlap with the admin endpoint is harmless.
func runReconcilerLoop(ctx context.Context, reconciler domain.AttendanceReconciler, interval time.Duration, logger *slog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			result, err := reconciler.Run(ctx)
			if err != nil {
				logger.Error("attendance reconciliation run failed", "err", err)
				continue
			}
			if result.TotalTicketsUpdated > 0 || len(result.Results) > 0 {
				logger.Info("attendance reconciliation run complete",
					"tickets_updated", result.TotalTicketsUpdated,
					"events", len(result.Results),
				)
			}
		}
	}
}
