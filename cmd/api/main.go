// @title Eventhub API
// @version 1.0
// @description Event publishing and capacity-limited registration.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the JWT.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"eventhub/config"
	_ "eventhub/docs"
	"eventhub/internal/adapters/auth"
	"eventhub/internal/adapters/email"
	deliveryhttp "eventhub/internal/delivery/http"
	"eventhub/internal/delivery/http/controllers"
	"eventhub/internal/delivery/http/middleware"
	"eventhub/internal/domain"
	"eventhub/internal/metrics"
	"eventhub/internal/repository/memory"
	"eventhub/internal/repository/postgres"
	"eventhub/internal/services"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logger := config.NewLogger()
	if err := run(logger); err != nil {
		logger.Error("server exited", "err", err)
		os.Exit(1)
	}
}

type repositories struct {
	events        domain.EventRepository
	registrations domain.EventRegistrationRepository
	users         domain.UserRepository
	health        deliveryhttp.HealthCheck
	close         func() error
}

func openRepositories(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*repositories, error) {
	if cfg.Storage == "memory" {
		logger.Warn("using in-memory storage, data is lost on restart")
		store := memory.NewStore()
		return &repositories{
			events:        store.Events(),
			registrations: store.Registrations(),
			users:         store.Users(),
			close:         func() error { return nil },
		}, nil
	}

	db, err := postgres.Open(ctx, cfg.DBUrl, logger)
	if err != nil {
		return nil, err
	}
	if err := postgres.Migrate(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return &repositories{
		events:        postgres.NewEventRepository(db),
		registrations: postgres.NewEventRegistrationRepository(db),
		users:         postgres.NewUserRepository(db),
		health:        db.PingContext,
		close:         db.Close,
	}, nil
}

func run(logger *slog.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repos, err := openRepositories(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer repos.close()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	mailer, err := email.NewMailer(email.MailerConfig{
		Provider:    cfg.Email.Provider,
		FromAddress: cfg.Email.FromAddress,
		FromName:    cfg.Email.FromName,
		SES: email.SESConfig{
			Region:             cfg.Email.AWSRegion,
			AccessKeyID:        cfg.Email.AWSAccessKeyID,
			SecretAccessKey:    cfg.Email.AWSSecretAccessKey,
			InsecureSkipVerify: cfg.Email.SESInsecureSkipVerify,
		},
	}, logger)
	if err != nil {
		return fmt.Errorf("create mailer: %w", err)
	}
	emailService := services.NewEmailService(mailer, email.NewTemplateRenderer(), logger)
	notifier := services.NewEmailNotifier(repos.users, emailService)
	dispatcher := services.NewNotificationDispatcher(notifier, cfg.NotifyMaxInflight, cfg.NotifyTimeout, logger, m)

	jwt := auth.NewJWT(cfg.JWTSecret)
	gate := services.NewAuthGate()
	eventService := services.NewEventService(repos.events, repos.registrations, gate, cfg.RequestTimeout)
	registrationService := services.NewRegistrationService(repos.events, repos.registrations, gate, dispatcher, m, cfg.AdmissionTimeout)
	authService := services.NewAuthService(repos.users, auth.NewBcryptHasher(auth.DefaultBcryptCost), jwt, cfg.JWTExpiry)

	router := deliveryhttp.NewRouter(deliveryhttp.RouterDeps{
		Logger:        logger,
		Verifier:      jwt,
		Events:        controllers.NewEventController(logger, eventService),
		Registrations: controllers.NewRegistrationController(logger, registrationService),
		Auth:          controllers.NewAuthController(logger, authService),
		Metrics:       promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}),
		Health:        repos.health,
	})
	handler := middleware.LoggingMiddleware(logger, middleware.CORS(cfg.CORSAllowedOrigins, router))

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       cfg.RequestTimeout,
		WriteTimeout:      cfg.RequestTimeout + cfg.AdmissionTimeout,
		IdleTimeout:       60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("server listening", "addr", srv.Addr, "env", cfg.Environment, "storage", cfg.Storage)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown server: %w", err)
		}
		if err := dispatcher.Shutdown(shutdownCtx); err != nil {
			return err
		}
		logger.Info("server stopped")
		return nil
	})
	return g.Wait()
}
