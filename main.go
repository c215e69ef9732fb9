package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/SAP-F-2025/course-marketplace/internal/authz"
	"github.com/SAP-F-2025/course-marketplace/internal/cache"
	"github.com/SAP-F-2025/course-marketplace/internal/config"
	"github.com/SAP-F-2025/course-marketplace/internal/events"
	"github.com/SAP-F-2025/course-marketplace/internal/handlers"
	"github.com/SAP-F-2025/course-marketplace/internal/identity"
	"github.com/SAP-F-2025/course-marketplace/internal/observability"
	"github.com/SAP-F-2025/course-marketplace/internal/payment"
	"github.com/SAP-F-2025/course-marketplace/internal/repositories/postgres"
	"github.com/SAP-F-2025/course-marketplace/internal/services"
	"github.com/SAP-F-2025/course-marketplace/internal/utils"
	"github.com/SAP-F-2025/course-marketplace/internal/validator"
	"github.com/SAP-F-2025/course-marketplace/pkg"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	slogLogger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))
	logger := utils.NewSlogLogger(slogLogger)

	// Initialize database
	db, err := pkg.InitDatabase(cfg, slogLogger)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	if cfg.Database.AutoMigrate {
		if err := postgres.Migrate(db); err != nil {
			log.Fatalf("Failed to migrate database: %v", err)
		}
	}

	// Initialize Redis (if configured)
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = pkg.NewRedisClient(cfg)
		if err != nil {
			logger.Warn("Redis unavailable, running without cache", "error", err)
			redisClient = nil
		}
	}

	// Initialize repositories
	repoManager := postgres.NewRepositoryManager(postgres.RepositoryConfig{
		DB:          db,
		RedisClient: redisClient,
	})
	if err := repoManager.Initialize(); err != nil {
		log.Fatalf("Failed to initialize repositories: %v", err)
	}
	repo := repoManager.GetRepository()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	group, groupCtx := errgroup.WithContext(ctx)

	// Domain events go to Kafka when brokers are configured; otherwise they
	// stay in process and are written to the audit log.
	publisher, channel, err := events.NewPublisher(events.Config{
		Brokers: cfg.Kafka.Brokers,
		Topic:   cfg.Kafka.Topic,
	}, slogLogger)
	if err != nil {
		log.Fatalf("Failed to initialize event publisher: %v", err)
	}
	if channel != nil {
		group.Go(func() error {
			return events.AuditLog(groupCtx, channel, publisher.Topic(), slogLogger)
		})
	}

	var gateway payment.Gateway
	if cfg.Payment.PaystackSecretKey != "" {
		gateway = payment.NewPaystackGateway(payment.PaystackConfig{
			SecretKey: cfg.Payment.PaystackSecretKey,
			BaseURL:   cfg.Payment.PaystackBaseURL,
		})
	} else {
		logger.Warn("PAYSTACK_SECRET_KEY not set, paid enrollments are disabled")
	}

	verifier, exchanger := buildIdentity(cfg)

	var (
		registry    *prometheus.Registry
		httpMetrics *observability.Metrics
		authzOpts   = []authz.GuardOption{authz.WithLogger(slogLogger)}
	)
	if cfg.MetricsEnabled {
		registry = observability.NewRegistry()
		httpMetrics = observability.NewMetrics(registry)
		authzOpts = append(authzOpts, authz.WithMetrics(authz.NewMetrics(registry)))
	}

	guard := authz.NewGuard(verifier, authz.NewPrincipalResolver(authz.AccountsFrom(repo.Account())), authzOpts...)

	// Initialize services
	serviceManager := services.NewServiceManager(db, repo, slogLogger, validator.New(), services.ServiceManagerConfig{
		Cache:       cache.NewCacheManager(redisClient),
		Publisher:   publisher,
		Gateway:     gateway,
		CallbackURL: cfg.Payment.CallbackURL,
	})
	if err := serviceManager.Initialize(ctx); err != nil {
		log.Fatalf("Failed to initialize services: %v", err)
	}

	// Setup Gin router
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	handlers.SetupMiddleware(router, logger, handlers.MiddlewareConfig{
		AllowedOrigin: cfg.FrontendURL,
		Metrics:       httpMetrics,
	})
	handlers.NewHandlerManager(serviceManager, guard, repo, logger, handlers.RouterConfig{
		Verifier:  verifier,
		Exchanger: exchanger,
		Metrics:   httpMetrics,
	}).SetupRoutes(router)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Port),
		Handler: router,
	}

	group.Go(func() error {
		logger.Info("Starting server", "port", cfg.Port, "environment", cfg.Environment, "auth_mode", cfg.AuthMode)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})

	group.Go(func() error {
		<-groupCtx.Done()
		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server forced to shutdown", "error", err)
		}
		if err := serviceManager.Shutdown(shutdownCtx); err != nil {
			logger.Error("Failed to shutdown services", "error", err)
		}
		if err := repoManager.Shutdown(shutdownCtx); err != nil {
			logger.Error("Failed to close repositories", "error", err)
		}
		return nil
	})

	if err := group.Wait(); err != nil {
		logger.Error("Server exited with error", "error", err)
		os.Exit(1)
	}
	logger.Info("Server exited")
}

// buildIdentity returns the token verifier for the configured auth mode and,
// for Casdoor, the code exchanger used by the login callback.
func buildIdentity(cfg *config.Config) (identity.Verifier, identity.Exchanger) {
	if cfg.AuthMode == config.AuthModeStatic {
		verifier := identity.NewStaticVerifier()
		for _, token := range cfg.StaticTokens {
			verifier.Add(token.Token, identity.Subject{ID: token.Subject, Email: token.Email})
		}
		return verifier, nil
	}

	provider := identity.NewCasdoorProvider(cfg.Casdoor)
	return provider, provider
}
