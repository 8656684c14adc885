package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/menmadev/portfolio-api/config"
	"github.com/menmadev/portfolio-api/internal/cache"
	"github.com/menmadev/portfolio-api/internal/handlers"
	"github.com/menmadev/portfolio-api/internal/middleware"
	"github.com/menmadev/portfolio-api/internal/services"
	"github.com/menmadev/portfolio-api/pkg/archive"
	"github.com/menmadev/portfolio-api/pkg/challenge"
	"github.com/menmadev/portfolio-api/pkg/httpclient"
	"github.com/menmadev/portfolio-api/pkg/logger"
	"github.com/menmadev/portfolio-api/pkg/mailer"
	"github.com/menmadev/portfolio-api/pkg/metrics"
	"github.com/menmadev/portfolio-api/pkg/profiling"
	"github.com/menmadev/portfolio-api/pkg/retry"
	"github.com/menmadev/portfolio-api/pkg/secrets"
	"github.com/menmadev/portfolio-api/pkg/tracing"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"
)

// registerAPIRoutes registers the versioned public API
func registerAPIRoutes(
	group *gin.RouterGroup,
	generalRateLimiter, contactRateLimiter *middleware.RateLimiter,
	contactHandler *handlers.ContactHandler,
	challengeHandler *handlers.ChallengeHandler,
) {
	group.POST("/contact", contactRateLimiter.Middleware(), middleware.BodySizeLimitMiddleware(100*1024), contactHandler.Submit)
	group.GET("/challenge/config", generalRateLimiter.Middleware(), challengeHandler.GetConfig)
}

// buildContactService wires the submission pipeline: secret lookup, challenge
// verification with retries, SES delivery and the optional archive bucket.
func buildContactService(cfg *config.Config) (*services.ContactService, error) {
	secretCache := cache.NewSecretCache()
	secretCache.Seed(map[string]string{
		string(secrets.TurnstileSecret): cfg.Challenge.TurnstileSecret,
		string(secrets.HCaptchaSecret):  cfg.Challenge.HCaptchaSecret,
	})
	secretProvider := secrets.NewProvider(cfg.AWS.Region, cfg.AWS.SecretID, secretCache)

	retryCfg := retry.ChallengeConfig()
	retryCfg.MaxRetries = cfg.Challenge.MaxRetries
	retryCfg.InitialDelay = time.Duration(cfg.Challenge.BaseDelayMs) * time.Millisecond

	httpClient := httpclient.NewStandardClient()
	verifyClient := httpclient.NewResilientClient(httpClient, retryCfg)

	registry := challenge.NewRegistry(
		challenge.NewTurnstileVerifier(secretProvider, verifyClient),
		challenge.NewHCaptchaVerifier(secretProvider, verifyClient),
	)

	sender := mailer.NewSESSender(cfg.AWS.Region)

	var archiver services.Archiver
	if cfg.Archive.Bucket != "" {
		store, err := archive.NewStore(context.Background(), archive.Options{
			Bucket:          cfg.Archive.Bucket,
			Region:          cfg.Archive.Region,
			Endpoint:        cfg.Archive.Endpoint,
			AccessKeyID:     cfg.Archive.AccessKeyID,
			SecretAccessKey: cfg.Archive.SecretAccessKey,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize archive store: %w", err)
		}
		archiver = store
		logger.Info("Contact archive enabled", zap.String("bucket", cfg.Archive.Bucket))
	}

	if !cfg.ContactConfigured() {
		logger.Warn("Contact addresses not configured: submissions will fail with an internal error")
	}

	return services.NewContactService(cfg, registry, sender, archiver, httpClient), nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	err = logger.Initialize(logger.Config{
		Level:       cfg.Logging.Level,
		LogDir:      cfg.Logging.Dir,
		Environment: cfg.Server.AppEnv,
		ServiceName: cfg.Observability.ServiceName,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting portfolio API",
		zap.String("version", cfg.Observability.ServiceVersion),
		zap.String("environment", cfg.Server.AppEnv),
	)

	tracerShutdown, err := tracing.InitTracer(cfg.Observability, cfg.Server.AppEnv)
	if err != nil {
		logger.Fatal("Failed to initialize tracer", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tracerShutdown(ctx); shutdownErr != nil {
			logger.LogError(shutdownErr, "Failed to shutdown tracer")
		}
	}()

	stopProfiler, err := profiling.InitProfiler(cfg.Profiling, cfg.Observability, cfg.Server.AppEnv)
	if err != nil {
		logger.Fatal("Failed to initialize profiler", zap.Error(err))
	}
	defer stopProfiler()

	metrics.RecordInfrastructureMetrics()

	contactService, err := buildContactService(cfg)
	if err != nil {
		logger.Fatal("Failed to initialize contact service", zap.Error(err))
	}

	contactHandler := handlers.NewContactHandler(contactService)
	challengeHandler := handlers.NewChallengeHandler(cfg.Challenge)
	healthHandler := handlers.NewHealthHandler()

	gin.SetMode(cfg.Server.GinMode)
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(cfg.Observability.ServiceName))
	router.Use(middleware.ObservabilityMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware())

	allowedOrigins := cfg.Server.AllowedOrigins
	if cfg.IsDevelopment() {
		allowedOrigins = append(allowedOrigins, "http://localhost:3000", "http://127.0.0.1:3000")
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:  allowedOrigins,
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "traceparent", "tracestate"},
		ExposeHeaders: []string{"Content-Length", "Retry-After"},
		MaxAge:        12 * time.Hour,
	}))

	limiterCtx, stopLimiters := context.WithCancel(context.Background())
	defer stopLimiters()

	generalRateLimiter := middleware.NewRateLimiter(limiterCtx, 100, 200) // 100 req/sec, burst of 200
	contactRateLimiter := middleware.NewRateLimiter(limiterCtx, 5, 10)    // 5 req/sec, burst of 10

	api := router.Group("/api")
	api.GET("/healthcheck", generalRateLimiter.Middleware(), healthHandler.Healthcheck)
	api.GET("/metrics", generalRateLimiter.Middleware(), gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	registerAPIRoutes(v1, generalRateLimiter, contactRateLimiter, contactHandler, challengeHandler)

	// Challenge retries can hold a request for several seconds
	srv := &http.Server{
		Addr:              "0.0.0.0:" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 15 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		logger.Info("Server started", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// In-flight submissions are not cancelled; give them time to finish sending
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
