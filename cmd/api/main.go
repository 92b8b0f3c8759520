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
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	"github.com/studyleave/studyleave-api/config"
	"github.com/studyleave/studyleave-api/internal/handlers"
	"github.com/studyleave/studyleave-api/internal/middleware"
	"github.com/studyleave/studyleave-api/internal/services"
	"github.com/studyleave/studyleave-api/pkg/logger"
	"github.com/studyleave/studyleave-api/pkg/metrics"
	"github.com/studyleave/studyleave-api/pkg/profiling"
	"github.com/studyleave/studyleave-api/pkg/tracing"
	"github.com/studyleave/studyleave-api/pkg/typst"
)

// registerDocumentRoutes registers the document API routes
func registerDocumentRoutes(
	group *gin.RouterGroup,
	generalRateLimiter, buildRateLimiter *middleware.RateLimiter,
	documentHandler *handlers.DocumentHandler,
) {
	document := group.Group("/document")
	document.POST("/build", buildRateLimiter.Middleware(), middleware.BodySizeLimitMiddleware(100*1024), documentHandler.BuildDocument)
	document.GET("/activity-types", generalRateLimiter.Middleware(), documentHandler.GetActivityTypes)
}

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	err = logger.Initialize(logger.Config{
		Level:       cfg.Logging.Level,
		LogDir:      cfg.Logging.Dir,
		Environment: cfg.Server.AppEnv,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting Study Leave API",
		zap.String("version", cfg.Observability.ServiceVersion),
		zap.String("environment", cfg.Server.AppEnv),
	)

	// Initialize distributed tracing
	tracerShutdown, err := tracing.InitTracer(
		cfg.Observability.ServiceName,
		cfg.Observability.ServiceVersion,
		cfg.Server.AppEnv,
		cfg.Observability.OTLPEndpoint,
	)
	if err != nil {
		logger.Fatal("Failed to initialize tracer", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tracerShutdown(ctx); shutdownErr != nil {
			logger.Error("Failed to shutdown tracer", zap.Error(shutdownErr))
		}
	}()

	// Initialize continuous profiling (disabled unless configured)
	profilerStop, err := profiling.InitProfiler(
		cfg.Profiling,
		cfg.Observability.ServiceName,
		cfg.Observability.ServiceVersion,
		cfg.Server.AppEnv,
	)
	if err != nil {
		logger.Fatal("Failed to initialize profiler", zap.Error(err))
	}
	defer profilerStop()

	// Initialize metrics with service name from config
	metrics.Init(cfg.Observability.ServiceName)

	// Start infrastructure metrics collection
	metrics.RecordInfrastructureMetrics()

	// Initialize the external document compiler
	compiler := typst.NewCLICompiler(cfg.Typst.Binary)
	if !compiler.Available() {
		logger.Warn("Document compiler binary not found on PATH; build requests will fail",
			zap.String("binary", cfg.Typst.Binary))
	}

	// Initialize services
	documentService := services.NewDocumentService(compiler, cfg)

	// Initialize handlers
	documentHandler := handlers.NewDocumentHandler(documentService)
	healthHandler := handlers.NewHealthHandler(compiler.Available)

	// Set up Gin router
	gin.SetMode(cfg.Server.GinMode)
	router := gin.New()

	// Global middleware
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(cfg.Observability.ServiceName))
	router.Use(middleware.ObservabilityMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware())

	// CORS configuration - restrict to configured origins when set,
	// otherwise open (the API serves a public form)
	allowedOrigins := cfg.Server.AllowedOrigins
	if cfg.IsDevelopment() {
		allowedOrigins = append(allowedOrigins, "http://localhost:3000", "http://127.0.0.1:3000")
	}

	corsConfig := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "traceparent", "tracestate"},
		ExposeHeaders: []string{"Content-Length", "Content-Disposition"},
		MaxAge:        12 * time.Hour,
	}
	if len(allowedOrigins) > 0 {
		corsConfig.AllowOrigins = allowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	router.Use(cors.New(corsConfig))

	// Rate limiters: compilation is expensive, so builds get a tighter budget
	generalRateLimiter := middleware.NewRateLimiter(100, 200) // 100 req/sec, burst of 200
	buildRateLimiter := middleware.NewRateLimiter(5, 10)      // 5 req/sec, burst of 10

	// Utility endpoints (not versioned - operational endpoints)
	api := router.Group("/api")
	api.GET("/healthcheck", generalRateLimiter.Middleware(), healthHandler.Healthcheck)
	api.GET("/metrics", generalRateLimiter.Middleware(), gin.WrapH(promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{})))

	// API v1 routes
	v1 := router.Group("/api/v1")
	registerDocumentRoutes(v1, generalRateLimiter, buildRateLimiter, documentHandler)

	// Create HTTP server
	srv := &http.Server{
		Addr:              "0.0.0.0:" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 15 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Server started", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
