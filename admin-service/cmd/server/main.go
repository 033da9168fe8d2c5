package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"config-console/admin-service/internal/client"
	"config-console/admin-service/internal/config"
	"config-console/admin-service/internal/console"
	"config-console/admin-service/internal/handler"
	"config-console/admin-service/internal/i18n"
	"config-console/admin-service/internal/web"
	sharedLogger "config-console/shared/logger"
	"config-console/shared/messaging"
	sharedMiddleware "config-console/shared/middleware"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "", "path to config.yml (default: $CONSOLE_CONFIG_PATH or ./config.yml)")
	templatesDir := flag.String("templates", "", "serve templates from this directory and reload them on every request")
	flag.Parse()

	// zap is not configured yet
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := sharedLogger.New(sharedLogger.Config{
		Level:    cfg.Log.Level,
		Encoding: "json",
		Service:  "admin-service",
		Env:      cfg.Env,
	})
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()
	logger.Info("Configuration loaded",
		zap.String("env", cfg.Env),
		zap.String("port", cfg.ServerPort),
		zap.String("configServiceURL", cfg.ConfigService.URL),
		zap.Duration("refreshDelay", cfg.Refresh.Delay),
		zap.Int("maxPollAttempts", cfg.Refresh.MaxPollAttempts),
		zap.Strings("supportedLanguages", cfg.SupportedLanguages),
		zap.Bool("acknowledgments", cfg.RabbitMQ.URL != ""),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Backend client ---
	configClient, err := client.NewConfigServiceClient(cfg.ConfigService.URL, cfg.ConfigService.ClientTimeout, logger)
	if err != nil {
		logger.Fatal("Failed to create ConfigServiceClient", zap.Error(err))
	}

	// --- Optional acknowledgment source ---
	var acks *console.AckRegistry
	if cfg.RabbitMQ.URL != "" {
		rabbitConn, err := messaging.ConnectRabbitMQ(ctx, cfg.RabbitMQ.URL, 5, 5*time.Second, logger.Named("RabbitMQ"))
		if err != nil {
			logger.Fatal("Failed to connect to RabbitMQ", zap.Error(err))
		}
		defer rabbitConn.Close()

		acks = console.NewAckRegistry(logger)
		consumer, err := messaging.NewConfigUpdateConsumer(rabbitConn, acks, logger)
		if err != nil {
			logger.Fatal("Failed to create ConfigUpdateConsumer", zap.Error(err))
		}
		if err := consumer.Start(ctx); err != nil {
			logger.Fatal("Failed to start ConfigUpdateConsumer", zap.Error(err))
		}
		defer func() {
			if err := consumer.Stop(); err != nil {
				logger.Warn("Error stopping ConfigUpdateConsumer", zap.Error(err))
			}
		}()
	}

	// --- Page sessions ---
	policy := console.RefreshPolicy{
		Delay:           cfg.Refresh.Delay,
		AckTimeout:      cfg.Refresh.AckTimeout,
		PollInterval:    cfg.Refresh.PollInterval,
		MaxPollAttempts: cfg.Refresh.MaxPollAttempts,
	}
	sessions := console.NewSessionStore(func() *console.Page {
		return console.NewPage(configClient, acks, policy, logger)
	}, cfg.Session.TTL, cfg.Session.SweepInterval, logger)
	defer sessions.Close()

	catalog, err := i18n.LoadCatalog(cfg.SupportedLanguages)
	if err != nil {
		logger.Fatal("Failed to load locales", zap.Error(err))
	}

	templateFS := web.TemplateFS()
	if *templatesDir != "" {
		templateFS = os.DirFS(*templatesDir)
	}
	renderer, err := web.NewTemplateRenderer(templateFS, *templatesDir != "", logger, web.FuncMap())
	if err != nil {
		logger.Fatal("Failed to load templates", zap.Error(err))
	}

	h := handler.NewConfigHandler(sessions, catalog, handler.HandlerConfig{
		FlashSecret:  cfg.FlashSecret,
		SessionTTL:   cfg.Session.TTL,
		SecureCookie: cfg.Session.SecureCookie,
	}, logger)

	// --- Gin ---
	gin.SetMode(gin.ReleaseMode)
	if cfg.Env == "development" {
		gin.SetMode(gin.DebugMode)
	}
	router := gin.New()
	router.HTMLRender = renderer
	router.Use(sharedMiddleware.RequestID())
	router.Use(gin.Recovery())
	router.Use(sharedMiddleware.GinZapLogger(logger))
	router.Use(h.CustomErrorMiddleware())

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	h.RegisterRoutes(router)

	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		// a save waits for the refresh to finish
		WriteTimeout: cfg.ConfigService.ClientTimeout*time.Duration(cfg.Refresh.MaxPollAttempts+1) + cfg.Refresh.AckTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("Admin server starting", zap.String("port", cfg.ServerPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	// --- Graceful shutdown ---
	<-ctx.Done()
	logger.Info("Shutdown signal received, stopping server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server forced to shutdown", zap.Error(err))
	}
	logger.Info("Server stopped")
}
