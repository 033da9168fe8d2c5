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

	"config-console/config-service/internal/cache"
	"config-console/config-service/internal/config"
	"config-console/config-service/internal/handler"
	"config-console/config-service/internal/service"
	"config-console/shared/database"
	sharedLogger "config-console/shared/logger"
	"config-console/shared/messaging"
	sharedMiddleware "config-console/shared/middleware"

	rateli "github.com/JGLTechnologies/gin-rate-limit"
	"github.com/gin-gonic/gin"
	ginprometheus "github.com/zsais/go-gin-prometheus"
	"go.uber.org/zap"
)

func main() {
	// --- Configuration ---
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := sharedLogger.New(sharedLogger.Config{
		Level:    cfg.LogLevel,
		Encoding: "json",
		Service:  "config-service",
		Env:      cfg.Env,
	})
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()
	zap.ReplaceGlobals(logger)
	logger.Info("Configuration loaded", zap.String("env", cfg.Env), zap.String("port", cfg.Port))

	// --- External Connections ---
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	pool, err := database.NewPool(ctx, database.PoolConfig{
		DSN:         cfg.GetDSN(),
		MaxConns:    cfg.DBMaxConns,
		IdleTimeout: cfg.DBIdleTimeout,
		MaxRetries:  50,
		RetryDelay:  3 * time.Second,
	}, logger.Named("Postgres"))
	if err != nil {
		logger.Fatal("Failed to connect to PostgreSQL", zap.Error(err))
	}
	defer pool.Close()

	if cfg.RunMigrations {
		if err := database.NewMigrator(pool, logger).Up(); err != nil {
			logger.Fatal("Failed to apply migrations", zap.Error(err))
		}
	}

	redisClient, err := database.NewRedisClient(ctx, database.RedisConfig{
		Addr:       cfg.RedisAddr,
		Password:   cfg.RedisPassword,
		DB:         cfg.RedisDB,
		MaxRetries: 50,
		RetryDelay: 3 * time.Second,
	}, logger.Named("Redis"))
	if err != nil {
		logger.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer redisClient.Close()

	var publisher messaging.ConfigUpdatePublisher
	if cfg.RabbitMQURL != "" {
		mqConn, err := messaging.ConnectRabbitMQ(ctx, cfg.RabbitMQURL, 50, 5*time.Second, logger.Named("RabbitMQ"))
		if err != nil {
			logger.Fatal("Failed to connect to RabbitMQ", zap.Error(err))
		}
		defer mqConn.Close()

		rabbitPublisher, err := messaging.NewRabbitMQConfigUpdatePublisher(mqConn, logger)
		if err != nil {
			logger.Fatal("Failed to create config update publisher", zap.Error(err))
		}
		defer rabbitPublisher.Close()
		publisher = rabbitPublisher
	} else {
		logger.Warn("RABBITMQ_URL not set, config update events are disabled")
	}

	// --- Dependency Injection ---
	repo := database.NewPgConfigurationRepository(pool, logger)
	listCache := cache.NewRedisListCache(redisClient, cfg.CacheTTL, logger)
	configService := service.NewConfigService(repo, listCache, publisher, logger)
	configHandler := handler.NewConfigHandler(configService, logger)

	rateLimitStore := rateli.RedisStore(&rateli.RedisOptions{
		RedisClient: redisClient,
		Rate:        time.Minute,
		Limit:       cfg.PutRateLimit,
	})
	rateLimitMiddleware := rateli.RateLimiter(rateLimitStore, &rateli.Options{
		ErrorHandler: func(c *gin.Context, info rateli.Info) {
			logger.Warn("Rate limit exceeded",
				zap.String("key", sharedMiddleware.OperatorKey(c)),
				zap.Time("resetTime", info.ResetTime),
			)
			c.String(http.StatusTooManyRequests, "Too many requests. Try again in "+time.Until(info.ResetTime).String())
		},
		KeyFunc: sharedMiddleware.OperatorKey,
	})

	// --- HTTP Server Setup (Gin) ---
	gin.SetMode(gin.ReleaseMode)
	if cfg.Env == "development" {
		gin.SetMode(gin.DebugMode)
	}

	router := handler.NewRouter(configHandler, ginprometheus.NewPrometheus("gin"), cfg.GetAllowedOrigins(), logger, rateLimitMiddleware)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("Starting HTTP server", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP Server listen error", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP Server forced to shutdown", zap.Error(err))
	}
	logger.Info("Server exiting")
}
