package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"moving_ops/internal/config"
	"moving_ops/internal/database"
	"moving_ops/internal/handlers"
	"moving_ops/internal/i18n"
	"moving_ops/internal/redis"
	"moving_ops/internal/repository"
	"moving_ops/internal/services"
	"moving_ops/pkg/events"
	"moving_ops/pkg/notify"

	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg := config.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLevel(cfg.LogLevel),
	}))
	gin.SetMode(cfg.GinMode)

	// Initialize database
	db, err := database.Initialize(cfg.DatabaseURL, logger)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("err", err))
		os.Exit(1)
	}

	// Initialize Redis
	redisClient, err := redis.Initialize(cfg.RedisURL)
	if err != nil {
		logger.Error("failed to connect to redis", slog.Any("err", err))
		os.Exit(1)
	}
	defer redisClient.Close()

	catalog, err := i18n.NewCatalog()
	if err != nil {
		logger.Error("failed to load translations", slog.Any("err", err))
		os.Exit(1)
	}
	if cfg.LocalesDir != "" {
		files, err := filepath.Glob(filepath.Join(cfg.LocalesDir, "*.yaml"))
		if err != nil {
			logger.Warn("failed to list locale files", slog.String("dir", cfg.LocalesDir), slog.Any("err", err))
		}
		for _, f := range files {
			locale := strings.TrimSuffix(filepath.Base(f), ".yaml")
			if err := catalog.LoadFile(locale, f); err != nil {
				logger.Warn("failed to load locale file", slog.String("file", f), slog.Any("err", err))
			}
		}
	}

	notifyTimeout := time.Duration(cfg.NotifyTimeout) * time.Second
	var notifiers services.Notifiers
	if cfg.NotifyAPIURL != "" {
		notifiers = append(notifiers, notify.NewClient(cfg.NotifyAPIURL, cfg.NotifyAPIToken, notifyTimeout))
	}
	if cfg.RabbitMQURL != "" {
		publisher, err := events.Dial(cfg.RabbitMQURL, notifyTimeout)
		if err != nil {
			logger.Error("failed to connect to rabbitmq", slog.Any("err", err))
			os.Exit(1)
		}
		defer publisher.Close()
		notifiers = append(notifiers, publisher)
	}
	var notifier services.Notifier
	if len(notifiers) > 0 {
		notifier = notifiers
	} else {
		logger.Info("no notification gateway configured, notifications are only logged")
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	employmentRepo := repository.NewEmploymentRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	lineRepo := repository.NewOrderServiceRepository(db)
	offerRepo := repository.NewOfferRepository(db)
	catalogRepo := repository.NewCatalogRepository(db)
	txRepo := repository.NewTransactionRepository(db)

	// Initialize services
	notificationService := services.NewNotificationService(notifier, logger)
	userService := services.NewUserService(userRepo)
	orderService := services.NewOrderService(orderRepo, lineRepo, offerRepo, catalogRepo, redisClient, notificationService, logger)
	financeService := services.NewFinanceService(txRepo, logger)
	rateService := services.NewRateService(employmentRepo, redisClient, time.Duration(cfg.RateHistoryTTL)*time.Second, cfg.DefaultCurrency, logger)

	apiHandler := handlers.NewAPIHandler(userService, orderService, financeService, rateService, catalog, cfg.DefaultLocale)
	router := handlers.NewRouter(logger, apiHandler)

	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: router,
	}

	go func() {
		logger.Info("server starting", slog.String("port", cfg.ServerPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to start server", slog.Any("err", err))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", slog.Any("err", err))
	}
	logger.Info("server exited")
}

func parseLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return level
}
