package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kirankjolly/AI-GitHub-Repository-Issue-Scanner/internal/app"
	"github.com/kirankjolly/AI-GitHub-Repository-Issue-Scanner/internal/config"
	"github.com/kirankjolly/AI-GitHub-Repository-Issue-Scanner/internal/handler"
	"github.com/kirankjolly/AI-GitHub-Repository-Issue-Scanner/internal/logging"
	"github.com/kirankjolly/AI-GitHub-Repository-Issue-Scanner/internal/middleware"
)

const shutdownTimeout = 10 * time.Second

// main is the single entry-point for the REST API.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("configuration loaded",
		zap.String("port", cfg.Port),
		zap.String("storage", cfg.StorageDriver),
		zap.String("llm_provider", cfg.LLMProvider))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.Build(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize", zap.Error(err))
	}
	defer func() {
		if err := a.Close(context.Background()); err != nil {
			logger.Warn("close failed", zap.Error(err))
		}
	}()

	// Create Fiber app
	srv := fiber.New(fiber.Config{
		AppName:               "issue-scanner",
		ReadTimeout:           cfg.ReadTimeout,
		WriteTimeout:          cfg.WriteTimeout,
		ErrorHandler:          handler.ErrorHandler,
		DisableStartupMessage: true,
	})
	srv.Use(middleware.Logging(logger))
	handler.RegisterRoutes(srv, a.Service, a.Cache)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("server starting", zap.String("port", cfg.Port))
		return srv.Listen(":" + cfg.Port)
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		return srv.ShutdownWithTimeout(shutdownTimeout)
	})

	if err := g.Wait(); err != nil {
		logger.Error("server stopped with error", zap.Error(err))
	}
}
