package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/relaymesh/responses-proxy/internal/api/chat"
	"github.com/relaymesh/responses-proxy/internal/config"
	frontdoor "github.com/relaymesh/responses-proxy/internal/frontdoor/responses"
	"github.com/relaymesh/responses-proxy/internal/server"
	"github.com/relaymesh/responses-proxy/internal/telemetry"
	"github.com/relaymesh/responses-proxy/internal/translate"
)

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	shutdownTracer, err := telemetry.InitTracer("responses-proxy", logger)
	if err != nil {
		log.Fatalf("Failed to initialize tracer: %v", err)
	}
	defer func() {
		if err := shutdownTracer(context.Background()); err != nil {
			logger.Error("failed to shutdown tracer", slog.String("error", err.Error()))
		}
	}()

	var clientOpts []chat.ClientOption
	if cfg.Upstream.BaseURL != "" {
		clientOpts = append(clientOpts, chat.WithBaseURL(cfg.Upstream.BaseURL))
	}
	clientOpts = append(clientOpts, chat.WithLogger(logger))
	upstream := chat.NewClient(cfg.Upstream.APIKey, clientOpts...)

	resolver := translate.NewModelResolver(cfg.Models.Aliases, logger)
	handler := frontdoor.NewHandler(upstream, resolver, logger)

	srv := server.New(cfg.Server.Port, cfg.Server.RequestTimeout, logger)
	srv.Router.Post("/v1/responses", handler.HandleCreateResponse)
	srv.Router.Get("/v1/models", handler.HandleListModels)
	srv.Router.Get("/health", handler.HandleHealth)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			log.Fatalf("Server failed: %v", err)
		}
	case <-sigCh:
		logger.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown error", slog.String("error", err.Error()))
			os.Exit(1)
		}
		logger.Info("shutdown complete")
	}
}
