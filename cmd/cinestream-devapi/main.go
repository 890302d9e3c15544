// Package main CineStream dev API
//
// @title           CineStream dev API
// @version         1.0
// @description     Dev-сервер REST API CineStream: каталог, профили, подписки и админка.

// @host      localhost:3001
// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/magabrotheeeer/cinestream/internal/app/devapi"
	"github.com/magabrotheeeer/cinestream/internal/config"
	"github.com/magabrotheeeer/cinestream/internal/lib/sl"
)

func main() {
	cfg := config.MustLoad("")
	logger := sl.New(cfg.Env, os.Stdout)

	logger.Info("starting cinestream-devapi", slog.String("env", cfg.Env))
	logger.Debug("debug messages are enabled")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := devapi.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize app", sl.Err(err))
		os.Exit(1)
	}

	if err := app.Run(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("app stopped with error", sl.Err(err))
		os.Exit(1)
	}

	logger.Info("cinestream-devapi stopped gracefully")
}
