// Package devapi собирает dev-сервер API CineStream: хранилище в памяти,
// сервис аутентификации и маршруты в схеме v1.
package devapi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/time/rate"

	"github.com/magabrotheeeer/cinestream/internal/config"
	"github.com/magabrotheeeer/cinestream/internal/lib/jwt"
	"github.com/magabrotheeeer/cinestream/internal/lib/password"
	"github.com/magabrotheeeer/cinestream/internal/models"
	services "github.com/magabrotheeeer/cinestream/internal/services/auth"
	"github.com/magabrotheeeer/cinestream/internal/storage/memory"
)

// App dev-сервер API.
type App struct {
	server *http.Server
	logger *slog.Logger
	store  *memory.Storage
}

// New создаёт хранилище, заводит администратора и настраивает маршруты.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	const op = "devapi.New"

	store := memory.New()
	if err := seedAdmin(ctx, store, cfg.Admin, time.Now()); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	jwtMaker := jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL)
	authService := services.NewAuthService(store, store, jwtMaker)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, Deps{
		Store:    store,
		Auth:     authService,
		Limiter:  rate.NewLimiter(rate.Limit(cfg.ServerRPS), cfg.ServerBurst),
		Registry: registry,
		PayURL:   cfg.PayURL,
	})

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server: srv,
		logger: logger,
		store:  store,
	}, nil
}

// Handler возвращает корневой обработчик сервера.
func (a *App) Handler() http.Handler {
	return a.server.Handler
}

// Run запускает сервер и корректно останавливает его при отмене ctx.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		return a.server.Shutdown(timeoutCtx)
	}
}

func seedAdmin(ctx context.Context, store *memory.Storage, admin config.Admin, now time.Time) error {
	const op = "devapi.seedAdmin"

	hashed, err := password.GetHash(admin.AdminPassword)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	user, err := store.CreateAccount(ctx, models.Account{
		User: models.User{
			Email: admin.AdminEmail,
			Name:  "Administrator",
			Roles: []string{models.RoleUser, models.RoleAdmin},
		},
		PasswordHash: hashed,
		PlanID:       "entrepreneur",
		CreatedAt:    now.UTC(),
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if _, err := store.CreateProfile(ctx, user.ID, models.ProfileInput{Name: "Admin"}); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
