package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/magabrotheeeer/cinestream/internal/api"
	"github.com/magabrotheeeer/cinestream/internal/cache"
	"github.com/magabrotheeeer/cinestream/internal/config"
	"github.com/magabrotheeeer/cinestream/internal/lib/sl"
	"github.com/magabrotheeeer/cinestream/internal/services/session"
	"github.com/magabrotheeeer/cinestream/internal/storage/filekv"
	sessionstore "github.com/magabrotheeeer/cinestream/internal/storage/session"
	"github.com/magabrotheeeer/cinestream/internal/tui"
)

// Env объекты, общие для всех команд одного запуска.
type Env struct {
	Config   *config.Config
	Log      *slog.Logger
	API      *api.Client
	Session  *session.Manager
	Prompter tui.Prompter // nil, если интерактивный ввод отключён

	closers []func() error
}

// NewEnv собирает хранилище сессии, клиент API и менеджер сессии по конфигурации.
func NewEnv(ctx context.Context, cfg *config.Config) (*Env, error) {
	const op = "cli.NewEnv"

	log := sl.New(cfg.Env, os.Stderr)
	env := &Env{Config: cfg, Log: log}

	var backend sessionstore.Backend
	switch cfg.Driver {
	case config.DriverRedis:
		redisCache, err := cache.InitServer(ctx, cfg.RedisConnection, cfg.KeyPrefix)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		env.closers = append(env.closers, redisCache.Close)
		backend = redisCache
	default:
		path := cfg.Path
		if path == "" {
			defaultPath, err := filekv.DefaultPath()
			if err != nil {
				return nil, fmt.Errorf("%s: %w", op, err)
			}
			path = defaultPath
		}
		backend = filekv.New(path)
	}
	store := sessionstore.NewStore(backend, cfg.TTL)

	env.API = api.New(cfg.BaseURL, store,
		api.WithTimeout(cfg.TimeoutAPI),
		api.WithRateLimit(cfg.RateLimit, cfg.Burst),
		api.WithLogger(log),
	)
	env.Session = session.NewManager(store, env.API, session.WithLogger(log))
	if tui.ShouldPrompt() {
		env.Prompter = tui.Forms{}
	}
	log.Debug("environment ready",
		slog.String("base_url", cfg.BaseURL),
		slog.String("session_driver", cfg.Driver),
	)
	return env, nil
}

// Close освобождает ресурсы окружения.
func (e *Env) Close() error {
	var errs []error
	for _, c := range e.closers {
		errs = append(errs, c())
	}
	return errors.Join(errs...)
}

func (e *Env) requireLogin() error {
	if !e.Session.Session().LoggedIn() {
		return fmt.Errorf("%w: run `cinestream login` first", session.ErrNotLoggedIn)
	}
	return nil
}

func (e *Env) requireRole(role string) error {
	if err := e.requireLogin(); err != nil {
		return err
	}
	if !e.Session.HasRole(role) {
		return fmt.Errorf("%s role required", role)
	}
	return nil
}
