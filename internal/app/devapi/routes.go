package devapi

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
	"golang.org/x/time/rate"

	_ "github.com/magabrotheeeer/cinestream/docs"
	adminhandler "github.com/magabrotheeeer/cinestream/internal/http/handlers/admin"
	authhandler "github.com/magabrotheeeer/cinestream/internal/http/handlers/auth"
	contenthandler "github.com/magabrotheeeer/cinestream/internal/http/handlers/content"
	"github.com/magabrotheeeer/cinestream/internal/http/handlers/health"
	profileshandler "github.com/magabrotheeeer/cinestream/internal/http/handlers/profiles"
	subscriptionhandler "github.com/magabrotheeeer/cinestream/internal/http/handlers/subscription"
	watchlisthandler "github.com/magabrotheeeer/cinestream/internal/http/handlers/watchlist"
	"github.com/magabrotheeeer/cinestream/internal/http/middlewarectx"
	"github.com/magabrotheeeer/cinestream/internal/models"
	services "github.com/magabrotheeeer/cinestream/internal/services/auth"
	"github.com/magabrotheeeer/cinestream/internal/storage/memory"
)

// Deps зависимости маршрутов dev API.
type Deps struct {
	Store    *memory.Storage
	Auth     *services.AuthService
	Limiter  *rate.Limiter
	Registry *prometheus.Registry
	PayURL   string
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, deps Deps) {
	metrics := middlewarectx.NewMetrics(deps.Registry)

	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		metrics.Middleware,
		middlewarectx.RateLimitMiddleware(logger, deps.Limiter),
	)

	auth := authhandler.New(logger, deps.Auth, deps.Store)
	content := contenthandler.New(logger, deps.Store)
	profiles := profileshandler.New(logger, deps.Store)
	watchlist := watchlisthandler.New(logger, deps.Store)
	subscription := subscriptionhandler.New(logger, deps.Store, deps.PayURL)
	admin := adminhandler.New(logger, deps.Store)

	// Открытые конечные точки
	r.Post("/auth/login", auth.Login)
	r.Post("/auth/register", auth.Register)
	r.Get("/subscriptions/plans", subscription.Plans)
	// оплата идёт до регистрации, поэтому checkout доступен без токена
	r.Post("/subscriptions/checkout", subscription.Checkout)
	r.Get("/content/home", content.Home)
	r.Get("/content/search", content.Search)
	r.With(middlewarectx.OptionalJWTMiddleware(deps.Auth, logger)).Get("/content/{id}", content.Details)
	r.Get("/health", health.New(logger).ServeHTTP)

	// Группа с JWT аутентификацией
	r.Group(func(r chi.Router) {
		r.Use(middlewarectx.JWTMiddleware(deps.Auth, logger))

		r.Post("/auth/logout", auth.Logout)
		r.Get("/users/me", auth.Me)

		r.Get("/profiles", profiles.List)
		r.Post("/profiles", profiles.Create)
		r.Delete("/profiles/{id}", profiles.Delete)

		r.Get("/watchlist", watchlist.List)
		r.Post("/watchlist", watchlist.Add)
		r.Delete("/watchlist/{id}", watchlist.Remove)

		r.Post("/content/{id}/reviews", content.Review)

		r.Get("/subscriptions/status", subscription.Status)
		r.Post("/subscriptions/result", subscription.Result)

		r.Route("/admin", func(r chi.Router) {
			r.Use(middlewarectx.RequireRole(logger, models.RoleAdmin))

			r.Get("/content", admin.ListContent)
			r.Post("/content", admin.CreateContent)
			r.Put("/content/{id}", admin.UpdateContent)
			r.Delete("/content/{id}", admin.DeleteContent)
			r.Get("/users", admin.Users)
			r.Get("/analytics", admin.Analytics)
		})
	})

	r.Handle("/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))

	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
