// Package health отдаёт проверку живости dev API.
package health

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/magabrotheeeer/cinestream/internal/http/response"
)

// Handler отвечает на GET /health.
type Handler struct {
	log *slog.Logger
}

// New создает Handler.
func New(log *slog.Logger) *Handler {
	return &Handler{
		log: log,
	}
}

// ServeHTTP godoc
// @Summary Проверка живости
// @Tags Health
// @Produce  json
// @Success 200 {object} response.Response
// @Router /health [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.log.Debug("health check", slog.String("op", "handlers.health"))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"status": "ok",
	}))
}
