// Package watchlist реализует HTTP-обработчики списка «смотреть позже».
package watchlist

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/cinestream/internal/http/middlewarectx"
	"github.com/magabrotheeeer/cinestream/internal/http/response"
	"github.com/magabrotheeeer/cinestream/internal/lib/sl"
	"github.com/magabrotheeeer/cinestream/internal/models"
	"github.com/magabrotheeeer/cinestream/internal/storage/memory"
)

// Service описывает операции со списком.
type Service interface {
	Watchlist(ctx context.Context, userID string) ([]models.WatchlistItem, error)
	AddToWatchlist(ctx context.Context, userID, contentID string) error
	RemoveFromWatchlist(ctx context.Context, userID, contentID string) error
}

// AddRequest тело POST /watchlist.
type AddRequest struct {
	ID string `json:"id" validate:"required"`
}

// Handler обрабатывает запросы /watchlist.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New создает Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

func (h *Handler) logger(r *http.Request, op string) *slog.Logger {
	return h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)
}

// List возвращает список пользователя.
// @Summary Список «смотреть позже»
// @Tags Watchlist
// @Produce  json
// @Success 200 {object} models.Watchlist
// @Router /watchlist [get]
// @Security BearerAuth
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.watchlist.List")

	items, err := h.service.Watchlist(r.Context(), middlewarectx.UserIDFrom(r.Context()))
	if err != nil {
		log.Error("failed to load watchlist", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not load watchlist"))
		return
	}
	render.JSON(w, r, response.OKWithData(models.Watchlist{Items: items}))
}

// Add добавляет тайтл в список.
// @Summary Добавление в список
// @Tags Watchlist
// @Accept  json
// @Produce  json
// @Param request body AddRequest true "ID тайтла"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response "Тайтл не найден"
// @Failure 422 {object} response.Response "Ошибка валидации"
// @Router /watchlist [post]
// @Security BearerAuth
func (h *Handler) Add(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.watchlist.Add")

	var req AddRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	err := h.service.AddToWatchlist(r.Context(), middlewarectx.UserIDFrom(r.Context()), req.ID)
	if errors.Is(err, memory.ErrNotFound) {
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, response.Error("content not found"))
		return
	}
	if err != nil {
		log.Error("failed to add to watchlist", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not update watchlist"))
		return
	}
	render.JSON(w, r, response.OK())
}

// Remove убирает тайтл из списка.
// @Summary Удаление из списка
// @Tags Watchlist
// @Produce  json
// @Param id path string true "ID тайтла"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response "Тайтла нет в списке"
// @Router /watchlist/{id} [delete]
// @Security BearerAuth
func (h *Handler) Remove(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.watchlist.Remove")

	err := h.service.RemoveFromWatchlist(r.Context(), middlewarectx.UserIDFrom(r.Context()), chi.URLParam(r, "id"))
	if errors.Is(err, memory.ErrNotFound) {
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, response.Error("content is not in watchlist"))
		return
	}
	if err != nil {
		log.Error("failed to remove from watchlist", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not update watchlist"))
		return
	}
	render.JSON(w, r, response.OK())
}
