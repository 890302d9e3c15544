// Package profiles реализует HTTP-обработчики профилей учётной записи.
package profiles

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

// Service описывает операции с профилями.
type Service interface {
	ListProfiles(ctx context.Context, userID string) ([]models.Profile, error)
	CreateProfile(ctx context.Context, userID string, input models.ProfileInput) (models.Profile, error)
	DeleteProfile(ctx context.Context, userID, id string) error
}

// Handler обрабатывает запросы /profiles.
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

// List возвращает профили текущего пользователя массивом в data.
// @Summary Список профилей
// @Tags Profiles
// @Produce  json
// @Success 200 {array} models.Profile
// @Failure 401 {object} response.Response
// @Router /profiles [get]
// @Security BearerAuth
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.profiles.List")

	profiles, err := h.service.ListProfiles(r.Context(), middlewarectx.UserIDFrom(r.Context()))
	if err != nil {
		log.Error("failed to list profiles", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list profiles"))
		return
	}
	render.JSON(w, r, response.OKWithData(profiles))
}

// Create добавляет профиль.
// @Summary Создание профиля
// @Tags Profiles
// @Accept  json
// @Produce  json
// @Param request body models.ProfileInput true "Имя и возрастной рейтинг"
// @Success 201 {object} models.Profile
// @Failure 400 {object} response.Response "Некорректный JSON"
// @Failure 422 {object} response.Response "Ошибка валидации"
// @Router /profiles [post]
// @Security BearerAuth
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.profiles.Create")

	var input models.ProfileInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}
	if err := h.validate.Struct(input); err != nil {
		log.Error("validation failed", sl.Err(err))
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	profile, err := h.service.CreateProfile(r.Context(), middlewarectx.UserIDFrom(r.Context()), input)
	if err != nil {
		log.Error("failed to create profile", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not create profile"))
		return
	}
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, response.OKWithData(profile))
}

// Delete удаляет профиль по id.
// @Summary Удаление профиля
// @Tags Profiles
// @Produce  json
// @Param id path string true "ID профиля"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response "Профиль не найден"
// @Router /profiles/{id} [delete]
// @Security BearerAuth
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.profiles.Delete")

	err := h.service.DeleteProfile(r.Context(), middlewarectx.UserIDFrom(r.Context()), chi.URLParam(r, "id"))
	if errors.Is(err, memory.ErrNotFound) {
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, response.Error("profile not found"))
		return
	}
	if err != nil {
		log.Error("failed to delete profile", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not delete profile"))
		return
	}
	render.JSON(w, r, response.OK())
}
