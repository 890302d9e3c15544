// Package admin реализует HTTP-обработчики административного раздела:
// управление каталогом, список пользователей и аналитику.
package admin

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/cinestream/internal/http/response"
	"github.com/magabrotheeeer/cinestream/internal/lib/sl"
	"github.com/magabrotheeeer/cinestream/internal/models"
	"github.com/magabrotheeeer/cinestream/internal/storage/memory"
)

const maxFormMemory = 10 << 20

// Service описывает административные операции.
type Service interface {
	ListContent(ctx context.Context, page models.Page) ([]models.Content, int, error)
	CreateContent(ctx context.Context, input models.ContentInput) (models.Content, error)
	UpdateContent(ctx context.Context, id string, patch models.ContentPatch) (models.Content, error)
	DeleteContent(ctx context.Context, id string) error
	ListUsers(ctx context.Context, page models.Page) ([]models.User, int, error)
	Analytics(ctx context.Context, now time.Time) (models.Analytics, error)
}

// Handler обрабатывает запросы /admin.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
	now      func() time.Time
}

// New создает Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
		now:      time.Now,
	}
}

func (h *Handler) logger(r *http.Request, op string) *slog.Logger {
	return h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)
}

func parsePage(r *http.Request) (models.Page, error) {
	var page models.Page
	query := r.URL.Query()
	for name, dst := range map[string]*int{"limit": &page.Limit, "offset": &page.Offset} {
		raw := query.Get(name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return page, errors.New(name + " must be a non-negative number")
		}
		*dst = n
	}
	return page, nil
}

func notFoundOr(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error, msg string) {
	if errors.Is(err, memory.ErrNotFound) {
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, response.Error("content not found"))
		return
	}
	log.Error(msg, sl.Err(err))
	render.Status(r, http.StatusInternalServerError)
	render.JSON(w, r, response.Error(msg))
}

// ListContent возвращает страницу каталога.
// @Summary Каталог для админки
// @Tags Admin
// @Produce  json
// @Param limit query int false "Размер страницы"
// @Param offset query int false "Смещение"
// @Success 200 {object} models.AdminContentList
// @Failure 400 {object} response.Response "Некорректная пагинация"
// @Failure 403 {object} response.Response "Нет роли admin"
// @Router /admin/content [get]
// @Security BearerAuth
func (h *Handler) ListContent(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.admin.ListContent")

	page, err := parsePage(r)
	if err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error(err.Error()))
		return
	}
	items, total, err := h.service.ListContent(r.Context(), page)
	if err != nil {
		log.Error("failed to list content", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list content"))
		return
	}
	render.JSON(w, r, response.OKWithData(models.AdminContentList{Items: items, Total: total}))
}

// CreateContent принимает multipart/form-data и создаёт тайтл.
// @Summary Создание тайтла
// @Tags Admin
// @Accept  multipart/form-data
// @Produce  json
// @Param title formData string true "Название"
// @Param year formData int false "Год"
// @Param genre formData string false "Жанр"
// @Param language formData string false "Язык"
// @Param stream_url formData string false "Адрес потока"
// @Param thumbnail formData file false "Обложка"
// @Success 201 {object} models.Content
// @Failure 400 {object} response.Response "Некорректная форма"
// @Failure 422 {object} response.Response "Ошибка валидации"
// @Router /admin/content [post]
// @Security BearerAuth
func (h *Handler) CreateContent(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.admin.CreateContent")

	if err := r.ParseMultipartForm(maxFormMemory); err != nil {
		log.Error("failed to parse multipart form", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid multipart body"))
		return
	}
	input := models.ContentInput{
		Title:     r.FormValue("title"),
		Genre:     r.FormValue("genre"),
		Language:  r.FormValue("language"),
		StreamURL: r.FormValue("stream_url"),
		Thumbnail: r.FormValue("thumbnail"),
	}
	if raw := r.FormValue("year"); raw != "" {
		year, err := strconv.Atoi(raw)
		if err != nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("year must be a number"))
			return
		}
		input.Year = year
	}
	if err := h.validate.Struct(input); err != nil {
		log.Error("validation failed", sl.Err(err))
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	created, err := h.service.CreateContent(r.Context(), input)
	if err != nil {
		log.Error("failed to create content", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not create content"))
		return
	}
	log.Info("content created", slog.String("content_id", created.ID))
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, response.OKWithData(created))
}

// UpdateContent применяет JSON-патч к тайтлу.
// @Summary Изменение тайтла
// @Tags Admin
// @Accept  json
// @Produce  json
// @Param id path string true "ID тайтла"
// @Param request body models.ContentPatch true "Изменяемые поля"
// @Success 200 {object} models.Content
// @Failure 404 {object} response.Response "Тайтл не найден"
// @Router /admin/content/{id} [put]
// @Security BearerAuth
func (h *Handler) UpdateContent(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.admin.UpdateContent")

	var patch models.ContentPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	updated, err := h.service.UpdateContent(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		notFoundOr(w, r, log, err, "could not update content")
		return
	}
	render.JSON(w, r, response.OKWithData(updated))
}

// DeleteContent удаляет тайтл.
// @Summary Удаление тайтла
// @Tags Admin
// @Produce  json
// @Param id path string true "ID тайтла"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response "Тайтл не найден"
// @Router /admin/content/{id} [delete]
// @Security BearerAuth
func (h *Handler) DeleteContent(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.admin.DeleteContent")

	if err := h.service.DeleteContent(r.Context(), chi.URLParam(r, "id")); err != nil {
		notFoundOr(w, r, log, err, "could not delete content")
		return
	}
	render.JSON(w, r, response.OK())
}

// Users возвращает страницу пользователей.
// @Summary Пользователи
// @Tags Admin
// @Produce  json
// @Param limit query int false "Размер страницы"
// @Param offset query int false "Смещение"
// @Success 200 {object} models.AdminUserList
// @Router /admin/users [get]
// @Security BearerAuth
func (h *Handler) Users(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.admin.Users")

	page, err := parsePage(r)
	if err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error(err.Error()))
		return
	}
	users, total, err := h.service.ListUsers(r.Context(), page)
	if err != nil {
		log.Error("failed to list users", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list users"))
		return
	}
	render.JSON(w, r, response.OKWithData(models.AdminUserList{Users: users, Total: total}))
}

// Analytics возвращает сводные показатели.
// @Summary Сводные показатели
// @Tags Admin
// @Produce  json
// @Success 200 {object} models.Analytics
// @Router /admin/analytics [get]
// @Security BearerAuth
func (h *Handler) Analytics(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.admin.Analytics")

	analytics, err := h.service.Analytics(r.Context(), h.now())
	if err != nil {
		log.Error("failed to compute analytics", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not compute analytics"))
		return
	}
	render.JSON(w, r, response.OKWithData(analytics))
}
