// Package content реализует HTTP-обработчики каталога:
// главную страницу, поиск, карточку тайтла и отзывы.
package content

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

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

// Service описывает операции каталога.
type Service interface {
	HomeSections(ctx context.Context) (models.HomeSections, error)
	Search(ctx context.Context, q models.SearchQuery) ([]models.Content, error)
	ContentDetails(ctx context.Context, id, userID string) (*models.ContentDetails, error)
	SaveReview(ctx context.Context, contentID string, review models.Review) error
}

// Handler обрабатывает запросы /content.
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

// Home возвращает подборки главной страницы.
// @Summary Подборки главной страницы
// @Tags Content
// @Produce  json
// @Success 200 {object} models.HomeSections
// @Router /content/home [get]
func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.content.Home")

	sections, err := h.service.HomeSections(r.Context())
	if err != nil {
		log.Error("failed to build home sections", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not load home sections"))
		return
	}
	render.JSON(w, r, response.OKWithData(sections))
}

// Search ищет по параметрам q, genre, language, year.
// @Summary Поиск по каталогу
// @Tags Content
// @Produce  json
// @Param q query string false "Подстрока названия или описания"
// @Param genre query string false "Жанр"
// @Param language query string false "Язык"
// @Param year query int false "Год"
// @Success 200 {object} models.SearchResult
// @Failure 400 {object} response.Response "Некорректный год"
// @Router /content/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.content.Search")

	query := r.URL.Query()
	q := models.SearchQuery{
		Q:        query.Get("q"),
		Genre:    query.Get("genre"),
		Language: query.Get("language"),
	}
	if year := query.Get("year"); year != "" {
		y, err := strconv.Atoi(year)
		if err != nil {
			log.Error("failed to parse year", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("year must be a number"))
			return
		}
		q.Year = y
	}

	results, err := h.service.Search(r.Context(), q)
	if err != nil {
		log.Error("search failed", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("search failed"))
		return
	}
	render.JSON(w, r, response.OKWithData(models.SearchResult{Results: results}))
}

// Details возвращает карточку тайтла. Для авторизованного запроса
// дополнительно заполняются in_watchlist и my_review.
// @Summary Карточка тайтла
// @Tags Content
// @Produce  json
// @Param id path string true "ID тайтла"
// @Success 200 {object} models.ContentDetails
// @Failure 404 {object} response.Response "Тайтл не найден"
// @Router /content/{id} [get]
func (h *Handler) Details(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.content.Details")

	details, err := h.service.ContentDetails(r.Context(), chi.URLParam(r, "id"), middlewarectx.UserIDFrom(r.Context()))
	if errors.Is(err, memory.ErrNotFound) {
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, response.Error("content not found"))
		return
	}
	if err != nil {
		log.Error("failed to load content", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not load content"))
		return
	}
	render.JSON(w, r, response.OKWithData(details))
}

// Review сохраняет оценку и отзыв текущего пользователя.
// @Summary Отзыв о тайтле
// @Tags Content
// @Accept  json
// @Produce  json
// @Param id path string true "ID тайтла"
// @Param request body models.Review true "Оценка 1-5 и текст"
// @Success 201 {object} models.Review
// @Failure 400 {object} response.Response "Некорректный JSON"
// @Failure 404 {object} response.Response "Тайтл не найден"
// @Failure 422 {object} response.Response "Ошибка валидации"
// @Router /content/{id}/reviews [post]
// @Security BearerAuth
func (h *Handler) Review(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.content.Review")

	var review models.Review
	if err := json.NewDecoder(r.Body).Decode(&review); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}
	if err := h.validate.Struct(review); err != nil {
		log.Error("validation failed", sl.Err(err))
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}
	review.UserID = middlewarectx.UserIDFrom(r.Context())

	err := h.service.SaveReview(r.Context(), chi.URLParam(r, "id"), review)
	if errors.Is(err, memory.ErrNotFound) {
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, response.Error("content not found"))
		return
	}
	if err != nil {
		log.Error("failed to save review", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not save review"))
		return
	}
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, response.OK())
}
