// Package auth реализует HTTP-обработчики аутентификации dev API:
// вход по форме, регистрацию, выход и получение текущего пользователя.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/cinestream/internal/http/middlewarectx"
	"github.com/magabrotheeeer/cinestream/internal/http/response"
	"github.com/magabrotheeeer/cinestream/internal/lib/sl"
	"github.com/magabrotheeeer/cinestream/internal/models"
	services "github.com/magabrotheeeer/cinestream/internal/services/auth"
)

// Service описывает интерфейс бизнес-логики аутентификации.
type Service interface {
	Register(ctx context.Context, req models.RegisterRequest) (*models.User, error)
	Login(ctx context.Context, email, password string) (string, *models.User, error)
	Logout(ctx context.Context, token string) error
}

// Users отдаёт пользователя по id.
type Users interface {
	UserByID(ctx context.Context, id string) (*models.User, error)
}

// LoginRequest поля формы входа. В username передаётся email.
type LoginRequest struct {
	Username string `validate:"required"`
	Password string `validate:"required"`
}

// RegisterRequest тело запроса регистрации.
type RegisterRequest struct {
	Name                string              `json:"name" validate:"required,min=2"`
	Age                 int                 `json:"age" validate:"min=13,max=120"`
	Phone               string              `json:"phone" validate:"required,min=7"`
	Email               string              `json:"email" validate:"required,email"`
	Password            string              `json:"password" validate:"required,min=6"`
	PlanID              string              `json:"plan_id" validate:"required"`
	PlanName            string              `json:"plan_name"`
	PaymentConfirmation *models.PaymentInfo `json:"payment_confirmation"`
}

// Handler обрабатывает HTTP-запросы аутентификации.
type Handler struct {
	log      *slog.Logger
	service  Service
	users    Users
	validate *validator.Validate
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service, users Users) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		users:    users,
		validate: validator.New(),
	}
}

func (h *Handler) logger(r *http.Request, op string) *slog.Logger {
	return h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)
}

// Login принимает application/x-www-form-urlencoded (username, password)
// и возвращает access_token с данными пользователя.
// @Summary Вход пользователя
// @Tags Auth
// @Accept  x-www-form-urlencoded
// @Produce  json
// @Param username formData string true "Email"
// @Param password formData string true "Пароль"
// @Success 200 {object} models.LoginResponse "Токен и пользователь в data"
// @Failure 400 {object} response.Response "Некорректная форма"
// @Failure 401 {object} response.Response "Неверные учетные данные"
// @Failure 422 {object} response.Response "Ошибка валидации"
// @Failure 500 {object} response.Response "Внутренняя ошибка сервера"
// @Router /auth/login [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.auth.Login")

	if err := r.ParseForm(); err != nil {
		log.Error("failed to parse form", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid form body"))
		return
	}
	req := LoginRequest{
		Username: r.PostForm.Get("username"),
		Password: r.PostForm.Get("password"),
	}
	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	token, user, err := h.service.Login(r.Context(), req.Username, req.Password)
	if errors.Is(err, services.ErrInvalidCredentials) {
		log.Info("invalid credentials")
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, response.Error("invalid credentials"))
		return
	}
	if err != nil {
		log.Error("login failed", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal error"))
		return
	}

	log.Info("login success", slog.String("user_id", user.ID))
	render.JSON(w, r, response.OKWithData(models.LoginResponse{
		AccessToken: token,
		TokenType:   "bearer",
		User:        user,
	}))
}

// Register создаёт учётную запись. Токен не выдаётся: клиент выполняет вход отдельно.
// @Summary Регистрация
// @Description Для платного тарифа требуется payment_confirmation.
// @Tags Auth
// @Accept  json
// @Produce  json
// @Param request body RegisterRequest true "Данные регистрации"
// @Success 201 {object} models.User
// @Failure 400 {object} response.Response "Некорректный JSON или тариф"
// @Failure 402 {object} response.Response "Нет подтверждения оплаты"
// @Failure 409 {object} response.Response "Email уже занят"
// @Failure 422 {object} response.Response "Ошибка валидации"
// @Failure 500 {object} response.Response "Внутренняя ошибка сервера"
// @Router /auth/register [post]
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.auth.Register")

	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}
	log.Info("all fields are validated")

	user, err := h.service.Register(r.Context(), models.RegisterRequest{
		Name:                req.Name,
		Age:                 req.Age,
		Phone:               req.Phone,
		Email:               req.Email,
		Password:            req.Password,
		PlanID:              req.PlanID,
		PlanName:            req.PlanName,
		PaymentConfirmation: req.PaymentConfirmation,
	})
	switch {
	case errors.Is(err, services.ErrEmailTaken):
		render.Status(r, http.StatusConflict)
		render.JSON(w, r, response.Error("email already registered"))
		return
	case errors.Is(err, services.ErrUnknownPlan):
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("unknown plan"))
		return
	case errors.Is(err, services.ErrPaymentRequired):
		render.Status(r, http.StatusPaymentRequired)
		render.JSON(w, r, response.Error("payment confirmation required"))
		return
	case err != nil:
		log.Error("registration failed", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to register user"))
		return
	}

	log.Info("user registered", slog.String("user_id", user.ID))
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, response.OKWithData(user))
}

// Logout отзывает текущий токен.
// @Summary Выход
// @Tags Auth
// @Produce  json
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response "Пользователь не авторизован"
// @Router /auth/logout [post]
// @Security BearerAuth
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.auth.Logout")

	if err := h.service.Logout(r.Context(), middlewarectx.TokenFrom(r.Context())); err != nil {
		log.Error("logout failed", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to logout"))
		return
	}
	render.JSON(w, r, response.OK())
}

// Me возвращает текущего пользователя.
// @Summary Текущий пользователь
// @Tags Users
// @Produce  json
// @Success 200 {object} models.User
// @Failure 401 {object} response.Response "Пользователь не авторизован"
// @Router /users/me [get]
// @Security BearerAuth
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.auth.Me")

	user, err := h.users.UserByID(r.Context(), middlewarectx.UserIDFrom(r.Context()))
	if err != nil {
		log.Error("failed to load user", sl.Err(err))
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, response.Error("user not found"))
		return
	}
	render.JSON(w, r, response.OKWithData(user))
}
