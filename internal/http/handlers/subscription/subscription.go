// Package subscription реализует HTTP-обработчики тарифов, сессий оплаты
// и состояния подписки.
package subscription

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"
	"github.com/google/uuid"

	"github.com/magabrotheeeer/cinestream/internal/http/middlewarectx"
	"github.com/magabrotheeeer/cinestream/internal/http/response"
	"github.com/magabrotheeeer/cinestream/internal/lib/month"
	"github.com/magabrotheeeer/cinestream/internal/lib/sl"
	"github.com/magabrotheeeer/cinestream/internal/models"
	"github.com/magabrotheeeer/cinestream/internal/storage/memory"
)

// Service описывает операции с тарифами и подписками.
type Service interface {
	Plans(ctx context.Context) ([]models.Plan, error)
	SaveCheckout(ctx context.Context, rec models.CheckoutRecord) error
	Checkout(ctx context.Context, sessionID string) (*models.CheckoutRecord, error)
	Subscription(ctx context.Context, userID string) (models.SubscriptionStatus, error)
	SetSubscription(ctx context.Context, userID string, status models.SubscriptionStatus) error
}

// CheckoutRequest тело POST /subscriptions/checkout.
type CheckoutRequest struct {
	PlanID string `json:"plan_id" validate:"required"`
}

// ResultRequest параметры возврата от платёжного шлюза.
type ResultRequest struct {
	SessionID string `validate:"required"`
	Status    string `validate:"omitempty,oneof=success succeeded paid pending failed cancelled"`
}

// Handler обрабатывает запросы /subscriptions.
type Handler struct {
	log      *slog.Logger
	service  Service
	payURL   string
	validate *validator.Validate
	now      func() time.Time
}

// New создает Handler. payURL задаёт адрес страницы оплаты, куда отправляется пользователь.
func New(log *slog.Logger, service Service, payURL string) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		payURL:   payURL,
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

// Plans возвращает {"plans": [...]}.
// @Summary Тарифы
// @Tags Subscriptions
// @Produce  json
// @Success 200 {object} models.PlansResponse
// @Router /subscriptions/plans [get]
func (h *Handler) Plans(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.subscription.Plans")

	plans, err := h.service.Plans(r.Context())
	if err != nil {
		log.Error("failed to load plans", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not load plans"))
		return
	}
	render.JSON(w, r, response.OKWithData(models.PlansResponse{Plans: plans}))
}

// Checkout создаёт сессию оплаты платного тарифа.
// @Summary Сессия оплаты
// @Description Доступна без токена: оплата идёт до создания аккаунта.
// @Tags Subscriptions
// @Accept  json
// @Produce  json
// @Param request body CheckoutRequest true "Платный тариф"
// @Success 200 {object} models.CheckoutSession
// @Failure 400 {object} response.Response "Неизвестный или бесплатный тариф"
// @Failure 422 {object} response.Response "Ошибка валидации"
// @Router /subscriptions/checkout [post]
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.subscription.Checkout")

	var req CheckoutRequest
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

	plans, err := h.service.Plans(r.Context())
	if err != nil {
		log.Error("failed to load plans", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not load plans"))
		return
	}
	plan, ok := models.FindPlan(plans, req.PlanID)
	if !ok {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("unknown plan"))
		return
	}
	if !plan.IsPaid() {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("plan does not require payment"))
		return
	}

	sessionID := "cs_" + uuid.NewString()
	session := models.CheckoutSession{
		SessionID:   sessionID,
		Token:       "pay_" + uuid.NewString(),
		RedirectURL: h.payURL + "?" + url.Values{"session_id": {sessionID}}.Encode(),
	}
	if err := h.service.SaveCheckout(r.Context(), models.CheckoutRecord{
		Session: session,
		PlanID:  plan.ID,
		Created: h.now(),
	}); err != nil {
		log.Error("failed to save checkout", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not create checkout session"))
		return
	}

	log.Info("checkout session created", slog.String("plan_id", plan.ID), slog.String("session_id", sessionID))
	render.JSON(w, r, response.OKWithData(session))
}

// Status возвращает состояние подписки текущего пользователя.
// @Summary Состояние подписки
// @Tags Subscriptions
// @Produce  json
// @Success 200 {object} models.SubscriptionStatus
// @Router /subscriptions/status [get]
// @Security BearerAuth
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.subscription.Status")

	status, err := h.service.Subscription(r.Context(), middlewarectx.UserIDFrom(r.Context()))
	if err != nil {
		log.Error("failed to load subscription", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not load subscription"))
		return
	}
	render.JSON(w, r, response.OKWithData(status))
}

// Result применяет результат оплаты: при успехе подписка переходит на тариф сессии.
// @Summary Результат оплаты
// @Tags Subscriptions
// @Accept  json
// @Produce  json
// @Param request body map[string]string true "session_id и status"
// @Success 200 {object} models.PaymentResult
// @Failure 404 {object} response.Response "Сессия оплаты не найдена"
// @Failure 422 {object} response.Response "Ошибка валидации"
// @Router /subscriptions/result [post]
// @Security BearerAuth
func (h *Handler) Result(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.subscription.Result")

	var params map[string]string
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}
	req := ResultRequest{
		SessionID: params["session_id"],
		Status:    strings.ToLower(params["status"]),
	}
	if err := h.validate.Struct(req); err != nil {
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	rec, err := h.service.Checkout(r.Context(), req.SessionID)
	if errors.Is(err, memory.ErrNotFound) {
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, response.Error("checkout session not found"))
		return
	}
	if err != nil {
		log.Error("failed to load checkout", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not load checkout session"))
		return
	}

	result := paymentStatus(req.Status)
	if result == models.PaymentSuccess {
		plans, err := h.service.Plans(r.Context())
		if err != nil {
			log.Error("failed to load plans", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not load plans"))
			return
		}
		plan, _ := models.FindPlan(plans, rec.PlanID)
		status := models.SubscriptionStatus{
			PlanID:   rec.PlanID,
			PlanName: plan.Name,
			Status:   models.SubscriptionActive,
			RenewsAt: month.RenewalDate(h.now(), plan.Interval),
		}
		if err := h.service.SetSubscription(r.Context(), middlewarectx.UserIDFrom(r.Context()), status); err != nil {
			log.Error("failed to update subscription", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not update subscription"))
			return
		}
	}

	log.Info("payment result handled", slog.String("session_id", req.SessionID), slog.String("result", result))
	render.JSON(w, r, response.OKWithData(models.PaymentResult{Status: result}))
}

func paymentStatus(s string) string {
	switch s {
	case "", "success", "succeeded", "paid":
		return models.PaymentSuccess
	case "pending":
		return models.PaymentPending
	default:
		return models.PaymentFailed
	}
}
