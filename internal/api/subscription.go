package api

import (
	"context"
	"net/http"

	"github.com/magabrotheeeer/cinestream/internal/models"
)

// Plans возвращает тарифы, доступные при регистрации.
func (c *Client) Plans(ctx context.Context) ([]models.Plan, error) {
	var resp models.PlansResponse
	if err := c.do(ctx, "api.Plans", request{method: http.MethodGet, path: "/subscriptions/plans"}, &resp); err != nil {
		return nil, err
	}
	return resp.Plans, nil
}

// CreateCheckoutSession создаёт сессию оплаты тарифа.
func (c *Client) CreateCheckoutSession(ctx context.Context, planID string) (*models.CheckoutSession, error) {
	r, err := jsonRequest(http.MethodPost, "/subscriptions/checkout", map[string]string{"plan_id": planID})
	if err != nil {
		return nil, err
	}
	var session models.CheckoutSession
	if err := c.do(ctx, "api.CreateCheckoutSession", r, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// SubscriptionStatus возвращает состояние подписки текущего пользователя.
func (c *Client) SubscriptionStatus(ctx context.Context) (*models.SubscriptionStatus, error) {
	var status models.SubscriptionStatus
	if err := c.do(ctx, "api.SubscriptionStatus", request{method: http.MethodGet, path: "/subscriptions/status"}, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// HandlePaymentResult сообщает серверу параметры возврата от платёжного шлюза.
func (c *Client) HandlePaymentResult(ctx context.Context, params map[string]string) (*models.PaymentResult, error) {
	r, err := jsonRequest(http.MethodPost, "/subscriptions/result", params)
	if err != nil {
		return nil, err
	}
	var result models.PaymentResult
	if err := c.do(ctx, "api.HandlePaymentResult", r, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
