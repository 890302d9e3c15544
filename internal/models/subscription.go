package models

import (
	"regexp"
	"strings"
)

// Plan тариф подписки. Неизменяем после получения.
type Plan struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	PriceCents  int      `json:"price_cents"`
	Currency    string   `json:"currency"`
	Interval    string   `json:"interval"`
	Description string   `json:"description"`
	Features    []string `json:"features"`
}

var paidPlanName = regexp.MustCompile(`(?i)pro|entrepreneur`)

// IsPaid сообщает, требует ли тариф оплаты:
// имя совпадает с pro/entrepreneur либо цена больше нуля.
func (p Plan) IsPaid() bool {
	return paidPlanName.MatchString(p.Name) || p.PriceCents > 0
}

// DefaultPlans возвращает встроенный список тарифов Free/Pro/Entrepreneur,
// который используется, если сервер ничего не вернул.
func DefaultPlans() []Plan {
	return []Plan{
		{
			ID:          "free",
			Name:        "Free",
			PriceCents:  0,
			Currency:    "USD",
			Interval:    "month",
			Description: "Start watching with limited access.",
			Features:    []string{"Access to free titles", "Single screen", "Ads supported"},
		},
		{
			ID:          "pro",
			Name:        "Pro",
			PriceCents:  999,
			Currency:    "USD",
			Interval:    "month",
			Description: "HD streaming with more titles.",
			Features:    []string{"Full library access", "HD 1080p", "2 screens"},
		},
		{
			ID:          "entrepreneur",
			Name:        "Entrepreneur",
			PriceCents:  1999,
			Currency:    "USD",
			Interval:    "month",
			Description: "For small teams & advanced users.",
			Features:    []string{"All Pro features", "4K Ultra HD", "4 screens", "Priority support"},
		},
	}
}

// EnsureThreePlans накладывает полученные с сервера тарифы на встроенные по имени
// (без учёта регистра). Результат всегда содержит Free, Pro и Entrepreneur в этом порядке;
// серверные id используются, когда тариф с таким именем пришёл от API.
func EnsureThreePlans(fetched []Plan) []Plan {
	byName := make(map[string]Plan, len(fetched))
	for _, p := range fetched {
		byName[strings.ToLower(p.Name)] = p
	}

	defaults := DefaultPlans()
	merged := make([]Plan, 0, len(defaults))
	for _, d := range defaults {
		p, ok := byName[strings.ToLower(d.Name)]
		if !ok {
			merged = append(merged, d)
			continue
		}
		if p.ID == "" {
			p.ID = d.ID
		}
		if p.Currency == "" {
			p.Currency = "USD"
		}
		if p.Interval == "" {
			p.Interval = "month"
		}
		merged = append(merged, p)
	}
	return merged
}

// FindPlan ищет тариф по id.
func FindPlan(plans []Plan, id string) (Plan, bool) {
	for _, p := range plans {
		if p.ID == id {
			return p, true
		}
	}
	return Plan{}, false
}

// PlansResponse ответ GET /subscriptions/plans.
type PlansResponse struct {
	Plans []Plan `json:"plans"`
}

// CheckoutSession ответ POST /subscriptions/checkout либо синтезированное
// подтверждение, если сессию оплаты создать не удалось.
type CheckoutSession struct {
	SessionID   string `json:"session_id,omitempty"`
	Token       string `json:"token"`
	RedirectURL string `json:"redirect_url,omitempty"`
	Simulated   bool   `json:"simulated,omitempty"`
}

// Поддерживаемые платёжные провайдеры.
const (
	ProviderStripe = "stripe"
	ProviderPayPal = "paypal"
	ProviderUPI    = "upi"
)

// Providers возвращает список платёжных провайдеров в порядке показа.
func Providers() []string {
	return []string{ProviderStripe, ProviderPayPal, ProviderUPI}
}

// PaymentInfo подтверждение оплаты, прикладываемое к регистрации.
type PaymentInfo struct {
	Provider     string          `json:"provider"`
	Confirmation CheckoutSession `json:"confirmation"`
}

// SubscriptionStatus ответ GET /subscriptions/status.
type SubscriptionStatus struct {
	PlanID    string `json:"plan_id"`
	PlanName  string `json:"plan_name"`
	Status    string `json:"status"`
	RenewsAt  string `json:"renews_at,omitempty"`
	Cancelled bool   `json:"cancelled,omitempty"`
}

// PaymentResult ответ POST /subscriptions/result.
type PaymentResult struct {
	Status string `json:"status"`
}

// Статусы результата оплаты.
const (
	PaymentSuccess = "success"
	PaymentFailed  = "failed"
	PaymentPending = "pending"
)
