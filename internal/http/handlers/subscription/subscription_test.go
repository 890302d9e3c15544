package subscription

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/cinestream/internal/http/middlewarectx"
	"github.com/magabrotheeeer/cinestream/internal/models"
	"github.com/magabrotheeeer/cinestream/internal/storage/memory"
)

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func newHandler() (*Handler, *memory.Storage) {
	store := memory.New()
	h := New(newNoopLogger(), store, "https://pay.cinestream.local/checkout")
	h.now = func() time.Time { return time.Date(2025, 1, 31, 10, 0, 0, 0, time.UTC) }
	return h, store
}

func withUser(r *http.Request, userID string) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), middlewarectx.UserID, userID))
}

type envelope[T any] struct {
	Status string `json:"status"`
	Error  string `json:"error"`
	Data   T      `json:"data"`
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) envelope[T] {
	t.Helper()
	var env envelope[T]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func TestPlans(t *testing.T) {
	h, _ := newHandler()
	w := httptest.NewRecorder()

	h.Plans(w, httptest.NewRequest(http.MethodGet, "/subscriptions/plans", nil))

	require.Equal(t, http.StatusOK, w.Code)
	env := decode[models.PlansResponse](t, w)
	assert.Equal(t, "OK", env.Status)
	require.Len(t, env.Data.Plans, 3)
	assert.Equal(t, "free", env.Data.Plans[0].ID)
}

func TestCheckout(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		expectedStatus int
		expectedError  string
	}{
		{name: "платный тариф", body: `{"plan_id":"pro"}`, expectedStatus: http.StatusOK},
		{name: "бесплатный тариф", body: `{"plan_id":"free"}`, expectedStatus: http.StatusBadRequest, expectedError: "plan does not require payment"},
		{name: "неизвестный тариф", body: `{"plan_id":"gold"}`, expectedStatus: http.StatusBadRequest, expectedError: "unknown plan"},
		{name: "нет plan_id", body: `{}`, expectedStatus: http.StatusUnprocessableEntity, expectedError: "field PlanID is a required field"},
		{name: "некорректный JSON", body: `plan`, expectedStatus: http.StatusBadRequest, expectedError: "invalid request body"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, store := newHandler()
			w := httptest.NewRecorder()

			h.Checkout(w, httptest.NewRequest(http.MethodPost, "/subscriptions/checkout", strings.NewReader(tt.body)))

			require.Equal(t, tt.expectedStatus, w.Code)
			env := decode[models.CheckoutSession](t, w)
			if tt.expectedError != "" {
				assert.Equal(t, "Error", env.Status)
				assert.Equal(t, tt.expectedError, env.Error)
				return
			}

			assert.True(t, strings.HasPrefix(env.Data.SessionID, "cs_"))
			assert.True(t, strings.HasPrefix(env.Data.Token, "pay_"))
			assert.Equal(t, "https://pay.cinestream.local/checkout?session_id="+env.Data.SessionID, env.Data.RedirectURL)
			assert.False(t, env.Data.Simulated)

			rec, err := store.Checkout(context.Background(), env.Data.SessionID)
			require.NoError(t, err)
			assert.Equal(t, "pro", rec.PlanID)
		})
	}
}

func TestResult(t *testing.T) {
	tests := []struct {
		name               string
		status             string
		expectedResult     string
		expectSubscription string
	}{
		{name: "без статуса считается успехом", status: "", expectedResult: models.PaymentSuccess, expectSubscription: models.SubscriptionActive},
		{name: "paid", status: "PAID", expectedResult: models.PaymentSuccess, expectSubscription: models.SubscriptionActive},
		{name: "pending", status: "pending", expectedResult: models.PaymentPending, expectSubscription: models.SubscriptionNone},
		{name: "cancelled", status: "cancelled", expectedResult: models.PaymentFailed, expectSubscription: models.SubscriptionNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, store := newHandler()
			require.NoError(t, store.SaveCheckout(context.Background(), models.CheckoutRecord{
				Session: models.CheckoutSession{SessionID: "cs_1", Token: "pay_1"},
				PlanID:  "entrepreneur",
			}))

			body := `{"session_id":"cs_1","status":"` + tt.status + `"}`
			w := httptest.NewRecorder()
			h.Result(w, withUser(httptest.NewRequest(http.MethodPost, "/subscriptions/result", strings.NewReader(body)), "u1"))

			require.Equal(t, http.StatusOK, w.Code)
			env := decode[models.PaymentResult](t, w)
			assert.Equal(t, tt.expectedResult, env.Data.Status)

			sub, err := store.Subscription(context.Background(), "u1")
			require.NoError(t, err)
			assert.Equal(t, tt.expectSubscription, sub.Status)
			if tt.expectSubscription == models.SubscriptionActive {
				assert.Equal(t, "entrepreneur", sub.PlanID)
				assert.Equal(t, "Entrepreneur", sub.PlanName)
				assert.Equal(t, "2025-02-28", sub.RenewsAt)
			}
		})
	}
}

func TestResult_Errors(t *testing.T) {
	h, _ := newHandler()

	w := httptest.NewRecorder()
	h.Result(w, withUser(httptest.NewRequest(http.MethodPost, "/subscriptions/result", strings.NewReader(`{"session_id":"cs_missing"}`)), "u1"))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = httptest.NewRecorder()
	h.Result(w, withUser(httptest.NewRequest(http.MethodPost, "/subscriptions/result", strings.NewReader(`{"status":"paid"}`)), "u1"))
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "field SessionID is a required field")

	w = httptest.NewRecorder()
	h.Result(w, withUser(httptest.NewRequest(http.MethodPost, "/subscriptions/result", strings.NewReader(`{"session_id":"cs_1","status":"refunded"}`)), "u1"))
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "field Status must be one of")
}

func TestStatus_NoSubscription(t *testing.T) {
	h, _ := newHandler()
	w := httptest.NewRecorder()

	h.Status(w, withUser(httptest.NewRequest(http.MethodGet, "/subscriptions/status", nil), "u1"))

	require.Equal(t, http.StatusOK, w.Code)
	env := decode[models.SubscriptionStatus](t, w)
	assert.Equal(t, models.SubscriptionNone, env.Data.Status)
}
