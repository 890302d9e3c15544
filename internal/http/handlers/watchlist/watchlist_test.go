package watchlist

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/cinestream/internal/http/middlewarectx"
	"github.com/magabrotheeeer/cinestream/internal/storage/memory"
)

func newRouter(t *testing.T) (http.Handler, *memory.Storage) {
	t.Helper()
	store := memory.New()
	h := New(slog.New(slog.NewTextHandler(io.Discard, nil)), store)

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), middlewarectx.UserID, "u1")
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	})
	r.Get("/watchlist", h.List)
	r.Post("/watchlist", h.Add)
	r.Delete("/watchlist/{id}", h.Remove)
	return r, store
}

func do(router http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func TestAdd(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		expectedStatus int
		expectedBody   string
	}{
		{name: "тайтл добавлен", body: `{"id":"c-001"}`, expectedStatus: http.StatusOK, expectedBody: `"status":"OK"`},
		{name: "неизвестный тайтл", body: `{"id":"c-999"}`, expectedStatus: http.StatusNotFound, expectedBody: `"error":"content not found"`},
		{name: "пустой id", body: `{}`, expectedStatus: http.StatusUnprocessableEntity, expectedBody: `field ID is a required field`},
		{name: "некорректный json", body: `[`, expectedStatus: http.StatusBadRequest, expectedBody: `"error":"invalid request body"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, _ := newRouter(t)
			rr := do(router, http.MethodPost, "/watchlist", tt.body)

			assert.Equal(t, tt.expectedStatus, rr.Code)
			assert.Contains(t, rr.Body.String(), tt.expectedBody)
		})
	}
}

func TestListAndRemove(t *testing.T) {
	router, store := newRouter(t)

	rr := do(router, http.MethodGet, "/watchlist", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"items":[]`)

	require.NoError(t, store.AddToWatchlist(context.Background(), "u1", "c-002"))
	require.NoError(t, store.AddToWatchlist(context.Background(), "u1", "c-002"))

	rr = do(router, http.MethodGet, "/watchlist", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 1, strings.Count(rr.Body.String(), `"id":"c-002","content"`))

	rr = do(router, http.MethodDelete, "/watchlist/c-002", "")
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = do(router, http.MethodDelete, "/watchlist/c-002", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Contains(t, rr.Body.String(), `"error":"content is not in watchlist"`)
}
