package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/magabrotheeeer/cinestream/internal/models"
)

// HomeSections возвращает подборки главной страницы.
func (c *Client) HomeSections(ctx context.Context) (*models.HomeSections, error) {
	var sections models.HomeSections
	if err := c.do(ctx, "api.HomeSections", request{method: http.MethodGet, path: "/content/home"}, &sections); err != nil {
		return nil, err
	}
	return &sections, nil
}

// Search ищет по каталогу. Пустые параметры в запрос не попадают.
func (c *Client) Search(ctx context.Context, q models.SearchQuery) ([]models.Content, error) {
	query := url.Values{}
	if q.Q != "" {
		query.Set("q", q.Q)
	}
	if q.Genre != "" {
		query.Set("genre", q.Genre)
	}
	if q.Language != "" {
		query.Set("language", q.Language)
	}
	if q.Year > 0 {
		query.Set("year", strconv.Itoa(q.Year))
	}

	var result models.SearchResult
	if err := c.do(ctx, "api.Search", request{
		method: http.MethodGet,
		path:   "/content/search",
		query:  query,
	}, &result); err != nil {
		return nil, err
	}
	return result.Results, nil
}

// ContentDetails возвращает подробности тайтла, включая ссылку на поток.
func (c *Client) ContentDetails(ctx context.Context, id string) (*models.ContentDetails, error) {
	var details models.ContentDetails
	if err := c.do(ctx, "api.ContentDetails", request{
		method: http.MethodGet,
		path:   "/content/" + url.PathEscape(id),
	}, &details); err != nil {
		return nil, err
	}
	return &details, nil
}

// AddToWatchlist добавляет тайтл в список «смотреть позже».
func (c *Client) AddToWatchlist(ctx context.Context, contentID string) error {
	r, err := jsonRequest(http.MethodPost, "/watchlist", map[string]string{"id": contentID})
	if err != nil {
		return err
	}
	return c.do(ctx, "api.AddToWatchlist", r, nil)
}

// RemoveFromWatchlist убирает тайтл из списка.
func (c *Client) RemoveFromWatchlist(ctx context.Context, contentID string) error {
	return c.do(ctx, "api.RemoveFromWatchlist", request{
		method: http.MethodDelete,
		path:   "/watchlist/" + url.PathEscape(contentID),
	}, nil)
}

// Watchlist возвращает список «смотреть позже».
func (c *Client) Watchlist(ctx context.Context) ([]models.WatchlistItem, error) {
	var list models.Watchlist
	if err := c.do(ctx, "api.Watchlist", request{method: http.MethodGet, path: "/watchlist"}, &list); err != nil {
		return nil, err
	}
	return list.Items, nil
}

// SubmitReview отправляет оценку и отзыв.
func (c *Client) SubmitReview(ctx context.Context, contentID string, review models.Review) error {
	r, err := jsonRequest(http.MethodPost, "/content/"+url.PathEscape(contentID)+"/reviews", review)
	if err != nil {
		return err
	}
	return c.do(ctx, "api.SubmitReview", r, nil)
}
