package api

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"

	"github.com/magabrotheeeer/cinestream/internal/models"
)

func pageQuery(p models.Page) url.Values {
	query := url.Values{}
	if p.Limit > 0 {
		query.Set("limit", strconv.Itoa(p.Limit))
	}
	if p.Offset > 0 {
		query.Set("offset", strconv.Itoa(p.Offset))
	}
	return query
}

// AdminListContent возвращает тайтлы для админки с пагинацией.
func (c *Client) AdminListContent(ctx context.Context, page models.Page) (*models.AdminContentList, error) {
	var list models.AdminContentList
	if err := c.do(ctx, "api.AdminListContent", request{
		method: http.MethodGet,
		path:   "/admin/content",
		query:  pageQuery(page),
	}, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// AdminCreateContent создаёт тайтл. Данные уходят как multipart/form-data.
func (c *Client) AdminCreateContent(ctx context.Context, input models.ContentInput) (*models.Content, error) {
	const op = "api.AdminCreateContent"

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fields := []struct{ name, value string }{
		{"title", input.Title},
		{"genre", input.Genre},
		{"language", input.Language},
		{"stream_url", input.StreamURL},
		{"thumbnail", input.Thumbnail},
	}
	if input.Year > 0 {
		fields = append(fields, struct{ name, value string }{"year", strconv.Itoa(input.Year)})
	}
	for _, f := range fields {
		if f.value == "" {
			continue
		}
		if err := mw.WriteField(f.name, f.value); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var content models.Content
	if err := c.do(ctx, op, request{
		method:      http.MethodPost,
		path:        "/admin/content",
		body:        &buf,
		contentType: mw.FormDataContentType(),
	}, &content); err != nil {
		return nil, err
	}
	return &content, nil
}

// AdminUpdateContent частично обновляет тайтл.
func (c *Client) AdminUpdateContent(ctx context.Context, id string, patch models.ContentPatch) (*models.Content, error) {
	r, err := jsonRequest(http.MethodPut, "/admin/content/"+url.PathEscape(id), patch)
	if err != nil {
		return nil, err
	}
	var content models.Content
	if err := c.do(ctx, "api.AdminUpdateContent", r, &content); err != nil {
		return nil, err
	}
	return &content, nil
}

// AdminDeleteContent удаляет тайтл.
func (c *Client) AdminDeleteContent(ctx context.Context, id string) error {
	return c.do(ctx, "api.AdminDeleteContent", request{
		method: http.MethodDelete,
		path:   "/admin/content/" + url.PathEscape(id),
	}, nil)
}

// AdminUsers возвращает пользователей для админки.
func (c *Client) AdminUsers(ctx context.Context, page models.Page) (*models.AdminUserList, error) {
	var list models.AdminUserList
	if err := c.do(ctx, "api.AdminUsers", request{
		method: http.MethodGet,
		path:   "/admin/users",
		query:  pageQuery(page),
	}, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// AdminAnalytics возвращает сводные показатели.
func (c *Client) AdminAnalytics(ctx context.Context) (*models.Analytics, error) {
	var analytics models.Analytics
	if err := c.do(ctx, "api.AdminAnalytics", request{method: http.MethodGet, path: "/admin/analytics"}, &analytics); err != nil {
		return nil, err
	}
	return &analytics, nil
}
