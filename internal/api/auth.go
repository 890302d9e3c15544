package api

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/magabrotheeeer/cinestream/internal/models"
)

// Login аутентифицирует пользователя. Сервер ожидает
// application/x-www-form-urlencoded с полями username и password.
func (c *Client) Login(ctx context.Context, creds models.Credentials) (*models.LoginResponse, error) {
	form := url.Values{}
	form.Set("username", creds.Email)
	form.Set("password", creds.Password)

	var resp models.LoginResponse
	err := c.do(ctx, "api.Login", request{
		method:      http.MethodPost,
		path:        "/auth/login",
		body:        strings.NewReader(form.Encode()),
		contentType: "application/x-www-form-urlencoded",
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// Register создаёт учётную запись. Токен сервер не выдаёт, нужен отдельный Login.
func (c *Client) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	r, err := jsonRequest(http.MethodPost, "/auth/register", req)
	if err != nil {
		return nil, err
	}
	var user models.User
	if err := c.do(ctx, "api.Register", r, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Logout инвалидирует токен на сервере.
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, "api.Logout", request{method: http.MethodPost, path: "/auth/logout"}, nil)
}

// GetMe возвращает текущего пользователя.
func (c *Client) GetMe(ctx context.Context) (*models.User, error) {
	var user models.User
	if err := c.do(ctx, "api.GetMe", request{method: http.MethodGet, path: "/users/me"}, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// ListProfiles возвращает профили текущей учётной записи.
func (c *Client) ListProfiles(ctx context.Context) ([]models.Profile, error) {
	var profiles []models.Profile
	if err := c.do(ctx, "api.ListProfiles", request{method: http.MethodGet, path: "/profiles"}, &profiles); err != nil {
		return nil, err
	}
	return profiles, nil
}

// CreateProfile создаёт профиль в текущей учётной записи.
func (c *Client) CreateProfile(ctx context.Context, input models.ProfileInput) (*models.Profile, error) {
	r, err := jsonRequest(http.MethodPost, "/profiles", input)
	if err != nil {
		return nil, err
	}
	var profile models.Profile
	if err := c.do(ctx, "api.CreateProfile", r, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// DeleteProfile удаляет профиль по id.
func (c *Client) DeleteProfile(ctx context.Context, id string) error {
	return c.do(ctx, "api.DeleteProfile", request{
		method: http.MethodDelete,
		path:   "/profiles/" + url.PathEscape(id),
	}, nil)
}
