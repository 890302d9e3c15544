// Package api реализует клиент удалённого REST API CineStream.
//
// Все запросы проходят через Client.do: он ограничивает частоту запросов,
// подставляет заголовок Authorization: Bearer, если токен есть в хранилище,
// и разбирает ответ в единой схеме v1 ({"status","data","error"}).
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/magabrotheeeer/cinestream/internal/lib/sl"
)

// MediaType версия схемы ответов, которую понимает клиент.
const MediaType = "application/vnd.cinestream.v1+json"

const (
	statusOK    = "OK"
	statusError = "Error"
)

// TokenSource отдаёт текущий bearer-токен; пустая строка означает, что токена нет.
type TokenSource interface {
	Token() (string, error)
}

// envelope схема ответа v1.
type envelope struct {
	Status string          `json:"status"`
	Error  string          `json:"error,omitempty"`
	Data   json.RawMessage `json:"data,omitempty"`
}

// Client шлюз ко всем операциям удалённого API.
type Client struct {
	baseURL    string
	tokens     TokenSource
	httpClient *http.Client
	limiter    *rate.Limiter
	log        *slog.Logger
}

// Option настраивает Client.
type Option func(*Client)

// WithHTTPClient подменяет http.Client (например, в тестах).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout задаёт таймаут одного запроса.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithRateLimit ограничивает частоту запросов; limit <= 0 снимает ограничение.
func WithRateLimit(limit float64, burst int) Option {
	return func(c *Client) {
		if limit <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 0)
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(limit), burst)
	}
}

// WithLogger задаёт логгер клиента.
func WithLogger(log *slog.Logger) Option {
	return func(c *Client) { c.log = log }
}

// New создаёт клиент для baseURL. При tokens == nil запросы анонимные.
func New(baseURL string, tokens TokenSource, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		tokens:     tokens,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		limiter:    rate.NewLimiter(rate.Inf, 0),
		log:        slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL возвращает адрес API.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// request описывает один вызов API.
type request struct {
	method      string
	path        string
	query       url.Values
	body        io.Reader
	contentType string
}

func jsonRequest(method, path string, payload any) (request, error) {
	req := request{method: method, path: path}
	if payload == nil {
		return req, nil
	}
	buf, err := json.Marshal(payload)
	if err != nil {
		return req, err
	}
	req.body = bytes.NewReader(buf)
	req.contentType = "application/json"
	return req, nil
}

func (c *Client) do(ctx context.Context, op string, r request, out any) error {
	log := c.log.With(sl.Op(op), slog.String("method", r.method), slog.String("path", r.path))

	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	target := c.baseURL + r.path
	if len(r.query) > 0 {
		target += "?" + r.query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, r.method, target, r.body)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Accept", MediaType)
	if r.contentType != "" {
		req.Header.Set("Content-Type", r.contentType)
	}
	if token := c.token(log); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Debug("request failed", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s: read body: %w", op, err)
	}
	log.Debug("response received",
		slog.Int("status", resp.StatusCode),
		slog.Duration("took", time.Since(start)),
	)

	var env envelope
	if len(bytes.TrimSpace(raw)) > 0 {
		if err := json.Unmarshal(raw, &env); err != nil {
			if resp.StatusCode >= http.StatusBadRequest {
				return fmt.Errorf("%s: %w", op, &Error{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)})
			}
			return fmt.Errorf("%s: %w: %w", op, ErrMalformedResponse, err)
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := env.Error
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return fmt.Errorf("%s: %w", op, &Error{StatusCode: resp.StatusCode, Message: msg})
	}
	if env.Status == statusError {
		return fmt.Errorf("%s: %w", op, &Error{StatusCode: resp.StatusCode, Message: env.Error})
	}

	if out == nil {
		return nil
	}
	if env.Status != statusOK || len(env.Data) == 0 || string(env.Data) == "null" {
		return fmt.Errorf("%s: %w: missing data", op, ErrMalformedResponse)
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("%s: %w: %w", op, ErrMalformedResponse, err)
	}
	return nil
}

func (c *Client) token(log *slog.Logger) string {
	if c.tokens == nil {
		return ""
	}
	token, err := c.tokens.Token()
	if err != nil {
		log.Warn("cannot read token, sending anonymous request", sl.Err(err))
		return ""
	}
	return token
}

// IsStatus сообщает, является ли err ответом API с указанным HTTP-статусом.
func IsStatus(err error, status int) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.StatusCode == status
}
