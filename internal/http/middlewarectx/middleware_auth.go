// Package middlewarectx содержит HTTP middleware dev API.
//
// JWTMiddleware проверяет наличие и валидность JWT токена в заголовке Authorization
// и в случае успеха добавляет в контекст id пользователя, его роли и сам токен
// для дальнейшего использования в обработчиках.
//
// В случае ошибки проверки возвращает HTTP 401 Unauthorized с сообщением об ошибке.
package middlewarectx

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/cinestream/internal/http/response"
	"github.com/magabrotheeeer/cinestream/internal/lib/sl"
)

// Key тип для ключей контекста HTTP-запроса.
type Key string

const (
	// UserID ключ для id пользователя в контексте
	UserID Key = "user_id"
	// Roles ключ для ролей пользователя в контексте
	Roles Key = "roles"
	// Token ключ для исходного bearer-токена в контексте
	Token Key = "token"
)

// JWTMiddleware возвращает HTTP middleware, который требует валидный JWT в заголовке Authorization.
func JWTMiddleware(authClient Service, log *slog.Logger) func(http.Handler) http.Handler {
	return jwtMiddleware(authClient, log, true)
}

// OptionalJWTMiddleware пропускает анонимные запросы, но при наличии валидного токена
// заполняет контекст так же, как JWTMiddleware. Невалидный токен отклоняется.
func OptionalJWTMiddleware(authClient Service, log *slog.Logger) func(http.Handler) http.Handler {
	return jwtMiddleware(authClient, log, false)
}

func jwtMiddleware(authClient Service, log *slog.Logger, required bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.JWTMiddleware"

			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" && !required {
				next.ServeHTTP(w, r)
				return
			}
			if !strings.HasPrefix(authHeader, "Bearer ") {
				log.Error("missing or invalid authorization header")
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("missing or invalid authorization header"))
				return
			}
			tokenStr := strings.TrimPrefix(authHeader, "Bearer ")

			claims, err := authClient.ValidateToken(r.Context(), tokenStr)
			if err != nil {
				log.Error("invalid or expired token", sl.Err(err))
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("invalid or expired token"))
				return
			}
			ctx := context.WithValue(r.Context(), UserID, claims.UserID)
			ctx = context.WithValue(ctx, Roles, claims.Roles)
			ctx = context.WithValue(ctx, Token, tokenStr)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserIDFrom возвращает id пользователя из контекста либо пустую строку.
func UserIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(UserID).(string)
	return id
}

// RolesFrom возвращает роли пользователя из контекста.
func RolesFrom(ctx context.Context) []string {
	roles, _ := ctx.Value(Roles).([]string)
	return roles
}

// TokenFrom возвращает bearer-токен из контекста.
func TokenFrom(ctx context.Context) string {
	token, _ := ctx.Value(Token).(string)
	return token
}
