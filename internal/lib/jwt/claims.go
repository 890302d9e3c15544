// Package jwt реализует работу с JWT токенами CineStream.
//
// Клиент только читает срок действия токена без проверки подписи (Expired):
// это удобство интерфейса, а не проверка подлинности. Подлинность каждого
// запроса проверяет сервер, для dev-сервера это делает MakerImpl.ParseToken.
package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrMalformed возвращается, если токен нельзя разобрать даже без проверки подписи.
var ErrMalformed = errors.New("malformed token")

// CustomClaims описывает пользовательские данные, хранящиеся в JWT.
type CustomClaims struct {
	UserID               string   `json:"uid"`
	Email                string   `json:"email"`
	Roles                []string `json:"roles,omitempty"`
	jwt.RegisteredClaims          // ExpiresAt, IssuedAt и пр.
}

// Expired декодирует claim exp без проверки подписи и сообщает,
// наступил ли момент now >= exp. Токен без exp считается действующим.
func Expired(tokenStr string, now time.Time) (bool, error) {
	const op = "jwt.Expired"

	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(tokenStr, &claims); err != nil {
		return false, fmt.Errorf("%s: %w: %w", op, ErrMalformed, err)
	}
	if claims.ExpiresAt == nil {
		return false, nil
	}
	return !now.Before(claims.ExpiresAt.Time), nil
}
