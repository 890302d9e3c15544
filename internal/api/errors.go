package api

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrUnauthorized токен отсутствует, истёк или отклонён сервером (401).
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden у пользователя нет нужной роли (403).
	ErrForbidden = errors.New("forbidden")
	// ErrNotFound ресурс не найден (404).
	ErrNotFound = errors.New("not found")
	// ErrMalformedResponse тело ответа не соответствует схеме v1.
	ErrMalformedResponse = errors.New("malformed response")
)

// Error ответ API с кодом ошибки.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

// Is сопоставляет HTTP-статус с сигнальными ошибками пакета.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized
	case ErrForbidden:
		return e.StatusCode == http.StatusForbidden
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	}
	return false
}
