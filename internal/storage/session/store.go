// Package session реализует постоянное хранилище сессии клиента:
// токен, запись пользователя и активный профиль под фиксированными ключами.
// Логики здесь нет, только чтение, запись и очистка поверх Backend.
package session

import (
	"fmt"
	"time"

	"github.com/magabrotheeeer/cinestream/internal/models"
)

// Фиксированные ключи хранилища.
const (
	TokenKey   = "cs_token"
	UserKey    = "cs_user"
	ProfileKey = "cs_profile"
)

// Backend описывает хранилище ключ-значение (Redis или файл).
type Backend interface {
	// Get читает значение по ключу, false, если ключа нет.
	Get(key string, result any) (bool, error)
	// Set сохраняет значение с временем жизни (0 означает без срока).
	Set(key string, value any, expiration time.Duration) error
	// Invalidate удаляет ключи одной операцией.
	Invalidate(keys ...string) error
}

// Store постоянное хранилище сессии.
type Store struct {
	backend Backend
	ttl     time.Duration
}

// NewStore создаёт Store поверх backend; ttl применяется ко всем записям.
func NewStore(backend Backend, ttl time.Duration) *Store {
	return &Store{backend: backend, ttl: ttl}
}

// Token возвращает сохранённый токен или пустую строку.
func (s *Store) Token() (string, error) {
	const op = "session.Token"
	var token string
	if _, err := s.backend.Get(TokenKey, &token); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return token, nil
}

// SaveToken сохраняет токен; пустой токен удаляет ключ.
func (s *Store) SaveToken(token string) error {
	const op = "session.SaveToken"
	if token == "" {
		return s.invalidate(op, TokenKey)
	}
	if err := s.backend.Set(TokenKey, token, s.ttl); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// User возвращает сохранённого пользователя или nil.
func (s *Store) User() (*models.User, error) {
	const op = "session.User"
	var user models.User
	found, err := s.backend.Get(UserKey, &user)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !found {
		return nil, nil
	}
	return &user, nil
}

// SaveUser сохраняет пользователя; nil удаляет ключ.
func (s *Store) SaveUser(user *models.User) error {
	const op = "session.SaveUser"
	if user == nil {
		return s.invalidate(op, UserKey)
	}
	if err := s.backend.Set(UserKey, user, s.ttl); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ActiveProfile возвращает сохранённый активный профиль или nil.
func (s *Store) ActiveProfile() (*models.Profile, error) {
	const op = "session.ActiveProfile"
	var profile models.Profile
	found, err := s.backend.Get(ProfileKey, &profile)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !found {
		return nil, nil
	}
	return &profile, nil
}

// SaveActiveProfile сохраняет активный профиль; nil удаляет ключ.
func (s *Store) SaveActiveProfile(profile *models.Profile) error {
	const op = "session.SaveActiveProfile"
	if profile == nil {
		return s.invalidate(op, ProfileKey)
	}
	if err := s.backend.Set(ProfileKey, profile, s.ttl); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ClearAll удаляет все три ключа одной операцией.
func (s *Store) ClearAll() error {
	return s.invalidate("session.ClearAll", TokenKey, UserKey, ProfileKey)
}

func (s *Store) invalidate(op string, keys ...string) error {
	if err := s.backend.Invalidate(keys...); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
