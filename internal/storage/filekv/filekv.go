// Package filekv реализует хранилище ключ-значение в одном JSON-файле.
// Это локальный аналог localStorage для CLI: файл перечитывается при каждом
// чтении и перезаписывается атомарно (через временный файл и rename).
package filekv

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

type entry struct {
	Value     json.RawMessage `json:"value"`
	ExpiresAt *time.Time      `json:"expires_at,omitempty"`
}

// Store файловое хранилище ключ-значение.
type Store struct {
	mu   sync.Mutex
	path string
	now  func() time.Time
}

// New создаёт хранилище по пути path; каталог создаётся при первой записи.
func New(path string) *Store {
	return &Store{path: path, now: time.Now}
}

// DefaultPath возвращает путь к файлу сессии в пользовательском каталоге конфигурации.
func DefaultPath() (string, error) {
	const op = "filekv.DefaultPath"
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return filepath.Join(dir, "cinestream", "session.json"), nil
}

// Path возвращает путь к файлу хранилища.
func (s *Store) Path() string {
	return s.path
}

// Get читает значение по ключу в result. Возвращает false, если ключа нет или он истёк.
func (s *Store) Get(key string, result any) (bool, error) {
	const op = "filekv.Get"
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.load()
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	e, ok := data[key]
	if !ok || s.expired(e) {
		return false, nil
	}
	if err := json.Unmarshal(e.Value, result); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return true, nil
}

// Set сохраняет значение; expiration 0 означает хранение без срока.
func (s *Store) Set(key string, value any, expiration time.Duration) error {
	const op = "filekv.Set"
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.load()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	e := entry{Value: raw}
	if expiration > 0 {
		at := s.now().Add(expiration)
		e.ExpiresAt = &at
	}
	data[key] = e
	if err := s.save(data); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Invalidate удаляет ключи за одну перезапись файла.
func (s *Store) Invalidate(keys ...string) error {
	const op = "filekv.Invalidate"
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.load()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	changed := false
	for _, k := range keys {
		if _, ok := data[k]; ok {
			delete(data, k)
			changed = true
		}
	}
	if !changed {
		return nil
	}
	if err := s.save(data); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (s *Store) expired(e entry) bool {
	return e.ExpiresAt != nil && !s.now().Before(*e.ExpiresAt)
}

func (s *Store) load() (map[string]entry, error) {
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]entry{}, nil
	}
	if err != nil {
		return nil, err
	}
	data := map[string]entry{}
	if len(raw) == 0 {
		return data, nil
	}
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("corrupted store %s: %w", s.path, err)
	}
	return data, nil
}

func (s *Store) save(data map[string]entry) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return err
	}
	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".session-*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(raw); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Chmod(0o600); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), s.path)
}
