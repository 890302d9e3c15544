// Package session реализует менеджер сессии клиента: единственный источник
// истины о том, выполнен ли вход, кто пользователь и какой профиль активен.
//
// Manager единственный, кто пишет в постоянное хранилище сессии. Каждая
// изменяющая операция синхронно записывает результат в хранилище до возврата,
// поэтому следующий запуск CLI видит согласованное состояние.
//
// Проверка срока действия токена здесь нужна только для удобства интерфейса:
// подпись не проверяется, подлинность токена при каждом запросе проверяет сервер.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/magabrotheeeer/cinestream/internal/lib/jwt"
	"github.com/magabrotheeeer/cinestream/internal/lib/sl"
	"github.com/magabrotheeeer/cinestream/internal/models"
)

// Store описывает постоянное хранилище сессии.
type Store interface {
	Token() (string, error)
	SaveToken(token string) error
	User() (*models.User, error)
	SaveUser(user *models.User) error
	ActiveProfile() (*models.Profile, error)
	SaveActiveProfile(profile *models.Profile) error
	ClearAll() error
}

// Remote описывает вызовы удалённого API, нужные менеджеру.
type Remote interface {
	GetMe(ctx context.Context) (*models.User, error)
	ListProfiles(ctx context.Context) ([]models.Profile, error)
	CreateProfile(ctx context.Context, input models.ProfileInput) (*models.Profile, error)
	DeleteProfile(ctx context.Context, id string) error
	Logout(ctx context.Context) error
}

// ErrNotLoggedIn возвращается операциями, которым нужна активная сессия.
var ErrNotLoggedIn = errors.New("not logged in")

// Manager владеет состоянием сессии в памяти.
type Manager struct {
	mu     sync.Mutex
	state  models.Session
	store  Store
	remote Remote
	log    *slog.Logger
	now    func() time.Time
}

// Option настраивает Manager.
type Option func(*Manager)

// WithClock подменяет источник текущего времени.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// WithLogger задаёт логгер.
func WithLogger(log *slog.Logger) Option {
	return func(m *Manager) { m.log = log }
}

// NewManager создаёт менеджер и заполняет состояние из хранилища.
// Ошибки чтения хранилища логируются, соответствующее поле считается пустым.
// Loading выставляется, если сохранён токен: до Restore сессия не подтверждена.
func NewManager(store Store, remote Remote, opts ...Option) *Manager {
	m := &Manager{
		store:  store,
		remote: remote,
		log:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}

	log := m.log.With(sl.Op("session.NewManager"))

	token, err := store.Token()
	if err != nil {
		log.Warn("cannot read stored token", sl.Err(err))
	}
	user, err := store.User()
	if err != nil {
		log.Warn("cannot read stored user", sl.Err(err))
	}
	profile, err := store.ActiveProfile()
	if err != nil {
		log.Warn("cannot read stored profile", sl.Err(err))
	}

	m.state = models.Session{
		Token:         token,
		User:          user,
		ActiveProfile: profile,
		Loading:       token != "",
	}
	return m
}

// Restore подтверждает сохранённую сессию при старте и никогда не возвращает ошибку.
// Истёкший или нечитаемый токен, а также любая ошибка GET /users/me приводят
// к чистому состоянию «не выполнен вход». Ошибка получения профилей не считается
// потерей сессии: сохранённый активный профиль не сбрасывается, список профилей
// состоит только из него (или пуст, если профиль не выбран).
func (m *Manager) Restore(ctx context.Context) {
	const op = "session.Restore"
	log := m.log.With(sl.Op(op))

	m.mu.Lock()
	token := m.state.Token
	m.state.Loading = token != ""
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		m.state.Loading = false
		m.mu.Unlock()
	}()

	if token == "" {
		log.Debug("no stored token")
		return
	}

	expired, err := jwt.Expired(token, m.now())
	if err != nil {
		log.Info("stored token is unreadable, logging out", sl.Err(err))
		m.Logout()
		return
	}
	if expired {
		log.Info("stored token has expired, logging out")
		m.Logout()
		return
	}

	me, err := m.remote.GetMe(ctx)
	if err == nil && me == nil {
		err = errors.New("empty user")
	}
	if err != nil {
		log.Info("cannot restore session, logging out", sl.Err(err))
		m.Logout()
		return
	}

	profiles, profilesErr := m.remote.ListProfiles(ctx)
	if profilesErr != nil {
		log.Warn("cannot list profiles, keeping stored active profile", sl.Err(profilesErr))
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state.Token != token {
		// за время запроса сессию сменили, результат устарел
		log.Debug("session changed during restore, dropping result")
		return
	}

	m.state.User = me
	m.persistUser(log, me)
	if profilesErr != nil {
		// список неизвестен: сохранённый профиль остаётся единственным элементом
		m.state.Profiles = nil
		if active := m.state.ActiveProfile; active != nil {
			m.state.Profiles = []models.Profile{*active}
		}
	} else {
		m.applyProfiles(log, profiles, true)
	}
	log.Info("session restored", slog.String("user_id", me.ID), slog.Int("profiles", len(m.state.Profiles)))
}

// Login сохраняет токен и пользователя (user может быть nil и дозаполняется позже).
// Профили не запрашиваются, это делает вызывающий.
func (m *Manager) Login(token string, user *models.User) {
	log := m.log.With(sl.Op("session.Login"))

	m.mu.Lock()
	defer m.mu.Unlock()

	m.state.Token = token
	m.state.User = cloneUser(user)
	m.state.Loading = false

	if err := m.store.SaveToken(token); err != nil {
		log.Error("cannot persist token", sl.Err(err))
	}
	m.persistUser(log, m.state.User)
}

// Logout сбрасывает сессию и очищает все ключи хранилища. Идемпотентна.
func (m *Manager) Logout() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.state = models.Session{}
	if err := m.store.ClearAll(); err != nil {
		m.log.Error("cannot clear session store", sl.Op("session.Logout"), sl.Err(err))
	}
}

// SignOut уведомляет сервер о выходе (ошибка сервера только логируется) и вызывает Logout.
func (m *Manager) SignOut(ctx context.Context) {
	m.mu.Lock()
	loggedIn := m.state.Token != ""
	m.mu.Unlock()

	if loggedIn {
		if err := m.remote.Logout(ctx); err != nil {
			m.log.Warn("server logout failed", sl.Op("session.SignOut"), sl.Err(err))
		}
	}
	m.Logout()
}

// SetActiveProfile делает профиль активным и сохраняет его.
// Принадлежность профиля списку Profiles не проверяется: вызывающий обязан
// передавать только значения из Session().Profiles.
func (m *Manager) SetActiveProfile(profile models.Profile) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.state.ActiveProfile = &profile
	if err := m.store.SaveActiveProfile(&profile); err != nil {
		m.log.Error("cannot persist active profile", sl.Op("session.SetActiveProfile"), sl.Err(err))
	}
}

// HasRole возвращает true для пустой роли, иначе проверяет наличие роли у пользователя.
func (m *Manager) HasRole(role string) bool {
	if role == "" {
		return true
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.User.HasRole(role)
}

// Session возвращает копию текущего состояния.
func (m *Manager) Session() models.Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := m.state
	s.User = cloneUser(m.state.User)
	s.Profiles = slices.Clone(m.state.Profiles)
	if m.state.ActiveProfile != nil {
		p := *m.state.ActiveProfile
		s.ActiveProfile = &p
	}
	return s
}

// RefreshProfiles заново получает список профилей.
func (m *Manager) RefreshProfiles(ctx context.Context) error {
	const op = "session.RefreshProfiles"
	if !m.Session().LoggedIn() {
		return fmt.Errorf("%s: %w", op, ErrNotLoggedIn)
	}
	profiles, err := m.remote.ListProfiles(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.applyProfiles(m.log.With(sl.Op(op)), profiles, false)
	return nil
}

// CreateProfile создаёт профиль, обновляет список и делает новый профиль активным.
func (m *Manager) CreateProfile(ctx context.Context, input models.ProfileInput) (*models.Profile, error) {
	const op = "session.CreateProfile"
	log := m.log.With(sl.Op(op))
	if !m.Session().LoggedIn() {
		return nil, fmt.Errorf("%s: %w", op, ErrNotLoggedIn)
	}

	created, err := m.remote.CreateProfile(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	profiles, err := m.remote.ListProfiles(ctx)

	m.mu.Lock()
	if err != nil {
		log.Warn("cannot refresh profiles, appending locally", sl.Err(err))
		profiles = append(slices.Clone(m.state.Profiles), *created)
	}
	m.applyProfiles(log, profiles, false)
	m.mu.Unlock()

	m.SetActiveProfile(*created)
	return created, nil
}

// DeleteProfile удаляет профиль и обновляет список.
// Если удалён активный профиль, активный профиль сбрасывается.
func (m *Manager) DeleteProfile(ctx context.Context, id string) error {
	const op = "session.DeleteProfile"
	log := m.log.With(sl.Op(op))
	if !m.Session().LoggedIn() {
		return fmt.Errorf("%s: %w", op, ErrNotLoggedIn)
	}

	if err := m.remote.DeleteProfile(ctx, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	profiles, err := m.remote.ListProfiles(ctx)

	m.mu.Lock()
	defer m.mu.Unlock()
	if err != nil {
		log.Warn("cannot refresh profiles, removing locally", sl.Err(err))
		profiles = slices.DeleteFunc(slices.Clone(m.state.Profiles), func(p models.Profile) bool {
			return p.ID == id
		})
	}
	m.applyProfiles(log, profiles, false)
	return nil
}

// applyProfiles заменяет список профилей и поддерживает инвариант:
// активный профиль либо из списка, либо отсутствует.
// При pickFirst и отсутствии активного профиля активируется первый.
// Вызывается под m.mu.
func (m *Manager) applyProfiles(log *slog.Logger, profiles []models.Profile, pickFirst bool) {
	m.state.Profiles = slices.Clone(profiles)

	if active := m.state.ActiveProfile; active != nil {
		idx := slices.IndexFunc(profiles, func(p models.Profile) bool { return p.ID == active.ID })
		if idx < 0 {
			log.Info("active profile no longer exists", slog.String("profile_id", active.ID))
			m.state.ActiveProfile = nil
		} else {
			fresh := profiles[idx]
			m.state.ActiveProfile = &fresh
		}
		m.persistProfile(log, m.state.ActiveProfile)
	}

	if m.state.ActiveProfile == nil && pickFirst && len(profiles) > 0 {
		first := profiles[0]
		m.state.ActiveProfile = &first
		m.persistProfile(log, &first)
	}
}

func (m *Manager) persistUser(log *slog.Logger, user *models.User) {
	if err := m.store.SaveUser(user); err != nil {
		log.Error("cannot persist user", sl.Err(err))
	}
}

func (m *Manager) persistProfile(log *slog.Logger, profile *models.Profile) {
	if err := m.store.SaveActiveProfile(profile); err != nil {
		log.Error("cannot persist active profile", sl.Err(err))
	}
}

func cloneUser(u *models.User) *models.User {
	if u == nil {
		return nil
	}
	c := *u
	c.Roles = slices.Clone(u.Roles)
	return &c
}
