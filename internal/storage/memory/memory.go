// Package memory реализует хранилище dev API в памяти процесса:
// учётные записи, профили, каталог, отзывы, списки «смотреть позже»,
// подписки и сессии оплаты. Все методы безопасны для конкурентного вызова.
package memory

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/cinestream/internal/models"
)

var (
	// ErrNotFound запись не найдена.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists запись с таким ключом уже есть.
	ErrAlreadyExists = errors.New("already exists")
)

const defaultPageLimit = 20

// Storage хранит все данные dev API.
type Storage struct {
	mu sync.RWMutex

	accounts map[string]*models.Account // по id пользователя
	byEmail  map[string]string          // email в нижнем регистре -> id
	logins   map[string]time.Time       // id пользователя -> последний вход
	revoked  map[string]time.Time       // токен -> момент, после которого запись не нужна

	profiles  map[string][]models.Profile // id пользователя -> профили
	content   []models.Content
	reviews   map[string][]models.Review // id тайтла -> отзывы
	watchlist map[string][]string        // id пользователя -> id тайтлов
	views     map[string]int             // id тайтла -> число открытий

	plans         []models.Plan
	subscriptions map[string]models.SubscriptionStatus
	checkouts     map[string]models.CheckoutRecord
}

// New создаёт хранилище с тарифами по умолчанию и начальным каталогом.
func New() *Storage {
	return &Storage{
		accounts:      make(map[string]*models.Account),
		byEmail:       make(map[string]string),
		logins:        make(map[string]time.Time),
		revoked:       make(map[string]time.Time),
		profiles:      make(map[string][]models.Profile),
		content:       seedContent(),
		reviews:       make(map[string][]models.Review),
		watchlist:     make(map[string][]string),
		views:         make(map[string]int),
		plans:         models.DefaultPlans(),
		subscriptions: make(map[string]models.SubscriptionStatus),
		checkouts:     make(map[string]models.CheckoutRecord),
	}
}

func checkCtx(ctx context.Context, op string) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
		return nil
	}
}

func paginate(total int, page models.Page) (int, int) {
	limit := page.Limit
	if limit <= 0 {
		limit = defaultPageLimit
	}
	start := min(max(page.Offset, 0), total)
	end := min(start+limit, total)
	return start, end
}

// ===== ACCOUNTS =====

// CreateAccount сохраняет учётную запись и возвращает пользователя с присвоенным id.
func (s *Storage) CreateAccount(ctx context.Context, acc models.Account) (models.User, error) {
	const op = "storage.memory.CreateAccount"
	if err := checkCtx(ctx, op); err != nil {
		return models.User{}, err
	}

	email := strings.ToLower(strings.TrimSpace(acc.User.Email))

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byEmail[email]; ok {
		return models.User{}, fmt.Errorf("%s: %w", op, ErrAlreadyExists)
	}
	if acc.User.ID == "" {
		acc.User.ID = uuid.NewString()
	}
	acc.User.Roles = slices.Clone(acc.User.Roles)
	stored := acc
	s.accounts[acc.User.ID] = &stored
	s.byEmail[email] = acc.User.ID
	return acc.User, nil
}

// AccountByEmail ищет учётную запись по email без учёта регистра.
func (s *Storage) AccountByEmail(ctx context.Context, email string) (*models.Account, error) {
	const op = "storage.memory.AccountByEmail"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	acc := *s.accounts[id]
	acc.User.Roles = slices.Clone(acc.User.Roles)
	return &acc, nil
}

// UserByID возвращает пользователя по id.
func (s *Storage) UserByID(ctx context.Context, id string) (*models.User, error) {
	const op = "storage.memory.UserByID"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	acc, ok := s.accounts[id]
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	user := acc.User
	user.Roles = slices.Clone(acc.User.Roles)
	return &user, nil
}

// ListUsers возвращает страницу пользователей в порядке email и их общее число.
func (s *Storage) ListUsers(ctx context.Context, page models.Page) ([]models.User, int, error) {
	const op = "storage.memory.ListUsers"
	if err := checkCtx(ctx, op); err != nil {
		return nil, 0, err
	}

	s.mu.RLock()
	users := make([]models.User, 0, len(s.accounts))
	for _, acc := range s.accounts {
		u := acc.User
		u.Roles = slices.Clone(acc.User.Roles)
		users = append(users, u)
	}
	s.mu.RUnlock()

	slices.SortFunc(users, func(a, b models.User) int { return strings.Compare(a.Email, b.Email) })
	start, end := paginate(len(users), page)
	return users[start:end], len(users), nil
}

// RecordLogin запоминает момент входа пользователя.
func (s *Storage) RecordLogin(ctx context.Context, userID string, at time.Time) error {
	const op = "storage.memory.RecordLogin"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logins[userID] = at
	return nil
}

// RevokeToken отзывает токен до момента until (обычно его exp).
func (s *Storage) RevokeToken(ctx context.Context, token string, until time.Time) error {
	const op = "storage.memory.RevokeToken"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for t, exp := range s.revoked {
		if now.After(exp) {
			delete(s.revoked, t)
		}
	}
	s.revoked[token] = until
	return nil
}

// IsRevoked сообщает, отозван ли токен.
func (s *Storage) IsRevoked(ctx context.Context, token string) (bool, error) {
	const op = "storage.memory.IsRevoked"
	if err := checkCtx(ctx, op); err != nil {
		return false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.revoked[token]
	return ok, nil
}

// ===== PROFILES =====

// ListProfiles возвращает профили пользователя.
func (s *Storage) ListProfiles(ctx context.Context, userID string) ([]models.Profile, error) {
	const op = "storage.memory.ListProfiles"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	profiles := slices.Clone(s.profiles[userID])
	if profiles == nil {
		profiles = []models.Profile{}
	}
	return profiles, nil
}

// CreateProfile добавляет профиль пользователю.
func (s *Storage) CreateProfile(ctx context.Context, userID string, input models.ProfileInput) (models.Profile, error) {
	const op = "storage.memory.CreateProfile"
	if err := checkCtx(ctx, op); err != nil {
		return models.Profile{}, err
	}

	profile := models.Profile{
		ID:        uuid.NewString(),
		Name:      strings.TrimSpace(input.Name),
		AgeRating: input.AgeRating,
	}
	if profile.AgeRating == "" {
		profile.AgeRating = "all"
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[userID] = append(s.profiles[userID], profile)
	return profile, nil
}

// DeleteProfile удаляет профиль пользователя.
func (s *Storage) DeleteProfile(ctx context.Context, userID, id string) error {
	const op = "storage.memory.DeleteProfile"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	profiles := s.profiles[userID]
	idx := slices.IndexFunc(profiles, func(p models.Profile) bool { return p.ID == id })
	if idx < 0 {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	s.profiles[userID] = slices.Delete(profiles, idx, idx+1)
	return nil
}

// ===== SUBSCRIPTIONS =====

// Plans возвращает тарифы.
func (s *Storage) Plans(ctx context.Context) ([]models.Plan, error) {
	const op = "storage.memory.Plans"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.plans), nil
}

// SaveCheckout сохраняет созданную сессию оплаты.
func (s *Storage) SaveCheckout(ctx context.Context, rec models.CheckoutRecord) error {
	const op = "storage.memory.SaveCheckout"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.checkouts[rec.Session.SessionID] = rec
	return nil
}

// Checkout возвращает сессию оплаты по id.
func (s *Storage) Checkout(ctx context.Context, sessionID string) (*models.CheckoutRecord, error) {
	const op = "storage.memory.Checkout"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.checkouts[sessionID]
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return &rec, nil
}

// SetSubscription сохраняет состояние подписки пользователя.
func (s *Storage) SetSubscription(ctx context.Context, userID string, status models.SubscriptionStatus) error {
	const op = "storage.memory.SetSubscription"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscriptions[userID] = status
	return nil
}

// Subscription возвращает состояние подписки; без подписки статус none.
func (s *Storage) Subscription(ctx context.Context, userID string) (models.SubscriptionStatus, error) {
	const op = "storage.memory.Subscription"
	if err := checkCtx(ctx, op); err != nil {
		return models.SubscriptionStatus{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	status, ok := s.subscriptions[userID]
	if !ok {
		return models.SubscriptionStatus{Status: models.SubscriptionNone}, nil
	}
	return status, nil
}

// Analytics считает сводные показатели на момент now.
func (s *Storage) Analytics(ctx context.Context, now time.Time) (models.Analytics, error) {
	const op = "storage.memory.Analytics"
	if err := checkCtx(ctx, op); err != nil {
		return models.Analytics{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var a models.Analytics
	for _, at := range s.logins {
		if now.Sub(at) < 24*time.Hour {
			a.DAU++
		}
	}
	for _, n := range s.views {
		a.MonthlyStreams += n
	}

	var cancelled, total int
	for _, sub := range s.subscriptions {
		total++
		switch sub.Status {
		case models.SubscriptionCancelled:
			cancelled++
		case models.SubscriptionActive:
			if plan, ok := models.FindPlan(s.plans, sub.PlanID); ok && plan.IsPaid() {
				a.Subscribers++
			}
		}
	}
	if total > 0 {
		a.ChurnRate = float64(cancelled) / float64(total)
	}
	return a, nil
}
