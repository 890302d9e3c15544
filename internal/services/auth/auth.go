// Package services содержит логику бизнес-уровня dev API для работы с учётными записями
// и аутентификацией: регистрация с выбором тарифа, вход, выход и проверка JWT.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/magabrotheeeer/cinestream/internal/lib/jwt"
	"github.com/magabrotheeeer/cinestream/internal/lib/month"
	"github.com/magabrotheeeer/cinestream/internal/lib/password"
	"github.com/magabrotheeeer/cinestream/internal/models"
	"github.com/magabrotheeeer/cinestream/internal/storage/memory"
)

var (
	// ErrInvalidCredentials неизвестный email или неверный пароль.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrEmailTaken учётная запись с таким email уже есть.
	ErrEmailTaken = errors.New("email already registered")
	// ErrUnknownPlan тариф не найден.
	ErrUnknownPlan = errors.New("unknown plan")
	// ErrPaymentRequired платный тариф без подтверждения оплаты.
	ErrPaymentRequired = errors.New("payment confirmation required")
	// ErrTokenRevoked токен отозван через logout.
	ErrTokenRevoked = errors.New("token revoked")
)

// UserRepository описывает контракт хранилища учётных записей.
type UserRepository interface {
	CreateAccount(ctx context.Context, acc models.Account) (models.User, error)
	AccountByEmail(ctx context.Context, email string) (*models.Account, error)
	RecordLogin(ctx context.Context, userID string, at time.Time) error
	RevokeToken(ctx context.Context, token string, until time.Time) error
	IsRevoked(ctx context.Context, token string) (bool, error)
}

// SetupRepository описывает данные, создаваемые вместе с учётной записью.
type SetupRepository interface {
	Plans(ctx context.Context) ([]models.Plan, error)
	CreateProfile(ctx context.Context, userID string, input models.ProfileInput) (models.Profile, error)
	SetSubscription(ctx context.Context, userID string, status models.SubscriptionStatus) error
}

// AuthService отвечает за регистрацию, авторизацию и валидацию JWT.
type AuthService struct {
	users    UserRepository
	setup    SetupRepository
	jwtMaker jwt.Maker
	now      func() time.Time
}

// NewAuthService создает новый экземпляр AuthService.
func NewAuthService(users UserRepository, setup SetupRepository, jwtMaker jwt.Maker) *AuthService {
	return &AuthService{
		users:    users,
		setup:    setup,
		jwtMaker: jwtMaker,
		now:      time.Now,
	}
}

// Register создает пользователя с ролью "user", основным профилем и подпиской на выбранный тариф.
// Платный тариф требует подтверждения оплаты.
func (s *AuthService) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	const op = "services.auth.Register"

	plans, err := s.setup.Plans(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	plan, ok := models.FindPlan(plans, req.PlanID)
	if !ok {
		return nil, fmt.Errorf("%s: %w: %q", op, ErrUnknownPlan, req.PlanID)
	}
	confirmed := req.PaymentConfirmation != nil && req.PaymentConfirmation.Confirmation.Token != ""
	if plan.IsPaid() && !confirmed {
		return nil, fmt.Errorf("%s: %w", op, ErrPaymentRequired)
	}

	hashed, err := password.GetHash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	user, err := s.users.CreateAccount(ctx, models.Account{
		User: models.User{
			Email: strings.TrimSpace(req.Email),
			Name:  strings.TrimSpace(req.Name),
			Roles: []string{models.RoleUser}, // дефолтная роль при регистрации
		},
		PasswordHash: hashed,
		Age:          req.Age,
		Phone:        strings.TrimSpace(req.Phone),
		PlanID:       plan.ID,
		CreatedAt:    s.now().UTC(),
	})
	if errors.Is(err, memory.ErrAlreadyExists) {
		return nil, fmt.Errorf("%s: %w", op, ErrEmailTaken)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if _, err := s.setup.CreateProfile(ctx, user.ID, models.ProfileInput{Name: firstName(user.Name)}); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	status := models.SubscriptionStatus{
		PlanID:   plan.ID,
		PlanName: plan.Name,
		Status:   models.SubscriptionActive,
		RenewsAt: month.RenewalDate(s.now(), plan.Interval),
	}
	if err := s.setup.SetSubscription(ctx, user.ID, status); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &user, nil
}

// Login проверяет пароль пользователя и выдаёт JWT.
func (s *AuthService) Login(ctx context.Context, email, rawPassword string) (string, *models.User, error) {
	const op = "services.auth.Login"

	acc, err := s.users.AccountByEmail(ctx, email)
	if errors.Is(err, memory.ErrNotFound) {
		return "", nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}
	if err != nil {
		return "", nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := password.CompareHash(acc.PasswordHash, rawPassword); err != nil {
		return "", nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	token, err := s.jwtMaker.GenerateToken(acc.User)
	if err != nil {
		return "", nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := s.users.RecordLogin(ctx, acc.User.ID, s.now()); err != nil {
		return "", nil, fmt.Errorf("%s: %w", op, err)
	}
	user := acc.User
	return token, &user, nil
}

// ValidateToken проверяет подпись, срок действия и отзыв токена.
func (s *AuthService) ValidateToken(ctx context.Context, token string) (*jwt.CustomClaims, error) {
	const op = "services.auth.ValidateToken"

	claims, err := s.jwtMaker.ParseToken(token)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	revoked, err := s.users.IsRevoked(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if revoked {
		return nil, fmt.Errorf("%s: %w", op, ErrTokenRevoked)
	}
	return claims, nil
}

// Logout отзывает токен до истечения его срока.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	const op = "services.auth.Logout"

	claims, err := s.jwtMaker.ParseToken(token)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	until := s.now().Add(24 * time.Hour)
	if claims.ExpiresAt != nil {
		until = claims.ExpiresAt.Time
	}
	if err := s.users.RevokeToken(ctx, token, until); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func firstName(name string) string {
	if fields := strings.Fields(name); len(fields) > 0 {
		return fields[0]
	}
	return "Main"
}
