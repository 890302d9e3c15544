package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	customjwt "github.com/magabrotheeeer/cinestream/internal/lib/jwt"
	"github.com/magabrotheeeer/cinestream/internal/lib/password"
	"github.com/magabrotheeeer/cinestream/internal/models"
	services "github.com/magabrotheeeer/cinestream/internal/services/auth"
	"github.com/magabrotheeeer/cinestream/internal/storage/memory"
)

// Мок для UserRepository
type UserRepoMock struct {
	mock.Mock
}

func (m *UserRepoMock) CreateAccount(ctx context.Context, acc models.Account) (models.User, error) {
	args := m.Called(ctx, acc)
	return args.Get(0).(models.User), args.Error(1)
}

func (m *UserRepoMock) AccountByEmail(ctx context.Context, email string) (*models.Account, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *UserRepoMock) RecordLogin(ctx context.Context, userID string, at time.Time) error {
	return m.Called(ctx, userID, at).Error(0)
}

func (m *UserRepoMock) RevokeToken(ctx context.Context, token string, until time.Time) error {
	return m.Called(ctx, token, until).Error(0)
}

func (m *UserRepoMock) IsRevoked(ctx context.Context, token string) (bool, error) {
	args := m.Called(ctx, token)
	return args.Bool(0), args.Error(1)
}

// Мок для SetupRepository
type SetupRepoMock struct {
	mock.Mock
}

func (m *SetupRepoMock) Plans(ctx context.Context) ([]models.Plan, error) {
	args := m.Called(ctx)
	plans, _ := args.Get(0).([]models.Plan)
	return plans, args.Error(1)
}

func (m *SetupRepoMock) CreateProfile(ctx context.Context, userID string, input models.ProfileInput) (models.Profile, error) {
	args := m.Called(ctx, userID, input)
	return args.Get(0).(models.Profile), args.Error(1)
}

func (m *SetupRepoMock) SetSubscription(ctx context.Context, userID string, status models.SubscriptionStatus) error {
	return m.Called(ctx, userID, status).Error(0)
}

// Мок для jwt.Maker
type JwtMakerMock struct {
	mock.Mock
}

func (m *JwtMakerMock) GenerateToken(user models.User) (string, error) {
	args := m.Called(user)
	return args.String(0), args.Error(1)
}

func (m *JwtMakerMock) ParseToken(token string) (*customjwt.CustomClaims, error) {
	args := m.Called(token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*customjwt.CustomClaims), args.Error(1)
}

func baseRequest() models.RegisterRequest {
	return models.RegisterRequest{
		Name:     "Ann Lee",
		Age:      30,
		Phone:    "5551234",
		Email:    "ann@x.com",
		Password: "secret1",
		PlanID:   "free",
		PlanName: "Free",
	}
}

func TestAuthService_Register(t *testing.T) {
	created := models.User{ID: "u1", Email: "ann@x.com", Name: "Ann Lee", Roles: []string{"user"}}

	tests := []struct {
		name       string
		mutate     func(r *models.RegisterRequest)
		setupMocks func(u *UserRepoMock, s *SetupRepoMock)
		wantErr    error
	}{
		{
			name:   "free plan",
			mutate: func(_ *models.RegisterRequest) {},
			setupMocks: func(u *UserRepoMock, s *SetupRepoMock) {
				s.On("Plans", mock.Anything).Return(models.DefaultPlans(), nil).Once()
				u.On("CreateAccount", mock.Anything, mock.MatchedBy(func(acc models.Account) bool {
					return acc.User.Email == "ann@x.com" &&
						acc.PasswordHash != "" && acc.PasswordHash != "secret1" &&
						acc.User.HasRole("user") && acc.PlanID == "free" && acc.Age == 30
				})).Return(created, nil).Once()
				s.On("CreateProfile", mock.Anything, "u1", models.ProfileInput{Name: "Ann"}).
					Return(models.Profile{ID: "p1", Name: "Ann"}, nil).Once()
				s.On("SetSubscription", mock.Anything, "u1", mock.MatchedBy(func(st models.SubscriptionStatus) bool {
					return st.PlanID == "free" && st.Status == models.SubscriptionActive
				})).Return(nil).Once()
			},
		},
		{
			name: "paid plan with confirmation",
			mutate: func(r *models.RegisterRequest) {
				r.PlanID, r.PlanName = "pro", "Pro"
				r.PaymentConfirmation = &models.PaymentInfo{
					Provider:     models.ProviderStripe,
					Confirmation: models.CheckoutSession{Token: "sim_1"},
				}
			},
			setupMocks: func(u *UserRepoMock, s *SetupRepoMock) {
				s.On("Plans", mock.Anything).Return(models.DefaultPlans(), nil).Once()
				u.On("CreateAccount", mock.Anything, mock.Anything).Return(created, nil).Once()
				s.On("CreateProfile", mock.Anything, "u1", mock.Anything).Return(models.Profile{ID: "p1"}, nil).Once()
				s.On("SetSubscription", mock.Anything, "u1", mock.Anything).Return(nil).Once()
			},
		},
		{
			name:   "paid plan without confirmation",
			mutate: func(r *models.RegisterRequest) { r.PlanID = "entrepreneur" },
			setupMocks: func(_ *UserRepoMock, s *SetupRepoMock) {
				s.On("Plans", mock.Anything).Return(models.DefaultPlans(), nil).Once()
			},
			wantErr: services.ErrPaymentRequired,
		},
		{
			name:   "unknown plan",
			mutate: func(r *models.RegisterRequest) { r.PlanID = "platinum" },
			setupMocks: func(_ *UserRepoMock, s *SetupRepoMock) {
				s.On("Plans", mock.Anything).Return(models.DefaultPlans(), nil).Once()
			},
			wantErr: services.ErrUnknownPlan,
		},
		{
			name:   "email taken",
			mutate: func(_ *models.RegisterRequest) {},
			setupMocks: func(u *UserRepoMock, s *SetupRepoMock) {
				s.On("Plans", mock.Anything).Return(models.DefaultPlans(), nil).Once()
				u.On("CreateAccount", mock.Anything, mock.Anything).
					Return(models.User{}, memory.ErrAlreadyExists).Once()
			},
			wantErr: services.ErrEmailTaken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := new(UserRepoMock)
			setup := new(SetupRepoMock)
			svc := services.NewAuthService(users, setup, new(JwtMakerMock))
			tt.setupMocks(users, setup)

			req := baseRequest()
			tt.mutate(&req)

			got, err := svc.Register(context.Background(), req)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)
			} else {
				require.NoError(t, err)
				assert.Equal(t, &created, got)
			}

			users.AssertExpectations(t)
			setup.AssertExpectations(t)
		})
	}
}

func TestAuthService_Login(t *testing.T) {
	// Правильный сырой пароль для теста
	rawPassword := "correctpassword"

	hashedPassword, err := password.GetHash(rawPassword)
	require.NoError(t, err)

	account := &models.Account{
		User:         models.User{ID: "u1", Email: "test@example.com", Roles: []string{"user"}},
		PasswordHash: hashedPassword,
	}

	tests := []struct {
		name       string
		email      string
		password   string
		setupMocks func(r *UserRepoMock, j *JwtMakerMock)
		wantToken  string
		wantErr    error
		errMsg     string
	}{
		{
			name:     "successful login",
			email:    "test@example.com",
			password: rawPassword,
			setupMocks: func(r *UserRepoMock, j *JwtMakerMock) {
				r.On("AccountByEmail", mock.Anything, "test@example.com").Return(account, nil).Once()
				j.On("GenerateToken", account.User).Return("jwt-token-123", nil).Once()
				r.On("RecordLogin", mock.Anything, "u1", mock.Anything).Return(nil).Once()
			},
			wantToken: "jwt-token-123",
		},
		{
			name:     "user not found",
			email:    "nobody@example.com",
			password: "password",
			setupMocks: func(r *UserRepoMock, _ *JwtMakerMock) {
				r.On("AccountByEmail", mock.Anything, "nobody@example.com").Return(nil, memory.ErrNotFound).Once()
			},
			wantErr: services.ErrInvalidCredentials,
		},
		{
			name:     "wrong password",
			email:    "test@example.com",
			password: "wrongpassword",
			setupMocks: func(r *UserRepoMock, _ *JwtMakerMock) {
				r.On("AccountByEmail", mock.Anything, "test@example.com").Return(account, nil).Once()
			},
			wantErr: services.ErrInvalidCredentials,
		},
		{
			name:     "token generation error",
			email:    "test@example.com",
			password: rawPassword,
			setupMocks: func(r *UserRepoMock, j *JwtMakerMock) {
				r.On("AccountByEmail", mock.Anything, "test@example.com").Return(account, nil).Once()
				j.On("GenerateToken", account.User).Return("", errors.New("token error")).Once()
			},
			errMsg: "token error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(UserRepoMock)
			jwtMock := new(JwtMakerMock)
			svc := services.NewAuthService(repo, new(SetupRepoMock), jwtMock)

			tt.setupMocks(repo, jwtMock)

			token, user, err := svc.Login(context.Background(), tt.email, tt.password)
			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.errMsg != "":
				assert.ErrorContains(t, err, tt.errMsg)
			default:
				require.NoError(t, err)
				assert.Equal(t, tt.wantToken, token)
				assert.Equal(t, "u1", user.ID)
			}

			repo.AssertExpectations(t)
			jwtMock.AssertExpectations(t)
		})
	}
}

func TestAuthService_ValidateToken(t *testing.T) {
	validClaims := &customjwt.CustomClaims{
		UserID: "u1",
		Roles:  []string{"user"},
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}

	tests := []struct {
		name       string
		token      string
		setupMocks func(r *UserRepoMock, j *JwtMakerMock)
		wantClaims *customjwt.CustomClaims
		wantErr    error
		errMsg     string
	}{
		{
			name:  "valid token",
			token: "valid-token",
			setupMocks: func(r *UserRepoMock, j *JwtMakerMock) {
				j.On("ParseToken", "valid-token").Return(validClaims, nil).Once()
				r.On("IsRevoked", mock.Anything, "valid-token").Return(false, nil).Once()
			},
			wantClaims: validClaims,
		},
		{
			name:  "invalid token",
			token: "invalid-token",
			setupMocks: func(_ *UserRepoMock, j *JwtMakerMock) {
				j.On("ParseToken", "invalid-token").Return(nil, errors.New("invalid token")).Once()
			},
			errMsg: "invalid token",
		},
		{
			name:  "revoked token",
			token: "revoked-token",
			setupMocks: func(r *UserRepoMock, j *JwtMakerMock) {
				j.On("ParseToken", "revoked-token").Return(validClaims, nil).Once()
				r.On("IsRevoked", mock.Anything, "revoked-token").Return(true, nil).Once()
			},
			wantErr: services.ErrTokenRevoked,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(UserRepoMock)
			jwtMock := new(JwtMakerMock)
			svc := services.NewAuthService(repo, new(SetupRepoMock), jwtMock)

			tt.setupMocks(repo, jwtMock)

			claims, err := svc.ValidateToken(context.Background(), tt.token)
			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.errMsg != "":
				assert.ErrorContains(t, err, tt.errMsg)
			default:
				require.NoError(t, err)
			}
			assert.Equal(t, tt.wantClaims, claims)

			repo.AssertExpectations(t)
			jwtMock.AssertExpectations(t)
		})
	}
}

func TestAuthService_Logout(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	claims := &customjwt.CustomClaims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(exp)},
	}

	repo := new(UserRepoMock)
	jwtMock := new(JwtMakerMock)
	jwtMock.On("ParseToken", "tok").Return(claims, nil).Once()
	repo.On("RevokeToken", mock.Anything, "tok", mock.MatchedBy(func(until time.Time) bool {
		return until.Equal(exp)
	})).Return(nil).Once()

	svc := services.NewAuthService(repo, new(SetupRepoMock), jwtMock)
	require.NoError(t, svc.Logout(context.Background(), "tok"))

	repo.AssertExpectations(t)
}

func TestAuthService_WithMemoryStorage(t *testing.T) {
	store := memory.New()
	maker := customjwt.NewJWTMaker("secret", time.Hour)
	svc := services.NewAuthService(store, store, maker)
	ctx := context.Background()

	user, err := svc.Register(ctx, baseRequest())
	require.NoError(t, err)

	profiles, err := store.ListProfiles(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, profiles, 1)
	assert.Equal(t, "Ann", profiles[0].Name)

	token, _, err := svc.Login(ctx, "ANN@x.com", "secret1")
	require.NoError(t, err)

	claims, err := svc.ValidateToken(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)

	require.NoError(t, svc.Logout(ctx, token))
	_, err = svc.ValidateToken(ctx, token)
	assert.ErrorIs(t, err, services.ErrTokenRevoked)
}
