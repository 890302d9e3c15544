package onboarding_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/cinestream/internal/models"
	"github.com/magabrotheeeer/cinestream/internal/services/onboarding"
)

// APIMock мок удалённого API
type APIMock struct {
	mock.Mock
}

func (m *APIMock) Plans(ctx context.Context) ([]models.Plan, error) {
	args := m.Called(ctx)
	plans, _ := args.Get(0).([]models.Plan)
	return plans, args.Error(1)
}

func (m *APIMock) CreateCheckoutSession(ctx context.Context, planID string) (*models.CheckoutSession, error) {
	args := m.Called(ctx, planID)
	s, _ := args.Get(0).(*models.CheckoutSession)
	return s, args.Error(1)
}

func (m *APIMock) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	args := m.Called(ctx, req)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}

func (m *APIMock) Login(ctx context.Context, creds models.Credentials) (*models.LoginResponse, error) {
	args := m.Called(ctx, creds)
	r, _ := args.Get(0).(*models.LoginResponse)
	return r, args.Error(1)
}

func (m *APIMock) GetMe(ctx context.Context) (*models.User, error) {
	args := m.Called(ctx)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}

// SessionMock мок менеджера сессии
type SessionMock struct {
	mock.Mock
}

func (m *SessionMock) Login(token string, user *models.User) {
	m.Called(token, user)
}

var (
	validDetails = onboarding.Details{
		Name:     "Ann Lee",
		Age:      "30",
		Phone:    "5551234",
		Email:    "ann@x.com",
		Password: "secret1",
	}
	annCreds = models.Credentials{Email: "ann@x.com", Password: "secret1"}
	ann      = &models.User{ID: "u1", Email: "ann@x.com", Name: "Ann Lee"}
)

func newWizard(api *APIMock, sess *SessionMock, opts ...onboarding.Option) *onboarding.Wizard {
	opts = append([]onboarding.Option{
		onboarding.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	}, opts...)
	return onboarding.New(api, sess, opts...)
}

func toPlanStep(t *testing.T, w *onboarding.Wizard) {
	t.Helper()
	w.SetDetails(validDetails)
	require.NoError(t, w.SubmitDetails())
	require.Equal(t, onboarding.StepPlan, w.State().Step)
}

func TestNew_InitialState(t *testing.T) {
	w := newWizard(new(APIMock), new(SessionMock))

	s := w.State()
	assert.Equal(t, onboarding.StepDetails, s.Step)
	assert.Equal(t, models.DefaultPlans(), s.Plans)
	assert.Equal(t, models.ProviderStripe, s.Provider)
	assert.Equal(t, onboarding.OutcomeNone, w.Outcome())
}

func TestSubmitDetails_Validation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(d *onboarding.Details)
		wantErr string
	}{
		{name: "valid", mutate: func(d *onboarding.Details) {}},
		{name: "short name", mutate: func(d *onboarding.Details) { d.Name = " A " }, wantErr: "Please enter your full name."},
		{name: "age below range", mutate: func(d *onboarding.Details) { d.Age = "12" }, wantErr: "Please enter a valid age (13–120)."},
		{name: "age lower bound", mutate: func(d *onboarding.Details) { d.Age = "13" }},
		{name: "age upper bound", mutate: func(d *onboarding.Details) { d.Age = "120" }},
		{name: "age above range", mutate: func(d *onboarding.Details) { d.Age = "121" }, wantErr: "Please enter a valid age (13–120)."},
		{name: "age not a number", mutate: func(d *onboarding.Details) { d.Age = "abc" }, wantErr: "Please enter a valid age (13–120)."},
		{name: "age empty", mutate: func(d *onboarding.Details) { d.Age = "" }, wantErr: "Please enter a valid age (13–120)."},
		{name: "short phone", mutate: func(d *onboarding.Details) { d.Phone = "  12345 " }, wantErr: "Please enter a valid phone number."},
		{name: "bad email", mutate: func(d *onboarding.Details) { d.Email = "ann@x" }, wantErr: "Please enter a valid email address."},
		{name: "short password", mutate: func(d *onboarding.Details) { d.Password = "12345" }, wantErr: "Password must be at least 6 characters."},
		{
			name: "first failing rule wins",
			mutate: func(d *onboarding.Details) {
				d.Phone = ""
				d.Email = "nope"
				d.Password = ""
			},
			wantErr: "Please enter a valid phone number.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := newWizard(new(APIMock), new(SessionMock))
			d := validDetails
			tt.mutate(&d)
			w.SetDetails(d)

			err := w.SubmitDetails()
			if tt.wantErr == "" {
				require.NoError(t, err)
				assert.Equal(t, onboarding.StepPlan, w.State().Step)
				assert.Empty(t, w.State().Err)
				return
			}

			var verr *onboarding.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.wantErr, verr.Message)
			assert.Equal(t, tt.wantErr, w.State().Err)
			assert.Equal(t, onboarding.StepDetails, w.State().Step)
		})
	}
}

func TestParseAge(t *testing.T) {
	age, ok := onboarding.ParseAge(" 42 ")
	assert.True(t, ok)
	assert.Equal(t, 42, age)

	_, ok = onboarding.ParseAge("NaN")
	assert.False(t, ok)
}

func TestLoadPlans(t *testing.T) {
	t.Run("merges server plans", func(t *testing.T) {
		api := new(APIMock)
		api.On("Plans", mock.Anything).Return([]models.Plan{
			{ID: "srv-pro", Name: "PRO", PriceCents: 1299},
		}, nil).Once()

		w := newWizard(api, new(SessionMock))
		plans := w.LoadPlans(context.Background())

		require.Len(t, plans, 3)
		assert.Equal(t, "free", plans[0].ID)
		assert.Equal(t, "srv-pro", plans[1].ID)
		assert.Equal(t, 1299, plans[1].PriceCents)
		assert.Equal(t, "USD", plans[1].Currency)
		assert.Equal(t, "entrepreneur", plans[2].ID)
		assert.Equal(t, plans, w.State().Plans)
	})

	t.Run("falls back to defaults on error", func(t *testing.T) {
		api := new(APIMock)
		api.On("Plans", mock.Anything).Return(nil, errors.New("timeout")).Once()

		w := newWizard(api, new(SessionMock))
		assert.Equal(t, models.DefaultPlans(), w.LoadPlans(context.Background()))
	})
}

func TestSelectPlan_Unknown(t *testing.T) {
	w := newWizard(new(APIMock), new(SessionMock))
	assert.ErrorIs(t, w.SelectPlan("platinum"), onboarding.ErrUnknownPlan)
	assert.Empty(t, w.State().SelectedPlanID)
}

func TestSubmitPlan_NoPlan(t *testing.T) {
	w := newWizard(new(APIMock), new(SessionMock))
	toPlanStep(t, w)

	err := w.SubmitPlan(context.Background())
	assert.ErrorIs(t, err, onboarding.ErrPlanRequired)
	assert.Equal(t, "Please select a plan to continue.", w.State().Err)
	assert.Equal(t, onboarding.StepPlan, w.State().Step)
}

func TestFreePlan_SkipsPayment(t *testing.T) {
	api := new(APIMock)
	sess := new(SessionMock)

	wantReq := models.RegisterRequest{
		Name: "Ann Lee", Age: 30, Phone: "5551234", Email: "ann@x.com", Password: "secret1",
		PlanID: "free", PlanName: "Free", PaymentConfirmation: nil,
	}
	register := api.On("Register", mock.Anything, wantReq).Return(ann, nil).Once()
	login := api.On("Login", mock.Anything, annCreds).
		Return(&models.LoginResponse{AccessToken: "tok"}, nil).Once().NotBefore(register)
	first := sess.On("Login", "tok", (*models.User)(nil)).Return().Once()
	api.On("GetMe", mock.Anything).Return(ann, nil).Once().NotBefore(login)
	sess.On("Login", "tok", ann).Return().Once().NotBefore(first)

	w := newWizard(api, sess)
	toPlanStep(t, w)
	require.NoError(t, w.SelectPlan("free"))
	require.NoError(t, w.SubmitPlan(context.Background()))

	s := w.State()
	assert.Equal(t, onboarding.OutcomeSuccess, s.Outcome)
	assert.Equal(t, onboarding.StepPlan, s.Step)
	assert.Equal(t, ann, s.User)
	assert.Nil(t, s.Payment)
	api.AssertNotCalled(t, "CreateCheckoutSession", mock.Anything, mock.Anything)
	api.AssertExpectations(t)
	sess.AssertExpectations(t)
}

func TestPaidPlan_RequiresPayment(t *testing.T) {
	api := new(APIMock)
	w := newWizard(api, new(SessionMock))
	toPlanStep(t, w)
	require.NoError(t, w.SelectPlan("pro"))
	require.NoError(t, w.SubmitPlan(context.Background()))
	assert.Equal(t, onboarding.StepPayment, w.State().Step)
	assert.False(t, w.CanCreateAccount())

	err := w.Complete(context.Background())
	assert.ErrorIs(t, err, onboarding.ErrPaymentRequired)
	assert.Equal(t, "Please complete payment before creating your account.", w.State().Err)
	assert.Equal(t, onboarding.OutcomeNone, w.Outcome())
	api.AssertNotCalled(t, "Register", mock.Anything, mock.Anything)
}

func TestPaidPlan_FullFlow(t *testing.T) {
	api := new(APIMock)
	sess := new(SessionMock)
	checkout := &models.CheckoutSession{SessionID: "cs_1", Token: "pay_tok", RedirectURL: "https://pay.example/cs_1"}

	api.On("CreateCheckoutSession", mock.Anything, "entrepreneur").Return(checkout, nil).Once()
	api.On("Register", mock.Anything, mock.MatchedBy(func(r models.RegisterRequest) bool {
		return r.PlanID == "entrepreneur" && r.PlanName == "Entrepreneur" &&
			r.PaymentConfirmation != nil &&
			r.PaymentConfirmation.Provider == models.ProviderPayPal &&
			r.PaymentConfirmation.Confirmation.Token == "pay_tok"
	})).Return(ann, nil).Once()
	api.On("Login", mock.Anything, annCreds).Return(&models.LoginResponse{AccessToken: "tok"}, nil).Once()
	api.On("GetMe", mock.Anything).Return(ann, nil).Once()
	sess.On("Login", "tok", mock.Anything).Return().Twice()

	w := newWizard(api, sess)
	toPlanStep(t, w)
	require.NoError(t, w.SelectPlan("entrepreneur"))
	require.NoError(t, w.SubmitPlan(context.Background()))
	require.NoError(t, w.SetProvider(models.ProviderPayPal))

	info, err := w.Checkout(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "pay_tok", info.Confirmation.Token)
	assert.True(t, w.CanCreateAccount())

	require.NoError(t, w.Complete(context.Background()))
	assert.Equal(t, onboarding.OutcomeSuccess, w.Outcome())
	api.AssertExpectations(t)
	sess.AssertExpectations(t)
}

func TestCheckout_FailureSimulatesConfirmation(t *testing.T) {
	api := new(APIMock)
	api.On("CreateCheckoutSession", mock.Anything, "pro").Return(nil, errors.New("502")).Once()

	fixed := time.UnixMilli(1700000000123)
	w := newWizard(api, new(SessionMock), onboarding.WithClock(func() time.Time { return fixed }))
	toPlanStep(t, w)
	require.NoError(t, w.SelectPlan("pro"))
	require.NoError(t, w.SubmitPlan(context.Background()))

	info, err := w.Checkout(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "sim_1700000000123", info.Confirmation.Token)
	assert.True(t, info.Confirmation.Simulated)
	assert.Equal(t, models.ProviderStripe, info.Provider)
	assert.True(t, w.CanCreateAccount())
}

func TestCheckout_RequiresPaidPlan(t *testing.T) {
	api := new(APIMock)
	w := newWizard(api, new(SessionMock))
	toPlanStep(t, w)

	_, err := w.Checkout(context.Background())
	assert.ErrorIs(t, err, onboarding.ErrPaidPlanRequired)

	require.NoError(t, w.SelectPlan("free"))
	_, err = w.Checkout(context.Background())
	assert.ErrorIs(t, err, onboarding.ErrPaidPlanRequired)
	assert.Equal(t, "Please select a paid plan to proceed to payment.", w.State().Err)
	api.AssertNotCalled(t, "CreateCheckoutSession", mock.Anything, mock.Anything)
}

func TestSetProvider_Unknown(t *testing.T) {
	w := newWizard(new(APIMock), new(SessionMock))
	assert.ErrorIs(t, w.SetProvider("cash"), onboarding.ErrUnknownProvider)
	assert.Equal(t, models.ProviderStripe, w.State().Provider)
}

func TestComplete_Failures(t *testing.T) {
	tests := []struct {
		name  string
		setup func(api *APIMock)
	}{
		{
			name: "register fails",
			setup: func(api *APIMock) {
				api.On("Register", mock.Anything, mock.Anything).Return(nil, errors.New("email taken")).Once()
			},
		},
		{
			name: "login fails",
			setup: func(api *APIMock) {
				api.On("Register", mock.Anything, mock.Anything).Return(ann, nil).Once()
				api.On("Login", mock.Anything, annCreds).Return(nil, errors.New("401")).Once()
			},
		},
		{
			name: "login returns no token",
			setup: func(api *APIMock) {
				api.On("Register", mock.Anything, mock.Anything).Return(ann, nil).Once()
				api.On("Login", mock.Anything, annCreds).Return(&models.LoginResponse{}, nil).Once()
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := new(APIMock)
			sess := new(SessionMock)
			tt.setup(api)

			w := newWizard(api, sess)
			toPlanStep(t, w)
			require.NoError(t, w.SelectPlan("free"))

			err := w.SubmitPlan(context.Background())
			assert.ErrorIs(t, err, onboarding.ErrRegistrationFailed)
			assert.Equal(t, onboarding.OutcomeFailure, w.Outcome())
			assert.Equal(t, "Registration failed. Please try again.", w.State().Err)
			sess.AssertNotCalled(t, "Login", mock.Anything, mock.Anything)
			api.AssertNotCalled(t, "GetMe", mock.Anything)
			api.AssertExpectations(t)
		})
	}
}

func TestComplete_GetMeFailureStillSucceeds(t *testing.T) {
	api := new(APIMock)
	sess := new(SessionMock)
	api.On("Register", mock.Anything, mock.Anything).Return(ann, nil).Once()
	api.On("Login", mock.Anything, annCreds).Return(&models.LoginResponse{AccessToken: "tok"}, nil).Once()
	api.On("GetMe", mock.Anything).Return(nil, errors.New("timeout")).Once()
	sess.On("Login", "tok", (*models.User)(nil)).Return().Once()

	w := newWizard(api, sess)
	toPlanStep(t, w)
	require.NoError(t, w.SelectPlan("free"))
	require.NoError(t, w.SubmitPlan(context.Background()))

	assert.Equal(t, onboarding.OutcomeSuccess, w.Outcome())
	sess.AssertExpectations(t)
	sess.AssertNumberOfCalls(t, "Login", 1)
}

func TestComplete_RetryAfterFailure(t *testing.T) {
	api := new(APIMock)
	sess := new(SessionMock)
	api.On("Register", mock.Anything, mock.Anything).Return(nil, errors.New("down")).Once()
	api.On("Register", mock.Anything, mock.Anything).Return(ann, nil).Once()
	api.On("Login", mock.Anything, annCreds).Return(&models.LoginResponse{AccessToken: "tok"}, nil).Once()
	api.On("GetMe", mock.Anything).Return(ann, nil).Once()
	sess.On("Login", "tok", mock.Anything).Return()

	w := newWizard(api, sess)
	toPlanStep(t, w)
	require.NoError(t, w.SelectPlan("free"))
	require.Error(t, w.SubmitPlan(context.Background()))

	require.NoError(t, w.Complete(context.Background()))
	assert.Equal(t, onboarding.OutcomeSuccess, w.Outcome())
	assert.ErrorIs(t, w.Complete(context.Background()), onboarding.ErrAlreadyRegistered)
}

func TestComplete_TrimsDetails(t *testing.T) {
	api := new(APIMock)
	sess := new(SessionMock)

	wantReq := models.RegisterRequest{
		Name: "Ann Lee", Age: 30, Phone: "555-0100", Email: "ann@x.com", Password: " secret1 ",
		PlanID: "free", PlanName: "Free",
	}
	api.On("Register", mock.Anything, wantReq).Return(ann, nil).Once()
	api.On("Login", mock.Anything, models.Credentials{Email: "ann@x.com", Password: " secret1 "}).
		Return(&models.LoginResponse{AccessToken: "tok"}, nil).Once()
	api.On("GetMe", mock.Anything).Return(ann, nil).Once()
	sess.On("Login", "tok", mock.Anything).Return()

	w := newWizard(api, sess)
	w.SetDetails(onboarding.Details{
		Name:     "  Ann Lee  ",
		Age:      "30",
		Phone:    "  555-0100 ",
		Email:    " ann@x.com ",
		Password: " secret1 ",
	})
	require.NoError(t, w.SubmitDetails())
	require.NoError(t, w.SelectPlan("free"))
	require.NoError(t, w.SubmitPlan(context.Background()))

	assert.Equal(t, onboarding.OutcomeSuccess, w.Outcome())
	api.AssertExpectations(t)
}

func TestState_ReturnsIndependentCopy(t *testing.T) {
	admin := &models.User{ID: "u1", Email: "ann@x.com", Roles: []string{models.RoleUser, models.RoleAdmin}}

	api := new(APIMock)
	sess := new(SessionMock)
	api.On("Register", mock.Anything, mock.Anything).Return(admin, nil).Once()
	api.On("Login", mock.Anything, annCreds).Return(&models.LoginResponse{AccessToken: "tok"}, nil).Once()
	api.On("GetMe", mock.Anything).Return(admin, nil).Once()
	sess.On("Login", "tok", mock.Anything).Return()

	w := newWizard(api, sess)
	toPlanStep(t, w)
	require.NoError(t, w.SelectPlan("free"))
	require.NoError(t, w.SubmitPlan(context.Background()))

	snap := w.State()
	require.NotNil(t, snap.User)
	snap.User.Roles[1] = "hacker"
	snap.Plans[0].Features[0] = "changed"

	fresh := w.State()
	assert.Equal(t, []string{models.RoleUser, models.RoleAdmin}, fresh.User.Roles)
	assert.NotEqual(t, "changed", fresh.Plans[0].Features[0])
}

func TestBack_PreservesData(t *testing.T) {
	api := new(APIMock)
	api.On("CreateCheckoutSession", mock.Anything, "pro").Return(&models.CheckoutSession{Token: "t"}, nil).Once()

	w := newWizard(api, new(SessionMock))
	toPlanStep(t, w)
	require.NoError(t, w.SelectPlan("pro"))
	require.NoError(t, w.SubmitPlan(context.Background()))
	_, err := w.Checkout(context.Background())
	require.NoError(t, err)

	w.Back()
	s := w.State()
	assert.Equal(t, onboarding.StepPlan, s.Step)
	assert.Equal(t, "pro", s.SelectedPlanID)
	assert.NotNil(t, s.Payment)

	w.Back()
	s = w.State()
	assert.Equal(t, onboarding.StepDetails, s.Step)
	assert.Equal(t, validDetails, s.Details)

	// с первого шага назад идти некуда
	w.Back()
	assert.Equal(t, onboarding.StepDetails, w.State().Step)
}

func TestStepString(t *testing.T) {
	assert.Equal(t, "details", onboarding.StepDetails.String())
	assert.Equal(t, "plan", onboarding.StepPlan.String())
	assert.Equal(t, "payment", onboarding.StepPayment.String())
}
