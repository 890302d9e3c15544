// Package onboarding реализует многошаговую регистрацию:
// персональные данные, выбор тарифа, подтверждение оплаты и создание аккаунта.
//
// Wizard конечный автомат Details → Plan → Payment → (Success | Failure).
// Шаг Payment пропускается для бесплатного тарифа. Переходы назад данных не теряют.
package onboarding

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/cinestream/internal/lib/sl"
	"github.com/magabrotheeeer/cinestream/internal/models"
)

// Step шаг мастера.
type Step int

const (
	StepDetails Step = iota + 1
	StepPlan
	StepPayment
)

func (s Step) String() string {
	switch s {
	case StepDetails:
		return "details"
	case StepPlan:
		return "plan"
	case StepPayment:
		return "payment"
	default:
		return fmt.Sprintf("step(%d)", int(s))
	}
}

// Outcome итог регистрации.
type Outcome int

const (
	OutcomeNone Outcome = iota
	OutcomeSuccess
	OutcomeFailure
)

// Ошибки бизнес-правил. Текст показывается пользователю как есть.
var (
	ErrPlanRequired       = errors.New("Please select a plan to continue.")
	ErrPaidPlanRequired   = errors.New("Please select a paid plan to proceed to payment.")
	ErrPaymentRequired    = errors.New("Please complete payment before creating your account.")
	ErrRegistrationFailed = errors.New("Registration failed. Please try again.")
	ErrUnknownPlan        = errors.New("unknown plan")
	ErrUnknownProvider    = errors.New("unknown payment provider")
	ErrAlreadyRegistered  = errors.New("account already created")
)

// API вызовы удалённого API, нужные мастеру.
type API interface {
	Plans(ctx context.Context) ([]models.Plan, error)
	CreateCheckoutSession(ctx context.Context, planID string) (*models.CheckoutSession, error)
	Register(ctx context.Context, req models.RegisterRequest) (*models.User, error)
	Login(ctx context.Context, creds models.Credentials) (*models.LoginResponse, error)
	GetMe(ctx context.Context) (*models.User, error)
}

// Session принимает результат успешного входа.
type Session interface {
	Login(token string, user *models.User)
}

// State снимок состояния мастера.
type State struct {
	Step           Step
	Details        Details
	Plans          []models.Plan
	SelectedPlanID string
	Provider       string
	Payment        *models.PaymentInfo
	Err            string
	Outcome        Outcome
	User           *models.User
}

// SelectedPlan возвращает выбранный тариф.
func (s State) SelectedPlan() (models.Plan, bool) {
	if s.SelectedPlanID == "" {
		return models.Plan{}, false
	}
	return models.FindPlan(s.Plans, s.SelectedPlanID)
}

// Wizard ведёт пользователя через регистрацию.
type Wizard struct {
	mu       sync.Mutex
	state    State
	api      API
	session  Session
	validate *validator.Validate
	log      *slog.Logger
	now      func() time.Time
}

// Option настраивает Wizard.
type Option func(*Wizard)

// WithLogger задаёт логгер.
func WithLogger(log *slog.Logger) Option {
	return func(w *Wizard) { w.log = log }
}

// WithClock подменяет источник времени (используется для синтезированных подтверждений).
func WithClock(now func() time.Time) Option {
	return func(w *Wizard) { w.now = now }
}

// New создаёт мастер на шаге Details со встроенным списком тарифов.
func New(api API, session Session, opts ...Option) *Wizard {
	w := &Wizard{
		state: State{
			Step:     StepDetails,
			Plans:    models.DefaultPlans(),
			Provider: models.ProviderStripe,
		},
		api:      api,
		session:  session,
		validate: newValidator(),
		log:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// LoadPlans запрашивает тарифы у сервера. При ошибке используется встроенный список;
// в любом случае результат содержит Free, Pro и Entrepreneur.
func (w *Wizard) LoadPlans(ctx context.Context) []models.Plan {
	const op = "onboarding.LoadPlans"
	log := w.log.With(sl.Op(op))

	fetched, err := w.api.Plans(ctx)
	if err != nil {
		log.Warn("cannot fetch plans, using defaults", sl.Err(err))
		fetched = nil
	}
	plans := models.EnsureThreePlans(fetched)

	w.mu.Lock()
	defer w.mu.Unlock()
	w.state.Plans = plans
	if _, ok := models.FindPlan(plans, w.state.SelectedPlanID); !ok {
		w.state.SelectedPlanID = ""
	}
	return slices.Clone(plans)
}

// SetDetails сохраняет введённые данные без проверки.
func (w *Wizard) SetDetails(d Details) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.state.Details = d
}

// SubmitDetails проверяет данные и переходит к выбору тарифа.
// При нарушении возвращает *ValidationError и остаётся на шаге Details.
func (w *Wizard) SubmitDetails() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.checkDetails(); err != nil {
		return err
	}
	w.state.Step = StepPlan
	return nil
}

// SelectPlan отмечает тариф выбранным.
func (w *Wizard) SelectPlan(id string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := models.FindPlan(w.state.Plans, id); !ok {
		return fmt.Errorf("%w: %q", ErrUnknownPlan, id)
	}
	w.state.SelectedPlanID = id
	w.state.Err = ""
	return nil
}

// SubmitPlan завершает шаг Plan: платный тариф ведёт на шаг Payment,
// бесплатный сразу создаёт аккаунт.
func (w *Wizard) SubmitPlan(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	plan, ok := w.state.SelectedPlan()
	if !ok {
		return w.fail(ErrPlanRequired)
	}
	w.state.Err = ""
	if plan.IsPaid() {
		w.state.Step = StepPayment
		return nil
	}
	return w.complete(ctx)
}

// SetProvider выбирает платёжного провайдера.
func (w *Wizard) SetProvider(provider string) error {
	if !slices.Contains(models.Providers(), provider) {
		return fmt.Errorf("%w: %q", ErrUnknownProvider, provider)
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.state.Provider = provider
	return nil
}

// Checkout создаёт сессию оплаты выбранного платного тарифа.
// Если сервер не смог её создать, синтезируется подтверждение sim_<unix-millis>
// и регистрация продолжается.
func (w *Wizard) Checkout(ctx context.Context) (*models.PaymentInfo, error) {
	const op = "onboarding.Checkout"
	log := w.log.With(sl.Op(op))

	w.mu.Lock()
	defer w.mu.Unlock()

	plan, ok := w.state.SelectedPlan()
	if !ok || !plan.IsPaid() {
		return nil, w.fail(ErrPaidPlanRequired)
	}

	confirmation, err := w.api.CreateCheckoutSession(ctx, plan.ID)
	if err != nil || confirmation == nil {
		log.Warn("checkout failed, using simulated confirmation",
			slog.String("plan_id", plan.ID), sl.Err(err))
		confirmation = &models.CheckoutSession{
			Token:     fmt.Sprintf("sim_%d", w.now().UnixMilli()),
			Simulated: true,
		}
	}

	w.state.Payment = &models.PaymentInfo{
		Provider:     w.state.Provider,
		Confirmation: *confirmation,
	}
	w.state.Err = ""
	info := *w.state.Payment
	return &info, nil
}

// CanCreateAccount сообщает, доступно ли создание аккаунта на шаге Payment.
func (w *Wizard) CanCreateAccount() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state.Step == StepPayment && w.state.Payment != nil
}

// Complete регистрирует аккаунт и выполняет вход:
// register → login → session.Login(token, nil) → GET /users/me → session.Login(token, me).
// Ошибка регистрации или входа переводит мастер в Failure с ErrRegistrationFailed;
// повторная попытка допускается.
func (w *Wizard) Complete(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.complete(ctx)
}

func (w *Wizard) complete(ctx context.Context) error {
	const op = "onboarding.Complete"
	log := w.log.With(sl.Op(op))

	if w.state.Outcome == OutcomeSuccess {
		return ErrAlreadyRegistered
	}
	if err := w.checkDetails(); err != nil {
		w.state.Step = StepDetails
		return err
	}
	plan, ok := w.state.SelectedPlan()
	if !ok {
		w.state.Step = StepPlan
		return w.fail(ErrPlanRequired)
	}

	var payment *models.PaymentInfo
	if plan.IsPaid() {
		if w.state.Payment == nil {
			w.state.Step = StepPayment
			return w.fail(ErrPaymentRequired)
		}
		p := *w.state.Payment
		payment = &p
	}

	d := w.state.Details
	age, _ := ParseAge(d.Age)
	// пароль передаётся как введён, остальные поля без пробелов по краям
	email := strings.TrimSpace(d.Email)
	req := models.RegisterRequest{
		Name:                strings.TrimSpace(d.Name),
		Age:                 age,
		Phone:               strings.TrimSpace(d.Phone),
		Email:               email,
		Password:            d.Password,
		PlanID:              plan.ID,
		PlanName:            plan.Name,
		PaymentConfirmation: payment,
	}

	if _, err := w.api.Register(ctx, req); err != nil {
		log.Error("register failed", sl.Err(err))
		return w.failTerminal()
	}

	resp, err := w.api.Login(ctx, models.Credentials{Email: email, Password: d.Password})
	if err != nil {
		log.Error("login after register failed", sl.Err(err))
		return w.failTerminal()
	}
	if resp == nil || resp.AccessToken == "" {
		log.Error("login response has no token")
		return w.failTerminal()
	}

	w.session.Login(resp.AccessToken, nil)

	me, err := w.api.GetMe(ctx)
	if err != nil {
		log.Warn("cannot fetch user after register", sl.Err(err))
	}
	if me != nil {
		w.session.Login(resp.AccessToken, me)
	}

	w.state.User = me
	w.state.Outcome = OutcomeSuccess
	w.state.Err = ""
	log.Info("account created", slog.String("plan_id", plan.ID), slog.Bool("paid", payment != nil))
	return nil
}

// Back возвращает на предыдущий шаг: Plan → Details, Payment → Plan.
func (w *Wizard) Back() {
	w.mu.Lock()
	defer w.mu.Unlock()

	switch w.state.Step {
	case StepPlan:
		w.state.Step = StepDetails
	case StepPayment:
		w.state.Step = StepPlan
	}
	w.state.Err = ""
}

// State возвращает копию текущего состояния.
func (w *Wizard) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()

	s := w.state
	s.Plans = slices.Clone(w.state.Plans)
	for i := range s.Plans {
		s.Plans[i].Features = slices.Clone(s.Plans[i].Features)
	}
	if w.state.Payment != nil {
		p := *w.state.Payment
		s.Payment = &p
	}
	if w.state.User != nil {
		u := *w.state.User
		u.Roles = slices.Clone(w.state.User.Roles)
		s.User = &u
	}
	return s
}

// Outcome возвращает итог регистрации.
func (w *Wizard) Outcome() Outcome {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state.Outcome
}

func (w *Wizard) checkDetails() error {
	if err := validateDetails(w.validate, w.state.Details); err != nil {
		w.state.Err = err.Error()
		return err
	}
	w.state.Err = ""
	return nil
}

func (w *Wizard) fail(err error) error {
	w.state.Err = err.Error()
	return err
}

func (w *Wizard) failTerminal() error {
	w.state.Outcome = OutcomeFailure
	return w.fail(ErrRegistrationFailed)
}
