package tui

import (
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/huh"

	"github.com/magabrotheeeer/cinestream/internal/models"
	"github.com/magabrotheeeer/cinestream/internal/services/onboarding"
)

// ErrAborted возвращается, если пользователь прервал форму.
var ErrAborted = errors.New("aborted by user")

// Prompter запрашивает у пользователя данные, которых не хватает команде.
// Значения по указателям служат и начальными значениями полей.
type Prompter interface {
	Credentials(c *models.Credentials) error
	Details(d *onboarding.Details) error
	Plan(plans []models.Plan, selected *string) error
	Provider(provider *string) error
	Confirm(title string) (bool, error)
}

// Forms реализует Prompter через формы huh.
type Forms struct {
	// Accessible включает режим для экранных дикторов и простых терминалов.
	Accessible bool
}

func (f Forms) run(groups ...*huh.Group) error {
	form := huh.NewForm(groups...).WithAccessible(f.Accessible)
	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return ErrAborted
		}
		return fmt.Errorf("prompt failed: %w", err)
	}
	return nil
}

// Credentials запрашивает email и пароль.
func (f Forms) Credentials(c *models.Credentials) error {
	return f.run(huh.NewGroup(
		huh.NewInput().
			Title("Email").
			Value(&c.Email),
		huh.NewInput().
			Title("Password").
			EchoMode(huh.EchoModePassword).
			Value(&c.Password),
	))
}

// Details запрашивает данные шага Details.
func (f Forms) Details(d *onboarding.Details) error {
	return f.run(huh.NewGroup(
		huh.NewInput().
			Title("Full name").
			Value(&d.Name),
		huh.NewInput().
			Title("Age").
			Placeholder(fmt.Sprintf("%d-%d", onboarding.MinAge, onboarding.MaxAge)).
			Value(&d.Age),
		huh.NewInput().
			Title("Phone").
			Value(&d.Phone),
		huh.NewInput().
			Title("Email").
			Value(&d.Email),
		huh.NewInput().
			Title("Password").
			Description("At least 6 characters").
			EchoMode(huh.EchoModePassword).
			Value(&d.Password),
	).Title("Your details"))
}

// Plan предлагает выбрать тариф.
func (f Forms) Plan(plans []models.Plan, selected *string) error {
	if len(plans) == 0 {
		return fmt.Errorf("no plans available")
	}
	options := make([]huh.Option[string], len(plans))
	for i, p := range plans {
		options[i] = huh.NewOption(PlanOption(p), p.ID)
	}
	return f.run(huh.NewGroup(
		huh.NewSelect[string]().
			Title("Choose a plan").
			Options(options...).
			Value(selected),
	))
}

// Provider предлагает выбрать платёжного провайдера.
func (f Forms) Provider(provider *string) error {
	providers := models.Providers()
	options := make([]huh.Option[string], len(providers))
	for i, p := range providers {
		options[i] = huh.NewOption(p, p)
	}
	return f.run(huh.NewGroup(
		huh.NewSelect[string]().
			Title("Payment provider").
			Options(options...).
			Value(provider),
	))
}

// Confirm задаёт вопрос да/нет.
func (f Forms) Confirm(title string) (bool, error) {
	confirmed := true
	err := f.run(huh.NewGroup(
		huh.NewConfirm().
			Title(title).
			Value(&confirmed),
	))
	return confirmed, err
}

// IsInteractive сообщает, подключён ли stdin к терминалу.
func IsInteractive() bool {
	fileInfo, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (fileInfo.Mode() & os.ModeCharDevice) != 0
}

// ShouldPrompt отключает формы в CI и при неинтерактивном stdin.
func ShouldPrompt() bool {
	for _, key := range []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL"} {
		if os.Getenv(key) != "" {
			return false
		}
	}
	return IsInteractive()
}
