package onboarding

import (
	"errors"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator"
)

// Границы допустимого возраста.
const (
	MinAge = 13
	MaxAge = 120
)

// Details персональные данные первого шага.
// Порядок полей задаёт порядок проверки: сообщается первое нарушение.
type Details struct {
	Name     string `validate:"trimmed_min=2"`
	Age      string `validate:"age_range"`
	Phone    string `validate:"trimmed_min=7"`
	Email    string `validate:"loose_email"`
	Password string `validate:"min=6"`
}

// ValidationError нарушение правила на шаге Details.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

var fieldMessages = map[string]string{
	"Name":     "Please enter your full name.",
	"Age":      "Please enter a valid age (13–120).",
	"Phone":    "Please enter a valid phone number.",
	"Email":    "Please enter a valid email address.",
	"Password": "Password must be at least 6 characters.",
}

var looseEmail = regexp.MustCompile(`\S+@\S+\.\S+`)

func newValidator() *validator.Validate {
	v := validator.New()
	// ошибки регистрации возможны только при пустом теге или nil-функции
	_ = v.RegisterValidation("trimmed_min", trimmedMin)
	_ = v.RegisterValidation("age_range", ageRange)
	_ = v.RegisterValidation("loose_email", func(fl validator.FieldLevel) bool {
		return looseEmail.MatchString(fl.Field().String())
	})
	return v
}

func trimmedMin(fl validator.FieldLevel) bool {
	n, err := strconv.Atoi(fl.Param())
	if err != nil {
		return false
	}
	return utf8.RuneCountInString(strings.TrimSpace(fl.Field().String())) >= n
}

func ageRange(fl validator.FieldLevel) bool {
	_, ok := ParseAge(fl.Field().String())
	return ok
}

// ParseAge разбирает возраст и проверяет, что он в диапазоне [MinAge, MaxAge].
func ParseAge(s string) (int, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || f < MinAge || f > MaxAge {
		return 0, false
	}
	return int(f), true
}

// validateDetails возвращает первое нарушенное правило либо nil.
func validateDetails(v *validator.Validate, d Details) error {
	err := v.Struct(d)
	if err == nil {
		return nil
	}
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) || len(errs) == 0 {
		return err
	}
	field := errs[0].StructField()
	return &ValidationError{Field: field, Message: fieldMessages[field]}
}
