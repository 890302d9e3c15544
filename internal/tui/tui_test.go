package tui

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/magabrotheeeer/cinestream/internal/models"
	"github.com/magabrotheeeer/cinestream/internal/services/onboarding"
)

func TestFormatPrice(t *testing.T) {
	tests := []struct {
		name string
		plan models.Plan
		want string
	}{
		{name: "free", plan: models.Plan{PriceCents: 0, Currency: "USD", Interval: "month"}, want: "Free"},
		{name: "usd", plan: models.Plan{PriceCents: 999, Currency: "USD", Interval: "month"}, want: "$9.99/month"},
		{name: "empty currency", plan: models.Plan{PriceCents: 1999}, want: "$19.99"},
		{name: "other currency", plan: models.Plan{PriceCents: 49900, Currency: "inr", Interval: "year"}, want: "INR 499.00/year"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatPrice(tt.plan))
		})
	}
}

func TestPlanCards(t *testing.T) {
	out := PlanCards(models.DefaultPlans(), "pro")

	for _, p := range models.DefaultPlans() {
		assert.Contains(t, out, p.Name)
	}
	assert.Contains(t, out, "$9.99/month")
	assert.Contains(t, out, "● Pro")
	assert.NotContains(t, out, "● Free")
}

func TestPlanCard_Features(t *testing.T) {
	card := PlanCard(models.Plan{Name: "Basic", Features: []string{"One screen"}}, false)

	assert.Contains(t, card, "Basic")
	assert.Contains(t, card, "• One screen")
}

func TestStepHeader(t *testing.T) {
	assert.True(t, strings.Contains(StepHeader(onboarding.StepPlan), "Step 2 of 3: plan"))
}

func TestShouldPrompt_CI(t *testing.T) {
	t.Setenv("CI", "true")
	assert.False(t, ShouldPrompt())
}
