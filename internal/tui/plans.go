// Package tui содержит терминальное представление клиента:
// карточки тарифов на lipgloss и интерактивные формы на huh.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/magabrotheeeer/cinestream/internal/models"
	"github.com/magabrotheeeer/cinestream/internal/services/onboarding"
)

const cardWidth = 32

var (
	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("241")).
			Padding(0, 1).
			Width(cardWidth)

	selectedCardStyle = cardStyle.
				BorderForeground(lipgloss.Color("205"))

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	priceStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("10"))

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9")).
			Bold(true)

	stepStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("99")).
			Bold(true)
)

// FormatPrice возвращает цену тарифа: "Free" для нулевой цены, иначе "$9.99/month".
func FormatPrice(p models.Plan) string {
	if p.PriceCents == 0 {
		return "Free"
	}
	amount := fmt.Sprintf("%d.%02d", p.PriceCents/100, p.PriceCents%100)
	if p.Currency == "" || strings.EqualFold(p.Currency, "USD") {
		amount = "$" + amount
	} else {
		amount = strings.ToUpper(p.Currency) + " " + amount
	}
	if p.Interval != "" {
		amount += "/" + p.Interval
	}
	return amount
}

// PlanCard рисует карточку тарифа; выбранная карточка выделяется рамкой.
func PlanCard(p models.Plan, selected bool) string {
	var b strings.Builder
	title := p.Name
	if selected {
		title = "● " + title
	}
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n")
	b.WriteString(priceStyle.Render(FormatPrice(p)))
	if p.Description != "" {
		b.WriteString("\n")
		b.WriteString(mutedStyle.Render(p.Description))
	}
	for _, f := range p.Features {
		b.WriteString("\n• ")
		b.WriteString(f)
	}

	style := cardStyle
	if selected {
		style = selectedCardStyle
	}
	return style.Render(b.String())
}

// PlanCards располагает карточки тарифов в ряд.
func PlanCards(plans []models.Plan, selectedID string) string {
	cards := make([]string, 0, len(plans))
	for _, p := range plans {
		cards = append(cards, PlanCard(p, p.ID == selectedID))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cards...)
}

// PlanOption подпись тарифа в списке выбора.
func PlanOption(p models.Plan) string {
	return fmt.Sprintf("%s (%s)", p.Name, FormatPrice(p))
}

// StepHeader заголовок шага мастера регистрации.
func StepHeader(step onboarding.Step) string {
	return stepStyle.Render(fmt.Sprintf("Step %d of 3: %s", int(step), step))
}

// ErrorLine выделяет сообщение об ошибке.
func ErrorLine(msg string) string {
	return errorStyle.Render(msg)
}

// Muted приглушённый текст.
func Muted(s string) string {
	return mutedStyle.Render(s)
}
