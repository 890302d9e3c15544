// Package models содержит доменные структуры клиента CineStream:
// пользователя, профили, тарифы, контент и сессию.
// Теги json описывают единую (v1) схему обмена с API.
package models

import "slices"

// User представляет учётную запись, полученную от API.
type User struct {
	ID    string   `json:"id"`
	Email string   `json:"email"`
	Name  string   `json:"name,omitempty"`
	Roles []string `json:"roles,omitempty"`
}

// HasRole сообщает, есть ли у пользователя указанная роль.
func (u *User) HasRole(role string) bool {
	if u == nil {
		return false
	}
	return slices.Contains(u.Roles, role)
}

// Profile подпрофиль внутри одной учётной записи (например, член семьи).
type Profile struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	AgeRating string `json:"age_rating,omitempty"`
}

// ProfileInput используется при создании профиля.
type ProfileInput struct {
	Name      string `json:"name" validate:"required,min=1,max=50"`
	AgeRating string `json:"age_rating,omitempty" validate:"omitempty,oneof=all 7+ 13+ 16+ 18+"`
}

// Session состояние входа в памяти процесса.
// Если ActiveProfile задан, он должен быть элементом Profiles.
type Session struct {
	Token         string
	User          *User
	Profiles      []Profile
	ActiveProfile *Profile
	Loading       bool
}

// LoggedIn сообщает, есть ли в сессии токен.
func (s Session) LoggedIn() bool {
	return s.Token != ""
}

// Credentials учётные данные для входа.
type Credentials struct {
	Email    string
	Password string
}

// LoginResponse ответ POST /auth/login.
type LoginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	User        *User  `json:"user,omitempty"`
}

// RegisterRequest итоговый запрос регистрации, собираемый мастером онбординга.
// PaymentConfirmation равен nil для бесплатного тарифа.
type RegisterRequest struct {
	Name                string       `json:"name"`
	Age                 int          `json:"age"`
	Phone               string       `json:"phone"`
	Email               string       `json:"email"`
	Password            string       `json:"password"`
	PlanID              string       `json:"plan_id"`
	PlanName            string       `json:"plan_name"`
	PaymentConfirmation *PaymentInfo `json:"payment_confirmation"`
}
