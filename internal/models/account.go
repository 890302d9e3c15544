package models

import "time"

// Account серверная запись пользователя dev API.
type Account struct {
	User         User
	PasswordHash string
	Age          int
	Phone        string
	PlanID       string
	CreatedAt    time.Time
}

// CheckoutRecord созданная, но ещё не подтверждённая сессия оплаты.
type CheckoutRecord struct {
	Session CheckoutSession
	PlanID  string
	Created time.Time
}

// Статусы подписки.
const (
	SubscriptionActive    = "active"
	SubscriptionPending   = "pending"
	SubscriptionCancelled = "cancelled"
	SubscriptionNone      = "none"
)

// Роли пользователей.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)
