package domain

import (
	"strconv"
	"time"

	"github.com/google/uuid"
)

// SubscriptionStatus статус подписки
type SubscriptionStatus string

const (
	SubscriptionStatusPending   SubscriptionStatus = "pending"
	SubscriptionStatusActive    SubscriptionStatus = "active"
	SubscriptionStatusCancelled SubscriptionStatus = "cancelled"
)

// CanTransitionTo проверяет допустимость перехода статуса.
// Статус cancelled терминальный: из него переходов нет.
func (s SubscriptionStatus) CanTransitionTo(target SubscriptionStatus) bool {
	switch {
	case s == SubscriptionStatusPending && target == SubscriptionStatusActive:
		return true
	case s == SubscriptionStatusPending && target == SubscriptionStatusCancelled:
		return true
	case s == SubscriptionStatusActive && target == SubscriptionStatusCancelled:
		return true
	default:
		return false
	}
}

// Subscription представляет собой модель подписки
type Subscription struct {
	ID          uuid.UUID          `json:"id"`
	CustomerID  uuid.UUID          `json:"customer_id"`
	Product     string             `json:"product"`
	Frequency   string             `json:"frequency"`
	PlanID      string             `json:"plan_id,omitempty"`
	ExternalID  string             `json:"razorpay_subscription_id"` // ID подписки или заказа в Razorpay
	OneTime     bool               `json:"one_time,omitempty"`
	Status      SubscriptionStatus `json:"status"`
	CancelledAt *time.Time         `json:"cancelled_at,omitempty"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

// CreateSubscriptionRequest представляет запрос на создание подписки
type CreateSubscriptionRequest struct {
	Name      string `json:"name" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	Contact   string `json:"contact"`
	Product   string `json:"product" binding:"required"`
	Frequency string `json:"frequency"`
	// OneTime создает разовый заказ вместо регулярной подписки
	OneTime     bool    `json:"one_time"`
	TotalAmount float64 `json:"total_amount"`
}

// CheckSubscriptionRequest представляет запрос на проверку активной подписки
type CheckSubscriptionRequest struct {
	Email   string `json:"email" binding:"required,email"`
	Product string `json:"product" binding:"required"`
}

// SubscriptionCheck результат проверки активной подписки
type SubscriptionCheck struct {
	Exists         bool   `json:"exists"`
	SubscriptionID string `json:"subscription_id,omitempty"`
	Frequency      string `json:"frequency,omitempty"`
}

// SubscriptionListItem строка списка подписок для администратора
type SubscriptionListItem struct {
	CustomerName string             `json:"customer_name"`
	Email        string             `json:"email"`
	Contact      string             `json:"contact"`
	Product      string             `json:"product"`
	Frequency    string             `json:"frequency"`
	ExternalID   string             `json:"razorpay_subscription_id"`
	Status       SubscriptionStatus `json:"status"`
	CreatedAt    time.Time          `json:"created_at"`
	CancelledAt  *time.Time         `json:"cancelled_at,omitempty"`
}

// PlanInfo описание плана Razorpay для каталога администратора
type PlanInfo struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Product   string    `json:"product"`
	Amount    float64   `json:"amount"` // В рупиях
	Period    string    `json:"period"`
	Interval  int       `json:"interval"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

var frequencyNames = map[int]string{
	1: "Once / Week",
	2: "Twice / Week",
	3: "Thrice / Week",
}

// NormalizeFrequency приводит частоту доставки к человекочитаемому виду.
// Витрина передает число доставок в неделю (1, 2, 3); уже нормализованные
// значения возвращаются как есть.
func NormalizeFrequency(raw string) string {
	if raw == "" {
		return frequencyNames[1]
	}
	if n, err := strconv.Atoi(raw); err == nil {
		if name, ok := frequencyNames[n]; ok {
			return name
		}
		return frequencyNames[1]
	}
	return raw
}
