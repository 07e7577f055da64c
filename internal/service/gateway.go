package service

import (
	"context"

	"github.com/freshcrate/subscription-service/internal/domain"
	"github.com/freshcrate/subscription-service/internal/integration/razorpay"
)

// PaymentGateway операции Razorpay, используемые сервисами
type PaymentGateway interface {
	// FindCustomerByEmail возвращает nil без ошибки, если клиент не найден
	FindCustomerByEmail(ctx context.Context, email string) (*razorpay.Customer, error)
	CreateCustomer(ctx context.Context, name, email, contact string) (*razorpay.Customer, error)
	CreateSubscription(ctx context.Context, req razorpay.SubscriptionRequest) (*razorpay.Subscription, error)
	CancelSubscription(ctx context.Context, subscriptionID string) error
	CreateOrder(ctx context.Context, req razorpay.OrderRequest) (*razorpay.Order, error)
	ListPlans(ctx context.Context, count int) ([]razorpay.Plan, error)
}

// WebhookVerifier проверка подписи вебхука платежного шлюза
type WebhookVerifier interface {
	VerifyWebhookSignature(payload []byte, signature string) bool
}

// EventProducer публикация событий жизненного цикла подписок.
// Сбои публикации логируются и не прерывают обработку запроса.
type EventProducer interface {
	PublishSubscriptionCreated(ctx context.Context, subscription domain.Subscription) error
	PublishSubscriptionActivated(ctx context.Context, subscription domain.Subscription) error
	PublishSubscriptionCancelled(ctx context.Context, subscription domain.Subscription) error
}
