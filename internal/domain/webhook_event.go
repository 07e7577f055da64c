package domain

// WebhookEventType тип события вебхука Razorpay
type WebhookEventType string

const (
	// WebhookEventSubscriptionCharged первый успешный платеж по подписке
	WebhookEventSubscriptionCharged WebhookEventType = "subscription.charged"

	// WebhookEventSubscriptionCancelled подписка отменена на стороне шлюза
	WebhookEventSubscriptionCancelled WebhookEventType = "subscription.cancelled"
)

// WebhookEvent представляет полезную нагрузку вебхука Razorpay.
// Для событий подписок идентификатор лежит в payload.subscription.entity.id.
type WebhookEvent struct {
	Event   WebhookEventType `json:"event"`
	Payload struct {
		Subscription struct {
			Entity struct {
				ID     string `json:"id"`
				Status string `json:"status"`
			} `json:"entity"`
		} `json:"subscription"`
	} `json:"payload"`
	CreatedAt int64 `json:"created_at"`
}

// SubscriptionID возвращает внешний идентификатор подписки из события
func (e *WebhookEvent) SubscriptionID() string {
	return e.Payload.Subscription.Entity.ID
}
