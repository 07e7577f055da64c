package metrics

import (
	"github.com/freshcrate/subscription-service/pkg/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// SubscriptionMetrics интерфейс для метрик подписок
type SubscriptionMetrics interface {
	IncCreated(product string)
	IncSuperseded(product string)
	IncTransition(status string)
	IncWebhookReceived(event string)
	IncWebhookRejected()
	ObserveOrderAmount(amount float64)
}

type subscriptionMetrics struct {
	log              *logger.Logger
	created          *prometheus.CounterVec
	superseded       *prometheus.CounterVec
	transitions      *prometheus.CounterVec
	webhooksReceived *prometheus.CounterVec
	webhooksRejected prometheus.Counter
	orderAmount      prometheus.Histogram
}

// NewSubscriptionMetrics создает новые метрики подписок
func NewSubscriptionMetrics(registry *prometheus.Registry, log *logger.Logger) SubscriptionMetrics {
	created := promauto.With(registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "subscriptions_created_total",
			Help: "The total number of created subscriptions",
		},
		[]string{"product"},
	)

	superseded := promauto.With(registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "subscriptions_superseded_total",
			Help: "The total number of subscriptions cancelled because a newer one replaced them",
		},
		[]string{"product"},
	)

	transitions := promauto.With(registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "subscription_transitions_total",
			Help: "The total number of subscription status transitions",
		},
		[]string{"status"},
	)

	webhooksReceived := promauto.With(registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "webhook_events_received_total",
			Help: "The total number of verified webhook events by type",
		},
		[]string{"event"},
	)

	webhooksRejected := promauto.With(registry).NewCounter(
		prometheus.CounterOpts{
			Name: "webhook_events_rejected_total",
			Help: "The total number of webhook events rejected due to an invalid signature",
		},
	)

	orderAmount := promauto.With(registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "order_amount_rupees",
			Help:    "One-time order amounts distribution",
			Buckets: prometheus.ExponentialBuckets(100, 10, 4), // 100, 1000, 10000, 100000
		},
	)

	return &subscriptionMetrics{
		log:              log,
		created:          created,
		superseded:       superseded,
		transitions:      transitions,
		webhooksReceived: webhooksReceived,
		webhooksRejected: webhooksRejected,
		orderAmount:      orderAmount,
	}
}

// IncCreated увеличивает счетчик созданных подписок
func (m *subscriptionMetrics) IncCreated(product string) {
	m.created.WithLabelValues(product).Inc()
}

// IncSuperseded увеличивает счетчик вытесненных подписок
func (m *subscriptionMetrics) IncSuperseded(product string) {
	m.superseded.WithLabelValues(product).Inc()
}

// IncTransition увеличивает счетчик переходов статуса
func (m *subscriptionMetrics) IncTransition(status string) {
	m.transitions.WithLabelValues(status).Inc()
}

// IncWebhookReceived увеличивает счетчик полученных вебхук-событий
func (m *subscriptionMetrics) IncWebhookReceived(event string) {
	m.webhooksReceived.WithLabelValues(event).Inc()
}

// IncWebhookRejected увеличивает счетчик отклоненных вебхуков
func (m *subscriptionMetrics) IncWebhookRejected() {
	m.webhooksRejected.Inc()
}

// ObserveOrderAmount фиксирует сумму разового заказа
func (m *subscriptionMetrics) ObserveOrderAmount(amount float64) {
	m.orderAmount.Observe(amount)
}
