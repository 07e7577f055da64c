package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/freshcrate/subscription-service/internal/domain"
	"github.com/freshcrate/subscription-service/internal/metrics"
	"github.com/freshcrate/subscription-service/internal/repository"
	"github.com/freshcrate/subscription-service/pkg/logger"
)

// WebhookService интерфейс обработки вебхуков платежного шлюза
type WebhookService interface {
	// HandleEvent проверяет подпись и применяет событие к локальному состоянию
	HandleEvent(ctx context.Context, payload []byte, signature string) error
}

type webhookService struct {
	subscriptions repository.SubscriptionRepository
	customers     repository.CustomerRepository
	verifier      WebhookVerifier
	cache         repository.SubscriptionCache
	producer      EventProducer
	metrics       metrics.SubscriptionMetrics
	log           *logger.Logger
}

// NewWebhookService создает новый сервис обработки вебхуков.
// cache и producer могут быть nil.
func NewWebhookService(
	subscriptions repository.SubscriptionRepository,
	customers repository.CustomerRepository,
	verifier WebhookVerifier,
	cache repository.SubscriptionCache,
	producer EventProducer,
	m metrics.SubscriptionMetrics,
	log *logger.Logger,
) WebhookService {
	return &webhookService{
		subscriptions: subscriptions,
		customers:     customers,
		verifier:      verifier,
		cache:         cache,
		producer:      producer,
		metrics:       m,
		log:           log,
	}
}

// HandleEvent применяет событие Razorpay к локальной подписке.
//
// Подпись проверяется по сырому телу до разбора JSON. После проверки событие
// не может провалить запрос: неизвестные типы, неизвестные подписки и
// недопустимые переходы статуса игнорируются с записью в лог, чтобы шлюз не
// ретраил события, которые нам нечем применить.
func (s *webhookService) HandleEvent(ctx context.Context, payload []byte, signature string) error {
	if !s.verifier.VerifyWebhookSignature(payload, signature) {
		s.metrics.IncWebhookRejected()
		s.log.Warn("Rejected webhook with invalid signature")
		return domain.ErrInvalidSignature
	}

	var event domain.WebhookEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		s.log.Warn("Ignoring malformed webhook payload: %v", err)
		return nil
	}

	s.metrics.IncWebhookReceived(string(event.Event))

	switch event.Event {
	case domain.WebhookEventSubscriptionCharged:
		return s.transition(ctx, event.SubscriptionID(), domain.SubscriptionStatusActive)
	case domain.WebhookEventSubscriptionCancelled:
		return s.transition(ctx, event.SubscriptionID(), domain.SubscriptionStatusCancelled)
	default:
		s.log.Debug("Ignoring webhook event type: %s", event.Event)
		return nil
	}
}

// transition переводит подписку в целевой статус.
// Недопустимые переходы (повторная доставка, события после отмены) не
// изменяют состояние: идемпотентность и терминальность отмены следуют из
// таблицы допустимых переходов.
func (s *webhookService) transition(ctx context.Context, externalID string, target domain.SubscriptionStatus) error {
	if externalID == "" {
		s.log.Warn("Webhook event without subscription id")
		return nil
	}

	subscription, err := s.subscriptions.GetByExternalID(ctx, externalID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.log.Warn("Webhook for unknown subscription: %s", externalID)
			return nil
		}
		s.log.Error("Failed to load subscription %s: %v", externalID, err)
		return err
	}

	if !subscription.Status.CanTransitionTo(target) {
		s.log.Info("Skipping transition %s -> %s for subscription %s",
			subscription.Status, target, externalID)
		return nil
	}

	subscription.Status = target
	if target == domain.SubscriptionStatusCancelled {
		now := time.Now()
		subscription.CancelledAt = &now
	}

	if err := s.subscriptions.Update(ctx, subscription); err != nil {
		s.log.Error("Failed to update subscription %s: %v", externalID, err)
		return err
	}

	s.metrics.IncTransition(string(target))
	s.invalidateCheckCache(ctx, subscription)
	s.publishTransition(ctx, subscription, target)

	s.log.Info("Subscription %s transitioned to %s", externalID, target)
	return nil
}

// invalidateCheckCache сбрасывает кеш проверки подписки по email владельца
func (s *webhookService) invalidateCheckCache(ctx context.Context, subscription domain.Subscription) {
	if s.cache == nil {
		return
	}

	customer, err := s.customers.GetByID(ctx, subscription.CustomerID)
	if err != nil {
		s.log.Warn("Cannot invalidate cache, customer %s not found: %v", subscription.CustomerID, err)
		return
	}

	if err := s.cache.InvalidateActiveSubscription(ctx, customer.Email, subscription.Product); err != nil {
		s.log.Warn("Failed to invalidate subscription check cache for %s: %v", customer.Email, err)
	}
}

func (s *webhookService) publishTransition(ctx context.Context, subscription domain.Subscription, target domain.SubscriptionStatus) {
	if s.producer == nil {
		return
	}

	var err error
	switch target {
	case domain.SubscriptionStatusActive:
		err = s.producer.PublishSubscriptionActivated(ctx, subscription)
	case domain.SubscriptionStatusCancelled:
		err = s.producer.PublishSubscriptionCancelled(ctx, subscription)
	}
	if err != nil {
		s.log.Warn("Failed to publish lifecycle event for %s: %v", subscription.ExternalID, err)
	}
}
