package producer

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"

	"github.com/freshcrate/subscription-service/internal/domain"
	"github.com/freshcrate/subscription-service/pkg/logger"
)

const (
	TopicSubscriptionCreated   = "subscription.created"
	TopicSubscriptionActivated = "subscription.activated"
	TopicSubscriptionCancelled = "subscription.cancelled"
)

// SubscriptionEvent представляет событие жизненного цикла подписки для Kafka
type SubscriptionEvent struct {
	ID         string                    `json:"id"`
	CustomerID string                    `json:"customer_id"`
	Product    string                    `json:"product"`
	Frequency  string                    `json:"frequency"`
	ExternalID string                    `json:"razorpay_subscription_id"`
	Status     domain.SubscriptionStatus `json:"status"`
	Timestamp  time.Time                 `json:"timestamp"`
}

// SubscriptionProducer интерфейс для отправки событий жизненного цикла подписок
type SubscriptionProducer interface {
	PublishSubscriptionCreated(ctx context.Context, subscription domain.Subscription) error
	PublishSubscriptionActivated(ctx context.Context, subscription domain.Subscription) error
	PublishSubscriptionCancelled(ctx context.Context, subscription domain.Subscription) error
	Close() error
}

type kafkaSubscriptionProducer struct {
	producer sarama.SyncProducer
	log      *logger.Logger
}

// NewKafkaSubscriptionProducer создает новый продюсер событий подписок
func NewKafkaSubscriptionProducer(producer sarama.SyncProducer, log *logger.Logger) SubscriptionProducer {
	return &kafkaSubscriptionProducer{
		producer: producer,
		log:      log,
	}
}

// PublishSubscriptionCreated публикует событие о создании подписки
func (p *kafkaSubscriptionProducer) PublishSubscriptionCreated(ctx context.Context, subscription domain.Subscription) error {
	return p.publishEvent(ctx, TopicSubscriptionCreated, subscription)
}

// PublishSubscriptionActivated публикует событие об активации подписки
func (p *kafkaSubscriptionProducer) PublishSubscriptionActivated(ctx context.Context, subscription domain.Subscription) error {
	return p.publishEvent(ctx, TopicSubscriptionActivated, subscription)
}

// PublishSubscriptionCancelled публикует событие об отмене подписки
func (p *kafkaSubscriptionProducer) PublishSubscriptionCancelled(ctx context.Context, subscription domain.Subscription) error {
	return p.publishEvent(ctx, TopicSubscriptionCancelled, subscription)
}

// publishEvent публикует событие подписки в Kafka
func (p *kafkaSubscriptionProducer) publishEvent(ctx context.Context, topic string, subscription domain.Subscription) error {
	event := SubscriptionEvent{
		ID:         subscription.ID.String(),
		CustomerID: subscription.CustomerID.String(),
		Product:    subscription.Product,
		Frequency:  subscription.Frequency,
		ExternalID: subscription.ExternalID,
		Status:     subscription.Status,
		Timestamp:  time.Now(),
	}

	messageValue, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal subscription event: %w", err)
	}

	message := &sarama.ProducerMessage{
		Topic: topic,
		Key:   sarama.StringEncoder(subscription.ExternalID),
		Value: sarama.ByteEncoder(messageValue),
		Headers: []sarama.RecordHeader{
			{
				Key:   []byte("event_type"),
				Value: []byte(topic),
			},
		},
		Timestamp: time.Now(),
	}

	partition, offset, err := p.producer.SendMessage(message)
	if err != nil {
		return fmt.Errorf("failed to publish subscription event: %w", err)
	}

	p.log.Info("Published subscription event to topic %s: partition=%d offset=%d",
		topic, partition, offset)

	return nil
}

// Close закрывает продюсер
func (p *kafkaSubscriptionProducer) Close() error {
	return p.producer.Close()
}
