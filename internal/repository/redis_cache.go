package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/freshcrate/subscription-service/internal/domain"
	"github.com/freshcrate/subscription-service/pkg/logger"
	"github.com/redis/go-redis/v9"
)

const (
	// Префикс ключей для результата проверки активной подписки
	activeSubscriptionKeyPrefix = "active_sub:"

	// TTL для кэша
	defaultCacheTTL = 5 * time.Minute
)

// SubscriptionCache интерфейс кеша результатов проверки активной подписки
type SubscriptionCache interface {
	GetActiveSubscription(ctx context.Context, email, product string) (*domain.SubscriptionCheck, error)
	SetActiveSubscription(ctx context.Context, email, product string, check domain.SubscriptionCheck) error
	InvalidateActiveSubscription(ctx context.Context, email, product string) error
}

// RedisCacheRepository реализует кеширование проверок подписок через Redis
type RedisCacheRepository struct {
	client *redis.Client
	log    *logger.Logger
}

// NewRedisCacheRepository создает новый экземпляр Redis репозитория
func NewRedisCacheRepository(redisAddr, redisPassword string, redisDB int, log *logger.Logger) (*RedisCacheRepository, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     redisAddr,
		Password: redisPassword,
		DB:       redisDB,
	})

	// Проверяем соединение с Redis
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		log.Errorw("Failed to connect to Redis", "error", err)
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	log.Infow("Connected to Redis successfully", "addr", redisAddr)
	return &RedisCacheRepository{
		client: client,
		log:    log,
	}, nil
}

// Close закрывает соединение с Redis
func (r *RedisCacheRepository) Close() error {
	return r.client.Close()
}

func activeSubscriptionKey(email, product string) string {
	return fmt.Sprintf("%s%s:%s", activeSubscriptionKeyPrefix, email, product)
}

// GetActiveSubscription возвращает закешированный результат проверки подписки.
// При промахе кеша возвращает nil без ошибки.
func (r *RedisCacheRepository) GetActiveSubscription(ctx context.Context, email, product string) (*domain.SubscriptionCheck, error) {
	key := activeSubscriptionKey(email, product)

	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		r.log.Errorw("Error getting subscription check from Redis", "error", err, "key", key)
		return nil, fmt.Errorf("failed to get subscription check from cache: %w", err)
	}

	var check domain.SubscriptionCheck
	if err := json.Unmarshal(data, &check); err != nil {
		r.log.Errorw("Failed to unmarshal cached subscription check", "error", err, "key", key)
		return nil, fmt.Errorf("failed to unmarshal cached subscription check: %w", err)
	}

	r.log.Debugw("Subscription check retrieved from cache", "email", email, "product", product)
	return &check, nil
}

// SetActiveSubscription кеширует результат проверки подписки
func (r *RedisCacheRepository) SetActiveSubscription(ctx context.Context, email, product string, check domain.SubscriptionCheck) error {
	key := activeSubscriptionKey(email, product)

	data, err := json.Marshal(check)
	if err != nil {
		return fmt.Errorf("failed to marshal subscription check: %w", err)
	}

	if err := r.client.Set(ctx, key, data, defaultCacheTTL).Err(); err != nil {
		r.log.Errorw("Failed to cache subscription check", "error", err, "key", key)
		return fmt.Errorf("failed to cache subscription check: %w", err)
	}

	return nil
}

// InvalidateActiveSubscription удаляет закешированный результат проверки подписки
func (r *RedisCacheRepository) InvalidateActiveSubscription(ctx context.Context, email, product string) error {
	key := activeSubscriptionKey(email, product)

	if err := r.client.Del(ctx, key).Err(); err != nil {
		r.log.Errorw("Failed to invalidate subscription check cache", "error", err, "key", key)
		return fmt.Errorf("failed to invalidate subscription check cache: %w", err)
	}

	return nil
}
