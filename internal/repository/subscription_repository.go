package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/freshcrate/subscription-service/internal/domain"
	"github.com/freshcrate/subscription-service/pkg/logger"
	"github.com/google/uuid"
)

// SubscriptionRepository интерфейс репозитория для работы с подписками
type SubscriptionRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (domain.Subscription, error)

	// GetByExternalID возвращает подписку по идентификатору Razorpay
	GetByExternalID(ctx context.Context, externalID string) (domain.Subscription, error)

	// GetActiveByCustomerAndProduct возвращает подписки клиента на товар
	// со статусом, отличным от cancelled
	GetActiveByCustomerAndProduct(ctx context.Context, customerID uuid.UUID, product string) ([]domain.Subscription, error)

	GetByCustomerID(ctx context.Context, customerID uuid.UUID) ([]domain.Subscription, error)

	// GetLatest возвращает последние подписки (новые в начале)
	GetLatest(ctx context.Context, limit int) ([]domain.Subscription, error)

	Create(ctx context.Context, subscription domain.Subscription) (domain.Subscription, error)
	Update(ctx context.Context, subscription domain.Subscription) error
}

// InMemorySubscriptionRepository реализация репозитория подписок в памяти
type InMemorySubscriptionRepository struct {
	subscriptions map[uuid.UUID]domain.Subscription
	byExternalID  map[string]uuid.UUID
	mutex         sync.RWMutex
	log           *logger.Logger
}

// NewInMemorySubscriptionRepository создает новый репозиторий подписок в памяти
func NewInMemorySubscriptionRepository(log *logger.Logger) *InMemorySubscriptionRepository {
	return &InMemorySubscriptionRepository{
		subscriptions: make(map[uuid.UUID]domain.Subscription),
		byExternalID:  make(map[string]uuid.UUID),
		log:           log,
	}
}

// GetByID возвращает подписку по ID
func (r *InMemorySubscriptionRepository) GetByID(ctx context.Context, id uuid.UUID) (domain.Subscription, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	subscription, exists := r.subscriptions[id]
	if !exists {
		return domain.Subscription{}, ErrNotFound
	}

	return subscription, nil
}

// GetByExternalID возвращает подписку по идентификатору Razorpay
func (r *InMemorySubscriptionRepository) GetByExternalID(ctx context.Context, externalID string) (domain.Subscription, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	id, exists := r.byExternalID[externalID]
	if !exists {
		return domain.Subscription{}, ErrNotFound
	}

	return r.subscriptions[id], nil
}

// GetActiveByCustomerAndProduct возвращает неотмененные подписки клиента на товар
func (r *InMemorySubscriptionRepository) GetActiveByCustomerAndProduct(ctx context.Context, customerID uuid.UUID, product string) ([]domain.Subscription, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	var subscriptions []domain.Subscription
	for _, subscription := range r.subscriptions {
		if subscription.CustomerID == customerID &&
			subscription.Product == product &&
			subscription.Status != domain.SubscriptionStatusCancelled {
			subscriptions = append(subscriptions, subscription)
		}
	}

	return subscriptions, nil
}

// GetByCustomerID возвращает подписки по ID клиента
func (r *InMemorySubscriptionRepository) GetByCustomerID(ctx context.Context, customerID uuid.UUID) ([]domain.Subscription, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	var subscriptions []domain.Subscription
	for _, subscription := range r.subscriptions {
		if subscription.CustomerID == customerID {
			subscriptions = append(subscriptions, subscription)
		}
	}

	return subscriptions, nil
}

// GetLatest возвращает последние подписки (новые в начале)
func (r *InMemorySubscriptionRepository) GetLatest(ctx context.Context, limit int) ([]domain.Subscription, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	subscriptions := make([]domain.Subscription, 0, len(r.subscriptions))
	for _, subscription := range r.subscriptions {
		subscriptions = append(subscriptions, subscription)
	}

	sort.Slice(subscriptions, func(i, j int) bool {
		return subscriptions[i].CreatedAt.After(subscriptions[j].CreatedAt)
	})

	if limit > 0 && len(subscriptions) > limit {
		subscriptions = subscriptions[:limit]
	}

	return subscriptions, nil
}

// Create создает новую подписку
func (r *InMemorySubscriptionRepository) Create(ctx context.Context, subscription domain.Subscription) (domain.Subscription, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if subscription.ExternalID != "" {
		if _, exists := r.byExternalID[subscription.ExternalID]; exists {
			return domain.Subscription{}, ErrDuplicate
		}
	}

	subscription.CreatedAt = time.Now()
	subscription.UpdatedAt = time.Now()

	r.subscriptions[subscription.ID] = subscription
	if subscription.ExternalID != "" {
		r.byExternalID[subscription.ExternalID] = subscription.ID
	}

	return subscription, nil
}

// Update обновляет существующую подписку
func (r *InMemorySubscriptionRepository) Update(ctx context.Context, subscription domain.Subscription) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	existing, exists := r.subscriptions[subscription.ID]
	if !exists {
		return ErrNotFound
	}

	// Неизменяемые поля сохраняем
	subscription.CustomerID = existing.CustomerID
	subscription.ExternalID = existing.ExternalID
	subscription.CreatedAt = existing.CreatedAt
	subscription.UpdatedAt = time.Now()
	r.subscriptions[subscription.ID] = subscription

	return nil
}
