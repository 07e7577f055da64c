package repository

import (
	"context"
	"sync"
	"time"

	"github.com/freshcrate/subscription-service/internal/domain"
	"github.com/freshcrate/subscription-service/pkg/logger"
	"github.com/google/uuid"
)

// CustomerRepository интерфейс репозитория для работы с клиентами
type CustomerRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (domain.Customer, error)
	GetByEmail(ctx context.Context, email string) (domain.Customer, error)
	Create(ctx context.Context, customer domain.Customer) (domain.Customer, error)
	Update(ctx context.Context, customer domain.Customer) error
}

// InMemoryCustomerRepository реализация репозитория клиентов в памяти
type InMemoryCustomerRepository struct {
	customers map[uuid.UUID]domain.Customer
	byEmail   map[string]uuid.UUID
	mutex     sync.RWMutex
	log       *logger.Logger
}

// NewInMemoryCustomerRepository создает новый репозиторий клиентов в памяти
func NewInMemoryCustomerRepository(log *logger.Logger) *InMemoryCustomerRepository {
	return &InMemoryCustomerRepository{
		customers: make(map[uuid.UUID]domain.Customer),
		byEmail:   make(map[string]uuid.UUID),
		log:       log,
	}
}

// GetByID возвращает клиента по ID
func (r *InMemoryCustomerRepository) GetByID(ctx context.Context, id uuid.UUID) (domain.Customer, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	customer, exists := r.customers[id]
	if !exists {
		return domain.Customer{}, ErrNotFound
	}

	return customer, nil
}

// GetByEmail возвращает клиента по email
func (r *InMemoryCustomerRepository) GetByEmail(ctx context.Context, email string) (domain.Customer, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	id, exists := r.byEmail[email]
	if !exists {
		return domain.Customer{}, ErrNotFound
	}

	return r.customers[id], nil
}

// Create создает нового клиента
func (r *InMemoryCustomerRepository) Create(ctx context.Context, customer domain.Customer) (domain.Customer, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, exists := r.byEmail[customer.Email]; exists {
		return domain.Customer{}, ErrDuplicate
	}

	customer.CreatedAt = time.Now()
	customer.UpdatedAt = time.Now()

	r.customers[customer.ID] = customer
	r.byEmail[customer.Email] = customer.ID

	return customer, nil
}

// Update обновляет существующего клиента
func (r *InMemoryCustomerRepository) Update(ctx context.Context, customer domain.Customer) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	existing, exists := r.customers[customer.ID]
	if !exists {
		return ErrNotFound
	}

	// Email натуральный ключ, не меняется
	customer.Email = existing.Email
	customer.CreatedAt = existing.CreatedAt
	customer.UpdatedAt = time.Now()
	r.customers[customer.ID] = customer

	return nil
}
