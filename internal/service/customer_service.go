package service

import (
	"context"
	"errors"

	"github.com/freshcrate/subscription-service/internal/domain"
	"github.com/freshcrate/subscription-service/internal/integration/razorpay"
	"github.com/freshcrate/subscription-service/internal/repository"
	"github.com/freshcrate/subscription-service/pkg/logger"
	"github.com/google/uuid"
)

// CustomerService интерфейс сервиса для работы с клиентами
type CustomerService interface {
	// ResolveCustomer находит или создает локального клиента по email и
	// гарантирует, что у него есть идентификатор клиента Razorpay
	ResolveCustomer(ctx context.Context, name, email, contact string) (domain.Customer, error)
}

type customerService struct {
	repo    repository.CustomerRepository
	gateway PaymentGateway
	log     *logger.Logger
}

// NewCustomerService создает новый сервис для работы с клиентами
func NewCustomerService(repo repository.CustomerRepository, gateway PaymentGateway, log *logger.Logger) CustomerService {
	return &customerService{
		repo:    repo,
		gateway: gateway,
		log:     log,
	}
}

// ResolveCustomer находит или создает клиента.
// Для нового email сначала выполняется find-or-create на стороне Razorpay,
// локальная запись создается только после успеха шлюза: сбой шлюза не
// оставляет частичного состояния. Повторный вызов идемпотентен, потому что
// поиск в Razorpay идет по email.
func (s *customerService) ResolveCustomer(ctx context.Context, name, email, contact string) (domain.Customer, error) {
	existing, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			s.log.Error("Error fetching customer by email: %v", err)
			return domain.Customer{}, err
		}

		// Клиент еще не известен: сначала шлюз, потом локальная запись
		gatewayCustomer, err := s.findOrCreateGatewayCustomer(ctx, name, email, contact)
		if err != nil {
			return domain.Customer{}, err
		}

		customer := domain.Customer{
			ID:                 uuid.New(),
			Email:              email,
			Name:               name,
			Contact:            contact,
			RazorpayCustomerID: gatewayCustomer.ID,
		}

		created, err := s.repo.Create(ctx, customer)
		if err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				// Параллельный запрос успел создать запись; перечитываем
				return s.repo.GetByEmail(ctx, email)
			}
			s.log.Error("Failed to create customer: %v", err)
			return domain.Customer{}, err
		}

		s.log.Info("Created customer %s for email %s", created.ID, email)
		return created, nil
	}

	// Запись существует: обновляем изменяемые поля
	existing.Name = name
	existing.Contact = contact

	// Дозаполняем идентификатор Razorpay, если его еще нет
	if existing.RazorpayCustomerID == "" {
		gatewayCustomer, err := s.findOrCreateGatewayCustomer(ctx, name, email, contact)
		if err != nil {
			return domain.Customer{}, err
		}
		existing.RazorpayCustomerID = gatewayCustomer.ID
	}

	if err := s.repo.Update(ctx, existing); err != nil {
		s.log.Error("Failed to update customer: %v", err)
		return domain.Customer{}, err
	}

	return existing, nil
}

// findOrCreateGatewayCustomer ищет клиента Razorpay по email, при отсутствии создает.
// Создание выполняется не более одного раза на ранее не виденный email.
func (s *customerService) findOrCreateGatewayCustomer(ctx context.Context, name, email, contact string) (*razorpay.Customer, error) {
	gatewayCustomer, err := s.gateway.FindCustomerByEmail(ctx, email)
	if err != nil {
		s.log.Error("Razorpay customer lookup failed for %s: %v", email, err)
		return nil, err
	}

	if gatewayCustomer != nil {
		return gatewayCustomer, nil
	}

	gatewayCustomer, err = s.gateway.CreateCustomer(ctx, name, email, contact)
	if err != nil {
		s.log.Error("Razorpay customer creation failed for %s: %v", email, err)
		return nil, err
	}

	return gatewayCustomer, nil
}
