package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/freshcrate/subscription-service/internal/domain"
	"github.com/freshcrate/subscription-service/internal/integration/razorpay"
	"github.com/freshcrate/subscription-service/internal/metrics"
	"github.com/freshcrate/subscription-service/internal/repository"
	"github.com/freshcrate/subscription-service/pkg/logger"
)

const (
	// Число списаний регулярной подписки (год еженедельных доставок с запасом)
	subscriptionTotalCount = 12

	adminListLimit = 30
	planListCount  = 50
)

// SubscriptionService интерфейс сервиса для работы с подписками
type SubscriptionService interface {
	// Create оформляет подписку или разовый заказ на товар
	Create(ctx context.Context, req domain.CreateSubscriptionRequest) (domain.Subscription, error)

	// Check проверяет наличие активной подписки клиента на товар
	Check(ctx context.Context, email, product string) (domain.SubscriptionCheck, error)

	// List возвращает последние подписки с данными клиентов
	List(ctx context.Context) ([]domain.SubscriptionListItem, error)

	// Cancel отменяет подписку по идентификатору Razorpay
	Cancel(ctx context.Context, externalID string) error

	// Plans возвращает планы Razorpay, привязанные к товарам каталога
	Plans(ctx context.Context) ([]domain.PlanInfo, error)
}

type subscriptionService struct {
	subscriptions repository.SubscriptionRepository
	customers     repository.CustomerRepository
	customerSvc   CustomerService
	gateway       PaymentGateway
	cache         repository.SubscriptionCache
	producer      EventProducer
	metrics       metrics.SubscriptionMetrics
	productPlans  map[string]string
	log           *logger.Logger
}

// NewSubscriptionService создает новый сервис подписок.
// cache и producer могут быть nil, тогда кеширование и публикация событий отключены.
func NewSubscriptionService(
	subscriptions repository.SubscriptionRepository,
	customers repository.CustomerRepository,
	customerSvc CustomerService,
	gateway PaymentGateway,
	cache repository.SubscriptionCache,
	producer EventProducer,
	m metrics.SubscriptionMetrics,
	productPlans map[string]string,
	log *logger.Logger,
) SubscriptionService {
	return &subscriptionService{
		subscriptions: subscriptions,
		customers:     customers,
		customerSvc:   customerSvc,
		gateway:       gateway,
		cache:         cache,
		producer:      producer,
		metrics:       m,
		productPlans:  productPlans,
		log:           log,
	}
}

// Create оформляет подписку на товар.
//
// Порядок шагов фиксированный: валидация, разрешение клиента, вытеснение
// прежних подписок на тот же товар, создание сущности в Razorpay, запись
// pending-подписки. До шага вытеснения сбой не оставляет следов; после него
// сбой возвращает ProvisioningError, и клиент повторяет запрос целиком.
func (s *subscriptionService) Create(ctx context.Context, req domain.CreateSubscriptionRequest) (domain.Subscription, error) {
	planID, knownProduct := s.productPlans[req.Product]
	if !req.OneTime && !knownProduct {
		s.log.Warn("Subscription request for unknown product: %s", req.Product)
		return domain.Subscription{}, domain.ErrUnknownProduct
	}
	if req.OneTime && req.TotalAmount <= 0 {
		return domain.Subscription{}, fmt.Errorf("%w: one-time order requires a positive total_amount", domain.ErrInvalidInput)
	}

	customer, err := s.customerSvc.ResolveCustomer(ctx, req.Name, req.Email, req.Contact)
	if err != nil {
		return domain.Subscription{}, err
	}

	if err := s.supersedeExisting(ctx, customer, req.Product); err != nil {
		return domain.Subscription{}, err
	}

	frequency := domain.NormalizeFrequency(req.Frequency)

	subscription := domain.Subscription{
		ID:         uuid.New(),
		CustomerID: customer.ID,
		Product:    req.Product,
		Frequency:  frequency,
		OneTime:    req.OneTime,
		Status:     domain.SubscriptionStatusPending,
	}

	if req.OneTime {
		order, err := s.gateway.CreateOrder(ctx, razorpay.OrderRequest{
			Amount:   int64(req.TotalAmount * 100), // В пайсах
			Currency: "INR",
			Receipt:  fmt.Sprintf("rcpt_%d", time.Now().Unix()),
			Notes: map[string]string{
				"product":        req.Product,
				"customer_name":  req.Name,
				"customer_email": req.Email,
			},
		})
		if err != nil {
			s.log.Error("Failed to create Razorpay order: %v", err)
			return domain.Subscription{}, domain.NewProvisioningError("gateway", err)
		}
		subscription.ExternalID = order.ID
		s.metrics.ObserveOrderAmount(req.TotalAmount)
	} else {
		gatewaySub, err := s.gateway.CreateSubscription(ctx, razorpay.SubscriptionRequest{
			PlanID:         planID,
			CustomerID:     customer.RazorpayCustomerID,
			TotalCount:     subscriptionTotalCount,
			CustomerNotify: 1,
			Notes: map[string]string{
				"product":        req.Product,
				"frequency":      frequency,
				"customer_name":  req.Name,
				"customer_email": req.Email,
			},
		})
		if err != nil {
			s.log.Error("Failed to create Razorpay subscription: %v", err)
			return domain.Subscription{}, domain.NewProvisioningError("gateway", err)
		}
		subscription.ExternalID = gatewaySub.ID
		subscription.PlanID = planID
	}

	created, err := s.subscriptions.Create(ctx, subscription)
	if err != nil {
		s.log.Error("Failed to persist subscription %s: %v", subscription.ExternalID, err)
		return domain.Subscription{}, domain.NewProvisioningError("storage", err)
	}

	s.invalidateCheckCache(ctx, customer.Email, created.Product)
	s.publishCreated(ctx, created)
	s.metrics.IncCreated(created.Product)

	s.log.Info("Created %s subscription %s for customer %s",
		created.Status, created.ExternalID, customer.Email)
	return created, nil
}

// supersedeExisting вытесняет прежние подписки клиента на товар.
// Отмена на стороне Razorpay выполняется по возможности: ее сбой логируется,
// но локальная отмена происходит безусловно, чтобы инвариант единственной
// активной подписки держался даже при недоступном шлюзе.
func (s *subscriptionService) supersedeExisting(ctx context.Context, customer domain.Customer, product string) error {
	existing, err := s.subscriptions.GetActiveByCustomerAndProduct(ctx, customer.ID, product)
	if err != nil {
		s.log.Error("Failed to list active subscriptions for %s/%s: %v", customer.ID, product, err)
		return err
	}

	for _, old := range existing {
		if !old.OneTime && old.ExternalID != "" {
			if err := s.gateway.CancelSubscription(ctx, old.ExternalID); err != nil {
				s.log.Warn("Best-effort Razorpay cancellation failed for %s: %v", old.ExternalID, err)
			}
		}

		now := time.Now()
		old.Status = domain.SubscriptionStatusCancelled
		old.CancelledAt = &now
		if err := s.subscriptions.Update(ctx, old); err != nil {
			s.log.Error("Failed to supersede subscription %s: %v", old.ExternalID, err)
			return err
		}

		s.metrics.IncSuperseded(product)
		s.log.Info("Superseded subscription %s for %s/%s", old.ExternalID, customer.Email, product)
	}

	return nil
}

// Check проверяет активную подписку клиента на товар
func (s *subscriptionService) Check(ctx context.Context, email, product string) (domain.SubscriptionCheck, error) {
	if s.cache != nil {
		if cached, err := s.cache.GetActiveSubscription(ctx, email, product); err == nil && cached != nil {
			return *cached, nil
		}
	}

	check := domain.SubscriptionCheck{Exists: false}

	customer, err := s.customers.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.cacheCheck(ctx, email, product, check)
			return check, nil
		}
		return domain.SubscriptionCheck{}, err
	}

	active, err := s.subscriptions.GetActiveByCustomerAndProduct(ctx, customer.ID, product)
	if err != nil {
		return domain.SubscriptionCheck{}, err
	}

	if len(active) > 0 {
		check = domain.SubscriptionCheck{
			Exists:         true,
			SubscriptionID: active[0].ExternalID,
			Frequency:      active[0].Frequency,
		}
	}

	s.cacheCheck(ctx, email, product, check)
	return check, nil
}

// List возвращает последние подписки с данными клиентов для администратора
func (s *subscriptionService) List(ctx context.Context) ([]domain.SubscriptionListItem, error) {
	subscriptions, err := s.subscriptions.GetLatest(ctx, adminListLimit)
	if err != nil {
		s.log.Error("Failed to list subscriptions: %v", err)
		return nil, err
	}

	items := make([]domain.SubscriptionListItem, 0, len(subscriptions))
	for _, sub := range subscriptions {
		item := domain.SubscriptionListItem{
			Product:     sub.Product,
			Frequency:   sub.Frequency,
			ExternalID:  sub.ExternalID,
			Status:      sub.Status,
			CreatedAt:   sub.CreatedAt,
			CancelledAt: sub.CancelledAt,
		}

		customer, err := s.customers.GetByID(ctx, sub.CustomerID)
		if err != nil {
			// Подписка без клиента в список все равно попадает
			s.log.Warn("Customer %s not found for subscription %s: %v", sub.CustomerID, sub.ExternalID, err)
		} else {
			item.CustomerName = customer.Name
			item.Email = customer.Email
			item.Contact = customer.Contact
		}

		items = append(items, item)
	}

	return items, nil
}

// Cancel отменяет подписку по идентификатору Razorpay.
// Повторная отмена уже отмененной подписки не считается ошибкой.
func (s *subscriptionService) Cancel(ctx context.Context, externalID string) error {
	subscription, err := s.subscriptions.GetByExternalID(ctx, externalID)
	if err != nil {
		return err
	}

	if subscription.Status == domain.SubscriptionStatusCancelled {
		s.log.Info("Subscription %s already cancelled", externalID)
		return nil
	}

	// У разовых заказов нечего отменять на стороне Razorpay
	if !subscription.OneTime {
		if err := s.gateway.CancelSubscription(ctx, externalID); err != nil {
			s.log.Error("Razorpay cancellation failed for %s: %v", externalID, err)
			return err
		}
	}

	now := time.Now()
	subscription.Status = domain.SubscriptionStatusCancelled
	subscription.CancelledAt = &now
	if err := s.subscriptions.Update(ctx, subscription); err != nil {
		s.log.Error("Failed to mark subscription %s cancelled: %v", externalID, err)
		return err
	}

	s.metrics.IncTransition(string(domain.SubscriptionStatusCancelled))
	s.invalidateCacheForSubscription(ctx, subscription)
	s.publishCancelled(ctx, subscription)

	s.log.Info("Cancelled subscription %s", externalID)
	return nil
}

// Plans возвращает планы Razorpay, у которых в notes указан товар каталога
func (s *subscriptionService) Plans(ctx context.Context) ([]domain.PlanInfo, error) {
	plans, err := s.gateway.ListPlans(ctx, planListCount)
	if err != nil {
		s.log.Error("Failed to list Razorpay plans: %v", err)
		return nil, err
	}

	infos := make([]domain.PlanInfo, 0, len(plans))
	for _, plan := range plans {
		product := plan.Notes["product_id"]
		if product == "" {
			continue
		}

		infos = append(infos, domain.PlanInfo{
			ID:        plan.ID,
			Name:      plan.Item.Name,
			Product:   product,
			Amount:    float64(plan.Item.Amount) / 100, // Пайсы в рупии
			Period:    plan.Period,
			Interval:  plan.Interval,
			Status:    "active",
			CreatedAt: time.Unix(plan.Created, 0),
		})
	}

	return infos, nil
}

func (s *subscriptionService) cacheCheck(ctx context.Context, email, product string, check domain.SubscriptionCheck) {
	if s.cache == nil {
		return
	}
	if err := s.cache.SetActiveSubscription(ctx, email, product, check); err != nil {
		s.log.Warn("Failed to cache subscription check for %s/%s: %v", email, product, err)
	}
}

func (s *subscriptionService) invalidateCheckCache(ctx context.Context, email, product string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateActiveSubscription(ctx, email, product); err != nil {
		s.log.Warn("Failed to invalidate subscription check cache for %s/%s: %v", email, product, err)
	}
}

// invalidateCacheForSubscription сбрасывает кеш проверки по email владельца подписки
func (s *subscriptionService) invalidateCacheForSubscription(ctx context.Context, subscription domain.Subscription) {
	if s.cache == nil {
		return
	}
	customer, err := s.customers.GetByID(ctx, subscription.CustomerID)
	if err != nil {
		s.log.Warn("Cannot invalidate cache, customer %s not found: %v", subscription.CustomerID, err)
		return
	}
	s.invalidateCheckCache(ctx, customer.Email, subscription.Product)
}

func (s *subscriptionService) publishCreated(ctx context.Context, subscription domain.Subscription) {
	if s.producer == nil {
		return
	}
	if err := s.producer.PublishSubscriptionCreated(ctx, subscription); err != nil {
		s.log.Warn("Failed to publish subscription.created for %s: %v", subscription.ExternalID, err)
	}
}

func (s *subscriptionService) publishCancelled(ctx context.Context, subscription domain.Subscription) {
	if s.producer == nil {
		return
	}
	if err := s.producer.PublishSubscriptionCancelled(ctx, subscription); err != nil {
		s.log.Warn("Failed to publish subscription.cancelled for %s: %v", subscription.ExternalID, err)
	}
}
