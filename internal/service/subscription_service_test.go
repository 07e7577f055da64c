package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freshcrate/subscription-service/internal/domain"
	"github.com/freshcrate/subscription-service/internal/integration/razorpay"
	"github.com/freshcrate/subscription-service/internal/repository"
)

type subscriptionFixture struct {
	svc      SubscriptionService
	subRepo  *repository.InMemorySubscriptionRepository
	custRepo *repository.InMemoryCustomerRepository
	gateway  *fakeGateway
	cache    *fakeCache
	producer *fakeProducer
}

var testProductPlans = map[string]string{
	"coffee-box": "plan_coffee",
	"tea-box":    "plan_tea",
}

func newSubscriptionFixture(gateway *fakeGateway) *subscriptionFixture {
	log := testLogger()
	subRepo := repository.NewInMemorySubscriptionRepository(log)
	custRepo := repository.NewInMemoryCustomerRepository(log)
	cache := newFakeCache()
	prod := &fakeProducer{}

	customerSvc := NewCustomerService(custRepo, gateway, log)
	svc := NewSubscriptionService(subRepo, custRepo, customerSvc, gateway, cache, prod, noopMetrics{}, testProductPlans, log)

	return &subscriptionFixture{
		svc:      svc,
		subRepo:  subRepo,
		custRepo: custRepo,
		gateway:  gateway,
		cache:    cache,
		producer: prod,
	}
}

func createRequest(product string) domain.CreateSubscriptionRequest {
	return domain.CreateSubscriptionRequest{
		Name:      "Jane",
		Email:     "jane@example.com",
		Contact:   "+911234567890",
		Product:   product,
		Frequency: "2",
	}
}

func TestCreateSubscription_Success(t *testing.T) {
	f := newSubscriptionFixture(&fakeGateway{})

	sub, err := f.svc.Create(context.Background(), createRequest("coffee-box"))
	require.NoError(t, err)

	assert.Equal(t, domain.SubscriptionStatusPending, sub.Status)
	assert.Equal(t, "sub_new", sub.ExternalID)
	assert.Equal(t, "plan_coffee", sub.PlanID)
	assert.Equal(t, "Twice / Week", sub.Frequency)

	require.Len(t, f.gateway.created, 1)
	assert.Equal(t, "plan_coffee", f.gateway.created[0].PlanID)
	assert.Equal(t, 12, f.gateway.created[0].TotalCount)
	assert.Equal(t, 1, f.gateway.created[0].CustomerNotify)

	assert.Equal(t, []string{"sub_new"}, f.producer.created)
}

func TestCreateSubscription_UnknownProduct(t *testing.T) {
	f := newSubscriptionFixture(&fakeGateway{})

	_, err := f.svc.Create(context.Background(), createRequest("mystery-box"))
	assert.ErrorIs(t, err, domain.ErrUnknownProduct)

	// Ни клиента, ни подписки не должно появиться
	_, err = f.custRepo.GetByEmail(context.Background(), "jane@example.com")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestCreateSubscription_SupersedesExisting(t *testing.T) {
	f := newSubscriptionFixture(&fakeGateway{})
	ctx := context.Background()

	first, err := f.svc.Create(ctx, createRequest("coffee-box"))
	require.NoError(t, err)

	f.gateway.createSubscriptionFn = func(ctx context.Context, req razorpay.SubscriptionRequest) (*razorpay.Subscription, error) {
		return &razorpay.Subscription{ID: "sub_second", PlanID: req.PlanID}, nil
	}

	second, err := f.svc.Create(ctx, createRequest("coffee-box"))
	require.NoError(t, err)
	assert.Equal(t, "sub_second", second.ExternalID)

	// Старая подписка отменена локально и на шлюзе
	assert.Contains(t, f.gateway.cancelled, first.ExternalID)

	stored, err := f.subRepo.GetByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.SubscriptionStatusCancelled, stored.Status)
	assert.NotNil(t, stored.CancelledAt)

	// Инвариант: не более одной неотмененной подписки на пару клиент/товар
	customer, err := f.custRepo.GetByEmail(ctx, "jane@example.com")
	require.NoError(t, err)
	active, err := f.subRepo.GetActiveByCustomerAndProduct(ctx, customer.ID, "coffee-box")
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "sub_second", active[0].ExternalID)
}

func TestCreateSubscription_SupersedesDespiteGatewayCancelFailure(t *testing.T) {
	f := newSubscriptionFixture(&fakeGateway{})
	ctx := context.Background()

	first, err := f.svc.Create(ctx, createRequest("coffee-box"))
	require.NoError(t, err)

	f.gateway.cancelSubscriptionFn = func(ctx context.Context, id string) error {
		return domain.NewGatewayError("UNAVAILABLE", "down", 0, errors.New("timeout"))
	}
	f.gateway.createSubscriptionFn = func(ctx context.Context, req razorpay.SubscriptionRequest) (*razorpay.Subscription, error) {
		return &razorpay.Subscription{ID: "sub_second"}, nil
	}

	_, err = f.svc.Create(ctx, createRequest("coffee-box"))
	require.NoError(t, err)

	// Локальная отмена безусловна, сбой отмены на шлюзе ее не блокирует
	stored, err := f.subRepo.GetByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.SubscriptionStatusCancelled, stored.Status)
}

func TestCreateSubscription_GatewayFailureAfterSupersede(t *testing.T) {
	f := newSubscriptionFixture(&fakeGateway{})
	ctx := context.Background()

	first, err := f.svc.Create(ctx, createRequest("coffee-box"))
	require.NoError(t, err)

	f.gateway.createSubscriptionFn = func(ctx context.Context, req razorpay.SubscriptionRequest) (*razorpay.Subscription, error) {
		return nil, domain.NewGatewayError("SERVER_ERROR", "boom", 500, nil)
	}

	_, err = f.svc.Create(ctx, createRequest("coffee-box"))
	require.Error(t, err)

	var provErr *domain.ProvisioningError
	require.ErrorAs(t, err, &provErr)
	assert.Equal(t, "gateway", provErr.Stage)

	// Вытеснение уже произошло, повтор запроса безопасен: активных подписок нет
	customer, err := f.custRepo.GetByEmail(ctx, "jane@example.com")
	require.NoError(t, err)
	active, err := f.subRepo.GetActiveByCustomerAndProduct(ctx, customer.ID, "coffee-box")
	require.NoError(t, err)
	assert.Empty(t, active)

	stored, err := f.subRepo.GetByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.SubscriptionStatusCancelled, stored.Status)
}

func TestCreateSubscription_OneTimeOrder(t *testing.T) {
	f := newSubscriptionFixture(&fakeGateway{})

	req := createRequest("anything-goes")
	req.OneTime = true
	req.TotalAmount = 499.50

	sub, err := f.svc.Create(context.Background(), req)
	require.NoError(t, err)

	assert.True(t, sub.OneTime)
	assert.Equal(t, "order_new", sub.ExternalID)
	assert.Empty(t, sub.PlanID)

	require.Len(t, f.gateway.ordersMade, 1)
	assert.Equal(t, int64(49950), f.gateway.ordersMade[0].Amount, "amount converted to paise")
	assert.Equal(t, "INR", f.gateway.ordersMade[0].Currency)
}

func TestCreateSubscription_OneTimeRequiresAmount(t *testing.T) {
	f := newSubscriptionFixture(&fakeGateway{})

	req := createRequest("coffee-box")
	req.OneTime = true
	req.TotalAmount = 0

	_, err := f.svc.Create(context.Background(), req)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCheckSubscription(t *testing.T) {
	f := newSubscriptionFixture(&fakeGateway{})
	ctx := context.Background()

	check, err := f.svc.Check(ctx, "jane@example.com", "coffee-box")
	require.NoError(t, err)
	assert.False(t, check.Exists)

	_, err = f.svc.Create(ctx, createRequest("coffee-box"))
	require.NoError(t, err)

	check, err = f.svc.Check(ctx, "jane@example.com", "coffee-box")
	require.NoError(t, err)
	assert.True(t, check.Exists)
	assert.Equal(t, "sub_new", check.SubscriptionID)
	assert.Equal(t, "Twice / Week", check.Frequency)

	// Другой товар активной подписки не имеет
	check, err = f.svc.Check(ctx, "jane@example.com", "tea-box")
	require.NoError(t, err)
	assert.False(t, check.Exists)
}

func TestCheckSubscription_UsesCache(t *testing.T) {
	f := newSubscriptionFixture(&fakeGateway{})
	ctx := context.Background()

	cached := domain.SubscriptionCheck{Exists: true, SubscriptionID: "sub_cached", Frequency: "Once / Week"}
	require.NoError(t, f.cache.SetActiveSubscription(ctx, "jane@example.com", "coffee-box", cached))

	check, err := f.svc.Check(ctx, "jane@example.com", "coffee-box")
	require.NoError(t, err)
	assert.Equal(t, cached, check)
}

func TestCancelSubscription(t *testing.T) {
	f := newSubscriptionFixture(&fakeGateway{})
	ctx := context.Background()

	sub, err := f.svc.Create(ctx, createRequest("coffee-box"))
	require.NoError(t, err)

	require.NoError(t, f.svc.Cancel(ctx, sub.ExternalID))

	stored, err := f.subRepo.GetByExternalID(ctx, sub.ExternalID)
	require.NoError(t, err)
	assert.Equal(t, domain.SubscriptionStatusCancelled, stored.Status)
	assert.Contains(t, f.gateway.cancelled, sub.ExternalID)
	assert.Equal(t, []string{sub.ExternalID}, f.producer.cancelled)

	// Повторная отмена идемпотентна
	cancelledBefore := len(f.gateway.cancelled)
	require.NoError(t, f.svc.Cancel(ctx, sub.ExternalID))
	assert.Len(t, f.gateway.cancelled, cancelledBefore)
}

func TestCancelSubscription_NotFound(t *testing.T) {
	f := newSubscriptionFixture(&fakeGateway{})

	err := f.svc.Cancel(context.Background(), "sub_missing")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestListSubscriptions(t *testing.T) {
	f := newSubscriptionFixture(&fakeGateway{})
	ctx := context.Background()

	_, err := f.svc.Create(ctx, createRequest("coffee-box"))
	require.NoError(t, err)

	items, err := f.svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)

	assert.Equal(t, "Jane", items[0].CustomerName)
	assert.Equal(t, "jane@example.com", items[0].Email)
	assert.Equal(t, "coffee-box", items[0].Product)
	assert.Equal(t, domain.SubscriptionStatusPending, items[0].Status)
}

func TestPlans_FiltersByProductNote(t *testing.T) {
	gateway := &fakeGateway{
		listPlansFn: func(ctx context.Context, count int) ([]razorpay.Plan, error) {
			return []razorpay.Plan{
				{
					ID:       "plan_coffee",
					Period:   "weekly",
					Interval: 1,
					Item:     razorpay.PlanItem{Name: "Coffee box weekly", Amount: 49900, Currency: "INR"},
					Notes:    map[string]string{"product_id": "coffee-box"},
					Created:  time.Now().Unix(),
				},
				{
					ID:   "plan_internal",
					Item: razorpay.PlanItem{Name: "Unrelated", Amount: 100},
				},
			}, nil
		},
	}
	f := newSubscriptionFixture(gateway)

	plans, err := f.svc.Plans(context.Background())
	require.NoError(t, err)
	require.Len(t, plans, 1)

	assert.Equal(t, "plan_coffee", plans[0].ID)
	assert.Equal(t, "coffee-box", plans[0].Product)
	assert.Equal(t, 499.0, plans[0].Amount, "amount converted from paise to rupees")
}
