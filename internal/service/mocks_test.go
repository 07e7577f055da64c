package service

import (
	"context"
	"sync"

	"github.com/freshcrate/subscription-service/internal/domain"
	"github.com/freshcrate/subscription-service/internal/integration/razorpay"
	"github.com/freshcrate/subscription-service/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(logger.ERROR)
}

// fakeGateway управляемая заглушка платежного шлюза
type fakeGateway struct {
	findCustomerFn       func(ctx context.Context, email string) (*razorpay.Customer, error)
	createCustomerFn     func(ctx context.Context, name, email, contact string) (*razorpay.Customer, error)
	createSubscriptionFn func(ctx context.Context, req razorpay.SubscriptionRequest) (*razorpay.Subscription, error)
	cancelSubscriptionFn func(ctx context.Context, subscriptionID string) error
	createOrderFn        func(ctx context.Context, req razorpay.OrderRequest) (*razorpay.Order, error)
	listPlansFn          func(ctx context.Context, count int) ([]razorpay.Plan, error)

	mu         sync.Mutex
	cancelled  []string
	created    []razorpay.SubscriptionRequest
	customers  []string
	ordersMade []razorpay.OrderRequest
}

func (g *fakeGateway) FindCustomerByEmail(ctx context.Context, email string) (*razorpay.Customer, error) {
	if g.findCustomerFn != nil {
		return g.findCustomerFn(ctx, email)
	}
	return nil, nil
}

func (g *fakeGateway) CreateCustomer(ctx context.Context, name, email, contact string) (*razorpay.Customer, error) {
	g.mu.Lock()
	g.customers = append(g.customers, email)
	g.mu.Unlock()
	if g.createCustomerFn != nil {
		return g.createCustomerFn(ctx, name, email, contact)
	}
	return &razorpay.Customer{ID: "cust_" + email, Email: email, Name: name}, nil
}

func (g *fakeGateway) CreateSubscription(ctx context.Context, req razorpay.SubscriptionRequest) (*razorpay.Subscription, error) {
	g.mu.Lock()
	g.created = append(g.created, req)
	g.mu.Unlock()
	if g.createSubscriptionFn != nil {
		return g.createSubscriptionFn(ctx, req)
	}
	return &razorpay.Subscription{ID: "sub_new", PlanID: req.PlanID, CustomerID: req.CustomerID, Status: "created"}, nil
}

func (g *fakeGateway) CancelSubscription(ctx context.Context, subscriptionID string) error {
	g.mu.Lock()
	g.cancelled = append(g.cancelled, subscriptionID)
	g.mu.Unlock()
	if g.cancelSubscriptionFn != nil {
		return g.cancelSubscriptionFn(ctx, subscriptionID)
	}
	return nil
}

func (g *fakeGateway) CreateOrder(ctx context.Context, req razorpay.OrderRequest) (*razorpay.Order, error) {
	g.mu.Lock()
	g.ordersMade = append(g.ordersMade, req)
	g.mu.Unlock()
	if g.createOrderFn != nil {
		return g.createOrderFn(ctx, req)
	}
	return &razorpay.Order{ID: "order_new", Amount: req.Amount, Currency: req.Currency}, nil
}

func (g *fakeGateway) ListPlans(ctx context.Context, count int) ([]razorpay.Plan, error) {
	if g.listPlansFn != nil {
		return g.listPlansFn(ctx, count)
	}
	return nil, nil
}

// fakeProducer записывает опубликованные события
type fakeProducer struct {
	mu        sync.Mutex
	created   []string
	activated []string
	cancelled []string
}

func (p *fakeProducer) PublishSubscriptionCreated(ctx context.Context, s domain.Subscription) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.created = append(p.created, s.ExternalID)
	return nil
}

func (p *fakeProducer) PublishSubscriptionActivated(ctx context.Context, s domain.Subscription) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.activated = append(p.activated, s.ExternalID)
	return nil
}

func (p *fakeProducer) PublishSubscriptionCancelled(ctx context.Context, s domain.Subscription) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cancelled = append(p.cancelled, s.ExternalID)
	return nil
}

// fakeCache кеш проверок подписок в памяти
type fakeCache struct {
	mu      sync.Mutex
	entries map[string]domain.SubscriptionCheck
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string]domain.SubscriptionCheck)}
}

func cacheKey(email, product string) string {
	return email + ":" + product
}

func (c *fakeCache) GetActiveSubscription(ctx context.Context, email, product string) (*domain.SubscriptionCheck, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if check, ok := c.entries[cacheKey(email, product)]; ok {
		return &check, nil
	}
	return nil, nil
}

func (c *fakeCache) SetActiveSubscription(ctx context.Context, email, product string, check domain.SubscriptionCheck) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[cacheKey(email, product)] = check
	return nil
}

func (c *fakeCache) InvalidateActiveSubscription(ctx context.Context, email, product string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, cacheKey(email, product))
	return nil
}

// fakeVerifier проверка подписи с фиксированным результатом
type fakeVerifier struct {
	valid bool
}

func (v *fakeVerifier) VerifyWebhookSignature(payload []byte, signature string) bool {
	return v.valid
}

// noopMetrics метрики, которые ничего не считают
type noopMetrics struct{}

func (noopMetrics) IncCreated(string)          {}
func (noopMetrics) IncSuperseded(string)       {}
func (noopMetrics) IncTransition(string)       {}
func (noopMetrics) IncWebhookReceived(string)  {}
func (noopMetrics) IncWebhookRejected()        {}
func (noopMetrics) ObserveOrderAmount(float64) {}
