package razorpay

import (
	"context"
	"net/http"
)

// Subscription представляет подписку в Razorpay
type Subscription struct {
	ID         string            `json:"id"`
	Entity     string            `json:"entity"`
	PlanID     string            `json:"plan_id"`
	CustomerID string            `json:"customer_id"`
	Status     string            `json:"status"`
	TotalCount int               `json:"total_count"`
	PaidCount  int               `json:"paid_count"`
	ShortURL   string            `json:"short_url,omitempty"`
	Notes      map[string]string `json:"notes,omitempty"`
	Created    int64             `json:"created_at"`
}

// SubscriptionRequest тело запроса на создание подписки
type SubscriptionRequest struct {
	PlanID         string            `json:"plan_id"`
	CustomerID     string            `json:"customer_id"`
	TotalCount     int               `json:"total_count"`
	CustomerNotify int               `json:"customer_notify"`
	Notes          map[string]string `json:"notes,omitempty"`
}

// CreateSubscription создает новую подписку в Razorpay
func (c *Client) CreateSubscription(ctx context.Context, req SubscriptionRequest) (*Subscription, error) {
	c.log.Debug("Creating Razorpay subscription for plan %s, customer %s", req.PlanID, req.CustomerID)

	var subscription Subscription
	if err := c.do(ctx, http.MethodPost, "/subscriptions", req, &subscription); err != nil {
		return nil, err
	}

	c.log.Info("Created Razorpay subscription with ID: %s", subscription.ID)
	return &subscription, nil
}

// CancelSubscription отменяет подписку в Razorpay по ID
func (c *Client) CancelSubscription(ctx context.Context, subscriptionID string) error {
	c.log.Debug("Cancelling Razorpay subscription: %s", subscriptionID)

	var subscription Subscription
	if err := c.do(ctx, http.MethodPost, "/subscriptions/"+subscriptionID+"/cancel", nil, &subscription); err != nil {
		return err
	}

	c.log.Info("Cancelled Razorpay subscription: %s, status: %s", subscription.ID, subscription.Status)
	return nil
}
