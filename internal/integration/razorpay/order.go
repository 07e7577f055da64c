package razorpay

import (
	"context"
	"net/http"
)

// Order представляет заказ в Razorpay
type Order struct {
	ID       string            `json:"id"`
	Entity   string            `json:"entity"`
	Amount   int64             `json:"amount"` // В минорных единицах (пайсах)
	Currency string            `json:"currency"`
	Receipt  string            `json:"receipt"`
	Status   string            `json:"status"`
	Notes    map[string]string `json:"notes,omitempty"`
	Created  int64             `json:"created_at"`
}

// OrderRequest тело запроса на создание заказа
type OrderRequest struct {
	Amount   int64             `json:"amount"` // В минорных единицах (пайсах)
	Currency string            `json:"currency"`
	Receipt  string            `json:"receipt"`
	Notes    map[string]string `json:"notes,omitempty"`
}

// CreateOrder создает разовый заказ в Razorpay
func (c *Client) CreateOrder(ctx context.Context, req OrderRequest) (*Order, error) {
	c.log.Debug("Creating Razorpay order, amount: %d %s", req.Amount, req.Currency)

	var order Order
	if err := c.do(ctx, http.MethodPost, "/orders", req, &order); err != nil {
		return nil, err
	}

	c.log.Info("Created Razorpay order with ID: %s", order.ID)
	return &order, nil
}
