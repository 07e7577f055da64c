package razorpay

import (
	"context"
	"fmt"
	"net/http"
)

// Plan представляет план подписки в Razorpay
type Plan struct {
	ID       string            `json:"id"`
	Entity   string            `json:"entity"`
	Period   string            `json:"period"`
	Interval int               `json:"interval"`
	Item     PlanItem          `json:"item"`
	Notes    map[string]string `json:"notes,omitempty"`
	Created  int64             `json:"created_at"`
}

// PlanItem описание тарифицируемой позиции плана
type PlanItem struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Amount      int64  `json:"amount"` // В минорных единицах (пайсах)
	Currency    string `json:"currency"`
}

type planList struct {
	Entity string `json:"entity"`
	Count  int    `json:"count"`
	Items  []Plan `json:"items"`
}

// ListPlans возвращает планы подписок из Razorpay
func (c *Client) ListPlans(ctx context.Context, count int) ([]Plan, error) {
	c.log.Debug("Listing Razorpay plans, count: %d", count)

	var list planList
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/plans?count=%d", count), nil, &list); err != nil {
		return nil, err
	}

	return list.Items, nil
}
