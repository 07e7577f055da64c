package razorpay

import (
	"context"
	"net/http"
	"net/url"
)

// Customer представляет клиента в Razorpay
type Customer struct {
	ID      string `json:"id"`
	Entity  string `json:"entity"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Contact string `json:"contact"`
	Created int64  `json:"created_at"`
}

type customerList struct {
	Entity string     `json:"entity"`
	Count  int        `json:"count"`
	Items  []Customer `json:"items"`
}

// customerRequest тело запроса на создание клиента
type customerRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Contact string `json:"contact,omitempty"`
}

// FindCustomerByEmail ищет клиента Razorpay по email.
// Возвращает nil без ошибки, если клиент не найден.
func (c *Client) FindCustomerByEmail(ctx context.Context, email string) (*Customer, error) {
	c.log.Debug("Looking up Razorpay customer by email: %s", email)

	path := "/customers?count=1&email=" + url.QueryEscape(email)

	var list customerList
	if err := c.do(ctx, http.MethodGet, path, nil, &list); err != nil {
		return nil, err
	}

	if len(list.Items) == 0 {
		return nil, nil
	}

	c.log.Debug("Found Razorpay customer: %s", list.Items[0].ID)
	return &list.Items[0], nil
}

// CreateCustomer создает нового клиента в Razorpay
func (c *Client) CreateCustomer(ctx context.Context, name, email, contact string) (*Customer, error) {
	c.log.Debug("Creating Razorpay customer for %s", email)

	req := customerRequest{
		Name:    name,
		Email:   email,
		Contact: contact,
	}

	var customer Customer
	if err := c.do(ctx, http.MethodPost, "/customers", req, &customer); err != nil {
		return nil, err
	}

	c.log.Info("Created Razorpay customer with ID: %s", customer.ID)
	return &customer, nil
}
