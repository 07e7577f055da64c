package domain

import (
	"time"

	"github.com/google/uuid"
)

// Customer представляет собой модель клиента
type Customer struct {
	ID                 uuid.UUID `json:"id"`
	Email              string    `json:"email"`
	Name               string    `json:"name,omitempty"`
	Contact            string    `json:"contact,omitempty"`
	RazorpayCustomerID string    `json:"razorpay_customer_id,omitempty"` // ID клиента в Razorpay, заполняется после первого успешного обращения к шлюзу
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}
