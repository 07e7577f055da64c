package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freshcrate/subscription-service/internal/integration/razorpay"
	"github.com/freshcrate/subscription-service/internal/repository"
)

func TestResolveCustomer_CreatesNewCustomer(t *testing.T) {
	repo := repository.NewInMemoryCustomerRepository(testLogger())
	gateway := &fakeGateway{}
	svc := NewCustomerService(repo, gateway, testLogger())

	customer, err := svc.ResolveCustomer(context.Background(), "Jane", "jane@example.com", "+911234567890")
	require.NoError(t, err)

	assert.Equal(t, "jane@example.com", customer.Email)
	assert.Equal(t, "cust_jane@example.com", customer.RazorpayCustomerID)

	stored, err := repo.GetByEmail(context.Background(), "jane@example.com")
	require.NoError(t, err)
	assert.Equal(t, customer.ID, stored.ID)
}

func TestResolveCustomer_ReusesGatewayCustomer(t *testing.T) {
	repo := repository.NewInMemoryCustomerRepository(testLogger())
	gateway := &fakeGateway{
		findCustomerFn: func(ctx context.Context, email string) (*razorpay.Customer, error) {
			return &razorpay.Customer{ID: "cust_existing", Email: email}, nil
		},
	}
	svc := NewCustomerService(repo, gateway, testLogger())

	customer, err := svc.ResolveCustomer(context.Background(), "Jane", "jane@example.com", "")
	require.NoError(t, err)

	assert.Equal(t, "cust_existing", customer.RazorpayCustomerID)
	assert.Empty(t, gateway.customers, "no gateway customer should be created when lookup succeeds")
}

func TestResolveCustomer_IdempotentForKnownEmail(t *testing.T) {
	repo := repository.NewInMemoryCustomerRepository(testLogger())
	gateway := &fakeGateway{}
	svc := NewCustomerService(repo, gateway, testLogger())

	first, err := svc.ResolveCustomer(context.Background(), "Jane", "jane@example.com", "")
	require.NoError(t, err)

	second, err := svc.ResolveCustomer(context.Background(), "Jane Doe", "jane@example.com", "+91987")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "Jane Doe", second.Name)
	assert.Len(t, gateway.customers, 1, "gateway customer is created at most once per email")
}

func TestResolveCustomer_GatewayFailureLeavesNoState(t *testing.T) {
	repo := repository.NewInMemoryCustomerRepository(testLogger())
	gatewayErr := errors.New("gateway down")
	gateway := &fakeGateway{
		findCustomerFn: func(ctx context.Context, email string) (*razorpay.Customer, error) {
			return nil, gatewayErr
		},
	}
	svc := NewCustomerService(repo, gateway, testLogger())

	_, err := svc.ResolveCustomer(context.Background(), "Jane", "jane@example.com", "")
	require.Error(t, err)

	_, err = repo.GetByEmail(context.Background(), "jane@example.com")
	assert.ErrorIs(t, err, repository.ErrNotFound, "no local record after gateway failure")
}
