package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freshcrate/subscription-service/internal/domain"
	"github.com/freshcrate/subscription-service/internal/service"
	"github.com/freshcrate/subscription-service/pkg/logger"
)

type stubSubscriptionService struct {
	service.SubscriptionService

	createFn func(ctx context.Context, req domain.CreateSubscriptionRequest) (domain.Subscription, error)
	checkFn  func(ctx context.Context, email, product string) (domain.SubscriptionCheck, error)
}

func (s *stubSubscriptionService) Create(ctx context.Context, req domain.CreateSubscriptionRequest) (domain.Subscription, error) {
	return s.createFn(ctx, req)
}

func (s *stubSubscriptionService) Check(ctx context.Context, email, product string) (domain.SubscriptionCheck, error) {
	return s.checkFn(ctx, email, product)
}

func setupSubscriptionRouter(t *testing.T, svc service.SubscriptionService) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	handler := NewSubscriptionHandler(svc, logger.New(logger.ERROR))

	r := gin.New()
	r.POST("/create-subscription", handler.CreateSubscription)
	r.POST("/check-subscription", handler.CheckSubscription)
	return r
}

func postJSON(r *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	data, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCreateSubscriptionHandler_Success(t *testing.T) {
	svc := &stubSubscriptionService{
		createFn: func(ctx context.Context, req domain.CreateSubscriptionRequest) (domain.Subscription, error) {
			return domain.Subscription{ExternalID: "sub_1", Status: domain.SubscriptionStatusPending}, nil
		},
	}
	r := setupSubscriptionRouter(t, svc)

	w := postJSON(r, "/create-subscription", gin.H{
		"name":    "Jane",
		"email":   "jane@example.com",
		"product": "coffee-box",
	})

	assert.Equal(t, http.StatusCreated, w.Code)

	var resp domain.Subscription
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "sub_1", resp.ExternalID)
}

func TestCreateSubscriptionHandler_ValidationErrors(t *testing.T) {
	svc := &stubSubscriptionService{
		createFn: func(ctx context.Context, req domain.CreateSubscriptionRequest) (domain.Subscription, error) {
			t.Fatal("service must not be called on invalid input")
			return domain.Subscription{}, nil
		},
	}
	r := setupSubscriptionRouter(t, svc)

	tests := []struct {
		name string
		body gin.H
	}{
		{"missing email", gin.H{"name": "Jane", "product": "coffee-box"}},
		{"bad email", gin.H{"name": "Jane", "email": "not-an-email", "product": "coffee-box"}},
		{"missing product", gin.H{"name": "Jane", "email": "jane@example.com"}},
		{"missing name", gin.H{"email": "jane@example.com", "product": "coffee-box"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postJSON(r, "/create-subscription", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestCreateSubscriptionHandler_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"unknown product", domain.ErrUnknownProduct, http.StatusBadRequest},
		{"provisioning failure", domain.NewProvisioningError("gateway", errors.New("boom")), http.StatusBadGateway},
		{"gateway unavailable", domain.NewGatewayError("UNAVAILABLE", "down", 0, nil), http.StatusBadGateway},
		{"internal", errors.New("db down"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &stubSubscriptionService{
				createFn: func(ctx context.Context, req domain.CreateSubscriptionRequest) (domain.Subscription, error) {
					return domain.Subscription{}, tt.err
				},
			}
			r := setupSubscriptionRouter(t, svc)

			w := postJSON(r, "/create-subscription", gin.H{
				"name":    "Jane",
				"email":   "jane@example.com",
				"product": "coffee-box",
			})
			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestCheckSubscriptionHandler(t *testing.T) {
	svc := &stubSubscriptionService{
		checkFn: func(ctx context.Context, email, product string) (domain.SubscriptionCheck, error) {
			assert.Equal(t, "jane@example.com", email)
			assert.Equal(t, "coffee-box", product)
			return domain.SubscriptionCheck{Exists: true, SubscriptionID: "sub_1", Frequency: "Once / Week"}, nil
		},
	}
	r := setupSubscriptionRouter(t, svc)

	w := postJSON(r, "/check-subscription", gin.H{
		"email":   "jane@example.com",
		"product": "coffee-box",
	})

	assert.Equal(t, http.StatusOK, w.Code)

	var check domain.SubscriptionCheck
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &check))
	assert.True(t, check.Exists)
	assert.Equal(t, "sub_1", check.SubscriptionID)
}
