package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/freshcrate/subscription-service/internal/domain"
	"github.com/freshcrate/subscription-service/internal/service"
	"github.com/freshcrate/subscription-service/pkg/logger"
)

// SubscriptionHandler обработчик витринных запросов подписок
type SubscriptionHandler struct {
	subscriptionSvc service.SubscriptionService
	log             *logger.Logger
}

// NewSubscriptionHandler создает новый обработчик подписок
func NewSubscriptionHandler(subscriptionSvc service.SubscriptionService, log *logger.Logger) *SubscriptionHandler {
	return &SubscriptionHandler{
		subscriptionSvc: subscriptionSvc,
		log:             log,
	}
}

// CreateSubscription оформляет подписку или разовый заказ
func (h *SubscriptionHandler) CreateSubscription(c *gin.Context) {
	var req domain.CreateSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warn("Invalid subscription request: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	subscription, err := h.subscriptionSvc.Create(c.Request.Context(), req)
	if err != nil {
		var provisioningErr *domain.ProvisioningError
		switch {
		case errors.Is(err, domain.ErrUnknownProduct):
			h.log.Warn("Unknown product: %s", req.Product)
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown product"})
		case errors.Is(err, domain.ErrInvalidInput):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.As(err, &provisioningErr):
			// Прежние подписки уже вытеснены, повтор запроса безопасен
			h.log.Error("Subscription provisioning failed: %v", err)
			c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to create subscription, please retry"})
		case errors.Is(err, domain.ErrGatewayUnavailable):
			h.log.Error("Payment gateway error: %v", err)
			c.JSON(http.StatusBadGateway, gin.H{"error": "Payment gateway unavailable"})
		default:
			h.log.Error("Failed to create subscription: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create subscription"})
		}
		return
	}

	h.log.Info("Created subscription with ID: %s", subscription.ExternalID)
	c.JSON(http.StatusCreated, subscription)
}

// CheckSubscription проверяет активную подписку клиента на товар
func (h *SubscriptionHandler) CheckSubscription(c *gin.Context) {
	var req domain.CheckSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warn("Invalid check request: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	check, err := h.subscriptionSvc.Check(c.Request.Context(), req.Email, req.Product)
	if err != nil {
		h.log.Error("Failed to check subscription: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check subscription"})
		return
	}

	c.JSON(http.StatusOK, check)
}
