package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/freshcrate/subscription-service/internal/repository"
	"github.com/freshcrate/subscription-service/internal/service"
	"github.com/freshcrate/subscription-service/pkg/logger"
)

// AdminHandler обработчик административных запросов
type AdminHandler struct {
	authSvc         service.AuthService
	subscriptionSvc service.SubscriptionService
	log             *logger.Logger
}

// NewAdminHandler создает новый административный обработчик
func NewAdminHandler(authSvc service.AuthService, subscriptionSvc service.SubscriptionService, log *logger.Logger) *AdminHandler {
	return &AdminHandler{
		authSvc:         authSvc,
		subscriptionSvc: subscriptionSvc,
		log:             log,
	}
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type cancelRequest struct {
	SubscriptionID string `json:"razorpay_subscription_id" binding:"required"`
}

// Login аутентифицирует администратора и выдает JWT
func (h *AdminHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	token, err := h.authSvc.Login(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
			return
		}
		h.log.Error("Admin login failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Login failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}

// ListSubscriptions возвращает последние подписки с данными клиентов
func (h *AdminHandler) ListSubscriptions(c *gin.Context) {
	items, err := h.subscriptionSvc.List(c.Request.Context())
	if err != nil {
		h.log.Error("Failed to list subscriptions: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list subscriptions"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"subscriptions": items})
}

// CancelSubscription отменяет подписку по идентификатору Razorpay
func (h *AdminHandler) CancelSubscription(c *gin.Context) {
	var req cancelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.subscriptionSvc.Cancel(c.Request.Context(), req.SubscriptionID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Subscription not found"})
			return
		}
		h.log.Error("Failed to cancel subscription %s: %v", req.SubscriptionID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to cancel subscription"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "cancelled"})
}

// ListPlans возвращает планы Razorpay, привязанные к товарам
func (h *AdminHandler) ListPlans(c *gin.Context) {
	plans, err := h.subscriptionSvc.Plans(c.Request.Context())
	if err != nil {
		h.log.Error("Failed to list plans: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list plans"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"plans": plans})
}
