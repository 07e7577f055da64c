package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/freshcrate/subscription-service/internal/domain"
	"github.com/freshcrate/subscription-service/internal/integration/razorpay"
	"github.com/freshcrate/subscription-service/internal/service"
	"github.com/freshcrate/subscription-service/pkg/logger"
)

// Razorpay присылает компактные JSON-события, 64KB хватает с запасом
const maxWebhookBodySize = 64 << 10

// WebhookHandler обработчик вебхуков Razorpay
type WebhookHandler struct {
	webhookSvc service.WebhookService
	log        *logger.Logger
}

// NewWebhookHandler создает новый обработчик вебхуков
func NewWebhookHandler(webhookSvc service.WebhookService, log *logger.Logger) *WebhookHandler {
	return &WebhookHandler{
		webhookSvc: webhookSvc,
		log:        log,
	}
}

// HandleRazorpayWebhook обрабатывает вебхуки от Razorpay.
// Подпись считается по сырому телу запроса, поэтому тело читается целиком
// до какого-либо разбора.
func (h *WebhookHandler) HandleRazorpayWebhook(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBodySize)

	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		h.log.Warn("Failed to read webhook body: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read webhook body"})
		return
	}

	signature := c.GetHeader(razorpay.SignatureHeader)

	if err := h.webhookSvc.HandleEvent(c.Request.Context(), payload, signature); err != nil {
		if errors.Is(err, domain.ErrInvalidSignature) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid webhook signature"})
			return
		}
		h.log.Error("Failed to process webhook: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process webhook"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
