package razorpay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/freshcrate/subscription-service/internal/domain"
	"github.com/freshcrate/subscription-service/pkg/logger"
)

const defaultBaseURL = "https://api.razorpay.com/v1"

// requestTimeout ограничивает длительность исходящих вызовов шлюза
const requestTimeout = 10 * time.Second

// Client представляет клиент для работы с API Razorpay
type Client struct {
	baseURL       string
	keyID         string
	keySecret     string
	webhookSecret string
	httpClient    *http.Client
	log           *logger.Logger
}

// Config конфигурация для клиента Razorpay
type Config struct {
	KeyID         string
	KeySecret     string
	WebhookSecret string
	BaseURL       string // Переопределяется в тестах
}

// NewClient создает новый клиент Razorpay
func NewClient(cfg Config, log *logger.Logger) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	return &Client{
		baseURL:       baseURL,
		keyID:         cfg.KeyID,
		keySecret:     cfg.KeySecret,
		webhookSecret: cfg.WebhookSecret,
		httpClient:    &http.Client{Timeout: requestTimeout},
		log:           log,
	}
}

// ErrorResponse представляет ошибку от API Razorpay
type ErrorResponse struct {
	Code        string `json:"code"`
	Description string `json:"description"`
	Field       string `json:"field,omitempty"`
}

type errorEnvelope struct {
	Error *ErrorResponse `json:"error,omitempty"`
}

// do выполняет запрос к API Razorpay с basic-авторизацией и разбирает JSON-ответ
func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	var reqBody *bytes.Buffer
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reqBody = bytes.NewBuffer(data)
	} else {
		reqBody = &bytes.Buffer{}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.keyID, c.keySecret)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.NewGatewayError("UNAVAILABLE", "razorpay request failed", 0, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var envelope errorEnvelope
		if err := json.NewDecoder(resp.Body).Decode(&envelope); err == nil && envelope.Error != nil {
			return domain.NewGatewayError(envelope.Error.Code, envelope.Error.Description, resp.StatusCode, nil)
		}
		return domain.NewGatewayError("UNKNOWN", fmt.Sprintf("unexpected status %d", resp.StatusCode), resp.StatusCode, nil)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}
