package domain

import (
	"errors"
	"fmt"
)

// Application errors
var (
	// ErrUnknownProduct товар отсутствует в каталоге планов
	ErrUnknownProduct = errors.New("product plan not found")

	// ErrInvalidInput неверные входные данные
	ErrInvalidInput = errors.New("invalid input data")

	// ErrInvalidSignature не удалось проверить подпись вебхука
	ErrInvalidSignature = errors.New("invalid webhook signature")

	// ErrGatewayUnavailable платежный шлюз недоступен или отклонил запрос
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")
)

// GatewayError представляет ошибку платежного шлюза
type GatewayError struct {
	Code        string
	Message     string
	StatusCode  int
	OriginalErr error
}

// Error реализует интерфейс error
func (e *GatewayError) Error() string {
	if e.OriginalErr != nil {
		return fmt.Sprintf("razorpay error [%s]: %s: %v", e.Code, e.Message, e.OriginalErr)
	}
	return fmt.Sprintf("razorpay error [%s]: %s", e.Code, e.Message)
}

// Unwrap возвращает оригинальную ошибку
func (e *GatewayError) Unwrap() error {
	return e.OriginalErr
}

// Is сопоставляет ошибку шлюза с сентинелом ErrGatewayUnavailable
func (e *GatewayError) Is(target error) bool {
	return target == ErrGatewayUnavailable
}

// NewGatewayError создает новую ошибку платежного шлюза
func NewGatewayError(code, message string, statusCode int, err error) *GatewayError {
	return &GatewayError{
		Code:        code,
		Message:     message,
		StatusCode:  statusCode,
		OriginalErr: err,
	}
}

// ProvisioningError представляет сбой оформления подписки после того, как
// прежние подписки уже были вытеснены. Состояние безопасно: клиент повторяет
// запрос целиком, шаг вытеснения при повторе не находит активных подписок.
type ProvisioningError struct {
	Stage       string // "gateway" или "storage"
	OriginalErr error
}

// Error реализует интерфейс error
func (e *ProvisioningError) Error() string {
	return fmt.Sprintf("subscription provisioning failed at %s: %v", e.Stage, e.OriginalErr)
}

// Unwrap возвращает оригинальную ошибку
func (e *ProvisioningError) Unwrap() error {
	return e.OriginalErr
}

// NewProvisioningError создает новую ошибку оформления подписки
func NewProvisioningError(stage string, err error) *ProvisioningError {
	return &ProvisioningError{
		Stage:       stage,
		OriginalErr: err,
	}
}
