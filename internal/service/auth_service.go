package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/freshcrate/subscription-service/pkg/logger"
)

// AdminScope значение claim scope в токене администратора
const AdminScope = "admin"

// ErrInvalidCredentials неверная пара email/пароль
var ErrInvalidCredentials = errors.New("invalid credentials")

// AuthService интерфейс аутентификации администратора
type AuthService interface {
	// Login проверяет учетные данные и выдает JWT
	Login(email, password string) (string, error)

	// ValidateToken проверяет JWT и его scope
	ValidateToken(tokenString string) error
}

type authService struct {
	adminEmail   string
	passwordHash string
	jwtSecret    []byte
	tokenTTL     time.Duration
	log          *logger.Logger
}

// NewAuthService создает новый сервис аутентификации администратора
func NewAuthService(adminEmail, passwordHash, jwtSecret string, tokenTTLSeconds int, log *logger.Logger) AuthService {
	return &authService{
		adminEmail:   adminEmail,
		passwordHash: passwordHash,
		jwtSecret:    []byte(jwtSecret),
		tokenTTL:     time.Duration(tokenTTLSeconds) * time.Second,
		log:          log,
	}
}

// Login проверяет учетные данные администратора и выдает подписанный токен
func (s *authService) Login(email, password string) (string, error) {
	if s.adminEmail == "" || s.passwordHash == "" {
		s.log.Warn("Admin login attempted but admin access is not configured")
		return "", ErrInvalidCredentials
	}

	if email != s.adminEmail {
		return "", ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(s.passwordHash), []byte(password)); err != nil {
		s.log.Warn("Failed admin login attempt for %s", email)
		return "", ErrInvalidCredentials
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   email,
		"scope": AdminScope,
		"iat":   now.Unix(),
		"exp":   now.Add(s.tokenTTL).Unix(),
	})

	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		s.log.Error("Failed to sign admin token: %v", err)
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	s.log.Info("Admin %s logged in", email)
	return signed, nil
}

// ValidateToken проверяет подпись, срок действия и scope токена
func (s *authService) ValidateToken(tokenString string) error {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return ErrInvalidCredentials
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || claims["scope"] != AdminScope {
		return ErrInvalidCredentials
	}

	return nil
}
