package rest

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/freshcrate/subscription-service/internal/api/rest/handlers"
	"github.com/freshcrate/subscription-service/internal/api/rest/middleware"
	"github.com/freshcrate/subscription-service/internal/service"
	"github.com/freshcrate/subscription-service/pkg/logger"
)

// Services сервисы, необходимые HTTP слою
type Services struct {
	Subscription service.SubscriptionService
	Webhook      service.WebhookService
	Auth         service.AuthService
}

// SetupRouter настраивает маршрутизатор Gin с маршрутами и middleware
func SetupRouter(svcs Services, registry *prometheus.Registry, log *logger.Logger) *gin.Engine {
	r := gin.New()

	// Подключение middleware
	r.Use(middleware.LoggerMiddleware(log))
	r.Use(gin.Recovery())

	// Endpoint для проверки работоспособности сервиса
	r.GET("/health", handlers.HealthCheck)

	// Prometheus метрики
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	// Инициализация обработчиков
	subscriptionHandler := handlers.NewSubscriptionHandler(svcs.Subscription, log)
	webhookHandler := handlers.NewWebhookHandler(svcs.Webhook, log)
	adminHandler := handlers.NewAdminHandler(svcs.Auth, svcs.Subscription, log)

	// Витринные маршруты
	r.POST("/create-subscription", subscriptionHandler.CreateSubscription)
	r.POST("/check-subscription", subscriptionHandler.CheckSubscription)

	// Вебхуки на корневом уровне роутера
	webhooks := r.Group("/webhooks")
	{
		webhooks.POST("/razorpay", webhookHandler.HandleRazorpayWebhook)
	}

	// Административные маршруты
	admin := r.Group("/admin")
	{
		admin.POST("/login", adminHandler.Login)

		protected := admin.Group("")
		protected.Use(middleware.AdminAuthMiddleware(svcs.Auth, log))
		{
			protected.GET("/subscriptions", adminHandler.ListSubscriptions)
			protected.POST("/subscriptions/cancel", adminHandler.CancelSubscription)
			protected.GET("/plans", adminHandler.ListPlans)
		}
	}

	return r
}
