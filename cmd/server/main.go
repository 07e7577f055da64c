package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/IBM/sarama"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/freshcrate/subscription-service/config"
	"github.com/freshcrate/subscription-service/internal/api/rest"
	"github.com/freshcrate/subscription-service/internal/integration/razorpay"
	"github.com/freshcrate/subscription-service/internal/kafka"
	"github.com/freshcrate/subscription-service/internal/kafka/producer"
	"github.com/freshcrate/subscription-service/internal/metrics"
	"github.com/freshcrate/subscription-service/internal/repository"
	"github.com/freshcrate/subscription-service/internal/repository/postgres"
	"github.com/freshcrate/subscription-service/internal/service"
	"github.com/freshcrate/subscription-service/pkg/logger"
)

var log *logger.Logger

func init() {
	// Загружаем переменные окружения
	if err := godotenv.Load(); err != nil {
		// Пропускаем ошибку, если .env файл не найден
	}

	// Инициализация логгера
	log = logger.New(logger.ParseLevel(os.Getenv("LOG_LEVEL")))
}

func main() {
	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Инициализация Prometheus
	promRegistry := prometheus.NewRegistry()
	subscriptionMetrics := metrics.NewSubscriptionMetrics(promRegistry, log)

	// Подключение к базе данных
	dbPool, err := postgres.NewConnection(ctx, cfg.Database.GetDSN(), log)
	if err != nil {
		log.Fatal("Failed to connect to database: %v", err)
	}
	defer dbPool.Close()

	customerRepo := postgres.NewPostgresCustomerRepository(dbPool, log)
	subscriptionRepo := postgres.NewPostgresSubscriptionRepository(dbPool, log)

	// Кеш Redis опционален: без адреса проверки подписок идут в базу
	var cache repository.SubscriptionCache
	if cfg.Redis.Addr != "" {
		redisCache, err := repository.NewRedisCacheRepository(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, log)
		if err != nil {
			log.Fatal("Failed to connect to Redis: %v", err)
		}
		defer redisCache.Close()
		cache = redisCache
	}

	// Kafka опциональна: без брокеров события жизненного цикла не публикуются
	var eventProducer producer.SubscriptionProducer
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaConfig := kafka.NewConfig(cfg.Kafka.Brokers)
		saramaConfig := kafka.NewSaramaConfig(kafkaConfig, log)

		kafkaProducer, err := sarama.NewSyncProducer(kafkaConfig.Brokers, saramaConfig)
		if err != nil {
			log.Fatal("Failed to create Kafka producer: %v", err)
		}

		eventProducer = producer.NewKafkaSubscriptionProducer(kafkaProducer, log)
		defer eventProducer.Close()
	}

	// Клиент Razorpay
	gateway := razorpay.NewClient(razorpay.Config{
		KeyID:         cfg.Razorpay.KeyID,
		KeySecret:     cfg.Razorpay.KeySecret,
		WebhookSecret: cfg.Razorpay.WebhookSecret,
	}, log)

	// Сервисы
	customerSvc := service.NewCustomerService(customerRepo, gateway, log)
	subscriptionSvc := service.NewSubscriptionService(
		subscriptionRepo,
		customerRepo,
		customerSvc,
		gateway,
		cache,
		eventProducer,
		subscriptionMetrics,
		cfg.Razorpay.ProductPlans,
		log,
	)
	webhookSvc := service.NewWebhookService(
		subscriptionRepo,
		customerRepo,
		gateway,
		cache,
		eventProducer,
		subscriptionMetrics,
		log,
	)
	authSvc := service.NewAuthService(
		cfg.Admin.Email,
		cfg.Admin.PasswordHash,
		cfg.Admin.JWTSecret,
		cfg.Admin.TokenTTL,
		log,
	)

	// Установка режима Gin
	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Настройка маршрутизатора
	router := rest.SetupRouter(rest.Services{
		Subscription: subscriptionSvc,
		Webhook:      webhookSvc,
		Auth:         authSvc,
	}, promRegistry, log)

	// Создание и запуск HTTP сервера
	server := rest.NewServer(router, cfg, log)

	go func() {
		if err := server.Start(); err != nil {
			log.Fatal("Server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownTimeout := time.Duration(cfg.Server.ShutdownTimeout) * time.Second
	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelShutdown()

	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Fatal("Server forced to shutdown: %v", err)
	}

	log.Info("Server stopped gracefully")
}
