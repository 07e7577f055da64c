package kafka

import (
	"github.com/IBM/sarama"

	"github.com/freshcrate/subscription-service/pkg/logger"
)

// NewSaramaConfig создает конфигурацию sarama из конфигурации Kafka
func NewSaramaConfig(cfg *Config, log *logger.Logger) *sarama.Config {
	saramaConfig := sarama.NewConfig()

	saramaConfig.Producer.MaxMessageBytes = cfg.Producer.MaxMessageBytes
	saramaConfig.Producer.Compression = cfg.Producer.Compression
	saramaConfig.Producer.RequiredAcks = cfg.Producer.RequiredAcks
	saramaConfig.Producer.Flush.MaxMessages = cfg.Producer.FlushMaxMessages
	saramaConfig.Producer.Return.Successes = true
	saramaConfig.Producer.Return.Errors = true

	log.Debug("Sarama config prepared for brokers: %v", cfg.Brokers)
	return saramaConfig
}
