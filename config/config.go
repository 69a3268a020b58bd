package config

import (
	"os"
	"sync"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/sirupsen/logrus"
)

type Config struct {
	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`
	Port        string `envconfig:"PORT"         default:":5000"`
	LogLevel    string `envconfig:"LOG_LEVEL"    default:"info"`

	JWTSecret string `envconfig:"JWT_SECRET" default:"default_secret_change_me"`

	RedisAddr string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisDB   int    `envconfig:"REDIS_DB"   default:"0"`

	// KafkaBrokers empty disables the order event feed.
	KafkaBrokers []string `envconfig:"KAFKA_BROKERS"`
	KafkaTopic   string   `envconfig:"KAFKA_TOPIC" default:"order-events"`

	BrevoAPIKey string `envconfig:"BREVO_API_KEY"`
	SenderName  string `envconfig:"SENDER_NAME"  default:"KisanX"`
	SenderEmail string `envconfig:"SENDER_EMAIL" default:"no-reply@kisanx.in"`

	GeminiAPIKey string `envconfig:"GEMINI_API_KEY"`
}

var (
	config Config
	once   sync.Once
)

func LoadConfig(logger *logrus.Logger) *Config {
	once.Do(func() {
		err := godotenv.Load()
		if err != nil && !os.IsNotExist(err) {
			logger.Warnf("Error loading .env file (but continuing): %v", err)
		} else if err == nil {
			logger.Info("Loaded configuration from .env file")
		}

		err = envconfig.Process("", &config)
		if err != nil {
			logger.Fatalf("Failed to process configuration from environment variables: %v", err)
		}

		logger.Infof("Configuration loaded: Port=%s, LogLevel=%s", config.Port, config.LogLevel)
		if config.JWTSecret == "default_secret_change_me" {
			logger.Warn("JWT_SECRET is using the insecure default value")
		}
		if config.BrevoAPIKey == "" {
			logger.Warn("BREVO_API_KEY is not set, OTP emails will be simulated in logs")
		}
		if config.GeminiAPIKey == "" {
			logger.Warn("GEMINI_API_KEY is not set, chat assistant will reply with a static fallback")
		}
		if len(config.KafkaBrokers) == 0 {
			logger.Info("KAFKA_BROKERS is not set, order events will not be published")
		}
	})
	return &config
}
