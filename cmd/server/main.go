package main

import (
	"net/http"
	"os"
	"time"

	"github.com/Anniix/kisanx-backend/config"
	"github.com/Anniix/kisanx-backend/internal/clients"
	"github.com/Anniix/kisanx-backend/internal/delivery"
	"github.com/Anniix/kisanx-backend/internal/events"
	"github.com/Anniix/kisanx-backend/internal/middleware"
	"github.com/Anniix/kisanx-backend/internal/repository"
	"github.com/Anniix/kisanx-backend/internal/usecase"
	"github.com/Anniix/kisanx-backend/pkg/db"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

const clientTimeout = 15 * time.Second

func main() {

	logger := setupLogger("info")

	cfg := config.LoadConfig(logger)

	logLevel, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logger.Warnf("Invalid log level '%s' in config, using default 'info'. Error: %v", cfg.LogLevel, err)
	} else {
		logger.SetLevel(logLevel)
	}
	logger.Info("Starting KisanX Backend...")

	conn, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer func() {
		if err := conn.Close(); err != nil {
			logger.Errorf("Error closing database connection: %v", err)
		} else {
			logger.Info("Database connection closed.")
		}
	}()
	logger.Info("Database connection established successfully.")

	rdb := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
		DB:   cfg.RedisDB,
	})
	defer func() {
		if err := rdb.Close(); err != nil {
			logger.Errorf("Error closing redis connection: %v", err)
		}
	}()

	publisher := events.NewNoopPublisher()
	if len(cfg.KafkaBrokers) > 0 {
		kafkaPublisher, err := events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, logger)
		if err != nil {
			logger.Errorf("Failed to connect to Kafka, order events disabled: %v", err)
		} else {
			publisher = kafkaPublisher
			logger.Infof("Kafka publisher connected, topic=%s", cfg.KafkaTopic)
		}
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			logger.Errorf("Error closing event publisher: %v", err)
		}
	}()

	userRepo := repository.NewPostgresUserRepository(conn, logger)
	productRepo := repository.NewPostgresProductRepository(conn, logger)
	cartRepo := repository.NewPostgresCartRepository(conn, logger)
	orderRepo := repository.NewPostgresOrderRepository(conn, logger)
	otpStore := repository.NewRedisOTPStore(rdb, logger)

	mailer := clients.NewBrevoMailer(cfg.BrevoAPIKey, cfg.SenderName, cfg.SenderEmail, clientTimeout, logger)
	chatClient := clients.NewGeminiClient(cfg.GeminiAPIKey, clientTimeout, logger)
	pushSender := clients.NewExpoPushSender(clientTimeout, logger)

	authUseCase := usecase.NewAuthUseCase(userRepo, orderRepo, productRepo, otpStore, mailer, cfg.JWTSecret, logger)
	productUseCase := usecase.NewProductUseCase(productRepo, logger)
	cartUseCase := usecase.NewCartUseCase(cartRepo, productRepo, logger)
	orderUseCase := usecase.NewOrderUseCase(orderRepo, productRepo, userRepo, cartRepo, pushSender, publisher, logger)
	marketUseCase := usecase.NewMarketUseCase()
	chatUseCase := usecase.NewChatUseCase(chatClient, logger)

	authHandler := delivery.NewAuthHandler(authUseCase, logger)
	productHandler := delivery.NewProductHandler(productUseCase, logger)
	cartHandler := delivery.NewCartHandler(cartUseCase, logger)
	orderHandler := delivery.NewOrderHandler(orderUseCase, logger)
	marketHandler := delivery.NewMarketHandler(marketUseCase, logger)
	chatHandler := delivery.NewChatHandler(chatUseCase, logger)

	protect := middleware.Protect(userRepo, cfg.JWTSecret, logger)
	farmerOnly := middleware.FarmerOnly(logger)
	customerOnly := middleware.CustomerOnly(logger)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(logger))

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK", "message": "KisanX Backend is running"})
	})

	api := router.Group("/api")
	authHandler.RegisterRoutes(api, protect)
	productHandler.RegisterRoutes(api, protect, farmerOnly)
	cartHandler.RegisterRoutes(api, protect, customerOnly)
	orderHandler.RegisterRoutes(api, protect, customerOnly)
	marketHandler.RegisterRoutes(api)
	chatHandler.RegisterRoutes(api, protect)

	logger.Infof("HTTP server listening on %s", cfg.Port)
	if err := router.Run(cfg.Port); err != nil {
		logger.Fatalf("Failed to start HTTP server: %v", err)
	}
}

func setupLogger(level string) *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	logLevel, err := logrus.ParseLevel(level)
	if err != nil {
		logger.Warnf("Invalid log level '%s', using default 'info'. Error: %v", level, err)
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)
	return logger
}
