package main

import (
	"context"
	"strings"

	"order-service/controllers"
	"order-service/database"
	"order-service/kafka"
	"order-service/models"
	"order-service/pkg/logger"
	"order-service/repository"
	"order-service/routes"
	"order-service/services"

	aws_pkg "order-service/pkg/aws"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	cfg, err := LoadConfig()
	if err != nil {
		panic(err)
	}

	logger.Initialize(cfg.Env)
	defer logger.Log.Sync()

	if err := database.Connect(
		cfg.PostgresUser, cfg.PostgresPassword, cfg.PostgresDB,
		cfg.PostgresHost, cfg.PostgresPort, cfg.PostgresSSLMode, cfg.PostgresTimeZone,
	); err != nil {
		logger.Log.Fatal("Error connecting to database", zap.Error(err))
	}

	if err := database.DB.AutoMigrate(
		&models.Order{},
		&models.OrderItem{},
		&models.Payment{},
		&models.OrderStatusLog{},
	); err != nil {
		logger.Log.Fatal("Migration failed", zap.Error(err))
	}

	var blobs aws_pkg.BlobStore
	var snsClient aws_pkg.SNSPublisher
	awsCfg, err := aws_pkg.LoadAWSConfig(context.Background())
	if err != nil {
		logger.Log.Warn("AWS config unavailable, uploads and SNS disabled", zap.Error(err))
	} else {
		blobs = aws_pkg.NewS3BlobStore(awsCfg, cfg.EvidenceBucket)
		if cfg.SNSTopicArn != "" {
			snsClient = aws_pkg.NewSNSClient(awsCfg)
		}
	}

	var producer kafka.ProducerAPI
	if cfg.KafkaBrokers != "" {
		p := kafka.NewProducer(strings.Split(cfg.KafkaBrokers, ","), cfg.OrderEventsTopic)
		defer p.Close()
		producer = p
	}

	notifier := services.NewEventNotifier(producer, cfg.OrderEventsTopic, snsClient, cfg.SNSTopicArn)

	orderRepo := repository.NewGormOrderRepository(database.DB)
	paymentRepo := repository.NewGormPaymentRepo(database.DB)
	catalog := services.NewHTTPCatalogClient(cfg.CatalogURL)
	validator := services.NewUploadValidator(cfg.MaxUploadBytes)

	orderService := services.NewOrderService(orderRepo, catalog, notifier)
	paymentService := services.NewPaymentService(orderRepo, paymentRepo, validator, blobs, notifier)

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.RequestLogger())

	routes.RegisterOrderRoutes(
		r,
		controllers.NewOrderController(orderService),
		controllers.NewPaymentController(paymentService),
	)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	logger.Log.Info("order service starting", zap.String("port", cfg.Port))
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Log.Fatal("Error starting server", zap.Error(err))
	}
}
