package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	fiberSwagger "github.com/swaggo/fiber-swagger"
	mongodriver "go.mongodb.org/mongo-driver/mongo"

	_ "go-clothing-store/docs"
	"go-clothing-store/src/config"
	"go-clothing-store/src/controllers"
	"go-clothing-store/src/infrastructure"
	"go-clothing-store/src/infrastructure/cache"
	"go-clothing-store/src/infrastructure/log"
	"go-clothing-store/src/infrastructure/middleware"
	"go-clothing-store/src/infrastructure/mongo"
	"go-clothing-store/src/infrastructure/rabbitmq"
	"go-clothing-store/src/infrastructure/tracing"
	"go-clothing-store/src/services/catalog"
	"go-clothing-store/src/services/dlq"
	"go-clothing-store/src/services/events"
	"go-clothing-store/src/services/notification"
	"go-clothing-store/src/services/order/domain"
	"go-clothing-store/src/services/order/domain/persistence"
	orderHandlers "go-clothing-store/src/services/order/handlers"
	"go-clothing-store/src/services/report"
)

// @title        Clothing Store API
// @version      1.0
// @description  Product catalogue, QR-payment orders and monthly revenue reports.
// @host         localhost:8000
// @BasePath     /
func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	configs, err := config.LoadConfig()
	if err != nil {
		log.NewLogger("clothing-store", log.InfoLevel).Fatal(ctx, "Failed to load configuration", err)
	}

	level, err := log.ParseLevel(configs.LogLevel)
	if err != nil {
		log.NewLogger(configs.ServiceName, log.InfoLevel).Fatal(ctx, "Invalid LOG_LEVEL", err)
	}
	logger := log.NewLogger(configs.ServiceName, level)
	logger.Info(ctx, "Configuration loaded successfully")

	tracingEnabled := false
	if configs.OtelExporterEndpoint != "" {
		tp, err := tracing.InitTracer(ctx, configs.ServiceName, configs.OtelExporterEndpoint)
		if err != nil {
			logger.Exception(ctx, "Failed to initialise tracing, continuing without it", err)
		} else {
			tracingEnabled = true
			defer func() {
				if err := tp.Shutdown(context.Background()); err != nil {
					logger.Exception(ctx, "Tracer shutdown error", err)
				}
			}()
		}
	}

	// The API starts without MongoDB; data endpoints then answer
	// "Database not configured" per request.
	client, err := mongo.Connect(ctx, configs)
	if err != nil {
		logger.Exception(ctx, "MongoDB unavailable, data endpoints will fail", err)
	} else {
		logger.Info(ctx, "MongoDB connection successful")
		defer func() { _ = client.Disconnect(context.Background()) }()
	}
	db := mongo.Database(client, configs)

	orderRepository := persistence.NewOrderRepository(db)
	eventRepository := persistence.NewOrderEventRepository(db)
	productRepository := catalog.NewProductRepository(db)

	if db != nil {
		if err := orderRepository.EnsureIndexes(ctx); err != nil {
			logger.Exception(ctx, "Failed to create order indexes", err)
		}
		if configs.SeedCatalog {
			if err := catalog.SeedProducts(ctx, productRepository, logger); err != nil {
				logger.Exception(ctx, "Failed to seed products", err)
			}
		}
	}

	var (
		publisher events.Publisher
		broker    *rabbitmq.RabbitMQServiceImpl
	)
	if configs.RabbitMQHostName != "" {
		broker, err = rabbitmq.NewRabbitMQService(configs.RabbitMQHostName, configs.RabbitMQExchange, configs.RabbitMQQueueName, events.Topics)
		if err != nil {
			logger.Exception(ctx, "RabbitMQ unavailable, events will be stored for replay", err)
			broker = nil
		} else {
			logger.Info(ctx, "RabbitMQ connection successful")
			publisher = broker
			defer broker.Close()
		}
	}

	dispatcher := events.NewDispatcher(logger, publisher, eventRepository)

	orderService := domain.NewOrderService(logger, orderRepository, domain.WithDispatcher(dispatcher))
	reportService := report.NewReportService(logger, orderRepository, nil)
	notificationService := notification.NewNotificationService(logger)

	catalogService := catalog.NewCatalogService(logger, productRepository, nil)
	if configs.RedisAddr != "" {
		redisClient, err := cache.Connect(ctx, configs.RedisAddr)
		if err != nil {
			logger.Exception(ctx, "Redis unavailable, product cache disabled", err)
		} else {
			defer func() { _ = redisClient.Close() }()
			catalogService = catalog.NewCachedCatalogService(catalogService, cache.NewRedisCache(redisClient, configs.ServiceName), logger)
			logger.Info(ctx, "Redis product cache enabled")
		}
	}

	if broker != nil {
		eventListener := infrastructure.NewEventListener(broker, logger)

		eventListener.RegisterHandler(events.OrderCreated, orderHandlers.NewOrderCreatedEventHandler(notificationService, publisher, logger))
		eventListener.RegisterHandler(events.OrderPaid, orderHandlers.NewOrderPaidEventHandler(orderRepository, notificationService, publisher, logger))

		dlqHandler := dlq.NewDLQHandler(eventRepository, logger)
		for _, topic := range events.Topics {
			eventListener.RegisterHandler(events.DLQTopic(topic), dlqHandler.ForTopic(topic))
		}

		go func() {
			if err := eventListener.StartListening(ctx); err != nil {
				logger.Exception(ctx, "Event listeners stopped", err)
			}
		}()
		logger.Info(ctx, "Event listeners started successfully")
	}

	orderController := controllers.NewOrderController(orderService, dispatcher)
	productController := controllers.NewProductController(catalogService)
	reportController := controllers.NewReportController(reportService)

	app := fiber.New(fiber.Config{
		ReadBufferSize:  81920,
		WriteBufferSize: 81920,
		ServerHeader:    "Clothing-Store-Service",
		ErrorHandler:    controllers.ErrorHandler(logger),
	})

	if tracingEnabled {
		app.Use(otelfiber.Middleware())
	}
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowCredentials: true,
		AllowOriginsFunc: func(_ string) bool { return true },
	}))
	app.Use(middleware.RequestLogger(logger))
	app.Use(middleware.RateLimiter(configs.RateLimitMax, configs.RateLimitWindow))

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"message": "Clothing Store API running"})
	})
	app.Get("/api/swagger/*", fiberSwagger.WrapHandler)
	app.Get("/api/healthCheck", healthCheck(logger, client, broker, configs.RabbitMQHostName != ""))

	orderController.Route(app)
	productController.Route(app)
	reportController.Route(app)

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	serverShutdown := make(chan error, 1)
	go func() {
		logger.Info(ctx, "Starting server on port "+configs.Port)
		if err := app.Listen(":" + configs.Port); err != nil {
			serverShutdown <- err
		}
	}()

	select {
	case <-c:
		logger.Info(ctx, "Shutdown signal received, shutting down gracefully...")
	case err := <-serverShutdown:
		logger.Exception(ctx, "Server error occurred", err)
	}

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Exception(ctx, "Server shutdown error", err)
	}

	logger.Info(ctx, "Server shutdown complete")
}

// healthCheck reports unhealthy when MongoDB is unreachable, or when a
// configured broker has lost its connection.
func healthCheck(logger log.Logger, client *mongodriver.Client, broker *rabbitmq.RabbitMQServiceImpl, brokerConfigured bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if client == nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"status": "unhealthy",
				"error":  "database not configured",
			})
		}
		if err := client.Ping(c.UserContext(), nil); err != nil {
			logger.Exception(c.UserContext(), "Health check: MongoDB ping failed", err)
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"status": "unhealthy",
				"error":  "database connection failed",
			})
		}

		if brokerConfigured && !broker.IsHealthy() {
			logger.Warn(c.UserContext(), "Health check: RabbitMQ connection is unhealthy")
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"status": "unhealthy",
				"error":  "message queue connection failed",
			})
		}

		return c.JSON(fiber.Map{
			"status":    "healthy",
			"timestamp": time.Now().UTC(),
		})
	}
}
