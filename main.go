package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"product-importer/controllers"
	"product-importer/database"
	"product-importer/middleware"
	"product-importer/models"
	"product-importer/pubsub"
	"product-importer/repository"
	"product-importer/routes"
	"product-importer/services"
	"product-importer/tasks"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// Initialize structured logger
	logger, err := zap.NewProduction()
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	// Load .env file (optional, falls back to system env)
	_ = godotenv.Load()

	cfg, err := LoadConfig()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	// --- 1. Infrastructure ---

	db, err := database.ConnectPostgres(cfg.Postgres, logger, &models.Product{}, &models.Webhook{})
	if err != nil {
		logger.Fatal("Failed to connect to PostgreSQL", zap.Error(err))
	}
	defer database.Close(db) //nolint:errcheck

	redisClient, err := database.NewRedisClient(cfg.RedisURL)
	if err != nil {
		logger.Fatal("Failed to connect to Redis", zap.Error(err))
	}

	// --- 2. Dependency injection ---

	broker := pubsub.NewRedisBroker(redisClient)
	taskStore := tasks.NewRedisStore(redisClient)
	runner := tasks.NewRunner(taskStore, cfg.WorkerCount, logger)

	productRepo := repository.NewGormProductRepository(db)
	webhookRepo := repository.NewGormWebhookRepository(db)

	importService := services.NewImportService(productRepo, broker, logger)
	dispatcher := services.NewWebhookDispatcher(logger)

	runner.Register(services.TaskKindImportProducts, importService.HandleImportTask)
	runner.Register(services.TaskKindDeliverWebhook, dispatcher.HandleDeliveryTask)

	workerCtx, stopWorkers := context.WithCancel(context.Background())
	runner.Start(workerCtx)

	validator := controllers.NewRequestValidator()
	productController := controllers.NewProductController(productRepo, validator)
	importController := controllers.NewImportController(runner, broker, validator, cfg.ImportStorageDir)
	webhookController := controllers.NewWebhookController(webhookRepo, runner, validator)

	// --- 3. HTTP server & middleware ---

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors.Default())
	r.Use(middleware.NewRateLimiter(cfg.RateLimitPerMin, cfg.RateLimitPerMin/2).Middleware())
	uploadLimiter := middleware.NewRateLimiter(cfg.UploadRateLimitPerMin, cfg.UploadRateLimitPerMin/2)

	// Request logging
	r.Use(func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
		)
	})

	routes.RegisterRoutes(r, productController, importController, webhookController, uploadLimiter.Middleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK"})
	})

	// --- 4. Graceful shutdown ---

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		logger.Info("Product importer starting", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down product importer...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	stopWorkers()
	runner.Wait()

	if err := redisClient.Close(); err != nil {
		logger.Error("Failed to close Redis", zap.Error(err))
	}

	logger.Info("Product importer stopped gracefully")
}
