package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"lifenotes-backend-go/internal/api"
	"lifenotes-backend-go/internal/cache"
	"lifenotes-backend-go/internal/config"
	"lifenotes-backend-go/internal/core"
	"lifenotes-backend-go/internal/db"
	"lifenotes-backend-go/internal/events"
	"lifenotes-backend-go/internal/middleware"
	"lifenotes-backend-go/internal/payment"
)

func newLogger() (*zap.Logger, error) {
	if os.Getenv("GIN_MODE") == "release" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

func main() {
	// --- 1. Initialize Logger (Zap) ---
	zapLogger, err := newLogger()
	if err != nil {
		log.Fatalf("CRITICAL_ERROR: Failed to initialize Zap logger: %v", err)
	}
	defer zapLogger.Sync()

	// --- 2. Load Application Configuration ---
	appConfig, err := config.LoadConfig()
	if err != nil {
		zapLogger.Fatal("CRITICAL_ERROR: Failed to load application configuration", zap.Error(err))
	}
	zapLogger.Info("Application configuration loaded",
		zap.String("storeDriver", appConfig.StoreDriver),
		zap.String("ginMode", appConfig.GinMode))

	// --- 3. Open the record store ---
	initCtx, cancelInitCtx := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelInitCtx()
	store, err := db.Open(initCtx, appConfig, zapLogger)
	if err != nil {
		zapLogger.Fatal("CRITICAL_ERROR: Failed to open record store", zap.Error(err))
	}

	// --- 4. Optional role cache ---
	var roleCache core.RoleCache
	var redisCache *cache.RedisRoleCache
	if appConfig.RedisURL != "" {
		redisCache, err = cache.NewRedisRoleCache(initCtx, appConfig.RedisURL, appConfig.RoleCacheTTL, zapLogger)
		if err != nil {
			// The cache only saves store reads, so the server runs without it.
			zapLogger.Warn("Role cache disabled", zap.Error(err))
		} else {
			roleCache = redisCache
		}
	}

	// --- 5. Optional event publisher ---
	var publisher core.EventPublisher
	var rabbit *events.RabbitMQPublisher
	if appConfig.AMQPURL != "" {
		rabbit, err = events.NewRabbitMQPublisher(appConfig.AMQPURL, core.EventQueues, zapLogger)
		if err != nil {
			zapLogger.Warn("Event publishing disabled", zap.Error(err))
		} else {
			publisher = rabbit
		}
	}

	// --- 6. Initialize Services ---
	gateway := payment.NewStripeGateway(appConfig.StripeSecretKey, appConfig.StripeWebhookSecret)
	userService := core.NewUserService(store.Users, roleCache, zapLogger)
	services := api.Services{
		Lessons:  core.NewLessonService(store.Lessons, zapLogger),
		Users:    userService,
		Reports:  core.NewReportService(store.Reports, store.Lessons, publisher, zapLogger),
		Checkout: core.NewCheckoutService(gateway, userService, store.Payments, publisher, core.CheckoutConfigFromAppConfig(appConfig), zapLogger),
	}
	zapLogger.Info("Core services initialized successfully.")

	// --- 7. Setup Gin HTTP Engine ---
	if appConfig.IsRelease() {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}
	router := gin.New()
	router.Use(middleware.RequestLogger(zapLogger))
	router.Use(middleware.RecoveryMiddleware(zapLogger))
	if appConfig.ClientURL != "" {
		router.Use(middleware.CORSMiddleware(appConfig))
		zapLogger.Info("CORS Middleware enabled", zap.String("clientURL", appConfig.ClientURL))
	} else {
		zapLogger.Warn("CORS Middleware SKIPPED: CLIENT_URL is not configured.")
	}

	api.SetupRoutes(router, appConfig, zapLogger, services)

	// --- 8. Configure and Start HTTP Server ---
	serverAddr := fmt.Sprintf(":%s", appConfig.Port)
	httpServer := &http.Server{
		Addr:              serverAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	zapLogger.Info("Starting HTTP server...", zap.String("address", serverAddr), zap.String("ginMode", gin.Mode()))
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Fatal("Failed to start HTTP server", zap.Error(err))
		}
	}()

	// --- 9. Graceful Shutdown Handling ---
	quitChannel := make(chan os.Signal, 1)
	signal.Notify(quitChannel, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quitChannel
	zapLogger.Info("Received shutdown signal", zap.String("signal", sig.String()))

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("Server forced to shutdown", zap.Error(err))
	}
	if redisCache != nil {
		if err := redisCache.Close(); err != nil {
			zapLogger.Warn("Failed to close Redis client", zap.Error(err))
		}
	}
	if rabbit != nil {
		if err := rabbit.Close(); err != nil {
			zapLogger.Warn("Failed to close RabbitMQ publisher", zap.Error(err))
		}
	}
	if err := store.Close(shutdownCtx); err != nil {
		zapLogger.Warn("Failed to close record store", zap.Error(err))
	}

	zapLogger.Info("Server exiting gracefully.")
}
