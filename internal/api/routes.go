package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"lifenotes-backend-go/internal/config"
	"lifenotes-backend-go/internal/core"
	"lifenotes-backend-go/internal/middleware"
)

// Services bundles the services the HTTP API dispatches to.
type Services struct {
	Lessons  core.LessonService
	Users    core.UserService
	Reports  core.ReportService
	Checkout core.CheckoutService
}

// SetupRoutes configures all the application routes with their handlers.
// Global middleware (logging, recovery, CORS) is applied to the router in main.go.
func SetupRoutes(router *gin.Engine, appConfig *config.Config, logger *zap.Logger, services Services) {
	lessonHandler := NewLessonHandler(services.Lessons, logger)
	userHandler := NewUserHandler(services.Users, logger)
	reportHandler := NewReportHandler(services.Reports, logger)
	checkoutHandler := NewCheckoutHandler(services.Checkout, logger)

	router.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "LifeNotes is shifting")
	})
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "UP", "message": "LifeNotes backend is healthy."})
	})

	lessons := router.Group("/addLesson")
	{
		lessons.GET("", lessonHandler.ListLessons)
		lessons.POST("", lessonHandler.CreateLesson)
		lessons.GET("/:id", lessonHandler.GetLesson)
		lessons.PUT("/:id", lessonHandler.UpdateLesson)
		lessons.DELETE("/:id", lessonHandler.DeleteLesson)
		lessons.PATCH("/comment/:id", lessonHandler.AddComment)
		lessons.PATCH("/like/:id", lessonHandler.ToggleLike)
		lessons.PATCH("/favorite/:id", lessonHandler.ToggleFavorite)
	}
	router.GET("/myLesson", lessonHandler.ListMyLessons)
	router.GET("/favorites", lessonHandler.ListFavorites)

	users := router.Group("/users")
	{
		users.POST("", userHandler.UpsertUser)
		users.GET("", userHandler.ListUsers)
		// Registered before /:email so the role lookup is never shadowed.
		users.GET("/role/:email", userHandler.GetRole)
		users.GET("/:email", userHandler.GetUser)
		users.PATCH("/:email", userHandler.UpdateUser)
	}

	router.POST("/reports", reportHandler.CreateReport)
	router.GET("/reports", reportHandler.ListReports)

	checkoutMW := []gin.HandlerFunc{}
	if appConfig.CheckoutRateLimit > 0 {
		limiter := middleware.NewRateLimiter(appConfig.CheckoutRateLimit, appConfig.CheckoutRateBurst)
		checkoutMW = append(checkoutMW, limiter.Middleware())
	}
	router.POST("/create-checkout-session", append(checkoutMW, checkoutHandler.CreateCheckoutSession)...)
	router.PATCH("/payment-success", append(checkoutMW, checkoutHandler.PaymentSuccess)...)

	if appConfig.StripeWebhookSecret != "" {
		router.POST("/webhooks/stripe", checkoutHandler.StripeWebhook)
	} else {
		logger.Info("STRIPE_WEBHOOK_SECRET not set; /webhooks/stripe is disabled")
	}

	logger.Info("API routes configured", zap.Int("routes", len(router.Routes())))
}
