package api

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"lifenotes-backend-go/internal/core"
	"lifenotes-backend-go/internal/models"
)

// maxWebhookBodyBytes bounds the webhook payload read into memory.
const maxWebhookBodyBytes = 64 << 10

// CheckoutHandler handles the premium checkout endpoints.
type CheckoutHandler struct {
	checkoutService core.CheckoutService
	logger          *zap.Logger
}

// NewCheckoutHandler creates a new CheckoutHandler.
func NewCheckoutHandler(cs core.CheckoutService, logger *zap.Logger) *CheckoutHandler {
	return &CheckoutHandler{checkoutService: cs, logger: logger}
}

// CreateCheckoutSession handles POST /create-checkout-session
func (h *CheckoutHandler) CreateCheckoutSession(c *gin.Context) {
	var req models.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request payload", err)
		return
	}
	url, err := h.checkoutService.CreateCheckoutSession(c.Request.Context(), req.SenderEmail)
	if err != nil {
		mapErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, CheckoutSessionResponse{URL: url})
}

// PaymentSuccess handles PATCH /payment-success?session_id=
func (h *CheckoutHandler) PaymentSuccess(c *gin.Context) {
	result, err := h.checkoutService.ConfirmPayment(c.Request.Context(), c.Query("session_id"))
	if err != nil {
		mapErrorToStatus(c, h.logger, err)
		return
	}
	message := "Premium access activated"
	if result.AlreadyApplied {
		message = "Premium access already active"
	}
	c.JSON(http.StatusOK, PaymentSuccessResponse{
		Success:        result.Applied,
		Message:        message,
		AlreadyApplied: result.AlreadyApplied,
	})
}

// StripeWebhook handles POST /webhooks/stripe. The raw body is needed for
// signature verification, so it is read before any JSON decoding.
func (h *CheckoutHandler) StripeWebhook(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBodyBytes))
	if err != nil {
		badRequest(c, "Failed to read request body", err)
		return
	}
	if err := h.checkoutService.HandleWebhook(c.Request.Context(), payload, c.GetHeader("Stripe-Signature")); err != nil {
		mapErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, WebhookAck{Received: true})
}
