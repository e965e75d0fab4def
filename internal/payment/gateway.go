package payment

import (
	"context"
	"errors"
)

// Checkout session payment statuses reported by the provider.
const (
	PaymentStatusPaid              = "paid"
	PaymentStatusUnpaid            = "unpaid"
	PaymentStatusNoPaymentRequired = "no_payment_required"
)

// Webhook event types the checkout flow acts on.
const (
	EventCheckoutCompleted           = "checkout.session.completed"
	EventCheckoutAsyncPaymentSuccess = "checkout.session.async_payment_succeeded"
)

// ErrInvalidSignature is returned when a webhook payload fails verification.
var ErrInvalidSignature = errors.New("webhook signature verification failed")

// CheckoutParams describes a one-time payment for a single line item.
type CheckoutParams struct {
	Email       string
	ProductName string
	Currency    string
	UnitAmount  int64 // Smallest currency unit
	SuccessURL  string
	CancelURL   string
}

// CheckoutSession is the provider-owned record of one payment attempt.
type CheckoutSession struct {
	ID            string
	URL           string
	PaymentStatus string
	MetadataEmail string
	CustomerEmail string
	AmountTotal   int64
	Currency      string
}

// Email returns the customer email carried by the session, preferring the
// metadata written at creation time.
func (s *CheckoutSession) Email() string {
	if s.MetadataEmail != "" {
		return s.MetadataEmail
	}
	return s.CustomerEmail
}

// WebhookEvent is a verified provider event. Session is set for checkout session events.
type WebhookEvent struct {
	ID      string
	Type    string
	Session *CheckoutSession
}

// Gateway defines the interface for the hosted checkout provider.
type Gateway interface {
	CreateCheckoutSession(ctx context.Context, params CheckoutParams) (*CheckoutSession, error)
	GetCheckoutSession(ctx context.Context, sessionID string) (*CheckoutSession, error)
	// ParseWebhook verifies the signature header and decodes the event.
	ParseWebhook(payload []byte, signature string) (*WebhookEvent, error)
}
