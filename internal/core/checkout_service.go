package core

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"

	"lifenotes-backend-go/internal/config"
	"lifenotes-backend-go/internal/db"
	"lifenotes-backend-go/internal/models"
	"lifenotes-backend-go/internal/payment"
)

// Ledger sources.
const (
	PaymentSourceConfirmation = "confirmation"
	PaymentSourceWebhook      = "webhook"
)

// CheckoutConfig is the static pricing and redirect configuration of the premium checkout.
type CheckoutConfig struct {
	ProductName        string
	PriceAmount        float64 // In SourceCurrency units
	SourceCurrency     string
	SettlementCurrency string
	ExchangeRate       float64 // SourceCurrency -> SettlementCurrency
	SiteDomain         string
}

// CheckoutConfigFromAppConfig extracts the checkout settings from the application config.
func CheckoutConfigFromAppConfig(cfg *config.Config) CheckoutConfig {
	return CheckoutConfig{
		ProductName:        cfg.PremiumProductName,
		PriceAmount:        cfg.PremiumPriceAmount,
		SourceCurrency:     cfg.PremiumCurrency,
		SettlementCurrency: cfg.SettlementCurrency,
		ExchangeRate:       cfg.ExchangeRate,
		SiteDomain:         cfg.SiteDomain,
	}
}

// ChargeAmount converts the price to the settlement currency's smallest unit.
func (c CheckoutConfig) ChargeAmount() int64 {
	return int64(math.Round(c.PriceAmount * c.ExchangeRate * 100))
}

// SuccessURL is where the provider redirects after payment. The provider
// substitutes {CHECKOUT_SESSION_ID}.
func (c CheckoutConfig) SuccessURL() string {
	return strings.TrimRight(c.SiteDomain, "/") + "/dashboard/payment-success?session_id={CHECKOUT_SESSION_ID}"
}

func (c CheckoutConfig) CancelURL() string {
	return strings.TrimRight(c.SiteDomain, "/") + "/dashboard/payment-cancel"
}

// checkoutService implements the CheckoutService interface.
type checkoutService struct {
	gateway     payment.Gateway
	userService UserService
	paymentRepo db.PaymentRepository
	publisher   EventPublisher
	config      CheckoutConfig
	logger      *zap.Logger
}

// NewCheckoutService creates a new CheckoutService instance. publisher may be nil.
func NewCheckoutService(gw payment.Gateway, us UserService, pr db.PaymentRepository, publisher EventPublisher, cfg CheckoutConfig, logger *zap.Logger) CheckoutService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &checkoutService{
		gateway:     gw,
		userService: us,
		paymentRepo: pr,
		publisher:   publisher,
		config:      cfg,
		logger:      logger,
	}
}

// CreateCheckoutSession starts a hosted checkout for the premium plan and returns its URL.
func (s *checkoutService) CreateCheckoutSession(ctx context.Context, email string) (string, error) {
	email = normalizeEmail(email)
	if email == "" {
		return "", invalidRequest("senderEmail is required")
	}

	amount := s.config.ChargeAmount()
	if amount <= 0 {
		return "", fmt.Errorf("%w: computed charge amount %d is not positive", ErrProviderUnavailable, amount)
	}

	session, err := s.gateway.CreateCheckoutSession(ctx, payment.CheckoutParams{
		Email:       email,
		ProductName: s.config.ProductName,
		Currency:    s.config.SettlementCurrency,
		UnitAmount:  amount,
		SuccessURL:  s.config.SuccessURL(),
		CancelURL:   s.config.CancelURL(),
	})
	if err != nil {
		s.logger.Error("Failed to create checkout session", zap.String("email", email), zap.Error(err))
		return "", fmt.Errorf("%w: %w", ErrProviderUnavailable, err)
	}
	s.logger.Info("Checkout session created",
		zap.String("sessionID", session.ID),
		zap.String("email", email),
		zap.Int64("amount", amount),
		zap.String("currency", s.config.SettlementCurrency))
	return session.URL, nil
}

// ConfirmPayment re-fetches the session from the provider and applies the
// premium flag when it is paid. A session already in the payments ledger is
// answered from the ledger with AlreadyApplied set, without a provider call.
func (s *checkoutService) ConfirmPayment(ctx context.Context, sessionID string) (*models.PaymentConfirmation, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, invalidRequest("session_id is required")
	}

	record, err := s.paymentRepo.GetBySessionID(ctx, sessionID)
	switch {
	case err == nil:
		s.logger.Info("Payment already applied", zap.String("sessionID", sessionID), zap.String("email", record.Email))
		return &models.PaymentConfirmation{Applied: true, AlreadyApplied: true, Email: record.Email}, nil
	case !errors.Is(err, db.ErrNotFound):
		return nil, storeError("lookup payment", err)
	}

	session, err := s.gateway.GetCheckoutSession(ctx, sessionID)
	if err != nil {
		s.logger.Error("Failed to fetch checkout session", zap.String("sessionID", sessionID), zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrProviderUnavailable, err)
	}
	return s.applySession(ctx, session, PaymentSourceConfirmation)
}

// HandleWebhook verifies a provider event and applies paid checkout sessions.
// Events of other types are acknowledged without action.
func (s *checkoutService) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	event, err := s.gateway.ParseWebhook(payload, signature)
	if err != nil {
		if errors.Is(err, payment.ErrInvalidSignature) {
			return fmt.Errorf("%w: %w", ErrInvalidRequest, err)
		}
		return invalidRequest("malformed webhook payload: %v", err)
	}

	switch event.Type {
	case payment.EventCheckoutCompleted, payment.EventCheckoutAsyncPaymentSuccess:
		if event.Session == nil {
			return invalidRequest("event %s carries no checkout session", event.ID)
		}
		if event.Session.PaymentStatus != payment.PaymentStatusPaid {
			// Delayed payment methods complete later with async_payment_succeeded.
			s.logger.Info("Checkout completed without payment yet",
				zap.String("eventID", event.ID), zap.String("sessionID", event.Session.ID),
				zap.String("paymentStatus", event.Session.PaymentStatus))
			return nil
		}
		_, err := s.applySession(ctx, event.Session, PaymentSourceWebhook)
		return err
	default:
		s.logger.Debug("Ignoring webhook event", zap.String("eventID", event.ID), zap.String("type", event.Type))
		return nil
	}
}

func (s *checkoutService) applySession(ctx context.Context, session *payment.CheckoutSession, source string) (*models.PaymentConfirmation, error) {
	if session.PaymentStatus != payment.PaymentStatusPaid {
		s.logger.Warn("Payment not verified",
			zap.String("sessionID", session.ID), zap.String("paymentStatus", session.PaymentStatus))
		return nil, fmt.Errorf("%w: session %s has status %q", ErrPaymentNotVerified, session.ID, session.PaymentStatus)
	}

	email := normalizeEmail(session.Email())
	if email == "" {
		return nil, fmt.Errorf("%w: session %s", ErrMissingIdentity, session.ID)
	}

	if _, err := s.userService.GetUserByEmail(ctx, email); err != nil {
		return nil, err
	}

	changed, err := s.userService.SetPremium(ctx, email, session.ID)
	if err != nil {
		return nil, err
	}

	record := &models.PaymentRecord{
		SessionID:   session.ID,
		Email:       email,
		AmountTotal: session.AmountTotal,
		Currency:    session.Currency,
		Source:      source,
		AppliedAt:   time.Now().UTC(),
	}
	recorded, err := s.paymentRepo.Record(ctx, record)
	if err != nil {
		// The premium flag is already set; a later confirmation will record the session.
		s.logger.Error("Failed to record payment", zap.String("sessionID", session.ID), zap.Error(err))
		return nil, storeError("record payment", err)
	}

	s.logger.Info("Payment applied",
		zap.String("sessionID", session.ID),
		zap.String("email", email),
		zap.String("source", source),
		zap.Bool("premiumChanged", changed),
		zap.Bool("newLedgerEntry", recorded))

	if changed {
		publishEvent(ctx, s.publisher, s.logger, QueuePremiumActivated, models.PremiumActivatedEvent{
			Email:       email,
			SessionID:   session.ID,
			AmountTotal: session.AmountTotal,
			Currency:    session.Currency,
			Source:      source,
			OccurredAt:  record.AppliedAt,
		})
	}
	return &models.PaymentConfirmation{Applied: true, AlreadyApplied: !changed, Email: email}, nil
}
