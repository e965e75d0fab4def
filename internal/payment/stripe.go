package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"
)

// StripeGateway implements Gateway with Stripe Checkout.
type StripeGateway struct {
	api           *client.API
	webhookSecret string
}

// NewStripeGateway creates a gateway with its own API client, so no global stripe.Key is set.
func NewStripeGateway(secretKey, webhookSecret string) *StripeGateway {
	sc := &client.API{}
	sc.Init(secretKey, nil)
	return &StripeGateway{api: sc, webhookSecret: webhookSecret}
}

func (g *StripeGateway) CreateCheckoutSession(ctx context.Context, p CheckoutParams) (*CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(strings.ToLower(p.Currency)),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(p.ProductName),
					},
					UnitAmount: stripe.Int64(p.UnitAmount),
				},
				Quantity: stripe.Int64(1),
			},
		},
		CustomerEmail: stripe.String(p.Email),
		SuccessURL:    stripe.String(p.SuccessURL),
		CancelURL:     stripe.String(p.CancelURL),
	}
	params.Context = ctx
	params.AddMetadata("email", p.Email)

	s, err := g.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe: create checkout session: %w", err)
	}
	return fromStripeSession(s), nil
}

func (g *StripeGateway) GetCheckoutSession(ctx context.Context, sessionID string) (*CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx

	s, err := g.api.CheckoutSessions.Get(sessionID, params)
	if err != nil {
		return nil, fmt.Errorf("stripe: get checkout session %q: %w", sessionID, err)
	}
	return fromStripeSession(s), nil
}

// ParseWebhook verifies the Stripe-Signature header. API version mismatches
// are tolerated because only checkout session fields are read.
func (g *StripeGateway) ParseWebhook(payload []byte, signature string) (*WebhookEvent, error) {
	if g.webhookSecret == "" {
		return nil, fmt.Errorf("%w: no webhook secret configured", ErrInvalidSignature)
	}
	event, err := webhook.ConstructEventWithOptions(payload, signature, g.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	out := &WebhookEvent{ID: event.ID, Type: string(event.Type)}
	if strings.HasPrefix(out.Type, "checkout.session.") && event.Data != nil {
		var s stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &s); err != nil {
			return nil, fmt.Errorf("stripe: decode %s payload: %w", out.Type, err)
		}
		out.Session = fromStripeSession(&s)
	}
	return out, nil
}

func fromStripeSession(s *stripe.CheckoutSession) *CheckoutSession {
	out := &CheckoutSession{
		ID:            s.ID,
		URL:           s.URL,
		PaymentStatus: string(s.PaymentStatus),
		MetadataEmail: s.Metadata["email"],
		CustomerEmail: s.CustomerEmail,
		AmountTotal:   s.AmountTotal,
		Currency:      string(s.Currency),
	}
	if out.CustomerEmail == "" && s.CustomerDetails != nil {
		out.CustomerEmail = s.CustomerDetails.Email
	}
	return out
}
