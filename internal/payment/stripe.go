// Package payment sells analysis credits through Stripe checkout and
// turns webhook events back into credit grants.
package payment

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/checkout/session"
	"github.com/stripe/stripe-go/v76/webhook"
)

const defaultCreditsPerBuy = 10

// CreditGrant is the outcome of a paid checkout: how many analysis
// credits to add to which user.
type CreditGrant struct {
	UserID  string
	Credits int
}

// Options configures the Stripe service.
type Options struct {
	APIKey        string
	PriceID       string
	WebhookSecret string
	SuccessURL    string
	CancelURL     string
	CreditsPerBuy int
}

// Service handles Stripe checkout and webhook operations.
type Service struct {
	priceID       string
	webhookSecret string
	successURL    string
	cancelURL     string
	creditsPerBuy int
}

// NewService creates a new Stripe payment service.
func NewService(opts Options) *Service {
	// Initialize Stripe with the API key
	stripe.Key = opts.APIKey

	credits := opts.CreditsPerBuy
	if credits <= 0 {
		credits = defaultCreditsPerBuy
	}

	return &Service{
		priceID:       opts.PriceID,
		webhookSecret: opts.WebhookSecret,
		successURL:    opts.SuccessURL,
		cancelURL:     opts.CancelURL,
		creditsPerBuy: credits,
	}
}

// CreateCheckoutSession creates a one-time payment checkout session for a
// credit pack. The user ID and credit count travel in the session metadata
// so the webhook can grant them without any extra lookup.
func (s *Service) CreateCheckoutSession(userID string) (string, string, error) {
	params := &stripe.CheckoutSessionParams{
		SuccessURL: stripe.String(s.successURL),
		CancelURL:  stripe.String(s.cancelURL),
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(s.priceID),
				Quantity: stripe.Int64(1),
			},
		},
		Metadata: map[string]string{
			"user_id": userID,
			"credits": strconv.Itoa(s.creditsPerBuy),
		},
	}

	sess, err := session.New(params)
	if err != nil {
		return "", "", fmt.Errorf("checkout session create failed: %w", err)
	}

	return sess.ID, sess.URL, nil
}

// VerifyWebhookSignature verifies the signature of a Stripe webhook event.
func (s *Service) VerifyWebhookSignature(payload []byte, signature string) (*stripe.Event, error) {
	event, err := webhook.ConstructEvent(payload, signature, s.webhookSecret)
	return &event, err
}

// ProcessEvent maps a verified webhook event to a credit grant. It returns
// (nil, nil) for event types that carry no grant, so the endpoint can
// acknowledge them without retry storms from Stripe.
func (s *Service) ProcessEvent(event *stripe.Event) (*CreditGrant, error) {
	switch event.Type {
	case "checkout.session.completed":
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
			return nil, fmt.Errorf("failed to parse checkout session: %w", err)
		}
		return s.grantFromMetadata(sess.Metadata)

	case "payment_intent.succeeded":
		var intent stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
			return nil, fmt.Errorf("failed to parse payment intent: %w", err)
		}
		// Stripe does not copy session metadata onto the intent, so a bare
		// intent here means the checkout.session.completed event already
		// granted the credits. Only grant when the intent carries its own.
		if len(intent.Metadata) == 0 {
			return nil, nil
		}
		return s.grantFromMetadata(intent.Metadata)

	default:
		return nil, nil
	}
}

func (s *Service) grantFromMetadata(metadata map[string]string) (*CreditGrant, error) {
	userID, ok := metadata["user_id"]
	if !ok || userID == "" {
		return nil, fmt.Errorf("user_id not found in event metadata")
	}

	credits := s.creditsPerBuy
	if raw, ok := metadata["credits"]; ok {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("invalid credits value %q in event metadata", raw)
		}
		credits = n
	}

	return &CreditGrant{UserID: userID, Credits: credits}, nil
}
