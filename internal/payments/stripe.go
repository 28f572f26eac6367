package payments

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/sirupsen/logrus"
	"github.com/stripe/stripe-go/v82"
	checkoutsession "github.com/stripe/stripe-go/v82/checkout/session"
	"github.com/stripe/stripe-go/v82/webhook"

	"github.com/adstudio/backend/internal/config"
)

const (
	EventCheckoutCompleted = "checkout.session.completed"
	PurposeCreditPurchase  = "credit_purchase"
)

var (
	ErrWebhookSecretMissing = errors.New("stripe webhook secret is not set")
	ErrInvalidSignature     = errors.New("webhook signature verification failed")
)

// Client wraps the Stripe calls the credit store needs. It carries its own
// key instead of setting the package-level stripe.Key.
type Client struct {
	sessions      *checkoutsession.Client
	webhookSecret string
	logger        logrus.FieldLogger
}

func NewClient(cfg config.StripeConfig, logger logrus.FieldLogger) *Client {
	return &Client{
		sessions: &checkoutsession.Client{
			B:   stripe.GetBackend(stripe.APIBackend),
			Key: cfg.SecretKey,
		},
		webhookSecret: cfg.WebhookSecret,
		logger:        logger,
	}
}

// CreditCheckoutParams for a one-off credit pack purchase
type CreditCheckoutParams struct {
	UserID     string
	Email      string
	Credits    int64
	PriceCents int64
	SuccessURL string
	CancelURL  string
}

type CheckoutSession struct {
	ID  string `json:"sessionId"`
	URL string `json:"url"`
}

// CreateCreditCheckout opens a payment-mode Checkout Session. The metadata is
// what the webhook later reads to grant the credits.
func (c *Client) CreateCreditCheckout(ctx context.Context, p CreditCheckoutParams) (*CheckoutSession, error) {
	credits := strconv.FormatInt(p.Credits, 10)
	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(string(stripe.CurrencyUSD)),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name:        stripe.String(credits + " Credits for AI Studio"),
						Description: stripe.String("Purchase of " + credits + " credits for generating AI product images."),
					},
					UnitAmount: stripe.Int64(p.PriceCents),
				},
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL:        stripe.String(p.SuccessURL),
		CancelURL:         stripe.String(p.CancelURL),
		ClientReferenceID: stripe.String(p.UserID),
		Metadata: map[string]string{
			"userId":       p.UserID,
			"creditAmount": credits,
			"type":         PurposeCreditPurchase,
		},
	}
	if p.Email != "" {
		params.CustomerEmail = stripe.String(p.Email)
	}
	params.Context = ctx

	sess, err := c.sessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create checkout session: %w", err)
	}

	c.logger.WithFields(logrus.Fields{
		"session_id": sess.ID,
		"user_id":    p.UserID,
		"credits":    p.Credits,
	}).Info("Created Stripe checkout session")

	return &CheckoutSession{ID: sess.ID, URL: sess.URL}, nil
}

// VerifyWebhook checks the Stripe-Signature header and decodes the event.
func (c *Client) VerifyWebhook(payload []byte, signature string) (*stripe.Event, error) {
	if c.webhookSecret == "" {
		return nil, ErrWebhookSecretMissing
	}

	event, err := webhook.ConstructEventWithOptions(payload, signature, c.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	return &event, nil
}

// CheckoutSessionFromEvent extracts checkout session from a webhook event
func CheckoutSessionFromEvent(event *stripe.Event) (*stripe.CheckoutSession, error) {
	if event.Type != EventCheckoutCompleted {
		return nil, fmt.Errorf("event type %s is not %s", event.Type, EventCheckoutCompleted)
	}

	var sess stripe.CheckoutSession
	if err := sess.UnmarshalJSON(event.Data.Raw); err != nil {
		return nil, fmt.Errorf("failed to unmarshal checkout session: %w", err)
	}
	return &sess, nil
}
