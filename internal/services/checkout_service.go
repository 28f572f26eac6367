package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stripe/stripe-go/v82"

	"github.com/adstudio/backend/internal/config"
	"github.com/adstudio/backend/internal/middleware"
	"github.com/adstudio/backend/internal/payments"
)

const maxWebhookBody = 65_536

// CheckoutProvider is the payment processor side of a credit purchase.
type CheckoutProvider interface {
	CreateCreditCheckout(ctx context.Context, params payments.CreditCheckoutParams) (*payments.CheckoutSession, error)
	VerifyWebhook(payload []byte, signature string) (*stripe.Event, error)
}

// CheckoutRequest represents a credit pack purchase
// @Description Credit purchase request
type CheckoutRequest struct {
	Credits int64 `json:"credits" validate:"required" example:"100"`
}

// CheckoutResponse carries everything the client needs to pay
// @Description Checkout session
type CheckoutResponse struct {
	SessionID  string `json:"sessionId" example:"cs_test_a1b2c3"`
	URL        string `json:"url" example:"https://checkout.stripe.com/c/pay/cs_test_a1b2c3"`
	QRCode     string `json:"qrCode,omitempty"` // base64 PNG of URL
	Credits    int64  `json:"credits" example:"100"`
	PriceCents int64  `json:"priceCents" example:"1000"`
}

type CheckoutService struct {
	ledger    *CreditsLedger
	payments  CheckoutProvider
	qr        *QRService
	cfg       *config.CreditsConfig
	baseURL   string
	validator *ValidationHelper
	logger    logrus.FieldLogger
}

func NewCheckoutService(ledger *CreditsLedger, provider CheckoutProvider, qr *QRService, cfg *config.CreditsConfig, baseURL string, logger logrus.FieldLogger) *CheckoutService {
	return &CheckoutService{
		ledger:    ledger,
		payments:  provider,
		qr:        qr,
		cfg:       cfg,
		baseURL:   baseURL,
		validator: NewValidationHelper(),
		logger:    logger,
	}
}

// CreateCheckout starts a Stripe checkout for a credit pack
// @Summary Buy credits
// @Description Creates a Stripe Checkout session for 10 to 1000 credits at 10 cents each
// @Tags credits
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CheckoutRequest true "Credit amount"
// @Success 200 {object} CheckoutResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /credits/checkout [post]
func (s *CheckoutService) CreateCheckout(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	var req CheckoutRequest
	if err := DecodeJSON(w, r, &req); err != nil {
		SendErrorResponse(w, "Invalid request", http.StatusBadRequest, nil)
		return
	}
	if err := s.validator.ValidateStruct(&req); err != nil {
		SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}
	if req.Credits < s.cfg.MinPurchase || req.Credits > s.cfg.MaxPurchase {
		SendErrorResponse(w, fmt.Sprintf("Invalid credit amount. Must be between %d and %d.", s.cfg.MinPurchase, s.cfg.MaxPurchase), http.StatusBadRequest, nil)
		return
	}

	log := s.logger.WithFields(logrus.Fields{"user_id": userID, "credits": req.Credits})
	price := s.cfg.PriceCents(req.Credits)

	sess, err := s.payments.CreateCreditCheckout(r.Context(), payments.CreditCheckoutParams{
		UserID:     userID,
		Email:      middleware.EmailFromContext(r.Context()),
		Credits:    req.Credits,
		PriceCents: price,
		SuccessURL: s.baseURL + "/credits/success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:  s.baseURL + "/credits",
	})
	if err != nil {
		log.WithError(err).Error("Failed to create checkout session")
		SendErrorResponse(w, "Failed to create checkout session", http.StatusInternalServerError, nil)
		return
	}

	resp := CheckoutResponse{
		SessionID:  sess.ID,
		URL:        sess.URL,
		Credits:    req.Credits,
		PriceCents: price,
	}
	if code, err := s.qr.EncodePNG(sess.URL); err != nil {
		log.WithError(err).Warn("Failed to render checkout QR code")
	} else {
		resp.QRCode = code
	}

	writeJSON(w, http.StatusOK, resp)
}

// HandleStripeWebhook credits the buyer once Stripe reports a paid checkout
// @Summary Stripe webhook
// @Description Receives signed Stripe events. Paid credit checkouts are granted once per session.
// @Tags webhooks
// @Accept json
// @Produce json
// @Param Stripe-Signature header string true "Stripe signature"
// @Success 200 {object} map[string]bool
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /webhooks/stripe [post]
func (s *CheckoutService) HandleStripeWebhook(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxWebhookBody)
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		SendErrorResponse(w, "Invalid request", http.StatusBadRequest, nil)
		return
	}

	event, err := s.payments.VerifyWebhook(payload, r.Header.Get("Stripe-Signature"))
	if errors.Is(err, payments.ErrWebhookSecretMissing) {
		s.logger.Error("Stripe webhook secret is not set")
		SendErrorResponse(w, "Stripe webhook secret is not set", http.StatusInternalServerError, nil)
		return
	}
	if err != nil {
		s.logger.WithError(err).Warn("Rejected Stripe webhook")
		SendErrorResponse(w, "Invalid signature", http.StatusBadRequest, nil)
		return
	}

	log := s.logger.WithFields(logrus.Fields{"event_id": event.ID, "event_type": event.Type})

	if event.Type != payments.EventCheckoutCompleted {
		log.Debug("Ignoring Stripe event")
		writeJSON(w, http.StatusOK, map[string]bool{"received": true})
		return
	}

	sess, err := payments.CheckoutSessionFromEvent(event)
	if err != nil {
		log.WithError(err).Error("Failed to decode checkout session")
		SendErrorResponse(w, "Invalid checkout session", http.StatusBadRequest, nil)
		return
	}

	if sess.PaymentStatus != stripe.CheckoutSessionPaymentStatusPaid {
		log.WithField("session_id", sess.ID).Info("Checkout session is not paid")
		writeJSON(w, http.StatusOK, map[string]bool{"received": true})
		return
	}
	// Sessions created elsewhere may omit type; only a different purpose is skipped.
	if purpose := sess.Metadata["type"]; purpose != "" && purpose != payments.PurposeCreditPurchase {
		log.WithFields(logrus.Fields{"session_id": sess.ID, "type": purpose}).Info("Checkout session is not a credit purchase")
		writeJSON(w, http.StatusOK, map[string]bool{"received": true})
		return
	}

	userID := sess.Metadata["userId"]
	credits, err := strconv.ParseInt(creditMetadata(sess.Metadata), 10, 64)
	if userID == "" || err != nil || credits <= 0 {
		log.WithField("session_id", sess.ID).Error("Checkout session is missing purchase metadata")
		SendErrorResponse(w, "Missing required metadata", http.StatusBadRequest, nil)
		return
	}

	applied, err := s.ledger.Grant(r.Context(), GrantRequest{
		UserID:      userID,
		Amount:      credits,
		Reason:      fmt.Sprintf("Purchased %d credits", credits),
		ReferenceID: sess.ID,
		PriceUSD:    decimal.NewNullDecimal(decimal.New(sess.AmountTotal, -2)),
	})
	if err != nil {
		log.WithError(err).WithField("session_id", sess.ID).Error("Failed to grant purchased credits")
		SendErrorResponse(w, "Error processing webhook", http.StatusInternalServerError, nil)
		return
	}

	log.WithFields(logrus.Fields{
		"session_id": sess.ID,
		"user_id":    userID,
		"credits":    credits,
		"applied":    applied,
	}).Info("Processed credit purchase")

	writeJSON(w, http.StatusOK, map[string]bool{"received": true})
}

func creditMetadata(metadata map[string]string) string {
	if v := metadata["creditAmount"]; v != "" {
		return v
	}
	return metadata["credits"]
}
