package billing

import (
	"context"
	"fmt"
	"time"

	appshop "github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/application/shop"
	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/client"
	"go.uber.org/zap"
)

// StripeAdapter opens hosted checkout pages and refunds payments. It holds
// its own API client, leaving the stripe package globals alone.
type StripeAdapter struct {
	api    *client.API
	config Config
	logger *zap.Logger
}

func NewStripeAdapter(config Config, logger *zap.Logger) (*StripeAdapter, error) {
	return newStripeAdapter(config, nil, logger)
}

// newStripeAdapter talks to backends, the default Stripe API when nil.
func newStripeAdapter(config Config, backends *stripe.Backends, logger *zap.Logger) (*StripeAdapter, error) {
	if err := config.validate(); err != nil {
		return nil, err
	}
	return &StripeAdapter{
		api:    client.New(config.SecretKey, backends),
		config: config,
		logger: logger,
	}, nil
}

// checkoutLocale maps the site locale to a Stripe Checkout locale
func checkoutLocale(locale string) string {
	switch locale {
	case "fr", "en":
		return locale
	}
	return "auto"
}

// CreateCheckoutSession creates a one-off card payment page for an order
func (a *StripeAdapter) CreateCheckoutSession(ctx context.Context, req appshop.CheckoutRequest) (*appshop.CheckoutSession, error) {
	a.logger.Debug("Creating Stripe checkout session",
		zap.String("order_number", req.OrderNumber),
		zap.Int("lines", len(req.Lines)))

	params := &stripe.CheckoutSessionParams{
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		CustomerEmail:      stripe.String(req.CustomerEmail),
		ClientReferenceID:  stripe.String(req.OrderID.String()),
		SuccessURL:         stripe.String(a.config.successURL(req.OrderNumber)),
		CancelURL:          stripe.String(a.config.CancelURL),
		Locale:             stripe.String(checkoutLocale(req.Locale)),
		Metadata: map[string]string{
			"orderId":     req.OrderID.String(),
			"orderNumber": req.OrderNumber,
		},
		PaymentIntentData: &stripe.CheckoutSessionPaymentIntentDataParams{
			Metadata: map[string]string{
				"orderId":     req.OrderID.String(),
				"orderNumber": req.OrderNumber,
			},
		},
	}
	params.Context = ctx
	if !req.ExpiresAt.IsZero() {
		params.ExpiresAt = stripe.Int64(req.ExpiresAt.Unix())
	}
	for _, l := range req.Lines {
		product := &stripe.CheckoutSessionLineItemPriceDataProductDataParams{Name: stripe.String(l.Name)}
		if l.Image != nil && *l.Image != "" {
			product.Images = stripe.StringSlice([]string{*l.Image})
		}
		params.LineItems = append(params.LineItems, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:    stripe.String(a.config.Currency),
				ProductData: product,
				UnitAmount:  stripe.Int64(l.UnitAmount),
			},
			Quantity: stripe.Int64(l.Quantity),
		})
	}

	s, err := a.api.CheckoutSessions.New(params)
	if err != nil {
		a.logger.Error("Failed to create Stripe checkout session",
			zap.String("order_number", req.OrderNumber),
			zap.Error(err))
		return nil, fmt.Errorf("stripe: failed to create checkout session: %w", err)
	}

	a.logger.Info("Created Stripe checkout session",
		zap.String("order_number", req.OrderNumber),
		zap.String("session_id", s.ID))

	out := &appshop.CheckoutSession{ID: s.ID, URL: s.URL}
	if s.ExpiresAt > 0 {
		out.ExpiresAt = time.Unix(s.ExpiresAt, 0)
	}
	return out, nil
}

// Refund refunds a payment intent in full
func (a *StripeAdapter) Refund(ctx context.Context, paymentIntentID string) (string, error) {
	params := &stripe.RefundParams{PaymentIntent: stripe.String(paymentIntentID)}
	params.Context = ctx

	r, err := a.api.Refunds.New(params)
	if err != nil {
		a.logger.Error("Failed to refund Stripe payment",
			zap.String("payment_intent", paymentIntentID),
			zap.Error(err))
		return "", fmt.Errorf("stripe: failed to refund payment: %w", err)
	}

	a.logger.Info("Refunded Stripe payment",
		zap.String("payment_intent", paymentIntentID),
		zap.String("refund_id", r.ID),
		zap.String("status", string(r.Status)))
	return r.ID, nil
}

var _ appshop.PaymentGateway = (*StripeAdapter)(nil)
