package shop

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	appaudit "github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/application/audit"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/audit"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/shared"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/shop"
	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/webhook"
	"go.uber.org/zap"
)

// Stripe event types handled by the storefront
const (
	EventCheckoutCompleted = "checkout.session.completed"
	EventCheckoutExpired   = "checkout.session.expired"
	EventPaymentFailed     = "payment_intent.payment_failed"
	EventChargeRefunded    = "charge.refunded"
)

// WebhookService applies Stripe payment events to orders
type WebhookService struct {
	orderRepo      shop.OrderRepository
	auditRepo      audit.Repository
	idempotency    shared.IdempotencyStore
	idemConfig     shared.IdempotencyConfig
	secret         string
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
	now            func() time.Time
}

// WebhookServiceConfig contains configuration for WebhookService
type WebhookServiceConfig struct {
	OrderRepo     shop.OrderRepository
	AuditRepo     audit.Repository
	Idempotency   shared.IdempotencyStore
	WebhookSecret string
	Logger        *zap.Logger
}

// NewWebhookService creates a new WebhookService
func NewWebhookService(cfg WebhookServiceConfig) *WebhookService {
	return &WebhookService{
		orderRepo:   cfg.OrderRepo,
		auditRepo:   cfg.AuditRepo,
		idempotency: cfg.Idempotency,
		idemConfig:  shared.DefaultIdempotencyConfig(),
		secret:      cfg.WebhookSecret,
		logger:      cfg.Logger,
		now:         time.Now,
	}
}

// SetEventPublisher sets the event publisher
func (s *WebhookService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetClock overrides time.Now, for tests
func (s *WebhookService) SetClock(now func() time.Time) {
	s.now = now
}

// ErrInvalidSignature rejects a delivery whose Stripe-Signature does not
// match the payload.
var ErrInvalidSignature = shared.NewDomainError(shared.CodeValidationFailed, "Signature du webhook invalide")

// ProcessWebhook verifies and applies a Stripe webhook delivery. Each event
// ID is claimed before it is applied; a failed event is released so the
// redelivery Stripe sends after a 5xx can apply it.
func (s *WebhookService) ProcessWebhook(ctx context.Context, payload []byte, signature string) (*WebhookResult, error) {
	event, err := webhook.ConstructEventWithOptions(payload, signature, s.secret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		s.logger.Warn("Rejected webhook signature", zap.Error(err))
		return nil, ErrInvalidSignature
	}
	log := s.logger.With(zap.String("event_id", event.ID), zap.String("event_type", string(event.Type)))
	result := &WebhookResult{EventID: event.ID, EventType: string(event.Type)}

	claimed := false
	if s.idempotency != nil && s.idemConfig.Enabled {
		isNew, err := s.idempotency.MarkProcessed(ctx, event.ID, s.idemConfig.TTL)
		if err != nil {
			return nil, fmt.Errorf("claim webhook event %s: %w", event.ID, err)
		}
		if !isNew {
			log.Info("Duplicate webhook event ignored")
			result.Duplicate = true
			result.Message = "Event already processed"
			return result, nil
		}
		claimed = true
	}

	log.Info("Processing Stripe webhook event")
	switch string(event.Type) {
	case EventCheckoutCompleted:
		err = s.handleCheckoutCompleted(ctx, event)
	case EventCheckoutExpired:
		err = s.handleCheckoutExpired(ctx, event)
	case EventPaymentFailed:
		err = s.handlePaymentFailed(ctx, event)
	case EventChargeRefunded:
		err = s.handleChargeRefunded(ctx, event)
	default:
		result.Message = "Event type not handled"
	}
	if err != nil {
		log.Error("Failed to process webhook event", zap.Error(err))
		if claimed {
			if rerr := s.idempotency.Release(ctx, event.ID); rerr != nil {
				log.Warn("Failed to release webhook event", zap.Error(rerr))
			}
		}
		return result, err
	}
	result.Processed = true
	return result, nil
}

// orderForSession resolves the order from the session metadata, then from the session ID
func (s *WebhookService) orderForSession(ctx context.Context, cs *stripe.CheckoutSession) (*shop.Order, error) {
	if raw, ok := cs.Metadata["orderId"]; ok {
		if id, err := uuid.Parse(raw); err == nil {
			return s.orderRepo.FindByID(ctx, id)
		}
	}
	return s.orderRepo.FindByCheckoutSession(ctx, cs.ID)
}

func (s *WebhookService) handleCheckoutCompleted(ctx context.Context, event stripe.Event) error {
	var cs stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &cs); err != nil {
		return fmt.Errorf("parse checkout session: %w", err)
	}
	if cs.PaymentStatus != stripe.CheckoutSessionPaymentStatusPaid {
		s.logger.Info("Checkout completed without payment", zap.String("session_id", cs.ID))
		return nil
	}
	o, err := s.orderForSession(ctx, &cs)
	if err != nil {
		return err
	}
	intent := ""
	if cs.PaymentIntent != nil {
		intent = cs.PaymentIntent.ID
	}
	if !o.MarkPaid(intent, s.now()) {
		return nil
	}
	if err := s.orderRepo.Save(ctx, o); err != nil {
		return err
	}
	appaudit.Write(ctx, s.auditRepo, s.logger,
		audit.New(audit.ActionPayment, audit.EntityOrder, &o.ID,
			fmt.Sprintf("Paiement Stripe reçu pour la commande %s (%s MAD)", o.Number, o.Total.StringFixed(2))).
			WithChange("paymentStatus", string(shop.PaymentPending), string(shop.PaymentPaid)).
			Classify(audit.CategoryFinancial, audit.SeverityInfo))
	if err := shared.PublishAndClear(ctx, s.eventPublisher, o); err != nil {
		s.logger.Warn("Failed to publish shop events", zap.Error(err))
	}
	s.logger.Info("Order paid", zap.String("order_number", o.Number))
	return nil
}

func (s *WebhookService) handleCheckoutExpired(ctx context.Context, event stripe.Event) error {
	var cs stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &cs); err != nil {
		return fmt.Errorf("parse checkout session: %w", err)
	}
	o, err := s.orderForSession(ctx, &cs)
	if err != nil {
		if shared.IsNotFound(err) {
			return nil
		}
		return err
	}
	s.logger.Info("Checkout session expired",
		zap.String("order_number", o.Number),
		zap.String("session_id", cs.ID))
	return nil
}

func (s *WebhookService) handlePaymentFailed(ctx context.Context, event stripe.Event) error {
	var pi stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
		return fmt.Errorf("parse payment intent: %w", err)
	}
	var o *shop.Order
	var err error
	if raw, ok := pi.Metadata["orderId"]; ok {
		if id, perr := uuid.Parse(raw); perr == nil {
			o, err = s.orderRepo.FindByID(ctx, id)
		}
	}
	if o == nil && err == nil {
		o, err = s.orderRepo.FindByPaymentIntent(ctx, pi.ID)
	}
	if err != nil {
		if shared.IsNotFound(err) {
			s.logger.Warn("Payment failure for unknown order", zap.String("payment_intent", pi.ID))
			return nil
		}
		return err
	}
	if !o.MarkPaymentFailed(s.now()) {
		return nil
	}
	s.logger.Warn("Order payment failed", zap.String("order_number", o.Number))
	return s.orderRepo.Save(ctx, o)
}

func (s *WebhookService) handleChargeRefunded(ctx context.Context, event stripe.Event) error {
	var ch stripe.Charge
	if err := json.Unmarshal(event.Data.Raw, &ch); err != nil {
		return fmt.Errorf("parse charge: %w", err)
	}
	if !ch.Refunded || ch.PaymentIntent == nil {
		return nil
	}
	o, err := s.orderRepo.FindByPaymentIntent(ctx, ch.PaymentIntent.ID)
	if err != nil {
		if shared.IsNotFound(err) {
			return nil
		}
		return err
	}
	old := o.Status
	if !o.MarkRefunded(s.now()) {
		return nil
	}
	if err := s.orderRepo.Save(ctx, o); err != nil {
		return err
	}
	appaudit.Write(ctx, s.auditRepo, s.logger,
		audit.New(audit.ActionRefund, audit.EntityOrder, &o.ID,
			fmt.Sprintf("Remboursement Stripe de la commande %s", o.Number)).
			WithChange("status", string(old), string(o.Status)).
			Classify(audit.CategoryFinancial, audit.SeverityWarning))
	if err := shared.PublishAndClear(ctx, s.eventPublisher, o); err != nil {
		s.logger.Warn("Failed to publish shop events", zap.Error(err))
	}
	return nil
}
