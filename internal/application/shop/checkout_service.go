package shop

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	appaudit "github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/application/audit"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/audit"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/shared"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/shop"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CodePaymentsUnavailable is returned when no card processor is configured
const CodePaymentsUnavailable = "PAYMENTS_UNAVAILABLE"

// ErrPaymentsUnavailable is returned when Stripe is not configured
var ErrPaymentsUnavailable = shared.NewDomainError(CodePaymentsUnavailable, "Le paiement par carte n'est pas disponible")

const sessionTTL = 30 * time.Minute

var centimes = decimal.NewFromInt(100)

// CheckoutLine is one line of a hosted payment page, in centimes
type CheckoutLine struct {
	Name       string
	Image      *string
	UnitAmount int64
	Quantity   int64
}

// CheckoutRequest describes the hosted payment page for an order
type CheckoutRequest struct {
	OrderID       uuid.UUID
	OrderNumber   string
	CustomerEmail string
	Locale        string
	Lines         []CheckoutLine
	ExpiresAt     time.Time
}

// CheckoutSession is the created hosted payment page
type CheckoutSession struct {
	ID        string
	URL       string
	ExpiresAt time.Time
}

// PaymentGateway is the card processor
type PaymentGateway interface {
	CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error)
	// Refund refunds a captured payment in full and returns the refund ID
	Refund(ctx context.Context, paymentIntentID string) (string, error)
}

// CheckoutService opens card payments and refunds them
type CheckoutService struct {
	orderRepo      shop.OrderRepository
	gateway        PaymentGateway
	auditRepo      audit.Repository
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
	now            func() time.Time
}

// NewCheckoutService creates a new CheckoutService. A nil gateway disables card payments.
func NewCheckoutService(orderRepo shop.OrderRepository, gateway PaymentGateway, auditRepo audit.Repository, logger *zap.Logger) *CheckoutService {
	return &CheckoutService{
		orderRepo: orderRepo,
		gateway:   gateway,
		auditRepo: auditRepo,
		logger:    logger,
		now:       time.Now,
	}
}

// SetEventPublisher sets the event publisher
func (s *CheckoutService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetClock overrides time.Now, for tests
func (s *CheckoutService) SetClock(now func() time.Time) {
	s.now = now
}

func toCentimes(d decimal.Decimal) int64 {
	return d.Mul(centimes).Round(0).IntPart()
}

// checkoutLines lists the order lines plus delivery. A discounted order is
// charged as a single line since Stripe lines cannot be negative.
func checkoutLines(o *shop.Order) []CheckoutLine {
	if o.DiscountAmount.IsPositive() {
		return []CheckoutLine{{Name: "Commande " + o.Number, UnitAmount: toCentimes(o.Total), Quantity: 1}}
	}
	lines := make([]CheckoutLine, 0, len(o.Items)+1)
	for _, it := range o.Items {
		lines = append(lines, CheckoutLine{
			Name:       it.Name,
			Image:      it.Image,
			UnitAmount: toCentimes(it.UnitPrice),
			Quantity:   int64(it.Quantity),
		})
	}
	if o.ShippingAmount.IsPositive() {
		lines = append(lines, CheckoutLine{Name: "Frais de livraison", UnitAmount: toCentimes(o.ShippingAmount), Quantity: 1})
	}
	return lines
}

// CreateSession opens a hosted payment page for an unpaid card order
func (s *CheckoutService) CreateSession(ctx context.Context, orderID uuid.UUID) (*CheckoutResponse, error) {
	if s.gateway == nil {
		return nil, ErrPaymentsUnavailable
	}
	o, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, orNotFound(err)
	}
	if err := o.CheckPayable(); err != nil {
		return nil, err
	}

	now := s.now()
	session, err := s.gateway.CreateCheckoutSession(ctx, CheckoutRequest{
		OrderID:       o.ID,
		OrderNumber:   o.Number,
		CustomerEmail: o.CustomerEmail,
		Locale:        o.Locale,
		Lines:         checkoutLines(o),
		ExpiresAt:     now.Add(sessionTTL),
	})
	if err != nil {
		s.logger.Error("Failed to create checkout session",
			zap.String("order_number", o.Number), zap.Error(err))
		return nil, err
	}

	o.AttachCheckoutSession(session.ID, now)
	if err := s.orderRepo.Save(ctx, o); err != nil {
		return nil, err
	}
	s.logger.Info("Checkout session created",
		zap.String("order_number", o.Number),
		zap.String("session_id", session.ID))
	return &CheckoutResponse{SessionID: session.ID, URL: session.URL, ExpiresAt: session.ExpiresAt}, nil
}

// Refund refunds a paid card order through Stripe
func (s *CheckoutService) Refund(ctx context.Context, orderID uuid.UUID, actor *uuid.UUID) (*OrderResponse, error) {
	if s.gateway == nil {
		return nil, ErrPaymentsUnavailable
	}
	o, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, orNotFound(err)
	}
	if o.PaymentStatus != shop.PaymentPaid || o.PaymentIntent == nil {
		return nil, shared.NewDomainError(shop.CodeNotPayable, "Seule une commande payée par carte peut être remboursée")
	}
	refundID, err := s.gateway.Refund(ctx, *o.PaymentIntent)
	if err != nil {
		return nil, err
	}
	old := o.Status
	o.MarkRefunded(s.now())
	if err := s.orderRepo.Save(ctx, o); err != nil {
		return nil, err
	}
	appaudit.Write(ctx, s.auditRepo, s.logger,
		audit.New(audit.ActionRefund, audit.EntityOrder, &o.ID,
			fmt.Sprintf("Commande %s remboursée (%s MAD, %s)", o.Number, o.Total.StringFixed(2), refundID)).
			WithChange("status", string(old), string(o.Status)).
			Classify(audit.CategoryFinancial, audit.SeverityWarning).
			By(actor))
	if err := shared.PublishAndClear(ctx, s.eventPublisher, o); err != nil {
		s.logger.Warn("Failed to publish shop events", zap.Error(err))
	}
	resp := ToOrderResponse(o)
	return &resp, nil
}
