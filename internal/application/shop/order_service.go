// Package shop runs the storefront: order placement, fulfilment, public
// tracking and Stripe card payments.
package shop

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	appaudit "github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/application/audit"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/audit"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/catalog"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/sequence"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/shared"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/shop"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const defaultPageSize = 10

// OrderNotifier tells the customer and the workshop about a new order
type OrderNotifier interface {
	OrderPlaced(ctx context.Context, o *shop.Order) error
}

// OrderService places and manages storefront orders
type OrderService struct {
	orderRepo      shop.OrderRepository
	scope          TransactionScope
	shipping       shop.ShippingPolicy
	notifier       OrderNotifier
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
	now            func() time.Time
}

// NewOrderService creates a new OrderService
func NewOrderService(orderRepo shop.OrderRepository, scope TransactionScope, logger *zap.Logger) *OrderService {
	return &OrderService{
		orderRepo: orderRepo,
		scope:     scope,
		shipping:  shop.DefaultShippingPolicy(),
		logger:    logger,
		now:       time.Now,
	}
}

// SetShippingPolicy overrides the default delivery pricing
func (s *OrderService) SetShippingPolicy(p shop.ShippingPolicy) {
	s.shipping = p
}

// SetNotifier sets who is told about new orders
func (s *OrderService) SetNotifier(n OrderNotifier) {
	s.notifier = n
}

// SetEventPublisher sets the event publisher
func (s *OrderService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetClock overrides time.Now, for tests
func (s *OrderService) SetClock(now func() time.Time) {
	s.now = now
}

func (s *OrderService) publish(ctx context.Context, aggs ...shared.AggregateRoot) {
	for _, agg := range aggs {
		if err := shared.PublishAndClear(ctx, s.eventPublisher, agg); err != nil {
			s.logger.Warn("Failed to publish shop events", zap.Error(err))
		}
	}
}

// mergeCart sums the quantities of repeated items, keeping the cart order
func mergeCart(lines []CartLine) ([]uuid.UUID, map[uuid.UUID]int) {
	qty := make(map[uuid.UUID]int, len(lines))
	var ids []uuid.UUID
	for _, l := range lines {
		if _, seen := qty[l.ItemID]; !seen {
			ids = append(ids, l.ItemID)
		}
		qty[l.ItemID] += l.Quantity
	}
	return ids, qty
}

func (r PlaceOrderRequest) params(lines []shop.Line) shop.OrderParams {
	return shop.OrderParams{
		Customer: shop.Customer{
			Name:       r.Customer.Name,
			Email:      r.Customer.Email,
			Phone:      r.Customer.Phone,
			Address:    r.Customer.Address,
			City:       r.Customer.City,
			PostalCode: r.Customer.PostalCode,
			Country:    r.Customer.Country,
		},
		PaymentMethod: shop.PaymentMethod(r.PaymentMethod),
		Lines:         lines,
		Locale:        r.Locale,
		Note:          r.Note,
	}
}

// priceCart resolves the cart against the catalog at TTC prices
func priceCart(items []catalog.Item, ids []uuid.UUID, qty map[uuid.UUID]int) ([]shop.Line, map[uuid.UUID]*catalog.Item, error) {
	byID := make(map[uuid.UUID]*catalog.Item, len(items))
	for i := range items {
		byID[items[i].ID] = &items[i]
	}
	lines := make([]shop.Line, 0, len(ids))
	for _, id := range ids {
		it, ok := byID[id]
		if !ok || !it.IsActive {
			return nil, nil, shared.NewDomainErrorf(shop.CodeItemUnavailable, "Article indisponible: %s", id)
		}
		q := qty[id]
		if it.TrackStock && it.StockQty.LessThan(decimal.NewFromInt(int64(q))) {
			return nil, nil, shared.NewDomainErrorf(catalog.CodeInsufficientStock, "Stock insuffisant pour %s", it.Name)
		}
		var image *string
		if len(it.Images) > 0 {
			image = &it.Images[0]
		}
		lines = append(lines, shop.Line{
			CatalogItemID: it.ID,
			Name:          it.Name,
			SKU:           it.SKU,
			Image:         image,
			Quantity:      q,
			UnitPrice:     it.SellingPriceTTC(),
		})
	}
	return lines, byID, nil
}

// Place creates an order from a public cart. Prices and shipping are computed
// here and tracked items leave the stock in the same transaction.
func (s *OrderService) Place(ctx context.Context, req PlaceOrderRequest) (*OrderResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "order", "place")
	defer span.End()

	ids, qty := mergeCart(req.Items)
	probe := make([]shop.Line, len(ids))
	for i, id := range ids {
		probe[i] = shop.Line{CatalogItemID: id, Quantity: qty[id]}
	}
	if err := shop.ValidateOrder(req.params(probe)); err != nil {
		return nil, err
	}

	var order *shop.Order
	var moved []*catalog.Item
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		items, err := repos.ItemRepo().FindByIDs(ctx, ids)
		if err != nil {
			return err
		}
		lines, byID, err := priceCart(items, ids, qty)
		if err != nil {
			return err
		}

		now := s.now()
		number, err := sequence.NewGenerator(repos.SequenceStore(), sequence.WithClock(s.now)).Next(ctx, sequence.TypeOrder)
		if err != nil {
			return err
		}
		p := req.params(lines)
		p.ShippingAmount = s.shipping.Cost(shop.LinesSubtotal(lines))
		order, err = shop.NewOrder(number, p, now)
		if err != nil {
			return err
		}
		order.CreatedAt = now
		order.UpdatedAt = now

		reason := "Commande boutique"
		for _, l := range order.Items {
			it := byID[l.CatalogItemID]
			if !it.TrackStock {
				continue
			}
			m, err := it.Move(catalog.MovementParams{
				Type:      catalog.MovementOut,
				Quantity:  decimal.NewFromInt(int64(l.Quantity)),
				Reference: &number,
				Reason:    &reason,
			}, now)
			if err != nil {
				return err
			}
			if err := repos.ItemRepo().Save(ctx, it); err != nil {
				return err
			}
			if err := repos.MovementRepo().Save(ctx, m); err != nil {
				return err
			}
			moved = append(moved, it)
		}

		if err := repos.OrderRepo().Save(ctx, order); err != nil {
			return err
		}
		appaudit.Write(ctx, repos.AuditRepo(), s.logger,
			audit.New(audit.ActionCreate, audit.EntityOrder, &order.ID,
				fmt.Sprintf("Commande %s passée par %s (%s MAD)", order.Number, order.CustomerName, order.Total.StringFixed(2))).
				Classify(audit.CategoryFinancial, audit.SeverityInfo))
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	telemetry.SetAttributes(span,
		telemetry.SpanAttrOrderNumber, order.Number,
		telemetry.SpanAttrAmount, order.Total.String(),
		telemetry.SpanAttrPaymentMethod, string(order.PaymentMethod),
	)

	s.logger.Info("Order placed",
		zap.String("order_number", order.Number),
		zap.String("payment_method", string(order.PaymentMethod)),
		zap.String("total", order.Total.String()))

	aggs := []shared.AggregateRoot{order}
	for _, it := range moved {
		aggs = append(aggs, it)
	}
	s.publish(ctx, aggs...)

	if s.notifier != nil {
		if err := s.notifier.OrderPlaced(ctx, order); err != nil {
			s.logger.Warn("Failed to send order confirmation",
				zap.String("order_number", order.Number), zap.Error(err))
		}
	}

	resp := ToOrderResponse(order)
	return &resp, nil
}

func orNotFound(err error) error {
	if shared.IsNotFound(err) {
		return shop.ErrOrderNotFound
	}
	return err
}

// Get returns one order
func (s *OrderService) Get(ctx context.Context, id uuid.UUID) (*OrderResponse, error) {
	o, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, orNotFound(err)
	}
	resp := ToOrderResponse(o)
	return &resp, nil
}

// Track finds an order by its number and the buyer's email
func (s *OrderService) Track(ctx context.Context, req TrackRequest) (*TrackingResponse, error) {
	o, err := s.orderRepo.FindForTracking(ctx, req.OrderNumber, req.Email)
	if err != nil {
		return nil, orNotFound(err)
	}
	full := ToOrderResponse(o)
	return &TrackingResponse{
		OrderNumber:    o.Number,
		Status:         string(o.Status),
		PaymentStatus:  string(o.PaymentStatus),
		PaymentMethod:  string(o.PaymentMethod),
		TrackingNumber: o.TrackingNumber,
		Total:          o.Total,
		Items:          full.Items,
		Events:         full.Events,
		CreatedAt:      o.CreatedAt,
	}, nil
}

func rangeStart(r string, now time.Time) *time.Time {
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	var since time.Time
	switch r {
	case "today":
		since = day
	case "week":
		since = day.AddDate(0, 0, -7)
	case "month":
		since = day.AddDate(0, -1, 0)
	default:
		return nil
	}
	return &since
}

// List returns a page of orders with the order book stats
func (s *OrderService) List(ctx context.Context, req ListRequest) (*ListResponse, error) {
	now := s.now()
	f := shop.Filter{
		Filter:        shared.Filter{Page: req.Page, PageSize: req.Limit, OrderBy: req.SortBy, OrderDir: req.SortOrder, Search: req.Search},
		Status:        shop.Status(req.Status),
		PaymentStatus: shop.PaymentStatus(req.PaymentStatus),
		Since:         rangeStart(req.Range, now),
	}
	orders, total, err := s.orderRepo.FindAll(ctx, f)
	if err != nil {
		return nil, err
	}
	stats, err := s.orderRepo.Stats(ctx, now)
	if err != nil {
		return nil, err
	}
	out := make([]OrderResponse, len(orders))
	for i := range orders {
		out[i] = ToOrderResponse(&orders[i])
	}
	paging := f.Filter.Normalize(defaultPageSize)
	return &ListResponse{
		Paginated: shared.NewPaginated(out, total, paging.Page, paging.PageSize),
		Stats:     stats,
	}, nil
}

// UpdateStatus applies an admin change: workflow status, manual payment
// status, tracking number and note. Cancelling restores the stock.
func (s *OrderService) UpdateStatus(ctx context.Context, id uuid.UUID, req StatusRequest, actor *uuid.UUID) (*OrderResponse, error) {
	if shop.Status(req.Status) == shop.StatusCancelled {
		return s.Cancel(ctx, id, req.Note, actor)
	}
	var order *shop.Order
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		o, err := repos.OrderRepo().FindByID(ctx, id)
		if err != nil {
			return orNotFound(err)
		}
		now := s.now()
		oldStatus, oldPayment := o.Status, o.PaymentStatus
		if req.Status != "" {
			if err := o.ChangeStatus(shop.Status(req.Status), req.Note, now); err != nil {
				return err
			}
		}
		if req.PaymentStatus != "" && shop.PaymentStatus(req.PaymentStatus) != o.PaymentStatus {
			if err := o.SetPaymentStatus(shop.PaymentStatus(req.PaymentStatus), now); err != nil {
				return err
			}
		}
		if req.TrackingNumber != nil || req.AdminNote != nil {
			o.SetTracking(req.TrackingNumber, req.AdminNote, now)
		}
		if err := repos.OrderRepo().Save(ctx, o); err != nil {
			return err
		}
		if o.Status != oldStatus {
			appaudit.Write(ctx, repos.AuditRepo(), s.logger,
				audit.New(audit.ActionStatusChange, audit.EntityOrder, &o.ID,
					fmt.Sprintf("Commande %s: %s → %s", o.Number, oldStatus, o.Status)).
					WithChange("status", string(oldStatus), string(o.Status)).
					By(actor))
		}
		if o.PaymentStatus != oldPayment {
			appaudit.Write(ctx, repos.AuditRepo(), s.logger,
				audit.New(audit.ActionPayment, audit.EntityOrder, &o.ID,
					fmt.Sprintf("Paiement commande %s: %s", o.Number, o.PaymentStatus)).
					WithChange("paymentStatus", string(oldPayment), string(o.PaymentStatus)).
					Classify(audit.CategoryFinancial, audit.SeverityInfo).
					By(actor))
		}
		order = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, order)
	resp := ToOrderResponse(order)
	return &resp, nil
}

// Cancel cancels an order not yet shipped and puts tracked items back in stock
func (s *OrderService) Cancel(ctx context.Context, id uuid.UUID, note *string, actor *uuid.UUID) (*OrderResponse, error) {
	var order *shop.Order
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		o, err := repos.OrderRepo().FindByID(ctx, id)
		if err != nil {
			return orNotFound(err)
		}
		now := s.now()
		old := o.Status
		if err := o.Cancel(note, now); err != nil {
			return err
		}
		if err := s.restock(ctx, repos, o, actor, now); err != nil {
			return err
		}
		if err := repos.OrderRepo().Save(ctx, o); err != nil {
			return err
		}
		appaudit.Write(ctx, repos.AuditRepo(), s.logger,
			audit.New(audit.ActionStatusChange, audit.EntityOrder, &o.ID,
				fmt.Sprintf("Commande %s annulée", o.Number)).
				WithChange("status", string(old), string(o.Status)).
				Classify(audit.CategoryFinancial, audit.SeverityWarning).
				By(actor))
		order = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("Order cancelled", zap.String("order_number", order.Number))
	s.publish(ctx, order)
	resp := ToOrderResponse(order)
	return &resp, nil
}

func (s *OrderService) restock(ctx context.Context, repos TransactionalRepositories, o *shop.Order, actor *uuid.UUID, now time.Time) error {
	reason := "Annulation commande"
	for _, l := range o.Items {
		it, err := repos.ItemRepo().FindByID(ctx, l.CatalogItemID)
		if err != nil {
			if shared.IsNotFound(err) {
				s.logger.Warn("Cancelled order references a deleted item",
					zap.String("order_number", o.Number),
					zap.String("item_id", l.CatalogItemID.String()))
				continue
			}
			return err
		}
		if !it.TrackStock {
			continue
		}
		m, err := it.Move(catalog.MovementParams{
			Type:      catalog.MovementReturn,
			Quantity:  decimal.NewFromInt(int64(l.Quantity)),
			Reference: &o.Number,
			Reason:    &reason,
			By:        actor,
		}, now)
		if err != nil {
			return err
		}
		if err := repos.ItemRepo().Save(ctx, it); err != nil {
			return err
		}
		if err := repos.MovementRepo().Save(ctx, m); err != nil {
			return err
		}
	}
	return nil
}
