package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	appaudit "github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/application/audit"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/audit"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/catalog"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const historyLimit = 100

var minQuantity = decimal.RequireFromString("0.01")

// StockService records stock movements and reports stock levels
type StockService struct {
	itemRepo       catalog.ItemRepository
	movementRepo   catalog.MovementRepository
	scope          TransactionScope
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
	now            func() time.Time
}

// NewStockService creates a new StockService
func NewStockService(
	itemRepo catalog.ItemRepository,
	movementRepo catalog.MovementRepository,
	scope TransactionScope,
	logger *zap.Logger,
) *StockService {
	return &StockService{
		itemRepo:     itemRepo,
		movementRepo: movementRepo,
		scope:        scope,
		logger:       logger,
		now:          time.Now,
	}
}

// SetEventPublisher sets the publisher of low stock events
func (s *StockService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetClock overrides time.Now, for tests
func (s *StockService) SetClock(now func() time.Time) {
	s.now = now
}

func auditMovement(it *catalog.Item, m *catalog.StockMovement, actor *uuid.UUID) *audit.Log {
	id := m.ID
	return audit.New(audit.ActionStockMove, audit.EntityStock, &id,
		fmt.Sprintf("Mouvement %s de %s sur %s", m.Type, m.Quantity.String(), it.SKU)).
		WithChange("stockQty", m.PreviousQty.String(), m.NewQty.String()).
		Classify(audit.CategorySystem, audit.SeverityInfo).
		By(actor)
}

// apply moves one item inside the transaction
func (s *StockService) apply(ctx context.Context, repos TransactionalRepositories, it *catalog.Item, p catalog.MovementParams) (*catalog.StockMovement, error) {
	m, err := it.Move(p, s.now())
	if err != nil {
		return nil, err
	}
	if err := repos.ItemRepo().Save(ctx, it); err != nil {
		return nil, err
	}
	if err := repos.MovementRepo().Save(ctx, m); err != nil {
		return nil, err
	}
	appaudit.Write(ctx, repos.AuditRepo(), s.logger, auditMovement(it, m, p.By))
	return m, nil
}

func (s *StockService) publish(ctx context.Context, it *catalog.Item) {
	if err := shared.PublishAndClear(ctx, s.eventPublisher, it); err != nil {
		s.logger.Warn("failed to publish stock events", zap.Error(err))
	}
}

// Move records a movement on a stock-tracked item
func (s *StockService) Move(ctx context.Context, req MovementRequest, actor *uuid.UUID) (*MovementResponse, error) {
	if req.Type != string(catalog.MovementAdjustment) && req.Quantity.LessThan(minQuantity) {
		return nil, shared.NewValidationError("Données invalides",
			shared.ErrorDetail{Field: "quantity", Message: "La quantité doit être au moins 0.01"})
	}

	var (
		it *catalog.Item
		m  *catalog.StockMovement
	)
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		it, err = repos.ItemRepo().FindByID(ctx, req.ItemID)
		if err != nil {
			return orNotFound(err, catalog.ErrItemNotFound)
		}
		m, err = s.apply(ctx, repos, it, catalog.MovementParams{
			Type:      catalog.MovementType(req.Type),
			Quantity:  req.Quantity,
			Reference: req.Reference,
			Reason:    req.Reason,
			Notes:     req.Notes,
			UnitCost:  req.UnitCost,
			By:        actor,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, it)
	s.logger.Info("stock moved",
		zap.String("sku", it.SKU),
		zap.String("type", string(m.Type)),
		zap.String("new_qty", m.NewQty.String()))
	return &MovementResponse{Movement: *m, Item: ToItemResponse(it)}, nil
}

// BulkAdjust applies a stock count. Untracked items and unchanged levels are skipped.
func (s *StockService) BulkAdjust(ctx context.Context, req BulkAdjustmentRequest, actor *uuid.UUID) (*BulkAdjustmentResult, error) {
	var (
		movements []catalog.StockMovement
		moved     []*catalog.Item
	)
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		for _, line := range req.Items {
			it, err := repos.ItemRepo().FindByID(ctx, line.ItemID)
			if err != nil {
				return orNotFound(err, catalog.ErrItemNotFound)
			}
			diff := line.NewQty.Sub(it.StockQty)
			if !it.TrackStock || diff.IsZero() {
				continue
			}
			reason := line.Reason
			if reason == nil || *reason == "" {
				r := catalog.AdjustmentReason(diff)
				reason = &r
			}
			m, err := s.apply(ctx, repos, it, catalog.MovementParams{
				Type: catalog.MovementAdjustment, Quantity: line.NewQty, Reason: reason, By: actor,
			})
			if err != nil {
				return err
			}
			movements = append(movements, *m)
			moved = append(moved, it)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, it := range moved {
		s.publish(ctx, it)
	}
	return &BulkAdjustmentResult{
		Created:   len(movements),
		Message:   fmt.Sprintf("%d mouvements créés", len(movements)),
		Movements: movements,
	}, nil
}

// History returns an item with its latest movements
func (s *StockService) History(ctx context.Context, itemID uuid.UUID) (*ItemMovements, error) {
	it, err := s.itemRepo.FindByID(ctx, itemID)
	if err != nil {
		return nil, orNotFound(err, catalog.ErrItemNotFound)
	}
	movements, err := s.movementRepo.FindByItem(ctx, itemID, historyLimit)
	if err != nil {
		return nil, err
	}
	return &ItemMovements{Item: ToItemResponse(it), Movements: movements}, nil
}

// Recent returns the latest movements across the catalog
func (s *StockService) Recent(ctx context.Context, limit int) ([]catalog.StockMovement, error) {
	if limit <= 0 || limit > historyLimit {
		limit = historyLimit
	}
	return s.movementRepo.FindRecent(ctx, limit)
}

// Overview lists the tracked items with their stock flags and totals
func (s *StockService) Overview(ctx context.Context) (*StockOverview, error) {
	items, err := s.itemRepo.FindTracked(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]ItemResponse, len(items))
	for i := range items {
		out[i] = ToItemResponse(&items[i])
	}
	return &StockOverview{Items: out, Stats: catalog.ComputeStockStats(items)}, nil
}

// LowStock lists tracked items at or under their minimum
func (s *StockService) LowStock(ctx context.Context) ([]catalog.Item, error) {
	items, err := s.itemRepo.FindTracked(ctx)
	if err != nil {
		return nil, err
	}
	var low []catalog.Item
	for i := range items {
		if items[i].IsLowStock() {
			low = append(low, items[i])
		}
	}
	return low, nil
}
