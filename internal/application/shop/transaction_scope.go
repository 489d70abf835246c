package shop

import (
	"context"

	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/audit"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/catalog"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/sequence"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/shop"
)

// TransactionScope runs order operations atomically with their stock moves
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories gives access to repositories sharing one transaction
type TransactionalRepositories interface {
	OrderRepo() shop.OrderRepository
	ItemRepo() catalog.ItemRepository
	MovementRepo() catalog.MovementRepository
	SequenceStore() sequence.Store
	AuditRepo() audit.Repository
}

// NoOpTransactionScope runs the function without a transaction, for tests
type NoOpTransactionScope struct {
	Orders    shop.OrderRepository
	Items     catalog.ItemRepository
	Movements catalog.MovementRepository
	Sequences sequence.Store
	Audits    audit.Repository
}

// Execute runs fn directly
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

func (s *NoOpTransactionScope) OrderRepo() shop.OrderRepository          { return s.Orders }
func (s *NoOpTransactionScope) ItemRepo() catalog.ItemRepository         { return s.Items }
func (s *NoOpTransactionScope) MovementRepo() catalog.MovementRepository { return s.Movements }
func (s *NoOpTransactionScope) SequenceStore() sequence.Store            { return s.Sequences }
func (s *NoOpTransactionScope) AuditRepo() audit.Repository              { return s.Audits }

var _ TransactionScope = (*NoOpTransactionScope)(nil)
