package catalog

import (
	"context"

	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/audit"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/catalog"
)

// TransactionScope runs stock operations atomically
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories gives access to repositories sharing one transaction
type TransactionalRepositories interface {
	ItemRepo() catalog.ItemRepository
	MovementRepo() catalog.MovementRepository
	AuditRepo() audit.Repository
}

// NoOpTransactionScope runs the function without a transaction, for tests
type NoOpTransactionScope struct {
	Items     catalog.ItemRepository
	Movements catalog.MovementRepository
	Audits    audit.Repository
}

// Execute runs fn directly
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// ItemRepo returns the item repository
func (s *NoOpTransactionScope) ItemRepo() catalog.ItemRepository { return s.Items }

// MovementRepo returns the movement repository
func (s *NoOpTransactionScope) MovementRepo() catalog.MovementRepository { return s.Movements }

// AuditRepo returns the audit repository
func (s *NoOpTransactionScope) AuditRepo() audit.Repository { return s.Audits }

var _ TransactionScope = (*NoOpTransactionScope)(nil)
