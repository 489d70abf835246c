package persistence

import (
	"context"

	appcatalog "github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/application/catalog"
	appcrm "github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/application/crm"
	appdoc "github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/application/document"
	appshop "github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/application/shop"
	appwebquote "github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/application/webquote"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/audit"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/catalog"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/crm"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/document"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/sequence"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/shop"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/webquote"
	"gorm.io/gorm"
)

// GormTransactionScope implements the document TransactionScope using GORM transactions.
// Numbering, document rows, payments and audit entries of one operation share the transaction.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope.
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos appdoc.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx})
	})
}

// gormTransactionalRepositories provides access to all repositories within a transaction.
type gormTransactionalRepositories struct {
	tx *gorm.DB
}

// DocumentRepo returns the document repository scoped to the current transaction.
func (r *gormTransactionalRepositories) DocumentRepo() document.DocumentRepository {
	return NewGormDocumentRepository(r.tx)
}

// PaymentRepo returns the payment repository scoped to the current transaction.
func (r *gormTransactionalRepositories) PaymentRepo() document.PaymentRepository {
	return NewGormPaymentRepository(r.tx)
}

// DeliveryLogRepo returns the delivery log repository scoped to the current transaction.
func (r *gormTransactionalRepositories) DeliveryLogRepo() document.DeliveryLogRepository {
	return NewGormDeliveryLogRepository(r.tx)
}

// SequenceStore returns the counter store scoped to the current transaction.
func (r *gormTransactionalRepositories) SequenceStore() sequence.Store {
	return NewGormSequenceStore(r.tx)
}

// AuditRepo returns the audit repository scoped to the current transaction.
func (r *gormTransactionalRepositories) AuditRepo() audit.Repository {
	return NewGormAuditRepository(r.tx)
}

// Ensure GormTransactionScope implements TransactionScope
var _ appdoc.TransactionScope = (*GormTransactionScope)(nil)

// Ensure gormTransactionalRepositories implements TransactionalRepositories
var _ appdoc.TransactionalRepositories = (*gormTransactionalRepositories)(nil)

// GormCRMTransactionScope implements the CRM TransactionScope using GORM transactions.
type GormCRMTransactionScope struct {
	db *gorm.DB
}

// NewGormCRMTransactionScope creates a new GormCRMTransactionScope.
func NewGormCRMTransactionScope(db *gorm.DB) *GormCRMTransactionScope {
	return &GormCRMTransactionScope{db: db}
}

// Execute runs fn within a database transaction.
func (s *GormCRMTransactionScope) Execute(ctx context.Context, fn func(repos appcrm.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx})
	})
}

// LeadRepo returns the lead repository scoped to the current transaction.
func (r *gormTransactionalRepositories) LeadRepo() crm.LeadRepository {
	return NewGormLeadRepository(r.tx)
}

// ClientRepo returns the client repository scoped to the current transaction.
func (r *gormTransactionalRepositories) ClientRepo() crm.ClientRepository {
	return NewGormClientRepository(r.tx)
}

// ProjectRepo returns the project repository scoped to the current transaction.
func (r *gormTransactionalRepositories) ProjectRepo() crm.ProjectRepository {
	return NewGormProjectRepository(r.tx)
}

// ActivityRepo returns the activity repository scoped to the current transaction.
func (r *gormTransactionalRepositories) ActivityRepo() crm.ActivityRepository {
	return NewGormActivityRepository(r.tx)
}

var _ appcrm.TransactionScope = (*GormCRMTransactionScope)(nil)
var _ appcrm.TransactionalRepositories = (*gormTransactionalRepositories)(nil)

// GormCatalogTransactionScope implements the catalog TransactionScope using GORM transactions.
type GormCatalogTransactionScope struct {
	db *gorm.DB
}

// NewGormCatalogTransactionScope creates a new GormCatalogTransactionScope.
func NewGormCatalogTransactionScope(db *gorm.DB) *GormCatalogTransactionScope {
	return &GormCatalogTransactionScope{db: db}
}

// Execute runs fn within a database transaction.
func (s *GormCatalogTransactionScope) Execute(ctx context.Context, fn func(repos appcatalog.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx})
	})
}

// ItemRepo returns the catalog item repository scoped to the current transaction.
func (r *gormTransactionalRepositories) ItemRepo() catalog.ItemRepository {
	return NewGormItemRepository(r.tx)
}

// MovementRepo returns the stock journal scoped to the current transaction.
func (r *gormTransactionalRepositories) MovementRepo() catalog.MovementRepository {
	return NewGormMovementRepository(r.tx)
}

var _ appcatalog.TransactionScope = (*GormCatalogTransactionScope)(nil)
var _ appcatalog.TransactionalRepositories = (*gormTransactionalRepositories)(nil)

// GormShopTransactionScope implements the shop TransactionScope using GORM transactions.
// An order, its number and the stock it consumes commit together.
type GormShopTransactionScope struct {
	db *gorm.DB
}

// NewGormShopTransactionScope creates a new GormShopTransactionScope.
func NewGormShopTransactionScope(db *gorm.DB) *GormShopTransactionScope {
	return &GormShopTransactionScope{db: db}
}

// Execute runs fn within a database transaction.
func (s *GormShopTransactionScope) Execute(ctx context.Context, fn func(repos appshop.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx})
	})
}

// OrderRepo returns the shop order repository scoped to the current transaction.
func (r *gormTransactionalRepositories) OrderRepo() shop.OrderRepository {
	return NewGormOrderRepository(r.tx)
}

var _ appshop.TransactionScope = (*GormShopTransactionScope)(nil)
var _ appshop.TransactionalRepositories = (*gormTransactionalRepositories)(nil)

// GormQuoteTransactionScope implements the quote request TransactionScope
// using GORM transactions.
type GormQuoteTransactionScope struct {
	db *gorm.DB
}

// NewGormQuoteTransactionScope creates a new GormQuoteTransactionScope.
func NewGormQuoteTransactionScope(db *gorm.DB) *GormQuoteTransactionScope {
	return &GormQuoteTransactionScope{db: db}
}

// Execute runs fn within a database transaction.
func (s *GormQuoteTransactionScope) Execute(ctx context.Context, fn func(repos appwebquote.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx})
	})
}

// QuoteRepo returns the quote request repository scoped to the current transaction.
func (r *gormTransactionalRepositories) QuoteRepo() webquote.Repository {
	return NewGormQuoteRepository(r.tx)
}

var _ appwebquote.TransactionScope = (*GormQuoteTransactionScope)(nil)
var _ appwebquote.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
