package document

import (
	"context"

	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/audit"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/document"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/sequence"
)

// TransactionScope provides transactional access to the document repositories.
// Numbering, document rows, payments and the audit entries of one operation
// are committed or rolled back together.
type TransactionScope interface {
	// Execute runs fn within a database transaction. If fn returns an error
	// the transaction is rolled back.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories gives access to repositories sharing one transaction
type TransactionalRepositories interface {
	DocumentRepo() document.DocumentRepository
	PaymentRepo() document.PaymentRepository
	DeliveryLogRepo() document.DeliveryLogRepository
	SequenceStore() sequence.Store
	AuditRepo() audit.Repository
}

// NoOpTransactionScope runs the function without a transaction, for tests
type NoOpTransactionScope struct {
	documents  document.DocumentRepository
	payments   document.PaymentRepository
	deliveries document.DeliveryLogRepository
	sequences  sequence.Store
	audits     audit.Repository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope over the given repositories
func NewNoOpTransactionScope(
	documents document.DocumentRepository,
	payments document.PaymentRepository,
	deliveries document.DeliveryLogRepository,
	sequences sequence.Store,
	audits audit.Repository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		documents:  documents,
		payments:   payments,
		deliveries: deliveries,
		sequences:  sequences,
		audits:     audits,
	}
}

// Execute runs fn directly
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// DocumentRepo returns the document repository
func (s *NoOpTransactionScope) DocumentRepo() document.DocumentRepository { return s.documents }

// PaymentRepo returns the payment repository
func (s *NoOpTransactionScope) PaymentRepo() document.PaymentRepository { return s.payments }

// DeliveryLogRepo returns the delivery log repository
func (s *NoOpTransactionScope) DeliveryLogRepo() document.DeliveryLogRepository { return s.deliveries }

// SequenceStore returns the counter store
func (s *NoOpTransactionScope) SequenceStore() sequence.Store { return s.sequences }

// AuditRepo returns the audit repository
func (s *NoOpTransactionScope) AuditRepo() audit.Repository { return s.audits }

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
