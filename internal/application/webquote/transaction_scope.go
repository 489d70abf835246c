package webquote

import (
	"context"

	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/sequence"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/webquote"
)

// TransactionScope numbers and stores a request atomically
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories gives access to repositories sharing one transaction
type TransactionalRepositories interface {
	QuoteRepo() webquote.Repository
	SequenceStore() sequence.Store
}

// NoOpTransactionScope runs the function without a transaction, for tests
type NoOpTransactionScope struct {
	Quotes    webquote.Repository
	Sequences sequence.Store
}

// Execute runs fn directly
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

func (s *NoOpTransactionScope) QuoteRepo() webquote.Repository { return s.Quotes }
func (s *NoOpTransactionScope) SequenceStore() sequence.Store  { return s.Sequences }

var _ TransactionScope = (*NoOpTransactionScope)(nil)
