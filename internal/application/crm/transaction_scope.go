package crm

import (
	"context"

	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/audit"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/crm"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/sequence"
)

// TransactionScope runs CRM writes that span several aggregates (lead
// conversion creates a client, maybe a project, and journals both) in one
// database transaction together with their numbering.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories gives access to repositories sharing one transaction
type TransactionalRepositories interface {
	LeadRepo() crm.LeadRepository
	ClientRepo() crm.ClientRepository
	ProjectRepo() crm.ProjectRepository
	ActivityRepo() crm.ActivityRepository
	SequenceStore() sequence.Store
	AuditRepo() audit.Repository
}

// NoOpTransactionScope runs the function without a transaction, for tests
type NoOpTransactionScope struct {
	Leads      crm.LeadRepository
	Clients    crm.ClientRepository
	Projects   crm.ProjectRepository
	Activities crm.ActivityRepository
	Sequences  sequence.Store
	Audits     audit.Repository
}

// Execute runs fn directly
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// LeadRepo returns the lead repository
func (s *NoOpTransactionScope) LeadRepo() crm.LeadRepository { return s.Leads }

// ClientRepo returns the client repository
func (s *NoOpTransactionScope) ClientRepo() crm.ClientRepository { return s.Clients }

// ProjectRepo returns the project repository
func (s *NoOpTransactionScope) ProjectRepo() crm.ProjectRepository { return s.Projects }

// ActivityRepo returns the activity repository
func (s *NoOpTransactionScope) ActivityRepo() crm.ActivityRepository { return s.Activities }

// SequenceStore returns the counter store
func (s *NoOpTransactionScope) SequenceStore() sequence.Store { return s.Sequences }

// AuditRepo returns the audit repository
func (s *NoOpTransactionScope) AuditRepo() audit.Repository { return s.Audits }

var _ TransactionScope = (*NoOpTransactionScope)(nil)
