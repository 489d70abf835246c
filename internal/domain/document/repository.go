package document

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ListFilter narrows a document listing
type ListFilter struct {
	shared.Filter
	Type      Type
	Status    Status
	ClientID  *uuid.UUID
	ProjectID *uuid.UUID
	DateFrom  *time.Time
	DateTo    *time.Time
}

// InvoiceTotals is what a client was invoiced and has paid
type InvoiceTotals struct {
	Count    int64
	TotalTTC decimal.Decimal
	Paid     decimal.Decimal
}

// DocumentRepository defines persistence for documents and their lines
type DocumentRepository interface {
	// FindByID loads a document with its lines, payment count and first child type
	FindByID(ctx context.Context, id uuid.UUID) (*Document, error)

	// FindByIDForUpdate loads a document and locks its row until the transaction ends
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Document, error)

	// FindByNumber finds a document by its official or draft number
	FindByNumber(ctx context.Context, number string) (*Document, error)

	// FindAll lists documents newest first
	FindAll(ctx context.Context, filter ListFilter) ([]Document, int64, error)

	// FindByIDs loads several documents
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*Document, error)

	// FindDepositInvoices lists the deposit invoices raised on a devis
	FindDepositInvoices(ctx context.Context, devisID uuid.UUID) ([]*Document, error)

	// FindOverdueCandidates lists SENT or PARTIAL invoices due before the given time
	FindOverdueCandidates(ctx context.Context, before time.Time) ([]*Document, error)

	// FindExpiringQuotes lists sent devis whose validity ends within the window
	FindExpiringQuotes(ctx context.Context, from, to time.Time) ([]Document, error)

	// CountOfficial counts documents of a type carrying an official number in the year
	CountOfficial(ctx context.Context, t Type, year int) (int64, error)

	// ListOfficialNumbers returns the official numbers of a type for a year
	ListOfficialNumbers(ctx context.Context, t Type, year int) ([]string, error)

	// ExistsForClient reports whether any document references the client
	ExistsForClient(ctx context.Context, clientID uuid.UUID) (bool, error)

	// InvoiceTotals sums the client's issued invoices that are not cancelled
	InvoiceTotals(ctx context.Context, clientID uuid.UUID) (InvoiceTotals, error)

	// Save creates or updates a document and replaces its lines
	Save(ctx context.Context, d *Document) error

	// Delete removes a document and its lines
	Delete(ctx context.Context, id uuid.UUID) error
}

// PaymentRepository defines persistence for payments
type PaymentRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Payment, error)
	FindByDocument(ctx context.Context, documentID uuid.UUID) ([]Payment, error)
	FindAll(ctx context.Context, from, to time.Time) ([]Payment, error)
	FindByClient(ctx context.Context, clientID uuid.UUID) ([]Payment, error)
	Save(ctx context.Context, p *Payment) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// DeliveryLogRepository stores partial delivery logs
type DeliveryLogRepository interface {
	Save(ctx context.Context, log *DeliveryLog) error
	FindByBC(ctx context.Context, bcID uuid.UUID) ([]DeliveryLog, error)
}
