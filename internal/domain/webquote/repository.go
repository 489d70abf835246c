package webquote

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository persists quote requests
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*QuoteRequest, error)
	FindAll(ctx context.Context, filter Filter) ([]QuoteRequest, int64, error)
	CountByStatus(ctx context.Context) ([]StatusCount, error)
	FindQuotedBefore(ctx context.Context, t time.Time) ([]QuoteRequest, error)
	Save(ctx context.Context, q *QuoteRequest) error
	Delete(ctx context.Context, id uuid.UUID) error
}
