package contact

import (
	"context"

	"github.com/google/uuid"
)

// Repository persists contact messages
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Message, error)
	FindAll(ctx context.Context, filter Filter) ([]Message, int64, error)
	FindReplies(ctx context.Context, id uuid.UUID) ([]Message, error)
	Counters(ctx context.Context) (Counters, error)
	Save(ctx context.Context, m *Message) error
	Delete(ctx context.Context, id uuid.UUID) error
}
