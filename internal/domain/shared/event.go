package shared

import (
	"time"

	"github.com/google/uuid"
)

// DomainEvent is something that happened to an aggregate, e.g. a devis
// accepted or an order paid.
type DomainEvent interface {
	EventID() uuid.UUID
	EventType() string
	OccurredAt() time.Time
	AggregateID() uuid.UUID
	AggregateType() string
}

// BaseDomainEvent is embedded by concrete events. Actor is the back office
// user behind the change, nil for storefront and scheduled work.
type BaseDomainEvent struct {
	ID        uuid.UUID  `json:"id"`
	Type      string     `json:"type"`
	Timestamp time.Time  `json:"timestamp"`
	AggID     uuid.UUID  `json:"aggregate_id"`
	AggType   string     `json:"aggregate_type"`
	Actor     *uuid.UUID `json:"actor_id,omitempty"`
}

func NewBaseDomainEvent(eventType, aggType string, aggID uuid.UUID) BaseDomainEvent {
	return BaseDomainEvent{
		ID:        uuid.New(),
		Type:      eventType,
		Timestamp: time.Now(),
		AggID:     aggID,
		AggType:   aggType,
	}
}

func (e *BaseDomainEvent) EventID() uuid.UUID { return e.ID }
func (e *BaseDomainEvent) EventType() string { return e.Type }
func (e *BaseDomainEvent) OccurredAt() time.Time { return e.Timestamp }
func (e *BaseDomainEvent) AggregateID() uuid.UUID { return e.AggID }
func (e *BaseDomainEvent) AggregateType() string { return e.AggType }
func (e *BaseDomainEvent) ActorID() *uuid.UUID { return e.Actor }
func (e *BaseDomainEvent) SetActor(userID *uuid.UUID) { e.Actor = userID }
