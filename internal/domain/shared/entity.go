package shared

import (
	"time"

	"github.com/google/uuid"
)

// BaseEntity is the identity and timestamps shared by every stored record.
type BaseEntity struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func NewBaseEntity() BaseEntity {
	now := time.Now()
	return BaseEntity{ID: uuid.New(), CreatedAt: now, UpdatedAt: now}
}

// AggregateRoot is a record that raises domain events as it changes.
type AggregateRoot interface {
	GetDomainEvents() []DomainEvent
	PullDomainEvents() []DomainEvent
	ClearDomainEvents()
}

// BaseAggregateRoot adds the optimistic-lock version and the events raised
// since the aggregate was loaded. Repositories reject a save whose Version
// is older than the stored one.
type BaseAggregateRoot struct {
	BaseEntity
	Version int `gorm:"not null;default:1"`
	events  []DomainEvent
}

// NewBaseAggregateRoot starts at version 1.
func NewBaseAggregateRoot() BaseAggregateRoot {
	return BaseAggregateRoot{BaseEntity: NewBaseEntity(), Version: 1}
}

func (a *BaseAggregateRoot) GetVersion() int { return a.Version }

func (a *BaseAggregateRoot) IncrementVersion() { a.Version++ }

func (a *BaseAggregateRoot) AddDomainEvent(e DomainEvent) {
	a.events = append(a.events, e)
}

func (a *BaseAggregateRoot) GetDomainEvents() []DomainEvent { return a.events }

// PullDomainEvents returns the pending events and forgets them.
func (a *BaseAggregateRoot) PullDomainEvents() []DomainEvent {
	events := a.events
	a.events = nil
	return events
}

func (a *BaseAggregateRoot) ClearDomainEvents() { a.events = nil }
