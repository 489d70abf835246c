package contact

import (
	"github.com/google/uuid"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/shared"
)

// AggregateTypeMessage names the aggregate in events
const AggregateTypeMessage = "ContactMessage"

const EventTypeMessageReceived = "ContactMessageReceived"

// MessageReceivedEvent is published when a visitor writes in
type MessageReceivedEvent struct {
	shared.BaseDomainEvent
	MessageID uuid.UUID `json:"message_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Subject   *string   `json:"subject,omitempty"`
}

// NewMessageReceivedEvent creates a MessageReceivedEvent
func NewMessageReceivedEvent(m *Message) *MessageReceivedEvent {
	return &MessageReceivedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeMessageReceived, AggregateTypeMessage, m.ID),
		MessageID:       m.ID,
		Name:            m.Name,
		Email:           m.Email,
		Subject:         m.Subject,
	}
}
