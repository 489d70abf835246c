package crm

import (
	"time"

	"github.com/google/uuid"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/shared"
)

// Aggregate type names
const (
	AggregateTypeLead        = "Lead"
	AggregateTypeClient      = "Client"
	AggregateTypeProject     = "Project"
	AggregateTypeAppointment = "Appointment"
)

// Event type constants
const (
	EventTypeLeadCreated          = "LeadCreated"
	EventTypeLeadStatusChanged    = "LeadStatusChanged"
	EventTypeLeadConverted        = "LeadConverted"
	EventTypeClientCreated        = "ClientCreated"
	EventTypeProjectCreated       = "ProjectCreated"
	EventTypeProjectStatusChanged = "ProjectStatusChanged"
	EventTypeAppointmentScheduled = "AppointmentScheduled"
)

// LeadCreatedEvent is published when a prospect enters the pipeline
type LeadCreatedEvent struct {
	shared.BaseDomainEvent
	LeadID   uuid.UUID  `json:"lead_id"`
	Number   string     `json:"number"`
	FullName string     `json:"full_name"`
	Phone    string     `json:"phone"`
	Source   LeadSource `json:"source"`
	Urgency  Urgency    `json:"urgency"`
}

// NewLeadCreatedEvent creates a LeadCreatedEvent
func NewLeadCreatedEvent(l *Lead) *LeadCreatedEvent {
	return &LeadCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeLeadCreated, AggregateTypeLead, l.ID),
		LeadID:          l.ID,
		Number:          l.Number,
		FullName:        l.FullName,
		Phone:           l.Phone,
		Source:          l.Source,
		Urgency:         l.Urgency,
	}
}

// LeadStatusChangedEvent is published when a lead moves in the pipeline
type LeadStatusChangedEvent struct {
	shared.BaseDomainEvent
	LeadID    uuid.UUID  `json:"lead_id"`
	Number    string     `json:"number"`
	OldStatus LeadStatus `json:"old_status"`
	NewStatus LeadStatus `json:"new_status"`
}

// NewLeadStatusChangedEvent creates a LeadStatusChangedEvent
func NewLeadStatusChangedEvent(l *Lead, old LeadStatus) *LeadStatusChangedEvent {
	return &LeadStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeLeadStatusChanged, AggregateTypeLead, l.ID),
		LeadID:          l.ID,
		Number:          l.Number,
		OldStatus:       old,
		NewStatus:       l.Status,
	}
}

// LeadConvertedEvent is published when a lead becomes a client
type LeadConvertedEvent struct {
	shared.BaseDomainEvent
	LeadID       uuid.UUID `json:"lead_id"`
	LeadNumber   string    `json:"lead_number"`
	ClientID     uuid.UUID `json:"client_id"`
	ClientNumber string    `json:"client_number"`
}

// NewLeadConvertedEvent creates a LeadConvertedEvent
func NewLeadConvertedEvent(l *Lead, c *Client) *LeadConvertedEvent {
	return &LeadConvertedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeLeadConverted, AggregateTypeLead, l.ID),
		LeadID:          l.ID,
		LeadNumber:      l.Number,
		ClientID:        c.ID,
		ClientNumber:    c.Number,
	}
}

// ClientCreatedEvent is published when a client is registered
type ClientCreatedEvent struct {
	shared.BaseDomainEvent
	ClientID uuid.UUID `json:"client_id"`
	Number   string    `json:"number"`
	FullName string    `json:"full_name"`
}

// NewClientCreatedEvent creates a ClientCreatedEvent
func NewClientCreatedEvent(c *Client) *ClientCreatedEvent {
	return &ClientCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeClientCreated, AggregateTypeClient, c.ID),
		ClientID:        c.ID,
		Number:          c.Number,
		FullName:        c.FullName,
	}
}

// ProjectCreatedEvent is published when a project is opened
type ProjectCreatedEvent struct {
	shared.BaseDomainEvent
	ProjectID uuid.UUID `json:"project_id"`
	Number    string    `json:"number"`
	Name      string    `json:"name"`
	ClientID  uuid.UUID `json:"client_id"`
}

// NewProjectCreatedEvent creates a ProjectCreatedEvent
func NewProjectCreatedEvent(p *Project) *ProjectCreatedEvent {
	return &ProjectCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProjectCreated, AggregateTypeProject, p.ID),
		ProjectID:       p.ID,
		Number:          p.Number,
		Name:            p.Name,
		ClientID:        p.ClientID,
	}
}

// ProjectStatusChangedEvent is published when a project changes stage
type ProjectStatusChangedEvent struct {
	shared.BaseDomainEvent
	ProjectID uuid.UUID     `json:"project_id"`
	Number    string        `json:"number"`
	OldStatus ProjectStatus `json:"old_status"`
	NewStatus ProjectStatus `json:"new_status"`
}

// NewProjectStatusChangedEvent creates a ProjectStatusChangedEvent
func NewProjectStatusChangedEvent(p *Project, old ProjectStatus) *ProjectStatusChangedEvent {
	return &ProjectStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProjectStatusChanged, AggregateTypeProject, p.ID),
		ProjectID:       p.ID,
		Number:          p.Number,
		OldStatus:       old,
		NewStatus:       p.Status,
	}
}

// AppointmentScheduledEvent is published when an appointment is booked
type AppointmentScheduledEvent struct {
	shared.BaseDomainEvent
	AppointmentID uuid.UUID       `json:"appointment_id"`
	Title         string          `json:"title"`
	Type          AppointmentType `json:"type"`
	StartDate     time.Time       `json:"start_date"`
	AssignedToID  *uuid.UUID      `json:"assigned_to_id,omitempty"`
}

// NewAppointmentScheduledEvent creates an AppointmentScheduledEvent
func NewAppointmentScheduledEvent(a *Appointment) *AppointmentScheduledEvent {
	return &AppointmentScheduledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeAppointmentScheduled, AggregateTypeAppointment, a.ID),
		AppointmentID:   a.ID,
		Title:           a.Title,
		Type:            a.Type,
		StartDate:       a.StartDate,
		AssignedToID:    a.AssignedToID,
	}
}
