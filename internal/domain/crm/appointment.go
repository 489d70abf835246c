package crm

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/shared"
)

// AppointmentType is the purpose of a meeting
type AppointmentType string

const (
	AppointmentVisit        AppointmentType = "VISIT"
	AppointmentMeasure      AppointmentType = "MEASURE"
	AppointmentDelivery     AppointmentType = "DELIVERY"
	AppointmentInstallation AppointmentType = "INSTALLATION"
	AppointmentMeeting      AppointmentType = "MEETING"
	AppointmentFollowUp     AppointmentType = "FOLLOW_UP"
)

// IsValid reports whether the type is known
func (t AppointmentType) IsValid() bool {
	switch t {
	case AppointmentVisit, AppointmentMeasure, AppointmentDelivery, AppointmentInstallation,
		AppointmentMeeting, AppointmentFollowUp:
		return true
	}
	return false
}

// AppointmentStatus tracks whether a meeting happened
type AppointmentStatus string

const (
	AppointmentScheduled  AppointmentStatus = "SCHEDULED"
	AppointmentConfirmed  AppointmentStatus = "CONFIRMED"
	AppointmentInProgress AppointmentStatus = "IN_PROGRESS"
	AppointmentCompleted  AppointmentStatus = "COMPLETED"
	AppointmentCancelled  AppointmentStatus = "CANCELLED"
	AppointmentNoShow     AppointmentStatus = "NO_SHOW"
)

// IsValid reports whether the status is known
func (s AppointmentStatus) IsValid() bool {
	switch s {
	case AppointmentScheduled, AppointmentConfirmed, AppointmentInProgress,
		AppointmentCompleted, AppointmentCancelled, AppointmentNoShow:
		return true
	}
	return false
}

// IsOpen reports whether the appointment is still to happen
func (s AppointmentStatus) IsOpen() bool {
	return s == AppointmentScheduled || s == AppointmentConfirmed
}

// Appointment is a visit or meeting on the calendar
type Appointment struct {
	shared.BaseAggregateRoot
	Title        string            `gorm:"type:varchar(200);not null"`
	Description  *string           `gorm:"type:text"`
	Type         AppointmentType   `gorm:"type:varchar(20);not null"`
	Status       AppointmentStatus `gorm:"type:varchar(20);not null;default:'SCHEDULED';index"`
	StartDate    time.Time         `gorm:"not null;index"`
	EndDate      time.Time         `gorm:"not null"`
	Location     *string           `gorm:"type:text"`
	LeadID       *uuid.UUID        `gorm:"type:uuid;index"`
	ClientID     *uuid.UUID        `gorm:"type:uuid;index"`
	ProjectID    *uuid.UUID        `gorm:"type:uuid;index"`
	AssignedToID *uuid.UUID        `gorm:"type:uuid;index"`
	Notes        *string           `gorm:"type:text"`
	ReminderSent bool              `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (Appointment) TableName() string {
	return "crm_appointments"
}

// AppointmentParams carries the editable fields of an appointment
type AppointmentParams struct {
	Title        string
	Description  *string
	Type         AppointmentType
	Status       AppointmentStatus
	StartDate    time.Time
	EndDate      time.Time
	Location     *string
	LeadID       *uuid.UUID
	ClientID     *uuid.UUID
	ProjectID    *uuid.UUID
	AssignedToID *uuid.UUID
	Notes        *string
}

func (p *AppointmentParams) normalize() {
	p.Title = strings.TrimSpace(p.Title)
	if p.Status == "" {
		p.Status = AppointmentScheduled
	}
	p.Location = trimPtr(p.Location)
}

func (p AppointmentParams) validate() error {
	var e errs
	e.name("title", p.Title, 1, "Le titre est requis")
	if !p.Type.IsValid() {
		e.add("type", "Type de rendez-vous invalide")
	}
	if !p.Status.IsValid() {
		e.add("status", "Statut invalide")
	}
	if p.StartDate.IsZero() {
		e.add("startDate", "La date de début est requise")
	}
	if p.EndDate.IsZero() {
		e.add("endDate", "La date de fin est requise")
	}
	if err := e.err(); err != nil {
		return err
	}
	if p.EndDate.Before(p.StartDate) {
		return shared.NewDomainError(CodeInvalidSchedule, "La date de fin doit être postérieure à la date de début")
	}
	if p.LeadID == nil && p.ClientID == nil && p.ProjectID == nil {
		return shared.NewDomainError(CodeMissingRelation, "Lead, client ou projet requis")
	}
	return nil
}

// NewAppointment validates and books an appointment
func NewAppointment(p AppointmentParams) (*Appointment, error) {
	p.normalize()
	if err := p.validate(); err != nil {
		return nil, err
	}
	a := &Appointment{BaseAggregateRoot: shared.NewBaseAggregateRoot()}
	a.apply(p)
	a.AddDomainEvent(NewAppointmentScheduledEvent(a))
	return a, nil
}

func (a *Appointment) apply(p AppointmentParams) {
	a.Title = p.Title
	a.Description = p.Description
	a.Type = p.Type
	a.Status = p.Status
	a.StartDate = p.StartDate
	a.EndDate = p.EndDate
	a.Location = p.Location
	a.LeadID = p.LeadID
	a.ClientID = p.ClientID
	a.ProjectID = p.ProjectID
	a.AssignedToID = p.AssignedToID
	a.Notes = p.Notes
}

// Update replaces the editable fields. Moving the start re-arms the reminder.
func (a *Appointment) Update(p AppointmentParams, now time.Time) error {
	p.normalize()
	if err := p.validate(); err != nil {
		return err
	}
	if !p.StartDate.Equal(a.StartDate) {
		a.ReminderSent = false
	}
	a.apply(p)
	a.UpdatedAt = now
	a.IncrementVersion()
	return nil
}

// ChangeStatus sets the appointment status
func (a *Appointment) ChangeStatus(status AppointmentStatus, now time.Time) error {
	if !status.IsValid() {
		return shared.NewValidationError("Données invalides", shared.ErrorDetail{Field: "status", Message: "Statut invalide"})
	}
	a.Status = status
	a.UpdatedAt = now
	a.IncrementVersion()
	return nil
}

// MarkReminded records that the reminder went out
func (a *Appointment) MarkReminded(now time.Time) {
	a.ReminderSent = true
	a.UpdatedAt = now
}

// Duration of the appointment
func (a *Appointment) Duration() time.Duration {
	return a.EndDate.Sub(a.StartDate)
}

// AppointmentFilter narrows a calendar listing
type AppointmentFilter struct {
	shared.Filter
	Type         AppointmentType
	Status       AppointmentStatus
	LeadID       *uuid.UUID
	ClientID     *uuid.UUID
	ProjectID    *uuid.UUID
	AssignedToID *uuid.UUID
	From         *time.Time
	To           *time.Time
}
