package crm

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// LeadSource is where a prospect came from
type LeadSource string

const (
	SourceWebsite   LeadSource = "WEBSITE"
	SourceWhatsApp  LeadSource = "WHATSAPP"
	SourcePhone     LeadSource = "PHONE"
	SourceFacebook  LeadSource = "FACEBOOK"
	SourceInstagram LeadSource = "INSTAGRAM"
	SourceReferral  LeadSource = "REFERRAL"
	SourceWalkIn    LeadSource = "WALK_IN"
	SourceOther     LeadSource = "OTHER"
)

// IsValid reports whether the source is known
func (s LeadSource) IsValid() bool {
	switch s {
	case SourceWebsite, SourceWhatsApp, SourcePhone, SourceFacebook, SourceInstagram,
		SourceReferral, SourceWalkIn, SourceOther:
		return true
	}
	return false
}

// Urgency ranks how quickly a lead should be handled
type Urgency string

const (
	UrgencyLow    Urgency = "LOW"
	UrgencyMedium Urgency = "MEDIUM"
	UrgencyHigh   Urgency = "HIGH"
)

// IsValid reports whether the urgency is known
func (u Urgency) IsValid() bool {
	return u == UrgencyLow || u == UrgencyMedium || u == UrgencyHigh
}

// LeadStatus is the sales pipeline stage
type LeadStatus string

const (
	LeadNew            LeadStatus = "NEW"
	LeadContacted      LeadStatus = "CONTACTED"
	LeadVisitScheduled LeadStatus = "VISIT_SCHEDULED"
	LeadMeasuresTaken  LeadStatus = "MEASURES_TAKEN"
	LeadQuoteSent      LeadStatus = "QUOTE_SENT"
	LeadNegotiation    LeadStatus = "NEGOTIATION"
	LeadWon            LeadStatus = "WON"
	LeadLost           LeadStatus = "LOST"
)

// AllLeadStatuses lists the pipeline in order
func AllLeadStatuses() []LeadStatus {
	return []LeadStatus{LeadNew, LeadContacted, LeadVisitScheduled, LeadMeasuresTaken,
		LeadQuoteSent, LeadNegotiation, LeadWon, LeadLost}
}

// IsValid reports whether the status is known
func (s LeadStatus) IsValid() bool {
	for _, v := range AllLeadStatuses() {
		if v == s {
			return true
		}
	}
	return false
}

// Lead is a prospect not yet converted to a client
type Lead struct {
	shared.BaseAggregateRoot
	Number              string           `gorm:"column:lead_number;type:varchar(30);not null;uniqueIndex"`
	Source              LeadSource       `gorm:"type:varchar(20);not null;index"`
	Status              LeadStatus       `gorm:"type:varchar(20);not null;default:'NEW';index"`
	FullName            string           `gorm:"type:varchar(200);not null"`
	Company             *string          `gorm:"type:varchar(200)"`
	Phone               string           `gorm:"type:varchar(50);not null"`
	PhoneAlt            *string          `gorm:"type:varchar(50)"`
	Email               *string          `gorm:"type:varchar(200)"`
	City                *string          `gorm:"type:varchar(100);index"`
	Address             *string          `gorm:"type:text"`
	ClientType          ClientType       `gorm:"type:varchar(20);not null;default:'INDIVIDUAL'"`
	ICE                 *string          `gorm:"column:ice;type:varchar(20)"`
	Need                *string          `gorm:"type:text"`
	BudgetMin           *decimal.Decimal `gorm:"type:decimal(14,2)"`
	BudgetMax           *decimal.Decimal `gorm:"type:decimal(14,2)"`
	Urgency             Urgency          `gorm:"type:varchar(10);not null;default:'MEDIUM';index"`
	AssignedToID        *uuid.UUID       `gorm:"type:uuid;index"`
	Notes               *string          `gorm:"type:text"`
	LostReason          *string          `gorm:"type:text"`
	ConvertedToClientID *uuid.UUID       `gorm:"type:uuid"`
	ConvertedAt         *time.Time
}

// TableName returns the table name for GORM
func (Lead) TableName() string {
	return "crm_leads"
}

// LeadParams carries the editable fields of a lead
type LeadParams struct {
	Source       LeadSource
	Status       LeadStatus
	FullName     string
	Company      *string
	Phone        string
	PhoneAlt     *string
	Email        *string
	City         *string
	Address      *string
	ClientType   ClientType
	ICE          *string
	Need         *string
	BudgetMin    *decimal.Decimal
	BudgetMax    *decimal.Decimal
	Urgency      Urgency
	AssignedToID *uuid.UUID
	Notes        *string
	LostReason   *string
}

func (p *LeadParams) normalize() {
	if p.Status == "" {
		p.Status = LeadNew
	}
	if p.ClientType == "" {
		p.ClientType = ClientIndividual
	}
	if p.Urgency == "" {
		p.Urgency = UrgencyMedium
	}
	p.FullName = strings.TrimSpace(p.FullName)
	p.Phone = strings.TrimSpace(p.Phone)
	p.Company, p.PhoneAlt, p.Email = trimPtr(p.Company), trimPtr(p.PhoneAlt), trimPtr(p.Email)
	p.City, p.Address, p.ICE = trimPtr(p.City), trimPtr(p.Address), trimPtr(p.ICE)
}

func (p LeadParams) validate() error {
	var e errs
	if !p.Source.IsValid() {
		e.add("source", "Source invalide")
	}
	if !p.Status.IsValid() {
		e.add("status", "Statut invalide")
	}
	e.name("fullName", p.FullName, 2, "Le nom est requis")
	e.phone("phone", p.Phone, true)
	if p.PhoneAlt != nil {
		e.phone("phoneAlt", *p.PhoneAlt, false)
	}
	if p.Email != nil {
		e.email("email", *p.Email)
	}
	if !p.ClientType.IsValid() {
		e.add("clientType", "Type de client invalide")
	}
	if !p.Urgency.IsValid() {
		e.add("urgency", "Urgence invalide")
	}
	if p.BudgetMin != nil && p.BudgetMax != nil && p.BudgetMin.GreaterThan(*p.BudgetMax) {
		e.add("budgetMax", "Le budget maximum doit être supérieur au minimum")
	}
	return e.err()
}

// NewLead validates and creates a lead with its official number
func NewLead(number string, p LeadParams) (*Lead, error) {
	p.normalize()
	if err := p.validate(); err != nil {
		return nil, err
	}
	l := &Lead{BaseAggregateRoot: shared.NewBaseAggregateRoot(), Number: number}
	l.apply(p)
	l.AddDomainEvent(NewLeadCreatedEvent(l))
	return l, nil
}

func (l *Lead) apply(p LeadParams) {
	l.Source = p.Source
	l.Status = p.Status
	l.FullName = p.FullName
	l.Company = p.Company
	l.Phone = p.Phone
	l.PhoneAlt = p.PhoneAlt
	l.Email = p.Email
	l.City = p.City
	l.Address = p.Address
	l.ClientType = p.ClientType
	l.ICE = p.ICE
	l.Need = p.Need
	l.BudgetMin = p.BudgetMin
	l.BudgetMax = p.BudgetMax
	l.Urgency = p.Urgency
	l.AssignedToID = p.AssignedToID
	l.Notes = p.Notes
	l.LostReason = p.LostReason
}

// Update replaces the editable fields and returns the previous status
func (l *Lead) Update(p LeadParams, now time.Time) (LeadStatus, error) {
	p.normalize()
	if err := p.validate(); err != nil {
		return "", err
	}
	old := l.Status
	l.apply(p)
	l.UpdatedAt = now
	l.IncrementVersion()
	if old != l.Status {
		l.AddDomainEvent(NewLeadStatusChangedEvent(l, old))
	}
	return old, nil
}

// IsConverted reports whether the lead became a client
func (l *Lead) IsConverted() bool {
	return l.ConvertedToClientID != nil
}

// MarkConverted records the conversion to a client and wins the lead
func (l *Lead) MarkConverted(client *Client, now time.Time) error {
	if l.IsConverted() {
		return shared.NewDomainError(CodeLeadConverted, "Ce lead a déjà été converti en client")
	}
	l.ConvertedToClientID = &client.ID
	l.ConvertedAt = &now
	l.Status = LeadWon
	l.UpdatedAt = now
	l.IncrementVersion()
	l.AddDomainEvent(NewLeadConvertedEvent(l, client))
	return nil
}

// GuardDelete refuses deleting a converted lead
func (l *Lead) GuardDelete() error {
	if l.IsConverted() {
		return shared.NewDomainError(CodeLeadNotDeletable, "Ce lead a été converti en client et ne peut pas être supprimé")
	}
	return nil
}

// ClientParams builds the client created from this lead
func (l *Lead) ClientParams() ClientParams {
	return ClientParams{
		ClientType:     l.ClientType,
		FullName:       l.FullName,
		Company:        l.Company,
		Phone:          l.Phone,
		PhoneAlt:       l.PhoneAlt,
		Email:          l.Email,
		BillingAddress: l.Address,
		BillingCity:    l.City,
		BillingCountry: DefaultCountry,
		ICE:            l.ICE,
		Notes:          l.Notes,
	}
}

// DefaultProjectName names the project created on conversion
func (l *Lead) DefaultProjectName() string {
	need := "Projet"
	if l.Need != nil && strings.TrimSpace(*l.Need) != "" {
		need = strings.TrimSpace(*l.Need)
	}
	return fmt.Sprintf("%s - %s", need, l.FullName)
}

// LeadFilter narrows a lead listing
type LeadFilter struct {
	shared.Filter
	Status       LeadStatus
	Source       LeadSource
	Urgency      Urgency
	AssignedToID *uuid.UUID
	City         string
	DateFrom     *time.Time
	DateTo       *time.Time
}
