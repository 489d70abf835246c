package crm

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Client defaults
const (
	DefaultCountry      = "Maroc"
	DefaultPaymentTerms = "comptant"
)

// Client is a customer of the workshop
type Client struct {
	shared.BaseAggregateRoot
	Number             string           `gorm:"column:client_number;type:varchar(30);not null;uniqueIndex"`
	ClientType         ClientType       `gorm:"type:varchar(20);not null;default:'INDIVIDUAL'"`
	FullName           string           `gorm:"type:varchar(200);not null;index"`
	Company            *string          `gorm:"type:varchar(200)"`
	Phone              string           `gorm:"type:varchar(50);not null;index"`
	PhoneAlt           *string          `gorm:"type:varchar(50)"`
	Email              *string          `gorm:"type:varchar(200);index"`
	BillingAddress     *string          `gorm:"type:text"`
	BillingCity        *string          `gorm:"type:varchar(100)"`
	BillingPostalCode  *string          `gorm:"type:varchar(20)"`
	BillingCountry     string           `gorm:"type:varchar(100);not null;default:'Maroc'"`
	DeliveryAddress    *string          `gorm:"type:text"`
	DeliveryCity       *string          `gorm:"type:varchar(100)"`
	DeliveryPostalCode *string          `gorm:"type:varchar(20)"`
	SameAsDelivery     bool             `gorm:"not null"`
	ICE                *string          `gorm:"column:ice;type:varchar(20)"`
	TaxID              *string          `gorm:"type:varchar(50)"`
	RC                 *string          `gorm:"column:rc;type:varchar(50)"`
	PaymentTerms       string           `gorm:"type:varchar(100);not null;default:'comptant'"`
	DefaultDiscount    *decimal.Decimal `gorm:"type:decimal(5,2)"`
	CreditLimit        *decimal.Decimal `gorm:"type:decimal(14,2)"`
	Notes              *string          `gorm:"type:text"`
	Tags               []string         `gorm:"type:jsonb;serializer:json"`
}

// TableName returns the table name for GORM
func (Client) TableName() string {
	return "crm_clients"
}

// ClientParams carries the editable fields of a client
type ClientParams struct {
	ClientType         ClientType
	FullName           string
	Company            *string
	Phone              string
	PhoneAlt           *string
	Email              *string
	BillingAddress     *string
	BillingCity        *string
	BillingPostalCode  *string
	BillingCountry     string
	DeliveryAddress    *string
	DeliveryCity       *string
	DeliveryPostalCode *string
	SameAsDelivery     *bool
	ICE                *string
	TaxID              *string
	RC                 *string
	PaymentTerms       string
	DefaultDiscount    *decimal.Decimal
	CreditLimit        *decimal.Decimal
	Notes              *string
	Tags               []string
}

func (p *ClientParams) normalize() {
	if p.ClientType == "" {
		p.ClientType = ClientIndividual
	}
	if strings.TrimSpace(p.BillingCountry) == "" {
		p.BillingCountry = DefaultCountry
	}
	if strings.TrimSpace(p.PaymentTerms) == "" {
		p.PaymentTerms = DefaultPaymentTerms
	}
	p.FullName = strings.TrimSpace(p.FullName)
	p.Phone = strings.TrimSpace(p.Phone)
	p.Company, p.PhoneAlt, p.Email = trimPtr(p.Company), trimPtr(p.PhoneAlt), trimPtr(p.Email)
	p.ICE, p.TaxID, p.RC = trimPtr(p.ICE), trimPtr(p.TaxID), trimPtr(p.RC)
	tags := make([]string, 0, len(p.Tags))
	seen := make(map[string]bool, len(p.Tags))
	for _, t := range p.Tags {
		t = strings.TrimSpace(t)
		if t != "" && !seen[t] {
			seen[t] = true
			tags = append(tags, t)
		}
	}
	p.Tags = tags
}

func (p ClientParams) validate() error {
	var e errs
	if !p.ClientType.IsValid() {
		e.add("clientType", "Type de client invalide")
	}
	e.name("fullName", p.FullName, 2, "Le nom est requis")
	e.phone("phone", p.Phone, true)
	if p.PhoneAlt != nil {
		e.phone("phoneAlt", *p.PhoneAlt, false)
	}
	if p.Email != nil {
		e.email("email", *p.Email)
	}
	if p.DefaultDiscount != nil && (p.DefaultDiscount.IsNegative() || p.DefaultDiscount.GreaterThan(hundred)) {
		e.add("defaultDiscount", "La remise doit être comprise entre 0 et 100")
	}
	if p.CreditLimit != nil && p.CreditLimit.IsNegative() {
		e.add("creditLimit", "La limite de crédit ne peut pas être négative")
	}
	return e.err()
}

// NewClient validates and creates a client with its official number
func NewClient(number string, p ClientParams) (*Client, error) {
	p.normalize()
	if err := p.validate(); err != nil {
		return nil, err
	}
	c := &Client{BaseAggregateRoot: shared.NewBaseAggregateRoot(), Number: number, SameAsDelivery: true}
	c.apply(p)
	c.AddDomainEvent(NewClientCreatedEvent(c))
	return c, nil
}

func (c *Client) apply(p ClientParams) {
	c.ClientType = p.ClientType
	c.FullName = p.FullName
	c.Company = p.Company
	c.Phone = p.Phone
	c.PhoneAlt = p.PhoneAlt
	c.Email = p.Email
	c.BillingAddress = p.BillingAddress
	c.BillingCity = p.BillingCity
	c.BillingPostalCode = p.BillingPostalCode
	c.BillingCountry = p.BillingCountry
	c.DeliveryAddress = p.DeliveryAddress
	c.DeliveryCity = p.DeliveryCity
	c.DeliveryPostalCode = p.DeliveryPostalCode
	if p.SameAsDelivery != nil {
		c.SameAsDelivery = *p.SameAsDelivery
	}
	c.ICE = p.ICE
	c.TaxID = p.TaxID
	c.RC = p.RC
	c.PaymentTerms = p.PaymentTerms
	c.DefaultDiscount = p.DefaultDiscount
	c.CreditLimit = p.CreditLimit
	c.Notes = p.Notes
	c.Tags = p.Tags
}

// Update replaces the editable fields
func (c *Client) Update(p ClientParams, now time.Time) error {
	p.normalize()
	if err := p.validate(); err != nil {
		return err
	}
	c.apply(p)
	c.UpdatedAt = now
	c.IncrementVersion()
	return nil
}

// DisplayName is the company for businesses, the person otherwise
func (c *Client) DisplayName() string {
	if c.ClientType == ClientCompany && c.Company != nil {
		return *c.Company
	}
	return c.FullName
}

// ShippingAddress returns the delivery address, or billing when they are the same
func (c *Client) ShippingAddress() (address, city string) {
	if c.SameAsDelivery || c.DeliveryAddress == nil {
		return deref(c.BillingAddress), deref(c.BillingCity)
	}
	return deref(c.DeliveryAddress), deref(c.DeliveryCity)
}

// GuardDelete refuses deletion while documents or projects reference the client
func (c *Client) GuardDelete(hasDocuments, hasProjects bool) error {
	if hasDocuments {
		return shared.NewDomainError(CodeClientInUse,
			"Ce client a des documents et ne peut pas être supprimé. Veuillez d'abord supprimer ou archiver les documents.")
	}
	if hasProjects {
		return shared.NewDomainError(CodeClientInUse,
			"Ce client a des projets et ne peut pas être supprimé. Veuillez d'abord supprimer ou archiver les projets.")
	}
	return nil
}

// ClientFilter narrows a client listing
type ClientFilter struct {
	shared.Filter
	ClientType ClientType
	City       string
	Tag        string
}

// ClientBalance summarises what a client was invoiced and paid
type ClientBalance struct {
	ClientID      uuid.UUID       `json:"clientId"`
	TotalInvoiced decimal.Decimal `json:"totalInvoiced"`
	TotalPaid     decimal.Decimal `json:"totalPaid"`
	Balance       decimal.Decimal `json:"balance"`
	InvoiceCount  int64           `json:"invoiceCount"`
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
