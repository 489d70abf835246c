package catalog

import (
	"net/mail"
	"strings"
	"time"

	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/shared"
)

// SupplierCodePrefix starts every supplier code (FRN-001)
const SupplierCodePrefix = "FRN"

// Supplier provides wood, hardware and finishes to the workshop
type Supplier struct {
	shared.BaseAggregateRoot
	Code         string  `gorm:"type:varchar(20);not null;uniqueIndex"`
	Name         string  `gorm:"type:varchar(200);not null"`
	ContactName  *string `gorm:"type:varchar(100)"`
	Phone        *string `gorm:"type:varchar(30)"`
	Email        *string `gorm:"type:varchar(200)"`
	Address      *string `gorm:"type:text"`
	City         *string `gorm:"type:varchar(100)"`
	Country      string  `gorm:"type:varchar(100);not null;default:'Maroc'"`
	PaymentTerms *string `gorm:"type:varchar(100)"`
	BankInfo     *string `gorm:"type:text"`
	Notes        *string `gorm:"type:text"`
	IsActive     bool    `gorm:"not null"`
}

// TableName returns the table name for GORM
func (Supplier) TableName() string {
	return "suppliers"
}

// SupplierParams carries the editable fields of a supplier
type SupplierParams struct {
	Name         string
	ContactName  *string
	Phone        *string
	Email        *string
	Address      *string
	City         *string
	Country      string
	PaymentTerms *string
	BankInfo     *string
	Notes        *string
	IsActive     *bool
}

func (p *SupplierParams) normalize() {
	p.Name = strings.TrimSpace(p.Name)
	p.Country = strings.TrimSpace(p.Country)
	if p.Country == "" {
		p.Country = "Maroc"
	}
	if p.Email != nil {
		e := strings.ToLower(strings.TrimSpace(*p.Email))
		if e == "" {
			p.Email = nil
		} else {
			p.Email = &e
		}
	}
}

func (p SupplierParams) validate() error {
	var details []shared.ErrorDetail
	if p.Name == "" {
		details = append(details, shared.ErrorDetail{Field: "name", Message: "Nom requis"})
	}
	if p.Email != nil {
		if _, err := mail.ParseAddress(*p.Email); err != nil {
			details = append(details, shared.ErrorDetail{Field: "email", Message: "Email invalide"})
		}
	}
	if len(details) > 0 {
		return shared.NewValidationError("Données invalides", details...)
	}
	return nil
}

// NewSupplier validates and creates a supplier under the given code
func NewSupplier(code string, p SupplierParams) (*Supplier, error) {
	p.normalize()
	if err := p.validate(); err != nil {
		return nil, err
	}
	s := &Supplier{BaseAggregateRoot: shared.NewBaseAggregateRoot(), Code: strings.TrimSpace(code), IsActive: true}
	s.apply(p)
	return s, nil
}

func (s *Supplier) apply(p SupplierParams) {
	s.Name = p.Name
	s.ContactName = p.ContactName
	s.Phone = p.Phone
	s.Email = p.Email
	s.Address = p.Address
	s.City = p.City
	s.Country = p.Country
	s.PaymentTerms = p.PaymentTerms
	s.BankInfo = p.BankInfo
	s.Notes = p.Notes
	if p.IsActive != nil {
		s.IsActive = *p.IsActive
	}
}

// Update replaces the editable fields; the code never changes
func (s *Supplier) Update(p SupplierParams, now time.Time) error {
	p.normalize()
	if err := p.validate(); err != nil {
		return err
	}
	s.apply(p)
	s.UpdatedAt = now
	s.IncrementVersion()
	return nil
}

// Deactivate keeps a referenced supplier but hides it
func (s *Supplier) Deactivate(now time.Time) {
	s.IsActive = false
	s.UpdatedAt = now
	s.IncrementVersion()
}
