// Package crm holds the customer relationship side of the back office:
// leads, clients, projects with their work tracking, appointments and the
// activity journal that ties them together.
package crm

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/shared"
	"github.com/shopspring/decimal"
)

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern = regexp.MustCompile(`^[\d\s\-\(\)\+\.]+$`)
	hundred      = decimal.NewFromInt(100)
)

// ClientType distinguishes private customers from companies
type ClientType string

const (
	ClientIndividual ClientType = "INDIVIDUAL"
	ClientCompany    ClientType = "COMPANY"
)

// IsValid reports whether the client type is known
func (t ClientType) IsValid() bool {
	return t == ClientIndividual || t == ClientCompany
}

// Error codes raised by the CRM context
const (
	CodeLeadConverted    = "LEAD_ALREADY_CONVERTED"
	CodeClientInUse      = "CLIENT_IN_USE"
	CodeInvalidSchedule  = "INVALID_SCHEDULE"
	CodeMissingRelation  = "MISSING_RELATION"
	CodeItemNotFound     = "ITEM_NOT_FOUND"
	CodeLeadNotDeletable = "LEAD_NOT_DELETABLE"
)

// errs accumulates field errors for one validation pass
type errs []shared.ErrorDetail

func (e *errs) add(field, message string) {
	*e = append(*e, shared.ErrorDetail{Field: field, Message: message})
}

func (e errs) err() error {
	if len(e) == 0 {
		return nil
	}
	return shared.NewValidationError("Données invalides", e...)
}

func (e *errs) name(field, value string, min int, message string) {
	if utf8.RuneCountInString(strings.TrimSpace(value)) < min {
		e.add(field, message)
	}
}

func (e *errs) phone(field, value string, required bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		if required {
			e.add(field, "Le téléphone est requis")
		}
		return
	}
	if len(value) < 8 || !phonePattern.MatchString(value) {
		e.add(field, "Numéro de téléphone invalide")
	}
}

func (e *errs) email(field, value string) {
	if value = strings.TrimSpace(value); value != "" && !emailPattern.MatchString(value) {
		e.add(field, "Adresse email invalide")
	}
}

func trimPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
