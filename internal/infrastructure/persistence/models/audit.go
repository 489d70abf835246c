package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/audit"
	"github.com/shopspring/decimal"
)

// AuditLogModel is an immutable audit trail row.
type AuditLogModel struct {
	ID             uuid.UUID        `gorm:"type:uuid;primary_key"`
	UserID         *uuid.UUID       `gorm:"type:uuid;index"`
	UserEmail      string           `gorm:"type:varchar(200)"`
	UserName       string           `gorm:"type:varchar(200)"`
	Action         string           `gorm:"type:varchar(50);not null;index"`
	Entity         string           `gorm:"type:varchar(50);not null;index:idx_audit_logs_entity,priority:1"`
	EntityID       *uuid.UUID       `gorm:"type:uuid;index:idx_audit_logs_entity,priority:2"`
	Description    string           `gorm:"type:text"`
	Changes        *string          `gorm:"type:jsonb"`
	DocumentNumber string           `gorm:"type:varchar(60);index"`
	DocumentType   string           `gorm:"type:varchar(30)"`
	DocumentAmount *decimal.Decimal `gorm:"type:decimal(14,2)"`
	PdfSnapshot    string           `gorm:"type:text"`
	IPAddress      string           `gorm:"column:ip_address;type:varchar(64)"`
	UserAgent      string           `gorm:"type:text"`
	Category       string           `gorm:"type:varchar(20);index"`
	Severity       string           `gorm:"type:varchar(20);not null;default:'info'"`
	CreatedAt      time.Time        `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (AuditLogModel) TableName() string {
	return "audit_logs"
}

// ToDomain converts the persistence model to a domain audit Log.
func (m *AuditLogModel) ToDomain() audit.Log {
	l := audit.Log{
		ID:             m.ID,
		UserID:         m.UserID,
		UserEmail:      m.UserEmail,
		UserName:       m.UserName,
		Action:         m.Action,
		Entity:         m.Entity,
		EntityID:       m.EntityID,
		Description:    m.Description,
		DocumentNumber: m.DocumentNumber,
		DocumentType:   m.DocumentType,
		DocumentAmount: m.DocumentAmount,
		PdfSnapshot:    m.PdfSnapshot,
		IPAddress:      m.IPAddress,
		UserAgent:      m.UserAgent,
		Category:       audit.Category(m.Category),
		Severity:       audit.Severity(m.Severity),
		CreatedAt:      m.CreatedAt,
	}
	if m.Changes != nil {
		decodeJSON(*m.Changes, &l.Changes, "changes", m.ID.String())
	}
	return l
}

// FromDomain populates the persistence model from a domain audit Log.
func (m *AuditLogModel) FromDomain(l *audit.Log) {
	m.ID = l.ID
	m.UserID = l.UserID
	m.UserEmail = l.UserEmail
	m.UserName = l.UserName
	m.Action = l.Action
	m.Entity = l.Entity
	m.EntityID = l.EntityID
	m.Description = l.Description
	if len(l.Changes) > 0 {
		if raw := encodeJSON(l.Changes, ""); raw != "" {
			m.Changes = &raw
		}
	}
	m.DocumentNumber = l.DocumentNumber
	m.DocumentType = l.DocumentType
	m.DocumentAmount = l.DocumentAmount
	m.PdfSnapshot = l.PdfSnapshot
	m.IPAddress = l.IPAddress
	m.UserAgent = l.UserAgent
	m.Category = string(l.Category)
	m.Severity = string(l.Severity)
	m.CreatedAt = l.CreatedAt
}
