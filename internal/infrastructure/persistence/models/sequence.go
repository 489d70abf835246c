package models

import (
	"time"

	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/sequence"
)

// SequenceModel is one numbering counter. Year is 0 for continuous counters.
type SequenceModel struct {
	Type       string    `gorm:"type:varchar(30);primaryKey"`
	Year       int       `gorm:"primaryKey;autoIncrement:false"`
	LastNumber int64     `gorm:"not null;default:0"`
	UpdatedAt  time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (SequenceModel) TableName() string {
	return "document_sequences"
}

// ToDomain converts the persistence model to a domain Counter.
func (m *SequenceModel) ToDomain() *sequence.Counter {
	return &sequence.Counter{
		Type:       sequence.Type(m.Type),
		Year:       m.Year,
		LastNumber: m.LastNumber,
		UpdatedAt:  m.UpdatedAt,
	}
}
