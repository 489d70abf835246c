package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/shared"
	"go.uber.org/zap"
)

// BaseModel carries the shared.BaseEntity columns.
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (m *BaseModel) ToDomain() shared.BaseEntity {
	return shared.BaseEntity{ID: m.ID, CreatedAt: m.CreatedAt, UpdatedAt: m.UpdatedAt}
}

func (m *BaseModel) FromDomainBaseEntity(e shared.BaseEntity) {
	*m = BaseModel{ID: e.ID, CreatedAt: e.CreatedAt, UpdatedAt: e.UpdatedAt}
}

// AggregateModel adds the optimistic lock version.
type AggregateModel struct {
	BaseModel
	Version int `gorm:"not null;default:1"`
}

func (m *AggregateModel) FromDomainAggregateRoot(a shared.BaseAggregateRoot) {
	m.FromDomainBaseEntity(a.BaseEntity)
	m.Version = a.Version
}

// jsonb columns are mapped as text. A value that does not round trip is
// logged through the global zap logger and stored or read as empty, so one
// bad column never hides a whole document.

func encodeJSON(v any, empty string) string {
	raw, err := json.Marshal(v)
	switch {
	case err != nil:
		zap.L().Named("models").Warn("Unencodable JSON column", zap.Error(err))
		return empty
	case string(raw) == "null":
		return empty
	}
	return string(raw)
}

func decodeJSON(raw string, dst any, column, owner string) {
	if raw == "" || raw == "null" {
		return
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		zap.L().Named("models").Warn("Malformed JSON column",
			zap.String("column", column),
			zap.String("owner", owner),
			zap.Int("bytes", len(raw)),
			zap.Error(err))
	}
}
