// Package models holds GORM models for the aggregates whose rows do not map
// one to one onto their domain types: documents with their lines, payments,
// delivery logs, audit entries and numbering counters.
//
// Other repositories persist domain structs directly.
//
// Structure:
//   - base.go: BaseModel, AggregateModel and the JSON column helpers
//   - document.go: DocumentModel, DocumentItemModel, PaymentModel, DeliveryLogModel
//   - audit.go: AuditLogModel
//   - sequence.go: SequenceModel
package models
