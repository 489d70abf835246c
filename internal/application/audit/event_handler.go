package audit

import (
	"context"
	"fmt"

	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/audit"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/crm"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/shared"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/webquote"
	"go.uber.org/zap"
)

// EventHandler writes trail entries for domain events that the publishing
// service does not audit itself.
type EventHandler struct {
	service *AuditService
	logger  *zap.Logger
}

// NewEventHandler creates a new EventHandler
func NewEventHandler(service *AuditService, logger *zap.Logger) *EventHandler {
	return &EventHandler{service: service, logger: logger}
}

// EventTypes returns the event types this handler subscribes to
func (h *EventHandler) EventTypes() []string {
	return []string{
		crm.EventTypeLeadStatusChanged,
		crm.EventTypeProjectStatusChanged,
		webquote.EventTypeQuoteConverted,
	}
}

// Handle records the event
func (h *EventHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	entry := entryFor(event)
	if entry == nil {
		h.logger.Debug("no audit mapping for event", zap.String("event_type", event.EventType()))
		return nil
	}
	h.service.Record(ctx, entry)
	return nil
}

func entryFor(event shared.DomainEvent) *audit.Log {
	switch e := event.(type) {
	case *crm.LeadStatusChangedEvent:
		return audit.New(audit.ActionStatusChange, audit.EntityLead, &e.LeadID,
			fmt.Sprintf("Prospect %s : %s → %s", e.Number, e.OldStatus, e.NewStatus)).
			WithChange("status", e.OldStatus, e.NewStatus).
			Classify(audit.CategoryClient, audit.SeverityInfo)
	case *crm.ProjectStatusChangedEvent:
		return audit.New(audit.ActionStatusChange, audit.EntityProject, &e.ProjectID,
			fmt.Sprintf("Projet %s : %s → %s", e.Number, e.OldStatus, e.NewStatus)).
			WithChange("status", e.OldStatus, e.NewStatus).
			Classify(audit.CategoryClient, audit.SeverityInfo)
	case *webquote.QuoteConvertedEvent:
		return audit.New(audit.ActionConvert, audit.EntityQuote, &e.QuoteID,
			fmt.Sprintf("Demande de devis %s convertie en prospect", e.Number)).
			WithChange("leadId", nil, e.LeadID).
			Classify(audit.CategoryClient, audit.SeverityInfo)
	}
	return nil
}

var _ shared.EventHandler = (*EventHandler)(nil)
