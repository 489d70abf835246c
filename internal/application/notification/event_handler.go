package notification

import (
	"context"
	"fmt"

	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/catalog"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/contact"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/crm"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/document"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/notification"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/shared"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/shop"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/webquote"
	"go.uber.org/zap"
)

// EventHandler turns business events into staff notifications
type EventHandler struct {
	service *NotificationService
	logger  *zap.Logger
}

// NewEventHandler creates a new EventHandler
func NewEventHandler(service *NotificationService, logger *zap.Logger) *EventHandler {
	return &EventHandler{service: service, logger: logger}
}

// EventTypes returns the event types this handler is interested in
func (h *EventHandler) EventTypes() []string {
	return []string{
		crm.EventTypeLeadCreated,
		shop.EventTypeOrderPlaced,
		webquote.EventTypeQuoteRequested,
		contact.EventTypeMessageReceived,
		document.EventTypePaymentRecorded,
		document.EventTypeDocumentIssued,
		catalog.EventTypeStockBelowMinimum,
	}
}

// Handle creates the notification matching the event. Unknown payloads are
// logged and skipped.
func (h *EventHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	d, ok := draftFor(event)
	if !ok {
		h.logger.Debug("no notification for event",
			zap.String("event_type", event.EventType()),
			zap.String("event_id", event.EventID().String()))
		return nil
	}
	n, err := h.service.NotifyStaff(ctx, d)
	if err != nil {
		return fmt.Errorf("notify %s: %w", d.Type, err)
	}
	h.logger.Debug("notification created",
		zap.String("type", string(d.Type)),
		zap.Int("recipients", n))
	return nil
}

func draftFor(event shared.DomainEvent) (notification.Draft, bool) {
	switch e := event.(type) {
	case *crm.LeadCreatedEvent:
		return notification.Draft{
			Type:     notification.TypeNewLead,
			Title:    fmt.Sprintf("Nouveau prospect %s", e.Number),
			Message:  fmt.Sprintf("%s (%s) via %s", e.FullName, e.Phone, e.Source),
			Link:     fmt.Sprintf("/admin/crm/leads/%s", e.LeadID),
			Metadata: map[string]any{"leadId": e.LeadID, "leadNumber": e.Number},
		}, true
	case *shop.OrderPlacedEvent:
		return notification.Draft{
			Type:     notification.TypeNewOrder,
			Title:    fmt.Sprintf("Nouvelle commande %s", e.Number),
			Message:  fmt.Sprintf("%s a passé une commande de %s.", e.CustomerName, document.FormatMAD(e.Total)),
			Link:     fmt.Sprintf("/admin/orders/%s", e.OrderID),
			Metadata: map[string]any{"orderId": e.OrderID, "orderNumber": e.Number},
		}, true
	case *webquote.QuoteRequestedEvent:
		msg := fmt.Sprintf("Demande de %s", e.CustomerName)
		if e.ProjectType != nil {
			msg += " pour " + *e.ProjectType
		}
		return notification.Draft{
			Type:     notification.TypeNewQuote,
			Title:    fmt.Sprintf("Nouvelle demande de devis %s", e.Number),
			Message:  msg,
			Link:     fmt.Sprintf("/admin/quotes/%s", e.QuoteID),
			Metadata: map[string]any{"quoteId": e.QuoteID, "quoteNumber": e.Number},
		}, true
	case *contact.MessageReceivedEvent:
		msg := e.Email
		if e.Subject != nil {
			msg = *e.Subject + " (" + e.Email + ")"
		}
		return notification.Draft{
			Type:     notification.TypeNewMessage,
			Title:    fmt.Sprintf("Nouveau message de %s", e.Name),
			Message:  msg,
			Link:     fmt.Sprintf("/admin/messages/%s", e.MessageID),
			Metadata: map[string]any{"messageId": e.MessageID},
		}, true
	case *document.PaymentRecordedEvent:
		paid := e.Status == document.StatusPaid
		title := fmt.Sprintf("Paiement reçu - %s", e.Number)
		msg := fmt.Sprintf("Paiement de %s reçu de %s.", document.FormatMAD(e.Amount), e.ClientName)
		if paid {
			title = fmt.Sprintf("Facture %s payée", e.Number)
			msg = fmt.Sprintf("Paiement de %s reçu de %s. Facture entièrement réglée.", document.FormatMAD(e.Amount), e.ClientName)
		}
		return notification.Draft{
			Type:    notification.TypePaymentReceived,
			Title:   title,
			Message: msg,
			Link:    fmt.Sprintf("/admin/facturation/documents/%s", e.DocumentID),
			Metadata: map[string]any{
				"documentId": e.DocumentID, "documentNumber": e.Number,
				"amount": e.Amount.StringFixed(2), "isPaidInFull": paid,
			},
		}, true
	case *document.DocumentIssuedEvent:
		return notification.Draft{
			Type:     notification.TypeDocumentIssued,
			Title:    fmt.Sprintf("Document %s émis", e.Number),
			Message:  fmt.Sprintf("%s pour %s, %s TTC.", e.Type, e.ClientName, document.FormatMAD(e.TotalTTC)),
			Link:     fmt.Sprintf("/admin/facturation/documents/%s", e.DocumentID),
			Metadata: map[string]any{"documentId": e.DocumentID, "documentNumber": e.Number, "previousNumber": e.PreviousNumber},
		}, true
	case *catalog.StockBelowMinimumEvent:
		return notification.Draft{
			Type:     notification.TypeLowStock,
			Title:    fmt.Sprintf("Stock bas : %s", e.Name),
			Message:  fmt.Sprintf("%s (%s) : %s en stock, minimum %s.", e.Name, e.SKU, e.StockQty.String(), e.StockMin.String()),
			Link:     fmt.Sprintf("/admin/catalog/items/%s", e.ItemID),
			Metadata: map[string]any{"itemId": e.ItemID, "sku": e.SKU},
		}, true
	}
	return notification.Draft{}, false
}

var _ shared.EventHandler = (*EventHandler)(nil)
