package notification

import (
	"context"
	"fmt"
	"strings"
	"time"

	appdocument "github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/application/document"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/catalog"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/crm"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/document"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/notification"
	"go.uber.org/zap"
)

const (
	// QuoteExpiryWindow is how far ahead expiring devis are reported by default
	QuoteExpiryWindow = 3 * 24 * time.Hour
	// ReminderWindow is how far ahead appointments are reminded by default
	ReminderWindow = 24 * time.Hour
)

// InvoiceSweeper flags unpaid invoices past their due date
type InvoiceSweeper interface {
	MarkOverdueInvoices(ctx context.Context) ([]appdocument.DocumentListItem, error)
	ExpiringQuotes(ctx context.Context, within time.Duration) ([]appdocument.DocumentListItem, error)
}

// ReminderSender sends appointment reminders due within a window
type ReminderSender interface {
	SendDueReminders(ctx context.Context, window time.Duration) (int, error)
}

// StockReader lists items at or under their minimum
type StockReader interface {
	LowStock(ctx context.Context) ([]catalog.Item, error)
}

// QuoteRequestExpirer closes quoted web requests past their validity
type QuoteRequestExpirer interface {
	ExpireDue(ctx context.Context) (int, error)
}

// Jobs are the periodic checks that feed notifications
type Jobs struct {
	service   *NotificationService
	invoices  InvoiceSweeper
	reminders ReminderSender
	stock     StockReader
	requests  QuoteRequestExpirer
	logger    *zap.Logger

	quoteWindow    time.Duration
	reminderWindow time.Duration
}

// NewJobs creates the periodic jobs
func NewJobs(service *NotificationService, invoices InvoiceSweeper, reminders ReminderSender,
	stock StockReader, requests QuoteRequestExpirer, logger *zap.Logger) *Jobs {
	return &Jobs{
		service:   service,
		invoices:  invoices,
		reminders: reminders,
		stock:     stock,
		requests:  requests,
		logger:    logger,

		quoteWindow:    QuoteExpiryWindow,
		reminderWindow: ReminderWindow,
	}
}

// SetWindows overrides how far ahead quotes and appointments are looked at.
// Zero keeps the current value.
func (j *Jobs) SetWindows(quotes, reminders time.Duration) {
	if quotes > 0 {
		j.quoteWindow = quotes
	}
	if reminders > 0 {
		j.reminderWindow = reminders
	}
}

// CheckOverdueInvoices marks overdue invoices and notifies each of them
func (j *Jobs) CheckOverdueInvoices(ctx context.Context) (int, error) {
	marked, err := j.invoices.MarkOverdueInvoices(ctx)
	if err != nil {
		return 0, err
	}
	for _, inv := range marked {
		_, err := j.service.NotifyStaff(ctx, notification.Draft{
			Type:    notification.TypeInvoiceOverdue,
			Title:   fmt.Sprintf("Facture %s en retard", inv.Number),
			Message: fmt.Sprintf("La facture de %s d'un montant de %s est en retard de paiement.", inv.ClientName, document.FormatMAD(inv.Balance)),
			Link:    fmt.Sprintf("/admin/facturation/documents/%s", inv.ID),
			Metadata: map[string]any{
				"invoiceId": inv.ID, "invoiceNumber": inv.Number, "balance": inv.Balance.StringFixed(2),
			},
		})
		if err != nil {
			j.logger.Warn("overdue notification failed", zap.String("number", inv.Number), zap.Error(err))
		}
	}
	return len(marked), nil
}

// CheckExpiringQuotes notifies the devis whose validity ends within three days
func (j *Jobs) CheckExpiringQuotes(ctx context.Context) (int, error) {
	quotes, err := j.invoices.ExpiringQuotes(ctx, j.quoteWindow)
	if err != nil {
		return 0, err
	}
	for _, q := range quotes {
		msg := fmt.Sprintf("Le devis de %s expire bientôt.", q.ClientName)
		if q.ValidUntil != nil {
			msg = fmt.Sprintf("Le devis de %s expire le %s.", q.ClientName, q.ValidUntil.Format("02/01/2006"))
		}
		_, err := j.service.NotifyStaff(ctx, notification.Draft{
			Type:     notification.TypeQuoteExpiring,
			Title:    fmt.Sprintf("Devis %s expire bientôt", q.Number),
			Message:  msg,
			Link:     fmt.Sprintf("/admin/facturation/documents/%s", q.ID),
			Metadata: map[string]any{"quoteId": q.ID, "quoteNumber": q.Number},
		})
		if err != nil {
			j.logger.Warn("expiring quote notification failed", zap.String("number", q.Number), zap.Error(err))
		}
	}
	return len(quotes), nil
}

// SendAppointmentReminders reminds the appointments of the next 24 hours
func (j *Jobs) SendAppointmentReminders(ctx context.Context) (int, error) {
	return j.reminders.SendDueReminders(ctx, j.reminderWindow)
}

// LowStockDigest sends one notification listing every item under its minimum
func (j *Jobs) LowStockDigest(ctx context.Context) (int, error) {
	items, err := j.stock.LowStock(ctx)
	if err != nil || len(items) == 0 {
		return 0, err
	}
	lines := make([]string, len(items))
	for i, it := range items {
		floor := "0"
		if it.StockMin != nil {
			floor = it.StockMin.String()
		}
		lines[i] = fmt.Sprintf("%s (%s) : %s / min %s", it.Name, it.SKU, it.StockQty.String(), floor)
	}
	_, err = j.service.NotifyStaff(ctx, notification.Draft{
		Type:     notification.TypeLowStock,
		Title:    fmt.Sprintf("%d article(s) en stock bas", len(items)),
		Message:  strings.Join(lines, "\n"),
		Link:     "/admin/catalog/stock?lowStock=true",
		Metadata: map[string]any{"count": len(items)},
	})
	if err != nil {
		return 0, err
	}
	return len(items), nil
}

// ExpireQuoteRequests closes web quote requests past their validity
func (j *Jobs) ExpireQuoteRequests(ctx context.Context) (int, error) {
	return j.requests.ExpireDue(ctx)
}

// NotifyAppointmentReminder notifies the assignee, or the staff when nobody
// is assigned
func (s *NotificationService) NotifyAppointmentReminder(ctx context.Context, a *crm.Appointment) error {
	d := notification.Draft{
		Type:     notification.TypeAppointmentReminder,
		Title:    fmt.Sprintf("Rappel : %s", a.Title),
		Message:  fmt.Sprintf("Rendez-vous le %s.", a.StartDate.Format("02/01/2006 à 15:04")),
		Link:     fmt.Sprintf("/admin/crm/appointments/%s", a.ID),
		Metadata: map[string]any{"appointmentId": a.ID},
	}
	if a.Location != nil && *a.Location != "" {
		d.Message = fmt.Sprintf("Rendez-vous le %s, %s.", a.StartDate.Format("02/01/2006 à 15:04"), *a.Location)
	}
	if a.AssignedToID != nil {
		return s.Notify(ctx, *a.AssignedToID, d)
	}
	_, err := s.NotifyStaff(ctx, d)
	return err
}
