// Package notification delivers back office notifications in-app and by email.
package notification

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/notification"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/shared"
	"go.uber.org/zap"
)

const (
	defaultLimit = 20
	maxLimit     = 100
)

// Recipients resolves who receives staff notifications
type Recipients interface {
	NotificationRecipients(ctx context.Context) ([]uuid.UUID, error)
}

// Alert is the email copy of a notification
type Alert struct {
	Title string
	Body  string
	Link  string
}

// AdminEmailer emails alerts to the admin mailbox
type AdminEmailer interface {
	NotifyAdmins(ctx context.Context, a Alert) error
}

// Preferences tells whether a notification type is also sent by email
type Preferences interface {
	EmailEnabledFor(ctx context.Context, t notification.Type) bool
}

// NotificationService creates and serves notifications
type NotificationService struct {
	repo       notification.Repository
	recipients Recipients
	emailer    AdminEmailer
	prefs      Preferences
	logger     *zap.Logger
	now        func() time.Time
}

// NewNotificationService creates a new NotificationService
func NewNotificationService(repo notification.Repository, recipients Recipients, logger *zap.Logger) *NotificationService {
	return &NotificationService{repo: repo, recipients: recipients, logger: logger, now: time.Now}
}

// SetEmailer enables the email copy, gated by prefs. A nil prefs always sends.
func (s *NotificationService) SetEmailer(emailer AdminEmailer, prefs Preferences) {
	s.emailer = emailer
	s.prefs = prefs
}

// SetClock overrides time.Now, for tests
func (s *NotificationService) SetClock(now func() time.Time) {
	s.now = now
}

// Notify delivers a draft to a single user
func (s *NotificationService) Notify(ctx context.Context, userID uuid.UUID, d notification.Draft) error {
	if err := d.Validate(); err != nil {
		return err
	}
	return s.repo.CreateMany(ctx, d.For([]uuid.UUID{userID}, s.now()))
}

// NotifyStaff delivers a draft to every staff recipient and emails it when
// enabled. It returns the number of notifications created.
func (s *NotificationService) NotifyStaff(ctx context.Context, d notification.Draft) (int, error) {
	if err := d.Validate(); err != nil {
		return 0, err
	}
	users, err := s.recipients.NotificationRecipients(ctx)
	if err != nil {
		return 0, err
	}
	if len(users) > 0 {
		if err := s.repo.CreateMany(ctx, d.For(users, s.now())); err != nil {
			return 0, err
		}
	}
	s.email(ctx, d)
	return len(users), nil
}

func (s *NotificationService) email(ctx context.Context, d notification.Draft) {
	if s.emailer == nil {
		return
	}
	if s.prefs != nil && !s.prefs.EmailEnabledFor(ctx, d.Type) {
		return
	}
	if err := s.emailer.NotifyAdmins(ctx, Alert{Title: d.Title, Body: d.Message, Link: d.Link}); err != nil {
		s.logger.Warn("notification email not sent", zap.String("type", string(d.Type)), zap.Error(err))
	}
}

// List returns the user's notifications, newest first, with the unread count
func (s *NotificationService) List(ctx context.Context, userID uuid.UUID, req ListRequest) (*ListResponse, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	items, err := s.repo.FindForUser(ctx, userID, notification.Filter{UnreadOnly: req.Unread, Limit: limit})
	if err != nil {
		return nil, err
	}
	unread, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		return nil, err
	}
	resp := &ListResponse{Items: make([]NotificationResponse, len(items)), UnreadCount: unread}
	for i := range items {
		resp.Items[i] = ToNotificationResponse(&items[i])
	}
	return resp, nil
}

// UnreadCount returns the number of unread notifications
func (s *NotificationService) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.repo.CountUnread(ctx, userID)
}

// MarkRead marks the listed notifications, or all of them, as read
func (s *NotificationService) MarkRead(ctx context.Context, userID uuid.UUID, req MarkReadRequest) (int64, error) {
	now := s.now()
	if req.All {
		return s.repo.MarkAllRead(ctx, userID, now)
	}
	if len(req.IDs) == 0 {
		return 0, shared.NewValidationError("Données manquantes",
			shared.ErrorDetail{Field: "ids", Message: "Aucune notification sélectionnée"})
	}
	return s.repo.MarkRead(ctx, userID, req.IDs, now)
}

// Delete removes the listed notifications, or every read one
func (s *NotificationService) Delete(ctx context.Context, userID uuid.UUID, req DeleteRequest) (int64, error) {
	if req.ReadOnly {
		return s.repo.DeleteRead(ctx, userID)
	}
	if len(req.IDs) == 0 {
		return 0, shared.NewValidationError("Données manquantes",
			shared.ErrorDetail{Field: "ids", Message: "Aucune notification sélectionnée"})
	}
	return s.repo.Delete(ctx, userID, req.IDs)
}
