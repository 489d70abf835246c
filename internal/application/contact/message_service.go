// Package contact runs the contact form inbox and the email replies sent from it.
package contact

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	appaudit "github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/application/audit"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/application/publicform"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/audit"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/contact"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/shared"
	"go.uber.org/zap"
)

const (
	formName        = "messages"
	defaultPageSize = 20
	acceptedMessage = "Message received"
	sentMessage     = "Your message has been sent successfully. We will respond shortly."
)

// ErrMailerUnavailable is recorded on replies when no SMTP server is configured
var ErrMailerUnavailable = errors.New("SMTP non configuré")

// ReplyMailer emails an answer to the author of a message
type ReplyMailer interface {
	SendReply(ctx context.Context, original, reply *contact.Message) error
}

// Sender is the identity replies are sent under
type Sender struct {
	Email string
	Name  string
}

// MessageService manages the contact inbox
type MessageService struct {
	repo           contact.Repository
	auditRepo      audit.Repository
	guard          *publicform.Guard
	mailer         ReplyMailer
	sender         Sender
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
	now            func() time.Time
}

// NewMessageService creates a new MessageService. A nil mailer stores
// replies without sending them.
func NewMessageService(
	repo contact.Repository,
	auditRepo audit.Repository,
	guard *publicform.Guard,
	mailer ReplyMailer,
	sender Sender,
	logger *zap.Logger,
) *MessageService {
	return &MessageService{
		repo:      repo,
		auditRepo: auditRepo,
		guard:     guard,
		mailer:    mailer,
		sender:    sender,
		logger:    logger,
		now:       time.Now,
	}
}

// SetEventPublisher sets the event publisher
func (s *MessageService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetClock overrides time.Now, for tests
func (s *MessageService) SetClock(now func() time.Time) {
	s.now = now
}

// Submit stores a message from the public site. Submissions caught by the
// bot traps are answered as accepted and dropped.
func (s *MessageService) Submit(ctx context.Context, req SubmitRequest, ip string) (*SubmitResponse, error) {
	if err := s.guard.Admit(ctx, formName, ip); err != nil {
		return nil, err
	}
	if s.guard.IsBot(formName, ip, req.Trap) {
		return &SubmitResponse{Message: acceptedMessage}, nil
	}

	var ipAddr *string
	if ip != "" {
		ipAddr = &ip
	}
	m, err := contact.NewMessage(contact.SubmitParams{
		Name:      s.guard.Line(req.Name),
		Email:     s.guard.Line(req.Email),
		Phone:     s.guard.OptionalLine(req.Phone),
		Subject:   s.guard.OptionalLine(req.Subject),
		Content:   s.guard.Block(req.Content),
		Locale:    req.Locale,
		IPAddress: ipAddr,
	})
	if err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, m); err != nil {
		return nil, err
	}

	if err := shared.PublishAndClear(ctx, s.eventPublisher, m); err != nil {
		s.logger.Warn("failed to publish contact message events", zap.Error(err))
	}
	s.logger.Info("contact message received", zap.String("message_id", m.ID.String()))
	return &SubmitResponse{ID: &m.ID, Message: sentMessage}, nil
}

func (s *MessageService) find(ctx context.Context, id uuid.UUID) (*contact.Message, error) {
	m, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if shared.IsNotFound(err) {
			return nil, contact.ErrMessageNotFound
		}
		return nil, err
	}
	return m, nil
}

// List returns a page of the inbox
func (s *MessageService) List(ctx context.Context, req ListRequest) (*ListResponse, error) {
	archived := false
	if req.Archived != nil {
		archived = *req.Archived
	}
	f := contact.Filter{
		Filter: shared.Filter{
			Page: req.Page, PageSize: req.Limit, OrderBy: req.SortBy, OrderDir: req.SortOrder, Search: req.Search,
		}.Normalize(defaultPageSize),
		Direction: contact.Direction(req.Direction),
		Read:      req.Read,
		Archived:  &archived,
		DateFrom:  req.DateFrom,
	}
	if req.DateTo != nil {
		end := req.DateTo.AddDate(0, 0, 1).Add(-time.Nanosecond)
		f.DateTo = &end
	}

	messages, total, err := s.repo.FindAll(ctx, f)
	if err != nil {
		return nil, err
	}
	counters, err := s.repo.Counters(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]MessageResponse, len(messages))
	for i := range messages {
		items[i] = ToMessageResponse(&messages[i])
	}
	return &ListResponse{
		Paginated: shared.NewPaginated(items, total, f.Page, f.PageSize),
		Counters:  counters,
	}, nil
}

// Get returns a message with its replies and marks it read
func (s *MessageService) Get(ctx context.Context, id uuid.UUID) (*MessageResponse, error) {
	m, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if m.MarkRead(s.now()) {
		if err := s.repo.Save(ctx, m); err != nil {
			return nil, err
		}
	}
	replies, err := s.repo.FindReplies(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToMessageResponse(m)
	for i := range replies {
		resp.Replies = append(resp.Replies, ToMessageResponse(&replies[i]))
	}
	return &resp, nil
}

// Update sets the read, starred and archived flags
func (s *MessageService) Update(ctx context.Context, id uuid.UUID, req UpdateRequest) (*MessageResponse, error) {
	m, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	now := s.now()
	if req.Read != nil {
		if *req.Read {
			m.MarkRead(now)
		} else {
			m.MarkUnread(now)
		}
	}
	if req.Starred != nil {
		m.SetStarred(*req.Starred, now)
	}
	if req.Archived != nil {
		if *req.Archived {
			m.Archive(now)
		} else {
			m.Unarchive(now)
		}
	}
	if err := s.repo.Save(ctx, m); err != nil {
		return nil, err
	}
	resp := ToMessageResponse(m)
	return &resp, nil
}

// Delete removes a message
func (s *MessageService) Delete(ctx context.Context, id uuid.UUID, actor *uuid.UUID) error {
	m, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	appaudit.Write(ctx, s.auditRepo, s.logger,
		audit.New(audit.ActionDelete, audit.EntityMessage, &m.ID, fmt.Sprintf("Message de %s supprimé", m.Email)).
			Classify(audit.CategoryClient, audit.SeverityWarning).
			By(actor))
	return nil
}

// Reply stores the answer first, then emails it. A failed email leaves the
// reply stored with the delivery error.
func (s *MessageService) Reply(ctx context.Context, id uuid.UUID, req ReplyRequest, actor *uuid.UUID) (*ReplyResponse, error) {
	original, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	reply, err := original.Reply(s.sender.Email, s.sender.Name, req.Subject, req.Message, actor, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, reply); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, original); err != nil {
		return nil, err
	}

	recipient := *original
	if req.To != "" {
		recipient.Email = req.To
	}
	var sendErr error
	if s.mailer == nil {
		sendErr = ErrMailerUnavailable
	} else {
		sendErr = s.mailer.SendReply(ctx, &recipient, reply)
	}
	reply.RecordDelivery(sendErr)
	if sendErr != nil {
		s.logger.Warn("reply stored but email not sent",
			zap.String("message_id", original.ID.String()), zap.Error(sendErr))
	}
	if err := s.repo.Save(ctx, reply); err != nil {
		s.logger.Warn("failed to record reply delivery", zap.Error(err))
	}

	appaudit.Write(ctx, s.auditRepo, s.logger,
		audit.New(audit.ActionCreate, audit.EntityMessage, &reply.ID, fmt.Sprintf("Réponse envoyée à %s", recipient.Email)).
			Classify(audit.CategoryClient, audit.SeverityInfo).
			By(actor))
	return &ReplyResponse{Reply: ToMessageResponse(reply), EmailSent: reply.EmailSent, EmailError: reply.EmailError}, nil
}
