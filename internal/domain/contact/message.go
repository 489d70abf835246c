// Package contact holds the messages exchanged through the site contact form.
package contact

import (
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/shared"
)

// Direction tells whether a message came from a visitor or was sent by the workshop
type Direction string

const (
	Received Direction = "RECEIVED"
	Sent     Direction = "SENT"
)

const CodeReplyToSent = "CANNOT_REPLY_TO_SENT"

var ErrMessageNotFound = shared.NotFound("Message non trouvé")

// Message is a contact form submission or a reply to one
type Message struct {
	shared.BaseAggregateRoot
	Direction   Direction  `gorm:"type:varchar(10);not null;default:'RECEIVED';index"`
	Name        string     `gorm:"type:varchar(200);not null"`
	Email       string     `gorm:"type:varchar(200);not null;index"`
	Phone       *string    `gorm:"type:varchar(50)"`
	Subject     *string    `gorm:"type:varchar(200)"`
	Content     string     `gorm:"type:text;not null"`
	Locale      string     `gorm:"type:varchar(5);not null;default:'fr'"`
	IPAddress   *string    `gorm:"type:varchar(64)"`
	Read        bool       `gorm:"not null;default:false;index"`
	ReadAt      *time.Time
	Starred     bool       `gorm:"not null;default:false"`
	Archived    bool       `gorm:"not null;default:false;index"`
	ArchivedAt  *time.Time
	InReplyToID *uuid.UUID `gorm:"type:uuid;index"`
	RepliedAt   *time.Time
	EmailSent   bool       `gorm:"not null;default:false"`
	EmailError  *string    `gorm:"type:text"`
	SentByID    *uuid.UUID `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (Message) TableName() string {
	return "contact_messages"
}

// SubmitParams is a sanitised contact form submission
type SubmitParams struct {
	Name      string
	Email     string
	Phone     *string
	Subject   *string
	Content   string
	Locale    string
	IPAddress *string
}

func (p *SubmitParams) normalize() {
	p.Name = strings.TrimSpace(p.Name)
	p.Email = strings.ToLower(strings.TrimSpace(p.Email))
	p.Content = strings.TrimSpace(p.Content)
	if p.Locale == "" {
		p.Locale = "fr"
	}
}

func (p SubmitParams) validate() error {
	var details []shared.ErrorDetail
	if n := len([]rune(p.Name)); n < 2 || n > 100 {
		details = append(details, shared.ErrorDetail{Field: "name", Message: "Nom requis"})
	}
	if _, err := mail.ParseAddress(p.Email); err != nil {
		details = append(details, shared.ErrorDetail{Field: "email", Message: "Email invalide"})
	}
	if p.Subject != nil && len([]rune(*p.Subject)) > 200 {
		details = append(details, shared.ErrorDetail{Field: "subject", Message: "Sujet trop long"})
	}
	if n := len([]rune(p.Content)); n < 10 || n > 5000 {
		details = append(details, shared.ErrorDetail{Field: "content", Message: "Le message doit contenir entre 10 et 5000 caractères"})
	}
	if len(details) > 0 {
		return shared.NewValidationError("Données invalides", details...)
	}
	return nil
}

// NewMessage validates and records a visitor message
func NewMessage(p SubmitParams) (*Message, error) {
	p.normalize()
	if err := p.validate(); err != nil {
		return nil, err
	}
	m := &Message{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Direction:         Received,
		Name:              p.Name,
		Email:             p.Email,
		Phone:             p.Phone,
		Subject:           p.Subject,
		Content:           p.Content,
		Locale:            p.Locale,
		IPAddress:         p.IPAddress,
	}
	m.AddDomainEvent(NewMessageReceivedEvent(m))
	return m, nil
}

// ReplySubject is the subject of an answer when none is given
func (m *Message) ReplySubject() string {
	if m.Subject != nil && *m.Subject != "" {
		return "Re: " + *m.Subject
	}
	return "Re: Votre message"
}

// Reply creates the outgoing answer to this message and marks it read
func (m *Message) Reply(from, fromName, subject, content string, by *uuid.UUID, now time.Time) (*Message, error) {
	if m.Direction == Sent {
		return nil, shared.NewDomainError(CodeReplyToSent, "Impossible de répondre à un message envoyé")
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, shared.NewValidationError("Données invalides",
			shared.ErrorDetail{Field: "message", Message: "Message requis"})
	}
	subject = strings.TrimSpace(subject)
	if subject == "" {
		subject = m.ReplySubject()
	}
	inReplyTo := m.ID
	reply := &Message{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Direction:         Sent,
		Name:              fromName,
		Email:             from,
		Subject:           &subject,
		Content:           content,
		Locale:            m.Locale,
		Read:              true,
		ReadAt:            &now,
		InReplyToID:       &inReplyTo,
		SentByID:          by,
	}
	reply.CreatedAt, reply.UpdatedAt = now, now

	m.MarkRead(now)
	t := now
	m.RepliedAt = &t
	m.UpdatedAt = now
	m.IncrementVersion()
	return reply, nil
}

// RecordDelivery stores the outcome of the email carrying a reply
func (m *Message) RecordDelivery(err error) {
	if err == nil {
		m.EmailSent = true
		m.EmailError = nil
		return
	}
	msg := err.Error()
	m.EmailSent = false
	m.EmailError = &msg
}

// MarkRead flags the message as read; it reports whether anything changed
func (m *Message) MarkRead(now time.Time) bool {
	if m.Read {
		return false
	}
	t := now
	m.Read = true
	m.ReadAt = &t
	m.UpdatedAt = now
	return true
}

// MarkUnread clears the read flag
func (m *Message) MarkUnread(now time.Time) bool {
	if !m.Read {
		return false
	}
	m.Read = false
	m.ReadAt = nil
	m.UpdatedAt = now
	return true
}

// SetStarred flags or unflags the message
func (m *Message) SetStarred(starred bool, now time.Time) {
	m.Starred = starred
	m.UpdatedAt = now
}

// Archive hides the message from the inbox
func (m *Message) Archive(now time.Time) {
	if m.Archived {
		return
	}
	t := now
	m.Archived = true
	m.ArchivedAt = &t
	m.UpdatedAt = now
}

// Unarchive puts the message back in the inbox
func (m *Message) Unarchive(now time.Time) {
	m.Archived = false
	m.ArchivedAt = nil
	m.UpdatedAt = now
}

// Label is a short description for logs and notifications
func (m *Message) Label() string {
	if m.Subject != nil && *m.Subject != "" {
		return fmt.Sprintf("%s: %s", m.Name, *m.Subject)
	}
	return m.Name
}

// Filter narrows the admin inbox
type Filter struct {
	shared.Filter
	Direction Direction
	Read      *bool
	Archived  *bool
	DateFrom  *time.Time
	DateTo    *time.Time
}

// Counters summarises the inbox
type Counters struct {
	Unread   int64 `json:"unread"`
	Starred  int64 `json:"starred"`
	Archived int64 `json:"archived"`
}
