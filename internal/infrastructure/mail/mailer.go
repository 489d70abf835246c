package mail

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	appcontact "github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/application/contact"
	appnotification "github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/application/notification"
	appshop "github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/application/shop"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/contact"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/shop"
	"go.uber.org/zap"
)

// Transport is the part of Sender the mailer needs
type Transport interface {
	Send(ctx context.Context, e Envelope) error
}

// Options configures what the mailer puts around each email
type Options struct {
	Brand       string
	SiteURL     string
	AdminEmails []string
	ReplyTo     string
}

// RecipientSource supplies extra alert addresses managed in the back office
type RecipientSource interface {
	AdminEmails(ctx context.Context) []string
}

// Mailer renders and sends the business emails
type Mailer struct {
	transport Transport
	renderer  *renderer
	opts      Options
	extra     RecipientSource
	logger    *zap.Logger
}

// NewMailer creates a Mailer; it fails only if the embedded templates are broken
func NewMailer(transport Transport, opts Options, logger *zap.Logger) (*Mailer, error) {
	r, err := newRenderer()
	if err != nil {
		return nil, err
	}
	if opts.Brand == "" {
		opts.Brand = "Le Tatche Bois"
	}
	opts.SiteURL = strings.TrimRight(opts.SiteURL, "/")
	return &Mailer{transport: transport, renderer: r, opts: opts, logger: logger}, nil
}

// SetRecipientSource adds the back office alert addresses to the configured ones
func (m *Mailer) SetRecipientSource(src RecipientSource) {
	m.extra = src
}

func (m *Mailer) adminRecipients(ctx context.Context) []string {
	out := append([]string(nil), m.opts.AdminEmails...)
	if m.extra == nil {
		return out
	}
	seen := make(map[string]bool, len(out))
	for _, e := range out {
		seen[strings.ToLower(e)] = true
	}
	for _, e := range m.extra.AdminEmails(ctx) {
		if !seen[strings.ToLower(e)] {
			seen[strings.ToLower(e)] = true
			out = append(out, e)
		}
	}
	return out
}

func (m *Mailer) send(ctx context.Context, to []string, subject, tpl, link string, data any) error {
	html, err := m.renderer.render(tpl, page{
		Subject: subject,
		Brand:   m.opts.Brand,
		SiteURL: m.opts.SiteURL,
		Link:    link,
		Data:    data,
	})
	if err != nil {
		return err
	}
	return m.transport.Send(ctx, Envelope{To: to, ReplyTo: m.opts.ReplyTo, Subject: subject, HTML: html})
}

type replyData struct {
	Name       string
	Content    string
	Original   string
	OriginalAt time.Time
}

// SendReply emails an inbox reply, quoting the visitor's message
func (m *Mailer) SendReply(ctx context.Context, original, reply *contact.Message) error {
	subject := original.ReplySubject()
	if reply.Subject != nil && *reply.Subject != "" {
		subject = *reply.Subject
	}
	return m.send(ctx, []string{original.Email}, subject, tplReply, "", replyData{
		Name:       original.Name,
		Content:    reply.Content,
		Original:   original.Content,
		OriginalAt: original.CreatedAt,
	})
}

func (m *Mailer) trackingLink(o *shop.Order) string {
	if m.opts.SiteURL == "" {
		return ""
	}
	q := url.Values{"number": {o.Number}, "email": {o.CustomerEmail}}
	return fmt.Sprintf("%s/%s/suivi-commande?%s", m.opts.SiteURL, o.Locale, q.Encode())
}

// OrderPlaced confirms the order to the customer. The staff hears about it
// through the notification feed. Nothing is reported when mail is disabled.
func (m *Mailer) OrderPlaced(ctx context.Context, o *shop.Order) error {
	subject := fmt.Sprintf("Confirmation de votre commande %s", o.Number)
	err := m.send(ctx, []string{o.CustomerEmail}, subject, tplOrderConfirmation, m.trackingLink(o), o)
	if errors.Is(err, ErrDisabled) {
		return nil
	}
	return err
}

// NotifyAdmins emails an alert to every configured admin recipient
func (m *Mailer) NotifyAdmins(ctx context.Context, a appnotification.Alert) error {
	to := m.adminRecipients(ctx)
	if len(to) == 0 {
		return nil
	}
	link := a.Link
	if strings.HasPrefix(link, "/") {
		if m.opts.SiteURL == "" {
			link = ""
		} else {
			link = m.opts.SiteURL + link
		}
	}
	err := m.send(ctx, to, "[Admin] "+a.Title, tplAlert, link, a)
	if errors.Is(err, ErrDisabled) {
		return nil
	}
	return err
}

var (
	_ appcontact.ReplyMailer         = (*Mailer)(nil)
	_ appshop.OrderNotifier          = (*Mailer)(nil)
	_ appnotification.AdminEmailer = (*Mailer)(nil)
	_ Transport                    = (*Sender)(nil)
)
