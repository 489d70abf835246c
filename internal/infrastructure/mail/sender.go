// Package mail sends the transactional emails of the back office over SMTP.
package mail

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"

	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/infrastructure/config"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

// ErrDisabled is returned when SMTP is not configured
var ErrDisabled = errors.New("SMTP non configuré")

// Dialer delivers prepared messages; *gomail.Dialer satisfies it
type Dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// Envelope is one email ready to be sent
type Envelope struct {
	To      []string
	ReplyTo string
	Subject string
	HTML    string
}

// Sender writes envelopes to the SMTP server
type Sender struct {
	dialer   Dialer
	from     string
	fromName string
	enabled  bool
	logger   *zap.Logger
}

// NewSender creates a Sender from the mail configuration
func NewSender(cfg config.MailConfig, logger *zap.Logger) *Sender {
	s := &Sender{
		from:     cfg.From,
		fromName: cfg.FromName,
		enabled:  cfg.Enabled && cfg.Host != "",
		logger:   logger,
	}
	if s.enabled {
		d := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
		d.TLSConfig = &tls.Config{
			ServerName: cfg.Host,
			MinVersion: tls.VersionTLS12,
		}
		s.dialer = d
	}
	return s
}

// NewSenderWithDialer creates an enabled Sender over the given dialer
func NewSenderWithDialer(d Dialer, from, fromName string, logger *zap.Logger) *Sender {
	return &Sender{dialer: d, from: from, fromName: fromName, enabled: true, logger: logger}
}

// Enabled reports whether emails actually leave
func (s *Sender) Enabled() bool {
	return s.enabled
}

// Send delivers the envelope. A disabled sender logs it and returns ErrDisabled.
func (s *Sender) Send(ctx context.Context, e Envelope) error {
	if !s.enabled {
		s.logger.Info("mail disabled, email not sent",
			zap.Strings("to", e.To), zap.String("subject", e.Subject))
		return ErrDisabled
	}
	if len(e.To) == 0 {
		return errors.New("no recipient")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := gomail.NewMessage(
		gomail.SetCharset("UTF-8"),
		gomail.SetEncoding(gomail.Base64),
	)
	msg.SetAddressHeader("From", s.from, s.fromName)
	msg.SetHeader("To", e.To...)
	if e.ReplyTo != "" {
		msg.SetHeader("Reply-To", e.ReplyTo)
	}
	msg.SetHeader("Subject", e.Subject)
	msg.SetBody("text/html", e.HTML)

	if err := s.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	s.logger.Debug("email sent", zap.Strings("to", e.To), zap.String("subject", e.Subject))
	return nil
}
