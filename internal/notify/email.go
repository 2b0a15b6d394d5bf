package notify

import (
	"context"
	"fmt"
	"net/smtp"

	"github.com/jordan-wright/email"
)

// EmailConfig holds SMTP settings.
type EmailConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

// EmailSender mails notifications to the user's address over SMTP.
type EmailSender struct {
	cfg  EmailConfig
	send func(e *email.Email, addr string, auth smtp.Auth) error
}

// NewEmailSender returns a sender for cfg.
func NewEmailSender(cfg EmailConfig) *EmailSender {
	return &EmailSender{
		cfg: cfg,
		send: func(e *email.Email, addr string, auth smtp.Auth) error {
			return e.Send(addr, auth)
		},
	}
}

// Name implements Sender.
func (s *EmailSender) Name() string { return "email" }

// Send implements Sender. Users without an e-mail address are skipped.
func (s *EmailSender) Send(ctx context.Context, msg Message) error {
	if msg.Email == "" {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	e := s.build(msg)
	addr := fmt.Sprintf("%s:%s", s.cfg.Host, s.cfg.Port)

	var auth smtp.Auth
	if s.cfg.Username != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}
	if err := s.send(e, addr, auth); err != nil {
		return fmt.Errorf("send email to %s: %w", msg.Email, err)
	}
	return nil
}

func (s *EmailSender) build(msg Message) *email.Email {
	e := email.NewEmail()
	e.From = s.cfg.From
	e.To = []string{msg.Email}
	e.Subject = subjectFor(msg.Kind)

	name := msg.Login
	if name == "" {
		name = "there"
	}
	e.Text = []byte(fmt.Sprintf("Hello %s,\n\n%s\n\nSent %s\n", name, msg.Text, msg.CreatedAt.Format("2006-01-02 15:04")))
	return e
}

func subjectFor(kind string) string {
	switch kind {
	case "limit_exceeded":
		return "Category limit exceeded"
	case "payment_due":
		return "Upcoming loan payment"
	case "payment_overdue":
		return "Overdue loan payment"
	case "income":
		return "Income received"
	case "goal_achieved":
		return "Goal achieved"
	default:
		return "Notification"
	}
}
