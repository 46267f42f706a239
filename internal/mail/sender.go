package mail

import (
	"context"
	"errors"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/agendou/backend/internal/model"
)

// ErrNotConfigured is returned when SMTP settings are missing; callers decide
// whether that is fatal (contact form) or skippable (booking confirmations).
var ErrNotConfigured = errors.New("smtp transport not configured")

// Sender is the outgoing mail surface of the service.
type Sender interface {
	Configured() bool
	SendConfirmation(ctx context.Context, appt model.Appointment) error
	SendReminder(ctx context.Context, appt model.Appointment) error
	SendContact(ctx context.Context, msg ContactMessage) error
}

// ContactMessage is a visitor message relayed to the shop inbox.
type ContactMessage struct {
	Name    string
	Email   string
	Phone   string
	Subject string
	Message string
}

// SMTPSender sends email over SMTP, with optional PLAIN auth. An empty host
// leaves the sender unconfigured rather than failing at startup.
type SMTPSender struct {
	addr     string
	host     string
	from     string
	inbox    string
	username string
	password string
}

type SMTPConfig struct {
	Host     string
	Port     string
	From     string
	Inbox    string
	Username string
	Password string
}

func NewSMTPSender(cfg SMTPConfig) *SMTPSender {
	host := strings.TrimSpace(cfg.Host)
	port := strings.TrimSpace(cfg.Port)
	if port == "" {
		port = "587"
	}
	from := strings.TrimSpace(cfg.From)
	if from == "" {
		from = "no-reply@agendou.local"
	}
	inbox := strings.TrimSpace(cfg.Inbox)
	if inbox == "" {
		inbox = from
	}
	return &SMTPSender{
		addr:     fmt.Sprintf("%s:%s", host, port),
		host:     host,
		from:     from,
		inbox:    inbox,
		username: cfg.Username,
		password: cfg.Password,
	}
}

func (s *SMTPSender) Configured() bool {
	return s.host != ""
}

func (s *SMTPSender) SendConfirmation(ctx context.Context, appt model.Appointment) error {
	if appt.ContactEmail == "" {
		return nil
	}
	body, err := renderConfirmation(appt)
	if err != nil {
		return err
	}
	return s.send(ctx, appt.ContactEmail, "Agendamento recebido - Agendou", body)
}

func (s *SMTPSender) SendReminder(ctx context.Context, appt model.Appointment) error {
	if appt.ContactEmail == "" {
		return nil
	}
	body, err := renderReminder(appt)
	if err != nil {
		return err
	}
	return s.send(ctx, appt.ContactEmail, "Lembrete de agendamento - Agendou", body)
}

func (s *SMTPSender) SendContact(ctx context.Context, msg ContactMessage) error {
	body, err := renderContact(msg)
	if err != nil {
		return err
	}
	// Reply-To lets the shop answer the visitor directly from the inbox.
	return s.sendWithReplyTo(ctx, s.inbox, fmt.Sprintf("Contato pelo site: %s", msg.Subject), body, msg.Email)
}

func (s *SMTPSender) send(ctx context.Context, to, subject, htmlBody string) error {
	return s.sendWithReplyTo(ctx, to, subject, htmlBody, "")
}

func (s *SMTPSender) sendWithReplyTo(ctx context.Context, to, subject, htmlBody, replyTo string) error {
	if !s.Configured() {
		return ErrNotConfigured
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	var auth smtp.Auth
	if s.username != "" {
		auth = smtp.PlainAuth("", s.username, s.password, s.host)
	}
	msg := buildMessage(s.from, to, subject, htmlBody, replyTo)

	// smtp.SendMail blocks without honoring ctx; run it on the side so a
	// cancelled request does not hang on a slow relay.
	done := make(chan error, 1)
	go func() {
		done <- smtp.SendMail(s.addr, auth, s.from, []string{to}, []byte(msg))
	}()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-done:
		return err
	}
}

func buildMessage(from, to, subject, body, replyTo string) string {
	headers := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n", from, to, subject)
	if replyTo != "" {
		headers += fmt.Sprintf("Reply-To: %s\r\n", replyTo)
	}
	headers += "MIME-Version: 1.0\r\nContent-Type: text/html; charset=utf-8\r\n"
	return headers + "\r\n" + body + "\r\n"
}
