// Package mail defines the outbound notification contract. Handlers
// treat mail as fire-and-forget: a failed send is logged, never
// retried and never fails the surrounding request.
package mail

import (
	"context"
	"fmt"
	"log"
	"net/smtp"
	"strings"
)

// Message is a single outbound email.
type Message struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}

// Mailer delivers a message. Implementations: SMTPMailer for direct
// synchronous delivery, queue_publisher.Publisher for async delivery
// through RabbitMQ.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// LogMailer records deliveries in the log instead of sending them.
// It stands in for SMTPMailer in environments without a mail server.
type LogMailer struct{}

func (LogMailer) Send(_ context.Context, msg Message) error {
	log.Printf("mail (not delivered): to=%s subject=%q", msg.To, msg.Subject)
	return nil
}

// SMTPConfig carries the connection settings for SMTPMailer. From
// doubles as the authenticated user when User is empty.
type SMTPConfig struct {
	Host string
	Port string
	User string
	Pass string
	From string
}

// SMTPMailer sends mail directly over SMTP with PLAIN auth.
type SMTPMailer struct {
	cfg SMTPConfig
}

func NewSMTPMailer(cfg SMTPConfig) *SMTPMailer {
	if cfg.User == "" {
		cfg.User = cfg.From
	}
	return &SMTPMailer{cfg: cfg}
}

// Send composes an HTML message and hands it to the SMTP server.
// The context is accepted for interface symmetry; net/smtp does not
// support cancellation mid-session.
func (m *SMTPMailer) Send(_ context.Context, msg Message) error {
	headers := []string{
		"From: " + m.cfg.From,
		"To: " + msg.To,
		"Subject: " + msg.Subject,
		"MIME-Version: 1.0",
		`Content-Type: text/html; charset="UTF-8"`,
	}
	body := strings.Join(headers, "\r\n") + "\r\n\r\n" + msg.HTML + "\r\n"

	addr := m.cfg.Host + ":" + m.cfg.Port
	auth := smtp.PlainAuth("", m.cfg.User, m.cfg.Pass, m.cfg.Host)
	if err := smtp.SendMail(addr, auth, m.cfg.From, []string{msg.To}, []byte(body)); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}
