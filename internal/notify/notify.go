// Package notify delivers outbound user notifications.  Mail goes through
// SMTP when a host is configured and is only logged otherwise.
package notify

import (
	"context"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/iliyamo/travel-booking/internal/config"
	"github.com/iliyamo/travel-booking/internal/logger"
)

// Message is a plain-text mail.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Sender delivers a message.  Implementations must be safe for concurrent
// use.
type Sender interface {
	Send(ctx context.Context, m Message) error
}

// Welcome renders the greeting sent after registration.
func Welcome(name, email string) Message {
	return Message{
		To:      email,
		Subject: fmt.Sprintf("Welcome %s!", name),
		Body: fmt.Sprintf("Hi, %s\n"+
			"Thanks for registering in the travel booking system services\n"+
			"This email was sent to '%s'\n\n"+
			"FEEL FREE TO DELETE THIS EMAIL.", name, email),
	}
}

// New picks the SMTP sender when cfg.Host is set and the log sender
// otherwise.
func New(cfg config.SMTPConfig) Sender {
	if strings.TrimSpace(cfg.Host) == "" {
		return LogSender{}
	}
	return &SMTPSender{cfg: cfg, send: smtp.SendMail}
}

// LogSender writes messages to the application log instead of sending them.
type LogSender struct{}

func (LogSender) Send(_ context.Context, m Message) error {
	logger.Info("mail not sent, SMTP disabled",
		zap.String("to", m.To), zap.String("subject", m.Subject))
	return nil
}

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTPSender sends mail with PLAIN auth.  net/smtp upgrades to STARTTLS
// when the server offers it.
type SMTPSender struct {
	cfg  config.SMTPConfig
	send sendFunc
}

func (s *SMTPSender) Send(ctx context.Context, m Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.ContainsAny(m.To, "\r\n") || strings.ContainsAny(m.Subject, "\r\n") {
		return fmt.Errorf("notify: header contains a line break")
	}
	var auth smtp.Auth
	if s.cfg.Username != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}
	addr := net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))
	if err := s.send(addr, auth, s.cfg.From, []string{m.To}, render(s.cfg.From, m)); err != nil {
		return fmt.Errorf("notify: smtp send to %s: %w", m.To, err)
	}
	logger.Info("mail sent", zap.String("to", m.To), zap.String("subject", m.Subject))
	return nil
}

func render(from string, m Message) []byte {
	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + m.To + "\r\n")
	b.WriteString("Subject: " + m.Subject + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n\r\n")
	b.WriteString(strings.ReplaceAll(m.Body, "\n", "\r\n"))
	return []byte(b.String())
}
