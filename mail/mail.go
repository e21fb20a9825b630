// Package mail sends transactional e-mail through Resend, plain SMTP, or a
// log-only sender for development.
package mail

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"mime"
	"net"
	"net/smtp"
	"strconv"
	"strings"

	"github.com/resend/resend-go/v2"
)

// Message is a single outgoing e-mail.
type Message struct {
	From    string
	To      []string
	Subject string
	HTML    string
	Text    string
}

// Sender delivers messages.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Config selects and configures a Sender. Resend wins over SMTP when both
// are configured.
type Config struct {
	ResendAPIKey string

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string

	From string
	To   []string
}

// Enabled reports whether a real sender can be built from c.
func (c Config) Enabled() bool {
	return (c.ResendAPIKey != "" || c.SMTPHost != "") && c.From != "" && len(c.To) > 0
}

// Logger is the subset of echo.Logger used by LogSender.
type Logger interface {
	Infof(format string, args ...interface{})
}

// New builds the Sender described by cfg, falling back to a LogSender when
// no provider or no addresses are configured.
func New(cfg Config, logger Logger) Sender {
	switch {
	case !cfg.Enabled():
		return &LogSender{Logger: logger}
	case cfg.ResendAPIKey != "":
		return NewResend(cfg.ResendAPIKey)
	default:
		return &SMTPSender{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
		}
	}
}

// ResendSender sends through the Resend HTTP API.
type ResendSender struct {
	client *resend.Client
}

func NewResend(apiKey string) *ResendSender {
	return &ResendSender{client: resend.NewClient(apiKey)}
}

func (s *ResendSender) Send(ctx context.Context, msg Message) error {
	_, err := s.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    msg.From,
		To:      msg.To,
		Subject: msg.Subject,
		Html:    msg.HTML,
		Text:    msg.Text,
	})
	if err != nil {
		return fmt.Errorf("resend: %w", err)
	}
	return nil
}

// SMTPSender sends with PLAIN auth, upgrading to STARTTLS when the server
// offers it. The whole SMTP session is bounded by the context passed to Send.
type SMTPSender struct {
	Host     string
	Port     int
	Username string
	Password string
}

func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	if s.Host == "" || s.Username == "" || s.Password == "" {
		return errors.New("smtp: sender not properly configured")
	}
	if err := s.send(ctx, msg); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("smtp: %w", ctxErr)
		}
		return fmt.Errorf("smtp: %w", err)
	}
	return nil
}

func (s *SMTPSender) send(ctx context.Context, msg Message) error {
	addr := net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return err
	}
	// Cancellation or the deadline unblocks any pending read or write.
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	c, err := smtp.NewClient(conn, s.Host)
	if err != nil {
		conn.Close()
		return err
	}
	defer c.Close()

	if ok, _ := c.Extension("STARTTLS"); ok {
		if err := c.StartTLS(&tls.Config{ServerName: s.Host}); err != nil {
			return err
		}
	}
	if ok, _ := c.Extension("AUTH"); ok {
		if err := c.Auth(smtp.PlainAuth("", s.Username, s.Password, s.Host)); err != nil {
			return err
		}
	}
	if err := c.Mail(msg.From); err != nil {
		return err
	}
	for _, rcpt := range msg.To {
		if err := c.Rcpt(rcpt); err != nil {
			return err
		}
	}
	w, err := c.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(buildMIME(msg)); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return c.Quit()
}

const mimeBoundary = "soopify-alt-boundary"

// buildMIME renders msg as a multipart/alternative message with a plain-text
// part followed by the HTML part.
func buildMIME(msg Message) []byte {
	var b strings.Builder
	b.WriteString("From: " + msg.From + "\r\n")
	b.WriteString("To: " + strings.Join(msg.To, ", ") + "\r\n")
	b.WriteString("Subject: " + mime.QEncoding.Encode("utf-8", msg.Subject) + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: multipart/alternative; boundary=\"" + mimeBoundary + "\"\r\n\r\n")
	if msg.Text != "" {
		b.WriteString("--" + mimeBoundary + "\r\n")
		b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n\r\n")
		b.WriteString(msg.Text + "\r\n")
	}
	if msg.HTML != "" {
		b.WriteString("--" + mimeBoundary + "\r\n")
		b.WriteString("Content-Type: text/html; charset=UTF-8\r\n\r\n")
		b.WriteString(msg.HTML + "\r\n")
	}
	b.WriteString("--" + mimeBoundary + "--\r\n")
	return []byte(b.String())
}

// LogSender only logs what would have been sent.
type LogSender struct {
	Logger Logger
}

func (s *LogSender) Send(ctx context.Context, msg Message) error {
	if s.Logger != nil {
		s.Logger.Infof("[EMAIL] Would send to %s: %s", strings.Join(msg.To, ", "), msg.Subject)
	}
	return nil
}
