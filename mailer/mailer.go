// Package mailer relays single HTML messages through an SMTP server.
package mailer

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"mime"
	"mime/quotedprintable"
	"net"
	"net/smtp"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
)

// ErrNotConfigured is returned by Send when no SMTP host is set.
var ErrNotConfigured = errors.New("mailer: SMTP not configured")

// Config holds the SMTP connection settings.
type Config struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string        // defaults to Username
	Timeout  time.Duration // per message, 0 means the caller's context only
}

// Message is one outgoing email.
type Message struct {
	From    string
	To      string
	ReplyTo string
	Subject string
	HTML    string
	Date    time.Time
}

// Relay sends messages over SMTP, upgrading to TLS when the server offers
// STARTTLS.
type Relay struct {
	config Config
	logger echo.Logger
	dialer net.Dialer
}

// New creates a Relay. The logger receives one line per message.
func New(cfg Config, logger echo.Logger) *Relay {
	if cfg.Port == "" {
		cfg.Port = "587"
	}
	if cfg.From == "" {
		cfg.From = cfg.Username
	}
	return &Relay{config: cfg, logger: logger}
}

// Send delivers msg. It does not retry.
func (r *Relay) Send(ctx context.Context, msg Message) error {
	if r.config.Host == "" {
		return ErrNotConfigured
	}
	if msg.From == "" {
		msg.From = r.config.From
	}
	if msg.From == "" || msg.To == "" {
		return fmt.Errorf("mailer: sender and recipient are required")
	}
	if r.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.config.Timeout)
		defer cancel()
	}

	if err := r.send(ctx, msg); err != nil {
		r.logger.Errorf("mail to %s failed: %v", msg.To, err)
		return err
	}
	r.logger.Infof("mail sent to %s: %s", msg.To, msg.Subject)
	return nil
}

func (r *Relay) send(ctx context.Context, msg Message) error {
	addr := net.JoinHostPort(r.config.Host, r.config.Port)
	conn, err := r.dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("dial %s: %w", addr, err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}
	// Unblock in-flight reads if the context is cancelled without a deadline.
	stop := context.AfterFunc(ctx, func() { _ = conn.SetDeadline(time.Now()) })
	defer stop()

	c, err := smtp.NewClient(conn, r.config.Host)
	if err != nil {
		conn.Close()
		return err
	}
	defer c.Close()

	if ok, _ := c.Extension("STARTTLS"); ok {
		if err := c.StartTLS(&tls.Config{ServerName: r.config.Host}); err != nil {
			return fmt.Errorf("starttls: %w", err)
		}
	}
	if r.config.Username != "" {
		if ok, _ := c.Extension("AUTH"); ok {
			auth := smtp.PlainAuth("", r.config.Username, r.config.Password, r.config.Host)
			if err := c.Auth(auth); err != nil {
				return fmt.Errorf("auth: %w", err)
			}
		}
	}
	if err := c.Mail(msg.From); err != nil {
		return err
	}
	if err := c.Rcpt(msg.To); err != nil {
		return err
	}
	w, err := c.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg.Bytes()); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return c.Quit()
}

// Bytes renders msg as an RFC 5322 message with a quoted-printable HTML body.
func (m Message) Bytes() []byte {
	date := m.Date
	if date.IsZero() {
		date = time.Now()
	}
	var buf bytes.Buffer
	writeHeader := func(k, v string) {
		buf.WriteString(k)
		buf.WriteString(": ")
		buf.WriteString(v)
		buf.WriteString("\r\n")
	}
	writeHeader("From", headerValue(m.From))
	writeHeader("To", headerValue(m.To))
	if m.ReplyTo != "" {
		writeHeader("Reply-To", headerValue(m.ReplyTo))
	}
	writeHeader("Subject", mime.QEncoding.Encode("utf-8", headerValue(m.Subject)))
	writeHeader("Date", date.Format(time.RFC1123Z))
	writeHeader("MIME-Version", "1.0")
	writeHeader("Content-Type", "text/html; charset=UTF-8")
	writeHeader("Content-Transfer-Encoding", "quoted-printable")
	buf.WriteString("\r\n")

	qp := quotedprintable.NewWriter(&buf)
	_, _ = qp.Write([]byte(m.HTML))
	_ = qp.Close()
	buf.WriteString("\r\n")
	return buf.Bytes()
}

// headerValue drops line breaks so user input cannot add headers.
func headerValue(s string) string {
	s = strings.ReplaceAll(s, "\r", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.TrimSpace(s)
}
