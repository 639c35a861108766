// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package mail

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"mime"
	netmail "net/mail"
	"net/smtp"
	"strconv"
)

// # SMTP

// SMTPConfig holds the outbound server settings.
type SMTPConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	FromEmail string
	FromName  string
}

// SMTPTransport sends messages through an SMTP relay.
type SMTPTransport struct {
	addr string
	auth smtp.Auth
	from netmail.Address
}

// NewSMTPTransport builds a transport for cfg. Authentication is only used
// when a username is configured.
func NewSMTPTransport(cfg SMTPConfig) *SMTPTransport {
	var auth smtp.Auth
	if cfg.Username != "" {
		auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	}
	return &SMTPTransport{
		addr: cfg.Host + ":" + strconv.Itoa(cfg.Port),
		auth: auth,
		from: netmail.Address{Name: cfg.FromName, Address: cfg.FromEmail},
	}
}

// Send delivers message. net/smtp has no context support, so ctx is only
// checked before dialing.
func (transport *SMTPTransport) Send(ctx context.Context, message Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	body := Compose(transport.from, message)
	if err := smtp.SendMail(transport.addr, transport.auth, transport.from.Address, []string{message.To}, body); err != nil {
		return fmt.Errorf("smtp: %w", err)
	}
	return nil
}

// Compose renders message as an RFC 5322 HTML email.
func Compose(from netmail.Address, message Message) []byte {
	var buffer bytes.Buffer

	fmt.Fprintf(&buffer, "From: %s\r\n", from.String())
	fmt.Fprintf(&buffer, "To: %s\r\n", message.To)
	fmt.Fprintf(&buffer, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", message.Subject))
	buffer.WriteString("MIME-Version: 1.0\r\n")
	buffer.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	buffer.WriteString("\r\n")
	buffer.WriteString(message.HTML)

	return buffer.Bytes()
}

// # Logging

// LogTransport only records that a message would have been sent. The body is
// never logged because it carries a one-time code.
type LogTransport struct {
	logger *slog.Logger
}

// NewLogTransport creates a [LogTransport].
func NewLogTransport(logger *slog.Logger) *LogTransport {
	return &LogTransport{logger: logger}
}

// Send logs the recipient and subject.
func (transport *LogTransport) Send(ctx context.Context, message Message) error {
	transport.logger.InfoContext(ctx, "mail_sent_to_log",
		slog.String("to", message.To),
		slog.String("subject", message.Subject),
		slog.Int("bytes", len(message.HTML)),
	)
	return nil
}
