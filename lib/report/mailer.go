package report

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net"
	"net/smtp"
	"strconv"
	"strings"

	"github.com/jordan-wright/email"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("theaterwatch/lib/report")

type SmtpConfig struct {
	Server string
	Port   int
	// UseTLS upgrades the connection with STARTTLS before authenticating.
	UseTLS     bool
	Sender     string
	SenderName string
	// Password may be empty for relays that do not authenticate.
	Password   string
	Recipients []string
}

// Missing lists the required fields that are not set.
func (c SmtpConfig) Missing() []string {
	var missing []string
	if c.Server == "" {
		missing = append(missing, "smtp_server")
	}
	if c.Port <= 0 {
		missing = append(missing, "smtp_port")
	}
	if c.Sender == "" {
		missing = append(missing, "sender_email")
	}
	if len(c.Recipients) == 0 {
		missing = append(missing, "recipient_email")
	}
	return missing
}

type SmtpMailer struct {
	config SmtpConfig
}

func NewSmtpMailer(config SmtpConfig) SmtpMailer {
	return SmtpMailer{config: config}
}

func (m SmtpMailer) address() string {
	return net.JoinHostPort(m.config.Server, strconv.Itoa(m.config.Port))
}

func (m SmtpMailer) send(mail *email.Email, auth smtp.Auth) error {
	if m.config.UseTLS {
		return mail.SendWithStartTLS(m.address(), auth, &tls.Config{
			ServerName: m.config.Server,
		})
	}
	return mail.Send(m.address(), auth)
}

// Send delivers the report as a plain text email.
func (m SmtpMailer) Send(ctx context.Context, r Report) error {
	ctx, span := tracer.Start(ctx, "Send")
	defer span.End()
	span.SetAttributes(
		attribute.String("smtp.server", m.config.Server),
		attribute.Int("smtp.port", m.config.Port),
		attribute.Bool("smtp.tls", m.config.UseTLS),
	)

	if missing := m.config.Missing(); len(missing) > 0 {
		err := fmt.Errorf("missing required email configuration: %s", strings.Join(missing, ", "))
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}

	mail := email.NewEmail()
	mail.From = m.config.Sender
	if m.config.SenderName != "" {
		mail.From = fmt.Sprintf("%s <%s>", m.config.SenderName, m.config.Sender)
	}
	mail.To = m.config.Recipients
	mail.Subject = r.Subject
	mail.Text = []byte(r.Body)

	var auth smtp.Auth
	if m.config.Password != "" {
		// app passwords are often copied with the spaces they are displayed with
		password := strings.ReplaceAll(m.config.Password, " ", "")
		auth = smtp.PlainAuth("", m.config.Sender, password, m.config.Server)
	}

	err := m.send(mail, auth)
	if err != nil && auth != nil && strings.Contains(err.Error(), "server doesn't support AUTH") {
		slog.WarnContext(ctx, "smtp server does not support auth, sending without it", "server", m.config.Server)
		err = m.send(mail, nil)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to send email")
		return fmt.Errorf("send email via %s: %w", m.address(), err)
	}

	slog.InfoContext(ctx, "email sent", "recipients", strings.Join(m.config.Recipients, ", "))
	return nil
}
