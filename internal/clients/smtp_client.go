package clients

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"backoffice-service/internal/config"

	"github.com/wneessen/go-mail"
)

// SMTPSender delivers mail through an SMTP relay
type SMTPSender struct {
	addr string
	from string
	send func(ctx context.Context, msg *mail.Msg) error
}

// NewSMTPSender creates an SMTP sender. PLAIN auth is used when a user is
// configured; SMTPUseSSL selects implicit TLS (port 465), SMTPUseTLS makes
// STARTTLS mandatory, otherwise STARTTLS is used when the server offers it.
func NewSMTPSender(cfg config.EmailConfig) (*SMTPSender, error) {
	opts := []mail.Option{mail.WithTimeout(30 * time.Second)}
	switch {
	case cfg.SMTPUseSSL:
		opts = append(opts, mail.WithSSL())
	case cfg.SMTPUseTLS:
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
	default:
		opts = append(opts, mail.WithTLSPolicy(mail.TLSOpportunistic))
	}
	if cfg.SMTPUser != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.SMTPUser),
			mail.WithPassword(cfg.SMTPPassword),
		)
	}
	opts = append(opts, mail.WithPort(cfg.SMTPPort))

	client, err := mail.NewClient(cfg.SMTPHost, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create SMTP client: %w", err)
	}

	return &SMTPSender{
		addr: net.JoinHostPort(cfg.SMTPHost, strconv.Itoa(cfg.SMTPPort)),
		from: cfg.From,
		send: func(ctx context.Context, msg *mail.Msg) error {
			return client.DialAndSendWithContext(ctx, msg)
		},
	}, nil
}

func (s *SMTPSender) Send(ctx context.Context, msg *EmailMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m, err := s.compose(msg)
	if err != nil {
		return err
	}
	if err := s.send(ctx, m); err != nil {
		return fmt.Errorf("failed to send email via %s: %w", s.addr, err)
	}
	return nil
}

// compose builds a text/plain UTF-8 message. Addresses are parsed, so header
// injection through To or From is rejected.
func (s *SMTPSender) compose(msg *EmailMessage) (*mail.Msg, error) {
	m := mail.NewMsg()
	if err := m.From(s.from); err != nil {
		return nil, fmt.Errorf("invalid sender address %q: %w", s.from, err)
	}
	if err := m.To(msg.To); err != nil {
		return nil, fmt.Errorf("invalid recipient address %q: %w", msg.To, err)
	}
	m.Subject(sanitizeHeader(msg.Subject))
	m.SetDate()
	m.SetBodyString(mail.TypeTextPlain, msg.Body)
	return m, nil
}

func sanitizeHeader(v string) string {
	return strings.NewReplacer("\r\n", " ", "\r", " ", "\n", " ").Replace(v)
}
