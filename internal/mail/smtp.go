package mail

import (
	"context"
	"fmt"

	"credvault/internal/config"

	gomail "github.com/wneessen/go-mail"
	"golang.org/x/exp/slog"
)

// SMTPMailer sends through a configured SMTP relay.
type SMTPMailer struct {
	client *gomail.Client
	from   string
	log    *slog.Logger
}

func NewSMTPMailer(cfg config.Mail, log *slog.Logger) (*SMTPMailer, error) {
	client, err := gomail.NewClient(cfg.Host,
		gomail.WithPort(cfg.Port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(cfg.Username),
		gomail.WithPassword(cfg.Password),
		gomail.WithTLSPolicy(gomail.TLSMandatory),
	)
	if err != nil {
		return nil, fmt.Errorf("create smtp client: %w", err)
	}

	return &SMTPMailer{
		client: client,
		from:   cfg.From,
		log:    log.With("component", "smtp_mailer"),
	}, nil
}

func (m *SMTPMailer) Send(ctx context.Context, to, subject, htmlBody string) error {
	msg := gomail.NewMsg()
	if err := msg.From(m.from); err != nil {
		return fmt.Errorf("%w: %v", ErrSendFailed, err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("%w: %v", ErrSendFailed, err)
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextHTML, htmlBody)

	if err := m.client.DialAndSendWithContext(ctx, msg); err != nil {
		m.log.Error("send failed", "to", to, "error", err)
		return fmt.Errorf("%w: %v", ErrSendFailed, err)
	}

	m.log.Info("report mail sent", "to", to)
	return nil
}
