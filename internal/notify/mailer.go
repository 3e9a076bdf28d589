package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/wneessen/go-mail"

	"github.com/schoolregistry/server/internal/config"
)

// Mailer delivers one-time login codes out of band.
type Mailer interface {
	SendCode(ctx context.Context, to, code string) error
}

// SMTPMailer sends codes via SMTP using go-mail. Every send is bounded by
// the configured timeout so a stuck SMTP server cannot hang a request.
type SMTPMailer struct {
	host     string
	port     int
	username string
	password string
	from     string
	timeout  time.Duration
}

// NewSMTPMailer creates an SMTPMailer from the loaded configuration.
func NewSMTPMailer(cfg *config.Config) (*SMTPMailer, error) {
	if cfg.SMTPHost == "" {
		return nil, fmt.Errorf("SMTP host is required")
	}
	if cfg.SMTPFrom == "" {
		return nil, fmt.Errorf("SMTP from address is required")
	}
	return &SMTPMailer{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		username: cfg.SMTPUsername,
		password: cfg.SMTPPassword,
		from:     cfg.SMTPFrom,
		timeout:  cfg.SMTPTimeout,
	}, nil
}

// SendCode mails the login code to the recipient.
func (m *SMTPMailer) SendCode(ctx context.Context, to, code string) error {
	msg := mail.NewMsg()
	if err := msg.FromFormat("School Registry", m.from); err != nil {
		return fmt.Errorf("setting from address: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("setting to address: %w", err)
	}
	msg.Subject(codeSubject)
	msg.SetBodyString(mail.TypeTextPlain, CodeBody(code))

	opts := []mail.Option{
		mail.WithPort(m.port),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
		mail.WithTimeout(m.timeout),
	}
	if m.username != "" && m.password != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(m.username),
			mail.WithPassword(m.password),
		)
	}

	client, err := mail.NewClient(m.host, opts...)
	if err != nil {
		return fmt.Errorf("creating mail client: %w", err)
	}

	sendCtx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	if err := client.DialAndSendWithContext(sendCtx, msg); err != nil {
		return fmt.Errorf("sending email: %w", err)
	}
	return nil
}

const codeSubject = "Your login code - School Registry"

// CodeBody renders the plain-text message for a login code. The code and
// the 10-minute expiry must both appear.
func CodeBody(code string) string {
	return fmt.Sprintf(`Use the following code to log in to School Registry:

    %s

This code will expire in 10 minutes.

If you didn't request this code, please ignore this email.
`, code)
}
