package notifications

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/wneessen/go-mail"

	"nudge/internal/config"
	"nudge/internal/logging"
	"nudge/internal/services"
)

// Transport hands a built message to an SMTP server.
type Transport interface {
	Deliver(ctx context.Context, msg *mail.Msg) error
}

// SMTPSettings describes how to reach the mail server.
type SMTPSettings struct {
	Host     string
	Port     int
	Username string
	Password string
	Timeout  time.Duration
}

type smtpTransport struct {
	settings SMTPSettings
}

// NewSMTPTransport returns a go-mail transport that requires STARTTLS and
// authenticates with PLAIN.
func NewSMTPTransport(settings SMTPSettings) Transport {
	return &smtpTransport{settings: settings}
}

func (t *smtpTransport) Deliver(ctx context.Context, msg *mail.Msg) error {
	opts := []mail.Option{
		mail.WithPort(t.settings.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(t.settings.Username),
		mail.WithPassword(t.settings.Password),
		mail.WithTLSPolicy(mail.TLSMandatory),
	}
	if t.settings.Timeout > 0 {
		opts = append(opts, mail.WithTimeout(t.settings.Timeout))
	}
	client, err := mail.NewClient(t.settings.Host, opts...)
	if err != nil {
		return fmt.Errorf("create smtp client: %w", err)
	}
	return client.DialAndSendWithContext(ctx, msg)
}

// Email sends reminders to a single recipient.
type Email struct {
	sender    string
	password  string
	recipient string
	transport Transport
	logger    *slog.Logger
}

// EmailOption customizes an Email dispatcher.
type EmailOption func(*Email)

// WithTransport replaces the SMTP transport, mainly for tests.
func WithTransport(t Transport) EmailOption {
	return func(e *Email) {
		if t != nil {
			e.transport = t
		}
	}
}

// WithLogger sets the logger used for delivery diagnostics.
func WithLogger(logger *slog.Logger) EmailOption {
	return func(e *Email) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewEmail builds an email dispatcher from configuration. Incomplete
// credentials are accepted here and reported by Send.
func NewEmail(cfg *config.Config, opts ...EmailOption) *Email {
	e := &Email{logger: logging.NewNop()}
	settings := SMTPSettings{}
	if cfg != nil {
		e.sender = strings.TrimSpace(cfg.Email.Sender)
		e.password = cfg.Email.Password
		e.recipient = strings.TrimSpace(cfg.Email.Recipient)
		settings = SMTPSettings{
			Host:     cfg.Email.SMTPHost,
			Port:     cfg.Email.SMTPPort,
			Username: e.sender,
			Password: cfg.Email.Password,
			Timeout:  time.Duration(cfg.Email.TimeoutSeconds) * time.Second,
		}
	}
	e.transport = NewSMTPTransport(settings)
	for _, opt := range opts {
		opt(e)
	}
	e.logger = logging.NewComponentLogger(e.logger, "email")
	return e
}

// Send builds a multipart message and hands it to the transport once.
func (e *Email) Send(ctx context.Context, msg Message) error {
	logger := logging.WithContext(ctx, e.logger)
	if missing := e.missingSettings(); len(missing) > 0 {
		err := services.Wrap(services.ErrConfiguration, "email", "send",
			fmt.Sprintf("missing %s", strings.Join(missing, ", ")), nil)
		logging.ErrorWithContext(logger, "email not configured", "email_not_configured",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "set EMAIL_SENDER, EMAIL_PASSWORD and EMAIL_RECIPIENT or the [email] section"),
		)
		return err
	}

	built, err := e.build(logger, msg)
	if err != nil {
		return services.Wrap(services.ErrValidation, "email", "build message", "", err)
	}

	start := time.Now()
	if err := e.transport.Deliver(ctx, built); err != nil {
		wrapped := services.Wrap(services.ErrTransport, "email", "deliver", msg.Subject, err)
		logging.ErrorWithContext(logger, "email delivery failed", "email_send_failed",
			logging.Error(err),
			logging.String("recipient", e.recipient),
			logging.String(logging.FieldErrorHint, "verify SMTP host, port and app password"),
		)
		return wrapped
	}

	logger.Info("email sent",
		logging.String(logging.FieldEventType, "email_sent"),
		logging.String("subject", msg.Subject),
		logging.String("recipient", e.recipient),
		logging.Bool("attachment", len(built.GetAttachments()) > 0),
		logging.Duration("duration", time.Since(start)),
	)
	return nil
}

func (e *Email) missingSettings() []string {
	var missing []string
	if e.sender == "" {
		missing = append(missing, "sender")
	}
	if e.password == "" {
		missing = append(missing, "password")
	}
	if e.recipient == "" {
		missing = append(missing, "recipient")
	}
	return missing
}

func (e *Email) build(logger *slog.Logger, msg Message) (*mail.Msg, error) {
	m := mail.NewMsg()
	if err := m.From(e.sender); err != nil {
		return nil, fmt.Errorf("sender: %w", err)
	}
	if err := m.To(e.recipient); err != nil {
		return nil, fmt.Errorf("recipient: %w", err)
	}
	m.Subject(msg.Subject)
	m.SetDate()
	if msg.HTML != "" {
		m.SetBodyString(mail.TypeTextHTML, msg.HTML)
		if msg.Text != "" {
			m.AddAlternativeString(mail.TypeTextPlain, msg.Text)
		}
	} else {
		m.SetBodyString(mail.TypeTextPlain, msg.Text)
	}

	if path := strings.TrimSpace(msg.Attachment); path != "" {
		info, err := os.Stat(path)
		switch {
		case err == nil && !info.IsDir():
			m.AttachFile(path, mail.WithFileName(filepath.Base(path)))
		case err != nil && !errors.Is(err, fs.ErrNotExist):
			return nil, fmt.Errorf("stat attachment: %w", err)
		default:
			logging.WarnWithContext(logger, "attachment missing; sending without it", "email_attachment_missing",
				logging.String("attachment", path),
				logging.String(logging.FieldErrorHint, "check video generation logs"),
				logging.String(logging.FieldImpact, "reminder is delivered without the video"),
			)
		}
	}
	return m, nil
}
