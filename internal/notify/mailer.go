// Package notify ships the finished report by email.
package notify

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/wneessen/go-mail"

	"github.com/proactive-net/datto-check/internal/report"
)

// Config holds mail relay settings.
type Config struct {
	Enabled bool     `yaml:"enabled"`
	Host    string   `yaml:"host"`
	Port    int      `yaml:"port"`
	From    string   `yaml:"from"`
	To      []string `yaml:"to"`
	Cc      []string `yaml:"cc,omitempty"`
	Subject string   `yaml:"subject"`

	// Username enables SMTP PLAIN auth when set. The password is resolved
	// separately (never from the config file).
	Username string `yaml:"username,omitempty"`
	Password string `yaml:"-"`
}

// DefaultConfig returns the stock relay settings: plaintext submission
// port with a mandatory STARTTLS upgrade.
func DefaultConfig() Config {
	return Config{
		Port:    25,
		Subject: "Daily Datto Check",
	}
}

// Mailer sends one report per run over SMTP with mandatory STARTTLS.
// Transport errors are returned to the caller; there are no retries.
type Mailer struct {
	cfg    Config
	logger *slog.Logger
}

// NewMailer creates a mailer. It does not dial until Send.
func NewMailer(cfg Config, logger *slog.Logger) *Mailer {
	return &Mailer{
		cfg:    cfg,
		logger: logger.With("component", "mailer"),
	}
}

// BuildMessage renders the report into a single plain-text message.
// Split out from Send so the message content is testable without a relay.
func (m *Mailer) BuildMessage(rep *report.Report) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.From(m.cfg.From); err != nil {
		return nil, fmt.Errorf("set From %q: %w", m.cfg.From, err)
	}
	if err := msg.To(m.cfg.To...); err != nil {
		return nil, fmt.Errorf("set To %v: %w", m.cfg.To, err)
	}
	if len(m.cfg.Cc) > 0 {
		if err := msg.Cc(m.cfg.Cc...); err != nil {
			return nil, fmt.Errorf("set Cc %v: %w", m.cfg.Cc, err)
		}
	}
	msg.Subject(fmt.Sprintf("%s - %s", m.cfg.Subject, rep.GeneratedAt.Format("2006-01-02")))
	msg.SetBodyString(mail.TypeTextPlain, rep.Render())
	return msg, nil
}

// Send ships the report as one message and closes the connection.
func (m *Mailer) Send(ctx context.Context, rep *report.Report) error {
	msg, err := m.BuildMessage(rep)
	if err != nil {
		return err
	}

	opts := []mail.Option{
		mail.WithPort(m.cfg.Port),
		mail.WithTLSPolicy(mail.TLSMandatory),
	}
	if m.cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(m.cfg.Username),
			mail.WithPassword(m.cfg.Password),
		)
	}

	client, err := mail.NewClient(m.cfg.Host, opts...)
	if err != nil {
		return fmt.Errorf("create SMTP client: %w", err)
	}

	m.logger.Info("sending report email",
		"host", m.cfg.Host,
		"port", m.cfg.Port,
		"to", m.cfg.To,
		"findings", rep.FindingCount(),
	)

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("send report email: %w", err)
	}
	return nil
}
