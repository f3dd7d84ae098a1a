// Package mail delivers OTP emails over SMTP.
package mail

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"time"

	"github.com/rs/zerolog"
	gomail "github.com/wneessen/go-mail"

	"github.com/eduventure/auth-service/internal/metrics"
)

//go:embed templates/*.html
var templateFS embed.FS

var otpTemplate = template.Must(template.ParseFS(templateFS, "templates/otp.html"))

// Config captures SMTP relay settings.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	Brand    string
	// ValidFor is rendered in the email body.
	ValidFor time.Duration
}

// sender is the part of *gomail.Client the Mailer uses.
type sender interface {
	DialAndSendWithContext(ctx context.Context, messages ...*gomail.Msg) error
}

// Mailer sends passcode emails. It does not retry.
type Mailer struct {
	client sender
	cfg    Config
	log    zerolog.Logger
}

// NewMailer builds an SMTP client that authenticates with PLAIN over
// mandatory STARTTLS.
func NewMailer(cfg Config, log zerolog.Logger) (*Mailer, error) {
	client, err := gomail.NewClient(cfg.Host,
		gomail.WithPort(cfg.Port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(cfg.Username),
		gomail.WithPassword(cfg.Password),
		gomail.WithTLSPolicy(gomail.TLSMandatory),
	)
	if err != nil {
		return nil, fmt.Errorf("smtp client: %w", err)
	}
	return newMailer(client, cfg, log), nil
}

func newMailer(client sender, cfg Config, log zerolog.Logger) *Mailer {
	if cfg.Brand == "" {
		cfg.Brand = "Eduventure"
	}
	return &Mailer{client: client, cfg: cfg, log: log}
}

// SendOTP mails code to the given address.
func (m *Mailer) SendOTP(ctx context.Context, to, code string) error {
	msg, err := m.buildOTPMessage(to, code)
	if err != nil {
		return err
	}

	start := time.Now()
	err = m.client.DialAndSendWithContext(ctx, msg)
	result := metrics.ResultSuccess
	if err != nil {
		result = metrics.ResultFailure
	}
	metrics.MailSendDuration.WithLabelValues(result).Observe(time.Since(start).Seconds())

	if err != nil {
		m.log.Error().Err(err).Msg("otp email delivery failed")
		return fmt.Errorf("send otp email: %w", err)
	}
	m.log.Debug().Msg("otp email sent")
	return nil
}

func (m *Mailer) buildOTPMessage(to, code string) (*gomail.Msg, error) {
	msg := gomail.NewMsg()
	if err := msg.From(m.cfg.From); err != nil {
		return nil, fmt.Errorf("mail from: %w", err)
	}
	if err := msg.To(to); err != nil {
		return nil, fmt.Errorf("mail to: %w", err)
	}
	msg.Subject("Otp Validation for " + m.cfg.Brand)
	msg.SetBodyString(gomail.TypeTextPlain, "Please Use The OTP to Verify Your Email: "+code)

	var html bytes.Buffer
	err := otpTemplate.Execute(&html, struct {
		Brand    string
		Code     string
		ValidFor time.Duration
	}{Brand: m.cfg.Brand, Code: code, ValidFor: m.cfg.ValidFor})
	if err != nil {
		return nil, fmt.Errorf("render otp email: %w", err)
	}
	msg.AddAlternativeString(gomail.TypeTextHTML, html.String())
	return msg, nil
}
