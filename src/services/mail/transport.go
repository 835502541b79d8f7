package mail

import (
	"fmt"
	"strings"

	"Backend-PMS/src/config"

	gomail "gopkg.in/gomail.v2"
)

// Envelope is one rendered outgoing mail. Text, when set, becomes the
// plain-text part and HTML its alternative.
type Envelope struct {
	To      string
	Subject string
	HTML    string
	Text    string
}

// Transport delivers rendered mail. *SMTPTransport is the production one.
type Transport interface {
	Deliver(env Envelope) error
}

// SMTPTransport delivers through gomail. Port 465 is implicit TLS, every
// other port negotiates STARTTLS.
type SMTPTransport struct {
	from   string
	dialer *gomail.Dialer
}

// NewSMTPTransport fails when any SMTP_* setting is missing.
func NewSMTPTransport(cfg config.SMTP) (*SMTPTransport, error) {
	if missing := cfg.Missing(); len(missing) > 0 {
		return nil, fmt.Errorf("missing SMTP env: %v", strings.Join(missing, ", "))
	}
	d := gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Pass)
	d.SSL = cfg.Port == 465
	return &SMTPTransport{from: cfg.From, dialer: d}, nil
}

func (t *SMTPTransport) message(env Envelope) *gomail.Message {
	m := gomail.NewMessage()
	m.SetHeader("From", t.from)
	m.SetHeader("To", env.To)
	m.SetHeader("Subject", env.Subject)
	if env.Text == "" {
		m.SetBody("text/html", env.HTML)
		return m
	}
	m.SetBody("text/plain", env.Text)
	m.AddAlternative("text/html", env.HTML)
	return m
}

func (t *SMTPTransport) Deliver(env Envelope) error {
	return t.dialer.DialAndSend(t.message(env))
}
