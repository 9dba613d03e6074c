// Package mail wraps outbound email behind a narrow interface. Notification
// failures are always best-effort for callers: the complaint and auth services
// log send errors and never abort the primary operation.
package mail

import (
	"fmt"
	"log"
	"strconv"

	"gopkg.in/gomail.v2"
)

// Mailer sends plain-text notification emails.
type Mailer interface {
	Send(to, subject, body string) error
	// Enabled reports whether mail actually leaves the process. When false,
	// the send-otp endpoint returns the code inline for testing.
	Enabled() bool
}

// SMTPMailer delivers through an SMTP relay.
type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPMailer(host, port, username, password, from string) *SMTPMailer {
	p, err := strconv.Atoi(port)
	if err != nil {
		p = 587
	}
	return &SMTPMailer{
		dialer: gomail.NewDialer(host, p, username, password),
		from:   from,
	}
}

func (m *SMTPMailer) Send(to, subject, body string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)
	msg.AddAlternative("text/html", fmt.Sprintf("<p style=\"font-family: Arial, sans-serif;\">%s</p>", body))

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", to, err)
	}
	return nil
}

func (m *SMTPMailer) Enabled() bool { return true }

// DisabledMailer is used when SMTP credentials are not configured. Sends are
// logged and silently succeed.
type DisabledMailer struct{}

func (DisabledMailer) Send(to, subject, _ string) error {
	log.Printf("mail disabled, skipping %q to %s", subject, to)
	return nil
}

func (DisabledMailer) Enabled() bool { return false }
