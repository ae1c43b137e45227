package infra

import (
	"bytes"
	"fmt"
	"net/smtp"

	"github.com/jordan-wright/email"
)

// Mailer sends transactional mail (discount-authorization alerts, romaneio
// copies) through a plain SMTP relay.
type Mailer struct {
	host     string
	port     int
	username string
	password string
	from     string
}

func NewMailer(host string, port int, username, password, from string) *Mailer {
	return &Mailer{host: host, port: port, username: username, password: password, from: from}
}

// Send delivers an HTML email with optional attachments.
func (m *Mailer) Send(to []string, subject, htmlBody string, attachments map[string][]byte) error {
	e := email.NewEmail()
	e.From = m.from
	e.To = to
	e.Subject = subject
	e.HTML = []byte(htmlBody)

	for name, data := range attachments {
		if _, err := e.Attach(bytes.NewReader(data), name, "application/pdf"); err != nil {
			return fmt.Errorf("smtp: attach %s: %w", name, err)
		}
	}

	addr := fmt.Sprintf("%s:%d", m.host, m.port)
	auth := smtp.PlainAuth("", m.username, m.password, m.host)
	if err := e.Send(addr, auth); err != nil {
		return fmt.Errorf("smtp: send: %w", err)
	}
	return nil
}
