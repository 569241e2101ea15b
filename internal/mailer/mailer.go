package mailer

import (
	"gopkg.in/gomail.v2"
)

// Mailer sends transactional mail over SMTP.
type Mailer struct {
	dialer *gomail.Dialer
	from   string
}

func New(host string, port int, user, pass string) *Mailer {
	return &Mailer{
		dialer: gomail.NewDialer(host, port, user, pass),
		from:   user,
	}
}

func (m *Mailer) Send(to, subject, text string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", text)
	return m.dialer.DialAndSend(msg)
}
