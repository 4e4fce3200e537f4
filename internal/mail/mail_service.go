package mail

import (
	"fmt"
	"net/smtp"

	"github.com/jordan-wright/email"

	"yamdb/internal/config"
)

// Mailer delivers the signup confirmation code. Injected into the auth
// service so tests can swap in a recorder.
type Mailer interface {
	SendConfirmationCode(to, username, code string) error
}

type SMTPMailer struct {
	host string
	port int
	user string
	pass string
	from string
}

func NewSMTPMailer(cfg *config.Config) *SMTPMailer {
	return &SMTPMailer{
		host: cfg.SMTPHost,
		port: cfg.SMTPPort,
		user: cfg.SMTPUser,
		pass: cfg.SMTPPass,
		from: cfg.MailFrom,
	}
}

func (s *SMTPMailer) SendConfirmationCode(to, username, code string) error {
	e := email.NewEmail()
	e.From = s.from
	e.To = []string{to}
	e.Subject = fmt.Sprintf("Welcome to YaMDb, %s!", username)
	e.Text = []byte(fmt.Sprintf("Your confirmation_code: %s", code))

	addr := fmt.Sprintf("%s:%d", s.host, s.port)
	var auth smtp.Auth
	if s.user != "" {
		auth = smtp.PlainAuth("", s.user, s.pass, s.host)
	}
	if err := e.Send(addr, auth); err != nil {
		return fmt.Errorf("send confirmation mail: %w", err)
	}
	return nil
}
