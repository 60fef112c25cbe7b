package notify

import (
	"context"
	"crypto/tls"
	"fmt"

	mail "github.com/go-mail/mail"
	"go.uber.org/zap"
)

// SMTP delivers transactional messages directly when no messaging service is configured.
// Events and profile updates have no SMTP equivalent and are only logged.
type SMTP struct {
	Host string
	Port int
	User string
	Pass string
	From string

	log    *zap.SugaredLogger
	dialer func(host string, port int, user, pass string) mail.SendCloser
}

func NewSMTP(host string, port int, user, pass, from string, log *zap.SugaredLogger) *SMTP {
	return &SMTP{Host: host, Port: port, User: user, Pass: pass, From: from, log: log}
}

func (s *SMTP) SendEvent(_ context.Context, identity, name string, data map[string]any) error {
	s.log.Debugw("event (smtp backend, not delivered)", "to", identity, "event", name, "data", data)
	return nil
}

func (s *SMTP) Identify(_ context.Context, identity string, attrs map[string]any) error {
	s.log.Debugw("identify (smtp backend, not delivered)", "to", identity, "attrs", attrs)
	return nil
}

func (s *SMTP) SendTransactional(_ context.Context, identity, templateID string, data map[string]any) error {
	m := s.message(identity, templateID, data)
	if s.dialer != nil {
		sc := s.dialer(s.Host, s.Port, s.User, s.Pass)
		defer sc.Close()
		return mail.Send(sc, m)
	}
	d := mail.NewDialer(s.Host, s.Port, s.User, s.Pass)
	d.TLSConfig = &tls.Config{ServerName: s.Host}
	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

func (s *SMTP) message(to, templateID string, data map[string]any) *mail.Message {
	m := mail.NewMessage()
	m.SetHeader("From", s.From)
	m.SetHeader("To", to)
	if link, ok := data["confirmation_url"].(string); ok {
		m.SetHeader("Subject", "Your portal sign-in link")
		m.SetBody("text/plain", "Use the link below to sign in. It expires in 24 hours and works once.\n\n"+link+"\n")
		m.AddAlternative("text/html", `<p>Use the link below to sign in. It expires in 24 hours and works once.</p><p><a href="`+link+`">Sign in</a></p>`)
		return m
	}
	m.SetHeader("Subject", "Portal notification")
	m.SetBody("text/plain", fmt.Sprintf("template %s\n%v\n", templateID, data))
	return m
}
