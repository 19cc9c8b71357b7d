// Package mailer sends reminder emails over SMTP.
package mailer

import (
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/mail"
	"net/smtp"
	"strings"
	"time"

	"github.com/hamid26126/CashMate/internal/config"
	"github.com/hamid26126/CashMate/internal/models"
	"github.com/jordan-wright/email"
	"github.com/sirupsen/logrus"
)

// Sender handles sending emails via SMTP
type Sender struct {
	cfg    config.SMTPConfig
	logger logrus.FieldLogger
	send   func(e *email.Email, addr string, auth smtp.Auth) error
}

const defaultSendTimeout = 10 * time.Second

// NewSender creates a new email sender. Every delivery, from dial to QUIT,
// must finish within cfg.Timeout.
func NewSender(cfg config.SMTPConfig, logger logrus.FieldLogger) *Sender {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultSendTimeout
	}
	return &Sender{
		cfg:    cfg,
		logger: logger.WithField("component", "mailer"),
		send: func(e *email.Email, addr string, auth smtp.Auth) error {
			return sendWithDeadline(e, addr, auth, timeout)
		},
	}
}

// SendReminder emails a fired reminder to the user.
func (s *Sender) SendReminder(user *models.User, reminder *models.Reminder) error {
	e := reminderEmail(s.cfg.From, user, reminder)

	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	var auth smtp.Auth
	if s.cfg.Username != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}
	if err := s.send(e, addr, auth); err != nil {
		s.logger.WithError(err).WithField("reminder_id", reminder.ID).Error("failed to send reminder email")
		return fmt.Errorf("failed to send reminder email: %w", err)
	}

	s.logger.WithField("reminder_id", reminder.ID).Info("reminder email sent")
	return nil
}

func reminderEmail(from string, user *models.User, reminder *models.Reminder) *email.Email {
	e := email.NewEmail()
	e.From = from
	e.To = []string{user.Email}
	e.Subject = "Reminder: " + reminder.Title

	name := user.FullName
	if name == "" {
		name = "there"
	}

	var body strings.Builder
	fmt.Fprintf(&body, "Hi %s,\n\n", name)
	fmt.Fprintf(&body, "This is your CashMate reminder \"%s\" scheduled for %s at %s.\n",
		reminder.Title, reminder.Date.Format("2006-01-02"), reminder.Time)
	if reminder.Description != "" {
		fmt.Fprintf(&body, "\n%s\n", reminder.Description)
	}
	body.WriteString("\nBest regards,\nCashMate")
	e.Text = []byte(body.String())
	return e
}

// sendWithDeadline runs the SMTP exchange on a connection whose deadline
// bounds the whole conversation, so a stalled server cannot hold the caller.
func sendWithDeadline(e *email.Email, addr string, auth smtp.Auth, timeout time.Duration) error {
	from, err := mail.ParseAddress(e.From)
	if err != nil {
		return fmt.Errorf("invalid sender address: %w", err)
	}
	recipients := make([]string, 0, len(e.To)+len(e.Cc)+len(e.Bcc))
	for _, list := range [][]string{e.To, e.Cc, e.Bcc} {
		for _, r := range list {
			a, err := mail.ParseAddress(r)
			if err != nil {
				return fmt.Errorf("invalid recipient %q: %w", r, err)
			}
			recipients = append(recipients, a.Address)
		}
	}
	if len(recipients) == 0 {
		return errors.New("no recipients")
	}
	msg, err := e.Bytes()
	if err != nil {
		return err
	}

	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return err
	}
	if err := conn.SetDeadline(time.Now().Add(timeout)); err != nil {
		conn.Close()
		return err
	}

	host, _, _ := net.SplitHostPort(addr)
	c, err := smtp.NewClient(conn, host)
	if err != nil {
		conn.Close()
		return err
	}
	defer c.Close()

	if ok, _ := c.Extension("STARTTLS"); ok {
		if err := c.StartTLS(&tls.Config{ServerName: host}); err != nil {
			return err
		}
	}
	if auth != nil {
		if ok, _ := c.Extension("AUTH"); ok {
			if err := c.Auth(auth); err != nil {
				return err
			}
		}
	}
	if err := c.Mail(from.Address); err != nil {
		return err
	}
	for _, r := range recipients {
		if err := c.Rcpt(r); err != nil {
			return err
		}
	}
	w, err := c.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return c.Quit()
}
