package mailer

import (
	"errors"
	"net"
	"net/smtp"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/hamid26126/CashMate/internal/config"
	"github.com/hamid26126/CashMate/internal/models"
	"github.com/jordan-wright/email"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendReminder(t *testing.T) {
	logger, _ := logtest.NewNullLogger()
	s := NewSender(config.SMTPConfig{Host: "smtp.example.com", Port: 587, Username: "bot", Password: "pw", From: "CashMate <noreply@example.com>"}, logger)

	var sent *email.Email
	var sentAddr string
	s.send = func(e *email.Email, addr string, auth smtp.Auth) error {
		sent, sentAddr = e, addr
		assert.NotNil(t, auth)
		return nil
	}

	user := &models.User{FullName: "Sam Rivera", Email: "sam@example.com"}
	reminder := &models.Reminder{
		ID:          "r1",
		Title:       "Pay rent",
		Description: "Transfer to landlord",
		Date:        time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC),
		Time:        "09:30",
	}

	require.NoError(t, s.SendReminder(user, reminder))
	assert.Equal(t, "smtp.example.com:587", sentAddr)
	assert.Equal(t, []string{"sam@example.com"}, sent.To)
	assert.Equal(t, "Reminder: Pay rent", sent.Subject)
	assert.Contains(t, string(sent.Text), "2026-05-01 at 09:30")
	assert.Contains(t, string(sent.Text), "Transfer to landlord")
}

func TestSendReminder_Failure(t *testing.T) {
	logger, hook := logtest.NewNullLogger()
	s := NewSender(config.SMTPConfig{Host: "smtp.example.com", Port: 25, From: "noreply@example.com"}, logger)
	s.send = func(*email.Email, string, smtp.Auth) error { return errors.New("connection refused") }

	err := s.SendReminder(&models.User{Email: "sam@example.com"}, &models.Reminder{ID: "r1", Title: "x"})
	assert.ErrorContains(t, err, "connection refused")
	assert.Len(t, hook.Entries, 1)
}

// fakeSMTP accepts one session. With stall set it never sends a greeting;
// otherwise it speaks just enough SMTP to take a message and reports the
// DATA payload on the returned channel.
func fakeSMTP(t *testing.T, stall bool) (host string, port int, data <-chan string) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	out := make(chan string, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		if stall {
			time.Sleep(5 * time.Second)
			return
		}
		tp := textproto.NewConn(conn)
		_ = tp.PrintfLine("220 localhost ready")
		for {
			line, err := tp.ReadLine()
			if err != nil {
				return
			}
			switch verb := strings.ToUpper(strings.Fields(line + " x")[0]); verb {
			case "EHLO", "HELO":
				_ = tp.PrintfLine("250 localhost")
			case "DATA":
				_ = tp.PrintfLine("354 go ahead")
				body, err := tp.ReadDotLines()
				if err != nil {
					return
				}
				out <- strings.Join(body, "\n")
				_ = tp.PrintfLine("250 queued")
			case "QUIT":
				_ = tp.PrintfLine("221 bye")
				return
			default:
				_ = tp.PrintfLine("250 ok")
			}
		}
	}()

	addr := ln.Addr().(*net.TCPAddr)
	return addr.IP.String(), addr.Port, out
}

func TestSendReminder_DeliversOverSMTP(t *testing.T) {
	host, port, data := fakeSMTP(t, false)
	logger, _ := logtest.NewNullLogger()
	s := NewSender(config.SMTPConfig{Host: host, Port: port, From: "CashMate <noreply@example.com>", Timeout: 2 * time.Second}, logger)

	reminder := &models.Reminder{ID: "r1", Title: "Pay rent", Date: time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC), Time: "09:30"}
	require.NoError(t, s.SendReminder(&models.User{FullName: "Sam Rivera", Email: "sam@example.com"}, reminder))

	select {
	case body := <-data:
		assert.Contains(t, body, "Subject: Reminder: Pay rent")
	case <-time.After(time.Second):
		t.Fatal("server did not receive the message")
	}
}

func TestSendReminder_StalledServerTimesOut(t *testing.T) {
	host, port, _ := fakeSMTP(t, true)
	logger, hook := logtest.NewNullLogger()
	s := NewSender(config.SMTPConfig{Host: host, Port: port, From: "noreply@example.com", Timeout: 200 * time.Millisecond}, logger)

	start := time.Now()
	err := s.SendReminder(&models.User{Email: "sam@example.com"}, &models.Reminder{ID: "r1", Title: "Pay rent"})
	require.Error(t, err)
	assert.Less(t, time.Since(start), 2*time.Second)

	var netErr net.Error
	require.ErrorAs(t, err, &netErr)
	assert.True(t, netErr.Timeout())
	assert.Len(t, hook.Entries, 1)
}
