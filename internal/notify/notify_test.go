package notify

import (
	"context"
	"errors"
	"net/smtp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/travel-booking/internal/config"
)

func TestNewPicksLogSenderWithoutHost(t *testing.T) {
	assert.IsType(t, LogSender{}, New(config.SMTPConfig{}))
	assert.IsType(t, &SMTPSender{}, New(config.SMTPConfig{Host: "smtp.example.com", Port: 587}))
}

func TestWelcome(t *testing.T) {
	m := Welcome("Ana", "ana@example.com")
	assert.Equal(t, "ana@example.com", m.To)
	assert.Equal(t, "Welcome Ana!", m.Subject)
	assert.Contains(t, m.Body, "This email was sent to 'ana@example.com'")
}

func TestSMTPSenderSend(t *testing.T) {
	var (
		gotAddr string
		gotTo   []string
		gotMsg  string
	)
	s := &SMTPSender{
		cfg: config.SMTPConfig{Host: "smtp.example.com", Port: 2525, Username: "bot", Password: "pw", From: "bot@example.com"},
		send: func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
			gotAddr, gotTo, gotMsg = addr, to, string(msg)
			assert.NotNil(t, a)
			assert.Equal(t, "bot@example.com", from)
			return nil
		},
	}

	require.NoError(t, s.Send(context.Background(), Welcome("Ana", "ana@example.com")))
	assert.Equal(t, "smtp.example.com:2525", gotAddr)
	assert.Equal(t, []string{"ana@example.com"}, gotTo)
	assert.Contains(t, gotMsg, "Subject: Welcome Ana!\r\n")
	assert.Contains(t, gotMsg, "Hi, Ana\r\n")
}

func TestSMTPSenderRejectsHeaderInjection(t *testing.T) {
	called := false
	s := &SMTPSender{
		cfg:  config.SMTPConfig{Host: "smtp.example.com", Port: 25},
		send: func(string, smtp.Auth, string, []string, []byte) error { called = true; return nil },
	}
	err := s.Send(context.Background(), Message{To: "a@example.com\r\nBcc: x@example.com", Subject: "hi"})
	assert.Error(t, err)
	assert.False(t, called)
}

func TestSMTPSenderWrapsErrors(t *testing.T) {
	boom := errors.New("connection refused")
	s := &SMTPSender{
		cfg:  config.SMTPConfig{Host: "smtp.example.com", Port: 25},
		send: func(string, smtp.Auth, string, []string, []byte) error { return boom },
	}
	assert.ErrorIs(t, s.Send(context.Background(), Welcome("a", "a@example.com")), boom)
}
