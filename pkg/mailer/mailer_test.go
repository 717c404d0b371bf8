package mailer

import (
	"context"
	"errors"
	"net/smtp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pepdine/pep-backend/pkg/config"
)

func TestNewPicksSender(t *testing.T) {
	_, isLog := New(config.MailConfig{}, nil).(*LogSender)
	assert.True(t, isLog)

	_, isSMTP := New(config.MailConfig{SMTPHost: "smtp.example.com", SMTPPort: 587, From: "orders@pep.test"}, nil).(*SMTPSender)
	assert.True(t, isSMTP)
}

func TestSMTPSenderBuildsMessage(t *testing.T) {
	var gotAddr, gotFrom string
	var gotTo []string
	var gotBody []byte

	sender := &SMTPSender{
		cfg: config.MailConfig{SMTPHost: "smtp.example.com", SMTPPort: 2525, SMTPUser: "u", SMTPPassword: "p", From: "orders@pep.test"},
		send: func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
			gotAddr, gotFrom, gotTo, gotBody = addr, from, to, msg
			assert.NotNil(t, a)
			return nil
		},
		now: func() time.Time { return time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC) },
	}

	err := sender.Send(context.Background(), Message{To: []string{"asha@example.com"}, Subject: "Order PEP-20260301-0001", Body: "line one\nline two"})
	require.NoError(t, err)

	assert.Equal(t, "smtp.example.com:2525", gotAddr)
	assert.Equal(t, "orders@pep.test", gotFrom)
	assert.Equal(t, []string{"asha@example.com"}, gotTo)
	body := string(gotBody)
	assert.Contains(t, body, "To: asha@example.com\r\n")
	assert.Contains(t, body, "Subject: Order PEP-20260301-0001\r\n")
	assert.True(t, strings.HasSuffix(body, "\r\n\r\nline one\r\nline two"))
}

func TestSMTPSenderWrapsFailure(t *testing.T) {
	sender := &SMTPSender{
		cfg:  config.MailConfig{SMTPHost: "smtp.example.com", SMTPPort: 25, From: "orders@pep.test"},
		send: func(string, smtp.Auth, string, []string, []byte) error { return errors.New("connection refused") },
		now:  time.Now,
	}
	err := sender.Send(context.Background(), Message{To: []string{"a@b.c"}, Subject: "hi"})
	assert.ErrorContains(t, err, "connection refused")
}

func TestValidateRejectsHeaderInjection(t *testing.T) {
	sender := &LogSender{}
	assert.Error(t, sender.Send(context.Background(), Message{Subject: "x"}))
	assert.Error(t, sender.Send(context.Background(), Message{To: []string{"a@b.c\r\nBcc: x@y.z"}, Subject: "x"}))
	assert.Error(t, sender.Send(context.Background(), Message{To: []string{"a@b.c"}}))
	assert.NoError(t, sender.Send(context.Background(), Message{To: []string{"a@b.c"}, Subject: "ok"}))
}
