package mailer

import (
	"errors"
	"testing"

	mail "github.com/go-mail/mail/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/faculty-achievement-api/pkg/config"
)

type dialerStub struct {
	sent []*mail.Message
	err  error
}

func (d *dialerStub) DialAndSend(m ...*mail.Message) error {
	d.sent = append(d.sent, m...)
	return d.err
}

func TestNewRequiresHostAndFrom(t *testing.T) {
	_, err := New(config.SMTPConfig{Host: "smtp.example.org"})
	require.Error(t, err)

	m, err := New(config.SMTPConfig{Host: "smtp.example.org", From: "no-reply@example.org"})
	require.NoError(t, err)
	require.NotNil(t, m)
}

func TestSendBuildsHeaders(t *testing.T) {
	stub := &dialerStub{}
	m := &SMTPMailer{from: "no-reply@example.org", dialer: stub}

	require.NoError(t, m.Send(Message{To: []string{"faculty@example.org"}, Subject: "Approved", HTML: "<p>ok</p>"}))
	require.Len(t, stub.sent, 1)
	assert.Equal(t, []string{"faculty@example.org"}, stub.sent[0].GetHeader("To"))
	assert.Equal(t, []string{"Approved"}, stub.sent[0].GetHeader("Subject"))
}

func TestSendSkipsEmptyRecipients(t *testing.T) {
	stub := &dialerStub{err: errors.New("should not dial")}
	m := &SMTPMailer{from: "no-reply@example.org", dialer: stub}

	require.NoError(t, m.Send(Message{Subject: "nobody"}))
	assert.Empty(t, stub.sent)
}
