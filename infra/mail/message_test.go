package mail

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalize(t *testing.T) {
	cases := map[string]string{
		"smtp_transport":   "SmtpTransport",
		"message":          "Message",
		"SmtpTransport":    "SmtpTransport",
		"mail__transport_": "MailTransport",
		"":                 "",
	}
	for in, want := range cases {
		assert.Equal(t, want, Canonicalize(in), in)
	}
}

func TestMessage_Msg(t *testing.T) {
	m := NewMessage().
		SetFrom("a@x.com", "A").
		SetReplyTo("r@x.com", "").
		SetSender("s@x.com").
		SetReturnTo("bounce@x.com").
		SetTo("to@x.com", "To").
		AddCc("cc@x.com", "").
		SetBcc("b@x.com", "").
		SetSubject("Hello").
		SetBody("plain body").
		AddPart("<p>html body</p>", "text/html").
		Attach(NewAttachment([]byte("report"), "report.txt", "text/plain"))

	msg, err := m.Msg()
	require.NoError(t, err)

	var buf bytes.Buffer
	_, err = msg.WriteTo(&buf)
	require.NoError(t, err)
	raw := buf.String()
	assert.Contains(t, raw, `From: "A" <a@x.com>`)
	assert.Contains(t, raw, "Reply-To: <r@x.com>")
	assert.Contains(t, raw, "Sender: <s@x.com>")
	assert.Contains(t, raw, "Subject: Hello")
	assert.Contains(t, raw, "plain body")
	assert.Contains(t, raw, "report.txt")
	assert.NotContains(t, raw, "b@x.com")

	assert.Equal(t, []string{"to@x.com", "cc@x.com", "b@x.com"}, m.Recipients())
}

func TestMessage_InvalidRecipientsAreReportedNotFatal(t *testing.T) {
	m := NewMessage().SetFrom("a@x.com", "").AddTo("ok@x.com", "").AddTo("not an address", "")
	msg, failed, err := m.build()
	require.NoError(t, err)
	require.NotNil(t, msg)
	assert.Equal(t, []string{"not an address"}, failed)

	_, _, err = NewMessage().SetFrom("a@x.com", "").build()
	assert.ErrorIs(t, err, ErrNoRecipients)
}

func TestMessage_SetBodyKeepsContentType(t *testing.T) {
	m := NewMessage().SetBody("<b>x</b>", "text/html")
	assert.Equal(t, "text/html", m.ContentType())
	m.SetBody("y")
	assert.Equal(t, "text/html", m.ContentType())
	assert.Equal(t, "y", m.Body())
}
