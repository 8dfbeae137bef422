package mail

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/svckit/core/adapter"
)

func TestProxy_PropertyThenInvokeEqualsDirectCall(t *testing.T) {
	s := newService(t, adapter.Section{
		"host":      "smtp.local",
		"from":      "a@x.com",
		"from_name": "A",
		"sendmail":  "/opt/sendmail -t",
		"extra":     []any{"-f", "bounce@x.com"},
	})
	cases := map[string][]any{
		"message":            nil,
		"smtp_transport":     {"arg.local", 587, "tls"},
		"sendmail_transport": nil,
		"mail_transport":     {"-odq"},
		"mailer":             nil,
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			direct, err := s.Proxy().Call(name, in...)
			require.NoError(t, err)

			bound, ok := s.Proxy().Property(name)
			require.True(t, ok)
			viaProperty, err := bound.Invoke(in...)
			require.NoError(t, err)

			assert.IsType(t, direct, viaProperty)
			assert.Equal(t, direct, viaProperty)
		})
	}
}

func TestProxy_BoundState(t *testing.T) {
	p := newService(t, nil).Proxy()
	_, bound := p.Class()
	assert.False(t, bound)

	img, ok := p.Property("image")
	require.True(t, ok)
	class, bound := img.Class()
	assert.True(t, bound)
	assert.Equal(t, "MailImage", class)

	// bound proxies have no properties and stay usable
	same, ok := img.Property("anything")
	assert.False(t, ok)
	assert.Equal(t, img, same)
	v, err := same.Call("message")
	require.NoError(t, err)
	assert.IsType(t, &Message{}, v)

	// the unbound proxy is not changed by Property
	_, bound = p.Class()
	assert.False(t, bound)
}

func TestProxy_BoundCallsStaticMethods(t *testing.T) {
	p := newService(t, nil).Proxy()
	img, _ := p.Property("image")

	v, err := img.Call("fromPath", "/tmp/logo.png")
	require.NoError(t, err)
	a := v.(*Attachment)
	assert.True(t, a.Inline)
	assert.Equal(t, "logo.png", a.Filename)
	assert.Equal(t, "/tmp/logo.png", a.Path())

	att, _ := p.Property("attachment")
	v, err = att.Invoke([]byte("data"), "data.bin", "application/octet-stream")
	require.NoError(t, err)
	assert.Equal(t, "data.bin", v.(*Attachment).Filename)

	// synthetic constructors win even on a bound proxy
	v, err = img.Call("message")
	require.NoError(t, err)
	assert.IsType(t, &Message{}, v)
}

func TestProxy_UnknownClass(t *testing.T) {
	p := newService(t, nil).Proxy()

	_, err := p.Call("carrier_pigeon")
	var uc *adapter.UnknownClassError
	require.ErrorAs(t, err, &uc)
	assert.Equal(t, "MailCarrierPigeon", uc.Name)

	bound, _ := p.Property("carrier_pigeon")
	_, err = bound.Invoke()
	require.ErrorAs(t, err, &uc)
	assert.Equal(t, "MailCarrierPigeon", uc.Name)

	img, _ := p.Property("image")
	_, err = img.Call("nope")
	require.ErrorAs(t, err, &uc)
	assert.Equal(t, "MailImage::nope", uc.Name)

	_, err = p.Invoke()
	assert.Error(t, err)
}

func TestProxy_UnboundFallsBackToClassFactory(t *testing.T) {
	p := newService(t, nil).Proxy()
	v, err := p.Call("attachment", "inline data", "a.txt", "text/plain")
	require.NoError(t, err)
	assert.Equal(t, "a.txt", v.(*Attachment).Filename)

	tr, err := p.Call("smtp_transport")
	require.NoError(t, err)
	m, err := CallStatic("MailMailer", DefaultFactory, tr)
	require.NoError(t, err)
	assert.Same(t, tr, m.(*Mailer).Transport())

	_, err = CallStatic("MailMailer", DefaultFactory, "not a transport")
	assert.ErrorIs(t, err, ErrBadArgument)
}
