package plugins

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/svckit/core/adapter"
	"github.com/kilianp07/svckit/core/container"
	"github.com/kilianp07/svckit/infra/mail"
	"github.com/kilianp07/svckit/infra/pdf"
)

func TestBuiltinAdapters(t *testing.T) {
	assert.Equal(t, []string{"influx", "mail", "mqtt", "pdf", "redis", "sentry"}, Adapters.Names())
	assert.Error(t, RegisterAdapter("pdf", func(Env) container.Builder { return nil }))
}

func TestBuiltin_PDFAndMail(t *testing.T) {
	f, ok := Adapters.Lookup("pdf")
	require.True(t, ok)
	v, err := f(Env{})(context.Background(), "doc", adapter.Section{"enableXvfb": "1", "dpi": 300})
	require.NoError(t, err)
	doc := v.(*pdf.Document)
	assert.True(t, doc.CommandOptions().EnableXvfb)
	assert.NotContains(t, doc.Options(), "enableXvfb")

	f, ok = Adapters.Lookup("mail")
	require.True(t, ok)
	v, err = f(Env{})(context.Background(), "mailer", adapter.Section{"from": "a@x.com"})
	require.NoError(t, err)
	svc := v.(*mail.Service)
	assert.Equal(t, "mail", svc.Params().Transport)
	assert.Equal(t, []mail.Address{{Email: "a@x.com"}}, svc.Message().From())
}

func TestBuiltin_Sentry(t *testing.T) {
	f, _ := Adapters.Lookup("sentry")
	_, err := f(Env{})(context.Background(), "errors", adapter.Section{"dsn": "::bad"})
	var ce *adapter.ConstructionError
	assert.ErrorAs(t, err, &ce)
}
