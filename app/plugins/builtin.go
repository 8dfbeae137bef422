package plugins

import (
	"context"

	"github.com/kilianp07/svckit/core/adapter"
	"github.com/kilianp07/svckit/core/container"
	"github.com/kilianp07/svckit/infra/cache"
	"github.com/kilianp07/svckit/infra/influx"
	"github.com/kilianp07/svckit/infra/mail"
	"github.com/kilianp07/svckit/infra/monitoring"
	"github.com/kilianp07/svckit/infra/mqtt"
	"github.com/kilianp07/svckit/infra/pdf"
)

func init() {
	Adapters.MustRegister("redis", func(Env) container.Builder {
		return func(ctx context.Context, _ string, opts adapter.Section) (any, error) {
			return cache.Build(ctx, cache.Section(opts, nil), cache.DefaultDriver)
		}
	})
	Adapters.MustRegister("mail", func(env Env) container.Builder {
		return func(_ context.Context, name string, opts adapter.Section) (any, error) {
			return mail.New(adapter.Merge(mail.Defaults(), opts), mail.WithLogger(env.logger(name)))
		}
	})
	Adapters.MustRegister("pdf", func(Env) container.Builder {
		return func(_ context.Context, _ string, opts adapter.Section) (any, error) {
			return pdf.Build(opts)
		}
	})
	Adapters.MustRegister("mqtt", func(env Env) container.Builder {
		return func(ctx context.Context, name string, opts adapter.Section) (any, error) {
			return mqtt.Build(ctx, mqtt.Section(opts, nil),
				mqtt.WithLogger(env.logger(name)), mqtt.WithMonitor(env.monitor()))
		}
	})
	Adapters.MustRegister("influx", func(env Env) container.Builder {
		return func(ctx context.Context, name string, opts adapter.Section) (any, error) {
			return influx.Build(ctx, influx.Section(opts, nil), env.logger(name))
		}
	})
	Adapters.MustRegister("sentry", func(Env) container.Builder {
		return func(_ context.Context, _ string, opts adapter.Section) (any, error) {
			return monitoring.Build(adapter.Merge(monitoring.Defaults(), opts))
		}
	})
}
