package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kilianp07/svckit/app"
	"github.com/kilianp07/svckit/config"
	"github.com/kilianp07/svckit/infra/logger"
)

var (
	cfgPath     string
	metricsAddr string
)

var rootCmd = &cobra.Command{
	Use:           "svckit",
	Short:         "Build and check configured service clients",
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "config.yaml", "configuration file")
	rootCmd.PersistentFlags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")
}

// Execute runs the CLI.
func Execute() error { return rootCmd.Execute() }

// withApp loads the configuration, builds the application and runs fn with
// a context cancelled on SIGINT or SIGTERM.
func withApp(fn func(ctx context.Context, a *app.App) error) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if metricsAddr != "" {
		cfg.Metrics.Address = metricsAddr
	}
	a, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.New("main").Errorf("close: %v", err)
		}
	}()
	go func() {
		if err := a.ServeMetrics(ctx); err != nil {
			logger.New("main").Errorf("prom server: %v", err)
		}
	}()
	return fn(ctx, a)
}
