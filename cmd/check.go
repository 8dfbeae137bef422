package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kilianp07/svckit/app"
)

var checkCmd = &cobra.Command{
	Use:   "check [service...]",
	Short: "Build services and report failures",
	RunE:  runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	return withApp(func(ctx context.Context, a *app.App) error {
		failed := 0
		for _, r := range a.Check(ctx, args...) {
			if r.Err != nil {
				failed++
				fmt.Fprintf(cmd.OutOrStdout(), "FAIL %s (%s) %v\n", r.Service, r.Adapter, r.Err)
				continue
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ok   %s (%s) %s\n", r.Service, r.Adapter, r.Duration.Round(time.Microsecond))
		}
		if failed > 0 {
			return fmt.Errorf("%d service(s) failed", failed)
		}
		return nil
	})
}
