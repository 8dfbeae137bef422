package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kilianp07/svckit/app"
	"github.com/kilianp07/svckit/core/container"
	"github.com/kilianp07/svckit/infra/mail"
)

var (
	mailTo     []string
	mailParams []string
)

var mailCmd = &cobra.Command{
	Use:   "mail <service> <template>",
	Short: "Render a mail template and send it",
	Args:  cobra.ExactArgs(2),
	RunE:  runMail,
}

func init() {
	mailCmd.Flags().StringSliceVar(&mailTo, "to", nil, "recipient address (repeatable)")
	mailCmd.Flags().StringArrayVar(&mailParams, "param", nil, "template parameter key=value (repeatable)")
	_ = mailCmd.MarkFlagRequired("to")
	rootCmd.AddCommand(mailCmd)
}

func parseParams(raw []string) (map[string]any, error) {
	params := make(map[string]any, len(raw))
	for _, kv := range raw {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("bad parameter %q, want key=value", kv)
		}
		params[k] = v
	}
	return params, nil
}

func runMail(cmd *cobra.Command, args []string) error {
	params, err := parseParams(mailParams)
	if err != nil {
		return err
	}
	return withApp(func(ctx context.Context, a *app.App) error {
		svc, err := container.Resolve[*mail.Service](ctx, a.Container, args[0])
		if err != nil {
			return err
		}
		n, failed, err := svc.SendFromTemplate(ctx, a.Templates, args[1], params, nil, func(m *mail.Message) {
			for _, to := range mailTo {
				m.AddTo(to, "")
			}
		})
		if errors.Is(err, mail.ErrNothingRendered) {
			return fmt.Errorf("template %s rendered nothing, no mail sent", args[1])
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "sent to %d recipient(s)\n", n)
		for _, f := range failed {
			fmt.Fprintf(cmd.OutOrStdout(), "rejected %s\n", f)
		}
		return nil
	})
}
