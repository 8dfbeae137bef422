package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kilianp07/svckit/app"
	"github.com/kilianp07/svckit/core/container"
	"github.com/kilianp07/svckit/infra/pdf"
)

var pdfCmd = &cobra.Command{
	Use:   "pdf <service> <input> <output>",
	Short: "Convert a page to PDF with a configured pdf service",
	Args:  cobra.ExactArgs(3),
	RunE:  runPDF,
}

func init() {
	rootCmd.AddCommand(pdfCmd)
}

func runPDF(cmd *cobra.Command, args []string) error {
	return withApp(func(ctx context.Context, a *app.App) error {
		doc, err := container.Resolve[*pdf.Document](ctx, a.Container, args[0])
		if err != nil {
			return err
		}
		if err := doc.AddPage(args[1], nil).SaveAs(ctx, args[2]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", args[2])
		return nil
	})
}
