package cmd

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kilianp07/svckit/app"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List configured services",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, _ []string) error {
	return withApp(func(_ context.Context, a *app.App) error {
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "SERVICE\tADAPTER\tSHARED")
		for _, name := range a.Container.Names() {
			def, _ := a.Container.Definition(name)
			fmt.Fprintf(w, "%s\t%s\t%t\n", name, def.Adapter, def.Shared)
		}
		return w.Flush()
	})
}
