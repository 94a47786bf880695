package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newCheckCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Load and validate the rules file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := opts.load()
			if err != nil {
				return err
			}

			labels := make([]string, 0, len(l.accounts.All()))
			for _, m := range l.accounts.All() {
				labels = append(labels, m.Label)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s: ok\n", l.path)
			fmt.Fprintf(out, "  payees:     %d\n", l.catalog.Payees().Len())
			fmt.Fprintf(out, "  categories: %d\n", l.catalog.Categories().Len())
			fmt.Fprintf(out, "  memos:      %d\n", l.catalog.Memos().Len())
			fmt.Fprintf(out, "  accounts:   %s\n", strings.Join(labels, ", "))
			fmt.Fprintf(out, "  storage:    %s\n", l.cfg.Paths.Storage)
			return nil
		},
	}
}
