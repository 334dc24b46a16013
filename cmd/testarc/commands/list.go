package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (c *CLI) newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list <archive>",
		Short: "Print the entries of an archive in order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := c.app.List(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if c.json {
				return writeJSON(out, entries)
			}
			for _, e := range entries {
				if _, err := fmt.Fprintln(out, e); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
