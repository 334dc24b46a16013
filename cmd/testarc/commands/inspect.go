package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/testarc/internal/app"
)

func (c *CLI) newInspectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect <name> <symbol>...",
		Short: "Look up symbols in a kept artifact",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("suite")

			lookups, err := c.app.Inspect(cmd.Context(), app.InspectOptions{
				Path:    path,
				Name:    args[0],
				Symbols: args[1:],
			})
			if err != nil {
				return err
			}

			if c.json {
				return writeJSON(cmd.OutOrStdout(), lookups)
			}
			return writeLookups(cmd.OutOrStdout(), lookups, "")
		},
	}
	cmd.Flags().StringP("suite", "f", ".", "Suite file, or a directory to discover it from")
	return cmd
}
