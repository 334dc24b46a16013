package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/testarc/internal/app"
)

func (c *CLI) newCleanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Delete kept artifacts and caches",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, _ := cmd.Flags().GetString("suite")
			cache, _ := cmd.Flags().GetBool("cache")
			all, _ := cmd.Flags().GetBool("all")

			opts := app.CleanOptions{Path: path}

			switch {
			case all:
				opts.Artifacts = true
				opts.Cache = true
			case cache:
				opts.Cache = true
			default:
				// Default behavior: clean kept artifacts
				opts.Artifacts = true
			}

			return c.app.Clean(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringP("suite", "f", ".", "Suite file, or a directory to discover it from")
	cmd.Flags().BoolP("cache", "c", false, "Clean the registry download cache")
	cmd.Flags().BoolP("all", "a", false, "Clean kept artifacts and the registry cache")

	return cmd
}
