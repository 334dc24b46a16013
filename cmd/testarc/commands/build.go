package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/testarc/internal/app"
)

func (c *CLI) newBuildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build [suite-file]",
		Short: "Build the artifacts of a suite",
		Long: "Build the artifacts of a suite in dependency order and run their lookups.\n" +
			"Without a suite file, testarc.yaml or testarc.hcl is discovered from the current directory upwards.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			targets, _ := cmd.Flags().GetStringSlice("target")
			keep, _ := cmd.Flags().GetBool("keep")

			summaries, err := c.app.Build(cmd.Context(), app.BuildOptions{
				Path:    suitePath(args),
				Targets: targets,
				Keep:    keep,
			})
			if err != nil {
				return err
			}

			if c.json {
				return writeJSON(cmd.OutOrStdout(), summaries)
			}
			return writeSummaries(cmd.OutOrStdout(), summaries)
		},
	}
	cmd.Flags().StringSliceP("target", "t", nil, "Build only these artifacts and their named dependencies")
	cmd.Flags().BoolP("keep", "k", false, "Keep the artifacts on disk for inspect and clean")
	return cmd
}

func suitePath(args []string) string {
	if len(args) == 0 {
		return "."
	}
	return args[0]
}
