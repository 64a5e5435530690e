package main

import (
	"github.com/spf13/cobra"
)

func newRetryCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "retry",
		Short: "Re-run the failed stage of the most recent conversion",
		Long: "Retry resumes the most recent unfinished conversion and re-runs the stage " +
			"that failed. Stages that already completed are reused, not repeated.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(cmd, ctx, "", "", true)
		},
	}
}
