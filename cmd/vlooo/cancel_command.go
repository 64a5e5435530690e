package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"vlooo/internal/checkpoint"
)

func newCancelCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "cancel [projectId]",
		Short: "Cancel a conversion and delete its history",
		Long: "Cancel deletes the backend checkpoint for a project and clears the local " +
			"conversion history. Local cleanup happens even when the backend is " +
			"unreachable.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			projectID := ""
			if len(args) == 1 {
				projectID = args[0]
			}
			return runCancel(cmd, ctx, projectID)
		},
	}
}

func runCancel(cmd *cobra.Command, cmdCtx *commandContext, projectID string) error {
	client, cfg, err := cmdCtx.client()
	if err != nil {
		return err
	}

	checkpoints, err := checkpoint.Open(cfg)
	if err != nil {
		return fmt.Errorf("open checkpoint store: %w", err)
	}
	defer checkpoints.Close()

	if projectID == "" {
		cp, err := checkpoints.LoadLatest(cmd.Context())
		if err != nil {
			return fmt.Errorf("load latest conversion: %w", err)
		}
		if cp == nil {
			return errors.New("no local conversions; pass a project id")
		}
		projectID = cp.ProjectID
	}

	budget := 2 * time.Second
	if cfg.Workflow.CancelTimeoutSeconds > 0 {
		budget = time.Duration(cfg.Workflow.CancelTimeoutSeconds) * time.Second
	}
	deleteCtx, cancel := context.WithTimeout(cmd.Context(), budget)
	defer cancel()
	if err := client.DeleteProject(deleteCtx, projectID); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "warn: backend cancel failed: %v\n", err)
	}

	if err := checkpoints.Delete(cmd.Context(), projectID); err != nil {
		return fmt.Errorf("delete local checkpoint: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "cancelled %s\n", projectID)
	return nil
}
