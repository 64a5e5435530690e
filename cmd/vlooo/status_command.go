package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"vlooo/internal/checkpoint"
	"vlooo/internal/gateway"
	"vlooo/internal/project"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status [projectId]",
		Short: "Show conversion progress for a project",
		Long: "Status queries the backend for a project's stage, per-stage results, and " +
			"in-stage progress counters. With no argument the most recent local " +
			"conversion is shown.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			projectID := ""
			if len(args) == 1 {
				projectID = args[0]
			}
			return runStatus(cmd, ctx, projectID)
		},
	}
}

func runStatus(cmd *cobra.Command, cmdCtx *commandContext, projectID string) error {
	client, cfg, err := cmdCtx.client()
	if err != nil {
		return err
	}
	if err := client.Health(cmd.Context()); err != nil {
		return fmt.Errorf("backend unreachable at %s: %w", cfg.Backend.BaseURL, err)
	}

	if projectID == "" {
		checkpoints, err := checkpoint.Open(cfg)
		if err != nil {
			return fmt.Errorf("open checkpoint store: %w", err)
		}
		defer checkpoints.Close()
		cp, err := checkpoints.LoadLatest(cmd.Context())
		if err != nil {
			return fmt.Errorf("load latest conversion: %w", err)
		}
		if cp == nil {
			return errors.New("no local conversions; pass a project id")
		}
		projectID = cp.ProjectID
	}

	status, err := client.ProjectStatus(cmd.Context(), projectID)
	if err != nil {
		return fmt.Errorf("fetch status: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "project %s\n", status.ProjectID)
	stage, _ := project.ParseStage(status.Stage)
	fmt.Fprintf(out, "stage   %s (%d%%)\n", stage.Label(), stage.Progress())
	if status.Current > 0 && status.Total > 0 {
		fmt.Fprintf(out, "detail  %d/%d %s\n", status.Current, status.Total, status.Details)
	}

	rows := make([][]string, 0, len(project.WorkStages))
	for _, workStage := range project.WorkStages {
		entry, ok := status.Results[string(workStage)]
		state := "pending"
		completed := ""
		if ok {
			state = entry.Status
			completed = entry.CompletedAt
			if entry.Error != "" {
				state = fmt.Sprintf("failed: %s", entry.Error)
			}
		}
		rows = append(rows, []string{workStage.Label(), state, completed})
	}
	fmt.Fprintln(out, renderTable([]string{"Stage", "Result", "Completed"}, rows))

	if video := renderedVideoURL(status); video != "" {
		fmt.Fprintf(out, "video   %s\n", video)
	}
	return nil
}

func renderedVideoURL(status *gateway.Status) string {
	entry, ok := status.Results[string(project.StageRendering)]
	if !ok || entry.Data == nil {
		return ""
	}
	return strings.TrimSpace(entry.Data.VideoURL)
}
