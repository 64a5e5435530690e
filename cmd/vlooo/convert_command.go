package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"vlooo/internal/checkpoint"
	"vlooo/internal/gateway"
	"vlooo/internal/logging"
	"vlooo/internal/project"
	"vlooo/internal/workflow"
)

func newConvertCommand(ctx *commandContext) *cobra.Command {
	var voiceFlag string
	var resumeFlag bool

	cmd := &cobra.Command{
		Use:   "convert [presentation.pptx]",
		Short: "Convert a presentation into a narrated video",
		Long: "Convert runs the full pipeline: parsing, script generation, voice synthesis, " +
			"and rendering. Progress is checkpointed; an interrupted conversion picks up " +
			"from the last finished stage with --resume.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			if path == "" && !resumeFlag {
				return errors.New("provide a presentation file, or --resume to continue the last conversion")
			}
			return runConvert(cmd, ctx, path, voiceFlag, resumeFlag)
		},
	}

	cmd.Flags().StringVar(&voiceFlag, "voice", "", "Synthesis voice id (see 'vlooo voices')")
	cmd.Flags().BoolVar(&resumeFlag, "resume", false, "Continue the most recent unfinished conversion")
	return cmd
}

func runConvert(cmd *cobra.Command, cmdCtx *commandContext, path, voice string, resume bool) error {
	cfg, err := cmdCtx.ensureConfig()
	if err != nil {
		return err
	}

	signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	logger = logger.With(logging.String(logging.FieldCorrelationID, uuid.NewString()))

	checkpoints, err := checkpoint.Open(cfg)
	if err != nil {
		return fmt.Errorf("open checkpoint store: %w", err)
	}
	defer checkpoints.Close()

	store := project.NewStore()
	client := gateway.NewClient(cfg)
	orch := workflow.NewOrchestrator(cfg, store, client, logger, workflow.WithCheckpoints(checkpoints))

	if resume {
		resumed, err := orch.Resume(signalCtx)
		if err != nil {
			return fmt.Errorf("resume: %w", err)
		}
		if !resumed && path == "" {
			return errors.New("no unfinished conversion to resume")
		}
	}
	if voice != "" {
		store.SetVoiceID(voice)
	}

	if err := orch.Start(signalCtx); err != nil {
		return err
	}
	defer orch.Stop()

	if path != "" {
		src, err := workflow.FileSource(path)
		if err != nil {
			return err
		}
		orch.Begin(src)
	}

	return watchConversion(signalCtx, cmd, store)
}

// watchConversion renders progress until the pipeline completes, fails, or
// the user interrupts. Interruption leaves the checkpoint in place so the
// conversion can be resumed.
func watchConversion(ctx context.Context, cmd *cobra.Command, store *project.Store) error {
	changes, unsubscribe := store.Subscribe()
	defer unsubscribe()

	display := newProgressDisplay(cmd.OutOrStdout())
	display.render(store.Snapshot())

	for {
		select {
		case <-ctx.Done():
			display.finish()
			fmt.Fprintln(cmd.OutOrStdout(), "interrupted; run 'vlooo convert --resume' to continue")
			return context.Canceled
		case <-changes:
			snap := store.Snapshot()
			display.render(snap)
			if snap.Error != "" && !snap.Loading {
				display.finish()
				return fmt.Errorf("conversion failed during %s: %s (run 'vlooo retry' to try again)",
					snap.Stage.Label(), snap.Error)
			}
			if snap.Stage == project.StageCompleted {
				display.finish()
				fmt.Fprintf(cmd.OutOrStdout(), "done: %s\n", snap.VideoURL)
				return nil
			}
		}
	}
}
