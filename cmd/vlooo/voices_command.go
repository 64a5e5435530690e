package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newVoicesCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "voices",
		Short: "List available synthesis voices",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := ctx.client()
			if err != nil {
				return err
			}
			voices, err := client.ListVoices(cmd.Context())
			if err != nil {
				return fmt.Errorf("list voices: %w", err)
			}

			rows := make([][]string, 0, len(voices))
			for _, voice := range voices {
				rows = append(rows, []string{voice.ID, voice.Name, voice.Gender, voice.Accent})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"ID", "Name", "Gender", "Accent"}, rows))
			return nil
		},
	}
}
