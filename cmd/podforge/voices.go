package main

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"podforge/internal/api"
)

func newVoicesCommand(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "voices",
		Short: "List the narrator voice catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := newAPIClient(opts)
			if err != nil {
				return err
			}
			var list api.VoiceList
			if err := client.getJSON(cmd.Context(), "/api/voices", &list); err != nil {
				return err
			}
			rows := make([]table.Row, 0, len(list.Voices))
			for _, v := range list.Voices {
				rows = append(rows, table.Row{v.Name, v.Description})
			}
			renderTable(cmd.OutOrStdout(), table.Row{"Voice", "Description"}, rows, nil)
			return nil
		},
	}
}

func newPreviewCommand(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "preview <voice>",
		Short: "Generate a sample clip for one voice",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newAPIClient(opts)
			if err != nil {
				return err
			}
			var resp api.PreviewResponse
			if err := client.getJSON(cmd.Context(), "/api/voice-preview/"+args[0], &resp); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Preview ready: %s\n", resp.MetadataPath)
			if resp.Simulated {
				fmt.Fprintln(out, "Audio was simulated; no synthesis credentials configured.")
			}
			return nil
		},
	}
}
