package main

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"podforge/internal/api"
)

func newSubmitCommand(opts *cliOptions) *cobra.Command {
	var hosts []string
	cmd := &cobra.Command{
		Use:   "submit [topic]",
		Short: "Queue a new podcast for generation",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newAPIClient(opts)
			if err != nil {
				return err
			}
			body := map[string]any{}
			if len(args) > 0 {
				body["topic"] = args[0]
			}
			if len(hosts) > 0 {
				body["hosts"] = hosts
			}
			var resp api.CreateResponse
			if err := client.postJSON(cmd.Context(), "/create-podcast", body, &resp); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (job %s)\n", resp.Message, resp.JobID)
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&hosts, "hosts", nil, "two host names (comma separated)")
	return cmd
}

func newListCommand(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all podcasts and the queue state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := newAPIClient(opts)
			if err != nil {
				return err
			}
			var list api.PodcastList
			if err := client.getJSON(cmd.Context(), "/api/podcasts", &list); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(list.Podcasts) == 0 {
				fmt.Fprintln(out, "No podcasts yet.")
				return nil
			}
			rows := make([]table.Row, 0, len(list.Podcasts))
			for _, p := range list.Podcasts {
				rows = append(rows, table.Row{shortID(p.ID), p.Topic, p.Status, fmt.Sprintf("%d%%", p.Progress), p.CurrentStage})
			}
			renderTable(out, table.Row{"ID", "Topic", "Status", "Progress", "Stage"}, rows, []table.ColumnConfig{rightAligned(4)})
			if list.CurrentJob != nil {
				fmt.Fprintf(out, "\nCurrent job: %s\n", *list.CurrentJob)
			}
			fmt.Fprintf(out, "Queued: %d\n", list.QueueLength)
			return nil
		},
	}
}

func newShowCommand(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one podcast with its update log",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newAPIClient(opts)
			if err != nil {
				return err
			}
			var p api.Podcast
			if err := client.getJSON(cmd.Context(), "/api/podcast/"+args[0], &p); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "ID:       %s\n", p.ID)
			fmt.Fprintf(out, "Topic:    %s\n", p.Topic)
			fmt.Fprintf(out, "Hosts:    %s\n", strings.Join(p.Hosts, ", "))
			fmt.Fprintf(out, "Status:   %s (%d%%)\n", p.Status, p.Progress)
			if p.Error != "" {
				fmt.Fprintf(out, "Error:    %s\n", p.Error)
			}
			if p.Results.AudioURL != "" {
				fmt.Fprintf(out, "Audio:    %s\n", p.Results.AudioURL)
			}
			if len(p.Updates) > 0 {
				fmt.Fprintln(out, "\nUpdates:")
				for _, u := range p.Updates {
					stage := u.Stage
					if stage == "" {
						stage = "-"
					}
					fmt.Fprintf(out, "  %s  [%s] %s\n", u.Time, stage, u.Message)
				}
			}
			return nil
		},
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
