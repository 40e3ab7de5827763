package main

import (
	"fmt"
	"sort"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"podforge/internal/api"
)

func newStatusCommand(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show daemon and pipeline status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := newAPIClient(opts)
			if err != nil {
				return err
			}
			var status api.DaemonStatus
			if err := client.getJSON(cmd.Context(), "/api/status", &status); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Daemon:   %s\n", runLabel(status.Running))
			fmt.Fprintf(out, "Workflow: %s\n", runLabel(status.Workflow.Running))
			if status.Workflow.LastError != "" {
				fmt.Fprintf(out, "Last error: %s (job %s)\n", status.Workflow.LastError, status.Workflow.LastJobID)
			}
			fmt.Fprintf(out, "Queue DB: %s\n\n", status.QueueDBPath)

			statuses := sortedKeys(status.Workflow.QueueStats)
			rows := make([]table.Row, 0, len(statuses))
			for _, name := range statuses {
				rows = append(rows, table.Row{name, status.Workflow.QueueStats[name]})
			}
			renderTable(out, table.Row{"Status", "Jobs"}, rows, []table.ColumnConfig{rightAligned(2)})

			stages := sortedKeys(status.Workflow.StageHealth)
			rows = rows[:0]
			for _, name := range stages {
				health := status.Workflow.StageHealth[name]
				state := "ready"
				if !health.Ready {
					state = "degraded"
				}
				rows = append(rows, table.Row{name, state, health.Detail})
			}
			fmt.Fprintln(out)
			renderTable(out, table.Row{"Stage", "State", "Detail"}, rows, nil)
			return nil
		},
	}
}

func runLabel(running bool) string {
	if running {
		return "running"
	}
	return "stopped"
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
