package main

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/netreclaim/reclaim/pkg/audit"
	"github.com/netreclaim/reclaim/pkg/cli"
)

type historyOptions struct {
	filter     audit.Filter
	last       string
	jsonOutput bool
}

func newHistoryCmd(a *app) *cobra.Command {
	var o historyOptions
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Query the run log",
		Long: `List logged analyse, fetch, probe and fleet runs.

  reclaim history --device core-msk-1
  reclaim history --last 24h --failures
  reclaim history --run 3f2c... --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := o.filter
			if o.last != "" {
				d, err := time.ParseDuration(o.last)
				if err != nil {
					return fmt.Errorf("invalid duration: %s", o.last)
				}
				filter.StartTime = a.now().Add(-d)
			}

			aud := a.openAudit()
			defer aud.Close()
			events, err := aud.Query(filter)
			if err != nil {
				return fmt.Errorf("querying run log: %w", err)
			}

			out := cmd.OutOrStdout()
			if o.jsonOutput {
				return json.NewEncoder(out).Encode(events)
			}
			if len(events) == 0 {
				fmt.Fprintln(out, "No runs found")
				return nil
			}
			printEvents(out, events)
			return nil
		},
	}
	cmd.Flags().StringVar(&o.filter.Device, "device", "", "filter by device")
	cmd.Flags().StringVar(&o.filter.User, "user", "", "filter by user")
	cmd.Flags().StringVar(&o.filter.Operation, "operation", "", "filter by operation: analyze, fetch, probe, fleet")
	cmd.Flags().StringVar(&o.filter.RunID, "run", "", "filter by run ID")
	cmd.Flags().StringVar(&o.last, "last", "", "show runs from the last duration (e.g. 24h)")
	cmd.Flags().IntVar(&o.filter.Limit, "limit", 100, "maximum events to show")
	cmd.Flags().BoolVar(&o.filter.FailureOnly, "failures", false, "show only failed runs")
	cmd.Flags().BoolVar(&o.jsonOutput, "json", false, "JSON output")
	return cmd
}

func printEvents(out io.Writer, events []*audit.Event) {
	t := cli.NewTable(out, "TIMESTAMP", "USER", "DEVICE", "OPERATION", "STATUS", "DURATION", "DETAIL")
	for _, e := range events {
		status := green("ok")
		switch {
		case !e.Success:
			status = red("failed")
		case e.Severity == audit.SeverityWarning:
			status = yellow("warning")
		}
		t.Row(e.Timestamp.Local().Format("2006-01-02 15:04:05"), e.User, e.Device, e.Operation,
			status, e.Duration.Round(time.Millisecond).String(), e.Error)
	}
	t.Flush()
}
