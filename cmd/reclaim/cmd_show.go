package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/netreclaim/reclaim/pkg/cli"
	"github.com/netreclaim/reclaim/pkg/report"
	"github.com/netreclaim/reclaim/pkg/store"
)

type showOptions struct {
	storeURL string
	only     string
	format   string
	history  int
}

func newShowCmd(a *app) *cobra.Command {
	var o showOptions
	cmd := &cobra.Command{
		Use:   "show [device]",
		Short: "Show stored analyses",
		Long: `Without a device, list every device in the snapshot store with its
latest analysis. With a device, render its latest stored analysis, or its
history with --history.

  reclaim show
  reclaim show core-msk-1 --only ip_free,icmp_false
  reclaim show core-msk-1 --history 10`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := a.requireStore(o.storeURL)
			if err != nil {
				return err
			}
			defer st.Close()

			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			switch {
			case len(args) == 0:
				return showDevices(ctx, out, st)
			case o.history > 0:
				return showHistory(ctx, out, st, args[0], o.history)
			}
			return showLatest(ctx, out, st, args[0], o)
		},
	}
	cmd.Flags().StringVar(&o.storeURL, "store", "", "snapshot store URL")
	cmd.Flags().StringVar(&o.only, "only", "", "comma-separated report categories (default all)")
	cmd.Flags().StringVarP(&o.format, "format", "f", report.FormatText, "output format: text, json, yaml")
	cmd.Flags().IntVar(&o.history, "history", 0, "list the last N stored analyses instead")
	return cmd
}

func showDevices(ctx context.Context, out io.Writer, st store.Store) error {
	devices, err := st.Devices(ctx)
	if err != nil {
		return err
	}
	if len(devices) == 0 {
		fmt.Fprintln(out, "No stored analyses")
		return nil
	}
	t := cli.NewTable(out, "DEVICE", "IDENTITY", "SAVED", "TOTAL")
	for _, d := range devices {
		e, err := st.Latest(ctx, d)
		if err != nil {
			return err
		}
		t.Row(d, firstNonEmpty(e.Record.Identity, "-"), e.SavedAt.Local().Format("2006-01-02 15:04"), cli.Count(entryTotal(e)))
	}
	t.Flush()
	return nil
}

func showLatest(ctx context.Context, out io.Writer, st store.Store, name string, o showOptions) error {
	e, err := st.Latest(ctx, name)
	if err != nil {
		return err
	}
	rep, err := report.Build(e.Record, report.Options{
		Only:   parseCategories(o.only),
		Device: e.Device,
		Now:    func() time.Time { return e.SavedAt },
	})
	if err != nil {
		return err
	}
	return rep.Write(out, o.format)
}

func showHistory(ctx context.Context, out io.Writer, st store.Store, name string, limit int) error {
	entries, err := st.History(ctx, name, limit)
	if err != nil {
		return err
	}
	t := cli.NewTable(out, "SAVED", "RUN", "FREE IPS", "FREE VLANS", "FREE EOIPS", "TOTAL")
	for _, e := range entries {
		t.Row(e.SavedAt.Local().Format("2006-01-02 15:04:05"), firstNonEmpty(e.RunID, "-"),
			fmt.Sprint(len(e.Record.FreeIPs)), fmt.Sprint(len(e.Record.FreeVlans)),
			fmt.Sprint(len(e.Record.FreeEoips)), fmt.Sprint(entryTotal(e)))
	}
	t.Flush()
	return nil
}

func entryTotal(e store.Entry) int {
	total := 0
	for _, n := range report.Counts(e.Record) {
		total += n
	}
	return total
}
