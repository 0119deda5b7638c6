package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/netreclaim/reclaim/pkg/audit"
	"github.com/netreclaim/reclaim/pkg/cli"
	"github.com/netreclaim/reclaim/pkg/fleet"
	"github.com/netreclaim/reclaim/pkg/report"
	"github.com/netreclaim/reclaim/pkg/util"
)

type fleetOptions struct {
	ref         referenceFlags
	probe       probeOptions
	fetchActive bool
	only        string
	formats     string
	outputDir   string
	parallel    int
	storeURL    string
	metrics     string
}

func newFleetCmd(a *app) *cobra.Command {
	var o fleetOptions

	cmd := &cobra.Command{
		Use:   "fleet [device...]",
		Short: "Fetch and analyse inventory devices",
		Long: `Connect to every inventory device (or the named ones), fetch its
compact export and active PPP sessions, analyse it and write one report per
device into the output directory.

A device that cannot be reached or analysed is reported and skipped; the
others still run. With --probe=device each router pings its own remote
addresses; with --probe=icmp this host pings them.

  reclaim fleet --inventory remote_node.yaml --plan plan.xlsx
  reclaim fleet core-msk-1 edge-spb-2 --format text,xlsx -d reports
  reclaim fleet --probe device --parallel 8`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runFleet(cmd.Context(), cmd.OutOrStdout(), args, o)
		},
	}

	addReferenceFlags(cmd, &o.ref)
	addProbeFlags(cmd, &o.probe, probeNone)
	cmd.Flags().BoolVar(&o.fetchActive, "fetch-active", true, "add each device's '/ppp active print' to its active sessions")
	cmd.Flags().StringVar(&o.only, "only", "", "comma-separated report categories (default all)")
	cmd.Flags().StringVar(&o.formats, "format", report.FormatText, "comma-separated report formats: text, json, yaml, xlsx")
	cmd.Flags().StringVarP(&o.outputDir, "output-dir", "d", "", "report directory (default from settings, else ./reports)")
	cmd.Flags().IntVarP(&o.parallel, "parallel", "p", 0, "devices analysed at once (default 4)")
	cmd.Flags().StringVar(&o.storeURL, "store", "", "snapshot store URL")
	cmd.Flags().StringVar(&o.metrics, "metrics", "", "write a Prometheus textfile")
	return cmd
}

func (a *app) runFleet(ctx context.Context, out io.Writer, args []string, o fleetOptions) error {
	if err := o.probe.validate(); err != nil {
		return err
	}
	categories, err := parseProbeCategories(o.probe.categories)
	if err != nil {
		return err
	}

	all, err := a.loadInventory(o.probe.inventory)
	if err != nil {
		return err
	}
	devices, err := selectDevices(all, args)
	if err != nil {
		return err
	}
	if len(devices) == 0 {
		return fmt.Errorf("inventory has no devices: %w", util.ErrNotFound)
	}
	if err := a.promptMissingPasswords(devices, out); err != nil {
		return err
	}

	ref, sources, err := a.reference(o.ref)
	if err != nil {
		return err
	}
	st, err := a.openStore(o.storeURL)
	if err != nil {
		return err
	}
	if st != nil {
		defer st.Close()
	}
	aud := a.openAudit()
	defer aud.Close()

	parallel := o.parallel
	if parallel <= 0 {
		parallel = a.settings.GetParallel()
	}
	r := &fleet.Runner{
		Opener:          a.opener,
		Reference:       ref,
		FetchActive:     o.fetchActive,
		ProbeCategories: categories,
		Batch:           a.probeBatch(o.probe),
		Parallel:        parallel,
		Store:           st,
		Audit:           aud,
		User:            currentUser(),
		OutputDir:       firstNonEmpty(o.outputDir, a.settings.GetOutputDir()),
		Formats:         formatList(o.formats),
		Only:            parseCategories(o.only),
		Sources:         sources,
		Log:             util.WithOperation(audit.OpFleet),
		Now:             a.now,
	}

	switch o.probe.mode {
	case probeDevice:
		if o.probe.from == "" && a.settings.ProbeDevice == "" {
			r.Probe = fleet.SessionProber(a.pingCount(o.probe), a.pingThreshold(o.probe), r.Log)
			break
		}
		fallthrough
	case probeICMP:
		prober, done, err := a.newProber(ctx, o.probe)
		if err != nil {
			return err
		}
		defer done()
		r.Probe = fleet.SharedProber(prober)
	}

	sum, err := r.Run(ctx, devices)
	if sum != nil {
		printFleetSummary(out, sum)
		a.writeMetrics(o.metrics, sum.Reports())
	}
	if err != nil {
		return err
	}
	if n := sum.Failed(); n > 0 {
		return fmt.Errorf("%d of %d devices failed", n, len(sum.Results))
	}
	return nil
}

func printFleetSummary(out io.Writer, sum *fleet.Summary) {
	t := cli.NewTable(out, "DEVICE", "IDENTITY", "STATUS", "TOTAL", "DURATION", "DETAIL").WithLimit(5, 80)
	for _, res := range sum.Results {
		total, detail := "-", ""
		if res.Report != nil {
			total = cli.Count(res.Report.Total)
		}
		switch {
		case res.Err != nil:
			detail = res.Err.Error()
		case res.ProbeErr != nil:
			detail = yellow("probe: " + res.ProbeErr.Error())
		case len(res.Files) > 0:
			detail = res.Files[0]
			if len(res.Files) > 1 {
				detail += " (+" + strconv.Itoa(len(res.Files)-1) + ")"
			}
		}
		t.Row(res.Device, firstNonEmpty(res.Identity, "-"), cli.Status(res.OK()), total,
			res.Duration.Round(time.Millisecond).String(), detail)
	}
	t.Flush()
	fmt.Fprintf(out, "\nRun %s: %d analysed, %d failed\n", sum.RunID, len(sum.Results)-sum.Failed(), sum.Failed())
}
