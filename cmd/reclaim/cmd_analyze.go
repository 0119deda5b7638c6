package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/netreclaim/reclaim/pkg/audit"
	"github.com/netreclaim/reclaim/pkg/probe"
	"github.com/netreclaim/reclaim/pkg/reclaim"
	"github.com/netreclaim/reclaim/pkg/report"
	"github.com/netreclaim/reclaim/pkg/routeros"
	"github.com/netreclaim/reclaim/pkg/store"
	"github.com/netreclaim/reclaim/pkg/util"
)

type analyzeOptions struct {
	ref      referenceFlags
	probe    probeOptions
	only     string
	format   string
	output   string
	device   string
	storeURL string
	metrics  string
	noSave   bool
}

func newAnalyzeCmd(a *app) *cobra.Command {
	var o analyzeOptions

	cmd := &cobra.Command{
		Use:   "analyze <export.rsc | ->",
		Short: "Analyse a saved RouterOS export",
		Long: `Analyse the output of '/export compact' saved to a file ("-" reads stdin).

Remote addresses found in the address plan (text or XLSX) or in the
active-session list are not reported as free. With --probe, free and
planned addresses are pinged and split into answering and silent.

  reclaim analyze core-msk-1.rsc --plan plan.xlsx --active active.txt
  reclaim analyze core-msk-1.rsc --only empty,single,vlans_free
  reclaim analyze core-msk-1.rsc --probe device --from core-msk-1
  reclaim analyze core-msk-1.rsc --format xlsx -o core-msk-1.xlsx`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runAnalyze(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), args[0], o)
		},
	}

	addReferenceFlags(cmd, &o.ref)
	addProbeFlags(cmd, &o.probe, probeNone)
	cmd.Flags().StringVar(&o.only, "only", "", "comma-separated report categories (default all: "+strings.Join(report.Keys(), ",")+")")
	cmd.Flags().StringVarP(&o.format, "format", "f", report.FormatText, "output format: text, json, yaml, xlsx")
	cmd.Flags().StringVarP(&o.output, "output", "o", "", "write the report to a file instead of stdout")
	cmd.Flags().StringVar(&o.device, "device", "", "device name for the report and store (default: identity or file name)")
	cmd.Flags().StringVar(&o.storeURL, "store", "", "snapshot store URL (redis://, sqlite://, memory://)")
	cmd.Flags().StringVar(&o.metrics, "metrics", "", "write a Prometheus textfile")
	cmd.Flags().BoolVar(&o.noSave, "no-save", false, "do not save the snapshot even when a store is configured")
	return cmd
}

func addReferenceFlags(cmd *cobra.Command, f *referenceFlags) {
	cmd.Flags().StringVar(&f.planFile, "plan", "", "address plan file, text or XLSX")
	cmd.Flags().StringVar(&f.activeFile, "active", "", "active sessions file (e.g. saved '/ppp active print')")
	cmd.Flags().StringVar(&f.sheet, "sheet", "", "plan workbook sheet (default first)")
	cmd.Flags().StringVar(&f.column, "column", "", "plan workbook address column (default IP_DEVICE)")
}

func addProbeFlags(cmd *cobra.Command, o *probeOptions, mode string) {
	cmd.Flags().StringVar(&o.mode, "probe", mode, "reachability probe: none, icmp (local), device (ping from --from)")
	cmd.Flags().StringVar(&o.from, "from", "", "inventory device that pings when --probe=device")
	cmd.Flags().StringVar(&o.inventory, "inventory", "", "device inventory YAML")
	cmd.Flags().IntVar(&o.count, "count", 0, "echo requests per address (default 5)")
	cmd.Flags().IntVar(&o.threshold, "threshold", 0, "replies needed to call an address reachable (default 3)")
	cmd.Flags().IntVar(&o.batch, "batch", 0, "addresses per probe batch (default 50)")
	cmd.Flags().BoolVar(&o.privileged, "privileged", false, "use raw ICMP sockets for --probe=icmp")
	cmd.Flags().StringVar(&o.categories, "probe-categories", "", "categories to probe: free, in-plan (default both)")
}

func (a *app) readExport(path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(a.stdin)
		if err != nil {
			return "", fmt.Errorf("reading export from stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading export: %w", err)
	}
	return string(data), nil
}

func (a *app) runAnalyze(ctx context.Context, out, errOut io.Writer, path string, o analyzeOptions) error {
	if err := o.probe.validate(); err != nil {
		return err
	}
	categories, err := parseProbeCategories(o.probe.categories)
	if err != nil {
		return err
	}
	only := parseCategories(o.only)
	if _, err := report.Build(reclaim.Record{}, report.Options{Only: only}); err != nil {
		return err
	}

	start := time.Now()
	runID := uuid.NewString()
	aud := a.openAudit()
	defer aud.Close()

	cfg, name, err := a.analyzeInput(path, o.device)
	event := audit.NewEvent(currentUser(), name, audit.OpAnalyze).WithRunID(runID).WithSource(path)
	if err != nil {
		aud.Log(event.WithError(err).WithDuration(time.Since(start)))
		return err
	}

	ref, sources, err := a.reference(o.ref)
	if err != nil {
		aud.Log(event.WithError(err).WithDuration(time.Since(start)))
		return err
	}
	snap := reclaim.NewAnalysis(cfg, ref).Snapshot()
	log := util.WithRun(runID).WithField("device", name)
	for _, sk := range snap.Skipped {
		log.Debugf("Skipped %s: %s", sk.Section, sk.Reason)
	}

	if o.probe.mode != "" && o.probe.mode != probeNone {
		if err := a.probeSnapshot(ctx, snap, o.probe, categories); err != nil {
			util.Warnf("Probing stopped early: %v", err)
			event.WithWarning(err.Error())
		}
	}

	rec := snap.Record()
	rep, err := report.Build(rec, report.Options{Only: only, Device: name, Sources: sources, Now: a.now})
	if err != nil {
		return err
	}

	if o.output != "" {
		if err := rep.WriteFile(o.output, o.format); err != nil {
			aud.Log(event.WithError(err).WithDuration(time.Since(start)))
			return err
		}
		fmt.Fprintf(errOut, "Report written to %s\n", o.output)
	} else if err := rep.Write(out, o.format); err != nil {
		return err
	}

	if !o.noSave {
		if err := a.saveRecord(ctx, o.storeURL, name, runID, rec); err != nil {
			aud.Log(event.WithError(err).WithDuration(time.Since(start)))
			return err
		}
	}
	a.writeMetrics(o.metrics, []*report.Report{rep})

	aud.Log(event.WithCounts(report.Counts(rec)).WithSuccess().WithDuration(time.Since(start)))
	return nil
}

// analyzeInput parses the export and picks the device name: flag, then
// identity, then file name.
func (a *app) analyzeInput(path, deviceFlag string) (*routeros.Config, string, error) {
	text, err := a.readExport(path)
	if err != nil {
		return nil, firstNonEmpty(deviceFlag, path), err
	}
	cfg := routeros.Parse(text)
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if path == "-" {
		base = "stdin"
	}
	return cfg, firstNonEmpty(deviceFlag, cfg.Identity, base), nil
}

func (a *app) probeSnapshot(ctx context.Context, snap *reclaim.Snapshot, o probeOptions, categories []reclaim.Category) error {
	prober, done, err := a.newProber(ctx, o)
	if err != nil {
		return err
	}
	defer done()
	if prober == nil {
		return nil
	}
	if len(categories) == 0 {
		categories = reclaim.Categories
	}
	for _, c := range categories {
		res, err := probe.Annotate(ctx, prober, snap, c, a.probeBatch(o))
		util.WithOperation(audit.OpProbe).Infof("%s: %d reachable, %d unreachable", c, len(res.Reachable), len(res.Unreachable))
		if err != nil {
			return err
		}
	}
	return nil
}

func (a *app) saveRecord(ctx context.Context, storeURL, name, runID string, rec reclaim.Record) error {
	st, err := a.openStore(storeURL)
	if err != nil {
		return err
	}
	if st == nil {
		return nil
	}
	defer st.Close()
	return st.Save(ctx, store.Entry{Device: name, RunID: runID, SavedAt: a.now(), Record: rec})
}
