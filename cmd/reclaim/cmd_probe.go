package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/netreclaim/reclaim/pkg/audit"
	"github.com/netreclaim/reclaim/pkg/cli"
	"github.com/netreclaim/reclaim/pkg/plan"
	"github.com/netreclaim/reclaim/pkg/probe"
	"github.com/netreclaim/reclaim/pkg/util"
)

type probeCmdOptions struct {
	probe      probeOptions
	file       string
	jsonOutput bool
}

func newProbeCmd(a *app) *cobra.Command {
	var o probeCmdOptions

	cmd := &cobra.Command{
		Use:   "probe [address...]",
		Short: "Check reachability of addresses",
		Long: `Ping addresses given as arguments or read from a file (any text with
IPv4 literals, or an XLSX plan) and report which answer.

  reclaim probe 10.0.0.1 10.0.0.2 --probe icmp
  reclaim probe --file free.txt --probe device --from core-msk-1`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runProbe(cmd.Context(), cmd.OutOrStdout(), args, o)
		},
	}

	addProbeFlags(cmd, &o.probe, probeICMP)
	cmd.Flags().StringVar(&o.file, "file", "", "read addresses from a file")
	cmd.Flags().BoolVar(&o.jsonOutput, "json", false, "JSON output")
	return cmd
}

func (a *app) runProbe(ctx context.Context, out io.Writer, args []string, o probeCmdOptions) error {
	if err := o.probe.validate(); err != nil {
		return err
	}
	if o.probe.mode == probeNone || o.probe.mode == "" {
		return fmt.Errorf("probe mode required: use --probe icmp or --probe device: %w", util.ErrInvalidArgument)
	}

	addrs := make(map[string]bool)
	for _, arg := range args {
		if !util.IsValidIPv4(arg) {
			return fmt.Errorf("%q is not an IPv4 address: %w", arg, util.ErrInvalidArgument)
		}
		addrs[arg] = true
	}
	if o.file != "" {
		list, err := plan.LoadFile(o.file, plan.Options{})
		if err != nil {
			return err
		}
		for _, ip := range list {
			addrs[ip] = true
		}
	}
	if len(addrs) == 0 {
		return fmt.Errorf("no addresses to probe: %w", util.ErrInvalidArgument)
	}
	list := make([]string, 0, len(addrs))
	for ip := range addrs {
		list = append(list, ip)
	}
	sort.Strings(list)

	prober, done, err := a.newProber(ctx, o.probe)
	if err != nil {
		return err
	}
	defer done()

	start := time.Now()
	var res probe.Result
	var probeErr error
	for _, chunk := range probe.Chunk(list, a.probeBatch(o.probe)) {
		r, err := prober.Probe(ctx, chunk)
		res.Merge(r)
		if err != nil {
			probeErr = err
			break
		}
	}

	aud := a.openAudit()
	defer aud.Close()
	event := audit.NewEvent(currentUser(), firstNonEmpty(o.probe.from, "local"), audit.OpProbe).
		WithCounts(map[string]int{"reachable": len(res.Reachable), "unreachable": len(res.Unreachable)}).
		WithDuration(time.Since(start))
	if probeErr != nil {
		aud.Log(event.WithError(probeErr))
	} else {
		aud.Log(event.WithSuccess())
	}

	if o.jsonOutput {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(map[string][]string{
			"reachable":   nonNil(res.Reachable),
			"unreachable": nonNil(res.Unreachable),
		}); err != nil {
			return err
		}
	} else {
		printProbeResult(out, list, res)
	}
	return probeErr
}

func printProbeResult(out io.Writer, list []string, res probe.Result) {
	state := make(map[string]string, len(list))
	for _, ip := range res.Reachable {
		state[ip] = green("reachable")
	}
	for _, ip := range res.Unreachable {
		state[ip] = red("unreachable")
	}
	t := cli.NewTable(out, "ADDRESS", "ICMP")
	for _, ip := range list {
		t.Row(ip, firstNonEmpty(state[ip], yellow("unknown")))
	}
	t.Flush()
	fmt.Fprintf(out, "\n%d reachable, %d unreachable, %d unknown\n",
		len(res.Reachable), len(res.Unreachable), len(list)-len(res.Reachable)-len(res.Unreachable))
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
