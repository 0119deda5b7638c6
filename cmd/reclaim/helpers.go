package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/user"
	"path/filepath"
	"strings"

	"github.com/netreclaim/reclaim/pkg/audit"
	"github.com/netreclaim/reclaim/pkg/device"
	"github.com/netreclaim/reclaim/pkg/metrics"
	"github.com/netreclaim/reclaim/pkg/plan"
	"github.com/netreclaim/reclaim/pkg/probe"
	"github.com/netreclaim/reclaim/pkg/reclaim"
	"github.com/netreclaim/reclaim/pkg/report"
	"github.com/netreclaim/reclaim/pkg/store"
	"github.com/netreclaim/reclaim/pkg/util"
)

// Probe modes accepted by --probe.
const (
	probeNone   = "none"
	probeICMP   = "icmp"
	probeDevice = "device"
)

// referenceFlags are the reference-data flags shared by analyze and fleet.
type referenceFlags struct {
	planFile   string
	activeFile string
	sheet      string
	column     string
}

// firstNonEmpty returns the first non-empty value.
func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// loadAddresses reads an address file. A missing file is logged and yields
// an empty set so an analysis can proceed without reference data. A file
// that exists but cannot be read fails: an empty plan would report every
// planned address as free.
func loadAddresses(path string, opts plan.Options, what string) (reclaim.Set, error) {
	if path == "" {
		return reclaim.NewSet(), nil
	}
	addrs, err := plan.LoadFile(path, opts)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			util.Warnf("%s %s not found, continuing without it", what, path)
			return reclaim.NewSet(), nil
		}
		return nil, fmt.Errorf("loading %s: %w", what, err)
	}
	util.Logger.Debugf("Loaded %d addresses from %s", len(addrs), path)
	return reclaim.NewSet(addrs...), nil
}

// reference builds the reference dataset from flags with settings as
// fallback, and names its sources for the report header.
func (a *app) reference(f referenceFlags) (reclaim.ReferenceDataset, report.Sources, error) {
	planPath := firstNonEmpty(f.planFile, a.settings.PlanFile)
	activePath := firstNonEmpty(f.activeFile, a.settings.ActiveFile)
	opts := plan.Options{Sheet: f.sheet, Column: f.column}

	planned, err := loadAddresses(planPath, opts, "address plan")
	if err != nil {
		return reclaim.ReferenceDataset{}, report.Sources{}, err
	}
	active, err := loadAddresses(activePath, plan.Options{}, "active sessions")
	if err != nil {
		return reclaim.ReferenceDataset{}, report.Sources{}, err
	}
	ref := reclaim.ReferenceDataset{}.WithAddressPlan(planned).WithActiveSessions(active)
	return ref, report.Sources{AddressPlan: planPath, ActiveSessions: activePath}, nil
}

// openAudit opens the run log from settings, or audit.log beside the
// settings file. Failure to open it is a warning, never fatal.
func (a *app) openAudit() audit.Logger {
	path := firstNonEmpty(a.settings.AuditLog, filepath.Join(a.stateDir(), "audit.log"))
	l, err := audit.NewFileLogger(path, audit.RotationConfig{
		MaxSize:    10 * 1024 * 1024, // 10MB
		MaxBackups: 5,
	})
	if err != nil {
		util.Warnf("Could not initialize audit logging: %v", err)
		return audit.Discard
	}
	return l
}

// openStore opens the configured snapshot store. It returns nil without
// error when none is configured.
func (a *app) openStore(flag string) (store.Store, error) {
	url := firstNonEmpty(flag, a.settings.StoreURL)
	if url == "" {
		return nil, nil
	}
	st, err := store.Open(url)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}
	return st, nil
}

// requireStore is openStore for commands that cannot work without one.
func (a *app) requireStore(flag string) (store.Store, error) {
	st, err := a.openStore(flag)
	if err != nil {
		return nil, err
	}
	if st == nil {
		return nil, fmt.Errorf("store required: use --store <url> or 'reclaim settings set store_url <url>'")
	}
	return st, nil
}

// loadInventory reads the inventory from flag or settings.
func (a *app) loadInventory(flag string) ([]device.Device, error) {
	path := firstNonEmpty(flag, a.settings.Inventory)
	if path == "" {
		return nil, fmt.Errorf("inventory required: use --inventory <file> or 'reclaim settings set inventory <file>'")
	}
	return device.LoadInventory(path)
}

// selectDevices keeps the devices named in args, or all when args is empty.
func selectDevices(all []device.Device, args []string) ([]device.Device, error) {
	if len(args) == 0 {
		return all, nil
	}
	out := make([]device.Device, 0, len(args))
	for _, name := range args {
		d, err := device.Find(all, name)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

// promptMissingPasswords asks for missing passwords when stdin is a file.
func (a *app) promptMissingPasswords(devices []device.Device, out io.Writer) error {
	f, ok := a.stdin.(*os.File)
	if !ok {
		for _, d := range devices {
			if d.Password == "" {
				return fmt.Errorf("%s: no password in inventory: %w", d.ID(), util.ErrInvalidArgument)
			}
		}
		return nil
	}
	return device.PromptPasswords(devices, f, out)
}

// parseCategories splits a comma-separated --only value.
func parseCategories(only string) []string {
	return util.SplitCommaSeparated(only)
}

// parseProbeCategories maps --probe-categories onto annotation categories.
func parseProbeCategories(value string) ([]reclaim.Category, error) {
	var out []reclaim.Category
	for _, name := range util.SplitCommaSeparated(value) {
		c, err := reclaim.ParseCategory(name)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// probeOptions are the reachability flags shared by analyze, fleet and probe.
type probeOptions struct {
	mode       string
	from       string
	inventory  string
	count      int
	threshold  int
	batch      int
	privileged bool
	categories string
}

func (o probeOptions) validate() error {
	switch o.mode {
	case "", probeNone, probeICMP, probeDevice:
		return nil
	}
	return fmt.Errorf("unknown probe mode %q (valid: none, icmp, device): %w", o.mode, util.ErrInvalidArgument)
}

func (a *app) pingCount(o probeOptions) int {
	if o.count > 0 {
		return o.count
	}
	return a.settings.GetPingCount()
}

func (a *app) pingThreshold(o probeOptions) int {
	if o.threshold > 0 {
		return o.threshold
	}
	return a.settings.GetThreshold()
}

func (a *app) probeBatch(o probeOptions) int {
	if o.batch > 0 {
		return o.batch
	}
	return a.settings.GetBatch()
}

// newProber builds the prober for o. The returned close function releases
// the probing device's session and is never nil.
func (a *app) newProber(ctx context.Context, o probeOptions) (probe.Prober, func(), error) {
	noop := func() {}
	switch o.mode {
	case probeICMP:
		return &probe.ICMPProber{
			Count:      a.pingCount(o),
			Threshold:  a.pingThreshold(o),
			Privileged: o.privileged,
			Log:        util.WithOperation(audit.OpProbe),
		}, noop, nil
	case probeDevice:
		name := firstNonEmpty(o.from, a.settings.ProbeDevice)
		if name == "" {
			return nil, noop, fmt.Errorf("probe device required: use --from <device> or 'reclaim settings set probe_device <name>'")
		}
		devices, err := a.loadInventory(o.inventory)
		if err != nil {
			return nil, noop, err
		}
		dev, err := device.Find(devices, name)
		if err != nil {
			return nil, noop, err
		}
		one := []device.Device{dev}
		if err := a.promptMissingPasswords(one, os.Stderr); err != nil {
			return nil, noop, err
		}
		sess, err := a.opener.Open(ctx, one[0])
		if err != nil {
			return nil, noop, err
		}
		return &probe.DeviceProber{
			Session:   sess,
			Count:     a.pingCount(o),
			Threshold: a.pingThreshold(o),
			Log:       util.WithDevice(dev.ID()),
		}, func() { sess.Close() }, nil
	}
	return nil, noop, nil
}

// writeMetrics exports reports to the configured textfile, if any.
func (a *app) writeMetrics(flag string, reports []*report.Report) {
	path := firstNonEmpty(flag, a.settings.MetricsFile)
	if path == "" || len(reports) == 0 {
		return
	}
	if err := metrics.WriteTextfile(path, reports); err != nil {
		util.Warnf("Could not write metrics: %v", err)
	}
}

// currentUser names the operator in the run log.
func currentUser() string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	return firstNonEmpty(os.Getenv("USER"), "unknown")
}

// reportPath returns dir/<device>.<ext>.
func reportPath(dir, name, format string) string {
	return filepath.Join(dir, util.SanitizeFileName(name)+"."+report.Extension(format))
}

// formatList splits a comma-separated --format value, defaulting to text.
func formatList(value string) []string {
	formats := util.SplitCommaSeparated(strings.ToLower(value))
	if len(formats) == 0 {
		return []string{report.FormatText}
	}
	return formats
}
