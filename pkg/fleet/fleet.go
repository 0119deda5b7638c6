// Package fleet analyses many routers concurrently. Each device gets its
// own session, snapshot and report; a failing device never stops the others.
package fleet

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/netreclaim/reclaim/pkg/audit"
	"github.com/netreclaim/reclaim/pkg/device"
	"github.com/netreclaim/reclaim/pkg/probe"
	"github.com/netreclaim/reclaim/pkg/reclaim"
	"github.com/netreclaim/reclaim/pkg/report"
	"github.com/netreclaim/reclaim/pkg/routeros"
	"github.com/netreclaim/reclaim/pkg/store"
	"github.com/netreclaim/reclaim/pkg/util"
)

// DefaultParallel bounds concurrent devices when Runner.Parallel is unset.
const DefaultParallel = 4

// ProberFactory returns the prober used for dev. sess is the device's own
// session and may be used to ping from the device itself.
type ProberFactory func(dev device.Device, sess device.Session) (probe.Prober, error)

// SessionProber pings from each analysed device over its own session.
func SessionProber(count, threshold int, log *logrus.Entry) ProberFactory {
	return func(dev device.Device, sess device.Session) (probe.Prober, error) {
		return &probe.DeviceProber{
			Session:   sess,
			Count:     count,
			Threshold: threshold,
			Log:       util.EntryOrDefault(log).WithField("device", dev.ID()),
		}, nil
	}
}

// SharedProber uses p for every device.
func SharedProber(p probe.Prober) ProberFactory {
	return func(device.Device, device.Session) (probe.Prober, error) { return p, nil }
}

// Runner holds the collaborators of a fleet run. Only Opener is required.
type Runner struct {
	Opener device.Opener

	// Reference is reconciled against every device. With FetchActive the
	// device's own /ppp active sessions are added to its copy.
	Reference   reclaim.ReferenceDataset
	FetchActive bool

	// Probe, when set, annotates ProbeCategories (default: every category).
	Probe           ProberFactory
	ProbeCategories []reclaim.Category
	Batch           int

	Parallel int

	Store store.Store
	Audit audit.Logger
	User  string

	// OutputDir receives <device>.<ext> for every format in Formats.
	// Nothing is written when empty.
	OutputDir string
	Formats   []string
	Only      []string
	Sources   report.Sources

	Log *logrus.Entry
	Now func() time.Time
}

// Result is the outcome for one device.
type Result struct {
	Device   string
	Identity string
	Report   *report.Report
	Record   reclaim.Record
	Files    []string
	Probed   map[reclaim.Category]probe.Result
	// ProbeErr is set when probing stopped early; the report then holds
	// the batches recorded before the failure.
	ProbeErr error
	Err      error
	Duration time.Duration
}

// OK reports whether the device was analysed.
func (r Result) OK() bool { return r.Err == nil }

// Summary is the outcome of a run, with results in input order.
type Summary struct {
	RunID   string
	Results []Result
}

// Failed returns the number of devices that could not be analysed.
func (s *Summary) Failed() int {
	n := 0
	for _, r := range s.Results {
		if !r.OK() {
			n++
		}
	}
	return n
}

// Reports returns the reports of every analysed device.
func (s *Summary) Reports() []*report.Report {
	var out []*report.Report
	for _, r := range s.Results {
		if r.Report != nil {
			out = append(out, r.Report)
		}
	}
	return out
}

// Run analyses devices with at most Parallel in flight. Device failures
// are reported in their Result; the returned error is non-nil only for an
// invalid Runner or a cancelled context.
func (r *Runner) Run(ctx context.Context, devices []device.Device) (*Summary, error) {
	if r.Opener == nil {
		return nil, fmt.Errorf("fleet runner without opener: %w", util.ErrInvalidArgument)
	}
	if _, err := report.Build(reclaim.Record{}, report.Options{Only: r.Only}); err != nil {
		return nil, err
	}

	sum := &Summary{RunID: uuid.NewString(), Results: make([]Result, len(devices))}
	log := util.EntryOrDefault(r.Log).WithFields(logrus.Fields{"operation": audit.OpFleet, "run": sum.RunID})
	log.Infof("Analysing %d devices", len(devices))

	parallel := r.Parallel
	if parallel <= 0 {
		parallel = DefaultParallel
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(parallel)

	for i, dev := range devices {
		g.Go(func() error {
			sum.Results[i] = r.runDevice(gctx, sum.RunID, dev, log.WithField("device", dev.ID()))
			return nil
		})
	}
	// Workers always return nil; device errors are kept in their Result.
	_ = g.Wait()

	log.Infof("Run finished: %d analysed, %d failed", len(devices)-sum.Failed(), sum.Failed())
	return sum, ctx.Err()
}

func (r *Runner) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

func (r *Runner) audit() audit.Logger {
	if r.Audit != nil {
		return r.Audit
	}
	return audit.Discard
}

func (r *Runner) runDevice(ctx context.Context, runID string, dev device.Device, log *logrus.Entry) Result {
	start := time.Now()
	res := Result{Device: dev.ID()}

	r.analyse(ctx, runID, dev, log, &res)
	res.Duration = time.Since(start)

	event := audit.NewEvent(r.User, res.Device, audit.OpFleet).
		WithRunID(runID).
		WithSource(dev.Address()).
		WithDuration(res.Duration)
	if res.Err != nil {
		log.Errorf("Analysis failed: %v", res.Err)
		event.WithError(res.Err)
	} else {
		event.WithCounts(report.Counts(res.Record)).WithSuccess()
		if res.ProbeErr != nil {
			event.WithWarning(res.ProbeErr.Error())
		}
	}
	if err := r.audit().Log(event); err != nil {
		log.Warnf("Audit log write failed: %v", err)
	}
	return res
}

func (r *Runner) analyse(ctx context.Context, runID string, dev device.Device, log *logrus.Entry, res *Result) {
	sess, err := r.Opener.Open(ctx, dev)
	if err != nil {
		res.Err = err
		return
	}
	defer sess.Close()

	export, err := device.FetchExport(ctx, sess)
	if err != nil {
		res.Err = err
		return
	}
	cfg := routeros.Parse(export)
	if cfg.Identity == "" {
		if id, err := device.FetchIdentity(ctx, sess); err != nil {
			log.Warnf("Identity unavailable: %v", err)
		} else {
			cfg.Identity = id
		}
	}
	res.Identity = cfg.Identity

	ref := r.Reference
	if r.FetchActive {
		out, err := device.FetchActiveSessions(ctx, sess)
		if err != nil {
			res.Err = err
			return
		}
		active := reclaim.NewSet(util.ExtractIPv4s(out)...)
		log.Debugf("%d active sessions", active.Len())
		ref = ref.WithActiveSessions(ref.ActiveSessions().Union(active))
	}

	snap := reclaim.NewAnalysis(cfg, ref).Snapshot()
	if n := len(snap.Skipped); n > 0 {
		log.Debugf("%d statements skipped", n)
	}

	if r.Probe != nil {
		res.Probed, res.ProbeErr = r.probe(ctx, dev, sess, snap, log)
	}

	res.Record = snap.Record()
	rep, err := report.Build(res.Record, report.Options{
		Only:    r.Only,
		Device:  dev.ID(),
		Sources: r.Sources,
		Now:     r.now,
	})
	if err != nil {
		res.Err = err
		return
	}
	res.Report = rep

	if r.Store != nil {
		entry := store.Entry{Device: dev.ID(), RunID: runID, SavedAt: r.now(), Record: res.Record}
		if err := r.Store.Save(ctx, entry); err != nil {
			res.Err = fmt.Errorf("saving snapshot: %w", err)
			return
		}
	}

	if r.OutputDir != "" {
		formats := r.Formats
		if len(formats) == 0 {
			formats = []string{report.FormatText}
		}
		for _, format := range formats {
			path := filepath.Join(r.OutputDir, util.SanitizeFileName(dev.ID())+"."+report.Extension(format))
			if err := rep.WriteFile(path, format); err != nil {
				res.Err = err
				return
			}
			res.Files = append(res.Files, path)
		}
	}
	log.Infof("Analysed: %d reclaimable objects", rep.Total)
}

func (r *Runner) probe(ctx context.Context, dev device.Device, sess device.Session, snap *reclaim.Snapshot, log *logrus.Entry) (map[reclaim.Category]probe.Result, error) {
	prober, err := r.Probe(dev, sess)
	if err != nil {
		return nil, fmt.Errorf("creating prober: %w", err)
	}
	categories := r.ProbeCategories
	if len(categories) == 0 {
		categories = reclaim.Categories
	}
	batch := r.Batch
	if batch <= 0 {
		batch = probe.DefaultBatch
	}

	out := make(map[reclaim.Category]probe.Result, len(categories))
	for _, c := range categories {
		pr, err := probe.Annotate(ctx, prober, snap, c, batch)
		out[c] = pr
		if err != nil {
			log.Warnf("Probing %s stopped: %v", c, err)
			return out, err
		}
		log.Debugf("Probed %s: %d reachable, %d unreachable", c, len(pr.Reachable), len(pr.Unreachable))
	}
	return out, nil
}
