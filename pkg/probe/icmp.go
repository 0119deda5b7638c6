package probe

import (
	"context"
	"fmt"
	"sync"
	"time"

	probing "github.com/prometheus-community/pro-bing"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/netreclaim/reclaim/pkg/util"
)

// PingFunc sends count echo requests to addr and returns how many replies
// arrived. Tests replace it.
var PingFunc = func(ctx context.Context, addr string, count int, timeout time.Duration, privileged bool) (int, error) {
	pinger, err := probing.NewPinger(addr)
	if err != nil {
		return 0, fmt.Errorf("failed to create pinger: %w", err)
	}

	pinger.Count = count
	pinger.Timeout = timeout
	pinger.SetPrivileged(privileged)

	if err := pinger.RunWithContext(ctx); err != nil {
		return 0, err
	}
	return pinger.Statistics().PacketsRecv, nil
}

// ICMPProber pings from the local host.
type ICMPProber struct {
	Count     int
	Threshold int
	// Timeout bounds one address; defaults to Count seconds plus one.
	Timeout time.Duration
	// Privileged uses raw sockets instead of unprivileged datagram ICMP.
	Privileged bool
	// Parallel is the number of addresses probed at once; defaults to 16.
	Parallel int
	Log      *logrus.Entry
}

// Probe pings addrs concurrently. Addresses the pinger cannot probe at all
// are left out of the result.
func (p *ICMPProber) Probe(ctx context.Context, addrs []string) (Result, error) {
	count, threshold := p.Count, p.Threshold
	if count <= 0 {
		count = DefaultCount
	}
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	if threshold > count {
		threshold = count
	}
	timeout := p.Timeout
	if timeout <= 0 {
		timeout = time.Duration(count+1) * time.Second
	}
	parallel := p.Parallel
	if parallel <= 0 {
		parallel = 16
	}
	log := util.EntryOrDefault(p.Log)

	up := make([]bool, len(addrs))
	done := make([]bool, len(addrs))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(parallel)
	for i, addr := range addrs {
		g.Go(func() error {
			recv, err := PingFunc(gctx, addr, count, timeout, p.Privileged)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				log.Warnf("ping %s: %v", addr, err)
				return nil
			}
			log.Debugf("ICMP %s received %d/%d", addr, recv, count)
			mu.Lock()
			up[i], done[i] = recv >= threshold, true
			mu.Unlock()
			return nil
		})
	}
	err := g.Wait()

	// Keep input order so results are stable across runs.
	var res Result
	for i, addr := range addrs {
		if !done[i] {
			continue
		}
		if up[i] {
			res.Reachable = append(res.Reachable, addr)
		} else {
			res.Unreachable = append(res.Unreachable, addr)
		}
	}
	return res, err
}
