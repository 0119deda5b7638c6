package probe

import (
	"context"
	"regexp"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/netreclaim/reclaim/pkg/device"
	"github.com/netreclaim/reclaim/pkg/util"
)

var pingSummary = regexp.MustCompile(`sent=(\d+).*received=(\d+).*packet-loss=(\d+%)`)

// PingStats is the summary line of a RouterOS `/ping`.
type PingStats struct {
	Sent       int
	Received   int
	PacketLoss string
}

// ParsePing extracts the last summary line of ping output. RouterOS repeats
// the summary as the run progresses; the last one carries the final totals.
func ParsePing(out string) (PingStats, bool) {
	matches := pingSummary.FindAllStringSubmatch(out, -1)
	if len(matches) == 0 {
		return PingStats{}, false
	}
	m := matches[len(matches)-1]
	sent, _ := strconv.Atoi(m[1])
	recv, _ := strconv.Atoi(m[2])
	return PingStats{Sent: sent, Received: recv, PacketLoss: m[3]}, true
}

// DeviceProber pings from a router, typically the concentrator that
// terminates the tunnels, so the answer reflects the path customers use.
type DeviceProber struct {
	Session   device.Session
	Count     int
	Threshold int
	// Log receives one line per address; util.Logger when nil.
	Log *logrus.Entry
}

// Probe pings each address in turn. An address whose command fails or whose
// output has no summary is left out of the result.
func (p *DeviceProber) Probe(ctx context.Context, addrs []string) (Result, error) {
	count, threshold := p.Count, p.Threshold
	if count <= 0 {
		count = DefaultCount
	}
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	log := util.EntryOrDefault(p.Log)

	var res Result
	for _, addr := range addrs {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		out, err := p.Session.SendCommand(ctx, device.PingCommand(addr, count))
		if err != nil {
			if ctx.Err() != nil {
				return res, ctx.Err()
			}
			log.Warnf("ping %s: %v", addr, err)
			continue
		}
		stats, ok := ParsePing(out)
		if !ok {
			log.Warnf("ping %s: no summary in output", addr)
			continue
		}
		if stats.Received >= threshold {
			log.Infof("ICMP %s is true (%d/%d)", addr, stats.Received, stats.Sent)
			res.Reachable = append(res.Reachable, addr)
		} else {
			log.Infof("ICMP %s is false (%d/%d)", addr, stats.Received, stats.Sent)
			res.Unreachable = append(res.Unreachable, addr)
		}
	}
	return res, nil
}
