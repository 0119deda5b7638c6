// Package probe checks whether candidate remote addresses still answer and
// feeds the results into a reclaim.Snapshot.
package probe

import (
	"context"
	"fmt"

	"github.com/netreclaim/reclaim/pkg/reclaim"
)

// Defaults for both probers: five echo requests, reachable on three replies.
const (
	DefaultCount     = 5
	DefaultThreshold = 3
	DefaultBatch     = 50
)

// Result is the outcome of probing a list of addresses. Addresses whose
// probe produced no usable answer are in neither list.
type Result struct {
	Reachable   []string
	Unreachable []string
}

// Merge appends other to r.
func (r *Result) Merge(other Result) {
	r.Reachable = append(r.Reachable, other.Reachable...)
	r.Unreachable = append(r.Unreachable, other.Unreachable...)
}

// Prober checks reachability of addresses. A returned error may come with
// a partial Result covering the addresses probed before it.
type Prober interface {
	Probe(ctx context.Context, addrs []string) (Result, error)
}

// Chunk splits list into consecutive slices of at most size elements. A
// size below one yields a single chunk.
func Chunk(list []string, size int) [][]string {
	if len(list) == 0 {
		return nil
	}
	if size < 1 || size >= len(list) {
		return [][]string{list}
	}
	out := make([][]string, 0, (len(list)+size-1)/size)
	for start := 0; start < len(list); start += size {
		end := start + size
		if end > len(list) {
			end = len(list)
		}
		out = append(out, list[start:end])
	}
	return out
}

// Annotate probes every address of category in batches and records each
// batch in snap as soon as it completes, so an interrupted run keeps what
// it learned. The returned Result covers every recorded batch.
func Annotate(ctx context.Context, p Prober, snap *reclaim.Snapshot, category reclaim.Category, batch int) (Result, error) {
	ips, err := snap.IPs(category)
	if err != nil {
		return Result{}, err
	}

	var total Result
	for _, chunk := range Chunk(ips.Sorted(), batch) {
		res, probeErr := p.Probe(ctx, chunk)
		if err := snap.Annotate(category, res.Reachable, res.Unreachable); err != nil {
			return total, fmt.Errorf("recording %s probe results: %w", category, err)
		}
		total.Merge(res)
		if probeErr != nil {
			return total, probeErr
		}
	}
	return total, nil
}
