package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/netreclaim/reclaim/pkg/util"
)

// Memory keeps entries in process. It backs tests and runs that do not
// persist.
type Memory struct {
	mu      sync.RWMutex
	entries map[string][]Entry // oldest first
}

// NewMemory returns an empty in-process store.
func NewMemory() *Memory {
	return &Memory{entries: make(map[string][]Entry)}
}

func (m *Memory) Save(_ context.Context, e Entry) error {
	if err := validate(e); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[e.Device] = append(m.entries[e.Device], e)
	return nil
}

func (m *Memory) Latest(ctx context.Context, device string) (Entry, error) {
	h, err := m.History(ctx, device, 1)
	if err != nil {
		return Entry{}, err
	}
	return h[0], nil
}

func (m *Memory) History(_ context.Context, device string, limit int) ([]Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	list := m.entries[device]
	if len(list) == 0 {
		return nil, fmt.Errorf("device %q: %w", device, util.ErrNotFound)
	}
	out := make([]Entry, 0, len(list))
	for i := len(list) - 1; i >= 0; i-- {
		out = append(out, list[i])
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (m *Memory) Devices(_ context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(m.entries))
	for d := range m.entries {
		out = append(out, d)
	}
	sort.Strings(out)
	return out, nil
}

func (m *Memory) Close() error { return nil }
