package probe

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pingUp = `  SEQ HOST                                     SIZE TTL TIME  STATUS
    0 10.0.0.1                                   56  64 0ms
    1 10.0.0.1                                   56  64 0ms
    2 10.0.0.1                                   56  64 0ms
    3 10.0.0.1                                   56  64 0ms
    4 10.0.0.1                                   56  64 0ms
    sent=5 received=5 packet-loss=0% min-rtt=0ms avg-rtt=0ms max-rtt=0ms
`

const pingDown = `  SEQ HOST                                     SIZE TTL TIME  STATUS
    0 10.0.0.2                                                     timeout
    sent=1 received=0 packet-loss=100%
    1 10.0.0.2                                                     timeout
    2 10.0.0.2                                   56  64 1ms
    3 10.0.0.2                                                     timeout
    4 10.0.0.2                                   56  64 1ms
    sent=5 received=2 packet-loss=60% min-rtt=1ms avg-rtt=1ms max-rtt=1ms
`

func TestParsePing(t *testing.T) {
	stats, ok := ParsePing(pingUp)
	require.True(t, ok)
	assert.Equal(t, PingStats{Sent: 5, Received: 5, PacketLoss: "0%"}, stats)

	stats, ok = ParsePing(pingDown)
	require.True(t, ok)
	assert.Equal(t, 2, stats.Received, "last summary wins")
	assert.Equal(t, "60%", stats.PacketLoss)

	_, ok = ParsePing("invalid value for argument address")
	assert.False(t, ok)
}

type pingSession struct {
	out map[string]string
}

func (s *pingSession) SendCommand(_ context.Context, cmd string) (string, error) {
	if out, ok := s.out[cmd]; ok {
		return out, nil
	}
	return "", errors.New("timeout while waiting for prompt")
}

func (s *pingSession) Close() error { return nil }

func TestDeviceProber(t *testing.T) {
	s := &pingSession{out: map[string]string{
		"/ping 10.0.0.1 count=5": pingUp,
		"/ping 10.0.0.2 count=5": pingDown,
		"/ping 10.0.0.3 count=5": "failure: no route to host",
	}}
	p := &DeviceProber{Session: s}

	res, err := p.Probe(context.Background(), []string{"10.0.0.1", "10.0.0.2", "10.0.0.3", "10.0.0.4"})
	require.NoError(t, err)
	assert.Equal(t, []string{"10.0.0.1"}, res.Reachable)
	assert.Equal(t, []string{"10.0.0.2"}, res.Unreachable)
}

func TestDeviceProber_Threshold(t *testing.T) {
	s := &pingSession{out: map[string]string{"/ping 10.0.0.2 count=5": pingDown}}
	p := &DeviceProber{Session: s, Threshold: 2}

	res, err := p.Probe(context.Background(), []string{"10.0.0.2"})
	require.NoError(t, err)
	assert.Equal(t, []string{"10.0.0.2"}, res.Reachable)
}

func TestDeviceProber_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := (&DeviceProber{Session: &pingSession{}}).Probe(ctx, []string{"10.0.0.1"})
	assert.ErrorIs(t, err, context.Canceled)
}
