package device

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/netreclaim/reclaim/pkg/util"
)

// scriptedSession answers commands from a fixed table.
type scriptedSession struct {
	responses map[string]string
	sent      []string
	closed    bool
}

func (s *scriptedSession) SendCommand(_ context.Context, cmd string) (string, error) {
	s.sent = append(s.sent, cmd)
	out, ok := s.responses[cmd]
	if !ok {
		return "", errors.New("bad command name")
	}
	return out, nil
}

func (s *scriptedSession) Close() error {
	s.closed = true
	return nil
}

func TestFetchCommands(t *testing.T) {
	s := &scriptedSession{responses: map[string]string{
		CmdExport:         "/interface bridge\nadd name=br1\n",
		CmdActiveSessions: " 0 client pppoe 10.0.0.9 1h\n",
		CmdIdentity:       "  name: core-msk-1\r\n",
	}}
	ctx := context.Background()

	export, err := FetchExport(ctx, s)
	require.NoError(t, err)
	assert.Contains(t, export, "add name=br1")

	active, err := FetchActiveSessions(ctx, s)
	require.NoError(t, err)
	assert.Contains(t, active, "10.0.0.9")

	name, err := FetchIdentity(ctx, s)
	require.NoError(t, err)
	assert.Equal(t, "core-msk-1", name)

	assert.Equal(t, []string{CmdExport, CmdActiveSessions, CmdIdentity}, s.sent)
}

func TestFetchExport_Error(t *testing.T) {
	s := &scriptedSession{}
	_, err := FetchExport(context.Background(), s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fetching export")
}

func TestParseIdentity(t *testing.T) {
	assert.Equal(t, "edge 1", ParseIdentity("name: edge 1\n"))
	assert.Equal(t, "", ParseIdentity("bad command name print (line 1 column 17)"))
}

func TestPingCommand(t *testing.T) {
	assert.Equal(t, "/ping 10.0.0.1 count=5", PingCommand("10.0.0.1", 5))
}

func TestLoggedSession(t *testing.T) {
	logger, hook := logtest.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	inner := &scriptedSession{responses: map[string]string{CmdIdentity: "name: x"}}
	s := &loggedSession{Session: inner, log: logrus.NewEntry(logger)}

	_, err := s.SendCommand(context.Background(), CmdIdentity)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	assert.True(t, inner.closed)
	assert.GreaterOrEqual(t, len(hook.AllEntries()), 3)
	assert.Equal(t, "Disconnected", hook.LastEntry().Message)
}

func TestRunWithContext_Cancelled(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	release := make(chan struct{})
	defer close(release)
	_, err := runWithContext(ctx, func() (string, error) {
		<-release
		return "late", nil
	})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestDialer_InvalidDevice(t *testing.T) {
	_, err := (&Dialer{}).Open(context.Background(), Device{Host: "10.0.0.1"})
	assert.ErrorIs(t, err, util.ErrValidationFailed)
}

func TestOpenerFunc(t *testing.T) {
	want := &scriptedSession{}
	var opener Opener = OpenerFunc(func(context.Context, Device) (Session, error) { return want, nil })
	got, err := opener.Open(context.Background(), Device{})
	require.NoError(t, err)
	assert.Same(t, want, got)
}
