package device

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/netreclaim/reclaim/pkg/util"
)

// Session runs commands on one connected device.
type Session interface {
	SendCommand(ctx context.Context, cmd string) (string, error)
	Close() error
}

// Opener opens sessions. Dialer is the production implementation; tests
// and the fleet runner substitute their own.
type Opener interface {
	Open(ctx context.Context, dev Device) (Session, error)
}

// OpenerFunc adapts a function to Opener.
type OpenerFunc func(ctx context.Context, dev Device) (Session, error)

// Open calls f.
func (f OpenerFunc) Open(ctx context.Context, dev Device) (Session, error) { return f(ctx, dev) }

// Dialer opens real sessions over the device's transport.
type Dialer struct {
	// Log receives connection events; util.Logger when nil.
	Log *logrus.Entry
	// KnownHosts is the known_hosts file used when a device sets
	// auth_strict_key. Defaults to ~/.ssh/known_hosts.
	KnownHosts string
}

// Open connects to dev.
func (d *Dialer) Open(ctx context.Context, dev Device) (Session, error) {
	dev.normalize()
	if err := dev.Validate(); err != nil {
		return nil, err
	}
	log := util.EntryOrDefault(d.Log).WithField("device", dev.ID())
	log.Debugf("Connecting to %s via %s", dev.Address(), dev.Transport)

	var (
		s   Session
		err error
	)
	switch dev.Transport {
	case TransportSSH:
		s, err = dialSSH(ctx, dev, d.KnownHosts)
	case TransportScrapli, TransportSystem, TransportTelnet:
		s, err = dialScrapli(ctx, dev)
	default:
		err = fmt.Errorf("transport %q: %w", dev.Transport, util.ErrUnsupported)
	}
	if err != nil {
		log.Warnf("Connection to %s failed: %v", dev.Address(), err)
		return nil, fmt.Errorf("%s: %w: %v", dev.ID(), util.ErrNotConnected, err)
	}
	log.Infof("Connected to %s via %s", dev.Address(), dev.Transport)
	return &loggedSession{Session: s, log: log}, nil
}

// Open connects to dev with a default Dialer.
func Open(ctx context.Context, dev Device) (Session, error) {
	return (&Dialer{}).Open(ctx, dev)
}

// loggedSession traces every command at debug level.
type loggedSession struct {
	Session
	log *logrus.Entry
}

func (s *loggedSession) SendCommand(ctx context.Context, cmd string) (string, error) {
	s.log.Debugf("-> %s", cmd)
	out, err := s.Session.SendCommand(ctx, cmd)
	if err != nil {
		s.log.Debugf("<- error: %v", err)
		return out, err
	}
	s.log.Debugf("<- %d bytes", len(out))
	return out, nil
}

func (s *loggedSession) Close() error {
	err := s.Session.Close()
	s.log.Debug("Disconnected")
	return err
}

// runWithContext runs fn in a goroutine and returns early when ctx ends.
// fn keeps running to completion in that case; its result is discarded.
func runWithContext(ctx context.Context, fn func() (string, error)) (string, error) {
	type result struct {
		out string
		err error
	}
	done := make(chan result, 1)
	go func() {
		out, err := fn()
		done <- result{out, err}
	}()
	select {
	case r := <-done:
		return r.out, r.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}
