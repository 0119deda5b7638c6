package device

import (
	"context"
	"fmt"

	"github.com/scrapli/scrapligo/driver/network"
	"github.com/scrapli/scrapligo/driver/options"
	"github.com/scrapli/scrapligo/platform"
	"github.com/scrapli/scrapligo/util"
)

// scrapliTransport maps transports onto scrapligo transport names.
var scrapliTransport = map[string]string{
	TransportScrapli: "standard",
	TransportSystem:  "system",
	TransportTelnet:  "telnet",
}

// scrapliSession drives an interactive CLI session.
type scrapliSession struct {
	driver *network.Driver
}

func dialScrapli(ctx context.Context, dev Device) (Session, error) {
	opts := []util.Option{
		options.WithAuthUsername(dev.Username),
		options.WithAuthPassword(dev.Password),
		options.WithPort(dev.Port),
		options.WithTimeoutOps(dev.Timeout),
		options.WithTransportType(scrapliTransport[dev.Transport]),
	}
	if !dev.StrictKey {
		opts = append(opts, options.WithAuthNoStrictKey())
	}

	p, err := platform.NewPlatform(dev.Platform, dev.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("create platform failed: %w", err)
	}
	d, err := p.GetNetworkDriver()
	if err != nil {
		return nil, fmt.Errorf("get network driver failed: %w", err)
	}

	_, err = runWithContext(ctx, func() (string, error) { return "", d.Open() })
	if err != nil {
		return nil, fmt.Errorf("open connection failed: %w", err)
	}
	return &scrapliSession{driver: d}, nil
}

func (s *scrapliSession) SendCommand(ctx context.Context, cmd string) (string, error) {
	return runWithContext(ctx, func() (string, error) {
		r, err := s.driver.SendCommand(cmd)
		if err != nil {
			return "", err
		}
		if r.Failed != nil {
			return r.Result, r.Failed
		}
		return r.Result, nil
	})
}

func (s *scrapliSession) Close() error {
	return s.driver.Close()
}
