package device

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

// RouterOS console commands.
const (
	CmdExport         = "/export compact"
	CmdActiveSessions = "/ppp active print"
	CmdIdentity       = "/system identity print"
	CmdAddresses      = "/ip address print"
)

var identityName = regexp.MustCompile(`(?m)^\s*name:\s*(.+?)\s*$`)

// FetchExport returns the compact export of the device configuration.
func FetchExport(ctx context.Context, s Session) (string, error) {
	out, err := s.SendCommand(ctx, CmdExport)
	if err != nil {
		return "", fmt.Errorf("fetching export: %w", err)
	}
	return out, nil
}

// FetchActiveSessions returns the raw `/ppp active print` table. Addresses
// are extracted by the caller with the same IPv4 scan used for plans.
func FetchActiveSessions(ctx context.Context, s Session) (string, error) {
	out, err := s.SendCommand(ctx, CmdActiveSessions)
	if err != nil {
		return "", fmt.Errorf("fetching active sessions: %w", err)
	}
	return out, nil
}

// FetchIdentity returns the system identity name, or "" when the output
// carries none.
func FetchIdentity(ctx context.Context, s Session) (string, error) {
	out, err := s.SendCommand(ctx, CmdIdentity)
	if err != nil {
		return "", fmt.Errorf("fetching identity: %w", err)
	}
	return ParseIdentity(out), nil
}

// ParseIdentity extracts the name from `/system identity print` output.
func ParseIdentity(out string) string {
	m := identityName.FindStringSubmatch(strings.ReplaceAll(out, "\r\n", "\n"))
	if m == nil {
		return ""
	}
	return m[1]
}

// PingCommand returns the console command that pings address count times.
func PingCommand(address string, count int) string {
	return fmt.Sprintf("/ping %s count=%d", address, count)
}
