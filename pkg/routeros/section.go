// Package routeros parses RouterOS "compact export" text into flat typed
// records. It performs no I/O and keeps no state between calls.
package routeros

import (
	"regexp"
	"strings"
)

// Section path headers understood by Parse.
const (
	SectionBridge     = "/interface bridge"
	SectionBridgePort = "/interface bridge port"
	SectionVlan       = "/interface vlan"
	SectionEoip       = "/interface eoip"
	SectionBonding    = "/interface bonding"
	SectionIPAddress  = "/ip address"
	SectionPPPSecret  = "/ppp secret"
	SectionIdentity   = "/system identity"
)

// continuation is a trailing backslash, the line break and the indentation
// RouterOS puts in front of the wrapped remainder.
var continuation = regexp.MustCompile(`\\\n *`)

// JoinContinuations normalizes line endings to "\n" and rejoins statements
// the exporter wrapped with a trailing backslash.
func JoinContinuations(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return continuation.ReplaceAllString(text, "")
}

// ExtractSection returns the body of every block headed by name, joined with
// "\n". A block runs from the line after the header up to, not including,
// the next line that starts a new path. An absent section yields "".
func ExtractSection(text, name string) string {
	return ExtractSections(text, name)[name]
}

// ExtractSections is ExtractSection for several names in one pass. Every
// requested name is present in the result, with "" when absent.
func ExtractSections(text string, names ...string) map[string]string {
	wanted := make(map[string]bool, len(names))
	bodies := make(map[string][]string, len(names))
	for _, n := range names {
		wanted[n] = true
		bodies[n] = nil
	}

	current := ""
	for _, line := range strings.Split(JoinContinuations(text), "\n") {
		if strings.HasPrefix(line, "/") {
			header := strings.TrimRight(line, " \t")
			if wanted[header] {
				current = header
			} else {
				current = ""
			}
			continue
		}
		if current != "" {
			bodies[current] = append(bodies[current], line)
		}
	}

	out := make(map[string]string, len(names))
	for _, n := range names {
		out[n] = strings.Join(bodies[n], "\n")
	}
	return out
}
