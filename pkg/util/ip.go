package util

import (
	"net"
	"regexp"
	"strings"
)

// ipv4Literal matches a dotted-quad literal without validating octet ranges,
// the same loose form address plans and `/ppp active print` output use.
var ipv4Literal = regexp.MustCompile(`\d+\.\d+\.\d+\.\d+`)

var leadingIPv4 = regexp.MustCompile(`^(?:\d+\.){3}\d+`)

// ExtractIPv4s returns every dotted-quad literal in text, in order of
// appearance. Duplicates are kept.
func ExtractIPv4s(text string) []string {
	return ipv4Literal.FindAllString(text, -1)
}

// LeadingIPv4 returns the dotted quad at the start of value, or "" when value
// does not begin with one. "10.0.0.1/24" yields "10.0.0.1".
func LeadingIPv4(value string) string {
	return leadingIPv4.FindString(value)
}

// IsValidIPv4 checks if a string is a valid IPv4 address
func IsValidIPv4(ipStr string) bool {
	ip := net.ParseIP(ipStr)
	return ip != nil && ip.To4() != nil
}

// StripMask removes a trailing "/len" from an address.
func StripMask(addr string) string {
	if i := strings.IndexByte(addr, '/'); i >= 0 {
		return addr[:i]
	}
	return addr
}
