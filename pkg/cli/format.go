// Package cli provides shared formatting helpers for the reclaim CLI.
package cli

import (
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"
)

// colorEnabled is false when NO_COLOR is set (per no-color.org) or stdout
// is not a terminal.
var colorEnabled = DetectColor(os.Stdout)

// DetectColor reports whether ANSI colour should be written to f.
func DetectColor(f *os.File) bool {
	if os.Getenv("NO_COLOR") != "" || f == nil {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

// SetColor forces colour output on or off.
func SetColor(enabled bool) {
	colorEnabled = enabled
}

func wrap(code, s string) string {
	if !colorEnabled {
		return s
	}
	return "\033[" + code + "m" + s + "\033[0m"
}

// Green wraps s in ANSI green.
func Green(s string) string { return wrap("32", s) }

// Yellow wraps s in ANSI yellow.
func Yellow(s string) string { return wrap("33", s) }

// Red wraps s in ANSI red.
func Red(s string) string { return wrap("31", s) }

// Bold wraps s in ANSI bold.
func Bold(s string) string { return wrap("1", s) }

// Status renders a device outcome: green ok, red otherwise.
func Status(ok bool) string {
	if ok {
		return Green("ok")
	}
	return Red("failed")
}

// Count renders n in yellow when non-zero, so reclaimable categories stand out.
func Count(n int) string {
	s := strconv.Itoa(n)
	if n == 0 {
		return s
	}
	return Yellow(s)
}

// DotPad pads name with dots to the given width.
// Example: DotPad("vlans_free", 20) → "vlans_free ........."
func DotPad(name string, width int) string {
	if width <= 0 || len(name) >= width-1 {
		return name
	}
	dots := width - len(name) - 1
	return name + " " + strings.Repeat(".", dots)
}
