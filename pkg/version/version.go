// Package version carries build metadata for the reclaim binary.
package version

import (
	"fmt"
	"runtime"
)

// Version, GitCommit, and BuildDate are set at build time via ldflags:
//
//	go build -ldflags "-X github.com/netreclaim/reclaim/pkg/version.Version=v0.3.0 \
//	  -X github.com/netreclaim/reclaim/pkg/version.GitCommit=abc1234 \
//	  -X github.com/netreclaim/reclaim/pkg/version.BuildDate=2026-01-01T00:00:00Z"
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Info returns a formatted version string for display.
func Info() string {
	return fmt.Sprintf("reclaim %s (%s) built %s %s/%s",
		Version, GitCommit, BuildDate, runtime.GOOS, runtime.GOARCH)
}
