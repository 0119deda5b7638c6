// Reclaim - RouterOS configuration reclamation tool
//
// reclaim reads the compact export of a MikroTik router and lists the
// objects that can be cleaned up: bridges with no or one port, VLANs and
// EOIP tunnels nothing uses, and remote addresses that are neither planned
// nor active. Every listing carries ready-to-paste print and disable
// commands.
//
// Usage:
//
//	reclaim analyze <export.rsc>       Analyse one saved export
//	reclaim fleet [device...]          Fetch and analyse inventory devices
//	reclaim probe <address...>         Check reachability of addresses
//	reclaim plan split <workbook>      Split an address plan by group
//	reclaim show [device]              Show stored analyses
//	reclaim history                    Query the run log
//	reclaim settings show|get|set      Manage persistent settings
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/netreclaim/reclaim/pkg/cli"
	"github.com/netreclaim/reclaim/pkg/device"
	"github.com/netreclaim/reclaim/pkg/settings"
	"github.com/netreclaim/reclaim/pkg/util"
)

// app carries global flags, loaded settings and the collaborators commands
// share. Tests build their own.
type app struct {
	verbose      bool
	jsonLog      bool
	settingsPath string

	settings *settings.Settings

	opener device.Opener
	stdin  io.Reader
	now    func() time.Time
}

func newApp() *app {
	return &app{
		opener: &device.Dialer{},
		stdin:  os.Stdin,
		now:    time.Now,
	}
}

func main() {
	if err := newRootCmd(newApp()).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, red("Error:"), err)
		os.Exit(1)
	}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:               "reclaim",
		Short:             "RouterOS configuration reclamation tool",
		SilenceUsage:      true,
		SilenceErrors:     true,
		CompletionOptions: cobra.CompletionOptions{HiddenDefaultCmd: true},
		Long: `Reclaim finds unused objects in MikroTik RouterOS configurations.

It reports empty and single-port bridges, free VLANs and EOIP tunnels,
and PPP/EOIP remote addresses missing from the address plan and active
sessions, with print and disable commands for each.

  reclaim analyze export.rsc --plan plan.xlsx --active active.txt`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
	}

	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "verbose output")
	root.PersistentFlags().BoolVar(&a.jsonLog, "json-log", false, "log as JSON on stderr")
	// The current path is the flag default so a preset app keeps it.
	root.PersistentFlags().StringVar(&a.settingsPath, "settings", a.settingsPath, "settings file (default ~/.reclaim/settings.json)")

	root.AddGroup(
		&cobra.Group{ID: "analysis", Title: "Analysis:"},
		&cobra.Group{ID: "data", Title: "Plans & Stored Results:"},
		&cobra.Group{ID: "meta", Title: "Configuration & Meta:"},
	)
	for _, cmd := range []*cobra.Command{newAnalyzeCmd(a), newFleetCmd(a), newProbeCmd(a)} {
		cmd.GroupID = "analysis"
		root.AddCommand(cmd)
	}
	for _, cmd := range []*cobra.Command{newPlanCmd(a), newShowCmd(a), newHistoryCmd(a)} {
		cmd.GroupID = "data"
		root.AddCommand(cmd)
	}
	for _, cmd := range []*cobra.Command{newSettingsCmd(a), newVersionCmd()} {
		cmd.GroupID = "meta"
		root.AddCommand(cmd)
	}
	return root
}

// init applies logging flags and loads settings: file, then RECLAIM_*
// environment overrides. Command flags win over both.
func (a *app) init() error {
	util.ConfigureLogging(a.verbose, a.jsonLog)

	if a.settingsPath == "" {
		a.settingsPath = settings.DefaultSettingsPath()
	}
	s, err := settings.LoadFrom(a.settingsPath)
	if err != nil {
		util.Warnf("Could not load settings: %v", err)
		s = &settings.Settings{}
	}
	if err := s.ApplyEnv(); err != nil {
		return err
	}
	a.settings = s
	return nil
}

// stateDir holds the default audit log next to the settings file.
func (a *app) stateDir() string {
	return filepath.Dir(a.settingsPath)
}

// Color helpers - delegate to pkg/cli
func green(s string) string  { return cli.Green(s) }
func yellow(s string) string { return cli.Yellow(s) }
func red(s string) string    { return cli.Red(s) }
