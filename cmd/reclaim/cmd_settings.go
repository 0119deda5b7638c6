package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/netreclaim/reclaim/pkg/cli"
	"github.com/netreclaim/reclaim/pkg/settings"
)

func newSettingsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Manage persistent settings",
		Long: `Manage persistent settings stored in ~/.reclaim/settings.json.

Every setting can also be overridden with a RECLAIM_<SETTING> environment
variable (e.g. RECLAIM_PLAN_FILE); command flags override both.

  reclaim settings show
  reclaim settings set plan_file /srv/plans/plan.xlsx
  reclaim settings set store_url sqlite:///var/lib/reclaim/snapshots.db
  reclaim settings clear`,
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Show current settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Settings file: %s\n\n", a.settingsPath)

			t := cli.NewTable(out, "SETTING", "VALUE")
			for _, key := range a.settings.Keys() {
				value, _ := a.settings.Get(key)
				if value == "" {
					value = "(not set)"
				}
				t.Row(key, value)
			}
			t.Flush()
			return nil
		},
	}

	get := &cobra.Command{
		Use:   "get <setting>",
		Short: "Get a setting value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := a.settings.Get(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), value)
			return nil
		},
	}

	set := &cobra.Command{
		Use:   "set <setting> <value>",
		Short: "Set a setting value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			// Environment overrides must not leak into the saved file.
			s, err := settings.LoadFrom(a.settingsPath)
			if err != nil {
				s = &settings.Settings{}
			}
			if err := s.Set(args[0], args[1]); err != nil {
				return fmt.Errorf("%w (valid: %v)", err, s.Keys())
			}
			if err := s.SaveTo(a.settingsPath); err != nil {
				return fmt.Errorf("saving settings: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s set to: %s\n", args[0], args[1])
			return nil
		},
	}

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Reset all settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			s := &settings.Settings{}
			if err := s.SaveTo(a.settingsPath); err != nil {
				return fmt.Errorf("saving settings: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Settings cleared")
			return nil
		},
	}

	cmd.AddCommand(show, get, set, clearCmd)
	return cmd
}
