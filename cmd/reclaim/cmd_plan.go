package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/netreclaim/reclaim/pkg/cli"
	"github.com/netreclaim/reclaim/pkg/device"
	"github.com/netreclaim/reclaim/pkg/plan"
	"github.com/netreclaim/reclaim/pkg/reclaim"
	"github.com/netreclaim/reclaim/pkg/util"
)

func newPlanCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Work with address plans",
		Long: `Inspect and split address-plan workbooks.

  reclaim plan show plan.xlsx
  reclaim plan split plan.xlsx --dir tu
  reclaim plan inventory plan.xlsx --match ctr > remote_node.yaml`,
	}
	cmd.AddCommand(newPlanShowCmd(a), newPlanSplitCmd(), newPlanInventoryCmd())
	return cmd
}

func newPlanShowCmd(a *app) *cobra.Command {
	var opts plan.Options
	cmd := &cobra.Command{
		Use:   "show [file]",
		Short: "List the distinct addresses of a plan",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := a.settings.PlanFile
			if len(args) > 0 {
				path = args[0]
			}
			if path == "" {
				return fmt.Errorf("plan file required: give it as argument or 'reclaim settings set plan_file <file>'")
			}
			addrs, err := plan.LoadFile(path, opts)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, ip := range reclaim.NewSet(addrs...).Sorted() {
				fmt.Fprintln(out, ip)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.Sheet, "sheet", "", "workbook sheet (default first)")
	cmd.Flags().StringVar(&opts.Column, "column", "", "address column (default IP_DEVICE)")
	return cmd
}

func newPlanSplitCmd() *cobra.Command {
	var opts plan.SplitOptions
	cmd := &cobra.Command{
		Use:   "split <workbook>",
		Short: "Write one address file per group",
		Long: `Group the plan rows by a column (default "Город") and write the addresses
of each group to <dir>/<group>_<suffix>.txt.

  reclaim plan split plan.xlsx
  reclaim plan split plan.xlsx --group-column Region --suffix plan --dir plans`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			results, err := plan.Split(args[0], opts)
			if err != nil {
				return err
			}
			printSplitResults(cmd.OutOrStdout(), results)
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.Sheet, "sheet", "", "workbook sheet (default first)")
	cmd.Flags().StringVar(&opts.GroupColumn, "group-column", plan.DefaultGroupColumn, "grouping column")
	cmd.Flags().StringVar(&opts.IPColumn, "column", plan.DefaultIPColumn, "address column")
	cmd.Flags().StringVar(&opts.Dir, "dir", "", "output directory (default the suffix)")
	cmd.Flags().StringVar(&opts.Suffix, "suffix", "tu", "file name suffix")
	return cmd
}

func printSplitResults(out io.Writer, results []plan.SplitResult) {
	t := cli.NewTable(out, "GROUP", "ADDRESSES", "FILE")
	total := 0
	for _, r := range results {
		t.Row(r.Group, r.Addresses, r.Path)
		total += r.Addresses
	}
	t.Flush()
	fmt.Fprintf(out, "\n%d groups, %d addresses\n", len(results), total)
}

func newPlanInventoryCmd() *cobra.Command {
	var (
		opts      plan.DeviceOptions
		match     string
		transport string
	)
	cmd := &cobra.Command{
		Use:   "inventory <workbook>",
		Short: "Build a device inventory from plan rows",
		Long: `Print a YAML inventory of the plan rows that name a device (NAME_DEVICE,
IP_DEVICE, LOGIN, PASSWORD columns). --match keeps names containing every
comma-separated fragment.

  reclaim plan inventory plan.xlsx --match ctr > remote_node.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Match = util.SplitCommaSeparated(match)
			rows, err := plan.Devices(args[0], opts)
			if err != nil {
				return err
			}
			return writeInventory(cmd.OutOrStdout(), rows, transport)
		},
	}
	cmd.Flags().StringVar(&opts.Sheet, "sheet", "", "workbook sheet (default first)")
	cmd.Flags().StringVar(&match, "match", "", "comma-separated name fragments")
	cmd.Flags().StringVar(&transport, "transport", device.TransportScrapli, "transport written for every device")
	return cmd
}

func writeInventory(out io.Writer, rows []plan.DeviceRow, transport string) error {
	devices := make([]device.Device, 0, len(rows))
	for _, r := range rows {
		devices = append(devices, device.Device{
			Name:      r.Name,
			Host:      r.Address,
			Username:  r.Login,
			Password:  r.Password,
			Platform:  device.PlatformRouterOS,
			Transport: transport,
		})
	}
	enc := yaml.NewEncoder(out)
	enc.SetIndent(2)
	if err := enc.Encode(devices); err != nil {
		return fmt.Errorf("encoding inventory: %w", err)
	}
	return enc.Close()
}
