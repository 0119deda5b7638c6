package plan

import (
	"sort"
	"strings"
)

// DeviceRow is a plan row describing a manageable device.
type DeviceRow struct {
	Group    string
	Name     string
	Address  string
	Login    string
	Password string
}

// DeviceOptions selects device rows from a plan workbook.
type DeviceOptions struct {
	Sheet string
	// Match keeps rows whose name contains every fragment. Empty keeps all.
	Match []string
}

// Devices returns the plan rows that name a device with an address, ordered
// by group then name.
func Devices(path string, opts DeviceOptions) ([]DeviceRow, error) {
	t, err := ReadTable(path, opts.Sheet)
	if err != nil {
		return nil, err
	}

	var out []DeviceRow
	for _, row := range t.Rows {
		d := DeviceRow{
			Group:    strings.TrimSpace(t.Value(row, DefaultGroupColumn)),
			Name:     strings.TrimSpace(t.Value(row, DefaultNameColumn)),
			Address:  strings.TrimSpace(t.Value(row, DefaultIPColumn)),
			Login:    t.Value(row, DefaultLoginColumn),
			Password: t.Value(row, DefaultPassColumn),
		}
		if d.Address == "" || !matchesAll(d.Name, opts.Match) {
			continue
		}
		out = append(out, d)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Group != out[j].Group {
			return out[i].Group < out[j].Group
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func matchesAll(name string, fragments []string) bool {
	for _, f := range fragments {
		if !strings.Contains(name, f) {
			return false
		}
	}
	return true
}
