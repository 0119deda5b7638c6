package plan

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/netreclaim/reclaim/pkg/util"
)

// SplitOptions controls Split.
type SplitOptions struct {
	Sheet       string
	GroupColumn string
	IPColumn    string
	// Dir receives the files; created when missing. Defaults to Suffix.
	Dir    string
	Suffix string
}

// SplitResult describes one file Split wrote.
type SplitResult struct {
	Group     string
	Path      string
	Addresses int
}

// GroupFileName returns "<dir>/<group>_<suffix>.txt".
func GroupFileName(group, suffix, dir string) string {
	return filepath.Join(dir, util.SanitizeFileName(group)+"_"+suffix+".txt")
}

// Split groups the addresses of a plan workbook by GroupColumn and writes
// each group's sorted addresses, one per line, to GroupFileName. Rows with
// no address are dropped.
func Split(path string, opts SplitOptions) ([]SplitResult, error) {
	if opts.GroupColumn == "" {
		opts.GroupColumn = DefaultGroupColumn
	}
	if opts.IPColumn == "" {
		opts.IPColumn = DefaultIPColumn
	}
	if opts.Suffix == "" {
		opts.Suffix = "tu"
	}
	if opts.Dir == "" {
		opts.Dir = opts.Suffix
	}

	t, err := ReadTable(path, opts.Sheet)
	if err != nil {
		return nil, err
	}
	for _, col := range []string{opts.GroupColumn, opts.IPColumn} {
		if t.Index(col) < 0 {
			return nil, fmt.Errorf("column %q not in sheet header: %w", col, util.ErrNotFound)
		}
	}

	groups := make(map[string][]string)
	for _, row := range t.Rows {
		ip := strings.TrimSpace(t.Value(row, opts.IPColumn))
		if ip == "" {
			continue
		}
		g := strings.TrimSpace(t.Value(row, opts.GroupColumn))
		groups[g] = append(groups[g], ip)
	}

	if err := os.MkdirAll(opts.Dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	names := make([]string, 0, len(groups))
	for g := range groups {
		names = append(names, g)
	}
	sort.Strings(names)

	var out []SplitResult
	for _, g := range names {
		ips := groups[g]
		sort.Strings(ips)
		file := GroupFileName(g, opts.Suffix, opts.Dir)
		if err := os.WriteFile(file, []byte(strings.Join(ips, "\n")), 0644); err != nil {
			return out, fmt.Errorf("writing %s: %w", file, err)
		}
		out = append(out, SplitResult{Group: g, Path: file, Addresses: len(ips)})
	}
	return out, nil
}
