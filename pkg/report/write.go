package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"

	"github.com/netreclaim/reclaim/pkg/util"
)

// Output formats accepted by Write.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
	FormatXLSX = "xlsx"
)

// Formats lists every output format.
var Formats = []string{FormatText, FormatJSON, FormatYAML, FormatXLSX}

// Extension returns the file extension, without dot, used for format.
func Extension(format string) string {
	switch strings.ToLower(format) {
	case "", FormatText:
		return "txt"
	case "yml":
		return FormatYAML
	}
	return strings.ToLower(format)
}

// WriteFile renders r in format to path, creating parent directories.
func (r *Report) WriteFile(path, format string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating report directory: %w", err)
	}
	var buf bytes.Buffer
	if err := r.Write(&buf, format); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("writing report %s: %w", path, err)
	}
	return nil
}

// Write renders r in format to w.
func (r *Report) Write(w io.Writer, format string) error {
	switch strings.ToLower(format) {
	case "", FormatText:
		return r.WriteText(w)
	case FormatJSON:
		return r.WriteJSON(w)
	case FormatYAML, "yml":
		return r.WriteYAML(w)
	case FormatXLSX:
		return r.WriteXLSX(w)
	}
	return fmt.Errorf("unknown report format %q: %w", format, util.ErrUnsupported)
}

// WriteText writes the summary header, one count line per section, the
// total, then every section's members with their print and disable
// commands separated by tabs.
func (r *Report) WriteText(w io.Writer) error {
	var b strings.Builder

	name := r.Identity
	if name == "" {
		name = r.Device
	}
	fmt.Fprintf(&b, "--- Configuration analysis of %s", name)
	if r.Device != "" && r.Device != name {
		fmt.Fprintf(&b, " (%s)", r.Device)
	}
	fmt.Fprintf(&b, " on %s ---\n", r.GeneratedAt.Format("2006-01-02 15:04"))
	if r.Sources.AddressPlan != "" || r.Sources.ActiveSessions != "" {
		fmt.Fprintf(&b, "Remote addresses found in %q and %q are excluded\n",
			r.Sources.AddressPlan, r.Sources.ActiveSessions)
	}
	inv := r.Inventory
	fmt.Fprintf(&b, "Analyzed: vlans - %d, eoips - %d, bridges - %d, bridge ports - %d, bondings - %d\n\n",
		inv.Vlans, inv.Eoips, inv.Bridges, inv.BridgePorts, inv.Bondings)

	for _, s := range r.Sections {
		fmt.Fprintf(&b, "%s - %d\n", util.CapitalizeFirst(s.Description), s.Count)
	}
	fmt.Fprintf(&b, "Total: %d\n", r.Total)

	for _, s := range r.Sections {
		fmt.Fprintf(&b, "\n---%s - %d:\n", s.Description, s.Count)
		for _, e := range s.Entries {
			fmt.Fprintf(&b, "%s\t%s\t%s\n", e.Name, e.Print, e.Disable)
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// WriteJSON writes r as indented JSON.
func (r *Report) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// WriteYAML writes r as YAML.
func (r *Report) WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(r); err != nil {
		return err
	}
	return enc.Close()
}

// summarySheet is the first sheet of the workbook.
const summarySheet = "summary"

// WriteXLSX writes r as a workbook: a summary sheet with one row per section
// and one sheet per section listing its members.
func (r *Report) WriteXLSX(w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return fmt.Errorf("naming summary sheet: %w", err)
	}

	summary := [][]interface{}{
		{"device", r.Device},
		{"identity", r.Identity},
		{"generated_at", r.GeneratedAt.Format("2006-01-02 15:04:05")},
		{"address_plan", r.Sources.AddressPlan},
		{"active_sessions", r.Sources.ActiveSessions},
		{},
		{"category", "description", "count"},
	}
	for _, s := range r.Sections {
		summary = append(summary, []interface{}{s.Key, s.Description, s.Count})
	}
	summary = append(summary, []interface{}{"total", "", r.Total})
	if err := writeSheetRows(f, summarySheet, summary); err != nil {
		return err
	}

	for _, s := range r.Sections {
		if _, err := f.NewSheet(s.Key); err != nil {
			return fmt.Errorf("creating sheet %s: %w", s.Key, err)
		}
		rows := [][]interface{}{{"name", "kind", "print", "disable"}}
		for _, e := range s.Entries {
			rows = append(rows, []interface{}{e.Name, e.Kind, e.Print, e.Disable})
		}
		if err := writeSheetRows(f, s.Key, rows); err != nil {
			return err
		}
	}

	return f.Write(w)
}

func writeSheetRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("writing %s!%s: %w", sheet, cell, err)
		}
	}
	return nil
}
