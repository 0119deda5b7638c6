// Package plan loads address plans and active-session lists from text files
// and spreadsheets, and splits plan spreadsheets into per-group text files.
package plan

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/netreclaim/reclaim/pkg/util"
)

// Spreadsheet column defaults, as exported by the planning system.
const (
	DefaultIPColumn    = "IP_DEVICE"
	DefaultGroupColumn = "Город"
	DefaultNameColumn  = "NAME_DEVICE"
	DefaultLoginColumn = "LOGIN"
	DefaultPassColumn  = "PASSWORD"
)

// Options selects where addresses are read from in a spreadsheet. Text
// files ignore it.
type Options struct {
	// Sheet defaults to the first sheet.
	Sheet string
	// Column holds the addresses. When the sheet has no such header every
	// cell is scanned for IPv4 literals.
	Column string
}

func (o Options) column() string {
	if o.Column == "" {
		return DefaultIPColumn
	}
	return o.Column
}

// ParseText extracts every dotted-quad literal from text. Duplicates are
// kept; callers that need a set build one.
func ParseText(text string) []string {
	return util.ExtractIPv4s(text)
}

// IsSpreadsheet reports whether path names a workbook LoadFile reads as XLSX.
func IsSpreadsheet(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm", ".xltx", ".xltm":
		return true
	}
	return false
}

// LoadFile reads the addresses in path. Workbooks are read with opts, any
// other file as text.
func LoadFile(path string, opts Options) ([]string, error) {
	if IsSpreadsheet(path) {
		return loadWorkbook(path, opts)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading address file: %w", err)
	}
	return ParseText(string(data)), nil
}
