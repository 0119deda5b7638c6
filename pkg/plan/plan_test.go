package plan

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/netreclaim/reclaim/pkg/util"
)

// writeWorkbook creates a single-sheet workbook from rows.
func writeWorkbook(t *testing.T, rows [][]interface{}) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatal(err)
		}
		if err := f.SetSheetRow("Sheet1", cell, &row); err != nil {
			t.Fatal(err)
		}
	}
	path := filepath.Join(t.TempDir(), "plan.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("SaveAs() error = %v", err)
	}
	return path
}

var planRows = [][]interface{}{
	{"Город", "NAME_DEVICE", "IP_DEVICE", "LOGIN", "PASSWORD"},
	{"Москва", "msk-eoip-cs-1", "10.0.0.2", "admin", "p1"},
	{"Москва", "msk-ctr-1", "10.0.0.1", "admin", "p2"},
	{"Казань", "kzn-ctr-1", "10.1.0.1", "oper", "p3"},
	{"Казань", "kzn-spare", "", "", ""},
	{"Казань", "kzn-eoip-cs-2", "10.1.0.9", "oper", "p4"},
}

func TestParseText(t *testing.T) {
	got := ParseText("10.0.0.1\n# comment 10.0.0.2/24\nfoo 10.0.0.1 bar")
	want := []string{"10.0.0.1", "10.0.0.2", "10.0.0.1"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ParseText() = %v, want %v", got, want)
	}
}

func TestLoadFile_Text(t *testing.T) {
	path := filepath.Join(t.TempDir(), "active.txt")
	content := " 0 client-a pppoe 10.9.0.1 1h\n 1 client-b pppoe 10.9.0.2 3m\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	got, err := LoadFile(path, Options{})
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if !reflect.DeepEqual(got, []string{"10.9.0.1", "10.9.0.2"}) {
		t.Errorf("LoadFile() = %v", got)
	}
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "absent.txt"), Options{})
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("LoadFile(absent) error = %v, want ErrNotExist", err)
	}
}

func TestLoadFile_WorkbookByColumn(t *testing.T) {
	path := writeWorkbook(t, planRows)
	got, err := LoadFile(path, Options{})
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	want := []string{"10.0.0.2", "10.0.0.1", "10.1.0.1", "10.1.0.9"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("LoadFile() = %v, want %v", got, want)
	}
}

func TestLoadFile_WorkbookWithoutColumn(t *testing.T) {
	path := writeWorkbook(t, [][]interface{}{
		{"host", "notes"},
		{"a", "uplink 192.0.2.1 and 192.0.2.2"},
		{"198.51.100.1", ""},
	})
	got, err := LoadFile(path, Options{})
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	want := []string{"192.0.2.1", "192.0.2.2", "198.51.100.1"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("LoadFile() = %v, want %v", got, want)
	}
}

func TestReadTable_MissingSheet(t *testing.T) {
	path := writeWorkbook(t, planRows)
	if _, err := ReadTable(path, "Nope"); err == nil {
		t.Error("ReadTable() with missing sheet should fail")
	}
}

func TestSplit(t *testing.T) {
	path := writeWorkbook(t, planRows)
	dir := filepath.Join(t.TempDir(), "out")

	results, err := Split(path, SplitOptions{Dir: dir, Suffix: "tu"})
	if err != nil {
		t.Fatalf("Split() error = %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("Split() wrote %d files, want 2", len(results))
	}

	tests := []struct {
		group string
		want  string
	}{
		{"Казань", "10.1.0.1\n10.1.0.9"},
		{"Москва", "10.0.0.1\n10.0.0.2"},
	}
	for i, tt := range tests {
		t.Run(tt.group, func(t *testing.T) {
			r := results[i]
			if r.Group != tt.group {
				t.Fatalf("result %d group = %q, want %q", i, r.Group, tt.group)
			}
			if r.Path != GroupFileName(tt.group, "tu", dir) {
				t.Errorf("Path = %q", r.Path)
			}
			data, err := os.ReadFile(r.Path)
			if err != nil {
				t.Fatal(err)
			}
			if string(data) != tt.want {
				t.Errorf("file content = %q, want %q", data, tt.want)
			}
		})
	}
}

func TestSplit_MissingColumn(t *testing.T) {
	path := writeWorkbook(t, planRows)
	_, err := Split(path, SplitOptions{GroupColumn: "Region", Dir: t.TempDir()})
	if !errors.Is(err, util.ErrNotFound) {
		t.Errorf("Split() error = %v, want ErrNotFound", err)
	}
}

func TestGroupFileName(t *testing.T) {
	got := GroupFileName("Нижний Новгород", "tu", "plans")
	want := filepath.Join("plans", "Нижний_Новгород_tu.txt")
	if got != want {
		t.Errorf("GroupFileName() = %q, want %q", got, want)
	}
}

func TestDevices(t *testing.T) {
	path := writeWorkbook(t, planRows)

	got, err := Devices(path, DeviceOptions{Match: []string{"ctr"}})
	if err != nil {
		t.Fatalf("Devices() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Devices() = %d rows, want 2", len(got))
	}
	if got[0].Name != "kzn-ctr-1" || got[1].Name != "msk-ctr-1" {
		t.Errorf("Devices() order = %s, %s", got[0].Name, got[1].Name)
	}
	if got[0].Login != "oper" || got[0].Address != "10.1.0.1" {
		t.Errorf("Devices()[0] = %+v", got[0])
	}

	all, err := Devices(path, DeviceOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 4 {
		t.Errorf("Devices() without match = %d rows, want 4 (row without address dropped)", len(all))
	}
}

func TestIsSpreadsheet(t *testing.T) {
	for path, want := range map[string]bool{
		"plan.xlsx": true, "PLAN.XLSM": true, "plan.txt": false, "plan": false,
	} {
		if got := IsSpreadsheet(path); got != want {
			t.Errorf("IsSpreadsheet(%q) = %v", path, got)
		}
	}
}
